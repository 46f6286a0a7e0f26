// Copyright 2025 The DBQ Authors
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//      http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package adapters

import (
	"fmt"
	"log/slog"
	"strings"

	"github.com/DataBridgeTech/dbqcontract"
)

// sqliteDialect relies on the regexp() function registered by
// cnn.NewSqliteConnection for the REGEXP operator.
var sqliteDialect = sqlDialect{
	name:            "sqlite",
	quoteIdentifier: doubleQuoted,
	placeholder:     questionMark,
	regexMismatch: func(column string, placeholder string) string {
		return fmt.Sprintf("%s NOT REGEXP %s", column, placeholder)
	},
	regexArgument: passPattern,
	greatest: func(args ...string) string {
		// multi-argument max() is the scalar maximum in SQLite
		return fmt.Sprintf("MAX(%s)", strings.Join(args, ", "))
	},
}

type SqliteDbqQueryBuilder struct {
	*queryBuilder
}

func NewSqliteDbqQueryBuilder(logger *slog.Logger) dbqcontract.DbqQueryBuilder {
	return &SqliteDbqQueryBuilder{
		queryBuilder: newQueryBuilder(sqliteDialect, logger),
	}
}
