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

	"github.com/DataBridgeTech/dbqcontract"
)

var postgresqlDialect = sqlDialect{
	name:            "postgresql",
	quoteIdentifier: doubleQuoted,
	placeholder:     dollarPlaceholder,
	numericPlaceholder: func(n int) string {
		return fmt.Sprintf("CAST(%s AS DOUBLE PRECISION)", dollarPlaceholder(n))
	},
	regexMismatch: func(column string, placeholder string) string {
		return fmt.Sprintf("CAST(%s AS TEXT) !~ %s", column, placeholder)
	},
	regexArgument: passPattern,
	greatest:      greatestFunc,
}

type PostgresqlDbqQueryBuilder struct {
	*queryBuilder
}

func NewPostgresqlDbqQueryBuilder(logger *slog.Logger) dbqcontract.DbqQueryBuilder {
	return &PostgresqlDbqQueryBuilder{
		queryBuilder: newQueryBuilder(postgresqlDialect, logger),
	}
}
