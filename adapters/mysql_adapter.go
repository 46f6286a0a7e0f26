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

// REGEXP follows the column collation on MySQL and MariaDB, which is usually
// case-insensitive. Both ICU (MySQL 8) and PCRE (MariaDB) honour the inline
// (?-i) flag, so it is prepended to every pattern.
const mysqlCaseSensitiveFlag = "(?-i)"

var mysqlDialect = sqlDialect{
	name:            "mysql",
	quoteIdentifier: backQuoted,
	placeholder:     questionMark,
	regexMismatch: func(column string, placeholder string) string {
		return fmt.Sprintf("%s NOT REGEXP %s", column, placeholder)
	},
	regexArgument: func(pattern string) any {
		return mysqlCaseSensitiveFlag + pattern
	},
	greatest: greatestFunc,
}

type MysqlDbqQueryBuilder struct {
	*queryBuilder
}

func NewMysqlDbqQueryBuilder(logger *slog.Logger) dbqcontract.DbqQueryBuilder {
	return &MysqlDbqQueryBuilder{
		queryBuilder: newQueryBuilder(mysqlDialect, logger),
	}
}
