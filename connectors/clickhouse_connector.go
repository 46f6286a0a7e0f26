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

package connectors

import (
	"database/sql"
	"log/slog"

	"github.com/DataBridgeTech/dbqcontract"
)

func NewClickhouseDbqConnector(db *sql.DB, logger *slog.Logger) dbqcontract.DbqConnector {
	return newSqlConnector("clickhouse", db, logger, "SELECT version()", func(filter string) (string, []any) {
		query := `
		SELECT database, name
		FROM system.tables
		WHERE database NOT IN ('system', 'INFORMATION_SCHEMA', 'information_schema')
			AND NOT startsWith(name, '.')
			AND is_temporary = 0`

		var args []any
		if filter != "" {
			query += " AND (database LIKE ? OR name LIKE ?)"
			args = append(args, likePattern(filter), likePattern(filter))
		}
		query += " ORDER BY database, name"
		return query, args
	})
}
