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

func NewMysqlDbqConnector(db *sql.DB, logger *slog.Logger) dbqcontract.DbqConnector {
	return newSqlConnector("mysql", db, logger, "SELECT VERSION()", func(filter string) (string, []any) {
		query := `
		SELECT table_schema, table_name
		FROM information_schema.tables
		WHERE table_schema NOT IN ('mysql', 'information_schema', 'performance_schema', 'sys')`

		var args []any
		if filter != "" {
			query += " AND (table_schema LIKE ? OR table_name LIKE ?)"
			args = append(args, likePattern(filter), likePattern(filter))
		}
		query += " ORDER BY table_schema, table_name"
		return query, args
	})
}
