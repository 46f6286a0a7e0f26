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

// NewSqliteDbqConnector lists the tables of the main database only; attached
// databases are not inspected.
func NewSqliteDbqConnector(db *sql.DB, logger *slog.Logger) dbqcontract.DbqConnector {
	return newSqlConnector("sqlite", db, logger, "SELECT sqlite_version()", func(filter string) (string, []any) {
		query := `
		SELECT 'main', name
		FROM sqlite_master
		WHERE type = 'table' AND name NOT LIKE 'sqlite_%'`

		var args []any
		if filter != "" {
			query += " AND name LIKE ?"
			args = append(args, likePattern(filter))
		}
		query += " ORDER BY name"
		return query, args
	})
}
