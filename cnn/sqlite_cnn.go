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

package cnn

import (
	"database/sql"
	"fmt"
	"regexp"
	"sync"

	"github.com/DataBridgeTech/dbqcontract"
	"github.com/mattn/go-sqlite3"
)

// SqliteDriverName is the database/sql driver registered with a regexp()
// function, which backs the REGEXP operator.
const SqliteDriverName = "sqlite3_dbq"

var registerSqliteOnce sync.Once

func registerSqliteDriver() {
	registerSqliteOnce.Do(func() {
		var cache sync.Map

		sql.Register(SqliteDriverName, &sqlite3.SQLiteDriver{
			ConnectHook: func(conn *sqlite3.SQLiteConn) error {
				return conn.RegisterFunc("regexp", func(pattern string, value any) (bool, error) {
					text := sqliteText(value)
					if re, ok := cache.Load(pattern); ok {
						return re.(*regexp.Regexp).MatchString(text), nil
					}
					re, err := regexp.Compile(pattern)
					if err != nil {
						return false, err
					}
					cache.Store(pattern, re)
					return re.MatchString(text), nil
				}, true)
			},
		})
	})
}

// sqliteText renders a column value of any storage class as text.
func sqliteText(value any) string {
	switch v := value.(type) {
	case nil:
		return ""
	case []byte:
		return string(v)
	case string:
		return v
	default:
		return fmt.Sprint(v)
	}
}

// NewSqliteConnection opens the database file at Path (":memory:" when
// empty). Tables live in the "main" schema.
func NewSqliteConnection(connectionCfg dbqcontract.ConnectionConfig) (*sql.DB, error) {
	registerSqliteDriver()

	path := connectionCfg.Path
	if path == "" {
		path = ":memory:"
	}

	db, err := sql.Open(SqliteDriverName, path)
	if err != nil {
		return nil, fmt.Errorf("failed to open sqlite database %s: %w", path, err)
	}

	// a single connection keeps ":memory:" databases shared
	db.SetMaxOpenConns(1)

	return db, nil
}
