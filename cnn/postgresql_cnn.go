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
	"net"
	"net/url"
	"strconv"

	"github.com/DataBridgeTech/dbqcontract"
	_ "github.com/lib/pq"
)

func NewPostgresqlConnection(connectionCfg dbqcontract.ConnectionConfig) (*sql.DB, error) {
	db, err := sql.Open("postgres", postgresqlDSN(connectionCfg))
	if err != nil {
		return nil, fmt.Errorf("failed to open postgresql connection: %w", err)
	}

	applyPoolSize(db, connectionCfg.PoolSize)

	return db, nil
}

// postgresqlDSN renders a postgres:// URL so credentials with spaces or
// quotes survive.
func postgresqlDSN(connectionCfg dbqcontract.ConnectionConfig) string {
	port := connectionCfg.Port
	if port == 0 {
		port = 5432
	}

	sslMode := connectionCfg.SSLMode
	if sslMode == "" {
		sslMode = "disable"
	}

	dsn := url.URL{
		Scheme:   "postgres",
		Host:     net.JoinHostPort(connectionCfg.Host, strconv.Itoa(port)),
		Path:     "/" + connectionCfg.Database,
		RawQuery: url.Values{"sslmode": []string{sslMode}}.Encode(),
	}
	if connectionCfg.Username != "" {
		dsn.User = url.UserPassword(connectionCfg.Username, connectionCfg.Password)
	}
	return dsn.String()
}
