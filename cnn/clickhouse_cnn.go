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
	"strings"

	"github.com/ClickHouse/clickhouse-go/v2"
	"github.com/DataBridgeTech/dbqcontract"
)

// NewClickhouseConnection opens ClickHouse through the database/sql
// interface so checks run on the same code path as the other backends.
func NewClickhouseConnection(connectionCfg dbqcontract.ConnectionConfig) (*sql.DB, error) {
	addr := connectionCfg.Host
	if addr == "" {
		return nil, fmt.Errorf("clickhouse host is not configured")
	}
	if connectionCfg.Port > 0 && !strings.Contains(addr, ":") {
		addr = fmt.Sprintf("%s:%d", addr, connectionCfg.Port)
	}

	db := clickhouse.OpenDB(&clickhouse.Options{
		Addr: []string{addr},
		Auth: clickhouse.Auth{
			Database: connectionCfg.Database,
			Username: connectionCfg.Username,
			Password: connectionCfg.Password,
		},
	})

	applyPoolSize(db, connectionCfg.PoolSize)

	return db, nil
}
