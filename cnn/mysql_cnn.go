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
	"strconv"
	"time"

	"github.com/DataBridgeTech/dbqcontract"
	"github.com/go-sql-driver/mysql"
)

func NewMysqlConnection(connectionCfg dbqcontract.ConnectionConfig) (*sql.DB, error) {
	connector, err := mysql.NewConnector(mysqlConfig(connectionCfg))
	if err != nil {
		return nil, fmt.Errorf("invalid mysql configuration: %w", err)
	}

	db := sql.OpenDB(connector)
	applyPoolSize(db, connectionCfg.PoolSize)

	return db, nil
}

func mysqlConfig(connectionCfg dbqcontract.ConnectionConfig) *mysql.Config {
	port := connectionCfg.Port
	if port == 0 {
		port = 3306
	}

	cfg := mysql.NewConfig()
	cfg.User = connectionCfg.Username
	cfg.Passwd = connectionCfg.Password
	cfg.Net = "tcp"
	cfg.Addr = connectionCfg.Host + ":" + strconv.Itoa(port)
	cfg.DBName = connectionCfg.Database
	cfg.ParseTime = true
	cfg.Timeout = 10 * time.Second
	return cfg
}

// applyPoolSize bounds the pool. Checks run sequentially, so a small pool
// is enough.
func applyPoolSize(db *sql.DB, poolSize int) {
	if poolSize <= 0 {
		poolSize = 2
	}
	db.SetMaxOpenConns(poolSize)
	db.SetMaxIdleConns(poolSize)
}
