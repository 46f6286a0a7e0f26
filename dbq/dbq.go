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

package dbq

import (
	"database/sql"
	"fmt"
	"log/slog"

	"github.com/DataBridgeTech/dbqcontract"
	"github.com/DataBridgeTech/dbqcontract/adapters"
	"github.com/DataBridgeTech/dbqcontract/cnn"
	"github.com/DataBridgeTech/dbqcontract/connectors"
)

const (
	Version = "v0.1.0"
)

func GetDbqContractLibVersion() string {
	return Version
}

// OpenDataSource opens a connection pool for the data source. The caller
// owns it and must close it.
func OpenDataSource(dataSource *dbqcontract.DataSource) (*sql.DB, error) {
	switch dataSource.Type {
	case dbqcontract.DataSourceTypeClickhouse:
		connection, err := cnn.NewClickhouseConnection(dataSource.Configuration)
		if err != nil {
			return nil, fmt.Errorf("failed to create clickhouse connection: %w", err)
		}
		return connection, nil
	case dbqcontract.DataSourceTypePostgresql:
		connection, err := cnn.NewPostgresqlConnection(dataSource.Configuration)
		if err != nil {
			return nil, fmt.Errorf("failed to create postgresql connection: %w", err)
		}
		return connection, nil
	case dbqcontract.DataSourceTypeMysql:
		connection, err := cnn.NewMysqlConnection(dataSource.Configuration)
		if err != nil {
			return nil, fmt.Errorf("failed to create mysql connection: %w", err)
		}
		return connection, nil
	case dbqcontract.DataSourceTypeSqlite:
		connection, err := cnn.NewSqliteConnection(dataSource.Configuration)
		if err != nil {
			return nil, fmt.Errorf("failed to create sqlite connection: %w", err)
		}
		return connection, nil
	default:
		return nil, fmt.Errorf("unsupported data source type: %s", dataSource.Type)
	}
}

func NewDbqQueryBuilder(dataSourceType dbqcontract.DataSourceType, logger *slog.Logger) (dbqcontract.DbqQueryBuilder, error) {
	switch dataSourceType {
	case dbqcontract.DataSourceTypeClickhouse:
		return adapters.NewClickhouseDbqQueryBuilder(logger), nil
	case dbqcontract.DataSourceTypePostgresql:
		return adapters.NewPostgresqlDbqQueryBuilder(logger), nil
	case dbqcontract.DataSourceTypeMysql:
		return adapters.NewMysqlDbqQueryBuilder(logger), nil
	case dbqcontract.DataSourceTypeSqlite:
		return adapters.NewSqliteDbqQueryBuilder(logger), nil
	default:
		return nil, fmt.Errorf("unsupported data source type: %s", dataSourceType)
	}
}

// NewDbqCheckExecutor wires an executor for the data source type on top of a
// connection the caller already opened.
func NewDbqCheckExecutor(querier dbqcontract.DbqQuerier, dataSourceType dbqcontract.DataSourceType, logger *slog.Logger) (dbqcontract.DbqCheckExecutor, error) {
	builder, err := NewDbqQueryBuilder(dataSourceType, logger)
	if err != nil {
		return nil, err
	}
	return dbqcontract.NewDbqCheckExecutor(querier, builder, logger), nil
}

// NewDbqConnector returns the catalog probe for the data source type.
func NewDbqConnector(db *sql.DB, dataSourceType dbqcontract.DataSourceType, logger *slog.Logger) (dbqcontract.DbqConnector, error) {
	switch dataSourceType {
	case dbqcontract.DataSourceTypeClickhouse:
		return connectors.NewClickhouseDbqConnector(db, logger), nil
	case dbqcontract.DataSourceTypePostgresql:
		return connectors.NewPostgresqlDbqConnector(db, logger), nil
	case dbqcontract.DataSourceTypeMysql:
		return connectors.NewMysqlDbqConnector(db, logger), nil
	case dbqcontract.DataSourceTypeSqlite:
		return connectors.NewSqliteDbqConnector(db, logger), nil
	default:
		return nil, fmt.Errorf("unsupported data source type: %s", dataSourceType)
	}
}
