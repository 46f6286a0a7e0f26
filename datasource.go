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

package dbqcontract

import "context"

type DataSourceType string

const (
	DataSourceTypeClickhouse DataSourceType = "clickhouse"
	DataSourceTypePostgresql DataSourceType = "postgresql"
	DataSourceTypeMysql      DataSourceType = "mysql"
	DataSourceTypeSqlite     DataSourceType = "sqlite"
)

type ConnectionConfig struct {
	Host     string `yaml:"host" mapstructure:"host"`
	Port     int    `yaml:"port" mapstructure:"port"`
	Username string `yaml:"username" mapstructure:"username"`
	Password string `yaml:"password" mapstructure:"password"`
	Database string `yaml:"database" mapstructure:"database"`
	SSLMode  string `yaml:"sslmode,omitempty" mapstructure:"sslmode"`
	// Path is the database file for sqlite data sources.
	Path     string `yaml:"path,omitempty" mapstructure:"path"`
	PoolSize int    `yaml:"pool_size,omitempty" mapstructure:"pool_size"`
}

type DataSource struct {
	ID            string           `yaml:"id" mapstructure:"id"`
	Type          DataSourceType   `yaml:"type" mapstructure:"type"`
	Configuration ConnectionConfig `yaml:"configuration" mapstructure:"configuration"`
}

// DbqConnector probes a data source: reachability, server version and the
// tables it exposes.
type DbqConnector interface {
	// Ping checks the connection and returns the server version.
	Ping(ctx context.Context) (string, error)

	// ImportDatasets lists "schema.table" names, optionally filtered by a
	// substring of either part.
	ImportDatasets(ctx context.Context, filter string) ([]string, error)
}
