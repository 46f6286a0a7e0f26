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

package config

import (
	"fmt"
	"strings"

	"github.com/DataBridgeTech/dbqcontract"
	"github.com/spf13/viper"
)

const (
	EnvPrefix       = "DBQ"
	DefaultFileName = "dbqcontract"
)

// Config is the configuration of a validation run.
type Config struct {
	DataSource     dbqcontract.DataSource `mapstructure:"datasource"`
	ContractsDir   string                 `mapstructure:"contracts_dir"`
	Schema         string                 `mapstructure:"schema"`
	Schemas        map[string]string      `mapstructure:"schemas"`
	CriticalChecks []string               `mapstructure:"critical_checks"`
	Metrics        MetricsConfig          `mapstructure:"metrics"`
	Log            LogConfig              `mapstructure:"log"`
}

type MetricsConfig struct {
	Pushgateway string `mapstructure:"pushgateway"`
	Job         string `mapstructure:"job"`
}

type LogConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

// SchemaFor returns the schema checks of a contract run against: the
// per-contract override, or the default schema.
func (c *Config) SchemaFor(contractID string) string {
	// viper lowercases map keys
	for _, key := range []string{contractID, strings.ToLower(contractID)} {
		if schema, ok := c.Schemas[key]; ok && schema != "" {
			return schema
		}
	}
	return c.Schema
}

func SetDefaults(v *viper.Viper) {
	v.SetDefault("datasource.id", "default")
	v.SetDefault("datasource.type", string(dbqcontract.DataSourceTypePostgresql))
	v.SetDefault("datasource.configuration.host", "localhost")
	v.SetDefault("datasource.configuration.port", 5432)
	v.SetDefault("datasource.configuration.username", "")
	v.SetDefault("datasource.configuration.password", "")
	v.SetDefault("datasource.configuration.database", "")
	v.SetDefault("datasource.configuration.sslmode", "disable")
	v.SetDefault("datasource.configuration.path", "")
	v.SetDefault("datasource.configuration.pool_size", 2)

	v.SetDefault("contracts_dir", "contracts")
	v.SetDefault("schema", "")
	v.SetDefault("critical_checks", dbqcontract.DefaultCriticalPatterns)

	v.SetDefault("metrics.pushgateway", "")
	v.SetDefault("metrics.job", "dbqcontract")

	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "text")
}

// New returns a viper instance with defaults and DBQ_* environment binding.
// When configPath is empty, dbqcontract.yaml is searched in the working
// directory; a missing default file is not an error.
func New(configPath string) (*viper.Viper, error) {
	v := viper.New()
	SetDefaults(v)

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if configPath != "" {
		v.SetConfigFile(configPath)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("failed to read config file %s: %w", configPath, err)
		}
		return v, nil
	}

	v.SetConfigName(DefaultFileName)
	v.SetConfigType("yaml")
	v.AddConfigPath(".")
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("failed to read config: %w", err)
		}
	}

	return v, nil
}

func LoadWithViper(v *viper.Viper) (*Config, error) {
	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// Load reads the configuration from configPath (or the default location).
func Load(configPath string) (*Config, error) {
	v, err := New(configPath)
	if err != nil {
		return nil, err
	}
	return LoadWithViper(v)
}

func (c *Config) Validate() error {
	switch c.DataSource.Type {
	case dbqcontract.DataSourceTypePostgresql,
		dbqcontract.DataSourceTypeMysql,
		dbqcontract.DataSourceTypeClickhouse,
		dbqcontract.DataSourceTypeSqlite:
	default:
		return fmt.Errorf("unsupported data source type: %q", c.DataSource.Type)
	}

	if c.ContractsDir == "" {
		return fmt.Errorf("contracts_dir must not be empty")
	}

	if c.Schema != "" {
		if err := dbqcontract.ValidateIdentifier(c.Schema); err != nil {
			return fmt.Errorf("schema: %w", err)
		}
	}

	for contractID, schema := range c.Schemas {
		if err := dbqcontract.ValidateIdentifier(schema); err != nil {
			return fmt.Errorf("schemas.%s: %w", contractID, err)
		}
	}

	return nil
}
