package config

import (
	"bytes"
	"errors"
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/DataBridgeTech/dbqcontract"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "dbqcontract.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestLoadFromFile(t *testing.T) {
	path := writeConfig(t, `
datasource:
  id: warehouse
  type: mysql
  configuration:
    host: db.internal
    port: 3306
    username: dbq
    password: secret
    database: shop
contracts_dir: ./contracts
schema: shop
schemas:
  customer_data_contract: crm
critical_checks:
  - primary key
metrics:
  pushgateway: http://pushgateway:9091
log:
  level: debug
  format: json
`)

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "warehouse", cfg.DataSource.ID)
	assert.Equal(t, dbqcontract.DataSourceTypeMysql, cfg.DataSource.Type)
	assert.Equal(t, "db.internal", cfg.DataSource.Configuration.Host)
	assert.Equal(t, 3306, cfg.DataSource.Configuration.Port)
	assert.Equal(t, "shop", cfg.DataSource.Configuration.Database)
	assert.Equal(t, 2, cfg.DataSource.Configuration.PoolSize)
	assert.Equal(t, "./contracts", cfg.ContractsDir)
	assert.Equal(t, []string{"primary key"}, cfg.CriticalChecks)
	assert.Equal(t, "http://pushgateway:9091", cfg.Metrics.Pushgateway)
	assert.Equal(t, "dbqcontract", cfg.Metrics.Job)
	assert.Equal(t, "debug", cfg.Log.Level)
	assert.Equal(t, "json", cfg.Log.Format)

	assert.Equal(t, "crm", cfg.SchemaFor("customer_data_contract"))
	assert.Equal(t, "shop", cfg.SchemaFor("orders_contract"))
}

func TestSchemaForMixedCaseContractID(t *testing.T) {
	path := writeConfig(t, `
datasource:
  type: postgresql
schemas:
  CustomerContract: crm
`)

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "crm", cfg.SchemaFor("CustomerContract"))
}

func TestLoadDefaults(t *testing.T) {
	v, err := New(writeConfig(t, "{}\n"))
	require.NoError(t, err)

	cfg, err := LoadWithViper(v)
	require.NoError(t, err)

	assert.Equal(t, dbqcontract.DataSourceTypePostgresql, cfg.DataSource.Type)
	assert.Equal(t, "localhost", cfg.DataSource.Configuration.Host)
	assert.Equal(t, 5432, cfg.DataSource.Configuration.Port)
	assert.Equal(t, "disable", cfg.DataSource.Configuration.SSLMode)
	assert.Equal(t, "contracts", cfg.ContractsDir)
	assert.Equal(t, dbqcontract.DefaultCriticalPatterns, cfg.CriticalChecks)
	assert.Equal(t, "info", cfg.Log.Level)
	assert.Equal(t, "text", cfg.Log.Format)
}

func TestLoadEnvironmentOverrides(t *testing.T) {
	t.Setenv("DBQ_DATASOURCE_TYPE", "sqlite")
	t.Setenv("DBQ_DATASOURCE_CONFIGURATION_PATH", "/tmp/warehouse.db")
	t.Setenv("DBQ_CONTRACTS_DIR", "/etc/contracts")

	cfg, err := Load(writeConfig(t, "datasource:\n  type: postgresql\n"))
	require.NoError(t, err)

	assert.Equal(t, dbqcontract.DataSourceTypeSqlite, cfg.DataSource.Type)
	assert.Equal(t, "/tmp/warehouse.db", cfg.DataSource.Configuration.Path)
	assert.Equal(t, "/etc/contracts", cfg.ContractsDir)
}

func TestLoadMissingExplicitFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "absent.yaml"))
	assert.Error(t, err)
}

func TestValidate(t *testing.T) {
	valid := Config{
		DataSource:   dbqcontract.DataSource{Type: dbqcontract.DataSourceTypeClickhouse},
		ContractsDir: "contracts",
		Schema:       "analytics",
		Schemas:      map[string]string{"events": "raw"},
	}
	assert.NoError(t, valid.Validate())

	tests := []struct {
		name   string
		mutate func(c *Config)
	}{
		{"unknown type", func(c *Config) { c.DataSource.Type = "oracle" }},
		{"empty contracts dir", func(c *Config) { c.ContractsDir = "" }},
		{"unsafe schema", func(c *Config) { c.Schema = "analytics; DROP" }},
		{"unsafe schema override", func(c *Config) { c.Schemas = map[string]string{"events": "a.b"} }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := valid
			c.Schemas = map[string]string{"events": "raw"}
			tt.mutate(&c)
			assert.Error(t, c.Validate())
		})
	}

	unsafe := valid
	unsafe.Schema = "x y"
	assert.True(t, errors.Is(unsafe.Validate(), dbqcontract.ErrUnsafeIdentifier))
}

func TestNewLogger(t *testing.T) {
	var buf bytes.Buffer

	logger := NewLogger(LogConfig{Level: "warn", Format: "json"}, &buf)
	logger.Info("hidden")
	logger.Warn("visible", "table", "customers")

	out := buf.String()
	assert.NotContains(t, out, "hidden")
	assert.Contains(t, out, `"msg":"visible"`)
	assert.Contains(t, out, `"table":"customers"`)

	buf.Reset()
	logger = NewLogger(LogConfig{Level: "bogus"}, &buf)
	logger.Debug("debug")
	logger.Info("info")
	assert.NotContains(t, buf.String(), "msg=debug")
	assert.Contains(t, buf.String(), "msg=info")
}

func TestParseLevel(t *testing.T) {
	assert.Equal(t, slog.LevelDebug, parseLevel("DEBUG"))
	assert.Equal(t, slog.LevelWarn, parseLevel("warning"))
	assert.Equal(t, slog.LevelError, parseLevel(" error "))
	assert.Equal(t, slog.LevelInfo, parseLevel(""))
}
