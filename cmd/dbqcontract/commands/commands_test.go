package commands

import (
	"bytes"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/spf13/cobra"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/DataBridgeTech/dbqcontract"
	"github.com/DataBridgeTech/dbqcontract/cnn"
)

const ordersContract = `
id: orders_contract
info:
  title: Orders
  owner: sales-eng
  version: 2.0.0
models:
  orders:
    type: table
dependencies:
  - name: raw_orders
quality:
  specification:
    checks for orders:
      - row_count > 0
      - duplicate_count(order_id) = 0:
          name: Primary key uniqueness
      - missing_count(status) = 0:
          severity: warning
      - freshness(created_at)
`

func newTestRoot() *cobra.Command {
	root := &cobra.Command{
		Use:               "dbqcontract",
		SilenceUsage:      true,
		SilenceErrors:     true,
		PersistentPreRunE: LoadConfig,
	}
	root.PersistentFlags().StringP("config", "c", "", "")
	root.PersistentFlags().String("contracts-dir", "", "")
	root.PersistentFlags().String("log-level", "", "")
	root.AddCommand(ValidateCmd, ChecksCmd, ContractsCmd, DatasetsCmd, VersionCmd)
	return root
}

func setupWorkspace(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()

	dbPath := filepath.Join(dir, "warehouse.db")
	db, err := cnn.NewSqliteConnection(dbqcontract.ConnectionConfig{Path: dbPath})
	require.NoError(t, err)
	_, err = db.Exec(`
CREATE TABLE orders (order_id INTEGER, status TEXT);
INSERT INTO orders VALUES (1, 'NEW'), (2, NULL), (2, 'PAID');
`)
	require.NoError(t, err)
	require.NoError(t, db.Close())

	contractsDir := filepath.Join(dir, "contracts")
	require.NoError(t, os.Mkdir(contractsDir, 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(contractsDir, "orders_contract.yaml"), []byte(ordersContract), 0o644))

	configPath := filepath.Join(dir, "dbqcontract.yaml")
	require.NoError(t, os.WriteFile(configPath, []byte(`
datasource:
  type: sqlite
  configuration:
    path: `+dbPath+`
contracts_dir: `+contractsDir+`
log:
  level: error
`), 0o644))

	return configPath
}

func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()

	var out bytes.Buffer
	root := newTestRoot()
	root.SetOut(&out)
	root.SetArgs(args)
	err := root.Execute()
	return out.String(), err
}

func TestValidateCommand_JSON(t *testing.T) {
	configPath := setupWorkspace(t)

	out, err := execute(t, "validate", "--config", configPath, "--output", "json", "--strict=false")
	require.Error(t, err)
	assert.True(t, errors.Is(err, dbqcontract.ErrCriticalPathFailure))

	var results []contractResult
	require.NoError(t, json.Unmarshal([]byte(out), &results))
	require.Len(t, results, 1)

	report := results[0].Report
	assert.Equal(t, "orders_contract", results[0].ContractID)
	assert.Empty(t, results[0].Schema)
	assert.Equal(t, []string{"row_count > 0", "freshness(created_at)"}, report.Passed)
	assert.Equal(t, []string{"Primary key uniqueness", "missing_count(status) = 0"}, report.Failed)
	assert.Equal(t, []string{"freshness(created_at)"}, report.Warnings)
	assert.Equal(t, []string{"Primary key uniqueness"}, report.CriticalFailures)
	assert.InDelta(t, 50.0, report.PassRate, 1e-9)
}

func TestValidateCommand_Text(t *testing.T) {
	configPath := setupWorkspace(t)

	out, err := execute(t, "validate", "orders_contract", "--config", configPath, "--output", "text", "--strict=false")
	require.Error(t, err)
	assert.Contains(t, out, "orders_contract (Orders)")
	assert.Contains(t, out, "[PASS]")
	assert.Contains(t, out, "[FAIL]")
	assert.Contains(t, out, "[WARN]")
	assert.Contains(t, out, "critical-path failures: [Primary key uniqueness]")
}

func TestValidateCommand_UnknownContract(t *testing.T) {
	configPath := setupWorkspace(t)

	_, err := execute(t, "validate", "nope", "--config", configPath, "--output", "text", "--strict=false")
	require.Error(t, err)
	assert.Contains(t, err.Error(), `contract "nope" could not be loaded`)
}

func TestChecksCommand(t *testing.T) {
	configPath := setupWorkspace(t)

	out, err := execute(t, "checks", "--config", configPath)
	require.NoError(t, err)
	assert.Contains(t, out, "duplicate_count")
	assert.Contains(t, out, "unsupported check (skipped): freshness(created_at)")
}

func TestContractsCommand(t *testing.T) {
	configPath := setupWorkspace(t)

	out, err := execute(t, "contracts", "--config", configPath)
	require.NoError(t, err)
	assert.Contains(t, out, "orders_contract")
	assert.Contains(t, out, "sales-eng")
	assert.Contains(t, out, "raw_orders")
}

func TestDatasetsCommand(t *testing.T) {
	configPath := setupWorkspace(t)

	out, err := execute(t, "datasets", "--config", configPath)
	require.NoError(t, err)
	assert.Contains(t, out, "sqlite ")
	assert.Contains(t, out, "main.orders")
}

func TestMissingTables(t *testing.T) {
	datasets := []string{"public.customers", "crm.Orders"}
	checks := []dbqcontract.FlattenedCheck{
		{Table: "customers"},
		{Table: "orders"},
		{Table: "customers"},
		{Table: "payments"},
	}

	assert.Equal(t, []string{"payments"}, missingTables(datasets, "", checks))
	assert.Equal(t, []string{"orders", "payments"}, missingTables(datasets, "public", checks))
	assert.Equal(t, []string{"customers", "payments"}, missingTables(datasets, "crm", checks))
}
