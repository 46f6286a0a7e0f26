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

package commands

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/DataBridgeTech/dbqcontract"
	"github.com/DataBridgeTech/dbqcontract/dbq"
	"github.com/DataBridgeTech/dbqcontract/metrics"
	"github.com/spf13/cobra"
)

type contractResult struct {
	ContractID string                        `json:"contract_id"`
	Title      string                        `json:"title"`
	Owner      string                        `json:"owner"`
	Schema     string                        `json:"schema"`
	Report     *dbqcontract.ValidationReport `json:"report"`
}

var ValidateCmd = &cobra.Command{
	Use:   "validate [contract-id...]",
	Short: "Run contract quality checks against the data source",
	Long: `Run the quality checks of the given contracts (all contracts when none is
given). The command fails when a critical-path check fails, or when any check
fails with --strict.`,
	RunE: runValidate,
}

func init() {
	ValidateCmd.Flags().StringP("output", "o", "text", "Output format: text or json")
	ValidateCmd.Flags().Bool("strict", false, "Fail on any failed check, not only critical-path failures")
	ValidateCmd.Flags().Duration("timeout", 0, "Abort the run after this duration (0 disables)")
}

func runValidate(cmd *cobra.Command, args []string) error {
	output, _ := cmd.Flags().GetString("output")
	strict, _ := cmd.Flags().GetBool("strict")
	timeout, _ := cmd.Flags().GetDuration("timeout")

	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()
	if timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, timeout)
		defer cancel()
	}

	contracts, err := loadContracts(args)
	if err != nil {
		return err
	}

	db, err := dbq.OpenDataSource(&cfg.DataSource)
	if err != nil {
		return err
	}
	defer db.Close()

	connector, err := dbq.NewDbqConnector(db, cfg.DataSource.Type, logger)
	if err != nil {
		return err
	}

	serverVersion, err := connector.Ping(ctx)
	if err != nil {
		return fmt.Errorf("failed to connect to %s data source: %w", cfg.DataSource.Type, err)
	}
	logger.Info("connected to data source",
		"datasource_id", cfg.DataSource.ID,
		"type", cfg.DataSource.Type,
		"server_version", serverVersion)

	datasets, datasetsErr := connector.ImportDatasets(ctx, "")
	if datasetsErr != nil {
		logger.Warn("could not list data source tables, skipping table presence check", "error", datasetsErr.Error())
	}

	executor, err := dbq.NewDbqCheckExecutor(db, cfg.DataSource.Type, logger)
	if err != nil {
		return err
	}

	recorder := metrics.NewRecorder()
	results := make([]contractResult, 0, len(contracts))
	var gateErrs []error

	for _, contract := range contracts {
		if contract.ID == "" {
			logger.Warn("contract has no id", "title", contract.Title())
		}

		schema := cfg.SchemaFor(contract.ID)
		checks := contract.FlattenChecks()

		logger.Info("validating contract",
			"contract_id", contract.ID,
			"title", contract.Title(),
			"owner", contract.Owner(),
			"version", contract.Version(),
			"schema", schema,
			"checks", len(checks))

		if datasetsErr == nil {
			for _, table := range missingTables(datasets, schema, checks) {
				logger.Warn("table referenced by contract not found in data source",
					"contract_id", contract.ID,
					"schema", schema,
					"table", table)
			}
		}

		verdicts := make([]*dbqcontract.Verdict, 0, len(checks))
		for i := range checks {
			startTime := time.Now()
			verdict := executor.ExecuteCheck(ctx, &checks[i], schema)
			recorder.RecordVerdict(contract.ID, verdict, time.Since(startTime))
			verdicts = append(verdicts, verdict)
		}

		report := dbqcontract.Summarize(verdicts, cfg.CriticalChecks)
		recorder.RecordReport(contract.ID, report)
		report.Log(logger.With("contract_id", contract.ID))

		if err := report.Gate(); err != nil {
			gateErrs = append(gateErrs, fmt.Errorf("contract %s: %w", contract.ID, err))
		} else if strict && len(report.Failed) > 0 {
			gateErrs = append(gateErrs, fmt.Errorf("contract %s: %d check(s) failed", contract.ID, len(report.Failed)))
		}

		results = append(results, contractResult{
			ContractID: contract.ID,
			Title:      contract.Title(),
			Owner:      contract.Owner(),
			Schema:     schema,
			Report:     report,
		})
	}

	if cfg.Metrics.Pushgateway != "" {
		if err := recorder.Push(ctx, cfg.Metrics.Pushgateway, cfg.Metrics.Job); err != nil {
			logger.Error("metrics push failed", "error", err.Error())
		}
	}

	if err := printResults(cmd, output, results); err != nil {
		return err
	}

	return errors.Join(gateErrs...)
}

func printResults(cmd *cobra.Command, output string, results []contractResult) error {
	out := cmd.OutOrStdout()

	if output == "json" {
		encoder := json.NewEncoder(out)
		encoder.SetIndent("", "  ")
		return encoder.Encode(results)
	}

	for _, result := range results {
		report := result.Report
		fmt.Fprintf(out, "%s (%s) schema=%s\n", result.ContractID, result.Title, result.Schema)
		for _, verdict := range report.Verdicts {
			location := verdict.Table
			if result.Schema != "" {
				location = result.Schema + "." + verdict.Table
			}
			fmt.Fprintf(out, "  [%s] %-8s %s: %s", statusLabel(verdict), verdict.Severity, location, verdict.Message)
			if verdict.Actual != nil {
				fmt.Fprintf(out, " (actual=%v", verdict.Actual)
				if verdict.Threshold != nil {
					fmt.Fprintf(out, ", threshold=%v", verdict.Threshold)
				}
				fmt.Fprint(out, ")")
			}
			fmt.Fprintln(out)
		}
		fmt.Fprintf(out, "  passed=%d failed=%d warnings=%d pass_rate=%.1f%%\n",
			len(report.Passed), len(report.Failed), len(report.Warnings), report.PassRate)
		if len(report.CriticalFailures) > 0 {
			fmt.Fprintf(out, "  critical-path failures: %v\n", report.CriticalFailures)
		}
	}

	return nil
}

func statusLabel(verdict *dbqcontract.Verdict) string {
	switch {
	case verdict.Error != "":
		return "ERROR"
	case !verdict.Passed:
		return "FAIL"
	case verdict.IsWarning():
		return "WARN"
	default:
		return "PASS"
	}
}

// missingTables returns the distinct check tables absent from datasets
// ("schema.table" names). Without a schema, a table matches in any schema.
func missingTables(datasets []string, schema string, checks []dbqcontract.FlattenedCheck) []string {
	present := make(map[string]bool, len(datasets)*2)
	for _, dataset := range datasets {
		present[strings.ToLower(dataset)] = true
		if idx := strings.LastIndex(dataset, "."); idx >= 0 {
			present["*."+strings.ToLower(dataset[idx+1:])] = true
		}
	}

	seen := map[string]bool{}
	var missing []string
	for _, check := range checks {
		if seen[check.Table] {
			continue
		}
		seen[check.Table] = true

		key := "*." + strings.ToLower(check.Table)
		if schema != "" {
			key = strings.ToLower(schema + "." + check.Table)
		}
		if !present[key] {
			missing = append(missing, check.Table)
		}
	}
	return missing
}
