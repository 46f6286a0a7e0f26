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

package main

import (
	"fmt"
	"os"

	"github.com/DataBridgeTech/dbqcontract/cmd/dbqcontract/commands"
	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "dbqcontract",
	Short: "dbqcontract - data contract quality checks",
	Long: `dbqcontract runs the quality checks declared in data contracts against a
relational data source and reports a pass/fail verdict per check.

Examples:
  dbqcontract contracts                 # List loaded contracts
  dbqcontract datasets orders           # List data source tables matching "orders"
  dbqcontract checks dp-customers       # Show how checks are interpreted
  dbqcontract validate                  # Validate every contract
  dbqcontract validate dp-orders -o json`,
	SilenceUsage:      true,
	PersistentPreRunE: commands.LoadConfig,
}

func init() {
	rootCmd.PersistentFlags().StringP("config", "c", "", "Path to the config file (default ./dbqcontract.yaml)")
	rootCmd.PersistentFlags().String("contracts-dir", "", "Directory with contract files (overrides config)")
	rootCmd.PersistentFlags().String("log-level", "", "Log level: debug, info, warn, error (overrides config)")

	rootCmd.AddCommand(commands.ValidateCmd)
	rootCmd.AddCommand(commands.ChecksCmd)
	rootCmd.AddCommand(commands.ContractsCmd)
	rootCmd.AddCommand(commands.DatasetsCmd)
	rootCmd.AddCommand(commands.VersionCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
