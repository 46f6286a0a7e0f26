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
	"fmt"
	"text/tabwriter"

	"github.com/DataBridgeTech/dbqcontract"
	"github.com/spf13/cobra"
)

var ChecksCmd = &cobra.Command{
	Use:   "checks [contract-id...]",
	Short: "List flattened checks and how each expression is interpreted",
	Long: `List the checks of the given contracts (all contracts when none is given)
with the shape each expression was classified into. Nothing is executed.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		contracts, err := loadContracts(args)
		if err != nil {
			return err
		}

		w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
		fmt.Fprintln(w, "CONTRACT\tTABLE\tKIND\tSEVERITY\tEXPRESSION\tNOTE")
		for _, contract := range contracts {
			for _, check := range contract.FlattenChecks() {
				parsed := dbqcontract.ParseCheckExpression(check.Expression, check.Config)
				fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\t%s\n",
					contract.ID, check.Table, parsed.Kind, check.Severity, check.Expression, parsed.Advisory)
			}
			for _, diagnostic := range contract.Diagnostics() {
				fmt.Fprintf(w, "%s\t-\t-\t-\t-\t%s\n", contract.ID, diagnostic)
			}
		}
		return w.Flush()
	},
}
