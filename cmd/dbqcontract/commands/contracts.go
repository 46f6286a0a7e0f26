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
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"
)

var ContractsCmd = &cobra.Command{
	Use:   "contracts",
	Short: "List the contracts found in the contracts directory",
	RunE: func(cmd *cobra.Command, args []string) error {
		contracts, err := loadContracts(args)
		if err != nil {
			return err
		}

		w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
		fmt.Fprintln(w, "ID\tTITLE\tOWNER\tVERSION\tTABLES\tDEPENDENCIES\tCHECKS\tSKIPPED")
		for _, contract := range contracts {
			fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\t%s\t%d\t%d\n",
				contract.ID,
				contract.Title(),
				contract.Owner(),
				contract.Version(),
				strings.Join(contract.Tables(), ","),
				strings.Join(contract.DependencyNames(), ","),
				len(contract.FlattenChecks()),
				len(contract.Diagnostics()))
		}
		return w.Flush()
	},
}
