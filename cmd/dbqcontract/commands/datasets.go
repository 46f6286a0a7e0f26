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

	"github.com/DataBridgeTech/dbqcontract/dbq"
	"github.com/spf13/cobra"
)

var DatasetsCmd = &cobra.Command{
	Use:   "datasets [filter]",
	Short: "Check connectivity and list the tables of the data source",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		filter := ""
		if len(args) > 0 {
			filter = args[0]
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

		serverVersion, err := connector.Ping(cmd.Context())
		if err != nil {
			return fmt.Errorf("failed to connect to %s data source: %w", cfg.DataSource.Type, err)
		}

		datasets, err := connector.ImportDatasets(cmd.Context(), filter)
		if err != nil {
			return err
		}

		out := cmd.OutOrStdout()
		fmt.Fprintf(out, "%s %s\n", cfg.DataSource.Type, serverVersion)
		for _, dataset := range datasets {
			fmt.Fprintln(out, dataset)
		}
		return nil
	},
}
