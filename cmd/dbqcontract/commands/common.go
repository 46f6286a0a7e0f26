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
	"log/slog"
	"os"

	"github.com/DataBridgeTech/dbqcontract"
	"github.com/DataBridgeTech/dbqcontract/internal/config"
	"github.com/spf13/cobra"
)

var (
	cfg    *config.Config
	logger *slog.Logger
)

// LoadConfig reads the configuration and sets up logging before any
// command runs.
func LoadConfig(cmd *cobra.Command, _ []string) error {
	if cmd.Name() == "version" {
		return nil
	}

	configPath, _ := cmd.Flags().GetString("config")
	loaded, err := config.Load(configPath)
	if err != nil {
		return err
	}

	if dir, _ := cmd.Flags().GetString("contracts-dir"); dir != "" {
		loaded.ContractsDir = dir
	}
	if level, _ := cmd.Flags().GetString("log-level"); level != "" {
		loaded.Log.Level = level
	}

	cfg = loaded
	logger = config.NewLogger(cfg.Log, os.Stderr)
	return nil
}

// loadContracts loads the contracts named by ids, or every contract when no
// id is given.
func loadContracts(ids []string) ([]*dbqcontract.Contract, error) {
	store := dbqcontract.NewContractStore(cfg.ContractsDir, logger)

	if len(ids) == 0 {
		contracts := store.LoadAll()
		if len(contracts) == 0 {
			return nil, fmt.Errorf("no contracts found in %s", store.Dir())
		}
		return contracts, nil
	}

	var contracts []*dbqcontract.Contract
	for _, id := range ids {
		contract, ok := store.Load(id)
		if !ok {
			return nil, fmt.Errorf("contract %q could not be loaded from %s", id, store.Dir())
		}
		contracts = append(contracts, contract)
	}
	return contracts, nil
}
