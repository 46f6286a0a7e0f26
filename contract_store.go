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

import (
	"errors"
	"io"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"
)

var contractFileExtensions = []string{".yaml", ".yml"}

// ContractStore loads contracts from a directory of YAML files. Load
// failures are logged and never returned to the caller.
type ContractStore struct {
	dir    string
	logger *slog.Logger
}

func NewContractStore(dir string, logger *slog.Logger) *ContractStore {
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}

	return &ContractStore{
		dir:    dir,
		logger: logger,
	}
}

func (s *ContractStore) Dir() string {
	return s.dir
}

// Load reads the contract <dir>/<id>.yaml (or .yml). It returns false when
// the file does not exist or cannot be parsed.
func (s *ContractStore) Load(id string) (*Contract, bool) {
	if id == "" || strings.ContainsAny(id, `/\`) || id == "." || id == ".." {
		s.logger.Warn("invalid contract id", "contract_id", id)
		return nil, false
	}

	for _, ext := range contractFileExtensions {
		path := filepath.Join(s.dir, id+ext)

		if _, err := os.Stat(path); err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				continue
			}
			s.logger.Error("failed to access contract file",
				"contract_id", id,
				"path", path,
				"error", err.Error())
			return nil, false
		}

		contract, err := s.loadFile(path)
		if err != nil {
			s.logger.Error("error loading contract",
				"contract_id", id,
				"path", path,
				"error", err.Error())
			return nil, false
		}
		return contract, true
	}

	s.logger.Warn("contract file not found",
		"contract_id", id,
		"dir", s.dir)
	return nil, false
}

// LoadAll loads every contract file in the directory. Malformed files are
// skipped with a warning; a missing directory yields no contracts.
func (s *ContractStore) LoadAll() []*Contract {
	contracts := []*Contract{}

	entries, err := os.ReadDir(s.dir)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			s.logger.Warn("contracts directory not found", "dir", s.dir)
		} else {
			s.logger.Error("failed to read contracts directory",
				"dir", s.dir,
				"error", err.Error())
		}
		return contracts
	}

	sort.Slice(entries, func(i, j int) bool {
		return entries[i].Name() < entries[j].Name()
	})

	for _, entry := range entries {
		if entry.IsDir() || !isContractFile(entry.Name()) {
			continue
		}

		path := filepath.Join(s.dir, entry.Name())
		contract, err := s.loadFile(path)
		if err != nil {
			s.logger.Warn("skipping contract file",
				"file", entry.Name(),
				"error", err.Error())
			continue
		}
		contracts = append(contracts, contract)
	}

	return contracts
}

func (s *ContractStore) loadFile(path string) (*Contract, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	contract, err := ParseContract(data)
	if err != nil {
		return nil, err
	}

	for _, diagnostic := range contract.Diagnostics() {
		s.logger.Warn("check declaration skipped",
			"contract_id", contract.ID,
			"file", filepath.Base(path),
			"reason", diagnostic)
	}

	return contract, nil
}

func isContractFile(name string) bool {
	if strings.HasPrefix(strings.ToUpper(name), "README") {
		return false
	}

	ext := strings.ToLower(filepath.Ext(name))
	for _, allowed := range contractFileExtensions {
		if ext == allowed {
			return true
		}
	}
	return false
}
