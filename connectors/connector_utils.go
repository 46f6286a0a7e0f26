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

package connectors

import (
	"context"
	"database/sql"
	"fmt"
	"io"
	"log/slog"
	"strings"
)

// datasetsQuery returns the catalog query listing schema/table pairs and its
// arguments for the given filter.
type datasetsQuery func(filter string) (string, []any)

type sqlConnector struct {
	name          string
	db            *sql.DB
	logger        *slog.Logger
	versionQuery  string
	datasetsQuery datasetsQuery
}

func newSqlConnector(name string, db *sql.DB, logger *slog.Logger, versionQuery string, datasets datasetsQuery) *sqlConnector {
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}

	return &sqlConnector{
		name:          name,
		db:            db,
		logger:        logger,
		versionQuery:  versionQuery,
		datasetsQuery: datasets,
	}
}

func (c *sqlConnector) Ping(ctx context.Context) (string, error) {
	if err := c.db.PingContext(ctx); err != nil {
		return "", err
	}

	var version string
	if err := c.db.QueryRowContext(ctx, c.versionQuery).Scan(&version); err != nil {
		return "", fmt.Errorf("failed to query %s server version: %w", c.name, err)
	}

	c.logger.Debug("data source reachable", "type", c.name, "server_version", version)
	return version, nil
}

func (c *sqlConnector) ImportDatasets(ctx context.Context, filter string) ([]string, error) {
	query, args := c.datasetsQuery(strings.TrimSpace(filter))

	rows, err := c.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list %s tables: %w", c.name, err)
	}
	defer rows.Close()

	var datasets []string
	for rows.Next() {
		var schemaName, tableName string
		if err := rows.Scan(&schemaName, &tableName); err != nil {
			return nil, fmt.Errorf("failed to scan row: %w", err)
		}
		datasets = append(datasets, fmt.Sprintf("%s.%s", schemaName, tableName))
	}

	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error occurred during row iteration: %w", err)
	}

	c.logger.Debug("imported datasets", "type", c.name, "count", len(datasets))
	return datasets, nil
}

func likePattern(filter string) string {
	return fmt.Sprintf("%%%s%%", filter)
}
