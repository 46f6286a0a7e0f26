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

package adapters

import (
	"fmt"
	"log/slog"

	"github.com/DataBridgeTech/dbqcontract"
)

var clickhouseDialect = sqlDialect{
	name:            "clickhouse",
	quoteIdentifier: backQuoted,
	placeholder:     questionMark,
	regexMismatch: func(column string, placeholder string) string {
		return fmt.Sprintf("NOT match(toString(%s), %s)", column, placeholder)
	},
	regexArgument: passPattern,
	// older servers only accept two arguments in greatest()
	greatest: func(args ...string) string {
		if len(args) == 0 {
			return "0"
		}
		expr := args[0]
		for _, arg := range args[1:] {
			expr = fmt.Sprintf("greatest(%s, %s)", expr, arg)
		}
		return expr
	},
}

type ClickhouseDbqQueryBuilder struct {
	*queryBuilder
}

func NewClickhouseDbqQueryBuilder(logger *slog.Logger) dbqcontract.DbqQueryBuilder {
	return &ClickhouseDbqQueryBuilder{
		queryBuilder: newQueryBuilder(clickhouseDialect, logger),
	}
}
