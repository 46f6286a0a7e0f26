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
	"io"
	"log/slog"
	"strings"

	"github.com/DataBridgeTech/dbqcontract"
)

// sqlDialect captures what differs between backends when rendering a check
// query. Everything else is shared by queryBuilder.
type sqlDialect struct {
	name string

	quoteIdentifier func(name string) string

	// placeholder returns the bind marker for the n-th (1-based) argument.
	placeholder func(n int) string

	// numericPlaceholder binds a numeric argument whose type must not be
	// inferred from the column it is compared with. Defaults to placeholder.
	numericPlaceholder func(n int) string

	// regexMismatch renders a predicate that is true when column does not
	// match the pattern bound at placeholder, case-sensitively.
	regexMismatch func(column string, placeholder string) string

	// regexArgument adapts the pattern before it is bound.
	regexArgument func(pattern string) any

	greatest func(args ...string) string
}

type queryBuilder struct {
	dialect sqlDialect
	logger  *slog.Logger
}

func (b *queryBuilder) numericPlaceholder(n int) string {
	if b.dialect.numericPlaceholder != nil {
		return b.dialect.numericPlaceholder(n)
	}
	return b.dialect.placeholder(n)
}

func newQueryBuilder(dialect sqlDialect, logger *slog.Logger) *queryBuilder {
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}

	return &queryBuilder{
		dialect: dialect,
		logger:  logger,
	}
}

func (b *queryBuilder) BuildCheckQuery(check *dbqcontract.CheckExpression, cfg dbqcontract.CheckConfig, schema string, table string) (*dbqcontract.CheckQuery, error) {
	if check == nil {
		return nil, fmt.Errorf("check does not have parsed structure")
	}

	dataset, err := b.qualifiedTable(schema, table)
	if err != nil {
		return nil, err
	}

	query := &dbqcontract.CheckQuery{}

	switch check.Kind {
	case dbqcontract.KindRowCount:
		query.SQL = fmt.Sprintf("SELECT COUNT(*) FROM %s", dataset)

	case dbqcontract.KindMissingCount:
		column, err := b.column(check.Column)
		if err != nil {
			return nil, err
		}
		query.SQL = fmt.Sprintf("SELECT COUNT(*) FROM %s WHERE %s IS NULL", dataset, column)

	case dbqcontract.KindDuplicateCount:
		column, err := b.column(check.Column)
		if err != nil {
			return nil, err
		}
		query.SQL = fmt.Sprintf("SELECT COUNT(*) - COUNT(DISTINCT %s) FROM %s", column, dataset)

	case dbqcontract.KindInvalidPercent:
		column, err := b.column(check.Column)
		if err != nil {
			return nil, err
		}
		pattern, ok := cfg.ValidRegex()
		if !ok {
			return nil, fmt.Errorf("invalid_percent check requires a '%s' config", dbqcontract.ConfigKeyValidRegex)
		}
		query.SQL = fmt.Sprintf("SELECT COUNT(*), SUM(CASE WHEN %s THEN 1 ELSE 0 END) FROM %s WHERE %s IS NOT NULL",
			b.dialect.regexMismatch(column, b.dialect.placeholder(1)), dataset, column)
		query.Args = []any{b.dialect.regexArgument(pattern)}

	case dbqcontract.KindInvalidCount:
		column, err := b.column(check.Column)
		if err != nil {
			return nil, err
		}
		values, ok := cfg.ValidValues()
		if !ok {
			return nil, fmt.Errorf("invalid_count check requires a '%s' config", dbqcontract.ConfigKeyValidValues)
		}
		if len(values) == 0 {
			// nothing is valid
			query.SQL = fmt.Sprintf("SELECT COUNT(*) FROM %s WHERE %s IS NOT NULL", dataset, column)
			break
		}
		placeholders := make([]string, len(values))
		for i := range values {
			placeholders[i] = b.dialect.placeholder(i + 1)
		}
		query.SQL = fmt.Sprintf("SELECT COUNT(*) FROM %s WHERE %s IS NOT NULL AND %s NOT IN (%s)",
			dataset, column, column, strings.Join(placeholders, ", "))
		query.Args = values

	case dbqcontract.KindAverage:
		column, err := b.column(check.Column)
		if err != nil {
			return nil, err
		}
		query.SQL = fmt.Sprintf("SELECT AVG(%s) FROM %s", column, dataset)

	case dbqcontract.KindTolerance:
		if err := dbqcontract.ValidateExpressionText(check.Left); err != nil {
			return nil, err
		}
		if err := dbqcontract.ValidateExpressionText(check.Right); err != nil {
			return nil, err
		}
		query.SQL = fmt.Sprintf("SELECT COUNT(*) FROM %s WHERE ABS((%s) - (%s)) * 1.0 / %s > %s",
			dataset, check.Left, check.Right,
			b.dialect.greatest(fmt.Sprintf("ABS(%s)", check.Left), fmt.Sprintf("ABS(%s)", check.Right), "1"),
			b.dialect.placeholder(1))
		query.Args = []any{check.Tolerance}

	case dbqcontract.KindComparison:
		if check.IsLiteral {
			if err := dbqcontract.ValidateExpressionText(check.Expression); err != nil {
				return nil, err
			}
			query.SQL = fmt.Sprintf("SELECT COUNT(*) FROM %s WHERE NOT (%s)", dataset, check.Expression)
			break
		}

		column, err := b.column(check.Field)
		if err != nil {
			return nil, err
		}
		operator, err := sqlOperator(check.Operator)
		if err != nil {
			return nil, err
		}
		query.SQL = fmt.Sprintf("SELECT COUNT(*) FROM %s WHERE %s IS NOT NULL AND NOT (%s %s %s)",
			dataset, column, column, operator, b.numericPlaceholder(1))
		query.Args = []any{check.NumericValue}

	default:
		return nil, fmt.Errorf("check kind %q cannot be translated to a query", check.Kind)
	}

	b.logger.Debug("generated check query",
		"dialect", b.dialect.name,
		"check_kind", check.Kind,
		"operator", check.Operator,
		"query", query.SQL)

	return query, nil
}

func (b *queryBuilder) qualifiedTable(schema string, table string) (string, error) {
	if err := dbqcontract.ValidateIdentifier(table); err != nil {
		return "", fmt.Errorf("table: %w", err)
	}

	if schema == "" {
		return b.dialect.quoteIdentifier(table), nil
	}

	if err := dbqcontract.ValidateIdentifier(schema); err != nil {
		return "", fmt.Errorf("schema: %w", err)
	}

	return fmt.Sprintf("%s.%s", b.dialect.quoteIdentifier(schema), b.dialect.quoteIdentifier(table)), nil
}

func (b *queryBuilder) column(name string) (string, error) {
	if err := dbqcontract.ValidateIdentifier(name); err != nil {
		return "", fmt.Errorf("column: %w", err)
	}
	return b.dialect.quoteIdentifier(name), nil
}

func sqlOperator(operator string) (string, error) {
	switch operator {
	case ">", ">=", "<", "<=", "=", "!=":
		return operator, nil
	case "==":
		return "=", nil
	default:
		return "", fmt.Errorf("unsupported comparison operator %q", operator)
	}
}

func doubleQuoted(name string) string {
	return fmt.Sprintf("\"%s\"", name)
}

func backQuoted(name string) string {
	return fmt.Sprintf("`%s`", name)
}

func questionMark(int) string {
	return "?"
}

func dollarPlaceholder(n int) string {
	return fmt.Sprintf("$%d", n)
}

func greatestFunc(args ...string) string {
	return fmt.Sprintf("GREATEST(%s)", strings.Join(args, ", "))
}

func passPattern(pattern string) any {
	return pattern
}
