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
	"context"
	"database/sql"
	"fmt"
	"io"
	"log/slog"
	"math"
	"strconv"
	"time"
)

// CheckQuery is a parameterized query generated for a check.
type CheckQuery struct {
	SQL  string
	Args []any
}

// DbqQueryBuilder is implemented by every supported data source.
type DbqQueryBuilder interface {
	// BuildCheckQuery generates a SQL query specific for datasource for a parsed check
	BuildCheckQuery(check *CheckExpression, cfg CheckConfig, schema string, table string) (*CheckQuery, error)
}

// DbqQuerier is the connection a check runs on. *sql.DB, *sql.Conn and
// *sql.Tx all satisfy it.
type DbqQuerier interface {
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

// DbqCheckExecutor is the interface that wraps the check execution methods.
type DbqCheckExecutor interface {
	// ExecuteCheck runs a single check against schema and always returns a verdict.
	ExecuteCheck(ctx context.Context, check *FlattenedCheck, schema string) *Verdict

	// ExecuteChecks runs checks one after another and returns one verdict per check.
	ExecuteChecks(ctx context.Context, checks []FlattenedCheck, schema string) []*Verdict
}

func NewDbqCheckExecutor(querier DbqQuerier, builder DbqQueryBuilder, logger *slog.Logger) DbqCheckExecutor {
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}

	return &DbqCheckExecutorImpl{
		querier: querier,
		builder: builder,
		logger:  logger,
	}
}

type DbqCheckExecutorImpl struct {
	querier DbqQuerier
	builder DbqQueryBuilder
	logger  *slog.Logger
}

func (e *DbqCheckExecutorImpl) ExecuteChecks(ctx context.Context, checks []FlattenedCheck, schema string) []*Verdict {
	verdicts := make([]*Verdict, 0, len(checks))
	for i := range checks {
		if err := ctx.Err(); err != nil {
			verdict := newVerdict(&checks[i])
			e.fail(verdict, err)
			verdicts = append(verdicts, verdict)
			continue
		}
		verdicts = append(verdicts, e.ExecuteCheck(ctx, &checks[i], schema))
	}
	return verdicts
}

func (e *DbqCheckExecutorImpl) ExecuteCheck(ctx context.Context, check *FlattenedCheck, schema string) (verdict *Verdict) {
	verdict = newVerdict(check)

	defer func() {
		if r := recover(); r != nil {
			e.fail(verdict, fmt.Errorf("panic while executing check: %v", r))
		}
	}()

	parsed := ParseCheckExpression(check.Expression, check.Config)
	verdict.Kind = parsed.Kind

	if parsed.Advisory != "" {
		e.logger.Warn("check skipped with warning",
			"table", check.Table,
			"check_expression", check.Expression,
			"advisory", parsed.Advisory)

		verdict.Passed = true
		verdict.Severity = SeverityWarning
		verdict.Message = parsed.Advisory
		return verdict
	}

	if e.querier == nil {
		e.fail(verdict, fmt.Errorf("querier is not provided"))
		return verdict
	}

	if e.builder == nil {
		e.fail(verdict, fmt.Errorf("query builder is not provided"))
		return verdict
	}

	query, err := e.builder.BuildCheckQuery(parsed, check.Config, schema, check.Table)
	if err != nil {
		e.fail(verdict, fmt.Errorf("failed to generate query for check (%s)/(%s.%s): %w", check.Expression, schema, check.Table, err))
		return verdict
	}

	e.logger.Debug("executing query for check",
		"check_expression", check.Expression,
		"check_kind", parsed.Kind,
		"check_query", query.SQL)

	startTime := time.Now()
	if err := e.reduce(ctx, parsed, query, verdict); err != nil {
		e.fail(verdict, fmt.Errorf("failed to execute query for check (%s): %w", check.Expression, err))
		return verdict
	}
	elapsed := time.Since(startTime).Milliseconds()

	e.logger.Debug("query completed in time",
		"check_expression", check.Expression,
		"passed", verdict.Passed,
		"duration_ms", elapsed)

	return verdict
}

func (e *DbqCheckExecutorImpl) reduce(ctx context.Context, parsed *CheckExpression, query *CheckQuery, verdict *Verdict) error {
	row := e.querier.QueryRowContext(ctx, query.SQL, query.Args...)

	switch parsed.Kind {
	case KindRowCount, KindMissingCount, KindDuplicateCount, KindInvalidCount:
		count, err := scanCount(row)
		if err != nil {
			return err
		}
		verdict.Passed = Compare(count, parsed.Operator, parsed.IntThreshold)
		verdict.Actual = count
		verdict.Threshold = parsed.IntThreshold

	case KindInvalidPercent:
		var total, invalid sql.NullInt64
		if err := row.Scan(&total, &invalid); err != nil {
			return fmt.Errorf("failed to scan result: %w", err)
		}

		var percent float64
		if total.Int64 > 0 {
			percent = float64(invalid.Int64) / float64(total.Int64) * 100
		}

		verdict.Passed = Compare(percent, parsed.Operator, parsed.FloatThreshold)
		verdict.Actual = fmt.Sprintf("%.2f%%", percent)
		verdict.Threshold = strconv.FormatFloat(parsed.FloatThreshold, 'f', -1, 64) + "%"
		verdict.InvalidCount = int64Ptr(invalid.Int64)
		verdict.TotalCount = int64Ptr(total.Int64)

	case KindAverage:
		var avg sql.NullFloat64
		if err := row.Scan(&avg); err != nil {
			return fmt.Errorf("failed to scan result: %w", err)
		}

		// AVG over an empty table is NULL (NaN on ClickHouse)
		value := avg.Float64
		if !avg.Valid || math.IsNaN(value) {
			value = 0
		}

		verdict.Passed = Compare(value, parsed.Operator, parsed.FloatThreshold)
		verdict.Actual = math.Round(value*100) / 100
		verdict.Threshold = parsed.FloatThreshold

	case KindTolerance:
		violations, err := scanCount(row)
		if err != nil {
			return err
		}
		verdict.Passed = violations == 0
		verdict.Actual = fmt.Sprintf("%d rows outside tolerance", violations)
		verdict.Threshold = "tolerance " + parsed.ToleranceText
		verdict.Violations = int64Ptr(violations)

	case KindComparison:
		violations, err := scanCount(row)
		if err != nil {
			return err
		}
		verdict.Passed = violations == 0
		verdict.Violations = int64Ptr(violations)

	default:
		return fmt.Errorf("no reduction for check kind %q", parsed.Kind)
	}

	return nil
}

// fail turns the verdict into an execution failure. The declared severity is
// kept.
func (e *DbqCheckExecutorImpl) fail(verdict *Verdict, err error) {
	e.logger.Error("check failed with error",
		"table", verdict.Table,
		"check_expression", verdict.Expression,
		"error", err.Error())

	verdict.Passed = false
	verdict.Message = fmt.Sprintf("check failed with error: %s", err.Error())
	verdict.Error = err.Error()
}

func newVerdict(check *FlattenedCheck) *Verdict {
	severity := check.Severity
	if severity == "" {
		severity = check.Config.Severity()
	}

	return &Verdict{
		Name:       check.DisplayName(),
		Table:      check.Table,
		Expression: check.Expression,
		Severity:   severity,
		Message:    check.DisplayName(),
	}
}

func scanCount(row *sql.Row) (int64, error) {
	var count sql.NullInt64
	if err := row.Scan(&count); err != nil {
		return 0, fmt.Errorf("failed to scan result: %w", err)
	}
	return count.Int64, nil
}
