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
	"fmt"
	"math"
	"regexp"
	"strconv"
	"strings"
)

// CheckKind is the shape a check expression was classified into.
type CheckKind string

const (
	KindRowCount       CheckKind = "row_count"
	KindMissingCount   CheckKind = "missing_count"
	KindDuplicateCount CheckKind = "duplicate_count"
	KindInvalidPercent CheckKind = "invalid_percent"
	KindInvalidCount   CheckKind = "invalid_count"
	KindAverage        CheckKind = "avg"
	KindTolerance      CheckKind = "tolerance"
	KindComparison     CheckKind = "comparison"
	KindUnsupported    CheckKind = "unsupported"
)

// CheckExpression is the parsed form of a check expression. Which fields are
// set depends on Kind.
type CheckExpression struct {
	Kind       CheckKind
	Expression string

	// Column is set for every column-scoped function (missing_count, avg, ...).
	Column string

	Operator       string
	IntThreshold   int64
	FloatThreshold float64

	// Tolerance checks: Left = Right within Tolerance.
	Left          string
	Right         string
	Tolerance     float64
	ToleranceText string

	// Comparison checks. Field/NumericValue are set when the left side is a
	// bare column and the right side a number; otherwise IsLiteral is set and
	// the expression is used as a predicate as-is.
	Field        string
	NumericValue float64
	IsLiteral    bool

	// Advisory is set when the check cannot be evaluated as configured and
	// must be reported as a warning instead of being executed.
	Advisory string
}

// comparisonOperators is ordered so that multi-character operators are
// matched before their single-character prefixes.
var comparisonOperators = []string{">=", "<=", "!=", "==", ">", "<", "="}

var (
	rowCountCue    = regexp.MustCompile(`\brow_count\b`)
	avgRowCue      = regexp.MustCompile(`\bavg_row\b`)
	rowCountRegex  = regexp.MustCompile(`\brow_count(?:\(\s*\))?\s*([<>=!]+)\s*(\d+)`)
	missingCue     = regexp.MustCompile(`\bmissing_count\s*\(`)
	missingRegex   = regexp.MustCompile(`\bmissing_count\((\w+)\)\s*([<>=!]+)\s*(\d+)`)
	duplicateCue   = regexp.MustCompile(`\bduplicate_count\s*\(`)
	duplicateRegex = regexp.MustCompile(`\bduplicate_count\((\w+)\)\s*([<>=!]+)\s*(\d+)`)
	invalidPctCue  = regexp.MustCompile(`\binvalid_percent\s*\(`)
	invalidPctRe   = regexp.MustCompile(`\binvalid_percent\((\w+)\)\s*([<>=!]+)\s*(\d+(?:\.\d+)?)\s*%?`)
	invalidCntCue  = regexp.MustCompile(`\binvalid_count\s*\(`)
	invalidCntRe   = regexp.MustCompile(`\binvalid_count\((\w+)\)\s*([<>=!]+)?\s*(\d+)?`)
	avgCue         = regexp.MustCompile(`\bavg_row\s*\(|^\s*avg\s*\(`)
	avgRegex       = regexp.MustCompile(`\bavg(?:_row)?\((\w+)\)\s*([<>=!]+)\s*(\d+(?:\.\d+)?)`)
	toleranceRegex = regexp.MustCompile(`^([^<>=!]+?)\s*=\s*([^<>=!]+)$`)
	identRegex     = regexp.MustCompile(`^\w+$`)
)

type expressionMatcher struct {
	kind  CheckKind
	cue   func(expression string, cfg CheckConfig) bool
	parse func(check *CheckExpression, cfg CheckConfig) bool
}

// expressionMatchers are evaluated in priority order; the first cue that
// matches decides the kind of the expression.
var expressionMatchers = []expressionMatcher{
	{
		kind: KindRowCount,
		cue: func(expression string, _ CheckConfig) bool {
			return rowCountCue.MatchString(expression) && !avgRowCue.MatchString(expression)
		},
		parse: parseRowCount,
	},
	{
		kind:  KindMissingCount,
		cue:   matchCue(missingCue),
		parse: parseColumnCount(missingRegex),
	},
	{
		kind:  KindDuplicateCount,
		cue:   matchCue(duplicateCue),
		parse: parseColumnCount(duplicateRegex),
	},
	{
		kind:  KindInvalidPercent,
		cue:   matchCue(invalidPctCue),
		parse: parseInvalidPercent,
	},
	{
		kind:  KindInvalidCount,
		cue:   matchCue(invalidCntCue),
		parse: parseInvalidCount,
	},
	{
		kind:  KindAverage,
		cue:   matchCue(avgCue),
		parse: parseAverage,
	},
	{
		kind: KindTolerance,
		cue: func(_ string, cfg CheckConfig) bool {
			return cfg.Has(ConfigKeyTolerance)
		},
		parse: parseTolerance,
	},
	{
		kind: KindComparison,
		cue: func(expression string, _ CheckConfig) bool {
			_, _, ok := splitComparison(expression)
			return ok
		},
		parse: parseComparison,
	},
}

// ParseCheckExpression classifies a check expression. It never fails: an
// expression that matches no shape, or whose shape is recognized but
// malformed, is returned as KindUnsupported with an Advisory.
func ParseCheckExpression(expression string, cfg CheckConfig) *CheckExpression {
	check := &CheckExpression{
		Expression: strings.TrimSpace(expression),
	}

	for _, matcher := range expressionMatchers {
		if !matcher.cue(check.Expression, cfg) {
			continue
		}

		check.Kind = matcher.kind
		if !matcher.parse(check, cfg) {
			return unsupported(check.Expression, fmt.Sprintf("malformed %s expression", matcher.kind))
		}
		return check
	}

	return unsupported(check.Expression, "")
}

func unsupported(expression string, reason string) *CheckExpression {
	advisory := fmt.Sprintf("unsupported check (skipped): %s", expression)
	if reason != "" {
		advisory = fmt.Sprintf("%s (%s)", advisory, reason)
	}

	return &CheckExpression{
		Kind:       KindUnsupported,
		Expression: expression,
		Advisory:   advisory,
	}
}

func matchCue(re *regexp.Regexp) func(string, CheckConfig) bool {
	return func(expression string, _ CheckConfig) bool {
		return re.MatchString(expression)
	}
}

func parseRowCount(check *CheckExpression, _ CheckConfig) bool {
	matches := rowCountRegex.FindStringSubmatch(check.Expression)
	if matches == nil {
		return false
	}

	threshold, err := strconv.ParseInt(matches[2], 10, 64)
	if err != nil {
		return false
	}

	check.Operator = matches[1]
	check.IntThreshold = threshold
	return true
}

func parseColumnCount(re *regexp.Regexp) func(*CheckExpression, CheckConfig) bool {
	return func(check *CheckExpression, _ CheckConfig) bool {
		matches := re.FindStringSubmatch(check.Expression)
		if matches == nil {
			return false
		}

		threshold, err := strconv.ParseInt(matches[3], 10, 64)
		if err != nil {
			return false
		}

		check.Column = matches[1]
		check.Operator = matches[2]
		check.IntThreshold = threshold
		return true
	}
}

func parseInvalidPercent(check *CheckExpression, cfg CheckConfig) bool {
	matches := invalidPctRe.FindStringSubmatch(check.Expression)
	if matches == nil {
		return false
	}

	threshold, err := strconv.ParseFloat(matches[3], 64)
	if err != nil {
		return false
	}

	check.Column = matches[1]
	check.Operator = matches[2]
	check.FloatThreshold = threshold

	if _, ok := cfg.ValidRegex(); !ok {
		check.Advisory = fmt.Sprintf("invalid_percent requires '%s' config: %s", ConfigKeyValidRegex, check.Expression)
	}
	return true
}

func parseInvalidCount(check *CheckExpression, cfg CheckConfig) bool {
	matches := invalidCntRe.FindStringSubmatch(check.Expression)
	if matches == nil {
		return false
	}

	check.Column = matches[1]
	check.Operator = "="
	if matches[2] != "" {
		check.Operator = matches[2]
	}

	if matches[3] != "" {
		threshold, err := strconv.ParseInt(matches[3], 10, 64)
		if err != nil {
			return false
		}
		check.IntThreshold = threshold
	}

	if _, ok := cfg.ValidValues(); !ok {
		check.Advisory = fmt.Sprintf("invalid_count requires '%s' config: %s", ConfigKeyValidValues, check.Expression)
	}
	return true
}

func parseAverage(check *CheckExpression, _ CheckConfig) bool {
	matches := avgRegex.FindStringSubmatch(check.Expression)
	if matches == nil {
		return false
	}

	threshold, err := strconv.ParseFloat(matches[3], 64)
	if err != nil {
		return false
	}

	check.Column = matches[1]
	check.Operator = matches[2]
	check.FloatThreshold = threshold
	return true
}

func parseTolerance(check *CheckExpression, cfg CheckConfig) bool {
	toleranceText, _ := cfg.Tolerance()
	check.ToleranceText = toleranceText

	matches := toleranceRegex.FindStringSubmatch(check.Expression)
	if matches == nil {
		check.Advisory = fmt.Sprintf("cannot parse tolerance check: %s", check.Expression)
		return true
	}

	tolerance, err := ParseTolerance(toleranceText)
	if err != nil {
		check.Advisory = fmt.Sprintf("tolerance config %q is not a percentage or fraction: %s", toleranceText, check.Expression)
		return true
	}

	check.Left = strings.TrimSpace(matches[1])
	check.Right = strings.TrimSpace(matches[2])
	check.Tolerance = tolerance
	return true
}

func parseComparison(check *CheckExpression, _ CheckConfig) bool {
	sides, operator, ok := splitComparison(check.Expression)
	if !ok {
		return false
	}

	check.Operator = operator
	left := strings.TrimSpace(sides[0])
	right := strings.TrimSpace(sides[1])

	if identRegex.MatchString(left) {
		if value, err := strconv.ParseFloat(right, 64); err == nil && !math.IsNaN(value) && !math.IsInf(value, 0) {
			check.Field = left
			check.NumericValue = value
			return true
		}
	}

	check.IsLiteral = true
	return true
}

// splitComparison splits an expression at the first occurrence of the
// highest-priority operator it contains.
func splitComparison(expression string) ([2]string, string, bool) {
	for _, operator := range comparisonOperators {
		if idx := strings.Index(expression, operator); idx >= 0 {
			return [2]string{expression[:idx], expression[idx+len(operator):]}, operator, true
		}
	}
	return [2]string{}, "", false
}
