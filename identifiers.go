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
	"fmt"
	"regexp"
	"strings"
)

var (
	ErrUnsafeIdentifier = errors.New("unsafe identifier")
	ErrUnsafeExpression = errors.New("unsafe expression")
)

var (
	safeIdentifierRegex = regexp.MustCompile(`^[A-Za-z0-9_]+$`)
	stringLiteralRegex  = regexp.MustCompile(`'[^'\\]*'`)
	safeExpressionRegex = regexp.MustCompile(`^[\w\s.+\-*/%(),<>=!]*$`)
	subqueryRegex       = regexp.MustCompile(`(?i)\bselect\b`)
)

// ValidateIdentifier rejects anything but a plain alphanumeric/underscore
// name, since schema, table and column names are interpolated into queries.
func ValidateIdentifier(name string) error {
	if !safeIdentifierRegex.MatchString(name) {
		return fmt.Errorf("%w: %q", ErrUnsafeIdentifier, name)
	}
	return nil
}

// ValidateExpressionText checks free-form expression text that is embedded
// into a query as a predicate or an arithmetic operand. Single-quoted string
// literals are allowed; outside of them only identifiers, numbers,
// arithmetic and comparison operators are accepted, and subqueries are not.
func ValidateExpressionText(expression string) error {
	if strings.TrimSpace(expression) == "" {
		return fmt.Errorf("%w: empty expression", ErrUnsafeExpression)
	}

	stripped := stringLiteralRegex.ReplaceAllString(expression, "''")
	if strings.Contains(stripped, "--") || strings.Contains(stripped, "/*") {
		return fmt.Errorf("%w: comments are not allowed: %q", ErrUnsafeExpression, expression)
	}

	withoutLiterals := strings.ReplaceAll(stripped, "''", " ")
	if !safeExpressionRegex.MatchString(withoutLiterals) {
		return fmt.Errorf("%w: %q", ErrUnsafeExpression, expression)
	}
	if subqueryRegex.MatchString(withoutLiterals) {
		return fmt.Errorf("%w: subqueries are not allowed: %q", ErrUnsafeExpression, expression)
	}

	return nil
}
