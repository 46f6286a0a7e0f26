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
	"strconv"
	"strings"

	"github.com/spf13/cast"
)

const (
	ConfigKeyName        = "name"
	ConfigKeySeverity    = "severity"
	ConfigKeyTolerance   = "tolerance"
	ConfigKeyValidValues = "valid values"
	ConfigKeyValidRegex  = "valid regex"
)

const (
	SeverityCritical = "critical"
	SeverityWarning  = "warning"
)

// CheckConfig holds the optional tuning parameters attached to a check
// declaration. It is a read-only view: accessors never fail and fall back
// to defined defaults when a key is absent.
type CheckConfig struct {
	raw map[string]any
}

func NewCheckConfig(raw map[string]any) CheckConfig {
	copied := make(map[string]any, len(raw))
	for k, v := range raw {
		copied[k] = v
	}
	return CheckConfig{raw: copied}
}

func (c CheckConfig) Has(key string) bool {
	_, ok := c.raw[key]
	return ok
}

// Raw returns a copy of the underlying mapping.
func (c CheckConfig) Raw() map[string]any {
	copied := make(map[string]any, len(c.raw))
	for k, v := range c.raw {
		copied[k] = v
	}
	return copied
}

func (c CheckConfig) Name() string {
	return strings.TrimSpace(cast.ToString(c.raw[ConfigKeyName]))
}

// Severity returns the declared severity, "critical" when none is set.
func (c CheckConfig) Severity() string {
	severity := strings.TrimSpace(cast.ToString(c.raw[ConfigKeySeverity]))
	if severity == "" {
		return SeverityCritical
	}
	return severity
}

// Tolerance returns the raw tolerance text. Numeric YAML values (0.01) are
// rendered back to their shortest decimal form.
func (c CheckConfig) Tolerance() (string, bool) {
	value, ok := c.raw[ConfigKeyTolerance]
	if !ok || value == nil {
		return "", false
	}

	switch v := value.(type) {
	case float64:
		return strconv.FormatFloat(v, 'f', -1, 64), true
	case float32:
		return strconv.FormatFloat(float64(v), 'f', -1, 32), true
	}

	s, err := cast.ToStringE(value)
	if err != nil {
		return "", false
	}
	return strings.TrimSpace(s), true
}

// ValidValues returns the enum of accepted values. Only a YAML sequence counts
// as a valid values list.
func (c CheckConfig) ValidValues() ([]any, bool) {
	value, ok := c.raw[ConfigKeyValidValues]
	if !ok || value == nil {
		return nil, false
	}

	switch v := value.(type) {
	case []any:
		return append([]any(nil), v...), true
	case []string:
		values := make([]any, len(v))
		for i, s := range v {
			values[i] = s
		}
		return values, true
	}

	return nil, false
}

func (c CheckConfig) ValidRegex() (string, bool) {
	value, ok := c.raw[ConfigKeyValidRegex]
	if !ok || value == nil {
		return "", false
	}

	pattern, err := cast.ToStringE(value)
	if err != nil || pattern == "" {
		return "", false
	}
	return pattern, true
}

// ParseTolerance converts a tolerance given either as a percentage ("1%")
// or as a bare fraction ("0.01") into a fraction.
func ParseTolerance(tolerance string) (float64, error) {
	tolerance = strings.TrimSpace(tolerance)
	if tolerance == "" {
		return 0, fmt.Errorf("empty tolerance")
	}

	isPercent := strings.HasSuffix(tolerance, "%")
	number := strings.TrimSpace(strings.TrimSuffix(tolerance, "%"))

	value, err := strconv.ParseFloat(number, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid tolerance %q: %w", tolerance, err)
	}
	if math.IsNaN(value) || math.IsInf(value, 0) {
		return 0, fmt.Errorf("invalid tolerance %q: not a finite number", tolerance)
	}

	if isPercent {
		value = value / 100
	}

	if value < 0 {
		return 0, fmt.Errorf("invalid tolerance %q: must not be negative", tolerance)
	}

	return value, nil
}
