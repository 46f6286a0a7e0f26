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
	"log/slog"
	"strings"
)

var ErrCriticalPathFailure = errors.New("critical-path data quality check failed")

// DefaultCriticalPatterns name the checks whose failure aborts a pipeline.
var DefaultCriticalPatterns = []string{"primary key", "order-total"}

// ValidationReport aggregates the verdicts of a validation run.
type ValidationReport struct {
	Passed           []string   `json:"passed"`
	Failed           []string   `json:"failed"`
	Warnings         []string   `json:"warnings"`
	CriticalFailures []string   `json:"critical_failures"`
	PassRate         float64    `json:"pass_rate"`
	Verdicts         []*Verdict `json:"verdicts"`
}

// Summarize builds a report from verdicts. A failed verdict whose name
// contains one of criticalPatterns (case-insensitive) is a critical-path
// failure. The pass rate of an empty run is 100.
func Summarize(verdicts []*Verdict, criticalPatterns []string) *ValidationReport {
	report := &ValidationReport{
		Passed:           []string{},
		Failed:           []string{},
		Warnings:         []string{},
		CriticalFailures: []string{},
		Verdicts:         verdicts,
	}

	for _, verdict := range verdicts {
		if verdict == nil {
			continue
		}

		if verdict.Passed {
			report.Passed = append(report.Passed, verdict.Name)
			if verdict.IsWarning() {
				report.Warnings = append(report.Warnings, verdict.Name)
			}
			continue
		}

		report.Failed = append(report.Failed, verdict.Name)
		if isCriticalPath(verdict.Name, criticalPatterns) {
			report.CriticalFailures = append(report.CriticalFailures, verdict.Name)
		}
	}

	total := len(report.Passed) + len(report.Failed)
	if total == 0 {
		report.PassRate = 100
	} else {
		report.PassRate = 100 * float64(len(report.Passed)) / float64(total)
	}

	return report
}

// Gate returns an error wrapping ErrCriticalPathFailure when the run contains
// critical-path failures. Other failures are not fatal.
func (r *ValidationReport) Gate() error {
	if len(r.CriticalFailures) == 0 {
		return nil
	}
	return fmt.Errorf("%w: %s", ErrCriticalPathFailure, strings.Join(r.CriticalFailures, ", "))
}

func (r *ValidationReport) Log(logger *slog.Logger) {
	for _, verdict := range r.Verdicts {
		if verdict == nil {
			continue
		}

		attrs := []any{
			"table", verdict.Table,
			"check", verdict.Name,
			"severity", verdict.Severity,
			"message", verdict.Message,
		}
		if verdict.Actual != nil {
			attrs = append(attrs, "actual", verdict.Actual)
		}
		if verdict.Threshold != nil {
			attrs = append(attrs, "threshold", verdict.Threshold)
		}

		switch {
		case !verdict.Passed:
			logger.Error("check failed", attrs...)
		case verdict.IsWarning():
			logger.Warn("check passed with warning", attrs...)
		default:
			logger.Info("check passed", attrs...)
		}
	}

	logger.Info("validation summary",
		"passed", len(r.Passed),
		"failed", len(r.Failed),
		"warnings", len(r.Warnings),
		"critical_failures", len(r.CriticalFailures),
		"pass_rate", fmt.Sprintf("%.1f%%", r.PassRate))
}

func isCriticalPath(name string, patterns []string) bool {
	lowered := strings.ToLower(name)
	for _, pattern := range patterns {
		if pattern != "" && strings.Contains(lowered, strings.ToLower(pattern)) {
			return true
		}
	}
	return false
}
