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

package metrics

import (
	"context"
	"fmt"
	"time"

	"github.com/DataBridgeTech/dbqcontract"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/push"
)

const namespace = "dbq"

const (
	OutcomePassed  = "passed"
	OutcomeWarning = "warning"
	OutcomeFailed  = "failed"
	OutcomeError   = "error"
)

// Recorder turns verdicts and reports into Prometheus metrics on its own
// registry, so a one-shot validation run can push them.
type Recorder struct {
	registry         *prometheus.Registry
	checks           *prometheus.CounterVec
	violations       *prometheus.GaugeVec
	duration         *prometheus.HistogramVec
	passRate         *prometheus.GaugeVec
	criticalFailures *prometheus.GaugeVec
}

func NewRecorder() *Recorder {
	r := &Recorder{
		registry: prometheus.NewRegistry(),
		checks: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "checks_total",
			Help:      "Executed data quality checks by outcome.",
		}, []string{"contract", "table", "severity", "outcome"}),
		violations: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "check_violations",
			Help:      "Rows violating a check in the last run.",
		}, []string{"contract", "table", "check"}),
		duration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "check_duration_seconds",
			Help:      "Time spent executing a check.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"contract", "kind"}),
		passRate: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "pass_rate",
			Help:      "Percentage of passed checks in the last run.",
		}, []string{"contract"}),
		criticalFailures: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "critical_failures",
			Help:      "Critical-path failures in the last run.",
		}, []string{"contract"}),
	}

	r.registry.MustRegister(r.checks, r.violations, r.duration, r.passRate, r.criticalFailures)
	return r
}

func (r *Recorder) Registry() *prometheus.Registry {
	return r.registry
}

func (r *Recorder) RecordVerdict(contractID string, verdict *dbqcontract.Verdict, elapsed time.Duration) {
	if verdict == nil {
		return
	}

	r.checks.WithLabelValues(contractID, verdict.Table, verdict.Severity, Outcome(verdict)).Inc()
	r.duration.WithLabelValues(contractID, string(verdict.Kind)).Observe(elapsed.Seconds())

	if verdict.Violations != nil {
		r.violations.WithLabelValues(contractID, verdict.Table, verdict.Name).Set(float64(*verdict.Violations))
	}
}

func (r *Recorder) RecordReport(contractID string, report *dbqcontract.ValidationReport) {
	if report == nil {
		return
	}
	r.passRate.WithLabelValues(contractID).Set(report.PassRate)
	r.criticalFailures.WithLabelValues(contractID).Set(float64(len(report.CriticalFailures)))
}

// Push sends every recorded metric to a Prometheus Pushgateway.
func (r *Recorder) Push(ctx context.Context, url string, job string) error {
	if err := push.New(url, job).Gatherer(r.registry).PushContext(ctx); err != nil {
		return fmt.Errorf("failed to push metrics to %s: %w", url, err)
	}
	return nil
}

func Outcome(verdict *dbqcontract.Verdict) string {
	switch {
	case verdict.Error != "":
		return OutcomeError
	case !verdict.Passed:
		return OutcomeFailed
	case verdict.IsWarning():
		return OutcomeWarning
	default:
		return OutcomePassed
	}
}
