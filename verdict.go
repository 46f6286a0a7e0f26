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

// Verdict is the outcome of executing one check.
type Verdict struct {
	Name         string    `json:"name"`
	Table        string    `json:"table"`
	Expression   string    `json:"expression"`
	Kind         CheckKind `json:"kind"`
	Passed       bool      `json:"passed"`
	Severity     string    `json:"severity"`
	Message      string    `json:"message"`
	Actual       any       `json:"actual,omitempty"`
	Threshold    any       `json:"threshold,omitempty"`
	Violations   *int64    `json:"violations,omitempty"`
	InvalidCount *int64    `json:"invalid_count,omitempty"`
	TotalCount   *int64    `json:"total_count,omitempty"`
	Error        string    `json:"error,omitempty"`
}

// IsWarning reports whether the verdict was downgraded to an advisory
// warning or declared with warning severity.
func (v *Verdict) IsWarning() bool {
	return v.Severity == SeverityWarning
}

func int64Ptr(v int64) *int64 {
	return &v
}
