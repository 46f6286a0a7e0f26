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

	"github.com/spf13/cast"
)

// Compare reports whether actual <operator> threshold holds. A nil actual
// never satisfies any operator, including "!=". Unknown operators yield false.
func Compare(actual any, operator string, threshold any) bool {
	if actual == nil || threshold == nil {
		return false
	}

	actualNum, actualErr := toNumber(actual)
	thresholdNum, thresholdErr := toNumber(threshold)

	if actualErr != nil || thresholdErr != nil {
		// non-numeric values only support equality
		a, b := fmt.Sprint(actual), fmt.Sprint(threshold)
		switch operator {
		case "=", "==":
			return a == b
		case "!=":
			return a != b
		default:
			return false
		}
	}

	switch operator {
	case ">":
		return actualNum > thresholdNum
	case ">=":
		return actualNum >= thresholdNum
	case "<":
		return actualNum < thresholdNum
	case "<=":
		return actualNum <= thresholdNum
	case "=", "==":
		return actualNum == thresholdNum
	case "!=":
		return actualNum != thresholdNum
	default:
		return false
	}
}

func toNumber(value any) (float64, error) {
	switch v := value.(type) {
	case bool:
		return 0, fmt.Errorf("not a number: %v", v)
	case []byte:
		return cast.ToFloat64E(string(v))
	}
	return cast.ToFloat64E(value)
}
