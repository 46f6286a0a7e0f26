package dbqcontract

import "testing"

func TestCompare(t *testing.T) {
	tests := []struct {
		name      string
		actual    any
		operator  string
		threshold any
		expected  bool
	}{
		{"greater than", 10, ">", 0, true},
		{"greater than equal values", 0, ">", 0, false},
		{"greater or equal", 5, ">=", 5, true},
		{"less than", 3, "<", 4, true},
		{"less or equal", 5, "<=", 4, false},
		{"equal", int64(0), "=", 0, true},
		{"double equal", 7.0, "==", int64(7), true},
		{"not equal", 1, "!=", 2, true},
		{"not equal same value", 2, "!=", 2, false},
		{"float vs int", 99.99, ">", 100, false},
		{"numeric strings", "12", ">", "3", true},
		{"numeric byte slice", []byte("42"), "=", 42, true},
		{"nil actual", nil, "=", 0, false},
		{"nil actual never differs", nil, "!=", 0, false},
		{"nil threshold", 1, ">", nil, false},
		{"unknown operator", 1, "<>", 2, false},
		{"string equality", "active", "=", "active", true},
		{"string inequality", "active", "!=", "closed", true},
		{"string ordering unsupported", "b", ">", "a", false},
		{"bool is not numeric", true, "=", 1, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Compare(tt.actual, tt.operator, tt.threshold); got != tt.expected {
				t.Errorf("Compare(%v, %q, %v) = %v, expected %v", tt.actual, tt.operator, tt.threshold, got, tt.expected)
			}
		})
	}
}
