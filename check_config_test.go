package dbqcontract

import (
	"reflect"
	"testing"
)

func TestCheckConfigAccessors(t *testing.T) {
	cfg := NewCheckConfig(map[string]any{
		"name":         " Primary key uniqueness ",
		"severity":     "warning",
		"tolerance":    0.01,
		"valid values": []any{"A", "B"},
		"valid regex":  "^[A-Z]$",
	})

	if got := cfg.Name(); got != "Primary key uniqueness" {
		t.Errorf("Name() = %q", got)
	}
	if got := cfg.Severity(); got != SeverityWarning {
		t.Errorf("Severity() = %q", got)
	}
	if got, ok := cfg.Tolerance(); !ok || got != "0.01" {
		t.Errorf("Tolerance() = %q, %v", got, ok)
	}
	if got, ok := cfg.ValidValues(); !ok || !reflect.DeepEqual(got, []any{"A", "B"}) {
		t.Errorf("ValidValues() = %v, %v", got, ok)
	}
	if got, ok := cfg.ValidRegex(); !ok || got != "^[A-Z]$" {
		t.Errorf("ValidRegex() = %q, %v", got, ok)
	}
}

func TestCheckConfigDefaults(t *testing.T) {
	cfg := NewCheckConfig(nil)

	if cfg.Name() != "" {
		t.Errorf("expected empty name, got %q", cfg.Name())
	}
	if cfg.Severity() != SeverityCritical {
		t.Errorf("expected default severity %q, got %q", SeverityCritical, cfg.Severity())
	}
	if _, ok := cfg.Tolerance(); ok {
		t.Errorf("expected no tolerance")
	}
	if _, ok := cfg.ValidValues(); ok {
		t.Errorf("expected no valid values")
	}
	if _, ok := cfg.ValidRegex(); ok {
		t.Errorf("expected no valid regex")
	}
}

func TestCheckConfigValidValuesMustBeList(t *testing.T) {
	cfg := NewCheckConfig(map[string]any{"valid values": "A, B"})
	if _, ok := cfg.ValidValues(); ok {
		t.Errorf("a scalar must not be accepted as a valid values list")
	}

	empty := NewCheckConfig(map[string]any{"valid values": []any{}})
	values, ok := empty.ValidValues()
	if !ok || len(values) != 0 {
		t.Errorf("an empty list is still a valid values list, got %v, %v", values, ok)
	}
}

func TestCheckConfigIsolatedFromSource(t *testing.T) {
	raw := map[string]any{"severity": "warning"}
	cfg := NewCheckConfig(raw)
	raw["severity"] = "critical"

	if cfg.Severity() != SeverityWarning {
		t.Errorf("config must not observe changes to the source map")
	}

	copied := cfg.Raw()
	copied["severity"] = "critical"
	if cfg.Severity() != SeverityWarning {
		t.Errorf("config must not observe changes to Raw()")
	}
}

func TestParseTolerance(t *testing.T) {
	tests := []struct {
		input    string
		expected float64
		wantErr  bool
	}{
		{input: "1%", expected: 0.01},
		{input: "0.5%", expected: 0.005},
		{input: " 2 % ", expected: 0.02},
		{input: "0.01", expected: 0.01},
		{input: "0", expected: 0},
		{input: "", wantErr: true},
		{input: "%", wantErr: true},
		{input: "abc", wantErr: true},
		{input: "-1%", wantErr: true},
		{input: "NaN", wantErr: true},
		{input: "Inf", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got, err := ParseTolerance(tt.input)
			if tt.wantErr {
				if err == nil {
					t.Errorf("ParseTolerance(%q) expected error, got %v", tt.input, got)
				}
				return
			}
			if err != nil {
				t.Fatalf("ParseTolerance(%q) unexpected error: %v", tt.input, err)
			}
			if got != tt.expected {
				t.Errorf("ParseTolerance(%q) = %v, expected %v", tt.input, got, tt.expected)
			}
		})
	}
}
