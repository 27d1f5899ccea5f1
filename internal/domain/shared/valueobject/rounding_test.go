package valueobject

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func d(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func TestRounding_Round(t *testing.T) {
	tests := []struct {
		name     string
		decimals int
		in       string
		want     string
	}{
		{"half to even down", 2, "2.345", "2.34"},
		{"half to even up", 2, "2.355", "2.36"},
		{"above half", 2, "2.3451", "2.35"},
		{"zero decimals", 0, "2.5", "2"},
		{"negative scale clamps", -1, "7.5", "8"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := NewRounding(tt.decimals).Round(d(tt.in))
			assert.True(t, got.Equal(d(tt.want)), "got %s", got)
		})
	}
}

func TestSnapToStep(t *testing.T) {
	tests := []struct {
		name   string
		amount string
		step   string
		want   string
	}{
		{"positive step rounds up", "18.03", "0.05", "18.05"},
		{"positive step rounds down", "18.02", "0.05", "18.00"},
		{"positive step midpoint goes away from zero", "18.025", "0.05", "18.05"},
		{"negative step truncates", "18.04", "-0.05", "18.00"},
		{"negative step keeps exact multiples", "18.05", "-0.05", "18.05"},
		{"zero step is identity", "18.03", "0", "18.03"},
		{"whole unit step", "17.50", "1", "18"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := SnapToStep(d(tt.amount), d(tt.step))
			assert.True(t, got.Equal(d(tt.want)), "got %s", got)
		})
	}
}
