package money

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func TestRound2(t *testing.T) {
	tests := []struct {
		name  string
		input float64
		want  string
	}{
		{name: "already cents", input: 928.85, want: "928.85"},
		{name: "rounds down", input: 531.2549, want: "531.25"},
		{name: "rounds up", input: 397.6012, want: "397.6"},
		{name: "half to even down", input: 0.125, want: "0.12"},
		{name: "half to even up", input: 0.375, want: "0.38"},
		{name: "tiny negative is zero", input: -6.9e-9, want: "0"},
		{name: "zero", input: 0, want: "0"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Round2(tt.input)
			assert.True(t, got.Equal(decimal.RequireFromString(tt.want)), "Round2(%v) = %s, want %s", tt.input, got, tt.want)
		})
	}
}

func TestRoundExact(t *testing.T) {
	tests := []struct {
		name  string
		input float64
		want  string
	}{
		{name: "stored above tie", input: 1013.365, want: "1013.37"},
		{name: "stored below tie", input: 2.675, want: "2.67"},
		{name: "exact tie to even", input: 0.125, want: "0.12"},
		{name: "exact tie up to even", input: 0.375, want: "0.38"},
		{name: "whole", input: 1000, want: "1000"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := RoundExact(tt.input)
			assert.True(t, got.Equal(decimal.RequireFromString(tt.want)), "RoundExact(%v) = %s, want %s", tt.input, got, tt.want)
		})
	}

	assert.True(t, Round2(2.675).Equal(decimal.RequireFromString("2.68")))
}
