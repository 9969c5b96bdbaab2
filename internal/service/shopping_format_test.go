package service

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func unitPtr(s string) *string { return &s }

func TestFormatIngredientDisplay(t *testing.T) {
	tests := []struct {
		name   string
		amount string
		unit   *string
		want   string
	}{
		{"amount with unit", "2", unitPtr("cups"), "2 cups"},
		{"nil unit", "2", nil, "2"},
		{"empty unit", "3", unitPtr(""), "3"},
		{"n/a unit", "to taste", unitPtr("N/A"), "to taste"},
		{"n/a lowercase", "1", unitPtr("n/a"), "1"},
		{"descriptive without unit", "a pinch", nil, "a pinch"},
		{"whitespace trimmed", "1 ", unitPtr("tbsp "), "1  tbsp"},
		{"empty amount with unit", "", unitPtr("cup"), "cup"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, FormatIngredientDisplay(tt.amount, tt.unit))
		})
	}
}

func TestConsolidateDisplay(t *testing.T) {
	tests := []struct {
		name       string
		quantities []string
		want       string
	}{
		{"empty", nil, ""},
		{"single verbatim", []string{"to taste"}, "to taste"},
		{"single numeric verbatim", []string{"1.50 cups"}, "1.50 cups"},
		{"same unit whole", []string{"2 cups", "1 cups"}, "3 cups"},
		{"fraction sum", []string{"1/2 cup", "1/4 cup"}, "0.75 cup"},
		{"fraction to whole", []string{"1/2 cup", "1/2 cup"}, "1 cup"},
		{"decimal trailing zero stripped", []string{"1 cup", "0.5 cup"}, "1.5 cup"},
		{"unitless counts", []string{"2", "3"}, "5"},
		{"unit mismatch", []string{"2 cups", "100 g"}, "2 cups + 100 g"},
		{"unit vs unitless", []string{"2 cups", "2"}, "2 cups + 2"},
		{"descriptive aborts", []string{"1 tsp", "pinch"}, "1 tsp + pinch"},
		{"squeeze aborts", []string{"1", "a squeeze"}, "1 + a squeeze"},
		{"all descriptive", []string{"to taste", "to taste"}, "to taste + to taste"},
		{"zero denominator", []string{"1/0 cup", "1 cup"}, "1/0 cup + 1 cup"},
		{"bad fraction", []string{"1/2/3 cup", "1 cup"}, "1/2/3 cup + 1 cup"},
		{"non numeric", []string{"some cup", "1 cup"}, "some cup + 1 cup"},
		{"empty entry", []string{"", "1 cup"}, " + 1 cup"},
		{"whitespace entry", []string{"  ", "1 cup"}, "   + 1 cup"},
		{"multi word unit", []string{"1 large can", "2 large can"}, "3 large can"},
		{"collapsed whitespace", []string{"1  cup", "1 cup"}, "2 cup"},
		{"thirds", []string{"1/3 cup", "1/3 cup"}, "0.67 cup"},
		{"three sources", []string{"100 g", "250 g", "50 g"}, "400 g"},
		{"infinity rejected", []string{"inf g", "1 g"}, "inf g + 1 g"},
		{"whole total beyond int64", []string{"1e20 cups", "1e20 cups"}, "200000000000000000000 cups"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ConsolidateDisplay(tt.quantities))
		})
	}
}

func TestConsolidateDisplayIsDeterministic(t *testing.T) {
	in := []string{"1/2 cup", "2 cup", "pinch"}
	first := ConsolidateDisplay(in)
	for i := 0; i < 5; i++ {
		assert.Equal(t, first, ConsolidateDisplay(in))
	}
	assert.Equal(t, []string{"1/2 cup", "2 cup", "pinch"}, in)
}
