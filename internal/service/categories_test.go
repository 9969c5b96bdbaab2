package service

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadCategoryRules(t *testing.T) {
	rules, err := LoadCategoryRules()
	require.NoError(t, err)

	assert.Equal(t, []string{
		"produce", "butchery", "dry-goods", "chilled", "frozen",
		"pantry", "bakery", "deli", "beverages", "spices",
	}, rules.Defaults)
	assert.Equal(t, "chilled", rules.Corrections["dairy"])
	assert.Equal(t, "pantry", rules.Fallback)
}

func TestCategoryRulesEffective(t *testing.T) {
	rules, err := LoadCategoryRules()
	require.NoError(t, err)

	assert.Equal(t, rules.Defaults, rules.Effective(nil))
	assert.Equal(t, []string{"Fridge", "Shelf"}, rules.Effective([]string{"Fridge", "Shelf"}))
}

func TestCategoryRulesClosest(t *testing.T) {
	rules, err := LoadCategoryRules()
	require.NoError(t, err)

	tests := []struct {
		category string
		valid    []string
		want     string
	}{
		{"Produce", rules.Defaults, "produce"},
		{"dairy", rules.Defaults, "chilled"},
		{"Meat", rules.Defaults, "butchery"},
		{"spice", rules.Defaults, "spices"},
		{"drygoods", rules.Defaults, "dry-goods"},
		{"", rules.Defaults, "produce"},
		{"dairy", []string{"Fridge", "Shelf"}, "Fridge"},
		{"fridge items", []string{"Fridge", "Shelf"}, "Fridge"},
		{"anything", nil, "pantry"},
	}

	for _, tt := range tests {
		t.Run(tt.category, func(t *testing.T) {
			assert.Equal(t, tt.want, rules.Closest(tt.category, tt.valid))
		})
	}
}

func TestSimilarity(t *testing.T) {
	assert.Equal(t, 1.0, similarity("abc", "abc"))
	assert.Equal(t, 1.0, similarity("", ""))
	assert.Equal(t, 0.0, similarity("abc", "xyz"))
	assert.InDelta(t, 0.833, similarity("spice", "spices"), 0.001)
}
