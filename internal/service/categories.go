package service

import (
	_ "embed"
	"fmt"
	"strings"

	"gopkg.in/yaml.v3"
)

//go:embed categories.yaml
var categoriesYAML []byte

// CategoryRules holds the default grocery categories and the fix-ups applied to
// categories the model made up.
type CategoryRules struct {
	Defaults    []string          `yaml:"defaults"`
	Corrections map[string]string `yaml:"corrections"`
	Fallback    string            `yaml:"fallback"`
}

// LoadCategoryRules parses the embedded rules file.
func LoadCategoryRules() (*CategoryRules, error) {
	var rules CategoryRules
	if err := yaml.Unmarshal(categoriesYAML, &rules); err != nil {
		return nil, fmt.Errorf("failed to parse category rules: %w", err)
	}
	if len(rules.Defaults) == 0 {
		return nil, fmt.Errorf("category rules define no default categories")
	}
	if rules.Fallback == "" {
		rules.Fallback = "pantry"
	}
	return &rules, nil
}

// Effective returns the user's categories, or the defaults when they have none.
func (r *CategoryRules) Effective(userCategories []string) []string {
	if len(userCategories) > 0 {
		return userCategories
	}
	return r.Defaults
}

// Canonical returns the valid spelling of category, matched case-insensitively.
func Canonical(category string, valid []string) (string, bool) {
	c := strings.TrimSpace(category)
	for _, v := range valid {
		if strings.EqualFold(c, v) {
			return v, true
		}
	}
	return "", false
}

// Closest maps category onto one of valid: exact match, then the corrections table,
// then the most similar name. An empty category gets the first valid one.
func (r *CategoryRules) Closest(category string, valid []string) string {
	if len(valid) == 0 {
		return r.Fallback
	}
	c := strings.ToLower(strings.TrimSpace(category))
	if c == "" {
		return valid[0]
	}
	if v, ok := Canonical(c, valid); ok {
		return v
	}
	if target, ok := r.Corrections[c]; ok {
		if v, ok := Canonical(target, valid); ok {
			return v
		}
	}

	best, bestScore := valid[0], 0.0
	for _, v := range valid {
		if score := similarity(c, strings.ToLower(v)); score > bestScore {
			best, bestScore = v, score
		}
	}
	return best
}

// similarity is 1 minus the normalized Levenshtein distance.
func similarity(a, b string) float64 {
	ra, rb := []rune(a), []rune(b)
	if len(ra) == 0 && len(rb) == 0 {
		return 1
	}

	prev := make([]int, len(rb)+1)
	curr := make([]int, len(rb)+1)
	for j := range prev {
		prev[j] = j
	}
	for i := 1; i <= len(ra); i++ {
		curr[0] = i
		for j := 1; j <= len(rb); j++ {
			cost := 1
			if ra[i-1] == rb[j-1] {
				cost = 0
			}
			curr[j] = min(prev[j]+1, curr[j-1]+1, prev[j-1]+cost)
		}
		prev, curr = curr, prev
	}

	longest := max(len(ra), len(rb))
	return 1 - float64(prev[len(rb)])/float64(longest)
}
