package service

import (
	"math"
	"strconv"
	"strings"
)

// descriptiveTerms mark amounts that cannot be summed.
var descriptiveTerms = []string{"pinch", "to taste", "handful", "dash", "splash", "squeeze"}

func isDescriptive(s string) bool {
	lower := strings.ToLower(s)
	for _, term := range descriptiveTerms {
		if strings.Contains(lower, term) {
			return true
		}
	}
	return false
}

// FormatIngredientDisplay renders a single ingredient amount for a shopping list.
// A missing unit or the "N/A" sentinel leaves the amount as is, so "to taste" or "2" (eggs) pass through.
func FormatIngredientDisplay(amount string, unit *string) string {
	if unit == nil || *unit == "" || strings.EqualFold(*unit, "N/A") {
		return amount
	}
	return strings.TrimSpace(amount + " " + *unit)
}

// ConsolidateDisplay merges the quantities of every recipe contributing to one item, in order.
// Quantities sharing a unit are summed ("1 cup" + "1/2 cup" = "1.5 cup"); anything else is joined with " + ".
func ConsolidateDisplay(quantities []string) string {
	switch len(quantities) {
	case 0:
		return ""
	case 1:
		return quantities[0]
	}

	if total, unit, ok := sumQuantities(quantities); ok {
		return strings.TrimSpace(formatTotal(total) + " " + unit)
	}
	return strings.Join(quantities, " + ")
}

func sumQuantities(quantities []string) (float64, string, bool) {
	var (
		total float64
		unit  string
		first = true
	)
	for _, q := range quantities {
		if q == "" || isDescriptive(q) {
			return 0, "", false
		}

		fields := strings.Fields(q)
		if len(fields) == 0 {
			return 0, "", false
		}
		u := strings.Join(fields[1:], " ")
		if first {
			unit, first = u, false
		} else if u != unit {
			return 0, "", false
		}

		n, ok := parseAmount(fields[0])
		if !ok {
			return 0, "", false
		}
		total += n
	}
	return total, unit, true
}

// parseAmount accepts a decimal number or a simple "a/b" fraction.
func parseAmount(tok string) (float64, bool) {
	if strings.Contains(tok, "/") {
		parts := strings.Split(tok, "/")
		if len(parts) != 2 {
			return 0, false
		}
		num, err := strconv.ParseFloat(parts[0], 64)
		if err != nil {
			return 0, false
		}
		den, err := strconv.ParseFloat(parts[1], 64)
		if err != nil || den == 0 {
			return 0, false
		}
		return finite(num / den)
	}
	n, err := strconv.ParseFloat(tok, 64)
	if err != nil {
		return 0, false
	}
	return finite(n)
}

func finite(f float64) (float64, bool) {
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, false
	}
	return f, true
}

func formatTotal(total float64) string {
	if total == math.Trunc(total) {
		return strconv.FormatFloat(total, 'f', 0, 64)
	}
	s := strconv.FormatFloat(total, 'f', 2, 64)
	s = strings.TrimRight(s, "0")
	return strings.TrimSuffix(s, ".")
}
