package allocation

import (
	"strings"
	"unicode"
	"unicode/utf8"
)

// InvestmentsCategory is the reserved label that always sorts first in any
// ordered view of an owner's record set.
const InvestmentsCategory = "Investments"

// SuggestedCategories is the list of well-known category labels offered to
// clients as autocomplete suggestions.
var SuggestedCategories = []string{
	"Food",
	"Housing",
	"Transportation",
	"Entertainment",
	"Shopping",
	"Utilities",
	"Healthcare",
	"Insurance",
	"Savings",
	"Investments",
	"Education",
	"Travel",
	"Groceries",
	"Personal Care",
	"Gifts",
}

// NormalizeCategory resolves a free-text category label into its comparison
// key and canonical display form. The key is the trimmed, whitespace-collapsed,
// lower-cased label and decides merge targets; the display form carries the
// same collapse with each word capitalized and is what gets stored and
// rendered. Returns ErrEmptyCategory for empty or whitespace-only input.
func NormalizeCategory(raw string) (key string, display string, err error) {
	words := strings.Fields(raw)
	if len(words) == 0 {
		return "", "", ErrEmptyCategory
	}

	capitalized := make([]string, len(words))
	for i, w := range words {
		r, size := utf8.DecodeRuneInString(w)
		capitalized[i] = string(unicode.ToUpper(r)) + strings.ToLower(w[size:])
	}

	display = strings.Join(capitalized, " ")
	key = strings.ToLower(display)
	return key, display, nil
}

// IsInvestments reports whether a category label resolves to the reserved
// Investments category.
func IsInvestments(category string) bool {
	return strings.EqualFold(strings.TrimSpace(category), InvestmentsCategory)
}
