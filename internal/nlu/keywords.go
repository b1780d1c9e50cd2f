package nlu

import (
	"strings"

	"github.com/Veraticus/ledgervox/internal/model"
)

func lowered(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}

// categoryRule pairs a category with the keywords that select it.
type categoryRule struct {
	category string
	keywords []string
}

// categoryRules is the deterministic categorization table, evaluated in
// order with first match winning. Keep it a data table: the precedence is
// part of the contract and is tested directly.
var categoryRules = []categoryRule{
	{model.CategoryFood, []string{
		"coffee", "starbucks", "food", "lunch", "dinner", "breakfast",
		"restaurant", "groceries", "grocery", "pizza", "takeout", "snack",
	}},
	{model.CategoryTransport, []string{
		"gas", "uber", "lyft", "parking", "taxi", "transit", "train", "bus fare",
	}},
	{model.CategoryShopping, []string{
		"shop", "amazon", "walmart", "target", "clothes", "shoes", "electronics",
	}},
	{model.CategoryEntertainment, []string{
		"movie", "netflix", "spotify", "concert", "game", "streaming",
	}},
	{model.CategoryBills, []string{
		"rent", "electric", "internet", "phone bill", "utility", "utilities",
	}},
	{model.CategoryHealthcare, []string{
		"doctor", "pharmacy", "medicine", "dentist", "hospital",
	}},
	{model.CategoryEducation, []string{
		"book", "course", "tuition", "textbook",
	}},
	{model.CategoryPersonalCare, []string{
		"haircut", "gym", "salon", "spa",
	}},
	{model.CategoryTravel, []string{
		"hotel", "flight", "airbnb", "vacation",
	}},
}

// categoryFor scans the rule table for the first keyword hit, defaulting to
// Other.
func categoryFor(lower string) string {
	for _, rule := range categoryRules {
		for _, kw := range rule.keywords {
			if strings.Contains(lower, kw) {
				return rule.category
			}
		}
	}
	return model.CategoryOther
}

// knownBrands maps lowercase brand tokens to their display names. Checked
// in order before the capitalized-token heuristic so "spent 50 at starbucks"
// still yields a clean merchant.
var knownBrands = []struct {
	token string
	name  string
}{
	{"starbucks", "Starbucks"},
	{"walmart", "Walmart"},
	{"target", "Target"},
	{"amazon", "Amazon"},
	{"uber", "Uber"},
	{"lyft", "Lyft"},
	{"netflix", "Netflix"},
	{"spotify", "Spotify"},
	{"costco", "Costco"},
	{"shell", "Shell"},
	{"chipotle", "Chipotle"},
	{"mcdonalds", "McDonald's"},
}

// merchantStopwords are capitalized tokens that never name a merchant.
var merchantStopwords = map[string]struct{}{
	"i":     {},
	"the":   {},
	"and":   {},
	"spent": {},
	"paid":  {},
	"just":  {},
	"today": {},
}

// guessMerchant derives a merchant from an utterance: a known brand if one
// appears, otherwise the first capitalized non-stopword token, otherwise
// "Unknown".
func guessMerchant(input string) string {
	lower := lowered(input)
	for _, brand := range knownBrands {
		if strings.Contains(lower, brand.token) {
			return brand.name
		}
	}

	for _, word := range strings.Fields(input) {
		trimmed := strings.Trim(word, ".,!?$")
		if len(trimmed) <= 2 {
			continue
		}
		if _, stop := merchantStopwords[strings.ToLower(trimmed)]; stop {
			continue
		}
		if trimmed[0] >= 'A' && trimmed[0] <= 'Z' {
			return trimmed
		}
	}

	return "Unknown"
}
