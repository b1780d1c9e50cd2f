package nlu

import (
	"regexp"
	"strconv"
	"strings"
)

// amountRe matches the first dollar amount token in an utterance: an
// optional $, optional thousands separators, and up to two decimal places.
var amountRe = regexp.MustCompile(`\$?(\d{1,3}(?:,\d{3})+(?:\.\d{1,2})?|\d+(?:\.\d{1,2})?)`)

// parseAmount extracts the first numeric amount from text. It never fails on
// malformed input; the second return is false when no amount is present.
func parseAmount(text string) (float64, bool) {
	match := amountRe.FindStringSubmatch(text)
	if match == nil {
		return 0, false
	}

	cleaned := strings.ReplaceAll(match[1], ",", "")
	amount, err := strconv.ParseFloat(cleaned, 64)
	if err != nil {
		return 0, false
	}
	return amount, true
}

// formatAmount renders an amount the way a person would say it: whole
// dollars without trailing zeros, cents with two places.
func formatAmount(amount float64) string {
	if amount == float64(int64(amount)) {
		return strconv.FormatInt(int64(amount), 10)
	}
	return strconv.FormatFloat(amount, 'f', 2, 64)
}
