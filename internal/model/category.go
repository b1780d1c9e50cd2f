// Package model defines the core data types shared across the application.
package model

// Expense categories. The names are a compatibility surface consumed by
// clients and must not be changed.
const (
	CategoryFood          = "Food & Dining"
	CategoryTransport     = "Transportation"
	CategoryShopping      = "Shopping"
	CategoryEntertainment = "Entertainment"
	CategoryBills         = "Bills & Utilities"
	CategoryHealthcare    = "Healthcare"
	CategoryEducation     = "Education"
	CategoryPersonalCare  = "Personal Care"
	CategoryTravel        = "Travel"
	CategoryOther         = "Other"
)

// categories holds the fixed enumeration in presentation order.
var categories = []string{
	CategoryFood,
	CategoryTransport,
	CategoryShopping,
	CategoryEntertainment,
	CategoryBills,
	CategoryHealthcare,
	CategoryEducation,
	CategoryPersonalCare,
	CategoryTravel,
	CategoryOther,
}

// Categories returns the fixed category enumeration.
func Categories() []string {
	out := make([]string, len(categories))
	copy(out, categories)
	return out
}

// ValidCategory reports whether name is a member of the enumeration.
func ValidCategory(name string) bool {
	for _, c := range categories {
		if c == name {
			return true
		}
	}
	return false
}

// NormalizeCategory maps arbitrary input onto the enumeration, defaulting to
// Other for anything unmapped.
func NormalizeCategory(name string) string {
	if ValidCategory(name) {
		return name
	}
	return CategoryOther
}
