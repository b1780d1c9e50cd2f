package model

// Intent is the classified purpose of a user utterance. It carries no
// payload; downstream handlers re-parse the utterance text themselves.
type Intent string

// The closed set of intents.
const (
	IntentAddExpense    Intent = "ADD_EXPENSE"
	IntentQuery         Intent = "QUERY"
	IntentDeleteExpense Intent = "DELETE_EXPENSE"
	IntentHelp          Intent = "HELP"
	IntentUnknown       Intent = "UNKNOWN"
)

// ValidIntent reports whether s names a known intent.
func ValidIntent(s string) bool {
	switch Intent(s) {
	case IntentAddExpense, IntentQuery, IntentDeleteExpense, IntentHelp, IntentUnknown:
		return true
	default:
		return false
	}
}
