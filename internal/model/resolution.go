package model

// DeleteResolution is the outcome of resolving a deletion request against a
// user's expenses. It is transient: produced and consumed within a single
// delete handling step. Bulk and single resolution are mutually exclusive.
type DeleteResolution struct {
	ExpenseID  string   `json:"expenseId"`
	Message    string   `json:"message"`
	ExpenseIDs []string `json:"expenseIds,omitempty"`
	IsBulk     bool     `json:"isBulk"`
	Success    bool     `json:"success"`
}

// TargetIDs returns the ids this resolution selects for deletion, bulk or
// single. An unsuccessful resolution selects nothing.
func (r *DeleteResolution) TargetIDs() []string {
	if !r.Success {
		return nil
	}
	if r.IsBulk {
		return r.ExpenseIDs
	}
	if r.ExpenseID == "" {
		return nil
	}
	return []string{r.ExpenseID}
}
