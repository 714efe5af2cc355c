package estate

import "fmt"

// ValidationError reports user input that fails to parse as the required
// type (price, area). The operation aborts and no state is mutated.
type ValidationError struct {
	Field string
	Value string
	Msg   string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid %s %q: %s", e.Field, e.Value, e.Msg)
}

// InvalidCriteriaError reports numerically malformed search criteria.
// Callers must show an empty result set, not an unfiltered table.
type InvalidCriteriaError struct {
	Field string
	Value string
}

func (e *InvalidCriteriaError) Error() string {
	return fmt.Sprintf("invalid search criteria: %s %q is not a number", e.Field, e.Value)
}

// NotFoundError reports a record ID with no matching row.
type NotFoundError struct {
	ID string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("no record with id %s", e.ID)
}

// RestoreError reports a failed restore. Restores fail atomically: when a
// RestoreError is returned, the table and asset tree are unchanged.
type RestoreError struct {
	Stage string // "table", "archive", or "swap"
	Err   error
}

func (e *RestoreError) Error() string {
	return fmt.Sprintf("restore failed (%s): %v", e.Stage, e.Err)
}

func (e *RestoreError) Unwrap() error { return e.Err }
