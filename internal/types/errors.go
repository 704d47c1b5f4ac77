package types

import "fmt"

// FetchError indicates an upstream brand API could not be reached or
// returned an unusable response. Fatal to the sync attempt.
type FetchError struct {
	Brand string
	URL   string
	Err   error
}

func (e *FetchError) Error() string {
	if e.URL != "" {
		return fmt.Sprintf("fetch failed for brand %s (%s): %v", e.Brand, e.URL, e.Err)
	}
	return fmt.Sprintf("fetch failed for brand %s: %v", e.Brand, e.Err)
}

func (e *FetchError) Unwrap() error { return e.Err }

// FormatError indicates an upstream response body did not match any
// recognizable product envelope. Fatal to the sync attempt.
type FormatError struct {
	Brand  string
	Detail string
}

func (e *FormatError) Error() string {
	return fmt.Sprintf("unrecognized response format from brand %s: %s", e.Brand, e.Detail)
}

// ConfigurationError indicates a brand is missing or carrying invalid API
// configuration. Fails before any fetch happens.
type ConfigurationError struct {
	Brand  string
	Reason string
}

func (e *ConfigurationError) Error() string {
	return fmt.Sprintf("brand %s has invalid API configuration: %s", e.Brand, e.Reason)
}

// ReconciliationError wraps a single product's failure to integrate into
// the catalog. Never aborts the batch; collected into the sync error list.
type ReconciliationError struct {
	ExternalID string
	Err        error
}

func (e *ReconciliationError) Error() string {
	return fmt.Sprintf("reconciliation failed for product %s: %v", e.ExternalID, e.Err)
}

func (e *ReconciliationError) Unwrap() error { return e.Err }

// NotFoundError indicates a referenced entity does not exist. Lookups by
// name set Name instead of ID.
type NotFoundError struct {
	Kind string
	ID   int64
	Name string
}

func (e *NotFoundError) Error() string {
	if e.Name != "" {
		return fmt.Sprintf("%s %q not found", e.Kind, e.Name)
	}
	return fmt.Sprintf("%s with ID %d not found", e.Kind, e.ID)
}
