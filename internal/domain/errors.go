package domain

import "fmt"

// Strategy names a retrieval strategy for HTML sources.
type Strategy string

const (
	StrategyLightweight Strategy = "lightweight"
	StrategyRendered    Strategy = "rendered"
)

// ConfigErrorKind classifies scraping-profile resolution failures.
type ConfigErrorKind string

const (
	ConfigMissingProfile    ConfigErrorKind = "missing_profile"
	ConfigUnknownProfile    ConfigErrorKind = "unknown_profile"
	ConfigIncompleteProfile ConfigErrorKind = "incomplete_profile"
)

// ConfigError means a source cannot be scraped as configured. It fails that
// source's attempt only.
type ConfigError struct {
	Kind      ConfigErrorKind
	SourceID  string
	ProfileID string
}

func (e *ConfigError) Error() string {
	switch e.Kind {
	case ConfigMissingProfile:
		return fmt.Sprintf("source %s: no scraping profile and no inline article selector", e.SourceID)
	case ConfigUnknownProfile:
		return fmt.Sprintf("source %s: scraping profile %q is not defined", e.SourceID, e.ProfileID)
	case ConfigIncompleteProfile:
		return fmt.Sprintf("source %s: resolved profile %q has no article selector", e.SourceID, e.ProfileID)
	default:
		return fmt.Sprintf("source %s: invalid scraping configuration", e.SourceID)
	}
}

// FetchError means content retrieval failed for a source. For HTML sources it
// is raised only after escalation to the rendered strategy.
type FetchError struct {
	Strategy Strategy
	URL      string
	Err      error
}

func (e *FetchError) Error() string {
	return fmt.Sprintf("%s fetch of %s: %v", e.Strategy, e.URL, e.Err)
}

func (e *FetchError) Unwrap() error { return e.Err }

// ItemErrorKind classifies item-level failures recorded in a summary.
type ItemErrorKind string

const (
	ItemErrorExtraction  ItemErrorKind = "extraction"
	ItemErrorValidation  ItemErrorKind = "validation"
	ItemErrorPersistence ItemErrorKind = "persistence"
)

// ItemError describes one dropped or failed candidate. It never fails the
// source; it is carried in the ProcessingSummary for diagnosis.
type ItemError struct {
	Kind   ItemErrorKind
	Title  string
	URL    string
	Reason string
}

func (e ItemError) Error() string {
	ref := e.URL
	if ref == "" {
		ref = e.Title
	}
	if ref == "" {
		return fmt.Sprintf("%s: %s", e.Kind, e.Reason)
	}
	return fmt.Sprintf("%s (%s): %s", e.Kind, ref, e.Reason)
}

// SchemaError means a collaborator payload did not match its fixed contract.
// Payloads are never searched heuristically for a usable shape.
type SchemaError struct {
	Context string
	Err     error
}

func (e *SchemaError) Error() string {
	return fmt.Sprintf("unexpected %s payload shape: %v", e.Context, e.Err)
}

func (e *SchemaError) Unwrap() error { return e.Err }
