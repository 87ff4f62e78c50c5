package domain

import "time"

// SourceStatus is the per-source outcome of one processing attempt.
type SourceStatus string

const (
	StatusSuccess        SourceStatus = "success"
	StatusPartialSuccess SourceStatus = "partial_success"
	StatusFailed         SourceStatus = "failed"
)

// RunStatus is the outcome of a whole ingestion run.
type RunStatus string

const (
	RunCompleted           RunStatus = "completed"
	RunCompletedWithErrors RunStatus = "completed_with_errors"
	RunFailed              RunStatus = "failed"
)

// ProcessingSummary reports what happened to a single source.
//
// Counter meanings: ItemsFound is the raw number of feed entries or selector
// containers seen; ItemsConsidered is what survived the per-profile cap;
// ItemsProcessed is what reached the deduplicator after extraction. The
// invariant NewItemsAdded+ItemsSkipped <= ItemsProcessed <= ItemsConsidered
// <= ItemsFound always holds.
type ProcessingSummary struct {
	SourceID   string       `json:"sourceId"`
	SourceName string       `json:"sourceName"`
	SourceType SourceType   `json:"sourceType"`
	Status     SourceStatus `json:"status"`
	Message    string       `json:"message"`

	ItemsFound      int `json:"itemsFound"`
	ItemsConsidered int `json:"itemsConsidered"`
	ItemsProcessed  int `json:"itemsProcessed"`
	NewItemsAdded   int `json:"newItemsAdded"`
	ItemsSkipped    int `json:"itemsSkipped"`

	ItemErrors []ItemError `json:"itemErrors,omitempty"`
	FetchError string      `json:"fetchError,omitempty"`
}

// CountersConsistent reports whether the summary honors the counter chain.
func (s ProcessingSummary) CountersConsistent() bool {
	return s.NewItemsAdded+s.ItemsSkipped <= s.ItemsProcessed &&
		s.ItemsProcessed <= s.ItemsConsidered &&
		s.ItemsConsidered <= s.ItemsFound
}

// FetchRunResult aggregates one whole run. It is created at run start,
// finalized at run end, and not mutated after being returned.
type FetchRunResult struct {
	RunID      string    `json:"runId"`
	StartedAt  time.Time `json:"startedAt"`
	FinishedAt time.Time `json:"finishedAt"`
	Status     RunStatus `json:"status"`

	SourcesAttempted int `json:"sourcesAttempted"`
	SourcesSucceeded int `json:"sourcesSucceeded"`
	SourcesFailed    int `json:"sourcesFailed"`
	TotalNewArticles int `json:"totalNewArticles"`

	Summaries           []ProcessingSummary `json:"summaries"`
	OrchestrationErrors []string            `json:"orchestrationErrors,omitempty"`
}
