// Package processor holds the per-source pipelines and the registry the
// orchestrator dispatches through.
package processor

import (
	"context"
	"fmt"

	"newsharvest/internal/domain"
	"newsharvest/internal/infrastructure/parser"
	"newsharvest/internal/ports"
)

// Processor runs one source end to end and reports a summary. It never
// returns an error: every failure mode is folded into the summary.
type Processor interface {
	Type() domain.SourceType
	Process(ctx context.Context, src domain.Source) domain.ProcessingSummary
}

// Registry keeps a mapping from source types to their processors.
type Registry struct {
	processors map[domain.SourceType]Processor
}

// NewRegistry builds an empty registry.
func NewRegistry() *Registry {
	return &Registry{processors: map[domain.SourceType]Processor{}}
}

// Register adds or replaces a processor implementation.
func (r *Registry) Register(p Processor) {
	if r.processors == nil {
		r.processors = map[domain.SourceType]Processor{}
	}
	r.processors[p.Type()] = p
}

// Resolve returns a processor by source type or an error if it is absent.
func (r *Registry) Resolve(t domain.SourceType) (Processor, error) {
	if p, ok := r.processors[t]; ok {
		return p, nil
	}
	return nil, fmt.Errorf("no processor registered for source type %q", t)
}

func newSummary(src domain.Source) domain.ProcessingSummary {
	return domain.ProcessingSummary{
		SourceID:   src.ID,
		SourceName: src.Name,
		SourceType: src.Type,
	}
}

func failedSummary(src domain.Source, err error) domain.ProcessingSummary {
	s := newSummary(src)
	s.Status = domain.StatusFailed
	s.Message = "source processing failed"
	s.FetchError = err.Error()
	return s
}

// writeCandidates feeds extraction output to the writer sequentially — dedup
// correctness within a run depends on observing prior writes — and fills in
// the summary counters and status.
func writeCandidates(ctx context.Context, writer ports.CandidateWriter, res parser.Result, summary *domain.ProcessingSummary) {
	summary.ItemsFound = res.Found
	summary.ItemsConsidered = res.Considered
	summary.ItemErrors = append(summary.ItemErrors, res.ItemErrors...)

	for _, candidate := range res.Candidates {
		summary.ItemsProcessed++
		outcome := writer.Process(ctx, candidate)
		switch outcome.Action {
		case domain.ActionAdded:
			summary.NewItemsAdded++
		case domain.ActionSkipped:
			summary.ItemsSkipped++
		default:
			var itemErr domain.ItemError
			if ie, ok := outcome.Err.(domain.ItemError); ok {
				itemErr = ie
			} else {
				itemErr = domain.ItemError{
					Kind:   domain.ItemErrorPersistence,
					Title:  candidate.Title,
					URL:    candidate.URL,
					Reason: fmt.Sprint(outcome.Err),
				}
			}
			summary.ItemErrors = append(summary.ItemErrors, itemErr)
		}
	}

	succeeded := summary.NewItemsAdded + summary.ItemsSkipped
	switch {
	case len(summary.ItemErrors) == 0:
		summary.Status = domain.StatusSuccess
		summary.Message = fmt.Sprintf("%d new, %d skipped", summary.NewItemsAdded, summary.ItemsSkipped)
	case succeeded > 0:
		summary.Status = domain.StatusPartialSuccess
		summary.Message = fmt.Sprintf("%d new, %d skipped, %d items failed", summary.NewItemsAdded, summary.ItemsSkipped, len(summary.ItemErrors))
	default:
		summary.Status = domain.StatusFailed
		summary.Message = fmt.Sprintf("all %d items failed", len(summary.ItemErrors))
	}
}
