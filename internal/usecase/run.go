package usecase

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"newsharvest/internal/domain"
	"newsharvest/internal/ports"
	"newsharvest/internal/processor"
)

// Orchestrator runs the ingestion pipeline over all enabled sources. One
// source's failure — including a panic inside its processor — never aborts
// the run; it becomes a failed summary.
type Orchestrator struct {
	sources       ports.SourceStore
	registry      *processor.Registry
	notifier      ports.Notifier
	maxConcurrent int
	logger        *slog.Logger
}

// OrchestratorDeps wires the orchestrator's collaborators. Notifier is
// optional.
type OrchestratorDeps struct {
	Sources       ports.SourceStore
	Registry      *processor.Registry
	Notifier      ports.Notifier
	MaxConcurrent int
	Logger        *slog.Logger
}

// NewOrchestrator constructs the run coordinator.
func NewOrchestrator(deps OrchestratorDeps) *Orchestrator {
	maxConcurrent := deps.MaxConcurrent
	if maxConcurrent <= 0 {
		maxConcurrent = 1
	}
	return &Orchestrator{
		sources:       deps.Sources,
		registry:      deps.Registry,
		notifier:      deps.Notifier,
		maxConcurrent: maxConcurrent,
		logger:        deps.Logger,
	}
}

// RunAll processes every enabled source and returns the aggregated result.
// The source list is snapshotted at run start; sources toggled mid-run do
// not affect the current run.
func (o *Orchestrator) RunAll(ctx context.Context) domain.FetchRunResult {
	result := domain.FetchRunResult{
		RunID:     uuid.NewString(),
		StartedAt: time.Now().UTC(),
	}

	srcs, err := o.sources.ListEnabledSources(ctx)
	if err != nil {
		result.Status = domain.RunFailed
		result.OrchestrationErrors = append(result.OrchestrationErrors,
			fmt.Sprintf("list enabled sources: %v", err))
		result.FinishedAt = time.Now().UTC()
		return result
	}

	o.logger.Info("run started", "run", result.RunID, "sources", len(srcs))

	summaries := make([]domain.ProcessingSummary, len(srcs))
	var mu sync.Mutex

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(o.maxConcurrent)
	for i, src := range srcs {
		i, src := i, src
		g.Go(func() error {
			summaries[i] = o.processOne(gctx, src)
			if err := o.recordLastRun(gctx, src, summaries[i]); err != nil {
				mu.Lock()
				result.OrchestrationErrors = append(result.OrchestrationErrors,
					fmt.Sprintf("record last run for %s: %v", src.ID, err))
				mu.Unlock()
			}
			return nil
		})
	}
	_ = g.Wait()

	result.Summaries = summaries
	result.SourcesAttempted = len(summaries)
	for _, s := range summaries {
		result.TotalNewArticles += s.NewItemsAdded
		if s.Status == domain.StatusFailed {
			result.SourcesFailed++
		} else {
			result.SourcesSucceeded++
		}
	}

	switch {
	case len(summaries) == 0:
		result.Status = domain.RunFailed
	case result.SourcesFailed > 0 || anyNonSuccess(summaries):
		result.Status = domain.RunCompletedWithErrors
	default:
		result.Status = domain.RunCompleted
	}
	result.FinishedAt = time.Now().UTC()

	o.logger.Info("run finished",
		"run", result.RunID,
		"status", result.Status,
		"new_articles", result.TotalNewArticles,
		"failed_sources", result.SourcesFailed,
	)

	o.notify(ctx, result)
	return result
}

// RunSource processes a single source by id, regardless of its enabled flag.
func (o *Orchestrator) RunSource(ctx context.Context, sourceID string) (domain.ProcessingSummary, error) {
	src, err := o.sources.FindSource(ctx, sourceID)
	if err != nil {
		return domain.ProcessingSummary{}, fmt.Errorf("find source %s: %w", sourceID, err)
	}
	if src == nil {
		return domain.ProcessingSummary{}, fmt.Errorf("source %s does not exist", sourceID)
	}

	summary := o.processOne(ctx, *src)
	if err := o.recordLastRun(ctx, *src, summary); err != nil {
		o.logger.Warn("record last run failed", "source", sourceID, "error", err)
	}
	return summary, nil
}

func (o *Orchestrator) processOne(ctx context.Context, src domain.Source) (summary domain.ProcessingSummary) {
	defer func() {
		if r := recover(); r != nil {
			o.logger.Error("processor panicked", "source", src.ID, "panic", r)
			summary = domain.ProcessingSummary{
				SourceID:   src.ID,
				SourceName: src.Name,
				SourceType: src.Type,
				Status:     domain.StatusFailed,
				Message:    "source processing failed unexpectedly",
				FetchError: fmt.Sprintf("panic: %v", r),
			}
		}
	}()

	proc, err := o.registry.Resolve(src.Type)
	if err != nil {
		return domain.ProcessingSummary{
			SourceID:   src.ID,
			SourceName: src.Name,
			SourceType: src.Type,
			Status:     domain.StatusFailed,
			Message:    "source processing failed",
			FetchError: err.Error(),
		}
	}

	return proc.Process(ctx, src)
}

func (o *Orchestrator) recordLastRun(ctx context.Context, src domain.Source, summary domain.ProcessingSummary) error {
	return o.sources.UpdateSourceLastRun(ctx, src.ID, string(summary.Status), summary.Message, time.Now().UTC())
}

func (o *Orchestrator) notify(ctx context.Context, result domain.FetchRunResult) {
	if o.notifier == nil {
		return
	}
	if err := o.notifier.PublishRunDigest(ctx, result); err != nil {
		o.logger.Warn("run digest notification failed", "run", result.RunID, "error", err)
	}
}

func anyNonSuccess(summaries []domain.ProcessingSummary) bool {
	for _, s := range summaries {
		if s.Status != domain.StatusSuccess {
			return true
		}
	}
	return false
}
