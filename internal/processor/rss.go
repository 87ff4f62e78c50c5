package processor

import (
	"context"
	"log/slog"
	"time"

	"newsharvest/internal/domain"
	"newsharvest/internal/infrastructure/parser"
	"newsharvest/internal/ports"
)

// RSSProcessor fetches a feed over plain HTTP, extracts entries, and writes
// them through the deduplicator.
type RSSProcessor struct {
	fetcher       ports.Fetcher
	extractor     *parser.RSSExtractor
	writer        ports.CandidateWriter
	sourceTimeout time.Duration
	logger        *slog.Logger
}

var _ Processor = (*RSSProcessor)(nil)

// NewRSSProcessor wires the feed pipeline.
func NewRSSProcessor(fetcher ports.Fetcher, extractor *parser.RSSExtractor, writer ports.CandidateWriter, sourceTimeout time.Duration, logger *slog.Logger) *RSSProcessor {
	return &RSSProcessor{
		fetcher:       fetcher,
		extractor:     extractor,
		writer:        writer,
		sourceTimeout: sourceTimeout,
		logger:        logger,
	}
}

// Type identifies the processor inside the registry.
func (p *RSSProcessor) Type() domain.SourceType {
	return domain.SourceTypeRSS
}

// Process runs fetch → extract → dedup/write for one feed source.
func (p *RSSProcessor) Process(ctx context.Context, src domain.Source) domain.ProcessingSummary {
	if p.sourceTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, p.sourceTimeout)
		defer cancel()
	}

	body, err := p.fetcher.Fetch(ctx, src.URL)
	if err != nil {
		return failedSummary(src, &domain.FetchError{
			Strategy: domain.StrategyLightweight,
			URL:      src.URL,
			Err:      err,
		})
	}

	res, err := p.extractor.Extract(body, src)
	if err != nil {
		return failedSummary(src, err)
	}

	summary := newSummary(src)
	writeCandidates(ctx, p.writer, res, &summary)

	p.logger.Info("feed processed",
		"source", src.ID,
		"status", summary.Status,
		"found", summary.ItemsFound,
		"added", summary.NewItemsAdded,
		"skipped", summary.ItemsSkipped,
	)
	return summary
}
