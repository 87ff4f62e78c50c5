package processor

import (
	"context"
	"log/slog"
	"time"

	"newsharvest/internal/domain"
	"newsharvest/internal/infrastructure/parser"
	"newsharvest/internal/ports"
)

// HTMLProcessor scrapes a website source: resolve its profile, retrieve the
// page through the strategy selector, extract containers, dedup/write.
type HTMLProcessor struct {
	profiles      ports.ProfileResolver
	retriever     ports.ContentRetriever
	extractor     *parser.HTMLExtractor
	writer        ports.CandidateWriter
	sourceTimeout time.Duration
	logger        *slog.Logger
}

var _ Processor = (*HTMLProcessor)(nil)

// NewHTMLProcessor wires the scraping pipeline.
func NewHTMLProcessor(profiles ports.ProfileResolver, retriever ports.ContentRetriever, extractor *parser.HTMLExtractor, writer ports.CandidateWriter, sourceTimeout time.Duration, logger *slog.Logger) *HTMLProcessor {
	return &HTMLProcessor{
		profiles:      profiles,
		retriever:     retriever,
		extractor:     extractor,
		writer:        writer,
		sourceTimeout: sourceTimeout,
		logger:        logger,
	}
}

// Type identifies the processor inside the registry.
func (p *HTMLProcessor) Type() domain.SourceType {
	return domain.SourceTypeHTML
}

// Process runs resolve → retrieve → extract → dedup/write for one website.
func (p *HTMLProcessor) Process(ctx context.Context, src domain.Source) domain.ProcessingSummary {
	if p.sourceTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, p.sourceTimeout)
		defer cancel()
	}

	profile, err := p.profiles.Resolve(src)
	if err != nil {
		return failedSummary(src, err)
	}

	html, strategy, err := p.retriever.Retrieve(ctx, src, profile)
	if err != nil {
		return failedSummary(src, err)
	}

	res, err := p.extractor.Extract(html, profile, src)
	if err != nil {
		return failedSummary(src, err)
	}

	summary := newSummary(src)
	writeCandidates(ctx, p.writer, res, &summary)

	p.logger.Info("website processed",
		"source", src.ID,
		"strategy", strategy,
		"status", summary.Status,
		"found", summary.ItemsFound,
		"added", summary.NewItemsAdded,
		"skipped", summary.ItemsSkipped,
	)
	return summary
}
