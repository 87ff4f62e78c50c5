package scraper

import (
	"context"
	"log/slog"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"newsharvest/internal/domain"
	"newsharvest/internal/ports"
)

// StrategySelector picks the retrieval strategy for an HTML source. The
// lightweight fetch always runs first unless the source is flagged as
// requiring rendering; its failures and empty results are escalation
// triggers, not surfaced errors. Escalation is one-way: if the rendered
// fetch also fails, the source attempt fails.
type StrategySelector struct {
	lightweight ports.Fetcher
	renderer    ports.Renderer
	logger      *slog.Logger
}

var _ ports.ContentRetriever = (*StrategySelector)(nil)

// NewStrategySelector wires both strategies.
func NewStrategySelector(lightweight ports.Fetcher, renderer ports.Renderer, logger *slog.Logger) *StrategySelector {
	return &StrategySelector{lightweight: lightweight, renderer: renderer, logger: logger}
}

// Retrieve returns the page HTML and the strategy that produced it.
func (s *StrategySelector) Retrieve(ctx context.Context, src domain.Source, profile domain.ScrapingProfile) (string, domain.Strategy, error) {
	if !src.RequiresRendering {
		html, err := s.lightweight.Fetch(ctx, src.URL)
		switch {
		case err != nil:
			s.debug("lightweight fetch failed, escalating", "source", src.ID, "error", err)
		case countContainers(html, profile.ArticleSelector) == 0:
			s.debug("lightweight fetch yielded no containers, escalating", "source", src.ID, "selector", profile.ArticleSelector)
		default:
			return html, domain.StrategyLightweight, nil
		}
	}

	html, err := s.renderer.Render(ctx, src.URL)
	if err != nil {
		return "", domain.StrategyRendered, &domain.FetchError{
			Strategy: domain.StrategyRendered,
			URL:      src.URL,
			Err:      err,
		}
	}

	if countContainers(html, profile.ArticleSelector) == 0 {
		return "", domain.StrategyRendered, &domain.FetchError{
			Strategy: domain.StrategyRendered,
			URL:      src.URL,
			Err:      errNoContainers{selector: profile.ArticleSelector},
		}
	}

	return html, domain.StrategyRendered, nil
}

type errNoContainers struct {
	selector string
}

func (e errNoContainers) Error() string {
	return "rendered page has no containers matching " + e.selector
}

func countContainers(html, selector string) int {
	if selector == "" {
		return 0
	}
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return 0
	}
	return doc.Find(selector).Length()
}

func (s *StrategySelector) debug(msg string, args ...any) {
	if s.logger != nil {
		s.logger.Debug(msg, args...)
	}
}
