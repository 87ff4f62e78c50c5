package ports

import (
	"context"
	"errors"
	"time"

	"newsharvest/internal/domain"
)

// ErrDuplicateArticle is returned by ArticleRepository.Insert when the
// persistence layer's uniqueness constraint fires. The writer treats it as a
// skip, not a failure.
var ErrDuplicateArticle = errors.New("article already exists")

// SourceStore reads configured sources and records last-run bookkeeping.
type SourceStore interface {
	ListEnabledSources(ctx context.Context) ([]domain.Source, error)
	FindSource(ctx context.Context, id string) (*domain.Source, error)
	UpdateSourceLastRun(ctx context.Context, sourceID, status, message string, fetchedAt time.Time) error
}

// ArticleRepository persists articles and answers identity lookups.
// FindByIdentity returns (nil, nil) when no article matches.
type ArticleRepository interface {
	FindByIdentity(ctx context.Context, sourceName, identityKey string) (*domain.Article, error)
	Insert(ctx context.Context, article domain.Article) (domain.Article, error)
}

// Fetcher retrieves a URL body over plain HTTP.
type Fetcher interface {
	Fetch(ctx context.Context, url string) (string, error)
}

// Renderer retrieves a URL through a headless browser, returning the HTML
// after page scripts have run.
type Renderer interface {
	Render(ctx context.Context, url string) (string, error)
}

// ContentRetriever selects and executes the retrieval strategy for an HTML
// source, reporting which strategy produced the returned document.
type ContentRetriever interface {
	Retrieve(ctx context.Context, src domain.Source, profile domain.ScrapingProfile) (string, domain.Strategy, error)
}

// ProfileResolver turns a source into a complete scraping profile.
type ProfileResolver interface {
	Resolve(src domain.Source) (domain.ScrapingProfile, error)
	ListProfileIDs() []string
}

// CandidateWriter deduplicates and persists one candidate.
type CandidateWriter interface {
	Process(ctx context.Context, candidate domain.CandidateArticle) domain.WriteOutcome
}

// Notifier publishes a finished run digest to an external channel.
type Notifier interface {
	PublishRunDigest(ctx context.Context, result domain.FetchRunResult) error
}

// Scheduler controls when recurring runs execute.
type Scheduler interface {
	Start(ctx context.Context, job func(time.Time)) error
	Stop(ctx context.Context) error
}
