package domain

import "time"

// SourceType discriminates how a source's content is retrieved.
type SourceType string

const (
	SourceTypeRSS  SourceType = "rss"
	SourceTypeHTML SourceType = "html"
)

// Source is a configured origin of articles. Sources are managed by an
// external surface; the ingestion pipeline reads them and only writes back
// last-run bookkeeping.
type Source struct {
	ID                string
	Name              string
	URL               string
	Type              SourceType
	Enabled           bool
	ProfileID         string
	RequiresRendering bool
	Overrides         SelectorOverrides

	LastRunStatus  string
	LastRunMessage string
	LastFetchedAt  *time.Time
}

// SelectorOverrides are per-source selector fields layered on top of a named
// website profile, or used standalone when no profile is referenced.
type SelectorOverrides struct {
	ArticleSelector     string
	TitleSelector       string
	URLSelector         string
	DateSelector        string
	DescriptionSelector string
}

// ScrapingProfile holds the resolved extraction rules for one website.
type ScrapingProfile struct {
	ID                       string
	ArticleSelector          string
	TitleSelector            string
	URLSelector              string
	DateSelector             string
	DescriptionSelector      string
	TitleCleanPrefixes       []string
	TitleCleanPatterns       []string
	MaxArticles              int
	SkipArticlesWithoutDates bool
}

// CandidateArticle is an extracted-but-not-yet-persisted record.
type CandidateArticle struct {
	Title         string
	URL           string
	GUID          string
	Description   string
	PublishedDate *time.Time
	SourceName    string
	SourceURL     string
	SourceType    SourceType
}

// Article is the persisted record. Uniqueness holds on (SourceName,
// IdentityKey); re-ingestion of a known key never mutates the stored row.
type Article struct {
	ID                   int64
	Title                string
	URL                  string
	IdentityKey          string
	Description          string
	PublishedDate        *time.Time
	SourceName           string
	SourceURL            string
	Category             string
	CategorizationStatus string
	Read                 bool
	Starred              bool
	Hidden               bool
	CreatedAt            time.Time
	UpdatedAt            time.Time
}

// CategorizationPending is the initial categorization_status value. The
// pipeline sets it once at insert and never touches it again; the
// categorization batch job owns the field from there on.
const CategorizationPending = "pending"

// WriteAction is the dedup/writer verdict for a single candidate.
type WriteAction string

const (
	ActionAdded   WriteAction = "added"
	ActionSkipped WriteAction = "skipped"
	ActionError   WriteAction = "error"
)

// WriteOutcome pairs the verdict with the item-level error, if any.
type WriteOutcome struct {
	Action WriteAction
	Err    error
}
