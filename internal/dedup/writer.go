// Package dedup maps candidates to identity keys and writes only the ones
// that are new. Repeated invocation with the same candidate never inserts
// twice; this is the pipeline's core idempotence guarantee.
package dedup

import (
	"context"
	"errors"
	"log/slog"
	"net/url"
	"strings"

	"newsharvest/internal/domain"
	"newsharvest/internal/ports"
)

// Writer checks candidates against persisted articles and inserts new ones.
type Writer struct {
	repo   ports.ArticleRepository
	logger *slog.Logger
}

var _ ports.CandidateWriter = (*Writer)(nil)

// NewWriter wires the article repository.
func NewWriter(repo ports.ArticleRepository, logger *slog.Logger) *Writer {
	return &Writer{repo: repo, logger: logger}
}

// Process resolves the candidate's identity key, skips known articles
// without touching them, validates the rest, and persists newcomers.
func (w *Writer) Process(ctx context.Context, candidate domain.CandidateArticle) domain.WriteOutcome {
	key := IdentityKey(candidate)
	if key == "" {
		return errOutcome(candidate, domain.ItemErrorValidation, "candidate has no identity (guid or url)")
	}

	existing, err := w.repo.FindByIdentity(ctx, candidate.SourceName, key)
	if err != nil {
		return errOutcome(candidate, domain.ItemErrorPersistence, "lookup failed: "+err.Error())
	}
	if existing != nil {
		return domain.WriteOutcome{Action: domain.ActionSkipped}
	}

	if strings.TrimSpace(candidate.Title) == "" {
		return errOutcome(candidate, domain.ItemErrorValidation, "empty title")
	}
	if strings.TrimSpace(candidate.URL) == "" {
		return errOutcome(candidate, domain.ItemErrorValidation, "empty url")
	}

	article := domain.Article{
		Title:                candidate.Title,
		URL:                  candidate.URL,
		IdentityKey:          key,
		Description:          candidate.Description,
		PublishedDate:        candidate.PublishedDate,
		SourceName:           candidate.SourceName,
		SourceURL:            candidate.SourceURL,
		CategorizationStatus: domain.CategorizationPending,
	}

	if _, err := w.repo.Insert(ctx, article); err != nil {
		// The uniqueness constraint is the backstop; losing the race to it
		// is a skip, not a failure.
		if errors.Is(err, ports.ErrDuplicateArticle) {
			return domain.WriteOutcome{Action: domain.ActionSkipped}
		}
		return errOutcome(candidate, domain.ItemErrorPersistence, "insert failed: "+err.Error())
	}

	w.debug("article added", "source", candidate.SourceName, "key", key)
	return domain.WriteOutcome{Action: domain.ActionAdded}
}

// IdentityKey prefers the feed guid and falls back to the normalized URL.
func IdentityKey(candidate domain.CandidateArticle) string {
	if guid := strings.TrimSpace(candidate.GUID); guid != "" {
		return guid
	}
	return NormalizeURL(candidate.URL)
}

// NormalizeURL canonicalizes a URL for identity comparison: lowercased
// scheme and host, default port and fragment stripped, trailing slash
// dropped on non-root paths. Query strings are kept; differing queries are
// usually different articles.
func NormalizeURL(raw string) string {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return ""
	}

	parsed, err := url.Parse(raw)
	if err != nil {
		return raw
	}

	parsed.Scheme = strings.ToLower(parsed.Scheme)
	parsed.Host = strings.ToLower(parsed.Host)
	parsed.Fragment = ""

	if (parsed.Scheme == "http" && strings.HasSuffix(parsed.Host, ":80")) ||
		(parsed.Scheme == "https" && strings.HasSuffix(parsed.Host, ":443")) {
		parsed.Host = parsed.Host[:strings.LastIndex(parsed.Host, ":")]
	}

	if len(parsed.Path) > 1 {
		parsed.Path = strings.TrimSuffix(parsed.Path, "/")
	}

	return parsed.String()
}

func errOutcome(candidate domain.CandidateArticle, kind domain.ItemErrorKind, reason string) domain.WriteOutcome {
	return domain.WriteOutcome{
		Action: domain.ActionError,
		Err: domain.ItemError{
			Kind:   kind,
			Title:  candidate.Title,
			URL:    candidate.URL,
			Reason: reason,
		},
	}
}

func (w *Writer) debug(msg string, args ...any) {
	if w.logger != nil {
		w.logger.Debug(msg, args...)
	}
}
