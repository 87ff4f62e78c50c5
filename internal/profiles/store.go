// Package profiles holds the process-wide store of website scraping rules.
// The store is built once at startup from static definitions and is never
// mutated by the ingestion path.
package profiles

import (
	"sort"

	"newsharvest/internal/domain"
	"newsharvest/internal/ports"
)

// Defaults are the built-in bottom layer of every resolved profile.
type Defaults struct {
	MaxArticles int
}

// Store resolves sources to complete scraping profiles. Merge order is
// defaults < named profile < per-source inline overrides (selector fields
// only).
type Store struct {
	defaults Defaults
	byID     map[string]domain.ScrapingProfile
}

var _ ports.ProfileResolver = (*Store)(nil)

// NewStore indexes the given profile definitions by id.
func NewStore(defaults Defaults, defs []domain.ScrapingProfile) *Store {
	byID := make(map[string]domain.ScrapingProfile, len(defs))
	for _, def := range defs {
		byID[def.ID] = def
	}
	return &Store{defaults: defaults, byID: byID}
}

// Resolve merges layers for the given source and validates the result.
func (s *Store) Resolve(src domain.Source) (domain.ScrapingProfile, error) {
	merged := domain.ScrapingProfile{MaxArticles: s.defaults.MaxArticles}

	if src.ProfileID == "" {
		if src.Overrides.ArticleSelector == "" {
			return domain.ScrapingProfile{}, &domain.ConfigError{
				Kind:     domain.ConfigMissingProfile,
				SourceID: src.ID,
			}
		}
	} else {
		named, ok := s.byID[src.ProfileID]
		if !ok {
			return domain.ScrapingProfile{}, &domain.ConfigError{
				Kind:      domain.ConfigUnknownProfile,
				SourceID:  src.ID,
				ProfileID: src.ProfileID,
			}
		}
		merged = overlayProfile(merged, named)
	}

	merged = overlaySelectors(merged, src.Overrides)

	if merged.ArticleSelector == "" {
		return domain.ScrapingProfile{}, &domain.ConfigError{
			Kind:      domain.ConfigIncompleteProfile,
			SourceID:  src.ID,
			ProfileID: src.ProfileID,
		}
	}

	return merged, nil
}

// ListProfileIDs enumerates known profile ids in stable order. Diagnostic
// use only.
func (s *Store) ListProfileIDs() []string {
	ids := make([]string, 0, len(s.byID))
	for id := range s.byID {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

// Has reports whether a profile id is defined.
func (s *Store) Has(id string) bool {
	_, ok := s.byID[id]
	return ok
}

func overlayProfile(base, over domain.ScrapingProfile) domain.ScrapingProfile {
	base.ID = over.ID
	if over.ArticleSelector != "" {
		base.ArticleSelector = over.ArticleSelector
	}
	if over.TitleSelector != "" {
		base.TitleSelector = over.TitleSelector
	}
	if over.URLSelector != "" {
		base.URLSelector = over.URLSelector
	}
	if over.DateSelector != "" {
		base.DateSelector = over.DateSelector
	}
	if over.DescriptionSelector != "" {
		base.DescriptionSelector = over.DescriptionSelector
	}
	if len(over.TitleCleanPrefixes) > 0 {
		base.TitleCleanPrefixes = append([]string(nil), over.TitleCleanPrefixes...)
	}
	if len(over.TitleCleanPatterns) > 0 {
		base.TitleCleanPatterns = append([]string(nil), over.TitleCleanPatterns...)
	}
	if over.MaxArticles > 0 {
		base.MaxArticles = over.MaxArticles
	}
	base.SkipArticlesWithoutDates = over.SkipArticlesWithoutDates
	return base
}

func overlaySelectors(base domain.ScrapingProfile, over domain.SelectorOverrides) domain.ScrapingProfile {
	if over.ArticleSelector != "" {
		base.ArticleSelector = over.ArticleSelector
	}
	if over.TitleSelector != "" {
		base.TitleSelector = over.TitleSelector
	}
	if over.URLSelector != "" {
		base.URLSelector = over.URLSelector
	}
	if over.DateSelector != "" {
		base.DateSelector = over.DateSelector
	}
	if over.DescriptionSelector != "" {
		base.DescriptionSelector = over.DescriptionSelector
	}
	return base
}
