package parser

import "newsharvest/internal/domain"

// Result carries extracted candidates together with item-level drop errors
// and the raw counters the processing summary is built from.
type Result struct {
	Candidates []domain.CandidateArticle
	ItemErrors []domain.ItemError

	// Found is the raw number of entries or containers seen; Considered is
	// what survived the per-profile cap.
	Found      int
	Considered int
}
