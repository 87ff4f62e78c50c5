package parser

import (
	"fmt"
	"strings"
	"time"

	"github.com/mmcdole/gofeed"

	"newsharvest/internal/domain"
)

// RSSExtractor turns a feed document into candidate articles. gofeed
// normalizes RSS and Atom into one item shape, so both come through here.
type RSSExtractor struct {
	parser *gofeed.Parser
}

// NewRSSExtractor builds a reusable extractor.
func NewRSSExtractor() *RSSExtractor {
	return &RSSExtractor{parser: gofeed.NewParser()}
}

// Extract parses the feed body and emits candidates in feed order. An entry
// with neither guid nor link cannot be deduplicated and is dropped with an
// item-level error; the rest of the feed continues. Titles and descriptions
// are taken verbatim.
func (e *RSSExtractor) Extract(body string, src domain.Source) (Result, error) {
	feed, err := e.parser.ParseString(body)
	if err != nil {
		return Result{}, fmt.Errorf("parse feed %s: %w", src.URL, err)
	}

	res := Result{
		Found:      len(feed.Items),
		Considered: len(feed.Items),
	}

	for _, item := range feed.Items {
		guid := strings.TrimSpace(item.GUID)
		link := strings.TrimSpace(item.Link)

		if guid == "" && link == "" {
			res.ItemErrors = append(res.ItemErrors, domain.ItemError{
				Kind:   domain.ItemErrorExtraction,
				Title:  item.Title,
				Reason: "entry has neither guid nor link",
			})
			continue
		}

		candidateURL := link
		if candidateURL == "" {
			candidateURL = guid
		}

		res.Candidates = append(res.Candidates, domain.CandidateArticle{
			Title:         item.Title,
			URL:           candidateURL,
			GUID:          guid,
			Description:   item.Description,
			PublishedDate: entryPublished(item),
			SourceName:    src.Name,
			SourceURL:     src.URL,
			SourceType:    domain.SourceTypeRSS,
		})
	}

	return res, nil
}

func entryPublished(item *gofeed.Item) *time.Time {
	if item.PublishedParsed != nil {
		return item.PublishedParsed
	}
	if item.UpdatedParsed != nil {
		return item.UpdatedParsed
	}
	return nil
}
