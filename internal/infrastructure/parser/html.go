package parser

import (
	"fmt"
	"net/url"
	"regexp"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/araddon/dateparse"

	"newsharvest/internal/domain"
)

const fallbackMaxArticles = 25

// Date layouts tried before handing the raw text to dateparse.
var dateLayouts = []string{
	time.RFC3339,
	"2006-01-02 15:04:05",
	"2006-01-02 15:04",
	"2006-01-02",
	"January 2, 2006",
	"Jan 2, 2006",
	"2 Jan 2006",
	"02.01.2006",
}

// HTMLExtractor applies a scraping profile to a fetched document.
type HTMLExtractor struct {
	maxArticlesDefault int
}

// NewHTMLExtractor sets the cap used when a profile does not define one.
func NewHTMLExtractor(maxArticlesDefault int) *HTMLExtractor {
	if maxArticlesDefault <= 0 {
		maxArticlesDefault = fallbackMaxArticles
	}
	return &HTMLExtractor{maxArticlesDefault: maxArticlesDefault}
}

// Extract selects article containers per the profile and emits candidates.
// The container cap applies before deduplication. A container without a
// resolvable URL is dropped with an item-level error; all other containers
// continue.
func (e *HTMLExtractor) Extract(html string, profile domain.ScrapingProfile, src domain.Source) (Result, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return Result{}, fmt.Errorf("parse document %s: %w", src.URL, err)
	}

	base, err := url.Parse(src.URL)
	if err != nil {
		return Result{}, fmt.Errorf("invalid source url %s: %w", src.URL, err)
	}

	cleaners, err := compileCleaners(profile.TitleCleanPatterns)
	if err != nil {
		return Result{}, fmt.Errorf("profile %s: %w", profile.ID, err)
	}

	limit := profile.MaxArticles
	if limit <= 0 {
		limit = e.maxArticlesDefault
	}

	containers := doc.Find(profile.ArticleSelector)
	res := Result{Found: containers.Length()}
	res.Considered = res.Found
	if res.Considered > limit {
		res.Considered = limit
	}

	containers.EachWithBreak(func(i int, sel *goquery.Selection) bool {
		if i >= limit {
			return false
		}

		title := containerTitle(sel, profile, cleaners)

		href := containerURL(sel, profile, base)
		if href == "" {
			res.ItemErrors = append(res.ItemErrors, domain.ItemError{
				Kind:   domain.ItemErrorExtraction,
				Title:  title,
				Reason: "no resolvable article url",
			})
			return true
		}

		published := containerDate(sel, profile)
		if published == nil && profile.SkipArticlesWithoutDates {
			return true
		}

		var description string
		if profile.DescriptionSelector != "" {
			description = strings.TrimSpace(sel.Find(profile.DescriptionSelector).First().Text())
		}

		res.Candidates = append(res.Candidates, domain.CandidateArticle{
			Title:         title,
			URL:           href,
			Description:   description,
			PublishedDate: published,
			SourceName:    src.Name,
			SourceURL:     src.URL,
			SourceType:    domain.SourceTypeHTML,
		})
		return true
	})

	return res, nil
}

func containerTitle(sel *goquery.Selection, profile domain.ScrapingProfile, cleaners []*regexp.Regexp) string {
	var raw string
	if profile.TitleSelector != "" {
		raw = sel.Find(profile.TitleSelector).First().Text()
	} else {
		raw = sel.Text()
	}

	title := strings.TrimSpace(raw)
	for _, prefix := range profile.TitleCleanPrefixes {
		title = strings.TrimSpace(strings.TrimPrefix(title, prefix))
	}
	for _, re := range cleaners {
		title = strings.TrimSpace(re.ReplaceAllString(title, ""))
	}
	return title
}

func containerURL(sel *goquery.Selection, profile domain.ScrapingProfile, base *url.URL) string {
	var link *goquery.Selection
	switch {
	case profile.URLSelector != "":
		link = sel.Find(profile.URLSelector).First()
	case sel.Is("a[href]"):
		link = sel
	default:
		link = sel.Find("a[href]").First()
	}

	href, _ := link.Attr("href")
	href = strings.TrimSpace(href)
	if href == "" {
		return ""
	}

	ref, err := url.Parse(href)
	if err != nil {
		return ""
	}
	return base.ResolveReference(ref).String()
}

// containerDate resolves the published date, or nil when nothing parses. A
// missing date must stay unset; stamping "now" here would fabricate
// publication dates.
func containerDate(sel *goquery.Selection, profile domain.ScrapingProfile) *time.Time {
	if profile.DateSelector == "" {
		return nil
	}

	node := sel.Find(profile.DateSelector).First()
	raw, ok := node.Attr("datetime")
	if !ok {
		raw = node.Text()
	}
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil
	}

	for _, layout := range dateLayouts {
		if parsed, err := time.Parse(layout, raw); err == nil {
			return &parsed
		}
	}
	if parsed, err := dateparse.ParseAny(raw); err == nil {
		return &parsed
	}
	return nil
}

func compileCleaners(patterns []string) ([]*regexp.Regexp, error) {
	cleaners := make([]*regexp.Regexp, 0, len(patterns))
	for _, pattern := range patterns {
		re, err := regexp.Compile(pattern)
		if err != nil {
			return nil, fmt.Errorf("bad title clean pattern %q: %w", pattern, err)
		}
		cleaners = append(cleaners, re)
	}
	return cleaners, nil
}
