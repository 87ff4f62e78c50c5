package parser

import (
	"fmt"
	"strings"
	"testing"
	"time"

	"newsharvest/internal/domain"
)

func htmlSource() domain.Source {
	return domain.Source{
		ID:   "site-1",
		Name: "Example Site",
		URL:  "https://example.com/news",
		Type: domain.SourceTypeHTML,
	}
}

func postProfile() domain.ScrapingProfile {
	return domain.ScrapingProfile{
		ID:              "example-site",
		ArticleSelector: ".post",
		TitleSelector:   "h2",
		DateSelector:    "time",
		MaxArticles:     25,
	}
}

func TestExtractContainers(t *testing.T) {
	t.Parallel()

	page := `<html><body>
	  <div class="post">
	    <h2>Breaking: Something Happened</h2>
	    <a href="/articles/1">read</a>
	    <time datetime="2025-03-01T10:00:00Z">March 1</time>
	  </div>
	  <div class="post">
	    <h2>Second Story</h2>
	    <a href="https://other.example.org/2">read</a>
	    <time>2 Mar 2025</time>
	  </div>
	</body></html>`

	res, err := NewHTMLExtractor(25).Extract(page, postProfile(), htmlSource())
	if err != nil {
		t.Fatalf("Extract error: %v", err)
	}

	if res.Found != 2 || res.Considered != 2 {
		t.Fatalf("expected 2/2, got %d/%d", res.Found, res.Considered)
	}
	if len(res.Candidates) != 2 {
		t.Fatalf("expected 2 candidates, got %d", len(res.Candidates))
	}

	if res.Candidates[0].URL != "https://example.com/articles/1" {
		t.Fatalf("relative url not resolved: %q", res.Candidates[0].URL)
	}
	if res.Candidates[1].URL != "https://other.example.org/2" {
		t.Fatalf("absolute url mangled: %q", res.Candidates[1].URL)
	}

	want := time.Date(2025, time.March, 1, 10, 0, 0, 0, time.UTC)
	if res.Candidates[0].PublishedDate == nil || !res.Candidates[0].PublishedDate.Equal(want) {
		t.Fatalf("unexpected date: %v", res.Candidates[0].PublishedDate)
	}
	if res.Candidates[1].PublishedDate == nil {
		t.Fatal("text date not parsed")
	}
}

func TestExtractTitleCleaning(t *testing.T) {
	t.Parallel()

	page := `<div class="post"><h2>BREAKING: The Story (live)</h2><a href="/s">x</a></div>`
	profile := postProfile()
	profile.TitleCleanPrefixes = []string{"BREAKING:"}
	profile.TitleCleanPatterns = []string{`\(live\)$`}

	res, err := NewHTMLExtractor(25).Extract(page, profile, htmlSource())
	if err != nil {
		t.Fatalf("Extract error: %v", err)
	}
	if res.Candidates[0].Title != "The Story" {
		t.Fatalf("unexpected cleaned title: %q", res.Candidates[0].Title)
	}
}

func TestExtractMissingDateStaysUnset(t *testing.T) {
	t.Parallel()

	page := `<div class="post"><h2>No Date Here</h2><a href="/nd">x</a></div>`

	res, err := NewHTMLExtractor(25).Extract(page, postProfile(), htmlSource())
	if err != nil {
		t.Fatalf("Extract error: %v", err)
	}
	if len(res.Candidates) != 1 {
		t.Fatalf("expected 1 candidate, got %d", len(res.Candidates))
	}

	// A missing date must stay unset; stamping "now" would fabricate a
	// publication date.
	if got := res.Candidates[0].PublishedDate; got != nil {
		t.Fatalf("missing date must stay unset, got %v", got)
	}
}

func TestExtractSkipArticlesWithoutDates(t *testing.T) {
	t.Parallel()

	page := `
	  <div class="post"><h2>Dated</h2><a href="/a">x</a><time datetime="2025-03-01T00:00:00Z"></time></div>
	  <div class="post"><h2>Undated</h2><a href="/b">x</a></div>`
	profile := postProfile()
	profile.SkipArticlesWithoutDates = true

	res, err := NewHTMLExtractor(25).Extract(page, profile, htmlSource())
	if err != nil {
		t.Fatalf("Extract error: %v", err)
	}
	if len(res.Candidates) != 1 {
		t.Fatalf("expected dateless container dropped, got %d candidates", len(res.Candidates))
	}
	if res.Candidates[0].Title != "Dated" {
		t.Fatalf("wrong survivor: %q", res.Candidates[0].Title)
	}
	if len(res.ItemErrors) != 0 {
		t.Fatalf("dropping dateless containers is not an error, got %v", res.ItemErrors)
	}
}

func TestExtractContainerWithoutURLIsItemError(t *testing.T) {
	t.Parallel()

	page := `
	  <div class="post"><h2>Linked</h2><a href="/ok">x</a></div>
	  <div class="post"><h2>Linkless</h2></div>`

	res, err := NewHTMLExtractor(25).Extract(page, postProfile(), htmlSource())
	if err != nil {
		t.Fatalf("Extract error: %v", err)
	}
	if len(res.Candidates) != 1 {
		t.Fatalf("expected 1 candidate, got %d", len(res.Candidates))
	}
	if len(res.ItemErrors) != 1 {
		t.Fatalf("expected 1 item error, got %d", len(res.ItemErrors))
	}
	if res.ItemErrors[0].Kind != domain.ItemErrorExtraction {
		t.Fatalf("unexpected error kind: %s", res.ItemErrors[0].Kind)
	}
}

func TestExtractCapAppliesBeforeDedup(t *testing.T) {
	t.Parallel()

	var b strings.Builder
	for i := 0; i < 8; i++ {
		fmt.Fprintf(&b, `<div class="post"><h2>Post %d</h2><a href="/p/%d">x</a></div>`, i, i)
	}
	profile := postProfile()
	profile.MaxArticles = 3

	res, err := NewHTMLExtractor(25).Extract(b.String(), profile, htmlSource())
	if err != nil {
		t.Fatalf("Extract error: %v", err)
	}
	if res.Found != 8 {
		t.Fatalf("expected found=8, got %d", res.Found)
	}
	if res.Considered != 3 {
		t.Fatalf("expected considered=3, got %d", res.Considered)
	}
	if len(res.Candidates) != 3 {
		t.Fatalf("expected 3 candidates, got %d", len(res.Candidates))
	}
	if res.Candidates[0].Title != "Post 0" {
		t.Fatalf("cap must keep page order, got %q first", res.Candidates[0].Title)
	}
}

func TestExtractContainerAsAnchor(t *testing.T) {
	t.Parallel()

	page := `<a class="story" href="/only"><span>Anchor Container</span></a>`
	profile := domain.ScrapingProfile{ArticleSelector: "a.story"}

	res, err := NewHTMLExtractor(25).Extract(page, profile, htmlSource())
	if err != nil {
		t.Fatalf("Extract error: %v", err)
	}
	if len(res.Candidates) != 1 {
		t.Fatalf("expected 1 candidate, got %d", len(res.Candidates))
	}
	if res.Candidates[0].URL != "https://example.com/only" {
		t.Fatalf("container's own href not used: %q", res.Candidates[0].URL)
	}
	if res.Candidates[0].Title != "Anchor Container" {
		t.Fatalf("default title should be container text, got %q", res.Candidates[0].Title)
	}
}
