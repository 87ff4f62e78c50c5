package telegram

import (
	"context"
	"strings"
	"testing"

	"newsharvest/internal/domain"
)

func TestBuildDigest(t *testing.T) {
	t.Parallel()

	result := domain.FetchRunResult{
		RunID:            "run-1",
		Status:           domain.RunCompletedWithErrors,
		SourcesAttempted: 3,
		SourcesFailed:    1,
		TotalNewArticles: 12,
		Summaries: []domain.ProcessingSummary{
			{SourceName: "Good Feed", Status: domain.StatusSuccess, Message: "5 new, 0 skipped"},
			{SourceName: "Flaky Site", Status: domain.StatusPartialSuccess, Message: "7 new, 0 skipped, 2 items failed"},
			{SourceName: "Down Site", Status: domain.StatusFailed, Message: "source processing failed", FetchError: "rendered fetch of https://down.example: navigation timeout"},
		},
	}

	digest := buildDigest(result)

	if !strings.Contains(digest, "completed_with_errors") {
		t.Fatalf("digest missing run status: %q", digest)
	}
	if !strings.Contains(digest, "12 new articles") {
		t.Fatalf("digest missing totals: %q", digest)
	}
	if strings.Contains(digest, "Good Feed") {
		t.Fatalf("successful sources should not be listed: %q", digest)
	}
	if !strings.Contains(digest, "Flaky Site") || !strings.Contains(digest, "Down Site") {
		t.Fatalf("problem sources missing: %q", digest)
	}
	if !strings.Contains(digest, "navigation timeout") {
		t.Fatalf("fetch error detail missing: %q", digest)
	}
}

func TestPublishRunDigestMisconfigured(t *testing.T) {
	t.Parallel()

	n := NewNotifier("", "")
	if err := n.PublishRunDigest(context.Background(), domain.FetchRunResult{}); err == nil {
		t.Fatal("expected error for missing credentials")
	}
}
