package scraper

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"newsharvest/internal/domain"
)

type fakeFetcher struct {
	html  string
	err   error
	calls int
}

func (f *fakeFetcher) Fetch(ctx context.Context, url string) (string, error) {
	f.calls++
	return f.html, f.err
}

// fakeRenderer also exercises the session pool so selector tests double as
// resource-discipline tests.
type fakeRenderer struct {
	pool  *SessionPool
	html  string
	err   error
	calls int
}

func (r *fakeRenderer) Render(ctx context.Context, url string) (string, error) {
	r.calls++
	if r.pool != nil {
		release, err := r.pool.Acquire(ctx)
		if err != nil {
			return "", err
		}
		defer release()
	}
	return r.html, r.err
}

func htmlWithPosts(n int) string {
	out := "<html><body>"
	for i := 0; i < n; i++ {
		out += fmt.Sprintf(`<div class="post"><a href="/p/%d">p</a></div>`, i)
	}
	return out + "</body></html>"
}

func testTarget() (domain.Source, domain.ScrapingProfile) {
	src := domain.Source{ID: "site", URL: "https://example.com", Type: domain.SourceTypeHTML}
	profile := domain.ScrapingProfile{ArticleSelector: ".post"}
	return src, profile
}

func TestLightweightSuccessSkipsRenderer(t *testing.T) {
	t.Parallel()

	light := &fakeFetcher{html: htmlWithPosts(3)}
	rendered := &fakeRenderer{html: htmlWithPosts(3)}
	sel := NewStrategySelector(light, rendered, nil)

	src, profile := testTarget()
	html, strategy, err := sel.Retrieve(context.Background(), src, profile)
	require.NoError(t, err)

	assert.Equal(t, domain.StrategyLightweight, strategy)
	assert.Equal(t, light.html, html)
	assert.Zero(t, rendered.calls)
}

func TestLightweightFailureEscalates(t *testing.T) {
	t.Parallel()

	light := &fakeFetcher{err: errors.New("connection refused")}
	rendered := &fakeRenderer{html: htmlWithPosts(2)}
	sel := NewStrategySelector(light, rendered, nil)

	src, profile := testTarget()
	_, strategy, err := sel.Retrieve(context.Background(), src, profile)
	require.NoError(t, err)

	assert.Equal(t, domain.StrategyRendered, strategy)
	assert.Equal(t, 1, rendered.calls)
}

func TestZeroContainersEscalates(t *testing.T) {
	t.Parallel()

	// Lightweight fetch succeeds but the static page has no matching
	// containers; the rendered strategy must be attempted before failing.
	light := &fakeFetcher{html: "<html><body><p>script-rendered site</p></body></html>"}
	rendered := &fakeRenderer{html: htmlWithPosts(5)}
	sel := NewStrategySelector(light, rendered, nil)

	src, profile := testTarget()
	html, strategy, err := sel.Retrieve(context.Background(), src, profile)
	require.NoError(t, err)

	assert.Equal(t, domain.StrategyRendered, strategy)
	assert.Equal(t, rendered.html, html)
}

func TestRequiresRenderingSkipsLightweight(t *testing.T) {
	t.Parallel()

	light := &fakeFetcher{html: htmlWithPosts(3)}
	rendered := &fakeRenderer{html: htmlWithPosts(3)}
	sel := NewStrategySelector(light, rendered, nil)

	src, profile := testTarget()
	src.RequiresRendering = true

	_, strategy, err := sel.Retrieve(context.Background(), src, profile)
	require.NoError(t, err)
	assert.Equal(t, domain.StrategyRendered, strategy)
	assert.Zero(t, light.calls)
}

func TestRenderedFailureSurfacesFetchError(t *testing.T) {
	t.Parallel()

	light := &fakeFetcher{err: errors.New("timeout")}
	rendered := &fakeRenderer{err: errors.New("navigation timeout")}
	sel := NewStrategySelector(light, rendered, nil)

	src, profile := testTarget()
	_, _, err := sel.Retrieve(context.Background(), src, profile)

	var fetchErr *domain.FetchError
	require.True(t, errors.As(err, &fetchErr))
	assert.Equal(t, domain.StrategyRendered, fetchErr.Strategy)
}

func TestRenderedZeroContainersIsFetchError(t *testing.T) {
	t.Parallel()

	light := &fakeFetcher{err: errors.New("blocked")}
	rendered := &fakeRenderer{html: "<html><body>nothing here</body></html>"}
	sel := NewStrategySelector(light, rendered, nil)

	src, profile := testTarget()
	_, _, err := sel.Retrieve(context.Background(), src, profile)

	var fetchErr *domain.FetchError
	require.True(t, errors.As(err, &fetchErr))
}

func TestEscalationLeavesNoOpenSessions(t *testing.T) {
	t.Parallel()

	pool := NewSessionPool(2)
	light := &fakeFetcher{html: "<html><body>empty</body></html>"}
	rendered := &fakeRenderer{pool: pool, html: htmlWithPosts(1)}
	sel := NewStrategySelector(light, rendered, nil)

	src, profile := testTarget()
	for i := 0; i < 10; i++ {
		_, _, err := sel.Retrieve(context.Background(), src, profile)
		require.NoError(t, err)
	}
	assert.EqualValues(t, 0, pool.Active())
}

func TestEscalationReleasesSessionsOnRenderError(t *testing.T) {
	t.Parallel()

	pool := NewSessionPool(1)
	light := &fakeFetcher{err: errors.New("down")}
	rendered := &fakeRenderer{pool: pool, err: errors.New("render blocked")}
	sel := NewStrategySelector(light, rendered, nil)

	src, profile := testTarget()
	for i := 0; i < 5; i++ {
		_, _, err := sel.Retrieve(context.Background(), src, profile)
		require.Error(t, err)
	}
	assert.EqualValues(t, 0, pool.Active())
}

func TestLooksBlocked(t *testing.T) {
	t.Parallel()

	assert.True(t, looksBlocked("<html><title>Just a moment...</title></html>"))
	assert.False(t, looksBlocked(htmlWithPosts(1)))
}
