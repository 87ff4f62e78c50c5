package dedup

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"newsharvest/internal/domain"
	"newsharvest/internal/ports"
)

type memRepo struct {
	articles map[string]domain.Article // key: sourceName + "\x00" + identityKey
	findErr  error
	insErr   error
	inserts  int
}

func newMemRepo() *memRepo {
	return &memRepo{articles: map[string]domain.Article{}}
}

func (m *memRepo) key(source, identity string) string { return source + "\x00" + identity }

func (m *memRepo) FindByIdentity(ctx context.Context, sourceName, identityKey string) (*domain.Article, error) {
	if m.findErr != nil {
		return nil, m.findErr
	}
	if a, ok := m.articles[m.key(sourceName, identityKey)]; ok {
		return &a, nil
	}
	return nil, nil
}

func (m *memRepo) Insert(ctx context.Context, article domain.Article) (domain.Article, error) {
	if m.insErr != nil {
		return domain.Article{}, m.insErr
	}
	k := m.key(article.SourceName, article.IdentityKey)
	if _, ok := m.articles[k]; ok {
		return domain.Article{}, ports.ErrDuplicateArticle
	}
	m.inserts++
	article.ID = int64(m.inserts)
	m.articles[k] = article
	return article, nil
}

func candidate() domain.CandidateArticle {
	return domain.CandidateArticle{
		Title:      "A Story",
		URL:        "https://example.com/a-story",
		SourceName: "Example",
		SourceURL:  "https://example.com",
		SourceType: domain.SourceTypeHTML,
	}
}

func TestProcessAddsThenSkips(t *testing.T) {
	t.Parallel()

	repo := newMemRepo()
	writer := NewWriter(repo, nil)
	ctx := context.Background()

	first := writer.Process(ctx, candidate())
	assert.Equal(t, domain.ActionAdded, first.Action)

	// Idempotent re-ingestion: the same candidate is a no-op, never an update.
	second := writer.Process(ctx, candidate())
	assert.Equal(t, domain.ActionSkipped, second.Action)
	assert.Equal(t, 1, repo.inserts)
}

func TestProcessInitializesCategorizationStatus(t *testing.T) {
	t.Parallel()

	repo := newMemRepo()
	writer := NewWriter(repo, nil)

	writer.Process(context.Background(), candidate())

	stored, err := repo.FindByIdentity(context.Background(), "Example", "https://example.com/a-story")
	require.NoError(t, err)
	require.NotNil(t, stored)
	assert.Equal(t, domain.CategorizationPending, stored.CategorizationStatus)
	assert.Empty(t, stored.Category, "category belongs to the categorizer")
}

func TestProcessPrefersGUID(t *testing.T) {
	t.Parallel()

	repo := newMemRepo()
	writer := NewWriter(repo, nil)

	c := candidate()
	c.GUID = "tag:example.com,2025:a-story"
	outcome := writer.Process(context.Background(), c)
	require.Equal(t, domain.ActionAdded, outcome.Action)

	stored, err := repo.FindByIdentity(context.Background(), "Example", "tag:example.com,2025:a-story")
	require.NoError(t, err)
	assert.NotNil(t, stored)
}

func TestProcessValidation(t *testing.T) {
	t.Parallel()

	writer := NewWriter(newMemRepo(), nil)

	c := candidate()
	c.Title = "   "
	outcome := writer.Process(context.Background(), c)
	assert.Equal(t, domain.ActionError, outcome.Action)

	var itemErr domain.ItemError
	require.True(t, errors.As(outcome.Err, &itemErr))
	assert.Equal(t, domain.ItemErrorValidation, itemErr.Kind)
}

func TestProcessNoIdentity(t *testing.T) {
	t.Parallel()

	writer := NewWriter(newMemRepo(), nil)
	outcome := writer.Process(context.Background(), domain.CandidateArticle{Title: "x", SourceName: "s"})
	assert.Equal(t, domain.ActionError, outcome.Action)
}

func TestProcessConstraintViolationIsSkip(t *testing.T) {
	t.Parallel()

	repo := newMemRepo()
	repo.insErr = ports.ErrDuplicateArticle
	writer := NewWriter(repo, nil)

	outcome := writer.Process(context.Background(), candidate())
	assert.Equal(t, domain.ActionSkipped, outcome.Action)
}

func TestProcessLookupFailure(t *testing.T) {
	t.Parallel()

	repo := newMemRepo()
	repo.findErr = errors.New("connection reset")
	writer := NewWriter(repo, nil)

	outcome := writer.Process(context.Background(), candidate())
	assert.Equal(t, domain.ActionError, outcome.Action)

	var itemErr domain.ItemError
	require.True(t, errors.As(outcome.Err, &itemErr))
	assert.Equal(t, domain.ItemErrorPersistence, itemErr.Kind)
}

func TestNormalizeURL(t *testing.T) {
	t.Parallel()

	cases := []struct {
		in   string
		want string
	}{
		{"HTTPS://Example.COM/Path/", "https://example.com/Path"},
		{"https://example.com:443/a", "https://example.com/a"},
		{"http://example.com:80/a", "http://example.com/a"},
		{"https://example.com/a#section", "https://example.com/a"},
		{"https://example.com/", "https://example.com/"},
		{"https://example.com/a?page=2", "https://example.com/a?page=2"},
	}

	for _, tc := range cases {
		assert.Equal(t, tc.want, NormalizeURL(tc.in), "input %q", tc.in)
	}
}

func TestIdentityKey(t *testing.T) {
	t.Parallel()

	c := candidate()
	assert.Equal(t, NormalizeURL(c.URL), IdentityKey(c))

	c.GUID = "guid-1"
	assert.Equal(t, "guid-1", IdentityKey(c))
}
