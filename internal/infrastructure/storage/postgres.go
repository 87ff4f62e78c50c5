package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	sq "github.com/Masterminds/squirrel"
	"github.com/lib/pq"

	"newsharvest/internal/domain"
	"newsharvest/internal/ports"
)

const pgUniqueViolation = "23505"

// PostgresStore implements SourceStore and ArticleRepository over Postgres.
type PostgresStore struct {
	db *sql.DB
	sb sq.StatementBuilderType
}

var _ ports.SourceStore = (*PostgresStore)(nil)
var _ ports.ArticleRepository = (*PostgresStore)(nil)

// NewPostgresStore wires a sql.DB implementation.
func NewPostgresStore(db *sql.DB) *PostgresStore {
	return &PostgresStore{
		db: db,
		sb: sq.StatementBuilder.PlaceholderFormat(sq.Dollar),
	}
}

var sourceColumns = []string{
	"id", "name", "url", "type", "enabled", "profile_id", "requires_rendering",
	"article_selector", "title_selector", "url_selector", "date_selector", "description_selector",
	"last_run_status", "last_run_message", "last_fetched_at",
}

// ListEnabledSources returns all sources flagged enabled, in name order.
func (s *PostgresStore) ListEnabledSources(ctx context.Context) ([]domain.Source, error) {
	query, args, err := s.sb.Select(sourceColumns...).
		From("sources").
		Where(sq.Eq{"enabled": true}).
		OrderBy("name").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build sources query: %w", err)
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query sources: %w", err)
	}
	defer rows.Close()

	var sources []domain.Source
	for rows.Next() {
		src, err := scanSource(rows)
		if err != nil {
			return nil, fmt.Errorf("scan source: %w", err)
		}
		sources = append(sources, src)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows iteration: %w", err)
	}

	return sources, nil
}

// FindSource returns one source by id, or (nil, nil) when absent.
func (s *PostgresStore) FindSource(ctx context.Context, id string) (*domain.Source, error) {
	query, args, err := s.sb.Select(sourceColumns...).
		From("sources").
		Where(sq.Eq{"id": id}).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build source query: %w", err)
	}

	src, err := scanSource(s.db.QueryRowContext(ctx, query, args...))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("scan source: %w", err)
	}
	return &src, nil
}

// UpdateSourceLastRun records the outcome of a source's latest attempt.
func (s *PostgresStore) UpdateSourceLastRun(ctx context.Context, sourceID, status, message string, fetchedAt time.Time) error {
	query, args, err := s.sb.Update("sources").
		Set("last_run_status", status).
		Set("last_run_message", message).
		Set("last_fetched_at", fetchedAt).
		Where(sq.Eq{"id": sourceID}).
		ToSql()
	if err != nil {
		return fmt.Errorf("build last-run update: %w", err)
	}

	if _, err := s.db.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("update source %s: %w", sourceID, err)
	}
	return nil
}

// FindByIdentity looks up an article by (source, identity key); (nil, nil)
// when no row matches.
func (s *PostgresStore) FindByIdentity(ctx context.Context, sourceName, identityKey string) (*domain.Article, error) {
	query, args, err := s.sb.Select(
		"id", "title", "url", "identity_key", "description", "published_date",
		"source_name", "source_url", "category", "categorization_status",
		"read", "starred", "hidden", "created_at", "updated_at",
	).
		From("articles").
		Where(sq.Eq{"source_name": sourceName, "identity_key": identityKey}).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build article query: %w", err)
	}

	var (
		a           domain.Article
		description sql.NullString
		published   sql.NullTime
		category    sql.NullString
	)
	err = s.db.QueryRowContext(ctx, query, args...).Scan(
		&a.ID, &a.Title, &a.URL, &a.IdentityKey, &description, &published,
		&a.SourceName, &a.SourceURL, &category, &a.CategorizationStatus,
		&a.Read, &a.Starred, &a.Hidden, &a.CreatedAt, &a.UpdatedAt,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("scan article: %w", err)
	}

	a.Description = description.String
	a.Category = category.String
	if published.Valid {
		a.PublishedDate = &published.Time
	}
	return &a, nil
}

// Insert persists a new article. A uniqueness-constraint violation maps to
// ports.ErrDuplicateArticle so the writer can treat it as a skip.
func (s *PostgresStore) Insert(ctx context.Context, article domain.Article) (domain.Article, error) {
	var published any
	if article.PublishedDate != nil {
		published = *article.PublishedDate
	}

	query, args, err := s.sb.Insert("articles").
		Columns("title", "url", "identity_key", "description", "published_date",
			"source_name", "source_url", "categorization_status").
		Values(article.Title, article.URL, article.IdentityKey, nullable(article.Description), published,
			article.SourceName, article.SourceURL, article.CategorizationStatus).
		Suffix("RETURNING id, created_at, updated_at").
		ToSql()
	if err != nil {
		return domain.Article{}, fmt.Errorf("build article insert: %w", err)
	}

	err = s.db.QueryRowContext(ctx, query, args...).Scan(&article.ID, &article.CreatedAt, &article.UpdatedAt)
	if err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && pqErr.Code == pgUniqueViolation {
			return domain.Article{}, ports.ErrDuplicateArticle
		}
		return domain.Article{}, fmt.Errorf("insert article: %w", err)
	}

	return article, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanSource(row rowScanner) (domain.Source, error) {
	var (
		src         domain.Source
		profileID   sql.NullString
		artSel      sql.NullString
		titleSel    sql.NullString
		urlSel      sql.NullString
		dateSel     sql.NullString
		descSel     sql.NullString
		lastStatus  sql.NullString
		lastMessage sql.NullString
		lastFetched sql.NullTime
	)

	err := row.Scan(
		&src.ID, &src.Name, &src.URL, &src.Type, &src.Enabled, &profileID, &src.RequiresRendering,
		&artSel, &titleSel, &urlSel, &dateSel, &descSel,
		&lastStatus, &lastMessage, &lastFetched,
	)
	if err != nil {
		return domain.Source{}, err
	}

	src.ProfileID = profileID.String
	src.Overrides = domain.SelectorOverrides{
		ArticleSelector:     artSel.String,
		TitleSelector:       titleSel.String,
		URLSelector:         urlSel.String,
		DateSelector:        dateSel.String,
		DescriptionSelector: descSel.String,
	}
	src.LastRunStatus = lastStatus.String
	src.LastRunMessage = lastMessage.String
	if lastFetched.Valid {
		t := lastFetched.Time
		src.LastFetchedAt = &t
	}

	return src, nil
}

func nullable(s string) any {
	if s == "" {
		return nil
	}
	return s
}
