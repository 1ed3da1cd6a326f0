package postgres

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/jmoiron/sqlx"

	"newscache/internal/domain"
)

// ArticleStore persists articles keyed by (url, category).
type ArticleStore struct {
	db *sqlx.DB
}

func NewArticleStore(db *sqlx.DB) *ArticleStore {
	return &ArticleStore{db: db}
}

type articleRow struct {
	Title       string          `db:"title"`
	Description string          `db:"description"`
	URL         string          `db:"url"`
	ImageURL    string          `db:"image_url"`
	SourceID    string          `db:"source_id"`
	SourceName  string          `db:"source_name"`
	PublishedAt time.Time       `db:"published_at"`
	Category    domain.Category `db:"category"`
}

// Insert upserts a batch of articles, replacing any existing row with
// the same (url, category).
func (s *ArticleStore) Insert(ctx context.Context, articles []domain.Article) error {
	if len(articles) == 0 {
		return nil
	}

	var sb strings.Builder
	sb.WriteString(`INSERT INTO articles
		(url, category, title, description, image_url, source_id, source_name, published_at)
		VALUES `)

	args := make([]interface{}, 0, len(articles)*8)
	for i, a := range articles {
		if i > 0 {
			sb.WriteString(", ")
		}
		base := i * 8
		sb.WriteString(fmt.Sprintf("($%d, $%d, $%d, $%d, $%d, $%d, $%d, $%d)",
			base+1, base+2, base+3, base+4, base+5, base+6, base+7, base+8))
		args = append(args,
			a.URL, a.Category, a.Title, a.Description,
			a.ImageURL, a.Source.ID, a.Source.Name, a.PublishedAt,
		)
	}

	sb.WriteString(` ON CONFLICT (url, category) DO UPDATE SET
		title = EXCLUDED.title,
		description = EXCLUDED.description,
		image_url = EXCLUDED.image_url,
		source_id = EXCLUDED.source_id,
		source_name = EXCLUDED.source_name,
		published_at = EXCLUDED.published_at`)

	_, err := executor(ctx, s.db).ExecContext(ctx, sb.String(), args...)
	return err
}

// DeleteByCategory removes every article in a category.
func (s *ArticleStore) DeleteByCategory(ctx context.Context, category domain.Category) error {
	_, err := executor(ctx, s.db).ExecContext(ctx,
		"DELETE FROM articles WHERE category = $1", category)
	return err
}

// Delete removes the given rows by their (url, category) keys.
func (s *ArticleStore) Delete(ctx context.Context, articles []domain.Article) error {
	exec := executor(ctx, s.db)
	for _, a := range articles {
		_, err := exec.ExecContext(ctx,
			"DELETE FROM articles WHERE url = $1 AND category = $2",
			a.URL, a.Category)
		if err != nil {
			return err
		}
	}
	return nil
}

// GetByCategory returns a category's articles, newest first.
func (s *ArticleStore) GetByCategory(ctx context.Context, category domain.Category) ([]domain.Article, error) {
	rows, err := executor(ctx, s.db).QueryxContext(ctx, `
		SELECT url, category, title, description, image_url, source_id, source_name, published_at
		FROM articles
		WHERE category = $1
		ORDER BY published_at DESC, url`, category)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return scanArticles(rows)
}

// GetByURL returns every row matching a url, across all categories.
func (s *ArticleStore) GetByURL(ctx context.Context, url string) ([]domain.Article, error) {
	rows, err := executor(ctx, s.db).QueryxContext(ctx, `
		SELECT url, category, title, description, image_url, source_id, source_name, published_at
		FROM articles
		WHERE url = $1`, url)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return scanArticles(rows)
}

func scanArticles(rows *sqlx.Rows) ([]domain.Article, error) {
	var articles []domain.Article
	for rows.Next() {
		var r articleRow
		if err := rows.StructScan(&r); err != nil {
			return nil, err
		}
		articles = append(articles, domain.Article{
			Title:       r.Title,
			Description: r.Description,
			URL:         r.URL,
			ImageURL:    r.ImageURL,
			Source:      domain.Source{ID: r.SourceID, Name: r.SourceName},
			PublishedAt: r.PublishedAt,
			Category:    r.Category,
		})
	}
	return articles, rows.Err()
}
