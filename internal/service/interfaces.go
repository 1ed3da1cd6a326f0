package service

//go:generate mockgen -source=interfaces.go -destination=mocks/mocks.go -package=mocks

import (
	"context"

	"newscache/internal/domain"
)

type ArticleStore interface {
	Insert(ctx context.Context, articles []domain.Article) error
	DeleteByCategory(ctx context.Context, category domain.Category) error
	Delete(ctx context.Context, articles []domain.Article) error
	GetByCategory(ctx context.Context, category domain.Category) ([]domain.Article, error)
	GetByURL(ctx context.Context, url string) ([]domain.Article, error)
}

type PreferenceStore interface {
	Get(ctx context.Context, key string) (string, error)
	Set(ctx context.Context, key, value string) error
}

type Fetcher interface {
	TopHeadlinesBySources(ctx context.Context, sourceIDs []string, pageSize int) ([]domain.Article, error)
	TopHeadlinesByCountry(ctx context.Context, country string, pageSize int) ([]domain.Article, error)
	Sources(ctx context.Context, category, language string) ([]domain.Source, error)
}

type TransactionManager interface {
	WithTransaction(ctx context.Context, fn func(ctx context.Context) error) error
}

type ConnectivityChecker interface {
	Available(ctx context.Context) bool
}

type Publisher interface {
	PublishReplace(ctx context.Context, category domain.Category, count int) error
	PublishSaveToggle(ctx context.Context, article domain.Article, saved bool) error
	Close() error
}
