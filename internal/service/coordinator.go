package service

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"newscache/internal/domain"
)

// Preference keys understood by the coordinator. The saved-source list
// is stored as a comma-delimited string of source ids.
const (
	PrefKeyCountry            = "country"
	PrefKeySavedSources       = "saved_sources"
	PrefKeyOnboardingComplete = "onboarding_complete"
	PrefKeyInAppBrowser       = "view_in_app_browser"
)

const (
	defaultCountry = "gb"
	defaultSources = "bbc-news"
)

type Config struct {
	PageSize int
}

// Coordinator reconciles the article store with remote fetch results,
// tracks per-category fetch status and serves combined live views.
// One instance is constructed at startup and shared by all callers.
type Coordinator struct {
	fetcher   Fetcher
	store     ArticleStore
	prefs     PreferenceStore
	txManager TransactionManager
	net       ConnectivityChecker
	publisher Publisher
	logger    *slog.Logger
	pageSize  int

	mu       sync.Mutex
	statuses map[domain.Category]domain.FetchStatus
	watchers map[domain.Category][]chan watchEvent

	// Serializes toggles so two in-process toggles of the same url
	// cannot interleave their lookup-then-act sequences.
	toggleMu sync.Mutex
}

func New(
	fetcher Fetcher,
	store ArticleStore,
	prefs PreferenceStore,
	txManager TransactionManager,
	net ConnectivityChecker,
	publisher Publisher,
	logger *slog.Logger,
	cfg Config,
) *Coordinator {
	return &Coordinator{
		fetcher:   fetcher,
		store:     store,
		prefs:     prefs,
		txManager: txManager,
		net:       net,
		publisher: publisher,
		logger:    logger.With("component", "coordinator"),
		pageSize:  cfg.PageSize,
		statuses:  make(map[domain.Category]domain.FetchStatus),
		watchers:  make(map[domain.Category][]chan watchEvent),
	}
}

// Refresh replaces a category's cached articles with the target's
// remote headlines. The outcome is reported through the category's
// status; an error return means the fetch or the replace itself
// faulted, so a batch caller can abort.
func (c *Coordinator) Refresh(ctx context.Context, target domain.RefreshTarget) error {
	category := target.Category()
	logger := c.logger.With("op", "refresh", "category", category)

	if !c.net.Available(ctx) {
		logger.Warn("network unavailable")
		c.SetStatus(category, domain.StatusNoInternet)
		return nil
	}

	var (
		articles []domain.Article
		err      error
	)
	switch t := target.(type) {
	case domain.PersonalTarget:
		articles, err = c.fetcher.TopHeadlinesBySources(ctx, t.SourceIDs, c.pageSize)
	case domain.LocalTarget:
		articles, err = c.fetcher.TopHeadlinesByCountry(ctx, t.Country, c.pageSize)
	default:
		c.SetStatus(category, domain.StatusError)
		return fmt.Errorf("unknown refresh target %T", target)
	}
	if err != nil {
		logger.Error("fetch failed", "error", err)
		c.SetStatus(category, domain.StatusError)
		return fmt.Errorf("fetch %s headlines: %w", category, err)
	}

	if len(articles) == 0 {
		// A transient empty page must not wipe a good cache.
		logger.Warn("empty result, keeping cached articles")
		c.SetStatus(category, domain.StatusError)
		return nil
	}

	for i := range articles {
		articles[i].Category = category
	}

	err = c.txManager.WithTransaction(ctx, func(txCtx context.Context) error {
		if err := c.store.DeleteByCategory(txCtx, category); err != nil {
			return fmt.Errorf("delete category: %w", err)
		}
		if err := c.store.Insert(txCtx, articles); err != nil {
			return fmt.Errorf("insert articles: %w", err)
		}
		return nil
	})
	if err != nil {
		logger.Error("replace failed", "error", err)
		c.SetStatus(category, domain.StatusError)
		return fmt.Errorf("replace %s articles: %w", category, err)
	}

	c.notifyStore(category)

	if c.publisher != nil {
		if err := c.publisher.PublishReplace(ctx, category, len(articles)); err != nil {
			logger.Warn("publish replace event failed", "error", err)
		}
	}

	logger.Info("category refreshed", "count", len(articles))
	return nil
}

// RefreshAll refreshes PERSONAL then LOCAL, resolving fetch parameters
// from preferences. It stops at the first category whose refresh
// faults or results in ERROR and reports false. A NO_INTERNET outcome
// does not abort the batch.
func (c *Coordinator) RefreshAll(ctx context.Context) bool {
	targets, err := c.refreshTargets(ctx)
	if err != nil {
		c.logger.Error("resolve refresh targets failed", "error", err)
		return false
	}

	for _, target := range targets {
		if err := c.Refresh(ctx, target); err != nil {
			return false
		}
		if status, ok := c.Status(target.Category()); ok && status == domain.StatusError {
			return false
		}
	}
	return true
}

func (c *Coordinator) refreshTargets(ctx context.Context) ([]domain.RefreshTarget, error) {
	sources, err := c.prefs.Get(ctx, PrefKeySavedSources)
	if err != nil {
		return nil, fmt.Errorf("read saved sources: %w", err)
	}
	if sources == "" {
		sources = defaultSources
	}

	country, err := c.prefs.Get(ctx, PrefKeyCountry)
	if err != nil {
		return nil, fmt.Errorf("read country: %w", err)
	}
	if country == "" {
		country = defaultCountry
	}

	return []domain.RefreshTarget{
		domain.PersonalTarget{SourceIDs: splitSourceIDs(sources)},
		domain.LocalTarget{Country: country},
	}, nil
}

// ToggleSave flips an article's membership in the SAVED category.
// Storage faults are absorbed: the caller gets an error marker, never
// a hard failure.
func (c *Coordinator) ToggleSave(ctx context.Context, article domain.Article) domain.SavedStatus {
	c.toggleMu.Lock()
	defer c.toggleMu.Unlock()

	logger := c.logger.With("op", "toggle_save", "url", article.URL)

	matching, err := c.store.GetByURL(ctx, article.URL)
	if err != nil {
		logger.Error("lookup failed", "error", err)
		return domain.SaveError
	}

	var saved *domain.Article
	for i := range matching {
		if matching[i].Category == domain.CategorySaved {
			saved = &matching[i]
			break
		}
	}

	if saved == nil {
		clone := article
		clone.Category = domain.CategorySaved
		if err := c.store.Insert(ctx, []domain.Article{clone}); err != nil {
			logger.Error("insert failed", "error", err)
			return domain.SaveError
		}
		c.notifyStore(domain.CategorySaved)
		c.publishToggle(ctx, clone, true)
		return domain.Saved
	}

	if err := c.store.Delete(ctx, []domain.Article{*saved}); err != nil {
		logger.Error("delete failed", "error", err)
		return domain.SaveError
	}
	c.notifyStore(domain.CategorySaved)
	c.publishToggle(ctx, *saved, false)
	return domain.NotSaved
}

func (c *Coordinator) publishToggle(ctx context.Context, article domain.Article, saved bool) {
	if c.publisher == nil {
		return
	}
	if err := c.publisher.PublishSaveToggle(ctx, article, saved); err != nil {
		c.logger.Warn("publish save event failed", "url", article.URL, "error", err)
	}
}

// Status returns the tracked status for a category; ok is false when
// no status has been recorded since the last reset.
func (c *Coordinator) Status(category domain.Category) (domain.FetchStatus, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	status, ok := c.statuses[category]
	return status, ok
}
