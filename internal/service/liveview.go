package service

import (
	"context"

	"newscache/internal/domain"
)

// watchEvent marks a change in one of the two inputs a live view folds
// over: the store's category contents or the category's status.
type watchEvent struct {
	fromStore bool
}

// LiveView returns a stream of combined (status, articles) views for a
// category. Subscribing resets the category's status to unset so a
// stale outcome from an earlier caller cannot leak into the new view.
// The stream emits an initial snapshot, then re-emits on every store
// or status change, and closes when ctx ends. Only the latest view is
// retained for a slow reader.
func (c *Coordinator) LiveView(ctx context.Context, category domain.Category) <-chan domain.SyncView {
	ch := make(chan watchEvent, 8)

	c.mu.Lock()
	delete(c.statuses, category)
	c.watchers[category] = append(c.watchers[category], ch)
	c.mu.Unlock()

	out := make(chan domain.SyncView, 1)

	go func() {
		defer close(out)
		defer c.unwatch(category, ch)

		c.emit(ctx, out, category, true)
		for {
			select {
			case <-ctx.Done():
				return
			case ev := <-ch:
				c.emit(ctx, out, category, ev.fromStore)
			}
		}
	}()

	return out
}

// SetStatus records a fetch status for a category and wakes its live
// views. Callers acknowledge a terminal status by downgrading it to
// StatusHandled.
func (c *Coordinator) SetStatus(category domain.Category, status domain.FetchStatus) {
	c.mu.Lock()
	c.statuses[category] = status
	watchers := append([]chan watchEvent(nil), c.watchers[category]...)
	c.mu.Unlock()

	notify(watchers, watchEvent{fromStore: false})
}

// notifyStore wakes a category's live views after a store mutation.
func (c *Coordinator) notifyStore(category domain.Category) {
	c.mu.Lock()
	watchers := append([]chan watchEvent(nil), c.watchers[category]...)
	c.mu.Unlock()

	notify(watchers, watchEvent{fromStore: true})
}

func notify(watchers []chan watchEvent, ev watchEvent) {
	for _, ch := range watchers {
		select {
		case ch <- ev:
		default:
			// Watcher buffer full; the pending events already force a
			// requery, which reads the same current state.
		}
	}
}

func (c *Coordinator) unwatch(category domain.Category, ch chan watchEvent) {
	c.mu.Lock()
	defer c.mu.Unlock()

	watchers := c.watchers[category]
	for i, w := range watchers {
		if w == ch {
			c.watchers[category] = append(watchers[:i:i], watchers[i+1:]...)
			break
		}
	}
}

func (c *Coordinator) emit(ctx context.Context, out chan domain.SyncView, category domain.Category, fromStore bool) {
	articles, err := c.store.GetByCategory(ctx, category)
	if err != nil {
		if ctx.Err() == nil {
			c.logger.Error("live view query failed", "category", category, "error", err)
		}
		return
	}

	view := c.combine(category, articles, fromStore)

	for {
		select {
		case out <- view:
			return
		default:
			// Replace the unread view so the reader sees the newest one.
			select {
			case <-out:
			default:
			}
		}
	}
}

// combine merges the store result with the category's tracked status.
// A populated or freshly queried store result is never masked by a
// leftover status; an explicit failure surfaces only when the store is
// empty and a status was actually recorded.
func (c *Coordinator) combine(category domain.Category, articles []domain.Article, fromStore bool) domain.SyncView {
	c.mu.Lock()
	status, tracked := c.statuses[category]
	c.mu.Unlock()

	if fromStore && (len(articles) > 0 || !tracked) {
		return domain.SyncView{Status: domain.StatusOK, Articles: articles}
	}

	effective := domain.StatusHandled
	if tracked {
		effective = status
	}
	return domain.SyncView{Status: effective, Articles: articles}
}
