package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"newscache/internal/domain"
)

// ErrNoConnectivity is returned by Sources when the network is not
// reachable.
var ErrNoConnectivity = errors.New("no network connectivity")

// Sources fetches the remote source catalogue, optionally filtered by
// category and language, and annotates each entry with whether the
// user has saved it. A remote fault degrades to a nil catalogue rather
// than an error; only missing connectivity fails fast.
func (c *Coordinator) Sources(ctx context.Context, category, language string) ([]domain.SourceWithPreference, error) {
	if !c.net.Available(ctx) {
		return nil, ErrNoConnectivity
	}

	catalogue, err := c.fetcher.Sources(ctx, category, language)
	if err != nil {
		c.logger.Error("fetch source catalogue failed", "error", err)
		return nil, nil
	}

	savedList, err := c.prefs.Get(ctx, PrefKeySavedSources)
	if err != nil {
		return nil, fmt.Errorf("read saved sources: %w", err)
	}

	savedIDs := make(map[string]bool)
	for _, id := range splitSourceIDs(savedList) {
		savedIDs[id] = true
	}

	result := make([]domain.SourceWithPreference, 0, len(catalogue))
	for _, s := range catalogue {
		result = append(result, domain.SourceWithPreference{
			Source:  s,
			IsSaved: savedIDs[s.ID],
		})
	}
	return result, nil
}

// UpdateSourcePreference adds or removes the source's id from the
// saved-source list. Saving an already saved source, or unsaving an
// absent one, leaves the list unchanged.
func (c *Coordinator) UpdateSourcePreference(ctx context.Context, pref domain.SourceWithPreference) error {
	current, err := c.prefs.Get(ctx, PrefKeySavedSources)
	if err != nil {
		return fmt.Errorf("read saved sources: %w", err)
	}
	ids := splitSourceIDs(current)

	if pref.IsSaved {
		if !containsID(ids, pref.Source.ID) {
			ids = append(ids, pref.Source.ID)
		}
	} else {
		ids = removeID(ids, pref.Source.ID)
	}

	if err := c.prefs.Set(ctx, PrefKeySavedSources, strings.Join(ids, ",")); err != nil {
		return fmt.Errorf("write saved sources: %w", err)
	}
	return nil
}

func splitSourceIDs(s string) []string {
	if s == "" {
		return nil
	}
	parts := strings.Split(s, ",")
	ids := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			ids = append(ids, p)
		}
	}
	return ids
}

func containsID(ids []string, id string) bool {
	for _, v := range ids {
		if v == id {
			return true
		}
	}
	return false
}

func removeID(ids []string, id string) []string {
	result := ids[:0]
	for _, v := range ids {
		if v != id {
			result = append(result, v)
		}
	}
	return result
}
