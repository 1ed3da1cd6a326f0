package domain

import "time"

// Category partitions articles in the cache. An article's identity is
// the (URL, Category) pair, so the same URL may live in PERSONAL or
// LOCAL and, independently, in SAVED.
type Category string

const (
	CategoryPersonal Category = "sources"
	CategoryLocal    Category = "local"
	CategorySaved    Category = "saved"
)

// Source identifies a news publisher.
type Source struct {
	ID   string
	Name string
}

type Article struct {
	Title       string
	Description string
	URL         string
	ImageURL    string
	Source      Source
	PublishedAt time.Time
	Category    Category
}

// FetchStatus is the last known outcome of a refresh attempt for a
// category. Callers acknowledge a terminal status by downgrading it to
// StatusHandled via SetStatus.
type FetchStatus string

const (
	StatusOK         FetchStatus = "ok"
	StatusNoInternet FetchStatus = "no_internet"
	StatusError      FetchStatus = "error"
	StatusHandled    FetchStatus = "handled"
)

// SyncView is the combined (status, articles) projection delivered to
// live view subscribers.
type SyncView struct {
	Status   FetchStatus
	Articles []Article
}

// SavedStatus reports the outcome of a save toggle.
type SavedStatus string

const (
	Saved     SavedStatus = "saved"
	NotSaved  SavedStatus = "not_saved"
	SaveError SavedStatus = "error"
)

// SourceWithPreference joins a catalogue source with the user's saved
// preference.
type SourceWithPreference struct {
	Source  Source
	IsSaved bool
}
