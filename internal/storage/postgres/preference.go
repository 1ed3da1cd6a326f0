package postgres

import (
	"context"
	"database/sql"
	"errors"

	"github.com/jmoiron/sqlx"
)

// PreferenceStore is a string key/value store for user preferences.
// Key names are owned by the service layer.
type PreferenceStore struct {
	db *sqlx.DB
}

func NewPreferenceStore(db *sqlx.DB) *PreferenceStore {
	return &PreferenceStore{db: db}
}

// Get returns the value for key, or "" when the key has never been set.
func (s *PreferenceStore) Get(ctx context.Context, key string) (string, error) {
	var value string
	err := sqlx.GetContext(ctx, executor(ctx, s.db), &value,
		"SELECT value FROM preferences WHERE key = $1", key)
	if errors.Is(err, sql.ErrNoRows) {
		return "", nil
	}
	if err != nil {
		return "", err
	}
	return value, nil
}

// Set stores the value for key, overwriting any previous value.
func (s *PreferenceStore) Set(ctx context.Context, key, value string) error {
	_, err := executor(ctx, s.db).ExecContext(ctx, `
		INSERT INTO preferences (key, value)
		VALUES ($1, $2)
		ON CONFLICT (key) DO UPDATE SET value = EXCLUDED.value`,
		key, value)
	return err
}
