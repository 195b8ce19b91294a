package classify

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// PgStore implements Store with PostgreSQL.
type PgStore struct {
	pool *pgxpool.Pool
}

// NewPgStore creates a new PostgreSQL classification store.
func NewPgStore(pool *pgxpool.Pool) *PgStore {
	return &PgStore{pool: pool}
}

func (s *PgStore) Get(ctx context.Context, assetKey string) (bool, bool, error) {
	var v bool
	err := s.pool.QueryRow(ctx,
		`SELECT stroop_unit FROM asset_classifications WHERE asset_key = $1`,
		assetKey).Scan(&v)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return false, false, nil
		}
		return false, false, fmt.Errorf("getting classification for %s: %w", assetKey, err)
	}
	return v, true, nil
}

// Put records an answer. Existing rows are left untouched.
func (s *PgStore) Put(ctx context.Context, assetKey string, value bool) error {
	_, err := s.pool.Exec(ctx,
		`INSERT INTO asset_classifications (asset_key, stroop_unit, resolved_at)
		 VALUES ($1, $2, NOW())
		 ON CONFLICT (asset_key) DO NOTHING`,
		assetKey, value)
	if err != nil {
		return fmt.Errorf("saving classification for %s: %w", assetKey, err)
	}
	return nil
}
