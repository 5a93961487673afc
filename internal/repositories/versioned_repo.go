package repositories

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgconn"
	"github.com/jackc/pgx/v4"
	"github.com/poofware/rental-service/internal/utils"
)

const defaultUpdateAttempts = 3

// RowVersioned is satisfied by pointers to models embedding models.Versioned.
type RowVersioned interface {
	comparable
	GetRowVersion() int64
	SetRowVersion(int64)
}

type (
	loadFunc[T RowVersioned]  func(ctx context.Context, id uuid.UUID) (T, error)
	storeFunc[T RowVersioned] func(ctx context.Context, entity T, expected int64) (pgconn.CommandTag, error)
)

/*
versionedRepo rewrites a row under optimistic locking: load it, let the
caller mutate it, then store it only if row_version has not moved. A lost
race reloads and tries again, up to attempts times.
*/
type versionedRepo[T RowVersioned] struct {
	load     loadFunc[T]
	store    storeFunc[T]
	attempts int
}

func newVersionedRepo[T RowVersioned](load loadFunc[T], store storeFunc[T]) *versionedRepo[T] {
	return &versionedRepo[T]{load: load, store: store, attempts: defaultUpdateAttempts}
}

// selectOne binds a single-row SELECT taking the id as $1 to its scanner.
func selectOne[T RowVersioned](db DB, stmt string, scan func(pgx.Row) (T, error)) loadFunc[T] {
	return func(ctx context.Context, id uuid.UUID) (T, error) {
		return scan(db.QueryRow(ctx, stmt, id))
	}
}

// update returns pgx.ErrNoRows when the row is gone and wraps
// utils.ErrRowVersionConflict once every attempt lost its race.
func (v *versionedRepo[T]) update(ctx context.Context, id uuid.UUID, mutate func(T) error) error {
	var zero T
	for range v.attempts {
		current, err := v.load(ctx, id)
		if err != nil {
			return err
		}
		if current == zero {
			return pgx.ErrNoRows
		}

		expected := current.GetRowVersion()
		if err := mutate(current); err != nil {
			return err
		}

		tag, err := v.store(ctx, current, expected)
		if err != nil {
			return err
		}
		if tag.RowsAffected() == 1 {
			current.SetRowVersion(expected + 1)
			return nil
		}
		utils.Logger.WithField("id", id).Debug("row_version moved underneath update, retrying")
	}
	return fmt.Errorf("updating %s: %w", id, utils.ErrRowVersionConflict)
}
