package store

import (
	"context"
	"time"

	"github.com/nhle/mail-headers/internal/model"
)

// Store defines the persistence interface for fetch history.
type Store interface {
	// RecordFetch appends one fetch outcome. An empty ID gets a new UUID.
	RecordFetch(ctx context.Context, rec model.FetchRecord) error

	// RecentFetches returns up to limit records, newest first.
	RecentFetches(ctx context.Context, limit int) ([]model.FetchRecord, error)

	// PruneBefore deletes records older than the cutoff and returns how
	// many were removed.
	PruneBefore(ctx context.Context, cutoff time.Time) (int64, error)

	Close() error
}
