package ports

import (
	"context"
	"time"

	"github.com/bft-labs/rtfeed/internal/domain"
)

// Journal persists received messages.
type Journal interface {
	// Append stores msg and returns its row id.
	Append(ctx context.Context, msg domain.Message, receivedAt time.Time) (int64, error)

	// Recent returns up to limit entries, newest first.
	Recent(ctx context.Context, limit int) ([]domain.JournalEntry, error)

	// Prune deletes entries received before cutoff and returns how many were removed.
	Prune(ctx context.Context, cutoff time.Time) (int64, error)
}
