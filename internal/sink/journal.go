package sink

import (
	"context"
	"time"

	"github.com/bft-labs/rtfeed/internal/domain"
	"github.com/bft-labs/rtfeed/internal/ports"
)

// DefaultJournalTimeout bounds a single journal write.
const DefaultJournalTimeout = 5 * time.Second

// JournalHandler appends every message to a journal.
// Write failures are logged and do not stop the feed.
type JournalHandler struct {
	Journal ports.Journal
	Logger  ports.Logger

	// Now defaults to time.Now.
	Now func() time.Time

	// Timeout defaults to DefaultJournalTimeout.
	Timeout time.Duration
}

// OnChangeEvent persists msg.
func (h *JournalHandler) OnChangeEvent(msg domain.Message) {
	now := time.Now
	if h.Now != nil {
		now = h.Now
	}
	timeout := h.Timeout
	if timeout <= 0 {
		timeout = DefaultJournalTimeout
	}

	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	id, err := h.Journal.Append(ctx, msg, now())
	if err != nil {
		h.Logger.Error("journal append failed", ports.Err(err), ports.String("event", msg.Event))
		return
	}
	h.Logger.Debug("journaled message", ports.Any("id", id), ports.String("event", msg.Event))
}
