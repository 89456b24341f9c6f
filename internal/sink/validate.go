package sink

import (
	"sync/atomic"

	"github.com/bft-labs/rtfeed/internal/domain"
	"github.com/bft-labs/rtfeed/internal/ports"
)

// SchemaHolder holds the current payload schema. It is swapped atomically
// so a watcher can reload it while messages are being validated.
type SchemaHolder struct {
	schema atomic.Pointer[[]byte]
}

// NewSchemaHolder creates a holder with an initial schema (may be nil).
func NewSchemaHolder(schema []byte) *SchemaHolder {
	h := &SchemaHolder{}
	if schema != nil {
		h.Set(schema)
	}
	return h
}

// Get returns the current schema, or nil if none is loaded.
func (h *SchemaHolder) Get() []byte {
	p := h.schema.Load()
	if p == nil {
		return nil
	}
	return *p
}

// Set replaces the current schema.
func (h *SchemaHolder) Set(schema []byte) {
	b := append([]byte(nil), schema...)
	h.schema.Store(&b)
}

// ValidatingHandler forwards change records that satisfy the current schema.
// Messages without a record, and all messages while no schema is loaded,
// are forwarded unchanged.
type ValidatingHandler struct {
	Schema    *SchemaHolder
	Validator ports.Validator
	Logger    ports.Logger
	Next      ports.ChangeHandler

	dropped atomic.Uint64
}

// OnChangeEvent validates the change record and forwards or drops msg.
func (h *ValidatingHandler) OnChangeEvent(msg domain.Message) {
	schema := h.Schema.Get()
	record, ok := msg.Record()
	if schema == nil || !ok {
		h.forward(msg)
		return
	}

	res, err := h.Validator.Validate(schema, record)
	if err != nil {
		h.dropped.Add(1)
		h.Logger.Error("validate payload", ports.Err(err), ports.String("event", msg.Event))
		return
	}
	if !res.Valid {
		h.dropped.Add(1)
		h.Logger.Warn("payload failed validation",
			ports.String("topic", msg.Topic),
			ports.Any("errors", res.Errors),
		)
		return
	}

	h.forward(msg)
}

// Dropped returns the number of messages rejected so far.
func (h *ValidatingHandler) Dropped() uint64 {
	return h.dropped.Load()
}

func (h *ValidatingHandler) forward(msg domain.Message) {
	if h.Next != nil {
		h.Next.OnChangeEvent(msg)
	}
}
