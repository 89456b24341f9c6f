// Package sink provides change handlers that can be chained behind a
// channel client: logging, payload validation and journaling.
//
// Handlers run on the client's callback goroutine, one message at a time.
package sink
