// Package ports defines the interfaces (ports) that connect the application
// layer to infrastructure adapters.
//
// In Clean Architecture / Hexagonal Architecture, ports are the boundaries
// between the application core and the outside world. They define what the
// channel client needs from external systems without specifying how those
// needs are fulfilled.
//
// # Port Interfaces
//
//   - [Dialer], [Socket], [SocketHandler]: The websocket transport
//   - [Scheduler], [Timer]: Single-shot and repeating cancellable timers
//   - [ChangeHandler]: Receives decoded inbound messages
//   - [Validator]: Validates payloads against a schema
//   - [Logger]: Structured logging abstraction
//
// # Usage
//
// The application layer (internal/app) depends only on these interfaces.
// Infrastructure adapters (internal/adapters) implement them with gorilla
// websocket, the runtime clock, sqlite, CUE and zerolog.
//
// Transport and timer ports are non-blocking: every call returns immediately
// and all reactions arrive later through callbacks.
package ports
