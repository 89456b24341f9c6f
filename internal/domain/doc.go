// Package domain contains the core domain entities and value objects for rtfeed.
//
// This package represents the innermost layer of the Clean Architecture. It has
// no dependencies on infrastructure concerns (websockets, timers, storage, logging)
// and contains only the realtime channel protocol and its invariants.
//
// # Entities
//
//   - [Subscription]: The (schema, table, event) triple a client joins
//   - [Endpoint]: Backend host and opaque API key used to build the socket URL
//   - [State]: Connection state of a channel client
//   - [Frame]: An outbound Phoenix channel frame (join, heartbeat)
//   - [Message]: An inbound frame decoded from the socket
//   - [ValidationResult]: Outcome of validating a payload against a schema
//
// # Design Principles
//
// Domain entities are:
//   - Immutable after construction (where practical)
//   - Free of infrastructure dependencies
//   - Focused on protocol rules and invariants
//   - Testable without mocks or external systems
package domain
