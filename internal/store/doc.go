// Package store provides the SQLite-backed session journal.
//
// A journal holds, per session, the game definition that built the engine,
// the initial board, and every request with its outcome and events:
//   - sessions: spec, spec hash, engine version, initial board and hash
//   - requests: kind, swap arguments, error code, summary, settled board
//   - events: the report's event stream, one row per event
//
// # Deterministic Ordering
//
// All ordering uses seq INTEGER (logical clock), never timestamps. Every
// multi-row query orders by seq ASC, with COLLATE BINARY tie-breaks on text
// keys, so identical journals read back identically.
//
// # Database Configuration
//
//   - WAL mode: Concurrent reads during writes
//   - synchronous=NORMAL: Balance durability/performance
//   - busy_timeout=5000: Wait for locks up to 5 seconds
//   - foreign_keys=ON: Enforce referential integrity
//
// Boards, specs and event payloads are stored as canonical JSON
// (ir.MarshalCanonical); board hashes come from ir.BoardHash.
package store
