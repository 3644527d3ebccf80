// Package engine implements the kanjimerge cascade engine.
//
// The engine owns one board for the lifetime of a game session. External
// callers issue swap, reset and reshuffle requests; the engine mutates the
// board, resolves the cascade to a fixpoint and then proves whether the
// settled board still admits a move.
//
// ARCHITECTURE:
//
// Phase-Stepped Cascade:
// The cascade is an explicit state machine so a presentation layer can
// animate between phases without the core ever sleeping:
//
//	Idle → Scanning → Applying → Settling → Scanning → … → Idle
//	                    ↑ matches      ↓ collapse + refill
//
// Scanning with no matches emits cascade_settled and runs the deadlock guard.
// A deadlocked board moves to Reshuffling (automatic recovery) or back to
// Idle with Deadlocked set (manual recovery).
//
// Request Discipline:
// The board accepts requests only in Idle. Any request issued mid-cascade
// fails with a BUSY RequestError and leaves the board untouched. There is
// one logical actor; the engine holds no goroutines and is not safe for
// concurrent use without external locking.
//
// Determinism:
// Refills draw from an injected IntNSource (ChaCha8 seeded from the game
// spec by default). Events carry logical sequence numbers from Clock. The
// same spec, seed and request sequence always produce the same reports,
// which is what Replay verifies against the session journal.
package engine
