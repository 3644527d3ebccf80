package testutil

import "sync"

// ScriptedRand replays a fixed sequence of draws for deterministic refills.
//
// Each IntN(n) call returns the next scripted value modulo n, cycling back
// to the start when the script runs out. An empty script always draws 0.
// Scenario files list draws as pool indexes:
//
//	draws: [0, 2, 1]
//
// Thread-safety: ScriptedRand is safe for concurrent use via internal mutex.
type ScriptedRand struct {
	mu    sync.Mutex
	draws []int
	idx   int
	calls int
}

// NewScriptedRand creates a rand source that returns draws in order.
func NewScriptedRand(draws ...int) *ScriptedRand {
	return &ScriptedRand{draws: draws}
}

// IntN returns the next scripted draw reduced modulo n.
func (r *ScriptedRand) IntN(n int) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.calls++
	if len(r.draws) == 0 || n <= 0 {
		return 0
	}
	v := r.draws[r.idx%len(r.draws)]
	r.idx++
	if v < 0 {
		v = -v
	}
	return v % n
}

// Calls returns the number of draws taken so far.
func (r *ScriptedRand) Calls() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.calls
}
