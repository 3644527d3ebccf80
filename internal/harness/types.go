package harness

import "github.com/roach88/kanjimerge/internal/ir"

// Trace entry types.
const (
	TraceTypeRequest = "request"
	TraceTypeEvent   = "event"
)

// TraceEvent is one entry of a scenario trace: either a request with its
// outcome, or an engine event emitted while resolving that request.
// Step 0 is the initial deal; scenario steps are numbered from 1.
type TraceEvent struct {
	Type string `json:"type"` // "request" or "event"
	Step int    `json:"step"`

	// Request entries.
	Request    string   `json:"request,omitempty"`
	Swap       *ir.Move `json:"swap,omitempty"`
	Error      string   `json:"error,omitempty"`
	ComboDepth int      `json:"combo_depth,omitempty"`
	Deadlocked bool     `json:"deadlocked,omitempty"`
	Score      int      `json:"score,omitempty"`

	// Event entries.
	Seq     int64       `json:"seq,omitempty"`
	Kind    string      `json:"kind,omitempty"`
	Depth   int         `json:"depth,omitempty"`
	Attempt int         `json:"attempt,omitempty"`
	Applied *ir.Applied `json:"applied,omitempty"`
}

// Result is the outcome of a test scenario execution.
type Result struct {
	// Pass indicates overall test success.
	// True if every expect clause and assertion held.
	Pass bool `json:"pass"`

	// Trace contains every request and event in order.
	Trace []TraceEvent `json:"trace"`

	// Errors contains validation error messages.
	// Empty if Pass is true.
	Errors []string `json:"errors,omitempty"`

	// Board is the final board, row 0 first.
	Board [][]ir.Symbol `json:"board"`

	// Settled reports a full board without matches.
	Settled bool `json:"settled"`

	// Deadlocked reports whether no single swap could produce a match.
	Deadlocked bool `json:"deadlocked"`

	// Replayed is set when the run was journaled and replayed without
	// mismatches.
	Replayed bool `json:"replayed,omitempty"`
}

// NewResult creates a new passing result.
// Used as the starting point for test execution.
func NewResult() *Result {
	return &Result{
		Pass:   true,
		Trace:  []TraceEvent{},
		Errors: []string{},
	}
}

// AddError adds a validation error and marks the result as failed.
func (r *Result) AddError(err string) {
	r.Errors = append(r.Errors, err)
	r.Pass = false
}

// AddRequestTrace adds a request outcome to the trace, followed by the
// events of its report.
func (r *Result) AddRequestTrace(step int, kind ir.RequestKind, swap *ir.Move, report *ir.Report, errCode string) {
	entry := TraceEvent{
		Type:    TraceTypeRequest,
		Step:    step,
		Request: string(kind),
		Swap:    swap,
		Error:   errCode,
	}
	if report != nil {
		entry.ComboDepth = report.ComboDepth
		entry.Deadlocked = report.Deadlocked
		entry.Score = report.Score
	}
	r.Trace = append(r.Trace, entry)

	if report == nil {
		return
	}
	for _, ev := range report.Events {
		r.Trace = append(r.Trace, TraceEvent{
			Type:    TraceTypeEvent,
			Step:    step,
			Seq:     ev.Seq,
			Kind:    string(ev.Kind),
			Depth:   ev.Depth,
			Attempt: ev.Attempt,
			Applied: ev.Applied,
		})
	}
}

// Events returns the event entries of the trace.
func (r *Result) Events() []TraceEvent {
	out := []TraceEvent{}
	for _, e := range r.Trace {
		if e.Type == TraceTypeEvent {
			out = append(out, e)
		}
	}
	return out
}
