package ir

// EventKind distinguishes the events emitted while resolving a request.
type EventKind string

const (
	EventMatchApplied       EventKind = "match_applied"
	EventComboStep          EventKind = "combo_step"
	EventCascadeSettled     EventKind = "cascade_settled"
	EventDeadlockDetected   EventKind = "deadlock_detected"
	EventReshuffleTriggered EventKind = "reshuffle_triggered"
)

// ValidEventKinds defines the allowed event kinds.
var ValidEventKinds = map[EventKind]bool{
	EventMatchApplied:       true,
	EventComboStep:          true,
	EventCascadeSettled:     true,
	EventDeadlockDetected:   true,
	EventReshuffleTriggered: true,
}

// Event is a single notification for scorers and animators.
//
// Depth is set on combo_step, match_applied and cascade_settled.
// Attempt is set on reshuffle_triggered (1-based).
type Event struct {
	Seq     int64     `json:"seq"`
	Kind    EventKind `json:"kind"`
	Depth   int       `json:"depth,omitempty"`
	Applied *Applied  `json:"applied,omitempty"`
	Attempt int       `json:"attempt,omitempty"`
}

// Applied describes the effect of one match on the board.
type Applied struct {
	Kind       MatchKind `json:"kind"`
	Positions  []Pos     `json:"positions"`
	Consumed   []Symbol  `json:"consumed"`
	Produced   Symbol    `json:"produced,omitempty"`
	ProducedAt *Pos      `json:"produced_at,omitempty"`
	BaseScore  int       `json:"base_score"`
}

// RequestKind names the external request a report answers.
type RequestKind string

const (
	RequestSwap      RequestKind = "swap"
	RequestReset     RequestKind = "reset"
	RequestReshuffle RequestKind = "reshuffle"
	RequestDeal      RequestKind = "deal"
)

// Report is the ordered outcome of one request.
//
// ComboDepth is the deepest cascade iteration reached across all cascades
// of the request (a reshuffle restarts the count). Score is the sum of base
// scores; combo bonuses are a caller policy.
type Report struct {
	Session    string      `json:"session"`
	Request    RequestKind `json:"request"`
	Swap       *Move       `json:"swap,omitempty"`
	Events     []Event     `json:"events"`
	ComboDepth int         `json:"combo_depth"`
	Deadlocked bool        `json:"deadlocked"`
	Reshuffles int         `json:"reshuffles"`
	Score      int         `json:"score"`
	Board      [][]Symbol  `json:"board"`
}

// EventsOf returns the report's events of the given kind.
func (r *Report) EventsOf(kind EventKind) []Event {
	var out []Event
	for _, e := range r.Events {
		if e.Kind == kind {
			out = append(out, e)
		}
	}
	return out
}

// AppliedMatches returns the applied-match payloads in emission order.
func (r *Report) AppliedMatches() []Applied {
	var out []Applied
	for _, e := range r.Events {
		if e.Kind == EventMatchApplied && e.Applied != nil {
			out = append(out, *e.Applied)
		}
	}
	return out
}
