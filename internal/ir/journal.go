package ir

// SessionRecord is the journal header of one engine session.
//
// Dealt reports whether the initial board came from the seeded deal (and
// is therefore reproducible from Spec) or was installed verbatim.
type SessionRecord struct {
	ID            string     `json:"id"`
	Name          string     `json:"name"`
	Spec          GameSpec   `json:"spec"`
	SpecHash      string     `json:"spec_hash"`
	EngineVersion string     `json:"engine_version"`
	Dealt         bool       `json:"dealt"`
	InitialBoard  [][]Symbol `json:"initial_board"`
	InitialHash   string     `json:"initial_hash"`
}

// RequestRecord is one journaled request and its outcome. Seq 0 is the
// initial deal of a dealt session.
type RequestRecord struct {
	SessionID  string      `json:"session_id"`
	Seq        int64       `json:"seq"`
	Kind       RequestKind `json:"kind"`
	Swap       *Move       `json:"swap,omitempty"`
	ErrorCode  string      `json:"error_code,omitempty"`
	ComboDepth int         `json:"combo_depth"`
	Deadlocked bool        `json:"deadlocked"`
	Reshuffles int         `json:"reshuffles"`
	Score      int         `json:"score"`
	Board      [][]Symbol  `json:"board"`
	BoardHash  string      `json:"board_hash"`
	Events     []Event     `json:"events"`
}
