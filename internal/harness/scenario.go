package harness

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"

	"github.com/roach88/kanjimerge/internal/ir"
)

// Scenario defines a conformance test scenario.
// A scenario installs a board, scripts the refill stream, issues a list of
// requests and asserts on the emitted events and the final board.
type Scenario struct {
	// Name uniquely identifies this scenario and names its golden file.
	Name string `yaml:"name"`

	// Description explains what this scenario validates.
	Description string `yaml:"description"`

	// Config is the CUE game definition, relative to the scenario file.
	Config string `yaml:"config"`

	// Board is installed verbatim, row 0 (the bottom row) first.
	// When empty the engine deals from the config seed.
	Board [][]string `yaml:"board,omitempty"`

	// Draws scripts the refill stream as pool indexes, cycled.
	// When empty, refills come from the seeded stream and the run is
	// journaled and replayed.
	Draws []int `yaml:"draws,omitempty"`

	// ManualReshuffle disables automatic deadlock recovery.
	ManualReshuffle bool `yaml:"manual_reshuffle,omitempty"`

	// MaxCascade overrides the config cascade cap.
	MaxCascade int `yaml:"max_cascade,omitempty"`

	// Session is the fixed session id. Defaults to "test-session-default".
	Session string `yaml:"session,omitempty"`

	// Steps are the requests to issue, in order.
	Steps []Step `yaml:"steps"`

	// Assertions validate the trace and the final board.
	Assertions []Assertion `yaml:"assertions"`

	// dir is the scenario file directory, used to resolve Config.
	dir string
}

// Step is one request. Exactly one of Swap, Reset or Reshuffle is set.
type Step struct {
	// Swap holds two [row, col] cells.
	Swap [][]int `yaml:"swap,omitempty"`

	Reset     bool `yaml:"reset,omitempty"`
	Reshuffle bool `yaml:"reshuffle,omitempty"`

	// Expect checks the request outcome. Nil fields are not checked.
	Expect *ExpectClause `yaml:"expect,omitempty"`
}

// ExpectClause specifies the expected outcome of one request.
type ExpectClause struct {
	// Error is the expected error code ("" for success), e.g. "ILLEGAL".
	Error      *string `yaml:"error,omitempty"`
	ComboDepth *int    `yaml:"combo_depth,omitempty"`
	Deadlocked *bool   `yaml:"deadlocked,omitempty"`
	Score      *int    `yaml:"score,omitempty"`
	Reshuffles *int    `yaml:"reshuffles,omitempty"`
}

// Assertion validates the trace or the final board.
type Assertion struct {
	// Type specifies the assertion type:
	// - "event_contains": an event of Event kind (and Match kind, Positions,
	//   Produced if given) appears in the trace
	// - "event_order": match kinds (Matches) or event kinds (Events) appear
	//   in order
	// - "event_count": Event (optionally narrowed by Match) appears exactly
	//   Count times
	// - "final_board": the board equals Board
	// - "settled": the board is full and holds no match
	// - "deadlocked": the final deadlock state equals Value
	Type string `yaml:"type"`

	Event     string   `yaml:"event,omitempty"`
	Match     string   `yaml:"match,omitempty"`
	Positions [][]int  `yaml:"positions,omitempty"`
	Produced  string   `yaml:"produced,omitempty"`
	Matches   []string `yaml:"matches,omitempty"`
	Events    []string `yaml:"events,omitempty"`
	Count     int      `yaml:"count,omitempty"`

	Board [][]string `yaml:"board,omitempty"`
	Value *bool      `yaml:"value,omitempty"`
}

// Assertion type constants.
const (
	AssertEventContains = "event_contains"
	AssertEventOrder    = "event_order"
	AssertEventCount    = "event_count"
	AssertFinalBoard    = "final_board"
	AssertSettled       = "settled"
	AssertDeadlocked    = "deadlocked"
)

// LoadScenario reads and parses a scenario YAML file.
// Returns an error if the file doesn't exist, is malformed,
// contains unknown fields (typos), or is missing required fields.
func LoadScenario(path string) (*Scenario, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read scenario file: %w", err)
	}

	// Strict decoding catches typos like "assertion:" vs "assertions:"
	var scenario Scenario
	decoder := yaml.NewDecoder(bytes.NewReader(data))
	decoder.KnownFields(true)
	if err := decoder.Decode(&scenario); err != nil {
		return nil, fmt.Errorf("failed to parse YAML: %w", err)
	}
	scenario.dir = filepath.Dir(path)

	if err := validateScenario(&scenario); err != nil {
		return nil, fmt.Errorf("invalid scenario: %w", err)
	}
	return &scenario, nil
}

// ConfigPath returns the game config path resolved against the scenario
// file directory.
func (s *Scenario) ConfigPath() string {
	if filepath.IsAbs(s.Config) || s.dir == "" {
		return s.Config
	}
	return filepath.Join(s.dir, s.Config)
}

// BoardSymbols converts the scenario board into engine symbols.
func (s *Scenario) BoardSymbols() [][]ir.Symbol {
	return toSymbols(s.Board)
}

// validateScenario checks that required fields are present and valid.
func validateScenario(s *Scenario) error {
	if s.Name == "" {
		return fmt.Errorf("name is required")
	}
	if s.Description == "" {
		return fmt.Errorf("description is required")
	}
	if s.Config == "" {
		return fmt.Errorf("config is required")
	}
	if len(s.Steps) == 0 {
		return fmt.Errorf("steps list is required and must be non-empty")
	}
	if len(s.Assertions) == 0 {
		return fmt.Errorf("assertions list is required and must be non-empty")
	}

	if _, err := os.Stat(s.ConfigPath()); os.IsNotExist(err) {
		return &ConfigNotFoundError{
			Scenario:     s.Name,
			ConfigPath:   s.Config,
			ResolvedPath: s.ConfigPath(),
		}
	}

	for i, row := range s.Board {
		if len(row) != len(s.Board[0]) {
			return fmt.Errorf("board[%d]: has %d cells, row 0 has %d", i, len(row), len(s.Board[0]))
		}
	}
	for i, d := range s.Draws {
		if d < 0 {
			return fmt.Errorf("draws[%d]: must be non-negative", i)
		}
	}

	for i, step := range s.Steps {
		if err := validateStep(i, &step); err != nil {
			return err
		}
	}

	for i, assertion := range s.Assertions {
		if err := validateAssertion(i, &assertion); err != nil {
			return err
		}
	}
	return nil
}

func validateStep(index int, st *Step) error {
	set := 0
	if st.Swap != nil {
		set++
		if _, err := toMove(st.Swap); err != nil {
			return fmt.Errorf("steps[%d].swap: %w", index, err)
		}
	}
	if st.Reset {
		set++
	}
	if st.Reshuffle {
		set++
	}
	if set != 1 {
		return fmt.Errorf("steps[%d]: exactly one of swap, reset or reshuffle is required", index)
	}
	return nil
}

// validateAssertion validates a single assertion based on its type.
func validateAssertion(index int, a *Assertion) error {
	if a.Type == "" {
		return fmt.Errorf("assertions[%d]: type is required", index)
	}

	switch a.Type {
	case AssertEventContains:
		if a.Event == "" {
			return fmt.Errorf("assertions[%d]: event is required for event_contains", index)
		}
		if _, err := toPositions(a.Positions); err != nil {
			return fmt.Errorf("assertions[%d].positions: %w", index, err)
		}
	case AssertEventOrder:
		if len(a.Matches) == 0 && len(a.Events) == 0 {
			return fmt.Errorf("assertions[%d]: matches or events list is required for event_order", index)
		}
	case AssertEventCount:
		if a.Event == "" {
			return fmt.Errorf("assertions[%d]: event is required for event_count", index)
		}
		if a.Count < 0 {
			return fmt.Errorf("assertions[%d]: count must be non-negative for event_count", index)
		}
	case AssertFinalBoard:
		if len(a.Board) == 0 {
			return fmt.Errorf("assertions[%d]: board is required for final_board", index)
		}
	case AssertSettled:
	case AssertDeadlocked:
		if a.Value == nil {
			return fmt.Errorf("assertions[%d]: value is required for deadlocked", index)
		}
	default:
		return fmt.Errorf("assertions[%d]: unknown assertion type %q", index, a.Type)
	}
	return nil
}

func toSymbols(board [][]string) [][]ir.Symbol {
	if len(board) == 0 {
		return nil
	}
	out := make([][]ir.Symbol, len(board))
	for i, row := range board {
		out[i] = make([]ir.Symbol, len(row))
		for j, s := range row {
			out[i][j] = ir.NormalizeSymbol(ir.Symbol(s))
		}
	}
	return out
}

func toPos(cell []int) (ir.Pos, error) {
	if len(cell) != 2 {
		return ir.Pos{}, fmt.Errorf("cell must be [row, col], got %v", cell)
	}
	return ir.P(cell[0], cell[1]), nil
}

func toPositions(cells [][]int) ([]ir.Pos, error) {
	out := make([]ir.Pos, 0, len(cells))
	for _, c := range cells {
		p, err := toPos(c)
		if err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	return out, nil
}

func toMove(cells [][]int) (ir.Move, error) {
	if len(cells) != 2 {
		return ir.Move{}, fmt.Errorf("swap needs two cells, got %d", len(cells))
	}
	ps, err := toPositions(cells)
	if err != nil {
		return ir.Move{}, err
	}
	return ir.Move{A: ps[0], B: ps[1]}, nil
}
