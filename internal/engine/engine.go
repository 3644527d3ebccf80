package engine

import (
	"fmt"
	"log/slog"

	"github.com/roach88/kanjimerge/internal/grid"
	"github.com/roach88/kanjimerge/internal/ir"
	"github.com/roach88/kanjimerge/internal/recipe"
)

// Phase is the cascade state machine position.
type Phase int

const (
	PhaseIdle Phase = iota
	PhaseScanning
	PhaseApplying
	PhaseSettling
	PhaseReshuffling
)

func (p Phase) String() string {
	switch p {
	case PhaseIdle:
		return "idle"
	case PhaseScanning:
		return "scanning"
	case PhaseApplying:
		return "applying"
	case PhaseSettling:
		return "settling"
	case PhaseReshuffling:
		return "reshuffling"
	}
	return fmt.Sprintf("phase(%d)", int(p))
}

// Engine is a single game session: one board, one catalog, one RNG stream.
//
// INVARIANTS:
//   - Outside a request (phase Idle) the board is full
//   - Requests are accepted only in phase Idle
//   - Event seqs strictly increase over the engine's lifetime
type Engine struct {
	spec    ir.GameSpec
	board   *grid.Grid
	catalog *recipe.Catalog
	rng     IntNSource
	clock   *Clock
	session string
	logger  *slog.Logger

	observer   func(ir.Event)
	maxCascade int
	manual     bool
	seeded     bool // rng derived from spec.Seed, so the session is replayable

	phase      Phase
	pending    []ir.Match
	depth      int
	attempts   int
	quota      *QuotaEnforcer
	report     *ir.Report
	outcome    error
	stepEvents []ir.Event

	deal    *ir.Report // report of the initial deal, nil for a loaded board
	dealErr error
	initial [][]ir.Symbol
}

// Option allows configuration of engine parameters.
type Option func(*options)

type options struct {
	rng        IntNSource
	logger     *slog.Logger
	sessionGen SessionGenerator
	maxCascade int
	manual     bool
	board      [][]ir.Symbol
	observer   func(ir.Event)
}

// WithRand injects the refill source. Sessions built with a custom source
// cannot be replayed from the journal.
func WithRand(rng IntNSource) Option {
	return func(o *options) {
		o.rng = rng
	}
}

// WithLogger sets the structured logger. Default: slog.Default().
func WithLogger(l *slog.Logger) Option {
	return func(o *options) {
		o.logger = l
	}
}

// WithSessionGenerator sets the session id source. Default: UUIDv7Generator.
func WithSessionGenerator(g SessionGenerator) Option {
	return func(o *options) {
		o.sessionGen = g
	}
}

// WithMaxCascade overrides the game's cascade iteration quota.
//
// Use WithMaxCascade(3) for testing quota enforcement.
func WithMaxCascade(n int) Option {
	return func(o *options) {
		o.maxCascade = n
	}
}

// WithManualReshuffle disables automatic deadlock recovery. A deadlocked
// request then only reports the deadlock; the caller invokes Reshuffle.
func WithManualReshuffle() Option {
	return func(o *options) {
		o.manual = true
	}
}

// WithBoard installs a board verbatim (bottom row first) instead of dealing
// one. No cascade runs on the loaded board until the first request.
func WithBoard(rows [][]ir.Symbol) Option {
	return func(o *options) {
		o.board = rows
	}
}

// WithObserver streams every event as it is emitted, in addition to the
// events collected in reports.
func WithObserver(fn func(ir.Event)) Option {
	return func(o *options) {
		o.observer = fn
	}
}

// New validates spec and builds an engine.
//
// Configuration problems are returned as *ir.ConfigError: bad dimensions,
// an empty symbol pool, malformed recipes, triples or terminals. Unless
// WithBoard is given, an initial board is dealt through the regular reset
// path; see DealReport.
func New(spec ir.GameSpec, opts ...Option) (*Engine, error) {
	spec = spec.WithDefaults()

	o := options{}
	for _, opt := range opts {
		opt(&o)
	}

	if len(spec.Pool) == 0 {
		return nil, ir.NewConfigError(ir.ErrCodeEmptyPool, "pool", "symbol pool is empty")
	}
	for i, s := range spec.Pool {
		if s.IsEmpty() {
			return nil, ir.NewConfigError(ir.ErrCodeEmptyPool, fmt.Sprintf("pool[%d]", i), "pool symbol is empty")
		}
	}
	board, err := grid.New(spec.Rows, spec.Cols)
	if err != nil {
		return nil, err
	}
	catalog, err := recipe.New(spec.Recipes, spec.Triples, spec.Terminals)
	if err != nil {
		return nil, err
	}

	e := &Engine{
		spec:       spec,
		board:      board,
		catalog:    catalog,
		rng:        o.rng,
		clock:      NewClock(),
		logger:     o.logger,
		observer:   o.observer,
		maxCascade: spec.MaxCascade,
		manual:     spec.Reshuffle.Manual || o.manual,
	}
	if o.maxCascade > 0 {
		e.maxCascade = o.maxCascade
	}
	// Spec() reports the effective settings so a journaled session replays
	// under the same limits.
	e.spec.MaxCascade = e.maxCascade
	e.spec.Reshuffle.Manual = e.manual
	if e.rng == nil {
		e.rng = NewSeededRand(spec.Seed)
		e.seeded = true
	}
	if e.logger == nil {
		e.logger = slog.Default()
	}
	gen := o.sessionGen
	if gen == nil {
		gen = UUIDv7Generator{}
	}
	e.session = gen.Generate()

	if o.board != nil {
		if err := board.Load(o.board); err != nil {
			return nil, err
		}
		if !board.Full() {
			return nil, ir.NewConfigError(ir.ErrCodeInvalidBoard, "board", "loaded board has empty cells")
		}
		e.initial = board.Snapshot()
		e.logger.Debug("board loaded", "session", e.session, "rows", spec.Rows, "cols", spec.Cols)
		return e, nil
	}

	e.begin(ir.RequestDeal, nil)
	e.board.ClearAll()
	if err := e.refill(); err != nil {
		return nil, err
	}
	e.phase = PhaseScanning
	report, err := e.run()
	e.deal = report
	e.initial = board.Snapshot()
	if err != nil {
		if IsReshuffleExhausted(err) {
			e.dealErr = err
			e.logger.Warn("initial deal left a deadlocked board", "session", e.session, "error", err)
			return e, nil
		}
		return nil, err
	}
	return e, nil
}

// Session returns the session id.
func (e *Engine) Session() string { return e.session }

// Spec returns the effective game spec (defaults applied).
func (e *Engine) Spec() ir.GameSpec { return e.spec }

// Catalog returns the recipe catalog.
func (e *Engine) Catalog() *recipe.Catalog { return e.catalog }

// Phase returns the current cascade phase.
func (e *Engine) Phase() Phase { return e.phase }

// Replayable reports whether the session's refills derive from the game
// seed. Only replayable sessions can be journaled.
func (e *Engine) Replayable() bool { return e.seeded }

// DealReport returns the report of the initial deal, or nil when the board
// was installed with WithBoard.
func (e *Engine) DealReport() *ir.Report { return e.deal }

// DealErr returns the non-fatal outcome of the initial deal, a
// *ReshuffleExhaustedError when no playable board was reached.
func (e *Engine) DealErr() error { return e.dealErr }

// InitialBoard returns the board the session started from: the settled
// deal, or the board installed with WithBoard.
func (e *Engine) InitialBoard() [][]ir.Symbol {
	out := make([][]ir.Symbol, len(e.initial))
	for i, row := range e.initial {
		out[i] = append([]ir.Symbol(nil), row...)
	}
	return out
}

// Board returns a copy of the board, bottom row first.
func (e *Engine) Board() [][]ir.Symbol { return e.board.Snapshot() }

// Get returns the symbol at p.
func (e *Engine) Get(p ir.Pos) (ir.Symbol, error) { return e.board.Get(p) }

// String renders the board top row first.
func (e *Engine) String() string { return e.board.String() }
