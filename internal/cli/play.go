package cli

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/roach88/kanjimerge/internal/engine"
	"github.com/roach88/kanjimerge/internal/ir"
	"github.com/roach88/kanjimerge/internal/store"
)

// PlayOptions holds flags for the play command.
type PlayOptions struct {
	*RootOptions
	Seed       uint64
	Swaps      []string // "r,c:r,c", applied in order
	Reset      bool
	Reshuffle  bool
	Hints      bool
	Manual     bool
	MaxCascade int
	Database   string // optional journal

	// SessionGenerator overrides the UUIDv7 session ids (tests).
	SessionGenerator engine.SessionGenerator
}

// PlayStep is the outcome of one request issued by play.
type PlayStep struct {
	Request    ir.RequestKind `json:"request"`
	Swap       *ir.Move       `json:"swap,omitempty"`
	Error      string         `json:"error,omitempty"`
	Message    string         `json:"message,omitempty"`
	ComboDepth int            `json:"combo_depth"`
	Deadlocked bool           `json:"deadlocked"`
	Reshuffles int            `json:"reshuffles"`
	Score      int            `json:"score"`
	Events     []ir.Event     `json:"events"`
}

// PlayResult holds the play output.
type PlayResult struct {
	Session    string        `json:"session"`
	Name       string        `json:"name"`
	Seed       uint64        `json:"seed"`
	Initial    [][]ir.Symbol `json:"initial"`
	Steps      []PlayStep    `json:"steps"`
	Board      [][]ir.Symbol `json:"board"`
	Score      int           `json:"score"`
	Deadlocked bool          `json:"deadlocked"`
	Hints      []ir.Move     `json:"hints,omitempty"`
	Journal    string        `json:"journal,omitempty"`
}

// Failed reports whether any request was rejected or ended in error.
func (r *PlayResult) Failed() bool {
	for _, s := range r.Steps {
		if s.Error != "" {
			return true
		}
	}
	return false
}

// NewPlayCommand creates the play command.
func NewPlayCommand(rootOpts *RootOptions) *cobra.Command {
	return newPlayCommand(&PlayOptions{RootOptions: rootOpts})
}

func newPlayCommand(opts *PlayOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "play <game>",
		Short: "Deal a board and apply requests",
		Long: `Deal a board from a game definition and apply requests to it.

Swaps run in the order given, then --reset, then --reshuffle. Every
request resolves its cascade before the next one starts. With --db the
session is journaled and can be checked with replay and trace.

Exit codes:
  0 - All requests succeeded
  1 - A request was rejected or ended in error
  2 - Command error (bad game, bad flag, journal error)

Examples:
  kanjimerge play ./configs/kanji.cue --seed 7 --hints
  kanjimerge play ./configs/kanji.cue --swap 0,0:0,1 --swap 2,3:3,3
  kanjimerge play ./configs/kanji.cue --swap 1,1:1,2 --db ./kanji.db`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runPlay(cmd.Context(), opts, args[0], cmd)
		},
	}

	cmd.Flags().Uint64Var(&opts.Seed, "seed", 0, "refill seed (default: the game's seed)")
	cmd.Flags().StringArrayVar(&opts.Swaps, "swap", nil, "swap two adjacent cells, as row,col:row,col (repeatable)")
	cmd.Flags().BoolVar(&opts.Reset, "reset", false, "deal a fresh board after the swaps")
	cmd.Flags().BoolVar(&opts.Reshuffle, "reshuffle", false, "reshuffle after the swaps and reset")
	cmd.Flags().BoolVar(&opts.Hints, "hints", false, "list the legal moves of the final board")
	cmd.Flags().BoolVar(&opts.Manual, "manual", false, "disable automatic deadlock reshuffles")
	cmd.Flags().IntVar(&opts.MaxCascade, "max-cascade", 0, "cascade iteration limit (default: the game's limit)")
	cmd.Flags().StringVar(&opts.Database, "db", "", "journal the session to a SQLite database")

	return cmd
}

func runPlay(ctx context.Context, opts *PlayOptions, path string, cmd *cobra.Command) error {
	if ctx == nil {
		ctx = context.Background()
	}
	formatter := &OutputFormatter{
		Format:    opts.Format,
		Writer:    cmd.OutOrStdout(),
		ErrWriter: cmd.ErrOrStderr(),
		Verbose:   opts.Verbose,
	}

	requests, err := playRequests(opts)
	if err != nil {
		_ = formatter.Error(ErrCodeGeneric, err.Error(), nil)
		return WrapExitError(ExitCommandError, "invalid request flags", err)
	}

	spec, err := LoadGame(path)
	if err != nil {
		_ = formatter.Error(loadErrorCode(err), err.Error(), nil)
		return WrapExitError(ExitCommandError, "compile failed", err)
	}
	if cmd.Flags().Changed("seed") {
		spec.Seed = opts.Seed
	}

	engineOpts := []engine.Option{engine.WithLogger(opts.Logger(cmd.ErrOrStderr()))}
	if opts.SessionGenerator != nil {
		engineOpts = append(engineOpts, engine.WithSessionGenerator(opts.SessionGenerator))
	}
	if opts.Manual {
		engineOpts = append(engineOpts, engine.WithManualReshuffle())
	}
	if opts.MaxCascade > 0 {
		engineOpts = append(engineOpts, engine.WithMaxCascade(opts.MaxCascade))
	}

	eng, err := engine.New(*spec, engineOpts...)
	if err != nil {
		_ = formatter.Error(engine.ErrorCode(err), err.Error(), nil)
		return WrapExitError(ExitCommandError, "failed to start engine", err)
	}
	formatter.VerboseLog("session %s dealt", eng.Session())

	var journal *engine.Journal
	if opts.Database != "" {
		st, err := store.Open(opts.Database)
		if err != nil {
			_ = formatter.Error(ErrCodeJournal, err.Error(), nil)
			return WrapExitError(ExitCommandError, "failed to open database", err)
		}
		defer st.Close()

		journal, err = engine.NewJournal(ctx, st, eng)
		if err != nil {
			_ = formatter.Error(ErrCodeJournal, err.Error(), nil)
			return WrapExitError(ExitCommandError, "failed to journal session", err)
		}
	}

	result := PlayResult{
		Session: eng.Session(),
		Name:    spec.Name,
		Seed:    spec.Seed,
		Initial: eng.InitialBoard(),
		Steps:   make([]PlayStep, 0, len(requests)),
		Journal: opts.Database,
	}

	for _, req := range requests {
		report, reqErr := eng.Do(req)
		if journal != nil {
			if err := journal.Record(ctx, req, report, reqErr); err != nil {
				_ = formatter.Error(ErrCodeJournal, err.Error(), nil)
				return WrapExitError(ExitCommandError, "failed to journal request", err)
			}
		}
		step := PlayStep{Request: req.Kind, Swap: req.Swap, Events: []ir.Event{}}
		if reqErr != nil {
			step.Error = engine.ErrorCode(reqErr)
			step.Message = reqErr.Error()
			formatter.VerboseLog("%s rejected: %v", req.Kind, reqErr)
		}
		if report != nil {
			step.ComboDepth = report.ComboDepth
			step.Deadlocked = report.Deadlocked
			step.Reshuffles = report.Reshuffles
			step.Score = report.Score
			step.Events = report.Events
			result.Score += report.Score
		}
		result.Steps = append(result.Steps, step)
	}

	result.Board = eng.Board()
	result.Deadlocked = eng.IsDeadlocked()
	if opts.Hints {
		result.Hints = eng.Moves()
	}

	if opts.Format == "json" {
		if err := formatter.Success(result); err != nil {
			return err
		}
	} else {
		outputPlayText(cmd, result)
	}

	if result.Failed() {
		return NewExitError(ExitFailure, "one or more requests failed")
	}
	return nil
}

// playRequests turns the request flags into engine requests in run order.
func playRequests(opts *PlayOptions) ([]engine.Request, error) {
	var requests []engine.Request
	for _, s := range opts.Swaps {
		move, err := ParseMove(s)
		if err != nil {
			return nil, err
		}
		requests = append(requests, engine.SwapRequest(move.A, move.B))
	}
	if opts.Reset {
		requests = append(requests, engine.Request{Kind: ir.RequestReset})
	}
	if opts.Reshuffle {
		requests = append(requests, engine.Request{Kind: ir.RequestReshuffle})
	}
	return requests, nil
}

// ParseMove parses "r,c:r,c" into a Move.
func ParseMove(s string) (ir.Move, error) {
	left, right, ok := strings.Cut(s, ":")
	if !ok {
		return ir.Move{}, fmt.Errorf("invalid swap %q: want row,col:row,col", s)
	}
	a, err := parsePos(left)
	if err != nil {
		return ir.Move{}, fmt.Errorf("invalid swap %q: %w", s, err)
	}
	b, err := parsePos(right)
	if err != nil {
		return ir.Move{}, fmt.Errorf("invalid swap %q: %w", s, err)
	}
	return ir.Move{A: a, B: b}, nil
}

func parsePos(s string) (ir.Pos, error) {
	row, col, ok := strings.Cut(strings.TrimSpace(s), ",")
	if !ok {
		return ir.Pos{}, fmt.Errorf("cell %q: want row,col", s)
	}
	r, err := strconv.Atoi(strings.TrimSpace(row))
	if err != nil {
		return ir.Pos{}, fmt.Errorf("cell %q: bad row: %w", s, err)
	}
	c, err := strconv.Atoi(strings.TrimSpace(col))
	if err != nil {
		return ir.Pos{}, fmt.Errorf("cell %q: bad column: %w", s, err)
	}
	return ir.P(r, c), nil
}

func outputPlayText(cmd *cobra.Command, result PlayResult) {
	w := cmd.OutOrStdout()

	fmt.Fprintf(w, "Session: %s\n", result.Session)
	fmt.Fprintf(w, "Game:    %s (seed %d)\n\n", result.Name, result.Seed)
	fmt.Fprint(w, renderBoard(result.Initial))

	for i, s := range result.Steps {
		label := string(s.Request)
		if s.Swap != nil {
			label += " " + s.Swap.String()
		}
		if s.Error != "" {
			fmt.Fprintf(w, "\n[%d] %s: %s\n", i+1, label, s.Error)
			if s.Message != "" {
				fmt.Fprintf(w, "    %s\n", s.Message)
			}
			continue
		}
		fmt.Fprintf(w, "\n[%d] %s: score %d, combo %d", i+1, label, s.Score, s.ComboDepth)
		if s.Reshuffles > 0 {
			fmt.Fprintf(w, ", %d reshuffles", s.Reshuffles)
		}
		if s.Deadlocked {
			fmt.Fprint(w, ", deadlocked")
		}
		fmt.Fprintln(w)
		for _, ev := range s.Events {
			if ev.Kind != ir.EventMatchApplied || ev.Applied == nil {
				continue
			}
			a := ev.Applied
			fmt.Fprintf(w, "    %s %s", a.Kind, ir.FormatRow(a.Consumed))
			if !a.Produced.IsEmpty() && a.ProducedAt != nil {
				fmt.Fprintf(w, " -> %s at %s", a.Produced, a.ProducedAt)
			}
			fmt.Fprintf(w, " (+%d)\n", a.BaseScore)
		}
	}

	fmt.Fprintln(w)
	fmt.Fprint(w, renderBoard(result.Board))
	fmt.Fprintf(w, "\nScore: %d\n", result.Score)
	if result.Deadlocked {
		fmt.Fprintln(w, "Board is deadlocked: no swap produces a match")
	}
	if result.Hints != nil {
		fmt.Fprintf(w, "Moves: %d\n", len(result.Hints))
		for _, m := range result.Hints {
			fmt.Fprintf(w, "  %s\n", m)
		}
	}
	if result.Journal != "" {
		fmt.Fprintf(w, "Journaled to %s\n", result.Journal)
	}
}
