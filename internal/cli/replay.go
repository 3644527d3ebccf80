package cli

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/roach88/kanjimerge/internal/engine"
	"github.com/roach88/kanjimerge/internal/ir"
	"github.com/roach88/kanjimerge/internal/store"
)

// ReplayOptions holds flags for the replay command.
type ReplayOptions struct {
	*RootOptions
	Database string
	Session  string // optional - specific session only
}

// ReplaySessionResult holds the replay result for a single session.
type ReplaySessionResult struct {
	Session    string            `json:"session"`
	Name       string            `json:"name"`
	Requests   int               `json:"requests"`
	Mismatches []engine.Mismatch `json:"mismatches"`
	OK         bool              `json:"ok"`
}

// ReplayResult holds the overall replay result.
type ReplayResult struct {
	Sessions      []ReplaySessionResult `json:"sessions"`
	TotalSessions int                   `json:"total_sessions"`
	AllMatched    bool                  `json:"all_matched"`
}

// NewReplayCommand creates the replay command.
func NewReplayCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &ReplayOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "replay",
		Short: "Replay journaled sessions and verify determinism",
		Long: `Re-execute journaled sessions and compare every outcome with the journal.

Each session is rebuilt from its stored game and seed, the initial board
hash is checked, and every request is re-issued in order. Error codes,
board hashes, scores and event counts must all match.

Exit codes:
  0 - All sessions replayed identically
  1 - One or more sessions diverged
  2 - Command error (database not found, unknown session, etc.)

Examples:
  kanjimerge replay --db ./kanji.db
  kanjimerge replay --db ./kanji.db --session 0192f3c4-...
  kanjimerge replay --db ./kanji.db --format json`,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runReplay(cmd.Context(), opts, cmd)
		},
	}

	cmd.Flags().StringVar(&opts.Database, "db", "", "path to SQLite database (required)")
	_ = cmd.MarkFlagRequired("db")
	cmd.Flags().StringVar(&opts.Session, "session", "", "replay specific session only")

	return cmd
}

func runReplay(ctx context.Context, opts *ReplayOptions, cmd *cobra.Command) error {
	if ctx == nil {
		ctx = context.Background()
	}

	st, err := openJournal(opts.Database)
	if err != nil {
		return err
	}
	defer st.Close()

	var sessions []ir.SessionRecord
	if opts.Session != "" {
		rec, err := st.ReadSession(ctx, opts.Session)
		if errors.Is(err, sql.ErrNoRows) {
			return NewExitError(ExitCommandError, fmt.Sprintf("session not found: %s", opts.Session))
		}
		if err != nil {
			return WrapExitError(ExitCommandError, "failed to read session", err)
		}
		sessions = []ir.SessionRecord{rec}
	} else {
		sessions, err = st.ListSessions(ctx)
		if err != nil {
			return WrapExitError(ExitCommandError, "failed to list sessions", err)
		}
	}

	if len(sessions) == 0 {
		if opts.Format == "json" {
			return outputReplayJSON(cmd, ReplayResult{Sessions: []ReplaySessionResult{}, AllMatched: true})
		}
		fmt.Fprintln(cmd.OutOrStdout(), "No sessions found in database.")
		return nil
	}

	result := ReplayResult{
		Sessions:      make([]ReplaySessionResult, 0, len(sessions)),
		TotalSessions: len(sessions),
		AllMatched:    true,
	}
	logger := opts.Logger(cmd.ErrOrStderr())

	for _, rec := range sessions {
		replayed, err := engine.Replay(ctx, st, rec.ID, engine.WithLogger(logger))
		if err != nil {
			return WrapExitError(ExitCommandError, fmt.Sprintf("failed to replay session %s", rec.ID), err)
		}
		result.Sessions = append(result.Sessions, ReplaySessionResult{
			Session:    rec.ID,
			Name:       rec.Name,
			Requests:   replayed.Requests,
			Mismatches: replayed.Mismatches,
			OK:         replayed.OK(),
		})
		if !replayed.OK() {
			result.AllMatched = false
		}
	}

	if opts.Format == "json" {
		if err := outputReplayJSON(cmd, result); err != nil {
			return err
		}
	} else {
		outputReplayText(cmd, result, opts.Verbose)
	}

	if !result.AllMatched {
		return NewExitError(ExitFailure, "replay diverged from the journal")
	}
	return nil
}

// openJournal opens an existing journal database. Unlike store.Open it
// fails on a missing file.
func openJournal(path string) (*store.Store, error) {
	if _, err := os.Stat(path); err != nil {
		return nil, WrapExitError(ExitCommandError, fmt.Sprintf("database not found: %s", path), err)
	}
	st, err := store.Open(path)
	if err != nil {
		return nil, WrapExitError(ExitCommandError, "failed to open database", err)
	}
	return st, nil
}

// outputReplayJSON outputs the replay result as JSON.
func outputReplayJSON(cmd *cobra.Command, result ReplayResult) error {
	response := CLIResponse{
		Status: "ok",
		Data:   result,
	}

	if !result.AllMatched {
		response.Status = "error"
		response.Error = &CLIError{
			Code:    string(engine.ErrCodeReplayMismatch),
			Message: "replay diverged from the journal",
		}
	}

	formatter := &OutputFormatter{Format: "json", Writer: cmd.OutOrStdout()}
	return formatter.JSON(response)
}

// outputReplayText outputs the replay result as human-readable text.
func outputReplayText(cmd *cobra.Command, result ReplayResult, verbose bool) {
	w := cmd.OutOrStdout()

	fmt.Fprintf(w, "Replayed %d sessions\n\n", result.TotalSessions)
	for _, s := range result.Sessions {
		status := "✓"
		if !s.OK {
			status = "✗"
		}
		fmt.Fprintf(w, "%s %s (%s): %d requests\n", status, s.Session, s.Name, s.Requests)
		limit := 1
		if verbose {
			limit = len(s.Mismatches)
		}
		for i, m := range s.Mismatches {
			if i >= limit {
				fmt.Fprintf(w, "  ... %d more (use -v)\n", len(s.Mismatches)-limit)
				break
			}
			fmt.Fprintf(w, "  %s\n", m)
		}
	}

	fmt.Fprintln(w)
	if result.AllMatched {
		fmt.Fprintln(w, "All sessions replayed identically.")
	} else {
		fmt.Fprintln(w, "Replay diverged from the journal.")
	}
}
