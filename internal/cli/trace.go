package cli

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/roach88/kanjimerge/internal/ir"
)

// TraceOptions holds flags for the trace command.
type TraceOptions struct {
	*RootOptions
	Database string
	Session  string
	Kind     string // optional - list only events of this kind
}

// TraceRequest is one journaled request in the trace timeline.
type TraceRequest struct {
	Seq        int64          `json:"seq"`
	Kind       ir.RequestKind `json:"kind"`
	Swap       *ir.Move       `json:"swap,omitempty"`
	Error      string         `json:"error,omitempty"`
	ComboDepth int            `json:"combo_depth"`
	Deadlocked bool           `json:"deadlocked"`
	Reshuffles int            `json:"reshuffles"`
	Score      int            `json:"score"`
	BoardHash  string         `json:"board_hash"`
	Events     []ir.Event     `json:"events"`
}

// TraceResult holds the complete trace output.
type TraceResult struct {
	Session  string         `json:"session"`
	Name     string         `json:"name"`
	Seed     uint64         `json:"seed"`
	Timeline []TraceRequest `json:"timeline,omitempty"`
	Kind     ir.EventKind   `json:"kind,omitempty"`
	Events   []ir.Event     `json:"events,omitempty"`
	Stats    TraceStats     `json:"stats"`
}

// TraceStats holds summary statistics for the trace.
type TraceStats struct {
	Requests   int `json:"requests"`
	Rejected   int `json:"rejected"`
	Events     int `json:"events"`
	Matches    int `json:"matches"`
	Score      int `json:"score"`
	MaxCombo   int `json:"max_combo"`
	Reshuffles int `json:"reshuffles"`
}

// NewTraceCommand creates the trace command.
func NewTraceCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &TraceOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "trace",
		Short: "Show the journaled timeline of a session",
		Long: `Show every journaled request of a session with its events.

With --kind only the session's events of that kind are listed, in
emission order.

Examples:
  kanjimerge trace --db ./kanji.db --session 0192f3c4-...
  kanjimerge trace --db ./kanji.db --session 0192f3c4-... --kind match_applied
  kanjimerge trace --db ./kanji.db --session 0192f3c4-... --format json`,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runTrace(cmd.Context(), opts, cmd)
		},
	}

	cmd.Flags().StringVar(&opts.Database, "db", "", "path to SQLite database (required)")
	_ = cmd.MarkFlagRequired("db")
	cmd.Flags().StringVar(&opts.Session, "session", "", "session id to trace (required)")
	_ = cmd.MarkFlagRequired("session")
	cmd.Flags().StringVar(&opts.Kind, "kind", "", "list only events of this kind")

	return cmd
}

func runTrace(ctx context.Context, opts *TraceOptions, cmd *cobra.Command) error {
	if ctx == nil {
		ctx = context.Background()
	}
	kind := ir.EventKind(opts.Kind)
	if opts.Kind != "" && !ir.ValidEventKinds[kind] {
		return NewExitError(ExitCommandError, fmt.Sprintf("unknown event kind %q", opts.Kind))
	}

	st, err := openJournal(opts.Database)
	if err != nil {
		return err
	}
	defer st.Close()

	rec, err := st.ReadSession(ctx, opts.Session)
	if errors.Is(err, sql.ErrNoRows) {
		return NewExitError(ExitCommandError, fmt.Sprintf("session not found: %s", opts.Session))
	}
	if err != nil {
		return WrapExitError(ExitCommandError, "failed to read session", err)
	}

	requests, err := st.ReadRequests(ctx, opts.Session)
	if err != nil {
		return WrapExitError(ExitCommandError, "failed to read requests", err)
	}

	result := TraceResult{
		Session: rec.ID,
		Name:    rec.Name,
		Seed:    rec.Spec.Seed,
		Stats:   buildTraceStats(requests),
	}
	if opts.Kind != "" {
		result.Kind = kind
		result.Events, err = st.ReadEvents(ctx, opts.Session, kind)
		if err != nil {
			return WrapExitError(ExitCommandError, "failed to read events", err)
		}
	} else {
		result.Timeline = buildTimeline(requests)
	}

	if opts.Format == "json" {
		formatter := &OutputFormatter{Format: "json", Writer: cmd.OutOrStdout()}
		return formatter.Success(result)
	}

	outputTraceText(cmd, result)
	return nil
}

func buildTimeline(requests []ir.RequestRecord) []TraceRequest {
	timeline := make([]TraceRequest, 0, len(requests))
	for _, r := range requests {
		timeline = append(timeline, TraceRequest{
			Seq:        r.Seq,
			Kind:       r.Kind,
			Swap:       r.Swap,
			Error:      r.ErrorCode,
			ComboDepth: r.ComboDepth,
			Deadlocked: r.Deadlocked,
			Reshuffles: r.Reshuffles,
			Score:      r.Score,
			BoardHash:  r.BoardHash,
			Events:     r.Events,
		})
	}
	return timeline
}

func buildTraceStats(requests []ir.RequestRecord) TraceStats {
	var stats TraceStats
	for _, r := range requests {
		stats.Requests++
		if r.ErrorCode != "" {
			stats.Rejected++
		}
		stats.Events += len(r.Events)
		for _, ev := range r.Events {
			if ev.Kind == ir.EventMatchApplied {
				stats.Matches++
			}
		}
		stats.Score += r.Score
		stats.Reshuffles += r.Reshuffles
		if r.ComboDepth > stats.MaxCombo {
			stats.MaxCombo = r.ComboDepth
		}
	}
	return stats
}

func outputTraceText(cmd *cobra.Command, result TraceResult) {
	w := cmd.OutOrStdout()

	fmt.Fprintf(w, "Session: %s\n", result.Session)
	fmt.Fprintf(w, "Game:    %s (seed %d)\n\n", result.Name, result.Seed)

	if result.Kind != "" {
		fmt.Fprintf(w, "Events of kind %s: %d\n", result.Kind, len(result.Events))
		for _, ev := range result.Events {
			fmt.Fprintf(w, "  %s\n", formatEvent(ev))
		}
	} else {
		for _, r := range result.Timeline {
			label := string(r.Kind)
			if r.Swap != nil {
				label += " " + r.Swap.String()
			}
			if r.Error != "" {
				fmt.Fprintf(w, "[%d] %s: %s\n", r.Seq, label, r.Error)
			} else {
				fmt.Fprintf(w, "[%d] %s: score %d, combo %d\n", r.Seq, label, r.Score, r.ComboDepth)
			}
			for _, ev := range r.Events {
				fmt.Fprintf(w, "  %s\n", formatEvent(ev))
			}
		}
	}

	s := result.Stats
	fmt.Fprintln(w)
	fmt.Fprintf(w, "Requests: %d (%d rejected)\n", s.Requests, s.Rejected)
	fmt.Fprintf(w, "Events:   %d (%d matches)\n", s.Events, s.Matches)
	fmt.Fprintf(w, "Score:    %d, max combo %d, %d reshuffles\n", s.Score, s.MaxCombo, s.Reshuffles)
}

// formatEvent renders one event on a single line.
func formatEvent(ev ir.Event) string {
	line := fmt.Sprintf("#%d %s", ev.Seq, ev.Kind)
	switch {
	case ev.Applied != nil:
		a := ev.Applied
		line += fmt.Sprintf(" depth=%d %s [%s]", ev.Depth, a.Kind, ir.FormatRow(a.Consumed))
		if !a.Produced.IsEmpty() {
			line += " -> " + string(a.Produced)
		}
	case ev.Attempt > 0:
		line += fmt.Sprintf(" attempt=%d", ev.Attempt)
	case ev.Depth > 0:
		line += fmt.Sprintf(" depth=%d", ev.Depth)
	}
	return line
}
