package harness

import (
	"fmt"
	"reflect"
	"strings"

	"github.com/roach88/kanjimerge/internal/ir"
)

// AssertionError is returned when an assertion fails.
// It includes detailed context to help debug the failure.
type AssertionError struct {
	Type     string       // Assertion type for categorization
	Expected string       // Human-readable expected outcome
	Actual   string       // Human-readable actual outcome
	Trace    []TraceEvent // Full trace for debugging context
}

// Error implements the error interface.
func (e *AssertionError) Error() string {
	var buf strings.Builder

	fmt.Fprintf(&buf, "Assertion failed: %s\n", e.Type)
	fmt.Fprintf(&buf, "  Expected: %s\n", e.Expected)
	fmt.Fprintf(&buf, "  Actual: %s\n", e.Actual)

	if len(e.Trace) > 0 {
		fmt.Fprintf(&buf, "\nFull trace:\n")
		for _, event := range e.Trace {
			fmt.Fprintf(&buf, "  %s\n", describe(event))
		}
	}
	return buf.String()
}

// describe renders one trace entry on a single line.
func describe(e TraceEvent) string {
	if e.Type == TraceTypeRequest {
		s := fmt.Sprintf("[step %d] %s", e.Step, e.Request)
		if e.Swap != nil {
			s += " " + e.Swap.String()
		}
		if e.Error != "" {
			s += " error=" + e.Error
		}
		return s
	}
	s := fmt.Sprintf("  #%d %s", e.Seq, e.Kind)
	if e.Applied != nil {
		s += fmt.Sprintf(" %s %v", e.Applied.Kind, e.Applied.Positions)
	}
	return s
}

// eventMatches reports whether an event entry has the kind and, when given,
// the match kind of an assertion.
func eventMatches(e TraceEvent, event, matchKind string) bool {
	if e.Type != TraceTypeEvent || e.Kind != event {
		return false
	}
	if matchKind == "" {
		return true
	}
	return e.Applied != nil && string(e.Applied.Kind) == matchKind
}

// assertEventContains checks if the trace contains an event matching the
// assertion's kind, match kind, positions and produced symbol.
func assertEventContains(trace []TraceEvent, assertion Assertion) error {
	positions, err := toPositions(assertion.Positions)
	if err != nil {
		return err
	}

	for _, e := range trace {
		if !eventMatches(e, assertion.Event, assertion.Match) {
			continue
		}
		if len(positions) > 0 && (e.Applied == nil || !reflect.DeepEqual(e.Applied.Positions, positions)) {
			continue
		}
		if assertion.Produced != "" && (e.Applied == nil || e.Applied.Produced != ir.NormalizeSymbol(ir.Symbol(assertion.Produced))) {
			continue
		}
		return nil
	}

	expected := assertion.Event
	if assertion.Match != "" {
		expected += " " + assertion.Match
	}
	if len(positions) > 0 {
		expected += fmt.Sprintf(" at %v", positions)
	}
	if assertion.Produced != "" {
		expected += " producing " + assertion.Produced
	}
	return &AssertionError{
		Type:     AssertEventContains,
		Expected: expected,
		Actual:   "not found in trace",
		Trace:    trace,
	}
}

// assertEventOrder checks that the listed match kinds (of match_applied
// events) or event kinds first appear in the given order. Intervening
// events are allowed.
func assertEventOrder(trace []TraceEvent, assertion Assertion) error {
	names := assertion.Events
	name := func(e TraceEvent) string {
		if e.Type != TraceTypeEvent {
			return ""
		}
		return e.Kind
	}
	if len(assertion.Matches) > 0 {
		names = assertion.Matches
		name = func(e TraceEvent) string {
			if e.Type != TraceTypeEvent || e.Applied == nil {
				return ""
			}
			return string(e.Applied.Kind)
		}
	}

	// First position of each expected name, 1-indexed
	positions := make(map[string]int)
	for i, e := range trace {
		n := name(e)
		if n != "" && positions[n] == 0 {
			positions[n] = i + 1
		}
	}

	for _, n := range names {
		if positions[n] == 0 {
			return &AssertionError{
				Type:     AssertEventOrder,
				Expected: fmt.Sprintf("all present: %v", names),
				Actual:   fmt.Sprintf("missing: %s", n),
				Trace:    trace,
			}
		}
	}

	for i := 1; i < len(names); i++ {
		prev, curr := names[i-1], names[i]
		if positions[prev] >= positions[curr] {
			return &AssertionError{
				Type:     AssertEventOrder,
				Expected: fmt.Sprintf("in order: %v", names),
				Actual: fmt.Sprintf("%s (pos %d) should be before %s (pos %d)",
					prev, positions[prev], curr, positions[curr]),
				Trace: trace,
			}
		}
	}
	return nil
}

// assertEventCount checks if the event appears exactly the specified number of times.
func assertEventCount(trace []TraceEvent, assertion Assertion) error {
	count := 0
	for _, e := range trace {
		if eventMatches(e, assertion.Event, assertion.Match) {
			count++
		}
	}

	if count != assertion.Count {
		what := assertion.Event
		if assertion.Match != "" {
			what += " " + assertion.Match
		}
		return &AssertionError{
			Type:     AssertEventCount,
			Expected: fmt.Sprintf("%d occurrences of %s", assertion.Count, what),
			Actual:   fmt.Sprintf("%d occurrences", count),
			Trace:    trace,
		}
	}
	return nil
}

// assertFinalBoard compares the final board cell by cell.
func assertFinalBoard(board [][]ir.Symbol, assertion Assertion) error {
	want := toSymbols(assertion.Board)
	if reflect.DeepEqual(board, want) {
		return nil
	}
	return &AssertionError{
		Type:     AssertFinalBoard,
		Expected: formatBoard(want),
		Actual:   formatBoard(board),
	}
}

func formatBoard(board [][]ir.Symbol) string {
	rows := make([]string, len(board))
	for i, row := range board {
		rows[i] = ir.FormatRow(row)
	}
	return "[" + strings.Join(rows, " | ") + "]"
}

// EvaluateAssertions evaluates all assertions against the result.
// Returns a slice of error messages for failed assertions.
func EvaluateAssertions(result *Result, assertions []Assertion) []string {
	var errors []string

	for i, assertion := range assertions {
		var err error

		switch assertion.Type {
		case AssertEventContains:
			err = assertEventContains(result.Trace, assertion)
		case AssertEventOrder:
			err = assertEventOrder(result.Trace, assertion)
		case AssertEventCount:
			err = assertEventCount(result.Trace, assertion)
		case AssertFinalBoard:
			err = assertFinalBoard(result.Board, assertion)
		case AssertSettled:
			if !result.Settled {
				err = &AssertionError{
					Type:     AssertSettled,
					Expected: "full board without matches",
					Actual:   formatBoard(result.Board),
				}
			}
		case AssertDeadlocked:
			if assertion.Value == nil {
				err = fmt.Errorf("assertion[%d]: deadlocked requires value", i)
			} else if *assertion.Value != result.Deadlocked {
				err = &AssertionError{
					Type:     AssertDeadlocked,
					Expected: fmt.Sprintf("deadlocked = %t", *assertion.Value),
					Actual:   fmt.Sprintf("deadlocked = %t", result.Deadlocked),
				}
			}
		default:
			err = fmt.Errorf("assertion[%d]: unknown assertion type %q", i, assertion.Type)
		}

		if err != nil {
			errors = append(errors, err.Error())
		}
	}

	return errors
}
