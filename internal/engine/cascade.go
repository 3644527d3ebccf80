package engine

import (
	"github.com/roach88/kanjimerge/internal/ir"
	"github.com/roach88/kanjimerge/internal/match"
)

// Step advances the cascade by exactly one phase and returns the events
// that phase emitted. It is a no-op in PhaseIdle.
//
// Phase transitions:
//
//	Scanning    -> Applying (matches) | Idle | Reshuffling (deadlock)
//	Applying    -> Settling
//	Settling    -> Scanning
//	Reshuffling -> Scanning
//
// A cascade that exceeds its quota returns a CASCADE_LIMIT RuntimeError and
// leaves the engine Idle on the current, full board.
func (e *Engine) Step() ([]ir.Event, error) {
	e.stepEvents = nil

	var err error
	switch e.phase {
	case PhaseIdle:
		return nil, nil
	case PhaseScanning:
		e.scan()
	case PhaseApplying:
		err = e.apply()
	case PhaseSettling:
		err = e.settle()
	case PhaseReshuffling:
		err = e.reshuffle()
	}
	return e.stepEvents, err
}

func (e *Engine) scan() {
	e.pending = match.Find(e.board, e.catalog)
	if len(e.pending) > 0 {
		e.logger.Debug("matches found", "session", e.session, "depth", e.depth, "matches", len(e.pending))
		e.phase = PhaseApplying
		return
	}

	e.emit(ir.Event{Kind: ir.EventCascadeSettled, Depth: e.depth})
	e.logger.Debug("cascade settled", "session", e.session, "depth", e.depth)

	if !Deadlocked(e.board, e.catalog) {
		e.report.Deadlocked = false
		e.finishIdle()
		return
	}

	e.report.Deadlocked = true
	e.emit(ir.Event{Kind: ir.EventDeadlockDetected})
	e.logger.Warn("deadlock detected", "session", e.session, "request", string(e.report.Request))

	if e.manual && e.report.Request != ir.RequestReshuffle {
		e.finishIdle()
		return
	}
	if e.attempts >= e.spec.Reshuffle.MaxAttempts {
		e.outcome = &ReshuffleExhaustedError{Attempts: e.attempts}
		e.logger.Warn("reshuffle attempts exhausted", "session", e.session, "attempts", e.attempts)
		e.finishIdle()
		return
	}
	e.phase = PhaseReshuffling
}

func (e *Engine) apply() error {
	if err := e.quota.Check(); err != nil {
		se := err.(*StepsExceededError)
		e.pending = nil
		e.finishIdle()
		return NewCascadeLimitError(e.session, se)
	}

	e.depth++
	if e.depth > e.report.ComboDepth {
		e.report.ComboDepth = e.depth
	}
	e.emit(ir.Event{Kind: ir.EventComboStep, Depth: e.depth})

	for _, m := range e.pending {
		applied := e.applyMatch(m)
		e.report.Score += applied.BaseScore
		e.emit(ir.Event{Kind: ir.EventMatchApplied, Depth: e.depth, Applied: &applied})
	}
	e.pending = nil
	e.phase = PhaseSettling
	return nil
}

// applyMatch mutates the board for one match and describes the effect.
func (e *Engine) applyMatch(m ir.Match) ir.Applied {
	a := ir.Applied{
		Kind:      m.Kind,
		Positions: append([]ir.Pos(nil), m.Positions...),
		Consumed:  make([]ir.Symbol, len(m.Positions)),
	}
	for i, p := range m.Positions {
		a.Consumed[i] = e.board.At(p)
	}

	switch m.Kind {
	case ir.MatchRecipeMerge:
		posA, posB := m.Positions[0], m.Positions[1]
		_ = e.board.Clear(posA)
		_ = e.board.Set(posB, m.Result)
		a.Produced = m.Result
		a.ProducedAt = &posB
		a.BaseScore = m.Recipe.Score

	case ir.MatchTripleRun:
		for _, p := range m.Positions {
			_ = e.board.Clear(p)
		}
		if !m.Result.IsEmpty() {
			first := m.Positions[0]
			_ = e.board.Set(first, m.Result)
			a.Produced = m.Result
			a.ProducedAt = &first
		}
		a.BaseScore = e.spec.Scores.Triple
		if rule, ok := e.catalog.TripleRule(m.Symbol); ok && rule.Score > 0 {
			a.BaseScore = rule.Score
		}

	case ir.MatchTerminalPair:
		for _, p := range m.Positions {
			_ = e.board.Clear(p)
		}
		a.BaseScore = e.spec.Scores.Terminal
	}
	return a
}

func (e *Engine) settle() error {
	e.board.Collapse()
	if err := e.refill(); err != nil {
		e.finishIdle()
		return err
	}
	e.phase = PhaseScanning
	return nil
}

func (e *Engine) reshuffle() error {
	e.attempts++
	e.report.Reshuffles++
	e.emit(ir.Event{Kind: ir.EventReshuffleTriggered, Attempt: e.attempts})
	e.logger.Warn("reshuffling board", "session", e.session, "attempt", e.attempts)

	e.board.ClearAll()
	if err := e.refill(); err != nil {
		e.finishIdle()
		return err
	}
	e.resetCascade()
	e.phase = PhaseScanning
	return nil
}

func (e *Engine) emit(ev ir.Event) {
	ev.Seq = e.clock.Next()
	e.report.Events = append(e.report.Events, ev)
	e.stepEvents = append(e.stepEvents, ev)
	if e.observer != nil {
		e.observer(ev)
	}
}

func (e *Engine) finishIdle() {
	e.phase = PhaseIdle
	e.report.Board = e.board.Snapshot()
}
