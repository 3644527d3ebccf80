// Package harness provides conformance testing for kanjimerge game
// definitions.
//
// A scenario compiles a CUE game config, builds a real engine on a fixed
// board with a scripted refill stream, issues requests and validates the
// emitted events and the final board.
//
// # Scenario Format
//
// Scenarios are defined in YAML files with the following structure:
//
//	name: scenario_name
//	description: "What this scenario validates"
//	config: ../configs/kanji.cue   # relative to the scenario file
//	board:                         # row 0 (bottom) first
//	  - [木, 木, 火]
//	  - [日, 月, 木]
//	  - [火, 火, 日]
//	draws: [4, 1, 4, 0, 2, 0]      # pool indexes, cycled
//	steps:
//	  - swap: [[0, 2], [1, 2]]
//	    expect: {error: "", combo_depth: 1}
//	  - reset: true
//	assertions:
//	  - {type: event_contains, event: match_applied, match: triple_run, positions: [[0, 0], [0, 1], [0, 2]]}
//	  - {type: event_order, matches: [triple_run, recipe_merge, terminal_pair]}
//	  - {type: event_count, event: combo_step, count: 1}
//	  - {type: final_board, board: [[人, 明, 火], [火, 木, 日], [人, 日, 木]]}
//	  - {type: settled}
//	  - {type: deadlocked, value: false}
//
// # Assertion Types
//
//   - event_contains: an event (optionally a match kind at given positions) appears
//   - event_order: match kinds or event kinds first appear in order
//   - event_count: an event (optionally narrowed to a match kind) appears exactly N times
//   - final_board: the board equals the expected rows
//   - settled: the board is full and holds no match
//   - deadlocked: the final deadlock state
//
// # Deterministic Testing
//
// The harness uses:
//   - Fixed session ids (scenario.session, or "test-session-default")
//   - Scripted refills (testutil.ScriptedRand) when draws are given
//   - The seeded ChaCha8 stream otherwise, with the session journaled into
//     an in-memory SQLite database and replayed after the last step
//
// This ensures identical traces across runs for golden file comparison.
//
// # Usage
//
//	scenario, err := harness.LoadScenario("testdata/scenarios/triple_first.yaml")
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	result, err := harness.Run(scenario)
//	if !result.Pass {
//	    for _, err := range result.Errors {
//	        log.Println(err)
//	    }
//	}
package harness
