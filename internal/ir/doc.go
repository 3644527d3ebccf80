// Package ir provides the shared value types of the kanjimerge engine.
//
// This package contains type definitions only. All other internal packages
// import ir; ir imports nothing internal. This keeps ir the foundational
// layer with no circular dependencies.
//
// Key design constraints:
//   - Row 0 is the bottom row of the board; gravity pulls toward it
//   - The empty Symbol ("") marks an empty cell and never leaves a cascade
//   - All JSON tags use snake_case
//   - Events carry logical sequence numbers, never wall-clock timestamps
package ir
