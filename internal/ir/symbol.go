package ir

import (
	"strings"

	"golang.org/x/text/unicode/norm"
)

// NormalizeSymbol trims surrounding whitespace and applies NFC so that
// canonically equivalent kanji compare equal.
func NormalizeSymbol(s Symbol) Symbol {
	return Symbol(norm.NFC.String(strings.TrimSpace(string(s))))
}

// NormalizeSymbols normalizes every symbol of a list into a new slice.
func NormalizeSymbols(in []Symbol) []Symbol {
	if in == nil {
		return nil
	}
	out := make([]Symbol, len(in))
	for i, s := range in {
		out[i] = NormalizeSymbol(s)
	}
	return out
}

// ParseRow splits a row written as "木,木,火" (or "木 木 火") into symbols.
// A "." or "_" entry denotes an empty cell.
func ParseRow(row string) []Symbol {
	fields := strings.FieldsFunc(row, func(r rune) bool {
		return r == ',' || r == ' ' || r == '\t'
	})
	out := make([]Symbol, len(fields))
	for i, f := range fields {
		if f == "." || f == "_" {
			continue
		}
		out[i] = NormalizeSymbol(Symbol(f))
	}
	return out
}

// FormatRow is the inverse of ParseRow, using "." for empty cells.
func FormatRow(row []Symbol) string {
	parts := make([]string, len(row))
	for i, s := range row {
		if s.IsEmpty() {
			parts[i] = "."
			continue
		}
		parts[i] = string(s)
	}
	return strings.Join(parts, ",")
}
