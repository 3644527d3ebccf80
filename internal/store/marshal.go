package store

import (
	"encoding/json"
	"fmt"

	"github.com/roach88/kanjimerge/internal/ir"
)

// requestArgs is the args column of a request row.
type requestArgs struct {
	Swap *ir.Move `json:"swap,omitempty"`
}

// marshalCanonical converts v to canonical JSON TEXT for storage.
// Uses RFC 8785 canonical JSON for deterministic serialization.
func marshalCanonical(what string, v any) (string, error) {
	data, err := ir.MarshalCanonical(v)
	if err != nil {
		return "", fmt.Errorf("marshal %s: %w", what, err)
	}
	return string(data), nil
}

func unmarshalBoard(data string) ([][]ir.Symbol, error) {
	board := [][]ir.Symbol{}
	if err := json.Unmarshal([]byte(data), &board); err != nil {
		return nil, fmt.Errorf("unmarshal board: %w", err)
	}
	return board, nil
}

func unmarshalSpec(data string) (ir.GameSpec, error) {
	var spec ir.GameSpec
	if err := json.Unmarshal([]byte(data), &spec); err != nil {
		return ir.GameSpec{}, fmt.Errorf("unmarshal spec: %w", err)
	}
	return spec, nil
}

func unmarshalArgs(data string) (requestArgs, error) {
	var args requestArgs
	if data == "" || data == "{}" {
		return args, nil
	}
	if err := json.Unmarshal([]byte(data), &args); err != nil {
		return requestArgs{}, fmt.Errorf("unmarshal args: %w", err)
	}
	return args, nil
}

func unmarshalEvent(data string) (ir.Event, error) {
	var ev ir.Event
	if err := json.Unmarshal([]byte(data), &ev); err != nil {
		return ir.Event{}, fmt.Errorf("unmarshal event: %w", err)
	}
	return ev, nil
}

func boolInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
