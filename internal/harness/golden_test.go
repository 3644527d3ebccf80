package harness

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRunWithGolden_TerminalPair(t *testing.T) {
	// Regenerate with:
	//   go test ./internal/harness -run TestRunWithGolden_TerminalPair -update
	result, err := RunWithGolden(t, loadTestScenario(t, "terminal_pair.yaml"))
	require.NoError(t, err)
	assert.True(t, result.Pass, "%v", result.Errors)
}

func TestSnapshot_Deterministic(t *testing.T) {
	scenario := loadTestScenario(t, "triple_first.yaml")

	r1, err := Run(scenario)
	require.NoError(t, err)
	r2, err := Run(scenario)
	require.NoError(t, err)

	s1, err := Snapshot(scenario, r1)
	require.NoError(t, err)
	s2, err := Snapshot(scenario, r2)
	require.NoError(t, err)
	assert.Equal(t, string(s1), string(s2))
}

func TestSnapshot_CanonicalShape(t *testing.T) {
	scenario := &Scenario{Name: "shape"}
	result := NewResult()
	result.AddRequestTrace(1, "reset", nil, nil, "BUSY")

	data, err := Snapshot(scenario, result)
	require.NoError(t, err)
	assert.Equal(t,
		`{"board":null,"scenario_name":"shape","trace":[{"error":"BUSY","request":"reset","step":1,"type":"request"}]}`,
		string(data))
}
