package rxn

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCheckpointJSONRoundTrip(t *testing.T) {
	cp := Checkpoint{
		Model:  "sir",
		Time:   42.5,
		Counts: map[string]int64{"S": 900, "I": 50, "R": 50},
	}
	data, err := EncodeCheckpointJSON(cp)
	require.NoError(t, err)
	back, err := DecodeCheckpointJSON(data)
	require.NoError(t, err)
	assert.Equal(t, cp, back)
}

func TestDecodeCheckpointJSONInvalid(t *testing.T) {
	_, err := DecodeCheckpointJSON([]byte("{not json"))
	assert.Error(t, err)
}

func TestValidateCheckpoint(t *testing.T) {
	m := NewModel("v")
	require.NoError(t, m.AddReaction(LMA(1), []string{"X"}, nil))

	assert.NoError(t, ValidateCheckpoint(Checkpoint{Counts: map[string]int64{"X": 3}}, m))
	assert.ErrorIs(t,
		ValidateCheckpoint(Checkpoint{Time: -1}, m), ErrInvalidArgument)
	assert.ErrorIs(t,
		ValidateCheckpoint(Checkpoint{Counts: map[string]int64{"X": -1}}, m), ErrInvalidArgument)
	assert.ErrorIs(t,
		ValidateCheckpoint(Checkpoint{Counts: map[string]int64{"Y": 1}}, m), ErrUndefinedSymbol)
	// A nil model skips the species check.
	assert.NoError(t, ValidateCheckpoint(Checkpoint{Counts: map[string]int64{"Y": 1}}, nil))
}

func TestRestoreRejectsUnknownSpecies(t *testing.T) {
	m := NewModel("r")
	require.NoError(t, m.AddReaction(LMA(1), []string{"X"}, nil))
	e, err := m.Compile(RunOptions{Init: map[string]int64{"X": 2}})
	require.NoError(t, err)
	defer e.Close()

	err = e.Restore(Checkpoint{Time: 1, Counts: map[string]int64{"Z": 1}})
	assert.ErrorIs(t, err, ErrUndefinedSymbol)
	// The failed restore must not have touched the engine.
	x, _ := e.Count("X")
	assert.Equal(t, int64(2), x)
	assert.Equal(t, 0.0, e.Time())
}
