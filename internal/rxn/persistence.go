package rxn

import (
	"encoding/json"
	"fmt"
)

// Checkpoint is a point-in-time capture of an engine's state: the model
// name, the simulation time, and the population of every species. The
// engine itself keeps no persistent state; checkpoints are a host
// convenience for saving and restoring runs.
type Checkpoint struct {
	Model  string           `json:"model"`
	Time   float64          `json:"time"`
	Counts map[string]int64 `json:"counts"`
}

// Checkpoint captures the engine's current state.
func (e *Engine) Checkpoint() Checkpoint {
	counts := make(map[string]int64, len(e.counts))
	for name, idx := range e.model.speciesIndex {
		counts[name] = e.counts[idx]
	}
	return Checkpoint{Model: e.model.Name, Time: e.t, Counts: counts}
}

// Restore loads a checkpoint into the engine and re-evaluates every
// propensity against the restored counts. Species missing from the
// checkpoint keep a zero count.
func (e *Engine) Restore(cp Checkpoint) error {
	if err := ValidateCheckpoint(cp, e.model); err != nil {
		return err
	}
	for i := range e.counts {
		e.counts[i] = 0
	}
	for name, count := range cp.Counts {
		e.counts[e.model.speciesIndex[name]] = count
	}
	e.t = cp.Time
	return e.recomputeAll()
}

// ValidateCheckpoint verifies that a checkpoint is consistent with a model:
// the time and all counts are non-negative and every species is known. A
// nil model skips the species check.
func ValidateCheckpoint(cp Checkpoint, m *Model) error {
	if cp.Time < 0 {
		return fmt.Errorf("%w: checkpoint time %v is negative", ErrInvalidArgument, cp.Time)
	}
	for name, count := range cp.Counts {
		if count < 0 {
			return fmt.Errorf("%w: checkpoint count of %q is negative", ErrInvalidArgument, name)
		}
		if m != nil {
			if _, ok := m.speciesIndex[name]; !ok {
				return fmt.Errorf("%w: checkpoint species %q", ErrUndefinedSymbol, name)
			}
		}
	}
	return nil
}

// EncodeCheckpointJSON encodes a checkpoint to JSON.
func EncodeCheckpointJSON(cp Checkpoint) ([]byte, error) {
	data, err := json.MarshalIndent(cp, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("encoding checkpoint: %w", err)
	}
	return data, nil
}

// DecodeCheckpointJSON decodes a checkpoint from JSON.
func DecodeCheckpointJSON(data []byte) (Checkpoint, error) {
	var cp Checkpoint
	if err := json.Unmarshal(data, &cp); err != nil {
		return Checkpoint{}, fmt.Errorf("decoding checkpoint: %w", err)
	}
	return cp, nil
}
