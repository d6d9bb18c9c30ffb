package kinetics

import (
	"encoding/json"
	"fmt"
)

// ValidateResult performs sanity checks on a trajectory result before it is
// persisted or served.
func ValidateResult(r TrajectoryResult) error {
	if r.ID == "" {
		return fmt.Errorf("trajectory result has empty ID")
	}
	if r.Steps < 0 {
		return fmt.Errorf("trajectory %s has negative step count %d", r.ID, r.Steps)
	}
	if r.FinalTime < 0 {
		return fmt.Errorf("trajectory %s has negative final time %g", r.ID, r.FinalTime)
	}
	switch r.StopReason {
	case StopCompleted, StopNoMoves, StopMaxTime, StopMaxSteps, StopRequested:
	default:
		return fmt.Errorf("trajectory %s has unknown stop reason %q", r.ID, r.StopReason)
	}
	return nil
}

// EncodeResultJSON encodes a trajectory result to JSON.
func EncodeResultJSON(r TrajectoryResult) ([]byte, error) {
	data, err := json.Marshal(r)
	if err != nil {
		return nil, fmt.Errorf("failed to encode trajectory result: %w", err)
	}
	return data, nil
}

// DecodeResultJSON decodes a trajectory result from JSON.
func DecodeResultJSON(data []byte) (TrajectoryResult, error) {
	var r TrajectoryResult
	if err := json.Unmarshal(data, &r); err != nil {
		return TrajectoryResult{}, fmt.Errorf("failed to decode trajectory result: %w", err)
	}
	return r, nil
}
