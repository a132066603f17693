// nav/predict.go
// Copyright(c) 2024-2026 towersim contributors, licensed under the GNU Public License, Version 3.
// SPDX: GPL-3.0-only

package nav

import (
	"fmt"

	"github.com/avsim/towersim/math"
	"github.com/avsim/towersim/wx"

	"github.com/brunoga/deep"
)

// Predict projects the aircraft's trajectory forward by running the same
// per-tick update rule as the live simulation on a detached deep copy,
// stepping step seconds at a time out to the horizon (both in seconds).
// It returns one FlightState per step. The live Nav is never touched, and
// the result is deterministic: identical inputs produce identical
// sequences, so repeated predictions for conflict detection are
// reproducible. Consumers (conflict probes, ETA displays) interpret the
// sequence; Predict only supplies it.
func (nav *Nav) Predict(wm *wx.WindModel, horizon, step float32) ([]FlightState, error) {
	if math.IsNaN(step) || step <= 0 || math.IsNaN(horizon) || horizon < 0 {
		return nil, fmt.Errorf("%w: horizon %v step %v", ErrInvalidInput, horizon, step)
	}

	ghost, err := deep.Copy(nav)
	if err != nil {
		return nil, err
	}

	nsteps := int(horizon / step)
	states := make([]FlightState, 0, nsteps)
	for i := 0; i < nsteps; i++ {
		if err := ghost.Update(step, wm); err != nil {
			return nil, err
		}
		states = append(states, ghost.FlightState)
	}
	return states, nil
}
