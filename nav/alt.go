// nav/alt.go
// Copyright(c) 2024-2026 towersim contributors, licensed under the GNU Public License, Version 3.
// SPDX: GPL-3.0-only

package nav

import (
	"github.com/avsim/towersim/math"
)

const (
	// Fade the vertical rate within this distance of the target altitude
	// so the level-off isn't abrupt.
	rateFadeAltDifference = 500 // ft
	rateFadeFloor         = 0.25
)

// climbDescentRates returns the available climb and descent rates in
// ft/minute, reduced from the structural maximums for normal operations
// unless an expedited climb/descent was assigned.
func (nav *Nav) climbDescentRates(remaining float32) (climb, descent float32) {
	climb, descent = nav.Perf.Rate.Climb, nav.Perf.Rate.Descent

	if !nav.Altitude.Expedite {
		// High performers don't sustain their book rate above 5,000'.
		if climb >= 2500 && nav.FlightState.Altitude > 5000 {
			climb -= 500
		}
		if remaining < rateFadeAltDifference {
			fade := max(remaining/rateFadeAltDifference, rateFadeFloor)
			climb *= fade
			descent *= fade
		}
	}
	return
}

func (nav *Nav) updateAltitude(dt float32) error {
	fs := &nav.FlightState

	if nav.Altitude.Assigned == nil {
		nav.Altitude.State = AxisIdle
		return nil
	}

	target := *nav.Altitude.Assigned
	altErr := target - fs.Altitude
	climb, descent := nav.climbDescentRates(math.Abs(altErr))

	maxUp := climb * dt / 60
	maxDown := descent * dt / 60

	if math.Abs(altErr) <= AltitudeEpsilon && altErr <= maxUp && -altErr <= maxDown {
		fs.Altitude = target
		nav.Altitude.State = AxisAchieved
		nav.Altitude.Expedite = false
		_, err := nav.AltitudePID.Control(altErr, dt)
		return err
	}

	rate, err := nav.AltitudePID.Control(altErr, dt)
	if err != nil {
		return err
	}
	rate = math.Clamp(rate, -descent, climb)

	dAlt := math.Clamp(rate*dt/60, -math.Abs(altErr), math.Abs(altErr))
	fs.Altitude += dAlt
	nav.Altitude.State = AxisConverging
	return nil
}
