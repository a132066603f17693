// nav/lateral.go
// Copyright(c) 2024-2026 towersim contributors, licensed under the GNU Public License, Version 3.
// SPDX: GPL-3.0-only

package nav

import (
	"github.com/avsim/towersim/math"
)

// Distance at which a direct-to waypoint counts as reached.
const waypointCaptureDistance = 0.1 // nm

// targetHeading resolves the active heading target: a direct-to waypoint
// takes precedence over an assigned heading.
func (nav *Nav) targetHeading() (float32, bool) {
	if nav.Heading.Waypoint != nil {
		wp := *nav.Heading.Waypoint
		if math.Distance2f(nav.FlightState.Position, wp) < waypointCaptureDistance {
			// On top of the waypoint; hold the current track.
			nav.Heading.Waypoint = nil
			return 0, false
		}
		return math.Heading2f(nav.FlightState.Position, wp), true
	}
	if nav.Heading.Assigned != nil {
		return *nav.Heading.Assigned, true
	}
	return 0, false
}

func (nav *Nav) updateHeading(dt float32) error {
	target, ok := nav.targetHeading()
	if !ok {
		nav.Heading.State = AxisIdle
		return nil
	}

	turnErr := math.HeadingSignedTurn(nav.FlightState.Heading, target)
	maxTurn := nav.Perf.Turn.MaxRate * dt

	if math.Abs(turnErr) <= HeadingEpsilon && math.Abs(turnErr) <= maxTurn {
		nav.FlightState.Heading = target
		nav.Heading.State = AxisAchieved
		// Keep the controller's error memory current for the next
		// maneuver.
		_, err := nav.HeadingPID.Control(turnErr, dt)
		return err
	}

	rate, err := nav.HeadingPID.Control(turnErr, dt)
	if err != nil {
		return err
	}
	rate = math.Clamp(rate, -nav.Perf.Turn.MaxRate, nav.Perf.Turn.MaxRate)

	// Never turn past the target, no matter what the controller asks for.
	turn := math.Clamp(rate*dt, -math.Abs(turnErr), math.Abs(turnErr))

	nav.FlightState.Heading = math.NormalizeHeading(nav.FlightState.Heading + turn)
	nav.Heading.State = AxisConverging
	return nil
}
