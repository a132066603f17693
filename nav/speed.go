// nav/speed.go
// Copyright(c) 2024-2026 towersim contributors, licensed under the GNU Public License, Version 3.
// SPDX: GPL-3.0-only

package nav

import (
	"github.com/avsim/towersim/math"
)

func (nav *Nav) updateAirspeed(dt float32) error {
	fs := &nav.FlightState

	if nav.Speed.Assigned == nil {
		nav.Speed.State = AxisIdle
		return nil
	}

	// Targets are clamped into the envelope at assignment time, but the
	// envelope itself is enforced again below regardless.
	target := *nav.Speed.Assigned
	spdErr := target - fs.IAS

	// Acceleration rates are book values in kts per 2 seconds.
	maxAccel := nav.Perf.Rate.Accelerate / 2
	maxDecel := nav.Perf.Rate.Decelerate / 2

	if math.Abs(spdErr) <= SpeedEpsilon && spdErr <= maxAccel*dt && -spdErr <= maxDecel*dt {
		fs.IAS = target
		nav.Speed.State = AxisAchieved
		_, err := nav.SpeedPID.Control(spdErr, dt)
		return err
	}

	accel, err := nav.SpeedPID.Control(spdErr, dt)
	if err != nil {
		return err
	}
	accel = math.Clamp(accel, -maxDecel, maxAccel)

	dv := math.Clamp(accel*dt, -math.Abs(spdErr), math.Abs(spdErr))
	fs.IAS = math.Clamp(fs.IAS+dv, nav.Perf.Speed.Min, nav.Perf.Speed.Max)
	nav.Speed.State = AxisConverging
	return nil
}
