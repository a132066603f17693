// pid/pid.go
// Copyright(c) 2024-2026 towersim contributors, licensed under the GNU Public License, Version 3.
// SPDX: GPL-3.0-only

// Package pid implements the scalar PID controller that drives each
// controlled axis (heading, speed, altitude) of an aircraft toward its
// target. One State instance per axis per aircraft persists across
// simulation ticks; it is reset only when the aircraft respawns.
package pid

import (
	"errors"

	"github.com/avsim/towersim/math"
)

var ErrInvalidInput = errors.New("invalid controller input")

// Params holds the controller gains; they are independently tunable per
// axis.
type Params struct {
	P float32 `yaml:"p"`
	I float32 `yaml:"i"`
	D float32 `yaml:"d"`
}

// State is the per-axis controller state: the gains plus the error from
// the previous call, which feeds the integral and derivative terms.
type State struct {
	Params
	PrevError float32
}

// Control advances the controller by one step: err is the current error
// (target - actual, in consistent units from call to call) and dt the
// elapsed time since the previous call. The output combines the
// proportional term, a trapezoidal integral contribution over the step,
// and the rate of error change. A dt of zero yields a pure proportional
// response; the integral and derivative contributions are exactly zero
// rather than dividing by zero. NaN inputs or a negative dt return
// ErrInvalidInput and leave the stored state unchanged.
func (s *State) Control(err, dt float32) (float32, error) {
	if math.IsNaN(err) || math.IsNaN(dt) || dt < 0 {
		return 0, ErrInvalidInput
	}

	out := s.P * err
	if dt > 0 {
		out += s.I * (err + s.PrevError) / 2 * dt
		out += s.D * (err - s.PrevError) / dt
	}

	s.PrevError = err
	return out, nil
}

// Reset clears the controller's error memory; gains are retained.
func (s *State) Reset() {
	s.PrevError = 0
}
