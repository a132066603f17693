// nav/nav.go
// Copyright(c) 2024-2026 towersim contributors, licensed under the GNU Public License, Version 3.
// SPDX: GPL-3.0-only

// Package nav implements the per-aircraft guidance loop: it resolves the
// controller-assigned heading/speed/altitude targets, runs a PID
// controller per axis, clamps the commanded rates to the aircraft type's
// performance envelope, and integrates the kinematic state forward once
// per simulation tick. It also provides the altitude-at-distance
// estimator and the trajectory predictor, both built on the same update
// rule as the live simulation.
package nav

import (
	"errors"
	"fmt"
	"log/slog"

	"github.com/avsim/towersim/aviation"
	"github.com/avsim/towersim/math"
	"github.com/avsim/towersim/pid"
	"github.com/avsim/towersim/wx"

	"github.com/brunoga/deep"
)

var (
	ErrInvalidDeltaTime = errors.New("invalid time step")
	ErrInvalidInput     = errors.New("invalid input")
	ErrNoGroundProgress = errors.New("wind prevents progress along track")
)

// Epsilons for deciding that an axis has achieved its target.
const (
	HeadingEpsilon  = 0.5 // degrees
	AltitudeEpsilon = 10  // ft
	SpeedEpsilon    = 1   // kts
)

// AxisState tracks where a controlled axis is relative to its target.
type AxisState int

const (
	// AxisIdle: no target is assigned for the axis.
	AxisIdle AxisState = iota
	// AxisConverging: a target is assigned and the aircraft is still
	// maneuvering toward it.
	AxisConverging
	// AxisAchieved: the axis is within its epsilon of the target and
	// holding.
	AxisAchieved
)

func (a AxisState) String() string {
	return [...]string{"idle", "converging", "achieved"}[a]
}

// FlightState is the aircraft's kinematic state: flat nm position,
// altitude in feet, ground-track heading in degrees, and speeds in kts.
// It is owned by the aircraft and mutated exactly once per tick.
type FlightState struct {
	Position     [2]float32
	Altitude     float32
	PrevAltitude float32 // altitude at the start of the current tick
	Heading      float32
	IAS, TAS, GS float32
	AltitudeRate float32 // (Altitude-PrevAltitude)/dt in ft/minute; + -> climb
}

func (fs *FlightState) Summary() string {
	return fmt.Sprintf("heading %03d altitude %.0f ias %.1f gs %.1f",
		int(fs.Heading), fs.Altitude, fs.IAS, fs.GS)
}

func (fs FlightState) LogValue() slog.Value {
	return slog.GroupValue(
		slog.Any("position", fs.Position),
		slog.Float64("heading", float64(fs.Heading)),
		slog.Float64("altitude", float64(fs.Altitude)),
		slog.Float64("ias", float64(fs.IAS)),
		slog.Float64("gs", float64(fs.GS)),
		slog.Float64("altitude_rate", float64(fs.AltitudeRate)),
	)
}

// Pointers are used for optional target values; nil -> unset.

type NavHeading struct {
	Assigned *float32
	// Waypoint, if set, takes precedence over Assigned: the bearing to
	// the waypoint becomes the heading target each tick until the
	// aircraft is on top of it.
	Waypoint *[2]float32
	State    AxisState
}

type NavAltitude struct {
	Assigned *float32
	// Expedite lifts the standard-rate reductions so the full structural
	// climb/descent rate is available.
	Expedite bool
	State    AxisState
}

type NavSpeed struct {
	Assigned *float32
	State    AxisState
}

// Nav holds everything needed to fly one aircraft: its kinematic state,
// its type's performance envelope, the active targets, and one PID
// controller per axis. The controllers persist across ticks and are reset
// only on respawn.
type Nav struct {
	FlightState FlightState
	Perf        aviation.Performance

	Heading  NavHeading
	Altitude NavAltitude
	Speed    NavSpeed

	HeadingPID  pid.State
	SpeedPID    pid.State
	AltitudePID pid.State
}

// Default per-axis gains. The heading controller outputs a turn rate in
// degrees/second from an error in degrees; speed outputs kts/second from
// kts; altitude outputs ft/minute from feet. All outputs are clamped to
// the performance envelope before they are applied, so the loops stay
// stable even with aggressive gains.
var (
	DefaultHeadingGains  = pid.Params{P: 0.9, I: 0.02, D: 0.05}
	DefaultSpeedGains    = pid.Params{P: 0.4, I: 0.02, D: 0.05}
	DefaultAltitudeGains = pid.Params{P: 8, I: 0.1, D: 0.5}
)

func MakeNav(perf aviation.Performance, fs FlightState) *Nav {
	fs.IAS = math.Clamp(fs.IAS, perf.Speed.Min, perf.Speed.Max)
	fs.Heading = math.NormalizeHeading(fs.Heading)
	fs.TAS = wx.IASToTAS(fs.IAS, fs.Altitude)
	fs.PrevAltitude = fs.Altitude

	return &Nav{
		FlightState: fs,
		Perf:        perf,
		HeadingPID:  pid.State{Params: DefaultHeadingGains},
		SpeedPID:    pid.State{Params: DefaultSpeedGains},
		AltitudePID: pid.State{Params: DefaultAltitudeGains},
	}
}

// Reset clears the per-axis controller memory; called when an aircraft
// respawns.
func (nav *Nav) Reset() {
	nav.HeadingPID.Reset()
	nav.SpeedPID.Reset()
	nav.AltitudePID.Reset()
}

///////////////////////////////////////////////////////////////////////////
// Target assignment

// AssignHeading sets the heading target, replacing any direct-to
// waypoint.
func (nav *Nav) AssignHeading(hdg float32) error {
	if math.IsNaN(hdg) {
		return ErrInvalidInput
	}
	hdg = math.NormalizeHeading(hdg)
	nav.Heading.Assigned = &hdg
	nav.Heading.Waypoint = nil
	nav.Heading.State = convergenceState(
		math.Abs(math.HeadingSignedTurn(nav.FlightState.Heading, hdg)), HeadingEpsilon)
	return nil
}

// DirectTo steers toward the given point; the bearing to it becomes the
// heading target each tick.
func (nav *Nav) DirectTo(p [2]float32) error {
	if math.IsNaN(p[0]) || math.IsNaN(p[1]) {
		return ErrInvalidInput
	}
	nav.Heading.Waypoint = &p
	nav.Heading.State = AxisConverging
	return nil
}

// AssignSpeed sets the airspeed target; values outside the type's
// envelope are clamped into it.
func (nav *Nav) AssignSpeed(kts float32) error {
	if math.IsNaN(kts) {
		return ErrInvalidInput
	}
	kts = math.Clamp(kts, nav.Perf.Speed.Min, nav.Perf.Speed.Max)
	nav.Speed.Assigned = &kts
	nav.Speed.State = convergenceState(math.Abs(kts-nav.FlightState.IAS), SpeedEpsilon)
	return nil
}

// AssignAltitude sets the altitude target, clamped to [0, ceiling]. With
// expedite set the full structural climb/descent rate is available.
func (nav *Nav) AssignAltitude(ft float32, expedite bool) error {
	if math.IsNaN(ft) {
		return ErrInvalidInput
	}
	ft = math.Clamp(ft, 0, nav.Perf.Ceiling)
	nav.Altitude.Assigned = &ft
	nav.Altitude.Expedite = expedite
	nav.Altitude.State = convergenceState(math.Abs(ft-nav.FlightState.Altitude), AltitudeEpsilon)
	return nil
}

func convergenceState(absErr, epsilon float32) AxisState {
	if absErr <= epsilon {
		return AxisAchieved
	}
	return AxisConverging
}

///////////////////////////////////////////////////////////////////////////
// Snapshots

// Snapshot captures the controller-modifiable targets for later rollback.
// It does not include FlightState; the aircraft's physical state is never
// rolled back.
type Snapshot struct {
	Heading  NavHeading
	Altitude NavAltitude
	Speed    NavSpeed
}

func (nav *Nav) TakeSnapshot() Snapshot {
	return deep.MustCopy(Snapshot{
		Heading:  nav.Heading,
		Altitude: nav.Altitude,
		Speed:    nav.Speed,
	})
}

func (nav *Nav) RestoreSnapshot(snap Snapshot) {
	nav.Heading = snap.Heading
	nav.Altitude = snap.Altitude
	nav.Speed = snap.Speed
}

///////////////////////////////////////////////////////////////////////////
// Per-tick update

// Update advances the aircraft by dt seconds: each axis controller runs
// against its target, the commanded rates are clamped to the performance
// envelope, and the kinematic state is integrated, with the ground
// velocity derived from true airspeed and the wind sampled at the
// aircraft's position and altitude. dt must be finite and non-negative.
func (nav *Nav) Update(dt float32, wm *wx.WindModel) error {
	if math.IsNaN(dt) || dt < 0 {
		return fmt.Errorf("%w: dt %v", ErrInvalidDeltaTime, dt)
	}

	fs := &nav.FlightState
	fs.PrevAltitude = fs.Altitude

	if err := nav.updateHeading(dt); err != nil {
		return err
	}
	if err := nav.updateAirspeed(dt); err != nil {
		return err
	}
	if err := nav.updateAltitude(dt); err != nil {
		return err
	}

	if dt > 0 {
		fs.AltitudeRate = (fs.Altitude - fs.PrevAltitude) * 60 / dt
	} else {
		fs.AltitudeRate = 0
	}

	wind := wm.WindAt(fs.Position, fs.Altitude)
	nav.updatePositionAndGS(dt, wind)
	return nil
}

func (nav *Nav) updatePositionAndGS(dt float32, wind [2]float32) {
	fs := &nav.FlightState
	fs.TAS = wx.IASToTAS(fs.IAS, fs.Altitude)

	dir := math.SinCos(math.Radians(fs.Heading))
	fs.GS = ExpectedGroundSpeed(fs.TAS, wind, dir)
	fs.Position = math.Add2f(fs.Position, math.Scale2f(dir, fs.GS*dt/3600))
}
