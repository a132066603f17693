// sim/dest.go
// Copyright(c) 2024-2026 towersim contributors, licensed under the GNU Public License, Version 3.
// SPDX: GPL-3.0-only

package sim

import (
	"errors"
	"fmt"

	"github.com/avsim/towersim/math"
	"github.com/avsim/towersim/nav"
)

var ErrInvalidDestination = errors.New("invalid destination")

type DestinationKind int

const (
	// DestinationLanding: land at the named aerodrome; completes when the
	// airport collaborator reports the runway vacated there.
	DestinationLanding DestinationKind = iota
	// DestinationVacateAnyRunway: touch-and-go training objective;
	// completes when any runway is vacated, regardless of aerodrome.
	DestinationVacateAnyRunway
	// DestinationReachWaypoint: departure objective; completes when the
	// configured altitude and/or waypoint-proximity conditions have all
	// been satisfied at some point (not necessarily simultaneously).
	DestinationReachWaypoint
)

func (k DestinationKind) String() string {
	return [...]string{"landing", "vacate any runway", "reach waypoint"}[k]
}

// Destination is an aircraft's objective. For DestinationReachWaypoint,
// each configured condition clears independently and monotonically: once
// the aircraft has climbed past MinAltitude it stays cleared even if it
// later descends, and likewise for waypoint proximity.
type Destination struct {
	Kind      DestinationKind
	Aerodrome string // DestinationLanding only

	// DestinationReachWaypoint conditions; nil -> not required.
	MinAltitude    *float32
	Waypoint       *[2]float32
	WaypointRadius float32

	altitudeCleared bool
	waypointCleared bool
	completed       bool
}

func (d *Destination) Validate() error {
	switch d.Kind {
	case DestinationLanding:
		if d.Aerodrome == "" {
			return fmt.Errorf("%w: landing without an aerodrome", ErrInvalidDestination)
		}
	case DestinationVacateAnyRunway:
		// No parameters.
	case DestinationReachWaypoint:
		if d.MinAltitude == nil && d.Waypoint == nil {
			return fmt.Errorf("%w: reach waypoint without any condition", ErrInvalidDestination)
		}
		if d.Waypoint != nil && d.WaypointRadius <= 0 {
			return fmt.Errorf("%w: waypoint condition with radius %v", ErrInvalidDestination,
				d.WaypointRadius)
		}
	default:
		return fmt.Errorf("%w: kind %d", ErrInvalidDestination, d.Kind)
	}
	return nil
}

func (d *Destination) Completed() bool {
	return d.completed
}

// update checks the destination's conditions against the aircraft's new
// state and reports whether it has just completed. Landing destinations
// don't complete here; they wait for NotifyRunwayVacated.
func (d *Destination) update(fs *nav.FlightState) bool {
	if d.completed || d.Kind != DestinationReachWaypoint {
		return false
	}

	if d.MinAltitude != nil && !d.altitudeCleared && fs.Altitude >= *d.MinAltitude {
		d.altitudeCleared = true
	}
	if d.Waypoint != nil && !d.waypointCleared &&
		math.Distance2f(fs.Position, *d.Waypoint) <= d.WaypointRadius {
		d.waypointCleared = true
	}

	if (d.MinAltitude == nil || d.altitudeCleared) && (d.Waypoint == nil || d.waypointCleared) {
		d.completed = true
		return true
	}
	return false
}

// notifyRunwayVacated reports whether the vacated-runway notification for
// the given aerodrome completes this destination.
func (d *Destination) notifyRunwayVacated(aerodrome string) bool {
	if d.completed {
		return false
	}
	switch d.Kind {
	case DestinationVacateAnyRunway:
		d.completed = true
		return true
	case DestinationLanding:
		if d.Aerodrome == aerodrome {
			d.completed = true
			return true
		}
	}
	return false
}

// Stats is the scoring context for one scenario run; it is created at
// scenario load and replaced wholesale on restart rather than living as a
// global.
type Stats struct {
	Arrivals   int
	Departures int
	Score      int
}

// completionReward is the score delta for finishing the given objective.
func completionReward(kind DestinationKind) int {
	switch kind {
	case DestinationLanding, DestinationVacateAnyRunway:
		return 10
	default:
		return 5
	}
}

func (st *Stats) recordCompletion(d *Destination) int {
	switch d.Kind {
	case DestinationLanding, DestinationVacateAnyRunway:
		st.Arrivals++
	case DestinationReachWaypoint:
		st.Departures++
	}
	reward := completionReward(d.Kind)
	st.Score += reward
	return reward
}
