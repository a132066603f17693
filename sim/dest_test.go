// sim/dest_test.go
// Copyright(c) 2024-2026 towersim contributors, licensed under the GNU Public License, Version 3.
// SPDX: GPL-3.0-only

package sim

import (
	"errors"
	"testing"

	"github.com/avsim/towersim/nav"
)

func fptr(v float32) *float32 { return &v }

func TestReachWaypointBothConditionsRequired(t *testing.T) {
	// With both a minimum altitude and a waypoint configured, neither
	// alone completes the destination; each clears independently and
	// monotonically, in either order.
	makeDest := func() *Destination {
		return &Destination{
			Kind:           DestinationReachWaypoint,
			MinAltitude:    fptr(5000),
			Waypoint:       &[2]float32{10, 10},
			WaypointRadius: 1,
		}
	}

	t.Run("altitude first", func(t *testing.T) {
		d := makeDest()

		// Climb past the altitude far from the waypoint.
		if d.update(&nav.FlightState{Position: [2]float32{0, 0}, Altitude: 6000}) {
			t.Fatal("completed with only the altitude condition cleared")
		}
		if d.Completed() {
			t.Fatal("Completed() true with a pending condition")
		}

		// Descend again: the altitude condition stays cleared, so
		// reaching the waypoint low still completes.
		if !d.update(&nav.FlightState{Position: [2]float32{10, 10.5}, Altitude: 2000}) {
			t.Fatal("did not complete after both conditions cleared")
		}
		if !d.Completed() {
			t.Fatal("Completed() false after completion")
		}
	})

	t.Run("waypoint first", func(t *testing.T) {
		d := makeDest()

		if d.update(&nav.FlightState{Position: [2]float32{10, 10}, Altitude: 1000}) {
			t.Fatal("completed with only the waypoint condition cleared")
		}
		// Away from the waypoint now, but the proximity condition stays
		// cleared; passing the altitude completes.
		if !d.update(&nav.FlightState{Position: [2]float32{50, 50}, Altitude: 5000}) {
			t.Fatal("did not complete after both conditions cleared")
		}
	})
}

func TestReachWaypointSingleCondition(t *testing.T) {
	d := &Destination{Kind: DestinationReachWaypoint, MinAltitude: fptr(3000)}

	if d.update(&nav.FlightState{Altitude: 2999}) {
		t.Fatal("completed below the minimum altitude")
	}
	if !d.update(&nav.FlightState{Altitude: 3000}) {
		t.Fatal("did not complete at the minimum altitude")
	}
	// Completion is terminal; further updates don't re-trigger.
	if d.update(&nav.FlightState{Altitude: 10000}) {
		t.Fatal("completion reported twice")
	}
}

func TestLandingCompletesOnRunwayVacated(t *testing.T) {
	d := &Destination{Kind: DestinationLanding, Aerodrome: "KJFK"}

	// Flight state alone never completes a landing.
	if d.update(&nav.FlightState{Altitude: 0}) {
		t.Fatal("landing completed without a runway-vacated notification")
	}

	if d.notifyRunwayVacated("KLGA") {
		t.Fatal("landing completed at the wrong aerodrome")
	}
	if !d.notifyRunwayVacated("KJFK") {
		t.Fatal("landing did not complete at its aerodrome")
	}
	if d.notifyRunwayVacated("KJFK") {
		t.Fatal("completion reported twice")
	}
}

func TestVacateAnyRunway(t *testing.T) {
	d := &Destination{Kind: DestinationVacateAnyRunway}
	if !d.notifyRunwayVacated("KORD") {
		t.Fatal("vacate-any destination did not complete")
	}
}

func TestDestinationValidate(t *testing.T) {
	tests := []struct {
		name string
		dest Destination
		ok   bool
	}{
		{"landing", Destination{Kind: DestinationLanding, Aerodrome: "KJFK"}, true},
		{"landing without aerodrome", Destination{Kind: DestinationLanding}, false},
		{"vacate any", Destination{Kind: DestinationVacateAnyRunway}, true},
		{"reach altitude", Destination{Kind: DestinationReachWaypoint, MinAltitude: fptr(5000)}, true},
		{"reach waypoint", Destination{Kind: DestinationReachWaypoint, Waypoint: &[2]float32{1, 1}, WaypointRadius: 0.5}, true},
		{"reach with nothing", Destination{Kind: DestinationReachWaypoint}, false},
		{"waypoint without radius", Destination{Kind: DestinationReachWaypoint, Waypoint: &[2]float32{1, 1}}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.dest.Validate()
			if tt.ok && err != nil {
				t.Errorf("unexpected error: %v", err)
			}
			if !tt.ok {
				if err == nil {
					t.Error("expected a validation error")
				} else if !errors.Is(err, ErrInvalidDestination) {
					t.Errorf("expected ErrInvalidDestination, got %v", err)
				}
			}
		})
	}
}

func TestStatsRecordCompletion(t *testing.T) {
	var st Stats

	st.recordCompletion(&Destination{Kind: DestinationLanding})
	st.recordCompletion(&Destination{Kind: DestinationVacateAnyRunway})
	st.recordCompletion(&Destination{Kind: DestinationReachWaypoint})

	if st.Arrivals != 2 {
		t.Errorf("arrivals %d, expected 2", st.Arrivals)
	}
	if st.Departures != 1 {
		t.Errorf("departures %d, expected 1", st.Departures)
	}
	if st.Score <= 0 {
		t.Errorf("score %d not accumulated", st.Score)
	}
}
