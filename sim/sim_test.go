// sim/sim_test.go
// Copyright(c) 2024-2026 towersim contributors, licensed under the GNU Public License, Version 3.
// SPDX: GPL-3.0-only

package sim

import (
	"errors"
	"testing"
	"time"

	"github.com/avsim/towersim/nav"
)

func makeTestSim(t *testing.T) *Sim {
	t.Helper()
	return NewSim(nil, nil)
}

func TestAddAircraft(t *testing.T) {
	s := makeTestSim(t)

	if err := s.AddAircraft("AAL1", "B738", nav.FlightState{Altitude: 5000, IAS: 250}, nil); err != nil {
		t.Fatalf("add: %v", err)
	}
	if err := s.AddAircraft("AAL1", "B738", nav.FlightState{}, nil); !errors.Is(err, ErrDuplicateCallsign) {
		t.Errorf("expected ErrDuplicateCallsign, got %v", err)
	}
	if err := s.AddAircraft("AAL2", "ZZZZ", nav.FlightState{}, nil); err == nil {
		t.Errorf("expected an error for an unknown type")
	}

	if cs := s.Callsigns(); len(cs) != 1 || cs[0] != "AAL1" {
		t.Errorf("callsigns %v", cs)
	}
}

func TestSimTickAdvancesAircraft(t *testing.T) {
	s := makeTestSim(t)
	if err := s.AddAircraft("AAL1", "B738", nav.FlightState{Altitude: 5000, Heading: 0, IAS: 250}, nil); err != nil {
		t.Fatalf("add: %v", err)
	}
	if err := s.SetTargetHeading("AAL1", 0); err != nil {
		t.Fatalf("set heading: %v", err)
	}

	s.FastForward(time.Minute)

	fs, _, err := s.AircraftState("AAL1")
	if err != nil {
		t.Fatalf("state: %v", err)
	}
	// About a minute northbound at ~270 kts TAS.
	if fs.Position[1] < 4 || fs.Position[1] > 5.5 {
		t.Errorf("position %v after a minute northbound", fs.Position)
	}
	if fs.Position[0] != 0 {
		t.Errorf("drifted east/west in calm air: %v", fs.Position)
	}
}

func TestControlInputs(t *testing.T) {
	s := makeTestSim(t)
	if err := s.AddAircraft("AAL1", "B738", nav.FlightState{Altitude: 5000, Heading: 90, IAS: 250}, nil); err != nil {
		t.Fatalf("add: %v", err)
	}

	if err := s.SetTargets("AAL1", fptr(180), fptr(210), fptr(9000), false); err != nil {
		t.Fatalf("set targets: %v", err)
	}
	s.FastForward(5 * time.Minute)

	fs, _, err := s.AircraftState("AAL1")
	if err != nil {
		t.Fatalf("state: %v", err)
	}
	if fs.Heading != 180 || fs.IAS != 210 || fs.Altitude != 9000 {
		t.Errorf("did not reach targets: %s", fs.Summary())
	}

	for _, err := range []error{
		s.SetTargetHeading("NOPE", 90),
		s.SetTargetSpeed("NOPE", 200),
		s.SetTargetAltitude("NOPE", 5000, false),
		s.SetDirectTo("NOPE", [2]float32{0, 0}),
	} {
		if !errors.Is(err, ErrUnknownCallsign) {
			t.Errorf("expected ErrUnknownCallsign, got %v", err)
		}
	}
}

func TestDepartureCompletionFlow(t *testing.T) {
	s := makeTestSim(t)
	sub := s.Events().Subscribe()

	dest := &Destination{Kind: DestinationReachWaypoint, MinAltitude: fptr(4000)}
	if err := s.AddAircraft("EJA100", "CRJ9", nav.FlightState{Altitude: 3000, Heading: 0, IAS: 250}, dest); err != nil {
		t.Fatalf("add: %v", err)
	}
	if err := s.SetTargetAltitude("EJA100", 8000, false); err != nil {
		t.Fatalf("set altitude: %v", err)
	}

	s.FastForward(2 * time.Minute)

	// The climb through 4,000' completes the objective and despawns the
	// aircraft.
	if _, _, err := s.AircraftState("EJA100"); !errors.Is(err, ErrUnknownCallsign) {
		t.Errorf("aircraft still registered after completion: %v", err)
	}
	if s.Stats.Departures != 1 {
		t.Errorf("departures %d, expected 1", s.Stats.Departures)
	}
	if s.Stats.Score <= 0 {
		t.Errorf("score %d after completion", s.Stats.Score)
	}

	events := sub.Get()
	var sawCompleted, sawRemoved bool
	for _, ev := range events {
		switch ev.Type {
		case DestinationCompletedEvent:
			sawCompleted = ev.Callsign == "EJA100"
		case AircraftRemovedEvent:
			sawRemoved = ev.Callsign == "EJA100"
		}
	}
	if !sawCompleted || !sawRemoved {
		t.Errorf("missing completion events: %v", events)
	}
}

func TestLandingCompletionFlow(t *testing.T) {
	s := makeTestSim(t)

	dest := &Destination{Kind: DestinationLanding, Aerodrome: "KBOS"}
	if err := s.AddAircraft("AAL1", "B738", nav.FlightState{Altitude: 50, IAS: 130}, dest); err != nil {
		t.Fatalf("add: %v", err)
	}

	// Ticks alone never complete a landing.
	s.FastForward(30 * time.Second)
	if _, _, err := s.AircraftState("AAL1"); err != nil {
		t.Fatalf("aircraft gone before vacating: %v", err)
	}

	if err := s.NotifyRunwayVacated("AAL1", "KBOS"); err != nil {
		t.Fatalf("notify: %v", err)
	}
	if _, _, err := s.AircraftState("AAL1"); !errors.Is(err, ErrUnknownCallsign) {
		t.Errorf("aircraft still registered after vacating")
	}
	if s.Stats.Arrivals != 1 {
		t.Errorf("arrivals %d, expected 1", s.Stats.Arrivals)
	}

	if err := s.NotifyRunwayVacated("AAL1", "KBOS"); !errors.Is(err, ErrUnknownCallsign) {
		t.Errorf("expected ErrUnknownCallsign after despawn, got %v", err)
	}
}

func TestSimPredict(t *testing.T) {
	s := makeTestSim(t)
	if err := s.AddAircraft("AAL1", "B738", nav.FlightState{Altitude: 5000, Heading: 45, IAS: 250}, nil); err != nil {
		t.Fatalf("add: %v", err)
	}

	a, err := s.Predict("AAL1", 60, 1)
	if err != nil {
		t.Fatalf("predict: %v", err)
	}
	if len(a) != 60 {
		t.Fatalf("got %d states", len(a))
	}

	// Repeated identical requests hit the cache and agree exactly; either
	// way the caller's copy is independent.
	b, err := s.Predict("AAL1", 60, 1)
	if err != nil {
		t.Fatalf("predict: %v", err)
	}
	for i := range a {
		if a[i] != b[i] {
			t.Fatalf("step %d: cached prediction diverged", i)
		}
	}
	b[0].Altitude = -1
	c, err := s.Predict("AAL1", 60, 1)
	if err != nil {
		t.Fatalf("predict: %v", err)
	}
	if c[0].Altitude == -1 {
		t.Error("caller mutation leaked into the cache")
	}

	// Prediction must not move the live aircraft.
	fs, _, err := s.AircraftState("AAL1")
	if err != nil {
		t.Fatalf("state: %v", err)
	}
	if fs.Position != ([2]float32{0, 0}) {
		t.Errorf("live aircraft moved by prediction: %v", fs.Position)
	}

	if _, err := s.Predict("NOPE", 60, 1); !errors.Is(err, ErrUnknownCallsign) {
		t.Errorf("expected ErrUnknownCallsign, got %v", err)
	}
}

func TestPredictReflectsNewClearance(t *testing.T) {
	s := makeTestSim(t)
	if err := s.AddAircraft("AAL1", "B738", nav.FlightState{Altitude: 5000, Heading: 0, IAS: 250}, nil); err != nil {
		t.Fatalf("add: %v", err)
	}

	before, err := s.Predict("AAL1", 60, 1)
	if err != nil {
		t.Fatalf("predict: %v", err)
	}

	// A clearance issued between two predictions within the same tick
	// must show up in the second one; the cached straight-ahead
	// trajectory is no longer valid.
	if err := s.SetTargetHeading("AAL1", 90); err != nil {
		t.Fatalf("set heading: %v", err)
	}
	after, err := s.Predict("AAL1", 60, 1)
	if err != nil {
		t.Fatalf("predict: %v", err)
	}

	if before[len(before)-1].Heading != 0 {
		t.Errorf("pre-clearance prediction turned: heading %v", before[len(before)-1].Heading)
	}
	if after[len(after)-1].Heading != 90 {
		t.Errorf("post-clearance prediction heading %v at the horizon, expected 90",
			after[len(after)-1].Heading)
	}
}

func TestAircraftStateDestinationIsolated(t *testing.T) {
	s := makeTestSim(t)
	dest := &Destination{
		Kind:           DestinationReachWaypoint,
		MinAltitude:    fptr(4000),
		Waypoint:       &[2]float32{10, 10},
		WaypointRadius: 1,
	}
	if err := s.AddAircraft("AAL1", "B738", nav.FlightState{Altitude: 1000, IAS: 250}, dest); err != nil {
		t.Fatalf("add: %v", err)
	}

	// Mutating the returned snapshot must not reach the live thresholds.
	_, snap, err := s.AircraftState("AAL1")
	if err != nil {
		t.Fatalf("state: %v", err)
	}
	*snap.MinAltitude = 0
	snap.Waypoint[0] = -99

	_, live, err := s.AircraftState("AAL1")
	if err != nil {
		t.Fatalf("state: %v", err)
	}
	if *live.MinAltitude != 4000 {
		t.Errorf("live minimum altitude %v after snapshot mutation", *live.MinAltitude)
	}
	if *live.Waypoint != ([2]float32{10, 10}) {
		t.Errorf("live waypoint %v after snapshot mutation", *live.Waypoint)
	}
}

func TestSetSimRate(t *testing.T) {
	s := makeTestSim(t)
	if err := s.SetSimRate(4); err != nil {
		t.Errorf("unexpected error: %v", err)
	}
	for _, rate := range []float32{0, -1, 100} {
		if err := s.SetSimRate(rate); err == nil {
			t.Errorf("rate %v accepted", rate)
		}
	}
}
