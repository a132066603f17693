// sim/scenario.go
// Copyright(c) 2024-2026 towersim contributors, licensed under the GNU Public License, Version 3.
// SPDX: GPL-3.0-only

package sim

import (
	"errors"
	"fmt"

	"github.com/avsim/towersim/aviation"
	"github.com/avsim/towersim/log"
	"github.com/avsim/towersim/nav"
	"github.com/avsim/towersim/rand"
	"github.com/avsim/towersim/util"
	"github.com/avsim/towersim/wx"

	"gopkg.in/yaml.v3"
)

// Scenario is the on-disk description of a training exercise: the wind
// field, the aircraft to spawn, and the pacing. Files are YAML and may be
// zstd compressed (.zst).
type Scenario struct {
	Name    string  `yaml:"name"`
	SimRate float32 `yaml:"sim_rate"`
	// Seed drives the spawn jitter; runs with the same seed are
	// reproducible.
	Seed     int64           `yaml:"seed"`
	Wind     []wx.WindRegion `yaml:"wind"`
	Aircraft []ScenarioSpawn `yaml:"aircraft"`
}

type ScenarioSpawn struct {
	Callsign string     `yaml:"callsign"`
	Type     string     `yaml:"type"`
	Position [2]float32 `yaml:"position"`
	Altitude float32    `yaml:"altitude"`
	Heading  float32    `yaml:"heading"`
	IAS      float32    `yaml:"ias"`
	// PositionJitter scatters the spawn point by up to this many nm in
	// each axis so that restarted scenarios don't feel canned.
	PositionJitter float32 `yaml:"position_jitter"`

	TargetHeading  *float32 `yaml:"target_heading"`
	TargetSpeed    *float32 `yaml:"target_speed"`
	TargetAltitude *float32 `yaml:"target_altitude"`
	Expedite       bool     `yaml:"expedite"`

	Destination *ScenarioDestination `yaml:"destination"`
}

type ScenarioDestination struct {
	Kind           string      `yaml:"kind"` // "landing", "vacate_any", "reach_waypoint"
	Aerodrome      string      `yaml:"aerodrome"`
	MinAltitude    *float32    `yaml:"min_altitude"`
	Waypoint       *[2]float32 `yaml:"waypoint"`
	WaypointRadius float32     `yaml:"waypoint_radius"`
}

func (sd *ScenarioDestination) destination() (*Destination, error) {
	d := &Destination{
		Aerodrome:      sd.Aerodrome,
		MinAltitude:    sd.MinAltitude,
		Waypoint:       sd.Waypoint,
		WaypointRadius: sd.WaypointRadius,
	}
	switch sd.Kind {
	case "landing":
		d.Kind = DestinationLanding
	case "vacate_any":
		d.Kind = DestinationVacateAnyRunway
	case "reach_waypoint":
		d.Kind = DestinationReachWaypoint
	default:
		return nil, fmt.Errorf("%w: kind %q", ErrInvalidDestination, sd.Kind)
	}
	return d, d.Validate()
}

// Validate checks the scenario and returns all of the problems found
// rather than stopping at the first.
func (sc *Scenario) Validate() error {
	var errs []error

	if sc.SimRate < 0 || sc.SimRate > 20 {
		errs = append(errs, fmt.Errorf("sim rate %v out of range", sc.SimRate))
	}
	for i := range sc.Wind {
		if err := sc.Wind[i].Validate(); err != nil {
			errs = append(errs, fmt.Errorf("wind region %d: %w", i, err))
		}
	}

	seen := make(map[string]interface{})
	for i := range sc.Aircraft {
		spawn := &sc.Aircraft[i]
		if spawn.Callsign == "" {
			errs = append(errs, fmt.Errorf("aircraft %d: missing callsign", i))
			continue
		}
		if _, ok := seen[spawn.Callsign]; ok {
			errs = append(errs, fmt.Errorf("%s: %w", spawn.Callsign, ErrDuplicateCallsign))
		}
		seen[spawn.Callsign] = nil

		if _, err := aviation.Lookup(spawn.Type); err != nil {
			errs = append(errs, fmt.Errorf("%s: %w", spawn.Callsign, err))
		}
		if spawn.PositionJitter < 0 {
			errs = append(errs, fmt.Errorf("%s: negative position jitter", spawn.Callsign))
		}
		if spawn.Destination != nil {
			if _, err := spawn.Destination.destination(); err != nil {
				errs = append(errs, fmt.Errorf("%s: %w", spawn.Callsign, err))
			}
		}
	}

	return errors.Join(errs...)
}

// LoadScenario reads, parses, and validates a scenario file and builds a
// running simulation from it.
func LoadScenario(path string, lg *log.Logger) (*Sim, *Scenario, error) {
	b, err := util.ReadFileBytes(path)
	if err != nil {
		return nil, nil, err
	}

	var sc Scenario
	if err := yaml.Unmarshal(b, &sc); err != nil {
		return nil, nil, fmt.Errorf("%s: %w", path, err)
	}
	if err := sc.Validate(); err != nil {
		return nil, nil, fmt.Errorf("%s: %w", path, err)
	}

	s, err := NewSimFromScenario(&sc, lg)
	return s, &sc, err
}

// NewSimFromScenario builds a Sim from a validated scenario: the wind
// model, the spawns (with seeded position jitter), the initial targets,
// and a fresh Stats context.
func NewSimFromScenario(sc *Scenario, lg *log.Logger) (*Sim, error) {
	wm, err := wx.MakeWindModel(sc.Wind)
	if err != nil {
		return nil, err
	}

	s := NewSim(wm, lg)
	if sc.SimRate != 0 {
		s.SimRate = sc.SimRate
	}

	r := rand.New()
	r.Seed(sc.Seed)

	for i := range sc.Aircraft {
		spawn := &sc.Aircraft[i]

		pos := spawn.Position
		if j := spawn.PositionJitter; j > 0 {
			pos[0] += (2*r.Float32() - 1) * j
			pos[1] += (2*r.Float32() - 1) * j
		}

		var dest *Destination
		if spawn.Destination != nil {
			if dest, err = spawn.Destination.destination(); err != nil {
				return nil, fmt.Errorf("%s: %w", spawn.Callsign, err)
			}
		}

		fs := nav.FlightState{
			Position: pos,
			Altitude: spawn.Altitude,
			Heading:  spawn.Heading,
			IAS:      spawn.IAS,
		}
		callsign := Callsign(spawn.Callsign)
		if err := s.AddAircraft(callsign, spawn.Type, fs, dest); err != nil {
			return nil, err
		}

		if spawn.TargetHeading != nil || spawn.TargetSpeed != nil || spawn.TargetAltitude != nil {
			if err := s.SetTargets(callsign, spawn.TargetHeading, spawn.TargetSpeed,
				spawn.TargetAltitude, spawn.Expedite); err != nil {
				return nil, fmt.Errorf("%s: %w", spawn.Callsign, err)
			}
		}
	}

	return s, nil
}
