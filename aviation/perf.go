// aviation/perf.go
// Copyright(c) 2024-2026 towersim contributors, licensed under the GNU Public License, Version 3.
// SPDX: GPL-3.0-only

// Package aviation holds the per-aircraft-type performance envelopes that
// bound what the guidance loops may command: climb and descent rates,
// acceleration, speed range, and turn rate.
package aviation

import (
	"errors"
	"fmt"
)

var ErrUnknownAircraftType = errors.New("unknown aircraft type")

// Performance describes an aircraft type's envelope. Climb and descent
// rates are ft/minute; acceleration and deceleration are kts per 2
// seconds; speeds are kts; the turn rate is degrees per second.
// HalfLength is half the airframe's length in nm, used for ground
// clearance checks when vacating a runway.
type Performance struct {
	Name string `yaml:"name"`
	ICAO string `yaml:"icao"`
	Rate struct {
		Climb      float32 `yaml:"climb"`
		Descent    float32 `yaml:"descent"`
		Accelerate float32 `yaml:"accelerate"`
		Decelerate float32 `yaml:"decelerate"`
	} `yaml:"rate"`
	Speed struct {
		Min       float32 `yaml:"min"`
		Landing   float32 `yaml:"landing"`
		CruiseTAS float32 `yaml:"cruise"`
		Max       float32 `yaml:"max"`
	} `yaml:"speed"`
	Turn struct {
		MaxRate float32 `yaml:"max_rate"`
	} `yaml:"turn"`
	Ceiling    float32 `yaml:"ceiling"`
	HalfLength float32 `yaml:"half_length"`
}

func (p *Performance) Validate() error {
	if p.Rate.Climb <= 0 || p.Rate.Descent <= 0 {
		return fmt.Errorf("%s: non-positive climb/descent rate", p.ICAO)
	}
	if p.Rate.Accelerate <= 0 || p.Rate.Decelerate <= 0 {
		return fmt.Errorf("%s: non-positive acceleration", p.ICAO)
	}
	if p.Speed.Min <= 0 || p.Speed.Min > p.Speed.Max {
		return fmt.Errorf("%s: inverted speed range [%v, %v]", p.ICAO, p.Speed.Min, p.Speed.Max)
	}
	if p.Turn.MaxRate <= 0 {
		return fmt.Errorf("%s: non-positive turn rate", p.ICAO)
	}
	if p.HalfLength <= 0 {
		return fmt.Errorf("%s: zero airframe length", p.ICAO)
	}
	return nil
}

// Lookup returns the performance envelope for the given ICAO type
// designator.
func Lookup(icao string) (Performance, error) {
	if perf, ok := performanceDB[icao]; ok {
		return perf, nil
	}
	return Performance{}, fmt.Errorf("%s: %w", icao, ErrUnknownAircraftType)
}

func makePerf(name, icao string, climb, descent, accel, decel, vmin, vland, cruise, vmax, turn, ceiling, halfLength float32) Performance {
	p := Performance{Name: name, ICAO: icao, Ceiling: ceiling, HalfLength: halfLength}
	p.Rate.Climb, p.Rate.Descent = climb, descent
	p.Rate.Accelerate, p.Rate.Decelerate = accel, decel
	p.Speed.Min, p.Speed.Landing, p.Speed.CruiseTAS, p.Speed.Max = vmin, vland, cruise, vmax
	p.Turn.MaxRate = turn
	return p
}

// Built-in envelopes for the types that appear in the training scenarios.
// Rates are conservative book numbers, not type-certificate limits.
var performanceDB = map[string]Performance{
	"A320": makePerf("Airbus A320", "A320", 2500, 3000, 5, 4, 125, 136, 450, 470, 3, 39800, 0.01),
	"A321": makePerf("Airbus A321", "A321", 2200, 3000, 5, 4, 130, 140, 450, 470, 3, 39800, 0.012),
	"B738": makePerf("Boeing 737-800", "B738", 2800, 3200, 5, 4, 125, 140, 450, 473, 3, 41000, 0.011),
	"B77W": makePerf("Boeing 777-300ER", "B77W", 2500, 3000, 4, 3, 135, 149, 480, 499, 3, 43100, 0.02),
	"CRJ9": makePerf("Bombardier CRJ-900", "CRJ9", 3000, 3500, 6, 5, 115, 135, 447, 470, 3, 41000, 0.01),
	"E75L": makePerf("Embraer 175", "E75L", 3000, 3200, 6, 5, 110, 126, 440, 472, 3, 41000, 0.009),
	"PC12": makePerf("Pilatus PC-12", "PC12", 1900, 2200, 4, 4, 67, 85, 270, 285, 3, 30000, 0.004),
	"C172": makePerf("Cessna 172", "C172", 720, 1000, 2, 2, 47, 61, 122, 163, 3, 14000, 0.002),
}
