// aviation/perf_test.go
// Copyright(c) 2024-2026 towersim contributors, licensed under the GNU Public License, Version 3.
// SPDX: GPL-3.0-only

package aviation

import (
	"errors"
	"testing"
)

func TestLookup(t *testing.T) {
	perf, err := Lookup("B738")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if perf.ICAO != "B738" {
		t.Errorf("got %q", perf.ICAO)
	}

	if _, err := Lookup("ZZZZ"); !errors.Is(err, ErrUnknownAircraftType) {
		t.Errorf("expected ErrUnknownAircraftType, got %v", err)
	}
}

func TestBuiltinEnvelopesValid(t *testing.T) {
	for icao, perf := range performanceDB {
		if err := perf.Validate(); err != nil {
			t.Errorf("%s: %v", icao, err)
		}
		if perf.ICAO != icao {
			t.Errorf("%s: ICAO mismatch %q", icao, perf.ICAO)
		}
	}
}

func TestValidateRejectsDegenerate(t *testing.T) {
	base, _ := Lookup("A320")

	tests := []struct {
		name   string
		mutate func(*Performance)
	}{
		{"zero climb", func(p *Performance) { p.Rate.Climb = 0 }},
		{"zero descent", func(p *Performance) { p.Rate.Descent = 0 }},
		{"zero acceleration", func(p *Performance) { p.Rate.Accelerate = 0 }},
		{"inverted speed range", func(p *Performance) { p.Speed.Min = p.Speed.Max + 1 }},
		{"zero turn rate", func(p *Performance) { p.Turn.MaxRate = 0 }},
		{"zero half length", func(p *Performance) { p.HalfLength = 0 }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			perf := base
			tt.mutate(&perf)
			if err := perf.Validate(); err == nil {
				t.Errorf("expected validation error")
			}
		})
	}
}
