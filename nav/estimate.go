// nav/estimate.go
// Copyright(c) 2024-2026 towersim contributors, licensed under the GNU Public License, Version 3.
// SPDX: GPL-3.0-only

package nav

import (
	"fmt"

	"github.com/avsim/towersim/math"
	"github.com/avsim/towersim/wx"
)

// ExpectedGroundSpeed solves the wind triangle for the along-track ground
// speed: the aircraft flies at tas through the airmass with whatever crab
// angle makes the resulting ground velocity lie along the unit vector
// dir. From |gv - wind| = tas with gv = gs*dir:
//
//	gs^2 - 2*(wind . dir)*gs + |wind|^2 - tas^2 = 0
//
// and the forward root is taken. If the wind is too strong for the track
// to be held at all, the result is clamped to the best achievable
// along-track speed, floored at zero.
func ExpectedGroundSpeed(tas float32, wind [2]float32, dir [2]float32) float32 {
	dot := math.Dot(wind, dir)
	disc := math.Sqr(tas) - math.Dot(wind, wind) + math.Sqr(dot)
	if disc < 0 {
		disc = 0
	}
	return max(dot+math.Sqrt(disc), 0)
}

// AltitudeReference selects which end of the path the reference altitude
// describes for EstimateAltitudeChange.
type AltitudeReference int

const (
	ReferenceStart AltitudeReference = iota
	ReferenceEnd
)

// EstimateAltitudeChange estimates the altitude change of an aircraft
// flying the straight path from start to end at the given vertical rate
// (ft/minute) and indicated airspeed, under the given wind model. The
// return value is the altitude at the end minus the altitude at the
// start, so a descent is negative.
//
// refAlt anchors the altitude at one endpoint (chosen by ref): true
// airspeed depends on altitude, so the altitude profile along the path is
// needed to know how long each stretch takes, which in turn determines
// how much altitude changes over it. The path is walked in segments of at
// most sampleDist nm (forward from the start, or backward from the end),
// with TAS and wind resampled from the evolving altitude at each step.
// This is a discretized estimate, not continuous integration; results for
// different sampleDist values agree to within a small tolerance.
func EstimateAltitudeChange(start, end [2]float32, vertRate, ias float32,
	refAlt float32, ref AltitudeReference, sampleDist float32, wm *wx.WindModel) (float32, error) {
	if math.IsNaN(sampleDist) || sampleDist <= 0 {
		return 0, fmt.Errorf("%w: sample distance %v", ErrInvalidInput, sampleDist)
	}
	if math.IsNaN(vertRate) || math.IsNaN(ias) || ias <= 0 || math.IsNaN(refAlt) {
		return 0, fmt.Errorf("%w: vertical rate %v ias %v reference %v", ErrInvalidInput,
			vertRate, ias, refAlt)
	}

	dist := math.Distance2f(start, end)
	if dist == 0 {
		return 0, nil
	}

	// Walk uniform segments so that refining sampleDist converges.
	nseg := int(dist/sampleDist) + 1
	seg := dist / float32(nseg)
	dir := math.Normalize2f(math.Sub2f(end, start))

	alt := refAlt
	forward := ref == ReferenceStart
	p := start
	if !forward {
		p = end
	}

	for i := 0; i < nseg; i++ {
		tas := wx.IASToTAS(ias, alt)
		gs := ExpectedGroundSpeed(tas, wm.WindAt(p, alt), dir)
		if gs <= 0 {
			return 0, ErrNoGroundProgress
		}

		dAlt := vertRate / 60 * (seg / gs * 3600)
		if forward {
			alt += dAlt
			p = math.Add2f(p, math.Scale2f(dir, seg))
		} else {
			// Walking backward in time: undo the change over the segment.
			alt -= dAlt
			p = math.Sub2f(p, math.Scale2f(dir, seg))
		}
	}

	if forward {
		return alt - refAlt, nil
	}
	return refAlt - alt, nil
}
