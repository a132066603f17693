// math/heading.go
// Copyright(c) 2024-2026 towersim contributors, licensed under the GNU Public License, Version 3.
// SPDX: GPL-3.0-only

package math

///////////////////////////////////////////////////////////////////////////
// headings and directions

// Headings are expressed in degrees, with 0 corresponding to north and
// angles increasing clockwise.

// NormalizeHeading reduces a heading to [0,360).
func NormalizeHeading(h float32) float32 {
	if h < 0 {
		return 360 - NormalizeHeading(-h)
	}
	return Mod(h, 360)
}

func OppositeHeading(h float32) float32 {
	return NormalizeHeading(h + 180)
}

// HeadingDifference returns the minimum difference between two
// headings. (i.e., the result is always in the range [0,180].)
func HeadingDifference(a float32, b float32) float32 {
	var d float32
	if a > b {
		d = a - b
	} else {
		d = b - a
	}
	if d > 180 {
		d = 360 - d
	}
	return d
}

// HeadingSignedTurn returns the signed turn (positive clockwise, in
// (-180,180]) that takes cur to target by the shorter way around. First
// find the angle to rotate the target heading by so that it's aligned
// with 180 degrees; this lets us not worry about the complexities of the
// wrap around at 0/360.
func HeadingSignedTurn(cur, target float32) float32 {
	rot := NormalizeHeading(180 - target)
	return 180 - NormalizeHeading(cur+rot) // w.r.t. 180 target
}

// VectorHeading returns the heading that the given (non-zero) vector
// points along.
func VectorHeading(v [2]float32) float32 {
	// atan2 normally measures w.r.t. the +x axis with positive angles
	// counter-clockwise; we want to measure w.r.t. +y with positive angles
	// clockwise. Happily, swapping the order of values passed to
	// atan2--passing (x,y)--gives what we want.
	return NormalizeHeading(Degrees(Atan2(v[0], v[1])))
}

// Heading2f returns the heading from the point from to the point to, with
// both in nm coordinates.
func Heading2f(from [2]float32, to [2]float32) float32 {
	return VectorHeading(Sub2f(to, from))
}
