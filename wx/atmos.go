// wx/atmos.go
// Copyright(c) 2024-2026 towersim contributors, licensed under the GNU Public License, Version 3.
// SPDX: GPL-3.0-only

package wx

import (
	"github.com/avsim/towersim/math"
)

// DensityRatioAtAltitude returns the ratio of the air density at the
// given altitude (in feet) to the density at sea level.
func DensityRatioAtAltitude(alt float32) float32 {
	altm := alt * 0.3048 // altitude in meters

	// https://en.wikipedia.org/wiki/Barometric_formula#Density_equations
	const g0 = 9.80665    // gravitational constant, m/s^2
	const M_air = 0.02897 // molar mass of earth's air, kg/mol
	const R = 8.314463    // universal gas constant J/(mol K)
	const T_b = 288.15    // reference temperature at sea level, degrees K

	return math.Exp(-g0 * M_air * altm / (R * T_b))
}

// IASToTAS converts an indicated airspeed at the given altitude (in feet)
// to true airspeed; the thinner the air, the faster the aircraft actually
// moves for the same indicated speed.
func IASToTAS(ias, altitude float32) float32 {
	return ias / math.Sqrt(DensityRatioAtAltitude(altitude))
}

// TASToIAS converts a true airspeed at the given altitude (in feet) to
// indicated airspeed.
func TASToIAS(tas, altitude float32) float32 {
	return tas * math.Sqrt(DensityRatioAtAltitude(altitude))
}
