// wx/wind.go
// Copyright(c) 2024-2026 towersim contributors, licensed under the GNU Public License, Version 3.
// SPDX: GPL-3.0-only

// Package wx models the simulation's environment: a layered wind field
// built from axis-aligned regions plus standard-atmosphere conversions
// between indicated and true airspeed.
package wx

import (
	"errors"
	"fmt"

	"github.com/avsim/towersim/math"
)

var ErrInvalidWindRegion = errors.New("invalid wind region")

// WindRegion is an axis-aligned box of the scenario volume with a wind
// vector specified at its bottom and top altitudes; the wind anywhere
// inside is the linear blend of the two by altitude. Positions are nm,
// altitudes ft, and wind vectors kts with +x east and +y north.
type WindRegion struct {
	Min       [2]float32 `yaml:"min"`
	Max       [2]float32 `yaml:"max"`
	BottomAlt float32    `yaml:"bottom_alt"`
	TopAlt    float32    `yaml:"top_alt"`
	Bottom    [2]float32 `yaml:"bottom"`
	Top       [2]float32 `yaml:"top"`
}

func (r *WindRegion) Validate() error {
	if r.Min[0] > r.Max[0] || r.Min[1] > r.Max[1] {
		return fmt.Errorf("%w: horizontal bounds min %v > max %v", ErrInvalidWindRegion, r.Min, r.Max)
	}
	if r.BottomAlt > r.TopAlt {
		return fmt.Errorf("%w: bottom altitude %v above top %v", ErrInvalidWindRegion, r.BottomAlt, r.TopAlt)
	}
	for _, v := range [][2]float32{r.Bottom, r.Top} {
		if math.IsNaN(v[0]) || math.IsNaN(v[1]) {
			return fmt.Errorf("%w: NaN wind vector", ErrInvalidWindRegion)
		}
	}
	return nil
}

func (r *WindRegion) contains(p [2]float32) bool {
	return p[0] >= r.Min[0] && p[0] <= r.Max[0] && p[1] >= r.Min[1] && p[1] <= r.Max[1]
}

// vectorAt interpolates the region's wind at the given altitude; outside
// the altitude bounds the nearest bound's vector applies.
func (r *WindRegion) vectorAt(alt float32) [2]float32 {
	var frac float32
	if r.TopAlt > r.BottomAlt {
		frac = math.Clamp((alt-r.BottomAlt)/(r.TopAlt-r.BottomAlt), 0, 1)
	}
	return math.Lerp2f(frac, r.Bottom, r.Top)
}

// WindModel holds the validated wind regions for a scenario.
type WindModel struct {
	regions []WindRegion
}

// MakeWindModel validates the given regions and builds a model from them.
func MakeWindModel(regions []WindRegion) (*WindModel, error) {
	for i := range regions {
		if err := regions[i].Validate(); err != nil {
			return nil, fmt.Errorf("region %d: %w", i, err)
		}
	}
	return &WindModel{regions: regions}, nil
}

// WindAt returns the wind vector at the given position and altitude. Every
// region whose horizontal box contains the position contributes its
// altitude-interpolated vector and the contributions are summed, so
// overlapping regions compose additively (a broad prevailing layer plus a
// local gust region, say). With no matching region the wind is calm. A nil
// model is calm everywhere.
func (m *WindModel) WindAt(p [2]float32, alt float32) [2]float32 {
	var wind [2]float32
	if m == nil {
		return wind
	}
	for i := range m.regions {
		if m.regions[i].contains(p) {
			wind = math.Add2f(wind, m.regions[i].vectorAt(alt))
		}
	}
	return wind
}
