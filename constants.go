/*
Copyright © 2024 the SolarStill authors.
This file is part of SolarStill.

SolarStill is free software: you can redistribute it and/or modify
it under the terms of the GNU General Public License as published by
the Free Software Foundation, either version 3 of the License, or
(at your option) any later version.

SolarStill is distributed in the hope that it will be useful,
but WITHOUT ANY WARRANTY; without even the implied warranty of
MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
GNU General Public License for more details.

You should have received a copy of the GNU General Public License
along with SolarStill.  If not, see <http://www.gnu.org/licenses/>.
*/

package solarstill

import (
	"fmt"
	"io"

	"github.com/BurntSushi/toml"
)

// Time conversions.
const (
	DaysPerYear    = 365
	HoursPerDay    = 24
	SecondsPerHour = 3600
	SecondsPerDay  = HoursPerDay * SecondsPerHour
	HoursPerYear   = DaysPerYear * HoursPerDay
)

// Constants holds the physical and material constants used by the
// still energy balance. A Constants value is never modified once a
// simulation starts; use DefaultConstants or ReadConstants to create one.
type Constants struct {
	StefanBoltzmann float64 // W / m² / K⁴
	Gravity         float64 // m / s²

	InsulationThickness    float64 // m
	InsulationConductivity float64 // W / m / K
	GlassThickness         float64 // m
	GlassConductivity      float64 // W / m / K

	// Radiative properties [-]
	AbsorptivityGlass float64
	AbsorptivityWater float64
	AbsorptivityBasin float64
	ReflectivityGlass float64
	ReflectivityWater float64
	EmissivityGlass   float64
	EmissivityWater   float64
}

// DefaultConstants returns the constants for a stainless steel basin
// with a 4 mm glass cover.
func DefaultConstants() *Constants {
	return &Constants{
		StefanBoltzmann:        5.6697e-8,
		Gravity:                9.81,
		InsulationThickness:    0.005,
		InsulationConductivity: 0.033,
		GlassThickness:         0.004,
		GlassConductivity:      1.03,
		AbsorptivityGlass:      0.047,
		AbsorptivityWater:      0.20,
		AbsorptivityBasin:      0.65,
		ReflectivityGlass:      0.047,
		ReflectivityWater:      0.08,
		EmissivityGlass:        0.94,
		EmissivityWater:        0.95,
	}
}

// ReadConstants reads a TOML file from r. Any field present in the file
// overrides the corresponding default value; fields that are not
// present keep their defaults. Keys that do not correspond to a
// field are an error.
func ReadConstants(r io.Reader) (*Constants, error) {
	c := DefaultConstants()
	md, err := toml.DecodeReader(r, c)
	if err != nil {
		return nil, fmt.Errorf("solarstill: reading constants: %w", err)
	}
	if u := md.Undecoded(); len(u) > 0 {
		return nil, fmt.Errorf("solarstill: reading constants: unknown keys %v", u)
	}
	if err := c.check(); err != nil {
		return nil, err
	}
	return c, nil
}

func (c *Constants) check() error {
	positive := []struct {
		name string
		v    float64
	}{
		{"StefanBoltzmann", c.StefanBoltzmann},
		{"Gravity", c.Gravity},
		{"InsulationThickness", c.InsulationThickness},
		{"InsulationConductivity", c.InsulationConductivity},
		{"GlassThickness", c.GlassThickness},
		{"GlassConductivity", c.GlassConductivity},
	}
	for _, p := range positive {
		if !(p.v > 0) {
			return fmt.Errorf("solarstill: constant %s=%g but should be >0", p.name, p.v)
		}
	}
	fractions := []struct {
		name string
		v    float64
	}{
		{"AbsorptivityGlass", c.AbsorptivityGlass},
		{"AbsorptivityWater", c.AbsorptivityWater},
		{"AbsorptivityBasin", c.AbsorptivityBasin},
		{"ReflectivityGlass", c.ReflectivityGlass},
		{"ReflectivityWater", c.ReflectivityWater},
		{"EmissivityGlass", c.EmissivityGlass},
		{"EmissivityWater", c.EmissivityWater},
	}
	for _, f := range fractions {
		if f.v < 0 || f.v > 1 {
			return fmt.Errorf("solarstill: constant %s=%g but should be between 0 and 1", f.name, f.v)
		}
	}
	return nil
}

// waterAbsorption is the fraction of incoming radiation absorbed by the water body.
// No attenuation factor is considered.
func (c *Constants) waterAbsorption() float64 {
	return c.AbsorptivityWater * (1 - c.AbsorptivityGlass) * (1 - c.ReflectivityGlass) *
		(1 - c.ReflectivityWater)
}

// basinAbsorption is the fraction of incoming radiation absorbed by the basin liner.
func (c *Constants) basinAbsorption() float64 {
	return c.AbsorptivityBasin * (1 - c.AbsorptivityGlass) * (1 - c.ReflectivityGlass) *
		(1 - c.AbsorptivityWater) * (1 - c.ReflectivityWater)
}

// glassAbsorption is the fraction of incoming radiation absorbed by the glass cover.
func (c *Constants) glassAbsorption() float64 {
	return (1 - c.ReflectivityGlass) * c.AbsorptivityGlass
}
