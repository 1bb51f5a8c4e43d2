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

// Package solarstill is a transient thermal model of a single-basin
// solar still. It estimates the distillate yield of a still from
// hourly weather by marching coupled energy balances of the basin
// liner, the water body, and the glass cover forward one second
// at a time.
package solarstill

import (
	"fmt"
)

// Version gives the version number.
const Version = "1.0.0"

// Design holds the design parameters of a still with a square basin.
type Design struct {
	Salinity float64 // salinity of the feed water [g/L]
	Depth    float64 // depth of water in the basin [m]
	Length   float64 // length of each side of the basin [m]
}

// DefaultDesign returns a 0.6 m × 0.6 m basin holding 2 cm of
// brackish water at 20 g/L.
func DefaultDesign() Design {
	return Design{Salinity: 20, Depth: 0.02, Length: 0.6}
}

// Area returns the area of the bottom of the basin [m²].
func (d Design) Area() float64 { return d.Length * d.Length }

// sideArea returns the wetted area of the basin walls [m²].
func (d Design) sideArea() float64 { return 2 * (2 * d.Length) * d.Depth }

// Check returns an error if the design is not physically meaningful.
func (d Design) Check() error {
	if !(d.Depth > 0) {
		return fmt.Errorf("solarstill: basin depth=%g but should be >0", d.Depth)
	}
	if !(d.Length > 0) {
		return fmt.Errorf("solarstill: basin length=%g but should be >0", d.Length)
	}
	if !(d.Salinity >= 0) {
		return fmt.Errorf("solarstill: salinity=%g but should be >=0", d.Salinity)
	}
	return nil
}

// Day holds the state of one simulated day. Each per-second array is
// indexed by second of day; index 0 is unused and index 1 holds the
// initial conditions.
type Day struct {
	// Index is the day of year being simulated.
	Index int

	Design    Design
	Constants *Constants

	Irradiance []float64 // W/m², including a 10 W/m² offset
	Wind       []float64 // m/s
	Ambient    []float64 // °C

	Basin []float64 // basin liner temperature [°C]
	Water []float64 // bulk water temperature [°C]
	Glass []float64 // glass cover temperature [°C]
	Sky   []float64 // effective sky temperature [°C]

	// Evaporated is the saltwater evaporation rate at each second,
	// expressed as kg per hour.
	Evaporated []float64

	// Step is the second of day that will be calculated next.
	Step int

	// Done specifies whether the simulation is finished.
	Done bool

	// Hourly is the distillate productivity of each hour [kg/m²].
	Hourly [HoursPerDay]float64

	// Yield is the cumulative daily distillate yield [kg/m²].
	Yield float64

	// InitFuncs are functions to be called in the given order
	// at the beginning of the simulation.
	InitFuncs []DayManipulator

	// RunFuncs are functions to be called in the given order repeatedly
	// until "Done" is true. Therefore, the simulation will not end until
	// one of the RunFuncs sets "Done" to true.
	RunFuncs []DayManipulator

	// CleanupFuncs are functions to be called in the given order
	// at the end of the simulation.
	CleanupFuncs []DayManipulator
}

// DayManipulator is a class of functions that operate on a simulated day.
type DayManipulator func(d *Day) error

// Init initializes the simulation by running d.InitFuncs.
func (d *Day) Init() error {
	for _, f := range d.InitFuncs {
		if err := f(d); err != nil {
			return err
		}
	}
	return nil
}

// Run carries out the simulation by running d.RunFuncs until d.Done is true.
func (d *Day) Run() error {
	if len(d.RunFuncs) == 0 {
		return fmt.Errorf("solarstill: day %d has no run functions", d.Index)
	}
	for !d.Done {
		for _, f := range d.RunFuncs {
			if err := f(d); err != nil {
				return err
			}
		}
	}
	return nil
}

// Cleanup finishes the simulation by running d.CleanupFuncs.
func (d *Day) Cleanup() error {
	for _, f := range d.CleanupFuncs {
		if err := f(d); err != nil {
			return err
		}
	}
	return nil
}
