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
)

// Simulator simulates individual days for one still design.
type Simulator struct {
	Design    Design
	Constants *Constants

	// Ranges specifies how property evaluations outside of the
	// validated correlation ranges are handled.
	Ranges RangePolicy

	// Warn receives range excursions when Ranges is RangeWarn.
	// Each property is reported at most once per simulated day.
	// If Warn is nil, excursions are not reported.
	Warn func(error)

	// Status, if not nil, receives a message at the end of every
	// simulated hour.
	Status chan *SimulationStatus
}

// NewSimulator returns a simulator for the given design. If c is nil,
// the default constants are used.
func NewSimulator(design Design, c *Constants) (*Simulator, error) {
	if err := design.Check(); err != nil {
		return nil, err
	}
	if c == nil {
		c = DefaultConstants()
	} else if err := c.check(); err != nil {
		return nil, err
	}
	return &Simulator{Design: design, Constants: c}, nil
}

// rangeChecker returns the RangeChecker for a single simulated day.
func (s *Simulator) rangeChecker(day int) RangeChecker {
	switch s.Ranges {
	case RangeIgnore:
		return nil
	case RangeStrict:
		return func(p Property, salinity, temperature float64) error {
			if err := CheckRange(p, salinity, temperature); err != nil {
				return fmt.Errorf("solarstill: day %d: %w", day, err)
			}
			return nil
		}
	default:
		var reported [len(checkedProperties)]bool
		return func(p Property, salinity, temperature float64) error {
			if reported[p] {
				return nil
			}
			if err := CheckRange(p, salinity, temperature); err != nil {
				reported[p] = true
				if s.Warn != nil {
					s.Warn(err)
				}
			}
			return nil
		}
	}
}

// Run simulates day-of-year day using the 24 hourly weather records
// in hours and returns the finished simulation.
func (s *Simulator) Run(day int, hours [HoursPerDay]Forcing) (*Day, error) {
	if err := s.Design.Check(); err != nil {
		return nil, err
	}
	c := s.Constants
	if c == nil {
		c = DefaultConstants()
	}
	d := &Day{
		Index:     day,
		Design:    s.Design,
		Constants: c,
		InitFuncs: []DayManipulator{
			ExpandForcing(hours),
			ThermalEquilibrium(),
		},
		RunFuncs: []DayManipulator{
			HeatBalance(s.rangeChecker(day)),
		},
		CleanupFuncs: []DayManipulator{
			HourlyProductivity(),
		},
	}
	if s.Status != nil {
		d.RunFuncs = append(d.RunFuncs, Log(s.Status))
	}
	d.RunFuncs = append(d.RunFuncs, EndOfDay())

	if err := d.Init(); err != nil {
		return nil, err
	}
	if err := d.Run(); err != nil {
		return nil, err
	}
	if err := d.Cleanup(); err != nil {
		return nil, err
	}
	return d, nil
}

// SimulateDay returns the distillate yield [kg/m²] of a still with the
// given design over one day of hourly weather, using the default
// constants and ignoring correlation ranges.
func SimulateDay(hours [HoursPerDay]Forcing, design Design) (float64, error) {
	s, err := NewSimulator(design, nil)
	if err != nil {
		return 0, err
	}
	s.Ranges = RangeIgnore
	d, err := s.Run(0, hours)
	if err != nil {
		return 0, err
	}
	return d.Yield, nil
}
