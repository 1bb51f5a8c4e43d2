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
	"time"
)

// irradianceOffset [W/m²] is added to every hourly irradiance so that the
// night-time energy balance stays well conditioned.
const irradianceOffset = 10.

// ExpandForcing allocates the per-second state of the day and fills the
// forcing arrays by holding each hourly weather record constant for
// the 3600 seconds of its hour.
func ExpandForcing(hours [HoursPerDay]Forcing) DayManipulator {
	return func(d *Day) error {
		d.Irradiance = make([]float64, SecondsPerDay)
		d.Wind = make([]float64, SecondsPerDay)
		d.Ambient = make([]float64, SecondsPerDay)
		d.Basin = make([]float64, SecondsPerDay)
		d.Water = make([]float64, SecondsPerDay)
		d.Glass = make([]float64, SecondsPerDay)
		d.Sky = make([]float64, SecondsPerDay)
		d.Evaporated = make([]float64, SecondsPerDay)
		for h, f := range hours {
			irradiance := f.Irradiance + irradianceOffset
			for i := h * SecondsPerHour; i < (h+1)*SecondsPerHour; i++ {
				d.Irradiance[i] = irradiance
				d.Wind[i] = f.Wind
				d.Ambient[i] = f.Temperature
			}
		}
		return nil
	}
}

// ThermalEquilibrium sets the initial conditions: at the start of the
// day the water, basin, and glass are all at the ambient temperature
// of the first hour.
func ThermalEquilibrium() DayManipulator {
	return func(d *Day) error {
		if len(d.Water) != SecondsPerDay {
			return fmt.Errorf("solarstill: day %d: forcing has not been expanded", d.Index)
		}
		t0 := d.Ambient[0]
		d.Water[1] = t0
		d.Basin[1] = t0
		d.Glass[1] = t0
		d.Sky[1] = skyTemperature(d.Ambient[1])
		d.Step = 2
		return nil
	}
}

// EndOfDay advances the simulation by one second and sets the Done
// flag once the last second of the day has been calculated.
func EndOfDay() DayManipulator {
	return func(d *Day) error {
		d.Step++
		if d.Step >= SecondsPerDay {
			d.Done = true
		}
		return nil
	}
}

// SimulationStatus holds information about the progress of a simulated day.
type SimulationStatus struct {
	Day      int
	Hour     int
	Water    float64 // °C
	Glass    float64 // °C
	Basin    float64 // °C
	Walltime time.Duration
}

func (s *SimulationStatus) String() string {
	return fmt.Sprintf("day=%-3d hour=%-2d  water=%6.2f°C  glass=%6.2f°C  basin=%6.2f°C  walltime=%v",
		s.Day, s.Hour, s.Water, s.Glass, s.Basin, s.Walltime)
}

// Log sends a status message to c at the end of every simulated hour.
// The receiver must keep reading from c until the simulation finishes.
func Log(c chan *SimulationStatus) DayManipulator {
	startTime := time.Now()
	return func(d *Day) error {
		i := d.Step
		if (i+1)%SecondsPerHour != 0 {
			return nil
		}
		c <- &SimulationStatus{
			Day:      d.Index,
			Hour:     i / SecondsPerHour,
			Water:    d.Water[i],
			Glass:    d.Glass[i],
			Basin:    d.Basin[i],
			Walltime: time.Since(startTime),
		}
		return nil
	}
}
