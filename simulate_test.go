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
	"errors"
	"math"
	"testing"
)

// dayOf returns the first day of hourly forcing f.
func dayOf(f func(hour int) Forcing) [HoursPerDay]Forcing {
	var o [HoursPerDay]Forcing
	for h := range o {
		o[h] = f(h)
	}
	return o
}

func seawater() Design {
	return Design{Salinity: 35, Depth: 0.02, Length: 0.6}
}

func TestSimulateDayConstant(t *testing.T) {
	hours := dayOf(constantForcing(Forcing{Irradiance: 500, Temperature: 25, Wind: 2}))
	y, err := SimulateDay(hours, seawater())
	if err != nil {
		t.Fatal(err)
	}
	const want = 4.156079906117667 // kg/m²
	if different(y, want, 1e-4) {
		t.Errorf("have %g, want %g", y, want)
	}
}

func TestSimulateDayState(t *testing.T) {
	hours := dayOf(diurnalForcing(800))
	s, err := NewSimulator(seawater(), nil)
	if err != nil {
		t.Fatal(err)
	}
	d, err := s.Run(0, hours)
	if err != nil {
		t.Fatal(err)
	}
	if !d.Done || d.Step != SecondsPerDay {
		t.Errorf("simulation finished at step %d, done=%v", d.Step, d.Done)
	}
	if d.Water[1] != hours[0].Temperature || d.Glass[1] != hours[0].Temperature ||
		d.Basin[1] != hours[0].Temperature {
		t.Errorf("initial temperatures %g, %g, %g are not the ambient temperature %g",
			d.Water[1], d.Glass[1], d.Basin[1], hours[0].Temperature)
	}
	if d.Irradiance[12*SecondsPerHour+5] != hours[12].Irradiance+irradianceOffset {
		t.Errorf("noon irradiance: have %g, want %g", d.Irradiance[12*SecondsPerHour+5],
			hours[12].Irradiance+irradianceOffset)
	}
	var sum float64
	for h, p := range d.Hourly {
		if math.IsNaN(p) || p < 0 {
			t.Errorf("hour %d productivity is %g", h, p)
		}
		sum += p
	}
	if different(sum, d.Yield, 1e-12) {
		t.Errorf("daily yield %g is not the sum of hourly productivities %g", d.Yield, sum)
	}
	r := d.Result()
	if r.MaxWater <= hours[0].Temperature || r.MaxGlass <= hours[0].Temperature {
		t.Errorf("peak temperatures water=%g, glass=%g did not rise above ambient", r.MaxWater, r.MaxGlass)
	}
	var meanI float64
	for _, f := range hours {
		meanI += f.Irradiance / HoursPerDay
	}
	if different(r.Irradiance, meanI, 1e-9) {
		t.Errorf("mean irradiance: have %g, want %g", r.Irradiance, meanI)
	}
}

func TestHourlyProductivityClipping(t *testing.T) {
	d := &Day{
		Design:     Design{Length: 2, Depth: 0.02},
		Evaporated: make([]float64, SecondsPerDay),
	}
	for i := range d.Evaporated {
		d.Evaporated[i] = 0.4
	}
	// Hour 0 holds undefined, negative, and unphysically large rates.
	d.Evaporated[0] = math.NaN()
	d.Evaporated[1] = -3
	d.Evaporated[2] = 7
	// Hour 1 is entirely undefined.
	for i := SecondsPerHour; i < 2*SecondsPerHour; i++ {
		d.Evaporated[i] = math.NaN()
	}
	if err := HourlyProductivity()(d); err != nil {
		t.Fatal(err)
	}
	want0 := 0.4 * float64(SecondsPerHour-3) / float64(SecondsPerHour-1) / 4
	if different(d.Hourly[0], want0, 1e-12) {
		t.Errorf("hour 0: have %g, want %g", d.Hourly[0], want0)
	}
	if !math.IsNaN(d.Hourly[1]) {
		t.Errorf("hour 1: have %g, want NaN", d.Hourly[1])
	}
	want := want0 + 22*0.1
	if different(d.Yield, want, 1e-12) {
		t.Errorf("yield: have %g, want %g", d.Yield, want)
	}
}

func TestSimulateDayIdempotent(t *testing.T) {
	hours := dayOf(diurnalForcing(900))
	y1, err := SimulateDay(hours, seawater())
	if err != nil {
		t.Fatal(err)
	}
	y2, err := SimulateDay(hours, seawater())
	if err != nil {
		t.Fatal(err)
	}
	if y1 != y2 {
		t.Errorf("repeated simulations differ: %g != %g", y1, y2)
	}
}

func TestSimulateDayMonotonic(t *testing.T) {
	t.Run("diurnal", func(t *testing.T) {
		prev := -1.
		for _, peak := range []float64{400, 600, 800, 1000} {
			y, err := SimulateDay(dayOf(diurnalForcing(peak)), seawater())
			if err != nil {
				t.Fatal(err)
			}
			if y < prev {
				t.Errorf("yield decreased from %g to %g when peak irradiance increased to %g", prev, y, peak)
			}
			prev = y
		}
	})
	t.Run("constant", func(t *testing.T) {
		prev := -1.
		for _, irradiance := range []float64{300, 500, 700} {
			y, err := SimulateDay(dayOf(constantForcing(Forcing{Irradiance: irradiance, Temperature: 25, Wind: 2})),
				seawater())
			if err != nil {
				t.Fatal(err)
			}
			if y < prev {
				t.Errorf("yield decreased from %g to %g when irradiance increased to %g", prev, y, irradiance)
			}
			prev = y
		}
	})
}

func TestLog(t *testing.T) {
	s, err := NewSimulator(seawater(), nil)
	if err != nil {
		t.Fatal(err)
	}
	c := make(chan *SimulationStatus)
	s.Status = c
	done := make(chan []*SimulationStatus)
	go func() {
		var msgs []*SimulationStatus
		for msg := range c {
			msgs = append(msgs, msg)
		}
		done <- msgs
	}()
	_, err = s.Run(7, dayOf(diurnalForcing(700)))
	close(c)
	msgs := <-done
	if err != nil {
		t.Fatal(err)
	}
	if len(msgs) != HoursPerDay {
		t.Fatalf("have %d status messages, want %d", len(msgs), HoursPerDay)
	}
	for h, msg := range msgs {
		if msg.Hour != h || msg.Day != 7 {
			t.Errorf("message %d is for day %d hour %d", h, msg.Day, msg.Hour)
		}
	}
	if msgs[0].String() == "" {
		t.Error("empty status message")
	}
}

func TestRangePolicies(t *testing.T) {
	cold := dayOf(constantForcing(Forcing{Irradiance: 200, Temperature: -5, Wind: 7}))

	t.Run("warn", func(t *testing.T) {
		s, err := NewSimulator(seawater(), nil)
		if err != nil {
			t.Fatal(err)
		}
		var warnings []error
		s.Warn = func(err error) { warnings = append(warnings, err) }
		d, err := s.Run(0, cold)
		if err != nil {
			t.Fatal(err)
		}
		if len(warnings) != len(checkedProperties) {
			t.Errorf("have %d warnings, want one per property: %v", len(warnings), warnings)
		}
		for _, w := range warnings {
			var re *RangeError
			if !errors.As(w, &re) {
				t.Errorf("warning %v is not a *RangeError", w)
			}
		}
		y, err := SimulateDay(cold, seawater())
		if err != nil {
			t.Fatal(err)
		}
		if y != d.Yield {
			t.Errorf("range warnings changed the yield: %g != %g", d.Yield, y)
		}
		if math.IsNaN(y) || y < 0 {
			t.Errorf("cold day yield is %g", y)
		}
	})

	t.Run("strict", func(t *testing.T) {
		s, err := NewSimulator(Design{Salinity: 200, Depth: 0.02, Length: 0.6}, nil)
		if err != nil {
			t.Fatal(err)
		}
		s.Ranges = RangeStrict
		_, err = s.Run(0, dayOf(diurnalForcing(800)))
		var re *RangeError
		if !errors.As(err, &re) {
			t.Fatalf("want *RangeError, have %v", err)
		}
		if re.Salinity != 200 {
			t.Errorf("salinity: have %g, want 200", re.Salinity)
		}
	})
}

func TestDesignCheck(t *testing.T) {
	for _, d := range []Design{
		{Salinity: 35, Depth: 0, Length: 0.6},
		{Salinity: 35, Depth: 0.02, Length: -1},
		{Salinity: -1, Depth: 0.02, Length: 0.6},
		{Salinity: math.NaN(), Depth: 0.02, Length: 0.6},
	} {
		if _, err := SimulateDay(dayOf(diurnalForcing(800)), d); err == nil {
			t.Errorf("design %+v should be an error", d)
		}
	}
	if err := DefaultDesign().Check(); err != nil {
		t.Error(err)
	}
}

func TestDayWithoutRunFuncs(t *testing.T) {
	d := &Day{InitFuncs: []DayManipulator{ExpandForcing(dayOf(diurnalForcing(800)))}}
	if err := d.Init(); err != nil {
		t.Fatal(err)
	}
	if err := d.Run(); err == nil {
		t.Error("a day without run functions should be an error")
	}
	if err := ThermalEquilibrium()(&Day{}); err == nil {
		t.Error("initial conditions without forcing should be an error")
	}
}

func TestSkyTemperature(t *testing.T) {
	if s := skyTemperature(25); different(s, 0.0552*125, 1e-12) {
		t.Errorf("have %g, want %g", s, 0.0552*125)
	}
	if s := skyTemperature(-4); different(s, -0.0552*8, 1e-12) {
		t.Errorf("have %g, want %g", s, -0.0552*8)
	}
}
