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

func different(a, b, tolerance float64) bool {
	if 2*math.Abs(a-b)/math.Abs(a+b) > tolerance || math.IsNaN(a) || math.IsNaN(b) {
		return true
	}
	return false
}

func TestPropertyReferences(t *testing.T) {
	tests := []struct {
		name      string
		f         func(salinity, temperature float64) float64
		s, T      float64
		want, tol float64
	}{
		{name: "density", f: Density, s: 0, T: 4, want: 1000, tol: 0.02},
		{name: "viscosity", f: Viscosity, s: 0, T: 25, want: 8.9e-4, tol: 0.02},
		{name: "specific heat", f: SpecificHeat, s: 0, T: 25, want: 4181, tol: 0.01},
		{name: "thermal conductivity", f: ThermalConductivity, s: 0, T: 25, want: 0.607, tol: 0.02},
	}
	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			have := test.f(test.s, test.T)
			if different(have, test.want, test.tol) {
				t.Errorf("have %g, want %g", have, test.want)
			}
		})
	}
}

func TestPropertiesPositive(t *testing.T) {
	props := map[string]func(float64, float64) float64{
		"density":              Density,
		"viscosity":            Viscosity,
		"specific heat":        SpecificHeat,
		"thermal conductivity": ThermalConductivity,
	}
	for name, f := range props {
		for s := 0.; s <= 160; s += 5 {
			for T := 0.; T <= 100; T += 2.5 {
				v := f(s, T)
				if math.IsNaN(v) || math.IsInf(v, 0) || v <= 0 {
					t.Errorf("%s(%g, %g) = %g", name, s, T, v)
				}
			}
		}
	}
}

func TestDensityIncreasesWithSalinity(t *testing.T) {
	for T := 0.; T <= 100; T += 10 {
		if Density(35, T) <= Density(0, T) {
			t.Errorf("at %g °C seawater density %g is not above fresh water density %g",
				T, Density(35, T), Density(0, T))
		}
	}
}

func TestThermalConductivitySingularity(t *testing.T) {
	// The fractional power term vanishes at the critical point.
	k := ThermalConductivity(0, 647-273)
	if math.IsNaN(k) || math.IsInf(k, 0) || k <= 0 {
		t.Errorf("thermal conductivity at the critical point is %g", k)
	}
	if k := ThermalConductivity(0, math.Inf(1)); math.IsNaN(k) {
		t.Errorf("thermal conductivity at infinite temperature is NaN")
	}
}

func TestCheckRange(t *testing.T) {
	if err := CheckRange(PropDensity, 35, 25); err != nil {
		t.Errorf("in range: %v", err)
	}

	err := CheckRange(PropViscosity, 200, 25)
	var re *RangeError
	if !errors.As(err, &re) {
		t.Fatalf("want *RangeError, have %v", err)
	}
	if !re.Extrapolated {
		t.Error("salinity of 200 g/L should be in the viscosity extrapolation range")
	}
	if re.Property != PropViscosity {
		t.Errorf("property: have %v, want %v", re.Property, PropViscosity)
	}

	err = CheckRange(PropSpecificHeat, 300, 25)
	if !errors.As(err, &re) {
		t.Fatalf("want *RangeError, have %v", err)
	}
	if re.Extrapolated {
		t.Error("salinity of 300 g/L is beyond the specific heat extrapolation range")
	}

	err = CheckRange(PropDensity, 35, 120)
	if !errors.As(err, &re) {
		t.Fatalf("want *RangeError, have %v", err)
	}
	if re.Extrapolated {
		t.Error("temperature excursions are not extrapolations")
	}

	if err := CheckRange(Property(10), 35, 25); err == nil {
		t.Error("invalid property should be an error")
	}
}

func TestParseRangePolicy(t *testing.T) {
	for s, want := range map[string]RangePolicy{
		"":       RangeWarn,
		"warn":   RangeWarn,
		"Ignore": RangeIgnore,
		"STRICT": RangeStrict,
	} {
		have, err := ParseRangePolicy(s)
		if err != nil {
			t.Errorf("%q: %v", s, err)
		}
		if have != want {
			t.Errorf("%q: have %v, want %v", s, have, want)
		}
	}
	if _, err := ParseRangePolicy("lenient"); err == nil {
		t.Error("invalid policy should be an error")
	}
}
