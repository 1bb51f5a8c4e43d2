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

import "math"

// Density returns the density of saline water [kg/m³] at the given
// salinity [g/L] and temperature [°C].
// The correlation is accurate up to 160 g/L and behaves
// naturally up to 350 g/L.
func Density(salinity, temperature float64) float64 {
	s := (2*salinity - 150) / 150
	s2 := 2*s*s - 1

	a0 := 4.032*0.5 + 0.115*s + 3.26e-4*s2
	a1 := -0.108*0.5 + 1.571e-3*s - 4.23e-4*s2
	a2 := -0.012*0.5 + 1.74e-3*s - 9e-6*s2
	a3 := 6.92e-4*0.5 - 8.7e-5*s - 5.3e-5*s2

	t := (2*temperature - 200) / 160
	t2 := 2*t*t - 1
	t3 := 4*t*t*t - 3*t

	return 1e3 * (a0*0.5 + a1*t + a2*t2 + a3*t3)
}

// Viscosity returns the dynamic viscosity of saline water [Pa s] at the
// given salinity [g/L] and temperature [°C].
// The correlation is accurate up to 150 g/L and behaves
// naturally up to 350 g/L.
func Viscosity(salinity, temperature float64) float64 {
	tp := temperature + 64.993
	fresh := 4.2844e-5 + 1/(0.157*tp*tp-91.296)
	a := 1.474e-3 + 1.5e-5*temperature - 3.927e-8*temperature*temperature
	b := 1.073e-5 - 8.5e-8*temperature + 2.230e-10*temperature*temperature
	return fresh * (1 + a*salinity + b*salinity*salinity)
}

// SpecificHeat returns the specific heat of saline water [J/kg/K] at the
// given salinity [g/L] and temperature [°C].
// The correlation is accurate up to 180 g/L and behaves
// naturally up to 240 g/L.
func SpecificHeat(salinity, temperature float64) float64 {
	a := 5.328 - 9.76e-2*salinity + 4.04e-4*salinity*salinity
	b := -6.913e-3 + 7.351e-4*salinity - 3.15e-6*salinity*salinity
	c := 9.6e-6 - 1.927e-6*salinity + 8.23e-9*salinity*salinity
	d := 2.5e-9 + 1.66e-9*salinity - 7.125e-12*salinity*salinity
	tk := temperature + 273
	return 1e3 * (a + b*tk + c*tk*tk + d*tk*tk*tk)
}

// ThermalConductivity returns the thermal conductivity of saline water
// [W/m/K] at the given salinity [g/L] and temperature [°C].
// The correlation is accurate up to 160 g/L and behaves
// naturally up to 350 g/L.
func ThermalConductivity(salinity, temperature float64) float64 {
	tk := temperature + 273
	a := math.Log10(240 + 0.0002*salinity)
	b := 0.434 * (2.3 - (343.5+0.037*salinity)/tk)
	c := math.Pow(math.Abs(1-tk/(647+0.03*salinity)), 1./3)
	if math.IsNaN(c) || math.IsInf(c, 0) {
		c = 1 // singular near the critical point
	}
	return math.Pow(10, a+b*c) / 1e3
}
