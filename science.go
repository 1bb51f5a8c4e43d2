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
	"math"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"
)

// minDifference [°C] replaces non-positive temperature differences
// that appear in the denominators of the heat transfer coefficients.
const minDifference = 0.01

// maxEvaporation [kg/h] is the largest per-second evaporation rate
// considered physical. Larger values and negative values are
// numerical artifacts and are counted as zero.
const maxEvaporation = 1.

// RangeChecker is called with the property, salinity [g/L], and
// temperature [°C] of every property evaluation. A non-nil error
// stops the simulation.
type RangeChecker func(p Property, salinity, temperature float64) error

var checkedProperties = [...]Property{PropDensity, PropViscosity,
	PropSpecificHeat, PropThermalConductivity}

// skyTemperature returns the effective sky temperature [°C] for
// ambient temperature t [°C] (Swinbank). The sign of t is kept so
// that sub-zero ambient temperatures stay defined.
func skyTemperature(t float64) float64 {
	if t < 0 {
		return -0.0552 * math.Pow(-t, 1.5)
	}
	return 0.0552 * math.Pow(t, 1.5)
}

// saturationPressure returns the saturation vapor pressure [Pa] of pure
// water at temperature t [°C].
func saturationPressure(t float64) float64 {
	return math.Exp(25.317 - 5144/(t+273))
}

// waterActivity returns the activity of water at the given salinity [g/L].
func waterActivity(salinity float64) float64 {
	return -0.000566*salinity + 0.99853070
}

// expansionCoefficient returns the volumetric thermal expansion
// coefficient of water [1/K] at temperature t [°C].
func expansionCoefficient(t float64) float64 {
	return 1e-6 * (-0.000006*math.Pow(t, 4) + 0.001667*math.Pow(t, 3) -
		0.197796*t*t + 16.862446*t - 64.319951)
}

// latentHeat returns the latent heat of vaporization of water [J/kg]
// at temperature t [°C].
func latentHeat(t float64) float64 {
	return (2501.67 - 2.389*t) * 1000
}

// windConvection returns the convective heat transfer coefficient
// [W/m²/K] between an exposed surface and the air at wind speed w [m/s].
func windConvection(w float64) float64 {
	if w > 5 {
		return 2.8 + 3.0*w
	}
	return 2.8 + 3.8*w
}

func sq(x float64) float64 { return x * x }

// HeatBalance returns a function that calculates the state of the still at
// second d.Step from the state at the previous second. Water properties
// are evaluated at the previous water temperature and are passed to
// check, if it is not nil, before they are used.
//
// Internal heat transfer between the water and the glass follows
// Dunkle (1961). The water temperature is the analytical solution of
// the lumped water energy balance, integrated from the start of the
// day with the coefficients of the current second.
func HeatBalance(check RangeChecker) DayManipulator {
	return func(d *Day) error {
		i := d.Step
		c := d.Constants
		S := d.Design.Salinity
		depth := d.Design.Depth
		area := d.Design.Area()

		Tw, Tg, Tb := d.Water[i-1], d.Glass[i-1], d.Basin[i-1]
		Ta, I := d.Ambient[i], d.Irradiance[i]

		ΔTin := Tw - Tg
		if ΔTin <= 0 {
			ΔTin = minDifference
		}
		ΔTout := Tg - d.Ambient[i-1]
		if ΔTout <= 0 {
			ΔTout = minDifference
		}

		d.Sky[i] = skyTemperature(Ta)

		if check != nil {
			for _, p := range checkedProperties {
				if err := check(p, S, Tw); err != nil {
					return err
				}
			}
		}
		ρ := Density(S, Tw)
		μ := Viscosity(S, Tw)
		cp := SpecificHeat(S, Tw)
		k := ThermalConductivity(S, Tw)

		mass := ρ * area * depth
		ν := μ / ρ
		Pr := cp * μ / k
		hfg := latentHeat(Tw)
		Pw := waterActivity(S) * saturationPressure(Tw)
		Pg := saturationPressure(Tg)

		// Natural convection between the basin liner and the water.
		β := expansionCoefficient(Tw)
		Gr := math.Abs(c.Gravity * β * (Tb - Tw) * math.Pow(depth, 3) / (ν * ν))
		hw := math.Abs(k / depth * 0.54 * math.Pow(Gr*Pr, 0.25))

		// Water to glass.
		hc := 0.884 * math.Pow(math.Abs((Tw-Tg)+(Pw-Pg)*(Tw+273.15)/(268900-Pw)), 1./3)
		hr := math.Abs(c.EmissivityWater * c.StefanBoltzmann *
			((sq(Tw+273) + sq(Tg+273)) * (Tw + Tg + 546)))
		he := math.Abs(0.01628 * hc * (Pw - Pg) / ΔTin)
		ht := hc + hr + he

		// Glass and basin to ambient.
		hrga := c.StefanBoltzmann * c.EmissivityGlass *
			(math.Pow(Tg+273, 4) - math.Pow(d.Sky[i-1]+273, 4)) / ΔTout
		hca := windConvection(d.Wind[i])
		htga := hca + hrga
		Uba := 1 / (c.InsulationThickness/c.InsulationConductivity + 1/hca)

		αb, αw, αg := c.basinAbsorption(), c.waterAbsorption(), c.glassAbsorption()
		αeff := αb*(hw/(hw+Uba+hca)) + αw + αg*(ht/(ht+htga))

		kg := c.GlassConductivity / c.GlassThickness
		Ug := kg * htga / (kg + htga)
		Ut := ht * Ug / (ht + Ug)
		Ub := hw * Uba / (hw + Uba)
		Us := d.Design.sideArea() / area * Ub
		UL := Ut + (Ub + Us)

		a := UL / (mass * cp)
		f := (αeff*I + UL*Ta) / (mass * cp)
		decay := math.Exp(-a * float64(i))

		d.Glass[i] = (αg*I + ht*Tw + Ug*Ta) / (ht + Ug)
		d.Water[i] = f/a*(1-decay) + d.Water[1]*decay
		d.Basin[i] = (αb*I + hw*Tw + (Uba+hca)*Tb) / (hw + Uba + hca)

		fresh := area * he * (d.Water[i] - d.Glass[i]) * SecondsPerHour / hfg
		d.Evaporated[i] = fresh / (1 + S/1000)
		return nil
	}
}

// HourlyProductivity returns a function that aggregates the per-second
// evaporation rates into hourly productivities and the daily yield.
// Rates outside [0, maxEvaporation] are counted as zero and undefined
// rates are skipped. An hour with no defined rates has an undefined
// productivity and does not contribute to the yield.
func HourlyProductivity() DayManipulator {
	return func(d *Day) error {
		area := d.Design.Area()
		buf := make([]float64, 0, SecondsPerHour)
		hourly := make([]float64, 0, HoursPerDay)
		for h := 0; h < HoursPerDay; h++ {
			buf = buf[:0]
			for _, m := range d.Evaporated[h*SecondsPerHour : (h+1)*SecondsPerHour] {
				if math.IsNaN(m) {
					continue
				}
				if m < 0 || m > maxEvaporation {
					m = 0
				}
				buf = append(buf, m)
			}
			if len(buf) == 0 {
				d.Hourly[h] = math.NaN()
				continue
			}
			d.Hourly[h] = stat.Mean(buf, nil) / area
			hourly = append(hourly, d.Hourly[h])
		}
		d.Yield = floats.Sum(hourly)
		return nil
	}
}
