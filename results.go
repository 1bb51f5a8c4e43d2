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
	"math"

	"github.com/ctessum/unit"
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"
)

// DayResult holds the summary of one simulated day.
type DayResult struct {
	// Day is the day of year, starting at 0.
	Day int

	// Yield is the daily distillate yield [kg/m²].
	Yield float64

	// Hourly is the productivity of each hour of the day [kg/m²].
	Hourly [HoursPerDay]float64

	// Daily mean forcing. Irradiance excludes the night-time offset.
	Irradiance  float64 // W/m²
	Temperature float64 // °C
	Wind        float64 // m/s

	// Peak temperatures reached during the day [°C].
	MaxWater float64
	MaxGlass float64
}

// Result summarizes the finished simulation.
func (d *Day) Result() DayResult {
	return DayResult{
		Day:         d.Index,
		Yield:       d.Yield,
		Hourly:      d.Hourly,
		Irradiance:  stat.Mean(d.Irradiance, nil) - irradianceOffset,
		Temperature: stat.Mean(d.Ambient, nil),
		Wind:        stat.Mean(d.Wind, nil),
		MaxWater:    floats.Max(d.Water[1:]),
		MaxGlass:    floats.Max(d.Glass[1:]),
	}
}

// YieldResult holds the results of a season of simulated days.
type YieldResult struct {
	// Days holds the sampled days in increasing day order.
	Days []DayResult

	AnnualYield     float64 // m³ of distillate per m² of basin per year
	MeanDailyVolume float64 // m³/m²/day
	MeanDailyYield  float64 // kg/m²/day
}

// Dimensions of the season totals.
var (
	depthDims        = unit.Dimensions{unit.LengthDim: 1}
	arealDensityDims = unit.Dimensions{unit.MassDim: 1, unit.LengthDim: -2}
)

// waterDensity [kg/m³] converts a depth of distillate into mass per area.
var waterDensity = unit.New(1000, unit.Dimensions{unit.MassDim: 1, unit.LengthDim: -3})

// newYieldResult scales the yields of the sampled days up to a full year.
// Undefined daily yields are skipped in the sum but still count as sampled.
func newYieldResult(days []DayResult) (*YieldResult, error) {
	if len(days) == 0 {
		return nil, fmt.Errorf("solarstill: no simulated days to aggregate")
	}
	yields := make([]float64, 0, len(days))
	for _, d := range days {
		if !math.IsNaN(d.Yield) {
			yields = append(yields, d.Yield)
		}
	}
	sum := unit.New(floats.Sum(yields), arealDensityDims)
	scale := unit.New(float64(DaysPerYear)/float64(len(days)), unit.Dimensions{})
	annual := unit.Div(unit.Mul(scale, sum), waterDensity)
	if err := annual.Check(depthDims); err != nil {
		return nil, fmt.Errorf("solarstill: annual yield: %v", err)
	}
	daily := unit.Div(unit.Mul(annual, waterDensity), unit.New(DaysPerYear, unit.Dimensions{}))
	if err := daily.Check(arealDensityDims); err != nil {
		return nil, fmt.Errorf("solarstill: mean daily yield: %v", err)
	}
	return &YieldResult{
		Days:            days,
		AnnualYield:     annual.Value(),
		MeanDailyVolume: annual.Value() / DaysPerYear,
		MeanDailyYield:  daily.Value(),
	}, nil
}

// Annual returns the depth of distillate produced over a year, which
// is the annual volume per unit of basin area.
func (r *YieldResult) Annual() *unit.Unit {
	return unit.New(r.AnnualYield, depthDims)
}

// MeanDaily returns the mass of distillate produced per unit of basin
// area on an average day.
func (r *YieldResult) MeanDaily() *unit.Unit {
	return unit.New(r.MeanDailyYield, arealDensityDims)
}

func (r *YieldResult) String() string {
	return fmt.Sprintf("%d sampled days: annual yield %.4g per year, mean daily yield %.4g per day",
		len(r.Days), r.Annual(), r.MeanDaily())
}
