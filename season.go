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
	"context"
	"fmt"
	"math"
	"sync"

	"github.com/sirupsen/logrus"
)

// Season estimates the yield of a still over a year by simulating a
// regularly spaced sample of days.
type Season struct {
	Design Design

	// Constants are the physical constants. If nil, DefaultConstants is used.
	Constants *Constants

	// IntervalDays is the number of days skipped between sampled days.
	IntervalDays int

	// Concurrency is the number of days simulated at the same time.
	// Values less than 1 are treated as 1.
	Concurrency int

	Ranges RangePolicy

	// Log receives warnings and progress information. If nil, the
	// logrus standard logger is used.
	Log logrus.FieldLogger

	// Progress, if not nil, receives the result of each day as soon as it
	// is finished. Days are sent in completion order, which is only the day
	// order when Concurrency is 1.
	Progress chan<- DayResult
}

// SampledDays returns the days of year that are simulated when
// intervalDays days are skipped between samples: every
// (intervalDays+1)th day, starting with day intervalDays+1.
func SampledDays(intervalDays int) ([]int, error) {
	if intervalDays < 0 {
		return nil, fmt.Errorf("solarstill: interval=%d days but should be >=0", intervalDays)
	}
	var days []int
	for day := intervalDays + 1; day < DaysPerYear; day += intervalDays + 1 {
		days = append(days, day)
	}
	if len(days) == 0 {
		return nil, fmt.Errorf("solarstill: an interval of %d days samples no days in a %d-day year",
			intervalDays, DaysPerYear)
	}
	return days, nil
}

// Run simulates the sampled days of weather and aggregates them to
// annual and mean daily yields. The context is checked before each
// day is started.
func (s *Season) Run(ctx context.Context, weather *WeatherYear) (*YieldResult, error) {
	days, err := SampledDays(s.IntervalDays)
	if err != nil {
		return nil, err
	}
	if weather == nil || len(weather.Hours) < HoursPerYear {
		n := 0
		if weather != nil {
			n = len(weather.Hours)
		}
		return nil, fmt.Errorf("solarstill: weather has %d hours but at least %d are required",
			n, HoursPerYear)
	}
	log := s.Log
	if log == nil {
		log = logrus.StandardLogger()
	}
	sim, err := NewSimulator(s.Design, s.Constants)
	if err != nil {
		return nil, err
	}

	results := make([]DayResult, len(days))
	errs := make([]error, len(days))
	simulate := func(ii int) {
		if err := ctx.Err(); err != nil {
			errs[ii] = err
			return
		}
		day := days[ii]
		hours, err := weather.Day(day)
		if err != nil {
			errs[ii] = err
			return
		}
		daySim := *sim
		daySim.Ranges = s.Ranges
		daySim.Warn = func(err error) {
			log.WithField("day", day).Warn(err)
		}
		d, err := daySim.Run(day, hours)
		if err != nil {
			errs[ii] = err
			return
		}
		results[ii] = d.Result()
		if math.IsNaN(d.Yield) || math.IsInf(d.Yield, 0) {
			log.WithField("day", day).Warnf("solarstill: daily yield is %g", d.Yield)
		}
		log.WithFields(logrus.Fields{
			"day":   day,
			"yield": d.Yield,
		}).Debug("finished day")
		if s.Progress != nil {
			s.Progress <- results[ii]
		}
	}

	nprocs := s.Concurrency
	if nprocs < 1 {
		nprocs = 1
	}
	if nprocs > len(days) {
		nprocs = len(days)
	}
	var wg sync.WaitGroup
	wg.Add(nprocs)
	for pp := 0; pp < nprocs; pp++ {
		go func(pp int) {
			for ii := pp; ii < len(days); ii += nprocs {
				simulate(ii)
			}
			wg.Done()
		}(pp)
	}
	wg.Wait()

	for _, err := range errs {
		if err != nil {
			return nil, err
		}
	}
	return newYieldResult(results)
}

// AnnualYield returns the mean daily distillate yield [kg/m²/day] of a
// still with the given design, estimated from the days of weather
// sampled every intervalDays+1 days. The default constants are used and
// range excursions are not reported.
func AnnualYield(weather *WeatherYear, intervalDays int, design Design) (float64, error) {
	s := &Season{
		Design:       design,
		IntervalDays: intervalDays,
		Ranges:       RangeIgnore,
	}
	r, err := s.Run(context.Background(), weather)
	if err != nil {
		return 0, err
	}
	return r.MeanDailyYield, nil
}
