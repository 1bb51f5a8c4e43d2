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
	"encoding/csv"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/hashicorp/go-multierror"
)

// Forcing holds the weather conditions during one hour.
type Forcing struct {
	Irradiance  float64 // global horizontal irradiance [W/m²]
	Temperature float64 // ambient dry-bulb temperature [°C]
	Wind        float64 // wind speed [m/s]
}

// WeatherYear holds one year of hourly weather, indexed by hour of year.
type WeatherYear struct {
	Hours []Forcing
}

// Day returns the 24 hourly records of day-of-year day, where
// day 0 is the first day of the record.
func (w *WeatherYear) Day(day int) ([HoursPerDay]Forcing, error) {
	var o [HoursPerDay]Forcing
	if day < 0 || (day+1)*HoursPerDay > len(w.Hours) {
		return o, fmt.Errorf("solarstill: day %d is outside of the weather record (%d hours)",
			day, len(w.Hours))
	}
	copy(o[:], w.Hours[day*HoursPerDay:(day+1)*HoursPerDay])
	return o, nil
}

// WeatherColumns specifies which columns of a weather file hold each
// variable. Each entry is either a zero-based column index (e.g., "4")
// or the name of a column in the header line (e.g., "GHI").
type WeatherColumns struct {
	Irradiance  string
	Temperature string
	Wind        string
}

// DefaultWeatherColumns returns the column positions used by
// SAM typical meteorological year CSV files.
func DefaultWeatherColumns() WeatherColumns {
	return WeatherColumns{Irradiance: "4", Temperature: "7", Wind: "11"}
}

// WeatherConfig specifies the layout of a weather file.
type WeatherConfig struct {
	// HeaderRows is the number of lines to skip before the
	// line holding the column names.
	HeaderRows int

	Columns WeatherColumns
}

// DefaultWeatherConfig returns the layout of a SAM CSV weather file.
func DefaultWeatherConfig() WeatherConfig {
	return WeatherConfig{HeaderRows: 2, Columns: DefaultWeatherColumns()}
}

// columnIndex resolves a column selector against the header.
func columnIndex(spec string, header []string) (int, error) {
	spec = strings.TrimSpace(spec)
	if i, err := strconv.Atoi(spec); err == nil {
		if i < 0 {
			return 0, fmt.Errorf("negative column index %d", i)
		}
		return i, nil
	}
	for i, h := range header {
		if strings.EqualFold(strings.TrimSpace(h), spec) {
			return i, nil
		}
	}
	return 0, fmt.Errorf("column %q not found in header %v", spec, header)
}

// ReadWeather reads one year of hourly weather in CSV format from r.
// The file must contain at least HoursPerYear data rows after the
// header; any additional rows are ignored. Every malformed row is
// reported in the returned error.
func ReadWeather(r io.Reader, cfg WeatherConfig) (*WeatherYear, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1 // The metadata lines are a different length.
	cr.TrimLeadingSpace = true

	for i := 0; i < cfg.HeaderRows; i++ {
		if _, err := cr.Read(); err != nil {
			return nil, fmt.Errorf("solarstill: reading weather header line %d: %w", i+1, err)
		}
	}
	header, err := cr.Read()
	if err != nil {
		return nil, fmt.Errorf("solarstill: reading weather column names: %w", err)
	}

	specs := []struct {
		name, spec string
	}{
		{"irradiance", cfg.Columns.Irradiance},
		{"temperature", cfg.Columns.Temperature},
		{"wind", cfg.Columns.Wind},
	}
	cols := make([]int, len(specs))
	for i, s := range specs {
		cols[i], err = columnIndex(s.spec, header)
		if err != nil {
			return nil, fmt.Errorf("solarstill: weather %s column: %w", s.name, err)
		}
	}

	w := &WeatherYear{Hours: make([]Forcing, 0, HoursPerYear)}
	var errs *multierror.Error
	for len(w.Hours) < HoursPerYear {
		rec, err := cr.Read()
		if err == io.EOF {
			return nil, fmt.Errorf("solarstill: weather file has %d data rows but "+
				"at least %d are required", len(w.Hours), HoursPerYear)
		} else if err != nil {
			return nil, fmt.Errorf("solarstill: reading weather: %w", err)
		}
		line, _ := cr.FieldPos(0)
		var vals [3]float64
		for i, c := range cols {
			if c >= len(rec) {
				errs = multierror.Append(errs, fmt.Errorf("line %d: missing %s column %d",
					line, specs[i].name, c))
				continue
			}
			v, err := strconv.ParseFloat(strings.TrimSpace(rec[c]), 64)
			if err != nil {
				errs = multierror.Append(errs, fmt.Errorf("line %d: %s: %w",
					line, specs[i].name, err))
				continue
			}
			vals[i] = v
		}
		w.Hours = append(w.Hours, Forcing{Irradiance: vals[0], Temperature: vals[1], Wind: vals[2]})
	}
	if err := errs.ErrorOrNil(); err != nil {
		return nil, fmt.Errorf("solarstill: invalid weather data: %w", err)
	}
	return w, nil
}
