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
	"bytes"
	"encoding/csv"
	"os"
	"path/filepath"
	"reflect"
	"strconv"
	"testing"

	"github.com/tealeg/xlsx"
)

func testYieldResult(t *testing.T) *YieldResult {
	r, err := newYieldResult([]DayResult{
		{Day: 16, Yield: 2, Irradiance: 180, Temperature: 12, Wind: 3, MaxWater: 40, MaxGlass: 30},
		{Day: 32, Yield: 3, Irradiance: 220, Temperature: 14, Wind: 2, MaxWater: 45, MaxGlass: 33},
	})
	if err != nil {
		t.Fatal(err)
	}
	return r
}

func TestOutputterCSV(t *testing.T) {
	o, err := NewOutputter("out.csv", map[string]string{
		"Day":    "Day",
		"Yield":  "Yield",
		"Litres": "Yield * BasinArea",
		"Warm":   "MaxWater > 42",
		"Hot":    "max(MaxWater, MaxGlass, 42)",
	}, nil)
	if err != nil {
		t.Fatal(err)
	}
	var buf bytes.Buffer
	if err := o.WriteCSV(&buf, seawater(), testYieldResult(t)); err != nil {
		t.Fatal(err)
	}
	recs, err := csv.NewReader(&buf).ReadAll()
	if err != nil {
		t.Fatal(err)
	}
	area := seawater().Area()
	want := [][]string{
		{"Day", "Hot", "Litres", "Warm", "Yield"},
		{"16", "42", strconv.FormatFloat(2*area, 'g', -1, 64), "0", "2"},
		{"32", "45", strconv.FormatFloat(3*area, 'g', -1, 64), "1", "3"},
	}
	if !reflect.DeepEqual(recs, want) {
		t.Errorf("have %v, want %v", recs, want)
	}
}

func TestOutputterDerived(t *testing.T) {
	o, err := NewOutputter("out.csv", map[string]string{
		"Litres":     "Yield * BasinArea",
		"Millilitre": "Litres * 1000",
		"Warm":       "exp(0) * Temperature",
	}, nil)
	if err != nil {
		t.Fatal(err)
	}
	v, err := o.Values(seawater(), DayResult{Yield: 2, Temperature: 14})
	if err != nil {
		t.Fatal(err)
	}
	want := 2 * seawater().Area() * 1000
	if different(v["Millilitre"], want, 1e-12) {
		t.Errorf("have %g, want %g", v["Millilitre"], want)
	}
	if v["Warm"] != 14 {
		t.Errorf("have %g, want 14", v["Warm"])
	}
	if !reflect.DeepEqual(o.Names(), []string{"Litres", "Millilitre", "Warm"}) {
		t.Errorf("names: have %v", o.Names())
	}
}

func TestOutputterErrors(t *testing.T) {
	for name, tc := range map[string]struct {
		file string
		vars map[string]string
	}{
		"undefined":  {"out.csv", map[string]string{"X": "Rain * 2"}},
		"bad name":   {"out.csv", map[string]string{"Yield (kg)": "Yield"}},
		"extension":  {"out.shp", map[string]string{"Yield": "Yield"}},
		"no vars":    {"out.csv", nil},
		"circular":   {"out.csv", map[string]string{"A": "B + 1", "B": "A + 1"}},
		"bad syntax": {"out.csv", map[string]string{"A": "Yield *"}},
	} {
		t.Run(name, func(t *testing.T) {
			if _, err := NewOutputter(tc.file, tc.vars, nil); err == nil {
				t.Error("should be an error")
			}
		})
	}
}

func TestOutputterXLSX(t *testing.T) {
	file := filepath.Join(t.TempDir(), "out.xlsx")
	o, err := NewOutputter(file, map[string]string{"Yield": "Yield", "Day": "Day"}, nil)
	if err != nil {
		t.Fatal(err)
	}
	r := testYieldResult(t)
	if err := o.Output(seawater(), r); err != nil {
		t.Fatal(err)
	}
	f, err := xlsx.OpenFile(file)
	if err != nil {
		t.Fatal(err)
	}
	days, ok := f.Sheet["Days"]
	if !ok {
		t.Fatal("missing Days sheet")
	}
	if h := days.Cell(0, 1).Value; h != "Yield" {
		t.Errorf("header: have %s, want Yield", h)
	}
	y, err := strconv.ParseFloat(days.Cell(2, 1).Value, 64)
	if err != nil {
		t.Fatal(err)
	}
	if y != 3 {
		t.Errorf("day 32 yield: have %g, want 3", y)
	}
	summary, ok := f.Sheet["Summary"]
	if !ok {
		t.Fatal("missing Summary sheet")
	}
	mean, err := strconv.ParseFloat(summary.Cell(4, 1).Value, 64)
	if err != nil {
		t.Fatal(err)
	}
	if different(mean, r.MeanDailyYield, 1e-9) {
		t.Errorf("mean daily yield: have %g, want %g", mean, r.MeanDailyYield)
	}
	for row, want := range map[int]string{
		2: "m per year",
		3: "m per day",
		4: "kg m^-2 per day",
	} {
		if have := summary.Cell(row, 2).Value; have != want {
			t.Errorf("row %d units: have %q, want %q", row, have, want)
		}
	}
}

func TestOutputCSVFile(t *testing.T) {
	file := filepath.Join(t.TempDir(), "out.csv")
	o, err := NewOutputter(file, map[string]string{"Yield": "Yield"}, nil)
	if err != nil {
		t.Fatal(err)
	}
	if err := o.Output(seawater(), testYieldResult(t)); err != nil {
		t.Fatal(err)
	}
	b, err := os.ReadFile(file)
	if err != nil {
		t.Fatal(err)
	}
	if want := "Yield\n2\n3\n"; string(b) != want {
		t.Errorf("have %q, want %q", b, want)
	}
}
