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
	"math"
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"strconv"
	"strings"

	"github.com/Knetic/govaluate"
	"github.com/ctessum/unit"
	"github.com/tealeg/xlsx"
	"gonum.org/v1/gonum/floats"
)

// OutputVariables returns the names of the per-day variables that
// can be used in output expressions.
func OutputVariables() []string {
	return []string{"Day", "Yield", "Irradiance", "Temperature", "Wind",
		"MaxWater", "MaxGlass", "BasinArea", "Salinity", "Depth", "Length"}
}

// dayVariables returns the values of the output variables for one day.
func dayVariables(design Design, r DayResult) map[string]interface{} {
	return map[string]interface{}{
		"Day":         float64(r.Day),
		"Yield":       r.Yield,
		"Irradiance":  r.Irradiance,
		"Temperature": r.Temperature,
		"Wind":        r.Wind,
		"MaxWater":    r.MaxWater,
		"MaxGlass":    r.MaxGlass,
		"BasinArea":   design.Area(),
		"Salinity":    design.Salinity,
		"Depth":       design.Depth,
		"Length":      design.Length,
	}
}

// Outputter is a holder for output parameters.
//
// fileName contains the path where the output will be saved. Its
// extension selects the format: ".csv" or ".xlsx".
//
// outputVariables maps the names of the columns to be written to
// expressions that define how each column is calculated from the
// per-day variables listed by OutputVariables, other output variables,
// and functions.
type Outputter struct {
	fileName        string
	outputVariables map[string]string
	modelVariables  []string
	outputFunctions map[string]govaluate.ExpressionFunction
	expressions     map[string]*govaluate.EvaluableExpression
}

// NewOutputter initializes a new Outputter holder and adds a set of default
// output functions. Default functions include:
//
// 'exp(x)' which applies the exponential function e^x.
//
// 'max(x, y, ...)' and 'min(x, y, ...)' which return the largest and
// smallest of their arguments.
func NewOutputter(fileName string, outputVariables map[string]string, outputFunctions map[string]govaluate.ExpressionFunction) (*Outputter, error) {
	defaultOutputFuncs := map[string]govaluate.ExpressionFunction{
		"exp": func(arg ...interface{}) (interface{}, error) {
			if len(arg) != 1 {
				return nil, fmt.Errorf("solarstill: got %d arguments for function 'exp', but needs 1", len(arg))
			}
			v, err := toFloat("exp", arg[0])
			if err != nil {
				return nil, err
			}
			return math.Exp(v), nil
		},
		"max": reduceFunc("max", floats.Max),
		"min": reduceFunc("min", floats.Min),
	}
	for key, val := range outputFunctions {
		defaultOutputFuncs[key] = val
	}

	switch ext := strings.ToLower(filepath.Ext(fileName)); ext {
	case ".csv", ".xlsx":
	default:
		return nil, fmt.Errorf("solarstill: output file extension '%s' is not supported; use '.csv' or '.xlsx'", ext)
	}
	if len(outputVariables) == 0 {
		return nil, fmt.Errorf("solarstill: no output variables specified")
	}
	if err := checkOutputNames(outputVariables); err != nil {
		return nil, err
	}

	o := &Outputter{
		fileName:        fileName,
		outputVariables: make(map[string]string, len(outputVariables)),
		outputFunctions: defaultOutputFuncs,
	}
	for k, v := range outputVariables {
		o.outputVariables[k] = v
	}
	if err := o.checkForDerivatives(len(o.outputVariables) * len(o.outputVariables)); err != nil {
		return nil, err
	}
	if err := checkModelVars(o.modelVariables...); err != nil {
		return nil, err
	}
	o.expressions = make(map[string]*govaluate.EvaluableExpression, len(o.outputVariables))
	for name, expr := range o.outputVariables {
		e, err := govaluate.NewEvaluableExpressionWithFunctions(expr, o.outputFunctions)
		if err != nil {
			return nil, fmt.Errorf("solarstill: output variable '%s': %v", name, err)
		}
		o.expressions[name] = e
	}
	return o, nil
}

func toFloat(name string, v interface{}) (float64, error) {
	f, ok := v.(float64)
	if !ok {
		return 0, fmt.Errorf("solarstill: function '%s' needs numeric arguments but got %T", name, v)
	}
	return f, nil
}

func reduceFunc(name string, f func([]float64) float64) govaluate.ExpressionFunction {
	return func(args ...interface{}) (interface{}, error) {
		if len(args) == 0 {
			return nil, fmt.Errorf("solarstill: function '%s' needs at least 1 argument", name)
		}
		vals := make([]float64, len(args))
		for i, a := range args {
			v, err := toFloat(name, a)
			if err != nil {
				return nil, err
			}
			vals[i] = v
		}
		return f(vals), nil
	}
}

// removeDuplicates removes all duplicated strings from a slice, returning a
// slice that contains only unique strings.
func removeDuplicates(s []string) []string {
	result := make([]string, 0, len(s))
	seen := make(map[string]struct{})
	for _, val := range s {
		if _, ok := seen[val]; !ok {
			result = append(result, val)
			seen[val] = struct{}{}
		}
	}
	return result
}

var identChar = regexp.MustCompile("[a-zA-Z0-9_]")

// isIdentChar reports whether s is non-empty and its character at
// position i could be part of a variable name.
func isIdentChar(s string, i int) bool {
	return s != "" && identChar.MatchString(string(s[i]))
}

// checkForDerivatives replaces every output variable that appears in
// the expression of another output variable with the expression that
// defines it, and then identifies the unique per-day variables required
// to calculate the requested output variables. depth bounds the number
// of substitutions so that circular definitions are reported.
func (o *Outputter) checkForDerivatives(depth int) error {
	if depth < 0 {
		return fmt.Errorf("solarstill: output variables are defined in terms of each other")
	}
	o.modelVariables = make([]string, 0, len(o.outputVariables))
	for key, val := range o.outputVariables {
		expression, err := govaluate.NewEvaluableExpressionWithFunctions(val, o.outputFunctions)
		if err != nil {
			return fmt.Errorf("solarstill: output variable '%s': %v", key, err)
		}
		uniqueVars := removeDuplicates(expression.Vars())
		o.modelVariables = append(o.modelVariables, uniqueVars...)
		for _, uniqueVar := range uniqueVars {
			def, ok := o.outputVariables[uniqueVar]
			if !ok || def == uniqueVar {
				continue
			}
			// Only replace instances of the variable name that are not part
			// of a longer name; 'Yield' is not a standalone variable in
			// 'YieldLitres'.
			splitVal := strings.Split(val, uniqueVar)
			for i := 0; i < len(splitVal)-1; i++ {
				isSuffix := isIdentChar(splitVal[i], len(splitVal[i])-1)
				isPrefix := isIdentChar(splitVal[i+1], 0)
				if !isSuffix && !isPrefix {
					splitVal[i] += "(" + def + ")"
				} else {
					splitVal[i] += uniqueVar
				}
			}
			o.outputVariables[key] = strings.Join(splitVal, "")
			return o.checkForDerivatives(depth - 1)
		}
	}
	o.modelVariables = removeDuplicates(o.modelVariables)
	sort.Strings(o.modelVariables)
	return nil
}

// checkModelVars checks whether the variables required to calculate
// the requested output variables are available.
func checkModelVars(g ...string) error {
	available := make(map[string]struct{})
	for _, n := range OutputVariables() {
		available[n] = struct{}{}
	}
	for _, v := range g {
		if _, ok := available[v]; !ok {
			return fmt.Errorf("solarstill: undefined variable name '%s'", v)
		}
	}
	return nil
}

var outputName = regexp.MustCompile(`^[A-Za-z]\w*$`)

// checkOutputNames checks that output variable names can be used as
// column names and in expressions.
func checkOutputNames(o map[string]string) error {
	for key := range o {
		if !outputName.MatchString(key) {
			return fmt.Errorf("solarstill: output variable name '%s' includes unsupported characters", key)
		}
	}
	return nil
}

// Names returns the output variable names in alphabetical order.
func (o *Outputter) Names() []string {
	names := make([]string, 0, len(o.outputVariables))
	for k := range o.outputVariables {
		names = append(names, k)
	}
	sort.Strings(names)
	return names
}

// Values calculates the output variables for one simulated day.
func (o *Outputter) Values(design Design, r DayResult) (map[string]float64, error) {
	params := dayVariables(design, r)
	out := make(map[string]float64, len(o.expressions))
	for name, e := range o.expressions {
		v, err := e.Evaluate(params)
		if err != nil {
			return nil, fmt.Errorf("solarstill: evaluating output variable '%s' for day %d: %v", name, r.Day, err)
		}
		switch vv := v.(type) {
		case float64:
			out[name] = vv
		case bool:
			if vv {
				out[name] = 1
			} else {
				out[name] = 0
			}
		default:
			return nil, fmt.Errorf("solarstill: output variable '%s' evaluates to %T, not a number", name, v)
		}
	}
	return out, nil
}

// table returns the header and rows of the output table.
func (o *Outputter) table(design Design, r *YieldResult) ([]string, [][]float64, error) {
	names := o.Names()
	rows := make([][]float64, len(r.Days))
	for i, d := range r.Days {
		vals, err := o.Values(design, d)
		if err != nil {
			return nil, nil, err
		}
		rows[i] = make([]float64, len(names))
		for j, n := range names {
			rows[i][j] = vals[n]
		}
	}
	return names, rows, nil
}

// WriteCSV writes one row per simulated day to w, preceded by a header row.
func (o *Outputter) WriteCSV(w io.Writer, design Design, r *YieldResult) error {
	names, rows, err := o.table(design, r)
	if err != nil {
		return err
	}
	cw := csv.NewWriter(w)
	if err := cw.Write(names); err != nil {
		return err
	}
	rec := make([]string, len(names))
	for _, row := range rows {
		for j, v := range row {
			rec[j] = strconv.FormatFloat(v, 'g', -1, 64)
		}
		if err := cw.Write(rec); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

// XLSX creates a spreadsheet with a "Days" sheet holding one row per
// simulated day and a "Summary" sheet holding the season totals.
func (o *Outputter) XLSX(design Design, r *YieldResult) (*xlsx.File, error) {
	names, rows, err := o.table(design, r)
	if err != nil {
		return nil, err
	}
	f := xlsx.NewFile()
	days, err := f.AddSheet("Days")
	if err != nil {
		return nil, err
	}
	header := days.AddRow()
	for _, n := range names {
		header.AddCell().SetString(n)
	}
	for _, row := range rows {
		xr := days.AddRow()
		for _, v := range row {
			xr.AddCell().SetFloat(v)
		}
	}

	summary, err := f.AddSheet("Summary")
	if err != nil {
		return nil, err
	}
	header = summary.AddRow()
	for _, n := range []string{"Quantity", "Value", "Units"} {
		header.AddCell().SetString(n)
	}
	volume := unit.Div(r.Annual(), unit.New(DaysPerYear, unit.Dimensions{}))
	for _, s := range []struct {
		name string
		v    *unit.Unit
		per  string
	}{
		{"Sampled days", unit.New(float64(len(r.Days)), unit.Dimensions{}), ""},
		{"Annual yield", r.Annual(), " per year"},
		{"Mean daily volume", volume, " per day"},
		{"Mean daily yield", r.MeanDaily(), " per day"},
	} {
		xr := summary.AddRow()
		xr.AddCell().SetString(s.name)
		xr.AddCell().SetFloat(s.v.Value())
		xr.AddCell().SetString(s.v.Dimensions().String() + s.per)
	}
	return f, nil
}

// Output writes the results to the output file.
func (o *Outputter) Output(design Design, r *YieldResult) error {
	switch strings.ToLower(filepath.Ext(o.fileName)) {
	case ".xlsx":
		f, err := o.XLSX(design, r)
		if err != nil {
			return err
		}
		if err := f.Save(o.fileName); err != nil {
			return fmt.Errorf("solarstill: writing output file: %v", err)
		}
		return nil
	default:
		w, err := os.Create(o.fileName)
		if err != nil {
			return fmt.Errorf("solarstill: creating output file: %v", err)
		}
		if err := o.WriteCSV(w, design, r); err != nil {
			w.Close()
			return err
		}
		return w.Close()
	}
}
