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
	"strings"
)

// Property identifies one of the saline water property correlations.
type Property int

// The property correlations.
const (
	PropDensity Property = iota
	PropViscosity
	PropSpecificHeat
	PropThermalConductivity
)

var propNames = []string{
	PropDensity:             "density",
	PropViscosity:           "viscosity",
	PropSpecificHeat:        "specific heat",
	PropThermalConductivity: "thermal conductivity",
}

func (p Property) String() string {
	if p < 0 || int(p) >= len(propNames) {
		return fmt.Sprintf("Property(%d)", int(p))
	}
	return propNames[p]
}

// validity holds the salinity [g/L] up to which each correlation is
// accurate and the salinity up to which it extrapolates naturally.
var validity = []struct{ accurate, natural float64 }{
	PropDensity:             {160, 350},
	PropViscosity:           {150, 350},
	PropSpecificHeat:        {180, 240},
	PropThermalConductivity: {160, 350},
}

// Temperature limits [°C] of the property correlations.
const (
	minTemperature = 0.
	maxTemperature = 100.
)

// RangeError reports a property evaluated outside the range its correlation
// was fitted to. Results in that region are still returned but are of
// reduced accuracy.
type RangeError struct {
	Property    Property
	Salinity    float64 // g/L
	Temperature float64 // °C
	// Extrapolated is true when the salinity lies beyond the accurate range
	// but within the range where the correlation still behaves naturally.
	Extrapolated bool
	reason       string
}

func (e *RangeError) Error() string {
	return fmt.Sprintf("solarstill: %s at salinity=%g g/L, temperature=%g °C: %s",
		e.Property, e.Salinity, e.Temperature, e.reason)
}

// CheckRange returns a *RangeError if property p evaluated at the given
// salinity [g/L] and temperature [°C] lies outside its validated range.
// It returns nil otherwise.
func CheckRange(p Property, salinity, temperature float64) error {
	if p < 0 || int(p) >= len(validity) {
		return fmt.Errorf("solarstill: invalid property %d", int(p))
	}
	v := validity[p]
	var reasons []string
	extrapolated := false
	switch {
	case salinity < 0:
		reasons = append(reasons, "negative salinity")
	case salinity > v.natural:
		reasons = append(reasons, fmt.Sprintf("salinity above %g g/L", v.natural))
	case salinity > v.accurate:
		extrapolated = true
		reasons = append(reasons, fmt.Sprintf("salinity above accurate limit of %g g/L", v.accurate))
	}
	if temperature < minTemperature || temperature > maxTemperature {
		reasons = append(reasons, fmt.Sprintf("temperature outside %g–%g °C",
			minTemperature, maxTemperature))
	}
	if len(reasons) == 0 {
		return nil
	}
	return &RangeError{
		Property:     p,
		Salinity:     salinity,
		Temperature:  temperature,
		Extrapolated: extrapolated && len(reasons) == 1,
		reason:       strings.Join(reasons, "; "),
	}
}

// RangePolicy specifies what happens when a property correlation is
// evaluated outside of its validated range.
type RangePolicy int

// Range policies.
const (
	// RangeWarn reports each excursion once per simulated day
	// and continues.
	RangeWarn RangePolicy = iota
	// RangeIgnore does not check ranges.
	RangeIgnore
	// RangeStrict fails the simulated day at the first excursion.
	RangeStrict
)

// ParseRangePolicy converts "warn", "ignore", or "strict" into a RangePolicy.
func ParseRangePolicy(s string) (RangePolicy, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "warn", "":
		return RangeWarn, nil
	case "ignore":
		return RangeIgnore, nil
	case "strict":
		return RangeStrict, nil
	default:
		return RangeWarn, fmt.Errorf("solarstill: invalid range policy %q; "+
			"valid options are 'ignore', 'warn', and 'strict'", s)
	}
}

func (p RangePolicy) String() string {
	switch p {
	case RangeIgnore:
		return "ignore"
	case RangeStrict:
		return "strict"
	default:
		return "warn"
	}
}
