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

package stillutil

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"strings"

	"github.com/lnashier/viper"
	"github.com/sirupsen/logrus"
	"github.com/spatialmodel/solarstill"
	"github.com/spf13/cast"
)

// checkOutputVars removes end lines and expands environment
// variables in the output variables.
func checkOutputVars(vars map[string]string) (map[string]string, error) {
	if len(vars) == 0 {
		return nil, fmt.Errorf("there are no variables specified for output. Please fill in " +
			"the OutputVariables configuration and try again.")
	}
	o := make(map[string]string, len(vars))
	for k, v := range vars {
		v = strings.Replace(v, "\r\n", " ", -1)
		v = strings.Replace(v, "\n", " ", -1)
		o[os.ExpandEnv(k)] = os.ExpandEnv(v)
	}
	return o, nil
}

// checkWeatherFile makes sure that the weather file is specified and
// expands any environment variables.
func checkWeatherFile(f string) (string, error) {
	if f == "" {
		return "", fmt.Errorf(`you need to specify a weather file configuration variable (for example: WeatherFile="tmy.csv")`)
	}
	return os.ExpandEnv(f), nil
}

// checkOutputFile expands any environment variables in the output file
// and makes sure that its directory exists and its format is supported.
// An empty output file means that no output file will be written.
func checkOutputFile(f string) (string, error) {
	if f == "" {
		return "", nil
	}
	f = os.ExpandEnv(f)
	switch ext := strings.ToLower(filepath.Ext(f)); ext {
	case ".csv", ".xlsx":
	default:
		return f, fmt.Errorf("solarstill: the OutputFile extension must be '.csv' or '.xlsx' but is '%s'", ext)
	}
	outdir := filepath.Dir(f)
	if _, err := os.Stat(outdir); err != nil {
		return f, fmt.Errorf("solarstill: the OutputFile directory doesn't exist: %v", err)
	}
	return f, nil
}

// checkLogFile fills in a default value for the log file path if one isn't
// specified. If neither is specified, no log file is written.
func checkLogFile(logFile, outputFile string) string {
	if logFile == "" && outputFile != "" {
		logFile = strings.TrimSuffix(outputFile, filepath.Ext(outputFile)) + ".log"
	}
	return os.ExpandEnv(logFile)
}

// checkConcurrency returns the number of days to simulate at the same
// time. Zero means one day per processor.
func checkConcurrency(n int) (int, error) {
	if n < 0 {
		return 0, fmt.Errorf("solarstill: Concurrency=%d but should be >=0", n)
	}
	if n == 0 {
		return runtime.GOMAXPROCS(0), nil
	}
	return n, nil
}

// checkIntervalDays makes sure that at least one day will be sampled.
func checkIntervalDays(n int) (int, error) {
	if _, err := solarstill.SampledDays(n); err != nil {
		return 0, err
	}
	return n, nil
}

// DesignConfig unmarshals a viper configuration for a still design.
func DesignConfig(cfg *viper.Viper) (solarstill.Design, error) {
	d := solarstill.Design{
		Salinity: cfg.GetFloat64("Design.Salinity"),
		Depth:    cfg.GetFloat64("Design.Depth"),
		Length:   cfg.GetFloat64("Design.Length"),
	}
	if err := d.Check(); err != nil {
		return d, fmt.Errorf("parsing design configuration: %v", err)
	}
	return d, nil
}

// WeatherConfig unmarshals a viper configuration for the layout of
// a weather file.
func WeatherConfig(cfg *viper.Viper) (solarstill.WeatherConfig, error) {
	c := solarstill.WeatherConfig{
		HeaderRows: cfg.GetInt("Weather.HeaderRows"),
		Columns: solarstill.WeatherColumns{
			Irradiance:  os.ExpandEnv(cfg.GetString("Weather.IrradianceColumn")),
			Temperature: os.ExpandEnv(cfg.GetString("Weather.TemperatureColumn")),
			Wind:        os.ExpandEnv(cfg.GetString("Weather.WindColumn")),
		},
	}
	if c.HeaderRows < 0 {
		return c, fmt.Errorf("parsing weather configuration: Weather.HeaderRows=%d but should be >=0", c.HeaderRows)
	}
	cols := []string{c.Columns.Irradiance, c.Columns.Temperature, c.Columns.Wind}
	names := []string{"Weather.IrradianceColumn", "Weather.TemperatureColumn", "Weather.WindColumn"}
	for i, col := range cols {
		if strings.TrimSpace(col) == "" {
			return c, fmt.Errorf("parsing weather configuration: %s is not specified", names[i])
		}
	}
	return c, nil
}

// readConstants reads the physical constants from the given TOML file,
// which may be remote. If the file is not specified, the default
// constants are returned.
func readConstants(ctx context.Context, file string, log logrus.FieldLogger) (*solarstill.Constants, error) {
	if file == "" {
		return solarstill.DefaultConstants(), nil
	}
	file, err := maybeDownload(ctx, os.ExpandEnv(file), log)
	if err != nil {
		return nil, err
	}
	f, err := os.Open(file)
	if err != nil {
		return nil, fmt.Errorf("solarstill: opening constants file: %v", err)
	}
	defer f.Close()
	return solarstill.ReadConstants(f)
}

// GetStringMapString returns a map[string]string from a viper configuration,
// accounting for the fact that it might be a json object if it was set
// from a command line argument.
func GetStringMapString(varName string, cfg *viper.Viper) (map[string]string, error) {
	i := cfg.Get(varName)
	switch v := i.(type) {
	case map[string]string:
		return v, nil
	case map[string]interface{}:
		return cast.ToStringMapStringE(v)
	case string:
		o := make(map[string]string)
		if v == "" {
			return o, nil
		}
		d := json.NewDecoder(bytes.NewBufferString(v))
		if err := d.Decode(&o); err != nil {
			return nil, fmt.Errorf("parsing configuration variable %s: %v", varName, err)
		}
		return o, nil
	default:
		return nil, fmt.Errorf("invalid type for configuration variable %s: %#v", varName, i)
	}
}
