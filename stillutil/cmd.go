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

// Package stillutil contains the command-line interface to the
// solar still model.
package stillutil

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/lnashier/viper"
	"github.com/spatialmodel/solarstill"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
)

// Cfg holds configuration information.
var Cfg *viper.Viper

var options []struct {
	name, usage, shorthand string
	defaultVal             interface{}
	flagsets               []*pflag.FlagSet
}

func init() {
	// Options are the configuration options available to SolarStill.
	options = []struct {
		name, usage, shorthand string
		defaultVal             interface{}
		flagsets               []*pflag.FlagSet
	}{
		{
			name: "config",
			usage: `
              config specifies the configuration file location.`,
			defaultVal: "",
			flagsets:   []*pflag.FlagSet{Root.PersistentFlags()},
		},
		{
			name: "WeatherFile",
			usage: `
              WeatherFile is the path to a CSV file holding at least one year
              of hourly weather. It can include environment variables, and it
              can be an http(s):// URL or a file://, gs://, or s3:// blob.`,
			shorthand:  "w",
			defaultVal: "",
			flagsets:   []*pflag.FlagSet{runCmd.Flags(), dayCmd.Flags()},
		},
		{
			name: "Weather.HeaderRows",
			usage: `
              Weather.HeaderRows is the number of lines at the beginning of the
              weather file that come before the line holding the column names.`,
			defaultVal: 2,
			flagsets:   []*pflag.FlagSet{runCmd.Flags(), dayCmd.Flags()},
		},
		{
			name: "Weather.IrradianceColumn",
			usage: `
              Weather.IrradianceColumn is the zero-based index or the name of
              the weather file column holding global horizontal irradiance in W/m².`,
			defaultVal: "4",
			flagsets:   []*pflag.FlagSet{runCmd.Flags(), dayCmd.Flags()},
		},
		{
			name: "Weather.TemperatureColumn",
			usage: `
              Weather.TemperatureColumn is the zero-based index or the name of
              the weather file column holding dry-bulb temperature in °C.`,
			defaultVal: "7",
			flagsets:   []*pflag.FlagSet{runCmd.Flags(), dayCmd.Flags()},
		},
		{
			name: "Weather.WindColumn",
			usage: `
              Weather.WindColumn is the zero-based index or the name of
              the weather file column holding wind speed in m/s.`,
			defaultVal: "11",
			flagsets:   []*pflag.FlagSet{runCmd.Flags(), dayCmd.Flags()},
		},
		{
			name: "Design.Salinity",
			usage: `
              Design.Salinity is the salinity of the feed water in g/L.`,
			defaultVal: 20.0,
			flagsets:   []*pflag.FlagSet{runCmd.Flags(), dayCmd.Flags()},
		},
		{
			name: "Design.Depth",
			usage: `
              Design.Depth is the depth of water in the basin in m.`,
			defaultVal: 0.02,
			flagsets:   []*pflag.FlagSet{runCmd.Flags(), dayCmd.Flags()},
		},
		{
			name: "Design.Length",
			usage: `
              Design.Length is the length of each side of the square basin in m.`,
			defaultVal: 0.6,
			flagsets:   []*pflag.FlagSet{runCmd.Flags(), dayCmd.Flags()},
		},
		{
			name: "IntervalDays",
			usage: `
              IntervalDays is the number of days skipped between simulated days.
              Every (IntervalDays+1)th day of the year is simulated.`,
			shorthand:  "i",
			defaultVal: 15,
			flagsets:   []*pflag.FlagSet{runCmd.Flags()},
		},
		{
			name: "ConstantsFile",
			usage: `
              ConstantsFile is the path to an optional TOML file overriding the
              default physical and material constants. It can include
              environment variables.`,
			defaultVal: "",
			flagsets:   []*pflag.FlagSet{runCmd.Flags(), dayCmd.Flags()},
		},
		{
			name: "RangePolicy",
			usage: `
              RangePolicy specifies what happens when a water property is evaluated
              outside of the range its correlation is valid for. Valid options are
              'ignore', 'warn', and 'strict'.`,
			defaultVal: "warn",
			flagsets:   []*pflag.FlagSet{runCmd.Flags(), dayCmd.Flags()},
		},
		{
			name: "Concurrency",
			usage: `
              Concurrency is the number of days to simulate at the same time.
              If it is 0, one day is simulated per processor.`,
			defaultVal: 1,
			flagsets:   []*pflag.FlagSet{runCmd.Flags()},
		},
		{
			name: "OutputFile",
			usage: `
              OutputFile is the path to the desired output file location, ending in
              '.csv' or '.xlsx'. It can include environment variables. If it is
              left blank, no output file is written.`,
			shorthand:  "o",
			defaultVal: "",
			flagsets:   []*pflag.FlagSet{runCmd.Flags()},
		},
		{
			name: "OutputVariables",
			usage: `
              OutputVariables specifies the columns of the output file as a map of
              column names to expressions of the daily variables Day, Yield,
              Irradiance, Temperature, Wind, MaxWater, MaxGlass, BasinArea,
              Salinity, Depth, and Length. It can include environment variables.`,
			defaultVal: map[string]string{
				"Yield":  "Yield",
				"Litres": "Yield * BasinArea",
			},
			flagsets: []*pflag.FlagSet{runCmd.Flags()},
		},
		{
			name: "LogFile",
			usage: `
              LogFile is the path to the desired logfile location. It can include
              environment variables. If LogFile is left blank, the logfile will be saved in
              the same location as the OutputFile.`,
			defaultVal: "",
			flagsets:   []*pflag.FlagSet{runCmd.Flags(), dayCmd.Flags()},
		},
		{
			name: "progress",
			usage: `
              progress specifies whether to display a progress bar.`,
			defaultVal: false,
			flagsets:   []*pflag.FlagSet{runCmd.Flags()},
		},
		{
			name: "day",
			usage: `
              day is the day of year to simulate, where 0 is the first day
              of the weather file.`,
			shorthand:  "d",
			defaultVal: 0,
			flagsets:   []*pflag.FlagSet{dayCmd.Flags()},
		},
	}

	Cfg = viper.New()

	// Set the prefix for configuration environment variables.
	Cfg.SetEnvPrefix("SOLARSTILL")
	Cfg.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	Cfg.AutomaticEnv()

	for _, option := range options {
		for i, set := range option.flagsets {
			if i != 0 { // We don't want to create the same flag twice.
				set.AddFlag(option.flagsets[0].Lookup(option.name))
				continue
			}
			switch v := option.defaultVal.(type) {
			case string:
				if option.shorthand == "" {
					set.String(option.name, v, option.usage)
				} else {
					set.StringP(option.name, option.shorthand, v, option.usage)
				}
			case bool:
				if option.shorthand == "" {
					set.Bool(option.name, v, option.usage)
				} else {
					set.BoolP(option.name, option.shorthand, v, option.usage)
				}
			case int:
				if option.shorthand == "" {
					set.Int(option.name, v, option.usage)
				} else {
					set.IntP(option.name, option.shorthand, v, option.usage)
				}
			case float64:
				if option.shorthand == "" {
					set.Float64(option.name, v, option.usage)
				} else {
					set.Float64P(option.name, option.shorthand, v, option.usage)
				}
			case map[string]string:
				b := bytes.NewBuffer(nil)
				e := json.NewEncoder(b)
				e.Encode(v)
				s := strings.TrimSpace(b.String())
				if option.shorthand == "" {
					set.String(option.name, s, option.usage)
				} else {
					set.StringP(option.name, option.shorthand, s, option.usage)
				}
			default:
				panic("invalid argument type")
			}
			Cfg.BindPFlag(option.name, set.Lookup(option.name))
		}
	}
}

func init() {
	// Link the commands together.
	Root.AddCommand(versionCmd)
	Root.AddCommand(runCmd)
	Root.AddCommand(dayCmd)
}

// setConfig finds and reads in the configuration file, if there is one.
func setConfig() error {
	if cfgpath := Cfg.GetString("config"); cfgpath != "" {
		Cfg.SetConfigFile(os.ExpandEnv(cfgpath))
		if err := Cfg.ReadInConfig(); err != nil {
			return fmt.Errorf("solarstill: problem reading configuration file: %v", err)
		}
	}
	return nil
}

// Root is the main command.
var Root = &cobra.Command{
	Use:   "solarstill",
	Short: "A transient thermal model of a solar still.",
	Long: `SolarStill estimates the distillate yield of a single-basin solar still
from a year of hourly weather. Use the subcommands specified below to access
the model functionality.

Refer to the subcommand documentation for configuration options and default settings.
Configuration can be changed by using a configuration file (and providing the
path to the file using the --config flag), by using command-line arguments,
or by setting environment variables in the format 'SOLARSTILL_var' where 'var' is the
name of the variable to be set, with any '.' replaced by '_'. Many configuration
variables are additionally allowed to contain environment variables within them.
Refer to https://github.com/spf13/viper for additional configuration information.`,
	DisableAutoGenTag: true,
	PersistentPreRunE: func(*cobra.Command, []string) error { return setConfig() },
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the version number",
	Long:  "version prints the version number of this version of SolarStill.",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Fprintf(cmd.OutOrStdout(), "SolarStill v%s\n", solarstill.Version)
	},
	DisableAutoGenTag: true,
}

// runConfig reads the settings shared by the run and day commands.
func runConfig(cfg *viper.Viper) (*RunConfig, error) {
	weatherFile, err := checkWeatherFile(cfg.GetString("WeatherFile"))
	if err != nil {
		return nil, err
	}
	weather, err := WeatherConfig(cfg)
	if err != nil {
		return nil, err
	}
	design, err := DesignConfig(cfg)
	if err != nil {
		return nil, err
	}
	ranges, err := solarstill.ParseRangePolicy(cfg.GetString("RangePolicy"))
	if err != nil {
		return nil, err
	}
	return &RunConfig{
		WeatherFile:   weatherFile,
		Weather:       weather,
		Design:        design,
		ConstantsFile: os.ExpandEnv(cfg.GetString("ConstantsFile")),
		Ranges:        ranges,
	}, nil
}

// runCmd is a command that runs a season simulation.
var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Estimate the annual yield of a still.",
	Long: `run simulates every (IntervalDays+1)th day of the weather year and
scales the daily yields up to the annual and mean daily distillate yield.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		c, err := runConfig(Cfg)
		if err != nil {
			return err
		}
		if c.IntervalDays, err = checkIntervalDays(Cfg.GetInt("IntervalDays")); err != nil {
			return err
		}
		if c.Concurrency, err = checkConcurrency(Cfg.GetInt("Concurrency")); err != nil {
			return err
		}
		if c.OutputFile, err = checkOutputFile(Cfg.GetString("OutputFile")); err != nil {
			return err
		}
		if c.OutputFile != "" {
			vars, err := GetStringMapString("OutputVariables", Cfg)
			if err != nil {
				return err
			}
			if c.OutputVariables, err = checkOutputVars(vars); err != nil {
				return err
			}
		}
		c.LogFile = checkLogFile(Cfg.GetString("LogFile"), c.OutputFile)
		c.Progress = Cfg.GetBool("progress")
		_, err = Run(cmd, c)
		return err
	},
	DisableAutoGenTag: true,
}

// dayCmd is a command that simulates a single day.
var dayCmd = &cobra.Command{
	Use:   "day",
	Short: "Simulate a single day.",
	Long: `day simulates one day of the weather year and prints the daily yield
and the productivity of each hour.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		c, err := runConfig(Cfg)
		if err != nil {
			return err
		}
		c.LogFile = checkLogFile(Cfg.GetString("LogFile"), "")
		_, err = RunDay(cmd, c, Cfg.GetInt("day"))
		return err
	},
	DisableAutoGenTag: true,
}
