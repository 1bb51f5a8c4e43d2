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
	"context"
	"fmt"
	"io"
	"os"
	"sync"
	"time"

	"github.com/gosuri/uiprogress"
	"github.com/sirupsen/logrus"
	"github.com/spatialmodel/solarstill"
	"github.com/spf13/cobra"
)

// RunConfig holds the settings of a simulation.
type RunConfig struct {
	// WeatherFile is the path or URL of the hourly weather file.
	WeatherFile string

	// Weather specifies the layout of WeatherFile.
	Weather solarstill.WeatherConfig

	Design solarstill.Design

	// ConstantsFile is the path or URL of an optional TOML file
	// overriding the default constants. It is read when the run
	// starts, unless Constants is already set.
	ConstantsFile string
	Constants     *solarstill.Constants

	// IntervalDays is the number of days skipped between sampled days.
	IntervalDays int

	// Concurrency is the number of days simulated at the same time.
	Concurrency int

	Ranges solarstill.RangePolicy

	// OutputFile is the path to the desired output file location. If it is
	// empty no output file is written.
	OutputFile string

	// OutputVariables maps output column names to the expressions
	// used to calculate them.
	OutputVariables map[string]string

	// LogFile is the path to the desired logfile location. If it is
	// empty, messages are only written to the command output.
	LogFile string

	// Progress specifies whether to display a progress bar.
	Progress bool
}

// newLogger returns a logger writing to w with full timestamps.
func newLogger(w io.Writer) *logrus.Logger {
	log := logrus.New()
	log.Out = w
	log.Formatter = &logrus.TextFormatter{
		FullTimestamp:   true,
		TimestampFormat: time.RFC3339Nano,
		DisableSorting:  true,
	}
	return log
}

// setupLog creates the log file, if one is specified, and returns a logger
// writing to it and to the error output of the command. The returned
// function closes the log file.
func setupLog(cmd *cobra.Command, logFile string) (*logrus.Logger, func(), error) {
	if logFile == "" {
		return newLogger(cmd.OutOrStderr()), func() {}, nil
	}
	f, err := os.Create(logFile)
	if err != nil {
		return nil, nil, fmt.Errorf("solarstill: problem creating log file: %v", err)
	}
	mw := io.MultiWriter(cmd.OutOrStderr(), f)
	return newLogger(mw), func() { f.Close() }, nil
}

// readWeather downloads the weather file if necessary and reads it.
func readWeather(ctx context.Context, file string, c solarstill.WeatherConfig, log logrus.FieldLogger) (*solarstill.WeatherYear, error) {
	log.WithField("file", file).Info("reading weather data")
	file, err := maybeDownload(ctx, file, log)
	if err != nil {
		return nil, err
	}
	f, err := os.Open(file)
	if err != nil {
		return nil, fmt.Errorf("solarstill: problem opening weather file: %v", err)
	}
	defer f.Close()
	return solarstill.ReadWeather(f, c)
}

// progressBar displays a bar that advances as each of n days finishes.
// The returned function removes the bar once the channel is closed.
func progressBar(n int) (chan<- solarstill.DayResult, func()) {
	c := make(chan solarstill.DayResult)
	uiprogress.Start()
	bar := uiprogress.AddBar(n).AppendCompleted().PrependElapsed()
	var mu sync.Mutex
	last := "day -"
	bar.PrependFunc(func(b *uiprogress.Bar) string {
		mu.Lock()
		defer mu.Unlock()
		return last
	})
	done := make(chan struct{})
	go func() {
		for r := range c {
			mu.Lock()
			last = fmt.Sprintf("day %-3d", r.Day)
			mu.Unlock()
			bar.Incr()
		}
		close(done)
	}()
	return c, func() {
		close(c)
		<-done
		uiprogress.Stop()
	}
}

// constants returns c.Constants, reading c.ConstantsFile with the
// run logger if they have not been set.
func (c *RunConfig) constants(ctx context.Context, log logrus.FieldLogger) (*solarstill.Constants, error) {
	if c.Constants != nil {
		return c.Constants, nil
	}
	if c.ConstantsFile != "" {
		log.WithField("file", c.ConstantsFile).Info("reading constants")
	}
	return readConstants(ctx, c.ConstantsFile, log)
}

// Run runs a season simulation as specified by c and writes the results.
//
// cmd is the cobra.Command instance where Run is called from. Log
// messages are written to its error output and the yield summary is
// written to its standard output.
func Run(cmd *cobra.Command, c *RunConfig) (*solarstill.YieldResult, error) {
	startTime := time.Now()
	ctx := context.Background()

	log, closeLog, err := setupLog(cmd, c.LogFile)
	if err != nil {
		return nil, err
	}
	defer closeLog()

	var o *solarstill.Outputter
	if c.OutputFile != "" {
		log.Info("parsing output variable expressions")
		o, err = solarstill.NewOutputter(c.OutputFile, c.OutputVariables, nil)
		if err != nil {
			return nil, err
		}
	}

	constants, err := c.constants(ctx, log)
	if err != nil {
		return nil, err
	}
	weather, err := readWeather(ctx, c.WeatherFile, c.Weather, log)
	if err != nil {
		return nil, err
	}

	s := &solarstill.Season{
		Design:       c.Design,
		Constants:    constants,
		IntervalDays: c.IntervalDays,
		Concurrency:  c.Concurrency,
		Ranges:       c.Ranges,
		Log:          log,
	}
	if c.Progress {
		days, err := solarstill.SampledDays(c.IntervalDays)
		if err != nil {
			return nil, err
		}
		var stop func()
		s.Progress, stop = progressBar(len(days))
		defer stop()
	}

	log.WithFields(logrus.Fields{
		"salinity":    c.Design.Salinity,
		"depth":       c.Design.Depth,
		"length":      c.Design.Length,
		"interval":    c.IntervalDays,
		"concurrency": c.Concurrency,
	}).Info("simulating days")
	r, err := s.Run(ctx, weather)
	if err != nil {
		return nil, fmt.Errorf("solarstill: problem running simulation: %v", err)
	}

	if o != nil {
		log.WithField("file", c.OutputFile).Info("writing output")
		if err := o.Output(c.Design, r); err != nil {
			return nil, fmt.Errorf("solarstill: problem writing output: %v", err)
		}
	}

	annual, daily := r.Annual(), r.MeanDaily()
	log.WithFields(logrus.Fields{
		"days":       len(r.Days),
		"annual":     fmt.Sprintf("%.6g", annual),
		"mean_daily": fmt.Sprintf("%.6g", daily),
	}).Infof("simulation completed in %v", time.Since(startTime))
	fmt.Fprintf(cmd.OutOrStdout(), "Annual yield: %.6g per year\nMean daily yield: %.6g per day\n",
		annual, daily)
	return r, nil
}

// RunDay simulates a single day-of-year of c and writes the daily yield
// and hourly productivity to the standard output of cmd.
func RunDay(cmd *cobra.Command, c *RunConfig, day int) (*solarstill.Day, error) {
	ctx := context.Background()

	log, closeLog, err := setupLog(cmd, c.LogFile)
	if err != nil {
		return nil, err
	}
	defer closeLog()

	constants, err := c.constants(ctx, log)
	if err != nil {
		return nil, err
	}
	weather, err := readWeather(ctx, c.WeatherFile, c.Weather, log)
	if err != nil {
		return nil, err
	}
	hours, err := weather.Day(day)
	if err != nil {
		return nil, err
	}

	sim, err := solarstill.NewSimulator(c.Design, constants)
	if err != nil {
		return nil, err
	}
	sim.Ranges = c.Ranges
	sim.Warn = func(err error) { log.WithField("day", day).Warn(err) }
	status := make(chan *solarstill.SimulationStatus)
	sim.Status = status
	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		for msg := range status {
			log.Debug(msg.String())
		}
		wg.Done()
	}()
	d, err := sim.Run(day, hours)
	close(status)
	wg.Wait()
	if err != nil {
		return nil, fmt.Errorf("solarstill: problem running simulation: %v", err)
	}

	w := cmd.OutOrStdout()
	fmt.Fprintf(w, "Day %d yield: %.6g kg/m²\n", day, d.Yield)
	fmt.Fprintln(w, "hour\tproductivity (kg/m²)")
	for h, p := range d.Hourly {
		fmt.Fprintf(w, "%d\t%.6g\n", h, p)
	}
	return d, nil
}
