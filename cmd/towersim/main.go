// cmd/towersim/main.go
// Copyright(c) 2024-2026 towersim contributors, licensed under the GNU Public License, Version 3.
// SPDX: GPL-3.0-only

// towersim is a headless scenario runner for the flight dynamics engine:
// it loads a scenario file, runs the simulation for the requested
// duration, and reports destination completions and the final aircraft
// states.
package main

import (
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/avsim/towersim/log"
	"github.com/avsim/towersim/sim"
)

var (
	scenarioFilename = flag.String("scenario", "", "filename of YAML (optionally .zst) scenario definition")
	duration         = flag.Duration("duration", 10*time.Minute, "sim-time duration to run")
	logLevel         = flag.String("loglevel", "info", "logging level: debug, info, warn, error")
	logDir           = flag.String("logdir", "", "log file directory")
	lint             = flag.Bool("lint", false, "validate the scenario and exit")
)

func main() {
	flag.Parse()

	if *scenarioFilename == "" {
		fmt.Fprintln(os.Stderr, "towersim: -scenario is required")
		flag.Usage()
		os.Exit(1)
	}

	lg := log.New(*logLevel, *logDir)

	s, sc, err := sim.LoadScenario(*scenarioFilename, lg)
	if err != nil {
		fmt.Fprintf(os.Stderr, "%s: %v\n", *scenarioFilename, err)
		os.Exit(1)
	}
	if *lint {
		fmt.Printf("%s: ok (%d aircraft, %d wind regions)\n", sc.Name, len(sc.Aircraft), len(sc.Wind))
		return
	}

	sub := s.Events().Subscribe()

	s.FastForward(*duration)

	for _, ev := range sub.Get() {
		if ev.Type == sim.DestinationCompletedEvent {
			fmt.Printf("%-8s completed %s (+%d)\n", ev.Callsign, ev.Message, ev.Score)
		}
	}

	fmt.Printf("\n%s after %s: %d arrivals, %d departures, score %d\n",
		sc.Name, *duration, s.Stats.Arrivals, s.Stats.Departures, s.Stats.Score)

	for _, callsign := range s.Callsigns() {
		fs, _, err := s.AircraftState(callsign)
		if err != nil {
			lg.Errorf("%s: %v", callsign, err)
			continue
		}
		fmt.Printf("%-8s %s\n", callsign, fs.Summary())
	}
}
