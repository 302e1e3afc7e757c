// cmd/jetbridge/main.go
// Copyright(c) 2024-2026 jetbridge contributors, licensed under the GNU Public License, Version 3.
// SPDX: GPL-3.0-only

package main

// Command jetbridge loads a jetway library plus scenery descriptions,
// places a scripted aircraft at a stand and runs one complete
// dock/undock cycle, reporting the docking events on stdout. It is the
// replay/debug surface for the engine; a live simulator integration
// feeds the same Manager from its own aircraft source.

import (
	"flag"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/mmp/jetbridge/dock"
	"github.com/mmp/jetbridge/log"
	"github.com/mmp/jetbridge/rand"
	"github.com/mmp/jetbridge/scenery"
	"github.com/mmp/jetbridge/traffic"
	"github.com/mmp/jetbridge/util"
)

var (
	logLevel = flag.String("loglevel", "info", "logging level: debug, info, warn, error")
	logDir   = flag.String("logdir", "", "log file directory")

	libraryFile   = flag.String("library", "", "filename of JSON file with the jetway library")
	sceneryFiles  = flag.String("scenery", "", "comma separated scenery description files (.json or .json.zst)")
	doorInfoFile  = flag.String("doors", "", "filename of the door info table")
	icao          = flag.String("icao", "A320", "aircraft type")
	lat           = flag.Float64("lat", 0, "aircraft latitude")
	lon           = flag.Float64("lon", 0, "aircraft longitude")
	heading       = flag.Float64("heading", 0, "aircraft true heading in degrees")
	elevation     = flag.Float64("elevation", 0, "aircraft elevation in meters")
	rate          = flag.Float64("rate", 30, "animation steps per second")
	parkedSeconds = flag.Float64("parked", 10, "seconds to stay docked before undocking")
	seed          = flag.Int64("seed", 0, "seed for the randomized parked poses (0: time based)")
)

func main() {
	flag.Parse()

	lg := log.New(*logLevel, *logDir)

	// The scenery cache can accumulate stale entries across airport
	// updates; keep it bounded.
	if err := util.CacheCullObjects(256 * 1024 * 1024); err != nil {
		lg.Warnf("cache cull: %v", err)
	}

	if *libraryFile == "" || *sceneryFiles == "" {
		fmt.Fprintln(os.Stderr, "both -library and -scenery are required")
		os.Exit(1)
	}

	if *seed != 0 {
		rand.Seed(*seed)
	} else {
		rand.Seed(time.Now().UnixNano())
	}

	fr := scenery.Frame{Lat: float32(*lat), Lon: float32(*lon)}
	db, err := scenery.NewDatabase(*libraryFile, strings.Split(*sceneryFiles, ","), fr, lg)
	if err != nil {
		lg.Errorf("%v", err)
		os.Exit(1)
	}
	fmt.Printf("loaded %d sceneries, %d jetways\n", len(db.Sceneries), db.NumJetways())

	doors := []traffic.Door{{X: -2.0, Y: -1.0, Z: -15.0}}
	if *doorInfoFile != "" {
		dim, err := traffic.LoadDoorInfo(*doorInfoFile)
		if err != nil {
			lg.Errorf("%s: %v", *doorInfoFile, err)
			os.Exit(1)
		}
		if d := dim.Doors(*icao); len(d) > 0 {
			doors = d
		} else {
			lg.Warnf("%s: no doors in %s, using the default", *icao, *doorInfoFile)
		}
	}

	ac := &traffic.Scripted{
		Lat:      float32(*lat),
		Lon:      float32(*lon),
		Y:        float32(*elevation),
		Psi:      float32(*heading),
		DoorList: doors,
		Ground:   true,
	}
	p := fr.ToLocal(ac.Lat, ac.Lon)
	ac.X, ac.Z = p[0], p[1]

	es := dock.NewEventStream(lg)
	sub := es.Subscribe()
	mgr := dock.NewManager(db, ac, es, lg)

	dt := float32(1 / *rate)
	clock := float32(0)
	dockedAt := float32(-1)
	requested := false

	// Dock as soon as the manager offers it, stay docked for a bit, then
	// undock and exit when everything is parked again.
	for {
		mgr.Step(dt)
		clock += dt

		for _, ev := range sub.Get() {
			fmt.Printf("%6.1fs %s\n", clock, ev.String())
		}

		switch mgr.State() {
		case dock.StateCanDock:
			if !requested {
				fmt.Printf("%6.1fs %d jetway(s) available, docking\n", clock, mgr.ActiveCount())
				mgr.RequestDock()
				requested = true
			}

		case dock.StateDocked:
			if dockedAt < 0 {
				dockedAt = clock
				fmt.Printf("%6.1fs docked, status: %d\n", clock, mgr.Status())
				for _, c := range mgr.ActiveJetways() {
					if s := c.JW.Stand; s != nil {
						fmt.Printf("%6.1fs stand %s: %d jetway(s)\n", clock, s.ID, db.CountAtStand(s))
					}
				}
			} else if clock > dockedAt+float32(*parkedSeconds) {
				mgr.RequestUndock()
			}

		case dock.StateCantDock:
			fmt.Printf("%6.1fs no jetway can serve this position, status: %d\n", clock, mgr.Status())
			os.Exit(1)

		case dock.StateIdle:
			if dockedAt >= 0 {
				fmt.Printf("%6.1fs undocked, all jetways parked\n", clock)
				return
			}

		case dock.StateDisabled:
			lg.Errorf("manager disabled itself")
			os.Exit(1)
		}

		if clock > 600 {
			lg.Errorf("no full cycle after %0.0f seconds, giving up", clock)
			os.Exit(1)
		}
	}
}
