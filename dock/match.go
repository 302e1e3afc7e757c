// dock/match.go
// Copyright(c) 2024-2026 jetbridge contributors, licensed under the GNU Public License, Version 3.
// SPDX: GPL-3.0-only

package dock

import (
	"slices"

	"github.com/mmp/jetbridge/log"
	"github.com/mmp/jetbridge/math"
	"github.com/mmp/jetbridge/scenery"
	"github.com/mmp/jetbridge/traffic"
)

// filterCandidate decides whether the jetway can plausibly serve the
// plane. Unfortunately limits in scenery files can be bogus (e.g.
// maxExtent), so after the geometric filters a near miss on the extension
// is still taken as a soft match.
func filterCandidate(jw *scenery.Jetway, ac traffic.Aircraft, door traffic.Door, lg *log.Logger) *Controller {
	if jw.Locked() {
		lg.Debugf("%s is locked", jw.Name)
		return nil
	}

	c := NewController(jw, lg)
	c.SetupForDoor(ac, door)

	if c.x > 1 || math.Between(math.ReduceAngle(c.psi+jw.InitialRot1), -130, 20) || // on the right side or pointing away
		c.x < -80 || math.Abs(c.z) > 80 { // or far away
		if math.Abs(c.x) < 120 && math.Abs(c.z) < 120 { // don't pollute the log with jws VERY far away
			lg.Debugf("too far or pointing away: %s, x: %0.2f, z: %0.2f, (psi + initialRot1): %0.1f",
				jw.Name, c.x, c.z, c.psi+jw.InitialRot1)
		}
		return nil
	}

	if !(math.Between(c.doorRot1, jw.MinRot1, jw.MaxRot1) && math.Between(c.doorRot2, jw.MinRot2, jw.MaxRot2) &&
		math.Between(c.doorExtent, jw.MinExtent, jw.MaxExtent)) {
		lg.Infof("jw %s, rot1: %0.1f, rot2: %0.1f, rot3: %0.1f, extent: %0.1f does not fulfil the min/max criteria",
			jw.Name, c.doorRot1, c.doorRot2, c.doorRot3, c.doorExtent)
		extraExtent := c.doorExtent - jw.MaxExtent
		if extraExtent >= 10 {
			return nil
		}
		lg.Infof("  as extra extent of %0.1f m < 10.0 m we take it as a soft match", extraExtent)
		c.SoftMatch = true
	}

	lg.Infof("--> candidate %s, lib_id: %d, door frame: x: %5.3f, z: %5.3f, y: %5.3f, psi: %4.1f, rot1: %0.1f, extent: %.1f",
		jw.Name, jw.LibraryID, c.x, c.z, c.y, c.psi, c.doorRot1, c.doorExtent)
	return c
}

// FindNearestJetways finds the jetways that can serve the plane, at most
// NearJetwayLimit of them, ordered by the fuzzy door comparator (lowest
// and most forward first). All returned jetways are locked.
func FindNearestJetways(db *scenery.Database, ac traffic.Aircraft, lg *log.Logger) []*Controller {
	doors := ac.Doors()
	if len(doors) == 0 {
		lg.Infof("plane has no doors")
		return nil
	}

	// the filters run against the 'average' door location
	var avg traffic.Door
	for _, d := range doors {
		avg.X += d.X
		avg.Z += d.Z
	}
	avg.X /= float32(len(doors))
	avg.Z /= float32(len(doors))
	avg.Y = doors[0].Y

	lat, lon := ac.Position()

	var nearest []*Controller
	for _, jw := range db.FindCandidates(lat, lon) {
		if c := filterCandidate(jw, ac, avg, lg); c != nil {
			nearest = append(nearest, c)
		}
	}

	// sort for door assignment and trim down to the limit
	slices.SortFunc(nearest, func(a, b *Controller) int {
		if a.less(b) {
			return -1
		}
		return 1
	})
	if len(nearest) > NearJetwayLimit {
		nearest = nearest[:NearJetwayLimit]
	}

	for _, c := range nearest {
		c.JW.TryLock()
	}

	return nearest
}

// SelectJetways assigns jetways to doors, lowest door first. A soft match
// is only used if there is no hard match at all, and a jetway whose
// extended tunnel would cross another candidate's parked tunnel is
// skipped.
func SelectJetways(nearest []*Controller, numDoors int) []*Controller {
	if numDoors == 0 {
		return nil
	}

	haveHardMatch := false
	for _, c := range nearest {
		if !c.SoftMatch {
			haveHardMatch = true
			break
		}
	}

	var active []*Controller
loop:
	for i, c := range nearest {
		if haveHardMatch && c.SoftMatch {
			continue
		}

		// skip over collisions
		for _, o := range nearest[i+1:] {
			if c.CollidesWith(o) {
				continue loop
			}
		}

		c.Door = len(active)
		active = append(active, c)
		if len(active) >= numDoors {
			break
		}
	}

	return active
}
