// dock/collision.go
// Copyright(c) 2024-2026 jetbridge contributors, licensed under the GNU Public License, Version 3.
// SPDX: GPL-3.0-only

package dock

import (
	"github.com/mmp/jetbridge/math"
)

// CollidesWith checks whether this jetway, extended from its rotunda to
// the door, would cross the other jetway in its parked pose. Both tunnels
// are modeled as line segments in the shared door frame.
//
// We solve
//
//	S1 + s*(E1 - S1) = S2 + t*(P2 - S2)
//	s*(E1 - S1) + t*-(P2 - S2) = S2 - S1
//	        a            b          c
//
// and have a collision iff both s and t are in [0,1]. Near-parallel
// segments never collide; parallel tunnels can get arbitrarily close
// without crossing.
func (c *Controller) CollidesWith(o *Controller) bool {
	a := [2]float32{c.doorX - c.x, -c.z} // door z is 0 in the door frame
	b := [2]float32{-(o.parkedX - o.x), -(o.parkedZ - o.z)}
	cv := [2]float32{o.x - c.x, o.z - c.z}

	s, t, ok := math.SolveLinear2(a, b, cv, 0.2)
	if !ok {
		return false
	}

	c.lg.Debugf("collision check between jw %s and %s, s = %0.2f, t = %0.2f",
		c.JW.Name, o.JW.Name, s, t)

	if math.Between(s, 0, 1) && math.Between(t, 0, 1) {
		c.lg.Infof("collision detected between %s and %s", c.JW.Name, o.JW.Name)
		return true
	}

	return false
}

// CollidesWithDocked checks whether the two tunnels would cross once both
// jetways reach their docked pose. Used as a pre-flight check before
// committing to a simultaneous multi-door docking, so a conflict can't
// strand a partially docked jetway.
//
// The controllers live in different door frames; (dx, dz) is the offset
// of o's door relative to c's in the (shared) plane orientation.
func (c *Controller) CollidesWithDocked(o *Controller, dx, dz float32) bool {
	a := [2]float32{c.doorX - c.x, -c.z}
	b := [2]float32{-(o.doorX - o.x), o.z}
	cv := [2]float32{(o.x + dx) - c.x, (o.z + dz) - c.z}

	s, t, ok := math.SolveLinear2(a, b, cv, 0.2)
	if !ok {
		return false
	}

	if math.Between(s, 0, 1) && math.Between(t, 0, 1) {
		c.lg.Infof("docked poses of %s and %s would collide", c.JW.Name, o.JW.Name)
		return true
	}

	return false
}
