// scenery/curve.go
// Copyright(c) 2024-2026 jetbridge contributors, licensed under the GNU Public License, Version 3.
// SPDX: GPL-3.0-only

package scenery

import (
	"fmt"

	"github.com/mmp/jetbridge/math"
)

// CurveTable holds a sparse set of time-keyed samples for an animated
// attribute (wind socks, seasonal props, auxiliary lights, ...). Sample
// times are strictly increasing; the per-segment slope is precomputed at
// insert time so that Query is just a lookup and a multiply-add.
type CurveTable struct {
	Name string

	Autoplay         bool
	RandomizePhase   bool
	AugmentWindSpeed bool

	T []float32
	V []float32
	S []float32 // S[i] = slope over (T[i-1], T[i])
}

// Add appends a sample. Adding a sample at the same time as the previous
// one overwrites its value rather than appending; a sample earlier than
// the previous one is rejected.
func (c *CurveTable) Add(t, v float32) error {
	n := len(c.T)
	if n > 0 {
		if t == c.T[n-1] {
			c.V[n-1] = v
			if n > 1 {
				c.S[n-1] = (v - c.V[n-2]) / (c.T[n-1] - c.T[n-2])
			}
			return nil
		}
		if t < c.T[n-1] {
			return fmt.Errorf("%s: sample at t=%g out of order (last t=%g)", c.Name, t, c.T[n-1])
		}
	}

	c.T = append(c.T, t)
	c.V = append(c.V, v)
	var s float32
	if n > 0 {
		s = (v - c.V[n-1]) / (t - c.T[n-1])
	}
	c.S = append(c.S, s)
	return nil
}

func (c *CurveTable) Len() int { return len(c.T) }

// Period returns the time of the last sample; autoplay curves cycle with
// this period.
func (c *CurveTable) Period() float32 {
	if len(c.T) == 0 {
		return 0
	}
	return c.T[len(c.T)-1]
}

// Query evaluates the curve at time t, clamping below the first and above
// the last sample and interpolating linearly in between. The tables are
// small so a linear scan beats fancier lookups.
func (c *CurveTable) Query(t float32) float32 {
	if len(c.T) == 0 {
		return 0
	}
	if t <= c.T[0] {
		return c.V[0]
	}
	for j := 1; j < len(c.T); j++ {
		if t < c.T[j] {
			return c.V[j-1] + c.S[j]*(t-c.T[j-1])
		}
	}
	return c.V[len(c.V)-1]
}

// QueryCyclic evaluates an autoplay curve, wrapping t by the period.
// phase offsets the cycle so that identical objects don't animate in
// lockstep.
func (c *CurveTable) QueryCyclic(t, phase float32) float32 {
	p := c.Period()
	if p == 0 {
		return c.Query(0)
	}
	return c.Query(math.Mod(t+phase, p))
}
