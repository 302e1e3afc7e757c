// scenery/anim.go
// Copyright(c) 2024-2026 jetbridge contributors, licensed under the GNU Public License, Version 3.
// SPDX: GPL-3.0-only

package scenery

type AnimState int

const (
	AnimOff AnimState = iota
	AnimOff2On
	AnimOn2Off
	AnimOn
)

// Animation binds a curve table to an auxiliary scenery object and plays
// it forward or backward on demand (e.g. hangar doors, seasonal props).
// Autoplay curves bypass this and are evaluated cyclically.
type Animation struct {
	Label string
	Title string

	Curve  *CurveTable `msgpack:"-"`
	Object *Object     `msgpack:"-"`

	State   AnimState
	StartTS float32
}

// Toggle flips the animation direction at simulation time now. If the
// animation is mid-flight the start timestamp is adjusted so the value
// stays continuous through the reversal.
func (a *Animation) Toggle(now float32) {
	var reverse bool
	if a.State == AnimOff || a.State == AnimOn2Off {
		reverse = a.State == AnimOn2Off
		a.State = AnimOff2On
	} else {
		reverse = a.State == AnimOff2On
		a.State = AnimOn2Off
	}

	if reverse {
		tRel := now - a.StartTS
		dt := a.Curve.Period() - tRel
		a.StartTS = now - dt
	} else {
		a.StartTS = now
	}
}

// Value evaluates the animation at simulation time now, settling into the
// terminal states when the curve has been fully traversed.
func (a *Animation) Value(now float32) float32 {
	c := a.Curve
	if c.Len() == 0 {
		return 0
	}

	if a.State == AnimOff2On || a.State == AnimOn2Off {
		dt := now - a.StartTS
		if a.State == AnimOn2Off {
			dt = c.Period() - dt // downwards
		}

		if dt < 0 {
			a.State = AnimOff
		} else if dt > c.Period() {
			a.State = AnimOn
		} else {
			return c.Query(dt)
		}
	}

	if a.State == AnimOff {
		return c.V[0]
	}
	return c.V[c.Len()-1]
}
