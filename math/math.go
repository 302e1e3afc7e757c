// math/math.go
// Copyright(c) 2024-2026 jetbridge contributors, licensed under the GNU Public License, Version 3.
// SPDX: GPL-3.0-only

package math

import (
	gomath "math"

	"golang.org/x/exp/constraints"
)

// Everything in the engine is float32; these wrappers spare the callers
// the float64 round trips of the standard math package.

func Sin(a float32) float32 {
	return float32(gomath.Sin(float64(a)))
}

func Cos(a float32) float32 {
	return float32(gomath.Cos(float64(a)))
}

func Tan(a float32) float32 {
	return float32(gomath.Tan(float64(a)))
}

func Atan2(y, x float32) float32 {
	return float32(gomath.Atan2(float64(y), float64(x)))
}

func Sqrt(a float32) float32 {
	return float32(gomath.Sqrt(float64(a)))
}

func Mod(a, b float32) float32 {
	return float32(gomath.Mod(float64(a), float64(b)))
}

func Floor(v float32) float32 {
	return float32(gomath.Floor(float64(v)))
}

func Radians(d float32) float32 {
	return d * gomath.Pi / 180
}

func Degrees(r float32) float32 {
	return r * 180 / gomath.Pi
}

func Abs[V constraints.Integer | constraints.Float](x V) V {
	if x < 0 {
		return -x
	}
	return x
}

func Sqr[V constraints.Integer | constraints.Float](v V) V { return v * v }

func Clamp[T constraints.Ordered](x T, low T, high T) T {
	if x < low {
		return low
	} else if x > high {
		return high
	}
	return x
}

// Linearly interpolate x of the way between a and b. x==0 corresponds to
// a, x==1 corresponds to b, etc.
func Lerp(x, a, b float32) float32 {
	return (1-x)*a + x*b
}

// Between reports whether x lies in the closed interval [a,b].
func Between[T constraints.Ordered](x, a, b T) bool {
	return a <= x && x <= b
}

///////////////////////////////////////////////////////////////////////////
// headings and angles

// ReduceAngle maps an angle in degrees into (-180,180].
func ReduceAngle(a float32) float32 {
	a = Mod(a, 360)
	if a > 180 {
		return a - 360
	}
	if a <= -180 {
		return a + 360
	}
	return a
}

// NormalizeHeading maps a heading in degrees into [0,360).
func NormalizeHeading(h float32) float32 {
	if h < 0 {
		return NormalizeHeading(h + 360)
	} else if h >= 360 {
		return NormalizeHeading(h - 360)
	}
	return h
}

// HeadingDifference returns the minimum angular distance in degrees
// between two headings.
func HeadingDifference(a float32, b float32) float32 {
	var d float32
	if a > b {
		d = a - b
	} else {
		d = b - a
	}
	if d > 180 {
		d = 360 - d
	}
	return d
}
