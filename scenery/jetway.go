// scenery/jetway.go
// Copyright(c) 2024-2026 jetbridge contributors, licensed under the GNU Public License, Version 3.
// SPDX: GPL-3.0-only

package scenery

import (
	"github.com/mmp/jetbridge/math"
)

// Door slots a jetway may be built for.
const (
	DoorLF1 = 0
	DoorLF2 = 1
	DoorLU1 = 2
)

// Jetway is the static+animated record for one physical jetway instance.
// The placement and the per-DOF limits are fixed at load time; the pose
// fields are driven every frame by the controller that owns the jetway
// while docking or undocking.
type Jetway struct {
	// Identity; LibraryID is non-zero for instances stamped out from a
	// shared library template.
	LibraryID int
	Name      string
	Sound     string

	// Placement from the scenery description.
	Latitude  float32
	Longitude float32
	Heading   float32
	Elevation float32
	Height    float32

	// Geometry of the tunnel and undercarriage.
	WheelPos      float32 // wheel bogie distance from the rotunda
	CabinPos      float32 // cabin distance from the rotunda at zero extension
	CabinLength   float32
	WheelDiameter float32
	WheelDistance float32

	// Per-DOF limits.
	MinRot1, MaxRot1     float32
	MinRot2, MaxRot2     float32
	MinRot3, MaxRot3     float32
	MinExtent, MaxExtent float32
	MinWheels, MaxWheels float32

	// Parked pose.
	InitialRot1   float32
	InitialRot2   float32
	InitialRot3   float32
	InitialExtent float32

	DoorSlot int

	// Back reference for library jetways that were placed relative to a
	// stand; nil otherwise. Non-owning.
	Stand *Stand `msgpack:"-"`

	// Local-frame position, computed once per frame change at load time.
	X, Y, Z float32
	Psi     float32

	// Per-jetway bounding box for the cheap far-skip test.
	BBLatMin, BBLatMax float32
	BBLonMin, BBLonMax float32

	// Animated pose, mutated every frame while a controller drives it.
	Rotate1, Rotate2, Rotate3 float32
	Extent                    float32
	Wheels                    float32
	WheelRotateC              float32
	WheelRotateL              float32
	WheelRotateR              float32
	Warnlight                 float32

	locked bool
}

// SetWheels derives the wheel strut height from the tunnel tilt.
func (jw *Jetway) SetWheels() {
	jw.Wheels = math.Tan(math.Radians(jw.Rotate3)) * (jw.WheelPos + jw.Extent)
}

// Reset returns the jetway to its library-defined parked pose.
func (jw *Jetway) Reset() {
	jw.Rotate1 = jw.InitialRot1
	jw.Rotate2 = jw.InitialRot2
	jw.Rotate3 = jw.InitialRot3
	jw.Extent = jw.InitialExtent
	jw.SetWheels()
	jw.Warnlight = 0
}

// TryLock acquires exclusive ownership of the jetway's animated fields.
// At most one controller may hold the lock at a time; this is the central
// mutual-exclusion invariant of the subsystem.
func (jw *Jetway) TryLock() bool {
	if jw.locked {
		return false
	}
	jw.locked = true
	return true
}

func (jw *Jetway) Unlock() { jw.locked = false }

func (jw *Jetway) Locked() bool { return jw.locked }

// FillLibraryValues copies the geometry and the DOF limits from a shared
// library template; the placement fields are left alone. A no-op if the
// jetway was already filled in.
func (jw *Jetway) FillLibraryValues(tmpl *Jetway, id int) {
	if jw.LibraryID != 0 || tmpl == nil {
		return
	}
	jw.LibraryID = id

	jw.Height = tmpl.Height
	jw.WheelPos = tmpl.WheelPos
	jw.CabinPos = tmpl.CabinPos
	jw.CabinLength = tmpl.CabinLength
	jw.WheelDiameter = tmpl.WheelDiameter
	jw.WheelDistance = tmpl.WheelDistance

	jw.MinRot1, jw.MaxRot1 = tmpl.MinRot1, tmpl.MaxRot1
	jw.MinRot2, jw.MaxRot2 = tmpl.MinRot2, tmpl.MaxRot2
	jw.MinRot3, jw.MaxRot3 = tmpl.MinRot3, tmpl.MaxRot3
	jw.MinExtent, jw.MaxExtent = tmpl.MinExtent, tmpl.MaxExtent
	jw.MinWheels, jw.MaxWheels = tmpl.MinWheels, tmpl.MaxWheels
}

// PlaceInFrame computes the jetway's local-frame position from its
// geographic placement.
func (jw *Jetway) PlaceInFrame(fr Frame) {
	p := fr.ToLocal(jw.Latitude, jw.Longitude)
	jw.X, jw.Z = p[0], p[1]
	jw.Y = jw.Elevation
	jw.Psi = jw.Heading
}

func (jw *Jetway) computeBBox() {
	const farSkipDLat = float32(FarSkip) / LatToMeters
	jw.BBLatMin = jw.Latitude - farSkipDLat
	jw.BBLatMax = jw.Latitude + farSkipDLat

	farSkipDLon := farSkipDLat / math.Cos(math.Radians(jw.Latitude))
	jw.BBLonMin = math.ReduceAngle(jw.Longitude - farSkipDLon)
	jw.BBLonMax = math.ReduceAngle(jw.Longitude + farSkipDLon)
}

// InBBox reports whether the position is within the jetway's inflated
// bounding box, with longitude wraparound handled by angle reduction.
func (jw *Jetway) InBBox(lat, lon float32) bool {
	return lat >= jw.BBLatMin && lat <= jw.BBLatMax &&
		math.ReduceAngle(lon-jw.BBLonMin) >= 0 && math.ReduceAngle(lon-jw.BBLonMax) <= 0
}
