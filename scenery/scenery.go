// scenery/scenery.go
// Copyright(c) 2024-2026 jetbridge contributors, licensed under the GNU Public License, Version 3.
// SPDX: GPL-3.0-only

package scenery

import (
	"github.com/mmp/jetbridge/math"
)

const (
	// FarSkip is the margin in meters by which scenery and jetway
	// bounding boxes are inflated; anything outside can be discarded
	// before the per-object distance checks.
	FarSkip = 5000

	// LatToMeters converts one degree of latitude to meters. A degree of
	// longitude shrinks with cos(latitude); see Frame.ToLocal.
	LatToMeters = 111120
)

// Frame is the local tangent frame all engine geometry is expressed in:
// x east, z south, y up, headings clockwise from north, units in meters.
// This matches the host simulator's local coordinate convention.
type Frame struct {
	Lat float32
	Lon float32
}

// ToLocal converts a geographic position to local (x, z) meters.
func (f Frame) ToLocal(lat, lon float32) [2]float32 {
	x := math.ReduceAngle(lon-f.Lon) * LatToMeters * math.Cos(math.Radians(f.Lat))
	z := (f.Lat - lat) * LatToMeters
	return [2]float32{x, z}
}

// Stand is an airport parking position.
type Stand struct {
	ID      string
	Lat     float32
	Lon     float32
	Heading float32

	SinHeading float32
	CosHeading float32

	X, Z float32 // local frame
}

func (s *Stand) PlaceInFrame(fr Frame) {
	p := fr.ToLocal(s.Lat, s.Lon)
	s.X, s.Z = p[0], p[1]
}

// Global2Stand transforms a local-frame position into the stand's
// coordinate system (x across, z along the stand heading).
func (s *Stand) Global2Stand(x, z float32) (xl, zl float32) {
	dx := x - s.X
	dz := z - s.Z
	xl = s.CosHeading*dx + s.SinHeading*dz
	zl = -s.SinHeading*dx + s.CosHeading*dz
	return
}

// Object is an auxiliary scenery object that a generic animation can be
// bound to.
type Object struct {
	ID        string
	Latitude  float32
	Longitude float32
	Elevation float32
	Heading   float32

	X, Y, Z float32 // local frame
}

func (o *Object) PlaceInFrame(fr Frame) {
	p := fr.ToLocal(o.Latitude, o.Longitude)
	o.X, o.Z = p[0], p[1]
	o.Y = o.Elevation
}

// Scenery owns the jetways, stands, auxiliary objects and generic
// animation bindings of one loaded scenery package. Geometry is immutable
// after load; only the jetways' animated pose fields change during a
// session.
type Scenery struct {
	Name string

	Jetways []*Jetway
	Stands  []*Stand
	Objects []*Object
	Anims   []*Animation

	BBLatMin, BBLatMax float32
	BBLonMin, BBLonMax float32
}

// InBBox reports whether the position is inside the scenery's inflated
// bounding box. Longitude wraparound is handled by angle reduction.
func (sc *Scenery) InBBox(lat, lon float32) bool {
	return lat >= sc.BBLatMin && lat <= sc.BBLatMax &&
		math.ReduceAngle(lon-sc.BBLonMin) >= 0 && math.ReduceAngle(lon-sc.BBLonMax) <= 0
}

func (sc *Scenery) computeBBox() {
	const farSkipDLat = float32(FarSkip) / LatToMeters

	sc.BBLatMin, sc.BBLonMin = 1000, 1000
	sc.BBLatMax, sc.BBLonMax = -1000, -1000

	for _, jw := range sc.Jetways {
		jw.computeBBox()

		sc.BBLatMin = min(sc.BBLatMin, jw.BBLatMin)
		sc.BBLatMax = max(sc.BBLatMax, jw.BBLatMax)
		sc.BBLonMin = min(sc.BBLonMin, jw.BBLonMin)
		sc.BBLonMax = max(sc.BBLonMax, jw.BBLonMax)
	}

	for _, s := range sc.Stands {
		farSkipDLon := farSkipDLat / math.Cos(math.Radians(s.Lat))

		sc.BBLatMin = min(sc.BBLatMin, s.Lat-farSkipDLat)
		sc.BBLatMax = max(sc.BBLatMax, s.Lat+farSkipDLat)
		sc.BBLonMin = min(sc.BBLonMin, s.Lon-farSkipDLon)
		sc.BBLonMax = max(sc.BBLonMax, s.Lon+farSkipDLon)
	}

	// Objects are deliberately left out: some sceneries place them far
	// from the airport and they would blow up the box.
}
