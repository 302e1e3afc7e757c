// scenery/scenery_test.go
// Copyright(c) 2024-2026 jetbridge contributors, licensed under the GNU Public License, Version 3.
// SPDX: GPL-3.0-only

package scenery

import (
	"testing"

	"github.com/mmp/jetbridge/math"
)

func TestFrameToLocal(t *testing.T) {
	fr := Frame{Lat: 47, Lon: 8}

	p := fr.ToLocal(47, 8)
	if p[0] != 0 || p[1] != 0 {
		t.Errorf("ToLocal at frame origin = %v", p)
	}

	// a point 0.01° south of the origin; the latitude only has float32
	// resolution so allow a generous tolerance
	p = fr.ToLocal(46.99, 8)
	if math.Abs(p[0]) > 1e-3 || math.Abs(p[1]-1111.2) > 0.5 {
		t.Errorf("ToLocal(46.99, 8) = %v, want (0, 1111.2)", p)
	}

	// a point 0.01° east, shrunk by cos(lat)
	p = fr.ToLocal(47, 8.01)
	want := float32(0.01) * LatToMeters * math.Cos(math.Radians(47))
	if math.Abs(p[0]-want) > 0.1 || math.Abs(p[1]) > 1e-3 {
		t.Errorf("ToLocal(47, 8.01) = %v, want (%g, 0)", p, want)
	}
}

func TestGlobal2Stand(t *testing.T) {
	s := &Stand{
		ID:         "S1",
		Heading:    90, // facing east
		SinHeading: math.Sin(math.Radians(90)),
		CosHeading: math.Cos(math.Radians(90)),
	}

	// a point 10 m east is straight ahead: -z in the stand frame
	xl, zl := s.Global2Stand(10, 0)
	if math.Abs(xl) > 1e-4 || math.Abs(zl+10) > 1e-4 {
		t.Errorf("Global2Stand(10, 0) = (%g, %g), want (0, -10)", xl, zl)
	}

	// a point 5 m south is to the right: +x
	xl, zl = s.Global2Stand(0, 5)
	if math.Abs(xl-5) > 1e-4 || math.Abs(zl) > 1e-4 {
		t.Errorf("Global2Stand(0, 5) = (%g, %g), want (5, 0)", xl, zl)
	}
}

func TestJetwayBBox(t *testing.T) {
	jw := &Jetway{Latitude: 47, Longitude: 8}
	jw.computeBBox()

	if !jw.InBBox(47, 8) {
		t.Errorf("jetway not in its own bbox")
	}
	if !jw.InBBox(47.04, 8) || jw.InBBox(47.05, 8) {
		t.Errorf("latitude margin is off")
	}
	if jw.InBBox(47, 8.1) {
		t.Errorf("longitude margin is off")
	}
}

func TestBBoxLongitudeWraparound(t *testing.T) {
	jw := &Jetway{Latitude: 0, Longitude: 179.99}
	jw.computeBBox()

	if !jw.InBBox(0, 179.99) {
		t.Errorf("jetway not in its own bbox")
	}
	if !jw.InBBox(0, -179.99) {
		t.Errorf("bbox does not wrap across the antimeridian")
	}
	if jw.InBBox(0, 179.9) {
		t.Errorf("bbox too large on the west side")
	}
}

func TestSceneryBBox(t *testing.T) {
	sc := &Scenery{
		Jetways: []*Jetway{{Latitude: 47, Longitude: 8}},
		Stands:  []*Stand{{Lat: 47.1, Lon: 8.1}},
	}
	sc.computeBBox()

	if !sc.InBBox(47, 8) || !sc.InBBox(47.1, 8.1) {
		t.Errorf("scenery bbox does not cover its members")
	}
	if !sc.InBBox(47.05, 8.05) {
		t.Errorf("scenery bbox is not the union")
	}
	if sc.InBBox(48, 8) || sc.InBBox(47, 9) {
		t.Errorf("scenery bbox too large")
	}
}

func TestSetWheels(t *testing.T) {
	jw := &Jetway{WheelPos: 8, Rotate3: 3, Extent: 2}
	jw.SetWheels()

	want := math.Tan(math.Radians(3)) * 10
	if math.Abs(jw.Wheels-want) > 1e-5 {
		t.Errorf("Wheels = %g, want %g", jw.Wheels, want)
	}
}

func TestJetwayLock(t *testing.T) {
	jw := &Jetway{}
	if !jw.TryLock() {
		t.Errorf("TryLock on unlocked jetway failed")
	}
	if jw.TryLock() {
		t.Errorf("TryLock on locked jetway succeeded")
	}
	jw.Unlock()
	if !jw.TryLock() {
		t.Errorf("TryLock after Unlock failed")
	}
}

func TestFillLibraryValues(t *testing.T) {
	tmpl := &Jetway{
		Height: 4, WheelPos: 8, CabinPos: 10, CabinLength: 3,
		WheelDiameter: 1, WheelDistance: 2,
		MinRot1: -90, MaxRot1: 90,
		MinExtent: 0, MaxExtent: 20,
	}

	jw := &Jetway{Name: "ref", Latitude: 47, Longitude: 8}
	jw.FillLibraryValues(tmpl, 1)

	if jw.LibraryID != 1 || jw.Height != 4 || jw.CabinPos != 10 || jw.MaxExtent != 20 {
		t.Errorf("library values not copied: %+v", jw)
	}
	if jw.Latitude != 47 {
		t.Errorf("placement was clobbered")
	}

	// a second fill is a no-op
	jw.FillLibraryValues(&Jetway{Height: 99}, 2)
	if jw.LibraryID != 1 || jw.Height != 4 {
		t.Errorf("second fill was not ignored")
	}
}
