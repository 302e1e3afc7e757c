// scenery/description.go
// Copyright(c) 2024-2026 jetbridge contributors, licensed under the GNU Public License, Version 3.
// SPDX: GPL-3.0-only

package scenery

import (
	"encoding/json"
	"fmt"

	"github.com/mmp/jetbridge/math"
	"github.com/mmp/jetbridge/util"
)

// The *Description types mirror the on-disk JSON scenery format; they are
// converted into the runtime types at load time. Scenery files may be
// zstd compressed.

type SceneryDescription struct {
	Name string `json:"name"`

	Jetways    []JetwayDescription    `json:"jetways,omitempty"`
	Stands     []StandDescription     `json:"stands,omitempty"`
	Objects    []ObjectDescription    `json:"objects,omitempty"`
	Curves     []CurveDescription     `json:"curves,omitempty"`
	Animations []AnimationDescription `json:"animations,omitempty"`
}

// LibraryDescription describes the shared jetway templates; each entry
// carries geometry and limits only, keyed by its library id.
type LibraryDescription struct {
	Jetways []JetwayDescription `json:"jetways"`
}

type JetwayDescription struct {
	ID    int    `json:"id,omitempty"` // library id; 0 for custom jetways
	Name  string `json:"name"`
	Sound string `json:"sound,omitempty"`

	Latitude  float32 `json:"latitude"`
	Longitude float32 `json:"longitude"`
	Heading   float32 `json:"heading"`
	Elevation float32 `json:"elevation"`
	Height    float32 `json:"height"`

	WheelPos      float32 `json:"wheelPos"`
	CabinPos      float32 `json:"cabinPos"`
	CabinLength   float32 `json:"cabinLength"`
	WheelDiameter float32 `json:"wheelDiameter"`
	WheelDistance float32 `json:"wheelDistance"`

	MinRot1   float32 `json:"minRot1"`
	MaxRot1   float32 `json:"maxRot1"`
	MinRot2   float32 `json:"minRot2"`
	MaxRot2   float32 `json:"maxRot2"`
	MinRot3   float32 `json:"minRot3"`
	MaxRot3   float32 `json:"maxRot3"`
	MinExtent float32 `json:"minExtent"`
	MaxExtent float32 `json:"maxExtent"`
	MinWheels float32 `json:"minWheels"`
	MaxWheels float32 `json:"maxWheels"`

	InitialRot1   float32 `json:"initialRot1"`
	InitialRot2   float32 `json:"initialRot2"`
	InitialRot3   float32 `json:"initialRot3"`
	InitialExtent float32 `json:"initialExtent"`

	ForDoorLocation string `json:"forDoorLocation,omitempty"` // "LF1" (default), "LF2", "LU1"
}

type StandDescription struct {
	ID        string  `json:"id"`
	Latitude  float32 `json:"latitude"`
	Longitude float32 `json:"longitude"`
	Heading   float32 `json:"heading"`
}

type ObjectDescription struct {
	ID        string  `json:"id"`
	Latitude  float32 `json:"latitude"`
	Longitude float32 `json:"longitude"`
	Elevation float32 `json:"elevation"`
	Heading   float32 `json:"heading"`
}

type CurveDescription struct {
	Name             string    `json:"name"`
	Autoplay         bool      `json:"autoplay,omitempty"`
	RandomizePhase   bool      `json:"randomizePhase,omitempty"`
	AugmentWindSpeed bool      `json:"augmentWindSpeed,omitempty"`
	T                []float32 `json:"t"`
	V                []float32 `json:"v"`
}

type AnimationDescription struct {
	Label  string `json:"label"`
	Title  string `json:"title"`
	Curve  string `json:"curve"`
	Object string `json:"object,omitempty"`
}

// ParseSceneryDescription decodes a scenery description file,
// decompressing transparently if it is zstd compressed.
func ParseSceneryDescription(path string) (*SceneryDescription, error) {
	r, err := util.LoadFile(path)
	if err != nil {
		return nil, err
	}
	defer r.Close()

	var d SceneryDescription
	if err := json.NewDecoder(r).Decode(&d); err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return &d, nil
}

func ParseLibraryDescription(path string) (*LibraryDescription, error) {
	r, err := util.LoadFile(path)
	if err != nil {
		return nil, err
	}
	defer r.Close()

	var d LibraryDescription
	if err := json.NewDecoder(r).Decode(&d); err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return &d, nil
}

func (d *JetwayDescription) Jetway() *Jetway {
	jw := &Jetway{
		LibraryID: d.ID,
		Name:      d.Name,
		Sound:     d.Sound,

		Latitude:  d.Latitude,
		Longitude: d.Longitude,
		Heading:   d.Heading,
		Elevation: d.Elevation,
		Height:    d.Height,

		WheelPos:      d.WheelPos,
		CabinPos:      d.CabinPos,
		CabinLength:   d.CabinLength,
		WheelDiameter: d.WheelDiameter,
		WheelDistance: d.WheelDistance,

		MinRot1: d.MinRot1, MaxRot1: d.MaxRot1,
		MinRot2: d.MinRot2, MaxRot2: d.MaxRot2,
		MinRot3: d.MinRot3, MaxRot3: d.MaxRot3,
		MinExtent: d.MinExtent, MaxExtent: d.MaxExtent,
		MinWheels: d.MinWheels, MaxWheels: d.MaxWheels,

		InitialRot1:   d.InitialRot1,
		InitialRot2:   d.InitialRot2,
		InitialRot3:   d.InitialRot3,
		InitialExtent: d.InitialExtent,
	}

	switch d.ForDoorLocation {
	case "LF2":
		jw.DoorSlot = DoorLF2
	case "LU1":
		jw.DoorSlot = DoorLU1
	default:
		jw.DoorSlot = DoorLF1
	}

	return jw
}

func (d *StandDescription) Stand() *Stand {
	return &Stand{
		ID:         d.ID,
		Lat:        d.Latitude,
		Lon:        d.Longitude,
		Heading:    d.Heading,
		SinHeading: math.Sin(math.Radians(d.Heading)),
		CosHeading: math.Cos(math.Radians(d.Heading)),
	}
}

func (d *ObjectDescription) Object() *Object {
	return &Object{
		ID:        d.ID,
		Latitude:  d.Latitude,
		Longitude: d.Longitude,
		Elevation: d.Elevation,
		Heading:   d.Heading,
	}
}

func (d *CurveDescription) CurveTable() (*CurveTable, error) {
	if len(d.T) != len(d.V) {
		return nil, fmt.Errorf("%s: %d sample times but %d values", d.Name, len(d.T), len(d.V))
	}

	c := &CurveTable{
		Name:             d.Name,
		Autoplay:         d.Autoplay,
		RandomizePhase:   d.RandomizePhase,
		AugmentWindSpeed: d.AugmentWindSpeed,
	}
	for i := range d.T {
		if err := c.Add(d.T[i], d.V[i]); err != nil {
			return nil, err
		}
	}
	return c, nil
}
