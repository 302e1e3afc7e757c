// traffic/aircraft.go
// Copyright(c) 2024-2026 jetbridge contributors, licensed under the GNU Public License, Version 3.
// SPDX: GPL-3.0-only

package traffic

// Door is a boarding door position in aircraft-local coordinates:
// x to the right, y up, z aft, origin at the reference point the
// aircraft's pose is reported for.
type Door struct {
	X, Y, Z float32
}

// Aircraft is what the docking logic needs to know about a plane. The
// engine doesn't care whether the source is a local simulation, a
// multiplayer feed or a script.
type Aircraft interface {
	// Position returns the geographic position.
	Position() (lat, lon float32)

	// LocalPose returns the local-frame position and the true heading
	// in degrees.
	LocalPose() (x, y, z, psi float32)

	// Doors returns the boarding doors, lowest (LF1) first. The slice
	// must be stable while the aircraft is parked.
	Doors() []Door

	OnGround() bool
	BeaconOn() bool
}

// Scripted is a canned aircraft for tests and replay tooling; all fields
// may be poked directly between steps.
type Scripted struct {
	Lat, Lon float32
	X, Y, Z  float32
	Psi      float32
	DoorList []Door
	Ground   bool
	Beacon   bool
}

func (s *Scripted) Position() (lat, lon float32)       { return s.Lat, s.Lon }
func (s *Scripted) LocalPose() (x, y, z, psi float32)  { return s.X, s.Y, s.Z, s.Psi }
func (s *Scripted) Doors() []Door                      { return s.DoorList }
func (s *Scripted) OnGround() bool                     { return s.Ground }
func (s *Scripted) BeaconOn() bool                     { return s.Beacon }
