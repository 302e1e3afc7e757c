// traffic/snapshot.go
// Copyright(c) 2024-2026 jetbridge contributors, licensed under the GNU Public License, Version 3.
// SPDX: GPL-3.0-only

package traffic

import (
	"sync"
)

// SnapshotState is one pose sample of an externally fed aircraft, e.g.
// from a multiplayer feed.
type SnapshotState struct {
	Lat, Lon float32
	X, Y, Z  float32
	Psi      float32
	OnGround bool
	BeaconOn bool
}

// Snapshot adapts an externally fed traffic source to the Aircraft
// interface. The feed goroutine calls Update whenever new data arrives;
// the frame loop reads through the interface. The door list is fixed at
// construction since the aircraft type doesn't change mid-flight.
type Snapshot struct {
	mu    sync.Mutex
	state SnapshotState
	doors []Door
}

func NewSnapshot(doors []Door, initial SnapshotState) *Snapshot {
	return &Snapshot{state: initial, doors: doors}
}

// Update replaces the pose sample wholesale.
func (s *Snapshot) Update(state SnapshotState) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.state = state
}

func (s *Snapshot) Position() (lat, lon float32) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state.Lat, s.state.Lon
}

func (s *Snapshot) LocalPose() (x, y, z, psi float32) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state.X, s.state.Y, s.state.Z, s.state.Psi
}

func (s *Snapshot) Doors() []Door { return s.doors }

func (s *Snapshot) OnGround() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state.OnGround
}

func (s *Snapshot) BeaconOn() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state.BeaconOn
}
