// dock/manager.go
// Copyright(c) 2024-2026 jetbridge contributors, licensed under the GNU Public License, Version 3.
// SPDX: GPL-3.0-only

package dock

import (
	"time"

	"github.com/mmp/jetbridge/log"
	"github.com/mmp/jetbridge/math"
	"github.com/mmp/jetbridge/scenery"
	"github.com/mmp/jetbridge/traffic"
)

type ManagerState int

const (
	StateDisabled ManagerState = iota
	StateIdle
	StateParked
	StateSelectJetways
	StateCanDock
	StateCantDock
	StateDocking
	StateDocked
	StateUndocking
)

func (s ManagerState) String() string {
	return []string{"Disabled", "Idle", "Parked", "SelectJetways", "CanDock",
		"CantDock", "Docking", "Docked", "Undocking"}[s]
}

const (
	// Start of the per-door drives is staggered by this much.
	staggerDelay = 5.0 // s

	// State transitions of the beacon and the on-ground flag only count
	// after they persisted this long; this guards against power
	// transients (e.g. when switching to the APU generator) and gear
	// bounce.
	beaconDebounce   = 3.0  // s
	onGroundDebounce = 10.0 // s
)

// Manager runs the per-aircraft docking state machine: it watches the
// plane, finds and selects jetways once it is parked, and owns the active
// controllers through the docking and undocking drives.
type Manager struct {
	db *scenery.Database
	es *EventStream
	ac traffic.Aircraft
	lg *log.Logger

	state     ManagerState
	prevState ManagerState

	nearest []*Controller
	active  []*Controller // one per served door

	clock float32

	dockRequested   bool
	undockRequested bool
	toggleRequested bool

	// debounced inputs
	beaconOn      bool
	beaconPending bool
	beaconTS      float32
	onGround      bool
	onGroundTS    float32

	// parked position for teleportation detection
	parkedX, parkedZ float32
}

func NewManager(db *scenery.Database, ac traffic.Aircraft, es *EventStream, lg *log.Logger) *Manager {
	return &Manager{
		db:         db,
		es:         es,
		ac:         ac,
		lg:         lg,
		state:      StateIdle,
		prevState:  StateDisabled,
		onGround:   ac.OnGround(),
		beaconTS:   -beaconDebounce,
		onGroundTS: -onGroundDebounce,
	}
}

func (m *Manager) State() ManagerState { return m.state }

// Status returns the docking status for external consumers:
//
//	 0 = no jetway
//	 1 = can dock
//	 2 = docked
//	-1 = can't dock or in transit
func (m *Manager) Status() int {
	if len(m.active) == 0 {
		return 0
	}
	if m.state == StateCanDock {
		return 1
	}
	if m.state == StateDocked {
		return 2
	}
	return -1
}

// DoorStatus returns 1 if a jetway is docked at the given door, else 0.
func (m *Manager) DoorStatus(door int) int {
	for _, c := range m.active {
		if c.Door == door && c.State == DriveDocked {
			return 1
		}
	}
	return 0
}

// ActiveCount returns the number of jetways assigned to doors.
func (m *Manager) ActiveCount() int { return len(m.active) }

// ActiveJetways returns the jetways assigned to doors, indexed by door.
func (m *Manager) ActiveJetways() []*Controller { return m.active }

// RequestDock asks for docking; it is honored on the next Step if the
// plane can dock.
func (m *Manager) RequestDock() {
	if m.state == StateCanDock {
		m.dockRequested = true
	}
}

// RequestUndock asks for undocking; it is honored on the next Step if the
// plane is docked.
func (m *Manager) RequestUndock() {
	if m.state == StateDocked {
		m.undockRequested = true
	}
}

// RequestToggle docks or undocks, whichever applies.
func (m *Manager) RequestToggle() {
	if m.state == StateCanDock || m.state == StateDocked {
		m.toggleRequested = true
	}
}

// Disable aborts everything and stops the state machine; jetways snap to
// their parked pose.
func (m *Manager) Disable() {
	m.resetJetways()
	m.state = StateDisabled
}

// Enable restarts a disabled state machine.
func (m *Manager) Enable() {
	if m.state == StateDisabled {
		m.state = StateIdle
	}
}

// resetJetways resets and releases everything we ever touched.
func (m *Manager) resetJetways() {
	for _, c := range m.active {
		c.Reset()
	}
	for _, c := range m.nearest {
		c.JW.Unlock()
	}
	m.active = nil
	m.nearest = nil
}

// updateInputs debounces the beacon and the on-ground flag.
func (m *Manager) updateInputs() {
	if og := m.ac.OnGround(); og != m.onGround && m.clock > m.onGroundTS+onGroundDebounce {
		m.onGround = og
		m.onGroundTS = m.clock
		m.lg.Infof("transition to on_ground: %v", og)
	}

	if m.ac.BeaconOn() {
		if !m.beaconPending {
			m.beaconTS = m.clock
			m.beaconPending = true
		} else if m.clock > m.beaconTS+beaconDebounce {
			m.beaconOn = true
		}
	} else {
		if m.beaconPending {
			m.beaconTS = m.clock
			m.beaconPending = false
		} else if m.clock > m.beaconTS+beaconDebounce {
			m.beaconOn = false
		}
	}
}

func (m *Manager) checkTeleportation() bool {
	if !m.onGround {
		return false
	}

	x, _, z, _ := m.ac.LocalPose()
	if math.Abs(m.parkedX-x) > 1 || math.Abs(m.parkedZ-z) > 1 {
		m.lg.Infof("teleportation: parked_x: %0.3f, x: %0.3f, parked_z: %0.3f, z: %0.3f",
			m.parkedX, x, m.parkedZ, z)
		return true
	}

	return false
}

// Step advances the state machine by dt seconds. It is the only method
// that mutates jetway poses.
func (m *Manager) Step(dt float32) {
	if m.state == StateDisabled {
		return
	}

	m.clock += dt
	m.updateInputs()

	newState := m.state

	if m.state > StateIdle && m.checkTeleportation() {
		m.lg.Warnf("teleportation detected!")
		m.state, newState = StateIdle, StateIdle
		m.resetJetways()
	}

	doors := m.ac.Doors()

	switch m.state {
	case StateIdle:
		if m.prevState != StateIdle {
			m.resetJetways()
		}

		if m.onGround && !m.beaconOn {
			// memorize the position for teleportation detection
			m.parkedX, _, m.parkedZ, _ = m.ac.LocalPose()

			// reset stale command invocations
			m.dockRequested, m.undockRequested, m.toggleRequested = false, false, false

			newState = StateParked
		}

	case StateParked:
		if m.nearest = FindNearestJetways(m.db, m.ac, m.lg); len(m.nearest) > 0 {
			newState = StateSelectJetways
		} else {
			newState = StateCantDock
		}

	case StateSelectJetways:
		if m.beaconOn {
			m.lg.Infof("SelectJetways and beacon goes on")
			newState = StateIdle
			break
		}

		m.active = SelectJetways(m.nearest, len(doors))
		if len(m.active) == 0 {
			m.lg.Warnf("no active jetways left after selection")
			newState = StateCantDock
			break
		}

		for _, c := range m.active {
			m.lg.Infof("setting up active jw for door: %d", c.Door)
			c.SetupForDoor(m.ac, doors[c.Door])
			if c.Door == 0 {
				// slightly slant towards the nose cone for door LF1
				c.doorRot2 = math.Clamp(c.doorRot2+3, c.JW.MinRot2, c.JW.MaxRot2)
			}
		}

		// Pre-flight with the real per-door targets: a jetway whose docked
		// tunnel would cross a lower door's one is dropped now, before it
		// can be stranded mid-drive.
		kept := m.active[:0]
		for _, c := range m.active {
			crosses := false
			for _, o := range kept {
				dx := doors[o.Door].X - doors[c.Door].X
				dz := doors[o.Door].Z - doors[c.Door].Z
				if c.CollidesWithDocked(o, dx, dz) {
					crosses = true
					break
				}
			}
			if crosses {
				m.lg.Infof("dropping %s for door %d, docked poses would collide", c.JW.Name, c.Door)
				c.Reset()
				continue
			}
			kept = append(kept, c)
		}
		m.active = kept

		newState = StateCanDock

	case StateCanDock:
		if m.beaconOn {
			m.lg.Infof("CanDock and beacon goes on")
			newState = StateIdle
			break
		}

		if m.dockRequested || m.toggleRequested {
			m.lg.Infof("docking requested")

			// staggered start for docking, low to high
			for i, c := range m.active {
				c.SetupDockUndock(float32(i) * staggerDelay)
				m.postDrive(DockingStartedEvent, c)
			}

			newState = StateDocking
		}

	case StateCantDock:
		if !m.onGround || m.beaconOn {
			newState = StateIdle
		}

	case StateDocking:
		nDone := 0
		for _, c := range m.active {
			wasDone := c.State == DriveDocked || c.Failed()
			if c.DockDrive(dt) {
				nDone++
				if !wasDone {
					if c.Failed() {
						m.postDrive(DockingAbortedEvent, c)
					} else {
						m.postDrive(DockingCompletedEvent, c)
					}
					m.postAlert(AlertOffEvent, c)
				}
			}
		}

		if nDone == len(m.active) {
			docked := 0
			for _, c := range m.active {
				if c.State == DriveDocked {
					docked++
				}
			}
			if docked > 0 {
				newState = StateDocked
			} else {
				newState = StateCantDock
			}
		}

	case StateDocked:
		if !m.onGround {
			newState = StateIdle
			break
		}

		if m.beaconOn {
			m.lg.Infof("Docked and beacon goes on")
			m.undockRequested = true
		}

		if m.undockRequested || m.toggleRequested {
			m.lg.Infof("undocking requested")

			// staggered start for undocking, high to low
			n := len(m.active)
			for i, c := range m.active {
				c.SetupDockUndock(float32(n-1-i) * staggerDelay)
				m.postDrive(UndockingStartedEvent, c)
			}

			newState = StateUndocking
		}

	case StateUndocking:
		nDone := 0
		for _, c := range m.active {
			wasDone := c.State == DriveParked
			if c.UndockDrive(dt) {
				nDone++
				if !wasDone {
					m.postDrive(UndockingCompletedEvent, c)
					m.postAlert(AlertOffEvent, c)
				}
			}
		}

		if nDone == len(m.active) {
			newState = StateIdle
		}

	default:
		m.lg.Errorf("bad state %d", m.state)
		newState = StateDisabled
	}

	m.dockRequested, m.undockRequested, m.toggleRequested = false, false, false

	m.prevState = m.state

	if newState != m.state {
		m.lg.Infof("state transition %s -> %s, beacon: %v", m.state, newState, m.beaconOn)
		m.es.Post(Event{
			Type:      StateChangeEvent,
			FromState: m.state,
			ToState:   newState,
			Time:      time.Now(),
		})
		m.state = newState

		// from anywhere to idle nullifies all selections
		if m.state == StateIdle {
			m.resetJetways()
		}
	}
}

func (m *Manager) postDrive(t EventType, c *Controller) {
	m.es.Post(Event{
		Type:   t,
		Jetway: c.JW.Name,
		Door:   c.Door,
		Time:   time.Now(),
	})
	if t == DockingStartedEvent || t == UndockingStartedEvent {
		m.postAlert(AlertOnEvent, c)
	}
}

// postAlert posts the warning sound cue with the cabin position for
// spatialization. A soft-matched jetway stays quiet; its cabin ends up
// short of the door and the alert would mislead the ground crew.
func (m *Manager) postAlert(t EventType, c *Controller) {
	if c.SoftMatch {
		return
	}
	m.es.Post(Event{
		Type:   t,
		Jetway: c.JW.Name,
		Door:   c.Door,
		CabinX: float32(c.cabinX),
		CabinZ: float32(c.cabinZ),
		Time:   time.Now(),
	})
}
