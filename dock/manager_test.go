// dock/manager_test.go
// Copyright(c) 2024-2026 jetbridge contributors, licensed under the GNU Public License, Version 3.
// SPDX: GPL-3.0-only

package dock

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/mmp/jetbridge/math"
	"github.com/mmp/jetbridge/scenery"
	"github.com/mmp/jetbridge/traffic"
)

// One jetway at local (-20, -10) relative to the 47°N/8°E frame origin,
// facing east, plus the same geometry as testJetway.
const managerScenery = `{
  "name": "Manager Test Airport",
  "jetways": [
    {
      "name": "gate1", "latitude": 47.00008999, "longitude": 7.99973610,
      "heading": 90, "height": 3,
      "wheelPos": 8, "cabinPos": 10, "cabinLength": 3,
      "wheelDiameter": 1, "wheelDistance": 2,
      "minRot1": -90, "maxRot1": 90, "minRot2": -90, "maxRot2": 90,
      "minRot3": -6, "maxRot3": 6, "minExtent": 0, "maxExtent": 20,
      "minWheels": -2, "maxWheels": 2,
      "initialRot1": 0, "initialRot2": 0, "initialRot3": 0, "initialExtent": 0.3
    }
  ],
  "stands": [
    { "id": "M1", "latitude": 47, "longitude": 8, "heading": 0 }
  ]
}`

const managerLibrary = `{"jetways": []}`

func makeTestManager(t *testing.T, prefix string) (*Manager, *traffic.Scripted, *EventsSubscription) {
	t.Helper()
	t.Setenv("XDG_CACHE_HOME", t.TempDir())

	dir := t.TempDir()
	lib := filepath.Join(dir, prefix+"_library.json")
	if err := os.WriteFile(lib, []byte(managerLibrary), 0644); err != nil {
		t.Fatal(err)
	}
	sc := filepath.Join(dir, prefix+"_scenery.json")
	if err := os.WriteFile(sc, []byte(managerScenery), 0644); err != nil {
		t.Fatal(err)
	}

	db, err := scenery.NewDatabase(lib, []string{sc}, scenery.Frame{Lat: 47, Lon: 8}, nil)
	if err != nil {
		t.Fatal(err)
	}

	ac := &traffic.Scripted{
		Lat: 47, Lon: 8,
		Y:        4,
		DoorList: []traffic.Door{{X: -2, Y: -1, Z: -15}},
		Ground:   true,
	}

	es := NewEventStream(nil)
	sub := es.Subscribe()
	return NewManager(db, ac, es, nil), ac, sub
}

// stepUntil runs the manager until it reaches the wanted state, at most
// maxSeconds of simulated time.
func stepUntil(t *testing.T, m *Manager, dt float32, want ManagerState, maxSeconds float32) {
	t.Helper()
	for i := 0; float32(i)*dt < maxSeconds; i++ {
		if m.State() == want {
			return
		}
		m.Step(dt)
	}
	t.Fatalf("state %s not reached, stuck in %s", want, m.State())
}

func TestManagerDockUndock(t *testing.T) {
	m, _, sub := makeTestManager(t, "dockundock")

	// one transition per step up to CanDock
	m.Step(0.5)
	if m.State() != StateParked {
		t.Fatalf("state after 1 step = %s, want Parked", m.State())
	}
	m.Step(0.5)
	if m.State() != StateSelectJetways {
		t.Fatalf("state after 2 steps = %s, want SelectJetways", m.State())
	}
	m.Step(0.5)
	if m.State() != StateCanDock {
		t.Fatalf("state after 3 steps = %s, want CanDock", m.State())
	}

	if m.Status() != 1 {
		t.Errorf("Status() = %d at CanDock, want 1", m.Status())
	}
	if m.ActiveCount() != 1 {
		t.Fatalf("ActiveCount() = %d, want 1", m.ActiveCount())
	}
	jw := m.ActiveJetways()[0].JW
	if jw.Name != "gate1" || !jw.Locked() {
		t.Errorf("active jetway %q, locked %v", jw.Name, jw.Locked())
	}

	m.RequestDock()
	m.Step(1.0 / 30)
	if m.State() != StateDocking {
		t.Fatalf("state after dock request = %s, want Docking", m.State())
	}
	if m.Status() != -1 {
		t.Errorf("Status() = %d while docking, want -1", m.Status())
	}

	stepUntil(t, m, 1.0/30, StateDocked, 50)
	if m.Status() != 2 {
		t.Errorf("Status() = %d when docked, want 2", m.Status())
	}
	if m.DoorStatus(0) != 1 || m.DoorStatus(1) != 0 {
		t.Errorf("DoorStatus = %d/%d, want 1/0", m.DoorStatus(0), m.DoorStatus(1))
	}

	m.RequestUndock()
	m.Step(1.0 / 30)
	if m.State() != StateUndocking {
		t.Fatalf("state after undock request = %s, want Undocking", m.State())
	}

	stepUntil(t, m, 1.0/30, StateIdle, 50)
	if m.Status() != 0 {
		t.Errorf("Status() = %d after undocking, want 0", m.Status())
	}
	if jw.Locked() {
		t.Errorf("jetway still locked after undocking")
	}
	if math.Abs(jw.Extent-jw.InitialExtent) > 0.3 {
		t.Errorf("jetway not parked after undocking, extent %g", jw.Extent)
	}

	// the full cycle must have been announced
	seen := make(map[EventType]bool)
	for _, ev := range sub.Get() {
		seen[ev.Type] = true
	}
	for _, want := range []EventType{DockingStartedEvent, AlertOnEvent, DockingCompletedEvent,
		AlertOffEvent, UndockingStartedEvent, UndockingCompletedEvent, StateChangeEvent} {
		if !seen[want] {
			t.Errorf("no %s event posted", want)
		}
	}
}

func TestManagerBeaconAbort(t *testing.T) {
	m, ac, _ := makeTestManager(t, "beacon")
	stepUntil(t, m, 0.5, StateCanDock, 10)

	ac.Beacon = true

	// the beacon only counts after the debounce time
	m.Step(0.5)
	m.Step(0.5)
	if m.State() != StateCanDock {
		t.Errorf("state = %s 1 s after beacon on, want CanDock", m.State())
	}

	stepUntil(t, m, 0.5, StateIdle, 10)
	if m.Status() != 0 || m.ActiveCount() != 0 {
		t.Errorf("selection survived the beacon abort")
	}
}

func TestManagerTeleportation(t *testing.T) {
	m, ac, _ := makeTestManager(t, "teleport")
	stepUntil(t, m, 0.5, StateCanDock, 10)

	jw := m.ActiveJetways()[0].JW
	ac.X = 5
	m.Step(0.5)

	// the jump resets the selection to idle; the same step then memorizes
	// the new position and starts over from parked
	if m.State() != StateParked {
		t.Errorf("state = %s after a 5 m jump, want Parked", m.State())
	}
	if m.ActiveCount() != 0 {
		t.Errorf("selection survived the teleportation")
	}
	if jw.Locked() {
		t.Errorf("jetway still locked after teleportation")
	}

	// the memorized position was updated, so the next steps settle again
	stepUntil(t, m, 0.5, StateCanDock, 10)
}

func TestManagerCantDock(t *testing.T) {
	m, ac, _ := makeTestManager(t, "cantdock")

	// park far away from any jetway
	ac.Lat, ac.Lon = 47.5, 8.5
	ac.X, ac.Z = 50000, -50000

	stepUntil(t, m, 0.5, StateCantDock, 10)
	if m.Status() != 0 {
		t.Errorf("Status() = %d at CantDock, want 0", m.Status())
	}

	// lifting off releases the state
	ac.Ground = false
	m.Step(0.5)
	m.Step(0.5)
	if m.State() != StateIdle {
		t.Errorf("state = %s after takeoff, want Idle", m.State())
	}
}

func TestManagerDockFailure(t *testing.T) {
	m, _, sub := makeTestManager(t, "dockfail")
	stepUntil(t, m, 0.5, StateCanDock, 10)

	m.RequestDock()
	m.Step(1.0 / 30)
	if m.State() != StateDocking {
		t.Fatalf("state = %s, want Docking", m.State())
	}

	// cripple the drive so it can't make it in time
	jw := m.ActiveJetways()[0].JW
	m.ActiveJetways()[0].timeout = 0.1

	stepUntil(t, m, 1.0/30, StateCantDock, 10)

	// the jetway reverted to its parked pose and the abort was announced
	if jw.Extent != jw.InitialExtent || jw.Locked() {
		t.Errorf("jetway not released after the failed dock")
	}
	aborted := false
	for _, ev := range sub.Get() {
		if ev.Type == DockingAbortedEvent {
			aborted = true
		}
	}
	if !aborted {
		t.Errorf("no DockingAborted event posted")
	}
}

func TestManagerDisable(t *testing.T) {
	m, _, _ := makeTestManager(t, "disable")
	stepUntil(t, m, 0.5, StateCanDock, 10)

	jw := m.ActiveJetways()[0].JW
	m.Disable()
	if m.State() != StateDisabled || jw.Locked() {
		t.Errorf("Disable did not release everything")
	}

	m.Step(0.5)
	if m.State() != StateDisabled {
		t.Errorf("a disabled manager stepped")
	}

	m.Enable()
	stepUntil(t, m, 0.5, StateCanDock, 10)
}
