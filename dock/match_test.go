// dock/match_test.go
// Copyright(c) 2024-2026 jetbridge contributors, licensed under the GNU Public License, Version 3.
// SPDX: GPL-3.0-only

package dock

import (
	"testing"

	"github.com/mmp/jetbridge/scenery"
)

func TestFilterCandidate(t *testing.T) {
	ac := testAircraft()
	door := ac.DoorList[0]

	c := filterCandidate(testJetway(), ac, door, nil)
	if c == nil {
		t.Fatal("good candidate rejected")
	}
	if c.SoftMatch {
		t.Errorf("good candidate is only a soft match")
	}

	// on the right side of the plane
	jw := testJetway()
	jw.X = 5
	if filterCandidate(jw, ac, door, nil) != nil {
		t.Errorf("jetway on the right side accepted")
	}

	// rotunda on the left but pointing away from the plane
	jw = testJetway()
	jw.Psi = 0
	if filterCandidate(jw, ac, door, nil) != nil {
		t.Errorf("jetway pointing away accepted")
	}

	// too far west
	jw = testJetway()
	jw.X = -100
	if filterCandidate(jw, ac, door, nil) != nil {
		t.Errorf("jetway 98 m out accepted")
	}

	// too far along the fuselage
	jw = testJetway()
	jw.Z = 100
	if filterCandidate(jw, ac, door, nil) != nil {
		t.Errorf("jetway 115 m aft accepted")
	}

	// already in use
	jw = testJetway()
	jw.TryLock()
	if filterCandidate(jw, ac, door, nil) != nil {
		t.Errorf("locked jetway accepted")
	}
}

func TestFilterCandidateSoftMatch(t *testing.T) {
	ac := testAircraft()
	door := ac.DoorList[0]

	// needs 5.8 m of extension but claims a 3 m maximum
	jw := testJetway()
	jw.MaxExtent = 3
	c := filterCandidate(jw, ac, door, nil)
	if c == nil {
		t.Fatal("near miss on the extension rejected")
	}
	if !c.SoftMatch {
		t.Errorf("near miss not flagged as a soft match")
	}

	// needs 45 m of extension, way beyond any plausible limit
	jw = testJetway()
	jw.X = -60
	if filterCandidate(jw, ac, door, nil) != nil {
		t.Errorf("jetway 25 m short of reaching accepted")
	}
}

func hardController(name string) *Controller {
	return &Controller{JW: &scenery.Jetway{Name: name}}
}

func TestSelectJetways(t *testing.T) {
	if SelectJetways([]*Controller{hardController("a")}, 0) != nil {
		t.Errorf("selection for zero doors should be empty")
	}

	// a soft match is passed over when a hard match exists
	soft := hardController("soft")
	soft.SoftMatch = true
	hard := hardController("hard")
	active := SelectJetways([]*Controller{soft, hard}, 1)
	if len(active) != 1 || active[0] != hard {
		t.Fatalf("selected %v, want the hard match", active)
	}
	if active[0].Door != 0 {
		t.Errorf("door = %d, want 0", active[0].Door)
	}

	// without a hard match the soft one is used
	active = SelectJetways([]*Controller{soft}, 1)
	if len(active) != 1 || active[0] != soft {
		t.Errorf("soft match not used as a fallback")
	}

	// one jetway per door
	a, b := hardController("a"), hardController("b")
	active = SelectJetways([]*Controller{a, b}, 1)
	if len(active) != 1 {
		t.Errorf("selected %d jetways for 1 door", len(active))
	}
	active = SelectJetways([]*Controller{a, b}, 2)
	if len(active) != 2 || active[0].Door != 0 || active[1].Door != 1 {
		t.Errorf("two door selection wrong: %v", active)
	}
}

func TestSelectJetwaysCollision(t *testing.T) {
	// c1's extended tunnel crosses c2's parked one, so c1 must yield
	c1 := segmentController("c1", -18, 5, -3, 0, 0)
	c2 := segmentController("c2", -10, -8, -3, -10, 8)

	active := SelectJetways([]*Controller{c1, c2}, 2)
	if len(active) != 1 || active[0] != c2 {
		t.Errorf("collision not skipped, active: %v", active)
	}
	if active[0].Door != 0 {
		t.Errorf("door = %d, want 0", active[0].Door)
	}
}
