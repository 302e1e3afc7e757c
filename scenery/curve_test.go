// scenery/curve_test.go
// Copyright(c) 2024-2026 jetbridge contributors, licensed under the GNU Public License, Version 3.
// SPDX: GPL-3.0-only

package scenery

import (
	"testing"

	"github.com/mmp/jetbridge/math"
)

func makeCurve(t *testing.T, ts, vs []float32) *CurveTable {
	t.Helper()
	c := &CurveTable{Name: "test"}
	for i := range ts {
		if err := c.Add(ts[i], vs[i]); err != nil {
			t.Fatalf("Add(%g, %g): %v", ts[i], vs[i], err)
		}
	}
	return c
}

func TestCurveQuery(t *testing.T) {
	c := makeCurve(t, []float32{0, 10, 20}, []float32{0, 1, 0.5})

	for _, tc := range []struct {
		t, want float32
	}{
		{-5, 0},   // clamped below
		{0, 0},    // first sample
		{5, 0.5},  // midpoint of first segment
		{10, 1},   // exact sample
		{15, 0.75},
		{20, 0.5}, // last sample
		{25, 0.5}, // clamped above
	} {
		if got := c.Query(tc.t); math.Abs(got-tc.want) > 1e-5 {
			t.Errorf("Query(%g) = %g, want %g", tc.t, got, tc.want)
		}
	}
}

func TestCurveDuplicateTime(t *testing.T) {
	c := makeCurve(t, []float32{0, 10}, []float32{0, 1})

	// a sample at the same time overwrites, it does not append
	if err := c.Add(10, 2); err != nil {
		t.Fatalf("Add duplicate: %v", err)
	}
	if c.Len() != 2 {
		t.Errorf("Len() = %d after duplicate add, want 2", c.Len())
	}
	if got := c.Query(5); math.Abs(got-1) > 1e-5 {
		t.Errorf("Query(5) = %g after overwrite, want 1", got)
	}
	if got := c.Query(10); got != 2 {
		t.Errorf("Query(10) = %g after overwrite, want 2", got)
	}
}

func TestCurveOutOfOrder(t *testing.T) {
	c := makeCurve(t, []float32{0, 10}, []float32{0, 1})
	if err := c.Add(5, 0.5); err == nil {
		t.Errorf("out of order Add should fail")
	}
}

func TestCurvePeriodCyclic(t *testing.T) {
	c := makeCurve(t, []float32{0, 4}, []float32{0, 1})
	if c.Period() != 4 {
		t.Errorf("Period() = %g, want 4", c.Period())
	}

	if got := c.QueryCyclic(5, 0); math.Abs(got-0.25) > 1e-5 {
		t.Errorf("QueryCyclic(5, 0) = %g, want 0.25", got)
	}
	if got := c.QueryCyclic(5, 1); math.Abs(got-0.5) > 1e-5 {
		t.Errorf("QueryCyclic(5, 1) = %g, want 0.5", got)
	}

	empty := &CurveTable{}
	if empty.Period() != 0 || empty.Query(1) != 0 {
		t.Errorf("empty curve should report zero period and value")
	}
}

func TestAnimationToggle(t *testing.T) {
	c := makeCurve(t, []float32{0, 10}, []float32{0, 1})
	a := &Animation{Curve: c}

	if v := a.Value(0); v != 0 {
		t.Errorf("initial Value = %g, want 0", v)
	}

	a.Toggle(100)
	if a.State != AnimOff2On {
		t.Errorf("state after toggle: %v", a.State)
	}
	if v := a.Value(105); math.Abs(v-0.5) > 1e-5 {
		t.Errorf("Value(105) = %g, want 0.5", v)
	}
	if v := a.Value(111); v != 1 {
		t.Errorf("Value(111) = %g, want 1", v)
	}
	if a.State != AnimOn {
		t.Errorf("state after full traversal: %v", a.State)
	}

	// toggling while settled runs the full period backwards
	a.Toggle(120)
	if v := a.Value(125); math.Abs(v-0.5) > 1e-5 {
		t.Errorf("Value(125) = %g, want 0.5", v)
	}
	if v := a.Value(131); v != 0 {
		t.Errorf("Value(131) = %g, want 0", v)
	}
}

func TestAnimationReversalContinuity(t *testing.T) {
	c := makeCurve(t, []float32{0, 10}, []float32{0, 1})
	a := &Animation{Curve: c}

	a.Toggle(0)
	if v := a.Value(3); math.Abs(v-0.3) > 1e-5 {
		t.Fatalf("Value(3) = %g, want 0.3", v)
	}

	// reverse mid-flight; the value must be continuous
	a.Toggle(3)
	if v := a.Value(3); math.Abs(v-0.3) > 1e-4 {
		t.Errorf("Value(3) after reversal = %g, want 0.3", v)
	}
	if v := a.Value(4); math.Abs(v-0.2) > 1e-4 {
		t.Errorf("Value(4) after reversal = %g, want 0.2", v)
	}
	if v := a.Value(7); v != 0 {
		t.Errorf("Value(7) after reversal = %g, want 0", v)
	}
}
