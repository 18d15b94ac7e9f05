package agents

import (
	"math"
	"testing"
)

func TestGroupMaskEncoding(t *testing.T) {
	g, err := NewGroup("Group A", 3)
	if err != nil {
		t.Fatal(err)
	}

	happy := g.HappyMask()
	unhappy := g.UnhappyMask()

	if happy != int32(3)<<16 {
		t.Fatalf("happy mask = %#x", happy)
	}
	if unhappy >= 0 {
		t.Fatal("unhappy mask should have the sign bit set")
	}
	if GroupID(happy) != 3 || GroupID(unhappy) != 3 {
		t.Fatalf("decoded ids %d, %d, want 3", GroupID(happy), GroupID(unhappy))
	}
	if !g.IsMember(happy) || !g.IsMember(unhappy) {
		t.Fatal("group does not recognize its own masks")
	}

	other, _ := NewGroup("Group B", 4)
	if other.IsMember(happy) {
		t.Fatal("wrong group claims the cell")
	}
}

func TestNewGroupValidation(t *testing.T) {
	if _, err := NewGroup("", 0); err == nil {
		t.Error("empty name accepted")
	}
	if _, err := NewGroup("x", -1); err == nil {
		t.Error("negative id accepted")
	}
	if _, err := NewGroup("x", 256); err == nil {
		t.Error("id above the packing range accepted")
	}
}

func TestSetterRejectionKeepsPriorValue(t *testing.T) {
	g, _ := NewGroup("Group A", 0)
	if err := g.SetTolerance(0.4); err != nil {
		t.Fatal(err)
	}

	if err := g.SetTolerance(1.5); err == nil {
		t.Fatal("tolerance above 1 accepted")
	}
	if g.Tolerance() != 0.4 {
		t.Fatalf("rejected set changed tolerance to %v", g.Tolerance())
	}

	if err := g.SetPopulationPercent(-0.1); err == nil {
		t.Fatal("negative population percent accepted")
	}
	if err := g.SetName(""); err == nil {
		t.Fatal("empty name accepted")
	}
	if g.Name() != "Group A" {
		t.Fatalf("rejected set changed name to %q", g.Name())
	}
}

func TestAgentStartsUnhappy(t *testing.T) {
	g, _ := NewGroup("Group A", 0)
	a, err := NewAgent(g, 2, 5)
	if err != nil {
		t.Fatal(err)
	}
	if a.State() != Unhappy {
		t.Fatalf("initial state = %v, want Unhappy", a.State())
	}
	if a.Mask() != g.UnhappyMask() {
		t.Fatalf("initial mask = %#x", a.Mask())
	}
}

func TestAgentUpdateState(t *testing.T) {
	g, _ := NewGroup("Group A", 0)
	g.SetTolerance(0.5)
	a, _ := NewAgent(g, 0, 0)

	cases := []struct {
		eval float64
		want HappinessState
	}{
		{0.0, Unhappy},
		{0.49, Unhappy},
		{0.5, Happy},
		{1.0, Happy},
		{math.NaN(), Happy},
	}
	for _, tc := range cases {
		a.UpdateState(tc.eval)
		if a.State() != tc.want {
			t.Errorf("UpdateState(%v): state = %v, want %v", tc.eval, a.State(), tc.want)
		}
	}
}

func TestAgentSetLocation(t *testing.T) {
	g, _ := NewGroup("Group A", 0)
	a, _ := NewAgent(g, 0, 0)

	if err := a.SetLocation(3, 4); err != nil {
		t.Fatal(err)
	}
	if a.X() != 3 || a.Y() != 4 {
		t.Fatalf("location = (%d,%d)", a.X(), a.Y())
	}
	if err := a.SetLocation(-1, 0); err == nil {
		t.Fatal("negative coordinate accepted")
	}
}
