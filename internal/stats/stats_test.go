package stats

import (
	"testing"

	"github.com/aldemir/schelling-explorer/internal/agents"
	"github.com/aldemir/schelling-explorer/internal/engine"
)

func startedModel(t *testing.T, tolerance float64, configure func(*engine.Parameters)) *engine.Model {
	t.Helper()

	m := engine.NewModel(13)
	for i, name := range []string{"Group A", "Group B"} {
		g, err := agents.NewGroup(name, i)
		if err != nil {
			t.Fatal(err)
		}
		if err := g.SetPopulationPercent(0.5); err != nil {
			t.Fatal(err)
		}
		if err := g.SetTolerance(tolerance); err != nil {
			t.Fatal(err)
		}
		if err := m.AddGroup(g); err != nil {
			t.Fatal(err)
		}
	}
	if configure != nil {
		configure(m.Params())
	}
	if err := m.Start(); err != nil {
		t.Fatal(err)
	}
	return m
}

func TestInterfaceDensityUniformGridIsZero(t *testing.T) {
	m := startedModel(t, 0.5, func(p *engine.Parameters) {
		if err := p.SetSize(4, 4); err != nil {
			t.Fatal(err)
		}
		if err := p.SetDynamics(engine.SwapDynamics); err != nil {
			t.Fatal(err)
		}
	})

	mask := m.Groups()[0].HappyMask()
	for x := 0; x < 4; x++ {
		for y := 0; y < 4; y++ {
			m.Grid().Set(x, y, mask)
		}
	}

	if got := InterfaceDensity(m); got != 0 {
		t.Fatalf("uniform grid density = %v, want 0", got)
	}
}

func TestInterfaceDensityCheckerboard(t *testing.T) {
	m := startedModel(t, 0.5, func(p *engine.Parameters) {
		if err := p.SetSize(4, 4); err != nil {
			t.Fatal(err)
		}
		if err := p.SetDynamics(engine.SwapDynamics); err != nil {
			t.Fatal(err)
		}
	})

	a := m.Groups()[0].HappyMask()
	b := m.Groups()[1].HappyMask()
	for x := 0; x < 4; x++ {
		for y := 0; y < 4; y++ {
			if (x+y)%2 == 0 {
				m.Grid().Set(x, y, a)
			} else {
				m.Grid().Set(x, y, b)
			}
		}
	}

	// On a checkerboard torus every cell has 4 cross-group and 4 same-group
	// neighbors: 64 cross pairs over 16*8 slots.
	if got := InterfaceDensity(m); got != 0.5 {
		t.Fatalf("checkerboard density = %v, want 0.5", got)
	}
}

func TestInterfaceDensityIgnoresEmptyCells(t *testing.T) {
	m := startedModel(t, 0.5, func(p *engine.Parameters) {
		if err := p.SetSize(4, 4); err != nil {
			t.Fatal(err)
		}
		if err := p.SetPercentEmpty(0.5); err != nil {
			t.Fatal(err)
		}
	})

	// Collapse every occupied cell to one group: no cross-group pair can
	// exist, and empty neighbors must not count as one.
	mask := m.Groups()[0].HappyMask()
	for x := 0; x < 4; x++ {
		for y := 0; y < 4; y++ {
			if m.Grid().Get(x, y) != -1 {
				m.Grid().Set(x, y, mask)
			}
		}
	}

	if got := InterfaceDensity(m); got != 0 {
		t.Fatalf("single-group density = %v, want 0", got)
	}
}

func TestPercentUnhappyAllUnhappy(t *testing.T) {
	// On a 2x2 torus with both groups present, every neighborhood contains
	// the other group, so tolerance 1 leaves every agent unhappy after the
	// first update phase regardless of seed.
	m := startedModel(t, 1.0, func(p *engine.Parameters) {
		if err := p.SetSize(2, 2); err != nil {
			t.Fatal(err)
		}
		if err := p.SetDynamics(engine.SwapDynamics); err != nil {
			t.Fatal(err)
		}
	})

	if err := m.Step(); err != nil {
		t.Fatal(err)
	}

	got := PercentUnhappy(m)
	if len(got) != 2 || got[0] != 100 || got[1] != 100 {
		t.Fatalf("percent unhappy = %v, want [100 100]", got)
	}
}

func TestPercentUnhappyAllHappy(t *testing.T) {
	m := startedModel(t, 0.0, func(p *engine.Parameters) {
		if err := p.SetSize(6, 6); err != nil {
			t.Fatal(err)
		}
		if err := p.SetMoveChance(0); err != nil {
			t.Fatal(err)
		}
	})

	if err := m.Step(); err != nil {
		t.Fatal(err)
	}

	for i, v := range PercentUnhappy(m) {
		if v != 0 {
			t.Fatalf("group %d percent unhappy = %v, want 0", i, v)
		}
	}
}
