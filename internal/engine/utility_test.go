package engine

import (
	"math"
	"testing"

	"github.com/aldemir/schelling-explorer/internal/agents"
	"github.com/aldemir/schelling-explorer/internal/grid"
)

// craftedModel builds a model with two registered groups (tolerance 0.5
// each), an empty grid of the given size, and a live ruleset, bypassing
// population so tests can lay out cells by hand.
func craftedModel(t *testing.T, w, h int, configure func(*Parameters)) *Model {
	t.Helper()

	m := NewModel(1)
	for i, name := range []string{"Group A", "Group B"} {
		g, err := agents.NewGroup(name, i)
		if err != nil {
			t.Fatal(err)
		}
		if err := g.SetPopulationPercent(0.5); err != nil {
			t.Fatal(err)
		}
		if err := g.SetTolerance(0.5); err != nil {
			t.Fatal(err)
		}
		if err := m.AddGroup(g); err != nil {
			t.Fatal(err)
		}
	}

	if err := m.params.SetSize(w, h); err != nil {
		t.Fatal(err)
	}
	if configure != nil {
		configure(m.params)
	}

	m.reset()
	m.rules = newRuleset(m.params)
	return m
}

// placeAgent writes the agent's mask into the grid and registers it.
func placeAgent(t *testing.T, m *Model, group int, x, y int, state agents.HappinessState) *agents.Agent {
	t.Helper()

	a, err := agents.NewAgent(m.groups[group], x, y)
	if err != nil {
		t.Fatal(err)
	}
	a.UpdateState(0)
	if state == agents.Happy {
		a.UpdateState(1)
	}
	m.agents = append(m.agents, a)
	m.grid.Set(x, y, a.Mask())
	return a
}

func TestEvaluateAbsolute(t *testing.T) {
	m := craftedModel(t, 3, 3, func(p *Parameters) {
		if err := p.SetBounds(grid.Bounded); err != nil {
			t.Fatal(err)
		}
	})

	// Around (1,1): three A, two B, three empty.
	placeAgent(t, m, 0, 0, 0, agents.Happy)
	placeAgent(t, m, 0, 1, 0, agents.Happy)
	placeAgent(t, m, 0, 2, 0, agents.Unhappy)
	placeAgent(t, m, 1, 0, 1, agents.Happy)
	placeAgent(t, m, 1, 2, 1, agents.Unhappy)

	got := Absolute.Evaluate(m, m.groups[0], 1, 1)
	if got != 3.0/8.0 {
		t.Fatalf("absolute evaluation = %v, want %v", got, 3.0/8.0)
	}
}

func TestEvaluateRelativeIgnoresEmpties(t *testing.T) {
	m := craftedModel(t, 3, 3, func(p *Parameters) {
		if err := p.SetBounds(grid.Bounded); err != nil {
			t.Fatal(err)
		}
	})

	placeAgent(t, m, 0, 0, 0, agents.Happy)
	placeAgent(t, m, 0, 1, 0, agents.Happy)
	placeAgent(t, m, 0, 2, 0, agents.Unhappy)
	placeAgent(t, m, 1, 0, 1, agents.Happy)
	placeAgent(t, m, 1, 2, 1, agents.Unhappy)

	got := Relative.Evaluate(m, m.groups[0], 1, 1)
	if got != 3.0/5.0 {
		t.Fatalf("relative evaluation = %v, want %v", got, 3.0/5.0)
	}
}

func TestEvaluateHappinessBitDoesNotMatter(t *testing.T) {
	m := craftedModel(t, 3, 3, func(p *Parameters) {
		if err := p.SetBounds(grid.Bounded); err != nil {
			t.Fatal(err)
		}
	})

	placeAgent(t, m, 0, 0, 0, agents.Happy)
	happy := Absolute.Evaluate(m, m.groups[0], 1, 1)

	m.grid.Set(0, 0, m.groups[0].UnhappyMask())
	unhappy := Absolute.Evaluate(m, m.groups[0], 1, 1)

	if happy != unhappy {
		t.Fatalf("happiness bit changed the evaluation: %v vs %v", happy, unhappy)
	}
}

func TestEvaluateRelativeEmptyNeighborhoodIsNaN(t *testing.T) {
	m := craftedModel(t, 3, 3, nil)

	got := Relative.Evaluate(m, m.groups[0], 1, 1)
	if !math.IsNaN(got) {
		t.Fatalf("relative evaluation of empty neighborhood = %v, want NaN", got)
	}
}

func TestEvaluateAbsoluteEmptyNeighborhoodIsZero(t *testing.T) {
	m := craftedModel(t, 3, 3, nil)

	got := Absolute.Evaluate(m, m.groups[0], 1, 1)
	if got != 0 {
		t.Fatalf("absolute evaluation of empty neighborhood = %v, want 0", got)
	}
}
