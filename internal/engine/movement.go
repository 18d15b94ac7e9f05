package engine

import (
	"fmt"
	"math"

	"github.com/aldemir/schelling-explorer/internal/agents"
	"github.com/aldemir/schelling-explorer/internal/grid"
)

// MovementKind selects the algorithm that performs a single relocation
// event. The scheduler guarantees the move queue meets MinimumAgents before
// an invocation; implementations need not re-check.
type MovementKind uint8

const (
	// Physical pops one agent and searches the empty-cell list for a
	// maximum-utility destination.
	Physical MovementKind = iota
	// SwapPairs pops two agents and exchanges their locations
	// unconditionally.
	SwapPairs
)

// String returns the display name of the movement method.
func (k MovementKind) String() string {
	if k == Physical {
		return "Physical"
	}
	return "Swap"
}

// MinimumAgents returns how many queued agents one invocation consumes.
func (k MovementKind) MinimumAgents() int {
	if k == SwapPairs {
		return 2
	}
	return 1
}

// move performs exactly one relocation event against the model's move queue.
func (k MovementKind) move(m *Model) error {
	if k == SwapPairs {
		return swapMove(m)
	}
	return physicalMove(m)
}

// compareEval orders two evaluations, ranking NaN above every number. The
// candidate search and the happiness threshold both rely on this total
// order; a plain float comparison would silently drop NaN candidates under
// relative evaluation.
func compareEval(a, b float64) int {
	switch {
	case math.IsNaN(a):
		if math.IsNaN(b) {
			return 0
		}
		return 1
	case math.IsNaN(b):
		return -1
	case a < b:
		return -1
	case a > b:
		return 1
	default:
		return 0
	}
}

// physicalMove pops one random agent from the queue and, via an evaluation
// maximization over a random sample of empty cells, either relocates it to
// one of the best destinations found or leaves it in place.
//
// The baseline is asymmetric on purpose: a happy agent's current
// neighborhood counts as 1.0, while an unhappy agent's counts as its raw,
// untransformed evaluation. Candidate neighborhoods are transformed first --
// any evaluation meeting the agent's group tolerance is collapsed to 1.0, so
// all acceptable neighborhoods are equivalent and the margin above tolerance
// earns no extra credit (Hatna & Benenson's formulation). An unhappy agent
// therefore accepts strictly-better-but-still-unacceptable neighborhoods,
// while a happy one only accepts acceptable ones.
func physicalMove(m *Model) error {
	agent := m.popRandomMover()

	slot, ok := computeCandidates(m, agent)
	if !ok {
		return nil
	}
	return m.relocate(agent, slot)
}

// computeCandidates samples up to min(searchLimit, len(empty)) distinct
// empty cells with an in-place partial Knuth shuffle of the shared
// empty-cell list (a deliberate side effect: sampled cells move to the front
// and out of further consideration). It returns the index of a uniformly
// chosen maximum slot, or ok=false when no sampled cell reached the
// baseline.
func computeCandidates(m *Model, agent *agents.Agent) (slot int, ok bool) {
	searchLimit := m.rules.SearchLimit
	if len(m.empty) < searchLimit {
		searchLimit = len(m.empty)
	}

	best := 1.0
	if agent.State() != agents.Happy {
		best = m.rules.Utility.Evaluate(m, agent.Group(), agent.X(), agent.Y())
	}

	candidates := m.candidates[:0]
	for i := 0; i < searchLimit; i++ {
		swap := i + m.rng.Intn(len(m.empty)-i)
		m.empty[i], m.empty[swap] = m.empty[swap], m.empty[i]

		eval := m.rules.Utility.Evaluate(m, agent.Group(), m.empty[i].X, m.empty[i].Y)
		if compareEval(eval, agent.Group().Tolerance()) >= 0 {
			eval = 1.0
		}

		switch cmp := compareEval(eval, best); {
		case cmp > 0:
			candidates = candidates[:0]
			best = eval
			candidates = append(candidates, i)
		case cmp == 0:
			candidates = append(candidates, i)
		}
	}
	m.candidates = candidates

	if len(candidates) == 0 {
		return 0, false
	}
	return candidates[m.rng.Intn(len(candidates))], true
}

// swapMove pops two random agents and exchanges their grid locations with no
// evaluation at all; the exchange happens even if neither agent improves.
func swapMove(m *Model) error {
	a := m.popRandomMover()
	b := m.popRandomMover()
	return m.swapAgents(a, b)
}

// relocate moves the agent into the empty-cell slot, vacating its old cell.
// The empty-cell list entry is rewritten in place so its membership
// invariant holds: a coordinate is listed iff the grid cell is empty.
func (m *Model) relocate(a *agents.Agent, slot int) error {
	dest := m.empty[slot]
	if cell := m.grid.Get(dest.X, dest.Y); cell != grid.Empty {
		return fmt.Errorf("engine: relocation target (%d,%d) occupied by %#x", dest.X, dest.Y, cell)
	}

	old := grid.Point{X: a.X(), Y: a.Y()}
	if err := a.SetLocation(dest.X, dest.Y); err != nil {
		return err
	}
	m.grid.Set(dest.X, dest.Y, a.Mask())

	m.empty[slot] = old
	m.grid.Set(old.X, old.Y, grid.Empty)
	return nil
}

// swapAgents exchanges the coordinates of two agents and rewrites both grid
// cells with the occupants' state masks.
func (m *Model) swapAgents(a, b *agents.Agent) error {
	ax, ay := a.X(), a.Y()
	if err := a.SetLocation(b.X(), b.Y()); err != nil {
		return err
	}
	if err := b.SetLocation(ax, ay); err != nil {
		return err
	}
	m.grid.Set(a.X(), a.Y(), a.Mask())
	m.grid.Set(b.X(), b.Y(), b.Mask())
	return nil
}

// popRandomMover removes and returns a uniformly chosen agent from the move
// queue, preserving the order of the remaining entries.
func (m *Model) popRandomMover() *agents.Agent {
	i := m.rng.Intn(len(m.moveList))
	a := m.moveList[i]
	m.moveList = append(m.moveList[:i], m.moveList[i+1:]...)
	return a
}
