// Package stats computes the derived per-tick metrics exposed to charting
// and rendering collaborators: percent-unhappy per group and interface
// density.
package stats

import (
	"github.com/aldemir/schelling-explorer/internal/agents"
	"github.com/aldemir/schelling-explorer/internal/engine"
	"github.com/aldemir/schelling-explorer/internal/grid"
)

// PercentUnhappy returns, per group id, the percentage of that group's
// agents currently queued as unhappy, relative to the group's dispensed
// population. Groups that dispensed no agents report zero.
func PercentUnhappy(m *engine.Model) []float64 {
	counts := make([]float64, len(m.Groups()))
	for _, a := range m.MoveQueue() {
		if a.State() == agents.Unhappy {
			counts[a.Group().ID()]++
		}
	}

	totals := m.GroupTotals()
	for i := range counts {
		if totals[i] == 0 {
			counts[i] = 0
			continue
		}
		counts[i] = counts[i] / float64(totals[i]) * 100.0
	}
	return counts
}

// InterfaceDensity returns the fraction of neighbor pairs between occupied
// cells that span two different groups, over the whole space. Every occupied
// cell contributes its radius-1 Moore neighborhood regardless of the run's
// search radius; empty cells contribute nothing, neither as centers nor as
// neighbors. The count is normalized by 8*n for n occupied cells, the pair
// capacity of a radius-1 neighborhood.
func InterfaceDensity(m *engine.Model) float64 {
	g := m.Grid()
	rules := m.Rules()
	// Local scratch: the engine's buffer belongs to the stepping path.
	sc := grid.NewScratch()

	crossPairs := 0.0
	for x := 0; x < g.Width(); x++ {
		for y := 0; y < g.Height(); y++ {
			center := g.Get(x, y)
			if center == grid.Empty {
				continue
			}

			g.MooreNeighbors(x, y, 1, rules.Bounds, sc)
			for i := 0; i < sc.Len(); i++ {
				neighbor := g.Get(sc.Xs[i], sc.Ys[i])
				if neighbor == grid.Empty {
					continue
				}
				if agents.GroupID(center) != agents.GroupID(neighbor) {
					crossPairs++
				}
			}
		}
	}

	occupied := g.Width()*g.Height() - len(m.EmptyCells())
	if occupied == 0 {
		return 0
	}
	return crossPairs / (float64(occupied) * 8.0)
}
