package engine

import (
	"github.com/aldemir/schelling-explorer/internal/agents"
	"github.com/aldemir/schelling-explorer/internal/grid"
)

// Evaluate scores the neighborhood at (x, y) from the perspective of an
// agent of the given group, returning the same-group neighbor fraction.
//
// Absolute counts every neighborhood slot in the denominator, so empty cells
// dilute the score and agents in sparse areas are penalized; it emphasizes
// spatial dominance. Relative counts occupied neighbors only, emphasizing a
// relative majority; when every neighbor is empty the division is 0/0 and
// the result is NaN, which the rest of the engine orders above every number
// rather than special-casing. Neither variant compares against tolerance;
// thresholding happens at the call sites.
func (u UtilityKind) Evaluate(m *Model, group *agents.Group, x, y int) float64 {
	sc := m.scratch
	m.grid.MooreNeighbors(x, y, m.rules.SearchRadius, m.rules.Bounds, sc)

	total := sc.Len()
	similar := 0

	for i := 0; i < sc.Len(); i++ {
		cell := m.grid.Get(sc.Xs[i], sc.Ys[i])
		if cell == grid.Empty {
			if u == Relative {
				total--
			}
			continue
		}
		if group.IsMember(cell) {
			similar++
		}
	}

	return float64(similar) / float64(total)
}
