package engine

import (
	"fmt"
	"math"
	"math/rand"

	"github.com/aldemir/schelling-explorer/internal/agents"
)

// PopulationDispenser apportions a fixed total population across groups in a
// numerically static way: each group receives floor(total * share) units up
// front, and the rounding shortfall is handed out round-robin in group
// order. Dispensing order is randomized (uniformly across groups that still
// have quota, not weighted by remaining quota) but the terminal per-group
// totals are exact. Spatial randomness comes from the grid shuffle
// afterwards, not from here.
type PopulationDispenser struct {
	// available and remaining shrink together: available[i] is a group
	// index into the run's group list, remaining[i] its unspent quota.
	available []int
	remaining []int
}

// Clear empties the dispenser ahead of reuse.
func (d *PopulationDispenser) Clear() {
	d.available = d.available[:0]
	d.remaining = d.remaining[:0]
}

// HasMore reports whether any group retains quota.
func (d *PopulationDispenser) HasMore() bool {
	return len(d.remaining) > 0
}

// Initialize computes per-group quotas for the given total population. A
// group whose floored quota is zero is excluded entirely unless
// requireAtLeastOne forces it to a single unit (useful only on very small
// grids). The shortfall left by flooring is distributed one unit at a time
// across the quota-holding groups in order.
func (d *PopulationDispenser) Initialize(groups []*agents.Group, totalPopulation int, requireAtLeastOne bool) error {
	if len(groups) == 0 {
		return fmt.Errorf("%w: at least one group required", ErrInvalidArgument)
	}
	if totalPopulation < 1 {
		return fmt.Errorf("%w: total population must be positive, got %d", ErrInvalidArgument, totalPopulation)
	}

	d.Clear()

	for i, g := range groups {
		quota := int(math.Floor(float64(totalPopulation) * g.PopulationPercent()))
		if quota == 0 {
			if !requireAtLeastOne {
				continue
			}
			quota = 1
		}
		d.available = append(d.available, i)
		d.remaining = append(d.remaining, quota)
	}

	d.distributeRemainder(totalPopulation)
	return nil
}

// distributeRemainder tops up quotas until their sum matches the required
// population, cycling through the quota-holding groups in order. Some groups
// may end up one unit ahead of others.
func (d *PopulationDispenser) distributeRemainder(requiredPopulation int) {
	computed := 0
	for _, q := range d.remaining {
		computed += q
	}

	remainder := requiredPopulation - computed
	for i, cursor := 0, 0; i < remainder; i++ {
		d.remaining[cursor]++
		cursor++
		if cursor >= len(d.remaining) {
			cursor = 0
		}
	}
}

// NextAgent draws uniformly among the groups that still have quota, spends
// one unit of the winner's quota, and returns the winner's group index.
// Exhausted groups drop out of consideration. Calling NextAgent on an empty
// dispenser is a programmer error and panics.
func (d *PopulationDispenser) NextAgent(rng *rand.Rand) int {
	pick := rng.Intn(len(d.available))
	group := d.available[pick]

	d.remaining[pick]--
	if d.remaining[pick] <= 0 {
		// Ordered removal keeps the group-order invariant for later draws.
		d.available = append(d.available[:pick], d.available[pick+1:]...)
		d.remaining = append(d.remaining[:pick], d.remaining[pick+1:]...)
	}

	return group
}
