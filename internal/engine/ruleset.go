package engine

import "github.com/aldemir/schelling-explorer/internal/grid"

// DynamicsKind selects which relocation policy a run uses. The three
// variants form a closed set; each fixes the movement method and whether
// empty cells and happy-agent relocation exist at all.
type DynamicsKind uint8

const (
	// Liquid dynamics: empty cells exist, unhappy agents search for new
	// locations, and happy agents occasionally volunteer to relocate to a
	// neighborhood of equal utility, keeping the space in motion.
	Liquid DynamicsKind = iota
	// Solid dynamics: empty cells exist but only unhappy agents move;
	// such runs typically freeze after a short number of ticks.
	Solid
	// SwapDynamics: no empty cells; pairs of queued agents exchange
	// locations directly.
	SwapDynamics
)

// String returns the display name of the dynamics variant.
func (d DynamicsKind) String() string {
	switch d {
	case Liquid:
		return "Liquid"
	case Solid:
		return "Solid"
	default:
		return "Swap"
	}
}

// AllowsEmptyCells reports whether grid initialization reserves any empty
// capacity.
func (d DynamicsKind) AllowsEmptyCells() bool { return d != SwapDynamics }

// AllowsHappyRelocation reports whether happy agents may still be queued for
// movement.
func (d DynamicsKind) AllowsHappyRelocation() bool { return d == Liquid }

// Movement returns the movement method the dynamics variant runs.
func (d DynamicsKind) Movement() MovementKind {
	if d == SwapDynamics {
		return SwapPairs
	}
	return Physical
}

// UtilityKind selects the neighborhood evaluation algorithm.
type UtilityKind uint8

const (
	// Absolute divides same-group neighbors by every neighborhood slot, so
	// sparse neighborhoods penalize the agent.
	Absolute UtilityKind = iota
	// Relative divides by occupied neighbors only; a fully empty
	// neighborhood yields NaN.
	Relative
)

// String returns the display name of the utility variant.
func (u UtilityKind) String() string {
	if u == Absolute {
		return "Absolute"
	}
	return "Relative"
}

// UpdaterKind selects how far the move queue is drained per tick.
type UpdaterKind uint8

const (
	// Batch repeatedly applies the movement method until the queue no
	// longer meets its minimum.
	Batch UpdaterKind = iota
	// Single applies the movement method at most once per tick and
	// discards the rest of the queue.
	Single
)

// String returns the display name of the updater variant.
func (u UpdaterKind) String() string {
	if u == Batch {
		return "Batch"
	}
	return "Single"
}

// Ruleset is the immutable per-run snapshot of everything movement and
// update logic consults. It is built once from the Parameters when a run
// starts, shielding the run from mid-flight configuration edits.
type Ruleset struct {
	Bounds       grid.Bounds
	SearchRadius int
	SearchLimit  int
	MoveChance   float64
	Dynamics     DynamicsKind
	Utility      UtilityKind
	Updater      UpdaterKind
	Movement     MovementKind
}

func newRuleset(p *Parameters) Ruleset {
	return Ruleset{
		Bounds:       p.Bounds(),
		SearchRadius: p.SearchRadius(),
		SearchLimit:  p.SearchLimit(),
		MoveChance:   p.MoveChance(),
		Dynamics:     p.Dynamics(),
		Utility:      p.Utility(),
		Updater:      p.Updater(),
		Movement:     p.Dynamics().Movement(),
	}
}
