// Package engine implements the segregation simulation proper: the mutable
// run parameters and their immutable per-run Ruleset snapshot, the
// population dispenser, neighborhood utility evaluation, the movement
// strategies and dynamics policies, and the tick scheduler that ties them
// together.
package engine

import (
	"errors"
	"fmt"

	"github.com/aldemir/schelling-explorer/internal/grid"
)

// Sentinel errors for validation and lookup failures.
var (
	// ErrInvalidArgument rejects an out-of-range parameter; the previous
	// value is always retained.
	ErrInvalidArgument = errors.New("engine: invalid argument")
	// ErrNoSuchGroup reports a group-by-name lookup miss.
	ErrNoSuchGroup = errors.New("engine: no such group")
)

// Default parameter values, mirroring the reference model configuration.
const (
	DefaultWidth        = 100
	DefaultHeight       = 100
	DefaultPercentEmpty = 0.02
	DefaultSearchRadius = 1
	DefaultSearchLimit  = 30
	DefaultMoveChance   = 0.02
	DefaultMaxSteps     = 30000
	DefaultShuffleTimes = 4
)

// Parameters is the user-facing, mutable configuration of a simulation.
// Setters validate their input and leave the previous value untouched on
// rejection, so a running simulation is never fed a half-updated
// configuration; the engine additionally snapshots everything into a Ruleset
// at run start.
type Parameters struct {
	width        int
	height       int
	percentEmpty float64
	bounds       grid.Bounds
	searchRadius int
	searchLimit  int
	moveChance   float64
	maxSteps     int
	shuffleTimes int
	stopOnEquil  bool
	dynamics     DynamicsKind
	utility      UtilityKind
	updater      UpdaterKind
}

// NewParameters returns a Parameters with the default configuration:
// 100x100 toroidal space, 2% empty, radius 1, search limit 30, move chance
// 2%, liquid dynamics, absolute utility, single updater.
func NewParameters() *Parameters {
	return &Parameters{
		width:        DefaultWidth,
		height:       DefaultHeight,
		percentEmpty: DefaultPercentEmpty,
		bounds:       grid.Toroidal,
		searchRadius: DefaultSearchRadius,
		searchLimit:  DefaultSearchLimit,
		moveChance:   DefaultMoveChance,
		maxSteps:     DefaultMaxSteps,
		shuffleTimes: DefaultShuffleTimes,
		stopOnEquil:  false,
		dynamics:     Liquid,
		utility:      Absolute,
		updater:      Single,
	}
}

// Width returns the simulation space width in cells.
func (p *Parameters) Width() int { return p.width }

// Height returns the simulation space height in cells.
func (p *Parameters) Height() int { return p.height }

// PercentEmpty returns the fraction of cells that start unoccupied.
func (p *Parameters) PercentEmpty() float64 { return p.percentEmpty }

// Bounds returns the boundary geometry.
func (p *Parameters) Bounds() grid.Bounds { return p.bounds }

// SearchRadius returns the Moore neighborhood radius.
func (p *Parameters) SearchRadius() int { return p.searchRadius }

// SearchLimit returns the maximum number of empty cells sampled per
// relocation attempt.
func (p *Parameters) SearchLimit() int { return p.searchLimit }

// MoveChance returns the probability that a happy agent volunteers to
// relocate under liquid dynamics.
func (p *Parameters) MoveChance() float64 { return p.moveChance }

// MaxSteps returns the tick budget before a run is forced to stop.
func (p *Parameters) MaxSteps() int { return p.maxSteps }

// ShuffleTimes returns how many times the populated grid is shuffled before
// a run commences.
func (p *Parameters) ShuffleTimes() int { return p.shuffleTimes }

// StopOnEquilibrium reports whether a run halts once no unhappy agents
// remain queued.
func (p *Parameters) StopOnEquilibrium() bool { return p.stopOnEquil }

// Dynamics returns the selected dynamics variant.
func (p *Parameters) Dynamics() DynamicsKind { return p.dynamics }

// Utility returns the selected utility evaluator variant.
func (p *Parameters) Utility() UtilityKind { return p.utility }

// Updater returns the selected move-queue consumption policy.
func (p *Parameters) Updater() UpdaterKind { return p.updater }

// SetSize sets the simulation space dimensions; both must be at least 1.
func (p *Parameters) SetSize(w, h int) error {
	if w < 1 || h < 1 {
		return fmt.Errorf("%w: dimensions must be positive, got %dx%d", ErrInvalidArgument, w, h)
	}
	p.width, p.height = w, h
	return nil
}

// SetPercentEmpty sets the starting empty-cell fraction, in [0, 1].
func (p *Parameters) SetPercentEmpty(v float64) error {
	if v < 0 || v > 1 {
		return fmt.Errorf("%w: percent empty %v outside [0, 1]", ErrInvalidArgument, v)
	}
	p.percentEmpty = v
	return nil
}

// SetBounds selects bounded or toroidal geometry.
func (p *Parameters) SetBounds(b grid.Bounds) error {
	if b != grid.Bounded && b != grid.Toroidal {
		return fmt.Errorf("%w: unknown bounds mode %d", ErrInvalidArgument, b)
	}
	p.bounds = b
	return nil
}

// SetSearchRadius sets the neighborhood radius; must be at least 1.
func (p *Parameters) SetSearchRadius(r int) error {
	if r < 1 {
		return fmt.Errorf("%w: search radius must be positive, got %d", ErrInvalidArgument, r)
	}
	p.searchRadius = r
	return nil
}

// SetSearchLimit sets the relocation sample size; must be at least 1.
func (p *Parameters) SetSearchLimit(n int) error {
	if n < 1 {
		return fmt.Errorf("%w: search limit must be positive, got %d", ErrInvalidArgument, n)
	}
	p.searchLimit = n
	return nil
}

// SetMoveChance sets the happy-relocation probability, in [0, 1].
func (p *Parameters) SetMoveChance(v float64) error {
	if v < 0 || v > 1 {
		return fmt.Errorf("%w: move chance %v outside [0, 1]", ErrInvalidArgument, v)
	}
	p.moveChance = v
	return nil
}

// SetMaxSteps sets the tick budget; must be positive.
func (p *Parameters) SetMaxSteps(n int) error {
	if n < 1 {
		return fmt.Errorf("%w: maximum steps must be positive, got %d", ErrInvalidArgument, n)
	}
	p.maxSteps = n
	return nil
}

// SetShuffleTimes sets the pre-run shuffle count; must be at least 1.
func (p *Parameters) SetShuffleTimes(n int) error {
	if n < 1 {
		return fmt.Errorf("%w: shuffle times must be positive, got %d", ErrInvalidArgument, n)
	}
	p.shuffleTimes = n
	return nil
}

// SetStopOnEquilibrium toggles the early-exit condition.
func (p *Parameters) SetStopOnEquilibrium(v bool) { p.stopOnEquil = v }

// SetDynamics selects the dynamics variant.
func (p *Parameters) SetDynamics(d DynamicsKind) error {
	switch d {
	case Liquid, Solid, SwapDynamics:
		p.dynamics = d
		return nil
	}
	return fmt.Errorf("%w: unknown dynamics %d", ErrInvalidArgument, d)
}

// SetUtility selects the utility evaluator variant.
func (p *Parameters) SetUtility(u UtilityKind) error {
	switch u {
	case Absolute, Relative:
		p.utility = u
		return nil
	}
	return fmt.Errorf("%w: unknown utility evaluator %d", ErrInvalidArgument, u)
}

// SetUpdater selects the move-queue consumption policy.
func (p *Parameters) SetUpdater(u UpdaterKind) error {
	switch u {
	case Single, Batch:
		p.updater = u
		return nil
	}
	return fmt.Errorf("%w: unknown updater %d", ErrInvalidArgument, u)
}
