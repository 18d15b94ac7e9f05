// Package agents provides the categorical group and agent data model for the
// segregation simulation: group identity, tolerance, happiness states, and
// the packed cell-value masks the grid stores.
package agents

import (
	"errors"
	"fmt"
	"math"
)

// ErrInvalidArgument is returned by setters that reject an out-of-range
// value. The previous value is always retained.
var ErrInvalidArgument = errors.New("agents: invalid argument")

// HappinessState classifies an agent's satisfaction with its neighborhood.
type HappinessState uint8

const (
	// Happy means the last evaluation met or exceeded the group tolerance.
	Happy HappinessState = iota
	// Unhappy means it fell short; the agent is queued for relocation.
	Unhappy
)

// String returns the display name of the state.
func (s HappinessState) String() string {
	if s == Happy {
		return "Happy"
	}
	return "Unhappy"
}

// unhappyFlag is the sign bit of a packed cell value.
const unhappyFlag = int32(math.MinInt32)

// Group is a categorical association agents belong to. Identity is fixed at
// construction; name, population share, tolerance, and colors are mutable
// between runs through validated setters.
type Group struct {
	id           int
	name         string
	popPercent   float64
	tolerance    float64
	happyColor   string
	unhappyColor string
	masks        [2]int32
}

// NewGroup creates a group with the given display name and unique
// non-negative id. Population share and tolerance start at zero.
func NewGroup(name string, id int) (*Group, error) {
	if name == "" {
		return nil, fmt.Errorf("%w: group name must not be empty", ErrInvalidArgument)
	}
	if id < 0 || id > 0xfe {
		return nil, fmt.Errorf("%w: group id %d outside the packed range [0, 254]", ErrInvalidArgument, id)
	}

	g := &Group{
		id:           id,
		name:         name,
		happyColor:   "#000000",
		unhappyColor: "#808080",
	}
	g.masks[Happy] = int32(id) << 16
	g.masks[Unhappy] = int32(id)<<16 | unhappyFlag
	return g, nil
}

// ID returns the numeric group identifier.
func (g *Group) ID() int { return g.id }

// Name returns the display name.
func (g *Group) Name() string { return g.name }

// PopulationPercent returns the share of non-empty cells initially allocated
// to this group, in [0, 1].
func (g *Group) PopulationPercent() float64 { return g.popPercent }

// Tolerance returns the minimum same-group neighbor fraction required for an
// agent of this group to be happy, in [0, 1].
func (g *Group) Tolerance() float64 { return g.tolerance }

// HappyColor returns the hex color a renderer uses for happy agents.
func (g *Group) HappyColor() string { return g.happyColor }

// UnhappyColor returns the hex color a renderer uses for unhappy agents.
func (g *Group) UnhappyColor() string { return g.unhappyColor }

// StateMask returns the packed cell value for an agent of this group in the
// given happiness state.
func (g *Group) StateMask(s HappinessState) int32 { return g.masks[s] }

// HappyMask returns the packed cell value for a happy agent of this group.
func (g *Group) HappyMask() int32 { return g.masks[Happy] }

// UnhappyMask returns the packed cell value for an unhappy agent of this
// group.
func (g *Group) UnhappyMask() int32 { return g.masks[Unhappy] }

// IsMember reports whether the packed cell value belongs to this group.
// Empty cells decode to group 255 and never match a registered group.
func (g *Group) IsMember(cell int32) bool {
	return int32(g.id) == (cell>>16)&0xff
}

// GroupID extracts the group id bits from a packed cell value.
func GroupID(cell int32) int {
	return int((cell >> 16) & 0xff)
}

// SetName replaces the display name.
func (g *Group) SetName(name string) error {
	if name == "" {
		return fmt.Errorf("%w: group name must not be empty", ErrInvalidArgument)
	}
	g.name = name
	return nil
}

// SetPopulationPercent sets the initial cell share; v must be in [0, 1].
func (g *Group) SetPopulationPercent(v float64) error {
	if v < 0 || v > 1 {
		return fmt.Errorf("%w: population percent %v outside [0, 1]", ErrInvalidArgument, v)
	}
	g.popPercent = v
	return nil
}

// SetTolerance sets the same-group preference; v must be in [0, 1].
func (g *Group) SetTolerance(v float64) error {
	if v < 0 || v > 1 {
		return fmt.Errorf("%w: tolerance %v outside [0, 1]", ErrInvalidArgument, v)
	}
	g.tolerance = v
	return nil
}

// SetColors replaces the happy and unhappy render colors.
func (g *Group) SetColors(happy, unhappy string) {
	if happy != "" {
		g.happyColor = happy
	}
	if unhappy != "" {
		g.unhappyColor = unhappy
	}
}

// String returns the group name.
func (g *Group) String() string { return g.name }
