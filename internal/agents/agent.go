package agents

import (
	"fmt"
	"math"
)

// Agent is a single mobile entity in the simulation. An agent holds a shared
// reference to its group, its current grid coordinates, and the happiness
// computed for its neighborhood on the most recent update. Agents are created
// when the grid is populated at run start and mutated in place each tick.
type Agent struct {
	group *Group
	x, y  int
	state HappinessState
}

// NewAgent creates an agent of the given group at (x, y). Freshly created
// agents start Unhappy; the first update phase computes the real state.
func NewAgent(group *Group, x, y int) (*Agent, error) {
	if group == nil {
		return nil, fmt.Errorf("%w: agent requires a group", ErrInvalidArgument)
	}
	if x < 0 || y < 0 {
		return nil, fmt.Errorf("%w: agent location (%d,%d) must be non-negative", ErrInvalidArgument, x, y)
	}
	return &Agent{group: group, x: x, y: y, state: Unhappy}, nil
}

// Group returns the group this agent belongs to.
func (a *Agent) Group() *Group { return a.group }

// X returns the agent's x-axis coordinate.
func (a *Agent) X() int { return a.x }

// Y returns the agent's y-axis coordinate.
func (a *Agent) Y() int { return a.y }

// State returns the happiness computed on the last update.
func (a *Agent) State() HappinessState { return a.state }

// Mask returns the packed cell value for this agent's group and current
// state.
func (a *Agent) Mask() int32 { return a.group.StateMask(a.state) }

// SetLocation moves the agent's stored coordinates. The caller is
// responsible for keeping the grid consistent.
func (a *Agent) SetLocation(x, y int) error {
	if x < 0 || y < 0 {
		return fmt.Errorf("%w: agent location (%d,%d) must be non-negative", ErrInvalidArgument, x, y)
	}
	a.x, a.y = x, y
	return nil
}

// UpdateState transitions the agent to Happy when the evaluation meets or
// exceeds its group's tolerance, and to Unhappy otherwise. Evaluations are
// ordered with NaN above every number, the same total order movement uses
// when ranking candidate cells, so an agent with no occupied neighbors under
// relative evaluation counts as satisfied.
func (a *Agent) UpdateState(evaluation float64) {
	if evaluation >= a.group.Tolerance() || math.IsNaN(evaluation) {
		a.state = Happy
	} else {
		a.state = Unhappy
	}
}
