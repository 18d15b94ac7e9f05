package engine

import (
	"fmt"
	"log/slog"
	"math"
	"math/rand"

	"github.com/aldemir/schelling-explorer/internal/agents"
	"github.com/aldemir/schelling-explorer/internal/grid"
)

// Observer is invoked during the statistics phase of every tick, after
// movement and update have run, so external collaborators (recorders,
// renderers, APIs) always see a consistent tick snapshot.
type Observer func(m *Model)

// Model is the complete per-run state of a segregation simulation and its
// scheduler. A Model is reusable: Start resets all run state, snapshots the
// Parameters into a Ruleset, and rebuilds the space, so the same instance
// drives any number of consecutive runs.
//
// Stepping is single-threaded and non-preemptive. All randomness flows
// through one seeded stream in a fixed order -- population dispensing, grid
// shuffling, per-tick iteration shuffles, movement sampling, happy-move
// coin flips -- so a fixed seed reproduces a run bit for bit.
type Model struct {
	params *Parameters
	rules  Ruleset

	groups []*agents.Group
	grid   *grid.Grid

	agents   []*agents.Agent
	empty    []grid.Point
	moveList []*agents.Agent

	dispenser PopulationDispenser
	totals    []int

	seed int64
	rng  *rand.Rand

	// Reused per-run buffers: neighbor query scratch and the candidate
	// slot list for physical movement.
	scratch    *grid.Scratch
	candidates []int

	tick      int
	stopTicks int
	running   bool

	observer Observer
}

// NewModel creates a model with default parameters, no groups, and the
// given RNG seed. Groups must be added before the first Start.
func NewModel(seed int64) *Model {
	return &Model{
		params:  NewParameters(),
		seed:    seed,
		scratch: grid.NewScratch(),
	}
}

// Params returns the mutable configuration. Edits take effect at the next
// Start; a running simulation only consults its Ruleset snapshot.
func (m *Model) Params() *Parameters { return m.params }

// Rules returns the immutable snapshot of the current run.
func (m *Model) Rules() Ruleset { return m.rules }

// Grid returns the simulation space.
func (m *Model) Grid() *grid.Grid { return m.grid }

// Groups returns the registered groups in id order.
func (m *Model) Groups() []*agents.Group { return m.groups }

// Agents returns the live agent list for the current run.
func (m *Model) Agents() []*agents.Agent { return m.agents }

// MoveQueue returns the agents currently queued for movement. Callers must
// treat the slice as read-only.
func (m *Model) MoveQueue() []*agents.Agent { return m.moveList }

// EmptyCells returns the relocation-target list. Callers must treat the
// slice as read-only.
func (m *Model) EmptyCells() []grid.Point { return m.empty }

// GroupTotals returns the number of agents dispensed per group at the start
// of the current run, indexed by group id.
func (m *Model) GroupTotals() []int { return m.totals }

// Tick returns the global tick counter of the current run.
func (m *Model) Tick() int { return m.tick }

// Seed returns the RNG seed runs are derived from.
func (m *Model) Seed() int64 { return m.seed }

// Running reports whether a run is in progress.
func (m *Model) Running() bool { return m.running }

// SetObserver registers the statistics-phase callback. Pass nil to detach.
func (m *Model) SetObserver(obs Observer) { m.observer = obs }

// AddGroup registers a group. Group ids must match their registration order
// because packed cell values index into the group list.
func (m *Model) AddGroup(g *agents.Group) error {
	if g == nil {
		return fmt.Errorf("%w: group must not be nil", ErrInvalidArgument)
	}
	if g.ID() != len(m.groups) {
		return fmt.Errorf("%w: group id %d out of registration order (want %d)",
			ErrInvalidArgument, g.ID(), len(m.groups))
	}
	m.groups = append(m.groups, g)
	return nil
}

// GroupByName finds a registered group by display name.
func (m *Model) GroupByName(name string) (*agents.Group, error) {
	for _, g := range m.groups {
		if g.Name() == name {
			return g, nil
		}
	}
	return nil, fmt.Errorf("%w: %q", ErrNoSuchGroup, name)
}

// Start begins a new run: reset reusable state, snapshot the rules,
// populate the space from the dispenser, shuffle it, then collect agents
// and empty cells. The RNG is reseeded so every run with the same seed and
// parameters is identical.
func (m *Model) Start() error {
	if len(m.groups) == 0 {
		return fmt.Errorf("%w: cannot start without groups", ErrInvalidArgument)
	}

	m.reset()
	m.rules = newRuleset(m.params)

	if err := m.populate(); err != nil {
		return err
	}
	if err := m.shuffleGrid(m.params.ShuffleTimes()); err != nil {
		return err
	}
	if err := m.collect(); err != nil {
		return err
	}

	m.running = true
	slog.Info("run started",
		"seed", m.seed,
		"size", fmt.Sprintf("%dx%d", m.grid.Width(), m.grid.Height()),
		"agents", len(m.agents),
		"empty", len(m.empty),
		"dynamics", m.rules.Dynamics,
		"utility", m.rules.Utility,
		"updater", m.rules.Updater,
	)
	return nil
}

// reset clears every reusable collection and reseeds the random stream.
func (m *Model) reset() {
	m.agents = m.agents[:0]
	m.empty = m.empty[:0]
	m.moveList = m.moveList[:0]
	m.dispenser.Clear()
	m.rng = rand.New(rand.NewSource(m.seed))
	m.tick = 0
	m.stopTicks = 0
	m.running = false

	g, err := grid.New(m.params.Width(), m.params.Height())
	if err != nil {
		// SetSize already rejects non-positive dimensions.
		panic(err)
	}
	m.grid = g
}

// populate writes raw group indices into the grid cell by cell, in column
// order, drawing each occupant from the dispenser. Cells past the dispensed
// population stay empty, which is how the floor-rounded empty fraction is
// reserved. The resulting grid is an intermediate form and must not be
// rendered; collect rewrites it with real state masks.
func (m *Model) populate() error {
	totalCells := m.grid.Width() * m.grid.Height()
	emptyTarget := 0
	if m.rules.Dynamics.AllowsEmptyCells() {
		emptyTarget = int(math.Floor(float64(totalCells) * m.params.PercentEmpty()))
	}

	if err := m.dispenser.Initialize(m.groups, totalCells-emptyTarget, false); err != nil {
		return err
	}

	m.totals = make([]int, len(m.groups))
	for x := 0; x < m.grid.Width(); x++ {
		for y := 0; y < m.grid.Height(); y++ {
			idx := m.dispenser.NextAgent(m.rng)
			m.grid.Set(x, y, int32(idx))
			m.totals[idx]++

			if !m.dispenser.HasMore() {
				return nil
			}
		}
	}
	return nil
}

// shuffleGrid randomizes agent placement by repeating a two-dimensional
// variant of the Fisher-Yates shuffle: for each (i, j) walking down from the
// far corner, the cell swaps with a partner drawn from the rectangle
// [0,i]x[0,j], with fresh draws per axis. The nested per-axis bounds are
// part of the model's reproducibility contract and are kept exactly as the
// reference implementation defines them, even though the walk is not a
// textbook uniform permutation.
func (m *Model) shuffleGrid(times int) error {
	if times < 1 {
		return fmt.Errorf("%w: shuffle times must be positive, got %d", ErrInvalidArgument, times)
	}

	for t := 0; t < times; t++ {
		for i := m.grid.Width() - 1; i > 0; i-- {
			for j := m.grid.Height() - 1; j > 0; j-- {
				sx := m.rng.Intn(i + 1)
				sy := m.rng.Intn(j + 1)
				m.grid.Swap(grid.Point{X: i, Y: j}, grid.Point{X: sx, Y: sy})
			}
		}
	}
	return nil
}

// collect walks the shuffled grid once: empty cells are recorded as
// relocation targets, occupied cells become Agents. Agents start Unhappy
// because no evaluation has happened yet, while the grid cell is rewritten
// with the group's happy mask as a placeholder until the first update phase.
func (m *Model) collect() error {
	for x := 0; x < m.grid.Width(); x++ {
		for y := 0; y < m.grid.Height(); y++ {
			v := m.grid.Get(x, y)
			if v == grid.Empty {
				m.empty = append(m.empty, grid.Point{X: x, Y: y})
				continue
			}

			if int(v) < 0 || int(v) >= len(m.groups) {
				return fmt.Errorf("engine: cell (%d,%d) holds unknown group index %d", x, y, v)
			}
			group := m.groups[v]

			a, err := agents.NewAgent(group, x, y)
			if err != nil {
				return err
			}
			m.agents = append(m.agents, a)
			m.grid.Set(x, y, group.HappyMask())
		}
	}
	return nil
}

// Step advances the run by one tick through the four ordered phases:
// movement (drain the queue built last tick), update (re-evaluate every
// agent and refill the queue), statistics (observer callback), and the stop
// condition. Any engine invariant violation aborts the run with an error.
func (m *Model) Step() error {
	if !m.running {
		return fmt.Errorf("engine: step on a finished run")
	}

	m.tick++

	if err := m.rules.Updater.update(m); err != nil {
		m.running = false
		return err
	}
	m.updatePhase()

	if m.observer != nil {
		m.observer(m)
	}

	m.stopCondition()
	return nil
}

// Run steps until the run stops, either through the stop condition or an
// external Finish.
func (m *Model) Run() error {
	for m.running {
		if err := m.Step(); err != nil {
			return err
		}
	}
	return nil
}

// updatePhase visits every agent in a freshly randomized order, evaluates
// its neighborhood, transitions its happiness, rewrites its grid mask, and
// queues it for next tick's movement if it is unhappy, or, under dynamics
// that allow it, with probability MoveChance even though happy.
// The coin flip draws from the shared stream only when the dynamics ask
// for it.
func (m *Model) updatePhase() {
	for i := len(m.agents) - 1; i > 0; i-- {
		j := m.rng.Intn(i + 1)
		m.agents[i], m.agents[j] = m.agents[j], m.agents[i]
	}

	for _, a := range m.agents {
		eval := m.rules.Utility.Evaluate(m, a.Group(), a.X(), a.Y())
		a.UpdateState(eval)
		m.grid.Set(a.X(), a.Y(), a.Mask())

		if a.State() == agents.Unhappy ||
			(m.rules.Dynamics.AllowsHappyRelocation() && m.shouldMove()) {
			m.moveList = append(m.moveList, a)
		}
	}
}

// shouldMove is the happy-relocation coin flip.
func (m *Model) shouldMove() bool {
	return m.rng.Float64() <= m.rules.MoveChance
}

// stopCondition keeps its own tick counter, deliberately separate from the
// global one, and finishes the run when it reaches the configured maximum
// or, when stop-on-equilibrium is enabled, when no queued agent is unhappy.
// It reads the live Parameters so the step budget can be adjusted between
// runs without rebuilding the model.
func (m *Model) stopCondition() {
	m.stopTicks++

	mustStop := m.stopTicks >= m.params.MaxSteps()

	shouldStop := false
	if m.params.StopOnEquilibrium() {
		unhappy := 0
		for _, a := range m.moveList {
			if a.State() == agents.Unhappy {
				unhappy++
			}
		}
		shouldStop = unhappy == 0
	}

	if mustStop || shouldStop {
		m.Finish()
	}
}

// Finish terminates the run. It is idempotent and is the only way an
// external caller stops a simulation.
func (m *Model) Finish() {
	if !m.running {
		return
	}
	m.running = false
	slog.Info("run finished", "tick", m.tick)
}
