package engine

import "github.com/aldemir/schelling-explorer/internal/agents"

// GroupInfo is the per-group identity and color metadata renderers need to
// interpret packed cell values.
type GroupInfo struct {
	ID           int     `json:"id"`
	Name         string  `json:"name"`
	Tolerance    float64 `json:"tolerance"`
	HappyColor   string  `json:"happy_color"`
	UnhappyColor string  `json:"unhappy_color"`
}

// Snapshot is an isolated copy of the renderable engine state at one tick.
// Collaborators may hold it across ticks; nothing aliases live engine
// memory.
type Snapshot struct {
	Tick    int         `json:"tick"`
	Width   int         `json:"width"`
	Height  int         `json:"height"`
	Cells   []int32     `json:"cells"`
	Groups  []GroupInfo `json:"groups"`
	Running bool        `json:"running"`
}

// Snapshot captures the current grid contents and group metadata.
func (m *Model) Snapshot() *Snapshot {
	infos := make([]GroupInfo, len(m.groups))
	for i, g := range m.groups {
		infos[i] = GroupInfo{
			ID:           g.ID(),
			Name:         g.Name(),
			Tolerance:    g.Tolerance(),
			HappyColor:   g.HappyColor(),
			UnhappyColor: g.UnhappyColor(),
		}
	}

	return &Snapshot{
		Tick:    m.tick,
		Width:   m.grid.Width(),
		Height:  m.grid.Height(),
		Cells:   m.grid.Clone(),
		Groups:  infos,
		Running: m.running,
	}
}

// CellState decodes a packed cell value against the snapshot's groups,
// returning the group and happiness, or ok=false for an empty cell.
func (s *Snapshot) CellState(x, y int) (group *GroupInfo, state agents.HappinessState, ok bool) {
	cell := s.Cells[y*s.Width+x]
	if cell == -1 {
		return nil, 0, false
	}

	id := agents.GroupID(cell)
	if id >= len(s.Groups) {
		return nil, 0, false
	}

	state = agents.Happy
	if cell < 0 {
		state = agents.Unhappy
	}
	return &s.Groups[id], state, true
}
