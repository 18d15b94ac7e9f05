// Package grid provides the two-dimensional integer cell store used as the
// simulation space, along with bounded and toroidal Moore-neighborhood
// queries.
package grid

import "fmt"

// Empty marks a cell that no agent occupies.
const Empty int32 = -1

// Bounds selects the boundary geometry of the simulation space.
type Bounds uint8

const (
	// Bounded clips neighbor queries at the grid edges.
	Bounded Bounds = iota
	// Toroidal wraps neighbor queries modulo width and height.
	Toroidal
)

// String returns the display name of the boundary mode.
func (b Bounds) String() string {
	if b == Bounded {
		return "Bounded"
	}
	return "Toroidal"
}

// Point is a cell coordinate.
type Point struct {
	X int `json:"x"`
	Y int `json:"y"`
}

// OutOfRangeError reports a coordinate outside the grid.
type OutOfRangeError struct {
	X, Y, W, H int
}

func (e *OutOfRangeError) Error() string {
	return fmt.Sprintf("grid: coordinate (%d,%d) out of range for %dx%d grid",
		e.X, e.Y, e.W, e.H)
}

// Grid is a width x height field of packed int32 cell values stored
// row-major. A value of Empty denotes an unoccupied cell; any other value
// packs a group id and happiness bit (see the agents package).
type Grid struct {
	w, h  int
	cells []int32
}

// New allocates a grid with every cell set to Empty.
func New(w, h int) (*Grid, error) {
	if w < 1 || h < 1 {
		return nil, fmt.Errorf("grid: dimensions must be positive, got %dx%d", w, h)
	}
	g := &Grid{w: w, h: h, cells: make([]int32, w*h)}
	g.Fill(Empty)
	return g, nil
}

// Width returns the number of cells per row.
func (g *Grid) Width() int { return g.w }

// Height returns the number of rows.
func (g *Grid) Height() int { return g.h }

// Cells exposes the row-major backing slice. Callers that need an isolated
// copy should use Clone.
func (g *Grid) Cells() []int32 { return g.cells }

// Clone returns a copy of the backing slice, safe to hand to collaborators.
func (g *Grid) Clone() []int32 {
	out := make([]int32, len(g.cells))
	copy(out, g.cells)
	return out
}

func (g *Grid) index(x, y int) int {
	if x < 0 || x >= g.w || y < 0 || y >= g.h {
		panic(&OutOfRangeError{X: x, Y: y, W: g.w, H: g.h})
	}
	return y*g.w + x
}

// Get returns the value at (x, y). Panics with *OutOfRangeError on invalid
// coordinates.
func (g *Grid) Get(x, y int) int32 {
	return g.cells[g.index(x, y)]
}

// Set writes the value at (x, y). Panics with *OutOfRangeError on invalid
// coordinates.
func (g *Grid) Set(x, y int, v int32) {
	g.cells[g.index(x, y)] = v
}

// Swap exchanges the values of the two cells.
func (g *Grid) Swap(a, b Point) {
	i, j := g.index(a.X, a.Y), g.index(b.X, b.Y)
	g.cells[i], g.cells[j] = g.cells[j], g.cells[i]
}

// Fill sets every cell to v.
func (g *Grid) Fill(v int32) {
	for i := range g.cells {
		g.cells[i] = v
	}
}

// Scratch is a reusable coordinate buffer for neighbor queries. The engine
// owns a single instance; stepping is single-threaded, so one buffer
// suffices. Per-worker buffers would be needed before any parallel stepping.
type Scratch struct {
	Xs []int
	Ys []int
}

// NewScratch reserves capacity for a radius-1 Moore query.
func NewScratch() *Scratch {
	return &Scratch{Xs: make([]int, 0, 8), Ys: make([]int, 0, 8)}
}

// Len returns the number of coordinates from the last query.
func (s *Scratch) Len() int { return len(s.Xs) }

func (s *Scratch) reset() {
	s.Xs = s.Xs[:0]
	s.Ys = s.Ys[:0]
}

// MooreNeighbors collects into sc the coordinates of every cell within the
// given radius of (x, y), excluding the center. Toroidal mode wraps indices;
// Bounded mode clips, so queries near an edge yield fewer than (2r+1)^2-1
// results. Iteration order is fixed (dx ascending, then dy ascending) so a
// given (x, y, radius) always produces the same sequence.
func (g *Grid) MooreNeighbors(x, y, radius int, bounds Bounds, sc *Scratch) {
	g.index(x, y) // range check only
	sc.reset()

	for dx := -radius; dx <= radius; dx++ {
		for dy := -radius; dy <= radius; dy++ {
			if dx == 0 && dy == 0 {
				continue
			}

			nx, ny := x+dx, y+dy
			switch bounds {
			case Toroidal:
				nx = ((nx % g.w) + g.w) % g.w
				ny = ((ny % g.h) + g.h) % g.h
			case Bounded:
				if nx < 0 || nx >= g.w || ny < 0 || ny >= g.h {
					continue
				}
			}

			sc.Xs = append(sc.Xs, nx)
			sc.Ys = append(sc.Ys, ny)
		}
	}
}
