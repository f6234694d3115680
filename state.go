package tapesoup

import (
	"fmt"

	cp "github.com/jinzhu/copier"
	bf "nickandperla.net/tapesoup/brainfuck"
)

type InitSpec struct {
	Width         int
	Height        int
	ProgramLength int
	Seed          uint32
	Mode          InitMode
}

// RunState is everything needed to continue a run: the grid, the epoch and
// the generator that produced it.
type RunState struct {
	Epoch       int
	UniqueCells int
	Grid        Grid
	RNG         *Mulberry32
}

// NewRunState fills the grid row by row from a generator seeded with
// spec.Seed.
func NewRunState(spec InitSpec) *RunState {
	rng := NewMulberry32(spec.Seed)
	grid := NewGrid(spec.Height, spec.Width)
	for x := range grid {
		for y := range grid[x] {
			if spec.Mode == InitData {
				grid[x][y] = bf.RandomData(spec.ProgramLength, rng)
			} else {
				grid[x][y] = bf.RandomInstructions(spec.ProgramLength, rng)
			}
		}
	}
	return &RunState{
		Epoch:       0,
		UniqueCells: grid.UniqueCells(),
		Grid:        grid,
		RNG:         rng,
	}
}

// Clone deep copies the grid and the generator.
func (s *RunState) Clone() *RunState {
	clone := &RunState{}
	cp.Copy(clone, s)
	clone.Grid = s.Grid.Clone()
	if s.RNG != nil {
		clone.RNG = s.RNG.Clone()
	}
	return clone
}

// FitProgram truncates p to length or pads it with zeros.
func FitProgram(p bf.Program, length int) bf.Program {
	fitted := make(bf.Program, length)
	copy(fitted, p)
	return fitted
}

// SetProgram replaces one cell, fitted to the grid's program length.
func (s *RunState) SetProgram(x, y int, p bf.Program) error {
	if !s.Grid.InBounds(x, y) {
		return fmt.Errorf("Cell [%d, %d] is outside the %dx%d grid", x, y, s.Grid.Height(), s.Grid.Width())
	}
	s.Grid[x][y] = FitProgram(p, s.Grid.ProgramLength())
	s.UniqueCells = s.Grid.UniqueCells()
	return nil
}

// PlacePrograms writes each program into a distinct random cell, drawing a
// row then a column until an unused cell comes up.
func (s *RunState) PlacePrograms(programs []bf.Program) ([]Coord, error) {
	height, width := s.Grid.Height(), s.Grid.Width()
	if len(programs) > height*width {
		return nil, fmt.Errorf("Cannot place [%d] programs on a grid of [%d] cells", len(programs), height*width)
	}
	length := s.Grid.ProgramLength()
	placed := make(map[Coord]struct{}, len(programs))
	coords := make([]Coord, 0, len(programs))
	for _, program := range programs {
		var c Coord
		for {
			c = Coord{X: s.RNG.Intn(height), Y: s.RNG.Intn(width)}
			if _, ok := placed[c]; !ok {
				break
			}
		}
		placed[c] = struct{}{}
		s.Grid[c.X][c.Y] = FitProgram(program, length)
		coords = append(coords, c)
	}
	s.UniqueCells = s.Grid.UniqueCells()
	return coords, nil
}
