package tapesoup

import (
	bin "encoding/binary"

	bf "nickandperla.net/tapesoup/brainfuck"
)

// Grid is height rows of width programs, addressed grid[x][y] with x the row.
type Grid [][]bf.Program

// Coord addresses one cell.
type Coord struct {
	X int
	Y int
}

func NewGrid(height, width int) Grid {
	grid := make(Grid, height)
	for x := range grid {
		grid[x] = make([]bf.Program, width)
	}
	return grid
}

func (g Grid) Height() int {
	return len(g)
}

func (g Grid) Width() int {
	if len(g) == 0 {
		return 0
	}
	return len(g[0])
}

// ProgramLength is the length of the first cell. Every cell has the same
// length as long as programs go in through FitProgram.
func (g Grid) ProgramLength() int {
	if g.Width() == 0 {
		return 0
	}
	return len(g[0][0])
}

func (g Grid) InBounds(x, y int) bool {
	return x >= 0 && x < g.Height() && y >= 0 && y < g.Width()
}

// Clone copies every cell; nothing is shared with the original.
func (g Grid) Clone() Grid {
	if g == nil {
		return nil
	}
	clone := make(Grid, len(g))
	for x, row := range g {
		clone[x] = make([]bf.Program, len(row))
		for y, cell := range row {
			clone[x][y] = cell.Clone()
		}
	}
	return clone
}

func (g Grid) Equal(o Grid) bool {
	if len(g) != len(o) {
		return false
	}
	for x := range g {
		if len(g[x]) != len(o[x]) {
			return false
		}
		for y := range g[x] {
			if !g[x][y].Equal(o[x][y]) {
				return false
			}
		}
	}
	return true
}

// Coords lists every cell in row-major order.
func (g Grid) Coords() []Coord {
	coords := make([]Coord, 0, g.Height()*g.Width())
	for x := 0; x < g.Height(); x++ {
		for y := 0; y < g.Width(); y++ {
			coords = append(coords, Coord{X: x, Y: y})
		}
	}
	return coords
}

func programKey(buf []byte, p bf.Program) []byte {
	buf = buf[:0]
	buf = bin.AppendUvarint(buf, uint64(len(p)))
	for _, v := range p {
		buf = bin.AppendVarint(buf, int64(v))
	}
	return buf
}

// UniqueCells counts structurally distinct programs.
func (g Grid) UniqueCells() int {
	seen := make(map[string]struct{}, g.Height()*g.Width())
	var buf []byte
	for _, row := range g {
		for _, cell := range row {
			buf = programKey(buf, cell)
			seen[string(buf)] = struct{}{}
		}
	}
	return len(seen)
}

// MarshalBinary packs the grid as varints: height, width, then each cell's
// length followed by its values.
func (g Grid) MarshalBinary() ([]byte, error) {
	out := make([]byte, 0, 2*bin.MaxVarintLen32+g.Height()*g.Width()*(g.ProgramLength()+1)*2)
	out = bin.AppendUvarint(out, uint64(g.Height()))
	out = bin.AppendUvarint(out, uint64(g.Width()))
	for _, row := range g {
		for _, cell := range row {
			out = bin.AppendUvarint(out, uint64(len(cell)))
			for _, v := range cell {
				out = bin.AppendVarint(out, int64(v))
			}
		}
	}
	return out, nil
}

func (g *Grid) UnmarshalBinary(data []byte) error {
	r := &varintReader{data: data}
	height := r.uvarint()
	width := r.uvarint()
	if r.err != nil {
		return r.err
	}
	// Every cell takes at least one byte for its length.
	if height*width > uint64(len(r.data)) || (width == 0 && height > uint64(len(data))) {
		return errCorruptGrid
	}
	grid := NewGrid(int(height), int(width))
	for x := range grid {
		for y := range grid[x] {
			length := r.uvarint()
			if r.err != nil {
				return r.err
			}
			if length > uint64(len(r.data)) {
				return errCorruptGrid
			}
			cell := make(bf.Program, length)
			for i := range cell {
				cell[i] = int(r.varint())
			}
			grid[x][y] = cell
		}
	}
	if r.err != nil {
		return r.err
	}
	*g = grid
	return nil
}
