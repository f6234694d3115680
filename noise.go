package tapesoup

import (
	"math"

	bf "nickandperla.net/tapesoup/brainfuck"
)

type NoiseSpec struct {
	QuantileKilled float64
}

// KillCells replaces each cell, with probability QuantileKilled, by a fresh
// random program of the same length. Cells are visited row by row with one
// draw each. Returns the grid and the number of cells replaced.
func KillCells(grid Grid, rng *Mulberry32, spec NoiseSpec) (Grid, int) {
	killed := 0
	for x := range grid {
		for y := range grid[x] {
			if rng.Float64() < spec.QuantileKilled {
				grid[x][y] = bf.RandomInstructions(len(grid[x][y]), rng)
				killed++
			}
		}
	}
	return grid, killed
}

// KillInstructions overwrites floor(height*width*length*QuantileKilled)
// randomly chosen instruction slots with random opcodes. Each overwrite
// draws a row, a column, a slot and an opcode, in that order.
func KillInstructions(grid Grid, rng *Mulberry32, spec NoiseSpec) (Grid, int) {
	height, width, length := grid.Height(), grid.Width(), grid.ProgramLength()
	updates := int(math.Floor(float64(height*width*length) * spec.QuantileKilled))
	if length == 0 {
		return grid, 0
	}
	for i := 0; i < updates; i++ {
		x := rng.Intn(height)
		y := rng.Intn(width)
		slot := rng.Intn(length)
		op := rng.Intn(bf.OP_COUNT)
		grid[x][y][slot] = op
	}
	return grid, updates
}

// Apply runs the noise operator the action names. NoiseNone and unknown
// actions leave the grid alone.
func (a NoiseAction) Apply(grid Grid, rng *Mulberry32, spec NoiseSpec) (Grid, int) {
	switch a {
	case NoiseKillCells:
		return KillCells(grid, rng, spec)
	case NoiseKillInstructions:
		return KillInstructions(grid, rng, spec)
	}
	return grid, 0
}
