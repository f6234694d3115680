package tapesoup

import (
	"log"
	"runtime"

	"golang.org/x/sync/errgroup"
	bf "nickandperla.net/tapesoup/brainfuck"
)

type RunSpec struct {
	Range       int         `toml:"range" yaml:"range" validate:"gte=0"`
	Speed       float64     `toml:"speed" yaml:"speed"`
	NoiseAction NoiseAction `toml:"noise_action" yaml:"noise_action" validate:"omitempty,oneof=none killCells killInstructions"`
	PctNoise    float64     `toml:"pct_noise" yaml:"pct_noise" validate:"gte=0,lte=100"`
	RandomPivot bool        `toml:"random_pivot" yaml:"random_pivot"`
}

// Pair is one claimed reaction. A and B are the same cell when a cell drew
// itself as a partner.
type Pair struct {
	A     Coord
	B     Coord
	Pivot int
}

type StepReport struct {
	Pairs []Pair
	// Cells that were still free but drew a partner already claimed.
	Skipped   int
	Mutations int
}

// Reactor advances a run state by one epoch. Pairing is decided up front in
// a single sequential pass that consumes every random draw, so the pairs can
// then react on any number of workers without changing the outcome.
type Reactor struct {
	Machine *bf.Machine
	Workers int

	tuples []Coord
	height int
	width  int
}

// NewReactor uses one worker per CPU when workers is not positive.
func NewReactor(m *bf.Machine, workers int) *Reactor {
	if workers <= 0 {
		workers = runtime.NumCPU()
	}
	return &Reactor{
		Machine: m,
		Workers: workers,
	}
}

func (r *Reactor) coords(grid Grid) []Coord {
	if r.tuples == nil || r.height != grid.Height() || r.width != grid.Width() {
		r.tuples = grid.Coords()
		r.height = grid.Height()
		r.width = grid.Width()
	}
	shuffled := make([]Coord, len(r.tuples))
	copy(shuffled, r.tuples)
	return shuffled
}

func mod(a, n int) int {
	return ((a % n) + n) % n
}

// Claim shuffles the cells and pairs each one with a partner inside range.
// Offsets are drawn for every cell, including cells already claimed, before
// the claim check; a pivot is drawn right after a successful claim when
// spec.RandomPivot is set.
func (r *Reactor) Claim(state *RunState, spec RunSpec) StepReport {
	grid, rng := state.Grid, state.RNG
	height, width := grid.Height(), grid.Width()
	tuples := r.coords(grid)

	for i := len(tuples) - 1; i > 0; i-- {
		j := rng.Intn(i + 1)
		tuples[i], tuples[j] = tuples[j], tuples[i]
	}

	report := StepReport{Pairs: make([]Pair, 0, len(tuples)/2+1)}
	seen := make([]bool, height*width)
	outRange := 2*spec.Range + 1
	for _, c := range tuples {
		xOff := rng.Intn(outRange) - spec.Range
		yOff := rng.Intn(outRange) - spec.Range
		partner := Coord{X: mod(c.X+xOff, height), Y: mod(c.Y+yOff, width)}

		if seen[c.X*width+c.Y] {
			continue
		}
		if seen[partner.X*width+partner.Y] {
			report.Skipped++
			continue
		}

		pair := Pair{A: c, B: partner}
		if spec.RandomPivot {
			n := len(grid[c.X][c.Y]) + len(grid[partner.X][partner.Y])
			pair.Pivot = bf.DrawPivot(n, rng)
		}
		seen[c.X*width+c.Y] = true
		seen[partner.X*width+partner.Y] = true
		report.Pairs = append(report.Pairs, pair)
	}
	return report
}

func (r *Reactor) react(grid Grid, pair Pair) {
	a, b := r.Machine.CrossAt(grid[pair.A.X][pair.A.Y], grid[pair.B.X][pair.B.Y], pair.Pivot)
	grid[pair.A.X][pair.A.Y] = a
	grid[pair.B.X][pair.B.Y] = b
}

// React runs every claimed pair. No cell belongs to two pairs, so the
// workers never touch the same cell.
func (r *Reactor) React(grid Grid, pairs []Pair) {
	workers := r.Workers
	if workers <= 1 || len(pairs) < 2*workers {
		for _, pair := range pairs {
			r.react(grid, pair)
		}
		return
	}

	var g errgroup.Group
	g.SetLimit(workers)
	chunk := (len(pairs) + workers - 1) / workers
	for start := 0; start < len(pairs); start += chunk {
		batch := pairs[start:min(start+chunk, len(pairs))]
		g.Go(func() error {
			for _, pair := range batch {
				r.react(grid, pair)
			}
			return nil
		})
	}
	g.Wait()
}

// Step advances state by one epoch in place and returns it. The generator
// carried by state is the one consumed, so its position moves with the run.
func (r *Reactor) Step(state *RunState, spec RunSpec) (*RunState, StepReport) {
	if state.Grid.Height() == 0 || state.Grid.Width() == 0 {
		state.Epoch++
		return state, StepReport{}
	}

	report := r.Claim(state, spec)
	r.React(state.Grid, report.Pairs)

	if spec.NoiseAction != "" && spec.NoiseAction != NoiseNone {
		state.Grid, report.Mutations = spec.NoiseAction.Apply(state.Grid, state.RNG, NoiseSpec{QuantileKilled: spec.PctNoise / 100})
	}

	state.UniqueCells = state.Grid.UniqueCells()
	state.Epoch++

	if DEBUG {
		log.Printf("Epoch %d: %d pairs, %d skipped, %d unique", state.Epoch, len(report.Pairs), report.Skipped, state.UniqueCells)
	}
	return state, report
}

// Advance is Step without the report, for replaying history.
func (r *Reactor) Advance(spec RunSpec) func(*RunState) *RunState {
	return func(s *RunState) *RunState {
		next, _ := r.Step(s, spec)
		return next
	}
}
