package brainfuck

// Head movement and the cell arithmetic. The heads address the same cells the
// instruction pointer reads from; both wrap around the ends of the tape.

func wrap(i, n int) int {
	return ((i % n) + n) % n
}

func (t *Tape) MoveHead0Left() {
	t.Head0 = wrap(t.Head0-1, len(t.Cells))
}

func (t *Tape) MoveHead0Right() {
	t.Head0 = wrap(t.Head0+1, len(t.Cells))
}

func (t *Tape) MoveHead1Left() {
	t.Head1 = wrap(t.Head1-1, len(t.Cells))
}

func (t *Tape) MoveHead1Right() {
	t.Head1 = wrap(t.Head1+1, len(t.Cells))
}

// CurrentCell is the value under head0.
func (t *Tape) CurrentCell() int {
	return t.Cells[t.Head0]
}

func (t *Tape) Increment() {
	t.Cells[t.Head0] = t.Cells[t.Head0] + 1
}

func (t *Tape) Decrement() {
	t.Cells[t.Head0] = t.Cells[t.Head0] - 1
}
