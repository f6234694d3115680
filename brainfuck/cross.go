package brainfuck

// Cross concatenates a and b, runs the result and splits it back at len(a).
// The inputs are not modified.
func (m *Machine) Cross(a, b Program) (Program, Program) {
	return m.CrossAt(a, b, 0)
}

// CrossWithRotation draws a pivot from rng and crosses around it, so the
// seam between a and b isn't always at the start of the tape.
func (m *Machine) CrossWithRotation(a, b Program, rng Source) (Program, Program) {
	return m.CrossAt(a, b, DrawPivot(len(a)+len(b), rng))
}

// DrawPivot picks a rotation in [0, n).
func DrawPivot(n int, rng Source) int {
	return int(rng.Float64() * float64(n))
}

// CrossAt rotates the concatenation left by pivot, runs it, rotates it back
// and splits. Pivot 0 is the plain Cross.
func (m *Machine) CrossAt(a, b Program, pivot int) (Program, Program) {
	n := len(a) + len(b)
	combined := make(Program, n)
	if n == 0 {
		return combined[:0:0], combined[:0:0]
	}
	pivot = wrap(pivot, n)

	for i := 0; i < n; i++ {
		j := (i + pivot) % n
		if j < len(a) {
			combined[i] = a[j]
		} else {
			combined[i] = b[j-len(a)]
		}
	}

	tape := NewTape(combined)
	m.Run(tape)

	out := tape.Cells
	if pivot != 0 {
		out = make(Program, n)
		for i := 0; i < n; i++ {
			out[(i+pivot)%n] = tape.Cells[i]
		}
	}

	split := len(a)
	return out[:split:split], out[split:n:n]
}
