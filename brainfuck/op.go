package brainfuck

// The OPs for the self-modifying dialect. Programs and data share one tape:
// the instruction pointer reads from it and the two heads write into it, so a
// program rewrites itself (and whatever it was concatenated with) while it
// runs.

// head0 is the working head. Increment, decrement and the loop tests look at
// the cell under head0. head1 is only used as the other side of a copy.

//  h0
// [6][6][2][6]
// ++>+
// Increment under head0 twice (the first two instructions increment
// themselves), move head0 right, increment.

//  h0 h0
// [8][7][2][6]

type OP int

const (
	NO_OP OP = iota
	OP_HEAD0_LEFT
	OP_HEAD0_RIGHT
	OP_HEAD1_LEFT
	OP_HEAD1_RIGHT
	OP_DEC
	OP_INC
	OP_COPY_TO_HEAD1
	OP_COPY_FROM_HEAD1
	OP_WHILE
	OP_WHILE_END
)

// OP_COUNT is the size of the instruction set. Random instructions are drawn
// uniformly from [0, OP_COUNT).
const OP_COUNT = 11

var OP_SET [OP_COUNT]OP = [...]OP{
	NO_OP,
	OP_HEAD0_LEFT,
	OP_HEAD0_RIGHT,
	OP_HEAD1_LEFT,
	OP_HEAD1_RIGHT,
	OP_DEC,
	OP_INC,
	OP_COPY_TO_HEAD1,
	OP_COPY_FROM_HEAD1,
	OP_WHILE,
	OP_WHILE_END,
}

// Symbols used by the human readable format, indexed by OP.
var OP_SYMBOLS [OP_COUNT]rune = [...]rune{
	'0', '<', '>', '{', '}', '-', '+', '.', ',', '[', ']',
}

func (o OP) Valid() bool {
	return o >= NO_OP && o <= OP_WHILE_END
}

func (o OP) String() string {
	if !o.Valid() {
		return "?"
	}
	return string(OP_SYMBOLS[o])
}

// Execute applies the OP to the tape and moves the instruction pointer. It
// never fails: head movement wraps, an unmatched OP_WHILE_END with an empty
// while stack restarts the tape and anything outside the set is a no-op.
func (o OP) Execute(tape *Tape, m *Machine) {
	switch o {
	case OP_HEAD0_LEFT:
		tape.MoveHead0Left()
	case OP_HEAD0_RIGHT:
		tape.MoveHead0Right()
	case OP_HEAD1_LEFT:
		tape.MoveHead1Left()
	case OP_HEAD1_RIGHT:
		tape.MoveHead1Right()
	case OP_DEC:
		tape.Decrement()
	case OP_INC:
		tape.Increment()
	case OP_COPY_TO_HEAD1:
		tape.Cells[tape.Head1] = tape.Cells[tape.Head0]
	case OP_COPY_FROM_HEAD1:
		tape.Cells[tape.Head0] = tape.Cells[tape.Head1]
	case OP_WHILE:
		if tape.CurrentCell() == 0 {
			tape.AdvanceToWhileEnd(m)
		} else {
			tape.PushWhile()
		}
	case OP_WHILE_END:
		if tape.CurrentCell() != 0 {
			if !tape.FallbackToWhileStart() {
				// Nothing to return to. Start over from the first cell
				// without advancing.
				tape.InstructionPointer = 0
				return
			}
		} else {
			tape.PopWhile()
		}
	}

	tape.Advance()
}
