package brainfuck

import (
	"slices"
)

// Program is a fixed length run of integers. Values inside the instruction
// set are executable, everything else is inert data.
type Program []int

func (p Program) Clone() Program {
	if p == nil {
		return nil
	}
	return slices.Clone(p)
}

func (p Program) Equal(o Program) bool {
	return slices.Equal(p, o)
}

// Tape is the complete execution state of one run: the cells being executed
// (and rewritten), the instruction pointer, both heads, the while stack and
// the number of reads spent so far.
type Tape struct {
	Cells              Program
	InstructionPointer int
	Head0              int
	Head1              int
	WhileIndexStack    []int
	NumReads           int
}

const WHILE_STACK_CAP = 10

// NewTape takes ownership of cells. Callers that need to keep the original
// must clone it first.
func NewTape(cells Program) *Tape {
	return &Tape{
		Cells:              cells,
		InstructionPointer: 0,
		WhileIndexStack:    make([]int, 0, WHILE_STACK_CAP),
	}
}

func (t *Tape) Clone() *Tape {
	clone := *t
	clone.Cells = t.Cells.Clone()
	clone.WhileIndexStack = append(make([]int, 0, max(len(t.WhileIndexStack), WHILE_STACK_CAP)), t.WhileIndexStack...)
	return &clone
}

func (t *Tape) Reset() {
	t.InstructionPointer = 0
	t.Head0 = 0
	t.Head1 = 0
	t.WhileIndexStack = t.WhileIndexStack[:0]
	t.NumReads = 0
}

func (t *Tape) InBounds(i int) bool {
	return i >= 0 && i <= len(t.Cells)-1
}

// Halted reports whether another read is possible: the instruction pointer is
// still on the tape and the read budget isn't spent.
func (t *Tape) Halted(maxReads int) bool {
	return !t.InBounds(t.InstructionPointer) || t.NumReads >= maxReads
}

func (t *Tape) Advance() {
	t.InstructionPointer = t.InstructionPointer + 1
}

func (t *Tape) CurrentInstruction() int {
	return t.Cells[t.InstructionPointer]
}

func (t *Tape) PushWhile() {
	t.WhileIndexStack = append(t.WhileIndexStack, t.InstructionPointer)
}

// PopWhile drops the innermost open loop. An empty stack is left alone.
func (t *Tape) PopWhile() bool {
	if len(t.WhileIndexStack) == 0 {
		return false
	}
	t.WhileIndexStack = t.WhileIndexStack[:len(t.WhileIndexStack)-1]
	return true
}

// FallbackToWhileStart moves the instruction pointer back onto the innermost
// OP_WHILE. The loop stays open; the following Advance lands on the first
// instruction of the body.
func (t *Tape) FallbackToWhileStart() bool {
	if len(t.WhileIndexStack) == 0 {
		return false
	}
	t.InstructionPointer = t.WhileIndexStack[len(t.WhileIndexStack)-1]
	return true
}

// AdvanceToWhileEnd scans forward to the matching OP_WHILE_END, tracking
// nesting. Every scanned cell costs a read. The scan stops on the last cell
// of the tape or when the budget runs out, whichever comes first.
func (t *Tape) AdvanceToWhileEnd(m *Machine) {
	level := 1
	last := len(t.Cells) - 1
	for level > 0 && t.InstructionPointer < last && t.NumReads < m.Config.MaxReads {
		t.NumReads = t.NumReads + 1
		t.InstructionPointer = t.InstructionPointer + 1
		switch m.Decode(t.Cells[t.InstructionPointer]) {
		case OP_WHILE:
			level++
		case OP_WHILE_END:
			level--
		}
	}
}
