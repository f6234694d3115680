package brainfuck

import (
	"errors"
	"math/rand/v2"
	"strconv"
	"testing"
)

func TestBasicMachine(t *testing.T) {
	m := NewMachine(nil, nil)

	if m == nil {
		t.Errorf("NewMachine returned nil")
	}

	if m.Config.MaxReads != DEFAULT_MAX_READS {
		t.Errorf("Default read budget [%d] is not expected value [%d]", m.Config.MaxReads, DEFAULT_MAX_READS)
	}

	if !m.Conversions.Equivalent(IdentityConversions()) {
		t.Errorf("Default conversions are not the identity mapping |%v|", m.Conversions)
	}
}

func TestNewMachineCopiesConfig(t *testing.T) {
	mc := &MachineConfig{MaxReads: 10}
	m := NewMachine(mc, nil)
	mc.MaxReads = 99

	if m.Config.MaxReads != 10 {
		t.Errorf("Machine shares its config with the caller, read budget is [%d]", m.Config.MaxReads)
	}
}

func TestNewMachineFromConfig(t *testing.T) {
	mc := &MachineConfig{MaxReads: 64, Conversions: map[string]int{}}
	for _, op := range OP_SET {
		mc.Conversions[strconv.Itoa(int(op)+20)] = int(op)
	}

	m, err := NewMachineFromConfig(mc)
	if err != nil {
		t.Errorf("Unexpected failure when calling NewMachineFromConfig. %v", err)
		return
	}

	if m.Decode(26) != OP_INC {
		t.Errorf("Code [26] decodes to |%v|, expected |+|", m.Decode(26))
	}

	if m.Decode(6) != NO_OP {
		t.Errorf("Unmapped code [6] decodes to |%v|, expected NO_OP", m.Decode(6))
	}

	_, err = NewMachineFromConfig(&MachineConfig{Conversions: map[string]int{"x": 1}})
	if err == nil {
		t.Errorf("Unexpected success when calling NewMachineFromConfig with a non-integer key")
	}

	var numErr *strconv.NumError
	if !errors.As(err, &numErr) {
		t.Errorf("Error |%v| doesn't wrap the parse failure", err)
	}
}

func TestExecuteSelfIncrement(t *testing.T) {
	m := NewMachine(nil, nil)
	input := Program{6, 6, 2, 6}

	got := m.Execute(input)

	if !got.Equal(Program{8, 7, 2, 6}) {
		t.Errorf("Execute returned |%v|, expected |[8 7 2 6]|", got)
	}

	if !input.Equal(Program{6, 6, 2, 6}) {
		t.Errorf("Execute modified its input |%v|", input)
	}
}

func TestRunLoop(t *testing.T) {
	m := NewMachine(nil, nil)
	tape := NewTape(Program{1, 9, 5, 10, 3})

	m.Run(tape)

	if !tape.Cells.Equal(Program{1, 9, 5, 10, 0}) {
		t.Errorf("Run left cells |%v|, expected |[1 9 5 10 0]|", tape.Cells)
	}

	if tape.NumReads != 9 {
		t.Errorf("Run consumed [%d] reads, expected [9]", tape.NumReads)
	}
}

func TestRunSkipsLoop(t *testing.T) {
	m := NewMachine(nil, nil)
	tape := NewTape(Program{1, 9, 6, 10, 0})

	m.Run(tape)

	if !tape.Cells.Equal(Program{1, 9, 6, 10, 0}) {
		t.Errorf("Run left cells |%v|, expected them unchanged", tape.Cells)
	}

	if tape.NumReads != 5 {
		t.Errorf("Run consumed [%d] reads, expected [5]", tape.NumReads)
	}
}

func TestRunStopsAtBudget(t *testing.T) {
	m := NewMachine(&MachineConfig{MaxReads: 10}, nil)
	tape := NewTape(Program{9, 10})

	m.Run(tape)

	if tape.NumReads != 10 {
		t.Errorf("Run consumed [%d] reads, expected the budget [10]", tape.NumReads)
	}

	if !tape.Cells.Equal(Program{9, 10}) {
		t.Errorf("Run left cells |%v|, expected them unchanged", tape.Cells)
	}
}

func TestRunRestartsOnUnmatchedWhileEnd(t *testing.T) {
	m := NewMachine(&MachineConfig{MaxReads: 5}, nil)

	got := m.Execute(Program{6, 10})

	if !got.Equal(Program{7, 10}) {
		t.Errorf("Execute returned |%v|, expected |[7 10]|", got)
	}
}

func TestExecuteInertData(t *testing.T) {
	m := NewMachine(nil, nil)
	input := Program{-1, -300, 42, 11}

	if got := m.Execute(input); !got.Equal(input) {
		t.Errorf("Execute changed inert data |%v|", got)
	}
}

func TestExecuteWithConversions(t *testing.T) {
	conversions := IdentityConversions()
	conversions[0] = OP_INC
	conversions[6] = NO_OP
	m := NewMachine(nil, conversions)

	got := m.Execute(Program{0, 0})

	if !got.Equal(Program{2, 0}) {
		t.Errorf("Execute returned |%v|, expected |[2 0]|", got)
	}

	delete(conversions, 6)
	got = m.Execute(Program{6, 6})

	if !got.Equal(Program{6, 6}) {
		t.Errorf("Unmapped code didn't run as NO_OP |%v|", got)
	}
}

func TestStep(t *testing.T) {
	m := NewMachine(nil, nil)
	tape := NewTape(Program{6, 2, 6})

	next := m.Step(tape)

	if tape.NumReads != 0 || tape.Cells[0] != 6 {
		t.Errorf("Step modified the state it was given |%+v|", tape)
	}

	if next.NumReads != 1 || next.Cells[0] != 7 || next.InstructionPointer != 1 {
		t.Errorf("Step returned unexpected state |%+v|", next)
	}

	halted := NewTape(Program{0})
	halted.InstructionPointer = 1
	if after := m.Step(halted); after.NumReads != 0 {
		t.Errorf("Step on a halted tape performed a read")
	}
}

func TestStepMatchesExecute(t *testing.T) {
	rng := rand.New(rand.NewPCG(7, 11))
	m := NewMachine(&MachineConfig{MaxReads: 256}, nil)

	for i := 0; i < 200; i++ {
		program := RandomInstructions(16, rng)

		tape := NewTape(program.Clone())
		for !tape.Halted(m.Config.MaxReads) {
			tape = m.Step(tape)
		}

		if want := m.Execute(program); !tape.Cells.Equal(want) {
			t.Errorf("Stepping |%v| produced |%v|, Execute produced |%v|", program, tape.Cells, want)
		}
	}
}

func TestMachineMatches(t *testing.T) {
	a := NewMachine(nil, nil)
	b := NewMachine(&MachineConfig{MaxReads: DEFAULT_MAX_READS}, IdentityConversions())

	if !a.Matches(b) {
		t.Errorf("Identical machines reported as different")
	}

	c := NewMachine(&MachineConfig{MaxReads: 10}, nil)
	if a.Matches(c) {
		t.Errorf("Machines with different read budgets reported as matching")
	}

	conversions := IdentityConversions()
	conversions[11] = OP_INC
	d := NewMachine(nil, conversions)
	if a.Matches(d) {
		t.Errorf("Machines with different conversions reported as matching")
	}
}

func TestRandomProgram(t *testing.T) {
	rng := rand.New(rand.NewPCG(1, 2))

	for _, v := range RandomInstructions(1000, rng) {
		if v < 0 || v > 10 {
			t.Errorf("RandomInstructions produced [%d] outside [0, 10]", v)
		}
	}

	for _, v := range RandomData(1000, rng) {
		if v < DATA_LOWER_BOUND || v > DATA_UPPER_BOUND {
			t.Errorf("RandomData produced [%d] outside [%d, %d]", v, DATA_LOWER_BOUND, DATA_UPPER_BOUND)
		}
	}

	if p := RandomProgram(5, fixedSource(0.999999), 3, 4); !p.Equal(Program{4, 4, 4, 4, 4}) {
		t.Errorf("RandomProgram didn't reach the inclusive upper bound |%v|", p)
	}
}

type fixedSource float64

func (f fixedSource) Float64() float64 {
	return float64(f)
}
