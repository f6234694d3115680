package brainfuck

import (
	"fmt"
	"strconv"
)

// DEFAULT_MAX_READS bounds a single run. Hitting it is not an error, the run
// just stops with whatever it has written so far.
const DEFAULT_MAX_READS = 1 << 10

type Machine struct {
	Config      *MachineConfig
	Conversions Conversions
}

type MachineConfig struct {
	MaxReads int `toml:"max_reads" yaml:"max_reads" validate:"gte=0"`
	// Conversions maps external codes (keys) onto canonical OPs (values).
	// Empty means identity.
	Conversions map[string]int `toml:"conversions" yaml:"conversions"`
}

// NewMachine copies mc. A zero read budget becomes DEFAULT_MAX_READS and
// empty conversions become the identity mapping.
func NewMachine(mc *MachineConfig, conversions Conversions) *Machine {
	config := &MachineConfig{MaxReads: DEFAULT_MAX_READS}
	if mc != nil {
		*config = *mc
		if config.MaxReads <= 0 {
			config.MaxReads = DEFAULT_MAX_READS
		}
	}
	if len(conversions) == 0 {
		conversions = IdentityConversions()
	}
	return &Machine{
		Config:      config,
		Conversions: conversions,
	}
}

// NewMachineFromConfig builds the conversions from the config table.
func NewMachineFromConfig(mc *MachineConfig) (*Machine, error) {
	conversions, err := mc.BuildConversions()
	if err != nil {
		return nil, err
	}
	return NewMachine(mc, conversions), nil
}

func (mc *MachineConfig) BuildConversions() (Conversions, error) {
	if mc == nil || len(mc.Conversions) == 0 {
		return IdentityConversions(), nil
	}
	conversions := make(Conversions, len(mc.Conversions))
	for key, value := range mc.Conversions {
		code, err := strconv.Atoi(key)
		if err != nil {
			return nil, fmt.Errorf("Failed to parse conversion key [%s]: %w", key, err)
		}
		conversions[code] = OP(value)
	}
	return conversions, nil
}

// Decode maps a raw cell value to the OP it executes as. Unmapped values run
// as NO_OP.
func (m *Machine) Decode(value int) OP {
	if op, ok := m.Conversions.Lookup(value); ok {
		return op
	}
	return NO_OP
}

// exec performs one read in place.
func (m *Machine) exec(t *Tape) {
	if t.Halted(m.Config.MaxReads) {
		return
	}
	t.NumReads = t.NumReads + 1
	m.Decode(t.CurrentInstruction()).Execute(t, m)
}

// Run drives the tape in place until it halts.
func (m *Machine) Run(t *Tape) {
	for !t.Halted(m.Config.MaxReads) {
		m.exec(t)
	}
}

// Step performs a single read on a copy of the state and returns the copy.
// Stepping until Halted lands on exactly the cells Execute returns.
func (m *Machine) Step(t *Tape) *Tape {
	next := t.Clone()
	m.exec(next)
	return next
}

// Execute runs a private copy of cells from a fresh state and returns it.
func (m *Machine) Execute(cells Program) Program {
	tape := NewTape(cells.Clone())
	m.Run(tape)
	return tape.Cells
}

// Matches reports whether both machines interpret tapes identically.
func (m *Machine) Matches(o *Machine) bool {
	return m.Config.MaxReads == o.Config.MaxReads && m.Conversions.Equivalent(o.Conversions)
}
