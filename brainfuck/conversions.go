package brainfuck

import (
	"maps"
	"slices"
)

// Conversions remaps external instruction codes onto the canonical OPs. It
// has to cover every OP for the whole instruction set to be reachable.
type Conversions map[int]OP

func IdentityConversions() Conversions {
	c := make(Conversions, OP_COUNT)
	for _, op := range OP_SET {
		c[int(op)] = op
	}
	return c
}

func (c Conversions) Lookup(value int) (OP, bool) {
	op, ok := c[value]
	return op, ok
}

// Inverse maps each OP back to an external code. When several codes share an
// OP the largest code wins.
func (c Conversions) Inverse() map[OP]int {
	inverse := make(map[OP]int, len(c))
	for _, code := range slices.Sorted(maps.Keys(c)) {
		inverse[c[code]] = code
	}
	return inverse
}

// Total reports whether every canonical OP has an external code.
func (c Conversions) Total() bool {
	inverse := c.Inverse()
	for _, op := range OP_SET {
		if _, ok := inverse[op]; !ok {
			return false
		}
	}
	return true
}

// Equivalent is true for identical key sets with identical values.
func (c Conversions) Equivalent(o Conversions) bool {
	return maps.Equal(c, o)
}
