package tapesoup

// Mulberry32 is the run's only source of randomness. The whole generator is
// one word of state, so snapshots copy it by value and a run restored from a
// snapshot draws exactly what the original run drew.
type Mulberry32 struct {
	State uint32
}

func NewMulberry32(seed uint32) *Mulberry32 {
	return &Mulberry32{State: seed}
}

func (m *Mulberry32) Uint32() uint32 {
	m.State += 0x6d2b79f5
	s := m.State
	t := (s ^ (s >> 15)) * (1 | s)
	t ^= t + (t^(t>>7))*(61|t)
	return t ^ (t >> 14)
}

// Float64 returns a value in [0, 1).
func (m *Mulberry32) Float64() float64 {
	return float64(m.Uint32()) / 4294967296
}

// Intn returns a value in [0, n) as floor(Float64() * n).
func (m *Mulberry32) Intn(n int) int {
	return int(m.Float64() * float64(n))
}

func (m *Mulberry32) Clone() *Mulberry32 {
	return &Mulberry32{State: m.State}
}
