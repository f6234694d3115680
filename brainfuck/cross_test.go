package brainfuck

import (
	"math/rand/v2"
	"testing"
)

func TestCrossInertPair(t *testing.T) {
	m := NewMachine(nil, nil)
	a, b := Program{1, 2, 3, 4}, Program{0, 0, 0, 0}

	gotA, gotB := m.Cross(a, b)

	if !gotA.Equal(a) || !gotB.Equal(b) {
		t.Errorf("Cross of head moves only returned |%v| |%v|", gotA, gotB)
	}
}

func TestCrossWritesAcrossSeam(t *testing.T) {
	m := NewMachine(nil, nil)
	a, b := Program{1, 6, 0, 0}, Program{0, 0, 0, 0}

	gotA, gotB := m.Cross(a, b)

	if !gotA.Equal(Program{1, 6, 0, 0}) {
		t.Errorf("Cross returned first half |%v|, expected |[1 6 0 0]|", gotA)
	}

	if !gotB.Equal(Program{0, 0, 0, 1}) {
		t.Errorf("Cross returned second half |%v|, expected |[0 0 0 1]|", gotB)
	}

	if !a.Equal(Program{1, 6, 0, 0}) || !b.Equal(Program{0, 0, 0, 0}) {
		t.Errorf("Cross modified its inputs |%v| |%v|", a, b)
	}
}

func TestCrossSelfModifies(t *testing.T) {
	m := NewMachine(nil, nil)

	gotA, gotB := m.Cross(Program{6, 2, 6, 0}, Program{0, 0, 0, 0})

	if !gotA.Equal(Program{7, 3, 6, 0}) || !gotB.Equal(Program{0, 0, 0, 0}) {
		t.Errorf("Cross returned |%v| |%v|, expected |[7 3 6 0]| |[0 0 0 0]|", gotA, gotB)
	}
}

func TestCrossAtPivot(t *testing.T) {
	m := NewMachine(nil, nil)
	a, b := Program{0, 0, 0, 0}, Program{6, 0, 0, 0}

	plainA, plainB := m.Cross(a, b)
	if !plainA.Equal(Program{1, 0, 0, 0}) || !plainB.Equal(Program{6, 0, 0, 0}) {
		t.Errorf("Cross returned |%v| |%v|, expected |[1 0 0 0]| |[6 0 0 0]|", plainA, plainB)
	}

	rotA, rotB := m.CrossAt(a, b, 4)
	if !rotA.Equal(Program{0, 0, 0, 0}) || !rotB.Equal(Program{7, 0, 0, 0}) {
		t.Errorf("CrossAt pivot [4] returned |%v| |%v|, expected |[0 0 0 0]| |[7 0 0 0]|", rotA, rotB)
	}

	zeroA, zeroB := m.CrossAt(a, b, 0)
	if !zeroA.Equal(plainA) || !zeroB.Equal(plainB) {
		t.Errorf("CrossAt pivot [0] doesn't match Cross")
	}

	rngA, rngB := m.CrossWithRotation(a, b, fixedSource(0.5))
	if !rngA.Equal(rotA) || !rngB.Equal(rotB) {
		t.Errorf("CrossWithRotation with draw [0.5] doesn't match pivot [4] |%v| |%v|", rngA, rngB)
	}
}

func TestCrossPreservesLengths(t *testing.T) {
	rng := rand.New(rand.NewPCG(3, 5))
	m := NewMachine(&MachineConfig{MaxReads: 128}, nil)

	for i := 0; i < 100; i++ {
		a := RandomInstructions(1+i%7, rng)
		b := RandomInstructions(1+i%5, rng)

		gotA, gotB := m.CrossWithRotation(a, b, rng)

		if len(gotA) != len(a) || len(gotB) != len(b) {
			t.Errorf("Cross changed lengths [%d, %d] to [%d, %d]", len(a), len(b), len(gotA), len(gotB))
		}

		// Appending to one half must never bleed into the other.
		gotA = append(gotA, 99)
		if len(gotB) > 0 && gotB[0] == 99 {
			t.Errorf("Cross halves share capacity")
		}
	}
}

func TestCrossEmpty(t *testing.T) {
	m := NewMachine(nil, nil)

	a, b := m.Cross(nil, nil)
	if len(a) != 0 || len(b) != 0 {
		t.Errorf("Cross of empty programs returned |%v| |%v|", a, b)
	}

	a, b = m.Cross(nil, Program{6})
	if len(a) != 0 || !b.Equal(Program{7}) {
		t.Errorf("Cross with an empty first half returned |%v| |%v|", a, b)
	}
}

func TestDrawPivot(t *testing.T) {
	if p := DrawPivot(8, fixedSource(0)); p != 0 {
		t.Errorf("DrawPivot(8, 0) = [%d], expected [0]", p)
	}

	if p := DrawPivot(8, fixedSource(0.999)); p != 7 {
		t.Errorf("DrawPivot(8, 0.999) = [%d], expected [7]", p)
	}
}
