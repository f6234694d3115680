package brainfuck

// Source is the only thing the package needs from a random number generator.
type Source interface {
	Float64() float64
}

const (
	DATA_LOWER_BOUND = -256
	DATA_UPPER_BOUND = 0
)

// RandomProgram draws size values uniformly from [minInt, maxInt].
func RandomProgram(size int, rng Source, minInt, maxInt int) Program {
	program := make(Program, size)
	span := float64(maxInt - minInt + 1)
	for i := range program {
		program[i] = int(rng.Float64()*span) + minInt
	}
	return program
}

func RandomInstructions(size int, rng Source) Program {
	return RandomProgram(size, rng, int(NO_OP), int(OP_WHILE_END))
}

func RandomData(size int, rng Source) Program {
	return RandomProgram(size, rng, DATA_LOWER_BOUND, DATA_UPPER_BOUND)
}
