package brainfuck

import (
	"errors"
	"fmt"
	"regexp"
	"strconv"
	str "strings"
)

// Human readable format, one character per cell:
//
//	OPs            0 < > { } - + . , [ ]
//	-1 .. -9       1 .. 9
//	-10            0 (collides with NO_OP)
//	11 .. 36       A .. Z
//	-11 .. -36     a .. z
//	> 36           %
//	< -36          &
//
// Anything else (a value in 0..10 the conversions don't cover) encodes as ?.
// Decoding drops characters outside the alphabet, so -10 and values beyond
// +-36 are lossy; encoding is stable from the second round trip on.

var ErrInvalidFormat = errors.New("invalid program format")

const (
	HR_ALPHABET   = "%&0123456789<>{}-+.,[]abcdefghijklmnopqrstuvwxyzABCDEFGHIJKLMNOPQRSTUVWXYZ"
	HR_OVERFLOW   = '%'
	HR_UNDERFLOW  = '&'
	HR_UNKNOWN    = '?'
	LETTER_OFFSET = 11
	LETTER_COUNT  = 26
	// Values the overflow symbols decode to.
	OVERFLOW_VALUE  = LETTER_COUNT + LETTER_OFFSET + 1
	UNDERFLOW_VALUE = -OVERFLOW_VALUE
)

var (
	integerListFormat   = regexp.MustCompile(`^[,\-\d]+$`)
	humanReadableFormat = regexp.MustCompile(`^[a-zA-Z0-9{}\-+<>.,\[\]%&]+$`)
	whitespace          = regexp.MustCompile(`\s+`)
)

func (c Conversions) encodeValue(value int) rune {
	if op, ok := c.Lookup(value); ok {
		if op.Valid() {
			return OP_SYMBOLS[op]
		}
		return HR_UNKNOWN
	}
	switch {
	case -10 <= value && value < 0:
		return rune('0' + (-value)%10)
	case LETTER_OFFSET-1 < value && value <= LETTER_COUNT+LETTER_OFFSET-1:
		return rune('A' + value - LETTER_OFFSET)
	case -(LETTER_COUNT+LETTER_OFFSET-1) <= value && value < -(LETTER_OFFSET-1):
		return rune('a' - value - LETTER_OFFSET)
	case value > LETTER_COUNT+LETTER_OFFSET-1:
		return HR_OVERFLOW
	case value < -(LETTER_COUNT + LETTER_OFFSET - 1):
		return HR_UNDERFLOW
	}
	return HR_UNKNOWN
}

// Encode renders a program in the human readable format.
func (c Conversions) Encode(p Program) string {
	var sb str.Builder
	sb.Grow(len(p))
	for _, value := range p {
		sb.WriteRune(c.encodeValue(value))
	}
	return sb.String()
}

func opForSymbol(r rune) (OP, bool) {
	for op, symbol := range OP_SYMBOLS {
		if symbol == r {
			return OP(op), true
		}
	}
	return NO_OP, false
}

// Decode parses the human readable format, silently skipping characters
// outside the alphabet. An OP the conversions have no code for decodes to its
// canonical value.
func (c Conversions) Decode(text string) Program {
	inverse := c.Inverse()
	program := make(Program, 0, len(text))
	for _, r := range text {
		if op, ok := opForSymbol(r); ok {
			if code, ok := inverse[op]; ok {
				program = append(program, code)
			} else {
				program = append(program, int(op))
			}
			continue
		}
		switch {
		case r >= '1' && r <= '9':
			program = append(program, -int(r-'0'))
		case r >= 'A' && r <= 'Z':
			program = append(program, int(r-'A')+LETTER_OFFSET)
		case r >= 'a' && r <= 'z':
			program = append(program, -(int(r-'a') + LETTER_OFFSET))
		case r == HR_OVERFLOW:
			program = append(program, OVERFLOW_VALUE)
		case r == HR_UNDERFLOW:
			program = append(program, UNDERFLOW_VALUE)
		}
	}
	return program
}

// FormatIntegers renders the comma separated integer format.
func FormatIntegers(p Program) string {
	parts := make([]string, len(p))
	for i, value := range p {
		parts[i] = strconv.Itoa(value)
	}
	return str.Join(parts, ",")
}

// leadingInt parses an optional minus sign and the digits after it, ignoring
// whatever follows. "12-3" is 12, "-" and "" don't parse.
func leadingInt(field string) (int, bool) {
	end := 0
	if end < len(field) && field[end] == '-' {
		end++
	}
	digits := end
	for end < len(field) && field[end] >= '0' && field[end] <= '9' {
		end++
	}
	if end == digits {
		return 0, false
	}
	value, err := strconv.Atoi(field[:end])
	if err != nil {
		return 0, false
	}
	return value, true
}

// ParseIntegers accepts only the strict comma separated format.
func ParseIntegers(text string) (Program, error) {
	if !integerListFormat.MatchString(text) {
		return nil, fmt.Errorf("%q is not a comma separated integer list: %w", text, ErrInvalidFormat)
	}
	fields := str.Split(text, ",")
	program := make(Program, len(fields))
	for i, field := range fields {
		value, ok := leadingInt(field)
		if !ok {
			return nil, fmt.Errorf("Failed to parse integer [%s] at index [%d]: %w", field, i, ErrInvalidFormat)
		}
		program[i] = value
	}
	return program, nil
}

// ParseGenericInput tries the integer list format first and falls back to
// the human readable format. Text matching neither fails with
// ErrInvalidFormat.
func (c Conversions) ParseGenericInput(text string) (Program, error) {
	if program, err := ParseIntegers(text); err == nil {
		return program, nil
	}
	if humanReadableFormat.MatchString(whitespace.ReplaceAllString(text, "")) {
		return c.Decode(text), nil
	}
	return nil, fmt.Errorf("%q contains invalid characters: %w", text, ErrInvalidFormat)
}
