package tapesoup

import (
	"crypto/rand"
	"encoding/binary"
	str "strings"
	"unicode/utf16"
)

// HashString is DJB2 over UTF-16 code units: h = h*33 ^ unit, starting at
// 5381, kept to 32 bits.
func HashString(s string) uint32 {
	h := uint32(5381)
	for _, unit := range utf16.Encode([]rune(s)) {
		h = (h * 33) ^ uint32(unit)
	}
	return h
}

// ParseSeed turns user input into a generator seed. Empty input draws a
// random seed, input starting with an integer uses that integer modulo 2^32
// (trailing text is ignored), anything else is hashed.
func ParseSeed(input string) uint32 {
	if input == "" {
		return RandomSeed()
	}
	if seed, ok := leadingSeed(input); ok {
		return seed
	}
	return HashString(input)
}

func RandomSeed() uint32 {
	var b [4]byte
	if _, err := rand.Read(b[:]); err != nil {
		panic(err)
	}
	return binary.LittleEndian.Uint32(b[:])
}

func leadingSeed(input string) (uint32, bool) {
	s := str.TrimLeft(input, " \t\n\r\f\v")
	negative := false
	if len(s) > 0 && (s[0] == '-' || s[0] == '+') {
		negative = s[0] == '-'
		s = s[1:]
	}
	var value uint32
	digits := 0
	for digits < len(s) && s[digits] >= '0' && s[digits] <= '9' {
		value = value*10 + uint32(s[digits]-'0')
		digits++
	}
	if digits == 0 {
		return 0, false
	}
	if negative {
		value = -value
	}
	return value, true
}
