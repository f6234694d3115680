package tapesoup

import (
	"errors"
	"fmt"
)

const (
	DEBUG = false

	DEFAULT_WIDTH            = 20
	DEFAULT_HEIGHT           = 20
	DEFAULT_PROGRAM_LENGTH   = 64
	DEFAULT_HISTORY_FIDELITY = 50
	DEFAULT_RANGE            = 2
	DEFAULT_SPEED            = 10.0
)

// NoiseAction selects the perturbation applied after every pairing pass.
type NoiseAction string

const (
	NoiseNone             NoiseAction = "none"
	NoiseKillCells        NoiseAction = "killCells"
	NoiseKillInstructions NoiseAction = "killInstructions"
)

// InitMode selects what the initial grid is filled with.
type InitMode string

const (
	InitInstructions InitMode = "instructions"
	InitData         InitMode = "data"
)

var (
	ErrInvalidConfig      = errors.New("invalid configuration")
	ErrUnknownNoiseAction = errors.New("unknown noise action")
	ErrRunNotFound        = errors.New("run not found")
)

// ParseNoiseAction accepts the empty string as NoiseNone.
func ParseNoiseAction(s string) (NoiseAction, error) {
	switch NoiseAction(s) {
	case "", NoiseNone:
		return NoiseNone, nil
	case NoiseKillCells, NoiseKillInstructions:
		return NoiseAction(s), nil
	}
	return NoiseNone, fmt.Errorf("%q: %w", s, ErrUnknownNoiseAction)
}

func ParseInitMode(s string) (InitMode, error) {
	switch InitMode(s) {
	case "", InitInstructions:
		return InitInstructions, nil
	case InitData:
		return InitData, nil
	}
	return InitInstructions, fmt.Errorf("Unknown init mode [%s]: %w", s, ErrInvalidConfig)
}
