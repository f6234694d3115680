package tapesoup

import (
	"sort"
)

// History keeps deep copies of run states in epoch order. Nothing it stores
// or returns is shared with the live state.
type History struct {
	Fidelity int
	initial  *RunState
	entries  []*RunState
}

func NewHistory(fidelity int, initial *RunState) *History {
	h := &History{}
	h.Init(fidelity, initial)
	return h
}

// Init drops every entry and starts over from initial.
func (h *History) Init(fidelity int, initial *RunState) {
	if fidelity < 1 {
		fidelity = 1
	}
	h.Fidelity = fidelity
	h.initial = initial.Clone()
	h.entries = nil
}

func (h *History) Len() int {
	return len(h.entries)
}

func (h *History) Initial() *RunState {
	return h.initial.Clone()
}

func (h *History) InitialEpoch() int {
	return h.initial.Epoch
}

// LastEpoch is the epoch of the newest entry, or the initial state's epoch
// when nothing has been stored.
func (h *History) LastEpoch() int {
	if len(h.entries) == 0 {
		return h.initial.Epoch
	}
	return h.entries[len(h.entries)-1].Epoch
}

// AddState stores a copy of state. States older than the newest entry are
// dropped and AddState reports false.
func (h *History) AddState(state *RunState) bool {
	if len(h.entries) > 0 && state.Epoch < h.entries[len(h.entries)-1].Epoch {
		return false
	}
	h.entries = append(h.entries, state.Clone())
	return true
}

// NoteState stores state only on epochs that are a multiple of Fidelity.
func (h *History) NoteState(state *RunState) bool {
	if state.Epoch%h.Fidelity != 0 {
		return false
	}
	return h.AddState(state)
}

// Get returns a copy of the newest entry at or before epoch, or of the
// initial state when there is none.
func (h *History) Get(epoch int) *RunState {
	// First entry past epoch; the one before it is the answer.
	i := sort.Search(len(h.entries), func(i int) bool {
		return h.entries[i].Epoch > epoch
	})
	if i == 0 {
		return h.initial.Clone()
	}
	return h.entries[i-1].Clone()
}

// Rewind returns the state at exactly epoch, replaying forward from the
// closest snapshot with advance. Epochs before the initial state return the
// initial state.
func (h *History) Rewind(epoch int, advance func(*RunState) *RunState) *RunState {
	state := h.Get(epoch)
	for state.Epoch < epoch {
		state = advance(state)
	}
	return state
}

// Epochs lists the stored epochs in order.
func (h *History) Epochs() []int {
	epochs := make([]int, len(h.entries))
	for i, entry := range h.entries {
		epochs[i] = entry.Epoch
	}
	return epochs
}
