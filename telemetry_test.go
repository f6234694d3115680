package tapesoup

import (
	"io"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTelemetryObserveStep(t *testing.T) {
	tel := NewTelemetry()
	state := &RunState{Epoch: 4, UniqueCells: 17}
	report := StepReport{Pairs: make([]Pair, 5), Skipped: 2, Mutations: 9}

	tel.ObserveStep(state, report, 3*time.Millisecond)
	tel.ObserveStep(state, report, 3*time.Millisecond)

	assert.Equal(t, 2.0, testutil.ToFloat64(tel.Epochs))
	assert.Equal(t, 10.0, testutil.ToFloat64(tel.Pairings))
	assert.Equal(t, 4.0, testutil.ToFloat64(tel.Skipped))
	assert.Equal(t, 18.0, testutil.ToFloat64(tel.NoiseMutations))
	assert.Equal(t, 17.0, testutil.ToFloat64(tel.UniqueCells))
	assert.Equal(t, 4.0, testutil.ToFloat64(tel.Epoch))

	tel.ObserveRewind(&RunState{Epoch: 3, UniqueCells: 11})
	assert.Equal(t, 1.0, testutil.ToFloat64(tel.Rewinds))
	assert.Equal(t, 3.0, testutil.ToFloat64(tel.Epoch))
}

func TestTelemetryHandler(t *testing.T) {
	tel := NewTelemetry()
	tel.ObserveStep(&RunState{Epoch: 1, UniqueCells: 2}, StepReport{}, time.Millisecond)

	server := httptest.NewServer(tel.Handler())
	defer server.Close()

	resp, err := server.Client().Get(server.URL)
	require.NoError(t, err)
	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)

	assert.Contains(t, string(body), "tapesoup_epochs_total 1")
	assert.Contains(t, string(body), "tapesoup_step_duration_seconds_count 1")
}

func TestTelemetryRegistriesAreIndependent(t *testing.T) {
	a, b := NewTelemetry(), NewTelemetry()
	a.Epochs.Inc()

	assert.Equal(t, 1.0, testutil.ToFloat64(a.Epochs))
	assert.Equal(t, 0.0, testutil.ToFloat64(b.Epochs))
}
