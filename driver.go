package tapesoup

import (
	"context"
	"log/slog"
	"math"
	"time"

	"golang.org/x/time/rate"
	bf "nickandperla.net/tapesoup/brainfuck"
)

// SnapshotSink receives every state the history keeps.
type SnapshotSink interface {
	SaveSnapshot(ctx context.Context, state *RunState) error
}

// Driver owns the live state and moves it through time: single steps
// forward and back, explicit saves, and a paced run loop.
type Driver struct {
	Reactor               *Reactor
	History               *History
	State                 *RunState
	Spec                  RunSpec
	StoreStateWhenRunning bool
	ProgressEvery         int

	Sink      SnapshotSink
	Telemetry *Telemetry
	Logger    *slog.Logger
}

func NewDriver(config *Config, state *RunState, machine *bf.Machine, logger *slog.Logger) *Driver {
	if logger == nil {
		logger = slog.Default()
	}
	return &Driver{
		Reactor:               NewReactor(machine, 0),
		History:               NewHistory(config.History.Fidelity, state),
		State:                 state,
		Spec:                  config.Run,
		StoreStateWhenRunning: config.History.StoreStateWhenRunning,
		ProgressEvery:         config.Log.ProgressEvery,
		Logger:                logger,
	}
}

func (d *Driver) step() StepReport {
	start := time.Now()
	state, report := d.Reactor.Step(d.State, d.Spec)
	d.State = state
	if d.Telemetry != nil {
		d.Telemetry.ObserveStep(state, report, time.Since(start))
	}
	if d.ProgressEvery > 0 && state.Epoch%d.ProgressEvery == 0 {
		d.Logger.Info("progress", "epoch", state.Epoch, "unique_cells", state.UniqueCells, "pairs", len(report.Pairs), "skipped", report.Skipped)
	}
	return report
}

func (d *Driver) record(ctx context.Context, stored bool) error {
	if !stored {
		d.Logger.Debug("stale history append dropped", "epoch", d.State.Epoch, "last_epoch", d.History.LastEpoch())
		return nil
	}
	if d.Sink == nil {
		return nil
	}
	if err := d.Sink.SaveSnapshot(ctx, d.State); err != nil {
		return err
	}
	d.Logger.Debug("snapshot written", "epoch", d.State.Epoch)
	return nil
}

// Forward applies one step and always stores the result.
func (d *Driver) Forward(ctx context.Context) (StepReport, error) {
	report := d.step()
	return report, d.record(ctx, d.History.AddState(d.State))
}

// Back moves to the previous epoch, replaying from the nearest snapshot.
// It reports false at epoch 0.
func (d *Driver) Back() bool {
	if d.State.Epoch <= d.History.InitialEpoch() {
		return false
	}
	d.State = d.History.Rewind(d.State.Epoch-1, d.Reactor.Advance(d.Spec))
	if d.Telemetry != nil {
		d.Telemetry.ObserveRewind(d.State)
	}
	return true
}

// Save stores the current state regardless of fidelity.
func (d *Driver) Save(ctx context.Context) error {
	return d.record(ctx, d.History.AddState(d.State))
}

// SetMachine swaps the interpreter and reports whether it interprets tapes
// differently from the previous one.
func (d *Driver) SetMachine(m *bf.Machine) bool {
	changed := !d.Reactor.Machine.Matches(m)
	d.Reactor.Machine = m
	return changed
}

// Restart replaces the state with a fresh one and clears the history.
func (d *Driver) Restart(spec InitSpec) {
	d.State = NewRunState(spec)
	d.History.Init(d.History.Fidelity, d.State)
}

func (d *Driver) limiter() *rate.Limiter {
	speed := math.Abs(d.Spec.Speed)
	if math.IsInf(speed, 1) {
		return rate.NewLimiter(rate.Inf, 1)
	}
	return rate.NewLimiter(rate.Limit(speed), 1)
}

// Run ticks |Spec.Speed| times per second until ctx is done or epochs steps
// have been taken (zero means no limit). A negative speed runs backwards and
// stops at the initial state; zero speed returns immediately. Running forward
// notes states on the history's fidelity when StoreStateWhenRunning is set.
func (d *Driver) Run(ctx context.Context, epochs int) error {
	if d.Spec.Speed == 0 || math.IsNaN(d.Spec.Speed) {
		return nil
	}
	backwards := d.Spec.Speed < 0
	limiter := d.limiter()

	d.Logger.Info("run started", "epoch", d.State.Epoch, "speed", d.Spec.Speed, "range", d.Spec.Range, "noise", d.Spec.NoiseAction)
	defer func() {
		d.Logger.Info("run stopped", "epoch", d.State.Epoch, "unique_cells", d.State.UniqueCells)
	}()

	for taken := 0; epochs == 0 || taken < epochs; taken++ {
		// Wait only fails when ctx is done or its deadline falls before the
		// next tick.
		if err := limiter.Wait(ctx); err != nil {
			return nil
		}

		if backwards {
			if !d.Back() {
				return nil
			}
			continue
		}

		d.step()
		if d.StoreStateWhenRunning {
			if d.State.Epoch%d.History.Fidelity != 0 {
				continue
			}
			if err := d.record(ctx, d.History.NoteState(d.State)); err != nil {
				return err
			}
		}
	}
	return nil
}
