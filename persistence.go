package tapesoup

import (
	"context"
	"errors"
	"fmt"
	"maps"
	"path/filepath"
	"slices"
	str "strings"
	"time"

	sqlite "github.com/glebarez/sqlite"
	"github.com/google/uuid"
	gorm "gorm.io/gorm"
	"gorm.io/gorm/logger"
	bf "nickandperla.net/tapesoup/brainfuck"
)

type PersistenceConfig struct {
	Enabled       bool     `toml:"enabled" yaml:"enabled"`
	Name          string   `toml:"name" yaml:"name" validate:"required_if=Enabled true"`
	Path          string   `toml:"path" yaml:"path" validate:"required_if=Enabled true"`
	SQLitePragmas []string `toml:"sqlite_pragmas" yaml:"sqlite_pragmas"`
	SQLiteOptions []string `toml:"sqlite_options" yaml:"sqlite_options"`
}

// Run records everything needed to replay a run from its snapshots.
type Run struct {
	ID              string `gorm:"primaryKey"`
	CreatedAt       time.Time
	Width           int
	Height          int
	ProgramLength   int
	Seed            uint32
	Mode            string
	Range           int
	NoiseAction     string
	PctNoise        float64
	RandomPivot     bool
	MaxReads        int
	Conversions     string
	HistoryFidelity int
	Snapshots       []Snapshot `gorm:"constraint:OnDelete:CASCADE"`
}

type Snapshot struct {
	ID          uint   `gorm:"primaryKey"`
	RunID       string `gorm:"index:idx_run_epoch"`
	Epoch       int    `gorm:"index:idx_run_epoch"`
	UniqueCells int
	RNGState    uint32
	Grid        []byte
}

type Persistence struct {
	Config *PersistenceConfig
	DB     *gorm.DB
}

func (config *PersistenceConfig) DSN() string {
	var pragmas str.Builder
	for i, prag := range config.SQLitePragmas {
		if i > 0 {
			pragmas.WriteRune('&')
		}
		pragmas.WriteString(fmt.Sprintf("_pragma=%s", prag))
	}

	options := str.Join(config.SQLiteOptions, "&")

	var path str.Builder
	path.WriteString(filepath.Join(config.Path, config.Name))
	if pragmas.Len() > 0 {
		path.WriteRune('?')
		path.WriteString(pragmas.String())
		if len(options) > 0 {
			path.WriteRune('&')
			path.WriteString(options)
		}
	} else if len(options) > 0 {
		path.WriteRune('?')
		path.WriteString(options)
	}
	return path.String()
}

func NewPersistence(config *PersistenceConfig) (*Persistence, error) {
	if config == nil {
		return nil, fmt.Errorf("config cannot be nil")
	}

	if len(config.Path) == 0 {
		return nil, fmt.Errorf("Path to database must be defined")
	}

	if len(config.Name) == 0 {
		return nil, fmt.Errorf("Name of database must be defined")
	}

	db, err := gorm.Open(sqlite.Open(config.DSN()), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		return nil, fmt.Errorf("Failed to open database [%s]: %w", config.Name, err)
	}

	db = db.Session(&gorm.Session{PrepareStmt: true, CreateBatchSize: 1000})

	p := &Persistence{Config: config, DB: db}
	if err = p.initialize(); err != nil {
		return nil, err
	}

	return p, nil
}

func (p *Persistence) initialize() error {
	if err := p.DB.AutoMigrate(
		&Run{},
		&Snapshot{},
	); err != nil {
		return fmt.Errorf("Failed to migrate schema: %w", err)
	}

	return nil
}

func (p *Persistence) Shutdown() error {
	sqldb, err := p.DB.DB()
	if err != nil {
		return fmt.Errorf("Failed to retrieve raw DB: %w", err)
	}
	return sqldb.Close()
}

// Conversions are stored as sorted codes followed by their OPs.
func formatConversions(c bf.Conversions) string {
	codes := slices.Sorted(maps.Keys(c))
	flat := make(bf.Program, 0, 2*len(codes))
	flat = append(flat, codes...)
	for _, code := range codes {
		flat = append(flat, int(c[code]))
	}
	return bf.FormatIntegers(flat)
}

func parseConversions(text string) (bf.Conversions, error) {
	if text == "" {
		return bf.IdentityConversions(), nil
	}
	flat, err := bf.ParseIntegers(text)
	if err != nil {
		return nil, err
	}
	if len(flat)%2 != 0 {
		return nil, fmt.Errorf("Conversions [%s] have an odd number of fields: %w", text, bf.ErrInvalidFormat)
	}
	half := len(flat) / 2
	c := make(bf.Conversions, half)
	for i := 0; i < half; i++ {
		c[flat[i]] = bf.OP(flat[half+i])
	}
	return c, nil
}

// CreateRun stores the parameters of a new run under a fresh id.
func (p *Persistence) CreateRun(spec InitSpec, run RunSpec, machine *bf.Machine, fidelity int) (*Run, error) {
	record := &Run{
		ID:              uuid.NewString(),
		Width:           spec.Width,
		Height:          spec.Height,
		ProgramLength:   spec.ProgramLength,
		Seed:            spec.Seed,
		Mode:            string(spec.Mode),
		Range:           run.Range,
		NoiseAction:     string(run.NoiseAction),
		PctNoise:        run.PctNoise,
		RandomPivot:     run.RandomPivot,
		MaxReads:        machine.Config.MaxReads,
		Conversions:     formatConversions(machine.Conversions),
		HistoryFidelity: fidelity,
	}
	if result := p.DB.Create(record); result.Error != nil {
		return nil, fmt.Errorf("Failed to call gorm.Create(): %w", result.Error)
	}
	return record, nil
}

func (p *Persistence) LoadRun(id string) (*Run, error) {
	record := &Run{}
	if result := p.DB.First(record, "id = ?", id); result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("%s: %w", id, ErrRunNotFound)
		}
		return nil, fmt.Errorf("Failed to load run [%s]: %w", id, result.Error)
	}
	return record, nil
}

func (p *Persistence) ListRuns() ([]Run, error) {
	var runs []Run
	if result := p.DB.Order("created_at").Find(&runs); result.Error != nil {
		return nil, fmt.Errorf("Failed to list runs: %w", result.Error)
	}
	return runs, nil
}

func (p *Persistence) SaveSnapshot(ctx context.Context, runID string, state *RunState) error {
	grid, err := state.Grid.MarshalBinary()
	if err != nil {
		return err
	}
	snapshot := &Snapshot{
		RunID:       runID,
		Epoch:       state.Epoch,
		UniqueCells: state.UniqueCells,
		Grid:        grid,
	}
	if state.RNG != nil {
		snapshot.RNGState = state.RNG.State
	}
	if result := p.DB.WithContext(ctx).Create(snapshot); result.Error != nil {
		return fmt.Errorf("Failed to save snapshot for epoch [%d]: %w", state.Epoch, result.Error)
	}
	return nil
}

func (s *Snapshot) State() (*RunState, error) {
	var grid Grid
	if err := grid.UnmarshalBinary(s.Grid); err != nil {
		return nil, fmt.Errorf("Failed to decode snapshot [%d]: %w", s.ID, err)
	}
	return &RunState{
		Epoch:       s.Epoch,
		UniqueCells: s.UniqueCells,
		Grid:        grid,
		RNG:         NewMulberry32(s.RNGState),
	}, nil
}

// LoadHistory rebuilds a run's history from its snapshots. The earliest
// snapshot becomes the initial state.
func (p *Persistence) LoadHistory(ctx context.Context, run *Run) (*History, error) {
	var snapshots []Snapshot
	if result := p.DB.WithContext(ctx).Where("run_id = ?", run.ID).Order("epoch, id").Find(&snapshots); result.Error != nil {
		return nil, fmt.Errorf("Failed to load snapshots for run [%s]: %w", run.ID, result.Error)
	}
	if len(snapshots) == 0 {
		return nil, fmt.Errorf("Run [%s] has no snapshots: %w", run.ID, ErrRunNotFound)
	}

	initial, err := snapshots[0].State()
	if err != nil {
		return nil, err
	}
	history := NewHistory(run.HistoryFidelity, initial)
	for i := 1; i < len(snapshots); i++ {
		state, err := snapshots[i].State()
		if err != nil {
			return nil, err
		}
		history.AddState(state)
	}
	return history, nil
}

// Machine rebuilds the interpreter the run was recorded with.
func (r *Run) Machine() (*bf.Machine, error) {
	conversions, err := parseConversions(r.Conversions)
	if err != nil {
		return nil, fmt.Errorf("Failed to parse conversions of run [%s]: %w", r.ID, err)
	}
	return bf.NewMachine(&bf.MachineConfig{MaxReads: r.MaxReads}, conversions), nil
}

func (r *Run) RunSpec() RunSpec {
	return RunSpec{
		Range:       r.Range,
		NoiseAction: NoiseAction(r.NoiseAction),
		PctNoise:    r.PctNoise,
		RandomPivot: r.RandomPivot,
	}
}

func (r *Run) InitSpec() InitSpec {
	return InitSpec{
		Width:         r.Width,
		Height:        r.Height,
		ProgramLength: r.ProgramLength,
		Seed:          r.Seed,
		Mode:          InitMode(r.Mode),
	}
}

// Recorder binds snapshots to one run.
type Recorder struct {
	Persistence *Persistence
	RunID       string
}

func (r *Recorder) SaveSnapshot(ctx context.Context, state *RunState) error {
	return r.Persistence.SaveSnapshot(ctx, r.RunID, state)
}
