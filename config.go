package tapesoup

import (
	"fmt"
	"os"
	"path/filepath"
	str "strings"

	"github.com/BurntSushi/toml"
	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"
	bf "nickandperla.net/tapesoup/brainfuck"
)

type InitConfig struct {
	Width         int      `toml:"width" yaml:"width" validate:"gte=1"`
	Height        int      `toml:"height" yaml:"height" validate:"gte=1"`
	ProgramLength int      `toml:"program_length" yaml:"program_length" validate:"gte=1"`
	Seed          string   `toml:"seed" yaml:"seed"`
	Mode          InitMode `toml:"mode" yaml:"mode" validate:"omitempty,oneof=instructions data"`
}

type HistoryConfig struct {
	Fidelity              int  `toml:"fidelity" yaml:"fidelity" validate:"gte=1"`
	StoreStateWhenRunning bool `toml:"store_state_when_running" yaml:"store_state_when_running"`
}

type LogConfig struct {
	Level string `toml:"level" yaml:"level" validate:"omitempty,oneof=debug info warn error"`
	File  string `toml:"file" yaml:"file"`
	// Log progress every N epochs while running. Zero disables it.
	ProgressEvery int `toml:"progress_every" yaml:"progress_every" validate:"gte=0"`
}

type TelemetryConfig struct {
	Enabled bool   `toml:"enabled" yaml:"enabled"`
	Listen  string `toml:"listen" yaml:"listen" validate:"required_if=Enabled true"`
}

type Config struct {
	Init        InitConfig        `toml:"init" yaml:"init"`
	Run         RunSpec           `toml:"run" yaml:"run"`
	Machine     bf.MachineConfig  `toml:"machine" yaml:"machine"`
	History     HistoryConfig     `toml:"history" yaml:"history"`
	Persistence PersistenceConfig `toml:"persistence" yaml:"persistence"`
	Log         LogConfig         `toml:"log" yaml:"log"`
	Telemetry   TelemetryConfig   `toml:"telemetry" yaml:"telemetry"`
}

var validate = validator.New()

func DefaultConfig() *Config {
	return &Config{
		Init: InitConfig{
			Width:         DEFAULT_WIDTH,
			Height:        DEFAULT_HEIGHT,
			ProgramLength: DEFAULT_PROGRAM_LENGTH,
			Mode:          InitInstructions,
		},
		Run: RunSpec{
			Range:       DEFAULT_RANGE,
			Speed:       DEFAULT_SPEED,
			NoiseAction: NoiseNone,
		},
		Machine: bf.MachineConfig{
			MaxReads: bf.DEFAULT_MAX_READS,
		},
		History: HistoryConfig{
			Fidelity:              DEFAULT_HISTORY_FIDELITY,
			StoreStateWhenRunning: true,
		},
		Persistence: PersistenceConfig{
			Path:          ".",
			Name:          "tapesoup.db",
			SQLitePragmas: []string{"journal_mode(WAL)", "busy_timeout(5000)"},
		},
		Log: LogConfig{
			Level: "info",
		},
		Telemetry: TelemetryConfig{
			Listen: ":9090",
		},
	}
}

// LoadConfig decodes a TOML or YAML file, picked by extension, over the
// defaults and validates the result.
func LoadConfig(path string) (*Config, error) {
	config := DefaultConfig()

	switch str.ToLower(filepath.Ext(path)) {
	case ".toml":
		if _, err := toml.DecodeFile(path, config); err != nil {
			return nil, fmt.Errorf("Failed to decode config [%s]: %w", path, err)
		}
	case ".yaml", ".yml":
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("Failed to read config [%s]: %w", path, err)
		}
		if err := yaml.Unmarshal(data, config); err != nil {
			return nil, fmt.Errorf("Failed to decode config [%s]: %w", path, err)
		}
	default:
		return nil, fmt.Errorf("Unsupported config format [%s]: %w", path, ErrInvalidConfig)
	}

	if err := config.Validate(); err != nil {
		return nil, err
	}
	return config, nil
}

func (c *Config) Validate() error {
	if err := validate.Struct(c); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidConfig, err)
	}
	if _, err := c.Machine.BuildConversions(); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidConfig, err)
	}
	return nil
}

// InitSpec resolves the seed text into a generator seed.
func (c *Config) InitSpec() InitSpec {
	return InitSpec{
		Width:         c.Init.Width,
		Height:        c.Init.Height,
		ProgramLength: c.Init.ProgramLength,
		Seed:          ParseSeed(c.Init.Seed),
		Mode:          c.Init.Mode,
	}
}
