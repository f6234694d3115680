package tapesoup

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestDefaultConfigIsValid(t *testing.T) {
	config := DefaultConfig()

	require.NoError(t, config.Validate())
	assert.Equal(t, 20, config.Init.Width)
	assert.Equal(t, 20, config.Init.Height)
	assert.Equal(t, 64, config.Init.ProgramLength)
	assert.Equal(t, 1024, config.Machine.MaxReads)
	assert.Equal(t, 50, config.History.Fidelity)
	assert.True(t, config.History.StoreStateWhenRunning)
	assert.Equal(t, 2, config.Run.Range)
	assert.Equal(t, 10.0, config.Run.Speed)
	assert.Equal(t, NoiseNone, config.Run.NoiseAction)
	assert.False(t, config.Run.RandomPivot)
	assert.Equal(t, InitInstructions, config.Init.Mode)
}

func TestLoadConfigTOML(t *testing.T) {
	path := writeFile(t, "soup.toml", `
[init]
width = 8
height = 6
seed = "12345"
mode = "data"

[run]
range = 3
noise_action = "killCells"
pct_noise = 2.5
random_pivot = true

[machine]
max_reads = 512

[machine.conversions]
"0" = 0
"1" = 1
"2" = 2
"3" = 3
"4" = 4
"5" = 5
"6" = 6
"7" = 7
"8" = 8
"9" = 9
"10" = 10

[history]
store_state_when_running = false
`)

	config, err := LoadConfig(path)
	require.NoError(t, err)

	assert.Equal(t, 8, config.Init.Width)
	assert.Equal(t, 6, config.Init.Height)
	assert.Equal(t, 64, config.Init.ProgramLength, "unset keys keep their defaults")
	assert.Equal(t, InitData, config.Init.Mode)
	assert.Equal(t, 3, config.Run.Range)
	assert.Equal(t, NoiseKillCells, config.Run.NoiseAction)
	assert.Equal(t, 2.5, config.Run.PctNoise)
	assert.True(t, config.Run.RandomPivot)
	assert.Equal(t, 512, config.Machine.MaxReads)
	assert.Len(t, config.Machine.Conversions, 11)
	assert.False(t, config.History.StoreStateWhenRunning)
	assert.Equal(t, 50, config.History.Fidelity)

	spec := config.InitSpec()
	assert.Equal(t, uint32(12345), spec.Seed)
	assert.Equal(t, 8, spec.Width)
}

func TestLoadConfigYAML(t *testing.T) {
	path := writeFile(t, "soup.yaml", `
init:
  width: 3
  program_length: 16
run:
  speed: -4
history:
  fidelity: 7
log:
  level: debug
`)

	config, err := LoadConfig(path)
	require.NoError(t, err)

	assert.Equal(t, 3, config.Init.Width)
	assert.Equal(t, 20, config.Init.Height)
	assert.Equal(t, 16, config.Init.ProgramLength)
	assert.Equal(t, -4.0, config.Run.Speed)
	assert.Equal(t, 7, config.History.Fidelity)
	assert.Equal(t, "debug", config.Log.Level)
}

func TestLoadConfigInvalid(t *testing.T) {
	cases := map[string]string{
		"range.toml":     "[run]\nrange = -1\n",
		"noise.toml":     "[run]\nnoise_action = \"killEverything\"\n",
		"pct.toml":       "[run]\npct_noise = 101.0\n",
		"width.toml":     "[init]\nwidth = 0\n",
		"fidelity.toml":  "[history]\nfidelity = 0\n",
		"level.toml":     "[log]\nlevel = \"loud\"\n",
		"mapping.toml":   "[machine.conversions]\nx = 1\n",
		"telemetry.toml": "[telemetry]\nenabled = true\nlisten = \"\"\n",
	}

	for name, content := range cases {
		_, err := LoadConfig(writeFile(t, name, content))
		assert.ErrorIs(t, err, ErrInvalidConfig, name)
	}
}

func TestLoadConfigErrors(t *testing.T) {
	_, err := LoadConfig(writeFile(t, "soup.json", "{}"))
	assert.ErrorIs(t, err, ErrInvalidConfig)

	_, err = LoadConfig(filepath.Join(t.TempDir(), "missing.toml"))
	assert.Error(t, err)

	_, err = LoadConfig(writeFile(t, "broken.toml", "[init\n"))
	assert.Error(t, err)
}

func TestParseInitMode(t *testing.T) {
	mode, err := ParseInitMode("data")
	require.NoError(t, err)
	assert.Equal(t, InitData, mode)

	mode, err = ParseInitMode("")
	require.NoError(t, err)
	assert.Equal(t, InitInstructions, mode)

	_, err = ParseInitMode("soup")
	assert.ErrorIs(t, err, ErrInvalidConfig)
}
