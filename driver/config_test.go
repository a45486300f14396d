package driver

import (
	"runtime"
	"testing"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wippyai/wasmc/errors"
)

func env(vars map[string]string) func(string) (string, bool) {
	return func(key string) (string, bool) {
		v, ok := vars[key]
		return v, ok
	}
}

func TestLoadConfigDefaults(t *testing.T) {
	cfg, err := LoadConfig(afero.NewMemMapFs(), "", env(nil))
	require.NoError(t, err)
	assert.Equal(t, Config{
		OutputDir: ".",
		Extension: ".wasm",
		Jobs:      runtime.GOMAXPROCS(0),
		Overwrite: true,
	}, cfg)
}

func TestLoadConfigLayers(t *testing.T) {
	fs := afero.NewMemMapFs()
	require.NoError(t, afero.WriteFile(fs, "wasmc.yaml", []byte(`
output_dir: build
extension: bin
jobs: 2
validate: true
`), 0o644))

	t.Run("file", func(t *testing.T) {
		cfg, err := LoadConfig(fs, "wasmc.yaml", env(nil))
		require.NoError(t, err)
		assert.Equal(t, "build", cfg.OutputDir)
		assert.Equal(t, ".bin", cfg.Extension)
		assert.Equal(t, 2, cfg.Jobs)
		assert.True(t, cfg.Validate)
		assert.True(t, cfg.Overwrite)
	})

	t.Run("env over file", func(t *testing.T) {
		cfg, err := LoadConfig(fs, "wasmc.yaml", env(map[string]string{
			"WASMC_JOBS":      "7",
			"WASMC_OVERWRITE": "false",
		}))
		require.NoError(t, err)
		assert.Equal(t, "build", cfg.OutputDir)
		assert.Equal(t, 7, cfg.Jobs)
		assert.False(t, cfg.Overwrite)
	})

	t.Run("flags over env", func(t *testing.T) {
		cfg, err := LoadConfig(fs, "wasmc.yaml", env(map[string]string{
			"WASMC_OUTPUT_DIR": "from-env",
			"WASMC_JOBS":       "7",
		}))
		require.NoError(t, err)

		flags := FlagSet()
		require.NoError(t, flags.Parse([]string{"-o", "from-flag", "--validate=false"}))
		require.NoError(t, cfg.ApplyFlags(flags))
		assert.Equal(t, "from-flag", cfg.OutputDir)
		assert.Equal(t, 7, cfg.Jobs)
		assert.False(t, cfg.Validate)
		assert.True(t, cfg.Overwrite)
	})
}

func TestLoadConfigErrors(t *testing.T) {
	fs := afero.NewMemMapFs()
	require.NoError(t, afero.WriteFile(fs, "unknown.yaml", []byte("threads: 3\n"), 0o644))
	require.NoError(t, afero.WriteFile(fs, "empty.yaml", nil, 0o644))

	tests := []struct {
		name string
		path string
		env  map[string]string
		kind errors.Kind
	}{
		{"missing file", "nope.yaml", nil, errors.KindIO},
		{"unknown field", "unknown.yaml", nil, errors.KindInvalidData},
		{"bad env value", "", map[string]string{"WASMC_JOBS": "many"}, errors.KindInvalidData},
		{"zero jobs", "empty.yaml", map[string]string{"WASMC_JOBS": "0"}, errors.KindInvalidInput},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := LoadConfig(fs, tt.path, env(tt.env))
			var e *errors.Error
			require.True(t, errors.As(err, &e), "got %v", err)
			assert.Equal(t, tt.kind, e.Kind)
		})
	}
}

func TestApplyFlagsRejectsZeroJobs(t *testing.T) {
	cfg := DefaultConfig()
	flags := FlagSet()
	require.NoError(t, flags.Parse([]string{"-j", "0"}))
	assert.Error(t, cfg.ApplyFlags(flags))
}
