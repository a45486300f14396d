package driver

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
	"go.uber.org/multierr"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest"

	"github.com/wippyai/wasmc/errors"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

var wasmHeader = []byte{0x00, 0x61, 0x73, 0x6D, 0x01, 0x00, 0x00, 0x00}

func testConfig() Config {
	cfg := DefaultConfig()
	cfg.OutputDir = "out"
	cfg.Jobs = 4
	return cfg
}

func writeSources(t *testing.T, fs afero.Fs, files map[string]string) {
	t.Helper()
	for name, src := range files {
		require.NoError(t, afero.WriteFile(fs, name, []byte(src), 0o644))
	}
}

func TestRunCompilesAll(t *testing.T) {
	fs := afero.NewMemMapFs()
	writeSources(t, fs, map[string]string{
		"src/add.src":  "export fn add(a, b) { return a + b; }",
		"src/mem.calc": "export memory 1;",
		"empty.src":    "",
	})

	d := New(fs, zaptest.NewLogger(t), testConfig())
	report, err := d.Run(context.Background(), []string{"src/add.src", "src/mem.calc", "empty.src"})
	require.NoError(t, err)
	require.Len(t, report.Results, 3)
	assert.Empty(t, report.Failed())

	want := []string{
		filepath.Join("out", "add.wasm"),
		filepath.Join("out", "mem.wasm"),
		filepath.Join("out", "empty.wasm"),
	}
	for i, res := range report.Results {
		assert.Equal(t, want[i], res.Output)
		data, err := afero.ReadFile(fs, res.Output)
		require.NoError(t, err)
		assert.Equal(t, res.Size, len(data))
		assert.Equal(t, wasmHeader, data[:8])
	}
	assert.Equal(t, len(wasmHeader), report.Results[2].Size)
}

func TestRunContinuesPastFailures(t *testing.T) {
	fs := afero.NewMemMapFs()
	writeSources(t, fs, map[string]string{
		"good.src": "fn f() {}",
		"bad.src":  "fn f() { return x; }",
	})

	d := New(fs, nil, testConfig())
	report, err := d.Run(context.Background(), []string{"bad.src", "missing.src", "good.src"})
	require.Error(t, err)
	assert.Len(t, multierr.Errors(err), 2)

	failed := report.Failed()
	require.Len(t, failed, 2)

	var e *errors.Error
	require.True(t, errors.As(failed[0].Err, &e))
	assert.Equal(t, errors.KindUnknownIdentifier, e.Kind)
	assert.Equal(t, "bad.src", e.File)
	assert.Equal(t, 1, e.Line)

	require.True(t, errors.As(failed[1].Err, &e))
	assert.Equal(t, errors.KindIO, e.Kind)
	assert.ErrorIs(t, failed[1].Err, os.ErrNotExist)

	assert.NoError(t, report.Results[2].Err)
	exists, err := afero.Exists(fs, filepath.Join("out", "good.wasm"))
	require.NoError(t, err)
	assert.True(t, exists)
}

func TestRunDuplicateOutputs(t *testing.T) {
	fs := afero.NewMemMapFs()
	writeSources(t, fs, map[string]string{
		"a/x.src": "fn a() {}",
		"b/x.src": "fn b() {}",
	})

	report, err := New(fs, nil, testConfig()).Run(context.Background(), []string{"a/x.src", "b/x.src"})
	require.Error(t, err)
	assert.NoError(t, report.Results[0].Err)

	var e *errors.Error
	require.True(t, errors.As(report.Results[1].Err, &e))
	assert.Equal(t, errors.KindDuplicate, e.Kind)
	assert.Equal(t, "b/x.src", e.File)
}

func TestRunOverwrite(t *testing.T) {
	fs := afero.NewMemMapFs()
	writeSources(t, fs, map[string]string{
		"f.src":      "fn f() {}",
		"out/f.wasm": "stale",
	})

	cfg := testConfig()
	cfg.Overwrite = false
	_, err := New(fs, nil, cfg).Run(context.Background(), []string{"f.src"})
	require.Error(t, err)
	assert.ErrorIs(t, err, os.ErrExist)

	cfg.Overwrite = true
	_, err = New(fs, nil, cfg).Run(context.Background(), []string{"f.src"})
	require.NoError(t, err)
	data, err := afero.ReadFile(fs, "out/f.wasm")
	require.NoError(t, err)
	assert.Equal(t, wasmHeader, data[:8])
}

func TestRunValidate(t *testing.T) {
	fs := afero.NewMemMapFs()
	writeSources(t, fs, map[string]string{
		"f.src": "export fn f(x) { return g(x); } fn g(y) { return y; }",
	})

	cfg := testConfig()
	cfg.Validate = true
	report, err := New(fs, nil, cfg).Run(context.Background(), []string{"f.src"})
	require.NoError(t, err)
	assert.Positive(t, report.Results[0].Size)
}

func TestRunCancelled(t *testing.T) {
	fs := afero.NewMemMapFs()
	writeSources(t, fs, map[string]string{"f.src": "fn f() {}"})

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	report, err := New(fs, nil, testConfig()).Run(ctx, []string{"f.src"})
	require.Error(t, err)
	assert.ErrorIs(t, report.Results[0].Err, context.Canceled)

	exists, err := afero.Exists(fs, filepath.Join("out", "f.wasm"))
	require.NoError(t, err)
	assert.False(t, exists)
}

func TestRunLogs(t *testing.T) {
	fs := afero.NewMemMapFs()
	writeSources(t, fs, map[string]string{"f.src": "fn f() {"})

	logger := zaptest.NewLogger(t, zaptest.Level(zap.InfoLevel))
	_, err := New(fs, logger, testConfig()).Run(context.Background(), []string{"f.src"})
	var e *errors.Error
	require.True(t, errors.As(err, &e))
	assert.Equal(t, errors.PhaseParse, e.Phase)
}

func TestRunOsFs(t *testing.T) {
	dir := t.TempDir()
	src := filepath.Join(dir, "add.src")
	require.NoError(t, os.WriteFile(src, []byte("export fn add(a, b) { return a + b; }"), 0o644))

	cfg := testConfig()
	cfg.OutputDir = filepath.Join(dir, "out")
	report, err := New(afero.NewOsFs(), nil, cfg).Run(context.Background(), []string{src})
	require.NoError(t, err)

	data, err := os.ReadFile(report.Results[0].Output)
	require.NoError(t, err)
	assert.Equal(t, report.Results[0].Size, len(data))
	assert.Equal(t, filepath.Join(dir, "out", "add.wasm"), report.Results[0].Output)
}
