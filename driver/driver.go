package driver

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/moby/sys/atomicwriter"
	"github.com/spf13/afero"
	"go.uber.org/multierr"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/wippyai/wasmc/errors"
	"github.com/wippyai/wasmc/lang"
)

// Result is the outcome for one input file.
type Result struct {
	Err    error
	Path   string
	Output string
	Size   int
}

// Report lists one Result per input, in input order.
type Report struct {
	Results []Result
}

// Failed returns the results that carry an error.
func (r *Report) Failed() []Result {
	var out []Result
	for _, res := range r.Results {
		if res.Err != nil {
			out = append(out, res)
		}
	}
	return out
}

// Driver compiles source files to module files.
type Driver struct {
	fs     afero.Fs
	logger *zap.Logger
	cfg    Config
}

// New creates a driver. A nil logger discards output.
func New(fs afero.Fs, logger *zap.Logger, cfg Config) *Driver {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Driver{fs: fs, logger: logger, cfg: cfg}
}

// OutputPath returns where the module compiled from path is written.
func (d *Driver) OutputPath(path string) string {
	base := filepath.Base(path)
	base = strings.TrimSuffix(base, filepath.Ext(base))
	return filepath.Join(d.cfg.OutputDir, base+d.cfg.Extension)
}

// Run compiles every path. A failing file is recorded in the report and
// does not stop the others; the returned error combines all failures.
// Once ctx is done no further files are started.
func (d *Driver) Run(ctx context.Context, paths []string) (*Report, error) {
	report := &Report{Results: make([]Result, len(paths))}
	if err := d.fs.MkdirAll(d.cfg.OutputDir, 0o755); err != nil {
		return report, errors.IO(d.cfg.OutputDir, "create output dir", err)
	}

	jobs := d.cfg.Jobs
	if jobs < 1 {
		jobs = 1
	}
	var g errgroup.Group
	g.SetLimit(jobs)

	owners := make(map[string]string, len(paths))
	for i, path := range paths {
		res := &report.Results[i]
		res.Path = path
		res.Output = d.OutputPath(path)

		if first, ok := owners[res.Output]; ok {
			res.Err = errors.New(errors.PhaseIO, errors.KindDuplicate).File(path).
				Detail("output %s is also produced by %s", res.Output, first).Build()
			continue
		}
		owners[res.Output] = path

		if err := ctx.Err(); err != nil {
			res.Err = err
			continue
		}
		path := path
		g.Go(func() error {
			res.Size, res.Err = d.compileFile(ctx, path, res.Output)
			return nil
		})
	}
	_ = g.Wait()

	var errs error
	for _, res := range report.Results {
		if res.Err != nil {
			d.logger.Warn("compile failed", zap.String("path", res.Path), zap.Error(res.Err))
			errs = multierr.Append(errs, res.Err)
		}
	}
	d.logger.Info("compile finished",
		zap.Int("files", len(paths)),
		zap.Int("failed", len(multierr.Errors(errs))))
	return report, errs
}

func (d *Driver) compileFile(ctx context.Context, path, output string) (int, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}

	src, err := afero.ReadFile(d.fs, path)
	if err != nil {
		return 0, errors.IO(path, "read source", err)
	}

	mod, err := lang.Compile(string(src))
	if err != nil {
		return 0, withFile(err, path)
	}
	if d.cfg.Validate {
		if err := mod.Validate(); err != nil {
			return 0, fmt.Errorf("%s: %w", path, err)
		}
	}
	bin, err := mod.Encode()
	if err != nil {
		return 0, withFile(err, path)
	}

	if !d.cfg.Overwrite {
		if _, err := d.fs.Stat(output); err == nil {
			return 0, errors.IO(output, "write output", os.ErrExist)
		}
	}
	if err := d.write(output, bin); err != nil {
		return 0, errors.IO(output, "write output", err)
	}

	d.logger.Debug("compiled",
		zap.String("path", path),
		zap.String("output", output),
		zap.Int("size", len(bin)))
	return len(bin), nil
}

// write replaces output atomically on the OS filesystem.
func (d *Driver) write(output string, data []byte) error {
	if _, ok := d.fs.(*afero.OsFs); ok {
		return atomicwriter.WriteFile(output, data, 0o644)
	}
	return afero.WriteFile(d.fs, output, data, 0o644)
}

// withFile returns err with its source file set when it is a structured error.
func withFile(err error, path string) error {
	var e *errors.Error
	if !errors.As(err, &e) {
		return fmt.Errorf("%s: %w", path, err)
	}
	return e.InFile(path)
}
