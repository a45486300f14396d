package driver

import (
	"bytes"
	"fmt"
	"io"
	"runtime"
	"strings"

	"github.com/mstoykov/envconfig"
	"github.com/spf13/afero"
	"github.com/spf13/pflag"
	"gopkg.in/yaml.v3"

	"github.com/wippyai/wasmc/errors"
)

// Config controls a compile run. Values are layered: defaults, then the
// YAML config file, then WASMC_* environment variables, then flags.
type Config struct {
	OutputDir string `yaml:"output_dir" envconfig:"WASMC_OUTPUT_DIR"`
	Extension string `yaml:"extension" envconfig:"WASMC_EXTENSION"`
	Jobs      int    `yaml:"jobs" envconfig:"WASMC_JOBS"`
	Validate  bool   `yaml:"validate" envconfig:"WASMC_VALIDATE"`
	Overwrite bool   `yaml:"overwrite" envconfig:"WASMC_OVERWRITE"`
}

// DefaultConfig returns the configuration used when nothing overrides it.
func DefaultConfig() Config {
	return Config{
		OutputDir: ".",
		Extension: ".wasm",
		Jobs:      runtime.GOMAXPROCS(0),
		Overwrite: true,
	}
}

// LoadConfig applies the config file at path (skipped when empty) and the
// environment on top of the defaults. lookup replaces os.LookupEnv when non-nil.
func LoadConfig(fs afero.Fs, path string, lookup func(string) (string, bool)) (Config, error) {
	cfg := DefaultConfig()

	if path != "" {
		data, err := afero.ReadFile(fs, path)
		if err != nil {
			return cfg, errors.IO(path, "read config", err)
		}
		dec := yaml.NewDecoder(bytes.NewReader(data))
		dec.KnownFields(true)
		if err := dec.Decode(&cfg); err != nil && err != io.EOF {
			return cfg, errors.New(errors.PhaseIO, errors.KindInvalidData).
				File(path).Cause(err).Detail("parse config").Build()
		}
	}

	var err error
	if lookup != nil {
		err = envconfig.Process("", &cfg, lookup)
	} else {
		err = envconfig.Process("", &cfg)
	}
	if err != nil {
		return cfg, errors.Wrap(errors.PhaseIO, errors.KindInvalidData, err, "read environment")
	}

	return cfg, cfg.check()
}

// FlagSet returns the flags that override Config fields.
func FlagSet() *pflag.FlagSet {
	flags := pflag.NewFlagSet("", 0)
	flags.SortFlags = false

	flags.StringP("output", "o", "", "output `dir` for compiled modules")
	flags.String("ext", "", "output file extension (default .wasm)")
	flags.IntP("jobs", "j", 0, "number of files compiled in parallel (default GOMAXPROCS)")
	flags.Bool("validate", false, "validate modules before writing them")
	flags.Bool("overwrite", true, "replace existing outputs")
	return flags
}

// ApplyFlags overrides fields whose flags were set on the command line.
func (c *Config) ApplyFlags(flags *pflag.FlagSet) error {
	var err error
	if flags.Changed("output") {
		if c.OutputDir, err = flags.GetString("output"); err != nil {
			return err
		}
	}
	if flags.Changed("ext") {
		if c.Extension, err = flags.GetString("ext"); err != nil {
			return err
		}
	}
	if flags.Changed("jobs") {
		if c.Jobs, err = flags.GetInt("jobs"); err != nil {
			return err
		}
	}
	if flags.Changed("validate") {
		if c.Validate, err = flags.GetBool("validate"); err != nil {
			return err
		}
	}
	if flags.Changed("overwrite") {
		if c.Overwrite, err = flags.GetBool("overwrite"); err != nil {
			return err
		}
	}
	return c.check()
}

func (c *Config) check() error {
	if c.Jobs < 1 {
		return errors.InvalidInput(errors.PhaseIO, fmt.Sprintf("jobs must be at least 1, got %d", c.Jobs))
	}
	if c.OutputDir == "" {
		c.OutputDir = "."
	}
	if c.Extension == "" {
		c.Extension = ".wasm"
	}
	if !strings.HasPrefix(c.Extension, ".") {
		c.Extension = "." + c.Extension
	}
	return nil
}
