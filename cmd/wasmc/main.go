package main

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/wippyai/wasmc/engine"
	"github.com/wippyai/wasmc/lang"
)

var wasmMagic = []byte{0x00, 0x61, 0x73, 0x6D}

type app struct {
	logger  *zap.Logger
	verbose bool
}

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	a := &app{logger: zap.NewNop()}

	root := &cobra.Command{
		Use:          "wasmc",
		Short:        "Compile a small expression language to WebAssembly",
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			logger, err := newLogger(a.verbose)
			if err != nil {
				return fmt.Errorf("create logger: %w", err)
			}
			a.logger = logger
			engine.SetLogger(logger)
			return nil
		},
		PersistentPostRun: func(*cobra.Command, []string) {
			_ = a.logger.Sync()
		},
	}
	root.PersistentFlags().BoolVarP(&a.verbose, "verbose", "v", false, "enable debug logging")

	root.AddCommand(a.compileCmd(), a.inspectCmd(), a.runCmd())
	return root
}

func newLogger(verbose bool) (*zap.Logger, error) {
	if verbose {
		return zap.NewDevelopment()
	}
	cfg := zap.NewProductionConfig()
	cfg.Level = zap.NewAtomicLevelAt(zap.WarnLevel)
	return cfg.Build()
}

// readModule returns the binary for path. Files that do not start with the
// wasm magic are compiled as source.
func readModule(path string) ([]byte, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read file: %w", err)
	}
	if bytes.HasPrefix(data, wasmMagic) {
		return data, nil
	}
	bin, err := lang.CompileBytes(string(data))
	if err != nil {
		return nil, fmt.Errorf("compile %s: %w", filepath.Base(path), err)
	}
	return bin, nil
}
