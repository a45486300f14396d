package main

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/wippyai/wasmc/engine"
)

type runOptions struct {
	funcName    string
	args        []float32
	memoryPages uint32
	interactive bool
}

func (a *app) runCmd() *cobra.Command {
	var opts runOptions

	cmd := &cobra.Command{
		Use:   "run file",
		Short: "Run an exported function of a module or source file",
		Long: "Run loads a .wasm file, or compiles a source file, on the wazero runtime.\n" +
			"Without --func the exported functions are listed.",
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if opts.interactive {
				if !term.IsTerminal(int(os.Stdout.Fd())) {
					return errors.New("interactive mode needs a terminal")
				}
				return runInteractive(args[0], opts.memoryPages)
			}
			return run(cmd, args[0], opts)
		},
	}

	flags := cmd.Flags()
	flags.StringVarP(&opts.funcName, "func", "f", "", "exported function to call")
	flags.Float32SliceVarP(&opts.args, "arg", "a", nil, "f32 argument, repeatable or comma separated")
	flags.Uint32Var(&opts.memoryPages, "memory-limit", 0, "memory limit in 64KiB pages (0 = runtime default)")
	flags.BoolVarP(&opts.interactive, "interactive", "i", false, "pick a function and arguments in a TUI")
	return cmd
}

func run(cmd *cobra.Command, path string, opts runOptions) error {
	ctx := cmd.Context()

	data, err := readModule(path)
	if err != nil {
		return err
	}

	eng := engine.New(ctx, engine.Config{MemoryLimitPages: opts.memoryPages})
	defer eng.Close(ctx)

	mod, err := eng.Load(ctx, filepath.Base(path), data)
	if err != nil {
		return fmt.Errorf("load %s: %w", path, err)
	}

	out := cmd.OutOrStdout()
	if opts.funcName == "" {
		listFunctions(out, mod)
		return nil
	}

	results, err := mod.CallF32(ctx, opts.funcName, opts.args...)
	if err != nil {
		return err
	}
	for _, r := range results {
		fmt.Fprintln(out, formatF32(r))
	}
	return nil
}

func listFunctions(w io.Writer, mod *engine.Module) {
	funcs := mod.Functions()
	if len(funcs) == 0 {
		fmt.Fprintln(w, "no exported functions")
		return
	}
	fmt.Fprintln(w, "exported functions:")
	for _, f := range funcs {
		fmt.Fprintf(w, "  %s\n", formatFunc(f))
	}
}

func formatF32(v float32) string {
	return fmt.Sprintf("%g", v)
}
