package main

import (
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/wippyai/wasmc/wasm"
)

func (a *app) inspectCmd() *cobra.Command {
	var disasm bool

	cmd := &cobra.Command{
		Use:   "inspect file",
		Short: "Print the sections and entries of a module",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			data, err := readModule(args[0])
			if err != nil {
				return err
			}
			return inspect(cmd.OutOrStdout(), data, disasm)
		},
	}
	cmd.Flags().BoolVarP(&disasm, "disasm", "d", true, "disassemble function bodies")
	return cmd
}

func inspect(w io.Writer, data []byte, disasm bool) error {
	sections, err := wasm.ParseSections(data)
	if err != nil {
		return err
	}
	mod, err := wasm.ParseModule(data)
	if err != nil {
		return err
	}

	fmt.Fprintf(w, "%s %d bytes, %d sections\n\n", titleStyle.Render("module"), len(data), len(sections))
	fmt.Fprintf(w, "%-4s %-10s %8s %8s\n", "id", "section", "offset", "size")
	for _, s := range sections {
		fmt.Fprintf(w, "%-4d %-10s %8d %8d\n", s.ID, s.ID, s.Offset, len(s.Content))
	}

	if mod.Types != nil {
		heading(w, "types")
		for i, t := range mod.Types.Entries {
			fmt.Fprintf(w, "  %d: %s\n", i, typeStyle.Render(t.String()))
		}
	}
	if mod.Imports != nil {
		heading(w, "imports")
		for _, imp := range mod.Imports.Entries {
			fmt.Fprintf(w, "  %s.%s %s\n", imp.Module, imp.Name, imp.Kind)
		}
	}
	if mod.Memories != nil {
		heading(w, "memories")
		for i, m := range mod.Memories.Entries {
			fmt.Fprintf(w, "  %d: %s\n", i, m)
		}
	}
	if mod.Globals != nil {
		heading(w, "globals")
		for i, g := range mod.Globals.Entries {
			fmt.Fprintf(w, "  %d: %s mutable=%v\n", i, g.Type.Type, g.Type.Mutable)
		}
	}
	if mod.Exports != nil {
		heading(w, "exports")
		for _, e := range mod.Exports.Entries {
			fmt.Fprintf(w, "  %s %s %d\n", funcStyle.Render(e.Name), e.Kind, e.Index)
		}
	}
	if mod.Start != nil {
		heading(w, "start")
		fmt.Fprintf(w, "  func %d\n", mod.Start.Func)
	}
	if mod.Code != nil {
		heading(w, "code")
		imported := wasm.FuncIndex(mod.NumImported(wasm.KindFunc))
		for i, body := range mod.Code.Bodies {
			idx := imported + wasm.FuncIndex(i)
			sig, _ := mod.FuncType(idx)
			fmt.Fprintf(w, "  func %d %s\n", idx, typeStyle.Render(sig.String()))
			for _, run := range body.Locals {
				fmt.Fprintf(w, "    local %d x %s\n", run.Count, run.Type)
			}
			if !disasm {
				continue
			}
			text, err := wasm.Disassemble(body.Instructions)
			if err != nil {
				fmt.Fprintf(w, "    %s\n", errorStyle.Render(err.Error()))
				continue
			}
			for _, line := range strings.Split(text, "\n") {
				if line != "" {
					fmt.Fprintf(w, "    %s\n", line)
				}
			}
		}
	}
	if mod.Data != nil {
		heading(w, "data")
		for i, d := range mod.Data.Segments {
			fmt.Fprintf(w, "  %d: %d bytes passive=%v\n", i, len(d.Init), d.Passive)
		}
	}
	for _, c := range mod.Customs {
		heading(w, "custom "+c.Name)
		fmt.Fprintf(w, "  %d bytes\n", len(c.Data))
	}

	if err := mod.Validate(); err != nil {
		fmt.Fprintf(w, "\n%s\n", errorStyle.Render("invalid: "+err.Error()))
	}
	return nil
}

func heading(w io.Writer, name string) {
	fmt.Fprintf(w, "\n%s\n", titleStyle.Render(name))
}
