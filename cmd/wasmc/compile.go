package main

import (
	"fmt"

	"github.com/spf13/afero"
	"github.com/spf13/cobra"

	"github.com/wippyai/wasmc/driver"
)

func (a *app) compileCmd() *cobra.Command {
	var configFile string

	cmd := &cobra.Command{
		Use:   "compile [files...]",
		Short: "Compile source files to .wasm modules",
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(args) == 0 {
				return cmd.Usage()
			}

			fs := afero.NewOsFs()
			cfg, err := driver.LoadConfig(fs, configFile, nil)
			if err != nil {
				return err
			}
			if err := cfg.ApplyFlags(cmd.Flags()); err != nil {
				return err
			}

			report, runErr := driver.New(fs, a.logger, cfg).Run(cmd.Context(), args)
			out := cmd.OutOrStdout()
			for _, res := range report.Results {
				if res.Err != nil {
					fmt.Fprintf(out, "%s %s: %v\n", errorStyle.Render("FAIL"), res.Path, res.Err)
					continue
				}
				fmt.Fprintf(out, "%s %s -> %s (%d bytes)\n", resultStyle.Render("ok"), res.Path, res.Output, res.Size)
			}
			if failed := report.Failed(); len(failed) > 0 {
				return fmt.Errorf("%d of %d files failed", len(failed), len(args))
			}
			return runErr
		},
	}

	cmd.Flags().StringVarP(&configFile, "config", "c", "", "YAML config `file`")
	cmd.Flags().AddFlagSet(driver.FlagSet())
	return cmd
}
