// Package driver compiles many source files to module files.
//
// A Driver reads each input from an afero filesystem, compiles it with the
// lang package and writes <OutputDir>/<base><Extension>. Files are compiled
// concurrently, bounded by Config.Jobs. A failure in one file is recorded in
// its Result and never stops the others.
//
// Configuration is layered by LoadConfig and ApplyFlags:
//
//	defaults -> YAML file -> WASMC_* environment -> command-line flags
package driver
