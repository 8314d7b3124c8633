package main

import (
	"os"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"clgen/internal/version"
)

// newRootCmd assembles the command tree with fresh flag state.
func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:           "clgen",
		Short:         "Lower SSA IR to OpenCL C",
		Long:          `clgen generates OpenCL C declarations and statements from SSA IR modules`,
		Version:       version.Version,
		SilenceUsage:  true,
		SilenceErrors: false,
	}
	root.AddCommand(newDumpCmd())
	root.AddCommand(newVersionCmd())

	root.PersistentFlags().String("color", "auto", "colorize output (auto|on|off)")
	root.PersistentFlags().String("config", "", "settings file (default: nearest clgen.toml)")
	root.PersistentFlags().Bool("timings", false, "show timing information")
	root.PersistentFlags().String("trace", "", "trace output file (\"-\" for stderr)")
	root.PersistentFlags().String("trace-level", "", "trace level (off|phase|detail|debug)")
	root.PersistentFlags().String("trace-mode", "", "trace storage (stream|ring|both)")
	root.PersistentFlags().String("cpuprofile", "", "write a CPU profile to file")
	root.PersistentFlags().String("memprofile", "", "write a heap profile to file")
	root.PersistentFlags().String("exectrace", "", "write a Go execution trace to file")
	return root
}

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func isTerminal(f *os.File) bool {
	return term.IsTerminal(int(f.Fd()))
}
