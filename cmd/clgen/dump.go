package main

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"clgen/internal/artifact"
	"clgen/internal/codegen"
	"clgen/internal/config"
	"clgen/internal/fixture"
	"clgen/internal/ir"
	"clgen/internal/observ"
	"clgen/internal/version"
)

type dumpOptions struct {
	format string
	output string
	fn     string
	jobs   int
	ir     bool
}

func newDumpCmd() *cobra.Command {
	var opts dumpOptions
	cmd := &cobra.Command{
		Use:   "dump [flags] <fixture.toml>",
		Short: "Generate OpenCL C for a fixture module and show the result",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runDump(cmd, args[0], opts)
		},
	}
	cmd.Flags().StringVar(&opts.format, "format", "text", "output format (text|source|msgpack)")
	cmd.Flags().StringVarP(&opts.output, "output", "o", "", "write to file instead of stdout (required for msgpack)")
	cmd.Flags().StringVar(&opts.fn, "func", "", "only show this function")
	cmd.Flags().IntVarP(&opts.jobs, "jobs", "j", 0, "parallel function generation (0 = from settings)")
	cmd.Flags().BoolVar(&opts.ir, "ir", false, "print the input IR before each function")
	return cmd
}

func runDump(cmd *cobra.Command, path string, opts dumpOptions) (err error) {
	switch opts.format {
	case "text", "source":
	case "msgpack":
		if opts.output == "" {
			return fmt.Errorf("--format msgpack needs --output")
		}
	default:
		return fmt.Errorf("unsupported format %q (must be text, source or msgpack)", opts.format)
	}
	if opts.jobs < 0 {
		return fmt.Errorf("--jobs must be >= 0")
	}
	color, err := applyColor(cmd)
	if err != nil {
		return err
	}

	stopProfiling, err := startProfiling(cmd)
	if err != nil {
		return err
	}
	defer stopProfiling()

	timer := observ.NewTimer()
	showTimings, _ := cmd.Flags().GetBool("timings")
	defer func() {
		if showTimings {
			_ = timer.WriteSummary(cmd.ErrOrStderr())
		}
	}()

	var cfg config.Config
	if err := timer.Track("settings", func() (string, error) {
		cfg, err = loadSettings(cmd)
		return "", err
	}); err != nil {
		return err
	}
	cleanup, err := setupTracing(cmd, cfg)
	if err != nil {
		return err
	}
	defer func() { cleanup(err != nil) }()

	genOpts, err := cfg.CodegenOptions()
	if err != nil {
		return err
	}
	if opts.jobs > 0 {
		genOpts.Jobs = opts.jobs
	}

	var m *ir.Module
	if err := timer.Track("load", func() (string, error) {
		m, err = fixture.Load(path)
		if err != nil {
			return "", err
		}
		return fmt.Sprintf("%d funcs", len(m.Funcs)), nil
	}); err != nil {
		return err
	}

	var art *codegen.ModuleArtifacts
	if err := timer.Track("generate", func() (string, error) {
		art, err = codegen.GenerateModule(cmd.Context(), m, genOpts)
		if err != nil {
			return "", err
		}
		return fmt.Sprintf("jobs=%d", genOpts.Jobs), nil
	}); err != nil {
		return err
	}
	if opts.fn != "" && art.Func(opts.fn) == nil {
		return fmt.Errorf("%s: no function %q", path, opts.fn)
	}

	return timer.Track("write", func() (string, error) {
		if opts.format == "msgpack" {
			bundle, err := artifact.New(art, version.Version)
			if err != nil {
				return "", err
			}
			if err := artifact.WriteFile(opts.output, bundle); err != nil {
				return "", err
			}
			return fmt.Sprintf("fingerprint %016x", bundle.Fingerprint), nil
		}
		out, closeOut, err := openDumpOutput(cmd, opts.output)
		if err != nil {
			return "", err
		}
		defer closeOut()
		if opts.format == "source" {
			return "", art.WriteSource(out)
		}
		return "", writeDumpText(out, m, art, opts, painter{color: color && opts.output == ""})
	})
}

func openDumpOutput(cmd *cobra.Command, path string) (io.Writer, func(), error) {
	if path == "" || path == "-" {
		return cmd.OutOrStdout(), func() {}, nil
	}
	f, err := os.Create(path)
	if err != nil {
		return nil, nil, err
	}
	return f, func() { _ = f.Close() }, nil
}

// cellWidth keeps the value table inside the terminal when there is one.
func cellWidth(w io.Writer) int {
	f, ok := w.(*os.File)
	if !ok || !isTerminal(f) {
		return 0
	}
	cols, _, err := term.GetSize(int(f.Fd()))
	if err != nil || cols < 60 {
		return 0
	}
	return (cols - 10) / 3
}

func writeDumpText(w io.Writer, m *ir.Module, art *codegen.ModuleArtifacts, opts dumpOptions, p painter) error {
	var sb strings.Builder
	for _, def := range art.Structs {
		sb.WriteString(def)
	}
	for _, g := range art.Globals {
		sb.WriteString(g + "\n")
	}
	if len(art.Shims) > 0 {
		sb.WriteString(p.render(mutedStyle, "// shims: "+strings.Join(art.Shims, ", ")) + "\n")
	}
	if sb.Len() > 0 {
		sb.WriteString("\n")
	}
	if _, err := io.WriteString(w, sb.String()); err != nil {
		return err
	}

	width := cellWidth(w)
	for _, fa := range art.Funcs {
		if opts.fn != "" && fa.Name != opts.fn {
			continue
		}
		if _, err := io.WriteString(w, p.render(headingStyle, "== "+fa.Name+" ==")+"\n"); err != nil {
			return err
		}
		if opts.ir {
			if err := ir.DumpFunc(w, m, m.FuncByName(fa.Name)); err != nil {
				return err
			}
			if _, err := io.WriteString(w, "\n"); err != nil {
				return err
			}
		}
		t := &table{header: []string{"value", "declaration", "expression", "inline"}, maxCell: width}
		for _, row := range fa.Values {
			t.add(row.Name, row.Declaration, row.Expr, row.Inline)
		}
		if err := t.write(w, p); err != nil {
			return err
		}
		if _, err := io.WriteString(w, "\n"); err != nil {
			return err
		}
		if err := fa.WriteFunction(w); err != nil {
			return err
		}
		if _, err := io.WriteString(w, "\n"); err != nil {
			return err
		}
	}
	return nil
}
