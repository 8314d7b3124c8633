package main

import (
	"fmt"
	"os"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"clgen/internal/config"
	"clgen/internal/prof"
	"clgen/internal/trace"
)

// loadSettings reads --config, or the nearest clgen.toml, or the defaults.
func loadSettings(cmd *cobra.Command) (config.Config, error) {
	path, err := cmd.Flags().GetString("config")
	if err != nil {
		return config.Config{}, err
	}
	if path == "" {
		found, ok, err := config.Find(".")
		if err != nil {
			return config.Config{}, err
		}
		if !ok {
			return config.Default(), nil
		}
		path = found
	}
	return config.Load(path)
}

// useColor resolves --color against the output stream.
func useColor(cmd *cobra.Command) (bool, error) {
	mode, err := cmd.Flags().GetString("color")
	if err != nil {
		return false, err
	}
	switch mode {
	case "on":
		return true, nil
	case "off":
		return false, nil
	case "auto", "":
		f, ok := cmd.OutOrStdout().(*os.File)
		return ok && isTerminal(f), nil
	default:
		return false, fmt.Errorf("invalid --color %q (expected: auto|on|off)", mode)
	}
}

func applyColor(cmd *cobra.Command) (bool, error) {
	on, err := useColor(cmd)
	if err != nil {
		return false, err
	}
	color.NoColor = !on
	return on, nil
}

// setupTracing merges the trace flags over [trace] and attaches the tracer
// to the command context. The returned cleanup flushes and closes it; on
// failure a ring buffer is dumped to stderr first.
func setupTracing(cmd *cobra.Command, cfg config.Config) (func(failed bool), error) {
	flags := cmd.Flags()
	if v, _ := flags.GetString("trace"); v != "" {
		cfg.Trace.Output = v
		if cfg.Trace.Level == "" {
			cfg.Trace.Level = "phase"
		}
	}
	if v, _ := flags.GetString("trace-level"); v != "" {
		cfg.Trace.Level = v
	}
	if v, _ := flags.GetString("trace-mode"); v != "" {
		cfg.Trace.Mode = v
	}
	tcfg, err := cfg.TraceConfig()
	if err != nil {
		return nil, fmt.Errorf("invalid trace settings: %w", err)
	}
	if tcfg.Level == trace.LevelOff {
		cmd.SetContext(trace.WithTracer(cmd.Context(), trace.Nop))
		return func(bool) {}, nil
	}
	tracer, err := trace.New(tcfg)
	if err != nil {
		return nil, fmt.Errorf("failed to create tracer: %w", err)
	}
	cmd.SetContext(trace.WithTracer(cmd.Context(), tracer))
	return func(failed bool) {
		if ring, ok := tracer.(*trace.RingTracer); ok && failed {
			if err := ring.Dump(cmd.ErrOrStderr(), trace.FormatText); err != nil {
				fmt.Fprintf(cmd.ErrOrStderr(), "trace: dump error: %v\n", err)
			}
		}
		if err := tracer.Flush(); err != nil {
			fmt.Fprintf(cmd.ErrOrStderr(), "trace: flush error: %v\n", err)
		}
		if err := tracer.Close(); err != nil {
			fmt.Fprintf(cmd.ErrOrStderr(), "trace: close error: %v\n", err)
		}
	}, nil
}

// startProfiling starts the profiles requested by flags.
func startProfiling(cmd *cobra.Command) (func(), error) {
	var opts prof.Options
	opts.CPU, _ = cmd.Flags().GetString("cpuprofile")
	opts.Mem, _ = cmd.Flags().GetString("memprofile")
	opts.Trace, _ = cmd.Flags().GetString("exectrace")
	session, err := prof.Start(opts)
	if err != nil {
		return nil, fmt.Errorf("failed to start profiling: %w", err)
	}
	return func() {
		if err := session.Stop(); err != nil {
			fmt.Fprintf(cmd.ErrOrStderr(), "profile: %v\n", err)
		}
	}, nil
}
