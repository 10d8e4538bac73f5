package main

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"basicrv/internal/config"
	"basicrv/internal/log"
	"basicrv/sim"
	"basicrv/sim/trace"
)

var (
	rootOpts = struct {
		config    string
		logLevel  string
		logFormat string
		tracePath string
	}{}

	// cfg is loaded before any subcommand runs.
	cfg *config.Config

	rootCmd = &cobra.Command{
		Use:          "basicrv",
		Short:        "basicRISCV board simulator and tools",
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return loadConfig(cmd, os.Stderr)
		},
	}
)

func init() {
	pf := rootCmd.PersistentFlags()
	pf.StringVar(&rootOpts.config, "config", "", "board configuration file (YAML)")
	pf.StringVar(&rootOpts.logLevel, "log-level", "", "log level: debug, info, warn, error")
	pf.StringVar(&rootOpts.logFormat, "log-format", "", "log format: text or json")
	pf.StringVar(&rootOpts.tracePath, "trace", "", "record peripheral register writes to this CBOR file")
}

func loadConfig(cmd *cobra.Command, logOut io.Writer) error {
	c, err := config.Load(rootOpts.config)
	if err != nil {
		return err
	}
	if f := cmd.Flag("log-level"); f != nil && f.Changed {
		c.Log.Level = rootOpts.logLevel
	}
	if f := cmd.Flag("log-format"); f != nil && f.Changed {
		c.Log.Format = rootOpts.logFormat
	}
	if f := cmd.Flag("trace"); f != nil && f.Changed {
		c.Trace.Path = rootOpts.tracePath
	}
	if err := c.Validate(); err != nil {
		return err
	}
	if err := c.ApplyLogging(logOut); err != nil {
		return err
	}
	cfg = c
	return nil
}

// newMachine builds the configured board with UART output sent to out. The
// returned cleanup closes the trace file, if one was requested.
func newMachine(out io.Writer) (*sim.Machine, func() error, error) {
	m := sim.NewMachine(cfg.Machine(out))
	if cfg.Trace.Path == "" {
		return m, func() error { return nil }, nil
	}
	rec, err := trace.NewFileRecorder(cfg.Trace.Path, trace.WithReads(cfg.Trace.Reads))
	if err != nil {
		return nil, nil, fmt.Errorf("open trace: %w", err)
	}
	m.Bus.SetTracer(rec)
	log.Info(log.ComponentTrace, "recording", "path", cfg.Trace.Path, "run", rec.RunID())
	return m, rec.Close, nil
}
