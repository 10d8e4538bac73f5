package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"basicrv/internal/log"
)

var (
	runOpts = struct {
		steps   int
		trace   bool
		startPC uint32
	}{}

	runCmd = &cobra.Command{
		Use:   "run <image>",
		Short: "Run an RV32I ELF or flat binary on the simulated board",
		Long: "Run loads an ELF image (or a flat binary at address 0) and steps the\n" +
			"core until it executes ECALL, faults, or reaches the step limit.\n" +
			"UART output is written to stdout.",
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			m, closeTrace, err := newMachine(os.Stdout)
			if err != nil {
				return err
			}
			defer closeTrace()

			if err := m.Load(args[0]); err != nil {
				return err
			}
			if cmd.Flag("pc").Changed {
				m.CPU.PC = runOpts.startPC
			}
			if runOpts.trace {
				m.CPU.Trace = cmd.ErrOrStderr()
			}

			n, err := m.Run(cmd.Context(), runOpts.steps)
			log.Info(log.ComponentMachine, "run finished", "steps", n, "pc", m.CPU.PC, "uart_bytes", m.UART.Sent())
			if err != nil {
				return fmt.Errorf("after %d steps: %w", n, err)
			}
			return nil
		},
	}
)

func init() {
	f := runCmd.Flags()
	f.IntVar(&runOpts.steps, "steps", 10_000_000, "maximum instructions to execute (0 = no limit)")
	f.BoolVar(&runOpts.trace, "trace-insn", false, "print every executed instruction to stderr")
	f.Uint32Var(&runOpts.startPC, "pc", 0, "override the start PC")
	rootCmd.AddCommand(runCmd)
}
