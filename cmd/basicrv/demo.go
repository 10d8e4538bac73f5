package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"basicrv/console"
	"basicrv/demo"
	"basicrv/sim"
)

var (
	demoOpts = struct {
		rounds    int
		cycleTime time.Duration
	}{}

	demoCmd = &cobra.Command{
		Use:       "demo <" + strings.Join(demo.Names(), "|") + ">",
		Short:     "Run a demo program against the simulated peripherals",
		Args:      cobra.ExactArgs(1),
		ValidArgs: demo.Names(),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			m, closeTrace, err := newMachine(os.Stdout)
			if err != nil {
				return err
			}
			defer closeTrace()

			regs := m.Registers()
			env := demo.Env{
				Regs: regs,
				Console: console.New(regs,
					console.WithTimeout(cfg.Console.PollTimeout),
					console.WithContext(ctx)),
				Delay: &pacedDelay{ctx: ctx, m: m, perCycle: demoOpts.cycleTime},
			}
			err = demo.Run(ctx, args[0], env, demoOpts.rounds)
			if errors.Is(err, context.Canceled) {
				return nil
			}
			if err != nil {
				return fmt.Errorf("demo %s: %w", args[0], err)
			}
			return nil
		},
	}
)

func init() {
	f := demoCmd.Flags()
	f.IntVar(&demoOpts.rounds, "rounds", 0, "main loop iterations (0 = until interrupted)")
	f.DurationVar(&demoOpts.cycleTime, "cycle-time", time.Microsecond, "wall time per delay cycle (0 = as fast as possible)")
	rootCmd.AddCommand(demoCmd)
}

// pacedDelay advances the board's clock and sleeps so that busy-wait delays
// take roughly as long as on the real board.
type pacedDelay struct {
	ctx      context.Context
	m        *sim.Machine
	perCycle time.Duration
}

func (d *pacedDelay) Delay(cycles int) {
	d.m.Delay(cycles)
	if d.perCycle <= 0 || cycles <= 0 {
		return
	}
	t := time.NewTimer(time.Duration(cycles) * d.perCycle)
	defer t.Stop()
	select {
	case <-t.C:
	case <-d.ctx.Done():
	}
}
