// Command basicrv runs firmware and demo programs against a simulated
// basicRISCV board and inspects its peripheral registers.
//
// Usage:
//
//	basicrv run firmware.elf             # execute an RV32I image
//	basicrv demo pwm --rounds 1          # breathing LED demo on the board model
//	basicrv monitor                      # interactive register monitor
//	basicrv trace view run.trace         # print a recorded MMIO trace
//
// Board parameters come from an optional YAML file given with --config.
package main

import (
	"context"
	"os"
	"os/signal"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		os.Exit(1)
	}
}
