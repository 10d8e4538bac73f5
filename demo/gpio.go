package demo

import (
	"context"
	"fmt"

	"basicrv/mmio"
)

type GPIOOptions struct {
	// N is the integer whose multiples are displayed.
	N         int
	StartWait int
	Blink     int
	// Steps counts counter increments; 0 runs until ctx is done.
	Steps int
}

func DefaultGPIOOptions() GPIOOptions {
	return GPIOOptions{N: 3, StartWait: 1000000, Blink: 500000}
}

// GPIOMultiples walks a 4-bit counter. On multiples of N the pins are made
// outputs, the counter is latched and read back, and the readback is printed
// in binary; otherwise the pins are released. N must be positive.
func GPIOMultiples(ctx context.Context, env Env, o GPIOOptions) error {
	if o.N <= 0 {
		return fmt.Errorf("%w: gpio N must be positive, got %d", ErrBadOptions, o.N)
	}
	con, regs := env.Console, env.Regs
	env.delay(o.StartWait)
	if err := con.SendString("\n--- Multi-Register GPIO IP Test ---\n"); err != nil {
		return err
	}
	if err := con.SendString("\nGuess the integer whose multiples are being displayed in binary below:\n"); err != nil {
		return err
	}

	counter := 0
	for step := 0; o.Steps == 0 || step < o.Steps; step++ {
		if err := ctx.Err(); err != nil {
			return err
		}
		if counter%o.N != 0 {
			regs.Write(mmio.GPIODir, 0x0)
			counter = inc(counter)
			continue
		}

		regs.Write(mmio.GPIODir, 0xF)
		regs.Write(mmio.GPIOData, uint32(counter)&0xF)
		v := regs.Read(mmio.GPIORead)

		var line [5]byte
		for i := 0; i < 4; i++ {
			line[i] = '0'
			if v&(0x8>>uint(i)) != 0 {
				line[i] = '1'
			}
		}
		line[4] = '\n'
		if _, err := con.Write(line[:]); err != nil {
			return err
		}

		counter = inc(counter)
		env.delay(o.Blink)
	}
	return nil
}

func inc(counter int) int {
	counter++
	if counter > 15 {
		counter = 0
	}
	return counter
}
