package demo

import (
	"context"
	"fmt"

	"basicrv/console"
	"basicrv/internal/log"
	"basicrv/mmio"
)

type PWMOptions struct {
	Period     uint32
	Step       uint32
	Breaths    int
	StepDelay  int
	PauseDelay int
	// Rounds counts breathe/invert cycles; 0 runs until ctx is done.
	Rounds int
}

func DefaultPWMOptions() PWMOptions {
	return PWMOptions{
		Period:     1000,
		Step:       10,
		Breaths:    3,
		StepDelay:  10000,
		PauseDelay: 500000,
	}
}

func polarityMode(polarity uint32) string {
	if polarity == 1 {
		return "Active LOW"
	}
	return "Active HIGH"
}

// PWMBreathe ramps the duty cycle up and down Breaths times, disables the
// channel, flips its polarity and starts over. Period and Step must be
// non-zero.
func PWMBreathe(ctx context.Context, env Env, o PWMOptions) error {
	if o.Period == 0 || o.Step == 0 {
		return fmt.Errorf("%w: pwm period %d, step %d", ErrBadOptions, o.Period, o.Step)
	}
	con, regs := env.Console, env.Regs
	if err := con.Printf("\n\t\t\t\t--- PWM IP Test ---\n"); err != nil {
		return err
	}

	var polarity uint32
	regs.Write(mmio.PWMPeriod, o.Period)
	regs.Write(mmio.PWMCtrl, mmio.PWMControl(true, polarity))
	if err := con.Printf("\nConfiguring PWM: Period=%d, Mode=%s\n",
		console.Uint(o.Period), console.Str(polarityMode(polarity))); err != nil {
		return err
	}
	if err := con.Printf("PWM Enabled. Current Status: 0x%x\n", console.Uint(regs.Read(mmio.PWMStatus))); err != nil {
		return err
	}

	for round := 0; o.Rounds == 0 || round < o.Rounds; round++ {
		if err := breathe(ctx, env, o); err != nil {
			return err
		}

		regs.Write(mmio.PWMCtrl, 0)
		if err := con.Printf("\nPWM Disabled. Current Status: 0x%x\n", console.Uint(regs.Read(mmio.PWMStatus))); err != nil {
			return err
		}
		env.delay(o.PauseDelay)

		polarity ^= 1
		regs.Write(mmio.PWMCtrl, mmio.PWMControl(true, polarity))
		if err := con.Printf("\nPolarity Inverted. Current Status: 0x%x. Mode=%s\n",
			console.Uint(regs.Read(mmio.PWMStatus)), console.Str(polarityMode(polarity))); err != nil {
			return err
		}
		log.Debug(log.ComponentDemo, "pwm round done", "round", round, "polarity", polarity)
	}
	return nil
}

func breathe(ctx context.Context, env Env, o PWMOptions) error {
	var duty uint32
	up := true
	for count := 0; count < o.Breaths; {
		if err := ctx.Err(); err != nil {
			return err
		}
		env.Regs.Write(mmio.PWMDuty, duty)
		env.delay(o.StepDelay)

		if up {
			duty += o.Step
			if duty >= o.Period {
				up = false
			}
		} else {
			if duty <= o.Step {
				duty = 0
				up = true
				count++
			} else {
				duty -= o.Step
			}
		}
	}
	return nil
}
