// Package demo contains the board's demonstration programs: a PWM
// "breathing" LED, a GPIO multiples display and an ASCII banner loop.
//
// Each program drives the peripherals through an Env and runs until its
// round limit is reached or ctx is done.
package demo

import (
	"context"
	"fmt"
	"runtime"
	"sort"

	"basicrv/console"
	"basicrv/mmio"
)

// Delayer burns time between register updates.
type Delayer interface {
	Delay(cycles int)
}

// SpinDelay busy-waits in a counting loop, the way the firmware does. It
// keeps no shared state and may be used from several goroutines.
type SpinDelay struct{}

func (SpinDelay) Delay(cycles int) {
	n := 0
	for i := 0; i < cycles; i++ {
		n++
	}
	runtime.KeepAlive(n)
}

// Env is what a program needs from the board.
type Env struct {
	Regs    mmio.Registers
	Console *console.Writer
	Delay   Delayer
}

func (e Env) delay(cycles int) {
	if e.Delay != nil {
		e.Delay.Delay(cycles)
	}
}

// Program runs a demo for rounds iterations of its main loop, 0 meaning
// until ctx is done.
type Program func(ctx context.Context, env Env, rounds int) error

var programs = map[string]Program{
	"pwm": func(ctx context.Context, env Env, rounds int) error {
		opts := DefaultPWMOptions()
		opts.Rounds = rounds
		return PWMBreathe(ctx, env, opts)
	},
	"gpio": func(ctx context.Context, env Env, rounds int) error {
		opts := DefaultGPIOOptions()
		opts.Steps = rounds
		return GPIOMultiples(ctx, env, opts)
	},
	"banner": func(ctx context.Context, env Env, rounds int) error {
		opts := DefaultBannerOptions()
		opts.Rounds = rounds
		return Banner(ctx, env, opts)
	},
}

// Names lists the registered programs.
func Names() []string {
	names := make([]string, 0, len(programs))
	for n := range programs {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}

// Run starts the named program.
func Run(ctx context.Context, name string, env Env, rounds int) error {
	p, ok := programs[name]
	if !ok {
		return fmt.Errorf("unknown demo %q (have %v)", name, Names())
	}
	return p(ctx, env, rounds)
}
