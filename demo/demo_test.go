package demo_test

import (
	"bytes"
	"context"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"basicrv/console"
	"basicrv/demo"
	"basicrv/mmio"
	"basicrv/sim"
	"basicrv/sim/trace"
)

type board struct {
	m   *sim.Machine
	out *bytes.Buffer
	env demo.Env
}

func newBoard(t *testing.T, opts ...console.Option) *board {
	t.Helper()
	out := &bytes.Buffer{}
	cfg := sim.DefaultConfig()
	cfg.Console = out
	cfg.UARTBusyPolls = 2
	m := sim.NewMachine(cfg)
	regs := m.Registers()
	return &board{
		m:   m,
		out: out,
		env: demo.Env{Regs: regs, Console: console.New(regs, opts...), Delay: m},
	}
}

func TestPWMBreathe(t *testing.T) {
	b := newBoard(t)
	var tr bytes.Buffer
	rec := trace.NewRecorder(&tr)
	b.m.Bus.SetTracer(rec)

	opts := demo.DefaultPWMOptions()
	opts.Rounds = 1
	require.NoError(t, demo.PWMBreathe(context.Background(), b.env, opts))

	want := "\n\t\t\t\t--- PWM IP Test ---\n" +
		"\nConfiguring PWM: Period=1000, Mode=Active HIGH\n" +
		"PWM Enabled. Current Status: 0x00000001\n" +
		"\nPWM Disabled. Current Status: 0x00000000\n" +
		"\nPolarity Inverted. Current Status: 0x00000003. Mode=Active LOW\n"
	assert.Equal(t, want, b.out.String())

	regs := b.env.Regs
	assert.Equal(t, uint32(1000), regs.Read(mmio.PWMPeriod))
	assert.Equal(t, uint32(3), regs.Read(mmio.PWMStatus))

	off := mmio.PWMDuty
	duties, err := trace.NewReader(&tr, trace.Filter{Offset: &off}).All()
	require.NoError(t, err)
	require.Len(t, duties, 600)
	assert.Equal(t, uint32(0), duties[0].Value)
	assert.Equal(t, uint32(1000), duties[100].Value)
	assert.Equal(t, uint32(10), duties[599].Value)
	for _, e := range duties {
		assert.LessOrEqual(t, e.Value, uint32(1000))
	}
}

func TestGPIOMultiples(t *testing.T) {
	b := newBoard(t)
	opts := demo.DefaultGPIOOptions()
	opts.Steps = 16
	require.NoError(t, demo.GPIOMultiples(context.Background(), b.env, opts))

	out := b.out.String()
	require.True(t, strings.HasPrefix(out, "\n--- Multi-Register GPIO IP Test ---\n"))
	lines := strings.Split(strings.TrimSpace(out), "\n")
	assert.Equal(t, []string{"0000", "0011", "0110", "1001", "1100", "1111"}, lines[len(lines)-6:])
	assert.Equal(t, uint32(0xF), b.m.GPIO.Pins())
}

func TestBanner(t *testing.T) {
	b := newBoard(t)
	require.NoError(t, demo.Banner(context.Background(), b.env, demo.BannerOptions{Wait: 10, Rounds: 2}))

	out := b.out.String()
	assert.Equal(t, 2, strings.Count(out, "L E A R N   T O   T H I N K"))
	assert.Equal(t, 2, strings.Count(out, "\033[2J\033[H"))
	assert.True(t, strings.HasSuffix(out, "\033[2J\033[H"))
}

func TestRunByName(t *testing.T) {
	assert.Equal(t, []string{"banner", "gpio", "pwm"}, demo.Names())

	b := newBoard(t)
	require.NoError(t, demo.Run(context.Background(), "banner", b.env, 1))
	assert.Contains(t, b.out.String(), "V S D S Q U A D R O N")

	assert.Error(t, demo.Run(context.Background(), "blink", b.env, 1))
}

func TestDemosStopOnCancel(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	for _, name := range demo.Names() {
		b := newBoard(t)
		err := demo.Run(ctx, name, b.env, 0)
		assert.ErrorIs(t, err, context.Canceled, name)
	}
}

func TestStalledUARTTimesOut(t *testing.T) {
	b := newBoard(t, console.WithTimeout(5*time.Millisecond))
	b.m.UART.Stall(true)

	err := demo.Run(context.Background(), "banner", b.env, 1)
	assert.ErrorIs(t, err, console.ErrTimeout)
	assert.Empty(t, b.out.String())
}

func TestSpinDelay(t *testing.T) {
	var d demo.Delayer = demo.SpinDelay{}

	var wg sync.WaitGroup
	for i := 0; i < 4; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			d.Delay(100000)
		}()
	}
	done := make(chan struct{})
	go func() {
		wg.Wait()
		close(done)
	}()
	select {
	case <-done:
	case <-time.After(5 * time.Second):
		t.Fatal("concurrent spin delays did not finish")
	}

	assert.NotPanics(t, func() { d.Delay(0) })
	assert.NotPanics(t, func() { d.Delay(-5) })
}

func TestInvalidOptions(t *testing.T) {
	b := newBoard(t)
	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()

	err := demo.GPIOMultiples(ctx, b.env, demo.GPIOOptions{Steps: 1})
	assert.ErrorIs(t, err, demo.ErrBadOptions)

	opts := demo.DefaultGPIOOptions()
	opts.N = -2
	assert.ErrorIs(t, demo.GPIOMultiples(ctx, b.env, opts), demo.ErrBadOptions)

	pwm := demo.DefaultPWMOptions()
	pwm.Step = 0
	pwm.Rounds = 1
	assert.ErrorIs(t, demo.PWMBreathe(ctx, b.env, pwm), demo.ErrBadOptions)

	pwm = demo.DefaultPWMOptions()
	pwm.Period = 0
	pwm.Rounds = 1
	assert.ErrorIs(t, demo.PWMBreathe(ctx, b.env, pwm), demo.ErrBadOptions)

	assert.Empty(t, b.out.String())
	assert.Equal(t, uint32(0), b.env.Regs.Read(mmio.PWMCtrl))
}
