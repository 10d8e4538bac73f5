package sim

import (
	"sync"

	"basicrv/internal/log"
	"basicrv/mmio"
)

// PWM is a single-channel PWM generator. While enabled its counter runs
// from 0 to PERIOD-1 and the output is active while counter < DUTY.
type PWM struct {
	mu      sync.Mutex
	ctrl    uint32
	period  uint32
	duty    uint32
	counter uint32
}

func NewPWM() *PWM { return &PWM{} }

func (p *PWM) Name() string { return "pwm" }

func (p *PWM) Read32(off mmio.Offset) uint32 {
	p.mu.Lock()
	defer p.mu.Unlock()
	switch off {
	case mmio.PWMCtrl:
		return p.ctrl
	case mmio.PWMPeriod:
		return p.period
	case mmio.PWMDuty:
		return p.duty
	case mmio.PWMStatus:
		return p.ctrl & (mmio.PWMEnable | mmio.PWMPolarity)
	}
	return 0
}

func (p *PWM) Write32(off mmio.Offset, v uint32) {
	p.mu.Lock()
	defer p.mu.Unlock()
	switch off {
	case mmio.PWMCtrl:
		if v&mmio.PWMEnable != 0 && p.ctrl&mmio.PWMEnable == 0 {
			p.counter = 0
		}
		p.ctrl = v & (mmio.PWMEnable | mmio.PWMPolarity)
	case mmio.PWMPeriod:
		p.period = v
		if p.counter >= v {
			p.counter = 0
		}
	case mmio.PWMDuty:
		p.duty = v
	default:
		log.Debug(log.ComponentPWM, "write to read-only register", "reg", off, "value", v)
	}
}

func (p *PWM) Tick(cycles uint64) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.ctrl&mmio.PWMEnable == 0 || p.period == 0 {
		return
	}
	p.counter = uint32((uint64(p.counter) + cycles) % uint64(p.period))
}

// Output reports the pin level. A disabled channel drives its idle level,
// which is low for active-high and high for active-low polarity.
func (p *PWM) Output() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	activeLow := p.ctrl&mmio.PWMPolarity != 0
	if p.ctrl&mmio.PWMEnable == 0 {
		return activeLow
	}
	active := p.counter < p.duty
	return active != activeLow
}

// DutyRatio returns DUTY/PERIOD clamped to [0, 1].
func (p *PWM) DutyRatio() float64 {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.period == 0 {
		return 0
	}
	if p.duty >= p.period {
		return 1
	}
	return float64(p.duty) / float64(p.period)
}
