package sim

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"basicrv/mmio"
)

func TestBusDispatch(t *testing.T) {
	var out bytes.Buffer
	m := newTestMachine(&out)
	regs := m.Registers()

	// RAM below the IO window is plain memory.
	require.True(t, m.Bus.Write32(0x40, 0xCAFEBABE))
	v, ok := m.Bus.Read32(0x40)
	require.True(t, ok)
	assert.Equal(t, uint32(0xCAFEBABE), v)

	// Register handle reaches the peripherals.
	regs.Write(mmio.PWMPeriod, 1000)
	assert.Equal(t, uint32(1000), m.PWM.Read32(mmio.PWMPeriod))
	regs.Write(mmio.UARTData, 'Z')
	assert.Equal(t, "Z", out.String())

	// Unmapped IO reads zero and swallows writes.
	regs.Write(0x30, 7)
	assert.Equal(t, uint32(0), regs.Read(0x30))

	// Outside both RAM and IO.
	_, ok = m.Bus.Read32(0x00200000)
	assert.False(t, ok)
	assert.Equal(t, uint32(0), m.Bus.Load32(0x00200000))
}

func TestBusByteLanes(t *testing.T) {
	m := newTestMachine(&bytes.Buffer{})
	m.Registers().Write(mmio.PWMPeriod, 0x11223344)

	b, ok := m.Bus.Read8(mmio.DefaultBase + uint32(mmio.PWMPeriod) + 1)
	require.True(t, ok)
	assert.Equal(t, uint8(0x33), b)

	h, ok := m.Bus.Read16(mmio.DefaultBase + uint32(mmio.PWMPeriod) + 2)
	require.True(t, ok)
	assert.Equal(t, uint16(0x1122), h)

	// Sub-word stores merge into the register.
	period := mmio.DefaultBase + uint32(mmio.PWMPeriod)
	require.True(t, m.Bus.Write8(period+1, 0xAB))
	assert.Equal(t, uint32(0x1122AB44), m.PWM.Read32(mmio.PWMPeriod))
	require.True(t, m.Bus.Write16(period+2, 0xC0DE))
	assert.Equal(t, uint32(0xC0DEAB44), m.PWM.Read32(mmio.PWMPeriod))
	require.True(t, m.Bus.Write8(period, 0x01))
	assert.Equal(t, uint32(0xC0DEAB01), m.PWM.Read32(mmio.PWMPeriod))

	require.True(t, m.Bus.Write16(0x10, 0xBEEF))
	h, ok = m.Bus.Read16(0x10)
	require.True(t, ok)
	assert.Equal(t, uint16(0xBEEF), h)
}

func TestBusTracer(t *testing.T) {
	m := newTestMachine(&bytes.Buffer{})
	tr := newCountingTracer()
	m.Bus.SetTracer(tr)
	regs := m.Registers()

	regs.Write(mmio.GPIODir, 0xF)
	regs.Read(mmio.GPIORead)
	m.Bus.Write32(0x80, 1) // RAM, not traced

	assert.Equal(t, []uint32{0xF}, tr.writes[mmio.GPIODir])
	assert.Equal(t, 1, tr.reads[mmio.GPIORead])
	assert.Len(t, tr.writes, 1)
}

func TestGPIOReadback(t *testing.T) {
	g := NewGPIO(4)

	g.Write32(mmio.GPIODir, 0xF)
	g.Write32(mmio.GPIOData, 0x1A) // masked to 4 pins
	assert.Equal(t, uint32(0xA), g.Read32(mmio.GPIOData))
	assert.Equal(t, uint32(0xA), g.Read32(mmio.GPIORead))

	// Inputs show through on pins configured as inputs only.
	g.SetInputs(0x5)
	g.Write32(mmio.GPIODir, 0x3)
	assert.Equal(t, uint32(0x6), g.Read32(mmio.GPIORead))
	g.Write32(mmio.GPIODir, 0x0)
	assert.Equal(t, uint32(0x5), g.Pins())

	g.Write32(mmio.GPIORead, 0xF)
	assert.Equal(t, uint32(0xA), g.Read32(mmio.GPIOData))
}

func TestPWM(t *testing.T) {
	p := NewPWM()
	p.Write32(mmio.PWMPeriod, 10)
	p.Write32(mmio.PWMDuty, 3)
	assert.Equal(t, uint32(0), p.Read32(mmio.PWMStatus))
	assert.False(t, p.Output())

	p.Write32(mmio.PWMCtrl, mmio.PWMControl(true, 0))
	assert.Equal(t, uint32(1), p.Read32(mmio.PWMStatus))

	high := 0
	for i := 0; i < 10; i++ {
		if p.Output() {
			high++
		}
		p.Tick(1)
	}
	assert.Equal(t, 3, high)
	assert.InDelta(t, 0.3, p.DutyRatio(), 1e-9)

	p.Write32(mmio.PWMCtrl, mmio.PWMControl(true, 1))
	assert.Equal(t, uint32(3), p.Read32(mmio.PWMStatus))
	high = 0
	for i := 0; i < 10; i++ {
		if p.Output() {
			high++
		}
		p.Tick(1)
	}
	assert.Equal(t, 7, high)

	p.Write32(mmio.PWMCtrl, 0)
	assert.Equal(t, uint32(0), p.Read32(mmio.PWMStatus))
	p.Write32(mmio.PWMStatus, 3)
	assert.Equal(t, uint32(0), p.Read32(mmio.PWMStatus))

	p.Write32(mmio.PWMDuty, 20)
	assert.Equal(t, 1.0, p.DutyRatio())
}

func TestUARTBusy(t *testing.T) {
	var out bytes.Buffer
	u := NewUART(&out, 2)

	assert.Equal(t, uint32(0), u.Read32(mmio.UARTCntl))
	u.Write32(mmio.UARTData, 'x')
	assert.Equal(t, uint32(1), u.Read32(mmio.UARTCntl))
	assert.Equal(t, uint32(1), u.Read32(mmio.UARTCntl))
	assert.Equal(t, uint32(0), u.Read32(mmio.UARTCntl))

	u.Write32(mmio.UARTData, 'y')
	u.Tick(5)
	assert.Equal(t, uint32(0), u.Read32(mmio.UARTCntl))

	u.Stall(true)
	assert.Equal(t, uint32(1), u.Read32(mmio.UARTCntl))
	u.Tick(1000)
	assert.Equal(t, uint32(1), u.Read32(mmio.UARTCntl))
	u.Stall(false)
	assert.Equal(t, uint32(0), u.Read32(mmio.UARTCntl))

	assert.Equal(t, "xy", out.String())
	assert.Equal(t, uint64(2), u.Sent())
}
