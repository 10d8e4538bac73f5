package mmio

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHandleLoopback(t *testing.T) {
	mem := NewMemory()
	h := New(DefaultBase, mem)

	h.Write(GPIOData, 0xA)
	assert.Equal(t, uint32(0xA), h.Read(GPIOData))

	// Accesses land at base+offset.
	assert.Equal(t, uint32(0xA), mem.Load32(DefaultBase+0x00))
	h.Write(PWMPeriod, 1000)
	assert.Equal(t, uint32(1000), mem.Load32(DefaultBase+0x24))
	assert.Equal(t, uint32(0), h.Read(PWMDuty))
}

func TestRegisterMap(t *testing.T) {
	tests := []struct {
		off  Offset
		want uint32
		name string
	}{
		{GPIOData, 0x00, "GPIO_DATA"},
		{GPIODir, 0x04, "GPIO_DIR"},
		{GPIORead, 0x08, "GPIO_READ"},
		{UARTData, 0x10, "UART_DATA"},
		{UARTCntl, 0x14, "UART_CNTL"},
		{PWMCtrl, 0x20, "PWM_CTRL"},
		{PWMPeriod, 0x24, "PWM_PERIOD"},
		{PWMDuty, 0x28, "PWM_DUTY"},
		{PWMStatus, 0x2C, "PWM_STATUS"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, uint32(tt.off))
			assert.Equal(t, tt.name, tt.off.String())
		})
	}
	assert.Len(t, Offsets(), len(tests))
	assert.Equal(t, "0x30", Offset(0x30).String())
}

func TestParseOffset(t *testing.T) {
	off, err := ParseOffset("pwm_duty")
	require.NoError(t, err)
	assert.Equal(t, PWMDuty, off)

	off, err = ParseOffset("0x14")
	require.NoError(t, err)
	assert.Equal(t, UARTCntl, off)

	_, err = ParseOffset("nope")
	assert.Error(t, err)
}

func TestPWMControl(t *testing.T) {
	assert.Equal(t, uint32(1), PWMControl(true, 0))
	assert.Equal(t, uint32(3), PWMControl(true, 1))
	assert.Equal(t, uint32(0), PWMControl(false, 1))
	assert.Equal(t, uint32(PWMEnable|PWMPolarity), PWMControl(true, 1))
}
