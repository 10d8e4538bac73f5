package trace_test

import (
	"bytes"
	"errors"
	"io"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"basicrv/mmio"
	"basicrv/sim"
	"basicrv/sim/trace"
)

var _ sim.Tracer = (*trace.Recorder)(nil)

func TestEventCBORRoundTrip(t *testing.T) {
	e := trace.Event{
		Time:   time.Date(2026, 10, 17, 9, 30, 0, 123456789, time.UTC),
		RunID:  "run-1",
		Op:     trace.OpWrite,
		Offset: mmio.PWMCtrl,
		Value:  3,
		Seq:    7,
	}
	data, err := trace.Encode(e)
	require.NoError(t, err)

	got, err := trace.Decode(data)
	require.NoError(t, err)
	assert.True(t, e.Time.Equal(got.Time))
	got.Time = e.Time
	assert.Equal(t, e, got)
	assert.Contains(t, got.String(), "PWM_CTRL")
}

func TestRecorderFilters(t *testing.T) {
	var buf bytes.Buffer
	rec := trace.NewRecorder(&buf, trace.WithReads(true), trace.WithRunID("fixed"))

	rec.TraceWrite(mmio.GPIODir, 0xF)
	rec.TraceWrite(mmio.GPIOData, 0x3)
	rec.TraceRead(mmio.GPIORead, 0x3)
	rec.TraceWrite(mmio.GPIOData, 0x6)
	require.NoError(t, rec.Close())
	rec.TraceWrite(mmio.GPIOData, 0x9) // after close: dropped
	assert.Equal(t, uint64(4), rec.Count())

	all, err := trace.NewReader(bytes.NewReader(buf.Bytes()), trace.Filter{}).All()
	require.NoError(t, err)
	require.Len(t, all, 4)
	for i, e := range all {
		assert.Equal(t, uint64(i+1), e.Seq)
		assert.Equal(t, "fixed", e.RunID)
	}

	off := mmio.GPIOData
	got, err := trace.NewReader(bytes.NewReader(buf.Bytes()), trace.Filter{Offset: &off}).All()
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, uint32(0x6), got[1].Value)

	op := trace.OpRead
	r := trace.NewReader(bytes.NewReader(buf.Bytes()), trace.Filter{Op: &op})
	e, err := r.Next()
	require.NoError(t, err)
	assert.Equal(t, mmio.GPIORead, e.Offset)
	_, err = r.Next()
	assert.True(t, errors.Is(err, io.EOF))
}

func TestRecorderSkipsReadsByDefault(t *testing.T) {
	var buf bytes.Buffer
	rec := trace.NewRecorder(&buf)
	rec.TraceRead(mmio.UARTCntl, 0)
	rec.TraceWrite(mmio.UARTData, 'a')

	all, err := trace.NewReader(&buf, trace.Filter{}).All()
	require.NoError(t, err)
	require.Len(t, all, 1)
	assert.Equal(t, trace.OpWrite, all[0].Op)
	assert.Len(t, rec.RunID(), 36)
}

func TestFileRecorderOnMachine(t *testing.T) {
	path := filepath.Join(t.TempDir(), "run.trace")
	rec, err := trace.NewFileRecorder(path)
	require.NoError(t, err)

	cfg := sim.DefaultConfig()
	cfg.Console = io.Discard
	m := sim.NewMachine(cfg)
	m.Bus.SetTracer(rec)

	regs := m.Registers()
	regs.Write(mmio.PWMPeriod, 1000)
	regs.Write(mmio.PWMCtrl, 1)
	regs.Read(mmio.PWMStatus)
	require.NoError(t, rec.Close())
	require.NoError(t, rec.Close())

	r, err := trace.Open(path, trace.Filter{RunID: rec.RunID()})
	require.NoError(t, err)
	defer r.Close()
	all, err := r.All()
	require.NoError(t, err)
	require.Len(t, all, 2)
	assert.Equal(t, mmio.PWMPeriod, all[0].Offset)
	assert.Equal(t, uint32(1000), all[0].Value)
	assert.Equal(t, mmio.PWMCtrl, all[1].Offset)
}

func TestParseOp(t *testing.T) {
	op, err := trace.ParseOp("w")
	require.NoError(t, err)
	assert.Equal(t, trace.OpWrite, op)
	_, err = trace.ParseOp("x")
	assert.Error(t, err)
}
