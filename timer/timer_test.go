package timer

import (
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTimerStartStop(t *testing.T) {
	sys := newFakeSystem()
	var fired atomic.Int32
	tm := NewTimer(sys, CallbackFunc(func() { fired.Add(1) }))

	assert.False(t, tm.IsRunning())
	assert.Equal(t, time.Duration(0), tm.Interval())

	tm.Start(10 * time.Millisecond)
	assert.True(t, tm.IsRunning())
	assert.Equal(t, 10*time.Millisecond, tm.Interval())
	require.Len(t, sys.active(), 1)

	sys.fireActive()
	assert.Equal(t, int32(1), fired.Load())

	tm.Stop()
	assert.False(t, tm.IsRunning())
	assert.Equal(t, time.Duration(0), tm.Interval())
	assert.Empty(t, sys.active())

	// 重复停止.
	tm.Stop()
	assert.False(t, tm.IsRunning())
}

func TestTimerRestart(t *testing.T) {
	sys := newFakeSystem()
	var fired atomic.Int32
	tm := NewTimer(sys, CallbackFunc(func() { fired.Add(1) }))

	tm.Start(10 * time.Millisecond)
	first := sys.active()
	require.Len(t, first, 1)

	tm.Start(20 * time.Millisecond)
	second := sys.active()
	require.Len(t, second, 1)
	assert.NotEqual(t, first[0], second[0])
	assert.Equal(t, 20*time.Millisecond, tm.Interval())

	// 旧调度的到期事件被丢弃.
	sys.fire(first[0])
	assert.Equal(t, int32(0), fired.Load())

	sys.fire(second[0])
	assert.Equal(t, int32(1), fired.Load())
}

func TestTimerNonPositiveInterval(t *testing.T) {
	sys := newFakeSystem()
	tm := NewTimer(sys, CallbackFunc(func() {}))

	tm.Start(0)
	assert.False(t, tm.IsRunning())
	assert.Empty(t, sys.active())

	tm.Start(5 * time.Millisecond)
	require.True(t, tm.IsRunning())

	tm.Start(-1)
	assert.False(t, tm.IsRunning())
	assert.Equal(t, time.Duration(0), tm.Interval())
	assert.Empty(t, sys.active())
}

func TestTimerStaleFiringAfterStop(t *testing.T) {
	sys := newFakeSystem()
	var fired atomic.Int32
	tm := NewTimer(sys, CallbackFunc(func() { fired.Add(1) }))

	tm.Start(time.Millisecond)
	tids := sys.active()
	require.Len(t, tids, 1)
	tm.Stop()

	sys.fire(tids[0])
	assert.Equal(t, int32(0), fired.Load())
}

func TestTimerStartFromCallback(t *testing.T) {
	sys := newFakeSystem()
	var tm *Timer
	tm = NewTimer(sys, CallbackFunc(func() { tm.Start(50 * time.Millisecond) }))

	tm.Start(10 * time.Millisecond)
	sys.fireActive()

	assert.True(t, tm.IsRunning())
	assert.Equal(t, 50*time.Millisecond, tm.Interval())
	assert.Len(t, sys.active(), 1)
}

func TestTimerOnStoppedHeap(t *testing.T) {
	th := NewHeap()
	th.Stop()

	tm := NewTimer(th, CallbackFunc(func() {}))
	tm.Start(time.Millisecond)
	assert.False(t, tm.IsRunning())
	assert.Equal(t, time.Duration(0), tm.Interval())
}

func TestNewTimerPanics(t *testing.T) {
	assert.Panics(t, func() { NewTimer(nil, CallbackFunc(func() {})) })
	assert.Panics(t, func() { NewTimer(newFakeSystem(), nil) })
}
