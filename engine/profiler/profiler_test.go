package profiler

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

type fakeClock struct{ t time.Duration }

func (c *fakeClock) now() time.Duration { return c.t }

func TestTick_DeltaAndReport(t *testing.T) {
	clock := &fakeClock{}
	p := newProfiler(clock.now, time.Second)

	var reported bool
	var dt float32
	for i := 0; i < 9; i++ {
		clock.t += 100 * time.Millisecond
		dt, reported = p.Tick()
		assert.InDelta(t, 0.1, dt, 1e-6)
		assert.False(t, reported)
	}

	clock.t += 100 * time.Millisecond
	_, reported = p.Tick()
	assert.True(t, reported)
	assert.Equal(t, 0, p.frameCount)
	assert.Equal(t, time.Duration(0), p.worst)

	clock.t += 250 * time.Millisecond
	dt, reported = p.Tick()
	assert.InDelta(t, 0.25, dt, 1e-6)
	assert.False(t, reported)
	assert.Equal(t, 250*time.Millisecond, p.worst)
}

func TestCollect_FPS(t *testing.T) {
	clock := &fakeClock{}
	p := newProfiler(clock.now, time.Second)
	p.frameCount = 120
	p.worst = 20 * time.Millisecond

	stats := p.collect(2 * time.Second)
	assert.InDelta(t, 60, stats.FPS, 1e-9)
	assert.Equal(t, 20*time.Millisecond, stats.WorstFrame)
	assert.Greater(t, stats.HeapMB, 0.0)
}

func TestTick_SilentStillMeasures(t *testing.T) {
	clock := &fakeClock{}
	p := newProfiler(clock.now, time.Second)
	p.SetSilent(true)

	clock.t += 2 * time.Second
	dt, reported := p.Tick()
	assert.InDelta(t, 2, dt, 1e-6)
	assert.False(t, reported)
	assert.Equal(t, 0, p.frameCount)
	assert.Equal(t, clock.t, p.lastReport)
}
