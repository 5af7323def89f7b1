// Package profiler measures frame timing and logs frame rate and memory statistics.
package profiler

import (
	"log"
	"runtime"
	"time"

	"github.com/loov/hrtime"
)

// Profiler tracks frame rate and memory statistics for performance monitoring.
// Outputs stats to the log at a configurable interval.
type Profiler struct {
	now func() time.Duration

	frameCount     int
	lastFrame      time.Duration
	lastReport     time.Duration
	updateInterval time.Duration

	// worst is the longest frame since the last report.
	worst time.Duration

	// silent suppresses the report; deltas are still measured.
	silent bool

	memStats       runtime.MemStats
	lastGCCount    uint32
	lastTotalAlloc uint64
}

// Stats is the summary produced at each report.
type Stats struct {
	FPS        float64
	WorstFrame time.Duration
	HeapMB     float64
	AllocMBps  float64
	GCCount    uint32
}

// NewProfiler creates a new Profiler that reports once per second.
//
// Returns:
//   - *Profiler: the newly created profiler instance
func NewProfiler() *Profiler {
	return newProfiler(hrtime.Now, time.Second)
}

func newProfiler(now func() time.Duration, interval time.Duration) *Profiler {
	start := now()
	return &Profiler{
		now:            now,
		lastFrame:      start,
		lastReport:     start,
		updateInterval: interval,
	}
}

// Tick should be called once per frame. It returns the time since the previous Tick in seconds
// and logs statistics when the update interval has elapsed.
//
// Returns:
//   - float32: the frame delta in seconds
//   - bool: true if stats were logged this tick
func (p *Profiler) Tick() (float32, bool) {
	current := p.now()
	delta := current - p.lastFrame
	p.lastFrame = current
	p.frameCount++
	p.worst = max(p.worst, delta)

	elapsed := current - p.lastReport
	if elapsed < p.updateInterval {
		return float32(delta.Seconds()), false
	}

	stats := p.collect(elapsed)
	p.frameCount = 0
	p.worst = 0
	p.lastReport = current
	if p.silent {
		return float32(delta.Seconds()), false
	}
	log.Printf("[Profiler] FPS: %.2f | Worst: %.2f ms | Heap: %.2f MB | Alloc Rate: %.2f MB/s | GC: %d",
		stats.FPS, float64(stats.WorstFrame.Microseconds())/1000, stats.HeapMB, stats.AllocMBps, stats.GCCount)
	return float32(delta.Seconds()), true
}

// SetSilent stops or resumes the periodic log report.
func (p *Profiler) SetSilent(silent bool) {
	p.silent = silent
}

// collect computes the stats for the frames counted over elapsed.
func (p *Profiler) collect(elapsed time.Duration) Stats {
	runtime.ReadMemStats(&p.memStats)
	allocDelta := p.memStats.TotalAlloc - p.lastTotalAlloc
	p.lastGCCount = p.memStats.NumGC
	p.lastTotalAlloc = p.memStats.TotalAlloc

	return Stats{
		FPS:        float64(p.frameCount) / elapsed.Seconds(),
		WorstFrame: p.worst,
		HeapMB:     float64(p.memStats.Alloc) / 1024 / 1024,
		AllocMBps:  float64(allocDelta) / 1024 / 1024 / elapsed.Seconds(),
		GCCount:    p.lastGCCount,
	}
}
