package monitor

import (
	"context"
	"fmt"
	"runtime"
	"time"

	"github.com/haeksim/noonsongi/common/config"
	"github.com/haeksim/noonsongi/common/logger"
)

type MemoryStats struct {
	AllocMB      uint64 `json:"alloc_mb"`
	TotalAllocMB uint64 `json:"total_alloc_mb"`
	SysMB        uint64 `json:"sys_mb"`
	NumGC        uint32 `json:"num_gc"`
}

type RuntimeStats struct {
	Goroutines int         `json:"goroutines"`
	Sessions   int         `json:"sessions"`
	Memory     MemoryStats `json:"memory"`
}

// ReadRuntimeStats samples the process. sessions may be nil.
func ReadRuntimeStats(sessions func() int) RuntimeStats {
	var m runtime.MemStats
	runtime.ReadMemStats(&m)
	stats := RuntimeStats{
		Goroutines: runtime.NumGoroutine(),
		Memory: MemoryStats{
			AllocMB:      m.Alloc / 1024 / 1024,
			TotalAllocMB: m.TotalAlloc / 1024 / 1024,
			SysMB:        m.Sys / 1024 / 1024,
			NumGC:        m.NumGC,
		},
	}
	if sessions != nil {
		stats.Sessions = sessions()
	}
	return stats
}

// MonitorGoroutines logs the goroutine count every interval until ctx is done. Every
// browser session with a poll in flight holds one goroutine, so a steadily growing
// count points at polls that are never cancelled.
func MonitorGoroutines(ctx context.Context, interval time.Duration, sessions func() int) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
		}
		stats := ReadRuntimeStats(sessions)
		switch {
		case stats.Goroutines > 5000:
			logger.SysError(fmt.Sprintf("high goroutine count detected: %d, sessions: %d", stats.Goroutines, stats.Sessions))
		case stats.Goroutines > 2000:
			logger.SysLog(fmt.Sprintf("goroutine count elevated: %d, sessions: %d", stats.Goroutines, stats.Sessions))
		case config.DebugEnabled:
			logger.SysLog(fmt.Sprintf("goroutine count: %d, sessions: %d", stats.Goroutines, stats.Sessions))
		}
		if config.DebugEnabled {
			logger.SysLog(fmt.Sprintf("memory: Alloc=%dMB, TotalAlloc=%dMB, Sys=%dMB, NumGC=%d",
				stats.Memory.AllocMB, stats.Memory.TotalAllocMB, stats.Memory.SysMB, stats.Memory.NumGC))
		}
	}
}
