package util

import (
	"context"
	"fmt"
	"sync/atomic"
	"time"

	"github.com/pterm/pterm"
)

// ──────────────────────────────────────────────────────────────────────────────
// Global stats singleton
// ──────────────────────────────────────────────────────────────────────────────

// Stats is the process-wide wire traffic counter.
var Stats = &stats{}

type stats struct {
	PacketsRead    atomic.Int64 // cumulative packets decoded since process start
	PacketsWritten atomic.Int64 // cumulative packets encoded since process start
	BytesRead      atomic.Int64 // cumulative frame bytes read from the socket
	BytesWritten   atomic.Int64 // cumulative frame bytes written to the socket
}

func (s *stats) AddPacketRead()     { s.PacketsRead.Add(1) }
func (s *stats) AddPacketWritten()  { s.PacketsWritten.Add(1) }
func (s *stats) AddBytesRead(n int) { s.BytesRead.Add(int64(n)) }
func (s *stats) AddBytesSent(n int) { s.BytesWritten.Add(int64(n)) }

// ──────────────────────────────────────────────────────────────────────────────
// Periodic reporter
// ──────────────────────────────────────────────────────────────────────────────

// StartStatsReporter launches a goroutine that logs traffic statistics
// every 10 seconds. It stops when ctx is cancelled.
func StartStatsReporter(ctx context.Context) {
	go func() {
		ticker := time.NewTicker(10 * time.Second)
		defer ticker.Stop()

		for {
			select {
			case <-ticker.C:
				pterm.DefaultLogger.Debug(fmt.Sprintf(
					"traffic: %d pkts in / %d pkts out, %s in / %s out",
					Stats.PacketsRead.Load(),
					Stats.PacketsWritten.Load(),
					humanBytes(Stats.BytesRead.Load()),
					humanBytes(Stats.BytesWritten.Load()),
				))
			case <-ctx.Done():
				return
			}
		}
	}()
}

// humanBytes formats a byte count with a binary unit suffix.
func humanBytes(n int64) string {
	switch {
	case n >= 1<<20:
		return fmt.Sprintf("%.1f MiB", float64(n)/(1<<20))
	case n >= 1<<10:
		return fmt.Sprintf("%.1f KiB", float64(n)/(1<<10))
	default:
		return fmt.Sprintf("%d B", n)
	}
}
