package workers

import (
	"context"
	"log/slog"
	"os"
	"time"

	"github.com/shirou/gopsutil/process"

	"trimchat/observability"
)

// HealthWorker periodically logs self process metrics (CPU, RSS, OS
// status) alongside the room-coordination counters.
type HealthWorker struct {
	log      *slog.Logger
	stats    *observability.Stats
	interval time.Duration
}

func NewHealthWorker(log *slog.Logger, stats *observability.Stats, interval time.Duration) *HealthWorker {
	return &HealthWorker{log: log, stats: stats, interval: interval}
}

func (w *HealthWorker) Run(ctx context.Context) error {
	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	p, err := process.NewProcess(int32(os.Getpid()))
	if err != nil {
		return err
	}

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			rss, cpu, status, err := selfStats(p)
			if err != nil {
				w.log.Error("Failed to collect self stats", "err", err)
				continue
			}

			snap := w.stats.GetLatest()
			w.log.Info("Server health",
				"pid_status", status,
				"cpu_percent", cpu,
				"rss_mb", rss/1024/1024,
				"connections_open", snap.ConnectionsOpened-snap.ConnectionsClosed,
				"events_broadcast", snap.EventsBroadcast,
				"events_dropped", snap.EventsDropped,
				"persist_failures", snap.PersistFailures,
				"bot_replies", snap.BotReplies,
			)
		}
	}
}

// selfStats retrieves technical metrics (memory, CPU, and OS status) for
// the given process.
func selfStats(p *process.Process) (uint64, float64, string, error) {
	memInfo, err := p.MemoryInfo()
	if err != nil {
		return 0, 0, "", err
	}

	cpuPercent, err := p.CPUPercent()
	if err != nil {
		return 0, 0, "", err
	}

	status, err := p.Status()
	if err != nil {
		return 0, 0, "", err
	}
	return memInfo.RSS, cpuPercent, status, nil
}
