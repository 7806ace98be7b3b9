package jobs

import (
	"context"
	"sync"
	"time"

	"github.com/mealweek/mealweek/logger"
	"github.com/mealweek/mealweek/services"
)

// SweepJob asks the janitor to re-check one asset base for orphaned versions.
type SweepJob struct {
	BaseHash string
}

// Janitor reclaims orphaned blobs in the background. Deletes and uploads do
// their own best-effort cleanup inline; the janitor is the second chance for
// blobs stranded by a crash or a failed sweep, plus a slow periodic full
// sweep of the store.
type Janitor struct {
	jobs   chan SweepJob
	assets *services.AssetService
}

var (
	janitor     *Janitor
	janitorOnce sync.Once
)

// GetJanitor returns the singleton Janitor, starting it on first use.
func GetJanitor(assets *services.AssetService) *Janitor {
	janitorOnce.Do(func() {
		janitor = &Janitor{
			jobs:   make(chan SweepJob, 100),
			assets: assets,
		}
		go janitor.run()
		go janitor.tick()
		logger.Info("Blob janitor started")
	})
	return janitor
}

// Enqueue schedules a sweep for one asset base. Non-blocking; a full queue
// drops the job, the periodic full sweep will catch it.
func (j *Janitor) Enqueue(baseHash string) {
	select {
	case j.jobs <- SweepJob{BaseHash: baseHash}:
		logger.Debug("Sweep job enqueued", "base", baseHash)
	default:
		logger.Warn("Sweep queue full, dropping job", "base", baseHash)
	}
}

func (j *Janitor) run() {
	for job := range j.jobs {
		deleted, err := j.assets.SweepStale(context.Background(), job.BaseHash, "", nil)
		if err != nil {
			logger.Warn("Sweep job failed", "base", job.BaseHash, "error", err)
			continue
		}
		if len(deleted) > 0 {
			logger.Info("Sweep job reclaimed blobs", "base", job.BaseHash, "deleted", len(deleted))
		}
	}
}

func (j *Janitor) tick() {
	ticker := time.NewTicker(6 * time.Hour)
	defer ticker.Stop()
	for range ticker.C {
		n, err := j.assets.SweepAll(context.Background())
		if err != nil {
			logger.Warn("Full blob sweep failed", "error", err)
			continue
		}
		logger.Info("Full blob sweep finished", "reclaimed", n)
	}
}
