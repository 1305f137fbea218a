// services/scheduler.go
package services

import (
	"log"
	"time"

	"github.com/go-co-op/gocron/v2"
)

// StartWeeklyResetScheduler zeroes the weekly counters every Sunday at
// 12:00 UTC. The cron owns the cadence; the reset itself tolerates
// duplicate runs within a window.
func (s *LedgerService) StartWeeklyResetScheduler() {
	sched, _ := gocron.NewScheduler(gocron.WithLocation(time.UTC))
	sched.Start()

	_, _ = sched.NewJob(
		gocron.CronJob("0 12 * * 0", false),
		gocron.NewTask(func() {
			affected, err := s.ResetWeekly()
			if err != nil {
				log.Printf("[Scheduler] Weekly reset failed: %v", err)
				return
			}
			log.Printf("✅ Weekly counters reset for %d user(s)", affected)
		}),
	)
}
