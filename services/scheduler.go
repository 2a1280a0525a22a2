// services/scheduler.go
package services

import (
	"log"
	"time"

	"github.com/go-co-op/gocron/v2"
)

// StartResolutionScheduler runs the two authoritative state transitions
// that no handler drives: completing active duels whose 24h window closed
// and moving tournaments along upcoming → active → completed. Both jobs are
// idempotent, so a missed tick just means the next one catches up.
func StartResolutionScheduler(duels *DuelService, tournaments *TournamentService) {
	sched, _ := gocron.NewScheduler()
	sched.Start()

	// Every 30 seconds: resolve expired duels
	_, _ = sched.NewJob(
		gocron.DurationJob(30*time.Second),
		gocron.NewTask(func() {
			n, err := duels.ResolveExpired(time.Now().UTC())
			if err != nil {
				log.Printf("[Scheduler] duel resolution DB error: %v", err)
				return
			}
			if n > 0 {
				log.Printf("✅ Resolved %d expired duel(s)", n)
			}
		}),
	)

	// Every minute: advance tournament statuses
	_, _ = sched.NewJob(
		gocron.DurationJob(1*time.Minute),
		gocron.NewTask(func() {
			n, err := tournaments.Transition(time.Now().UTC())
			if err != nil {
				log.Printf("[Scheduler] tournament transition DB error: %v", err)
				return
			}
			if n > 0 {
				log.Printf("✅ Transitioned %d tournament(s)", n)
			}
		}),
	)
}
