// Package scheduler runs the recurring insight generation job inside the
// API process.
package scheduler

import (
	"context"
	"log"

	"github.com/robfig/cron/v3"
)

// InsightRunner generates automated insights for every active user.
type InsightRunner interface {
	RunForAllUsers(ctx context.Context) (int, error)
}

type Scheduler struct {
	cron *cron.Cron
}

// New schedules the daily insight job with the given cron spec.
func New(spec string, runner InsightRunner) (*Scheduler, error) {
	c := cron.New()

	_, err := c.AddFunc(spec, func() {
		generated, err := runner.RunForAllUsers(context.Background())
		if err != nil {
			log.Printf("Scheduled insight run failed: %v", err)
			return
		}
		log.Printf("Scheduled insight run generated %d insights", generated)
	})
	if err != nil {
		return nil, err
	}

	return &Scheduler{cron: c}, nil
}

func (s *Scheduler) Start() {
	s.cron.Start()
	log.Println("Insight scheduler started")
}

// Stop halts scheduling and waits for a running job to finish.
func (s *Scheduler) Stop() {
	ctx := s.cron.Stop()
	<-ctx.Done()
}
