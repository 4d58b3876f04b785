package scheduler

import (
	"context"
	"log"
	"time"

	"coinwatch/config"
	"coinwatch/services/pipeline"

	"github.com/go-co-op/gocron"
)

// Scheduler manages the periodic fetch/store/evaluate job
type Scheduler struct {
	cron     *gocron.Scheduler
	cfg      *config.Config
	pipeline *pipeline.Pipeline
}

// NewScheduler creates a new scheduler instance
func NewScheduler(cfg *config.Config, p *pipeline.Pipeline) *Scheduler {
	return &Scheduler{
		cron:     gocron.NewScheduler(time.UTC),
		cfg:      cfg,
		pipeline: p,
	}
}

// Start registers the batch job and runs the scheduler asynchronously.
// The first cycle runs immediately so a fresh deployment has data
// before the first interval elapses.
func (s *Scheduler) Start() {
	log.Println("Starting scheduler...")

	interval := int(s.cfg.FetchInterval.Minutes())
	if interval < 1 {
		interval = 1
	}

	s.cron.Every(interval).Minutes().StartImmediately().Do(func() {
		log.Println("Running batch price cycle...")
		s.pipeline.RunBatch(context.Background(), s.cfg.Currencies)
		log.Println("Batch price cycle completed")
	})

	s.cron.StartAsync()
	log.Println("Scheduler started successfully")
}

// Stop stops the scheduler
func (s *Scheduler) Stop() {
	s.cron.Stop()
	log.Println("Scheduler stopped")
}
