package scheduler

import (
	"context"
	"sync"
	"time"

	"restobot/internal/models"

	"github.com/rs/zerolog/log"
)

// Poller periodically claims due jobs and dispatches them with a small
// worker pool. Per-job failures are logged and never abort the batch.
type Poller struct {
	service  *Service
	interval time.Duration
	batch    int
	workers  int
}

func NewPoller(service *Service, interval time.Duration, batch, workers int) *Poller {
	if workers < 1 {
		workers = 1
	}
	return &Poller{service: service, interval: interval, batch: batch, workers: workers}
}

// Run blocks until ctx is cancelled.
func (p *Poller) Run(ctx context.Context) {
	log.Info().Dur("interval", p.interval).Int("workers", p.workers).Msg("scheduler poller started")

	ticker := time.NewTicker(p.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			log.Info().Msg("scheduler poller stopped")
			return
		case <-ticker.C:
			p.runOnce(ctx)
		}
	}
}

func (p *Poller) runOnce(ctx context.Context) {
	jobs, err := p.service.ClaimBatch(ctx, p.batch)
	if err != nil {
		log.Error().Err(err).Msg("claiming due jobs failed")
		return
	}
	if len(jobs) == 0 {
		return
	}
	log.Info().Int("count", len(jobs)).Msg("dispatching due jobs")

	ch := make(chan *models.ScheduledMessage)
	var wg sync.WaitGroup
	for i := 0; i < p.workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for job := range ch {
				if err := p.service.Dispatch(ctx, job); err != nil {
					log.Error().Err(err).Str("job_id", job.ID.String()).Msg("job dispatch failed")
				}
			}
		}()
	}
	for i := range jobs {
		ch <- &jobs[i]
	}
	close(ch)
	wg.Wait()
}
