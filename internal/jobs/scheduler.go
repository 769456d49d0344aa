package jobs

import (
	"context"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/robfig/cron/v3"
	"github.com/rs/zerolog"
)

const maintenanceStream = "shopfront:maintenance"

// Scheduler enqueues recurring maintenance work onto a redis stream
// consumed out of process.
type Scheduler struct {
	cron  *cron.Cron
	queue *redis.Client
	log   zerolog.Logger
}

func NewScheduler(queue *redis.Client, log zerolog.Logger) *Scheduler {
	c := cron.New(cron.WithSeconds())
	return &Scheduler{
		cron:  c,
		queue: queue,
		log:   log,
	}
}

func (s *Scheduler) Start() error {
	if s.queue == nil {
		return nil
	}

	if _, err := s.cron.AddFunc("0 0 3 * * *", s.enqueueMediaPurge); err != nil {
		return err
	}
	if _, err := s.cron.AddFunc("0 30 * * * *", s.enqueueOrderSweep); err != nil {
		return err
	}

	s.cron.Start()
	return nil
}

func (s *Scheduler) Stop() context.CancelFunc {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	go func() {
		select {
		case <-s.cron.Stop().Done():
		case <-ctx.Done():
		}
		cancel()
	}()
	return cancel
}

func (s *Scheduler) enqueueMediaPurge() {
	if err := s.enqueueTask(map[string]any{
		"type": "media_purge",
	}); err != nil {
		s.log.Error().Err(err).Msg("enqueue media purge failed")
	}
}

func (s *Scheduler) enqueueOrderSweep() {
	if err := s.enqueueTask(map[string]any{
		"type":  "order_sweep",
		"scope": "pending",
	}); err != nil {
		s.log.Error().Err(err).Msg("enqueue order sweep failed")
	}
}

func (s *Scheduler) enqueueTask(payload map[string]any) error {
	if s.queue == nil {
		return nil
	}
	_, err := s.queue.XAdd(context.Background(), &redis.XAddArgs{
		Stream: maintenanceStream,
		Values: payload,
	}).Result()
	return err
}
