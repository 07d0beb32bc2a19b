package service

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/smp-yps/assignment-api/pkg/config"
	"github.com/smp-yps/assignment-api/pkg/jobs"
)

// ReminderScheduler fires the weekly batch dispatch. It checks the
// clock every few minutes and enqueues at most one batch job per
// scheduled slot; reminder log dedup makes a duplicate run harmless
// anyway.
type ReminderScheduler struct {
	reminders *ReminderService
	queue     *jobs.Queue
	cfg       config.RemindersConfig
	logger    *zap.Logger
	now       func() time.Time
	interval  time.Duration
	lastSlot  string
	cancel    context.CancelFunc
	done      chan struct{}
}

// NewReminderScheduler constructs the scheduler around its own worker
// queue.
func NewReminderScheduler(reminders *ReminderService, cfg config.RemindersConfig, logger *zap.Logger) *ReminderScheduler {
	if logger == nil {
		logger = zap.NewNop()
	}
	s := &ReminderScheduler{
		reminders: reminders,
		cfg:       cfg,
		logger:    logger,
		now:       time.Now,
		interval:  5 * time.Minute,
	}
	s.queue = jobs.NewQueue("reminder-batch", s.handle, jobs.QueueConfig{
		Workers:    cfg.Workers,
		RetryDelay: cfg.RetryDelay,
		Logger:     logger,
	})
	return s
}

// Start launches the queue workers and the clock loop.
func (s *ReminderScheduler) Start(ctx context.Context) {
	ctx, s.cancel = context.WithCancel(ctx)
	s.done = make(chan struct{})
	s.queue.Start(ctx)

	go func() {
		defer close(s.done)
		ticker := time.NewTicker(s.interval)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				s.tick()
			}
		}
	}()
	s.logger.Info("reminder scheduler started",
		zap.String("weekday", s.cfg.DispatchWeekday.String()),
		zap.Int("hour", s.cfg.DispatchHour))
}

// Stop halts the clock loop and drains the queue.
func (s *ReminderScheduler) Stop() {
	if s.cancel != nil {
		s.cancel()
	}
	if s.done != nil {
		<-s.done
	}
	s.queue.Stop()
}

func (s *ReminderScheduler) tick() {
	now := s.now()
	if !s.shouldRun(now) {
		return
	}
	slot := s.slotKey(now)
	if slot == s.lastSlot {
		return
	}
	s.lastSlot = slot
	if err := s.queue.Enqueue(jobs.Job{Type: "send-all-reminders"}); err != nil {
		s.logger.Warn("failed to enqueue reminder batch", zap.Error(err))
	}
}

// shouldRun reports whether the instant falls in the configured
// weekday/hour dispatch window.
func (s *ReminderScheduler) shouldRun(t time.Time) bool {
	return t.Weekday() == s.cfg.DispatchWeekday && t.Hour() == s.cfg.DispatchHour
}

func (s *ReminderScheduler) slotKey(t time.Time) string {
	return fmt.Sprintf("%s-%d", t.Format("2006-01-02"), t.Hour())
}

func (s *ReminderScheduler) handle(ctx context.Context, job jobs.Job) error {
	results, err := s.reminders.SendAllPending(ctx, "")
	if err != nil {
		return err
	}
	sent := 0
	for _, result := range results {
		if result.Success {
			sent++
		}
	}
	s.logger.Info("reminder batch finished",
		zap.Int("dispatched", sent),
		zap.Int("total", len(results)))
	return nil
}
