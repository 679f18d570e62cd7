// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

// Package scheduler runs periodic maintenance jobs on a cron schedule.
package scheduler

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/robfig/cron/v3"
)

// jobTimeout bounds a single run of a job.
const jobTimeout = 10 * time.Minute

// JobFunc is the body of a scheduled job.
type JobFunc func(ctx context.Context) error

// Scheduler owns a cron instance and the jobs registered on it.
type Scheduler struct {
	cron   *cron.Cron
	logger *slog.Logger
	parser cron.Parser

	mu   sync.RWMutex
	jobs map[string]*registeredJob

	ctx    context.Context
	cancel context.CancelFunc
}

// New creates a scheduler. Jobs run in UTC.
func New(logger *slog.Logger) *Scheduler {
	if logger == nil {
		logger = slog.Default()
	}
	ctx, cancel := context.WithCancel(context.Background())
	return &Scheduler{
		cron:   cron.New(cron.WithLocation(time.UTC)),
		logger: logger,
		parser: cron.NewParser(cron.Minute | cron.Hour | cron.Dom | cron.Month | cron.Dow | cron.Descriptor),
		jobs:   make(map[string]*registeredJob),
		ctx:    ctx,
		cancel: cancel,
	}
}

// Add registers a job under name with a standard cron expression or a
// descriptor such as "@every 1h".
func (s *Scheduler) Add(name, description, schedule string, fn JobFunc) error {
	if _, err := s.parser.Parse(schedule); err != nil {
		return fmt.Errorf("invalid cron expression %q for %s: %w", schedule, name, err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.jobs[name]; ok {
		return fmt.Errorf("job already registered: %s", name)
	}

	job := &registeredJob{name: name, description: description, schedule: schedule, fn: fn}
	id, err := s.cron.AddFunc(schedule, func() { _ = s.run(s.ctx, job) })
	if err != nil {
		return fmt.Errorf("scheduling %s: %w", name, err)
	}
	job.entryID = id
	s.jobs[name] = job

	s.logger.Debug("registered scheduled job", "name", name, "schedule", schedule)
	return nil
}

// Start begins running jobs in the background.
func (s *Scheduler) Start() {
	s.cron.Start()
	s.logger.Info("scheduler started", "jobs", len(s.cron.Entries()))
}

// Stop cancels running jobs and waits for them to return.
func (s *Scheduler) Stop() {
	s.cancel()
	ctx := s.cron.Stop()
	<-ctx.Done()
	s.logger.Info("scheduler stopped")
}

// TriggerNow runs a job immediately in the calling goroutine.
func (s *Scheduler) TriggerNow(ctx context.Context, name string) error {
	s.mu.RLock()
	job, ok := s.jobs[name]
	s.mu.RUnlock()
	if !ok {
		return fmt.Errorf("job not found: %s", name)
	}

	s.logger.Info("manually triggering job", "name", name)
	return s.run(ctx, job)
}

func (s *Scheduler) run(ctx context.Context, job *registeredJob) error {
	if !job.running.CompareAndSwap(false, true) {
		s.logger.Warn("scheduled job still running, skipping", "name", job.name)
		return fmt.Errorf("job %s is already running", job.name)
	}
	defer job.running.Store(false)

	ctx, cancel := context.WithTimeout(ctx, jobTimeout)
	defer cancel()

	start := time.Now()
	err := job.fn(ctx)

	job.mu.Lock()
	job.lastRun = start
	job.lastErr = err
	job.mu.Unlock()

	if err != nil {
		s.logger.Error("scheduled job failed", "name", job.name, "error", err)
		return err
	}
	s.logger.Debug("scheduled job finished", "name", job.name, "duration", time.Since(start))
	return nil
}
