// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package scheduler

import (
	"sort"
	"sync"
	"sync/atomic"
	"time"

	"github.com/robfig/cron/v3"
)

// registeredJob holds a job and its run state.
type registeredJob struct {
	name        string
	description string
	schedule    string
	entryID     cron.EntryID
	fn          JobFunc
	running     atomic.Bool

	mu      sync.Mutex
	lastRun time.Time
	lastErr error
}

// JobInfo is the public view of a registered job.
type JobInfo struct {
	Name        string    `json:"name"`
	Description string    `json:"description"`
	Schedule    string    `json:"schedule"`
	LastRun     time.Time `json:"lastRun"`
	LastError   string    `json:"lastError,omitempty"`
	NextRun     time.Time `json:"nextRun"`
	Running     bool      `json:"running"`
}

// List returns all registered jobs sorted by name.
func (s *Scheduler) List() []JobInfo {
	s.mu.RLock()
	defer s.mu.RUnlock()

	result := make([]JobInfo, 0, len(s.jobs))
	for _, job := range s.jobs {
		info := JobInfo{
			Name:        job.name,
			Description: job.description,
			Schedule:    job.schedule,
			NextRun:     s.cron.Entry(job.entryID).Next,
			Running:     job.running.Load(),
		}
		job.mu.Lock()
		info.LastRun = job.lastRun
		if job.lastErr != nil {
			info.LastError = job.lastErr.Error()
		}
		job.mu.Unlock()
		result = append(result, info)
	}

	sort.Slice(result, func(i, j int) bool { return result[i].Name < result[j].Name })
	return result
}
