// Package jobs tracks asynchronous tool executions. A dispatch returns a
// started job immediately; the work settles in the background and completion
// surfaces as typed events on subscriber channels, never as a return value
// to the original caller.
package jobs

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
)

type Status string

const (
	StatusStarted   Status = "started"
	StatusCompleted Status = "completed"
	StatusFailed    Status = "failed"
)

// Job is one tracked execution. Immutable once it reaches a terminal status;
// reads always get a copy.
type Job struct {
	ID          string     `json:"id"`
	ToolName    string     `json:"tool_name"`
	UserID      string     `json:"user_id"`
	Status      Status     `json:"status"`
	Result      any        `json:"result,omitempty"`
	Error       string     `json:"error,omitempty"`
	StartedAt   time.Time  `json:"started_at"`
	CompletedAt *time.Time `json:"completed_at,omitempty"`
}

type EventType string

const (
	EventCompleted EventType = "job_completed"
	EventFailed    EventType = "job_failed"
)

// Event is the settlement message delivered to subscribers.
type Event struct {
	Type EventType `json:"type"`
	Job  Job       `json:"job"`
}

// Manager owns the job table and the subscriber list.
type Manager struct {
	mu   sync.RWMutex
	jobs map[string]*Job
	subs map[int]chan Event
	next int
}

func NewManager() *Manager {
	return &Manager{
		jobs: make(map[string]*Job),
		subs: make(map[int]chan Event),
	}
}

// Dispatch records a started job and launches fn in the background. The
// returned job snapshot has status started; the caller never observes the
// settlement directly. A panic or error inside fn settles the job as failed.
func (m *Manager) Dispatch(ctx context.Context, toolName, userID string, fn func(ctx context.Context) (any, error)) Job {
	job := &Job{
		ID:        uuid.NewString(),
		ToolName:  toolName,
		UserID:    userID,
		Status:    StatusStarted,
		StartedAt: time.Now().UTC(),
	}
	// Snapshot before the goroutine launches: once run() is off, settle()
	// may mutate the shared struct at any moment.
	snapshot := *job

	m.mu.Lock()
	m.jobs[job.ID] = job
	m.mu.Unlock()

	log.Info().
		Str("job_id", job.ID).
		Str("tool", toolName).
		Msg("async job started")

	// The caller's request context may be canceled as soon as its response
	// is written; jobs run to completion regardless.
	bgCtx := context.WithoutCancel(ctx)
	go m.run(bgCtx, job.ID, fn)

	return snapshot
}

func (m *Manager) run(ctx context.Context, jobID string, fn func(ctx context.Context) (any, error)) {
	var (
		result any
		err    error
	)
	func() {
		defer func() {
			if rec := recover(); rec != nil {
				err = fmt.Errorf("panic: %v", rec)
			}
		}()
		result, err = fn(ctx)
	}()

	if err != nil {
		m.settle(jobID, StatusFailed, nil, err.Error())
		return
	}
	m.settle(jobID, StatusCompleted, result, "")
}

func (m *Manager) settle(jobID string, status Status, result any, errMsg string) {
	m.mu.Lock()
	job, ok := m.jobs[jobID]
	if !ok || job.Status != StatusStarted {
		m.mu.Unlock()
		return
	}
	now := time.Now().UTC()
	job.Status = status
	job.Result = result
	job.Error = errMsg
	job.CompletedAt = &now
	snapshot := *job

	evtType := EventCompleted
	if status == StatusFailed {
		evtType = EventFailed
	}
	subs := make([]chan Event, 0, len(m.subs))
	for _, ch := range m.subs {
		subs = append(subs, ch)
	}
	m.mu.Unlock()

	evt := Event{Type: evtType, Job: snapshot}
	for _, ch := range subs {
		// Non-blocking: a stalled subscriber drops events rather than
		// stalling settlement.
		select {
		case ch <- evt:
		default:
			log.Warn().Str("job_id", jobID).Msg("job event dropped, subscriber backlogged")
		}
	}

	if status == StatusFailed {
		log.Warn().Str("job_id", jobID).Str("tool", snapshot.ToolName).Str("error", errMsg).Msg("async job failed")
	} else {
		log.Info().Str("job_id", jobID).Str("tool", snapshot.ToolName).Msg("async job completed")
	}
}

// Get returns a snapshot of the job.
func (m *Manager) Get(id string) (Job, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	job, ok := m.jobs[id]
	if !ok {
		return Job{}, false
	}
	return *job, true
}

// List returns snapshots of a user's jobs, newest first.
func (m *Manager) List(userID string) []Job {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var out []Job
	for _, j := range m.jobs {
		if j.UserID == userID {
			out = append(out, *j)
		}
	}
	for i := 0; i < len(out); i++ {
		for j := i + 1; j < len(out); j++ {
			if out[j].StartedAt.After(out[i].StartedAt) {
				out[i], out[j] = out[j], out[i]
			}
		}
	}
	return out
}

// Subscribe registers a settlement listener. The returned cancel func must
// be called to release the channel.
func (m *Manager) Subscribe() (<-chan Event, func()) {
	m.mu.Lock()
	defer m.mu.Unlock()
	id := m.next
	m.next++
	ch := make(chan Event, 16)
	m.subs[id] = ch
	return ch, func() {
		m.mu.Lock()
		defer m.mu.Unlock()
		delete(m.subs, id)
	}
}
