package tasks

import (
	"fmt"
	"sync"
	"time"

	"meetingSummarize/core"
)

// Tracker owns the process-wide map from task id to pipeline state. Updates
// replace the entry under the lock, so polling readers always observe a
// consistent snapshot. Terminal entries are evicted after a TTL instead of
// accumulating for the life of the process.
type Tracker struct {
	mu    sync.RWMutex
	tasks map[string]core.TaskState

	ttl  time.Duration
	stop chan struct{}
	once sync.Once
}

// NewTracker creates a tracker that evicts terminal tasks after ttl. A zero
// ttl disables eviction.
func NewTracker(ttl time.Duration) *Tracker {
	t := &Tracker{
		tasks: make(map[string]core.TaskState),
		ttl:   ttl,
		stop:  make(chan struct{}),
	}
	if ttl > 0 {
		go t.janitor()
	}
	return t
}

// Create registers a task at pending with zero progress.
func (t *Tracker) Create(taskID, filename string) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.tasks[taskID] = core.TaskState{
		ID:        taskID,
		Status:    core.TaskPending,
		Progress:  0,
		Filename:  filename,
		UpdatedAt: time.Now(),
	}
}

// Get returns a snapshot of the task or core.ErrNotFound.
func (t *Tracker) Get(taskID string) (core.TaskState, error) {
	t.mu.RLock()
	defer t.mu.RUnlock()
	state, ok := t.tasks[taskID]
	if !ok {
		return core.TaskState{}, fmt.Errorf("task %s: %w", taskID, core.ErrNotFound)
	}
	return state, nil
}

// SetProgress moves the task to processing at the given progress. Progress
// never goes backwards; stale values are dropped.
func (t *Tracker) SetProgress(taskID string, progress int) {
	t.mu.Lock()
	defer t.mu.Unlock()
	state, ok := t.tasks[taskID]
	if !ok || state.Status.Terminal() {
		return
	}
	if progress < state.Progress {
		progress = state.Progress
	}
	state.Status = core.TaskProcessing
	state.Progress = progress
	state.UpdatedAt = time.Now()
	t.tasks[taskID] = state
}

// Complete moves the task to its terminal completed state with the stored
// meeting attached.
func (t *Tracker) Complete(taskID string, result *core.MeetingResult) {
	t.mu.Lock()
	defer t.mu.Unlock()
	state, ok := t.tasks[taskID]
	if !ok {
		return
	}
	t.tasks[taskID] = core.TaskState{
		ID:        taskID,
		Status:    core.TaskCompleted,
		Progress:  100,
		Filename:  state.Filename,
		Result:    result,
		UpdatedAt: time.Now(),
	}
}

// Fail moves the task to its terminal error state with the message recorded.
func (t *Tracker) Fail(taskID string, errMsg string) {
	t.mu.Lock()
	defer t.mu.Unlock()
	state, ok := t.tasks[taskID]
	if !ok {
		return
	}
	t.tasks[taskID] = core.TaskState{
		ID:        taskID,
		Status:    core.TaskError,
		Progress:  state.Progress,
		Filename:  state.Filename,
		Error:     errMsg,
		UpdatedAt: time.Now(),
	}
}

// Len reports the number of tracked tasks.
func (t *Tracker) Len() int {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return len(t.tasks)
}

// Close stops the eviction janitor.
func (t *Tracker) Close() {
	t.once.Do(func() { close(t.stop) })
}

func (t *Tracker) janitor() {
	interval := t.ttl / 4
	if interval > time.Minute {
		interval = time.Minute
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-t.stop:
			return
		case <-ticker.C:
			t.evictExpired(time.Now())
		}
	}
}

// evictExpired removes terminal tasks whose last update is older than the TTL.
// Non-terminal tasks are never evicted, even long-hung ones, so a slow
// external call cannot make a task unpollable.
func (t *Tracker) evictExpired(now time.Time) int {
	t.mu.Lock()
	defer t.mu.Unlock()
	evicted := 0
	for id, state := range t.tasks {
		if state.Status.Terminal() && now.Sub(state.UpdatedAt) > t.ttl {
			delete(t.tasks, id)
			evicted++
		}
	}
	return evicted
}
