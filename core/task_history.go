package core

import (
	"reflect"
	"runtime"
	"strings"
	"sync"
	"time"
)

const defaultTaskHistoryCapacity = 100

// executionHistory is a fixed-size ring of the most recent task executions.
type executionHistory struct {
	mu    sync.Mutex
	items []TaskExecutionRecord
	head  int
	count int
}

func newExecutionHistory(capacity int) *executionHistory {
	if capacity < 1 {
		capacity = defaultTaskHistoryCapacity
	}
	return &executionHistory{items: make([]TaskExecutionRecord, capacity)}
}

func (h *executionHistory) add(record TaskExecutionRecord) {
	h.mu.Lock()
	defer h.mu.Unlock()

	h.items[h.head] = record
	h.head = (h.head + 1) % len(h.items)
	if h.count < len(h.items) {
		h.count++
	}
}

// recent returns up to limit records, newest first. limit <= 0 means all.
func (h *executionHistory) recent(limit int) []TaskExecutionRecord {
	h.mu.Lock()
	defer h.mu.Unlock()

	if h.count == 0 {
		return nil
	}

	if limit <= 0 || limit > h.count {
		limit = h.count
	}

	out := make([]TaskExecutionRecord, 0, limit)
	for i := range limit {
		idx := (h.head - 1 - i + len(h.items)) % len(h.items)
		out = append(out, h.items[idx])
	}
	return out
}

func (h *executionHistory) last() (TaskExecutionRecord, bool) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if h.count == 0 {
		return TaskExecutionRecord{}, false
	}

	idx := (h.head - 1 + len(h.items)) % len(h.items)
	return h.items[idx], true
}

// taskName derives a readable name from the task's function symbol, e.g.
// "main.flush" or "main.run.func1".
func taskName(task Task) string {
	if task == nil {
		return "anonymous"
	}

	pc := reflect.ValueOf(task).Pointer()
	if pc == 0 {
		return "anonymous"
	}

	fn := runtime.FuncForPC(pc)
	if fn == nil || fn.Name() == "" {
		return "anonymous"
	}

	name := fn.Name()
	if i := strings.LastIndex(name, "/"); i >= 0 {
		name = name[i+1:]
	}
	return name
}

// executeObserved runs task on the calling thread and, if it returns,
// records the execution in h and reports its duration to metrics. A task
// that panics is not recorded.
func executeObserved(
	task Task,
	runnerName string,
	runnerType string,
	h *executionHistory,
	metrics Metrics,
) {
	startedAt := time.Now()
	task()
	finishedAt := time.Now()

	duration := finishedAt.Sub(startedAt)
	h.add(TaskExecutionRecord{
		Name:       taskName(task),
		RunnerName: runnerName,
		RunnerType: runnerType,
		ThreadID:   CurrentThreadID(),
		StartedAt:  startedAt,
		FinishedAt: finishedAt,
		Duration:   duration,
	})
	metrics.RecordTaskDuration(runnerName, duration)
}
