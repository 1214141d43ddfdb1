package txbuffer

import (
	"context"
	"fmt"
	"sync"

	"github.com/memalerts/rewards-backend/pkg/logger"
)

// Task is a deferred side effect queued behind a database transaction.
type Task func()

// Buffer collects side-effect callbacks during a transaction and releases
// them only after the transaction is known to have committed.
//
// Usage contract: queue tasks with Add while the transaction is open, call
// Commit as the last statement of the transactional closure (success path
// only), and call Flush unconditionally once the transaction has resolved,
// typically via defer. A rollback therefore leaves the buffer uncommitted and
// Flush discards everything.
type Buffer struct {
	mu        sync.Mutex
	tasks     []Task
	committed bool
	flushed   bool
	logg      *logger.Logger
}

// New returns an empty buffer. The logger may be nil.
func New(logg *logger.Logger) *Buffer {
	return &Buffer{logg: logg}
}

// Add enqueues a task. Adding after Flush has run is rejected; adding between
// Commit and Flush is allowed so commit-time hooks can still queue work.
func (b *Buffer) Add(task Task) error {
	if task == nil {
		return fmt.Errorf("txbuffer: nil task")
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.flushed {
		return fmt.Errorf("txbuffer: buffer already flushed")
	}
	b.tasks = append(b.tasks, task)
	return nil
}

// Commit marks the enclosing transaction as committed. It runs nothing.
func (b *Buffer) Commit() {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.committed = true
}

// Flush runs every queued task in order. It is a no-op unless Commit was
// called first, and a no-op on second and later calls. A failing task never
// blocks the remaining tasks.
func (b *Buffer) Flush() {
	b.mu.Lock()
	if !b.committed || b.flushed || len(b.tasks) == 0 {
		b.mu.Unlock()
		return
	}
	tasks := b.tasks
	b.tasks = nil
	b.flushed = true
	b.mu.Unlock()

	for _, task := range tasks {
		b.run(task)
	}
}

func (b *Buffer) run(task Task) {
	defer func() {
		if r := recover(); r != nil && b.logg != nil {
			b.logg.Error(context.Background(), "txbuffer task panicked", fmt.Errorf("panic: %v", r))
		}
	}()
	task()
}

// Len reports how many tasks are queued.
func (b *Buffer) Len() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.tasks)
}
