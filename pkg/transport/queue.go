// Package transport carries lines from every tailer to the single consumer
// that owns the application state.
package transport

import (
	"context"
	"errors"
	"sync"

	"github.com/loganalyzer/rtlog/pkg/models"
	log "github.com/sirupsen/logrus"
)

// DefaultCapacity is the number of pending lines a queue holds before
// producers block.
const DefaultCapacity = 1024

// ErrClosed is returned by Send once the consumer has closed the queue.
var ErrClosed = errors.New("transport closed")

// Queue is a bounded multi-producer, single-consumer line queue.
// Send blocks while the queue is full; the consumer drains without blocking.
type Queue struct {
	ch        chan models.SourceLine
	done      chan struct{}
	closeOnce sync.Once
}

// New creates a queue holding up to capacity pending lines.
func New(capacity int) *Queue {
	if capacity <= 0 {
		capacity = DefaultCapacity
	}
	return &Queue{
		ch:   make(chan models.SourceLine, capacity),
		done: make(chan struct{}),
	}
}

// Send enqueues a line, blocking while the queue is full. It returns
// ErrClosed when the consumer has gone away and ctx.Err() when ctx is done.
func (q *Queue) Send(ctx context.Context, line models.SourceLine) error {
	// Check closure first so a closed queue with free space still refuses.
	select {
	case <-q.done:
		return ErrClosed
	default:
	}

	select {
	case q.ch <- line:
		return nil
	case <-q.done:
		return ErrClosed
	case <-ctx.Done():
		return ctx.Err()
	}
}

// TryRecv returns the next pending line without blocking.
func (q *Queue) TryRecv() (models.SourceLine, bool) {
	select {
	case line := <-q.ch:
		return line, true
	default:
		return models.SourceLine{}, false
	}
}

// Drain passes every currently pending line to fn and returns how many were
// delivered. It never waits for new lines.
func (q *Queue) Drain(fn func(models.SourceLine)) int {
	n := 0
	for {
		line, ok := q.TryRecv()
		if !ok {
			return n
		}
		fn(line)
		n++
	}
}

// Close marks the consumer as gone. Blocked and future senders get ErrClosed.
// The data channel itself is never closed, so producers cannot panic.
func (q *Queue) Close() {
	q.closeOnce.Do(func() {
		close(q.done)
		log.Debug("transport closed")
	})
}

// Len returns the number of pending lines.
func (q *Queue) Len() int {
	return len(q.ch)
}

// Cap returns the queue capacity.
func (q *Queue) Cap() int {
	return cap(q.ch)
}
