package tailer

import (
	"context"
	"sync"

	"github.com/loganalyzer/rtlog/pkg/models"
	"golang.org/x/sync/errgroup"
)

// Supervisor runs one Stream per source and tracks their states.
// A failing source does not stop the others.
type Supervisor struct {
	out Sender
	g   errgroup.Group

	mu       sync.RWMutex
	statuses []*Status
}

// NewSupervisor creates a supervisor sending every source's lines to out.
func NewSupervisor(out Sender) *Supervisor {
	return &Supervisor{out: out}
}

// Start launches a tailer for src and returns its source id. Ids are
// assigned in call order starting at zero.
func (s *Supervisor) Start(ctx context.Context, src LogSource) int {
	st := &Status{}
	s.mu.Lock()
	id := len(s.statuses)
	s.statuses = append(s.statuses, st)
	s.mu.Unlock()

	s.g.Go(func() error {
		return Stream(ctx, id, src, s.out, st)
	})
	return id
}

// States returns the states of every tailer, indexed by source id.
func (s *Supervisor) States() []models.TailerState {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]models.TailerState, len(s.statuses))
	for i, st := range s.statuses {
		out[i] = st.Load()
	}
	return out
}

// Wait blocks until every tailer has stopped and returns the first failure.
func (s *Supervisor) Wait() error {
	return s.g.Wait()
}
