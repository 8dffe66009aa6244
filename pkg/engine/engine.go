// Package engine runs the core loop: it drains the ingestion queue, applies
// user intents and configuration reloads to the application state, and
// hands a snapshot to the renderer at most once per frame interval.
package engine

import (
	"context"
	"time"

	"github.com/loganalyzer/rtlog/pkg/config"
	"github.com/loganalyzer/rtlog/pkg/models"
	"github.com/loganalyzer/rtlog/pkg/state"
	"github.com/loganalyzer/rtlog/pkg/transport"
	log "github.com/sirupsen/logrus"
)

const (
	DefaultFrameInterval = 33 * time.Millisecond
	DefaultIdleSleep     = 10 * time.Millisecond
	DefaultPageSize      = 10
)

// Renderer paints a snapshot. It must not retain references into live state;
// snapshots are already copies.
type Renderer interface {
	Render(models.Snapshot) error
}

// TailerStates reports the lifecycle state of every source's tailer.
type TailerStates interface {
	States() []models.TailerState
}

// Options configures an Engine. Zero values select the defaults.
type Options struct {
	Intents       <-chan models.Intent
	Reloads       <-chan *config.Config
	Tailers       TailerStates
	FrameInterval time.Duration
	IdleSleep     time.Duration
	PageSize      int
	Now           func() time.Time
}

// Engine owns the AppState for the duration of Run. No other goroutine may
// touch the state while the engine is running.
type Engine struct {
	state    *state.AppState
	queue    *transport.Queue
	renderer Renderer

	intents <-chan models.Intent
	reloads <-chan *config.Config
	tailers TailerStates

	now           func() time.Time
	frameInterval time.Duration
	idleSleep     time.Duration
	pageSize      int

	lastFrame time.Time
	drawn     bool
	frames    int
	applied   uint64
}

// New creates an engine over st, consuming lines from q and painting with r.
func New(st *state.AppState, q *transport.Queue, r Renderer, opts Options) *Engine {
	e := &Engine{
		state:         st,
		queue:         q,
		renderer:      r,
		intents:       opts.Intents,
		reloads:       opts.Reloads,
		tailers:       opts.Tailers,
		now:           opts.Now,
		frameInterval: opts.FrameInterval,
		idleSleep:     opts.IdleSleep,
		pageSize:      opts.PageSize,
	}
	if e.now == nil {
		e.now = time.Now
	}
	if e.frameInterval <= 0 {
		e.frameInterval = DefaultFrameInterval
	}
	if e.idleSleep <= 0 {
		e.idleSleep = DefaultIdleSleep
	}
	if e.pageSize <= 0 {
		e.pageSize = DefaultPageSize
	}
	return e
}

// Frames returns how many snapshots have been rendered.
func (e *Engine) Frames() int {
	return e.frames
}

// Step runs one loop iteration and reports whether a quit was requested.
func (e *Engine) Step() bool {
	quit, _ := e.step()
	return quit
}

// step drains lines, applies reloads and intents, then renders if a frame
// is due. busy is false when nothing happened and the caller may sleep.
func (e *Engine) step() (quit, busy bool) {
	if n := e.queue.Drain(e.ingest); n > 0 {
		busy = true
	}

	for e.reloads != nil {
		select {
		case c := <-e.reloads:
			e.ApplyConfig(c)
			busy = true
			continue
		default:
		}
		break
	}

	for e.intents != nil {
		select {
		case in, ok := <-e.intents:
			if !ok {
				e.intents = nil
				return true, true
			}
			busy = true
			e.applied++
			if e.Dispatch(in) {
				return true, true
			}
			continue
		default:
		}
		break
	}

	if e.tailers != nil {
		for id, st := range e.tailers.States() {
			e.state.SetSourceState(id, st)
		}
	}

	now := e.now()
	if !e.drawn || now.Sub(e.lastFrame) >= e.frameInterval {
		snap := e.state.Snapshot()
		snap.IntentsApplied = e.applied
		if err := e.renderer.Render(snap); err != nil {
			log.WithError(err).Warn("render failed")
		}
		e.lastFrame = now
		e.drawn = true
		e.frames++
		busy = true
	}
	return false, busy
}

func (e *Engine) ingest(line models.SourceLine) {
	e.state.PushLine(line.SourceID, line.Text)
}

// Run loops until ctx is done or a quit intent arrives. It sleeps only when
// an iteration had no work and no frame was due.
func (e *Engine) Run(ctx context.Context) error {
	log.Info("engine started")
	defer log.Info("engine stopped")

	timer := time.NewTimer(e.idleSleep)
	defer timer.Stop()

	for {
		if err := ctx.Err(); err != nil {
			return nil
		}

		quit, busy := e.step()
		if quit {
			return nil
		}
		if busy {
			continue
		}

		timer.Reset(e.idleSleep)
		select {
		case <-ctx.Done():
			return nil
		case <-timer.C:
		}
	}
}

// ApplyConfig applies the hot-reloadable part of a configuration.
func (e *Engine) ApplyConfig(c *config.Config) {
	if c == nil {
		return
	}
	e.state.SetAlerts(c.Alerts.Patterns, c.Alerts.Disabled, c.AlertDisplay(), c.AlertBlink())
}
