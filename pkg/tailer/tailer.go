package tailer

import (
	"context"
	"errors"
	"fmt"
	"io"
	"sync/atomic"

	"github.com/loganalyzer/rtlog/pkg/models"
	"github.com/loganalyzer/rtlog/pkg/transport"
	log "github.com/sirupsen/logrus"
)

// LogSource is anything that yields complete lines, one at a time.
// NextLine suspends until a line is available and returns io.EOF when the
// source has been read to completion.
type LogSource interface {
	Open(ctx context.Context) error
	NextLine(ctx context.Context) (string, error)
	Close() error
}

// Follower is implemented by sources that keep waiting for new content after
// reaching the end of what is currently available.
type Follower interface {
	Following() bool
}

// Sender is the producer side of the ingestion transport.
type Sender interface {
	Send(ctx context.Context, line models.SourceLine) error
}

// Status holds a tailer's lifecycle state. It is safe for concurrent use.
type Status struct {
	v atomic.Int32
}

// Load returns the current state.
func (s *Status) Load() models.TailerState {
	return models.TailerState(s.v.Load())
}

func (s *Status) set(st models.TailerState) {
	s.v.Store(int32(st))
}

// Stream reads src until it is exhausted, fails, ctx is done or the consumer
// closes the transport, sending every line tagged with id to out.
// Only open and read failures are returned; completion and shutdown are not errors.
func Stream(ctx context.Context, id int, src LogSource, out Sender, st *Status) error {
	if st == nil {
		st = &Status{}
	}
	logger := log.WithField("source_id", id)

	st.set(models.TailerOpening)
	if err := src.Open(ctx); err != nil {
		st.set(models.TailerFailed)
		logger.WithError(err).Warn("cannot open source")
		return fmt.Errorf("open source %d: %w", id, err)
	}
	defer func() {
		if err := src.Close(); err != nil {
			logger.WithError(err).Debug("close source")
		}
	}()

	if f, ok := src.(Follower); ok && f.Following() {
		st.set(models.TailerFollowing)
	} else {
		st.set(models.TailerDraining)
	}

	for {
		text, err := src.NextLine(ctx)
		if err != nil {
			switch {
			case errors.Is(err, io.EOF):
				st.set(models.TailerClosed)
				logger.Debug("source completed")
				return nil
			case ctx.Err() != nil:
				st.set(models.TailerClosed)
				return nil
			default:
				st.set(models.TailerFailed)
				logger.WithError(err).Warn("read failed")
				return fmt.Errorf("read source %d: %w", id, err)
			}
		}

		if err := out.Send(ctx, models.SourceLine{SourceID: id, Text: text}); err != nil {
			st.set(models.TailerClosed)
			if errors.Is(err, transport.ErrClosed) {
				logger.Debug("consumer gone, stopping")
			}
			return nil
		}
	}
}
