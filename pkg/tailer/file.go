package tailer

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/hpcloud/tail"
	"github.com/hpcloud/tail/watch"
	log "github.com/sirupsen/logrus"
)

// DefaultPollInterval is how long a following tailer waits before checking
// for appended content again.
const DefaultPollInterval = 200 * time.Millisecond

// SetPollInterval changes the idle poll interval of every file source opened
// afterwards. Call it once at startup, before any source is opened.
func SetPollInterval(d time.Duration) {
	if d > 0 {
		watch.POLL_DURATION = d
	}
}

// FileSource tails a file on disk. In follow mode reading starts at the
// current end of file and continues as content is appended, including
// across rotation; otherwise the file is read once from the start.
type FileSource struct {
	Path   string
	Follow bool

	t *tail.Tail
}

// NewFileSource creates a source for path.
func NewFileSource(path string, follow bool) *FileSource {
	return &FileSource{Path: path, Follow: follow}
}

// Following reports whether the source keeps waiting at end of file.
func (f *FileSource) Following() bool {
	return f.Follow
}

// Open starts reading the file. Missing or unreadable files fail here.
func (f *FileSource) Open(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	config := tail.Config{
		Follow:    f.Follow,
		ReOpen:    f.Follow,
		MustExist: true,
		Poll:      true,
		Logger:    tail.DiscardingLogger,
	}
	if f.Follow {
		config.Location = &tail.SeekInfo{Offset: 0, Whence: io.SeekEnd}
	}

	t, err := tail.TailFile(f.Path, config)
	if err != nil {
		return fmt.Errorf("cannot tail %s: %w", f.Path, err)
	}
	f.t = t
	return nil
}

// NextLine returns the next complete line without its trailing "\r\n".
func (f *FileSource) NextLine(ctx context.Context) (string, error) {
	if f.t == nil {
		return "", errors.New("source not open")
	}

	for {
		select {
		case line, ok := <-f.t.Lines:
			if !ok {
				if err := f.t.Wait(); err != nil {
					return "", err
				}
				return "", io.EOF
			}
			if line.Err != nil {
				log.WithFields(log.Fields{"path": f.Path, "err": line.Err}).Debug("skipping unreadable line")
				continue
			}
			return strings.TrimSuffix(line.Text, "\r"), nil
		case <-ctx.Done():
			return "", ctx.Err()
		}
	}
}

// Close stops the underlying tail. The tail goroutine blocks handing over
// lines nobody reads, so pending lines are discarded until it exits.
func (f *FileSource) Close() error {
	if f.t == nil {
		return nil
	}
	t := f.t
	f.t = nil

	t.Kill(nil)
	for range t.Lines {
	}
	return t.Wait()
}
