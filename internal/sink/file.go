package sink

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"sync/atomic"

	"github.com/charmbracelet/log"

	"github.com/lox/autojack/internal/fileutil"
)

// FileSink writes each batch to its own JSON file named
// <session>-<sequence>.json under a directory
type FileSink struct {
	dir     string
	session string
	seq     atomic.Int64
	logger  *log.Logger
}

// NewFileSink creates a file sink rooted at dir
func NewFileSink(dir, session string, logger *log.Logger) (*FileSink, error) {
	if dir == "" {
		return nil, errors.New("file sink: path is required")
	}
	if session == "" {
		return nil, errors.New("file sink: session id is required")
	}
	return &FileSink{dir: dir, session: session, logger: logger.WithPrefix("sink")}, nil
}

// Upload implements Sink
func (s *FileSink) Upload(ctx context.Context, batch []Payload) error {
	if err := ctx.Err(); err != nil {
		return fmt.Errorf("%w: %v", ErrSinkUnavailable, err)
	}

	n := s.seq.Add(1)
	path := filepath.Join(s.dir, fmt.Sprintf("%s-%04d.json", s.session, n))
	if err := fileutil.WriteJSONAtomic(path, batch); err != nil {
		return fmt.Errorf("%w: %v", ErrSinkUnavailable, err)
	}

	s.logger.Debug("Wrote batch", "games", len(batch), "path", path)
	return nil
}

// Close implements Sink
func (s *FileSink) Close() error {
	return nil
}
