// Package sink delivers finished-round records to external storage. Rounds
// are buffered by a Batcher and handed to a Sink one batch at a time.
package sink

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/charmbracelet/log"
)

// ErrSinkUnavailable wraps every delivery failure
var ErrSinkUnavailable = errors.New("sink unavailable")

// Sink kinds accepted by Open
const (
	KindNone   = "none"
	KindHTTP   = "http"
	KindFile   = "file"
	KindSQLite = "sqlite"
	KindMySQL  = "mysql"
)

// DefaultEndpoint is the game API base URL
const DefaultEndpoint = "https://game-api-zjod.onrender.com/api"

// Sink stores a batch of round payloads
type Sink interface {
	Upload(ctx context.Context, batch []Payload) error
	Close() error
}

// Options selects and configures a sink
type Options struct {
	Kind      string
	Endpoint  string
	Timeout   time.Duration
	Path      string
	DSN       string
	SessionID string
}

// Open builds the sink named by opts.Kind
func Open(opts Options, logger *log.Logger) (Sink, error) {
	switch opts.Kind {
	case "", KindNone:
		return Discard{}, nil
	case KindHTTP:
		endpoint := opts.Endpoint
		if endpoint == "" {
			endpoint = DefaultEndpoint
		}
		s := NewHTTPSink(endpoint, opts.Timeout, logger)
		logger.Info("Uploading rounds", "url", s.URL())
		return s, nil
	case KindFile:
		return NewFileSink(opts.Path, opts.SessionID, logger)
	case KindSQLite, KindMySQL:
		return OpenSQLSink(opts.Kind, opts.DSN, opts.SessionID, logger)
	default:
		return nil, fmt.Errorf("unknown sink kind %q", opts.Kind)
	}
}

// Discard drops every batch
type Discard struct{}

// Upload implements Sink
func (Discard) Upload(context.Context, []Payload) error { return nil }

// Close implements Sink
func (Discard) Close() error { return nil }
