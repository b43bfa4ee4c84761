package sink

import (
	"context"
	"sync"
	"time"

	"github.com/charmbracelet/log"
)

const (
	// DefaultBatchSize is how many rounds are buffered before an upload
	DefaultBatchSize = 10

	defaultUploadTimeout = 30 * time.Second
)

// Batcher buffers payloads and uploads them in fixed-size batches. Each full
// batch is taken out of the buffer under the lock and uploaded on its own
// goroutine, so Add never blocks on the network. Failed uploads are logged
// and the batch dropped.
type Batcher struct {
	sink    Sink
	size    int
	timeout time.Duration
	logger  *log.Logger

	mu       sync.Mutex
	buffer   []Payload
	closed   bool
	inflight sync.WaitGroup

	// onUpload, if set, is called after each upload attempt
	onUpload func(n int, err error)
}

// NewBatcher creates a batcher that uploads to sink every size payloads
func NewBatcher(sink Sink, size int, logger *log.Logger) *Batcher {
	if size <= 0 {
		size = DefaultBatchSize
	}
	return &Batcher{
		sink:    sink,
		size:    size,
		timeout: defaultUploadTimeout,
		logger:  logger.WithPrefix("batcher"),
		buffer:  make([]Payload, 0, size),
	}
}

// Add buffers p and starts an upload if the buffer is full
func (b *Batcher) Add(p Payload) {
	b.mu.Lock()
	if b.closed {
		b.mu.Unlock()
		b.logger.Warn("Dropping round after close", "game_id", p.GameID)
		return
	}
	b.buffer = append(b.buffer, p)
	batch := b.takeLocked(false)
	if batch != nil {
		b.inflight.Add(1)
	}
	b.mu.Unlock()

	if batch != nil {
		go func() {
			defer b.inflight.Done()
			b.upload(batch)
		}()
	}
}

// takeLocked swaps the buffer out when it is full, or when force is set and
// it holds anything. Callers must hold mu.
func (b *Batcher) takeLocked(force bool) []Payload {
	if len(b.buffer) == 0 || (!force && len(b.buffer) < b.size) {
		return nil
	}
	batch := b.buffer
	b.buffer = make([]Payload, 0, b.size)
	return batch
}

func (b *Batcher) upload(batch []Payload) {
	ctx, cancel := context.WithTimeout(context.Background(), b.timeout)
	defer cancel()

	b.logger.Info("Sending batch", "games", len(batch))
	err := b.sink.Upload(ctx, batch)
	if err != nil {
		b.logger.Error("Error saving game batch", "games", len(batch), "error", err)
	} else {
		b.logger.Debug("Saved game batch", "games", len(batch))
	}

	if b.onUpload != nil {
		b.onUpload(len(batch), err)
	}
}

// Len returns the number of buffered payloads
func (b *Batcher) Len() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.buffer)
}

// Reset drops buffered payloads and returns how many were dropped.
// Uploads already in flight are not affected.
func (b *Batcher) Reset() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	dropped := len(b.buffer)
	b.buffer = b.buffer[:0]
	return dropped
}

// Wait blocks until in-flight uploads finish
func (b *Batcher) Wait() {
	b.inflight.Wait()
}

// Close uploads any partial batch, waits for in-flight uploads and closes
// the sink. Later calls to Add are dropped.
func (b *Batcher) Close(ctx context.Context) error {
	b.mu.Lock()
	if b.closed {
		b.mu.Unlock()
		return nil
	}
	b.closed = true
	batch := b.takeLocked(true)
	b.mu.Unlock()

	if batch != nil {
		b.upload(batch)
	}

	done := make(chan struct{})
	go func() {
		b.Wait()
		close(done)
	}()

	select {
	case <-done:
	case <-ctx.Done():
		b.logger.Warn("Timed out waiting for uploads", "error", ctx.Err())
	}

	return b.sink.Close()
}
