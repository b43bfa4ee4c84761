package sink

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/charmbracelet/log"
)

const uploadPath = "postBlackjackGames"

// HTTPSink posts each batch as a JSON array to the game API
type HTTPSink struct {
	client *http.Client
	url    string
	logger *log.Logger
}

// NewHTTPSink creates a sink posting to <endpoint>/postBlackjackGames
func NewHTTPSink(endpoint string, timeout time.Duration, logger *log.Logger) *HTTPSink {
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &HTTPSink{
		client: &http.Client{Timeout: timeout},
		url:    strings.TrimRight(endpoint, "/") + "/" + uploadPath,
		logger: logger.WithPrefix("sink"),
	}
}

// URL returns the upload address
func (s *HTTPSink) URL() string {
	return s.url
}

// Upload implements Sink
func (s *HTTPSink) Upload(ctx context.Context, batch []Payload) error {
	body, err := json.Marshal(batch)
	if err != nil {
		return fmt.Errorf("%w: encode batch: %v", ErrSinkUnavailable, err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.url, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("%w: build request: %v", ErrSinkUnavailable, err)
	}
	req.Header.Set("Content-Type", "application/json")

	s.logger.Debug("Sending batch", "games", len(batch), "url", s.url)
	resp, err := s.client.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrSinkUnavailable, err)
	}
	defer resp.Body.Close()

	respBody, _ := io.ReadAll(io.LimitReader(resp.Body, 64<<10))
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("%w: status %d", ErrSinkUnavailable, resp.StatusCode)
	}

	s.logger.Debug("API response", "status", resp.StatusCode, "body", string(respBody))
	return nil
}

// Close implements Sink
func (s *HTTPSink) Close() error {
	s.client.CloseIdleConnections()
	return nil
}
