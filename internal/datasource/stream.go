package datasource

import (
	"context"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"github.com/sirupsen/logrus"

	"github.com/yourusername/choice-sim/internal/config"
	"github.com/yourusername/choice-sim/internal/logit"
)

// BatchHandler is called for every observation batch received on the stream.
type BatchHandler func(table logit.ObservationTable)

// ReconnectConfig controls reconnection behavior
type ReconnectConfig struct {
	InitialBackoff    time.Duration
	MaxBackoff        time.Duration
	BackoffMultiplier float64
}

// DefaultReconnectConfig returns recommended reconnect settings
func DefaultReconnectConfig() ReconnectConfig {
	return ReconnectConfig{
		InitialBackoff:    time.Second,
		MaxBackoff:        time.Minute,
		BackoffMultiplier: 2.0,
	}
}

// batchMessage is the wire format of one observation batch.
type batchMessage struct {
	Variables map[string][]float64 `json:"variables"`
}

// StreamSource subscribes to a websocket feed of observation batches. Each
// batch is a complete table for which probabilities are recomputed.
type StreamSource struct {
	url        string
	token      string
	bufferSize int
	reconnect  ReconnectConfig
	logger     *logrus.Logger

	mu              sync.RWMutex
	connected       bool
	lastMessageTime time.Time
}

// NewStreamSource creates a websocket observation stream
func NewStreamSource(cfg config.StreamSourceConfig, logger *logrus.Logger) *StreamSource {
	if logger == nil {
		logger = logrus.New()
	}
	bufferSize := cfg.BufferSize
	if bufferSize <= 0 {
		bufferSize = 16
	}
	return &StreamSource{
		url:        cfg.URL,
		token:      cfg.Token,
		bufferSize: bufferSize,
		reconnect:  DefaultReconnectConfig(),
		logger:     logger,
	}
}

// IsConnected reports whether the stream currently holds a live connection.
func (s *StreamSource) IsConnected() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.connected
}

// Healthy is a readiness checker for the stream connection.
func (s *StreamSource) Healthy(ctx context.Context) error {
	if !s.IsConnected() {
		return fmt.Errorf("stream disconnected")
	}
	return nil
}

// Run connects to the stream and dispatches every received batch to the
// handler, reconnecting with exponential backoff until the context is
// cancelled. Batches are buffered between the reader and the handler so a
// slow recompute does not stall the websocket; when the buffer is full the
// newest batch is dropped and the next one supersedes it.
func (s *StreamSource) Run(ctx context.Context, handler BatchHandler) error {
	batches := make(chan logit.ObservationTable, s.bufferSize)
	defer close(batches)

	go func() {
		for table := range batches {
			handler(table)
		}
	}()

	backoff := s.reconnect.InitialBackoff

	for {
		if err := ctx.Err(); err != nil {
			return err
		}

		err := s.readLoop(ctx, batches)
		if err == nil || ctx.Err() != nil {
			return ctx.Err()
		}

		s.logger.WithError(err).WithField("backoff", backoff.String()).Warn("Stream disconnected, reconnecting")

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(backoff):
		}

		backoff = time.Duration(float64(backoff) * s.reconnect.BackoffMultiplier)
		if backoff > s.reconnect.MaxBackoff {
			backoff = s.reconnect.MaxBackoff
		}
	}
}

// readLoop holds one connection open and enqueues batches until it fails.
func (s *StreamSource) readLoop(ctx context.Context, batches chan<- logit.ObservationTable) error {
	header := http.Header{}
	if s.token != "" {
		header.Set("Authorization", "Bearer "+s.token)
	}

	conn, _, err := websocket.DefaultDialer.DialContext(ctx, s.url, header)
	if err != nil {
		return fmt.Errorf("failed to connect to stream %s: %w", s.url, err)
	}
	defer conn.Close()

	s.setConnected(true)
	defer s.setConnected(false)

	s.logger.WithField("url", s.url).Info("Observation stream connected")

	// Close the connection when the context ends so ReadJSON unblocks.
	done := make(chan struct{})
	defer close(done)
	go func() {
		select {
		case <-ctx.Done():
			conn.Close()
		case <-done:
		}
	}()

	for {
		var msg batchMessage
		if err := conn.ReadJSON(&msg); err != nil {
			return fmt.Errorf("stream read failed: %w", err)
		}

		s.mu.Lock()
		s.lastMessageTime = time.Now()
		s.mu.Unlock()

		if len(msg.Variables) == 0 {
			// Heartbeat frame
			continue
		}

		select {
		case batches <- logit.ObservationTable(msg.Variables):
		default:
			s.logger.Warn("Stream buffer full, dropping batch")
		}
	}
}

func (s *StreamSource) setConnected(connected bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.connected = connected
}
