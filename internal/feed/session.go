package feed

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"

	"tradedesk/internal/model"
)

// Session is one live connection to the price feed, bound to a single
// instrument and generation for its whole lifetime.
type Session struct {
	cfg        Config
	instrument string
	generation uint64
	events     Events
	logger     *slog.Logger

	done     chan struct{} // closed by Close
	readDone chan struct{} // closed when the read goroutine exits

	discOnce sync.Once

	mu           sync.Mutex
	conn         *websocket.Conn
	closed       bool
	lastActivity time.Time
}

// Open starts a session for the given instrument. It never blocks:
// dialing happens on a background goroutine and the outcome arrives
// through the event callbacks. A failed dial is reported as a disconnect.
func Open(ctx context.Context, cfg Config, instrument string, generation uint64, events Events, logger *slog.Logger) *Session {
	if logger == nil {
		logger = slog.Default()
	}

	s := &Session{
		cfg:        cfg,
		instrument: instrument,
		generation: generation,
		events:     events,
		logger: logger.With(
			"session_id", uuid.NewString(),
			"instrument", instrument,
			"generation", generation,
		),
		done:     make(chan struct{}),
		readDone: make(chan struct{}),
	}

	go s.run(ctx)

	return s
}

// Instrument returns the symbol this session streams.
func (s *Session) Instrument() string { return s.instrument }

// Generation returns the generation this session was opened under.
func (s *Session) Generation() uint64 { return s.generation }

// Close tears the session down. It is idempotent and safe to call on a
// session that never connected. Once Close returns, no further OnSample
// or OnDisconnected callbacks fire. Close must not be called from inside
// a session callback, or while holding a lock the callbacks acquire.
func (s *Session) Close() error {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return nil
	}
	s.closed = true
	conn := s.conn
	s.mu.Unlock()

	close(s.done)

	if conn != nil {
		conn.WriteControl(
			websocket.CloseMessage,
			websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""),
			time.Now().Add(time.Second),
		)
		conn.Close()
	}

	s.logger.Debug("session closed")
	return nil
}

// run dials the feed and reads frames until closure.
func (s *Session) run(ctx context.Context) {
	defer close(s.readDone)

	dialer := websocket.Dialer{
		HandshakeTimeout: s.cfg.HandshakeTimeout,
	}

	conn, _, err := dialer.DialContext(ctx, streamURL(s.cfg.URL, s.instrument), nil)
	if err != nil {
		s.disconnected(fmt.Errorf("dial feed: %w", err))
		return
	}

	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		conn.Close()
		return
	}
	s.conn = conn
	s.lastActivity = time.Now()
	s.mu.Unlock()

	// Server pings and pongs both count as liveness.
	conn.SetPingHandler(func(data string) error {
		s.touch()
		return conn.WriteControl(
			websocket.PongMessage,
			[]byte(data),
			time.Now().Add(s.cfg.WriteTimeout),
		)
	})
	conn.SetPongHandler(func(string) error {
		s.touch()
		return nil
	})

	s.logger.Debug("feed connected", "url", streamURL(s.cfg.URL, s.instrument))

	go s.keepalive(conn)

	s.readLoop(conn)
}

// readLoop reads frames until the connection drops or Close is called.
func (s *Session) readLoop(conn *websocket.Conn) {
	for {
		_, data, err := conn.ReadMessage()
		receivedAt := time.Now()

		if err != nil {
			if websocket.IsCloseError(err,
				websocket.CloseNormalClosure,
				websocket.CloseGoingAway,
				websocket.CloseAbnormalClosure,
			) {
				err = ErrRemoteClosed
			}
			s.disconnected(err)
			return
		}

		s.touch()
		s.handleFrame(data, receivedAt)
	}
}

// handleFrame parses one feed frame and emits it. Malformed frames are
// dropped with a diagnostic; the session continues.
func (s *Session) handleFrame(data []byte, receivedAt time.Time) {
	var wire sampleWire
	if err := json.Unmarshal(data, &wire); err != nil {
		s.logger.Warn("dropping malformed feed frame", "error", err)
		return
	}
	if err := wire.validate(); err != nil {
		s.logger.Warn("dropping malformed feed frame", "error", err)
		return
	}

	s.emitSample(wire.toSample(receivedAt))
}

// keepalive sends pings and detects stale connections. A stale
// connection is terminal: it is reported once and never retried.
func (s *Session) keepalive(conn *websocket.Conn) {
	interval := s.cfg.PingTimeout / 2
	if interval < time.Second {
		interval = time.Second
	}

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-s.done:
			return
		case <-s.readDone:
			return
		case <-ticker.C:
			deadline := time.Now().Add(s.cfg.WriteTimeout)
			if err := conn.WriteControl(websocket.PingMessage, []byte("keepalive"), deadline); err != nil {
				s.logger.Debug("failed to send ping", "error", err)
			}

			s.mu.Lock()
			stale := time.Since(s.lastActivity) > s.cfg.PingTimeout
			s.mu.Unlock()

			if stale {
				s.disconnected(ErrStale)
				conn.Close() // unblocks the read loop
				return
			}
		}
	}
}

// emitSample delivers a sample unless the session has been closed. The
// callback runs under the session mutex, which is what makes the Close
// guarantee hold: Close cannot return while an emit is in flight.
func (s *Session) emitSample(sample model.PriceSample) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return
	}

	if s.events.OnSample != nil {
		s.events.OnSample(s.generation, sample)
	}
}

func (s *Session) touch() {
	s.mu.Lock()
	s.lastActivity = time.Now()
	s.mu.Unlock()
}

// disconnected reports terminal closure exactly once, unless Close
// already suppressed callbacks.
func (s *Session) disconnected(err error) {
	s.discOnce.Do(func() {
		s.mu.Lock()
		defer s.mu.Unlock()
		if s.closed {
			return
		}

		s.logger.Info("feed disconnected", "error", err)
		if s.events.OnDisconnected != nil {
			s.events.OnDisconnected(s.generation, err)
		}
	})
}
