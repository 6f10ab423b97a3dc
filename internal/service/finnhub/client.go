// Package finnhub keeps a live FX rate from the Finnhub websocket feed.
package finnhub

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"
	"strings"
	"sync"
	"time"

	"VixNav/internal/domain/models"
	drepo "VixNav/internal/domain/repository"
	applogger "VixNav/pkg/logger"

	"github.com/gorilla/websocket"
)

const sourceName = "FINNHUB"

// Config mirrors the finnhub section of the application config.
type Config struct {
	APIKey         string
	WebSocketURL   string
	Symbol         string // e.g. OANDA:USD_JPY
	ReconnectDelay time.Duration
	PingInterval   time.Duration
}

// Option configures a Stream.
type Option func(*Stream)

// WithOnRate registers a callback invoked for every accepted trade price.
func WithOnRate(fn func(rate float64)) Option {
	return func(s *Stream) { s.onRate = fn }
}

// WithDialer replaces the websocket dialer.
func WithDialer(d *websocket.Dialer) Option {
	return func(s *Stream) { s.dialer = d }
}

// Stream implements repository.FXStream backed by the Finnhub websocket.
type Stream struct {
	cfg    Config
	pair   string
	dialer *websocket.Dialer
	logger *applogger.Logger
	onRate func(float64)

	mu     sync.RWMutex
	latest models.FXQuote
	have   bool

	connMu sync.Mutex
	conn   *websocket.Conn
	closed bool
}

var _ drepo.FXStream = (*Stream)(nil)

// New creates a stream. It does not connect until Start.
func New(cfg Config, logger *applogger.Logger, opts ...Option) *Stream {
	if logger == nil {
		logger = applogger.Nop()
	}
	if cfg.ReconnectDelay <= 0 {
		cfg.ReconnectDelay = 5 * time.Second
	}
	if cfg.PingInterval <= 0 {
		cfg.PingInterval = 30 * time.Second
	}
	s := &Stream{
		cfg:    cfg,
		pair:   pairFromSymbol(cfg.Symbol),
		dialer: websocket.DefaultDialer,
		logger: logger.With(applogger.String("component", "finnhub"), applogger.String("symbol", cfg.Symbol)),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// pairFromSymbol turns OANDA:USD_JPY into USDJPY.
func pairFromSymbol(symbol string) string {
	if i := strings.LastIndex(symbol, ":"); i >= 0 {
		symbol = symbol[i+1:]
	}
	return strings.ToUpper(strings.NewReplacer("_", "", "/", "").Replace(symbol))
}

// Start connects and reads until ctx is cancelled, reconnecting after
// cfg.ReconnectDelay whenever the connection drops.
func (s *Stream) Start(ctx context.Context) error {
	for {
		err := s.session(ctx)
		if ctx.Err() != nil || s.isClosed() {
			return nil
		}
		s.logger.Warn("fx stream disconnected", applogger.Error(err), applogger.Duration("retry_in", s.cfg.ReconnectDelay))
		select {
		case <-ctx.Done():
			return nil
		case <-time.After(s.cfg.ReconnectDelay):
		}
	}
}

// Latest returns the most recent rate, if any has been received.
func (s *Stream) Latest() (models.FXQuote, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.latest, s.have
}

// Close stops the stream and closes the connection.
func (s *Stream) Close() error {
	s.connMu.Lock()
	defer s.connMu.Unlock()
	s.closed = true
	if s.conn != nil {
		err := s.conn.Close()
		s.conn = nil
		return err
	}
	return nil
}

func (s *Stream) isClosed() bool {
	s.connMu.Lock()
	defer s.connMu.Unlock()
	return s.closed
}

func (s *Stream) connect(ctx context.Context) (*websocket.Conn, error) {
	u, err := url.Parse(s.cfg.WebSocketURL)
	if err != nil {
		return nil, fmt.Errorf("finnhub url: %w", err)
	}
	q := u.Query()
	q.Set("token", s.cfg.APIKey)
	u.RawQuery = q.Encode()

	conn, _, err := s.dialer.DialContext(ctx, u.String(), nil)
	if err != nil {
		return nil, fmt.Errorf("finnhub connect: %w", err)
	}

	s.connMu.Lock()
	if s.closed {
		s.connMu.Unlock()
		conn.Close()
		return nil, fmt.Errorf("finnhub stream closed")
	}
	s.conn = conn
	s.connMu.Unlock()

	if err := conn.WriteJSON(map[string]string{"type": "subscribe", "symbol": s.cfg.Symbol}); err != nil {
		conn.Close()
		return nil, fmt.Errorf("subscribe %s: %w", s.cfg.Symbol, err)
	}
	s.logger.Info("fx stream subscribed")
	return conn, nil
}

type fhTrade struct {
	S string  `json:"s"`
	P float64 `json:"p"`
	T int64   `json:"t"` // ms
}

type fhMessage struct {
	Type string    `json:"type"`
	Data []fhTrade `json:"data"`
}

func (s *Stream) session(ctx context.Context) error {
	conn, err := s.connect(ctx)
	if err != nil {
		return err
	}
	done := make(chan struct{})
	defer close(done)

	// closes the connection on cancel so ReadMessage unblocks
	go func() {
		ticker := time.NewTicker(s.cfg.PingInterval)
		defer ticker.Stop()
		for {
			select {
			case <-done:
				return
			case <-ctx.Done():
				conn.Close()
				return
			case <-ticker.C:
				if err := conn.WriteControl(websocket.PingMessage, nil, time.Now().Add(5*time.Second)); err != nil {
					s.logger.Debug("ping failed", applogger.Error(err))
				}
			}
		}
	}()
	defer func() {
		conn.Close()
		s.connMu.Lock()
		if s.conn == conn {
			s.conn = nil
		}
		s.connMu.Unlock()
	}()

	for {
		_, b, err := conn.ReadMessage()
		if err != nil {
			return fmt.Errorf("finnhub read: %w", err)
		}
		var m fhMessage
		if err := json.Unmarshal(b, &m); err != nil || m.Type != "trade" {
			continue
		}
		s.accept(m.Data)
	}
}

func (s *Stream) accept(trades []fhTrade) {
	for _, d := range trades {
		if d.S != s.cfg.Symbol || d.P <= 0 {
			continue
		}
		q := models.FXQuote{
			Pair:   s.pair,
			Rate:   d.P,
			Source: sourceName,
			Time:   time.UnixMilli(d.T).UTC(),
		}
		s.mu.Lock()
		if !s.have || !q.Time.Before(s.latest.Time) {
			s.latest, s.have = q, true
		}
		s.mu.Unlock()
		if s.onRate != nil {
			s.onRate(d.P)
		}
	}
}
