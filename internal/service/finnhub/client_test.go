package finnhub

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/gorilla/websocket"
)

func TestPairFromSymbol(t *testing.T) {
	cases := map[string]string{
		"OANDA:USD_JPY": "USDJPY",
		"FXCM:USD/JPY":  "USDJPY",
		"usdjpy":        "USDJPY",
	}
	for in, want := range cases {
		if got := pairFromSymbol(in); got != want {
			t.Errorf("pairFromSymbol(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestStreamKeepsLatestRate(t *testing.T) {
	upgrader := websocket.Upgrader{}
	var token, subscribed atomic.Value
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		token.Store(r.URL.Query().Get("token"))
		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			return
		}
		defer conn.Close()
		var sub map[string]string
		if err := conn.ReadJSON(&sub); err != nil {
			return
		}
		subscribed.Store(sub["symbol"])
		conn.WriteMessage(websocket.TextMessage, []byte(`{"type":"ping"}`))
		conn.WriteMessage(websocket.TextMessage, []byte(`{"type":"trade","data":[{"s":"OANDA:EUR_JPY","p":160.1,"t":1715500000000},{"s":"OANDA:USD_JPY","p":148.3,"t":1715500000000}]}`))
		conn.WriteMessage(websocket.TextMessage, []byte(`{"type":"trade","data":[{"s":"OANDA:USD_JPY","p":147.0,"t":1715499000000}]}`))
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}))
	defer srv.Close()

	var rates int32
	s := New(Config{
		APIKey:         "k",
		WebSocketURL:   "ws" + strings.TrimPrefix(srv.URL, "http"),
		Symbol:         "OANDA:USD_JPY",
		ReconnectDelay: 10 * time.Millisecond,
		PingInterval:   20 * time.Millisecond,
	}, nil, WithOnRate(func(float64) { atomic.AddInt32(&rates, 1) }))

	if _, ok := s.Latest(); ok {
		t.Fatal("expected no rate before start")
	}

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- s.Start(ctx) }()

	deadline := time.Now().Add(2 * time.Second)
	for atomic.LoadInt32(&rates) < 2 && time.Now().Before(deadline) {
		time.Sleep(5 * time.Millisecond)
	}
	q, ok := s.Latest()
	if !ok {
		t.Fatal("no rate received")
	}
	if q.Rate != 148.3 || q.Pair != "USDJPY" || q.Source != "FINNHUB" {
		t.Fatalf("unexpected quote %+v", q)
	}
	if token.Load() != "k" || subscribed.Load() != "OANDA:USD_JPY" {
		t.Fatalf("token=%v subscribed=%v", token.Load(), subscribed.Load())
	}

	cancel()
	select {
	case err := <-done:
		if err != nil {
			t.Fatalf("Start returned %v", err)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("Start did not return after cancel")
	}
	if err := s.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}
}
