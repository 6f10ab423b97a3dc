package usecase

import (
	"context"
	"errors"
	"math"
	"testing"
	"time"

	"VixNav/internal/domain/errs"
	"VixNav/internal/domain/models"
	"VixNav/internal/domain/pricelimit"
)

var (
	closeAt  = time.Date(2025, 5, 12, 15, 0, 0, 0, pricelimit.JST)
	checkNow = time.Date(2025, 5, 13, 10, 0, 0, 0, pricelimit.JST)
)

func scenario(mult *float64) (*fakeQuotes, *fakeComps) {
	base := map[string]float64{"VXM5": 18.5, "VXN5": 19.2}
	q := &fakeQuotes{
		source:  "YAHOO",
		closing: models.ClosingPrice{Ticker: "318A.T", Price: 999, Time: closeAt.Add(-time.Hour)},
		price: func(tk string, at time.Time) (float64, error) {
			p, ok := base[tk]
			if !ok {
				return 0, errs.MissingData("price", "%s", tk)
			}
			if at.Equal(closeAt) {
				return p, nil
			}
			return p * *mult, nil
		},
		fx: func(time.Time) (float64, error) { return 148.3, nil },
	}
	c := &fakeComps{comp: &models.Composition{
		NearFuture: "VXM5", FarFuture: "VXN5",
		SharesNear: 200, SharesFar: 150,
		SharesOutstanding: 1_000_000,
	}}
	return q, c
}

func newTestAlerter(q *fakeQuotes, c *fakeComps, opts ...AlerterOption) *Alerter {
	n := 0
	base := []AlerterOption{
		WithClock(func() time.Time { return checkNow }),
		WithIDGenerator(func() string { n++; return "id-" + string(rune('0'+n)) }),
	}
	return NewAlerter(AlerterConfig{Fund: "318A.T", FundName: "VIX ETF", StreamMaxAge: 2 * time.Minute}, q, c, nil, append(base, opts...)...)
}

func TestCheckWithinLimits(t *testing.T) {
	mult := 1.05
	q, c := scenario(&mult)
	sink, hist := &fakeSink{}, &fakeHistory{}
	a := newTestAlerter(q, c, WithAlertSink(sink), WithHistory(hist))

	res, err := a.Check(context.Background())
	if err != nil {
		t.Fatalf("Check: %v", err)
	}
	if res.Band.Lower != 849 || res.Band.Upper != 1149 {
		t.Fatalf("band = %+v", res.Band)
	}
	if math.Abs(res.InitialValue-975_814_000) > 1e-3 {
		t.Fatalf("initial value = %v", res.InitialValue)
	}
	if math.Abs(res.Decision.ChangePct-0.05) > 1e-9 {
		t.Fatalf("change = %v", res.Decision.ChangePct)
	}
	if res.Decision.Breach || res.Alert != nil || len(sink.alerts) != 0 {
		t.Fatalf("unexpected alert %+v", res)
	}
	if len(hist.checks) != 1 {
		t.Fatalf("history has %d checks", len(hist.checks))
	}
	if math.Abs(res.NAVPerShare-res.CurrentValue/1_000_000) > 1e-9 {
		t.Fatalf("nav per share = %v", res.NAVPerShare)
	}
	if len(c.asOf) != 1 || !c.asOf[0].Equal(closeAt) {
		t.Fatalf("composition looked up at %v", c.asOf)
	}
}

func TestCheckRaisesAlert(t *testing.T) {
	mult := 1.2
	q, c := scenario(&mult)
	sink := &fakeSink{}
	a := newTestAlerter(q, c, WithAlertSink(sink))

	res, err := a.Check(context.Background())
	if err != nil {
		t.Fatalf("Check: %v", err)
	}
	if !res.Decision.Breach || res.Alert == nil || len(sink.alerts) != 1 {
		t.Fatalf("expected one alert, got %+v", res)
	}
	al := sink.alerts[0]
	if al.ID != "id-1" || al.Fund != "318A.T" || al.FundName != "VIX ETF" {
		t.Fatalf("unexpected alert %+v", al)
	}
	if al.Current.Legs["VXM5"].Price != 18.5*mult || al.Initial.Legs["VXN5"].Price != 19.2 {
		t.Fatalf("unexpected legs %+v / %+v", al.Initial.Legs, al.Current.Legs)
	}
	if !al.Initial.At.Equal(closeAt) || !al.Current.At.Equal(checkNow) {
		t.Fatalf("valuation times %v %v", al.Initial.At, al.Current.At)
	}
}

func TestCheckUsesFreshStream(t *testing.T) {
	mult := 1.0
	cases := []struct {
		name    string
		age     time.Duration
		fxCalls int
		rate    float64
	}{
		{"fresh", time.Minute, 1, 150},
		{"stale", 10 * time.Minute, 2, 148.3},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			q, c := scenario(&mult)
			s := &fakeStream{ok: true, q: models.FXQuote{Pair: "USDJPY", Rate: 150, Source: "FINNHUB", Time: checkNow.Add(-tc.age)}}
			a := newTestAlerter(q, c, WithFXStream(s))
			res, err := a.Check(context.Background())
			if err != nil {
				t.Fatalf("Check: %v", err)
			}
			if q.fxCalls != tc.fxCalls {
				t.Fatalf("fx polled %d times, want %d", q.fxCalls, tc.fxCalls)
			}
			want := res.InitialValue / 148.3 * tc.rate
			if math.Abs(res.CurrentValue-want) > 1e-3 {
				t.Fatalf("current = %v, want %v", res.CurrentValue, want)
			}
		})
	}
}

func TestCheckErrors(t *testing.T) {
	mult := 1.0
	q, c := scenario(&mult)
	q.closing = models.ClosingPrice{}
	if _, err := newTestAlerter(q, c).Check(context.Background()); !errors.Is(err, errs.ErrMissingData) {
		t.Fatalf("expected missing closing, got %v", err)
	}

	q, c = scenario(&mult)
	c.comp.NearFuture, c.comp.FarFuture = "VXN5", "VXM5"
	if _, err := newTestAlerter(q, c).Check(context.Background()); !errors.Is(err, errs.ErrInvalidData) {
		t.Fatalf("expected invalid composition, got %v", err)
	}

	q, c = scenario(&mult)
	c.comp.FarFuture = "VXQ5"
	if _, err := newTestAlerter(q, c).Check(context.Background()); !errors.Is(err, errs.ErrMissingData) {
		t.Fatalf("expected missing price, got %v", err)
	}
}

func TestMonitorStopsAtMaxAlerts(t *testing.T) {
	mult := 1.3
	q, c := scenario(&mult)
	sink := &fakeSink{}
	a := newTestAlerter(q, c, WithAlertSink(sink))

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	sum, err := a.Monitor(ctx, time.Millisecond, 3)
	if err != nil {
		t.Fatalf("Monitor: %v", err)
	}
	if sum.Alerts != 3 || sum.Checks != 3 || len(sink.alerts) != 3 {
		t.Fatalf("summary %+v, sink %d", sum, len(sink.alerts))
	}
	if len(c.asOf) != 1 {
		t.Fatalf("baseline recomputed %d times", len(c.asOf))
	}
}

func TestMonitorSkipsFailedIterations(t *testing.T) {
	mult := 1.0
	q, c := scenario(&mult)
	calls := 0
	price := q.price
	q.price = func(tk string, at time.Time) (float64, error) {
		if tk == "VXM5" && !at.Equal(closeAt) {
			calls++
			if calls%2 == 1 {
				return 0, errors.New("timeout")
			}
		}
		return price(tk, at)
	}
	a := newTestAlerter(q, c)

	ctx, cancel := context.WithTimeout(context.Background(), 60*time.Millisecond)
	defer cancel()
	sum, err := a.Monitor(ctx, 5*time.Millisecond, 0)
	if err != nil {
		t.Fatalf("Monitor: %v", err)
	}
	if sum.Errors == 0 || sum.Checks <= sum.Errors || sum.Alerts != 0 {
		t.Fatalf("unexpected summary %+v", sum)
	}

	if _, err := a.Monitor(ctx, 0, 1); err == nil {
		t.Fatal("expected error for zero interval")
	}
}
