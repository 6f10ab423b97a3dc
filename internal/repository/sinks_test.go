package repository

import (
	"context"
	"errors"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"VixNav/internal/domain/models"
	"VixNav/internal/domain/pricelimit"

	"github.com/aws/aws-sdk-go-v2/service/s3"
)

func testAlert() *models.Alert {
	at := time.Date(2025, 5, 12, 1, 30, 0, 0, time.UTC)
	return &models.Alert{
		ID:       "a-1",
		Time:     at,
		Fund:     "318A.T",
		Closing:  models.ClosingPrice{Ticker: "318A.T", Price: 1000},
		Band:     pricelimit.Band{Lower: 850, Upper: 1150, Width: 150},
		Decision: pricelimit.Decision{Breach: true, ChangePct: 0.2, AllowedLowerPct: -0.15, AllowedUpperPct: 0.15},
		Initial:  models.Valuation{At: at, Value: 1000000},
		Current:  models.Valuation{At: at, Value: 1200000},
	}
}

func TestFileAlertSink(t *testing.T) {
	dir := t.TempDir()
	s := NewFileAlertSink(dir)
	a := testAlert()

	if got := filepath.Base(s.Path(a)); got != "price_alert_202505121030.log" {
		t.Fatalf("path = %s", got)
	}
	for i := 0; i < 2; i++ {
		if err := s.Send(context.Background(), a); err != nil {
			t.Fatalf("send: %v", err)
		}
	}
	b, err := os.ReadFile(s.Path(a))
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	if n := strings.Count(string(b), "Alert ID: a-1"); n != 2 {
		t.Fatalf("expected two reports, found %d", n)
	}
	if !strings.Contains(string(b), "Current Basket Value: 1,200,000.00 JPY") {
		t.Fatalf("report missing current value:\n%s", b)
	}
}

type capturePublisher struct {
	topic string
	key   []byte
	value interface{}
	err   error
}

func (p *capturePublisher) Publish(_ context.Context, topic string, key []byte, value interface{}) error {
	p.topic, p.key, p.value = topic, key, value
	return p.err
}

func TestKafkaAlertSink(t *testing.T) {
	p := &capturePublisher{}
	s := NewKafkaAlertSink(p, "vixnav.alerts")
	a := testAlert()

	if err := s.Send(context.Background(), a); err != nil {
		t.Fatalf("send: %v", err)
	}
	if p.topic != "vixnav.alerts" || string(p.key) != "318A.T" {
		t.Fatalf("unexpected topic/key %s %s", p.topic, p.key)
	}
	msg, ok := p.value.(alertMessage)
	if !ok || msg.ID != "a-1" || !strings.Contains(msg.Report, "PRICE LIMIT ALERT") {
		t.Fatalf("unexpected value %#v", p.value)
	}

	p.err = errors.New("broker down")
	if err := s.Send(context.Background(), a); err == nil {
		t.Fatal("expected publish error")
	}
}

type capturePutter struct {
	input *s3.PutObjectInput
	body  string
}

func (c *capturePutter) PutObject(_ context.Context, in *s3.PutObjectInput, _ ...func(*s3.Options)) (*s3.PutObjectOutput, error) {
	b, err := io.ReadAll(in.Body)
	if err != nil {
		return nil, err
	}
	c.input, c.body = in, string(b)
	return &s3.PutObjectOutput{}, nil
}

func TestS3ArchiveUpload(t *testing.T) {
	dir := t.TempDir()
	local := filepath.Join(dir, "vix_futures_202505121030.csv")
	if err := os.WriteFile(local, []byte("timestamp,price\n"), 0o644); err != nil {
		t.Fatal(err)
	}

	put := &capturePutter{}
	a := NewS3ArchiveWithClient(put, "bucket", "/vixnav/")
	a.now = func() time.Time { return time.Date(2025, 5, 11, 23, 0, 0, 0, time.UTC) }

	if err := a.Upload(context.Background(), local); err != nil {
		t.Fatalf("upload: %v", err)
	}
	if *put.input.Bucket != "bucket" || *put.input.Key != "vixnav/2025/05/12/vix_futures_202505121030.csv" {
		t.Fatalf("unexpected location %s/%s", *put.input.Bucket, *put.input.Key)
	}
	if put.body != "timestamp,price\n" {
		t.Fatalf("body = %q", put.body)
	}
	if ct := *put.input.ContentType; !strings.HasPrefix(ct, "text/") {
		t.Fatalf("content type = %s", ct)
	}

	if err := a.Upload(context.Background(), filepath.Join(dir, "absent.csv")); err == nil {
		t.Fatal("expected error for missing file")
	}
}

func TestCheckArgsMatchSchema(t *testing.T) {
	r := &models.CheckResult{
		Fund:     "318A.T",
		Decision: pricelimit.Decision{Breach: true},
		Alert:    &models.Alert{ID: "a-1"},
	}
	args := checkArgs(r)
	if len(args) != 13 {
		t.Fatalf("expected 13 args, got %d", len(args))
	}
	if args[11] != uint8(1) || args[12] != "a-1" {
		t.Fatalf("unexpected breach/alert args %v %v", args[11], args[12])
	}
	if n := len(navArgs(&models.NAVEstimate{})); n != 13 {
		t.Fatalf("expected 13 nav args, got %d", n)
	}
	for _, stmt := range SchemaStatements() {
		if !strings.HasPrefix(stmt, "CREATE TABLE IF NOT EXISTS") {
			t.Fatalf("unexpected statement %s", stmt)
		}
	}
}
