package kafka

import (
	"fmt"
	"time"
)

// Option configures Producer.
type Option func(*Config)

// Config holds the alert producer settings.
type Config struct {
	Brokers      []string
	RequiredAcks int
	Compression  string
	MaxAttempts  int
	WriteTimeout time.Duration
	ReadTimeout  time.Duration

	BatchSize    int
	BatchBytes   int
	BatchTimeout time.Duration

	// KeyedPartitioning hashes the message key so one fund's alerts stay ordered on one partition.
	KeyedPartitioning bool
}

func defaultConfig() Config {
	return Config{
		RequiredAcks:      -1,
		Compression:       "snappy",
		MaxAttempts:       3,
		WriteTimeout:      10 * time.Second,
		ReadTimeout:       10 * time.Second,
		BatchSize:         100,
		BatchBytes:        1 << 20,
		BatchTimeout:      10 * time.Millisecond,
		KeyedPartitioning: true,
	}
}

// Validate checks brokers, acks and compression.
func (c Config) Validate() error {
	if len(c.Brokers) == 0 {
		return fmt.Errorf("kafka: brokers are required")
	}
	switch c.RequiredAcks {
	case -1, 0, 1:
	default:
		return fmt.Errorf("kafka: required acks must be -1, 0 or 1, got %d", c.RequiredAcks)
	}
	if _, ok := compressions[c.Compression]; !ok {
		return fmt.Errorf("kafka: unknown compression %q", c.Compression)
	}
	return nil
}

func WithBrokers(brokers ...string) Option {
	return func(c *Config) { c.Brokers = brokers }
}

// WithDelivery sets required acks (-1 waits for all replicas) and writer attempts.
func WithDelivery(acks, maxAttempts int) Option {
	return func(c *Config) {
		c.RequiredAcks = acks
		c.MaxAttempts = maxAttempts
	}
}

func WithCompression(compression string) Option {
	return func(c *Config) { c.Compression = compression }
}

// WithBatching bounds a batch by message count, bytes and linger time.
func WithBatching(size, bytes int, linger time.Duration) Option {
	return func(c *Config) {
		c.BatchSize = size
		c.BatchBytes = bytes
		c.BatchTimeout = linger
	}
}

func WithTimeouts(write, read time.Duration) Option {
	return func(c *Config) {
		c.WriteTimeout = write
		c.ReadTimeout = read
	}
}

// WithKeyedPartitioning toggles hashing by message key instead of least-bytes balancing.
func WithKeyedPartitioning(on bool) Option {
	return func(c *Config) { c.KeyedPartitioning = on }
}
