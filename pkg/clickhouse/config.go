package clickhouse

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

// Option configures Client.
type Option func(*Config)

// Config holds the connection settings of the history store.
type Config struct {
	Host     string
	Port     int
	Database string
	User     string
	Password string
	UseHTTP  bool

	MaxOpenConns    int
	MaxIdleConns    int
	ConnMaxLifetime time.Duration

	DialTimeout  time.Duration
	ReadTimeout  time.Duration
	QueryTimeout time.Duration

	// AsyncInsert lets the server buffer the small per-check inserts.
	AsyncInsert  bool
	WaitForAsync bool
}

func defaultConfig() Config {
	return Config{
		Port:            9000,
		User:            "default",
		MaxOpenConns:    4,
		MaxIdleConns:    2,
		ConnMaxLifetime: 5 * time.Minute,
		DialTimeout:     5 * time.Second,
		ReadTimeout:     10 * time.Second,
	}
}

// Validate reports missing connection settings.
func (c Config) Validate() error {
	var problems []string
	if c.Host == "" {
		problems = append(problems, "host is required")
	}
	if c.Port <= 0 {
		problems = append(problems, "port must be positive")
	}
	if c.Database == "" {
		problems = append(problems, "database is required")
	}
	if len(problems) > 0 {
		return errors.New("clickhouse: " + strings.Join(problems, "; "))
	}
	return nil
}

// DSN renders the clickhouse-go connection string.
func (c Config) DSN() string {
	scheme := "clickhouse"
	if c.UseHTTP {
		scheme = "clickhouse+http"
	}
	dsn := fmt.Sprintf("%s://%s:%s@%s:%d/%s", scheme, c.User, c.Password, c.Host, c.Port, c.Database)

	var params []string
	if c.DialTimeout > 0 {
		params = append(params, fmt.Sprintf("dial_timeout=%s", c.DialTimeout))
	}
	if c.ReadTimeout > 0 {
		params = append(params, fmt.Sprintf("read_timeout=%s", c.ReadTimeout))
	}
	if c.QueryTimeout > 0 {
		params = append(params, fmt.Sprintf("max_execution_time=%d", int(c.QueryTimeout.Seconds())))
	}
	if c.AsyncInsert {
		params = append(params, "async_insert=1")
		if c.WaitForAsync {
			params = append(params, "wait_for_async_insert=1")
		}
	}
	if len(params) > 0 {
		dsn += "?" + strings.Join(params, "&")
	}
	return dsn
}

// WithAddr sets the server address.
func WithAddr(host string, port int) Option {
	return func(c *Config) {
		c.Host = host
		c.Port = port
	}
}

func WithDatabase(database string) Option {
	return func(c *Config) { c.Database = database }
}

func WithCredentials(user, password string) Option {
	return func(c *Config) {
		c.User = user
		c.Password = password
	}
}

// WithHTTP switches from the native protocol to HTTP.
func WithHTTP(useHTTP bool) Option {
	return func(c *Config) { c.UseHTTP = useHTTP }
}

// WithPool sizes the connection pool.
func WithPool(maxOpen, maxIdle int) Option {
	return func(c *Config) {
		c.MaxOpenConns = maxOpen
		c.MaxIdleConns = maxIdle
	}
}

// WithTimeouts sets the dial and read timeouts and the server-side query limit.
func WithTimeouts(dial, read, query time.Duration) Option {
	return func(c *Config) {
		c.DialTimeout = dial
		c.ReadTimeout = read
		c.QueryTimeout = query
	}
}

// WithAsyncInsert configures async_insert and whether inserts wait for the flush.
func WithAsyncInsert(enabled, wait bool) Option {
	return func(c *Config) {
		c.AsyncInsert = enabled
		c.WaitForAsync = wait
	}
}
