package influxdb

import (
	"context"
	"fmt"
	"sync"
	"time"

	influxdb2 "github.com/influxdata/influxdb-client-go/v2"
	"github.com/influxdata/influxdb-client-go/v2/api"

	"github.com/nerrad567/gray-logic-irclimate/internal/climate"
	"github.com/nerrad567/gray-logic-irclimate/internal/infrastructure/config"
)

const (
	connectTimeout = 10 * time.Second
	pingTimeout    = 5 * time.Second

	fallbackBatchSize     = 100
	fallbackFlushInterval = 10 * time.Second
)

// Client records climate telemetry in one InfluxDB v2 bucket.
//
// Points are queued on the library's batching write API and never block the
// caller. A unit's climate_state is only written when it differs from the
// last one written for that unit, so a sensor repeating the same reading
// does not add points. Every point carries a site_id tag.
//
// All methods are safe for concurrent use.
type Client struct {
	influx influxdb2.Client
	writer api.WriteAPI

	mu        sync.Mutex
	closed    bool
	onError   func(err error)
	lastState map[string]climate.State
}

// Connect checks the server is healthy and returns a client writing to
// cfg.Bucket. It returns ErrDisabled when telemetry is turned off.
func Connect(cfg config.InfluxDBConfig, siteID string) (*Client, error) {
	if !cfg.Enabled {
		return nil, ErrDisabled
	}

	influx := influxdb2.NewClientWithOptions(cfg.URL, cfg.Token, writeOptions(cfg, siteID))

	ctx, cancel := context.WithTimeout(context.Background(), connectTimeout)
	defer cancel()
	if err := ping(ctx, influx); err != nil {
		influx.Close()
		return nil, fmt.Errorf("%w: %w", ErrConnectionFailed, err)
	}

	c := &Client{
		influx:    influx,
		writer:    influx.WriteAPI(cfg.Org, cfg.Bucket),
		lastState: make(map[string]climate.State),
	}
	go c.forwardErrors(c.writer.Errors())
	return c, nil
}

// writeOptions maps batch settings onto the client options. Non-positive
// values fall back to 100 points every 10 seconds.
func writeOptions(cfg config.InfluxDBConfig, siteID string) *influxdb2.Options {
	batch := uint(fallbackBatchSize)
	if cfg.BatchSize > 0 {
		batch = uint(cfg.BatchSize)
	}
	flush := fallbackFlushInterval
	if cfg.FlushInterval > 0 {
		flush = time.Duration(cfg.FlushInterval) * time.Second
	}

	opts := influxdb2.DefaultOptions().
		SetBatchSize(batch).
		SetFlushInterval(uint(flush.Milliseconds())) // #nosec G115 -- positive by construction
	if siteID != "" {
		opts.AddDefaultTag("site_id", siteID)
	}
	return opts
}

func ping(ctx context.Context, influx influxdb2.Client) error {
	healthy, err := influx.Ping(ctx)
	if err != nil {
		return fmt.Errorf("ping: %w", err)
	}
	if !healthy {
		return fmt.Errorf("server not healthy")
	}
	return nil
}

// forwardErrors hands asynchronous batch failures to the error callback.
func (c *Client) forwardErrors(errs <-chan error) {
	for err := range errs {
		c.mu.Lock()
		callback := c.onError
		c.mu.Unlock()

		if callback != nil {
			callback(fmt.Errorf("%w: %w", ErrWriteFailed, err))
		}
	}
}

// SetOnError sets the callback for batch write failures. The error wraps
// ErrWriteFailed.
func (c *Client) SetOnError(callback func(err error)) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.onError = callback
}

// HealthCheck pings the server.
func (c *Client) HealthCheck(ctx context.Context) error {
	if !c.IsConnected() {
		return ErrNotConnected
	}

	ctx, cancel := context.WithTimeout(ctx, pingTimeout)
	defer cancel()
	if err := ping(ctx, c.influx); err != nil {
		return fmt.Errorf("influxdb health check failed: %w", err)
	}
	return nil
}

// IsConnected reports whether the client is still open. It does not
// contact the server; HealthCheck does.
func (c *Client) IsConnected() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.influx != nil && !c.closed
}

// Flush blocks until queued points are sent. It is a no-op once closed.
func (c *Client) Flush() {
	if !c.IsConnected() {
		return
	}
	c.writer.Flush()
}

// Close sends queued points and releases the client. Later writes are
// dropped.
func (c *Client) Close() error {
	c.mu.Lock()
	if c.influx == nil || c.closed {
		c.mu.Unlock()
		return nil
	}
	c.closed = true
	c.mu.Unlock()

	c.writer.Flush()
	c.influx.Close()
	return nil
}
