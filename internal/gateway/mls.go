package gateway

import (
	"context"
	"fmt"
	"sync/atomic"
	"time"

	"github.com/Gobusters/ectologger"
	_ "github.com/microsoft/go-mssqldb"

	"github.com/rechat/reso-odata/internal/platform/database"
	"github.com/rechat/reso-odata/internal/platform/metrics"
)

// Config describes how to reach the MLS backend.
type Config struct {
	Driver               string
	Host                 string
	Port                 int
	User                 string
	Password             string
	Database             string
	MaxOpenConns         int
	MaxIdleConns         int
	QueryTimeout         time.Duration
	ReconnectWait        time.Duration
	Tunnel               TunnelConfig
}

// MLS wraps database.DB with an SSH tunnel (optional) and a reconnect
// circuit breaker, per spec.md §5's "Reconnect semantics" and its Design
// Notes preference for a circuit breaker over a spin-wait.
type MLS struct {
	cfg     Config
	logger  ectologger.Logger
	tunnel  *Tunnel
	db      database.DB
	healthy atomic.Bool
}

func New(cfg Config, logger ectologger.Logger) *MLS {
	return &MLS{cfg: cfg, logger: logger}
}

func (m *MLS) GetName() string     { return "mls-gateway" }
func (m *MLS) DependsOn() []string { return nil }

func (m *MLS) Start(ctx context.Context) error {
	return m.connect(ctx)
}

func (m *MLS) connect(ctx context.Context) error {
	host, port := m.cfg.Host, m.cfg.Port

	if m.cfg.Tunnel.Enabled {
		tunnel, err := Open(m.cfg.Tunnel, m.logger)
		if err != nil {
			metrics.GatewayReconnects.WithLabelValues("failure").Inc()
			return fmt.Errorf("open ssh tunnel: %w", err)
		}
		m.tunnel = tunnel
		host = "127.0.0.1"
		port = 0 // LocalAddr carries the ephemeral port below
	}

	dsn := m.buildDSN(host, port)
	db, err := database.Open(m.cfg.Driver, dsn, m.cfg.MaxOpenConns, m.cfg.MaxIdleConns, 30*time.Minute, m.logger)
	if err != nil {
		metrics.GatewayReconnects.WithLabelValues("failure").Inc()
		return fmt.Errorf("connect to mls backend: %w", err)
	}

	m.db = db
	m.healthy.Store(true)
	metrics.GatewayConnected.Set(1)
	metrics.GatewayReconnects.WithLabelValues("success").Inc()
	return nil
}

func (m *MLS) buildDSN(host string, port int) string {
	if m.cfg.Tunnel.Enabled {
		return fmt.Sprintf("sqlserver://%s:%s@%s?database=%s",
			m.cfg.User, m.cfg.Password, m.tunnel.LocalAddr(), m.cfg.Database)
	}
	return fmt.Sprintf("sqlserver://%s:%s@%s:%d?database=%s",
		m.cfg.User, m.cfg.Password, host, port, m.cfg.Database)
}

func (m *MLS) Stop(ctx context.Context) error {
	if m.db != nil {
		_ = m.db.Close()
	}
	if m.tunnel != nil {
		return m.tunnel.Close()
	}
	return nil
}

// DB returns the connection opened by the last successful connect. It does
// not check health and does not reconnect: a query against a dropped
// connection fails with the driver's error, which the resource driver
// surfaces as a BackendError.
func (m *MLS) DB() database.DB {
	return m.db
}

// Healthy reports whether the last connect/ping succeeded.
func (m *MLS) Healthy() bool {
	return m.healthy.Load()
}

// Reconnect retries connect with the configured wait between attempts,
// marking the gateway unhealthy until it succeeds or ctx is done. Nothing
// in this module calls it automatically; connections returned by DB() are
// not replaced unless it is invoked.
func (m *MLS) Reconnect(ctx context.Context) error {
	m.healthy.Store(false)
	metrics.GatewayConnected.Set(0)

	for {
		if err := ctx.Err(); err != nil {
			return err
		}
		if err := m.connect(ctx); err == nil {
			return nil
		}
		m.logger.Warnf("mls gateway reconnect failed, retrying in %s", m.cfg.ReconnectWait)
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(m.cfg.ReconnectWait):
		}
	}
}
