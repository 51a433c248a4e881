package server

import (
	"context"
	"log/slog"
	"time"
)

const defaultPingTimeout = 2 * time.Second

type HealthChecker interface {
	Healthy(ctx context.Context) bool
}

type OkHealthChecker struct {
}

func NewOkHealthChecker() *OkHealthChecker {
	return &OkHealthChecker{}
}

func (hc *OkHealthChecker) Healthy(ctx context.Context) bool {
	return true
}

// Pinger is satisfied by every storage backend that can probe its connection.
type Pinger interface {
	Ping(ctx context.Context) error
}

// PingHealthChecker reports healthy while the backend answers a ping within the timeout.
type PingHealthChecker struct {
	pinger  Pinger
	timeout time.Duration
}

func NewPingHealthChecker(p Pinger, timeout time.Duration) *PingHealthChecker {
	if timeout <= 0 {
		timeout = defaultPingTimeout
	}
	return &PingHealthChecker{pinger: p, timeout: timeout}
}

func (hc *PingHealthChecker) Healthy(ctx context.Context) bool {
	ctx, cancel := context.WithTimeout(ctx, hc.timeout)
	defer cancel()

	if err := hc.pinger.Ping(ctx); err != nil {
		slog.Warn("Health check ping failed", "error", err)
		return false
	}
	return true
}
