// Package netcheck answers "is the network reachable" by probing a
// well-known endpoint that returns without a body.
package netcheck

import (
	"context"
	"log/slog"
	"net/http"
	"time"
)

type Config struct {
	ProbeURL string
	Timeout  time.Duration
}

type Checker struct {
	httpClient *http.Client
	probeURL   string
	logger     *slog.Logger
}

func New(cfg Config, logger *slog.Logger) *Checker {
	return &Checker{
		httpClient: &http.Client{
			Timeout: cfg.Timeout,
		},
		probeURL: cfg.ProbeURL,
		logger:   logger.With("component", "netcheck"),
	}
}

// Available reports whether the probe endpoint responded at all. Any
// HTTP response counts; only transport failure means unreachable.
func (c *Checker) Available(ctx context.Context) bool {
	req, err := http.NewRequestWithContext(ctx, http.MethodHead, c.probeURL, nil)
	if err != nil {
		c.logger.Error("create probe request failed", "error", err)
		return false
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.logger.Debug("probe failed", "error", err)
		return false
	}
	resp.Body.Close()

	return true
}
