// Package health implements the post-deploy liveness probe.
package health

import (
	"context"
	"net/http"
	"time"

	"go.trai.ch/shipper/internal/core/domain"
	"go.trai.ch/zerr"
)

// defaultRequestTimeout bounds a single probe request, independent of the
// overall wait deadline carried by the context.
const defaultRequestTimeout = 10 * time.Second

// Probe implements ports.HealthProbe over HTTP. A healthy endpoint answers
// 2xx directly; a redirect is a failure, matching the platform's own checks.
type Probe struct {
	client *http.Client
}

// NewProbe creates a Probe with redirect-following disabled.
func NewProbe() *Probe {
	return &Probe{
		client: &http.Client{
			Timeout: defaultRequestTimeout,
			CheckRedirect: func(_ *http.Request, _ []*http.Request) error {
				return http.ErrUseLastResponse
			},
		},
	}
}

// Check performs a single liveness request against url.
func (p *Probe) Check(ctx context.Context, url string) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return zerr.Wrap(err, domain.ErrHealthCheckFailed.Error())
	}

	resp, err := p.client.Do(req)
	if err != nil {
		return zerr.With(zerr.Wrap(err, domain.ErrHealthCheckFailed.Error()), "url", url)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		err := zerr.With(domain.ErrHealthCheckFailed, "url", url)
		return zerr.With(err, "status", resp.StatusCode)
	}

	return nil
}

// Wait polls Check until it succeeds or ctx expires. The caller bounds the
// wait via the context deadline.
func (p *Probe) Wait(ctx context.Context, url string, interval time.Duration) error {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	var lastErr error
	for {
		if lastErr = p.Check(ctx, url); lastErr == nil {
			return nil
		}

		select {
		case <-ctx.Done():
			timeout := zerr.With(
				zerr.Wrap(lastErr, domain.ErrHealthCheckFailed.Error()),
				"url", url,
			)
			return zerr.With(timeout, "reason", "wait deadline exceeded")
		case <-ticker.C:
		}
	}
}
