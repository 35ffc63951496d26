package ports

import (
	"context"
	"time"
)

// HealthProbe checks that a deployed application answers its health endpoint.
//
// Check performs a single request: success is a 2xx response with no
// redirect. Wait polls Check at the given interval until it succeeds or ctx
// expires; the bounded wait is the caller's responsibility via the context.
//
//go:generate mockgen -source=probe.go -destination=mocks/mock_probe.go -package=mocks
type HealthProbe interface {
	Check(ctx context.Context, url string) error
	Wait(ctx context.Context, url string, interval time.Duration) error
}
