package repository

import (
	"context"
	"time"
)

// CallbackLedger remembers processed payment callbacks for a limited time.
type CallbackLedger interface {
	// Claim records key unless it is already present and reports whether it was recorded.
	Claim(ctx context.Context, key string, ttl time.Duration) (bool, error)
	Release(ctx context.Context, key string) error
}
