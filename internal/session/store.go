// Package session keeps wizard sequencer state between HTTP requests.
package session

import (
	"context"
	"errors"
	"time"

	"github.com/spec-kit/onboarding-service/internal/domain"
)

// ErrNotFound is returned for an unknown or expired session.
var ErrNotFound = errors.New("wizard session not found")

// Store saves and loads sequencer state by session id.
type Store interface {
	Save(ctx context.Context, id string, state *domain.WizardState, ttl time.Duration) error
	Load(ctx context.Context, id string) (*domain.WizardState, error)
}
