// Package store implements the two persistence backends behind the
// portfolio façade: the relational database and the legacy flat-file
// document. Backends are ranked in an explicit chain instead of scattering
// fallback logic through call sites.
package store

import (
	"errors"

	"github.com/codexx/academy/backend/internal/views"
	"github.com/codexx/academy/backend/pkg/logger"
)

// ErrNotFound reports that a backend has no record for the username. It is
// a miss, not a failure: the chain moves on to the next backend.
var ErrNotFound = errors.New("portfolio not found")

// Store is one persistence backend for per-workspace portfolio views.
type Store interface {
	Name() string
	Load(username string) (*views.Portfolio, error)
	// Save persists the portfolio-level view. backup asks file-based
	// backends to snapshot the previous document first; relational
	// backends ignore it.
	Save(username string, p *views.Portfolio, backup bool) error
}

// Chain tries each store in priority order. A backend failure is logged
// and recovered by moving down the chain; only a miss in every backend
// surfaces as ErrNotFound.
type Chain struct {
	stores []Store
}

func NewChain(stores ...Store) *Chain {
	return &Chain{stores: stores}
}

// Load returns the first hit walking the chain.
func (c *Chain) Load(username string) (*views.Portfolio, error) {
	for _, s := range c.stores {
		p, err := s.Load(username)
		if err == nil {
			return p, nil
		}
		if !errors.Is(err, ErrNotFound) {
			logger.Warn().Err(err).
				Str("store", s.Name()).
				Str("username", username).
				Msg("store load failed, trying next backend")
		}
	}
	return nil, ErrNotFound
}

// Save writes to the highest-priority backend that accepts the write.
// A failed write is logged and retried against the next backend, so the
// caller only sees an error when every backend refused.
func (c *Chain) Save(username string, p *views.Portfolio, backup bool) error {
	var lastErr error
	for _, s := range c.stores {
		err := s.Save(username, p, backup)
		if err == nil {
			return nil
		}
		lastErr = err
		logger.Error().Err(err).
			Str("store", s.Name()).
			Str("username", username).
			Msg("store save failed, falling back")
	}
	return lastErr
}
