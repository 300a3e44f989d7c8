package geolookup

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
)

// ErrNotReady is returned while the service has no index.
var ErrNotReady = errors.New("index not ready")

// Service owns the index lifecycle: it is unready until Initialize succeeds,
// after which the index is shared read-only by every lookup.
type Service struct {
	opts []Option

	initMu sync.Mutex
	index  atomic.Pointer[Index]
}

// NewService returns an unready service; opts are passed to Build.
func NewService(opts ...Option) *Service {
	return &Service{opts: opts}
}

// Initialize performs the full two-pass build. On failure the service stays
// unready and the error is returned. Calling it again after success is a no-op.
func (s *Service) Initialize(ctx context.Context) error {
	s.initMu.Lock()
	defer s.initMu.Unlock()

	if s.index.Load() != nil {
		return nil
	}
	idx, err := Build(ctx, s.opts...)
	if err != nil {
		return fmt.Errorf("initializing index: %w", err)
	}
	s.index.Store(idx)
	return nil
}

// Ready reports whether Initialize has completed successfully.
func (s *Service) Ready() bool {
	return s.index.Load() != nil
}

// Index returns the built index, or ErrNotReady.
func (s *Service) Index() (*Index, error) {
	idx := s.index.Load()
	if idx == nil {
		return nil, ErrNotReady
	}
	return idx, nil
}

// Lookup returns up to DefaultLimit matches. It returns an empty result
// while the service is unready; use Ready to tell the two apart.
func (s *Service) Lookup(query string) []Result {
	return s.LookupN(query, DefaultLimit)
}

// LookupN is Lookup with an explicit limit.
func (s *Service) LookupN(query string, limit int) []Result {
	return s.index.Load().Lookup(query, limit)
}
