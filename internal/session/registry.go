package session

import (
	"context"
	"sync"
	"time"

	"github.com/jimmynenos/ordering-backend/internal/cart"
	"github.com/jimmynenos/ordering-backend/pkg/logger"
)

// Registry hands out sessions keyed by caller-supplied id, creating them on
// first use. Sessions idle past the TTL are evicted by the reaper; a new
// request with the same id just starts a fresh session.
type Registry struct {
	mu       sync.Mutex
	sessions map[string]*Session

	resolver cart.ItemResolver
	idleTTL  time.Duration
	logg     *logger.Logger
}

func NewRegistry(resolver cart.ItemResolver, idleTTL time.Duration, logg *logger.Logger) *Registry {
	return &Registry{
		sessions: make(map[string]*Session),
		resolver: resolver,
		idleTTL:  idleTTL,
		logg:     logg,
	}
}

// Get returns the session for the id, creating it when absent.
func (r *Registry) Get(id string) *Session {
	r.mu.Lock()
	defer r.mu.Unlock()

	if s, ok := r.sessions[id]; ok {
		return s
	}
	s := New(id, r.resolver)
	r.sessions[id] = s
	return s
}

// Peek returns the session without creating one.
func (r *Registry) Peek(id string) (*Session, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	s, ok := r.sessions[id]
	return s, ok
}

func (r *Registry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.sessions)
}

// Reap evicts sessions idle past the TTL and reports how many went.
func (r *Registry) Reap() int {
	if r.idleTTL <= 0 {
		return 0
	}
	cutoff := time.Now().Add(-r.idleTTL)

	r.mu.Lock()
	var stale []*Session
	for id, s := range r.sessions {
		if s.LastActive().Before(cutoff) {
			stale = append(stale, s)
			delete(r.sessions, id)
		}
	}
	r.mu.Unlock()

	if r.logg != nil {
		for _, s := range stale {
			ctx := r.logg.WithSessionID(context.Background(), s.ID())
			r.logg.Debug(ctx, "session evicted after idle timeout")
		}
	}
	return len(stale)
}

// StartReaper runs Reap on the interval until the context is cancelled.
func (r *Registry) StartReaper(ctx context.Context, interval time.Duration) {
	if interval <= 0 {
		return
	}
	go func() {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				if n := r.Reap(); n > 0 && r.logg != nil {
					r.logg.Info(r.logg.WithField(ctx, "count", n), "reaped idle sessions")
				}
			}
		}
	}()
}
