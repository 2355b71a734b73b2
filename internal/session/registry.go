// Package session holds the short-lived correlation between a browser
// session and the wearable aggregator's user identifier. Entries live in
// memory only; losing them on restart just means the user reconnects.
package session

import (
	"context"
	"sync"
	"time"

	"github.com/mlm20/terra-health-archetypes/internal"
)

// Store is the registry contract the HTTP layer depends on.
type Store interface {
	Initialize(sessionID string)
	Store(sessionID, providerUserID string)
	Get(sessionID string) (string, bool)
	Delete(sessionID string)
}

type Registry struct {
	mu      sync.RWMutex
	entries map[string]*internal.Session
	maxAge  time.Duration
	logger  internal.Logger

	now func() time.Time // overridable in tests
}

func NewRegistry(maxAge time.Duration, logger internal.Logger) *Registry {
	return &Registry{
		entries: make(map[string]*internal.Session),
		maxAge:  maxAge,
		logger:  logger,
		now:     time.Now,
	}
}

// Initialize creates an entry with no provider-user association. Idempotent:
// an existing entry keeps its creation time.
func (r *Registry) Initialize(sessionID string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.entries[sessionID]; ok {
		return
	}
	r.entries[sessionID] = &internal.Session{
		SessionID: sessionID,
		CreatedAt: r.now(),
	}
	r.logger.Infof("session registry: initialized session %s", sessionID)
}

// Store upserts the provider-user association and refreshes the timestamp.
// A differing existing association is overwritten last-write-wins; the
// authoritative source for re-auth events is the provider's webhook channel,
// which this flow does not model.
func (r *Registry) Store(sessionID, providerUserID string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	entry, ok := r.entries[sessionID]
	if !ok {
		entry = &internal.Session{SessionID: sessionID}
		r.entries[sessionID] = entry
	}
	if entry.ProviderUserID != "" && entry.ProviderUserID != providerUserID {
		r.logger.Warnf("session registry: session %s had provider user %s, overwriting with %s",
			sessionID, entry.ProviderUserID, providerUserID)
	}
	entry.ProviderUserID = providerUserID
	entry.CreatedAt = r.now()
}

// Get returns the stored provider-user id. The second return is false when
// the session does not exist or has exceeded the maximum age, in which case
// the expired entry is evicted on the spot. A live entry that has not been
// associated yet returns ("", true). Every hit refreshes the timestamp.
func (r *Registry) Get(sessionID string) (string, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	entry, ok := r.entries[sessionID]
	if !ok {
		return "", false
	}
	if r.now().Sub(entry.CreatedAt) > r.maxAge {
		delete(r.entries, sessionID)
		r.logger.Infof("session registry: evicted expired session %s", sessionID)
		return "", false
	}
	entry.CreatedAt = r.now()
	return entry.ProviderUserID, true
}

// Delete removes the entry; missing sessions are a no-op.
func (r *Registry) Delete(sessionID string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.entries[sessionID]; ok {
		delete(r.entries, sessionID)
		r.logger.Infof("session registry: cleared session %s", sessionID)
	}
}

func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.entries)
}

// Sweep runs periodic eviction until the context is cancelled. Get already
// evicts lazily; the sweeper only bounds memory held by abandoned sessions.
func (r *Registry) Sweep(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	r.logger.Infof("session registry: sweep worker started (interval %v, max age %v)", interval, r.maxAge)
	for {
		select {
		case <-ctx.Done():
			r.logger.Info("session registry: sweep worker stopping")
			return
		case <-ticker.C:
			if evicted := r.evictExpired(); evicted > 0 {
				r.logger.Infof("session registry: sweep evicted %d expired sessions, %d remain", evicted, r.Len())
			}
		}
	}
}

func (r *Registry) evictExpired() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	cutoff := r.now().Add(-r.maxAge)
	evicted := 0
	for id, entry := range r.entries {
		if entry.CreatedAt.Before(cutoff) {
			delete(r.entries, id)
			evicted++
		}
	}
	return evicted
}

var _ Store = (*Registry)(nil)
