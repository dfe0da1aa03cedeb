package app

import (
	"sync"

	"health-checkin-service/internal/domain"
)

// Registry tracks live client subscriptions for score notifications. It is
// created at service start, injected where needed, and torn down at
// shutdown; there is no ambient global connection map.
type Registry struct {
	mu     sync.Mutex
	subs   map[string]map[chan domain.ScoreResult]struct{}
	closed bool
}

func NewRegistry() *Registry {
	return &Registry{subs: make(map[string]map[chan domain.ScoreResult]struct{})}
}

// Subscribe returns a channel receiving the user's submission results. The
// caller must invoke the returned cancel function to avoid leaks.
func (r *Registry) Subscribe(userID string) (<-chan domain.ScoreResult, func()) {
	ch := make(chan domain.ScoreResult, 4)

	r.mu.Lock()
	if r.closed {
		r.mu.Unlock()
		close(ch)
		return ch, func() {}
	}
	if r.subs[userID] == nil {
		r.subs[userID] = make(map[chan domain.ScoreResult]struct{})
	}
	r.subs[userID][ch] = struct{}{}
	r.mu.Unlock()

	cancel := func() {
		r.mu.Lock()
		defer r.mu.Unlock()
		if set, ok := r.subs[userID]; ok {
			if _, ok := set[ch]; ok {
				delete(set, ch)
				close(ch)
			}
			if len(set) == 0 {
				delete(r.subs, userID)
			}
		}
	}
	return ch, cancel
}

// Publish delivers a result to every open subscription for the user,
// dropping the oldest pending update for slow consumers rather than
// blocking the submit path.
func (r *Registry) Publish(userID string, result domain.ScoreResult) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.closed {
		return
	}
	for ch := range r.subs[userID] {
		select {
		case ch <- result:
		default:
			select {
			case <-ch:
			default:
			}
			ch <- result
		}
	}
}

// Close tears down the registry and closes all subscriptions.
func (r *Registry) Close() {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.closed {
		return
	}
	r.closed = true
	for _, set := range r.subs {
		for ch := range set {
			close(ch)
		}
	}
	r.subs = make(map[string]map[chan domain.ScoreResult]struct{})
}
