// Package audit records moderation done outside the bot (Discord's own UI,
// other bots) by reading the guild audit log shortly after the gateway
// reports a ban, kick or timeout change.
package audit

import (
	"context"
	"sync"
	"time"
)

type pending struct {
	id     uint64
	label  string
	cancel context.CancelFunc
}

// Registry tracks scheduled checks by key. Scheduling a key again replaces
// the previous check, which is cancelled.
type Registry struct {
	mu      sync.Mutex
	pending map[string]pending
	seq     uint64
	wg      sync.WaitGroup
}

// NewRegistry creates an empty registry
func NewRegistry() *Registry {
	return &Registry{pending: make(map[string]pending)}
}

// Key identifies the checks of one member
func Key(guildID, userID string) string {
	return guildID + ":" + userID
}

// Schedule runs fn after delay unless the check is cancelled or replaced first
func (r *Registry) Schedule(parent context.Context, key string, delay time.Duration, fn func(ctx context.Context)) {
	r.ScheduleAs(parent, key, "", delay, fn)
}

// ScheduleAs is Schedule with a label that Label reports while the check is pending
func (r *Registry) ScheduleAs(parent context.Context, key, label string, delay time.Duration, fn func(ctx context.Context)) {
	ctx, cancel := context.WithCancel(parent)

	r.mu.Lock()
	if prev, ok := r.pending[key]; ok {
		prev.cancel()
	}
	r.seq++
	id := r.seq
	r.pending[key] = pending{id: id, label: label, cancel: cancel}
	r.wg.Add(1)
	r.mu.Unlock()

	go func() {
		defer r.wg.Done()
		defer r.finish(key, id)

		timer := time.NewTimer(delay)
		defer timer.Stop()
		select {
		case <-ctx.Done():
			return
		case <-timer.C:
		}
		fn(ctx)
	}()
}

func (r *Registry) finish(key string, id uint64) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if p, ok := r.pending[key]; ok && p.id == id {
		p.cancel()
		delete(r.pending, key)
	}
}

// Label returns the label of the pending check of key
func (r *Registry) Label(key string) (string, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	p, ok := r.pending[key]
	return p.label, ok
}

// Cancel stops the pending check of key. It reports whether one existed.
func (r *Registry) Cancel(key string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	p, ok := r.pending[key]
	if ok {
		p.cancel()
		delete(r.pending, key)
	}
	return ok
}

// CancelAll stops every pending check and returns how many there were
func (r *Registry) CancelAll() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	n := len(r.pending)
	for key, p := range r.pending {
		p.cancel()
		delete(r.pending, key)
	}
	return n
}

// Len returns the number of pending checks
func (r *Registry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.pending)
}

// Wait blocks until every scheduled goroutine has returned
func (r *Registry) Wait() {
	r.wg.Wait()
}
