package leveling

import (
	"sync"
	"time"
)

// Cooldowns remembers when each member last earned XP
type Cooldowns struct {
	window time.Duration
	now    func() time.Time

	mu   sync.Mutex
	last map[string]time.Time
}

// NewCooldowns creates a registry with the given window
func NewCooldowns(window time.Duration) *Cooldowns {
	return &Cooldowns{
		window: window,
		now:    time.Now,
		last:   make(map[string]time.Time),
	}
}

// Allow reports whether the member may earn XP now and, if so, starts a new window
func (c *Cooldowns) Allow(guildID, userID string) bool {
	key := guildID + ":" + userID
	now := c.now()

	c.mu.Lock()
	defer c.mu.Unlock()
	if t, ok := c.last[key]; ok && now.Sub(t) < c.window {
		return false
	}
	c.last[key] = now
	return true
}

// Prune drops expired entries and returns how many were removed
func (c *Cooldowns) Prune() int {
	now := c.now()

	c.mu.Lock()
	defer c.mu.Unlock()
	removed := 0
	for key, t := range c.last {
		if now.Sub(t) >= c.window {
			delete(c.last, key)
			removed++
		}
	}
	return removed
}

// Len returns the number of tracked members
func (c *Cooldowns) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.last)
}
