package utils

import (
	"errors"
	"sync"
	"time"
)

// ErrNoKeysAvailable is returned when every key in the pool is cooling down.
var ErrNoKeysAvailable = errors.New("no available API keys")

// APIKeyPool hands out API keys round-robin and sidelines keys that hit
// quota or auth failures for a cooldown period.
type APIKeyPool struct {
	keys     []string
	cursor   int
	cooldown map[string]time.Time
	mu       sync.Mutex
}

// NewAPIKeyPool creates a pool from a non-empty key list
func NewAPIKeyPool(keys []string) *APIKeyPool {
	if len(keys) == 0 {
		return nil
	}
	return &APIKeyPool{
		keys:     keys,
		cooldown: make(map[string]time.Time),
	}
}

// Next returns the next key that is not cooling down
func (p *APIKeyPool) Next() (string, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	now := time.Now()
	for i := 0; i < len(p.keys); i++ {
		key := p.keys[p.cursor%len(p.keys)]
		p.cursor++

		if until, sidelined := p.cooldown[key]; sidelined {
			if now.Before(until) {
				continue
			}
			delete(p.cooldown, key)
		}
		return key, nil
	}
	return "", ErrNoKeysAvailable
}

// MarkFailed sidelines a key until the cooldown elapses
func (p *APIKeyPool) MarkFailed(key string, cooldown time.Duration) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.cooldown[key] = time.Now().Add(cooldown)
}

// Size returns the total number of keys in the pool
func (p *APIKeyPool) Size() int {
	return len(p.keys)
}

// Available returns how many keys are currently usable
func (p *APIKeyPool) Available() int {
	p.mu.Lock()
	defer p.mu.Unlock()

	now := time.Now()
	n := 0
	for _, key := range p.keys {
		if until, sidelined := p.cooldown[key]; sidelined && now.Before(until) {
			continue
		}
		n++
	}
	return n
}
