// Copyright 2025 R5 Labs
// This file is part of the R5 Core library.
//
// This software is provided "as is", without warranty of any kind,
// express or implied, including but not limited to the warranties
// of merchantability, fitness for a particular purpose and
// noninfringement. In no event shall the authors or copyright
// holders be liable for any claim, damages, or other liability,
// whether in an action of contract, tort or otherwise, arising
// from, out of or in connection with the software or the use or
// other dealings in the software.

package ratelimit

import (
	"context"
	"sync"
	"time"

	lru "github.com/hashicorp/golang-lru/v2"
)

// methodCounter tracks one method's usage within the current window for one
// IP.
type methodCounter struct {
	remaining int
	total     int
}

// ipWindow is one IP's rate-limit state: the window's expiry and its
// per-method counters, reset in bulk when the window rolls over.
type ipWindow struct {
	resetAt time.Time
	methods map[string]*methodCounter
}

// LRUStore is the single-instance rate-limit backend, per spec.md §4.5.1: a
// bounded LRU of per-IP windows, each holding per-method remaining/total
// counters that reset wholesale once the window has elapsed.
type LRUStore struct {
	mu     sync.Mutex
	cache  *lru.Cache[string, *ipWindow]
	window time.Duration
}

// NewLRUStore builds an LRUStore holding up to maxIPs concurrent IP windows,
// each window lasting windowDuration.
func NewLRUStore(maxIPs int, windowDuration time.Duration) (*LRUStore, error) {
	c, err := lru.New[string, *ipWindow](maxIPs)
	if err != nil {
		return nil, err
	}
	return &LRUStore{cache: c, window: windowDuration}, nil
}

// IncrementAndCheck implements Store.
func (s *LRUStore) IncrementAndCheck(_ context.Context, ip, method string, limit int) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := time.Now()
	win, ok := s.cache.Get(ip)
	if !ok || now.After(win.resetAt) {
		win = &ipWindow{resetAt: now.Add(s.window), methods: make(map[string]*methodCounter)}
		s.cache.Add(ip, win)
	}

	mc, ok := win.methods[method]
	if !ok {
		mc = &methodCounter{remaining: limit, total: limit}
		win.methods[method] = mc
	}
	if mc.total != limit {
		// The configured limit changed since this window started; adopt
		// it immediately rather than waiting for the next window.
		mc.remaining += limit - mc.total
		mc.total = limit
	}

	if mc.remaining <= 0 {
		return true, nil
	}
	mc.remaining--
	return false, nil
}
