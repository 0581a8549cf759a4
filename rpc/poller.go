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

package rpc

import (
	"sync"
	"time"

	"github.com/r5-labs/r5-rpc-gateway/log"
)

// Poller is the process-wide singleton driving periodic evaluation of every
// active event tag, per spec.md §4.6. It starts automatically on the first
// Add and stops when the last tag is removed.
type Poller struct {
	mu        sync.Mutex
	callbacks map[string]func()
	inFlight  map[string]bool
	interval  time.Duration
	ticker    *time.Ticker
	stop      chan struct{}
	running   bool
}

// NewPoller builds a Poller that, once started, ticks every interval.
func NewPoller(interval time.Duration) *Poller {
	return &Poller{
		callbacks: make(map[string]func()),
		inFlight:  make(map[string]bool),
		interval:  interval,
	}
}

// Add registers fn as the notification callback for tag and starts the
// poller's loop if this is the first active tag.
func (p *Poller) Add(tag string, fn func()) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.callbacks[tag] = fn
	if !p.running {
		p.running = true
		p.stop = make(chan struct{})
		p.ticker = time.NewTicker(p.interval)
		go p.loop(p.ticker, p.stop)
	}
}

// Remove drops tag's callback and stops the loop once no tags remain.
func (p *Poller) Remove(tag string) {
	p.mu.Lock()
	defer p.mu.Unlock()
	delete(p.callbacks, tag)
	delete(p.inFlight, tag)
	if len(p.callbacks) == 0 && p.running {
		p.running = false
		p.ticker.Stop()
		close(p.stop)
	}
}

func (p *Poller) loop(ticker *time.Ticker, stop chan struct{}) {
	for {
		select {
		case <-stop:
			return
		case <-ticker.C:
			p.tick()
		}
	}
}

// tick invokes every tag's callback that isn't still running from a prior
// tick, each in its own goroutine so slow tags never block others — the
// "callbacks may execute concurrently across tags, but never reenter the
// same tag" contract from spec.md §5.
func (p *Poller) tick() {
	p.mu.Lock()
	due := make(map[string]func(), len(p.callbacks))
	for tag, fn := range p.callbacks {
		if p.inFlight[tag] {
			continue
		}
		p.inFlight[tag] = true
		due[tag] = fn
	}
	p.mu.Unlock()

	for tag, fn := range due {
		go func(tag string, fn func()) {
			defer func() {
				if r := recover(); r != nil {
					log.Error("poller callback panicked", "tag", tag, "panic", r)
				}
				p.mu.Lock()
				delete(p.inFlight, tag)
				p.mu.Unlock()
			}()
			fn()
		}(tag, fn)
	}
}
