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
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestPollerAddStartsAndRemoveStops(t *testing.T) {
	p := NewPoller(time.Hour)
	p.Add("tag-1", func() {})
	require.True(t, p.running)

	p.Remove("tag-1")
	require.False(t, p.running)
}

func TestPollerTickInvokesDueCallback(t *testing.T) {
	p := NewPoller(time.Hour)
	var calls int32
	done := make(chan struct{})
	p.Add("tag-1", func() {
		atomic.AddInt32(&calls, 1)
		close(done)
	})

	p.tick()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("callback did not run")
	}
	require.EqualValues(t, 1, atomic.LoadInt32(&calls))
}

func TestPollerNeverReentersSameTagWhileInFlight(t *testing.T) {
	p := NewPoller(time.Hour)
	release := make(chan struct{})
	started := make(chan struct{})
	var calls int32

	p.Add("tag-1", func() {
		atomic.AddInt32(&calls, 1)
		close(started)
		<-release
	})

	p.tick()
	<-started

	// A second tick while the first invocation is still blocked on release
	// must not invoke the callback again.
	p.tick()
	time.Sleep(20 * time.Millisecond)
	require.EqualValues(t, 1, atomic.LoadInt32(&calls))

	close(release)
}

func TestPollerRecoversPanickingCallback(t *testing.T) {
	p := NewPoller(time.Hour)
	done := make(chan struct{})
	p.Add("tag-1", func() {
		defer close(done)
		panic("boom")
	})

	require.NotPanics(t, func() {
		p.tick()
		<-done
	})

	// the tag must no longer be marked in-flight after the panic unwinds.
	time.Sleep(10 * time.Millisecond)
	p.mu.Lock()
	inFlight := p.inFlight["tag-1"]
	p.mu.Unlock()
	require.False(t, inFlight)
}
