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
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestLRUStoreAllowsUpToLimitThenDenies(t *testing.T) {
	store, err := NewLRUStore(100, time.Minute)
	require.NoError(t, err)
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		limited, err := store.IncrementAndCheck(ctx, "1.2.3.4", "eth_call", 3)
		require.NoError(t, err)
		require.False(t, limited, "call %d should be within the limit", i+1)
	}

	limited, err := store.IncrementAndCheck(ctx, "1.2.3.4", "eth_call", 3)
	require.NoError(t, err)
	require.True(t, limited, "the (limit+1)-th call must be denied")
}

func TestLRUStoreResetsAfterWindowElapses(t *testing.T) {
	store, err := NewLRUStore(100, 10*time.Millisecond)
	require.NoError(t, err)
	ctx := context.Background()

	limited, err := store.IncrementAndCheck(ctx, "1.2.3.4", "eth_call", 1)
	require.NoError(t, err)
	require.False(t, limited)

	limited, err = store.IncrementAndCheck(ctx, "1.2.3.4", "eth_call", 1)
	require.NoError(t, err)
	require.True(t, limited)

	time.Sleep(20 * time.Millisecond)

	limited, err = store.IncrementAndCheck(ctx, "1.2.3.4", "eth_call", 1)
	require.NoError(t, err)
	require.False(t, limited, "a new window must reset the counter")
}

func TestLRUStoreTracksIPsIndependently(t *testing.T) {
	store, err := NewLRUStore(100, time.Minute)
	require.NoError(t, err)
	ctx := context.Background()

	limited, _ := store.IncrementAndCheck(ctx, "1.1.1.1", "eth_call", 1)
	require.False(t, limited)
	limited, _ = store.IncrementAndCheck(ctx, "1.1.1.1", "eth_call", 1)
	require.True(t, limited, "1.1.1.1 is now at its limit")

	limited, _ = store.IncrementAndCheck(ctx, "2.2.2.2", "eth_call", 1)
	require.False(t, limited, "a different IP has its own independent counter")
}

func TestLRUStoreTracksMethodsIndependently(t *testing.T) {
	store, err := NewLRUStore(100, time.Minute)
	require.NoError(t, err)
	ctx := context.Background()

	limited, _ := store.IncrementAndCheck(ctx, "1.1.1.1", "eth_call", 1)
	require.False(t, limited)
	limited, _ = store.IncrementAndCheck(ctx, "1.1.1.1", "eth_getBalance", 1)
	require.False(t, limited, "a different method has its own independent counter within the same window")
}

func TestLRUStoreAdoptsChangedLimitMidWindow(t *testing.T) {
	store, err := NewLRUStore(100, time.Minute)
	require.NoError(t, err)
	ctx := context.Background()

	limited, _ := store.IncrementAndCheck(ctx, "1.1.1.1", "eth_call", 1)
	require.False(t, limited)
	limited, _ = store.IncrementAndCheck(ctx, "1.1.1.1", "eth_call", 1)
	require.True(t, limited)

	// the configured limit rises mid-window; the store must adopt it
	// immediately rather than waiting for the next window.
	limited, _ = store.IncrementAndCheck(ctx, "1.1.1.1", "eth_call", 3)
	require.False(t, limited)
}
