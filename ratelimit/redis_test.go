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

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/r5-labs/r5-rpc-gateway/metrics"
	"github.com/stretchr/testify/require"
)

// unreachableRedisAddr points at a port nothing is listening on; the TCP
// dial fails immediately ("connection refused"), which is what this test
// relies on to exercise the fail-open path without a real Redis instance.
const unreachableRedisAddr = "127.0.0.1:1"

func TestRedisStoreFailsOpenOnConnectionError(t *testing.T) {
	before := testutil.ToFloat64(metrics.RateLimitFailures.WithLabelValues("redis"))

	store := NewRedisStore(unreachableRedisAddr, "", 0, time.Minute)
	defer store.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	limited, err := store.IncrementAndCheck(ctx, "1.2.3.4", "eth_call", 10)
	require.Error(t, err)
	require.False(t, limited, "a store error must fail open, never reject the request")

	after := testutil.ToFloat64(metrics.RateLimitFailures.WithLabelValues("redis"))
	require.Equal(t, before+1, after, "exactly one failure must be recorded per store error")
}

func TestBackoffDoublesAndCaps(t *testing.T) {
	require.Equal(t, 250*time.Millisecond, backoff(0))
	require.Equal(t, 500*time.Millisecond, backoff(1))
	require.Equal(t, time.Second, backoff(2))
	require.Equal(t, 30*time.Second, backoff(20), "backoff must cap at 30s")
}
