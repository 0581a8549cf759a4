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
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/require"
)

type fakeLimitStore struct {
	limited bool
	err     error
	calls   int
}

func (f *fakeLimitStore) IncrementAndCheck(_ context.Context, ip, method string, limit int) (bool, error) {
	f.calls++
	return f.limited, f.err
}

func TestRateLimitedCallsThroughWhenNotLimited(t *testing.T) {
	store := &fakeLimitStore{limited: false}
	calls := 0
	h := RateLimited("eth_call", func(args []any) (any, error) {
		calls++
		return "ok", nil
	}, store, 10)

	v, err := h([]any{NewRequestDetails("r1", "1.2.3.4")})
	require.NoError(t, err)
	require.Equal(t, "ok", v)
	require.Equal(t, 1, calls)
}

func TestRateLimitedRejectsWhenLimited(t *testing.T) {
	store := &fakeLimitStore{limited: true}
	calls := 0
	h := RateLimited("eth_call", func(args []any) (any, error) {
		calls++
		return "ok", nil
	}, store, 10)

	_, err := h([]any{NewRequestDetails("r1", "1.2.3.4")})
	require.Error(t, err)
	jerr, ok := err.(*JSONError)
	require.True(t, ok)
	require.Equal(t, RateLimitExceededCode, jerr.Code)
	require.Equal(t, 0, calls, "a limited call must never invoke the wrapped handler")
}

func TestRateLimitedFailsOpenOnStoreError(t *testing.T) {
	store := &fakeLimitStore{err: errors.New("store unavailable")}
	calls := 0
	h := RateLimited("eth_call", func(args []any) (any, error) {
		calls++
		return "ok", nil
	}, store, 10)

	v, err := h([]any{NewRequestDetails("r1", "1.2.3.4")})
	require.NoError(t, err)
	require.Equal(t, "ok", v)
	require.Equal(t, 1, calls, "a store error must still call through to the handler")
}

func TestRequestIPExtractsFromRequestDetails(t *testing.T) {
	rd := NewRequestDetails("r1", "9.9.9.9")
	require.Equal(t, "9.9.9.9", requestIP([]any{"unrelated", rd}))
	require.Equal(t, "", requestIP([]any{"no rd here"}))
}
