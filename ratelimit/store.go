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

// Package ratelimit implements the gateway's pluggable rate-limit stores,
// per spec.md §4.5: an in-process LRU backend for single-instance
// deployments and a distributed Redis backend for multi-instance
// deployments, chosen at startup behind one Store interface.
package ratelimit

import "context"

// Store decides whether one (ip, method) pair has exceeded limit within the
// current window. IncrementAndCheck both records the hit and answers the
// question atomically from the caller's point of view: a single call either
// admits the request (and counts it) or reports it limited.
type Store interface {
	// IncrementAndCheck increments the counter for (ip, method) and
	// reports whether the pair is now over limit for the current window.
	// A non-nil error means the store itself failed; per spec.md §4.5's
	// fail-open rule, callers must treat a store error as "not limited".
	IncrementAndCheck(ctx context.Context, ip, method string, limit int) (limited bool, err error)
}

// Limits maps a method name to its per-window request ceiling. No code in
// this repository reads a Limits value; cmd/gateway applies the configured
// default limit to every method it rate-limits.
type Limits map[string]int
