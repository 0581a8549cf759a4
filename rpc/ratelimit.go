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

	"github.com/r5-labs/r5-rpc-gateway/metrics"
	"github.com/r5-labs/r5-rpc-gateway/ratelimit"
)

// RateLimited decorates handler with a per-IP, per-method check against
// store, per spec.md §4.5: a handler call only proceeds past a failed
// check when the store itself errors (fail-open). eth_subscribe and
// eth_unsubscribe are never wrapped with this — they are served directly
// by the SubscriptionService and never reach the registry, which is what
// gives them their rate-limit exemption (spec.md §4.6).
func RateLimited(operationName string, handler func([]any) (any, error), store ratelimit.Store, limit int) func([]any) (any, error) {
	return func(args []any) (any, error) {
		ip := requestIP(args)
		limited, err := store.IncrementAndCheck(context.Background(), ip, operationName, limit)
		if err != nil {
			// Fail-open: the store already recorded the failure metric.
			return handler(args)
		}
		if limited {
			metrics.RateLimitRejections.WithLabelValues(operationName).Inc()
			return nil, RateLimitExceeded(operationName)
		}
		return handler(args)
	}
}

func requestIP(args []any) string {
	for _, a := range args {
		if rd, ok := a.(RequestDetails); ok {
			return rd.IPAddress
		}
	}
	return ""
}
