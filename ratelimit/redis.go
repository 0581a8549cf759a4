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
	"fmt"
	"math"
	"net"
	"sync/atomic"
	"time"

	"github.com/r5-labs/r5-rpc-gateway/log"
	"github.com/r5-labs/r5-rpc-gateway/metrics"
	"github.com/redis/go-redis/v9"
)

// incrementScript atomically increments the window counter for a key and
// sets its expiry the first time it is created, so concurrent gateway
// instances never race between INCR and EXPIRE.
var incrementScript = redis.NewScript(`
local current = redis.call("INCR", KEYS[1])
if current == 1 then
	redis.call("PEXPIRE", KEYS[1], ARGV[1])
end
return current
`)

// RedisStore is the distributed rate-limit backend, per spec.md §4.5.2: one
// Redis key per (ip, method) pair, incremented atomically via a Lua script
// so that the increment and the window's time-to-live are set together.
//
// Every method is fail-open: a Redis error is logged and counted in
// metrics.RateLimitFailures, and the call is reported as "not limited"
// rather than rejecting a request because the store itself is unhealthy.
type RedisStore struct {
	client *redis.Client
	window time.Duration
}

// NewRedisStore builds a client for addr (the client dials lazily, on first
// use) and wires a reconnect lifecycle: a dial that follows a failed dial is
// delayed by an exponential backoff, and OnConnect logs and resets the
// failure counter once a connection actually succeeds, the same way the
// teacher logs lifecycle transitions on its own long-lived clients.
func NewRedisStore(addr, password string, db int, windowDuration time.Duration) *RedisStore {
	var attempt atomic.Int64
	dialer := &net.Dialer{Timeout: 5 * time.Second}

	client := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
		Dialer: func(ctx context.Context, network, addr string) (net.Conn, error) {
			n := attempt.Load()
			if n > 0 {
				select {
				case <-time.After(backoff(int(n - 1))):
				case <-ctx.Done():
					return nil, ctx.Err()
				}
			}
			conn, err := dialer.DialContext(ctx, network, addr)
			if err != nil {
				attempt.Add(1)
				return nil, err
			}
			return conn, nil
		},
		OnConnect: func(ctx context.Context, cn *redis.Conn) error {
			if n := attempt.Swap(0); n > 0 {
				log.Info("rate-limit store reconnected", "addr", addr, "attempts", n)
			}
			return nil
		},
	})
	return &RedisStore{client: client, window: windowDuration}
}

// IncrementAndCheck implements Store.
func (s *RedisStore) IncrementAndCheck(ctx context.Context, ip, method string, limit int) (bool, error) {
	key := fmt.Sprintf("ratelimit:%s:%s", ip, method)
	windowMillis := s.window.Milliseconds()

	count, err := incrementScript.Run(ctx, s.client, []string{key}, windowMillis).Int64()
	if err != nil {
		metrics.RateLimitFailures.WithLabelValues("redis").Inc()
		log.Warn("rate-limit store failure, failing open", "error", err, "ip", ip, "method", method)
		return false, err
	}
	return count > int64(limit), nil
}

// Close releases the underlying connection pool.
func (s *RedisStore) Close() error { return s.client.Close() }

// backoff returns the delay before reconnect attempt n (0-indexed),
// doubling from 250ms and capping at 30s.
func backoff(n int) time.Duration {
	d := time.Duration(250*math.Pow(2, float64(n))) * time.Millisecond
	if d > 30*time.Second {
		return 30 * time.Second
	}
	return d
}
