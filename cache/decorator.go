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

package cache

import (
	"fmt"
	"time"

	"github.com/hashicorp/golang-lru/v2/expirable"
	"github.com/r5-labs/r5-rpc-gateway/metrics"
)

// Handler is the same calling convention as an rpc.RpcOperation.Handler:
// one slice of positional arguments in, one (result, error) pair out. The
// decorator never needs to import package rpc for this, since the
// convention is structural.
type Handler func(args []any) (any, error)

// FieldSkip names one field of an object-shaped argument and the values
// that, when matched, exempt the call from caching.
type FieldSkip struct {
	Name   string
	Values []string
}

// ParamSkip exempts a call from caching based on one positional argument:
// either because it is missing, or because it matches one of Values
// (compared via fmt's %v rendering), or because one of its object fields
// matches a FieldSkip.
type ParamSkip struct {
	ArgIndex int
	Values   []string
	Fields   []FieldSkip
}

// Options configures a cache. NewStore reads Size and TTL; Wrap reads only
// Skip.
type Options struct {
	// Size bounds the number of distinct fingerprints retained.
	Size int
	// TTL is how long a cached value stays valid.
	TTL time.Duration
	// Skip lists the skip-param rules checked before every write. The rules
	// only gate writes: a value already present is served on a hit whether
	// or not the rules match the current arguments.
	Skip []ParamSkip
}

// Store is the expiring LRU that Wrap reads and writes. Keys begin with the
// operation name, so one Store can back several wrapped operations.
type Store struct {
	lru *expirable.LRU[string, any]
}

// NewStore builds a Store sized and timed per opts.
func NewStore(opts Options) *Store {
	return &Store{lru: expirable.NewLRU[string, any](opts.Size, nil, opts.TTL)}
}

// Wrap decorates handler with Store-backed caching for operationName. A hit
// returns the cached value without invoking handler; a miss invokes handler
// and, absent an error and absent a matching skip rule, writes the result
// before returning it.
func Wrap(operationName string, handler Handler, opts Options, store *Store) Handler {
	return func(args []any) (any, error) {
		key := Fingerprint(operationName, args)

		if v, ok := store.lru.Get(key); ok {
			metrics.CacheHits.WithLabelValues(operationName).Inc()
			return v, nil
		}
		metrics.CacheMisses.WithLabelValues(operationName).Inc()

		value, err := handler(args)
		if err != nil {
			return value, err
		}
		if skip(args, opts.Skip) {
			return value, nil
		}
		store.lru.Add(key, value)
		metrics.CacheWrites.WithLabelValues(operationName).Inc()
		return value, nil
	}
}

func skip(args []any, rules []ParamSkip) bool {
	for _, rule := range rules {
		if rule.ArgIndex >= len(args) {
			return true // missing argument: treat as the exempting case
		}
		arg := args[rule.ArgIndex]
		if matchesAny(renderValue(arg), rule.Values) {
			return true
		}
		obj, ok := arg.(map[string]any)
		if !ok {
			continue
		}
		for _, field := range rule.Fields {
			v, present := obj[field.Name]
			if !present {
				continue
			}
			if matchesAny(renderValue(v), field.Values) {
				return true
			}
		}
	}
	return false
}

func renderValue(v any) string {
	if _, ok := v.(map[string]any); ok {
		return fingerprintValue(v)
	}
	return fmt.Sprintf("%v", v)
}

func matchesAny(s string, values []string) bool {
	for _, v := range values {
		if s == v {
			return true
		}
	}
	return false
}
