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

// Package cache implements the read-path cache decorator described in
// spec.md §4.4: a wrapper placed around an operation's handler, keyed on a
// deterministic fingerprint of its arguments, backed by an expiring LRU.
package cache

import (
	"fmt"
	"sort"
	"strings"

	"github.com/r5-labs/r5-rpc-gateway/rpc"
)

// Fingerprint builds the cache key for one invocation: the operation name
// followed by every positional argument, in order, with the trailing
// RequestDetails value excluded (it is request-scoped, never part of the
// cacheable identity). Object-shaped arguments are flattened one level deep
// into sorted "_key_value" pairs so that two equivalent objects with
// differently-ordered keys collide on the same key, per spec.md §4.4's
// "one level of object flattening" rule.
func Fingerprint(operationName string, args []any) string {
	var b strings.Builder
	b.WriteString(operationName)
	for _, arg := range args {
		if _, ok := arg.(rpc.RequestDetails); ok {
			continue
		}
		b.WriteString(fingerprintValue(arg))
	}
	return b.String()
}

func fingerprintValue(v any) string {
	obj, ok := v.(map[string]any)
	if !ok {
		return fmt.Sprintf("_%v", v)
	}
	keys := make([]string, 0, len(obj))
	for k := range obj {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	var b strings.Builder
	for _, k := range keys {
		fmt.Fprintf(&b, "_%s_%v", k, obj[k])
	}
	return b.String()
}
