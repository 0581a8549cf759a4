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

// Package ethapi implements the Ethereum-compatible service handlers this
// gateway registers under the eth/net/web3/debug namespaces, each fanning
// out to the backend.Archive/backend.Consensus collaborators.
package ethapi

import (
	"crypto/rand"
	"encoding/hex"
	"time"

	"github.com/hashicorp/golang-lru/v2/expirable"
)

// filter is the gateway's record of one eth_newFilter/eth_newBlockFilter/
// eth_newPendingTransactionFilter registration, adapted from the shape of
// the teacher's filters.Filter (addresses, topics, block, begin/end) but
// holding wire-level strings instead of parsed common.Address/common.Hash,
// since this gateway never touches chain state directly.
type filter struct {
	kind      string // "log", "block", "pendingTx"
	addresses []string
	topics    [][]string
	blockHash string
	fromBlock string
	toBlock   string
	createdAt time.Time
}

// filterManager is an in-process, TTL-bounded registry of active filters,
// keyed by a random hex id. A filter expires from the LRU once the TTL has
// passed since it was installed, whether or not the client polled it in
// between; looking a filter up does not extend its lifetime.
type filterManager struct {
	filters *expirable.LRU[string, *filter]
}

func newFilterManager(maxFilters int, ttl time.Duration) *filterManager {
	return &filterManager{filters: expirable.NewLRU[string, *filter](maxFilters, nil, ttl)}
}

func (m *filterManager) install(f *filter) string {
	id := randomFilterID()
	m.filters.Add(id, f)
	return id
}

func (m *filterManager) get(id string) (*filter, bool) {
	return m.filters.Get(id)
}

func (m *filterManager) uninstall(id string) bool {
	return m.filters.Remove(id)
}

func randomFilterID() string {
	b := make([]byte, 16)
	_, _ = rand.Read(b)
	return "0x" + hex.EncodeToString(b)
}
