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
	"crypto/rand"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/VictoriaMetrics/fastcache"
	"github.com/google/uuid"
	"github.com/r5-labs/r5-rpc-gateway/log"
	"github.com/r5-labs/r5-rpc-gateway/metrics"
)

// EventSource performs the backend query backing one subscribable event
// (e.g. "newHeads", "logs", "newPendingTransactions") and returns the
// payload to fan out. It is invoked by the Poller on its own goroutine.
type EventSource func(filters map[string]any) (any, error)

type subscription struct {
	id      string
	tag     string
	connID  string
	event   string
	filters map[string]any
	out     chan<- any
}

// Hub is the process-wide subscription registry + poller + dedup cache, per
// spec.md §4.6. It is created once at startup and shared by every
// WebSocket connection.
type Hub struct {
	mu              sync.Mutex
	byTag           map[string][]*subscription
	byID            map[string]*subscription
	sources         map[string]EventSource
	poller          *Poller
	dedup           *fastcache.Cache
	sameSubPerEvent bool
}

// NewHub builds a Hub whose poller ticks every interval and whose
// duplicate-suppression cache is bounded to dedupBytes.
func NewHub(interval time.Duration, dedupBytes int, sameSubPerEvent bool) *Hub {
	return &Hub{
		byTag:           make(map[string][]*subscription),
		byID:            make(map[string]*subscription),
		sources:         make(map[string]EventSource),
		poller:          NewPoller(interval),
		dedup:           fastcache.New(dedupBytes),
		sameSubPerEvent: sameSubPerEvent,
	}
}

// subscriptionHub is the default process-wide Hub. Service handlers call
// RegisterEventSource against it during startup.
var subscriptionHub = NewHub(4*time.Second, 4*1024*1024, true)

// RegisterEventSource attaches the backend query for a subscribable event
// name to the default Hub.
func RegisterEventSource(event string, source EventSource) {
	subscriptionHub.mu.Lock()
	defer subscriptionHub.mu.Unlock()
	subscriptionHub.sources[event] = source
}

func eventTag(event string, filters map[string]any) string {
	b, _ := json.Marshal(struct {
		Event   string         `json:"event"`
		Filters map[string]any `json:"filters,omitempty"`
	}{event, filters})
	return string(b)
}

func randomSubscriptionID() string {
	b := make([]byte, 16)
	_, _ = rand.Read(b)
	return hex.EncodeToString(b)
}

// subscribe registers a new subscription for connID on event/filters,
// reusing an existing one for the same connection+tag when the hub's
// same-sub-per-event policy is enabled.
func (h *Hub) subscribe(connID string, out chan<- any, event string, filters map[string]any) (string, error) {
	h.mu.Lock()
	defer h.mu.Unlock()

	source, ok := h.sources[event]
	if !ok {
		return "", fmt.Errorf("unknown subscription event %q", event)
	}

	tag := eventTag(event, filters)
	if h.sameSubPerEvent {
		for _, sub := range h.byTag[tag] {
			if sub.connID == connID {
				return sub.id, nil
			}
		}
	}

	sub := &subscription{id: randomSubscriptionID(), tag: tag, connID: connID, event: event, filters: filters, out: out}
	h.byID[sub.id] = sub
	firstOnTag := len(h.byTag[tag]) == 0
	h.byTag[tag] = append(h.byTag[tag], sub)
	metrics.WSSubscriptions.Inc()

	if firstOnTag {
		h.poller.Add(tag, func() { h.poll(tag, event, filters, source) })
	}
	return sub.id, nil
}

// unsubscribe removes the subscription(s) for connID: a single id, or every
// subscription belonging to connID when id is empty. It reports how many
// were removed.
func (h *Hub) unsubscribe(connID, id string) int {
	h.mu.Lock()
	defer h.mu.Unlock()

	removed := 0
	for subID, sub := range h.byID {
		if sub.connID != connID {
			continue
		}
		if id != "" && subID != id {
			continue
		}
		h.removeLocked(sub)
		removed++
	}
	return removed
}

func (h *Hub) removeLocked(sub *subscription) {
	delete(h.byID, sub.id)
	list := h.byTag[sub.tag]
	for i, s := range list {
		if s.id == sub.id {
			list = append(list[:i], list[i+1:]...)
			break
		}
	}
	if len(list) == 0 {
		delete(h.byTag, sub.tag)
		h.poller.Remove(sub.tag)
	} else {
		h.byTag[sub.tag] = list
	}
	metrics.WSSubscriptions.Dec()
}

func (h *Hub) poll(tag, event string, filters map[string]any, source EventSource) {
	result, err := source(filters)
	if err != nil {
		log.Debug("subscription event source failed", "event", event, "error", err)
		return
	}
	h.notify(tag, result)
}

// notify fans result out to every subscriber of tag, suppressing frames
// whose content hash (over the result and the recipient subscription id)
// has already been sent.
func (h *Hub) notify(tag string, result any) {
	h.mu.Lock()
	recipients := make([]*subscription, len(h.byTag[tag]))
	copy(recipients, h.byTag[tag])
	h.mu.Unlock()

	payload, err := json.Marshal(result)
	if err != nil {
		log.Error("subscription result not serializable", "tag", tag, "error", err)
		return
	}

	for _, sub := range recipients {
		key := append(append([]byte{}, payload...), []byte(sub.id)...)
		if h.dedup.Has(key) {
			metrics.WSDuplicatesSuppressed.Inc()
			continue
		}
		h.dedup.Set(key, []byte{1})
		frame := map[string]any{
			"jsonrpc": "2.0",
			"method":  "eth_subscription",
			"params": map[string]any{
				"subscription": sub.id,
				"result":       result,
			},
		}
		select {
		case sub.out <- frame:
		default:
			log.Warn("dropping subscription notification: connection backlog full", "subscription", sub.id)
		}
	}
}

// SubscriptionService is the per-connection handle into the shared Hub. It
// tracks which subscription ids belong to its connection so that
// Unsubscribe(nil) can remove exactly this connection's subscriptions.
type SubscriptionService struct {
	hub    *Hub
	connID string
	out    chan<- any
}

// NewSubscriptionService builds a SubscriptionService bound to the default
// Hub for one WebSocket connection's lifetime.
func NewSubscriptionService(d *Dispatcher, ip string, out chan<- any) *SubscriptionService {
	return &SubscriptionService{hub: subscriptionHub, connID: uuid.NewString(), out: out}
}

// Subscribe parses [event, filters?] and registers a subscription for this
// connection, returning its id.
func (s *SubscriptionService) Subscribe(params []any, rd RequestDetails) (string, *JSONError) {
	if len(params) == 0 {
		return "", MissingRequiredParameter("eth_subscribe requires an event name")
	}
	event, ok := params[0].(string)
	if !ok {
		return "", InvalidParameter("eth_subscribe event must be a string")
	}
	var filters map[string]any
	if len(params) > 1 {
		filters, ok = params[1].(map[string]any)
		if !ok {
			return "", InvalidParameter("eth_subscribe filters must be an object")
		}
	}
	id, err := s.hub.subscribe(s.connID, s.out, event, filters)
	if err != nil {
		return "", InvalidParameter(err.Error())
	}
	return id, nil
}

// Unsubscribe parses [subscriptionId?] and removes the matching
// subscription(s) for this connection, reporting whether at least one was
// removed.
func (s *SubscriptionService) Unsubscribe(params []any) bool {
	var id string
	if len(params) > 0 {
		if sid, ok := params[0].(string); ok {
			id = sid
		}
	}
	return s.hub.unsubscribe(s.connID, id) > 0
}

// Close removes every subscription belonging to this connection, called
// when the underlying WebSocket connection terminates.
func (s *SubscriptionService) Close() {
	s.hub.unsubscribe(s.connID, "")
}
