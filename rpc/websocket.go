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
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"os"
	"strings"
	"time"

	mapset "github.com/deckarep/golang-set/v2"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/r5-labs/r5-rpc-gateway/log"
	"github.com/r5-labs/r5-rpc-gateway/metrics"
)

const (
	wsReadBuffer       = 1024
	wsWriteBuffer      = 1024
	wsPingInterval     = 30 * time.Second
	wsPingWriteTimeout = 5 * time.Second
	wsPongTimeout      = 30 * time.Second
	wsMessageSizeLimit = 32 * 1024 * 1024
)

// WebsocketHandler upgrades HTTP connections to WebSocket and serves
// JSON-RPC (including eth_subscribe/eth_unsubscribe) over the resulting
// connection, bound by limiter's global/per-IP ceilings. Adapted from the
// teacher's own WebsocketHandler/wsHandshakeValidator pair.
func (s *Server) WebsocketHandler(allowedOrigins []string, limiter *ConnLimiter) http.Handler {
	upgrader := websocket.Upgrader{
		ReadBufferSize:  wsReadBuffer,
		WriteBufferSize: wsWriteBuffer,
		CheckOrigin:     wsHandshakeValidator(allowedOrigins),
	}
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ip := clientIP(r)
		if !limiter.Admit(ip) {
			http.Error(w, "too many connections", http.StatusServiceUnavailable)
			return
		}
		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			log.Debug("WebSocket upgrade failed", "err", err)
			limiter.Release(ip)
			return
		}
		metrics.WSConnections.Inc()
		defer func() {
			metrics.WSConnections.Dec()
			limiter.Release(ip)
		}()

		conn.SetReadLimit(wsMessageSizeLimit)
		serveWSConnection(s.dispatcher, conn, ip)
	})
}

// serveWSConnection runs one connection's lifetime: a read loop dispatching
// incoming requests (including subscribe/unsubscribe), a ping loop, and a
// per-connection SubscriptionService feeding notification frames back out.
func serveWSConnection(d *Dispatcher, conn *websocket.Conn, ip string) {
	out := make(chan any, 64)
	subs := NewSubscriptionService(d, ip, out)
	defer subs.Close()

	done := make(chan struct{})
	go writePump(conn, out, done)

	conn.SetPongHandler(func(string) error {
		return conn.SetReadDeadline(time.Now().Add(wsPongTimeout))
	})
	_ = conn.SetReadDeadline(time.Now().Add(wsPongTimeout))

	for {
		_, message, err := conn.ReadMessage()
		if err != nil {
			close(done)
			return
		}
		go handleWSMessage(d, subs, message, ip, out)
	}
}

func handleWSMessage(d *Dispatcher, subs *SubscriptionService, message []byte, ip string, out chan<- any) {
	var req wireRequest
	if err := json.Unmarshal(message, &req); err != nil {
		out <- wireResponse{JSONRPC: "2.0", Error: newError(ParseErrorCode, "parse error")}
		return
	}

	rd := NewRequestDetails(uuid.NewString(), ip)
	var params []any
	if len(req.Params) > 0 {
		if err := json.Unmarshal(req.Params, &params); err != nil {
			out <- wireResponse{JSONRPC: "2.0", ID: req.ID, Error: d.decorate(InvalidParameter("params must be a JSON array"), rd)}
			return
		}
	}

	switch req.Method {
	case "eth_subscribe":
		subID, err := subs.Subscribe(params, rd)
		if err != nil {
			out <- wireResponse{JSONRPC: "2.0", ID: req.ID, Error: err}
			return
		}
		out <- wireResponse{JSONRPC: "2.0", ID: req.ID, Result: subID}
	case "eth_unsubscribe":
		ok := subs.Unsubscribe(params)
		out <- wireResponse{JSONRPC: "2.0", ID: req.ID, Result: ok}
	default:
		result, err := d.Dispatch(req.Method, params, rd)
		if err != nil {
			metrics.DispatchErrors.WithLabelValues(req.Method, errorClass(err.Code)).Inc()
			out <- wireResponse{JSONRPC: "2.0", ID: req.ID, Error: err}
			return
		}
		metrics.DispatchOK.WithLabelValues(req.Method).Inc()
		out <- wireResponse{JSONRPC: "2.0", ID: req.ID, Result: result}
	}
}

func writePump(conn *websocket.Conn, out <-chan any, done <-chan struct{}) {
	ticker := time.NewTicker(wsPingInterval)
	defer ticker.Stop()
	for {
		select {
		case <-done:
			return
		case v, ok := <-out:
			if !ok {
				return
			}
			if err := conn.WriteJSON(v); err != nil {
				return
			}
		case <-ticker.C:
			_ = conn.SetWriteDeadline(time.Now().Add(wsPingWriteTimeout))
			if err := conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

// wsHandshakeValidator verifies the Origin header during upgrade, same
// allow-list shape as the teacher's, backed by deckarep/golang-set/v2.
func wsHandshakeValidator(allowedOrigins []string) func(*http.Request) bool {
	origins := mapset.NewSet[string]()
	allowAll := false
	for _, origin := range allowedOrigins {
		if origin == "*" {
			allowAll = true
		}
		if origin != "" {
			origins.Add(origin)
		}
	}
	if origins.Cardinality() == 0 {
		origins.Add("http://localhost")
		if hostname, err := os.Hostname(); err == nil {
			origins.Add("http://" + hostname)
		}
	}
	log.Debug(fmt.Sprintf("allowed WebSocket origins: %v", origins.ToSlice()))

	return func(req *http.Request) bool {
		if _, ok := req.Header["Origin"]; !ok {
			return true
		}
		origin := strings.ToLower(req.Header.Get("Origin"))
		if allowAll || originIsAllowed(origins, origin) {
			return true
		}
		log.Warn("rejected WebSocket connection", "origin", origin)
		return false
	}
}

func originIsAllowed(allowed mapset.Set[string], browserOrigin string) bool {
	it := allowed.Iterator()
	for origin := range it.C {
		if ruleAllowsOrigin(origin, browserOrigin) {
			return true
		}
	}
	return false
}

func ruleAllowsOrigin(allowedOrigin, browserOrigin string) bool {
	allowedScheme, allowedHost, allowedPort, err := parseOriginURL(allowedOrigin)
	if err != nil {
		return false
	}
	browserScheme, browserHost, browserPort, err := parseOriginURL(browserOrigin)
	if err != nil {
		return false
	}
	if allowedScheme != "" && allowedScheme != browserScheme {
		return false
	}
	if allowedHost != "" && allowedHost != browserHost {
		return false
	}
	if allowedPort != "" && allowedPort != browserPort {
		return false
	}
	return true
}

func parseOriginURL(origin string) (scheme, hostname, port string, err error) {
	u, err := url.Parse(strings.ToLower(origin))
	if err != nil {
		return "", "", "", err
	}
	if strings.Contains(origin, "://") {
		return u.Scheme, u.Hostname(), u.Port(), nil
	}
	hostname = u.Scheme
	if hostname == "" {
		hostname = origin
	}
	return "", hostname, u.Opaque, nil
}
