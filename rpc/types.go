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

// Package rpc implements the gateway's JSON-RPC request pipeline: the method
// registry, the dispatcher, the HTTP/WebSocket transports and the
// subscription runtime.
package rpc

import (
	"github.com/r5-labs/r5-rpc-gateway/validation"
)

// API mirrors the teacher's own rpc.API: a namespace paired with the service
// instance whose exported, suitably-signed methods should be registered
// under it. A service may appear under more than one namespace (the teacher
// does exactly this to expose its own `eth` API again under `r5`).
type API struct {
	Namespace string
	Service   any
}

// ArrangeFunc reshapes the wire-order parameters (plus the ambient
// RequestDetails) into the argument list a handler actually expects. When a
// RpcOperation has no ArrangeFunc, the dispatcher appends RequestDetails to
// params and calls the handler with that.
type ArrangeFunc func(params []any, rd RequestDetails) []any

// RpcOperation is a callable bound to its owning service instance, plus the
// metadata the registry collected about it at startup.
type RpcOperation struct {
	Name    string // original method name, e.g. "GetBalance" -> "getBalance"
	Handler func(args []any) (any, error)
	Schema  *validation.ParamSchema // nil if the operation takes no validated params
	Arrange ArrangeFunc             // nil selects the default arrangement
}

// RequestDetails is the immutable, per-request context value carried through
// validation, caching, rate limiting and handler invocation.
type RequestDetails struct {
	RequestID          string
	IPAddress          string
	FormattedRequestID string
}

// NewRequestDetails builds a RequestDetails from a request id and an IP,
// precomputing the log-line prefix the teacher's own request logging uses.
func NewRequestDetails(requestID, ip string) RequestDetails {
	return RequestDetails{
		RequestID:          requestID,
		IPAddress:          ip,
		FormattedRequestID: "[Request ID: " + requestID + "]",
	}
}
