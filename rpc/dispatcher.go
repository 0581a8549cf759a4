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
	"fmt"
	"strings"

	"github.com/r5-labs/r5-rpc-gateway/backend"
	"github.com/r5-labs/r5-rpc-gateway/log"
	"github.com/r5-labs/r5-rpc-gateway/validation"
)

// deprecatedConsensusNamespaces are execution-layer <-> consensus-layer
// namespaces this gateway will never speak, per spec.md §4.2.
var deprecatedConsensusNamespaces = []string{"engine"}

// reservedNamespaces name methods this gateway could plausibly implement but
// has not yet, vs. methods it never will.
var reservedNamespaces = []string{"trace", "debug"}

// Dispatcher is the single entry point from a transport (HTTP, WebSocket) to
// the method registry.
type Dispatcher struct {
	registry        *Registry
	debugAPIEnabled bool
}

// NewDispatcher builds a Dispatcher over registry. Registered methods,
// debug_* included, are dispatched whatever debugAPIEnabled says; the flag
// only classifies a debug_* name that is not registered: "not yet
// implemented" when false, "method not found" when true — see
// SPEC_FULL.md §6.
func NewDispatcher(registry *Registry, debugAPIEnabled bool) *Dispatcher {
	return &Dispatcher{registry: registry, debugAPIEnabled: debugAPIEnabled}
}

// Dispatch resolves methodName, validates params, arranges arguments,
// invokes the handler, and normalizes every failure into a *JSONError
// carrying rd.RequestID. It never panics out to the caller.
func (d *Dispatcher) Dispatch(methodName string, params []any, rd RequestDetails) (result any, errOut *JSONError) {
	defer func() {
		if r := recover(); r != nil {
			errOut = d.decorate(InternalError(fmt.Sprintf("panic: %v", r)), rd)
			log.Error("recovered dispatcher panic", "method", methodName, "reqid", rd.RequestID, "panic", r)
		}
	}()

	op, ok := d.registry.Lookup(methodName)
	if !ok {
		return nil, d.decorate(d.classifyMissing(methodName), rd)
	}

	if op.Schema != nil {
		if err := validation.ValidateParams(params, *op.Schema); err != nil {
			return nil, d.decorate(validationToJSONError(err), rd)
		}
	}

	args := arrange(op, params, rd)
	value, err := op.Handler(args)
	if err != nil {
		return nil, d.decorate(d.normalize(err), rd)
	}
	if jerr, ok := value.(*JSONError); ok {
		// A handler that returns a JSON-RPC error as a value (rather than as
		// a Go error) is routed through the same decoration path, per
		// spec.md §4.2 step 2's "propagated through the error path" rule.
		return nil, d.decorate(jerr, rd)
	}
	return value, nil
}

func arrange(op *RpcOperation, params []any, rd RequestDetails) []any {
	if op.Arrange != nil {
		return op.Arrange(params, rd)
	}
	args := make([]any, 0, len(params)+1)
	args = append(args, params...)
	args = append(args, rd)
	return args
}

func (d *Dispatcher) classifyMissing(methodName string) *JSONError {
	ns, _, found := strings.Cut(methodName, "_")
	if !found {
		return MethodNotFound(methodName)
	}
	for _, n := range deprecatedConsensusNamespaces {
		if ns == n {
			return MethodUnsupported(methodName)
		}
	}
	for _, n := range reservedNamespaces {
		if ns == n {
			if ns == "debug" && d.debugAPIEnabled {
				// The debug namespace is enabled but this particular method
				// still isn't registered: a genuine not-found.
				return MethodNotFound(methodName)
			}
			return MethodNotYetImplemented(methodName)
		}
	}
	return MethodNotFound(methodName)
}

// normalize classifies an error returned by a handler (which, in turn, may
// be wrapping a backend.Archive/backend.Consensus failure) into a JSONError.
func (d *Dispatcher) normalize(err error) *JSONError {
	switch e := err.(type) {
	case *JSONError:
		return e
	case *validation.Error:
		return validationToJSONError(e)
	case *backend.TimeoutError:
		return RequestTimeout(e.Message)
	case *backend.ConnectionError:
		return InternalError(e.Message)
	case *backend.StatusError:
		return UpstreamFailure(e.Status, e.Message)
	default:
		return InternalError(err.Error())
	}
}

func validationToJSONError(err error) *JSONError {
	ve, ok := err.(*validation.Error)
	if !ok {
		return InvalidParameter(err.Error())
	}
	switch ve.Kind {
	case validation.TooManyParams:
		return TooManyParams(ve.Message)
	case validation.MissingRequiredParameter:
		return MissingRequiredParameter(ve.Message)
	case validation.UnknownParameter:
		return UnknownParameter(ve.Message)
	default:
		return InvalidParameter(ve.Message)
	}
}

// decorate prefixes the message with the request's formatted id and sets the
// id field, per spec.md §4.2/§7: "every error surfacing to the client has
// the request id appended to the message and set as the id field."
func (d *Dispatcher) decorate(e *JSONError, rd RequestDetails) *JSONError {
	out := &JSONError{Code: e.Code, Data: e.Data, id: rd.RequestID}
	if rd.FormattedRequestID != "" {
		out.Message = rd.FormattedRequestID + " " + e.Message
	} else {
		out.Message = e.Message
	}
	return out
}

// ID returns the request id attached to a dispatched error, for transports
// to place into the JSON-RPC response envelope's "id" field.
func (e *JSONError) ID() any { return e.id }
