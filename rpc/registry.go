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
	"reflect"

	"github.com/r5-labs/r5-rpc-gateway/log"
	"github.com/r5-labs/r5-rpc-gateway/validation"
)

// Every RPC-exposed method must have the signature func([]any) (any, error):
// a single slice of positional arguments (the wire params with
// RequestDetails appended, or whatever Arrange produced) and a
// (result, error) return. This is the bound-method analogue of the
// teacher's own suitableCallbacks reflection pass, simplified to one
// calling convention so the dispatcher never needs per-operation reflection
// on the hot path.

// Registrar is implemented by a service that wants to attach
// per-operation validation schemas and argument-arrangement hints. A
// service with no Registrar implementation still has its exported,
// suitably-signed methods registered, just with no schema (equivalent to
// spec.md's "operation has no attached validation schema").
type Registrar interface {
	// RPCMetadata returns, for each RPC-exposed method name on the
	// service, its optional schema and optional arrangement hint. A
	// method absent from this map, or present with a nil entry, is
	// still registered (schema-less).
	RPCMetadata() map[string]OperationMetadata
}

// OperationMetadata is the declarative annotation a service attaches to one
// of its methods: the validation schema and/or the argument-arrangement
// hint spec.md §4.1/§9 describe.
type OperationMetadata struct {
	Schema  *validation.ParamSchema
	Arrange ArrangeFunc
}

// Registry is the immutable name -> RpcOperation mapping built once at
// startup. It is read-only for the remainder of the process's life, so no
// synchronization is needed on the request path (spec.md §5).
type Registry struct {
	ops map[string]*RpcOperation
}

// BuildRegistry discovers every RPC-exposed operation across apis and binds
// it into an immutable registry keyed by "namespace_method". It mirrors the
// teacher's StartIPCEndpoint registration loop (client/rpc/endpoints.go):
// iterate the supplied (namespace, service) pairs and register each.
func BuildRegistry(apis []API) (*Registry, error) {
	r := &Registry{ops: make(map[string]*RpcOperation)}
	for _, api := range apis {
		if err := r.register(api.Namespace, api.Service); err != nil {
			return nil, err
		}
	}
	return r, nil
}

func (r *Registry) register(namespace string, service any) error {
	var meta map[string]OperationMetadata
	if reg, ok := service.(Registrar); ok {
		meta = reg.RPCMetadata()
	}

	rv := reflect.ValueOf(service)
	rt := rv.Type()
	for i := 0; i < rt.NumMethod(); i++ {
		m := rt.Method(i)
		if m.PkgPath != "" {
			continue // unexported
		}
		if m.Name == "RPCMetadata" {
			continue // the declarative-metadata hook itself is never exposed
		}
		bound := rv.MethodByName(m.Name)
		fn, ok := bound.Interface().(func([]any) (any, error))
		if !ok {
			continue // not RPC-exposed: wrong signature
		}
		key := namespace + "_" + lowerFirst(m.Name)
		if _, exists := r.ops[key]; exists {
			return fmt.Errorf("rpc: duplicate method %s", key)
		}
		op := &RpcOperation{
			Name:    lowerFirst(m.Name),
			Handler: fn,
		}
		if mm, ok := meta[m.Name]; ok {
			op.Schema = mm.Schema
			op.Arrange = mm.Arrange
		}
		r.ops[key] = op
		log.Debug("registered RPC method", "method", key)
	}
	return nil
}

// Decorate rewraps the handler already registered under name with wrap,
// used at startup to compose cache/rate-limit decorators around a
// service's raw bound methods without the registry needing to know
// anything about caching or rate limiting itself.
func (r *Registry) Decorate(name string, wrap func(func([]any) (any, error)) func([]any) (any, error)) bool {
	op, ok := r.ops[name]
	if !ok {
		return false
	}
	op.Handler = wrap(op.Handler)
	return true
}

// Lookup returns the operation registered under name, if any.
func (r *Registry) Lookup(name string) (*RpcOperation, bool) {
	op, ok := r.ops[name]
	return op, ok
}

// Len reports how many operations are registered, mostly useful for tests.
func (r *Registry) Len() int { return len(r.ops) }

// Names returns every registered "namespace_method" key, for startup-time
// decoration passes.
func (r *Registry) Names() []string {
	names := make([]string, 0, len(r.ops))
	for name := range r.ops {
		names = append(names, name)
	}
	return names
}

func lowerFirst(s string) string {
	if s == "" {
		return s
	}
	b := []byte(s)
	if b[0] >= 'A' && b[0] <= 'Z' {
		b[0] += 'a' - 'A'
	}
	return string(b)
}
