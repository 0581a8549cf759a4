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

package ethapi

import (
	"context"
	"fmt"

	"github.com/r5-labs/r5-rpc-gateway/backend"
	"github.com/r5-labs/r5-rpc-gateway/rpc"
	"github.com/r5-labs/r5-rpc-gateway/validation"
)

// DebugService implements debug_traceTransaction/debug_traceBlockByNumber by
// forwarding the tracer config to the archival client's own tracing
// endpoint; the trace itself runs there, against the archive's copy of
// chain state.
// Registered only when SPEC_FULL.md's DEBUG_API_ENABLED is set — see
// cmd/gateway/main.go.
type DebugService struct {
	archive backend.Archive
}

// NewDebugService builds the debug_* handler set.
func NewDebugService(archive backend.Archive) *DebugService {
	return &DebugService{archive: archive}
}

func (s *DebugService) TraceTransaction(args []any) (any, error) {
	hash := stringAt(args, 0)
	cfg := objectAt(args, 1)
	path := fmt.Sprintf("/transactions/%s/trace?config=%s", hash, encodeFilterQuery(cfg))
	result, status, err := s.archive.Get(context.Background(), path)
	if err != nil {
		return nil, err
	}
	if status < 200 || status >= 300 {
		return nil, &backend.StatusError{Status: status, Message: fmt.Sprintf("archive returned status %d for %s", status, path)}
	}
	return result, nil
}

func (s *DebugService) TraceBlockByNumber(args []any) (any, error) {
	number := stringAt(args, 0)
	cfg := objectAt(args, 1)
	path := fmt.Sprintf("/blocks/%s/trace?config=%s", number, encodeFilterQuery(cfg))
	result, status, err := s.archive.Get(context.Background(), path)
	if err != nil {
		return nil, err
	}
	if status < 200 || status >= 300 {
		return nil, &backend.StatusError{Status: status, Message: fmt.Sprintf("archive returned status %d for %s", status, path)}
	}
	return result, nil
}

// RPCMetadata validates the tracer config shape: a named tracer must be one
// of validation.DefaultTracers (callTracer, prestateTracer, 4byteTracer), so
// JavaScript tracers are rejected; a config that names no tracer passes.
func (s *DebugService) RPCMetadata() map[string]rpc.OperationMetadata {
	traceSchema := &validation.ParamSchema{
		0: {Types: []validation.Tag{validation.TransactionHash}, Required: true},
		1: {Types: []validation.Tag{validation.TracerConfigWrapper}},
	}
	blockTraceSchema := &validation.ParamSchema{
		0: {Types: []validation.Tag{validation.BlockNumber}, Required: true},
		1: {Types: []validation.Tag{validation.TracerConfigWrapper}},
	}
	return map[string]rpc.OperationMetadata{
		"TraceTransaction":  {Schema: traceSchema},
		"TraceBlockByNumber": {Schema: blockTraceSchema},
	}
}
