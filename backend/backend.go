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

// Package backend declares the two external collaborators the gateway fans
// every call out to, Archive and Consensus, and provides thin HTTP
// implementations of both (HTTPArchive and HTTPConsensus, in httpclient.go).
package backend

import "context"

// Archive is the read-path collaborator: a REST-facing indexer/archival
// node. Implementations are expected to apply their own timeouts,
// rate-limited retries, and error taxonomy (rate-limit-429, timeout-504,
// not-supported-501, not-found-404, 5xx), surfaced through StatusError.
type Archive interface {
	Get(ctx context.Context, path string) (json any, status int, err error)
}

// Consensus is the write-path collaborator: a transaction-submission
// client. Submit returns an opaque record (a receipt/record tuple in the
// caller's own representation) and an error that, on failure, should be a
// *StatusError, *TimeoutError, or *ConnectionError so the dispatcher's
// normalizer (rpc.Dispatcher) can classify it correctly.
type Consensus interface {
	Submit(ctx context.Context, signedTx []byte) (record any, err error)
}

// StatusError is returned by an Archive/Consensus call that reached the
// upstream and got back a non-2xx HTTP-equivalent status.
type StatusError struct {
	Status  int
	Message string
}

func (e *StatusError) Error() string { return e.Message }

// TimeoutError is returned when a Consensus/Archive call exceeded its
// deadline without a response.
type TimeoutError struct {
	Message string
}

func (e *TimeoutError) Error() string { return e.Message }

// ConnectionError is returned when the underlying transport to a
// Consensus/Archive collaborator dropped before a response arrived.
type ConnectionError struct {
	Message string
}

func (e *ConnectionError) Error() string { return e.Message }
