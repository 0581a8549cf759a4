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

package backend

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"net"
	"net/http"
	"net/url"
	"time"
)

// classifyTransportError distinguishes a client-side timeout (either the
// context's own deadline or http.Client's blanket request Timeout, which
// net/http implements via its own internal deadline rather than the
// caller's context) from any other transport failure.
func classifyTransportError(err error) error {
	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return &TimeoutError{Message: err.Error()}
	}
	return &ConnectionError{Message: err.Error()}
}

// HTTPArchive is a minimal Archive implementation over a REST mirror
// service. The collaborator itself is out of scope (spec.md §1), but a
// runnable binary still needs some concrete Archive — this is the
// thinnest one that satisfies the interface. Get returns a non-2xx status
// as the status code with a nil error; it maps no status to an error type
// and does not retry. It returns an error only when the request cannot be
// built, sent or read, or when the body is not JSON.
type HTTPArchive struct {
	baseURL string
	client  *http.Client
}

// NewHTTPArchive builds an HTTPArchive rooted at baseURL with the given
// per-request timeout.
func NewHTTPArchive(baseURL string, timeout time.Duration) *HTTPArchive {
	return &HTTPArchive{baseURL: baseURL, client: &http.Client{Timeout: timeout}}
}

// Get implements backend.Archive.
func (a *HTTPArchive) Get(ctx context.Context, path string) (any, int, error) {
	u, err := url.JoinPath(a.baseURL, path)
	if err != nil {
		return nil, 0, err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return nil, 0, err
	}
	resp, err := a.client.Do(req)
	if err != nil {
		return nil, 0, classifyTransportError(err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, resp.StatusCode, err
	}
	if len(body) == 0 {
		return nil, resp.StatusCode, nil
	}
	var parsed any
	if err := json.Unmarshal(body, &parsed); err != nil {
		return nil, resp.StatusCode, err
	}
	return parsed, resp.StatusCode, nil
}

// HTTPConsensus is a minimal Consensus implementation posting a signed
// transaction to a submission endpoint.
type HTTPConsensus struct {
	submitURL string
	client    *http.Client
}

// NewHTTPConsensus builds an HTTPConsensus posting to submitURL.
func NewHTTPConsensus(submitURL string, timeout time.Duration) *HTTPConsensus {
	return &HTTPConsensus{submitURL: submitURL, client: &http.Client{Timeout: timeout}}
}

// Submit implements backend.Consensus.
func (c *HTTPConsensus) Submit(ctx context.Context, signedTx []byte) (any, error) {
	body, err := json.Marshal(map[string]string{"rawTransaction": "0x" + string(signedTx)})
	if err != nil {
		return nil, err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.submitURL, bytes.NewReader(body))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, classifyTransportError(err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, err
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, &StatusError{Status: resp.StatusCode, Message: string(respBody)}
	}
	var parsed any
	if err := json.Unmarshal(respBody, &parsed); err != nil {
		return nil, err
	}
	return parsed, nil
}
