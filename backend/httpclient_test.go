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
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestHTTPArchiveGetParsesJSONBody(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/accounts/0xabc/balance", r.URL.Path)
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{"balance":"0x64"}`))
	}))
	defer srv.Close()

	a := NewHTTPArchive(srv.URL, time.Second)
	result, status, err := a.Get(context.Background(), "/accounts/0xabc/balance")
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, status)
	require.Equal(t, map[string]any{"balance": "0x64"}, result)
}

func TestHTTPArchiveGetReturnsStatusOnNon2xx(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
		_, _ = w.Write([]byte(`{"error":"not found"}`))
	}))
	defer srv.Close()

	a := NewHTTPArchive(srv.URL, time.Second)
	_, status, err := a.Get(context.Background(), "/missing")
	require.NoError(t, err)
	require.Equal(t, http.StatusNotFound, status)
}

func TestHTTPArchiveGetClassifiesTimeoutAsTimeoutError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		time.Sleep(50 * time.Millisecond)
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	a := NewHTTPArchive(srv.URL, time.Millisecond)
	_, _, err := a.Get(context.Background(), "/slow")
	require.Error(t, err)
	_, ok := err.(*TimeoutError)
	require.True(t, ok, "a client-timeout error must be classified as *TimeoutError")
}

func TestHTTPConsensusSubmitPostsRawTransactionAndParsesResponse(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, http.MethodPost, r.Method)
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{"hash":"0xdead"}`))
	}))
	defer srv.Close()

	c := NewHTTPConsensus(srv.URL, time.Second)
	result, err := c.Submit(context.Background(), []byte("f86c..."))
	require.NoError(t, err)
	require.Equal(t, map[string]any{"hash": "0xdead"}, result)
}

func TestHTTPConsensusSubmitReturnsStatusErrorOnNon2xx(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		_, _ = w.Write([]byte(`invalid transaction`))
	}))
	defer srv.Close()

	c := NewHTTPConsensus(srv.URL, time.Second)
	_, err := c.Submit(context.Background(), []byte("bad"))
	require.Error(t, err)
	statusErr, ok := err.(*StatusError)
	require.True(t, ok)
	require.Equal(t, http.StatusBadRequest, statusErr.Status)
}
