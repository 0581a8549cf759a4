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
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestParseOriginURLWithScheme(t *testing.T) {
	scheme, host, port, err := parseOriginURL("https://example.com:8443")
	require.NoError(t, err)
	require.Equal(t, "https", scheme)
	require.Equal(t, "example.com", host)
	require.Equal(t, "8443", port)
}

func TestParseOriginURLWithoutScheme(t *testing.T) {
	_, host, _, err := parseOriginURL("example.com")
	require.NoError(t, err)
	require.Equal(t, "example.com", host)
}

func TestRuleAllowsOriginMatchesHostRegardlessOfScheme(t *testing.T) {
	require.True(t, ruleAllowsOrigin("example.com", "https://example.com"))
	require.False(t, ruleAllowsOrigin("example.com", "https://evil.com"))
}

func TestRuleAllowsOriginEnforcesSchemeWhenSpecified(t *testing.T) {
	require.True(t, ruleAllowsOrigin("https://example.com", "https://example.com"))
	require.False(t, ruleAllowsOrigin("https://example.com", "http://example.com"))
}

func TestWsHandshakeValidatorAllowsMissingOriginHeader(t *testing.T) {
	check := wsHandshakeValidator([]string{"https://allowed.com"})
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	require.True(t, check(req))
}

func TestWsHandshakeValidatorAllowsConfiguredOrigin(t *testing.T) {
	check := wsHandshakeValidator([]string{"https://allowed.com"})
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Origin", "https://allowed.com")
	require.True(t, check(req))
}

func TestWsHandshakeValidatorRejectsUnlistedOrigin(t *testing.T) {
	check := wsHandshakeValidator([]string{"https://allowed.com"})
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Origin", "https://evil.com")
	require.False(t, check(req))
}

func TestWsHandshakeValidatorWildcardAllowsAnyOrigin(t *testing.T) {
	check := wsHandshakeValidator([]string{"*"})
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Origin", "https://anything.example")
	require.True(t, check(req))
}

func TestHandleWSMessageReturnsParseErrorOnInvalidJSON(t *testing.T) {
	d := buildDispatcher(t, &chainIDService{})
	out := make(chan any, 1)
	subs := NewSubscriptionService(d, "1.2.3.4", out)
	defer subs.Close()

	handleWSMessage(d, subs, []byte("not json"), "1.2.3.4", out)

	resp := (<-out).(wireResponse)
	require.Equal(t, ParseErrorCode, resp.Error.Code)
}

func TestHandleWSMessageDispatchesRegularMethodThroughDispatcher(t *testing.T) {
	d := buildDispatcher(t, &chainIDService{})
	out := make(chan any, 1)
	subs := NewSubscriptionService(d, "1.2.3.4", out)
	defer subs.Close()

	req := wireRequest{JSONRPC: "2.0", ID: float64(1), Method: "eth_chainId"}
	raw, err := json.Marshal(req)
	require.NoError(t, err)

	handleWSMessage(d, subs, raw, "1.2.3.4", out)

	resp := (<-out).(wireResponse)
	require.Nil(t, resp.Error)
	require.Equal(t, "0x12a", resp.Result)
}

func TestHandleWSMessageRoutesSubscribeBypassingDispatcher(t *testing.T) {
	RegisterEventSource("newHeads", func(map[string]any) (any, error) { return "block", nil })
	d := buildDispatcher(t, &chainIDService{})
	out := make(chan any, 1)
	subs := NewSubscriptionService(d, "1.2.3.4", out)
	defer subs.Close()

	req := wireRequest{JSONRPC: "2.0", ID: float64(1), Method: "eth_subscribe", Params: json.RawMessage(`["newHeads"]`)}
	raw, err := json.Marshal(req)
	require.NoError(t, err)

	handleWSMessage(d, subs, raw, "1.2.3.4", out)

	resp := (<-out).(wireResponse)
	require.Nil(t, resp.Error)
	subID, ok := resp.Result.(string)
	require.True(t, ok)
	require.NotEmpty(t, subID)
}

func TestHandleWSMessageUnsubscribeReportsWhetherRemoved(t *testing.T) {
	RegisterEventSource("newHeads", func(map[string]any) (any, error) { return "block", nil })
	d := buildDispatcher(t, &chainIDService{})
	out := make(chan any, 1)
	subs := NewSubscriptionService(d, "1.2.3.4", out)
	defer subs.Close()

	subReq := wireRequest{JSONRPC: "2.0", ID: float64(1), Method: "eth_subscribe", Params: json.RawMessage(`["newHeads"]`)}
	raw, _ := json.Marshal(subReq)
	handleWSMessage(d, subs, raw, "1.2.3.4", out)
	subID := (<-out).(wireResponse).Result.(string)

	unsubReq := wireRequest{JSONRPC: "2.0", ID: float64(2), Method: "eth_unsubscribe", Params: json.RawMessage(`["` + subID + `"]`)}
	raw, _ = json.Marshal(unsubReq)
	handleWSMessage(d, subs, raw, "1.2.3.4", out)
	resp := (<-out).(wireResponse)
	require.Equal(t, true, resp.Result)
}

func TestHandleWSMessageRejectsNonArrayParams(t *testing.T) {
	d := buildDispatcher(t, &chainIDService{})
	out := make(chan any, 1)
	subs := NewSubscriptionService(d, "1.2.3.4", out)
	defer subs.Close()

	req := wireRequest{JSONRPC: "2.0", ID: float64(1), Method: "eth_chainId", Params: json.RawMessage(`{"not":"an array"}`)}
	raw, err := json.Marshal(req)
	require.NoError(t, err)

	handleWSMessage(d, subs, raw, "1.2.3.4", out)

	resp := (<-out).(wireResponse)
	require.Equal(t, InvalidParameterCode, resp.Error.Code)
}
