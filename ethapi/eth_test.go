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
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/r5-labs/r5-rpc-gateway/backend"
	"github.com/stretchr/testify/require"
)

type fakeArchive struct {
	lastPath string
	result   any
	status   int
	err      error
}

func (f *fakeArchive) Get(_ context.Context, path string) (any, int, error) {
	f.lastPath = path
	if f.err != nil {
		return nil, 0, f.err
	}
	status := f.status
	if status == 0 {
		status = 200
	}
	return f.result, status, nil
}

type fakeConsensus struct {
	lastRaw []byte
	result  any
	err     error
}

func (f *fakeConsensus) Submit(_ context.Context, signedTx []byte) (any, error) {
	f.lastRaw = signedTx
	return f.result, f.err
}

func TestChainIdReturnsConfiguredConstantWithoutArchiveCall(t *testing.T) {
	archive := &fakeArchive{result: "should not be used"}
	svc := NewEthService(archive, &fakeConsensus{}, "0x12a", 1000, time.Minute)

	v, err := svc.ChainId(nil)
	require.NoError(t, err)
	require.Equal(t, "0x12a", v)
	require.Empty(t, archive.lastPath)
}

func TestGetBalanceBuildsExpectedArchivePath(t *testing.T) {
	archive := &fakeArchive{result: "0x64"}
	svc := NewEthService(archive, &fakeConsensus{}, "0x12a", 1000, time.Minute)

	v, err := svc.GetBalance([]any{"0xabc", "latest"})
	require.NoError(t, err)
	require.Equal(t, "0x64", v)
	require.Equal(t, "/accounts/0xabc/balance?block=latest", archive.lastPath)
}

func TestGetBalanceNormalizesNon2xxIntoStatusError(t *testing.T) {
	archive := &fakeArchive{result: map[string]any{"error": "not found"}, status: 404}
	svc := NewEthService(archive, &fakeConsensus{}, "0x12a", 1000, time.Minute)

	_, err := svc.GetBalance([]any{"0xabc", "latest"})
	require.Error(t, err)
	statusErr, ok := err.(*backend.StatusError)
	require.True(t, ok)
	require.Equal(t, 404, statusErr.Status)
}

func TestSendRawTransactionDelegatesToConsensus(t *testing.T) {
	consensus := &fakeConsensus{result: map[string]any{"hash": "0xdead"}}
	svc := NewEthService(&fakeArchive{}, consensus, "0x12a", 1000, time.Minute)

	v, err := svc.SendRawTransaction([]any{"0xf86c..."})
	require.NoError(t, err)
	require.Equal(t, map[string]any{"hash": "0xdead"}, v)
	require.Equal(t, []byte("0xf86c..."), consensus.lastRaw)
}

func TestNewFilterInstallsAndGetFilterLogsRoundTrips(t *testing.T) {
	archive := &fakeArchive{result: []any{}}
	svc := NewEthService(archive, &fakeConsensus{}, "0x12a", 1000, time.Minute)

	id, err := svc.NewFilter([]any{map[string]any{
		"address":   "0xabc",
		"fromBlock": "0x1",
		"toBlock":   "0x10",
	}})
	require.NoError(t, err)
	idStr, ok := id.(string)
	require.True(t, ok)
	require.True(t, strings.HasPrefix(idStr, "0x"))

	_, err = svc.GetFilterLogs([]any{idStr})
	require.NoError(t, err)
	require.True(t, strings.HasPrefix(archive.lastPath, "/logs?"))

	unescaped, decErr := url.QueryUnescape(strings.TrimPrefix(archive.lastPath, "/logs?"))
	require.NoError(t, decErr)
	require.Contains(t, unescaped, `"address":"0xabc"`)
}

func TestGetFilterLogsUnknownIDErrors(t *testing.T) {
	svc := NewEthService(&fakeArchive{}, &fakeConsensus{}, "0x12a", 1000, time.Minute)
	_, err := svc.GetFilterLogs([]any{"0xdoesnotexist"})
	require.Error(t, err)
}

func TestUninstallFilterReportsWhetherRemoved(t *testing.T) {
	svc := NewEthService(&fakeArchive{}, &fakeConsensus{}, "0x12a", 1000, time.Minute)
	id, err := svc.NewBlockFilter(nil)
	require.NoError(t, err)

	removed, err := svc.UninstallFilter([]any{id.(string)})
	require.NoError(t, err)
	require.Equal(t, true, removed)

	removedAgain, err := svc.UninstallFilter([]any{id.(string)})
	require.NoError(t, err)
	require.Equal(t, false, removedAgain)
}

func TestConstantsAndStubs(t *testing.T) {
	svc := NewEthService(&fakeArchive{}, &fakeConsensus{}, "0x12a", 1000, time.Minute)

	v, err := svc.Mining(nil)
	require.NoError(t, err)
	require.Equal(t, false, v)

	_, err = svc.Sign(nil)
	require.Error(t, err)
}

func TestNetAndWeb3Services(t *testing.T) {
	net := NewNetService("42")
	v, err := net.Version(nil)
	require.NoError(t, err)
	require.Equal(t, "42", v)

	listening, err := net.Listening(nil)
	require.NoError(t, err)
	require.Equal(t, true, listening)

	web3 := NewWeb3Service("gateway/v1")
	cv, err := web3.ClientVersion(nil)
	require.NoError(t, err)
	require.Equal(t, "gateway/v1", cv)
}
