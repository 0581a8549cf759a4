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

package validation

import (
	"testing"

	"github.com/stretchr/testify/require"
)

const testAddr = "0x4422E9088662c44604189B2aA3ae8eE282fceBB7"

func TestValidateParamsRequiredMissing(t *testing.T) {
	schema := ParamSchema{0: {Types: []Tag{Address}, Required: true}}
	err := ValidateParams([]any{}, schema)
	require.Error(t, err)
	require.Equal(t, MissingRequiredParameter, err.(*Error).Kind)
}

func TestValidateParamsOptionalMissingIsFine(t *testing.T) {
	schema := ParamSchema{0: {Types: []Tag{Address}, Required: false}}
	require.NoError(t, ValidateParams([]any{}, schema))
}

func TestValidateParamsTooMany(t *testing.T) {
	schema := ParamSchema{0: {Types: []Tag{Address}}}
	err := ValidateParams([]any{testAddr, "extra"}, schema)
	require.Error(t, err)
	require.Equal(t, TooManyParams, err.(*Error).Kind)
}

func TestValidateParamsRejectsNullTopLevel(t *testing.T) {
	schema := ParamSchema{0: {Types: []Tag{Address}, Required: true}}
	err := ValidateParams([]any{nil}, schema)
	require.Error(t, err)
	require.Equal(t, InvalidParameter, err.(*Error).Kind)
}

func TestValidateParamsAcceptsValidAddress(t *testing.T) {
	schema := ParamSchema{0: {Types: []Tag{Address}, Required: true}}
	require.NoError(t, ValidateParams([]any{testAddr}, schema))
}

func TestValidateParamsRejectsMalformedAddress(t *testing.T) {
	schema := ParamSchema{0: {Types: []Tag{Address}, Required: true}}
	err := ValidateParams([]any{"0xnothex"}, schema)
	require.Error(t, err)
}

func TestValidateParamsUnknownIndexIgnored(t *testing.T) {
	// index not present in the schema at all is simply skipped, not
	// reported as unknown (that classification only applies inside objects).
	schema := ParamSchema{0: {Types: []Tag{Address}}, 2: {Types: []Tag{Address}}}
	require.NoError(t, ValidateParams([]any{testAddr, "anything"}, schema))
}

func TestBlockNumberAcceptsNamedTags(t *testing.T) {
	for _, tag := range []string{"earliest", "latest", "pending", "safe", "finalized"} {
		ok, _ := testBlockNumber(tag)
		require.True(t, ok, tag)
	}
}

func TestBlockNumberRejectsLeadingZeros(t *testing.T) {
	ok, _ := testBlockNumber("0x0123")
	require.False(t, ok)
}

func TestBlockNumberAcceptsZero(t *testing.T) {
	ok, _ := testBlockNumber("0x0")
	require.True(t, ok)
}

func TestBlockNumberRejectsOverflow(t *testing.T) {
	ok, _ := testBlockNumber("0x1fffffffffffff1")
	require.False(t, ok)
}

func TestFilterRejectsBlockHashWithFromBlock(t *testing.T) {
	ok, msg := testFilter(map[string]any{
		"blockHash": "0x" + repeatHex(64),
		"fromBlock": "0x1",
	})
	require.False(t, ok)
	require.Contains(t, msg, "Can't use both")
}

func TestFilterAcceptsAddressAndTopics(t *testing.T) {
	ok, _ := testFilter(map[string]any{
		"address": testAddr,
		"topics":  []any{"0x" + repeatHex(64), nil},
	})
	require.True(t, ok)
}

func TestObjectSchemaDeletesUnknownProperties(t *testing.T) {
	m := map[string]any{"from": testAddr, "bogus": "x"}
	schema := &ObjectSchema{DeleteUnknownProperties: true, Properties: map[string]PropertyRule{
		"from": {Types: []Tag{Address}},
	}}
	require.NoError(t, ValidateObject(m, schema, ""))
	_, stillThere := m["bogus"]
	require.False(t, stillThere)
}

func TestObjectSchemaFailsOnUnexpectedParams(t *testing.T) {
	m := map[string]any{"bogus": "x"}
	schema := &ObjectSchema{FailOnUnexpectedParams: true, Properties: map[string]PropertyRule{}}
	err := ValidateObject(m, schema, "#0")
	require.Error(t, err)
	require.Equal(t, UnknownParameter, err.(*Error).Kind)
}

func TestTracerConfigWrapperRejectsMismatchedOpcodeConfig(t *testing.T) {
	ok, _ := testTracerConfigWrapper(map[string]any{
		"tracer":       "callTracer",
		"tracerConfig": map[string]any{"enableMemory": true},
	})
	require.False(t, ok)
}

func TestTracerConfigWrapperAcceptsMatchingCallTracerConfig(t *testing.T) {
	ok, _ := testTracerConfigWrapper(map[string]any{
		"tracer":       "callTracer",
		"tracerConfig": map[string]any{"onlyTopCall": true},
	})
	require.True(t, ok)
}

func TestArrayValidatesElementType(t *testing.T) {
	addrTag := Address
	ok, _ := testArray([]any{testAddr, testAddr}, &addrTag)
	require.True(t, ok)

	ok, _ = testArray([]any{testAddr, "not-an-address"}, &addrTag)
	require.False(t, ok)
}

func repeatHex(n int) string {
	out := make([]byte, n)
	for i := range out {
		out[i] = "abcdef0123456789"[i%16]
	}
	return string(out)
}
