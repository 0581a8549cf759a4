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
	"encoding/json"
	"fmt"
	"math/big"
	"strings"
)

var namedBlockTags = map[string]bool{
	"earliest":  true,
	"latest":    true,
	"pending":   true,
	"finalized": true,
	"safe":      true,
}

// maxSafeInteger is 2^53-1, the ceiling spec.md places on a hex block number.
var maxSafeInteger = big.NewInt(9007199254740991)

func stringify(v any) string {
	switch t := v.(type) {
	case nil:
		return "null"
	case string:
		return t
	default:
		b, err := json.Marshal(t)
		if err != nil {
			return fmt.Sprintf("%v", t)
		}
		return string(b)
	}
}

func isHexDigits(s string) bool {
	if s == "" {
		return false
	}
	for _, r := range s {
		if !((r >= '0' && r <= '9') || (r >= 'a' && r <= 'f') || (r >= 'A' && r <= 'F')) {
			return false
		}
	}
	return true
}

func testHex(v any) (bool, string) {
	s, ok := v.(string)
	if !ok || !strings.HasPrefix(s, "0x") || !isHexDigits(s[2:]) {
		return false, "expected a 0x-prefixed hex string"
	}
	return true, ""
}

func testHexEvenLength(v any) (bool, string) {
	if ok, msg := testHex(v); !ok {
		return false, msg
	}
	s := v.(string)
	if len(s[2:])%2 != 0 {
		return false, "expected an even number of hex digits"
	}
	return true, ""
}

func testHexN(v any, max int) (bool, string) {
	s, ok := v.(string)
	if !ok || !strings.HasPrefix(s, "0x") {
		return false, fmt.Sprintf("expected a 0x-prefixed hex string of at most %d digits", max)
	}
	digits := s[2:]
	if digits == "" || !isHexDigits(digits) || len(digits) > max {
		return false, fmt.Sprintf("expected a 0x-prefixed hex string of at most %d digits", max)
	}
	return true, ""
}

func testHex64(v any) (bool, string) {
	return testHexN(v, 64)
}

func testBlockHash(v any) (bool, string) {
	s, ok := v.(string)
	if !ok || !strings.HasPrefix(s, "0x") || len(s[2:]) != 64 || !isHexDigits(s[2:]) {
		return false, "expected a 0x-prefixed 64-hex-digit block hash"
	}
	return true, ""
}

func testTransactionHash(v any) (bool, string) {
	s, ok := v.(string)
	if !ok || !strings.HasPrefix(s, "0x") || len(s[2:]) != 64 || !isHexDigits(s[2:]) {
		return false, "expected a 0x-prefixed 64-hex-digit transaction hash"
	}
	return true, ""
}

func testAddress(v any) (bool, string) {
	s, ok := v.(string)
	if !ok || !strings.HasPrefix(s, "0x") || len(s[2:]) != 40 || !isHexDigits(s[2:]) {
		return false, "expected a 0x-prefixed 40-hex-digit address"
	}
	return true, ""
}

func testAddressFilter(v any) (bool, string) {
	if ok, _ := testAddress(v); ok {
		return true, ""
	}
	arr, ok := v.([]any)
	if !ok {
		return false, "expected an address or an array of addresses"
	}
	for _, el := range arr {
		if ok, _ := testAddress(el); !ok {
			return false, "expected an address or an array of addresses"
		}
	}
	return true, ""
}

func testBoolean(v any) (bool, string) {
	_, ok := v.(bool)
	if !ok {
		return false, "expected a boolean"
	}
	return true, ""
}

func testArray(v any, elementType *Tag) (bool, string) {
	arr, ok := v.([]any)
	if !ok {
		return false, "expected an array"
	}
	if elementType == nil {
		return true, ""
	}
	for _, el := range arr {
		if ok, msg := testTag(*elementType, el, nil); !ok {
			return false, msg
		}
	}
	return true, ""
}

func testBlockNumber(v any) (bool, string) {
	if s, ok := v.(string); ok && namedBlockTags[s] {
		return true, ""
	}
	s, ok := v.(string)
	if !ok || !strings.HasPrefix(s, "0x") {
		return false, "expected a block number, tag, or hex quantity"
	}
	digits := s[2:]
	if digits == "" || !isHexDigits(digits) {
		return false, "expected a block number, tag, or hex quantity"
	}
	if len(digits) > 1 && digits[0] == '0' {
		return false, "hex quantity must not have leading zeros"
	}
	n := new(big.Int)
	if _, ok := n.SetString(digits, 16); !ok {
		return false, "expected a block number, tag, or hex quantity"
	}
	if n.Cmp(maxSafeInteger) > 0 {
		return false, "block number exceeds the maximum safe integer"
	}
	return true, ""
}

func testTopicHash(v any) (bool, string) {
	if v == nil {
		return true, ""
	}
	return testBlockHash(v) // same shape: 0x + 64 hex digits
}

func testTopics(v any) (bool, string) {
	arr, ok := v.([]any)
	if !ok {
		return false, "expected an array of topics"
	}
	for _, el := range arr {
		if el == nil {
			continue
		}
		if nested, ok := el.([]any); ok {
			for _, n := range nested {
				if ok, msg := testTopicHash(n); !ok {
					return false, msg
				}
			}
			continue
		}
		if ok, msg := testTopicHash(el); !ok {
			return false, msg
		}
	}
	return true, ""
}

func testTracerType(v any, tracers []string) (bool, string) {
	s, ok := v.(string)
	if !ok {
		return false, "expected a tracer name"
	}
	for _, t := range tracers {
		if t == s {
			return true, ""
		}
	}
	return false, fmt.Sprintf("unknown tracer %q", s)
}

// DefaultTracers is the set of tracer names this gateway recognizes,
// modeled on the teacher's tracers.directory entries (callTracer,
// prestateTracer and 4byteTracer).
var DefaultTracers = []string{"callTracer", "prestateTracer", "4byteTracer"}
