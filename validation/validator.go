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

import "fmt"

// ValidateParams evaluates schema against the positional parameter list of a
// JSON-RPC call. It fails fast with "too many parameters" if more arguments
// were supplied than the schema declares.
func ValidateParams(params []any, schema ParamSchema) error {
	if len(params) > len(schema) {
		return errTooMany(len(params), len(schema))
	}
	for i := 0; i < len(schema); i++ {
		rule, ok := schema[i]
		if !ok {
			continue
		}
		path := fmt.Sprintf("#%d", i)
		if i >= len(params) {
			if rule.Required {
				return errMissing(path)
			}
			continue
		}
		value := params[i]
		if value == nil {
			return errInvalid(path, value, "null is not accepted as a top-level parameter")
		}
		if ok, msg := testAny(rule.Types, value, &rule); !ok {
			if rule.ErrorMessage != "" {
				msg = rule.ErrorMessage
			}
			return errInvalid(path, value, msg)
		}
	}
	return nil
}

// testTag dispatches a single tag's tester. rule carries the extra
// configuration (nested ObjectSchema, array ElementType) a tag may need;
// it may be nil for tags that need none.
func testTag(tag Tag, value any, rule *Rule) (bool, string) {
	switch tag {
	case Address:
		return testAddress(value)
	case AddressFilter:
		return testAddressFilter(value)
	case Array:
		var elem *Tag
		if rule != nil {
			elem = rule.ElementType
		}
		return testArray(value, elem)
	case BlockHash:
		return testBlockHash(value)
	case BlockNumber:
		return testBlockNumber(value)
	case BlockNumberOrHash:
		return testBlockNumberOrHash(value)
	case BlockParams:
		return testBlockParams(value)
	case Boolean:
		return testBoolean(value)
	case Filter:
		return testFilter(value)
	case Hex:
		return testHex(value)
	case HexEvenLength:
		return testHexEvenLength(value)
	case Hex64:
		return testHex64(value)
	case TopicHash:
		return testTopicHash(value)
	case Topics:
		return testTopics(value)
	case Transaction:
		return testTransaction(value)
	case TransactionHash:
		return testTransactionHash(value)
	case TracerType:
		return testTracerType(value, DefaultTracers)
	case CallTracerConfig:
		return testCallTracerConfig(value)
	case OpcodeLoggerConfig:
		return testOpcodeLoggerConfig(value)
	case TracerConfig:
		return testTracerConfig(value)
	case TracerConfigWrapper:
		return testTracerConfigWrapper(value)
	case Object:
		if rule == nil || rule.Object == nil {
			return false, "object schema not configured"
		}
		m, ok := value.(map[string]any)
		if !ok {
			return false, "expected an object"
		}
		if err := ValidateObject(m, rule.Object, ""); err != nil {
			if ve, ok := err.(*Error); ok {
				return false, ve.Message
			}
			return false, err.Error()
		}
		return true, ""
	case String:
		_, ok := value.(string)
		if !ok {
			return false, "expected a string"
		}
		return true, ""
	case Number:
		_, ok := value.(float64)
		if !ok {
			return false, "expected a number"
		}
		return true, ""
	default:
		return false, fmt.Sprintf("unknown type tag %q", tag)
	}
}

func asObject(v any) (map[string]any, bool) {
	m, ok := v.(map[string]any)
	return m, ok
}

func testBlockNumberOrHash(v any) (bool, string) {
	if ok, _ := testBlockNumber(v); ok {
		return true, ""
	}
	if ok, _ := testBlockHash(v); ok {
		return true, ""
	}
	return false, "expected a block number, tag, or block hash"
}

// testBlockParams accepts a raw blockNumber, or {blockHash} / {blockNumber}
// object variants, matching go-ethereum's rpc.BlockNumberOrHash wire form.
func testBlockParams(v any) (bool, string) {
	if ok, _ := testBlockNumber(v); ok {
		return true, ""
	}
	m, ok := asObject(v)
	if !ok {
		return false, "expected a block number or a {blockHash}/{blockNumber} object"
	}
	_, hasHash := m["blockHash"]
	_, hasNumber := m["blockNumber"]
	if hasHash == hasNumber {
		return false, "expected exactly one of blockHash or blockNumber"
	}
	schema := &ObjectSchema{FailOnUnexpectedParams: true, Properties: map[string]PropertyRule{
		"blockHash":          {Types: []Tag{BlockHash}},
		"blockNumber":        {Types: []Tag{BlockNumber}},
		"requireCanonical":   {Types: []Tag{Boolean}, Nullable: false},
	}}
	if err := ValidateObject(m, schema, ""); err != nil {
		return false, err.Error()
	}
	return true, ""
}

// testFilter implements spec.md's eth_getLogs filter object: fromBlock,
// toBlock, blockHash, address, topics, with the blockHash/fromBlock-toBlock
// mutual exclusion rule.
func testFilter(v any) (bool, string) {
	m, ok := asObject(v)
	if !ok {
		return false, "expected a filter object"
	}
	_, hasHash := m["blockHash"]
	_, hasFrom := m["fromBlock"]
	_, hasTo := m["toBlock"]
	if hasHash && (hasFrom || hasTo) {
		return false, "Can't use both blockHash and toBlock/fromBlock"
	}
	schema := &ObjectSchema{FailOnUnexpectedParams: true, Properties: map[string]PropertyRule{
		"fromBlock": {Types: []Tag{BlockNumber}},
		"toBlock":   {Types: []Tag{BlockNumber}},
		"blockHash": {Types: []Tag{BlockHash}},
		"address":   {Types: []Tag{AddressFilter}},
		"topics":    {Types: []Tag{Topics}},
	}}
	if err := ValidateObject(m, schema, ""); err != nil {
		return false, err.Error()
	}
	return true, ""
}

// testTransaction implements the eth transaction-call object; unknown
// properties are silently removed (the teacher's own call-args decoder
// tolerates extra client-supplied fields the same way), to/data are
// nullable.
func testTransaction(v any) (bool, string) {
	m, ok := asObject(v)
	if !ok {
		return false, "expected a transaction object"
	}
	schema := &ObjectSchema{DeleteUnknownProperties: true, Properties: map[string]PropertyRule{
		"from":                 {Types: []Tag{Address}},
		"to":                   {Types: []Tag{Address}, Nullable: true},
		"gas":                  {Types: []Tag{Hex}},
		"gasPrice":             {Types: []Tag{Hex}},
		"maxPriorityFeePerGas": {Types: []Tag{Hex}},
		"maxFeePerGas":         {Types: []Tag{Hex}},
		"value":                {Types: []Tag{Hex}},
		"data":                 {Types: []Tag{HexEvenLength}, Nullable: true},
		"input":                {Types: []Tag{HexEvenLength}, Nullable: true},
		"type":                 {Types: []Tag{Hex}},
		"chainId":              {Types: []Tag{Hex}},
		"nonce":                {Types: []Tag{Hex}},
		"accessList":           {Types: []Tag{Array}},
	}}
	if err := ValidateObject(m, schema, ""); err != nil {
		return false, err.Error()
	}
	return true, ""
}

func testCallTracerConfig(v any) (bool, string) {
	m, ok := asObject(v)
	if !ok {
		return false, "expected a callTracer config object"
	}
	schema := &ObjectSchema{FailOnUnexpectedParams: true, Properties: map[string]PropertyRule{
		"onlyTopCall": {Types: []Tag{Boolean}},
	}}
	if err := ValidateObject(m, schema, ""); err != nil {
		return false, err.Error()
	}
	return true, ""
}

var opcodeLoggerKeys = []string{"enableMemory", "disableMemory", "disableStack", "disableStorage"}

func testOpcodeLoggerConfig(v any) (bool, string) {
	m, ok := asObject(v)
	if !ok {
		return false, "expected an opcode logger config object"
	}
	props := map[string]PropertyRule{}
	for _, k := range opcodeLoggerKeys {
		props[k] = PropertyRule{Types: []Tag{Boolean}}
	}
	schema := &ObjectSchema{FailOnUnexpectedParams: true, Properties: props}
	if err := ValidateObject(m, schema, ""); err != nil {
		return false, err.Error()
	}
	return true, ""
}

func isOpcodeLoggerShaped(m map[string]any) bool {
	for _, k := range opcodeLoggerKeys {
		if _, ok := m[k]; ok {
			return true
		}
	}
	return false
}

// testTracerConfig accepts {} or a valid callTracer config or a valid
// opcode-logger config.
func testTracerConfig(v any) (bool, string) {
	m, ok := asObject(v)
	if !ok {
		return false, "expected a tracer config object"
	}
	if len(m) == 0 {
		return true, ""
	}
	if isOpcodeLoggerShaped(m) {
		return testOpcodeLoggerConfig(v)
	}
	return testCallTracerConfig(v)
}

// testTracerConfigWrapper implements the {tracer?, tracerConfig?} object,
// rejecting a tracerConfig whose shape doesn't match the named tracer.
func testTracerConfigWrapper(v any) (bool, string) {
	m, ok := asObject(v)
	if !ok {
		return false, "expected a tracer config wrapper object"
	}
	tracerVal, hasTracer := m["tracer"]
	cfgVal, hasConfig := m["tracerConfig"]

	if hasTracer {
		if ok, msg := testTracerType(tracerVal, DefaultTracers); !ok {
			return false, msg
		}
	}
	if hasConfig {
		cfgMap, ok := asObject(cfgVal)
		if !ok {
			return false, "expected a tracer config object"
		}
		opcodeShaped := isOpcodeLoggerShaped(cfgMap)
		tracerName, _ := tracerVal.(string)
		if opcodeShaped && hasTracer && tracerName != "" {
			return false, "opcode-logger config keys are incompatible with a named tracer"
		}
		if !opcodeShaped && tracerName == "" && hasTracer {
			// tracer explicitly set to empty string with non-opcode config: fine, fall through.
		}
		if ok, msg := testTracerConfig(cfgVal); !ok {
			return false, msg
		}
	}
	for k := range m {
		if k != "tracer" && k != "tracerConfig" {
			return false, fmt.Sprintf("unknown property %q", k)
		}
	}
	return true, ""
}
