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

// Package validation is a declarative schema evaluator for JSON-RPC
// positional parameter lists and the composite object shapes Ethereum
// tooling sends (filters, transactions, tracer configs).
package validation

// Tag names one of the primitive or composite type testers in the catalogue.
type Tag string

const (
	Address             Tag = "address"
	AddressFilter       Tag = "addressFilter"
	Array               Tag = "array"
	BlockHash           Tag = "blockHash"
	BlockNumber         Tag = "blockNumber"
	BlockNumberOrHash   Tag = "blockNumberOrHash"
	BlockParams         Tag = "blockParams"
	Boolean             Tag = "boolean"
	Filter              Tag = "filter"
	Hex                 Tag = "hex"
	HexEvenLength       Tag = "hexEvenLength"
	Hex64               Tag = "hex64"
	TopicHash           Tag = "topicHash"
	Topics              Tag = "topics"
	Transaction         Tag = "transaction"
	TransactionHash     Tag = "transactionHash"
	TracerType          Tag = "tracerType"
	CallTracerConfig    Tag = "callTracerConfig"
	OpcodeLoggerConfig  Tag = "opcodeLoggerConfig"
	TracerConfig        Tag = "tracerConfig"
	TracerConfigWrapper Tag = "tracerConfigWrapper"
	Object              Tag = "object" // a caller-supplied nested ObjectSchema, no built-in shape
	String              Tag = "string"
	Number              Tag = "number"
)

// Rule describes the validation applied to one positional parameter.
type Rule struct {
	// Types is the disjunction of acceptable tags; len==1 is the common case.
	Types []Tag
	// Required, when true, makes a missing value a hard error. When false, a
	// missing value is accepted and skipped (but an explicit null is still
	// rejected — nullability only applies inside object schemas).
	Required bool
	// ErrorMessage overrides the generated message on failure, if set.
	ErrorMessage string
	// Object supplies the nested schema when Types contains Object.
	Object *ObjectSchema
	// ElementType supplies the element tag when Types contains Array; nil
	// means "any array, untyped elements".
	ElementType *Tag
}

// ParamSchema maps a zero-based positional parameter index to its Rule.
type ParamSchema map[int]Rule

// PropertyRule describes the validation applied to one named property of an
// object parameter.
type PropertyRule struct {
	Types    []Tag
	Nullable bool
	Required bool
	Object   *ObjectSchema
}

// ObjectSchema describes a composite object parameter.
type ObjectSchema struct {
	Properties              map[string]PropertyRule
	FailOnUnexpectedParams   bool
	DeleteUnknownProperties  bool
	FailOnEmpty              bool
}
