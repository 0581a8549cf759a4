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

import "github.com/r5-labs/r5-rpc-gateway/rpc"

// A service method whose RPCMetadata attaches a declarative schema has its
// params validated before the dispatcher calls it. These helpers never
// re-validate: they type-assert, and return the zero value when an argument
// is missing or of another type.

func stringAt(args []any, i int) string {
	if i >= len(args) {
		return ""
	}
	s, _ := args[i].(string)
	return s
}

func objectAt(args []any, i int) map[string]any {
	if i >= len(args) {
		return nil
	}
	o, _ := args[i].(map[string]any)
	return o
}

func boolAt(args []any, i int) bool {
	if i >= len(args) {
		return false
	}
	b, _ := args[i].(bool)
	return b
}

// requestDetailsOf extracts the RequestDetails the dispatcher appended to
// args. When an operation's Arrange function leaves it out, the zero
// RequestDetails is returned.
func requestDetailsOf(args []any) rpc.RequestDetails {
	for _, a := range args {
		if rd, ok := a.(rpc.RequestDetails); ok {
			return rd
		}
	}
	return rpc.RequestDetails{}
}
