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

// Web3Service implements the web3_* namespace.
type Web3Service struct {
	clientVersion string
}

// NewWeb3Service builds the web3_* handler set, reporting version as the
// gateway's own client identifier, the way a node reports its own build.
func NewWeb3Service(version string) *Web3Service {
	return &Web3Service{clientVersion: version}
}

func (s *Web3Service) ClientVersion(args []any) (any, error) { return s.clientVersion, nil }
