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

// NetService implements the net_* namespace. The gateway runs no P2P stack
// of its own, so "listening" and "peerCount" report the values a
// single-endpoint gateway should: always reachable, zero discovered peers.
type NetService struct {
	networkID string
}

// NewNetService builds the net_* handler set for the given network id
// (the value net_version returns).
func NewNetService(networkID string) *NetService {
	return &NetService{networkID: networkID}
}

func (s *NetService) Listening(args []any) (any, error) { return true, nil }

func (s *NetService) Version(args []any) (any, error) { return s.networkID, nil }

func (s *NetService) PeerCount(args []any) (any, error) { return "0x0", nil }
