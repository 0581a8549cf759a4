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
	"fmt"
	"time"

	"github.com/r5-labs/r5-rpc-gateway/backend"
	"github.com/r5-labs/r5-rpc-gateway/rpc"
	"github.com/r5-labs/r5-rpc-gateway/validation"
)

// EthService implements the eth_* namespace: every call fans out to the
// archival ("mirror") client for reads and the consensus client for the one
// write path, eth_sendRawTransaction, per spec.md §2.
type EthService struct {
	archive   backend.Archive
	consensus backend.Consensus
	chainID   string
	filters   *filterManager
}

// NewEthService builds the eth_* handler set. maxFilters/filterTTL size the
// in-process filter-lifecycle registry (spec.md §6's filter methods).
func NewEthService(archive backend.Archive, consensus backend.Consensus, chainID string, maxFilters int, filterTTL time.Duration) *EthService {
	return &EthService{
		archive:   archive,
		consensus: consensus,
		chainID:   chainID,
		filters:   newFilterManager(maxFilters, filterTTL),
	}
}

func (s *EthService) get(path string) (any, error) {
	result, status, err := s.archive.Get(context.Background(), path)
	if err != nil {
		return nil, err
	}
	if status < 200 || status >= 300 {
		return nil, &backend.StatusError{Status: status, Message: fmt.Sprintf("archive returned status %d for %s", status, path)}
	}
	return result, nil
}

// ChainId returns the gateway's configured chain id, a constant per
// spec.md §2 — no archive round trip needed.
func (s *EthService) ChainId(args []any) (any, error) { return s.chainID, nil }

func (s *EthService) BlockNumber(args []any) (any, error) { return s.get("/blocks/latest/number") }

func (s *EthService) GasPrice(args []any) (any, error) { return s.get("/fees/gas-price") }

func (s *EthService) MaxPriorityFeePerGas(args []any) (any, error) { return "0x0", nil }

func (s *EthService) GetBalance(args []any) (any, error) {
	return s.get(fmt.Sprintf("/accounts/%s/balance?block=%s", stringAt(args, 0), stringAt(args, 1)))
}

func (s *EthService) GetTransactionCount(args []any) (any, error) {
	return s.get(fmt.Sprintf("/accounts/%s/nonce?block=%s", stringAt(args, 0), stringAt(args, 1)))
}

func (s *EthService) GetCode(args []any) (any, error) {
	return s.get(fmt.Sprintf("/accounts/%s/code?block=%s", stringAt(args, 0), stringAt(args, 1)))
}

func (s *EthService) GetStorageAt(args []any) (any, error) {
	return s.get(fmt.Sprintf("/accounts/%s/storage/%s?block=%s", stringAt(args, 0), stringAt(args, 1), stringAt(args, 2)))
}

func (s *EthService) GetBlockByNumber(args []any) (any, error) {
	return s.get(fmt.Sprintf("/blocks/%s?full=%v", stringAt(args, 0), boolAt(args, 1)))
}

func (s *EthService) GetBlockByHash(args []any) (any, error) {
	return s.get(fmt.Sprintf("/blocks/hash/%s?full=%v", stringAt(args, 0), boolAt(args, 1)))
}

func (s *EthService) GetBlockTransactionCountByHash(args []any) (any, error) {
	return s.get(fmt.Sprintf("/blocks/hash/%s/transaction-count", stringAt(args, 0)))
}

func (s *EthService) GetBlockTransactionCountByNumber(args []any) (any, error) {
	return s.get(fmt.Sprintf("/blocks/%s/transaction-count", stringAt(args, 0)))
}

func (s *EthService) GetUncleCountByBlockHash(args []any) (any, error) { return "0x0", nil }

func (s *EthService) GetUncleCountByBlockNumber(args []any) (any, error) { return "0x0", nil }

func (s *EthService) GetUncleByBlockHashAndIndex(args []any) (any, error) { return nil, nil }

func (s *EthService) GetUncleByBlockNumberAndIndex(args []any) (any, error) { return nil, nil }

func (s *EthService) GetTransactionByHash(args []any) (any, error) {
	return s.get(fmt.Sprintf("/transactions/%s", stringAt(args, 0)))
}

func (s *EthService) GetTransactionByBlockHashAndIndex(args []any) (any, error) {
	return s.get(fmt.Sprintf("/blocks/hash/%s/transactions/%s", stringAt(args, 0), stringAt(args, 1)))
}

func (s *EthService) GetTransactionByBlockNumberAndIndex(args []any) (any, error) {
	return s.get(fmt.Sprintf("/blocks/%s/transactions/%s", stringAt(args, 0), stringAt(args, 1)))
}

func (s *EthService) GetTransactionReceipt(args []any) (any, error) {
	return s.get(fmt.Sprintf("/transactions/%s/receipt", stringAt(args, 0)))
}

func (s *EthService) GetLogs(args []any) (any, error) {
	filterObj := objectAt(args, 0)
	return s.archiveLogs(filterObj)
}

func (s *EthService) archiveLogs(filterObj map[string]any) (any, error) {
	path := "/logs?" + encodeFilterQuery(filterObj)
	return s.get(path)
}

func (s *EthService) Call(args []any) (any, error) {
	tx := objectAt(args, 0)
	block := stringAt(args, 1)
	return s.get(fmt.Sprintf("/call?block=%s&tx=%s", block, encodeFilterQuery(tx)))
}

func (s *EthService) EstimateGas(args []any) (any, error) {
	tx := objectAt(args, 0)
	return s.get("/estimate-gas?tx=" + encodeFilterQuery(tx))
}

func (s *EthService) SendRawTransaction(args []any) (any, error) {
	raw := stringAt(args, 0)
	record, err := s.consensus.Submit(context.Background(), []byte(raw))
	if err != nil {
		return nil, err
	}
	return record, nil
}

// Filter lifecycle, adapted from the teacher's filters.Filter shape (begin/
// end/block/addresses/topics) onto an in-process registry since this
// gateway keeps no chain state of its own.

func (s *EthService) NewFilter(args []any) (any, error) {
	obj := objectAt(args, 0)
	f := &filter{kind: "log", createdAt: time.Now()}
	if v, ok := obj["address"]; ok {
		f.addresses = asStringSlice(v)
	}
	if v, ok := obj["topics"]; ok {
		f.topics = asTopics(v)
	}
	f.fromBlock, _ = obj["fromBlock"].(string)
	f.toBlock, _ = obj["toBlock"].(string)
	f.blockHash, _ = obj["blockHash"].(string)
	return s.filters.install(f), nil
}

func (s *EthService) NewBlockFilter(args []any) (any, error) {
	return s.filters.install(&filter{kind: "block", createdAt: time.Now()}), nil
}

func (s *EthService) NewPendingTransactionFilter(args []any) (any, error) {
	return s.filters.install(&filter{kind: "pendingTx", createdAt: time.Now()}), nil
}

func (s *EthService) GetFilterChanges(args []any) (any, error) {
	id := stringAt(args, 0)
	f, ok := s.filters.get(id)
	if !ok {
		return nil, rpc.InvalidParameter("unknown filter id " + id)
	}
	switch f.kind {
	case "block":
		return s.get("/blocks/changes-since-last-poll")
	case "pendingTx":
		return s.get("/transactions/pending/changes-since-last-poll")
	default:
		return s.archiveLogs(filterToObject(f))
	}
}

func (s *EthService) GetFilterLogs(args []any) (any, error) {
	id := stringAt(args, 0)
	f, ok := s.filters.get(id)
	if !ok {
		return nil, rpc.InvalidParameter("unknown filter id " + id)
	}
	return s.archiveLogs(filterToObject(f))
}

func (s *EthService) UninstallFilter(args []any) (any, error) {
	return s.filters.uninstall(stringAt(args, 0)), nil
}

// Deliberate constants and stubs, per spec.md §6.

func (s *EthService) Mining(args []any) (any, error)   { return false, nil }
func (s *EthService) Syncing(args []any) (any, error)  { return false, nil }
func (s *EthService) Hashrate(args []any) (any, error) { return "0x0", nil }
func (s *EthService) Accounts(args []any) (any, error) { return []string{}, nil }

func (s *EthService) Sign(args []any) (any, error) {
	return nil, rpc.MethodUnsupported("eth_sign")
}
func (s *EthService) SignTransaction(args []any) (any, error) {
	return nil, rpc.MethodUnsupported("eth_signTransaction")
}
func (s *EthService) SendTransaction(args []any) (any, error) {
	return nil, rpc.MethodUnsupported("eth_sendTransaction")
}
func (s *EthService) SubmitHashrate(args []any) (any, error) {
	return nil, rpc.MethodUnsupported("eth_submitHashrate")
}
func (s *EthService) GetWork(args []any) (any, error) {
	return nil, rpc.MethodUnsupported("eth_getWork")
}
func (s *EthService) ProtocolVersion(args []any) (any, error) {
	return nil, rpc.MethodUnsupported("eth_protocolVersion")
}
func (s *EthService) Coinbase(args []any) (any, error) {
	return nil, rpc.MethodUnsupported("eth_coinbase")
}
func (s *EthService) BlobBaseFee(args []any) (any, error) {
	return nil, rpc.MethodUnsupported("eth_blobBaseFee")
}
func (s *EthService) GetProof(args []any) (any, error) {
	return nil, rpc.MethodUnsupported("eth_getProof")
}
func (s *EthService) CreateAccessList(args []any) (any, error) {
	return nil, rpc.MethodUnsupported("eth_createAccessList")
}

// RPCMetadata attaches validation schemas to the operations that take
// parameters worth validating declaratively; everything else (constants,
// stubs, zero-arg reads) is registered schema-less.
func (s *EthService) RPCMetadata() map[string]rpc.OperationMetadata {
	addrBlock := validation.ParamSchema{
		0: {Types: []validation.Tag{validation.Address}, Required: true},
		1: {Types: []validation.Tag{validation.BlockNumber}},
	}
	return map[string]rpc.OperationMetadata{
		"GetBalance":          {Schema: &addrBlock},
		"GetTransactionCount": {Schema: &addrBlock},
		"GetCode":             {Schema: &addrBlock},
		"GetStorageAt": {Schema: &validation.ParamSchema{
			0: {Types: []validation.Tag{validation.Address}, Required: true},
			1: {Types: []validation.Tag{validation.Hex}, Required: true},
			2: {Types: []validation.Tag{validation.BlockNumber}},
		}},
		"GetBlockByNumber": {Schema: &validation.ParamSchema{
			0: {Types: []validation.Tag{validation.BlockNumber}, Required: true},
			1: {Types: []validation.Tag{validation.Boolean}, Required: true},
		}},
		"GetBlockByHash": {Schema: &validation.ParamSchema{
			0: {Types: []validation.Tag{validation.BlockHash}, Required: true},
			1: {Types: []validation.Tag{validation.Boolean}, Required: true},
		}},
		"GetTransactionByHash": {Schema: &validation.ParamSchema{
			0: {Types: []validation.Tag{validation.TransactionHash}, Required: true},
		}},
		"GetTransactionReceipt": {Schema: &validation.ParamSchema{
			0: {Types: []validation.Tag{validation.TransactionHash}, Required: true},
		}},
		"GetLogs": {Schema: &validation.ParamSchema{
			0: {Types: []validation.Tag{validation.Filter}, Required: true},
		}},
		"Call": {Schema: &validation.ParamSchema{
			0: {Types: []validation.Tag{validation.Transaction}, Required: true},
			1: {Types: []validation.Tag{validation.BlockNumber}},
		}},
		"EstimateGas": {Schema: &validation.ParamSchema{
			0: {Types: []validation.Tag{validation.Transaction}, Required: true},
		}},
		"SendRawTransaction": {Schema: &validation.ParamSchema{
			0: {Types: []validation.Tag{validation.HexEvenLength}, Required: true},
		}},
		"NewFilter": {Schema: &validation.ParamSchema{
			0: {Types: []validation.Tag{validation.Filter}, Required: true},
		}},
		"GetFilterChanges": {Schema: &validation.ParamSchema{
			0: {Types: []validation.Tag{validation.Hex}, Required: true},
		}},
		"GetFilterLogs": {Schema: &validation.ParamSchema{
			0: {Types: []validation.Tag{validation.Hex}, Required: true},
		}},
		"UninstallFilter": {Schema: &validation.ParamSchema{
			0: {Types: []validation.Tag{validation.Hex}, Required: true},
		}},
	}
}
