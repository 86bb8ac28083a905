package ckb

import (
	"context"
	"fmt"

	"github.com/anyswap/CKB-BatchTx/log"
	"github.com/anyswap/CKB-BatchTx/rpc/client"
	"github.com/anyswap/CKB-BatchTx/tokens"
	ckbtypes "github.com/anyswap/CKB-BatchTx/types"
	"github.com/nervosnetwork/ckb-sdk-go/indexer"
	"github.com/nervosnetwork/ckb-sdk-go/rpc"
	"github.com/nervosnetwork/ckb-sdk-go/types"
)

const (
	// ErrCodeDuplicatedTransaction PoolRejectedDuplicatedTransaction
	ErrCodeDuplicatedTransaction = -1107

	// outputs validator of send_transaction
	outputsValidator = "passthrough"
)

// transaction status returned by GetTransactionStatus
const (
	TxStatusUnknown   = "unknown"
	TxStatusPending   = "pending"
	TxStatusProposed  = "proposed"
	TxStatusCommitted = "committed"
	TxStatusRejected  = "rejected"
)

// Client chain rpc used by the batch procedures
type Client interface {
	GetCells(ctx context.Context, searchKey *indexer.SearchKey, order indexer.SearchOrder, limit uint64, afterCursor string) (*indexer.LiveCells, error)
	SendTransaction(ctx context.Context, tx *types.Transaction) (*types.Hash, error)
	BatchSendTransactions(ctx context.Context, txs []*types.Transaction) ([]types.Hash, error)
	GetTransactionStatus(ctx context.Context, hash types.Hash) (string, error)
}

// RPCClient node and indexer rpc client
type RPCClient struct {
	sdk        rpc.Client
	url        string
	rpcTimeout int
}

var _ Client = &RPCClient{}

// Dial connect to node and indexer
func Dial(url, indexerURL string, rpcTimeout int) (*RPCClient, error) {
	if indexerURL == "" {
		indexerURL = url
	}
	sdkClient, err := rpc.DialWithIndexer(url, indexerURL)
	if err != nil {
		return nil, fmt.Errorf("create rpc client error: %w", err)
	}
	log.Info("dial ckb node success", "url", url, "indexer", indexerURL)
	return &RPCClient{
		sdk:        sdkClient,
		url:        url,
		rpcTimeout: rpcTimeout,
	}, nil
}

// Close close the underlying connections
func (c *RPCClient) Close() {
	c.sdk.Close()
}

// GetCells get live cells by indexer search key
func (c *RPCClient) GetCells(ctx context.Context, searchKey *indexer.SearchKey, order indexer.SearchOrder, limit uint64, afterCursor string) (*indexer.LiveCells, error) {
	cells, err := c.sdk.GetCells(ctx, searchKey, order, limit, afterCursor)
	if err != nil {
		return nil, tokens.WrapRPCQueryError(err, "get_cells", afterCursor)
	}
	return cells, nil
}

// SendTransaction send one transaction
func (c *RPCClient) SendTransaction(ctx context.Context, tx *types.Transaction) (*types.Hash, error) {
	return c.sdk.SendTransaction(ctx, tx)
}

// BatchSendTransactions send transactions in one batch rpc call.
// Any failed element fails the whole call, a duplicated transaction
// is regarded as sent.
func (c *RPCClient) BatchSendTransactions(ctx context.Context, txs []*types.Transaction) ([]types.Hash, error) {
	results := make([]string, len(txs))
	elems := make([]*client.BatchElem, len(txs))
	for i, tx := range txs {
		elems[i] = &client.BatchElem{
			Method: "send_transaction",
			Params: []interface{}{ckbtypes.NewRPCTransaction(tx), outputsValidator},
			Result: &results[i],
		}
	}
	if err := tokens.RPCBatchCall(ctx, c.url, c.rpcTimeout, elems); err != nil {
		return nil, err
	}
	return collectBatchResults(txs, elems, results)
}

func collectBatchResults(txs []*types.Transaction, elems []*client.BatchElem, results []string) ([]types.Hash, error) {
	hashes := make([]types.Hash, len(txs))
	for i, elem := range elems {
		switch {
		case elem.Error == nil:
			hashes[i] = types.HexToHash(results[i])
		case client.IsRPCErrorCode(elem.Error, ErrCodeDuplicatedTransaction):
			hashes[i] = txs[i].Hash
			log.Warn("transaction is already in pool", "index", i, "txHash", txs[i].Hash.String())
		default:
			return nil, fmt.Errorf("%w: tx %d (%v): %v", tokens.ErrBatchSendFailed, i, txs[i].Hash.String(), elem.Error)
		}
	}
	return hashes, nil
}

type txStatusResult struct {
	TxStatus *struct {
		Status string `json:"status"`
	} `json:"tx_status"`
}

// GetTransactionStatus get status of transaction, unknown if the node never saw it
func (c *RPCClient) GetTransactionStatus(ctx context.Context, hash types.Hash) (string, error) {
	var result *txStatusResult
	err := tokens.RPCCall(ctx, &result, c.url, "get_transaction", hash.String())
	if err != nil {
		return "", err
	}
	if result == nil || result.TxStatus == nil || result.TxStatus.Status == "" {
		return TxStatusUnknown, nil
	}
	return result.TxStatus.Status, nil
}

// IsKnownTxStatus is the transaction accepted by the node (in pool or on chain)
func IsKnownTxStatus(status string) bool {
	switch status {
	case TxStatusPending, TxStatusProposed, TxStatusCommitted:
		return true
	default:
		return false
	}
}
