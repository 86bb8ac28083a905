package worker

import (
	"context"
	"fmt"

	"github.com/anyswap/CKB-BatchTx/checkpoint"
	"github.com/anyswap/CKB-BatchTx/common"
	"github.com/anyswap/CKB-BatchTx/params"
	"github.com/anyswap/CKB-BatchTx/tokens/ckb"
	"github.com/nervosnetwork/ckb-sdk-go/types"
)

// Worker runs the batch procedures of one sender
type Worker struct {
	client      ckb.Client
	store       *checkpoint.Store
	key         *ckb.Key
	chainParams *ckb.ChainParams
	config      *params.BatchConfig

	// DryRun build and sign transactions without sending or persisting them
	DryRun bool
}

// NewWorker new worker
func NewWorker(client ckb.Client, store *checkpoint.Store, key *ckb.Key, chainParams *ckb.ChainParams, config *params.BatchConfig) *Worker {
	return &Worker{
		client:      client,
		store:       store,
		key:         key,
		chainParams: chainParams,
		config:      config,
	}
}

func (w *Worker) cellCapacity() uint64 {
	return common.CKBToShannons(w.config.CellCapacity)
}

func (w *Worker) sender() *types.Script {
	return w.key.LockScript()
}

// IsKnownTx implements checkpoint.TxChecker
func (w *Worker) IsKnownTx(ctx context.Context, hash types.Hash) (bool, error) {
	status, err := w.client.GetTransactionStatus(ctx, hash)
	if err != nil {
		return false, err
	}
	return ckb.IsKnownTxStatus(status), nil
}

// Recover resolve journal entries left by an interrupted run
func (w *Worker) Recover(ctx context.Context) error {
	committed, discarded, err := w.store.Recover(ctx, w)
	if err != nil {
		return fmt.Errorf("recover checkpoint journal failed: %w", err)
	}
	if committed+discarded > 0 {
		logWorker("recover", "recover checkpoint journal finished", "committed", committed, "discarded", discarded)
	}
	return nil
}

// sendWithJournal send one transaction, entry is committed after the sending succeeds
func (w *Worker) sendWithJournal(ctx context.Context, tx *types.Transaction, entry *checkpoint.Entry) error {
	if err := w.store.Begin(entry); err != nil {
		return err
	}
	hash, err := w.client.SendTransaction(ctx, tx)
	if err != nil {
		// the journal entry is resolved by the next recovery
		return fmt.Errorf("send transaction %v failed: %w", tx.Hash.String(), err)
	}
	if *hash != tx.Hash {
		logWorkerWarn(entry.Step, "sent tx hash mismatch", "local", tx.Hash.String(), "remote", hash.String())
	}
	return w.store.Commit(entry)
}
