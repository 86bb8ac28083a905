package worker

import (
	"context"
	"fmt"

	"github.com/anyswap/CKB-BatchTx/checkpoint"
	"github.com/anyswap/CKB-BatchTx/tokens/ckb"
	ethcommon "github.com/ethereum/go-ethereum/common"
	"github.com/nervosnetwork/ckb-sdk-go/types"
)

type sendQueue struct {
	txs     []*types.Transaction
	indexes []uint
}

func (q *sendQueue) push(tx *types.Transaction, index int) {
	q.txs = append(q.txs, tx)
	q.indexes = append(q.indexes, uint(index))
}

func (q *sendQueue) len() int {
	return len(q.txs)
}

func (q *sendQueue) reset() {
	q.txs = nil
	q.indexes = nil
}

// BatchSendTransactions send one transaction for each unsent split cell,
// at most SendBatchSize transactions in one batch call
func (w *Worker) BatchSendTransactions(ctx context.Context) (sentCount int, err error) {
	if err = w.Recover(ctx); err != nil {
		return 0, err
	}
	cells, err := w.store.GetSplitCells()
	if err != nil {
		return 0, err
	}
	sent, err := w.store.GetBatchSent()
	if err != nil {
		return 0, err
	}
	total := len(cells)
	logWorker("batchsend", "start batch send transactions", "cells", total, "sent", sent.Count(), "batchSize", w.config.SendBatchSize)

	queue := &sendQueue{}
	var tx *types.Transaction
	for i, cell := range cells {
		if sent.Test(uint(i)) {
			continue
		}
		skeleton := ckb.NewTransactionSkeleton(w.chainParams)
		if err = skeleton.SetupInputCell(cell); err != nil {
			return sentCount, err
		}
		tx, err = ckb.PayAndSignTransaction(ctx, skeleton, w.key, w.config.FeeRate, nil)
		if err != nil {
			logWorkerError("batchsend", "build tx failed", err, "index", i, "cell", cell.OutPoint.Key())
			return sentCount, err
		}
		queue.push(tx, i)

		if queue.len() >= w.config.SendBatchSize {
			if err = w.flushQueue(ctx, queue); err != nil {
				return sentCount, err
			}
			sentCount += queue.len()
			logWorker("batchsend", fmt.Sprintf("progress %.2f%%", percent(i, total)), "sent", sentCount)
			queue.reset()
		}
	}

	if queue.len() > 0 {
		if err = w.flushQueue(ctx, queue); err != nil {
			return sentCount, err
		}
		sentCount += queue.len()
		logWorker("batchsend", "progress 100%", "sent", sentCount)
	}
	logWorker("batchsend", "batch send transactions finished", "sent", sentCount)
	return sentCount, nil
}

func (w *Worker) flushQueue(ctx context.Context, queue *sendQueue) error {
	if w.DryRun {
		for _, tx := range queue.txs {
			logWorkerTrace("batchsend", "dry run, skip sending tx", "txHash", tx.Hash.String())
		}
		logWorker("batchsend", "dry run, skip sending batch", "count", queue.len())
		return nil
	}

	hashes := make([]ethcommon.Hash, queue.len())
	for i, tx := range queue.txs {
		hashes[i] = ethcommon.Hash(tx.Hash)
	}
	entry := &checkpoint.Entry{
		Step:      checkpoint.StepBatchSend,
		TxHashes:  hashes,
		BatchSent: append([]uint{}, queue.indexes...),
	}
	if err := w.store.Begin(entry); err != nil {
		return err
	}
	if _, err := w.client.BatchSendTransactions(ctx, queue.txs); err != nil {
		// the journal entry is resolved by the next recovery
		logWorkerError("batchsend", "batch send transactions failed", err, "count", queue.len(), "first", hashes[0].Hex())
		return err
	}
	return w.store.Commit(entry)
}
