package worker

import (
	"context"

	"github.com/anyswap/CKB-BatchTx/checkpoint"
	"github.com/anyswap/CKB-BatchTx/tokens/ckb"
	ckbtypes "github.com/anyswap/CKB-BatchTx/types"
	ethcommon "github.com/ethereum/go-ethereum/common"
	"github.com/nervosnetwork/ckb-sdk-go/types"
)

// MergeUtxos merge sender cells into one offer cell holding
// enough capacity for all the split cells. Collecting stops at
// CellCapacity * TxCount, the split txs need splitMargin more,
// a warning is logged when the offer cell lacks it.
func (w *Worker) MergeUtxos(ctx context.Context) (types.Hash, error) {
	if err := w.Recover(ctx); err != nil {
		return types.Hash{}, err
	}
	target := w.cellCapacity() * uint64(w.config.TxCount)
	logWorker("merge", "start merge utxos", "target", target, "maxCells", w.config.MaxCollectCells)

	collector := ckb.NewCellCollector(w.client, w.sender(), w.config.MaxCollectCells)
	collected, err := collector.Collect(ctx, target)
	if err != nil {
		logWorkerError("merge", "collect cells failed", err, "target", target)
		return types.Hash{}, err
	}

	skeleton := ckb.NewTransactionSkeleton(w.chainParams)
	for _, cell := range collected.Cells {
		if err = skeleton.SetupInputCell(cell); err != nil {
			return types.Hash{}, err
		}
	}
	skeleton.AddOutput(&types.CellOutput{
		Capacity: collected.Capacity,
		Lock:     w.sender(),
	}, nil)

	tx, err := ckb.PayAndSignTransaction(ctx, skeleton, w.key, w.config.FeeRate, collector)
	if err != nil {
		logWorkerError("merge", "build merge tx failed", err)
		return types.Hash{}, err
	}

	// output 0 holds the collected capacity minus fee
	offerCell := ckbtypes.NewCell(tx.Outputs[0], nil, &types.OutPoint{TxHash: tx.Hash, Index: 0})
	logWorker("merge", "build merge tx success", "txHash", tx.Hash.String(),
		"inputs", len(tx.Inputs), "collected", collected.Capacity, "offer", offerCell.Capacity())
	if required := target + w.splitMargin(); offerCell.Capacity() < required {
		logWorkerWarn("merge", "offer cell can not hold the split cells and the change cell, split will stop early",
			"offer", offerCell.Capacity(), "required", required)
	}

	if w.DryRun {
		logWorker("merge", "dry run, skip sending merge tx", "txHash", tx.Hash.String())
		return tx.Hash, nil
	}

	entry := &checkpoint.Entry{
		Step:      checkpoint.StepMerge,
		TxHashes:  []ethcommon.Hash{ethcommon.Hash(tx.Hash)},
		OfferCell: offerCell,
	}
	if err = w.sendWithJournal(ctx, tx, entry); err != nil {
		logWorkerError("merge", "send merge tx failed", err, "txHash", tx.Hash.String())
		return types.Hash{}, err
	}
	logWorker("merge", "merge utxo success, please wait for the confirmation", "txHash", tx.Hash.String())
	return tx.Hash, nil
}
