package worker

import (
	"context"
	"errors"
	"fmt"

	"github.com/anyswap/CKB-BatchTx/checkpoint"
	"github.com/anyswap/CKB-BatchTx/common"
	"github.com/anyswap/CKB-BatchTx/tokens"
	"github.com/anyswap/CKB-BatchTx/tokens/ckb"
	ckbtypes "github.com/anyswap/CKB-BatchTx/types"
	ethcommon "github.com/ethereum/go-ethereum/common"
	"github.com/nervosnetwork/ckb-sdk-go/types"
)

// capacity deducted from the recorded change of each split tx.
// A fee above it is deducted instead, the recorded offer never exceeds the change output.
var offerReserve = common.ShannonsPerCKB

// splitMargin capacity the offer cell needs beyond the split cells:
// the change cell kept by the last split tx and the reserve of every split tx.
// Fees are paid from the reserves, a higher fee needs more.
func (w *Worker) splitMargin() uint64 {
	change := ckb.OccupiedCapacity(&types.CellOutput{Lock: w.sender()}, nil)
	chunks := (w.config.TxCount + w.config.SplitChunk - 1) / w.config.SplitChunk
	return change + uint64(chunks)*offerReserve
}

// SplitCells split the offer cell into TxCount split cells.
// It resumes from the split cells already recorded unless reset is true.
func (w *Worker) SplitCells(ctx context.Context, reset bool) error {
	if err := w.Recover(ctx); err != nil {
		return err
	}
	if reset && !w.DryRun {
		if err := w.store.ResetSplitCells(); err != nil {
			return err
		}
		logWorker("split", "reset split cells")
	}

	offerCell, err := w.store.GetOfferCell()
	if errors.Is(err, checkpoint.ErrNotFound) {
		return fmt.Errorf("no offer cell, please merge utxos first")
	}
	if err != nil {
		return err
	}
	splitCells, err := w.store.GetSplitCells()
	if err != nil {
		return err
	}

	txCount := w.config.TxCount
	produced := len(splitCells)
	if reset && w.DryRun {
		produced = 0
	}
	if produced >= txCount {
		logWorker("split", "split cells are enough", "count", produced, "txCount", txCount)
		return nil
	}
	logWorker("split", "start split cells", "produced", produced, "txCount", txCount, "offer", offerCell.Capacity())

	for produced < txCount {
		chunk := minInt(w.config.SplitChunk, txCount-produced)
		tx, nextOffer, newCells, err := w.buildSplitTx(ctx, offerCell, chunk)
		if err != nil {
			logWorkerError("split", "build split tx failed", err, "produced", produced, "chunk", chunk)
			return err
		}

		if w.DryRun {
			logWorker("split", "dry run, skip sending split cell tx", "txHash", tx.Hash.String(), "chunk", chunk)
		} else {
			entry := &checkpoint.Entry{
				Step:       checkpoint.StepSplit,
				TxHashes:   []ethcommon.Hash{ethcommon.Hash(tx.Hash)},
				OfferCell:  nextOffer,
				SplitCells: newCells,
			}
			if err = w.sendWithJournal(ctx, tx, entry); err != nil {
				logWorkerError("split", "send split cell tx failed", err, "txHash", tx.Hash.String())
				return err
			}
		}

		logWorker("split", fmt.Sprintf("split cell tx (%.0f%%)", percent(produced, txCount)),
			"txHash", tx.Hash.String(), "chunk", chunk, "change", tx.Outputs[0].Capacity, "offer", nextOffer.Capacity())
		produced += chunk
		offerCell = nextOffer
	}
	logWorker("split", "split cells finished", "count", produced)
	return nil
}

// buildSplitTx spend offer cell to [change, split cell * chunk].
// The next offer cell records the change minus the reserve,
// or the change output itself when the fee is higher than the reserve.
func (w *Worker) buildSplitTx(ctx context.Context, offerCell *ckbtypes.Cell, chunk int) (*types.Transaction, *ckbtypes.Cell, []*ckbtypes.Cell, error) {
	sender := w.sender()
	splitCapacity := w.cellCapacity() * uint64(chunk)
	changeOutput := &types.CellOutput{Lock: sender}
	minChange := splitCapacity + ckb.OccupiedCapacity(changeOutput, nil) + offerReserve
	if offerCell.Capacity() < minChange {
		return nil, nil, nil, fmt.Errorf("%w: offer capacity %v is lower than %v",
			tokens.ErrInsufficientFunds, offerCell.Capacity(), minChange)
	}
	changeCapacity := offerCell.Capacity() - splitCapacity
	changeOutput.Capacity = changeCapacity

	skeleton := ckb.NewTransactionSkeleton(w.chainParams)
	if err := skeleton.SetupInputCell(offerCell); err != nil {
		return nil, nil, nil, err
	}
	skeleton.AddOutput(changeOutput, nil)
	for i := 0; i < chunk; i++ {
		skeleton.AddOutput(&types.CellOutput{Capacity: w.cellCapacity(), Lock: sender}, nil)
	}

	tx, err := ckb.PayAndSignTransaction(ctx, skeleton, w.key, w.config.FeeRate, nil)
	if err != nil {
		return nil, nil, nil, err
	}

	nextOffer := ckbtypes.NewCell(
		&types.CellOutput{Capacity: minUint64(changeCapacity-offerReserve, tx.Outputs[0].Capacity), Lock: sender},
		nil,
		&types.OutPoint{TxHash: tx.Hash, Index: 0},
	)
	newCells := make([]*ckbtypes.Cell, chunk)
	for i := range newCells {
		newCells[i] = ckbtypes.NewCell(tx.Outputs[i+1], nil, &types.OutPoint{TxHash: tx.Hash, Index: uint(i + 1)})
	}
	logWorkerTrace("split", "build split tx", "txHash", tx.Hash.String(), "fee", changeCapacity-tx.Outputs[0].Capacity)
	return tx, nextOffer, newCells, nil
}
