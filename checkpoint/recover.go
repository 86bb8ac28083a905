package checkpoint

import (
	"context"

	"github.com/anyswap/CKB-BatchTx/log"
	ckbtypes "github.com/nervosnetwork/ckb-sdk-go/types"
)

// TxChecker tells whether a transaction was accepted by the chain
type TxChecker interface {
	IsKnownTx(ctx context.Context, hash ckbtypes.Hash) (bool, error)
}

// Recover resolve pending journal entries left by an interrupted run.
// Entries whose transactions are known by the chain are committed,
// the others are discarded. A batch send entry commits the indexes
// of its known transactions only.
func (s *Store) Recover(ctx context.Context, checker TxChecker) (committed, discarded int, err error) {
	entries, err := s.PendingEntries()
	if err != nil {
		return 0, 0, err
	}
	for _, entry := range entries {
		known, err := knownTxs(ctx, checker, entry)
		if err != nil {
			return committed, discarded, err
		}

		if entry.Step == StepBatchSend {
			var sent []uint
			for i, ok := range known {
				if ok {
					sent = append(sent, entry.BatchSent[i])
				}
			}
			entry.BatchSent = sent
		} else if !allTrue(known) {
			entry.OfferCell = nil
			entry.SplitCells = nil
		}

		if entry.OfferCell == nil && len(entry.SplitCells) == 0 && len(entry.BatchSent) == 0 {
			if err = s.Discard(entry); err != nil {
				return committed, discarded, err
			}
			discarded++
			log.Warn("discard unsent journal entry", "id", entry.ID, "step", entry.Step, "txs", len(entry.TxHashes))
			continue
		}
		if err = s.Commit(entry); err != nil {
			return committed, discarded, err
		}
		committed++
		log.Info("recover journal entry", "id", entry.ID, "step", entry.Step, "txs", len(entry.TxHashes))
	}
	return committed, discarded, nil
}

func knownTxs(ctx context.Context, checker TxChecker, entry *Entry) ([]bool, error) {
	known := make([]bool, len(entry.TxHashes))
	for i, hash := range entry.TxHashes {
		ok, err := checker.IsKnownTx(ctx, ckbtypes.Hash(hash))
		if err != nil {
			return nil, err
		}
		known[i] = ok
	}
	return known, nil
}

func allTrue(values []bool) bool {
	for _, v := range values {
		if !v {
			return false
		}
	}
	return len(values) > 0
}
