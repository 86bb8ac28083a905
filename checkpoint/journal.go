package checkpoint

import (
	"encoding/json"
	"fmt"
	"sort"
	"time"

	"github.com/anyswap/CKB-BatchTx/log"
	"github.com/anyswap/CKB-BatchTx/types"
	ethcommon "github.com/ethereum/go-ethereum/common"
	"github.com/pborman/uuid"
)

// steps recorded in journal entries
const (
	StepMerge     = "merge"
	StepSplit     = "split"
	StepBatchSend = "batchsend"
)

// Entry write ahead record of a submission and the updates
// to apply once the submission succeeds
type Entry struct {
	ID        string           `json:"id"`
	Step      string           `json:"step"`
	TxHashes  []ethcommon.Hash `json:"txHashes"`
	Timestamp int64            `json:"timestamp"`

	// OfferCell replaces the offer cell
	OfferCell *types.Cell `json:"offerCell,omitempty"`
	// SplitCells are appended to the split cells
	SplitCells []*types.Cell `json:"splitCells,omitempty"`
	// BatchSent split cell indexes sent by TxHashes, one for each
	BatchSent []uint `json:"batchSent,omitempty"`
}

func journalKey(id string) []byte {
	return []byte(journalPrefix + id)
}

// Begin write a pending entry before submission
func (s *Store) Begin(entry *Entry) error {
	if entry.Step == StepBatchSend && len(entry.BatchSent) != len(entry.TxHashes) {
		return fmt.Errorf("journal entry has %d batch sent indexes for %d txs", len(entry.BatchSent), len(entry.TxHashes))
	}
	entry.ID = uuid.New()
	entry.Timestamp = time.Now().Unix()
	if err := putJSON(s.db, string(journalKey(entry.ID)), entry); err != nil {
		return fmt.Errorf("write journal entry failed: %w", err)
	}
	log.Debug("begin journal entry", "id", entry.ID, "step", entry.Step, "txs", len(entry.TxHashes))
	return nil
}

// Commit apply the updates of entry and remove it atomically
func (s *Store) Commit(entry *Entry) error {
	batch := s.db.NewBatch()
	if entry.OfferCell != nil {
		if err := putJSON(batch, KeyOfferCell, entry.OfferCell); err != nil {
			return err
		}
	}
	if len(entry.SplitCells) > 0 {
		cells, err := s.GetSplitCells()
		if err != nil {
			return err
		}
		if err = putJSON(batch, KeySplitCells, append(cells, entry.SplitCells...)); err != nil {
			return err
		}
	}
	if len(entry.BatchSent) > 0 {
		sent, err := s.GetBatchSent()
		if err != nil {
			return err
		}
		for _, index := range entry.BatchSent {
			sent.Set(index)
		}
		if err = putBitSet(batch, KeyBatchSent, sent); err != nil {
			return err
		}
	}
	if err := batch.Delete(journalKey(entry.ID)); err != nil {
		return err
	}
	if err := batch.Write(); err != nil {
		return fmt.Errorf("commit journal entry %v failed: %w", entry.ID, err)
	}
	log.Debug("commit journal entry", "id", entry.ID, "step", entry.Step)
	return nil
}

// Discard remove entry without applying it
func (s *Store) Discard(entry *Entry) error {
	log.Debug("discard journal entry", "id", entry.ID, "step", entry.Step)
	return s.db.Delete(journalKey(entry.ID))
}

// PendingEntries entries begun but neither committed nor discarded
func (s *Store) PendingEntries() ([]*Entry, error) {
	iter := s.db.NewIterator([]byte(journalPrefix), nil)
	defer iter.Release()

	var entries []*Entry
	for iter.Next() {
		var entry Entry
		if err := json.Unmarshal(iter.Value(), &entry); err != nil {
			return nil, fmt.Errorf("decode journal entry %s failed: %w", string(iter.Key()), err)
		}
		entries = append(entries, &entry)
	}
	if err := iter.Error(); err != nil {
		return nil, err
	}
	sort.SliceStable(entries, func(i, j int) bool { return entries[i].Timestamp < entries[j].Timestamp })
	return entries, nil
}
