// Package checkpoint persists the cells passed between the batch steps.
package checkpoint

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/anyswap/CKB-BatchTx/leveldb"
	"github.com/anyswap/CKB-BatchTx/log"
	"github.com/anyswap/CKB-BatchTx/types"
	"github.com/bits-and-blooms/bitset"
)

// store keys
const (
	KeyOfferCell  = "offerCell"
	KeySplitCells = "splitCells"
	KeyBatchSent  = "batchSent"

	journalPrefix = "journal/"
)

const (
	defaultCache   = 16
	defaultHandles = 16
)

// ErrNotFound key not in store
var ErrNotFound = errors.New("checkpoint not found")

// Store checkpoint store backed by leveldb
type Store struct {
	db leveldb.KeyValueStore
}

// Open open (or create) store in dir
func Open(dir string) (*Store, error) {
	db, err := leveldb.New(dir, defaultCache, defaultHandles, false)
	if err != nil {
		return nil, fmt.Errorf("open checkpoint store failed: %w", err)
	}
	log.Info("open checkpoint store success", "dir", dir)
	return &Store{db: db}, nil
}

// Close close store
func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) getJSON(key string, value interface{}) error {
	data, err := s.db.Get([]byte(key))
	if leveldb.IsNotFoundErr(err) {
		return ErrNotFound
	}
	if err != nil {
		return err
	}
	return json.Unmarshal(data, value)
}

func putJSON(w leveldb.KeyValueWriter, key string, value interface{}) error {
	data, err := json.Marshal(value)
	if err != nil {
		return err
	}
	return w.Put([]byte(key), data)
}

// GetOfferCell get the current offer cell
func (s *Store) GetOfferCell() (*types.Cell, error) {
	var cell types.Cell
	if err := s.getJSON(KeyOfferCell, &cell); err != nil {
		return nil, err
	}
	return &cell, nil
}

// SetOfferCell overwrite the offer cell
func (s *Store) SetOfferCell(cell *types.Cell) error {
	return putJSON(s.db, KeyOfferCell, cell)
}

// GetSplitCells get split cells, empty if none is recorded
func (s *Store) GetSplitCells() ([]*types.Cell, error) {
	var cells []*types.Cell
	err := s.getJSON(KeySplitCells, &cells)
	if errors.Is(err, ErrNotFound) {
		return []*types.Cell{}, nil
	}
	return cells, err
}

// ResetSplitCells clear split cells and the batch send progress of them
func (s *Store) ResetSplitCells() error {
	batch := s.db.NewBatch()
	if err := putJSON(batch, KeySplitCells, []*types.Cell{}); err != nil {
		return err
	}
	if err := batch.Delete([]byte(KeyBatchSent)); err != nil {
		return err
	}
	return batch.Write()
}

// GetBatchSent indexes of split cells already sent
func (s *Store) GetBatchSent() (*bitset.BitSet, error) {
	data, err := s.db.Get([]byte(KeyBatchSent))
	if leveldb.IsNotFoundErr(err) {
		return bitset.New(0), nil
	}
	if err != nil {
		return nil, err
	}
	sent := &bitset.BitSet{}
	if err = sent.UnmarshalBinary(data); err != nil {
		return nil, fmt.Errorf("decode batch sent progress failed: %w", err)
	}
	return sent, nil
}

func putBitSet(w leveldb.KeyValueWriter, key string, bs *bitset.BitSet) error {
	data, err := bs.MarshalBinary()
	if err != nil {
		return err
	}
	return w.Put([]byte(key), data)
}

// Summary overview of the store
type Summary struct {
	OfferCell      *types.Cell
	SplitCount     int
	SplitCapacity  uint64
	BatchSentCount uint
	PendingEntries []*Entry
}

// GetSummary read an overview of the store
func (s *Store) GetSummary() (*Summary, error) {
	summary := &Summary{}
	offer, err := s.GetOfferCell()
	switch {
	case err == nil:
		summary.OfferCell = offer
	case !errors.Is(err, ErrNotFound):
		return nil, err
	}
	cells, err := s.GetSplitCells()
	if err != nil {
		return nil, err
	}
	summary.SplitCount = len(cells)
	for _, cell := range cells {
		summary.SplitCapacity += cell.Capacity()
	}
	sent, err := s.GetBatchSent()
	if err != nil {
		return nil, err
	}
	summary.BatchSentCount = sent.Count()
	if summary.PendingEntries, err = s.PendingEntries(); err != nil {
		return nil, err
	}
	return summary, nil
}
