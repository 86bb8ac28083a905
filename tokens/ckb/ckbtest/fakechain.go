// Package ckbtest provides an in-memory chain for testing transaction builders.
package ckbtest

import (
	"bytes"
	"context"
	"encoding/binary"
	"errors"
	"fmt"
	"strconv"
	"sync"

	"github.com/ethereum/go-ethereum/crypto"
	"github.com/nervosnetwork/ckb-sdk-go/crypto/blake2b"
	"github.com/nervosnetwork/ckb-sdk-go/indexer"
	"github.com/nervosnetwork/ckb-sdk-go/transaction"
	"github.com/nervosnetwork/ckb-sdk-go/types"
)

// errors returned by the fake chain
var (
	ErrUnknownInput     = errors.New("unknown or dead input cell")
	ErrOutputsOverflow  = errors.New("outputs capacity exceeds inputs capacity")
	ErrHashMismatch     = errors.New("transaction hash mismatch")
	ErrMissingSignature = errors.New("missing signature witness")
	ErrInvalidSignature = errors.New("signature does not match the input lock")
	ErrInjected         = errors.New("injected send error")
)

type liveCell struct {
	seq      uint64
	outPoint *types.OutPoint
	output   *types.CellOutput
	data     []byte
	dead     bool
}

// FakeChain in-memory live cells and transaction pool
type FakeChain struct {
	mu sync.Mutex

	seq     uint64
	cells   []*liveCell
	byPoint map[types.OutPoint]*liveCell
	txs     map[types.Hash]string

	// Sent transactions accepted in order
	Sent []*types.Transaction
	// BatchSizes sizes of every batch call
	BatchSizes []int
	// FailBatch fail the batch call of this number (1 based), 0 means never
	FailBatch int
	// FailSend fail single send calls
	FailSend bool
	// GetCellsCalls number of get cells calls
	GetCellsCalls int
}

// NewFakeChain new empty chain
func NewFakeChain() *FakeChain {
	return &FakeChain{
		byPoint: make(map[types.OutPoint]*liveCell),
		txs:     make(map[types.Hash]string),
	}
}

// AddCell add a live cell created by a fake genesis transaction
func (f *FakeChain) AddCell(output *types.CellOutput, data []byte) *types.OutPoint {
	f.mu.Lock()
	defer f.mu.Unlock()
	var txHash types.Hash
	copy(txHash[:], []byte(fmt.Sprintf("genesis-%024d", f.seq)))
	op := &types.OutPoint{TxHash: txHash, Index: 0}
	f.addCell(op, output, data)
	return op
}

func (f *FakeChain) addCell(op *types.OutPoint, output *types.CellOutput, data []byte) {
	f.seq++
	outputCopy := *output
	cell := &liveCell{
		seq:      f.seq,
		outPoint: op,
		output:   &outputCopy,
		data:     append([]byte{}, data...),
	}
	f.cells = append(f.cells, cell)
	f.byPoint[*op] = cell
}

// IsLive is the cell of out point live
func (f *FakeChain) IsLive(op *types.OutPoint) bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	cell, exist := f.byPoint[*op]
	return exist && !cell.dead
}

// LiveCellsCount number of live cells
func (f *FakeChain) LiveCellsCount() (count int) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, cell := range f.cells {
		if !cell.dead {
			count++
		}
	}
	return count
}

// SetTxStatus set status of a transaction
func (f *FakeChain) SetTxStatus(hash types.Hash, status string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.txs[hash] = status
}

// GetCells ascending live cells of the lock, cursor is the sequence of the last cell
func (f *FakeChain) GetCells(_ context.Context, searchKey *indexer.SearchKey, _ indexer.SearchOrder, limit uint64, afterCursor string) (*indexer.LiveCells, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.GetCellsCalls++

	var after uint64
	if afterCursor != "" {
		var err error
		if after, err = strconv.ParseUint(afterCursor, 0, 64); err != nil {
			return nil, fmt.Errorf("invalid cursor %v", afterCursor)
		}
	}
	result := &indexer.LiveCells{LastCursor: afterCursor}
	for _, cell := range f.cells {
		if uint64(len(result.Objects)) >= limit {
			break
		}
		if cell.dead || cell.seq <= after || !sameScript(cell.output.Lock, searchKey.Script) {
			continue
		}
		outputCopy := *cell.output
		result.Objects = append(result.Objects, &indexer.LiveCell{
			OutPoint:   &types.OutPoint{TxHash: cell.outPoint.TxHash, Index: cell.outPoint.Index},
			Output:     &outputCopy,
			OutputData: append([]byte{}, cell.data...),
		})
		result.LastCursor = "0x" + strconv.FormatUint(cell.seq, 16)
	}
	return result, nil
}

// SendTransaction validate and apply one transaction
func (f *FakeChain) SendTransaction(_ context.Context, tx *types.Transaction) (*types.Hash, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.FailSend {
		return nil, ErrInjected
	}
	if _, exist := f.txs[tx.Hash]; exist {
		return nil, fmt.Errorf("duplicated transaction %v", tx.Hash.String())
	}
	if err := f.apply(tx); err != nil {
		return nil, err
	}
	hash := tx.Hash
	return &hash, nil
}

// BatchSendTransactions apply transactions in one call, known transactions are skipped
func (f *FakeChain) BatchSendTransactions(_ context.Context, txs []*types.Transaction) ([]types.Hash, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.BatchSizes = append(f.BatchSizes, len(txs))
	if f.FailBatch == len(f.BatchSizes) {
		return nil, ErrInjected
	}
	hashes := make([]types.Hash, len(txs))
	for i, tx := range txs {
		if _, exist := f.txs[tx.Hash]; !exist {
			if err := f.apply(tx); err != nil {
				return nil, fmt.Errorf("tx %d: %w", i, err)
			}
		}
		hashes[i] = tx.Hash
	}
	return hashes, nil
}

// GetTransactionStatus status of transaction, unknown if never sent
func (f *FakeChain) GetTransactionStatus(_ context.Context, hash types.Hash) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if status, exist := f.txs[hash]; exist {
		return status, nil
	}
	return "unknown", nil
}

func (f *FakeChain) apply(tx *types.Transaction) error {
	hash, err := tx.ComputeHash()
	if err != nil {
		return err
	}
	if hash != tx.Hash {
		return ErrHashMismatch
	}
	var inputsCapacity, outputsCapacity uint64
	for _, input := range tx.Inputs {
		cell, exist := f.byPoint[*input.PreviousOutput]
		if !exist || cell.dead {
			return fmt.Errorf("%w: %v:%d", ErrUnknownInput, input.PreviousOutput.TxHash.String(), input.PreviousOutput.Index)
		}
		inputsCapacity += cell.output.Capacity
	}
	for _, output := range tx.Outputs {
		outputsCapacity += output.Capacity
	}
	if outputsCapacity > inputsCapacity {
		return fmt.Errorf("%w: %v > %v", ErrOutputsOverflow, outputsCapacity, inputsCapacity)
	}
	if err = verifySignatures(tx, f.byPoint); err != nil {
		return err
	}

	for _, input := range tx.Inputs {
		f.byPoint[*input.PreviousOutput].dead = true
	}
	for i, output := range tx.Outputs {
		f.addCell(&types.OutPoint{TxHash: tx.Hash, Index: uint(i)}, output, tx.OutputsData[i])
	}
	f.txs[tx.Hash] = "pending"
	f.Sent = append(f.Sent, tx)
	return nil
}

func sameScript(a, b *types.Script) bool {
	if a == nil || b == nil {
		return a == b
	}
	return a.CodeHash == b.CodeHash && a.HashType == b.HashType && string(a.Args) == string(b.Args)
}

// verifySignatures check every lock group the way secp256k1_blake160 does:
// the signature in the first witness of a group recovers to the lock args.
func verifySignatures(tx *types.Transaction, cells map[types.OutPoint]*liveCell) error {
	var seen []*types.Script
	for start := 0; start < len(tx.Inputs); {
		lock := cells[*tx.Inputs[start].PreviousOutput].output.Lock
		end := start + 1
		for end < len(tx.Inputs) && sameScript(cells[*tx.Inputs[end].PreviousOutput].output.Lock, lock) {
			end++
		}
		for _, earlier := range seen {
			if sameScript(earlier, lock) {
				return fmt.Errorf("%w: lock group split at input %d", ErrInvalidSignature, start)
			}
		}
		if start >= len(tx.Witnesses) {
			return ErrMissingSignature
		}
		signature, err := witnessLock(tx.Witnesses[start])
		if err != nil {
			return err
		}
		message, err := transaction.SingleSegmentSignMessage(tx, start, end, transaction.EmptyWitnessArg)
		if err != nil {
			return err
		}
		pub, err := crypto.SigToPub(message, signature)
		if err != nil {
			return fmt.Errorf("%w: input %d: %v", ErrInvalidSignature, start, err)
		}
		pubHash, err := blake2b.Blake256(crypto.CompressPubkey(pub))
		if err != nil {
			return err
		}
		if !bytes.Equal(pubHash[:20], lock.Args) {
			return fmt.Errorf("%w: input %d", ErrInvalidSignature, start)
		}
		seen = append(seen, lock)
		start = end
	}
	return nil
}

// witnessLock the lock field of a WitnessArgs table
func witnessLock(witness []byte) ([]byte, error) {
	const header = 16
	if len(witness) < header {
		return nil, ErrMissingSignature
	}
	lockStart := binary.LittleEndian.Uint32(witness[4:8])
	lockEnd := binary.LittleEndian.Uint32(witness[8:12])
	if lockEnd-lockStart != 4+65 || int(lockEnd) > len(witness) {
		return nil, ErrMissingSignature
	}
	return witness[lockStart+4 : lockEnd], nil
}
