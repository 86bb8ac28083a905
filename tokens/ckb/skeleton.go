package ckb

import (
	"fmt"

	"github.com/anyswap/CKB-BatchTx/common"
	"github.com/anyswap/CKB-BatchTx/tokens"
	ckbtypes "github.com/anyswap/CKB-BatchTx/types"
	"github.com/nervosnetwork/ckb-sdk-go/transaction"
	"github.com/nervosnetwork/ckb-sdk-go/types"
)

// TransactionSkeleton mutable transaction builder which keeps
// the full cell info of its inputs
type TransactionSkeleton struct {
	params *ChainParams

	inputCells  []*ckbtypes.Cell
	inputs      []*types.CellInput
	outputs     []*types.CellOutput
	outputsData [][]byte
	cellDeps    []*types.CellDep
	headerDeps  []types.Hash
	witnesses   [][]byte

	lockGroups     map[types.Hash]bool
	signingEntries []*SigningEntry
}

// NewTransactionSkeleton new empty skeleton
func NewTransactionSkeleton(params *ChainParams) *TransactionSkeleton {
	return &TransactionSkeleton{
		params:     params,
		lockGroups: make(map[types.Hash]bool),
	}
}

// PlaceholderWitness witness args with zero filled signature
func PlaceholderWitness() ([]byte, error) {
	return transaction.EmptyWitnessArg.Serialize()
}

// SetupInputCell add input cell, its witness slot and the cell dep of its lock
func (s *TransactionSkeleton) SetupInputCell(cell *ckbtypes.Cell) error {
	if cell == nil || cell.CellOutput == nil || cell.OutPoint == nil {
		return fmt.Errorf("input cell without out point")
	}
	lock := cell.CellOutput.Lock.ToCKB()
	if !s.params.IsSecp256k1Lock(lock) {
		return fmt.Errorf("%w: input %v", tokens.ErrUnsupportedLock, cell.OutPoint.Key())
	}
	lockHash, err := lock.Hash()
	if err != nil {
		return err
	}
	witness := []byte{}
	if !s.lockGroups[lockHash] {
		if witness, err = PlaceholderWitness(); err != nil {
			return err
		}
		s.lockGroups[lockHash] = true
	}

	s.inputCells = append(s.inputCells, cell)
	s.inputs = append(s.inputs, &types.CellInput{
		Since:          0,
		PreviousOutput: cell.OutPoint.ToCKB(),
	})
	s.witnesses = append(s.witnesses, witness)
	s.AddCellDep(s.params.Secp256k1CellDep())
	s.signingEntries = nil
	return nil
}

// AddCellDep add cell dep if not exist
func (s *TransactionSkeleton) AddCellDep(dep *types.CellDep) {
	for _, exist := range s.cellDeps {
		if exist.DepType == dep.DepType &&
			exist.OutPoint.TxHash == dep.OutPoint.TxHash &&
			exist.OutPoint.Index == dep.OutPoint.Index {
			return
		}
	}
	s.cellDeps = append(s.cellDeps, dep)
}

// AddOutput append output and its data, return the output index
func (s *TransactionSkeleton) AddOutput(output *types.CellOutput, data []byte) int {
	if data == nil {
		data = []byte{}
	}
	s.outputs = append(s.outputs, output)
	s.outputsData = append(s.outputsData, data)
	s.signingEntries = nil
	return len(s.outputs) - 1
}

func (s *TransactionSkeleton) removeLastOutput() {
	if n := len(s.outputs); n > 0 {
		s.outputs = s.outputs[:n-1]
		s.outputsData = s.outputsData[:n-1]
	}
}

// InputCells input cells
func (s *TransactionSkeleton) InputCells() []*ckbtypes.Cell {
	return s.inputCells
}

// Outputs outputs
func (s *TransactionSkeleton) Outputs() []*types.CellOutput {
	return s.outputs
}

// Witnesses witnesses
func (s *TransactionSkeleton) Witnesses() [][]byte {
	return s.witnesses
}

// SigningEntries entries of the last PrepareSigningEntries
func (s *TransactionSkeleton) SigningEntries() []*SigningEntry {
	return s.signingEntries
}

// InputsCapacity sum of input capacities
func (s *TransactionSkeleton) InputsCapacity() (total uint64) {
	for _, cell := range s.inputCells {
		total += cell.Capacity()
	}
	return total
}

// OutputsCapacity sum of output capacities
func (s *TransactionSkeleton) OutputsCapacity() (total uint64) {
	for _, output := range s.outputs {
		total += output.Capacity
	}
	return total
}

// Transaction build transaction with the current witnesses and its hash
func (s *TransactionSkeleton) Transaction() (*types.Transaction, error) {
	tx := &types.Transaction{
		Version:     0,
		CellDeps:    append([]*types.CellDep{}, s.cellDeps...),
		HeaderDeps:  append([]types.Hash{}, s.headerDeps...),
		Inputs:      append([]*types.CellInput{}, s.inputs...),
		Outputs:     make([]*types.CellOutput, len(s.outputs)),
		OutputsData: append([][]byte{}, s.outputsData...),
		Witnesses:   append([][]byte{}, s.witnesses...),
	}
	for i, output := range s.outputs {
		copied := *output
		tx.Outputs[i] = &copied
	}
	hash, err := tx.ComputeHash()
	if err != nil {
		return nil, err
	}
	tx.Hash = hash
	return tx, nil
}

// OccupiedCapacity minimal capacity of output holding data
func OccupiedCapacity(output *types.CellOutput, data []byte) uint64 {
	size := uint64(8 + len(data))
	size += scriptOccupiedSize(output.Lock)
	size += scriptOccupiedSize(output.Type)
	return size * common.ShannonsPerCKB
}

func scriptOccupiedSize(script *types.Script) uint64 {
	if script == nil {
		return 0
	}
	return uint64(32 + 1 + len(script.Args))
}

func isSameScript(a, b *types.Script) bool {
	if a == nil || b == nil {
		return a == b
	}
	return a.CodeHash == b.CodeHash &&
		a.HashType == b.HashType &&
		string(a.Args) == string(b.Args)
}
