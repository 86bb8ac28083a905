// Package types defines the json forms of cells and transactions
// stored in checkpoints and sent over json-rpc.
package types

import (
	ethcommon "github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"
	ckbtypes "github.com/nervosnetwork/ckb-sdk-go/types"
)

// Script lock or type script of a cell
type Script struct {
	CodeHash ethcommon.Hash `json:"codeHash"`
	HashType string         `json:"hashType"`
	Args     hexutil.Bytes  `json:"args"`
}

// CellOutput capacity and scripts of a cell
type CellOutput struct {
	Capacity hexutil.Uint64 `json:"capacity"`
	Lock     *Script        `json:"lock"`
	Type     *Script        `json:"type,omitempty"`
}

// OutPoint reference to the transaction output which created a cell
type OutPoint struct {
	TxHash ethcommon.Hash `json:"txHash"`
	Index  hexutil.Uint64 `json:"index"`
}

// Cell a live (or about to be live) cell.
// OutPoint is nil until the creating transaction is sent.
type Cell struct {
	CellOutput *CellOutput   `json:"cellOutput"`
	Data       hexutil.Bytes `json:"data"`
	OutPoint   *OutPoint     `json:"outPoint,omitempty"`
}

// Capacity of the cell in shannons
func (c *Cell) Capacity() uint64 {
	if c == nil || c.CellOutput == nil {
		return 0
	}
	return uint64(c.CellOutput.Capacity)
}

// NewScript convert sdk script
func NewScript(s *ckbtypes.Script) *Script {
	if s == nil {
		return nil
	}
	return &Script{
		CodeHash: ethcommon.Hash(s.CodeHash),
		HashType: string(s.HashType),
		Args:     append(hexutil.Bytes(nil), s.Args...),
	}
}

// ToCKB convert to sdk script
func (s *Script) ToCKB() *ckbtypes.Script {
	if s == nil {
		return nil
	}
	return &ckbtypes.Script{
		CodeHash: ckbtypes.Hash(s.CodeHash),
		HashType: ckbtypes.ScriptHashType(s.HashType),
		Args:     append([]byte(nil), s.Args...),
	}
}

// NewOutPoint convert sdk out point
func NewOutPoint(op *ckbtypes.OutPoint) *OutPoint {
	if op == nil {
		return nil
	}
	return &OutPoint{
		TxHash: ethcommon.Hash(op.TxHash),
		Index:  hexutil.Uint64(op.Index),
	}
}

// ToCKB convert to sdk out point
func (op *OutPoint) ToCKB() *ckbtypes.OutPoint {
	if op == nil {
		return nil
	}
	return &ckbtypes.OutPoint{
		TxHash: ckbtypes.Hash(op.TxHash),
		Index:  uint(op.Index),
	}
}

// Key unique string of the out point
func (op *OutPoint) Key() string {
	return op.TxHash.Hex() + ":" + hexutil.EncodeUint64(uint64(op.Index))
}

// NewCell build a cell from sdk output, data and out point
func NewCell(output *ckbtypes.CellOutput, data []byte, op *ckbtypes.OutPoint) *Cell {
	return &Cell{
		CellOutput: &CellOutput{
			Capacity: hexutil.Uint64(output.Capacity),
			Lock:     NewScript(output.Lock),
			Type:     NewScript(output.Type),
		},
		Data:     append(hexutil.Bytes{}, data...),
		OutPoint: NewOutPoint(op),
	}
}

