package types

import (
	ethcommon "github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"
	ckbtypes "github.com/nervosnetwork/ckb-sdk-go/types"
)

// RPCScript script in ckb json-rpc format
type RPCScript struct {
	CodeHash ethcommon.Hash `json:"code_hash"`
	HashType string         `json:"hash_type"`
	Args     hexutil.Bytes  `json:"args"`
}

// RPCOutPoint out point in ckb json-rpc format
type RPCOutPoint struct {
	TxHash ethcommon.Hash `json:"tx_hash"`
	Index  hexutil.Uint64 `json:"index"`
}

// RPCCellDep cell dep in ckb json-rpc format
type RPCCellDep struct {
	OutPoint RPCOutPoint `json:"out_point"`
	DepType  string      `json:"dep_type"`
}

// RPCCellInput cell input in ckb json-rpc format
type RPCCellInput struct {
	Since          hexutil.Uint64 `json:"since"`
	PreviousOutput RPCOutPoint    `json:"previous_output"`
}

// RPCCellOutput cell output in ckb json-rpc format
type RPCCellOutput struct {
	Capacity hexutil.Uint64 `json:"capacity"`
	Lock     RPCScript      `json:"lock"`
	Type     *RPCScript     `json:"type"`
}

// RPCTransaction transaction in ckb json-rpc format (param of send_transaction)
type RPCTransaction struct {
	Version     hexutil.Uint64   `json:"version"`
	CellDeps    []RPCCellDep     `json:"cell_deps"`
	HeaderDeps  []ethcommon.Hash `json:"header_deps"`
	Inputs      []RPCCellInput   `json:"inputs"`
	Outputs     []RPCCellOutput  `json:"outputs"`
	OutputsData []hexutil.Bytes  `json:"outputs_data"`
	Witnesses   []hexutil.Bytes  `json:"witnesses"`
}

func newRPCScript(s *ckbtypes.Script) RPCScript {
	return RPCScript{
		CodeHash: ethcommon.Hash(s.CodeHash),
		HashType: string(s.HashType),
		Args:     hexutil.Bytes(s.Args),
	}
}

func newRPCOutPoint(op *ckbtypes.OutPoint) RPCOutPoint {
	return RPCOutPoint{
		TxHash: ethcommon.Hash(op.TxHash),
		Index:  hexutil.Uint64(op.Index),
	}
}

// NewRPCTransaction convert sdk transaction to json-rpc format
func NewRPCTransaction(tx *ckbtypes.Transaction) *RPCTransaction {
	result := &RPCTransaction{
		Version:     hexutil.Uint64(tx.Version),
		CellDeps:    make([]RPCCellDep, len(tx.CellDeps)),
		HeaderDeps:  make([]ethcommon.Hash, len(tx.HeaderDeps)),
		Inputs:      make([]RPCCellInput, len(tx.Inputs)),
		Outputs:     make([]RPCCellOutput, len(tx.Outputs)),
		OutputsData: make([]hexutil.Bytes, len(tx.OutputsData)),
		Witnesses:   make([]hexutil.Bytes, len(tx.Witnesses)),
	}
	for i, dep := range tx.CellDeps {
		result.CellDeps[i] = RPCCellDep{
			OutPoint: newRPCOutPoint(dep.OutPoint),
			DepType:  string(dep.DepType),
		}
	}
	for i, hash := range tx.HeaderDeps {
		result.HeaderDeps[i] = ethcommon.Hash(hash)
	}
	for i, input := range tx.Inputs {
		result.Inputs[i] = RPCCellInput{
			Since:          hexutil.Uint64(input.Since),
			PreviousOutput: newRPCOutPoint(input.PreviousOutput),
		}
	}
	for i, output := range tx.Outputs {
		result.Outputs[i] = RPCCellOutput{
			Capacity: hexutil.Uint64(output.Capacity),
			Lock:     newRPCScript(output.Lock),
		}
		if output.Type != nil {
			typeScript := newRPCScript(output.Type)
			result.Outputs[i].Type = &typeScript
		}
	}
	for i, data := range tx.OutputsData {
		result.OutputsData[i] = hexutil.Bytes(data)
	}
	for i, witness := range tx.Witnesses {
		result.Witnesses[i] = hexutil.Bytes(witness)
	}
	return result
}
