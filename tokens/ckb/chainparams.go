package ckb

import (
	"fmt"
	"strings"

	"github.com/anyswap/CKB-BatchTx/tokens"
	"github.com/nervosnetwork/ckb-sdk-go/types"
)

// network identifiers
const (
	NetMainnet = "mainnet"
	NetTestnet = "testnet"
	NetDevnet  = "devnet"
)

// secp256k1_blake160_sighash_all script, the same on mainnet and testnet
const secp256k1Blake160CodeHash = "0x9bd7e06f3ecf4be0f2fcd2188b23f1b9fcc88e5d4b65a8637b17723bbda3cce8"

// ChainParams the parameters of a ckb network used to build transactions
type ChainParams struct {
	Network       string
	AddressPrefix string

	Secp256k1CodeHash types.Hash
	Secp256k1HashType types.ScriptHashType
	Secp256k1DepGroup *types.OutPoint
}

// MainnetParams mainnet (lina)
var MainnetParams = &ChainParams{
	Network:           NetMainnet,
	AddressPrefix:     "ckb",
	Secp256k1CodeHash: types.HexToHash(secp256k1Blake160CodeHash),
	Secp256k1HashType: types.HashTypeType,
	Secp256k1DepGroup: &types.OutPoint{
		TxHash: types.HexToHash("0x71a7ba8fc96349fea0ed3a5c47992e3b4084b031a42264a018e0072e8172e46c"),
		Index:  0,
	},
}

// TestnetParams testnet (aggron)
var TestnetParams = &ChainParams{
	Network:           NetTestnet,
	AddressPrefix:     "ckt",
	Secp256k1CodeHash: types.HexToHash(secp256k1Blake160CodeHash),
	Secp256k1HashType: types.HashTypeType,
	Secp256k1DepGroup: &types.OutPoint{
		TxHash: types.HexToHash("0xf8de3bb47d055cdf460d93a2a6e1b05f7432f9777c8c474abf4eec1d4aee5d37"),
		Index:  0,
	},
}

// GetChainParams get params of a known network.
// devnet has no fixed genesis, use NewDevnetParams instead.
func GetChainParams(network string) (*ChainParams, error) {
	switch strings.ToLower(network) {
	case NetMainnet:
		return MainnetParams, nil
	case NetTestnet:
		return TestnetParams, nil
	default:
		return nil, fmt.Errorf("%w: '%v'", tokens.ErrUnknownNetwork, network)
	}
}

// NewDevnetParams params of a dev chain whose secp256k1 dep group is given
func NewDevnetParams(depGroupTxHash string, depGroupIndex uint) *ChainParams {
	return &ChainParams{
		Network:           NetDevnet,
		AddressPrefix:     "ckt",
		Secp256k1CodeHash: types.HexToHash(secp256k1Blake160CodeHash),
		Secp256k1HashType: types.HashTypeType,
		Secp256k1DepGroup: &types.OutPoint{
			TxHash: types.HexToHash(depGroupTxHash),
			Index:  depGroupIndex,
		},
	}
}

// IsSecp256k1Lock is the lock a secp256k1_blake160 lock of this network
func (p *ChainParams) IsSecp256k1Lock(lock *types.Script) bool {
	return lock != nil &&
		lock.CodeHash == p.Secp256k1CodeHash &&
		lock.HashType == p.Secp256k1HashType &&
		len(lock.Args) == 20
}

// Secp256k1CellDep cell dep required by secp256k1_blake160 locked inputs
func (p *ChainParams) Secp256k1CellDep() *types.CellDep {
	return &types.CellDep{
		OutPoint: &types.OutPoint{
			TxHash: p.Secp256k1DepGroup.TxHash,
			Index:  p.Secp256k1DepGroup.Index,
		},
		DepType: types.DepTypeDepGroup,
	}
}

// Secp256k1Lock lock script of blake160 args
func (p *ChainParams) Secp256k1Lock(args []byte) *types.Script {
	return &types.Script{
		CodeHash: p.Secp256k1CodeHash,
		HashType: p.Secp256k1HashType,
		Args:     append([]byte(nil), args...),
	}
}
