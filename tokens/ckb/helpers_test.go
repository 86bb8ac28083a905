package ckb

import (
	"testing"

	"github.com/anyswap/CKB-BatchTx/common"
	"github.com/anyswap/CKB-BatchTx/tokens/ckb/ckbtest"
	ckbtypes "github.com/anyswap/CKB-BatchTx/types"
	"github.com/nervosnetwork/ckb-sdk-go/types"
	"github.com/stretchr/testify/require"
)

const (
	testPrivateKey  = "0xd00c06bfd800d27397002dca6fb0993d5ba6399b4238b2f29ee9deb97593d2bc"
	testPrivateKey2 = "0x63d86723e08f0f813a36ce6aa123bb2289d90680ae1e99d4de8cdb334553f24d"
)

func newTestKey(t *testing.T, hexKey string) *Key {
	key, err := NewKeyFromHex(hexKey, TestnetParams)
	require.NoError(t, err)
	return key
}

func placeholderWitness(t *testing.T) []byte {
	witness, err := PlaceholderWitness()
	require.NoError(t, err)
	return witness
}

func addCells(chain *ckbtest.FakeChain, lock *types.Script, count int, ckb uint64) []*ckbtypes.Cell {
	cells := make([]*ckbtypes.Cell, count)
	for i := 0; i < count; i++ {
		output := &types.CellOutput{Capacity: common.CKBToShannons(ckb), Lock: lock}
		op := chain.AddCell(output, nil)
		cells[i] = ckbtypes.NewCell(output, nil, op)
	}
	return cells
}
