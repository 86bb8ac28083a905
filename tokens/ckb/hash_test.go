package ckb

import (
	"encoding/binary"
	"testing"

	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/nervosnetwork/ckb-sdk-go/crypto/blake2b"
	"github.com/nervosnetwork/ckb-sdk-go/transaction"
	"github.com/nervosnetwork/ckb-sdk-go/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// the get_transaction example of the ckb json-rpc documentation
func rpcDocTransaction() *types.Transaction {
	return &types.Transaction{
		Version: 0,
		CellDeps: []*types.CellDep{
			{
				OutPoint: &types.OutPoint{
					TxHash: types.HexToHash("0xa4037a893eb48e18ed4ef61034ce26eba9c585f15c9cee102ae58505565eccc3"),
					Index:  0,
				},
				DepType: types.DepTypeCode,
			},
		},
		HeaderDeps: []types.Hash{
			types.HexToHash("0x7978ec7ce5b507cfb52e149e36b1a23f6062ed150503c85bbf825da3599095ed"),
		},
		Inputs: []*types.CellInput{
			{
				Since: 0,
				PreviousOutput: &types.OutPoint{
					TxHash: types.HexToHash("0x365698b50ca0da75dca2c87f9e7b563811d3b5813736b8cc62cc3b106faceb17"),
					Index:  0,
				},
			},
		},
		Outputs: []*types.CellOutput{
			{
				Capacity: 0x2540be400,
				Lock: &types.Script{
					CodeHash: types.HexToHash("0x28e83a1277d48add8e72fadaa9248559e1b632bab2bd60b27955ebc4c03800a5"),
					HashType: types.HashTypeData,
					Args:     []byte{},
				},
			},
		},
		OutputsData: [][]byte{{}},
		Witnesses:   [][]byte{},
	}
}

func typeIDScript(args string) *types.Script {
	return &types.Script{
		CodeHash: types.HexToHash("0x00000000000000000000000000000000000000000000000000545950455f4944"),
		HashType: types.HashTypeType,
		Args:     hexutil.MustDecode(args),
	}
}

func TestTransactionHashVector(t *testing.T) {
	tx := rpcDocTransaction()
	hash, err := tx.ComputeHash()
	require.NoError(t, err)
	assert.Equal(t, "0xa0ef4eb5f4ceeb08a4c8524d84c5da95dce2f608e0ca2ec8091191b0f330c6e3", hexutil.Encode(hash.Bytes()))

	// witnesses are not part of the hash
	tx.Witnesses = [][]byte{placeholderWitness(t)}
	withWitness, err := tx.ComputeHash()
	require.NoError(t, err)
	assert.Equal(t, hash, withWitness)
}

func TestScriptHashVectors(t *testing.T) {
	tests := []struct {
		name string
		args string
		hash string
	}{
		{"secp256k1_blake160", "0x8536c9d5d908bd89fc70099e4284870708b6632356aad98734fcf43f6f71c304", secp256k1Blake160CodeHash},
		{"nervos dao", "0xb2a8500929d6a1294bf9bf1bf565f549fa4a5f1316a3306ad3d4783e64bcf626", "0x82d76d1b75fe2fd9a27dfbaa65a039221a380d76c926f378d3f81cf3e7e13f2e"},
	}
	for _, test := range tests {
		hash, err := typeIDScript(test.args).Hash()
		require.NoError(t, err, test.name)
		assert.Equal(t, test.hash, hexutil.Encode(hash.Bytes()), test.name)
	}
}

// genesis system cells take type id args of the cellbase input and the output index
func TestGenesisTypeIDArgs(t *testing.T) {
	cellbase := &types.CellInput{
		Since: 0,
		PreviousOutput: &types.OutPoint{
			TxHash: types.Hash{},
			Index:  0xffffffff,
		},
	}
	input, err := cellbase.Serialize()
	require.NoError(t, err)

	tests := map[uint64]string{
		0: "0xa9d87a10aadd307ac43ca89c4a47dd51925657f846b38976a62a137fed4c1c45",
		1: "0x8536c9d5d908bd89fc70099e4284870708b6632356aad98734fcf43f6f71c304",
		2: "0xb2a8500929d6a1294bf9bf1bf565f549fa4a5f1316a3306ad3d4783e64bcf626",
	}
	for index, expected := range tests {
		data := make([]byte, len(input)+8)
		copy(data, input)
		binary.LittleEndian.PutUint64(data[len(input):], index)
		args, err := blake2b.Blake256(data)
		require.NoError(t, err)
		assert.Equal(t, expected, hexutil.Encode(args), "output %d", index)
	}
}

func TestPlaceholderWitnessLayout(t *testing.T) {
	witness := placeholderWitness(t)
	require.Len(t, witness, 85)
	assert.Equal(t, "0x5500000010000000550000005500000041000000", hexutil.Encode(witness[:20]))
	assert.Equal(t, make([]byte, 65), witness[20:])
}

func TestSighashMessageVectors(t *testing.T) {
	tests := []struct {
		name      string
		witnesses [][]byte
		message   string
	}{
		{
			name:      "single input",
			witnesses: [][]byte{placeholderWitness(t)},
			message:   "0x224167220e3fffeb628ff231a4bfedd5075c14f66b829b8203d46acf1ecbca36",
		},
		{
			name:      "witness beyond inputs",
			witnesses: [][]byte{placeholderWitness(t), {0xab, 0xcd}},
			message:   "0xe422c3d264430a9763f4173d61f3379fa5c427218fe62d1f77a35180a5ffcbe9",
		},
	}
	for _, test := range tests {
		tx := rpcDocTransaction()
		tx.Witnesses = test.witnesses
		message, err := transaction.SingleSegmentSignMessage(tx, 0, 1, transaction.EmptyWitnessArg)
		require.NoError(t, err, test.name)
		assert.Equal(t, test.message, hexutil.Encode(message), test.name)
	}
}
