package ckb

import (
	"bytes"
	"errors"
	"testing"

	"github.com/anyswap/CKB-BatchTx/tokens"
	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/nervosnetwork/ckb-sdk-go/address"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewKeyFromHex(t *testing.T) {
	key := newTestKey(t, testPrivateKey)
	lock := key.LockScript()
	assert.Equal(t, "0xc8328aabcd9b9e8e64fbc566c4385c3bdeb219d7", hexutil.Encode(lock.Args))
	assert.True(t, TestnetParams.IsSecp256k1Lock(lock))

	addr, err := key.Address()
	require.NoError(t, err)
	assert.Equal(t, "ckt1qyqvsv5240xeh85wvnau2eky8pwrhh4jr8ts8vyj37", addr)

	noPrefix, err := NewKeyFromHex(testPrivateKey[2:], TestnetParams)
	require.NoError(t, err)
	assert.Equal(t, lock.Args, noPrefix.LockScript().Args)

	for _, invalid := range []string{"", "0x1234", "0xzz", testPrivateKey + "00"} {
		_, err = NewKeyFromHex(invalid, TestnetParams)
		assert.True(t, errors.Is(err, tokens.ErrWrongPrivateKey), "key %q", invalid)
	}
}

func TestShortAddress(t *testing.T) {
	args := hexutil.MustDecode("0x12a66c725a720c0ee0204e70b3731cbb7cde01fb")
	addr, err := ShortAddress(MainnetParams.AddressPrefix, MainnetParams.Secp256k1Lock(args))
	require.NoError(t, err)
	assert.Equal(t, "ckb1qyqp9fnvwfd8yrqwuqsyuu9nwvwtklx7q8aszywpu4", addr)

	parsed, err := address.Parse(addr)
	require.NoError(t, err)
	assert.Equal(t, address.Mainnet, parsed.Mode)
	assert.Equal(t, args, parsed.Script.Args)
	assert.Equal(t, MainnetParams.Secp256k1CodeHash, parsed.Script.CodeHash)

	_, err = ShortAddress(MainnetParams.AddressPrefix, MainnetParams.Secp256k1Lock(args[:19]))
	assert.True(t, errors.Is(err, tokens.ErrUnsupportedLock))
	_, err = ShortAddress(MainnetParams.AddressPrefix, nil)
	assert.True(t, errors.Is(err, tokens.ErrUnsupportedLock))
}

func TestKeySign(t *testing.T) {
	key := newTestKey(t, testPrivateKey)
	message := bytes.Repeat([]byte{0x5a}, 32)
	sig, err := key.Sign(message)
	require.NoError(t, err)
	require.Len(t, sig, 65)

	pub, err := crypto.SigToPub(message, sig)
	require.NoError(t, err)
	args, err := Blake160(crypto.CompressPubkey(pub))
	require.NoError(t, err)
	assert.Equal(t, []byte(key.LockScript().Args), args)

	_, err = key.Sign(message[:31])
	assert.Error(t, err)
}

func TestChainParams(t *testing.T) {
	params, err := GetChainParams("Mainnet")
	require.NoError(t, err)
	assert.Equal(t, MainnetParams, params)

	params, err = GetChainParams(NetTestnet)
	require.NoError(t, err)
	assert.Equal(t, "ckt", params.AddressPrefix)

	_, err = GetChainParams("devnet")
	assert.True(t, errors.Is(err, tokens.ErrUnknownNetwork))

	devnet := NewDevnetParams("0xace5ea83c478bb866edf122ff862085789158f5cbff155b7bb5f13058555b708", 0)
	assert.Equal(t, NetDevnet, devnet.Network)
	dep := devnet.Secp256k1CellDep()
	assert.Equal(t, devnet.Secp256k1DepGroup.TxHash, dep.OutPoint.TxHash)
	assert.Equal(t, "dep_group", string(dep.DepType))

	lock := TestnetParams.Secp256k1Lock(make([]byte, 20))
	assert.True(t, MainnetParams.IsSecp256k1Lock(lock))
	lock.Args = lock.Args[:10]
	assert.False(t, MainnetParams.IsSecp256k1Lock(lock))
	assert.False(t, MainnetParams.IsSecp256k1Lock(nil))
}
