package ckb

import (
	"crypto/ecdsa"
	"fmt"
	"strings"

	"github.com/anyswap/CKB-BatchTx/common"
	"github.com/anyswap/CKB-BatchTx/tokens"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/nervosnetwork/ckb-sdk-go/address"
	"github.com/nervosnetwork/ckb-sdk-go/crypto/blake2b"
	"github.com/nervosnetwork/ckb-sdk-go/types"
)

// Key sender key and the lock script derived from it
type Key struct {
	privateKey *ecdsa.PrivateKey
	params     *ChainParams
	lock       *types.Script
}

// NewKeyFromHex parse hex private key (0x prefix is optional)
func NewKeyFromHex(hexKey string, params *ChainParams) (*Key, error) {
	hexKey = strings.TrimSpace(hexKey)
	if !common.IsHex(hexKey) {
		return nil, fmt.Errorf("%w: not a hex string", tokens.ErrWrongPrivateKey)
	}
	keyBytes, err := common.FromHex(hexKey)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", tokens.ErrWrongPrivateKey, err)
	}
	privateKey, err := crypto.ToECDSA(keyBytes)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", tokens.ErrWrongPrivateKey, err)
	}
	args, err := Blake160(crypto.CompressPubkey(&privateKey.PublicKey))
	if err != nil {
		return nil, err
	}
	return &Key{
		privateKey: privateKey,
		params:     params,
		lock:       params.Secp256k1Lock(args),
	}, nil
}

// Blake160 first 20 bytes of blake2b-256
func Blake160(data []byte) ([]byte, error) {
	hash, err := blake2b.Blake256(data)
	if err != nil {
		return nil, err
	}
	return hash[:20], nil
}

// LockScript secp256k1_blake160 lock of the key
func (k *Key) LockScript() *types.Script {
	return k.lock
}

// Address short address of the lock
func (k *Key) Address() (string, error) {
	return ShortAddress(k.params.AddressPrefix, k.lock)
}

// Sign sign 32 bytes message, the result is a 65 bytes recoverable signature
func (k *Key) Sign(message []byte) ([]byte, error) {
	return crypto.Sign(message, k.privateKey)
}

// ShortAddress short format address of a secp256k1_blake160 lock
func ShortAddress(prefix string, lock *types.Script) (string, error) {
	if lock == nil || len(lock.Args) != 20 {
		return "", fmt.Errorf("%w: not a secp256k1_blake160 lock", tokens.ErrUnsupportedLock)
	}
	return address.ConvertScriptToShortAddress(address.Mode(prefix), lock)
}
