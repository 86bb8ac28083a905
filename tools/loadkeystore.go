// Package tools provides helpers of loading sender keys.
package tools

import (
	"fmt"
	"os"
	"strings"

	"github.com/ethereum/go-ethereum/accounts/keystore"
	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/ethereum/go-ethereum/crypto"
)

// LoadKeyStore load keystore from keyfile and passfile
func LoadKeyStore(keyfile, passfile string) (*keystore.Key, error) {
	keyjson, err := os.ReadFile(keyfile)
	if err != nil {
		return nil, fmt.Errorf("read keystore fail %w", err)
	}
	passdata, err := os.ReadFile(passfile)
	if err != nil {
		return nil, fmt.Errorf("read password fail %w", err)
	}
	passwd := strings.TrimSpace(string(passdata))
	key, err := keystore.DecryptKey(keyjson, passwd)
	if err != nil {
		return nil, fmt.Errorf("decrypt key fail %w", err)
	}
	return key, nil
}

// LoadPrivateKeyHex load hex private key.
// keyfile is a keystore file if passfile is not empty,
// otherwise it contains the hex private key.
func LoadPrivateKeyHex(keyfile, passfile string) (string, error) {
	if passfile != "" {
		key, err := LoadKeyStore(keyfile, passfile)
		if err != nil {
			return "", err
		}
		return hexutil.Encode(crypto.FromECDSA(key.PrivateKey)), nil
	}
	data, err := os.ReadFile(keyfile)
	if err != nil {
		return "", fmt.Errorf("read private key fail %w", err)
	}
	return strings.TrimSpace(string(data)), nil
}
