// Package common provides small helpers shared by the other packages.
package common

import (
	"encoding/hex"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// ShannonsPerCKB is the count of shannons in one CKB.
const ShannonsPerCKB uint64 = 100000000

// CKBToShannons convert whole CKB to shannons
func CKBToShannons(ckb uint64) uint64 {
	return ckb * ShannonsPerCKB
}

// FormatCKB print shannons as a decimal CKB amount
func FormatCKB(shannons uint64) string {
	whole := shannons / ShannonsPerCKB
	frac := shannons % ShannonsPerCKB
	if frac == 0 {
		return fmt.Sprintf("%d", whole)
	}
	return strings.TrimRight(fmt.Sprintf("%d.%08d", whole, frac), "0")
}

// IsHex is hex string (0x prefix is optional)
func IsHex(str string) bool {
	str = strip0x(str)
	if len(str)%2 != 0 {
		return false
	}
	for _, c := range []byte(str) {
		if !isHexCharacter(c) {
			return false
		}
	}
	return true
}

// FromHex decode hex string (0x prefix is optional)
func FromHex(s string) ([]byte, error) {
	s = strip0x(s)
	if len(s)%2 == 1 {
		s = "0" + s
	}
	return hex.DecodeString(s)
}

func strip0x(s string) string {
	if len(s) >= 2 && s[0] == '0' && (s[1] == 'x' || s[1] == 'X') {
		return s[2:]
	}
	return s
}

func isHexCharacter(c byte) bool {
	return ('0' <= c && c <= '9') || ('a' <= c && c <= 'f') || ('A' <= c && c <= 'F')
}

// FileExist checks if a file exists at path.
func FileExist(path string) bool {
	_, err := os.Stat(path)
	if err != nil && os.IsNotExist(err) {
		return false
	}
	return true
}

// AbsolutePath returns datadir + filename, or filename if it is absolute.
func AbsolutePath(datadir, filename string) string {
	if filepath.IsAbs(filename) {
		return filename
	}
	return filepath.Join(datadir, filename)
}
