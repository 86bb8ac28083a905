package common

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFormatCKB(t *testing.T) {
	assert.Equal(t, "62", FormatCKB(CKBToShannons(62)))
	assert.Equal(t, "0.5", FormatCKB(ShannonsPerCKB/2))
	assert.Equal(t, "61.00000001", FormatCKB(CKBToShannons(61)+1))
	assert.Equal(t, "0", FormatCKB(0))
}

func TestHex(t *testing.T) {
	assert.True(t, IsHex("0xd00c06bf"))
	assert.True(t, IsHex("d00c06bf"))
	assert.False(t, IsHex("0xd00c06b"))
	assert.False(t, IsHex("0xzz"))

	bs, err := FromHex("0x0102ff")
	assert.NoError(t, err)
	assert.Equal(t, []byte{1, 2, 0xff}, bs)

	bs, err = FromHex("fff")
	assert.NoError(t, err)
	assert.Equal(t, []byte{0x0f, 0xff}, bs)
}

func TestAbsolutePath(t *testing.T) {
	assert.Equal(t, "/data/config.toml", AbsolutePath("/data", "config.toml"))
	assert.Equal(t, "/etc/config.toml", AbsolutePath("/data", "/etc/config.toml"))
}
