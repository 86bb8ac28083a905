package tokens

import "errors"

// common errors
var (
	ErrInsufficientFunds      = errors.New("insufficient funds")
	ErrUnknownNetwork         = errors.New("unknown network")
	ErrUnsupportedLock        = errors.New("unsupported lock script")
	ErrWrongPrivateKey        = errors.New("wrong private key")
	ErrSignatureCountMismatch = errors.New("signature count mismatch")
	ErrMissingSigningEntries  = errors.New("signing entries not prepared")

	ErrNotFound        = errors.New("not found")
	ErrRPCQueryError   = errors.New("rpc query error")
	ErrBatchSendFailed = errors.New("batch send transactions failed")
)
