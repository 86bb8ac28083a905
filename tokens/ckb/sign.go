package ckb

import (
	"context"
	"fmt"

	"github.com/anyswap/CKB-BatchTx/tokens"
	"github.com/nervosnetwork/ckb-sdk-go/transaction"
	"github.com/nervosnetwork/ckb-sdk-go/types"
)

// SigningEntry message to sign for one lock group.
// Index is the input index of the first input in the group,
// whose witness holds the signature.
type SigningEntry struct {
	Index    int
	LockHash types.Hash
	Message  []byte
}

// Signer signs messages of its lock script
type Signer interface {
	LockScript() *types.Script
	Sign(message []byte) ([]byte, error)
}

var _ Signer = &Key{}

// PrepareSigningEntries compute sighash-all messages of every lock group
// in the order of their first inputs. The inputs of a group must be contiguous.
func PrepareSigningEntries(s *TransactionSkeleton) ([]*SigningEntry, error) {
	tx, err := s.Transaction()
	if err != nil {
		return nil, err
	}

	var groupOrder []types.Hash
	groups := make(map[types.Hash][]int)
	for i, cell := range s.inputCells {
		lockHash, err := cell.CellOutput.Lock.ToCKB().Hash()
		if err != nil {
			return nil, err
		}
		indexes, exist := groups[lockHash]
		switch {
		case !exist:
			groupOrder = append(groupOrder, lockHash)
		case indexes[len(indexes)-1] != i-1:
			return nil, fmt.Errorf("%w: inputs of lock group %v are not contiguous",
				tokens.ErrUnsupportedLock, lockHash.String())
		}
		groups[lockHash] = append(indexes, i)
	}

	entries := make([]*SigningEntry, 0, len(groupOrder))
	for _, lockHash := range groupOrder {
		indexes := groups[lockHash]
		start, end := indexes[0], indexes[len(indexes)-1]+1
		message, err := transaction.SingleSegmentSignMessage(tx, start, end, transaction.EmptyWitnessArg)
		if err != nil {
			return nil, err
		}
		entries = append(entries, &SigningEntry{
			Index:    start,
			LockHash: lockHash,
			Message:  message,
		})
	}
	s.signingEntries = entries
	return entries, nil
}

// Sign sign every entry with signer, signatures are in entry order
func Sign(signer Signer, entries []*SigningEntry) ([][]byte, error) {
	lockHash, err := signer.LockScript().Hash()
	if err != nil {
		return nil, err
	}
	signatures := make([][]byte, len(entries))
	for i, entry := range entries {
		if entry.LockHash != lockHash {
			return nil, fmt.Errorf("%w: no key of lock hash %v", tokens.ErrUnsupportedLock, entry.LockHash.String())
		}
		signatures[i], err = signer.Sign(entry.Message)
		if err != nil {
			return nil, err
		}
	}
	return signatures, nil
}

// SealTransaction put signatures into the witnesses of the signing entries
func SealTransaction(s *TransactionSkeleton, signatures [][]byte) (*types.Transaction, error) {
	entries := s.signingEntries
	if len(entries) == 0 {
		return nil, tokens.ErrMissingSigningEntries
	}
	if len(signatures) != len(entries) {
		return nil, fmt.Errorf("%w: %d signatures for %d signing entries",
			tokens.ErrSignatureCountMismatch, len(signatures), len(entries))
	}
	tx, err := s.Transaction()
	if err != nil {
		return nil, err
	}
	for i, entry := range entries {
		witness := &types.WitnessArgs{Lock: signatures[i]}
		if tx.Witnesses[entry.Index], err = witness.Serialize(); err != nil {
			return nil, err
		}
	}
	return tx, nil
}

// PayAndSignTransaction pay fee by the signer, sign and seal
func PayAndSignTransaction(ctx context.Context, s *TransactionSkeleton, signer Signer, feeRate uint64, provider CellProvider) (*types.Transaction, error) {
	err := PayFeeByFeeRate(ctx, s, signer.LockScript(), feeRate, provider)
	if err != nil {
		return nil, err
	}
	entries, err := PrepareSigningEntries(s)
	if err != nil {
		return nil, err
	}
	signatures, err := Sign(signer, entries)
	if err != nil {
		return nil, err
	}
	return SealTransaction(s, signatures)
}
