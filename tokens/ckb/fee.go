package ckb

import (
	"context"
	"fmt"
	"io"

	"github.com/anyswap/CKB-BatchTx/log"
	"github.com/anyswap/CKB-BatchTx/tokens"
	"github.com/nervosnetwork/ckb-sdk-go/types"
)

// DefaultFeeRate shannons per 1000 bytes
const DefaultFeeRate uint64 = 2000

const maxPayFeeRounds = 64

// CalculateFee fee of tx size at fee rate, rounded up
func CalculateFee(size, feeRate uint64) uint64 {
	fee := size * feeRate / 1000
	if fee*1000 < size*feeRate {
		fee++
	}
	return fee
}

// EstimateFee fee of the skeleton with its current (placeholder) witnesses
func EstimateFee(s *TransactionSkeleton, feeRate uint64) (uint64, error) {
	tx, err := s.Transaction()
	if err != nil {
		return 0, err
	}
	size, err := tx.SizeInBlock()
	if err != nil {
		return 0, err
	}
	return CalculateFee(size, feeRate), nil
}

// PayFeeByFeeRate balance the skeleton so that inputs equal outputs plus fee.
// The fee is taken from (or the surplus given to) the first output owned by payer.
// A change output is added if no such output exists. More cells are pulled from
// provider when the inputs are not enough, provider can be nil.
func PayFeeByFeeRate(ctx context.Context, s *TransactionSkeleton, payer *types.Script, feeRate uint64, provider CellProvider) error {
	for round := 0; round < maxPayFeeRounds; round++ {
		fee, err := EstimateFee(s, feeRate)
		if err != nil {
			return err
		}
		inputs := s.InputsCapacity()
		outputs := s.OutputsCapacity()

		if inputs >= outputs+fee {
			surplus := inputs - outputs - fee
			if surplus == 0 {
				return nil
			}
			if index := s.firstOutputOf(payer, 0); index >= 0 {
				s.outputs[index].Capacity += surplus
				log.Trace("pay fee from surplus", "fee", fee, "output", index)
				return nil
			}
			paid, err := s.tryAddChange(payer, feeRate)
			if err != nil || paid {
				return err
			}
		} else {
			deficit := outputs + fee - inputs
			if index := s.firstOutputOf(payer, deficit); index >= 0 {
				s.outputs[index].Capacity -= deficit
				log.Trace("pay fee by deducting output", "fee", fee, "output", index)
				return nil
			}
		}

		if err := s.pullInputCell(ctx, provider); err != nil {
			return err
		}
	}
	return fmt.Errorf("%w: fee is not paid after %d rounds", tokens.ErrInsufficientFunds, maxPayFeeRounds)
}

// first output of lock which stays above its occupied capacity after deducting
func (s *TransactionSkeleton) firstOutputOf(lock *types.Script, deduct uint64) int {
	for i, output := range s.outputs {
		if !isSameScript(output.Lock, lock) {
			continue
		}
		if output.Capacity >= deduct+OccupiedCapacity(output, s.outputsData[i]) {
			return i
		}
	}
	return -1
}

func (s *TransactionSkeleton) tryAddChange(payer *types.Script, feeRate uint64) (bool, error) {
	change := &types.CellOutput{Lock: payer}
	s.AddOutput(change, nil)
	fee, err := EstimateFee(s, feeRate)
	if err != nil {
		s.removeLastOutput()
		return false, err
	}
	inputs := s.InputsCapacity()
	outputs := s.OutputsCapacity()
	if inputs >= outputs+fee+OccupiedCapacity(change, nil) {
		change.Capacity = inputs - outputs - fee
		log.Trace("pay fee with change output", "fee", fee, "change", change.Capacity)
		return true, nil
	}
	s.removeLastOutput()
	return false, nil
}

func (s *TransactionSkeleton) pullInputCell(ctx context.Context, provider CellProvider) error {
	if provider == nil {
		return fmt.Errorf("%w: no cell provider to pay fee", tokens.ErrInsufficientFunds)
	}
	cell, err := provider.Next(ctx)
	if err == io.EOF {
		return fmt.Errorf("%w: no more cells to pay fee", tokens.ErrInsufficientFunds)
	}
	if err != nil {
		return err
	}
	return s.SetupInputCell(cell)
}
