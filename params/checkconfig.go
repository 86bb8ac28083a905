package params

import (
	"errors"
	"fmt"
	"strings"
)

// CheckConfig check config
func (c *BatchTxConfig) CheckConfig() (err error) {
	if c.Chain == nil {
		return errors.New("must config 'Chain'")
	}
	if err = c.Chain.CheckConfig(); err != nil {
		return err
	}
	if c.Sender == nil || c.Sender.KeyFile == "" {
		return errors.New("must config 'Sender.KeyFile'")
	}
	if c.Batch == nil {
		return errors.New("must config 'Batch'")
	}
	if err = c.Batch.CheckConfig(); err != nil {
		return err
	}
	if c.Checkpoint == nil || c.Checkpoint.DataDir == "" {
		return errors.New("must config 'Checkpoint.DataDir'")
	}
	return nil
}

// CheckConfig check chain config
func (c *ChainConfig) CheckConfig() error {
	switch strings.ToLower(c.Network) {
	case "mainnet", "testnet":
	case "devnet":
		if c.DepGroupTxHash == "" {
			return errors.New("devnet must config 'Chain.DepGroupTxHash'")
		}
	default:
		return fmt.Errorf("unknown network '%v'", c.Network)
	}
	if c.APIAddress == "" {
		return errors.New("must config 'Chain.APIAddress'")
	}
	if c.RPCTimeout < 0 {
		return errors.New("'Chain.RPCTimeout' is negative")
	}
	return nil
}

// CheckConfig check batch config
func (c *BatchConfig) CheckConfig() error {
	switch {
	case c.TxCount <= 0:
		return errors.New("'Batch.TxCount' must be positive")
	case c.CellCapacity < 61:
		return errors.New("'Batch.CellCapacity' is lower than the occupied capacity (61 CKB)")
	case c.SplitChunk <= 0:
		return errors.New("'Batch.SplitChunk' must be positive")
	case c.SendBatchSize <= 0:
		return errors.New("'Batch.SendBatchSize' must be positive")
	case c.MaxCollectCells <= 0:
		return errors.New("'Batch.MaxCollectCells' must be positive")
	case c.FeeRate == 0:
		return errors.New("'Batch.FeeRate' must be positive")
	}
	return nil
}
