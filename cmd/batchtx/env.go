package main

import (
	"fmt"
	"strings"

	"github.com/anyswap/CKB-BatchTx/checkpoint"
	"github.com/anyswap/CKB-BatchTx/cmd/utils"
	"github.com/anyswap/CKB-BatchTx/log"
	"github.com/anyswap/CKB-BatchTx/params"
	"github.com/anyswap/CKB-BatchTx/tokens/ckb"
	"github.com/anyswap/CKB-BatchTx/worker"
	"github.com/urfave/cli/v2"
)

// env everything a command needs, released by close
type env struct {
	config      *params.BatchTxConfig
	chainParams *ckb.ChainParams
	key         *ckb.Key
	client      *ckb.RPCClient
	store       *checkpoint.Store
}

func getChainParams(config *params.ChainConfig) (*ckb.ChainParams, error) {
	if strings.EqualFold(config.Network, ckb.NetDevnet) {
		return ckb.NewDevnetParams(config.DepGroupTxHash, config.DepGroupIndex), nil
	}
	return ckb.GetChainParams(config.Network)
}

// setupEnv set logger, load config and key, dial node.
// The checkpoint store is opened if openStore is true.
func setupEnv(ctx *cli.Context, openStore bool) (*env, error) {
	utils.SetLogger(ctx)
	config := params.LoadConfig(utils.GetConfigFilePath(ctx))

	chainParams, err := getChainParams(config.Chain)
	if err != nil {
		return nil, err
	}
	hexKey, err := config.Sender.LoadPrivateKey()
	if err != nil {
		return nil, fmt.Errorf("load private key failed: %w", err)
	}
	key, err := ckb.NewKeyFromHex(hexKey, chainParams)
	if err != nil {
		return nil, err
	}
	address, err := key.Address()
	if err != nil {
		return nil, err
	}
	log.Info("sender", "address", address, "network", chainParams.Network)

	e := &env{
		config:      config,
		chainParams: chainParams,
		key:         key,
	}
	chainConfig := config.Chain
	e.client, err = ckb.Dial(chainConfig.APIAddress, chainConfig.IndexerAddress, chainConfig.RPCTimeout)
	if err != nil {
		return nil, err
	}
	if openStore {
		e.store, err = checkpoint.Open(config.Checkpoint.DataDir)
		if err != nil {
			e.close()
			return nil, err
		}
	}
	return e, nil
}

func (e *env) newWorker(dryRun bool) *worker.Worker {
	w := worker.NewWorker(e.client, e.store, e.key, e.chainParams, e.config.Batch)
	w.DryRun = dryRun
	return w
}

func (e *env) close() {
	if e.store != nil {
		if err := e.store.Close(); err != nil {
			log.Warn("close checkpoint store failed", "err", err)
		}
	}
	if e.client != nil {
		e.client.Close()
	}
}
