package main

import (
	"context"

	"github.com/anyswap/CKB-BatchTx/cmd/utils"
	"github.com/anyswap/CKB-BatchTx/log"
	"github.com/urfave/cli/v2"
)

var (
	mergeCommand = &cli.Command{
		Action:    merge,
		Name:      "merge",
		Usage:     "merge sender cells into one offer cell",
		ArgsUsage: " ",
		Description: `
collect sender cells until the capacity of all split cells is reached,
and merge them into one offer cell recorded in the checkpoint store.

Example:

./batchtx merge --config ./config.toml
`,
		Flags: []cli.Flag{
			utils.DryRunFlag,
		},
	}

	splitCommand = &cli.Command{
		Action:    split,
		Name:      "split",
		Usage:     "split the offer cell into small cells",
		ArgsUsage: " ",
		Description: `
spend the offer cell repeatedly into chunks of fixed capacity cells,
until the configured count of split cells is recorded.
It resumes from the recorded split cells unless '--reset' is specified.

Example:

./batchtx split --config ./config.toml --reset
`,
		Flags: []cli.Flag{
			utils.ResetFlag,
			utils.DryRunFlag,
		},
	}

	batchSendCommand = &cli.Command{
		Action:    batchSend,
		Name:      "batchsend",
		Usage:     "send one transaction for each split cell in batches",
		ArgsUsage: " ",
		Description: `
build and sign one transaction for each unsent split cell,
and send them in batch rpc calls.

Example:

./batchtx batchsend --config ./config.toml
`,
		Flags: []cli.Flag{
			utils.DryRunFlag,
		},
	}
)

func signalContext() (context.Context, context.CancelFunc) {
	return utils.SignalContext()
}

func merge(ctx *cli.Context) error {
	e, err := setupEnv(ctx, true)
	if err != nil {
		return err
	}
	defer e.close()

	cctx, cancel := signalContext()
	defer cancel()

	txHash, err := e.newWorker(ctx.Bool(utils.DryRunFlag.Name)).MergeUtxos(cctx)
	if err != nil {
		return err
	}
	log.Info("merge utxo", "txHash", txHash.String())
	return nil
}

func split(ctx *cli.Context) error {
	e, err := setupEnv(ctx, true)
	if err != nil {
		return err
	}
	defer e.close()

	cctx, cancel := signalContext()
	defer cancel()

	w := e.newWorker(ctx.Bool(utils.DryRunFlag.Name))
	return w.SplitCells(cctx, ctx.Bool(utils.ResetFlag.Name))
}

func batchSend(ctx *cli.Context) error {
	e, err := setupEnv(ctx, true)
	if err != nil {
		return err
	}
	defer e.close()

	cctx, cancel := signalContext()
	defer cancel()

	sentCount, err := e.newWorker(ctx.Bool(utils.DryRunFlag.Name)).BatchSendTransactions(cctx)
	if err != nil {
		return err
	}
	log.Info("batch send transactions", "count", sentCount)
	return nil
}
