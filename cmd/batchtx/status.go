package main

import (
	"fmt"
	"time"

	"github.com/anyswap/CKB-BatchTx/checkpoint"
	"github.com/anyswap/CKB-BatchTx/cmd/utils"
	"github.com/anyswap/CKB-BatchTx/common"
	"github.com/anyswap/CKB-BatchTx/params"
	"github.com/fatih/color"
	"github.com/urfave/cli/v2"
)

var statusCommand = &cli.Command{
	Action:    status,
	Name:      "status",
	Usage:     "show checkpoint store summary",
	ArgsUsage: " ",
	Description: `
show the offer cell, the split cells, the batch send progress
and the pending journal entries in the checkpoint store.
It does not connect to the chain.

Example:

./batchtx status --config ./config.toml
`,
}

func status(ctx *cli.Context) error {
	utils.SetLogger(ctx)
	config := params.LoadConfig(utils.GetConfigFilePath(ctx))

	store, err := checkpoint.Open(config.Checkpoint.DataDir)
	if err != nil {
		return err
	}
	defer store.Close()

	summary, err := store.GetSummary()
	if err != nil {
		return err
	}

	printField("Data dir", config.Checkpoint.DataDir)
	if summary.OfferCell != nil {
		printField("Offer cell", summary.OfferCell.OutPoint.Key())
		printField("Offer capacity", common.FormatCKB(summary.OfferCell.Capacity())+" CKB")
	} else {
		printField("Offer cell", "none")
	}
	printField("Split cells", fmt.Sprintf("%d / %d", summary.SplitCount, config.Batch.TxCount))
	printField("Split capacity", common.FormatCKB(summary.SplitCapacity)+" CKB")
	printField("Batch sent", fmt.Sprintf("%d / %d", summary.BatchSentCount, summary.SplitCount))

	if len(summary.PendingEntries) == 0 {
		printField("Pending", 0)
		return nil
	}
	color.Yellow("%d pending journal entries, they are recovered by the next merge, split or batchsend", len(summary.PendingEntries))
	for _, entry := range summary.PendingEntries {
		fmt.Printf("  %s %-9s txs=%d at %s\n", entry.ID, entry.Step, len(entry.TxHashes),
			time.Unix(entry.Timestamp, 0).Format(time.RFC3339))
	}
	return nil
}
