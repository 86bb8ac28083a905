package main

import (
	"fmt"

	"github.com/anyswap/CKB-BatchTx/common"
	"github.com/anyswap/CKB-BatchTx/tokens/ckb"
	"github.com/fatih/color"
	"github.com/urfave/cli/v2"
)

var (
	infoCommand = &cli.Command{
		Action:    info,
		Name:      "info",
		Usage:     "show sender address and live capacity",
		ArgsUsage: " ",
		Description: `
show the sender address derived from the key file,
and the capacity of its live plain cells.

Example:

./batchtx info --config ./config.toml
`,
	}

	titleColor = color.New(color.FgCyan, color.Bold)
	valueColor = color.New(color.FgGreen)
)

func printField(name string, value interface{}) {
	fmt.Printf("%s %s\n", titleColor.Sprintf("%-16s", name+":"), valueColor.Sprint(value))
}

func info(ctx *cli.Context) error {
	e, err := setupEnv(ctx, false)
	if err != nil {
		return err
	}
	defer e.close()

	cctx, cancel := signalContext()
	defer cancel()

	address, err := e.key.Address()
	if err != nil {
		return err
	}
	total, count, err := ckb.TotalCapacity(cctx, e.client, e.key.LockScript())
	if err != nil {
		return err
	}

	batch := e.config.Batch
	needed := common.CKBToShannons(batch.CellCapacity) * uint64(batch.TxCount)
	printField("Network", e.chainParams.Network)
	printField("Sender", address)
	printField("Live cells", count)
	printField("Capacity", common.FormatCKB(total)+" CKB")
	printField("Merge target", common.FormatCKB(needed)+" CKB")
	if total < needed {
		color.Red("capacity is not enough for %d split cells", batch.TxCount)
	}
	return nil
}
