package main

import (
	"fmt"
	"os"
	"sort"

	"github.com/anyswap/CKB-BatchTx/cmd/utils"
	"github.com/anyswap/CKB-BatchTx/log"
	"github.com/urfave/cli/v2"
)

var (
	clientIdentifier = "batchtx"
	// Git SHA1 commit hash of the release (set via linker flags)
	gitCommit = ""
	gitDate   = ""
	// The app that holds all commands and flags.
	app = utils.NewApp(clientIdentifier, gitCommit, gitDate, "send many small ckb transactions in batches")
)

func initApp() {
	// Initialize the CLI app and start action
	app.Action = batchtx
	app.HideVersion = true // we have a command to print the version
	app.Copyright = "Copyright 2022 The CKB-BatchTx Authors"
	app.Commands = []*cli.Command{
		infoCommand,
		mergeCommand,
		splitCommand,
		batchSendCommand,
		statusCommand,
		utils.VersionCommand,
	}
	app.Flags = append([]cli.Flag{utils.ConfigFileFlag}, utils.CommonLogFlags...)
	sort.Sort(cli.CommandsByName(app.Commands))
}

func main() {
	initApp()
	if err := app.Run(os.Args); err != nil {
		log.Println(err)
		os.Exit(1)
	}
}

func batchtx(ctx *cli.Context) error {
	utils.SetLogger(ctx)
	if ctx.NArg() > 0 {
		return fmt.Errorf("invalid command: %q", ctx.Args().Get(0))
	}
	return cli.ShowAppHelp(ctx)
}
