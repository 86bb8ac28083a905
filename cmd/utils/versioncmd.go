package utils

import (
	"fmt"
	"runtime"
	"strings"

	"github.com/anyswap/CKB-BatchTx/params"
	"github.com/urfave/cli/v2"
)

var (
	// VersionCommand version subcommand
	VersionCommand = &cli.Command{
		Action:    version,
		Name:      "version",
		Usage:     "Print version numbers",
		ArgsUsage: " ",
		Description: `
The output of this command is supposed to be machine-readable,
one 'key: value' pair per line.
`,
	}
)

func version(ctx *cli.Context) error {
	lines := [][2]string{
		{"Name", strings.ToLower(clientIdentifier)},
		{"Version", params.VersionWithMeta},
		{"Git Commit", gitCommit},
		{"Git Commit Date", gitDate},
		{"Default Network", params.DefaultNetwork},
		{"Go Version", runtime.Version()},
		{"Platform", runtime.GOOS + "/" + runtime.GOARCH},
	}
	for _, line := range lines {
		if line[1] == "" {
			continue
		}
		fmt.Printf("%s: %s\n", line[0], line[1])
	}
	return nil
}
