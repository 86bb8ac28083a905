// Copyright 2016 The go-ethereum Authors
// This file is part of the go-ethereum library.
//
// The go-ethereum library is free software: you can redistribute it and/or modify
// it under the terms of the GNU Lesser General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
//
// The go-ethereum library is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE. See the
// GNU Lesser General Public License for more details.
//
// You should have received a copy of the GNU Lesser General Public License
// along with the go-ethereum library. If not, see <http://www.gnu.org/licenses/>.

package build

import (
	"bytes"
	"errors"
	"flag"
	"fmt"
	"log"
	"os"
	"os/exec"
	"path/filepath"
	"runtime"
	"strings"
	"sync"
)

// DryRunFlag print commands instead of executing them
var DryRunFlag = flag.Bool("n", false, "dry run, don't execute commands")

var warnGitOnce sync.Once

// MustRun executes the given command and exits the host process for any error.
func MustRun(cmd *exec.Cmd) {
	fmt.Println(">>>", strings.Join(cmd.Args, " "))
	if *DryRunFlag {
		return
	}
	cmd.Stdout = os.Stdout
	cmd.Stderr = os.Stderr
	if err := cmd.Run(); err != nil {
		log.Fatal(err)
	}
}

// RunGit runs a git subcommand and returns its trimmed output.
// An empty string is returned if git is not installed.
func RunGit(args ...string) string {
	var stdout, stderr bytes.Buffer
	cmd := exec.Command("git", args...)
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr
	err := cmd.Run()
	var execErr *exec.Error
	switch {
	case err == nil:
		return strings.TrimSpace(stdout.String())
	case errors.As(err, &execErr) && errors.Is(execErr.Err, exec.ErrNotFound):
		warnGitOnce.Do(func() {
			log.Println("Warning: can't find 'git' in PATH")
		})
		return ""
	default:
		log.Fatal(strings.Join(cmd.Args, " "), ": ", err, "\n", stderr.String())
		return ""
	}
}

// readGitFile returns the trimmed content of a file in the .git directory.
func readGitFile(file string) string {
	content, err := os.ReadFile(filepath.Join(".git", file))
	if err != nil {
		return ""
	}
	return strings.TrimSpace(string(content))
}

// GoTool returns a command running the go tool of the GOROOT this build runs with,
// so the host toolchain and the invoked tools are always the same version.
func GoTool(tool string, args ...string) *exec.Cmd {
	goBinary := filepath.Join(runtime.GOROOT(), "bin", "go")
	return exec.Command(goBinary, append([]string{tool}, args...)...) //nolint:gosec // GOROOT go binary
}
