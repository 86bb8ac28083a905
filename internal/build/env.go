package build

import (
	"flag"
	"os"
	"strconv"
	"strings"
	"time"
)

var (
	// override git info of the local repository
	gitCommitFlag = flag.String("git-commit", "", `Overrides git commit hash embedded into executables`)
	gitDateFlag   = flag.String("git-date", "", `Overrides git commit date embedded into executables`)
)

// Environment contains metadata provided by the build environment.
type Environment struct {
	Commit string
	Date   string
	Branch string
}

func (env Environment) String() string {
	return "commit=" + env.Commit + " date=" + env.Date + " branch=" + env.Branch
}

// Env returns metadata about the current build environment,
// read from flags, environment variables and the local git repository.
func Env() Environment {
	env := LocalEnv()
	if commit := firstNonEmpty(*gitCommitFlag, os.Getenv("GIT_COMMIT")); commit != "" {
		env.Commit = commit
		env.Date = firstNonEmpty(*gitDateFlag, os.Getenv("GIT_DATE"))
	}
	return env
}

// LocalEnv returns build environment metadata gathered from git.
func LocalEnv() Environment {
	env := Environment{}
	head := readGitFile("HEAD")
	if fields := strings.Fields(head); len(fields) == 2 {
		head = fields[1]
	} else {
		// detached head
		env.Commit = head
		env.Date = getDate(env.Commit)
		return env
	}
	env.Commit = readGitFile(head)
	env.Date = getDate(env.Commit)
	if strings.HasPrefix(head, "refs/heads/") {
		env.Branch = strings.TrimPrefix(head, "refs/heads/")
	}
	return env
}

func getDate(commit string) string {
	if commit == "" {
		return ""
	}
	out := RunGit("show", "-s", "--format=%ct", commit)
	if out == "" {
		return ""
	}
	timestamp, err := strconv.ParseInt(out, 10, 64)
	if err != nil {
		return ""
	}
	return time.Unix(timestamp, 0).UTC().Format("20060102")
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
