package internal

import (
	"fmt"
	"runtime"
	"strings"
)

// Program name, used for the binary, XDG subdirectories, and the log prefix.
const Name = "podsmith"

const (
	unset        = "(undefined)" // Placeholder for a build variable that was not set.
	localBuild   = "(local)"     // Version string reported by non-pipeline builds.
	releaseTrack = "main"        // Stage that is omitted from version strings.
)

// Set via -ldflags "-X github.com/cruciblehq/podsmith/internal.<var>=<value>".
var (
	version   = ""
	stage     = ""
	gitCommit = ""

	rawQuiet   = "false"
	rawDebug   = "false"
	rawVerbose = "false"
)

// Returns the release version without a leading "v".
func Version() string {
	v := strings.ToLower(strings.TrimSpace(version))
	if v == "" {
		return unset
	}
	return strings.TrimPrefix(v, "v")
}

// Returns the lowercased build stage (usually the branch name).
func Stage() string {
	if s := strings.TrimSpace(stage); s != "" {
		return strings.ToLower(s)
	}
	return unset
}

// Returns the git commit the binary was built from.
func GitCommit() string {
	if c := strings.TrimSpace(gitCommit); c != "" {
		return c
	}
	return unset
}

// Reports whether any of the pipeline variables is missing.
func IsLocal() bool {
	for _, v := range []string{version, stage, gitCommit} {
		if strings.TrimSpace(v) == "" {
			return true
		}
	}
	return false
}

// Returns "<version>[+<stage>] <commit> [<arch>]", or "(local)" for
// developer builds.
func VersionString() string {
	if IsLocal() {
		return localBuild
	}

	suffix := ""
	if s := Stage(); s != releaseTrack {
		suffix = "+" + s
	}

	return fmt.Sprintf("%s%s %s [%s]", Version(), suffix, GitCommit(), runtime.GOARCH)
}
