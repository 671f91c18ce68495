package main

import (
	"context"
	"fmt"
	"os"
	"runtime"
	"runtime/debug"

	"github.com/urfave/cli/v3"
)

// Set through -ldflags by release builds.
var (
	Version = "dev"
	Commit  = ""
	Date    = ""
)

var versionCMD = &cli.Command{
	Name:    "version",
	Aliases: []string{"v"},
	Usage:   "Print the version",
	Action: func(_ context.Context, _ *cli.Command) error {
		commit, date := buildVCS()

		_, err := fmt.Fprintf(os.Stdout, "stvsync %s (%s, built %s)\n%s %s/%s\n",
			Version, commit, date, runtime.Version(), runtime.GOOS, runtime.GOARCH,
		)

		return err
	},
}

// buildVCS prefers the linker provided commit and date and falls back to the vcs stamp of go build.
func buildVCS() (string, string) {
	commit, date := Commit, Date

	if info, ok := debug.ReadBuildInfo(); ok {
		for _, setting := range info.Settings {
			switch {
			case setting.Key == "vcs.revision" && commit == "":
				commit = setting.Value
			case setting.Key == "vcs.time" && date == "":
				date = setting.Value
			}
		}
	}

	if commit == "" {
		commit = "unknown commit"
	}

	if date == "" {
		date = "at an unknown time"
	}

	return commit, date
}
