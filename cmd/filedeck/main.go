// filedeck - command-line client for the filedeck file storage service
package main

import (
	"os"

	"github.com/filedeck/filedeck/internal/cli"
	"github.com/filedeck/filedeck/internal/version"
)

// Version information, set by ldflags
var (
	Version   = ""
	BuildTime = ""
)

func main() {
	if Version != "" {
		version.Version = Version
	}
	if BuildTime != "" {
		version.BuildTime = BuildTime
	}

	if err := cli.Execute(); err != nil {
		os.Exit(1)
	}
}
