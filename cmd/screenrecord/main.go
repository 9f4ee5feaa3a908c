package main

import (
	"fmt"
	"os"
	"runtime"

	"github.com/petems/screenrecord/internal/cli"
)

var (
	// Version is set via ldflags at build time
	Version = "dev"
	// Commit is set via ldflags at build time
	Commit = "unknown"
)

func init() {
	// The tray surface needs the main OS thread.
	runtime.LockOSThread()
}

func main() {
	if err := cli.NewRootCmd(Version, Commit).Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "screenrecord:", err)
		os.Exit(1)
	}
}
