// Copyright (C) 2019-2025, Lux Industries, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

// Command securerpc talks to a securerpc server from the shell: it runs
// discovery, checks fingerprints and sends encrypted calls.
package main

import (
	"context"
	"os"

	"github.com/carlmjohnson/versioninfo"
	"github.com/charmbracelet/fang"
)

func main() {
	a := newApp()
	err := fang.Execute(
		context.Background(),
		a.rootCommand(),
		fang.WithVersion(versioninfo.Short()),
	)
	a.dumpLogs(os.Stderr)
	if err != nil {
		os.Exit(1)
	}
}
