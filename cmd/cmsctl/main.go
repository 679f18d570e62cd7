// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

// Command cmsctl is the operator command line for newcms.
package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/erolledph/new-cms/internal/cli"
	"github.com/erolledph/new-cms/internal/version"
)

// Version information - injected at build time via ldflags
var (
	appVersion   = "dev"
	appGitCommit = "unknown"
	appBuildTime = "unknown"
)

func main() {
	info := version.Info{Version: appVersion, GitCommit: appGitCommit, BuildTime: appBuildTime}

	cmd := cli.NewRootCommand()
	cmd.Version = info.Short()
	cmd.SetVersionTemplate(info.String() + "\n")

	if err := cmd.Execute(); err != nil {
		// Command failures were already reported by the output formatter.
		var exitErr *cli.ExitError
		if !errors.As(err, &exitErr) {
			_, _ = fmt.Fprintln(os.Stderr, "Error:", err)
		}
		os.Exit(cli.GetExitCode(err))
	}
}
