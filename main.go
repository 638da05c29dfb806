// SPDX-License-Identifier: GPL-3.0-or-later
package main

import (
	"os"

	"github.com/CrawX/go-imap-archiver/log"

	"github.com/spf13/cobra"
)

func main() {
	log.InitLogging("info")
	logger := log.Logger(log.LOG_MAIN)

	if err := newRootCommand().Execute(); err != nil {
		logger.WithField("error", err).Error("Command failed")
		os.Exit(1)
	}
}

func newRootCommand() *cobra.Command {
	var configPath string

	root := &cobra.Command{
		Use:           "go-imap-archiver",
		Short:         "Archive supplier emails as PDF and sort them on the IMAP server",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.PersistentFlags().StringVarP(&configPath, "config", "c", "config.toml", "TOML configuration file")

	root.AddCommand(
		newRunCommand(&configPath),
		newPreviewCommand(&configPath),
		newFoldersCommand(&configPath),
		newLoginCommand(&configPath),
	)
	return root
}
