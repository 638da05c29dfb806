// SPDX-License-Identifier: GPL-3.0-or-later
package main

import (
	"context"

	"github.com/CrawX/go-imap-archiver/processor"

	"github.com/pterm/pterm"
	"github.com/spf13/cobra"
)

func newPreviewCommand(configPath *string) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "preview",
		Short: "List the emails a run would process without touching them",
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := loadApp(*configPath)
			if err != nil {
				return err
			}
			defer a.Close()

			s := overrideSettings(cmd, a.settings)
			gw, err := a.gateway()
			if err != nil {
				return err
			}

			p, err := processor.New(gw, nil, processor.OnLog(printLog))
			if err != nil {
				return err
			}

			snapshots, err := p.Preview(context.Background(), s.Mailbox, s.Keywords, s.UnreadOnly)
			if err != nil {
				return err
			}
			printSnapshots(snapshots)
			return nil
		},
	}
	addSettingsFlags(cmd)
	return cmd
}

func newFoldersCommand(configPath *string) *cobra.Command {
	return &cobra.Command{
		Use:   "folders",
		Short: "List the folders usable as destination",
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := loadApp(*configPath)
			if err != nil {
				return err
			}
			defer a.Close()

			gw, err := a.gateway()
			if err != nil {
				return err
			}
			if err := gw.Connect(); err != nil {
				return err
			}

			folders, err := gw.Folders()
			if err != nil {
				return err
			}
			items := make([]pterm.BulletListItem, 0, len(folders))
			for _, f := range folders {
				items = append(items, pterm.BulletListItem{Level: 0, Text: f})
			}
			return pterm.DefaultBulletList.WithItems(items).Render()
		},
	}
}
