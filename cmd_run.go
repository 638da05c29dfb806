// SPDX-License-Identifier: GPL-3.0-or-later
package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/CrawX/go-imap-archiver/domain"
	"github.com/CrawX/go-imap-archiver/processor"
	"github.com/CrawX/go-imap-archiver/render"
	"github.com/CrawX/go-imap-archiver/settings"

	"github.com/pterm/pterm"
	"github.com/spf13/cobra"
)

const dateLayout = "02/01/2006"

type runFlags struct {
	from string
	to   string
	save bool
}

func newRunCommand(configPath *string) *cobra.Command {
	var rf runFlags

	cmd := &cobra.Command{
		Use:   "run",
		Short: "Process every matching email into an archive PDF",
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := loadApp(*configPath)
			if err != nil {
				return err
			}
			defer a.Close()

			s := overrideSettings(cmd, a.settings)
			if rf.save {
				if err := settings.Save(a.conf.SettingsFile, s); err != nil {
					return err
				}
				pterm.Info.Printfln("Paramètres enregistrés dans %s", a.conf.SettingsFile)
			}

			req, err := buildRequest(s, rf)
			if err != nil {
				return err
			}
			return runBatch(a, s.OutputFolder, req)
		},
	}

	addSettingsFlags(cmd)
	cmd.Flags().StringVar(&rf.from, "from", "", "only emails received on or after this day (dd/mm/yyyy)")
	cmd.Flags().StringVar(&rf.to, "to", "", "only emails received on or before this day (dd/mm/yyyy)")
	cmd.Flags().BoolVar(&rf.save, "save", false, "persist the given settings for the next runs")
	return cmd
}

func addSettingsFlags(cmd *cobra.Command) {
	cmd.Flags().String("mailbox", "", "account the emails are read from")
	cmd.Flags().String("keywords", "", "comma separated subject keywords")
	cmd.Flags().String("output", "", "folder the archive PDFs are written to")
	cmd.Flags().String("destination", "", `folder processed emails are moved to, e.g. \Account\INBOX\Fournisseurs`)
	cmd.Flags().String("category", "", "category set on processed emails")
	cmd.Flags().Bool("unread-only", true, "only consider unread emails")
}

// overrideSettings applies the flags the operator passed explicitly.
func overrideSettings(cmd *cobra.Command, s settings.Settings) settings.Settings {
	flags := cmd.Flags()
	str := func(name string, target *string) {
		if flags.Changed(name) {
			v, _ := flags.GetString(name)
			*target = v
		}
	}
	str("mailbox", &s.Mailbox)
	str("keywords", &s.Keywords)
	str("output", &s.OutputFolder)
	str("destination", &s.DestinationFolder)
	str("category", &s.Category)
	if flags.Changed("unread-only") {
		s.UnreadOnly, _ = flags.GetBool("unread-only")
	}
	return s
}

func parseDate(s string) (*time.Time, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil, nil
	}
	t, err := time.ParseInLocation(dateLayout, s, time.Local)
	if err != nil {
		return nil, fmt.Errorf("invalid date %q, expected dd/mm/yyyy", s)
	}
	return &t, nil
}

func buildRequest(s settings.Settings, rf runFlags) (processor.Request, error) {
	if strings.TrimSpace(s.OutputFolder) == "" {
		return processor.Request{}, errors.New("no output folder set, use --output")
	}

	from, err := parseDate(rf.from)
	if err != nil {
		return processor.Request{}, err
	}
	to, err := parseDate(rf.to)
	if err != nil {
		return processor.Request{}, err
	}
	if from != nil && to != nil && to.Before(*from) {
		return processor.Request{}, fmt.Errorf("--to %s is before --from %s", rf.to, rf.from)
	}

	return processor.Request{
		Mailbox:           s.Mailbox,
		Keywords:          s.Keywords,
		DestinationFolder: s.DestinationFolder,
		SuccessCategory:   s.Category,
		UnreadOnly:        s.UnreadOnly,
		DateFrom:          from,
		DateTo:            to,
	}, nil
}

func runBatch(a *app, outputFolder string, req processor.Request) error {
	if err := os.MkdirAll(outputFolder, 0o755); err != nil {
		return fmt.Errorf("could not create output folder: %w", err)
	}

	gw, err := a.gateway()
	if err != nil {
		return err
	}

	converter := render.NewOfficeConverter(a.conf.Converter, a.conf.ConversionTimeoutDuration())
	renderer := render.NewPdfRenderer(outputFolder, converter)

	bar := &progressBar{}
	configs := []processor.ConfigFunc{
		processor.OnProgress(bar.Update),
		processor.OnLog(printLog),
		processor.OnStatus(func(text string) { pterm.Info.Println(text) }),
	}
	if a.conf.TempDir != "" {
		configs = append(configs, processor.TempDir(a.conf.TempDir))
	}
	if a.conf.MoveOnStop {
		configs = append(configs, processor.MoveOnStop())
	}

	p, err := processor.New(gw, renderer, configs...)
	if err != nil {
		return err
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	stopOnInterrupt(ctx, p, cancel)

	stats, err := p.RunBatch(ctx, req)
	bar.Stop(stats.Processed)
	if err != nil {
		return err
	}

	printSummary(p.State(), stats, p.Results())
	if p.State() == domain.BatchErrored {
		return errors.New("batch aborted")
	}
	return nil
}

// stopOnInterrupt requests a cooperative stop on the first SIGINT and
// cancels the context on the second.
func stopOnInterrupt(ctx context.Context, p *processor.Processor, cancel context.CancelFunc) {
	signals := make(chan os.Signal, 2)
	signal.Notify(signals, os.Interrupt, syscall.SIGTERM)

	go func() {
		defer signal.Stop(signals)
		interrupts := 0
		for {
			select {
			case <-ctx.Done():
				return
			case <-signals:
				interrupts++
				if interrupts == 1 {
					pterm.Warning.Println("Arrêt demandé, fin de l'email en cours...")
					p.RequestStop()
					continue
				}
				cancel()
				return
			}
		}
	}()
}
