// SPDX-License-Identifier: GPL-3.0-or-later
package main

import (
	"fmt"
	"sync"

	"github.com/CrawX/go-imap-archiver/domain"
	"github.com/CrawX/go-imap-archiver/mail"

	"github.com/pterm/pterm"
)

// progressBar is started lazily on the first progress event since the
// total is only known once the search is done.
type progressBar struct {
	mu sync.Mutex
	pb *pterm.ProgressbarPrinter
}

// Update is called with the 1-based index of the message about to be processed.
func (b *progressBar) Update(current, total int, message string) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.pb == nil {
		pb, err := pterm.DefaultProgressbar.
			WithTotal(total).
			WithTitle(message).
			Start()
		if err != nil {
			return
		}
		b.pb = pb
	}

	b.pb.UpdateTitle(message)
	if done := current - 1; done > b.pb.Current {
		b.pb.Add(done - b.pb.Current)
	}
}

func (b *progressBar) Stop(processed int) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.pb == nil {
		return
	}
	if processed > b.pb.Current {
		b.pb.Add(processed - b.pb.Current)
	}
	_, _ = b.pb.Stop()
	b.pb = nil
}

func printLog(message string, level domain.LogLevel) {
	switch level {
	case domain.LevelDebug:
		return
	case domain.LevelSuccess:
		pterm.Success.Println(message)
	case domain.LevelWarning:
		pterm.Warning.Println(message)
	case domain.LevelError:
		pterm.Error.Println(message)
	default:
		pterm.Info.Println(message)
	}
}

func statusLabel(status domain.ProcessingStatus) string {
	switch status {
	case domain.StatusSuccess:
		return pterm.Green("succès")
	case domain.StatusFailed:
		return pterm.Red("échec")
	case domain.StatusSkipped:
		return pterm.Yellow("ignoré")
	}
	return string(status)
}

func printSummary(state domain.BatchState, stats domain.ProcessingStats, results []domain.ProcessingResult) {
	pterm.Println()
	pterm.DefaultSection.Println("Résumé")
	pterm.Info.Printfln("État: %s", state)
	pterm.Info.Printfln("Emails trouvés: %d, traités: %d (%.0f%%)", stats.Total, stats.Processed, stats.ProgressPercent())
	pterm.Info.Printfln("Succès: %d, échecs: %d, ignorés: %d", stats.Success, stats.Failed, stats.Skipped)

	if len(results) == 0 {
		return
	}

	data := pterm.TableData{{"Statut", "Expéditeur", "Sujet", "Fichier / erreur"}}
	for _, r := range results {
		detail := r.ArtifactPath
		if r.Status != domain.StatusSuccess {
			detail = r.ErrorMessage
		}
		data = append(data, []string{statusLabel(r.Status), r.Sender, mail.ShortSubject(r.Subject), detail})
	}
	_ = pterm.DefaultTable.WithHasHeader().WithData(data).Render()
}

func printSnapshots(snapshots []domain.MessageSnapshot) {
	if len(snapshots) == 0 {
		pterm.Info.Println("Aucun email correspondant")
		return
	}

	data := pterm.TableData{{"Date", "Expéditeur", "Sujet", "PJ", "Non lu"}}
	for _, s := range snapshots {
		date := "?"
		if s.ReceivedAt != nil {
			date = s.ReceivedAt.Local().Format("02/01/2006 15:04")
		}
		sender := s.SenderName
		if sender == "" {
			sender = s.Sender
		}
		unread := ""
		if s.Unread {
			unread = "oui"
		}
		data = append(data, []string{date, sender, mail.ShortSubject(s.Subject), fmt.Sprint(s.AttachmentCount), unread})
	}
	_ = pterm.DefaultTable.WithHasHeader().WithData(data).Render()
	pterm.Info.Printfln("%d email(s) correspondant(s)", len(snapshots))
}
