// SPDX-License-Identifier: GPL-3.0-or-later
package processor

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"sync/atomic"
	"time"

	"github.com/CrawX/go-imap-archiver/domain"
	"github.com/CrawX/go-imap-archiver/log"
	"github.com/CrawX/go-imap-archiver/mail"
	"github.com/CrawX/go-imap-archiver/sanitize"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

const (
	DefaultErrorCategory = "Erreur traitement"
	progressSubjectLen   = 40
)

var ErrAlreadyRunning = errors.New("a batch is already running")

// Request describes one batch. Keywords is the raw comma separated list.
type Request struct {
	Mailbox           string
	Keywords          string
	DestinationFolder string
	SuccessCategory   string
	UnreadOnly        bool
	DateFrom          *time.Time
	DateTo            *time.Time
}

// Processor runs batches one message at a time over a single gateway.
// Stats, Results, State, IsRunning and RequestStop may be called from
// other goroutines while RunBatch is active.
type Processor struct {
	gateway  domain.Gateway
	renderer domain.Renderer

	configuration *configuration

	stop    atomic.Bool
	running atomic.Bool

	mu      sync.Mutex
	state   domain.BatchState
	stats   domain.ProcessingStats
	results []domain.ProcessingResult

	l *logrus.Logger
}

func New(gateway domain.Gateway, renderer domain.Renderer, configFunc ...ConfigFunc) (*Processor, error) {
	config := &configuration{
		TempDir:       os.TempDir(),
		ErrorCategory: DefaultErrorCategory,
	}
	for _, f := range configFunc {
		err := f(config)
		if err != nil {
			return nil, fmt.Errorf("error applying configuration: %w", err)
		}
	}

	return &Processor{
		gateway:       gateway,
		renderer:      renderer,
		configuration: config,
		state:         domain.BatchIdle,
		results:       []domain.ProcessingResult{},
		l:             log.Logger(log.LOG_PROCESSOR),
	}, nil
}

// RequestStop takes effect at the next checkpoint, a step in flight is
// never interrupted.
func (p *Processor) RequestStop() {
	p.stop.Store(true)
	p.logEvent(domain.LevelWarning, "Arrêt demandé, fin après l'étape en cours", nil)
}

func (p *Processor) IsRunning() bool {
	return p.running.Load()
}

func (p *Processor) State() domain.BatchState {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.state
}

func (p *Processor) Stats() domain.ProcessingStats {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.stats
}

func (p *Processor) Results() []domain.ProcessingResult {
	p.mu.Lock()
	defer p.mu.Unlock()
	results := make([]domain.ProcessingResult, len(p.results))
	copy(results, p.results)
	return results
}

// RunBatch processes every matching message in search order. Only a
// failing connect is returned as error, every other problem ends up in
// the log, the stats and the batch state.
func (p *Processor) RunBatch(ctx context.Context, req Request) (domain.ProcessingStats, error) {
	if !p.running.CompareAndSwap(false, true) {
		return p.Stats(), ErrAlreadyRunning
	}
	defer p.running.Store(false)

	p.stop.Store(false)
	p.mu.Lock()
	p.stats = domain.ProcessingStats{}
	p.results = []domain.ProcessingResult{}
	p.state = domain.BatchRunning
	p.mu.Unlock()

	start := time.Now()

	workspace, err := os.MkdirTemp(p.configuration.TempDir, "email_processing_")
	if err != nil {
		p.abort(fmt.Errorf("could not create workspace: %w", err))
		return p.Stats(), nil
	}
	defer p.removeWorkspace(workspace)

	p.status("Connexion au serveur IMAP...")
	err = p.gateway.Connect()
	if err != nil {
		p.abort(err)
		return p.Stats(), err
	}
	p.logEvent(domain.LevelSuccess, "Connecté au serveur IMAP", nil)

	if req.SuccessCategory != "" {
		err = p.gateway.EnsureCategory(req.SuccessCategory, domain.ColorGreen)
		if err != nil {
			p.abort(err)
			return p.Stats(), nil
		}
	}
	err = p.gateway.EnsureCategory(p.configuration.ErrorCategory, domain.ColorRed)
	if err != nil {
		p.abort(err)
		return p.Stats(), nil
	}

	keywords := sanitize.Keywords(req.Keywords)
	if len(keywords) == 0 {
		p.logEvent(domain.LevelWarning, "Aucun mot-clé fourni, rien à traiter", nil)
		p.finish(domain.BatchCompleted, "Aucun mot-clé")
		return p.Stats(), nil
	}

	var folder *domain.FolderRef
	if req.DestinationFolder != "" {
		folder, err = p.gateway.ResolveFolder(req.DestinationFolder)
		if err != nil {
			p.logEvent(domain.LevelWarning, "Dossier de destination introuvable, les emails ne seront pas déplacés",
				logrus.Fields{"folder": req.DestinationFolder, "error": err})
			folder = nil
		}
	}

	p.status("Recherche des emails...")
	messages, err := p.gateway.Search(req.Mailbox, domain.SearchCriteria{
		Keywords:   keywords,
		UnreadOnly: req.UnreadOnly,
		DateFrom:   req.DateFrom,
		DateTo:     req.DateTo,
	})
	if err != nil {
		p.abort(err)
		return p.Stats(), nil
	}

	total := len(messages)
	p.mu.Lock()
	p.stats.Total = total
	p.mu.Unlock()

	if total == 0 {
		p.logEvent(domain.LevelInfo, "Aucun email correspondant", logrus.Fields{"keywords": keywords})
		p.finish(domain.BatchCompleted, "Aucun email à traiter")
		return p.Stats(), nil
	}
	p.logEvent(domain.LevelInfo, fmt.Sprintf("%d email(s) trouvé(s)", total), logrus.Fields{"keywords": keywords})

	for i, msg := range messages {
		if p.stopRequested(ctx) {
			p.logEvent(domain.LevelWarning, "Traitement arrêté par l'utilisateur",
				logrus.Fields{"processed": i, "total": total})
			break
		}

		snapshot := msg.Snapshot()
		p.progress(i+1, total, fmt.Sprintf("Traitement: %s...", truncate(snapshot.Subject, progressSubjectLen)))

		result := p.processMessage(ctx, msg, snapshot, workspace, folder, req.SuccessCategory)
		p.record(result)
	}

	stats := p.Stats()
	p.l.WithFields(logrus.Fields{
		"total":     stats.Total,
		"processed": stats.Processed,
		"success":   stats.Success,
		"failed":    stats.Failed,
		"skipped":   stats.Skipped,
		"duration":  time.Since(start).Round(time.Millisecond),
	}).Info("Batch done")

	// A stop that arrived after the last message finished changes nothing.
	if p.stopRequested(ctx) && (stats.Processed < stats.Total || stats.Skipped > 0) {
		p.finish(domain.BatchStopped, "Traitement arrêté")
	} else {
		p.finish(domain.BatchCompleted, fmt.Sprintf("Traitement terminé: %d succès, %d échec(s)", stats.Success, stats.Failed))
	}

	return stats, nil
}

// processMessage runs the per-message sequence. The order of category,
// read flag and move is fixed: the move always comes last.
func (p *Processor) processMessage(ctx context.Context, msg domain.Message, snapshot domain.MessageSnapshot, workspace string, folder *domain.FolderRef, successCategory string) domain.ProcessingResult {
	result := domain.ProcessingResult{
		Subject: snapshot.Subject,
		Sender:  snapshot.Sender,
		Status:  domain.StatusPending,
	}
	msgLogger := p.l.WithField("subject", mail.ShortSubject(snapshot.Subject))

	if p.stopRequested(ctx) {
		return p.skip(result)
	}
	result.Status = domain.StatusInProgress

	attachments := []string{}
	if snapshot.HasAttachments() {
		dir := filepath.Join(workspace, workspaceKey())
		paths, err := msg.SaveAttachments(dir)
		if err != nil {
			return p.fail(result, msg, fmt.Errorf("could not save attachments: %w", err))
		}
		attachments = paths
		msgLogger.WithField("attachments", len(paths)).Debug("Saved attachments")
	}

	if p.stopRequested(ctx) {
		return p.skip(result)
	}

	primary, err := p.renderer.RenderPrimary(domain.PrimaryDocument{
		Sender:     snapshot.Sender,
		SenderName: snapshot.SenderName,
		Subject:    snapshot.Subject,
		Body:       snapshot.Body,
		ReceivedAt: snapshot.ReceivedAt,
	})
	if err != nil {
		return p.fail(result, msg, err)
	}

	artifact, err := p.renderer.MergeWithAttachments(ctx, primary, attachments)
	if err != nil {
		return p.fail(result, msg, err)
	}
	result.ArtifactPath = artifact

	if successCategory != "" {
		err = msg.SetCategory(successCategory)
		if err != nil {
			return p.fail(result, msg, err)
		}
	}

	err = msg.MarkAsRead()
	if err != nil {
		return p.fail(result, msg, err)
	}

	if !p.configuration.MoveOnStop && p.stopRequested(ctx) {
		return p.skip(result)
	}

	if folder != nil {
		err = msg.MoveTo(folder)
		if err != nil {
			return p.fail(result, msg, err)
		}
	}

	result.Status = domain.StatusSuccess
	p.logEvent(domain.LevelSuccess, "Email traité: "+mail.ShortSubject(snapshot.Subject),
		logrus.Fields{"artifact": filepath.Base(artifact)})
	return result
}

func (p *Processor) skip(result domain.ProcessingResult) domain.ProcessingResult {
	result.Status = domain.StatusSkipped
	p.logEvent(domain.LevelInfo, "Email ignoré: "+mail.ShortSubject(result.Subject), nil)
	return result
}

// fail tags the message with the error category, best-effort.
func (p *Processor) fail(result domain.ProcessingResult, msg domain.Message, err error) domain.ProcessingResult {
	result.Status = domain.StatusFailed
	result.ErrorMessage = err.Error()
	p.logEvent(domain.LevelError, "Erreur: "+mail.ShortSubject(result.Subject), logrus.Fields{"error": err})

	if tagErr := msg.SetCategory(p.configuration.ErrorCategory); tagErr != nil {
		p.l.WithError(tagErr).WithField("subject", mail.ShortSubject(result.Subject)).Warn("Could not apply error category")
	}

	return result
}

func (p *Processor) record(result domain.ProcessingResult) {
	p.mu.Lock()
	defer p.mu.Unlock()

	// The result log only holds finished messages.
	if !result.Status.Final() {
		p.l.WithField("status", result.Status).Error("Message sequence left an unfinished status")
		result.Status = domain.StatusFailed
		result.ErrorMessage = "processing did not finish"
	}

	p.results = append(p.results, result)
	p.stats.Processed++
	switch result.Status {
	case domain.StatusSuccess:
		p.stats.Success++
	case domain.StatusFailed:
		p.stats.Failed++
	case domain.StatusSkipped:
		p.stats.Skipped++
	}
}

func (p *Processor) stopRequested(ctx context.Context) bool {
	return p.stop.Load() || ctx.Err() != nil
}

func (p *Processor) abort(err error) {
	p.logEvent(domain.LevelError, "Erreur critique", logrus.Fields{"error": err})
	p.finish(domain.BatchErrored, "Erreur: "+err.Error())
}

func (p *Processor) finish(state domain.BatchState, status string) {
	p.mu.Lock()
	p.state = state
	p.mu.Unlock()
	p.status(status)
}

func (p *Processor) removeWorkspace(workspace string) {
	err := os.RemoveAll(workspace)
	if err != nil {
		p.l.WithError(err).WithField("workspace", workspace).Warn("Could not remove workspace")
		return
	}
	p.l.WithField("workspace", workspace).Debug("Removed workspace")
}

func (p *Processor) logEvent(level domain.LogLevel, message string, fields logrus.Fields) {
	entry := p.l.WithFields(fields)
	switch level {
	case domain.LevelDebug:
		entry.Debug(message)
	case domain.LevelWarning:
		entry.Warn(message)
	case domain.LevelError:
		entry.Error(message)
	default:
		entry.Info(message)
	}

	if p.configuration.onLog != nil {
		p.configuration.onLog(message, level)
	}
}

func (p *Processor) progress(current, total int, message string) {
	if p.configuration.onProgress != nil {
		p.configuration.onProgress(current, total, message)
	}
}

func (p *Processor) status(text string) {
	if p.configuration.onStatus != nil {
		p.configuration.onStatus(text)
	}
}

// workspaceKey names a per-message folder, time ordered and collision free.
func workspaceKey() string {
	id, err := uuid.NewV7()
	if err != nil {
		id = uuid.New()
	}
	return "email_" + id.String()
}

func truncate(s string, max int) string {
	r := []rune(s)
	if len(r) <= max {
		return s
	}
	return string(r[:max])
}
