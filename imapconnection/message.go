// SPDX-License-Identifier: GPL-3.0-or-later
package imapconnection

import (
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/CrawX/go-imap-archiver/domain"
	"github.com/CrawX/go-imap-archiver/mail"
	"github.com/CrawX/go-imap-archiver/sanitize"

	"github.com/emersion/go-imap"
	"github.com/sirupsen/logrus"
)

// imapMessage is one INBOX mail found by Search. The full body is fetched
// with BODY.PEEK[] at most once, the first time it is needed.
type imapMessage struct {
	conn *ImapConnection
	uid  uint32

	subject    string
	sender     string
	senderName string
	receivedAt *time.Time
	received   time.Time
	unread     bool

	attachmentCount int

	parsed  *mail.Parsed
	loadErr error

	l *logrus.Entry
}

func newImapMessage(conn *ImapConnection, msg *imap.Message) *imapMessage {
	m := &imapMessage{
		conn:            conn,
		uid:             msg.Uid,
		subject:         msg.Envelope.Subject,
		unread:          !hasFlag(msg.Flags, imap.SeenFlag),
		attachmentCount: countAttachments(msg.BodyStructure),
		l:               conn.l.WithField("uid", msg.Uid),
	}

	if len(msg.Envelope.From) > 0 && msg.Envelope.From[0] != nil {
		m.sender = msg.Envelope.From[0].Address()
		m.senderName = msg.Envelope.From[0].PersonalName
	}

	switch {
	case !msg.InternalDate.IsZero():
		m.received = msg.InternalDate
	case !msg.Envelope.Date.IsZero():
		m.received = msg.Envelope.Date
	}
	if !m.received.IsZero() {
		received := m.received
		m.receivedAt = &received
	}

	return m
}

func (m *imapMessage) newerThan(other *imapMessage) bool {
	if !m.received.Equal(other.received) {
		return m.received.After(other.received)
	}
	return m.uid > other.uid
}

func hasFlag(flags []string, flag string) bool {
	for _, f := range flags {
		if strings.EqualFold(f, flag) {
			return true
		}
	}
	return false
}

// countAttachments walks a BODYSTRUCTURE and counts leaf parts that carry
// an attachment disposition or a file name.
func countAttachments(bs *imap.BodyStructure) int {
	if bs == nil {
		return 0
	}

	if len(bs.Parts) > 0 {
		count := 0
		for _, p := range bs.Parts {
			count += countAttachments(p)
		}
		return count
	}

	if strings.EqualFold(bs.Disposition, "attachment") ||
		bs.DispositionParams["filename"] != "" ||
		bs.Params["name"] != "" {
		return 1
	}
	return 0
}

func (m *imapMessage) load() (*mail.Parsed, error) {
	if m.parsed != nil || m.loadErr != nil {
		return m.parsed, m.loadErr
	}

	raw, err := m.conn.fetchRaw(m.uid)
	if err != nil {
		m.loadErr = err
		return nil, err
	}

	parsed, err := mail.Parse(raw)
	if err != nil {
		m.loadErr = &domain.ProviderError{Op: "parse", Err: err}
		return nil, m.loadErr
	}

	m.parsed = parsed
	return parsed, nil
}

// Snapshot never fails, a body that cannot be fetched is left empty.
func (m *imapMessage) Snapshot() domain.MessageSnapshot {
	snapshot := domain.MessageSnapshot{
		Subject:         m.subject,
		Sender:          m.sender,
		SenderName:      m.senderName,
		ReceivedAt:      m.receivedAt,
		AttachmentCount: m.attachmentCount,
		Unread:          m.unread,
	}

	parsed, err := m.load()
	if err != nil {
		m.l.WithError(err).Warn("Could not read mail body")
		return snapshot
	}

	snapshot.Body = parsed.Body
	if snapshot.Subject == "" {
		snapshot.Subject = parsed.Subject
	}
	if snapshot.Sender == "" {
		snapshot.Sender = parsed.From
		snapshot.SenderName = parsed.FromName
	}
	if len(parsed.Attachments) > snapshot.AttachmentCount {
		snapshot.AttachmentCount = len(parsed.Attachments)
	}

	return snapshot
}

// SaveAttachments writes every attachment into dir. Single attachments
// that cannot be written are logged and skipped. The parsed mail is
// dropped afterwards, so attachment bytes do not stay in memory for the
// rest of the batch.
func (m *imapMessage) SaveAttachments(dir string) ([]string, error) {
	parsed, err := m.load()
	if err != nil {
		return nil, err
	}

	defer m.release()

	if len(parsed.Attachments) == 0 {
		return []string{}, nil
	}

	err = os.MkdirAll(dir, 0o700)
	if err != nil {
		return nil, &domain.ProviderError{Op: "save attachments", Err: err}
	}

	paths := []string{}
	for _, a := range parsed.Attachments {
		target, err := sanitize.UniquePath(filepath.Join(dir, sanitize.Filename(a.Filename, sanitize.MaxFilenameLength)))
		if err == nil {
			err = os.WriteFile(target, a.Data, 0o600)
		}
		if err != nil {
			m.l.WithError(err).WithField("attachment", a.Filename).Warn("Could not save attachment")
			continue
		}
		paths = append(paths, target)
	}

	m.l.WithFields(logrus.Fields{"saved": len(paths), "attachments": len(parsed.Attachments)}).Debug("Saved attachments")
	return paths, nil
}

// release forgets the parsed mail, a later Snapshot or SaveAttachments
// fetches it again.
func (m *imapMessage) release() {
	if m.parsed != nil && len(m.parsed.Attachments) > m.attachmentCount {
		m.attachmentCount = len(m.parsed.Attachments)
	}
	m.parsed = nil
}

// SetCategory replaces any other registered category keyword with the one
// for name.
func (m *imapMessage) SetCategory(name string) error {
	keyword := sanitize.KeywordAtom(name)

	others, err := m.conn.otherCategoryKeywords(keyword)
	if err != nil {
		return &domain.ProviderError{Op: "set category", Err: err}
	}

	if len(others) > 0 {
		err = m.conn.store(m.uid, imap.RemoveFlags, others)
		if err != nil {
			return &domain.ProviderError{Op: "set category", Err: err}
		}
	}

	err = m.conn.store(m.uid, imap.AddFlags, []string{keyword})
	if err != nil {
		return &domain.ProviderError{Op: "set category", Err: err}
	}

	m.l.WithField("keyword", keyword).Debug("Set category")
	return nil
}

func (m *imapMessage) MarkAsRead() error {
	err := m.conn.store(m.uid, imap.AddFlags, []string{imap.SeenFlag})
	if err != nil {
		return &domain.ProviderError{Op: "mark as read", Err: err}
	}
	m.unread = false
	return nil
}

func (m *imapMessage) MoveTo(folder *domain.FolderRef) error {
	if folder == nil {
		return &domain.ProviderError{Op: "move", Err: os.ErrInvalid}
	}
	if err := m.conn.connected(); err != nil {
		return err
	}

	err := m.conn.mailMover.move(m.uid, folder.Mailbox)
	if err != nil {
		return &domain.ProviderError{Op: "move", Err: err}
	}

	m.l.WithField("mailbox", folder.Mailbox).Debug("Moved mail")
	return nil
}
