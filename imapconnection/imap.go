// SPDX-License-Identifier: GPL-3.0-or-later
package imapconnection

import (
	"fmt"
	"io"
	"sort"
	"strings"
	"time"

	"github.com/CrawX/go-imap-archiver/domain"
	"github.com/CrawX/go-imap-archiver/log"
	"github.com/CrawX/go-imap-archiver/sanitize"

	"github.com/emersion/go-imap"
	"github.com/emersion/go-imap-compress"
	"github.com/emersion/go-imap-move"
	"github.com/emersion/go-imap-uidplus"
	"github.com/emersion/go-imap/client"
	"github.com/emersion/go-message/charset"
	"github.com/sirupsen/logrus"
)

func init() {
	imap.CharsetReader = charset.Reader
}

type ImapConnection struct {
	connection  *client.Client
	mailDeleter deleter
	mailMover   mover

	server, user, password string
	account                string
	useTLS, useCompression bool

	categories domain.CategoryStore

	selectedFolder string

	l *logrus.Logger
}

type Option func(ic *ImapConnection)

// Account sets the name of the root segment in folder paths. Defaults to
// the login user.
func Account(account string) Option {
	return func(ic *ImapConnection) {
		if account != "" {
			ic.account = account
		}
	}
}

func Plain() Option {
	return func(ic *ImapConnection) {
		ic.useTLS = false
	}
}

func Compression() Option {
	return func(ic *ImapConnection) {
		ic.useCompression = true
	}
}

// NewImapConnection prepares a gateway, the session is opened by Connect.
// categories may be nil, SetCategory then only adds the requested keyword.
func NewImapConnection(server, user, password string, categories domain.CategoryStore, options ...Option) *ImapConnection {
	conn := &ImapConnection{
		server:     server,
		user:       user,
		password:   password,
		account:    user,
		useTLS:     true,
		categories: categories,
		l:          log.Logger(log.LOG_IMAP),
	}

	for _, option := range options {
		option(conn)
	}

	return conn
}

func (ic *ImapConnection) Connect() error {
	if ic.connection != nil && ic.connection.State() != imap.LogoutState {
		return nil
	}
	ic.connection = nil
	ic.selectedFolder = ""

	var imapClient *client.Client
	var err error
	if ic.useTLS {
		imapClient, err = client.DialTLS(ic.server, nil)
	} else {
		imapClient, err = client.Dial(ic.server)
	}
	if err != nil {
		return &domain.ConnectionError{Err: fmt.Errorf("could not dial to imap: %w", err)}
	}

	err = imapClient.Login(ic.user, ic.password)
	if err != nil {
		imapClient.Logout()
		return &domain.ConnectionError{Err: fmt.Errorf("could not login to imap: %w", err)}
	}

	baseLogger := ic.l.WithFields(logrus.Fields{"server": ic.server})
	baseLogger.Debug("Logged in to server")

	if ic.useCompression {
		compressClient := compress.NewClient(imapClient)
		compressSupported, err := compressClient.SupportCompress(compress.Deflate)
		if err != nil {
			imapClient.Logout()
			return &domain.ConnectionError{Err: fmt.Errorf("could not check for COMPRESS support: %w", err)}
		}
		if compressSupported {
			err = compressClient.Compress(compress.Deflate)
			if err != nil {
				imapClient.Logout()
				return &domain.ConnectionError{Err: fmt.Errorf("could not enable compression: %w", err)}
			}
			baseLogger.Debug("COMPRESS=DEFLATE enabled")
		} else {
			baseLogger.Info("COMPRESS=DEFLATE not supported on server, continuing uncompressed")
		}
	}

	uidPlusClient := uidplus.NewClient(imapClient)
	uidPlusSupported, err := uidPlusClient.SupportUidPlus()
	if err != nil {
		imapClient.Logout()
		return &domain.ConnectionError{Err: fmt.Errorf("could not check for UIDPLUS support: %w", err)}
	}

	moveClient := move.NewClient(imapClient)
	moveSupported, err := moveClient.SupportMove()
	if err != nil {
		imapClient.Logout()
		return &domain.ConnectionError{Err: fmt.Errorf("could not check for MOVE support: %w", err)}
	}

	ic.connection = imapClient

	if uidPlusSupported {
		baseLogger.Debug("UIDPLUS supported on server, using UID delete")
		ic.mailDeleter = &uidPlusDeleter{
			imapConn: &uidPlusConnection{ic, uidPlusClient},
		}
	} else {
		baseLogger.Info("UIDPLUS not supported on server, falling back to flag&expunge")
		ic.mailDeleter = &compatibilityDeleter{
			imapConn: ic,
		}
	}

	if moveSupported {
		baseLogger.Debug("MOVE supported on server")
		ic.mailMover = &moveMover{
			moveClient: moveClient,
		}
	} else {
		baseLogger.Info("MOVE not supported on server, falling back to copy&delete")
		ic.mailMover = &compatibilityMover{
			imapConn: ic,
		}
	}

	return nil
}

func (ic *ImapConnection) Close() error {
	if ic.connection == nil {
		return nil
	}

	err := ic.connection.Logout()
	ic.connection = nil
	ic.selectedFolder = ""
	if err != nil && err != client.ErrAlreadyLoggedOut {
		return fmt.Errorf("could not logout: %w", err)
	}

	ic.l.WithField("server", ic.server).Debug("Logged out")
	return nil
}

func (ic *ImapConnection) connected() error {
	if ic.connection == nil || ic.connection.State() == imap.LogoutState {
		return &domain.ProviderError{Op: "session", Err: fmt.Errorf("not connected")}
	}
	return nil
}

// EnsureCategory registers name with its keyword and color unless it is
// already known.
func (ic *ImapConnection) EnsureCategory(name string, color domain.Color) error {
	if _, err := domain.ParseColor(string(color)); err != nil {
		return &domain.ProviderError{Op: "ensure category", Err: err}
	}

	keyword := sanitize.KeywordAtom(name)
	if keyword == "" {
		return &domain.ProviderError{Op: "ensure category", Err: fmt.Errorf("category name %q yields no keyword", name)}
	}

	if ic.categories == nil {
		return nil
	}

	existing, err := ic.categories.Category(name)
	if err != nil {
		return &domain.ProviderError{Op: "ensure category", Err: err}
	}
	if existing != nil {
		return nil
	}

	err = ic.categories.SaveCategory(domain.Category{
		Name:      name,
		Keyword:   keyword,
		Color:     color,
		CreatedAt: time.Now(),
	})
	if err != nil {
		return &domain.ProviderError{Op: "ensure category", Err: err}
	}

	ic.l.WithFields(logrus.Fields{"category": name, "keyword": keyword}).Info("Created category")
	return nil
}

func (ic *ImapConnection) checkAccount(mailbox string) error {
	if !strings.EqualFold(strings.TrimSpace(mailbox), ic.account) {
		return &domain.NotFoundError{Path: mailbox, Err: fmt.Errorf("no such account")}
	}
	return nil
}

func splitPath(path string) []string {
	segments := []string{}
	for _, s := range strings.Split(path, `\`) {
		if s = strings.TrimSpace(s); s != "" {
			segments = append(segments, s)
		}
	}
	return segments
}

// ResolveFolder walks a backslash path like `\account\INBOX\Fournisseurs`
// down the server hierarchy, one segment at a time.
func (ic *ImapConnection) ResolveFolder(path string) (*domain.FolderRef, error) {
	segments := splitPath(path)
	if len(segments) == 0 {
		return nil, &domain.NotFoundError{Path: path}
	}
	if err := ic.checkAccount(segments[0]); err != nil {
		return nil, &domain.NotFoundError{Path: path, Err: err}
	}
	if len(segments) == 1 {
		return nil, &domain.NotFoundError{Path: path, Err: fmt.Errorf("account root holds no messages")}
	}

	mailboxes, err := ic.listMailboxes()
	if err != nil {
		return nil, err
	}

	var current *imap.MailboxInfo
	for _, segment := range segments[1:] {
		var found *imap.MailboxInfo
		for _, mb := range mailboxes {
			parent, leaf := splitMailboxName(mb)
			if strings.EqualFold(leaf, segment) && (current == nil && parent == "" || current != nil && parent == current.Name) {
				found = mb
				break
			}
		}
		if found == nil {
			return nil, &domain.NotFoundError{Path: path, Err: fmt.Errorf("no folder %q", segment)}
		}
		current = found
	}

	if hasAttribute(current, imap.NoSelectAttr) {
		return nil, &domain.NotFoundError{Path: path, Err: fmt.Errorf("%s cannot hold messages", current.Name)}
	}

	ic.l.WithFields(logrus.Fields{"path": path, "mailbox": current.Name}).Debug("Resolved folder")
	return &domain.FolderRef{Path: path, Mailbox: current.Name}, nil
}

// Folders lists every selectable mailbox as a backslash path rooted at
// the account.
func (ic *ImapConnection) Folders() ([]string, error) {
	mailboxes, err := ic.listMailboxes()
	if err != nil {
		return nil, err
	}

	folders := []string{}
	for _, mb := range mailboxes {
		if hasAttribute(mb, imap.NoSelectAttr) {
			continue
		}
		name := mb.Name
		if mb.Delimiter != "" {
			name = strings.ReplaceAll(name, mb.Delimiter, `\`)
		}
		folders = append(folders, `\`+ic.account+`\`+name)
	}
	sort.Strings(folders)

	return folders, nil
}

func (ic *ImapConnection) listMailboxes() ([]*imap.MailboxInfo, error) {
	if err := ic.connected(); err != nil {
		return nil, err
	}

	out := make(chan *imap.MailboxInfo, 10)
	done := make(chan error, 1)
	go func() {
		done <- ic.connection.List("", "*", out)
	}()

	mailboxes := []*imap.MailboxInfo{}
	for mb := range out {
		mailboxes = append(mailboxes, mb)
	}

	err := <-done
	if err != nil {
		return nil, &domain.ProviderError{Op: "list", Err: err}
	}

	return mailboxes, nil
}

func splitMailboxName(mb *imap.MailboxInfo) (string, string) {
	if mb.Delimiter == "" {
		return "", mb.Name
	}
	i := strings.LastIndex(mb.Name, mb.Delimiter)
	if i < 0 {
		return "", mb.Name
	}
	return mb.Name[:i], mb.Name[i+len(mb.Delimiter):]
}

func hasAttribute(mb *imap.MailboxInfo, attr string) bool {
	for _, a := range mb.Attributes {
		if strings.EqualFold(a, attr) {
			return true
		}
	}
	return false
}

func (ic *ImapConnection) selectInbox() error {
	if ic.selectedFolder == imap.InboxName {
		return nil
	}

	_, err := ic.connection.Select(imap.InboxName, false)
	if err != nil {
		return &domain.ProviderError{Op: "select", Err: err}
	}
	ic.selectedFolder = imap.InboxName
	return nil
}

func day(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}

// Search scans the account INBOX. Flags and dates are filtered by the
// server, the subject match happens here. Results are newest first.
func (ic *ImapConnection) Search(mailbox string, criteria domain.SearchCriteria) ([]domain.Message, error) {
	if err := ic.checkAccount(mailbox); err != nil {
		return nil, err
	}
	if err := ic.connected(); err != nil {
		return nil, err
	}
	if len(criteria.Keywords) == 0 {
		return []domain.Message{}, nil
	}
	if err := ic.selectInbox(); err != nil {
		return nil, err
	}

	searchCriteria := imap.NewSearchCriteria()
	if criteria.UnreadOnly {
		searchCriteria.WithoutFlags = []string{imap.SeenFlag}
	}
	if criteria.DateFrom != nil {
		searchCriteria.Since = day(*criteria.DateFrom)
	}
	if criteria.DateTo != nil {
		searchCriteria.Before = day(*criteria.DateTo).AddDate(0, 0, 1)
	}

	uids, err := ic.connection.UidSearch(searchCriteria)
	if err != nil {
		return nil, &domain.ProviderError{Op: "search", Err: err}
	}

	ic.l.WithFields(logrus.Fields{"candidates": len(uids), "keywords": criteria.Keywords}).Debug("Server side search done")

	if len(uids) == 0 {
		return []domain.Message{}, nil
	}

	fetched, err := ic.fetchSummaries(uids)
	if err != nil {
		return nil, err
	}

	keywords := []string{}
	for _, kw := range criteria.Keywords {
		keywords = append(keywords, strings.ToLower(kw))
	}

	matches := []*imapMessage{}
	for _, msg := range fetched {
		if msg.Envelope == nil {
			ic.l.WithField("uid", msg.Uid).Debug("Skipping mail without envelope")
			continue
		}
		if !subjectMatches(msg.Envelope.Subject, keywords) {
			continue
		}
		matches = append(matches, newImapMessage(ic, msg))
	}

	sort.SliceStable(matches, func(i, j int) bool {
		return matches[i].newerThan(matches[j])
	})

	messages := make([]domain.Message, 0, len(matches))
	for _, m := range matches {
		messages = append(messages, m)
	}

	ic.l.WithField("matches", len(messages)).Info("Search done")
	return messages, nil
}

func subjectMatches(subject string, lowerKeywords []string) bool {
	subject = strings.ToLower(subject)
	for _, kw := range lowerKeywords {
		if strings.Contains(subject, kw) {
			return true
		}
	}
	return false
}

func (ic *ImapConnection) fetchSummaries(uids []uint32) ([]*imap.Message, error) {
	seqset := &imap.SeqSet{}
	seqset.AddNum(uids...)

	fetchItems := []imap.FetchItem{
		imap.FetchUid,
		imap.FetchEnvelope,
		imap.FetchFlags,
		imap.FetchInternalDate,
		imap.FetchBodyStructure,
	}

	messages := make(chan *imap.Message, 10)
	done := make(chan error, 1)
	go func() {
		done <- ic.connection.UidFetch(seqset, fetchItems, messages)
	}()

	results := []*imap.Message{}
	for msg := range messages {
		results = append(results, msg)
	}

	err := <-done
	if err != nil {
		return nil, &domain.ProviderError{Op: "fetch", Err: err}
	}

	return results, nil
}

func (ic *ImapConnection) fetchRaw(uid uint32) ([]byte, error) {
	if err := ic.connected(); err != nil {
		return nil, err
	}

	seqset := &imap.SeqSet{}
	seqset.AddNum(uid)
	fullBodySection := &imap.BodySectionName{
		Peek: true,
	}

	messages := make(chan *imap.Message, 1)
	done := make(chan error, 1)
	go func() {
		done <- ic.connection.UidFetch(seqset, []imap.FetchItem{fullBodySection.FetchItem()}, messages)
	}()

	var raw []byte
	var readErr error
	for msg := range messages {
		r := msg.GetBody(fullBodySection)
		if r == nil {
			readErr = fmt.Errorf("server returned no body for uid %d", uid)
			continue
		}
		raw, readErr = io.ReadAll(r)
	}

	err := <-done
	if err != nil {
		return nil, &domain.ProviderError{Op: "fetch body", Err: err}
	}
	if readErr != nil {
		return nil, &domain.ProviderError{Op: "fetch body", Err: readErr}
	}
	if raw == nil {
		return nil, &domain.ProviderError{Op: "fetch body", Err: fmt.Errorf("uid %d vanished", uid)}
	}

	return raw, nil
}

func (ic *ImapConnection) store(uid uint32, op imap.FlagsOp, flags []string) error {
	if err := ic.connected(); err != nil {
		return err
	}

	seqset := &imap.SeqSet{}
	seqset.AddNum(uid)
	values := make([]interface{}, 0, len(flags))
	for _, f := range flags {
		values = append(values, f)
	}

	return ic.connection.UidStore(seqset, imap.FormatFlagsOp(op, true), values, nil)
}

// otherCategoryKeywords lists the registered keywords except keep.
func (ic *ImapConnection) otherCategoryKeywords(keep string) ([]string, error) {
	if ic.categories == nil {
		return nil, nil
	}

	categories, err := ic.categories.AllCategories()
	if err != nil {
		return nil, err
	}

	keywords := []string{}
	for _, c := range categories {
		if c.Keyword != keep {
			keywords = append(keywords, c.Keyword)
		}
	}
	return keywords, nil
}

func (ic *ImapConnection) flagDeleted(uid uint32) (*imap.SeqSet, error) {
	seqset := &imap.SeqSet{}
	seqset.AddNum(uid)
	err := ic.connection.UidStore(seqset, imap.FormatFlagsOp(imap.AddFlags, true), []interface{}{imap.DeletedFlag}, nil)
	if err != nil {
		return nil, fmt.Errorf("could set delete flag: %w", err)
	}

	return seqset, nil
}

func (ic *ImapConnection) delete(uid uint32) error {
	return ic.mailDeleter.delete(uid)
}

func (ic *ImapConnection) deleteReady() (error, error) {
	return ic.mailDeleter.deleteReady()
}

func (ic *ImapConnection) UidCopy(seqset *imap.SeqSet, dest string) error {
	return ic.connection.UidCopy(seqset, dest)
}

func (ic *ImapConnection) UidSearch(criteria *imap.SearchCriteria) ([]uint32, error) {
	return ic.connection.UidSearch(criteria)
}

func (ic *ImapConnection) Expunge(ch chan uint32) error {
	return ic.connection.Expunge(ch)
}

type uidPlusConnection struct {
	*ImapConnection
	*uidplus.Client
}
