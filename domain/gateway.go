// SPDX-License-Identifier: GPL-3.0-or-later

//go:generate mockgen -destination=mocks/gateway.go -package=mocks . Gateway,Message
package domain

import "time"

// FolderRef is a destination container resolved once before a batch starts.
type FolderRef struct {
	// Path is the backslash path the operator gave, e.g. `\Account\INBOX\Fournisseurs`.
	Path string
	// Mailbox is the provider side name, e.g. `INBOX/Fournisseurs`.
	Mailbox string
}

// MessageSnapshot holds every readable field of a message. Fields the
// provider could not deliver are zero values, ReceivedAt is nil then.
type MessageSnapshot struct {
	Subject         string
	Sender          string
	SenderName      string
	Body            string
	ReceivedAt      *time.Time
	AttachmentCount int
	Unread          bool
}

func (s MessageSnapshot) HasAttachments() bool {
	return s.AttachmentCount > 0
}

// SearchCriteria narrows a mailbox scan. Keywords match the subject as
// case-insensitive substrings, any keyword is enough.
type SearchCriteria struct {
	Keywords   []string
	UnreadOnly bool
	DateFrom   *time.Time
	DateTo     *time.Time
}

// Message is a handle to one mailbox item. Mutators return *ProviderError.
type Message interface {
	Snapshot() MessageSnapshot
	SaveAttachments(dir string) ([]string, error)
	SetCategory(name string) error
	MarkAsRead() error
	MoveTo(folder *FolderRef) error
}

// Gateway wraps the mailbox provider session. It is not safe for concurrent use.
type Gateway interface {
	Connect() error
	EnsureCategory(name string, color Color) error
	ResolveFolder(path string) (*FolderRef, error)
	Search(mailbox string, criteria SearchCriteria) ([]Message, error)
	Folders() ([]string, error)
	Close() error
}
