// SPDX-License-Identifier: GPL-3.0-or-later
package processor

import (
	"context"

	"github.com/CrawX/go-imap-archiver/domain"
	"github.com/CrawX/go-imap-archiver/sanitize"

	"github.com/sirupsen/logrus"
)

// Preview lists the messages a batch with the same filters would visit,
// without touching them.
func (p *Processor) Preview(ctx context.Context, mailbox, keywordsRaw string, unreadOnly bool) ([]domain.MessageSnapshot, error) {
	if !p.running.CompareAndSwap(false, true) {
		return nil, ErrAlreadyRunning
	}
	defer p.running.Store(false)

	snapshots := []domain.MessageSnapshot{}

	keywords := sanitize.Keywords(keywordsRaw)
	if len(keywords) == 0 {
		return snapshots, nil
	}

	err := p.gateway.Connect()
	if err != nil {
		return nil, err
	}

	messages, err := p.gateway.Search(mailbox, domain.SearchCriteria{Keywords: keywords, UnreadOnly: unreadOnly})
	if err != nil {
		return nil, err
	}

	for _, msg := range messages {
		if err := ctx.Err(); err != nil {
			return snapshots, err
		}
		snapshots = append(snapshots, msg.Snapshot())
	}

	p.logEvent(domain.LevelInfo, "Aperçu prêt", logrus.Fields{"matches": len(snapshots)})
	return snapshots, nil
}
