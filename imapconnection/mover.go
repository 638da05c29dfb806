// SPDX-License-Identifier: GPL-3.0-or-later
package imapconnection

//go:generate mockgen -destination=mover_mocks_test.go -package=imapconnection -source mover.go
import (
	"fmt"

	"github.com/emersion/go-imap"
)

type moveClient interface {
	UidMove(seqset *imap.SeqSet, dest string) error
}

type moveMover struct {
	moveClient moveClient
}

func (m *moveMover) move(uid uint32, mailbox string) error {
	seqset := &imap.SeqSet{}
	seqset.AddNum(uid)
	err := m.moveClient.UidMove(seqset, mailbox)
	if err != nil {
		return fmt.Errorf("could not move mail to %s: %w", mailbox, err)
	}
	return nil
}

func (m *moveMover) moveReady() (error, error) {
	// MOVE implements move directly and is therefore ready to move all the time
	return nil, nil
}

// compatibilityMover emulates MOVE with COPY followed by a delete of the
// source message. It refuses to run while the delete is not safe.
type compatibilityMover struct {
	imapConn copyAndDeleteMoveClient
}

func (c *compatibilityMover) move(uid uint32, mailbox string) error {
	notDeleteReadyReason, err := c.moveReady()
	if err != nil {
		return fmt.Errorf("could not check for delete readiness to move: %w", err)
	}

	if notDeleteReadyReason != nil {
		return fmt.Errorf("folder is not ready for delete, cannot move (copy&delete): %w", notDeleteReadyReason)
	}

	seqset := &imap.SeqSet{}
	seqset.AddNum(uid)
	err = c.imapConn.UidCopy(seqset, mailbox)
	if err != nil {
		return fmt.Errorf("could not copy mail to %s: %w", mailbox, err)
	}

	err = c.imapConn.delete(uid)
	if err != nil {
		return fmt.Errorf("could not delete copied mail: %w", err)
	}

	return nil
}

func (c *compatibilityMover) moveReady() (error, error) {
	return c.imapConn.deleteReady()
}
