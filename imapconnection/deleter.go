// SPDX-License-Identifier: GPL-3.0-or-later
package imapconnection

//go:generate mockgen -destination=deleter_mocks_test.go -package=imapconnection -source deleter.go
import (
	"fmt"

	"github.com/emersion/go-imap"
)

type deletedFlagger interface {
	flagDeleted(uid uint32) (*imap.SeqSet, error)
}

type deletedFlaggerAndUidExpunger interface {
	deletedFlagger
	UidExpunge(seqSet *imap.SeqSet, ch chan uint32) error
}

type uidPlusDeleter struct {
	imapConn deletedFlaggerAndUidExpunger
}

func (u *uidPlusDeleter) delete(uid uint32) error {
	seqset, err := u.imapConn.flagDeleted(uid)
	if err != nil {
		return fmt.Errorf("could not flag mail as deleted: %w", err)
	}

	out := make(chan uint32)
	done := make(chan error, 1)
	go func() {
		done <- u.imapConn.UidExpunge(seqset, out)
	}()

	expunged := 0
	for range out {
		expunged++
	}

	err = <-done
	if err != nil {
		return fmt.Errorf("could not expunge mail: %w", err)
	}

	if expunged != 1 {
		return fmt.Errorf("unexpected number of expunges, expected 1 got %d", expunged)
	}

	return nil
}

func (u *uidPlusDeleter) deleteReady() (error, error) {
	// UIDPLUS can delete by uid and is therefore always ready
	return nil, nil
}

type deleteFlaggerAndExpunger interface {
	deletedFlagger
	Expunge(ch chan uint32) error
	UidSearch(criteria *imap.SearchCriteria) (uids []uint32, err error)
}

type compatibilityDeleter struct {
	imapConn deleteFlaggerAndExpunger
}

func (c *compatibilityDeleter) delete(uid uint32) error {
	notDeleteReadyReason, err := c.deleteReady()
	if err != nil {
		return fmt.Errorf("could not check for delete readiness: %w", err)
	}

	if notDeleteReadyReason != nil {
		return fmt.Errorf("folder is not ready for delete: %w", notDeleteReadyReason)
	}

	_, err = c.imapConn.flagDeleted(uid)
	if err != nil {
		return fmt.Errorf("could not set deleted flag: %w", err)
	}

	out := make(chan uint32)
	done := make(chan error, 1)
	go func() {
		done <- c.imapConn.Expunge(out)
	}()

	expunged := 0
	for range out {
		expunged++
	}

	err = <-done
	if err != nil {
		return fmt.Errorf("could not expunge mail: %w", err)
	}

	if expunged != 1 {
		return fmt.Errorf("unexpected number of expunges, expected 1 got %d", expunged)
	}

	return nil
}

var ItemsWithDeletedFlagPresent = fmt.Errorf("folder has previous items with delete flag set")

func (c *compatibilityDeleter) deleteReady() (error, error) {
	// Plain EXPUNGE removes every message carrying \Deleted, so unrelated
	// flagged messages would be lost along with ours.
	criteria := imap.NewSearchCriteria()
	criteria.WithFlags = []string{imap.DeletedFlag}
	ids, err := c.imapConn.UidSearch(criteria)
	if err != nil {
		return nil, fmt.Errorf("could search for deleted in folder: %w", err)
	}

	if len(ids) == 0 {
		return nil, nil
	} else {
		return ItemsWithDeletedFlagPresent, nil
	}
}
