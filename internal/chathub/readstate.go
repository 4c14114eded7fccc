package chathub

import (
	"log"

	"travelbay/backend/internal/models"
)

// MarkRead transitions every unread message addressed to readerID in the
// given conversation to read, and notifies the counterpart if online.
// It returns the number of messages transitioned; 0 means nothing was
// pending, which is not an error, and makes repeated calls idempotent.
func (d *Dispatcher) MarkRead(postID string, postType models.PostType, readerID string) (int64, error) {
	n, err := d.store.MarkMessagesRead(postID, postType, readerID)
	if err != nil {
		return 0, err
	}
	if n == 0 {
		return 0, nil
	}

	counterpartID, err := d.directory.CounterpartOf(postID, postType, readerID)
	if err != nil {
		// The read state is already durable; a failed receipt only means
		// the sender learns about it on the next history fetch.
		log.Printf("WARNING: Could not resolve counterpart for %s/%s: %v", postType, postID, err)
		return n, nil
	}

	if counterpart, ok := d.registry.FindByUser(counterpartID); ok {
		if !counterpart.TrySend(models.NewReadEvent(postID, postType)) {
			log.Printf("WARNING: Dropped read receipt for %s/%s to client %s", postType, postID, counterpartID)
		}
	}
	return n, nil
}
