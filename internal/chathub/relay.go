package chathub

import (
	"errors"
	"fmt"
	"log"
	"time"

	"travelbay/backend/internal/models"
)

// Sentinel errors for the relay. ErrValidation and ErrUnauthorized reject a
// send before anything is persisted; a store failure is returned wrapped and
// means the message was NOT sent.
var (
	ErrValidation   = errors.New("invalid message")
	ErrUnauthorized = errors.New("sender identity mismatch")
)

// Storage is the slice of the persistence layer the relay depends on.
// *storage.Service implements it.
type Storage interface {
	SaveMessage(msg *models.ChatMessage) error
	MarkMessagesRead(postID string, postType models.PostType, readerID string) (int64, error)
	PublishMessage(origin string, msg models.ChatMessage) error
	SetOnline(userID string) error
	SetOffline(userID string) error
	IsOnline(userID string) (bool, error)
}

// ParticipantDirectory resolves who legitimately takes part in a post-scoped
// conversation. It is injected so the relay core never touches the data
// layer directly.
type ParticipantDirectory interface {
	// CounterpartOf returns the user on the other side of the conversation
	// for the given post, relative to selfID.
	CounterpartOf(postID string, postType models.PostType, selfID string) (string, error)
}

// OfflineNotifier is told about messages whose receiver had no live
// connection at dispatch time. Implementations must not block.
type OfflineNotifier interface {
	NotifyOffline(receiverID string, msg models.ChatMessage)
}

// Dispatcher turns an inbound message intent into a durable record and
// attempts immediate delivery to the receiver's live connection.
type Dispatcher struct {
	registry  *Registry
	store     Storage
	directory ParticipantDirectory
	notifier  OfflineNotifier
}

func NewDispatcher(registry *Registry, store Storage, directory ParticipantDirectory) *Dispatcher {
	return &Dispatcher{registry: registry, store: store, directory: directory}
}

// SetOfflineNotifier wires an optional notifier for offline receivers.
func (d *Dispatcher) SetOfflineNotifier(n OfflineNotifier) {
	d.notifier = n
}

// Dispatch validates, persists, and then delivers the message. Persistence
// must complete before the sender is acknowledged; delivery is best-effort
// and its failure is never surfaced to the sender. The returned ChatMessage
// carries the store-assigned id and timestamp.
func (d *Dispatcher) Dispatch(origin string, in models.InboundMessage) (models.ChatMessage, error) {
	if err := in.Validate(); err != nil {
		return models.ChatMessage{}, fmt.Errorf("%w: %s", ErrValidation, err)
	}

	msg := models.ChatMessage{
		PostID:     in.PostID,
		PostType:   in.PostType,
		SenderID:   in.SenderID,
		ReceiverID: in.ReceiverID,
		Content:    in.Content,
		Kind:       in.Kind,
		IsRead:     false,
		CreatedAt:  time.Now(),
	}
	if err := d.store.SaveMessage(&msg); err != nil {
		return models.ChatMessage{}, fmt.Errorf("persist message: %w", err)
	}

	d.deliver(msg)

	// Fan out to other instances; the receiver may be connected elsewhere.
	if err := d.store.PublishMessage(origin, msg); err != nil {
		log.Printf("ERROR: Failed to publish message %d to relay channel: %v", msg.ID, err)
	}

	return msg, nil
}

// deliver pushes the persisted message to the receiver's live connection if
// present. A missed or failed push is non-fatal: the message is durable and
// will be picked up on the next history fetch.
func (d *Dispatcher) deliver(msg models.ChatMessage) {
	receiver, ok := d.registry.FindByUser(msg.ReceiverID)
	if !ok {
		d.notifyOffline(msg)
		return
	}

	if !receiver.TrySend(models.NewMessageEvent(msg)) {
		log.Printf("WARNING: Dropped live push of message %d to client %s", msg.ID, msg.ReceiverID)
	}
}

// notifyOffline nudges a receiver with no local connection, unless the
// global presence set says another instance holds one; the relay channel
// covers delivery in that case.
func (d *Dispatcher) notifyOffline(msg models.ChatMessage) {
	if d.notifier == nil {
		return
	}
	online, err := d.store.IsOnline(msg.ReceiverID)
	if err != nil {
		log.Printf("WARNING: Presence lookup for %s failed: %v", msg.ReceiverID, err)
	}
	if online {
		return
	}
	d.notifier.NotifyOffline(msg.ReceiverID, msg)
}
