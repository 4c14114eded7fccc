package chathub

import (
	"encoding/json"
	"errors"
	"fmt"
	"log"

	"github.com/google/uuid"

	"travelbay/backend/internal/models"
)

// Frame is one inbound envelope together with the connection it came from.
type Frame struct {
	Client   Client
	Envelope models.Envelope
}

// Hub owns the connection registry and the relay dispatcher and runs the
// single event loop all inbound frames funnel through. Running persistence
// inside the loop serializes concurrently arriving messages, so the
// store-assigned (created_at, id) order reflects true arrival order.
type Hub struct {
	// InstanceID tags messages published to the cross-instance relay
	// channel so the publishing instance can skip its own frames.
	InstanceID string

	Registry   *Registry
	Dispatcher *Dispatcher

	RegisterCh   chan Client
	UnregisterCh chan Client
	IncomingCh   chan Frame

	store     Storage
	directory ParticipantDirectory
}

func NewHub(store Storage, directory ParticipantDirectory) *Hub {
	registry := NewRegistry()
	return &Hub{
		InstanceID:   uuid.New().String(),
		Registry:     registry,
		Dispatcher:   NewDispatcher(registry, store, directory),
		RegisterCh:   make(chan Client),
		UnregisterCh: make(chan Client),
		IncomingCh:   make(chan Frame),
		store:        store,
		directory:    directory,
	}
}

// Run starts the hub's event loop. It is meant to run in its own goroutine
// for the lifetime of the process.
func (h *Hub) Run() {
	log.Println("Chat hub started.")
	for {
		select {
		case c := <-h.RegisterCh:
			h.Registry.Register(c)
			if err := h.store.SetOnline(c.GetUserID()); err != nil {
				log.Printf("ERROR: Failed to record presence for %s: %v", c.GetUserID(), err)
			}
			h.announcePresence(c)

		case c := <-h.UnregisterCh:
			if h.Registry.Unregister(c) {
				if err := h.store.SetOffline(c.GetUserID()); err != nil {
					log.Printf("ERROR: Failed to clear presence for %s: %v", c.GetUserID(), err)
				}
			}

		case f := <-h.IncomingCh:
			h.handleFrame(f)
		}
	}
}

func (h *Hub) handleFrame(f Frame) {
	switch f.Envelope.Type {
	case models.EnvelopeMessage:
		h.handleMessage(f)
	case models.EnvelopeRead:
		h.handleRead(f)
	default:
		h.pushError(f.Client, fmt.Errorf("unsupported frame type %q", f.Envelope.Type))
	}
}

func (h *Hub) handleMessage(f Frame) {
	var in models.InboundMessage
	if err := json.Unmarshal(f.Envelope.Data, &in); err != nil {
		h.pushError(f.Client, fmt.Errorf("%w: malformed message payload", ErrValidation))
		return
	}

	// The sender is whoever owns the connection; a claimed senderId that
	// disagrees is rejected before anything is persisted.
	if in.SenderID == "" {
		in.SenderID = f.Client.GetUserID()
	} else if in.SenderID != f.Client.GetUserID() {
		h.pushError(f.Client, ErrUnauthorized)
		return
	}

	msg, err := h.Dispatcher.Dispatch(h.InstanceID, in)
	if err != nil {
		h.pushError(f.Client, err)
		return
	}

	// Acknowledge with the persisted record, including its assigned id,
	// regardless of whether the receiver was online.
	h.push(f.Client, models.NewMessageEvent(msg))
}

func (h *Hub) handleRead(f Frame) {
	var in models.InboundRead
	if err := json.Unmarshal(f.Envelope.Data, &in); err != nil {
		h.pushError(f.Client, fmt.Errorf("%w: malformed read payload", ErrValidation))
		return
	}
	if in.PostID == "" || !in.PostType.Valid() {
		h.pushError(f.Client, fmt.Errorf("%w: postId and a valid postType are required", ErrValidation))
		return
	}

	if _, err := h.Dispatcher.MarkRead(in.PostID, in.PostType, f.Client.GetUserID()); err != nil {
		h.pushError(f.Client, errors.New("failed to update read state"))
		log.Printf("ERROR: MarkRead %s/%s for %s: %v", in.PostType, in.PostID, f.Client.GetUserID(), err)
	}
}

// announcePresence tells both sides of a post conversation that the
// counterpart is available, once both hold live connections.
func (h *Hub) announcePresence(c Client) {
	key, ok := c.GetPost()
	if !ok {
		return
	}

	counterpart, ok := h.Registry.FindCounterpart(key, c.GetUserID())
	if !ok {
		return
	}

	event := models.NewConnectionEvent(key.PostID, key.PostType)
	h.push(counterpart, event)
	h.push(c, event)
}

// push performs a non-blocking send; a full buffer or an already closed
// handle drops the frame rather than stalling the event loop.
func (h *Hub) push(c Client, out models.Outbound) {
	if !c.TrySend(out) {
		log.Printf("WARNING: Dropped %s frame to client %s", out.Type, c.GetUserID())
	}
}

func (h *Hub) pushError(c Client, err error) {
	h.push(c, models.NewErrorEvent(err))
}
