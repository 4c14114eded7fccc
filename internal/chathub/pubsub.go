package chathub

import "travelbay/backend/internal/models"

// RelayFrame is the payload exchanged between instances over the Redis
// relay channel. Origin lets an instance skip frames it published itself,
// since those were already delivered locally at dispatch time.
type RelayFrame struct {
	Origin  string             `json:"origin"`
	Message models.ChatMessage `json:"message"`
}

// ConsumeRelay forwards messages published by other instances to locally
// connected receivers. It returns when the channel is closed.
func (h *Hub) ConsumeRelay(frames <-chan RelayFrame) {
	for frame := range frames {
		if frame.Origin == h.InstanceID {
			continue
		}
		if receiver, ok := h.Registry.FindByUser(frame.Message.ReceiverID); ok {
			h.push(receiver, models.NewMessageEvent(frame.Message))
		}
	}
}
