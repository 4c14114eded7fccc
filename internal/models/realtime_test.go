package models_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"travelbay/backend/internal/models"
)

func TestInboundMessageValidate(t *testing.T) {
	valid := models.InboundMessage{
		PostID:     "trip-1",
		PostType:   models.PostTrip,
		SenderID:   "user_A",
		ReceiverID: "user_B",
		Content:    "Hi",
	}

	tests := []struct {
		name    string
		mutate  func(*models.InboundMessage)
		wantErr bool
	}{
		{"valid message", func(m *models.InboundMessage) {}, false},
		{"missing postId", func(m *models.InboundMessage) { m.PostID = "" }, true},
		{"unknown postType", func(m *models.InboundMessage) { m.PostType = "flight" }, true},
		{"missing senderId", func(m *models.InboundMessage) { m.SenderID = "" }, true},
		{"missing receiverId", func(m *models.InboundMessage) { m.ReceiverID = "" }, true},
		{"empty content", func(m *models.InboundMessage) { m.Content = "" }, true},
		{"unknown kind", func(m *models.InboundMessage) { m.Kind = "video" }, true},
		{"image kind", func(m *models.InboundMessage) { m.Kind = models.KindImage }, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			msg := valid
			tt.mutate(&msg)
			err := msg.Validate()
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestInboundMessageValidateDefaultsKind(t *testing.T) {
	msg := models.InboundMessage{
		PostID:     "car-9",
		PostType:   models.PostCar,
		SenderID:   "user_A",
		ReceiverID: "user_B",
		Content:    "Is it available?",
	}

	assert.NoError(t, msg.Validate())
	assert.Equal(t, models.KindText, msg.Kind, "empty kind defaults to text")
}

func TestPostTypeValid(t *testing.T) {
	for _, p := range []models.PostType{models.PostTrip, models.PostCar, models.PostHotel, models.PostRoom} {
		assert.True(t, p.Valid(), string(p))
	}
	assert.False(t, models.PostType("").Valid())
	assert.False(t, models.PostType("flight").Valid())
}

func TestOutboundConstructors(t *testing.T) {
	msg := models.ChatMessage{ID: 1, PostID: "trip-1", PostType: models.PostTrip, Content: "Hi"}

	out := models.NewMessageEvent(msg)
	assert.Equal(t, models.EnvelopeMessage, out.Type)
	assert.Equal(t, msg, out.Data)

	read := models.NewReadEvent("trip-1", models.PostTrip)
	assert.Equal(t, models.EnvelopeRead, read.Type)
	assert.Equal(t, models.ReadEvent{PostID: "trip-1", PostType: models.PostTrip}, read.Data)

	conn := models.NewConnectionEvent("car-9", models.PostCar)
	assert.Equal(t, models.EnvelopeConnection, conn.Type)

	errEvent := models.NewErrorEvent(assert.AnError)
	assert.Equal(t, models.EnvelopeError, errEvent.Type)
	assert.Equal(t, models.ErrorEvent{Error: assert.AnError.Error()}, errEvent.Data)
}
