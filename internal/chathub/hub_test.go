package chathub_test

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"travelbay/backend/internal/chathub"
	"travelbay/backend/internal/models"
)

func newTestHub(storageMock *MockStorage, directory *MockDirectory) *chathub.Hub {
	storageMock.On("SetOnline", mock.AnythingOfType("string")).Return(nil)
	storageMock.On("SetOffline", mock.AnythingOfType("string")).Return(nil)
	return chathub.NewHub(storageMock, directory)
}

func messageFrame(t *testing.T, c chathub.Client, in models.InboundMessage) chathub.Frame {
	t.Helper()
	data, err := json.Marshal(in)
	assert.NoError(t, err)
	return chathub.Frame{Client: c, Envelope: models.Envelope{Type: models.EnvelopeMessage, Data: data}}
}

func TestHubRegisterUnregister(t *testing.T) {
	storageMock := new(MockStorage)
	hub := newTestHub(storageMock, new(MockDirectory))

	client := newMockClient("user_A", models.RoleCustomer)

	go hub.Run()

	hub.RegisterCh <- client
	time.Sleep(100 * time.Millisecond)
	_, ok := hub.Registry.FindByUser("user_A")
	assert.True(t, ok)
	storageMock.AssertCalled(t, "SetOnline", "user_A")

	hub.UnregisterCh <- client
	time.Sleep(100 * time.Millisecond)
	_, ok = hub.Registry.FindByUser("user_A")
	assert.False(t, ok)
	storageMock.AssertCalled(t, "SetOffline", "user_A")
}

func TestHubDeliversAndAcknowledges(t *testing.T) {
	storageMock := new(MockStorage)
	hub := newTestHub(storageMock, new(MockDirectory))

	sender := newMockClient("user_A", models.RoleCustomer)
	receiver := newMockClient("user_B", models.RoleAgencyOwner)

	storageMock.On("SaveMessage", mock.AnythingOfType("*models.ChatMessage")).
		Run(func(args mock.Arguments) {
			args.Get(0).(*models.ChatMessage).ID = 42
		}).Return(nil)
	storageMock.On("PublishMessage", hub.InstanceID, mock.AnythingOfType("models.ChatMessage")).Return(nil)

	go hub.Run()

	hub.RegisterCh <- sender
	hub.RegisterCh <- receiver
	hub.IncomingCh <- messageFrame(t, sender, validInbound())
	time.Sleep(100 * time.Millisecond)

	received := receiver.drain()
	assert.Len(t, received, 1)
	assert.Equal(t, uint(42), received[0].Data.(models.ChatMessage).ID)

	acks := sender.drain()
	assert.Len(t, acks, 1)
	assert.Equal(t, models.EnvelopeMessage, acks[0].Type)
	assert.Equal(t, uint(42), acks[0].Data.(models.ChatMessage).ID, "sender ack must carry the assigned id")
}

func TestHubAcknowledgesWhenReceiverOffline(t *testing.T) {
	storageMock := new(MockStorage)
	hub := newTestHub(storageMock, new(MockDirectory))

	sender := newMockClient("user_A", models.RoleCustomer)

	storageMock.On("SaveMessage", mock.AnythingOfType("*models.ChatMessage")).Return(nil)
	storageMock.On("PublishMessage", mock.AnythingOfType("string"), mock.AnythingOfType("models.ChatMessage")).Return(nil)

	go hub.Run()

	hub.RegisterCh <- sender
	hub.IncomingCh <- messageFrame(t, sender, validInbound())
	time.Sleep(100 * time.Millisecond)

	acks := sender.drain()
	assert.Len(t, acks, 1)
	assert.Equal(t, models.EnvelopeMessage, acks[0].Type)
}

func TestHubRejectsSpoofedSender(t *testing.T) {
	storageMock := new(MockStorage)
	hub := newTestHub(storageMock, new(MockDirectory))

	sender := newMockClient("user_A", models.RoleCustomer)

	go hub.Run()
	hub.RegisterCh <- sender

	in := validInbound()
	in.SenderID = "user_C" // not the connection owner
	hub.IncomingCh <- messageFrame(t, sender, in)
	time.Sleep(100 * time.Millisecond)

	frames := sender.drain()
	assert.Len(t, frames, 1)
	assert.Equal(t, models.EnvelopeError, frames[0].Type)
	storageMock.AssertNotCalled(t, "SaveMessage", mock.Anything)
}

func TestHubRejectsUnsupportedFrame(t *testing.T) {
	storageMock := new(MockStorage)
	hub := newTestHub(storageMock, new(MockDirectory))

	client := newMockClient("user_A", models.RoleCustomer)

	go hub.Run()
	hub.RegisterCh <- client
	hub.IncomingCh <- chathub.Frame{Client: client, Envelope: models.Envelope{Type: "typing"}}
	time.Sleep(100 * time.Millisecond)

	frames := client.drain()
	assert.Len(t, frames, 1)
	assert.Equal(t, models.EnvelopeError, frames[0].Type)
}

func TestHubAnnouncesPresenceToBothSides(t *testing.T) {
	storageMock := new(MockStorage)
	hub := newTestHub(storageMock, new(MockDirectory))

	post := chathub.PostKey{PostID: "trip-1", PostType: models.PostTrip}
	customer := newMockClientForPost("user_A", models.RoleCustomer, post)
	agency := newMockClientForPost("user_B", models.RoleAgencyOwner, post)

	go hub.Run()

	hub.RegisterCh <- customer
	time.Sleep(50 * time.Millisecond)
	assert.Empty(t, customer.drain(), "no presence event while alone in the conversation")

	hub.RegisterCh <- agency
	time.Sleep(100 * time.Millisecond)

	want := models.ConnectionEvent{PostID: "trip-1", PostType: models.PostTrip}

	customerFrames := customer.drain()
	assert.Len(t, customerFrames, 1)
	assert.Equal(t, models.EnvelopeConnection, customerFrames[0].Type)
	assert.Equal(t, want, customerFrames[0].Data)

	agencyFrames := agency.drain()
	assert.Len(t, agencyFrames, 1)
	assert.Equal(t, want, agencyFrames[0].Data)
}

func TestHubHandlesReadFrame(t *testing.T) {
	storageMock := new(MockStorage)
	directory := new(MockDirectory)
	hub := newTestHub(storageMock, directory)

	reader := newMockClient("user_B", models.RoleAgencyOwner)
	counterpart := newMockClient("user_A", models.RoleCustomer)

	storageMock.On("MarkMessagesRead", "trip-1", models.PostTrip, "user_B").Return(int64(2), nil)
	directory.On("CounterpartOf", "trip-1", models.PostTrip, "user_B").Return("user_A", nil)

	go hub.Run()
	hub.RegisterCh <- reader
	hub.RegisterCh <- counterpart

	data, err := json.Marshal(models.InboundRead{PostID: "trip-1", PostType: models.PostTrip})
	assert.NoError(t, err)
	hub.IncomingCh <- chathub.Frame{Client: reader, Envelope: models.Envelope{Type: models.EnvelopeRead, Data: data}}
	time.Sleep(100 * time.Millisecond)

	frames := counterpart.drain()
	assert.Len(t, frames, 1)
	assert.Equal(t, models.EnvelopeRead, frames[0].Type)
	assert.Empty(t, reader.drain(), "read frames are not acknowledged")
}
