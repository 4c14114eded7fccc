package chathub_test

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"travelbay/backend/internal/chathub"
	"travelbay/backend/internal/models"
)

func validInbound() models.InboundMessage {
	return models.InboundMessage{
		PostID:     "trip-1",
		PostType:   models.PostTrip,
		SenderID:   "user_A",
		ReceiverID: "user_B",
		Content:    "Hi",
	}
}

func TestDispatchPersistsAndDeliversLive(t *testing.T) {
	storageMock := new(MockStorage)
	registry := chathub.NewRegistry()
	dispatcher := chathub.NewDispatcher(registry, storageMock, new(MockDirectory))

	receiver := newMockClient("user_B", models.RoleAgencyOwner)
	registry.Register(receiver)

	storageMock.On("SaveMessage", mock.AnythingOfType("*models.ChatMessage")).
		Run(func(args mock.Arguments) {
			args.Get(0).(*models.ChatMessage).ID = 42
		}).Return(nil)
	storageMock.On("PublishMessage", "instance-1", mock.AnythingOfType("models.ChatMessage")).Return(nil)

	msg, err := dispatcher.Dispatch("instance-1", validInbound())

	assert.NoError(t, err)
	assert.Equal(t, uint(42), msg.ID, "ack must carry the store-assigned id")
	assert.False(t, msg.IsRead)

	frames := receiver.drain()
	assert.Len(t, frames, 1)
	assert.Equal(t, models.EnvelopeMessage, frames[0].Type)
	delivered := frames[0].Data.(models.ChatMessage)
	assert.Equal(t, uint(42), delivered.ID)
	assert.Equal(t, "Hi", delivered.Content)

	storageMock.AssertExpectations(t)
}

func TestDispatchRejectsInvalidMessage(t *testing.T) {
	storageMock := new(MockStorage)
	dispatcher := chathub.NewDispatcher(chathub.NewRegistry(), storageMock, new(MockDirectory))

	in := validInbound()
	in.Content = ""

	_, err := dispatcher.Dispatch("instance-1", in)

	assert.ErrorIs(t, err, chathub.ErrValidation)
	storageMock.AssertNotCalled(t, "SaveMessage", mock.Anything)
	storageMock.AssertNotCalled(t, "PublishMessage", mock.Anything, mock.Anything)
}

func TestDispatchOfflineReceiverStillSucceeds(t *testing.T) {
	storageMock := new(MockStorage)
	notifier := new(MockNotifier)
	dispatcher := chathub.NewDispatcher(chathub.NewRegistry(), storageMock, new(MockDirectory))
	dispatcher.SetOfflineNotifier(notifier)

	storageMock.On("SaveMessage", mock.AnythingOfType("*models.ChatMessage")).
		Run(func(args mock.Arguments) {
			args.Get(0).(*models.ChatMessage).ID = 7
		}).Return(nil)
	storageMock.On("PublishMessage", mock.AnythingOfType("string"), mock.AnythingOfType("models.ChatMessage")).Return(nil)
	storageMock.On("IsOnline", "user_B").Return(false, nil)
	notifier.On("NotifyOffline", "user_B", mock.AnythingOfType("models.ChatMessage")).Return()

	msg, err := dispatcher.Dispatch("instance-1", validInbound())

	assert.NoError(t, err, "an offline receiver must never fail the send")
	assert.Equal(t, uint(7), msg.ID)
	notifier.AssertCalled(t, "NotifyOffline", "user_B", mock.AnythingOfType("models.ChatMessage"))
	storageMock.AssertExpectations(t)
}

func TestDispatchSkipsNotifierWhenOnlineElsewhere(t *testing.T) {
	storageMock := new(MockStorage)
	notifier := new(MockNotifier)
	dispatcher := chathub.NewDispatcher(chathub.NewRegistry(), storageMock, new(MockDirectory))
	dispatcher.SetOfflineNotifier(notifier)

	storageMock.On("SaveMessage", mock.AnythingOfType("*models.ChatMessage")).Return(nil)
	storageMock.On("PublishMessage", mock.AnythingOfType("string"), mock.AnythingOfType("models.ChatMessage")).Return(nil)
	// No local connection, but the global presence set says another
	// instance holds one; the relay channel covers delivery.
	storageMock.On("IsOnline", "user_B").Return(true, nil)

	_, err := dispatcher.Dispatch("instance-1", validInbound())

	assert.NoError(t, err)
	notifier.AssertNotCalled(t, "NotifyOffline", mock.Anything, mock.Anything)
}

func TestDispatchSlowReceiverIsNonFatal(t *testing.T) {
	storageMock := new(MockStorage)
	registry := chathub.NewRegistry()
	dispatcher := chathub.NewDispatcher(registry, storageMock, new(MockDirectory))

	// An unbuffered channel nobody reads stands in for a handle that
	// cannot accept the push.
	receiver := newMockClient("user_B", models.RoleAgencyOwner)
	receiver.send = make(chan models.Outbound)
	registry.Register(receiver)

	storageMock.On("SaveMessage", mock.AnythingOfType("*models.ChatMessage")).Return(nil)
	storageMock.On("PublishMessage", mock.AnythingOfType("string"), mock.AnythingOfType("models.ChatMessage")).Return(nil)

	_, err := dispatcher.Dispatch("instance-1", validInbound())

	assert.NoError(t, err, "a failed push must not surface to the sender")
}

func TestDispatchStoreFailureFailsTheSend(t *testing.T) {
	storageMock := new(MockStorage)
	registry := chathub.NewRegistry()
	dispatcher := chathub.NewDispatcher(registry, storageMock, new(MockDirectory))

	receiver := newMockClient("user_B", models.RoleAgencyOwner)
	registry.Register(receiver)

	storeErr := errors.New("connection refused")
	storageMock.On("SaveMessage", mock.AnythingOfType("*models.ChatMessage")).Return(storeErr)

	_, err := dispatcher.Dispatch("instance-1", validInbound())

	assert.ErrorIs(t, err, storeErr)
	assert.Empty(t, receiver.drain(), "nothing durable exists, so nothing may be delivered")
	storageMock.AssertNotCalled(t, "PublishMessage", mock.Anything, mock.Anything)
}

func TestMarkReadNotifiesOnlineCounterpart(t *testing.T) {
	storageMock := new(MockStorage)
	directory := new(MockDirectory)
	registry := chathub.NewRegistry()
	dispatcher := chathub.NewDispatcher(registry, storageMock, directory)

	counterpart := newMockClient("user_A", models.RoleCustomer)
	registry.Register(counterpart)

	storageMock.On("MarkMessagesRead", "trip-1", models.PostTrip, "user_B").Return(int64(3), nil)
	directory.On("CounterpartOf", "trip-1", models.PostTrip, "user_B").Return("user_A", nil)

	n, err := dispatcher.MarkRead("trip-1", models.PostTrip, "user_B")

	assert.NoError(t, err)
	assert.Equal(t, int64(3), n)

	frames := counterpart.drain()
	assert.Len(t, frames, 1)
	assert.Equal(t, models.EnvelopeRead, frames[0].Type)
	assert.Equal(t, models.ReadEvent{PostID: "trip-1", PostType: models.PostTrip}, frames[0].Data)
}

func TestMarkReadIsIdempotent(t *testing.T) {
	storageMock := new(MockStorage)
	directory := new(MockDirectory)
	dispatcher := chathub.NewDispatcher(chathub.NewRegistry(), storageMock, directory)

	storageMock.On("MarkMessagesRead", "trip-1", models.PostTrip, "user_B").Return(int64(3), nil).Once()
	storageMock.On("MarkMessagesRead", "trip-1", models.PostTrip, "user_B").Return(int64(0), nil)
	directory.On("CounterpartOf", "trip-1", models.PostTrip, "user_B").Return("user_A", nil)

	first, err := dispatcher.MarkRead("trip-1", models.PostTrip, "user_B")
	assert.NoError(t, err)
	assert.Equal(t, int64(3), first)

	second, err := dispatcher.MarkRead("trip-1", models.PostTrip, "user_B")
	assert.NoError(t, err)
	assert.Equal(t, int64(0), second, "second call must report zero transitions")

	// No receipt is sent when nothing transitioned.
	directory.AssertNumberOfCalls(t, "CounterpartOf", 1)
}

func TestMarkReadOfflineCounterpart(t *testing.T) {
	storageMock := new(MockStorage)
	directory := new(MockDirectory)
	dispatcher := chathub.NewDispatcher(chathub.NewRegistry(), storageMock, directory)

	storageMock.On("MarkMessagesRead", "trip-1", models.PostTrip, "user_B").Return(int64(2), nil)
	directory.On("CounterpartOf", "trip-1", models.PostTrip, "user_B").Return("user_A", nil)

	n, err := dispatcher.MarkRead("trip-1", models.PostTrip, "user_B")

	assert.NoError(t, err)
	assert.Equal(t, int64(2), n)
}

func TestMarkReadSurvivesDirectoryFailure(t *testing.T) {
	storageMock := new(MockStorage)
	directory := new(MockDirectory)
	dispatcher := chathub.NewDispatcher(chathub.NewRegistry(), storageMock, directory)

	storageMock.On("MarkMessagesRead", "trip-1", models.PostTrip, "user_B").Return(int64(1), nil)
	directory.On("CounterpartOf", "trip-1", models.PostTrip, "user_B").Return("", errors.New("lookup failed"))

	n, err := dispatcher.MarkRead("trip-1", models.PostTrip, "user_B")

	assert.NoError(t, err, "the read state is durable; a failed receipt is not an error")
	assert.Equal(t, int64(1), n)
}
