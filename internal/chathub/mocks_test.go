package chathub_test

import (
	"github.com/stretchr/testify/mock"

	"travelbay/backend/internal/chathub"
	"travelbay/backend/internal/models"
)

// MockStorage is a testify mock of the chathub.Storage interface.
type MockStorage struct {
	mock.Mock
}

func (m *MockStorage) SaveMessage(msg *models.ChatMessage) error {
	args := m.Called(msg)
	return args.Error(0)
}

func (m *MockStorage) MarkMessagesRead(postID string, postType models.PostType, readerID string) (int64, error) {
	args := m.Called(postID, postType, readerID)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockStorage) PublishMessage(origin string, msg models.ChatMessage) error {
	args := m.Called(origin, msg)
	return args.Error(0)
}

func (m *MockStorage) SetOnline(userID string) error {
	args := m.Called(userID)
	return args.Error(0)
}

func (m *MockStorage) SetOffline(userID string) error {
	args := m.Called(userID)
	return args.Error(0)
}

func (m *MockStorage) IsOnline(userID string) (bool, error) {
	args := m.Called(userID)
	return args.Bool(0), args.Error(1)
}

// MockDirectory is a testify mock of chathub.ParticipantDirectory.
type MockDirectory struct {
	mock.Mock
}

func (m *MockDirectory) CounterpartOf(postID string, postType models.PostType, selfID string) (string, error) {
	args := m.Called(postID, postType, selfID)
	return args.String(0), args.Error(1)
}

// MockNotifier is a testify mock of chathub.OfflineNotifier.
type MockNotifier struct {
	mock.Mock
}

func (m *MockNotifier) NotifyOffline(receiverID string, msg models.ChatMessage) {
	m.Called(receiverID, msg)
}

// mockClient is a plain test double for the chathub.Client interface with a
// buffered send channel so pushes never block in tests.
type mockClient struct {
	userID  string
	role    string
	agency  string
	post    chathub.PostKey
	hasPost bool
	send    chan models.Outbound
	closed  bool
}

func newMockClient(userID, role string) *mockClient {
	return &mockClient{
		userID: userID,
		role:   role,
		send:   make(chan models.Outbound, 10),
	}
}

func newMockClientForPost(userID, role string, post chathub.PostKey) *mockClient {
	c := newMockClient(userID, role)
	c.post = post
	c.hasPost = true
	return c
}

func (c *mockClient) GetUserID() string   { return c.userID }
func (c *mockClient) GetRole() string     { return c.role }
func (c *mockClient) GetAgencyID() string { return c.agency }

func (c *mockClient) GetPost() (chathub.PostKey, bool) { return c.post, c.hasPost }

func (c *mockClient) TrySend(out models.Outbound) bool {
	if c.closed {
		return false
	}
	select {
	case c.send <- out:
		return true
	default:
		return false
	}
}

func (c *mockClient) Run()   {}
func (c *mockClient) Close() { c.closed = true }

// drain empties the send channel, returning everything pushed so far.
func (c *mockClient) drain() []models.Outbound {
	var frames []models.Outbound
	for {
		select {
		case out := <-c.send:
			frames = append(frames, out)
		default:
			return frames
		}
	}
}
