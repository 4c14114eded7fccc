package storage

import (
	"context"
	"encoding/json"
	"errors"
	"log"

	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"

	"travelbay/backend/internal/chathub"
	"travelbay/backend/internal/models"
)

// ErrNotFound is returned when a requested record does not exist.
var ErrNotFound = errors.New("record not found")

const relayChannel = "chat:relay"

// ConversationSummary is one row of a user's conversation list.
type ConversationSummary struct {
	PostID        string             `json:"postId"`
	PostType      models.PostType    `json:"postType"`
	CounterpartID string             `json:"counterpartId"`
	LastMessage   models.ChatMessage `json:"lastMessage"`
	UnreadCount   int64              `json:"unreadCount"`
}

// Storage is the persistence contract the handlers and the chat hub rely on.
type Storage interface {
	// Chat
	SaveMessage(msg *models.ChatMessage) error
	GetChatHistory(postID string, postType models.PostType, userID string) ([]models.ChatMessage, error)
	MarkMessagesRead(postID string, postType models.PostType, readerID string) (int64, error)
	GetConversations(userID string) ([]ConversationSummary, error)
	OwnerOf(postID string, postType models.PostType) (string, error)
	CounterpartOf(postID string, postType models.PostType, selfID string) (string, error)

	// Presence and cross-instance relay
	SetOnline(userID string) error
	SetOffline(userID string) error
	IsOnline(userID string) (bool, error)
	PublishMessage(origin string, msg models.ChatMessage) error

	// Users and agencies
	CreateUser(user *models.User) error
	GetUserByEmail(email string) (*models.User, error)
	GetUserByID(id string) (*models.User, error)
	CreateAgency(agency *models.Agency) error
	GetAgencyByOwner(ownerID string) (*models.Agency, error)
	LinkUserAgency(userID, agencyID string) error

	// Listings
	CreateTrip(trip *models.Trip) error
	ListTrips() ([]models.Trip, error)
	GetTrip(id string) (*models.Trip, error)
	CreateCar(car *models.Car) error
	ListCars() ([]models.Car, error)
	GetCar(id string) (*models.Car, error)
	CreateHotel(hotel *models.Hotel) error
	ListHotels() ([]models.Hotel, error)
	GetHotel(id string) (*models.Hotel, error)
	CreateRoom(room *models.HotelRoom) error
	ListRooms(hotelID string) ([]models.HotelRoom, error)
	GetRoom(id string) (*models.HotelRoom, error)

	// Bookings
	CreateBooking(booking *models.Booking) error
	GetBookingByID(id string) (*models.Booking, error)
	ListBookingsForUser(userID string) ([]models.Booking, error)
	ListAllBookings() ([]models.Booking, error)
	UpdateBookingStatus(id string, status models.BookingStatus, paymentRef string) error
}

// Service implements Storage on PostgreSQL (gorm) and Redis.
type Service struct {
	DB    *gorm.DB
	Redis *redis.Client
	Ctx   context.Context
}

func NewStorageService(db *gorm.DB, rdb *redis.Client) *Service {
	return &Service{
		DB:    db,
		Redis: rdb,
		Ctx:   context.Background(),
	}
}

// SaveMessage appends a chat message. The database assigns the id, which
// back-fills msg so the caller can acknowledge with it.
func (s *Service) SaveMessage(msg *models.ChatMessage) error {
	if err := s.DB.Create(msg).Error; err != nil {
		log.Printf("ERROR: Failed to save message for %s/%s: %v", msg.PostType, msg.PostID, err)
		return err
	}
	return nil
}

// GetChatHistory returns the conversation for a post, restricted to
// messages the user participates in, ordered by (created_at, id) ascending.
func (s *Service) GetChatHistory(postID string, postType models.PostType, userID string) ([]models.ChatMessage, error) {
	var history []models.ChatMessage
	err := s.DB.
		Where("post_id = ? AND post_type = ?", postID, postType).
		Where("sender_id = ? OR receiver_id = ?", userID, userID).
		Order("created_at asc, id asc").
		Find(&history).Error
	if err != nil {
		log.Printf("ERROR: Failed to get chat history for %s/%s: %v", postType, postID, err)
		return nil, err
	}
	return history, nil
}

// MarkMessagesRead flips every unread message addressed to readerID in the
// conversation to read, as one atomic UPDATE. The affected row count is the
// number of messages transitioned.
func (s *Service) MarkMessagesRead(postID string, postType models.PostType, readerID string) (int64, error) {
	result := s.DB.Model(&models.ChatMessage{}).
		Where("post_id = ? AND post_type = ? AND receiver_id = ? AND is_read = ?", postID, postType, readerID, false).
		Update("is_read", true)
	if result.Error != nil {
		log.Printf("ERROR: Failed to mark messages read for %s/%s: %v", postType, postID, result.Error)
		return 0, result.Error
	}
	return result.RowsAffected, nil
}

// GetConversations lists the user's conversations with their latest message
// and unread count, most recent first.
func (s *Service) GetConversations(userID string) ([]ConversationSummary, error) {
	// DISTINCT ON picks the newest message per (post_id, post_type) pair.
	rawSQL := `
        SELECT DISTINCT ON (post_id, post_type) *
        FROM chat_messages
        WHERE sender_id = ? OR receiver_id = ?
        ORDER BY post_id, post_type, created_at DESC, id DESC
    `
	var latest []models.ChatMessage
	if err := s.DB.Raw(rawSQL, userID, userID).Scan(&latest).Error; err != nil {
		return nil, err
	}

	type unreadRow struct {
		PostID   string
		PostType models.PostType
		Unread   int64
	}
	var unread []unreadRow
	err := s.DB.Model(&models.ChatMessage{}).
		Select("post_id, post_type, count(*) as unread").
		Where("receiver_id = ? AND is_read = ?", userID, false).
		Group("post_id, post_type").
		Scan(&unread).Error
	if err != nil {
		return nil, err
	}

	unreadByPost := make(map[chathub.PostKey]int64, len(unread))
	for _, row := range unread {
		unreadByPost[chathub.PostKey{PostID: row.PostID, PostType: row.PostType}] = row.Unread
	}

	summaries := make([]ConversationSummary, 0, len(latest))
	for _, msg := range latest {
		counterpart := msg.SenderID
		if counterpart == userID {
			counterpart = msg.ReceiverID
		}
		summaries = append(summaries, ConversationSummary{
			PostID:        msg.PostID,
			PostType:      msg.PostType,
			CounterpartID: counterpart,
			LastMessage:   msg,
			UnreadCount:   unreadByPost[chathub.PostKey{PostID: msg.PostID, PostType: msg.PostType}],
		})
	}
	return summaries, nil
}

// OwnerOf resolves the agency owner of a listing.
func (s *Service) OwnerOf(postID string, postType models.PostType) (string, error) {
	var listing struct{ AgencyID string }

	query := s.DB.Select("agency_id").Where("id = ?", postID)
	var err error
	switch postType {
	case models.PostTrip:
		err = query.Model(&models.Trip{}).Take(&listing).Error
	case models.PostCar:
		err = query.Model(&models.Car{}).Take(&listing).Error
	case models.PostHotel:
		err = query.Model(&models.Hotel{}).Take(&listing).Error
	case models.PostRoom:
		err = query.Model(&models.HotelRoom{}).Take(&listing).Error
	default:
		return "", errors.New("unknown post type")
	}
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return "", ErrNotFound
	}
	if err != nil {
		return "", err
	}

	var agency models.Agency
	if err := s.DB.Where("id = ?", listing.AgencyID).First(&agency).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return "", ErrNotFound
		}
		return "", err
	}
	return agency.OwnerID, nil
}

// CounterpartOf resolves the other party of a post conversation relative to
// selfID. For customers that is the listing owner; for the owner it is the
// customer who most recently took part in the conversation.
func (s *Service) CounterpartOf(postID string, postType models.PostType, selfID string) (string, error) {
	owner, err := s.OwnerOf(postID, postType)
	if err != nil {
		return "", err
	}
	if selfID != owner {
		return owner, nil
	}

	var msg models.ChatMessage
	err = s.DB.
		Where("post_id = ? AND post_type = ?", postID, postType).
		Where("sender_id = ? OR receiver_id = ?", selfID, selfID).
		Order("id desc").
		First(&msg).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return "", ErrNotFound
	}
	if err != nil {
		return "", err
	}

	if msg.SenderID != selfID {
		return msg.SenderID, nil
	}
	return msg.ReceiverID, nil
}

// SetOnline records the user in the global presence set.
func (s *Service) SetOnline(userID string) error {
	return s.Redis.SAdd(s.Ctx, "online_users", userID).Err()
}

// SetOffline removes the user from the global presence set.
func (s *Service) SetOffline(userID string) error {
	return s.Redis.SRem(s.Ctx, "online_users", userID).Err()
}

// IsOnline reports whether any instance holds a live connection for the user.
func (s *Service) IsOnline(userID string) (bool, error) {
	return s.Redis.SIsMember(s.Ctx, "online_users", userID).Result()
}

// PublishMessage fans a persisted message out to the relay channel so other
// instances can deliver it to locally connected receivers.
func (s *Service) PublishMessage(origin string, msg models.ChatMessage) error {
	frame := chathub.RelayFrame{Origin: origin, Message: msg}
	payload, err := json.Marshal(frame)
	if err != nil {
		return err
	}
	return s.Redis.Publish(s.Ctx, relayChannel, payload).Err()
}

// SubscribeRelay subscribes to the relay channel and decodes frames into a
// Go channel, which closes when ctx is cancelled.
func (s *Service) SubscribeRelay(ctx context.Context) <-chan chathub.RelayFrame {
	pubsub := s.Redis.Subscribe(ctx, relayChannel)
	out := make(chan chathub.RelayFrame)

	go func() {
		defer close(out)
		defer pubsub.Close()

		for msg := range pubsub.Channel() {
			var frame chathub.RelayFrame
			if err := json.Unmarshal([]byte(msg.Payload), &frame); err != nil {
				log.Printf("ERROR: Failed to decode relay frame: %v", err)
				continue
			}
			select {
			case out <- frame:
			case <-ctx.Done():
				return
			}
		}
	}()

	return out
}
