// Package notify sends out-of-band notifications for chat messages that
// arrive while the receiver has no live connection. The message itself is
// already durable; this is only a nudge to come back and read it.
package notify

import (
	"fmt"
	"log"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"travelbay/backend/internal/models"
)

// UserLookup resolves the notification target for a user id.
type UserLookup interface {
	GetUserByID(id string) (*models.User, error)
}

// TelegramNotifier implements chathub.OfflineNotifier for users who linked
// a Telegram chat to their account.
type TelegramNotifier struct {
	BotAPI *tgbotapi.BotAPI
	Users  UserLookup
}

func NewTelegramNotifier(token string, users UserLookup) (*TelegramNotifier, error) {
	bot, err := tgbotapi.NewBotAPI(token)
	if err != nil {
		return nil, err
	}
	bot.Debug = false
	log.Printf("Telegram notifier authorized on account %s", bot.Self.UserName)

	return &TelegramNotifier{BotAPI: bot, Users: users}, nil
}

// NotifyOffline sends a short Telegram message to the receiver, if linked.
// It runs the lookup and send in a goroutine so the hub loop never blocks
// on Telegram I/O.
func (n *TelegramNotifier) NotifyOffline(receiverID string, msg models.ChatMessage) {
	go func() {
		user, err := n.Users.GetUserByID(receiverID)
		if err != nil {
			log.Printf("ERROR: Offline notify lookup for %s failed: %v", receiverID, err)
			return
		}
		if user.TelegramChatID == nil {
			return
		}

		text := fmt.Sprintf("New message about %s %s: %s", msg.PostType, msg.PostID, preview(msg.Content))
		if _, err := n.BotAPI.Send(tgbotapi.NewMessage(*user.TelegramChatID, text)); err != nil {
			log.Printf("ERROR: Failed to send Telegram notification to %s: %v", receiverID, err)
		}
	}()
}

func preview(content string) string {
	const max = 80
	runes := []rune(content)
	if len(runes) <= max {
		return content
	}
	return string(runes[:max]) + "…"
}
