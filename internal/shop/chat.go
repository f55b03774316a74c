package shop

import (
	"context"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/gravitlabs/storefront/internal/domain"
	"github.com/gravitlabs/storefront/internal/store"
	"github.com/gravitlabs/storefront/pkg/common"
	"github.com/pkg/errors"
	"gorm.io/gorm"
)

const chatPreviewLimit = 120

// truncatePreview cuts s to at most limit bytes without splitting a
// rune, so the stored preview stays valid UTF-8.
func truncatePreview(s string, limit int) string {
	if len(s) <= limit {
		return s
	}
	cut := limit
	for cut > 0 && !utf8.RuneStart(s[cut]) {
		cut--
	}
	return s[:cut]
}

// ChatService maintains conversations and their denormalized state:
// posting a message updates the chat preview and the admin-side unread
// flag in the same transaction as the message insert.
type ChatService struct {
	db       *gorm.DB
	notifier store.Notifier
}

func NewChatService(db *gorm.DB, notifier store.Notifier) *ChatService {
	return &ChatService{db: db, notifier: notifier}
}

// List returns conversations, unread first, most recently active next.
func (s *ChatService) List(ctx context.Context) ([]domain.Chat, error) {
	var rows []domain.Chat
	err := s.db.WithContext(ctx).
		Order("unread DESC").Order("updated_at DESC").
		Find(&rows).Error
	if err != nil {
		return nil, errors.Wrap(err, "list chats")
	}
	return rows, nil
}

// Messages returns all messages of one conversation in send order.
func (s *ChatService) Messages(ctx context.Context, chatID string) ([]domain.ChatMessage, error) {
	var rows []domain.ChatMessage
	err := s.db.WithContext(ctx).
		Where("chat_id = ?", chatID).
		Order("created_at ASC").
		Find(&rows).Error
	if err != nil {
		return nil, errors.Wrap(err, "list chat messages")
	}
	return rows, nil
}

// Post appends a message. An empty chatID starts a new conversation
// with a generated id. A user message flips the unread flag on, an
// admin reply clears it.
func (s *ChatService) Post(ctx context.Context, chatID, sender, clientName, text string) (*domain.ChatMessage, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return nil, errors.New("empty message text")
	}
	if sender != domain.ChatRoleUser && sender != domain.ChatRoleAdmin {
		return nil, errors.Errorf("unknown sender role %q", sender)
	}
	if chatID == "" {
		chatID = common.UUID()
	}

	now := time.Now()
	msg := &domain.ChatMessage{
		ID:        common.UUIDint64(),
		ChatId:    chatID,
		Sender:    sender,
		Text:      text,
		CreatedAt: now,
	}

	preview := truncatePreview(text, chatPreviewLimit)

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var chat domain.Chat
		err := tx.Where("id = ?", chatID).First(&chat).Error
		switch {
		case errors.Is(err, gorm.ErrRecordNotFound):
			chat = domain.Chat{
				ID:         chatID,
				ClientName: clientName,
				CreatedAt:  now,
			}
			if err := tx.Create(&chat).Error; err != nil {
				return errors.Wrap(err, "create chat")
			}
		case err != nil:
			return errors.Wrap(err, "load chat")
		}

		updates := map[string]interface{}{
			"last_message": preview,
			"unread":       sender == domain.ChatRoleUser,
			"updated_at":   now,
		}
		if err := tx.Model(&domain.Chat{}).Where("id = ?", chatID).Updates(updates).Error; err != nil {
			return errors.Wrap(err, "update chat preview")
		}
		return errors.Wrap(tx.Create(msg).Error, "append message")
	})
	if err != nil {
		return nil, err
	}

	if s.notifier != nil {
		s.notifier.Notify(store.CollectionChats)
		s.notifier.Notify(store.ChatMessagesCollection(chatID))
	}
	return msg, nil
}

// MarkRead clears the unread flag after the admin opened the chat.
func (s *ChatService) MarkRead(ctx context.Context, chatID string) error {
	err := s.db.WithContext(ctx).Model(&domain.Chat{}).
		Where("id = ?", chatID).
		Update("unread", false).Error
	if err != nil {
		return errors.Wrap(err, "mark chat read")
	}
	if s.notifier != nil {
		s.notifier.Notify(store.CollectionChats)
	}
	return nil
}
