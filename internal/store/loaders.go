package store

import (
	"context"
	"strings"

	"github.com/gravitlabs/storefront/internal/domain"
	"github.com/pkg/errors"
	"gorm.io/gorm"
)

// loaderFor resolves the snapshot loader of a collection. All loaders
// deliver the full current result set in query order, newest first,
// matching the dashboard list views.
func (h *Hub) loaderFor(collection string) Loader {
	switch collection {
	case CollectionProducts:
		return loadProducts
	case CollectionSales:
		return loadSales
	case CollectionReviews:
		return loadReviews
	case CollectionChats:
		return loadChats
	case CollectionSettings:
		return loadSettings
	}
	if chatID, ok := parseChatMessages(collection); ok {
		return chatMessagesLoader(chatID)
	}
	return nil
}

func parseChatMessages(collection string) (string, bool) {
	if !strings.HasPrefix(collection, "chats/") || !strings.HasSuffix(collection, "/messages") {
		return "", false
	}
	chatID := strings.TrimSuffix(strings.TrimPrefix(collection, "chats/"), "/messages")
	if chatID == "" || strings.Contains(chatID, "/") {
		return "", false
	}
	return chatID, true
}

func loadProducts(ctx context.Context, db *gorm.DB) (interface{}, error) {
	var rows []domain.Product
	if err := db.WithContext(ctx).Order("created_at DESC").Find(&rows).Error; err != nil {
		return nil, errors.Wrap(err, "load products snapshot")
	}
	return rows, nil
}

func loadSales(ctx context.Context, db *gorm.DB) (interface{}, error) {
	var rows []domain.Sale
	if err := db.WithContext(ctx).Order("created_at DESC").Find(&rows).Error; err != nil {
		return nil, errors.Wrap(err, "load sales snapshot")
	}
	return rows, nil
}

func loadReviews(ctx context.Context, db *gorm.DB) (interface{}, error) {
	var rows []domain.Review
	if err := db.WithContext(ctx).Order("created_at DESC").Find(&rows).Error; err != nil {
		return nil, errors.Wrap(err, "load reviews snapshot")
	}
	return rows, nil
}

func loadChats(ctx context.Context, db *gorm.DB) (interface{}, error) {
	var rows []domain.Chat
	if err := db.WithContext(ctx).Order("unread DESC").Order("updated_at DESC").Find(&rows).Error; err != nil {
		return nil, errors.Wrap(err, "load chats snapshot")
	}
	return rows, nil
}

func loadSettings(ctx context.Context, db *gorm.DB) (interface{}, error) {
	var rows []domain.SysConfig
	if err := db.WithContext(ctx).Where("type = ?", "store").Order("sort").Find(&rows).Error; err != nil {
		return nil, errors.Wrap(err, "load settings snapshot")
	}
	return rows, nil
}

func chatMessagesLoader(chatID string) Loader {
	return func(ctx context.Context, db *gorm.DB) (interface{}, error) {
		var rows []domain.ChatMessage
		err := db.WithContext(ctx).
			Where("chat_id = ?", chatID).
			Order("created_at ASC").
			Find(&rows).Error
		if err != nil {
			return nil, errors.Wrap(err, "load chat messages snapshot")
		}
		return rows, nil
	}
}
