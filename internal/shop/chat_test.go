package shop

import (
	"context"
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/gravitlabs/storefront/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestChatPostAndPreview(t *testing.T) {
	db := newTestDB(t)
	svc := NewChatService(db, nil)
	ctx := context.Background()

	msg, err := svc.Post(ctx, "", domain.ChatRoleUser, "Aziz", "Do you have corner tubs in stock?")
	require.NoError(t, err)
	require.NotEmpty(t, msg.ChatId)

	chats, err := svc.List(ctx)
	require.NoError(t, err)
	require.Len(t, chats, 1)
	assert.True(t, chats[0].Unread, "user message flags the chat unread")
	assert.Equal(t, "Do you have corner tubs in stock?", chats[0].LastMessage)
	assert.Equal(t, "Aziz", chats[0].ClientName)

	// admin reply clears the unread flag and moves the preview
	_, err = svc.Post(ctx, msg.ChatId, domain.ChatRoleAdmin, "", "Yes, two left.")
	require.NoError(t, err)

	chats, err = svc.List(ctx)
	require.NoError(t, err)
	require.Len(t, chats, 1)
	assert.False(t, chats[0].Unread)
	assert.Equal(t, "Yes, two left.", chats[0].LastMessage)

	msgs, err := svc.Messages(ctx, msg.ChatId)
	require.NoError(t, err)
	require.Len(t, msgs, 2)
	assert.Equal(t, domain.ChatRoleUser, msgs[0].Sender)
	assert.Equal(t, domain.ChatRoleAdmin, msgs[1].Sender)
}

func TestChatPreviewTruncatesOnRuneBoundary(t *testing.T) {
	db := newTestDB(t)
	svc := NewChatService(db, nil)
	ctx := context.Background()

	// 119 ASCII bytes followed by a two-byte rune: a byte-count cut
	// would land in the middle of it
	text := strings.Repeat("a", 119) + "шестьдесят"
	msg, err := svc.Post(ctx, "", domain.ChatRoleUser, "Aziz", text)
	require.NoError(t, err)

	chats, err := svc.List(ctx)
	require.NoError(t, err)
	require.Len(t, chats, 1)
	preview := chats[0].LastMessage
	assert.True(t, utf8.ValidString(preview), "preview must stay valid UTF-8")
	assert.LessOrEqual(t, len(preview), chatPreviewLimit)
	assert.Equal(t, strings.Repeat("a", 119), preview)

	// short messages are stored whole
	_, err = svc.Post(ctx, msg.ChatId, domain.ChatRoleAdmin, "", "Да")
	require.NoError(t, err)
	chats, err = svc.List(ctx)
	require.NoError(t, err)
	assert.Equal(t, "Да", chats[0].LastMessage)
}

func TestChatPostValidation(t *testing.T) {
	db := newTestDB(t)
	svc := NewChatService(db, nil)
	ctx := context.Background()

	_, err := svc.Post(ctx, "", domain.ChatRoleUser, "", "   ")
	assert.Error(t, err, "empty text rejected")

	_, err = svc.Post(ctx, "", "bot", "", "hello")
	assert.Error(t, err, "unknown sender role rejected")
}

func TestChatMarkRead(t *testing.T) {
	db := newTestDB(t)
	svc := NewChatService(db, nil)
	ctx := context.Background()

	msg, err := svc.Post(ctx, "", domain.ChatRoleUser, "Aziz", "hello")
	require.NoError(t, err)

	require.NoError(t, svc.MarkRead(ctx, msg.ChatId))
	chats, err := svc.List(ctx)
	require.NoError(t, err)
	require.Len(t, chats, 1)
	assert.False(t, chats[0].Unread)
}

func TestSettingsRoundtrip(t *testing.T) {
	db := newTestDB(t)
	svc := NewSettingsService(db, nil)
	ctx := context.Background()

	err := svc.Save(ctx, map[string]interface{}{
		"address":          "12 Chilonzor street, Tashkent",
		"phone":            "+998 90 000 00 00",
		"map_lat":          41.2995,
		"map_lng":          69.2401,
		"default_theme":    "dark",
		"allow_theme_swap": true,
	})
	require.NoError(t, err)

	got, err := svc.Load(ctx)
	require.NoError(t, err)
	assert.Equal(t, "12 Chilonzor street, Tashkent", got.Address)
	assert.Equal(t, 41.2995, got.MapLat)
	assert.Equal(t, "dark", got.DefaultTheme)
	assert.True(t, got.AllowThemeSwap)

	// updates overwrite in place, no duplicate rows
	require.NoError(t, svc.Save(ctx, map[string]interface{}{"default_theme": "light"}))
	got, err = svc.Load(ctx)
	require.NoError(t, err)
	assert.Equal(t, "light", got.DefaultTheme)

	var count int64
	require.NoError(t, db.Model(&domain.SysConfig{}).Where("type = ? AND name = ?", "store", "default_theme").Count(&count).Error)
	assert.EqualValues(t, 1, count)
}
