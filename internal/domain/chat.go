package domain

import "time"

const (
	ChatRoleUser  = "user"
	ChatRoleAdmin = "admin"
)

// Chat groups messages under a client-generated conversation id.
// LastMessage is a denormalized preview of the newest message; Unread
// flags conversations with user messages the admin has not seen yet.
type Chat struct {
	ID          string    `gorm:"primaryKey;size:32" json:"id" form:"id"`
	ClientName  string    `json:"client_name" form:"client_name"`
	LastMessage string    `gorm:"size:512" json:"last_message"`
	Unread      bool      `gorm:"index" json:"unread"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `gorm:"index" json:"updated_at"`
}

// TableName Specify table name
func (Chat) TableName() string {
	return "shop_chat"
}

// ChatMessage is one message inside a chat.
type ChatMessage struct {
	ID        int64     `json:"id,string" form:"id"`
	ChatId    string    `gorm:"index;size:32" json:"chat_id" form:"chat_id"`
	Sender    string    `gorm:"size:16" json:"sender" form:"sender"` // user | admin
	Text      string    `gorm:"size:2048" json:"text" form:"text"`
	CreatedAt time.Time `gorm:"index" json:"created_at"`
}

// TableName Specify table name
func (ChatMessage) TableName() string {
	return "shop_chat_message"
}
