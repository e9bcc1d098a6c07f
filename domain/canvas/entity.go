package canvas

import (
	"time"
)

// User represents a registered account.
type User struct {
	ID        string    `gorm:"primaryKey;type:text" json:"id"`
	Email     string    `gorm:"uniqueIndex;not null;type:text" json:"email"`
	Password  string    `gorm:"not null;type:text" json:"-"`
	Name      string    `gorm:"type:text" json:"name"`
	Photo     string    `gorm:"type:text" json:"photo,omitempty"`
	CreatedAt time.Time `json:"createdAt"`
}

// TableName returns the table name for the User entity.
func (User) TableName() string {
	return "users"
}

// Room is a persisted collaboration channel. Clients join rooms by numeric
// id over the WebSocket protocol; the HTTP API resolves slugs to ids.
type Room struct {
	ID        uint      `gorm:"primaryKey;autoIncrement" json:"id"`
	Slug      string    `gorm:"uniqueIndex;not null;type:text" json:"slug"`
	AdminID   string    `gorm:"not null;type:text" json:"adminId"`
	CreatedAt time.Time `json:"createdAt"`
}

// TableName returns the table name for the Room entity.
func (Room) TableName() string {
	return "rooms"
}

// Chat is one persisted message. The message payload is an opaque string;
// the drawing semantics inside it belong entirely to the front-end.
type Chat struct {
	ID      uint   `gorm:"primaryKey;autoIncrement" json:"id"`
	RoomID  uint   `gorm:"index;not null" json:"roomId"`
	UserID  string `gorm:"not null;type:text" json:"userId"`
	Message string `gorm:"not null;type:text" json:"message"`
}

// TableName returns the table name for the Chat entity.
func (Chat) TableName() string {
	return "chats"
}
