package store

import (
	"errors"
	"time"

	canvas "github.com/ghagevaibhav/CanvasFlow/domain/canvas"
	"gorm.io/gorm"
)

var (
	// ErrRoomNotFound is returned when a room does not exist.
	ErrRoomNotFound = errors.New("room not found")
	// ErrRoomExists is returned when a room slug is already taken.
	ErrRoomExists = errors.New("room with this slug already exists")
)

// HistoryLimit caps how many messages a history read returns.
const HistoryLimit = 100

// RoomRepository handles room persistence using GORM.
type RoomRepository struct {
	db *gorm.DB
}

// NewRoomRepository creates a new RoomRepository.
func NewRoomRepository(db *gorm.DB) *RoomRepository {
	return &RoomRepository{
		db: db,
	}
}

// Create persists a new room.
func (r *RoomRepository) Create(slug, adminID string) (*canvas.Room, error) {
	room := &canvas.Room{
		Slug:      slug,
		AdminID:   adminID,
		CreatedAt: time.Now(),
	}
	result := r.db.Create(room)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrDuplicatedKey) {
			return nil, ErrRoomExists
		}
		return nil, result.Error
	}
	return room, nil
}

// FindByID finds a room by numeric id.
func (r *RoomRepository) FindByID(id uint) (*canvas.Room, error) {
	var room canvas.Room
	result := r.db.First(&room, "id = ?", id)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return nil, ErrRoomNotFound
		}
		return nil, result.Error
	}
	return &room, nil
}

// FindBySlug finds a room by slug.
func (r *RoomRepository) FindBySlug(slug string) (*canvas.Room, error) {
	var room canvas.Room
	result := r.db.First(&room, "slug = ?", slug)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return nil, ErrRoomNotFound
		}
		return nil, result.Error
	}
	return &room, nil
}

// ChatRepository handles message persistence using GORM.
type ChatRepository struct {
	db *gorm.DB
}

// NewChatRepository creates a new ChatRepository.
func NewChatRepository(db *gorm.DB) *ChatRepository {
	return &ChatRepository{
		db: db,
	}
}

// Create persists one chat message. The payload is stored as-is; its
// internal structure belongs to the front-end.
func (r *ChatRepository) Create(roomID uint, userID, message string) (*canvas.Chat, error) {
	chat := &canvas.Chat{
		RoomID:  roomID,
		UserID:  userID,
		Message: message,
	}
	if result := r.db.Create(chat); result.Error != nil {
		return nil, result.Error
	}
	return chat, nil
}

// History returns the most recent messages for a room, newest first,
// capped at HistoryLimit.
func (r *ChatRepository) History(roomID uint) ([]canvas.Chat, error) {
	var chats []canvas.Chat
	result := r.db.
		Where("room_id = ?", roomID).
		Order("id DESC").
		Limit(HistoryLimit).
		Find(&chats)
	if result.Error != nil {
		return nil, result.Error
	}
	return chats, nil
}
