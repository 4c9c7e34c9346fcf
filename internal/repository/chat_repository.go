package repository

import (
	"essayeval_backend/internal/model"

	"gorm.io/gorm"
)

type ChatRepository struct {
	DB *gorm.DB
}

func NewChatRepository(db *gorm.DB) *ChatRepository {
	return &ChatRepository{DB: db}
}

func (r *ChatRepository) CreateSession(session *model.ChatSession) error {
	return r.DB.Create(session).Error
}

func (r *ChatRepository) UpdateSession(session *model.ChatSession) error {
	return r.DB.Save(session).Error
}

func (r *ChatRepository) FindSession(userID uint, sessionID string) (*model.ChatSession, error) {
	var session model.ChatSession
	err := r.DB.Where("user_id = ? AND session_id = ?", userID, sessionID).First(&session).Error
	if err != nil {
		return nil, err
	}
	return &session, nil
}

func (r *ChatRepository) FindSessionWithMessages(userID uint, sessionID string) (*model.ChatSession, error) {
	var session model.ChatSession
	err := r.DB.Preload("Messages", func(db *gorm.DB) *gorm.DB {
		return db.Order("chat_messages.created_at ASC")
	}).Where("user_id = ? AND session_id = ?", userID, sessionID).First(&session).Error
	if err != nil {
		return nil, err
	}
	return &session, nil
}

func (r *ChatRepository) AppendMessage(message *model.ChatMessage) error {
	return r.DB.Create(message).Error
}

// RecentMessages 取会话末尾的若干条消息，按时间正序返回
func (r *ChatRepository) RecentMessages(sessionRef uint, limit int) ([]model.ChatMessage, error) {
	var messages []model.ChatMessage
	err := r.DB.Where("session_ref = ?", sessionRef).
		Order("created_at DESC").
		Limit(limit).
		Find(&messages).Error
	if err != nil {
		return nil, err
	}
	// 反转成正序
	for i, j := 0, len(messages)-1; i < j; i, j = i+1, j-1 {
		messages[i], messages[j] = messages[j], messages[i]
	}
	return messages, nil
}

func (r *ChatRepository) ListSessions(userID uint, page, limit int) ([]model.ChatSession, int64, error) {
	query := r.DB.Model(&model.ChatSession{}).Where("user_id = ?", userID)

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var sessions []model.ChatSession
	err := query.Order("updated_at DESC").
		Offset((page - 1) * limit).
		Limit(limit).
		Find(&sessions).Error
	return sessions, total, err
}

func (r *ChatRepository) DeleteSession(userID uint, sessionID string) (int64, error) {
	var session model.ChatSession
	if err := r.DB.Where("user_id = ? AND session_id = ?", userID, sessionID).First(&session).Error; err != nil {
		return 0, err
	}
	if err := r.DB.Where("session_ref = ?", session.ID).Delete(&model.ChatMessage{}).Error; err != nil {
		return 0, err
	}
	result := r.DB.Delete(&session)
	return result.RowsAffected, result.Error
}
