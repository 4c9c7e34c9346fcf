package model

type ChatRole string

const (
	RoleUser      ChatRole = "user"
	RoleAssistant ChatRole = "assistant"
)

// swagger:model ChatSession
type ChatSession struct {
	BaseModel
	UserID    uint          `gorm:"index;not null" json:"userId"`
	SessionID string        `gorm:"size:36;uniqueIndex;not null" json:"sessionId"`
	Title     string        `gorm:"size:100;default:'New Chat'" json:"title"`
	Messages  []ChatMessage `gorm:"foreignKey:SessionRef" json:"messages,omitempty"`
}

func (ChatSession) TableName() string {
	return "chat_sessions"
}

// swagger:model ChatMessage
type ChatMessage struct {
	BaseModel
	SessionRef uint     `gorm:"index;not null" json:"-"`
	Role       ChatRole `gorm:"size:20;not null" json:"role"`
	Content    string   `gorm:"type:mediumtext;not null" json:"content"`

	// 助手回复中若包含结构化反馈则解析存档
	StructuredFeedback *DetailedFeedback `gorm:"serializer:json" json:"structuredFeedback,omitempty"`
}

func (ChatMessage) TableName() string {
	return "chat_messages"
}
