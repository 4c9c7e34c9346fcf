package service

import (
	"context"
	"encoding/json"
	"essayeval_backend/internal/model"
	"essayeval_backend/internal/repository"
	"essayeval_backend/internal/util"
	"essayeval_backend/pkg/logger"
	"fmt"
	"strings"
	"time"

	"github.com/go-redis/redis/v8"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

const (
	// 喂给模型的上下文长度，再往前的历史不带
	chatContextMessages = 10
	chatContextTTL      = 30 * time.Minute
	sessionTitleLimit   = 50
)

// ChatService 写作辅导对话。上下文热缓存走redis，冷启动回源数据库。
type ChatService struct {
	ChatRepo *repository.ChatRepository
	AI       *AIService
	Redis    *redis.Client
}

func NewChatService(chatRepo *repository.ChatRepository, ai *AIService, rdb *redis.Client) *ChatService {
	return &ChatService{ChatRepo: chatRepo, AI: ai, Redis: rdb}
}

// ChatReply 一轮对话的返回
type ChatReply struct {
	SessionID          string                  `json:"sessionId"`
	Title              string                  `json:"title"`
	Reply              string                  `json:"reply"`
	StructuredFeedback *model.DetailedFeedback `json:"structuredFeedback,omitempty"`
}

// Send 发送一条消息。sessionID为空时新建会话并用首条消息命名。
func (s *ChatService) Send(ctx context.Context, userID uint, sessionID, message string) (*ChatReply, error) {
	session, err := s.resolveSession(userID, sessionID, message)
	if err != nil {
		return nil, err
	}

	history, err := s.contextFor(ctx, session)
	if err != nil {
		return nil, err
	}
	history = append(history, AIChatMessage{Role: "user", Content: message})

	reply, err := s.AI.Chat(history)
	if err != nil {
		return nil, err
	}

	feedback := parseStructuredFeedback(reply)

	userMsg := &model.ChatMessage{SessionRef: session.ID, Role: model.RoleUser, Content: message}
	if err := s.ChatRepo.AppendMessage(userMsg); err != nil {
		return nil, err
	}
	assistantMsg := &model.ChatMessage{
		SessionRef:         session.ID,
		Role:               model.RoleAssistant,
		Content:            reply,
		StructuredFeedback: feedback,
	}
	if err := s.ChatRepo.AppendMessage(assistantMsg); err != nil {
		return nil, err
	}

	// 触发updated_at刷新，会话列表按最近活跃排序
	if err := s.ChatRepo.UpdateSession(session); err != nil {
		logger.Log.Error("failed to touch chat session", zap.String("sessionId", session.SessionID), zap.Error(err))
	}

	s.cacheContext(ctx, session.ID, append(history, AIChatMessage{Role: "assistant", Content: reply}))

	return &ChatReply{
		SessionID:          session.SessionID,
		Title:              session.Title,
		Reply:              reply,
		StructuredFeedback: feedback,
	}, nil
}

// SendStream 流式对话。历史落库在流结束后由调用方通过Persist完成。
func (s *ChatService) SendStream(ctx context.Context, userID uint, sessionID, message string) (*model.ChatSession, <-chan string, <-chan error, error) {
	session, err := s.resolveSession(userID, sessionID, message)
	if err != nil {
		return nil, nil, nil, err
	}

	history, err := s.contextFor(ctx, session)
	if err != nil {
		return nil, nil, nil, err
	}
	history = append(history, AIChatMessage{Role: "user", Content: message})

	chunks, errs := s.AI.ChatStream(history)
	return session, chunks, errs, nil
}

// Persist 流式对话结束后落库完整的问答对
func (s *ChatService) Persist(ctx context.Context, session *model.ChatSession, message, reply string) error {
	if err := s.ChatRepo.AppendMessage(&model.ChatMessage{
		SessionRef: session.ID, Role: model.RoleUser, Content: message,
	}); err != nil {
		return err
	}
	if err := s.ChatRepo.AppendMessage(&model.ChatMessage{
		SessionRef:         session.ID,
		Role:               model.RoleAssistant,
		Content:            reply,
		StructuredFeedback: parseStructuredFeedback(reply),
	}); err != nil {
		return err
	}
	if err := s.ChatRepo.UpdateSession(session); err != nil {
		logger.Log.Error("failed to touch chat session", zap.String("sessionId", session.SessionID), zap.Error(err))
	}
	s.invalidateContext(ctx, session.ID)
	return nil
}

func (s *ChatService) resolveSession(userID uint, sessionID, firstMessage string) (*model.ChatSession, error) {
	if sessionID != "" {
		session, err := s.ChatRepo.FindSession(userID, sessionID)
		if err != nil {
			return nil, util.ErrSessionNotFound
		}
		return session, nil
	}

	session := &model.ChatSession{
		UserID:    userID,
		SessionID: uuid.NewString(),
		Title:     deriveTitle(firstMessage),
	}
	if err := s.ChatRepo.CreateSession(session); err != nil {
		return nil, err
	}
	return session, nil
}

// deriveTitle 用首条消息生成会话标题，超长截断
func deriveTitle(message string) string {
	title := strings.TrimSpace(message)
	if title == "" {
		return "New Chat"
	}
	if len(title) > sessionTitleLimit {
		title = title[:sessionTitleLimit] + "..."
	}
	return title
}

// parseStructuredFeedback 助手回复里如果藏着评分JSON就解出来存档
func parseStructuredFeedback(reply string) *model.DetailedFeedback {
	var feedback AIFeedback
	if err := ExtractJSON(reply, &feedback); err != nil {
		return nil
	}
	if feedback.Feedback == "" && len(feedback.Strengths) == 0 {
		return nil
	}
	return &model.DetailedFeedback{
		Rating:      feedback.Rating,
		Feedback:    feedback.Feedback,
		Strengths:   feedback.Strengths,
		Weaknesses:  feedback.Weaknesses,
		Suggestions: feedback.Suggestions,
	}
}

func (s *ChatService) contextFor(ctx context.Context, session *model.ChatSession) ([]AIChatMessage, error) {
	if s.Redis != nil {
		if val, err := s.Redis.Get(ctx, contextKey(session.ID)).Result(); err == nil {
			var cached []AIChatMessage
			if json.Unmarshal([]byte(val), &cached) == nil {
				return cached, nil
			}
		}
	}

	messages, err := s.ChatRepo.RecentMessages(session.ID, chatContextMessages)
	if err != nil {
		return nil, err
	}
	history := make([]AIChatMessage, 0, len(messages))
	for _, m := range messages {
		history = append(history, AIChatMessage{Role: string(m.Role), Content: m.Content})
	}
	return history, nil
}

func (s *ChatService) cacheContext(ctx context.Context, sessionRef uint, history []AIChatMessage) {
	if s.Redis == nil {
		return
	}
	if len(history) > chatContextMessages {
		history = history[len(history)-chatContextMessages:]
	}
	payload, err := json.Marshal(history)
	if err != nil {
		return
	}
	s.Redis.Set(ctx, contextKey(sessionRef), payload, chatContextTTL)
}

func (s *ChatService) invalidateContext(ctx context.Context, sessionRef uint) {
	if s.Redis == nil {
		return
	}
	s.Redis.Del(ctx, contextKey(sessionRef))
}

func contextKey(sessionRef uint) string {
	return fmt.Sprintf("chat:context:%d", sessionRef)
}

// History 读取某个会话的完整消息记录
func (s *ChatService) History(userID uint, sessionID string) (*model.ChatSession, error) {
	session, err := s.ChatRepo.FindSessionWithMessages(userID, sessionID)
	if err != nil {
		return nil, util.ErrSessionNotFound
	}
	return session, nil
}

// RenderTranscript 会话导出为纯文本，结构化反馈附在对应消息后
func RenderTranscript(session *model.ChatSession, exportedAt time.Time) string {
	var b strings.Builder
	b.WriteString("Chat Export: " + session.Title + "\n")
	b.WriteString("Exported: " + exportedAt.UTC().Format(time.RFC3339) + "\n")
	b.WriteString(strings.Repeat("=", 50) + "\n\n")

	for _, msg := range session.Messages {
		fmt.Fprintf(&b, "[%s] (%s)\n", strings.ToUpper(string(msg.Role)), msg.CreatedAt.Format("2006-01-02 15:04:05"))
		b.WriteString(msg.Content + "\n\n")
		if msg.StructuredFeedback != nil {
			if data, err := json.MarshalIndent(msg.StructuredFeedback, "", "  "); err == nil {
				b.WriteString("Structured Feedback:\n")
				b.Write(data)
				b.WriteString("\n\n")
			}
		}
		b.WriteString(strings.Repeat("-", 30) + "\n\n")
	}
	return b.String()
}

func (s *ChatService) ListSessions(userID uint, page, limit int) ([]model.ChatSession, int64, error) {
	return s.ChatRepo.ListSessions(userID, page, limit)
}

func (s *ChatService) DeleteSession(ctx context.Context, userID uint, sessionID string) error {
	session, err := s.ChatRepo.FindSession(userID, sessionID)
	if err != nil {
		return util.ErrSessionNotFound
	}
	affected, err := s.ChatRepo.DeleteSession(userID, sessionID)
	if err != nil {
		return err
	}
	if affected == 0 {
		return util.ErrSessionNotFound
	}
	s.invalidateContext(ctx, session.ID)
	return nil
}

// QuickFeedback 不建会话的一次性快速反馈
func (s *ChatService) QuickFeedback(text string) (*AIFeedback, error) {
	return s.AI.QuickFeedback(text)
}
