package controller

import (
	"errors"
	"essayeval_backend/internal/model"
	"essayeval_backend/internal/service"
	"essayeval_backend/internal/util"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
)

// FeedbackController 写作辅导对话与快速反馈
type FeedbackController struct {
	ChatService *service.ChatService
}

func NewFeedbackController(chatService *service.ChatService) *FeedbackController {
	return &FeedbackController{ChatService: chatService}
}

type ChatRequest struct {
	SessionID string `json:"sessionId"`
	Message   string `json:"message" binding:"required,max=10000"`
}

// Chat godoc
// @Summary 写作辅导对话
// @Description sessionId为空时新建会话，首条消息自动生成会话标题
// @Tags 反馈
// @Accept  json
// @Produce  json
// @Security BearerAuth
// @Param   body body ChatRequest true "消息内容"
// @Success 200 {object} util.Response{data=service.ChatReply} "助手回复"
// @Failure 404 {object} util.Response "会话不存在"
// @Router /api/feedback/chat [post]
func (c *FeedbackController) Chat(ctx *gin.Context) {
	claims := util.GetUserFromContext(ctx)
	if claims == nil {
		util.Unauthorized(ctx)
		return
	}

	var req ChatRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}

	reply, err := c.ChatService.Send(ctx.Request.Context(), claims.UserID, req.SessionID, req.Message)
	if err != nil {
		if errors.Is(err, util.ErrSessionNotFound) {
			util.NotFound(ctx)
		} else {
			util.LogInternalError(ctx, err)
		}
		return
	}
	util.Success(ctx, reply)
}

// ChatStream godoc
// @Summary 流式写作辅导对话
// @Description SSE流式返回，结束后完整问答落库
// @Tags 反馈
// @Accept  json
// @Produce  text/event-stream
// @Security BearerAuth
// @Param   body body ChatRequest true "消息内容"
// @Router /api/feedback/chat/stream [post]
func (c *FeedbackController) ChatStream(ctx *gin.Context) {
	claims := util.GetUserFromContext(ctx)
	if claims == nil {
		util.Unauthorized(ctx)
		return
	}

	var req ChatRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}

	session, chunks, errChan, err := c.ChatService.SendStream(ctx.Request.Context(), claims.UserID, req.SessionID, req.Message)
	if err != nil {
		if errors.Is(err, util.ErrSessionNotFound) {
			util.NotFound(ctx)
		} else {
			util.LogInternalError(ctx, err)
		}
		return
	}

	// 设置SSE响应头
	ctx.Header("Content-Type", "text/event-stream")
	ctx.Header("Cache-Control", "no-cache")
	ctx.Header("Connection", "keep-alive")
	ctx.Header("Transfer-Encoding", "chunked")

	ctx.SSEvent("session", session.SessionID)
	ctx.Writer.Flush()

	var full strings.Builder
	for content := range chunks {
		full.WriteString(content)
		ctx.SSEvent("message", content)
		ctx.Writer.Flush()
	}

	if err := <-errChan; err != nil {
		ctx.SSEvent("error", err.Error())
		ctx.Writer.Flush()
		return
	}

	if err := c.ChatService.Persist(ctx.Request.Context(), session, req.Message, full.String()); err != nil {
		ctx.SSEvent("error", err.Error())
		ctx.Writer.Flush()
		return
	}

	ctx.SSEvent("end", "done")
	ctx.Writer.Flush()
}

type QuickFeedbackRequest struct {
	Text string `json:"text" binding:"required,max=20000"`
}

// QuickFeedback godoc
// @Summary 快速文本反馈
// @Description 一次性反馈，不创建会话、不留历史
// @Tags 反馈
// @Accept  json
// @Produce  json
// @Security BearerAuth
// @Param   body body QuickFeedbackRequest true "待反馈文本"
// @Success 200 {object} util.Response{data=service.AIFeedback} "反馈结果"
// @Router /api/feedback/quick [post]
func (c *FeedbackController) QuickFeedback(ctx *gin.Context) {
	var req QuickFeedbackRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}

	feedback, err := c.ChatService.QuickFeedback(req.Text)
	if err != nil {
		util.LogInternalError(ctx, err)
		return
	}
	util.Success(ctx, feedback)
}

// History godoc
// @Summary 会话完整消息记录
// @Tags 反馈
// @Produce  json
// @Security BearerAuth
// @Param   sessionId path string true "会话ID"
// @Success 200 {object} util.Response{data=model.ChatSession} "会话详情"
// @Failure 404 {object} util.Response "会话不存在"
// @Router /api/feedback/sessions/{sessionId} [get]
func (c *FeedbackController) History(ctx *gin.Context) {
	claims := util.GetUserFromContext(ctx)
	if claims == nil {
		util.Unauthorized(ctx)
		return
	}

	session, err := c.ChatService.History(claims.UserID, ctx.Param("sessionId"))
	if err != nil {
		util.NotFound(ctx)
		return
	}
	util.Success(ctx, session)
}

// ChatExport JSON格式导出的会话内容
type ChatExport struct {
	Title      string              `json:"title"`
	Messages   []model.ChatMessage `json:"messages"`
	ExportedAt time.Time           `json:"exportedAt"`
}

// Export godoc
// @Summary 导出会话记录
// @Description format=json返回结构化消息，默认导出纯文本附件
// @Tags 反馈
// @Produce  json
// @Security BearerAuth
// @Param   sessionId path string true "会话ID"
// @Param   format query string false "导出格式 text/json"
// @Success 200 {object} util.Response{data=ChatExport} "导出内容"
// @Failure 404 {object} util.Response "会话不存在"
// @Router /api/feedback/sessions/{sessionId}/export [get]
func (c *FeedbackController) Export(ctx *gin.Context) {
	claims := util.GetUserFromContext(ctx)
	if claims == nil {
		util.Unauthorized(ctx)
		return
	}

	session, err := c.ChatService.History(claims.UserID, ctx.Param("sessionId"))
	if err != nil {
		util.NotFound(ctx)
		return
	}

	now := time.Now().UTC()
	if ctx.DefaultQuery("format", "text") == "json" {
		util.Success(ctx, ChatExport{Title: session.Title, Messages: session.Messages, ExportedAt: now})
		return
	}

	ctx.Header("Content-Disposition", fmt.Sprintf(`attachment; filename="chat-%s.txt"`, session.SessionID))
	ctx.Data(http.StatusOK, "text/plain; charset=utf-8", []byte(service.RenderTranscript(session, now)))
}

// ListSessions godoc
// @Summary 会话列表
// @Tags 反馈
// @Produce  json
// @Security BearerAuth
// @Param   page query int false "页码"
// @Param   limit query int false "每页条数"
// @Success 200 {object} util.Response{data=util.PageResponse} "会话列表"
// @Router /api/feedback/sessions [get]
func (c *FeedbackController) ListSessions(ctx *gin.Context) {
	claims := util.GetUserFromContext(ctx)
	if claims == nil {
		util.Unauthorized(ctx)
		return
	}

	page, limit := pagination(ctx)
	sessions, total, err := c.ChatService.ListSessions(claims.UserID, page, limit)
	if err != nil {
		util.LogInternalError(ctx, err)
		return
	}
	util.Success(ctx, util.PageResponse{List: sessions, Total: total, Page: page, Limit: limit})
}

// DeleteSession godoc
// @Summary 删除会话
// @Tags 反馈
// @Produce  json
// @Security BearerAuth
// @Param   sessionId path string true "会话ID"
// @Success 200 {object} util.Response "删除成功"
// @Failure 404 {object} util.Response "会话不存在"
// @Router /api/feedback/sessions/{sessionId} [delete]
func (c *FeedbackController) DeleteSession(ctx *gin.Context) {
	claims := util.GetUserFromContext(ctx)
	if claims == nil {
		util.Unauthorized(ctx)
		return
	}

	if err := c.ChatService.DeleteSession(ctx.Request.Context(), claims.UserID, ctx.Param("sessionId")); err != nil {
		if errors.Is(err, util.ErrSessionNotFound) {
			util.NotFound(ctx)
		} else {
			util.LogInternalError(ctx, err)
		}
		return
	}
	util.Success(ctx, nil)
}
