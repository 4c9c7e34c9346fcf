package service

import (
	"essayeval_backend/internal/model"
	"strings"
	"testing"
	"time"
)

func TestDeriveTitle(t *testing.T) {
	if got := deriveTitle("How do I improve my essay structure?"); got != "How do I improve my essay structure?" {
		t.Fatalf("short message should be used as-is, got %q", got)
	}
	if got := deriveTitle("   "); got != "New Chat" {
		t.Fatalf("blank message should fall back to default, got %q", got)
	}

	long := strings.Repeat("a", 80)
	got := deriveTitle(long)
	if got != strings.Repeat("a", 50)+"..." {
		t.Fatalf("long message should be truncated to 50 chars with ellipsis, got %q", got)
	}
}

func TestParseStructuredFeedback(t *testing.T) {
	reply := "Here is my structured evaluation:\n" +
		`{"rating":"7","feedback":"decent draft","strengths":["voice"],"weaknesses":[],"suggestions":["tighten intro"],"improved_version":""}`
	feedback := parseStructuredFeedback(reply)
	if feedback == nil {
		t.Fatal("expected structured feedback to be parsed")
	}
	if feedback.Rating != "7" || feedback.Feedback != "decent draft" {
		t.Fatalf("unexpected feedback: %#v", feedback)
	}

	if parseStructuredFeedback("plain conversational reply with no JSON") != nil {
		t.Fatal("plain reply should not produce structured feedback")
	}
	// 有JSON但不是评测结构的也不存档
	if parseStructuredFeedback(`{"foo":"bar"}`) != nil {
		t.Fatal("unrelated JSON should not produce structured feedback")
	}
}

func TestRenderTranscript(t *testing.T) {
	asked := time.Date(2026, 3, 1, 10, 30, 0, 0, time.UTC)
	session := &model.ChatSession{
		SessionID: "f3b2c80e-0000-0000-0000-000000000000",
		Title:     "Essay structure",
		Messages: []model.ChatMessage{
			{
				BaseModel: model.BaseModel{CreatedAt: asked},
				Role:      model.RoleUser,
				Content:   "How do I improve the flow?",
			},
			{
				BaseModel:          model.BaseModel{CreatedAt: asked.Add(time.Minute)},
				Role:               model.RoleAssistant,
				Content:            "Use transitions between paragraphs.",
				StructuredFeedback: &model.DetailedFeedback{Rating: "7", Feedback: "solid draft"},
			},
		},
	}

	out := RenderTranscript(session, time.Date(2026, 3, 1, 11, 0, 0, 0, time.UTC))

	for _, want := range []string{
		"Chat Export: Essay structure\n",
		"Exported: 2026-03-01T11:00:00Z\n",
		"[USER] (2026-03-01 10:30:00)\n",
		"[ASSISTANT] (2026-03-01 10:31:00)\n",
		"Use transitions between paragraphs.",
		"Structured Feedback:",
		`"rating": "7"`,
	} {
		if !strings.Contains(out, want) {
			t.Fatalf("transcript missing %q:\n%s", want, out)
		}
	}

	// 用户消息没有结构化反馈，反馈段必须出现在助手消息之后
	if strings.Index(out, "Structured Feedback:") < strings.Index(out, "[ASSISTANT]") {
		t.Fatal("structured feedback should follow the assistant message")
	}
}
