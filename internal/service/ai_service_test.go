package service

import (
	"encoding/json"
	"essayeval_backend/internal/config"
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestExtractJSONPlain(t *testing.T) {
	var feedback AIFeedback
	raw := `{"rating":"8","feedback":"solid work","strengths":["clear"],"weaknesses":[],"suggestions":[],"improved_version":""}`
	if err := ExtractJSON(raw, &feedback); err != nil {
		t.Fatal(err)
	}
	if feedback.Rating != "8" || feedback.Feedback != "solid work" {
		t.Fatalf("unexpected feedback: %#v", feedback)
	}
}

func TestExtractJSONWithSurroundingText(t *testing.T) {
	var feedback AIFeedback
	raw := "Sure! Here is the evaluation you asked for:\n" +
		`{"rating":"6","feedback":"needs work","strengths":[],"weaknesses":["structure"],"suggestions":["add headings"],"improved_version":""}` +
		"\nLet me know if you need anything else."
	if err := ExtractJSON(raw, &feedback); err != nil {
		t.Fatal(err)
	}
	if feedback.Rating != "6" {
		t.Fatalf("expected rating 6, got %s", feedback.Rating)
	}
	if len(feedback.Weaknesses) != 1 || feedback.Weaknesses[0] != "structure" {
		t.Fatalf("unexpected weaknesses: %#v", feedback.Weaknesses)
	}
}

func TestExtractJSONNoObject(t *testing.T) {
	var feedback AIFeedback
	if err := ExtractJSON("no json here at all", &feedback); err == nil {
		t.Fatal("expected error for text without JSON")
	}
}

func newStubAIService(t *testing.T, handler http.HandlerFunc) (*AIService, *httptest.Server) {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)
	return NewAIService(config.AIConfig{
		BaseURL: server.URL,
		APIKey:  "test-key",
		Model:   "test-model",
	}), server
}

func completionResponse(content string) []byte {
	resp := map[string]interface{}{
		"choices": []map[string]interface{}{
			{"message": map[string]string{"role": "assistant", "content": content}},
		},
	}
	data, _ := json.Marshal(resp)
	return data
}

func TestEvaluateAssignmentParsesResponse(t *testing.T) {
	svc, _ := newStubAIService(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/chat/completions" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		if got := r.Header.Get("Authorization"); got != "Bearer test-key" {
			t.Errorf("unexpected auth header %q", got)
		}
		w.Write(completionResponse(`{"rating":"7.5","feedback":"good","strengths":["flow"],"weaknesses":[],"suggestions":[],"improved_version":"better text"}`))
	})

	feedback, err := svc.EvaluateAssignment("some essay content")
	if err != nil {
		t.Fatal(err)
	}
	if feedback.Rating != "7.5" {
		t.Fatalf("expected rating 7.5, got %s", feedback.Rating)
	}
	if feedback.ImprovedVersion != "better text" {
		t.Fatalf("unexpected improved version: %s", feedback.ImprovedVersion)
	}
}

func TestEvaluateAssignmentUpstreamError(t *testing.T) {
	svc, _ := newStubAIService(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
		w.Write([]byte(`{"error":{"message":"rate limited"}}`))
	})

	if _, err := svc.EvaluateAssignment("content"); err == nil {
		t.Fatal("expected error on upstream failure")
	}
}

func TestGenerateBlogFallbackOnBadJSON(t *testing.T) {
	svc, _ := newStubAIService(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write(completionResponse("Just a plain text blog about trees without any structure"))
	})

	blog, err := svc.GenerateBlog(BlogGenerationRequest{Topic: "trees"})
	if err != nil {
		t.Fatal(err)
	}
	if blog.Title != "Generated Blog" {
		t.Fatalf("expected fallback title, got %s", blog.Title)
	}
	if blog.Content != "Just a plain text blog about trees without any structure" {
		t.Fatalf("expected raw reply as content, got %s", blog.Content)
	}
	if blog.WordCount != 10 {
		t.Fatalf("expected word count 10, got %d", blog.WordCount)
	}
}

func TestCheckToxicityDegradesOnError(t *testing.T) {
	svc, _ := newStubAIService(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	})

	result := svc.CheckToxicity("some comment")
	if result.IsToxic || result.IsSpam || result.ToxicityScore != 0 {
		t.Fatalf("expected zero-value result on upstream failure, got %#v", result)
	}
}

func TestChatStreamParsesSSE(t *testing.T) {
	svc, _ := newStubAIService(t, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/event-stream")
		w.Write([]byte("data: {\"choices\":[{\"delta\":{\"content\":\"Hello\"}}]}\n\n"))
		w.Write([]byte("data: {\"choices\":[{\"delta\":{\"content\":\" world\"}}]}\n\n"))
		w.Write([]byte("data: [DONE]\n\n"))
	})

	chunks, errChan := svc.ChatStream([]AIChatMessage{{Role: "user", Content: "hi"}})

	var got string
	for chunk := range chunks {
		got += chunk
	}
	if err := <-errChan; err != nil {
		t.Fatal(err)
	}
	if got != "Hello world" {
		t.Fatalf("expected 'Hello world', got %q", got)
	}
}
