package service

import (
	"bufio"
	"bytes"
	"encoding/json"
	"essayeval_backend/internal/config"
	"essayeval_backend/internal/model"
	"essayeval_backend/pkg/monitoring"
	"fmt"
	"io"
	"net/http"
	"regexp"
	"strings"
	"time"
)

// AIService 封装Groq等OpenAI兼容的chat/completions接口
type AIService struct {
	config config.AIConfig
	client *http.Client
}

func NewAIService(cfg config.AIConfig) *AIService {
	return &AIService{
		config: cfg,
		client: &http.Client{Timeout: 120 * time.Second},
	}
}

type AIChatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type ChatCompletionRequest struct {
	Model       string          `json:"model"`
	Messages    []AIChatMessage `json:"messages"`
	Temperature float64         `json:"temperature,omitempty"`
	MaxTokens   int             `json:"max_tokens,omitempty"`
}

type ChatCompletionResponse struct {
	Choices []struct {
		Message AIChatMessage `json:"message"`
		Delta   AIChatMessage `json:"delta"` // 流式响应
	} `json:"choices"`
	Error *struct {
		Message string `json:"message"`
	} `json:"error,omitempty"`
}

// AIFeedback 评测类接口约定的结构化回复
type AIFeedback struct {
	Rating          string   `json:"rating"`
	Feedback        string   `json:"feedback"`
	Strengths       []string `json:"strengths"`
	Weaknesses      []string `json:"weaknesses"`
	Suggestions     []string `json:"suggestions"`
	ImprovedVersion string   `json:"improved_version"`
}

// GeneratedBlog AI生成博客的回复结构
type GeneratedBlog struct {
	Title            string   `json:"title"`
	Content          string   `json:"content"`
	MetaTitle        string   `json:"metaTitle"`
	MetaDescription  string   `json:"metaDescription"`
	Tags             []string `json:"tags"`
	ReadabilityGrade string   `json:"readabilityGrade"`
	Citations        []string `json:"citations"`
	WordCount        int      `json:"wordCount"`
}

// BlogGenerationRequest 生成参数
type BlogGenerationRequest struct {
	Topic    string   `json:"topic" binding:"required"`
	Keywords []string `json:"keywords"`
	Audience string   `json:"audience"`
	Length   int      `json:"length"`
	Tone     string   `json:"tone"`
}

// LearningRecommendations AI学习建议
type LearningRecommendations struct {
	WeakAreas           []string            `json:"weakAreas"`
	StrongAreas         []string            `json:"strongAreas"`
	RecommendedBooks    []map[string]string `json:"recommendedBooks"`
	RecommendedChannels []map[string]string `json:"recommendedChannels"`
	WritingCourses      []map[string]string `json:"writingCourses"`
	ToneAdaptationTips  []string            `json:"toneAdaptationTips"`
	PracticeExercises   []string            `json:"practiceExercises"`
	OverallAdvice       string              `json:"overallAdvice"`
}

// EvaluationSummary 喂给推荐接口的历史摘要
type EvaluationSummary struct {
	Score        float64  `json:"score"`
	Strengths    []string `json:"strengths"`
	Weaknesses   []string `json:"weaknesses"`
	AILikelihood string   `json:"aiLikelihood"`
}

const responseFormat = `
You MUST respond ONLY with valid JSON in this exact format:
{
  "rating": "number from 0-10",
  "feedback": "detailed overall feedback",
  "strengths": ["strength1", "strength2", ...],
  "weaknesses": ["weakness1", "weakness2", ...],
  "suggestions": ["suggestion1", "suggestion2", ...],
  "improved_version": "improved/corrected version of the content"
}
Do not include any text outside the JSON object.
`

// 评测输入上限，防止超出上游token限制
const maxEvaluationChars = 20000

func (s *AIService) complete(operation string, messages []AIChatMessage, temperature float64, maxTokens int) (string, error) {
	start := time.Now()
	content, err := s.doComplete(messages, temperature, maxTokens)
	monitoring.ObserveAICall(operation, start, err)
	return content, err
}

func (s *AIService) doComplete(messages []AIChatMessage, temperature float64, maxTokens int) (string, error) {
	reqBody := ChatCompletionRequest{
		Model:       s.config.Model,
		Messages:    messages,
		Temperature: temperature,
		MaxTokens:   maxTokens,
	}

	jsonData, err := json.Marshal(reqBody)
	if err != nil {
		return "", err
	}

	req, err := http.NewRequest("POST", s.config.BaseURL+"/chat/completions", bytes.NewBuffer(jsonData))
	if err != nil {
		return "", err
	}

	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+s.config.APIKey)

	resp, err := s.client.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	body, _ := io.ReadAll(resp.Body)
	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("AI API error (status %d): %s", resp.StatusCode, string(body))
	}

	var result ChatCompletionResponse
	if err := json.Unmarshal(body, &result); err != nil {
		return "", err
	}

	if result.Error != nil {
		return "", fmt.Errorf("AI API error: %s", result.Error.Message)
	}

	if len(result.Choices) == 0 {
		return "", fmt.Errorf("AI returned no choices")
	}

	return result.Choices[0].Message.Content, nil
}

var jsonBlock = regexp.MustCompile(`(?s)\{.*\}`)

// ExtractJSON 从可能带说明文字的回复中抠出JSON对象并反序列化
func ExtractJSON(text string, v interface{}) error {
	if err := json.Unmarshal([]byte(text), v); err == nil {
		return nil
	}
	match := jsonBlock.FindString(text)
	if match == "" {
		return fmt.Errorf("no JSON object found in AI response")
	}
	return json.Unmarshal([]byte(match), v)
}

// EvaluateAssignment 对作业全文做评测，返回结构化反馈
func (s *AIService) EvaluateAssignment(content string) (*AIFeedback, error) {
	truncated := content
	if len(truncated) > maxEvaluationChars {
		truncated = truncated[:maxEvaluationChars] + "\n\n[Content truncated for evaluation...]"
	}

	prompt := fmt.Sprintf(`
You are an expert academic evaluator. Analyze the following assignment/document and provide a comprehensive evaluation.

CONTENT TO EVALUATE:
"""
%s
"""

EVALUATION CRITERIA:
- Grammar and Language Quality (spelling, punctuation, sentence structure)
- Structure and Organization (logical flow, headings, paragraphs)
- Content Strength (depth of analysis, evidence, arguments)
- Tone and Style (appropriate academic tone, consistency)
- Plagiarism Likelihood (originality indicators, generic phrases)
- Completeness (coverage of topic, conclusion presence)

%s

Be specific, accurate, and constructive. Do not hallucinate facts. Base your evaluation only on what is present in the content.
`, truncated, responseFormat)

	raw, err := s.complete("evaluate_assignment", []AIChatMessage{{Role: "user", Content: prompt}}, 0.3, 4000)
	if err != nil {
		return nil, err
	}

	var feedback AIFeedback
	if err := ExtractJSON(raw, &feedback); err != nil {
		return nil, fmt.Errorf("invalid response format from AI: %w", err)
	}
	return &feedback, nil
}

// QuickFeedback 对短文本给出即时写作反馈
func (s *AIService) QuickFeedback(text string) (*AIFeedback, error) {
	prompt := fmt.Sprintf(`
You are a helpful writing assistant. Analyze the following text and provide immediate, constructive feedback.

TEXT TO ANALYZE:
"""
%s
"""

Evaluate for:
- Grammar and spelling errors
- Clarity and readability
- Tone appropriateness
- Suggested improvements

%s

Provide a corrected/improved version in the "improved_version" field.
`, text, responseFormat)

	raw, err := s.complete("quick_feedback", []AIChatMessage{{Role: "user", Content: prompt}}, 0.3, 3000)
	if err != nil {
		return nil, err
	}

	var feedback AIFeedback
	if err := ExtractJSON(raw, &feedback); err != nil {
		return nil, fmt.Errorf("invalid response format from AI: %w", err)
	}
	return &feedback, nil
}

// GenerateBlog 按参数生成博客。上游偶尔返回坏JSON，
// 抠不出结构时退化为把原始回复当正文。
func (s *AIService) GenerateBlog(req BlogGenerationRequest) (*GeneratedBlog, error) {
	keywords := "general"
	if len(req.Keywords) > 0 {
		keywords = strings.Join(req.Keywords, ", ")
	}
	audience := req.Audience
	if audience == "" {
		audience = "general readers"
	}
	length := req.Length
	if length == 0 {
		length = 500
	}
	tone := req.Tone
	if tone == "" {
		tone = "informational"
	}

	prompt := fmt.Sprintf(`
You are an expert content writer and SEO specialist. Generate a high-quality blog post/essay based on the following specifications:

TOPIC: %s
KEYWORDS: %s
TARGET AUDIENCE: %s
REQUIRED LENGTH: approximately %d words
TONE: %s

Generate a complete blog post with:
1. An engaging title
2. Proper headings and subheadings (use markdown format)
3. Well-structured paragraphs
4. SEO-friendly meta title and description
5. Suggested tags
6. Readability grade (Flesch-Kincaid)
7. Citation recommendations if applicable

Respond in this JSON format:
{
  "title": "SEO-friendly blog title",
  "content": "Full blog content with markdown formatting",
  "metaTitle": "SEO meta title (max 60 chars)",
  "metaDescription": "SEO meta description (max 160 chars)",
  "tags": ["tag1", "tag2", ...],
  "readabilityGrade": "grade level",
  "citations": ["citation1", "citation2", ...] or [],
  "wordCount": number
}

Ensure the content is original, engaging, and valuable to the reader.
`, req.Topic, keywords, audience, length, tone)

	raw, err := s.complete("generate_blog", []AIChatMessage{{Role: "user", Content: prompt}}, 0.7, 4000)
	if err != nil {
		return nil, err
	}

	var blog GeneratedBlog
	if err := ExtractJSON(raw, &blog); err != nil {
		return &GeneratedBlog{
			Title:            "Generated Blog",
			Content:          raw,
			MetaTitle:        "Blog Post",
			MetaDescription:  "AI generated content",
			Tags:             []string{},
			ReadabilityGrade: "N/A",
			Citations:        []string{},
			WordCount:        len(strings.Fields(raw)),
		}, nil
	}
	return &blog, nil
}

// ReviewBlog 发布前审阅博客
func (s *AIService) ReviewBlog(content string) (*AIFeedback, error) {
	prompt := fmt.Sprintf(`
You are a professional editor and content reviewer. Review the following blog/essay for quality and provide detailed feedback.

CONTENT TO REVIEW:
"""
%s
"""

Analyze for:
- Writing quality and grammar
- SEO optimization potential
- Engagement and readability
- Plagiarism indicators (generic AI-generated patterns)
- Content originality
- Suggested enhancements

%s

In "improved_version", provide the enhanced version of the content.
`, content, responseFormat)

	raw, err := s.complete("review_blog", []AIChatMessage{{Role: "user", Content: prompt}}, 0.3, 4000)
	if err != nil {
		return nil, err
	}

	var feedback AIFeedback
	if err := ExtractJSON(raw, &feedback); err != nil {
		return nil, fmt.Errorf("invalid response format from AI: %w", err)
	}
	return &feedback, nil
}

// CheckToxicity 检测评论毒性。上游失败时按无毒处理，
// 不因审核接口故障阻断正常评论流程。
func (s *AIService) CheckToxicity(text string) model.ToxicityAnalysis {
	prompt := fmt.Sprintf(`
Analyze the following comment for toxicity, hate speech, spam, or inappropriate content.

COMMENT:
"""
%s
"""

Respond in this JSON format:
{
  "isToxic": boolean,
  "isSpam": boolean,
  "isHateSpeech": boolean,
  "toxicityScore": number from 0-1,
  "categories": ["category1", ...] or [],
  "reason": "explanation if flagged"
}
`, text)

	raw, err := s.complete("check_toxicity", []AIChatMessage{{Role: "user", Content: prompt}}, 0.1, 500)
	if err != nil {
		return model.ToxicityAnalysis{}
	}

	var result model.ToxicityAnalysis
	if err := ExtractJSON(raw, &result); err != nil {
		return model.ToxicityAnalysis{}
	}
	return result
}

// GetLearningRecommendations 基于评测历史生成个性化学习建议
func (s *AIService) GetLearningRecommendations(history []EvaluationSummary) (*LearningRecommendations, error) {
	historyJSON, err := json.MarshalIndent(history, "", "  ")
	if err != nil {
		return nil, err
	}

	prompt := fmt.Sprintf(`
Based on the following evaluation history of a student's writing, provide personalized learning recommendations.

EVALUATION HISTORY:
%s

Provide recommendations in this JSON format:
{
  "weakAreas": ["area1", "area2", ...],
  "strongAreas": ["area1", "area2", ...],
  "recommendedBooks": [{"title": "", "author": "", "reason": ""}],
  "recommendedChannels": [{"name": "", "platform": "", "link": "", "reason": ""}],
  "writingCourses": [{"name": "", "platform": "", "reason": ""}],
  "toneAdaptationTips": ["tip1", "tip2", ...],
  "practiceExercises": ["exercise1", "exercise2", ...],
  "overallAdvice": "personalized advice string"
}
`, string(historyJSON))

	raw, err := s.complete("learning_recommendations", []AIChatMessage{{Role: "user", Content: prompt}}, 0.5, 2000)
	if err != nil {
		return nil, err
	}

	var recs LearningRecommendations
	if err := ExtractJSON(raw, &recs); err != nil {
		return nil, fmt.Errorf("invalid response format from AI: %w", err)
	}
	return &recs, nil
}

const chatSystemPrompt = `You are an expert writing assistant for an AI assignment evaluation platform.
Help users improve their writing, answer questions about grammar, structure, and academic writing.
Always be constructive and educational. When providing feedback, use the standard JSON format when appropriate.` + responseFormat

// Chat 多轮写作助手对话
func (s *AIService) Chat(history []AIChatMessage) (string, error) {
	messages := append([]AIChatMessage{{Role: "system", Content: chatSystemPrompt}}, history...)
	return s.complete("chat", messages, 0.5, 2000)
}

// ChatStream 流式对话，返回内容分片channel
func (s *AIService) ChatStream(history []AIChatMessage) (<-chan string, <-chan error) {
	out := make(chan string)
	errChan := make(chan error, 1)

	messages := append([]AIChatMessage{{Role: "system", Content: chatSystemPrompt}}, history...)

	reqBody := map[string]interface{}{
		"model":    s.config.Model,
		"messages": messages,
		"stream":   true,
	}

	jsonData, _ := json.Marshal(reqBody)

	go func() {
		defer close(out)
		defer close(errChan)

		req, err := http.NewRequest("POST", s.config.BaseURL+"/chat/completions", bytes.NewBuffer(jsonData))
		if err != nil {
			errChan <- err
			return
		}

		req.Header.Set("Content-Type", "application/json")
		req.Header.Set("Authorization", "Bearer "+s.config.APIKey)

		resp, err := s.client.Do(req)
		if err != nil {
			errChan <- err
			return
		}
		defer resp.Body.Close()

		if resp.StatusCode != http.StatusOK {
			body, _ := io.ReadAll(resp.Body)
			errChan <- fmt.Errorf("AI API error (status %d): %s", resp.StatusCode, string(body))
			return
		}

		reader := bufio.NewReader(resp.Body)
		for {
			line, err := reader.ReadString('\n')
			if err != nil {
				if err != io.EOF {
					errChan <- err
				}
				break
			}

			line = strings.TrimSpace(line)
			if line == "" || !strings.HasPrefix(line, "data: ") {
				continue
			}

			data := strings.TrimPrefix(line, "data: ")
			if data == "[DONE]" {
				break
			}

			var streamResp ChatCompletionResponse
			if err := json.Unmarshal([]byte(data), &streamResp); err != nil {
				continue
			}

			if len(streamResp.Choices) > 0 {
				content := streamResp.Choices[0].Delta.Content
				if content != "" {
					out <- content
				}
			}
		}
	}()

	return out, errChan
}
