package model

import "time"

type AssignmentStatus string

const (
	AssignmentPending    AssignmentStatus = "pending"
	AssignmentProcessing AssignmentStatus = "processing"
	AssignmentCompleted  AssignmentStatus = "completed"
	AssignmentFailed     AssignmentStatus = "failed"
)

// TextStats 文本基本统计
type TextStats struct {
	WordCount      int `json:"wordCount"`
	CharacterCount int `json:"characterCount"`
	SentenceCount  int `json:"sentenceCount"`
	ParagraphCount int `json:"paragraphCount"`
}

// DetailedFeedback AI评测返回的结构化反馈
type DetailedFeedback struct {
	Rating          string   `json:"rating"`
	Feedback        string   `json:"feedback"`
	Strengths       []string `json:"strengths"`
	Weaknesses      []string `json:"weaknesses"`
	Suggestions     []string `json:"suggestions"`
	ImprovedVersion string   `json:"improvedVersion"`
}

// PlagiarismAnalysis 规则分析结果的持久化摘要
type PlagiarismAnalysis struct {
	AILikelihood         string   `json:"aiLikelihood"`
	PatternsFound        []string `json:"patternsFound"`
	PlagiarismRisk       string   `json:"plagiarismRisk"`
	RepetitionPercentage string   `json:"repetitionPercentage"`
}

// swagger:model Assignment
type Assignment struct {
	BaseModel
	UserID             uint               `gorm:"index:idx_assignment_user_date;not null" json:"userId"`
	FileName           string             `gorm:"size:255;not null" json:"fileName"`
	FileURL            string             `gorm:"size:512" json:"fileURL"`
	StorageObjectKey   string             `gorm:"size:255" json:"-"`
	ExtractedText      string             `gorm:"type:mediumtext" json:"extractedText,omitempty"`
	TextStats          TextStats          `gorm:"embedded;embeddedPrefix:stats_" json:"textStats"`
	Score              float64            `gorm:"default:0" json:"score"` // 0-10
	DetailedFeedback   DetailedFeedback   `gorm:"serializer:json" json:"detailedFeedback"`
	PlagiarismAnalysis PlagiarismAnalysis `gorm:"serializer:json" json:"plagiarismAnalysis"`
	Status             AssignmentStatus   `gorm:"size:20;default:'pending';index" json:"status"`
	UploadDate         time.Time          `gorm:"index:idx_assignment_user_date" json:"uploadDate"`
	EvaluatedAt        *time.Time         `json:"evaluatedAt,omitempty"`
}

func (Assignment) TableName() string {
	return "assignments"
}
