package service

import (
	"bytes"
	"context"
	"essayeval_backend/internal/analysis"
	"essayeval_backend/internal/model"
	"essayeval_backend/internal/repository"
	"essayeval_backend/internal/util"
	"essayeval_backend/pkg/logger"
	"fmt"
	"strconv"
	"time"

	"go.uber.org/zap"
)

// 低于该长度的文本没有评测价值
const minEvaluableChars = 50

// EvaluationService 作业评测全流程：提取文本 -> 规则分析 -> AI评测 -> 落库 -> 积分结算
type EvaluationService struct {
	AssignmentRepo *repository.AssignmentRepository
	Analyzer       *analysis.Analyzer
	AI             *AIService
	Storage        *StorageService
	Gamification   *GamificationService
}

func NewEvaluationService(
	assignmentRepo *repository.AssignmentRepository,
	analyzer *analysis.Analyzer,
	ai *AIService,
	storage *StorageService,
	gamificationService *GamificationService,
) *EvaluationService {
	return &EvaluationService{
		AssignmentRepo: assignmentRepo,
		Analyzer:       analyzer,
		AI:             ai,
		Storage:        storage,
		Gamification:   gamificationService,
	}
}

// EvaluationResult 评测接口的组合返回
type EvaluationResult struct {
	AssignmentID    uint                           `json:"assignmentId"`
	FileName        string                         `json:"fileName"`
	FileURL         string                         `json:"fileURL,omitempty"`
	Score           float64                        `json:"score"`
	TextStats       model.TextStats                `json:"textStats"`
	Feedback        model.DetailedFeedback         `json:"feedback"`
	ContentAnalysis analysis.ContentAnalysisResult `json:"contentAnalysis"`
	Gamification    *AwardResult                   `json:"gamification,omitempty"`
}

// EvaluateUpload 上传文件并评测
func (s *EvaluationService) EvaluateUpload(ctx context.Context, userID uint, fileName string, content []byte) (*EvaluationResult, error) {
	objectKey := fmt.Sprintf("assignments/%d/%d_%s", userID, time.Now().UnixNano(), fileName)
	fileURL, err := s.Storage.Upload(ctx, objectKey, bytes.NewReader(content), int64(len(content)), "application/octet-stream")
	if err != nil {
		return nil, fmt.Errorf("upload failed: %w", err)
	}

	assignment := &model.Assignment{
		UserID:           userID,
		FileName:         fileName,
		FileURL:          fileURL,
		StorageObjectKey: objectKey,
		Status:           model.AssignmentProcessing,
	}
	if err := s.AssignmentRepo.Create(assignment); err != nil {
		return nil, err
	}

	text, err := util.ExtractText(fileName, content)
	if err != nil {
		assignment.Status = model.AssignmentFailed
		s.AssignmentRepo.Update(assignment)
		logger.Log.Warn("text extraction failed",
			zap.Uint("assignmentId", assignment.ID), zap.Error(err))
		return nil, fmt.Errorf("failed to extract text from file: %w", err)
	}

	return s.evaluate(assignment, text)
}

// EvaluateText 直接评测文本，不经过文件上传
func (s *EvaluationService) EvaluateText(userID uint, title, text string) (*EvaluationResult, error) {
	if title == "" {
		title = "Text Evaluation"
	}

	assignment := &model.Assignment{
		UserID:   userID,
		FileName: title,
		Status:   model.AssignmentProcessing,
	}
	if err := s.AssignmentRepo.Create(assignment); err != nil {
		return nil, err
	}

	return s.evaluate(assignment, text)
}

func (s *EvaluationService) evaluate(assignment *model.Assignment, rawText string) (*EvaluationResult, error) {
	cleaned := util.CleanText(rawText)
	if len(cleaned) < minEvaluableChars {
		assignment.Status = model.AssignmentFailed
		s.AssignmentRepo.Update(assignment)
		return nil, util.ErrTextTooShort
	}

	stats := util.GetTextStats(cleaned)
	contentAnalysis := s.Analyzer.AnalyzeContent(cleaned)

	aiFeedback, err := s.AI.EvaluateAssignment(cleaned)
	if err != nil {
		assignment.Status = model.AssignmentFailed
		s.AssignmentRepo.Update(assignment)
		return nil, err
	}

	score, _ := strconv.ParseFloat(aiFeedback.Rating, 64)
	if score < 0 {
		score = 0
	}
	if score > 10 {
		score = 10
	}

	// 只存前10000字符，完整原文没有查询价值
	stored := cleaned
	if len(stored) > 10000 {
		stored = stored[:10000]
	}

	now := time.Now()
	assignment.ExtractedText = stored
	assignment.TextStats = stats
	assignment.Score = score
	assignment.DetailedFeedback = model.DetailedFeedback{
		Rating:          aiFeedback.Rating,
		Feedback:        aiFeedback.Feedback,
		Strengths:       aiFeedback.Strengths,
		Weaknesses:      aiFeedback.Weaknesses,
		Suggestions:     aiFeedback.Suggestions,
		ImprovedVersion: aiFeedback.ImprovedVersion,
	}
	assignment.PlagiarismAnalysis = model.PlagiarismAnalysis{
		AILikelihood:         contentAnalysis.AIDetection.AILikelihood,
		PatternsFound:        contentAnalysis.AIDetection.PatternsFound,
		PlagiarismRisk:       contentAnalysis.PlagiarismIndicators.PlagiarismRisk,
		RepetitionPercentage: contentAnalysis.PlagiarismIndicators.RepetitionPercentage,
	}
	assignment.Status = model.AssignmentCompleted
	assignment.EvaluatedAt = &now

	if err := s.AssignmentRepo.Update(assignment); err != nil {
		return nil, err
	}

	// 评测已落库后再结算积分；结算失败不回滚评测结果
	award, err := s.Gamification.RecordEvaluation(assignment.UserID, score)
	if err != nil {
		logger.Log.Error("gamification settlement failed",
			zap.Uint("userId", assignment.UserID), zap.Error(err))
	}

	return &EvaluationResult{
		AssignmentID:    assignment.ID,
		FileName:        assignment.FileName,
		FileURL:         assignment.FileURL,
		Score:           score,
		TextStats:       stats,
		Feedback:        assignment.DetailedFeedback,
		ContentAnalysis: contentAnalysis,
		Gamification:    award,
	}, nil
}

// AnalyzeOnly 只跑规则分析，不调AI也不计分
func (s *EvaluationService) AnalyzeOnly(text string) analysis.ContentAnalysisResult {
	return s.Analyzer.AnalyzeContent(util.CleanText(text))
}

func (s *EvaluationService) GetAssignment(userID, id uint) (*model.Assignment, error) {
	return s.AssignmentRepo.FindByIDAndUserID(id, userID)
}

func (s *EvaluationService) ListAssignments(userID uint, status model.AssignmentStatus, page, limit int) ([]model.Assignment, int64, error) {
	return s.AssignmentRepo.FindByUserID(userID, status, page, limit)
}

func (s *EvaluationService) DeleteAssignment(ctx context.Context, userID, id uint) error {
	assignment, err := s.AssignmentRepo.FindByIDAndUserID(id, userID)
	if err != nil {
		return util.ErrAssignmentNotFound
	}

	if assignment.StorageObjectKey != "" {
		if err := s.Storage.Delete(ctx, assignment.StorageObjectKey); err != nil {
			logger.Log.Warn("failed to delete stored file",
				zap.String("objectKey", assignment.StorageObjectKey), zap.Error(err))
		}
	}

	affected, err := s.AssignmentRepo.DeleteByIDAndUserID(id, userID)
	if err != nil {
		return err
	}
	if affected == 0 {
		return util.ErrAssignmentNotFound
	}
	return nil
}
