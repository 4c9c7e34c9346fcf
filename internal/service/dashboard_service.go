package service

import (
	"essayeval_backend/internal/model"
	"essayeval_backend/internal/repository"
	"essayeval_backend/internal/util"
	"time"
)

// DashboardService 个人主页聚合数据
type DashboardService struct {
	UserRepo       *repository.UserRepository
	AssignmentRepo *repository.AssignmentRepository
	BlogRepo       *repository.BlogRepository
	AI             *AIService
}

func NewDashboardService(
	userRepo *repository.UserRepository,
	assignmentRepo *repository.AssignmentRepository,
	blogRepo *repository.BlogRepository,
	ai *AIService,
) *DashboardService {
	return &DashboardService{
		UserRepo:       userRepo,
		AssignmentRepo: assignmentRepo,
		BlogRepo:       blogRepo,
		AI:             ai,
	}
}

// Dashboard 首页概览
type Dashboard struct {
	User              *model.User        `json:"user"`
	RecentAssignments []model.Assignment `json:"recentAssignments"`
	RecentBlogs       []model.Blog       `json:"recentBlogs"`
	TotalAssignments  int64              `json:"totalAssignments"`
	CompletedCount    int64              `json:"completedCount"`
	PublishedBlogs    int64              `json:"publishedBlogs"`
}

func (s *DashboardService) GetDashboard(userID uint) (*Dashboard, error) {
	user, err := s.UserRepo.FindByID(userID)
	if err != nil {
		return nil, util.ErrUserNotFound
	}

	recentAssignments, err := s.AssignmentRepo.FindRecentCompleted(userID, 5)
	if err != nil {
		return nil, err
	}
	recentBlogs, err := s.BlogRepo.FindRecentByUserID(userID, 5)
	if err != nil {
		return nil, err
	}
	total, err := s.AssignmentRepo.CountByUserID(userID)
	if err != nil {
		return nil, err
	}
	completed, err := s.AssignmentRepo.CountByUserIDAndStatus(userID, model.AssignmentCompleted)
	if err != nil {
		return nil, err
	}
	published, err := s.BlogRepo.CountByUserIDAndStatus(userID, model.BlogPublished)
	if err != nil {
		return nil, err
	}

	return &Dashboard{
		User:              user,
		RecentAssignments: recentAssignments,
		RecentBlogs:       recentBlogs,
		TotalAssignments:  total,
		CompletedCount:    completed,
		PublishedBlogs:    published,
	}, nil
}

func (s *DashboardService) ScoreDistribution(userID uint) ([]repository.ScoreBucket, error) {
	return s.AssignmentRepo.ScoreDistribution(userID)
}

// Progress 最近days天的每日成绩走势
func (s *DashboardService) Progress(userID uint, days int) ([]repository.DailyProgress, error) {
	if days <= 0 || days > 365 {
		days = 30
	}
	since := time.Now().AddDate(0, 0, -days)
	return s.AssignmentRepo.ProgressSince(userID, since)
}

// Recommendations 基于最近10次已完成评测生成学习建议
func (s *DashboardService) Recommendations(userID uint) (*LearningRecommendations, error) {
	assignments, err := s.AssignmentRepo.FindRecentCompleted(userID, 10)
	if err != nil {
		return nil, err
	}
	if len(assignments) == 0 {
		return nil, util.ErrAssignmentNotFound
	}

	history := make([]EvaluationSummary, 0, len(assignments))
	for _, a := range assignments {
		history = append(history, EvaluationSummary{
			Score:        a.Score,
			Strengths:    a.DetailedFeedback.Strengths,
			Weaknesses:   a.DetailedFeedback.Weaknesses,
			AILikelihood: a.PlagiarismAnalysis.AILikelihood,
		})
	}
	return s.AI.GetLearningRecommendations(history)
}
