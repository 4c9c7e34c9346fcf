package service

import (
	"essayeval_backend/internal/gamification"
	"essayeval_backend/internal/model"
	"essayeval_backend/internal/repository"
	"essayeval_backend/pkg/logger"
	"time"

	"go.uber.org/zap"
	"gorm.io/gorm"
)

// 积分策略常量，属于业务流程而非状态机本身
const (
	EvaluationBasePoints = 10 // 每次评测基础分，另加floor(score)
	BlogPublishPoints    = 20 // 每次发布博客
)

// GamificationService 负责积分结算的持久化与并发控制。
// 同一用户的结算通过行锁串行化，保证徽章至多发一次、
// 平均分按正确顺序累积。
type GamificationService struct {
	UserRepo *repository.UserRepository
	DB       *gorm.DB
}

func NewGamificationService(userRepo *repository.UserRepository, db *gorm.DB) *GamificationService {
	return &GamificationService{UserRepo: userRepo, DB: db}
}

// AwardResult 一次结算的对外展示数据
type AwardResult struct {
	PointsEarned int           `json:"pointsEarned"`
	TotalPoints  int           `json:"totalPoints"`
	Level        int           `json:"level"`
	NewBadges    []model.Badge `json:"newBadges"`
}

// RecordEvaluation 结算一次作业评测：更新统计、加分、发徽章。
// 整个读改写在一个带行锁的事务内完成。
func (s *GamificationService) RecordEvaluation(userID uint, score float64) (*AwardResult, error) {
	points := EvaluationBasePoints + int(score)
	return s.settle(userID, points, "Assignment evaluation", func(user *model.User) {
		user.TotalAssignmentsEvaluated++
		user.AverageScore = gamification.RunningAverage(user.AverageScore, user.TotalAssignmentsEvaluated, score)
	})
}

// RecordBlogPublished 结算一次博客发布
func (s *GamificationService) RecordBlogPublished(userID uint) (*AwardResult, error) {
	return s.settle(userID, BlogPublishPoints, "Blog published", func(user *model.User) {
		user.TotalBlogsPublished++
	})
}

// settle 在行锁事务内执行：计数器更新 -> 纯状态机 -> 落库
func (s *GamificationService) settle(userID uint, points int, reason string, updateCounters func(*model.User)) (*AwardResult, error) {
	var result *AwardResult

	err := s.DB.Transaction(func(tx *gorm.DB) error {
		user, err := s.UserRepo.FindByIDForUpdate(tx, userID)
		if err != nil {
			return err
		}

		updateCounters(user)

		owned := make(map[string]bool, len(user.Badges))
		for _, b := range user.Badges {
			owned[b.Name] = true
		}

		outcome, err := gamification.Apply(gamification.State{
			Points:                    user.Points,
			OwnedBadges:               owned,
			TotalAssignmentsEvaluated: user.TotalAssignmentsEvaluated,
			TotalBlogsPublished:       user.TotalBlogsPublished,
			AverageScore:              user.AverageScore,
		}, gamification.Event{PointsToAdd: points, Reason: reason})
		if err != nil {
			return err
		}

		user.Points = outcome.Points
		user.Level = outcome.Level

		newBadges := make([]model.Badge, 0, len(outcome.NewBadges))
		for _, grant := range outcome.NewBadges {
			badge := model.Badge{
				UserID:      user.ID,
				Name:        grant.Name,
				Description: grant.Description,
				Icon:        grant.Icon,
				EarnedAt:    time.Now(),
			}
			if err := tx.Create(&badge).Error; err != nil {
				return err
			}
			newBadges = append(newBadges, badge)
		}

		if err := tx.Omit("Badges").Save(user).Error; err != nil {
			return err
		}

		result = &AwardResult{
			PointsEarned: points,
			TotalPoints:  user.Points,
			Level:        user.Level,
			NewBadges:    newBadges,
		}
		return nil
	})

	if err != nil {
		return nil, err
	}

	logger.Log.Info("points awarded",
		zap.Uint("userId", userID),
		zap.Int("points", result.PointsEarned),
		zap.String("reason", reason),
		zap.Int("newBadges", len(result.NewBadges)),
	)

	return result, nil
}
