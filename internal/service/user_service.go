package service

import (
	"essayeval_backend/internal/gamification"
	"essayeval_backend/internal/model"
	"essayeval_backend/internal/repository"
	"essayeval_backend/internal/util"
)

// UserService 用户资料与统计
type UserService struct {
	UserRepo       *repository.UserRepository
	AssignmentRepo *repository.AssignmentRepository
	BlogRepo       *repository.BlogRepository
}

func NewUserService(
	userRepo *repository.UserRepository,
	assignmentRepo *repository.AssignmentRepository,
	blogRepo *repository.BlogRepository,
) *UserService {
	return &UserService{
		UserRepo:       userRepo,
		AssignmentRepo: assignmentRepo,
		BlogRepo:       blogRepo,
	}
}

func (s *UserService) GetProfile(userID uint) (*model.User, error) {
	user, err := s.UserRepo.FindByID(userID)
	if err != nil {
		return nil, util.ErrUserNotFound
	}
	return user, nil
}

type ProfileUpdateRequest struct {
	Name               string                 `json:"name"`
	Avatar             *string                `json:"avatar"`
	Bio                *string                `json:"bio"`
	Theme              *model.ThemePreference `json:"theme"`
	EmailNotifications *bool                  `json:"emailNotifications"`
}

func (s *UserService) UpdateProfile(userID uint, req ProfileUpdateRequest) (*model.User, error) {
	user, err := s.UserRepo.FindByID(userID)
	if err != nil {
		return nil, util.ErrUserNotFound
	}

	if req.Name != "" {
		user.Name = req.Name
	}
	if req.Avatar != nil {
		user.Avatar = *req.Avatar
	}
	if req.Bio != nil {
		user.Bio = *req.Bio
	}
	if req.Theme != nil {
		user.Theme = *req.Theme
	}
	if req.EmailNotifications != nil {
		user.EmailNotifications = *req.EmailNotifications
	}

	if err := s.UserRepo.Update(user); err != nil {
		return nil, err
	}
	return user, nil
}

// UserStats 个人统计面板
type UserStats struct {
	Points                    int           `json:"points"`
	Level                     int           `json:"level"`
	PointsToNextLevel         int           `json:"pointsToNextLevel"`
	ProgressToNextLevel       float64       `json:"progressToNextLevel"` // 0-100
	Badges                    []model.Badge `json:"badges"`
	TotalAssignmentsEvaluated int           `json:"totalAssignmentsEvaluated"`
	TotalBlogsPublished       int           `json:"totalBlogsPublished"`
	AverageScore              float64       `json:"averageScore"`
	TotalBlogLikes            int64         `json:"totalBlogLikes"`
}

func (s *UserService) GetStats(userID uint) (*UserStats, error) {
	user, err := s.UserRepo.FindByID(userID)
	if err != nil {
		return nil, util.ErrUserNotFound
	}

	totalLikes, err := s.BlogRepo.TotalLikesByUserID(userID)
	if err != nil {
		return nil, err
	}

	withinLevel := user.Points % gamification.PointsPerLevel
	return &UserStats{
		Points:                    user.Points,
		Level:                     user.Level,
		PointsToNextLevel:         gamification.PointsPerLevel - withinLevel,
		ProgressToNextLevel:       float64(withinLevel) / float64(gamification.PointsPerLevel) * 100,
		Badges:                    user.Badges,
		TotalAssignmentsEvaluated: user.TotalAssignmentsEvaluated,
		TotalBlogsPublished:       user.TotalBlogsPublished,
		AverageScore:              user.AverageScore,
		TotalBlogLikes:            totalLikes,
	}, nil
}

// LeaderboardEntry 积分排行榜条目
type LeaderboardEntry struct {
	UserID uint   `json:"userId"`
	Name   string `json:"name"`
	Avatar string `json:"avatar"`
	Points int    `json:"points"`
	Level  int    `json:"level"`
}

func (s *UserService) Leaderboard(limit int) ([]LeaderboardEntry, error) {
	if limit <= 0 || limit > 100 {
		limit = 10
	}
	users, err := s.UserRepo.FindTopByPoints(limit)
	if err != nil {
		return nil, err
	}
	entries := make([]LeaderboardEntry, 0, len(users))
	for _, u := range users {
		entries = append(entries, LeaderboardEntry{
			UserID: u.ID,
			Name:   u.Name,
			Avatar: u.Avatar,
			Points: u.Points,
			Level:  u.Level,
		})
	}
	return entries, nil
}
