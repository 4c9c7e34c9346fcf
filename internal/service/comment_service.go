package service

import (
	"essayeval_backend/internal/model"
	"essayeval_backend/internal/repository"
	"essayeval_backend/internal/util"
	"essayeval_backend/pkg/logger"
	"fmt"

	"go.uber.org/zap"
)

// 嵌在顶层评论里预取的回复条数
const previewRepliesLimit = 3

// CommentService 博客评论：发表前走毒性检测，疑似内容标记flagged但不拦截
type CommentService struct {
	CommentRepo *repository.CommentRepository
	BlogRepo    *repository.BlogRepository
	UserRepo    *repository.UserRepository
	AI          *AIService
}

func NewCommentService(
	commentRepo *repository.CommentRepository,
	blogRepo *repository.BlogRepository,
	userRepo *repository.UserRepository,
	ai *AIService,
) *CommentService {
	return &CommentService{
		CommentRepo: commentRepo,
		BlogRepo:    blogRepo,
		UserRepo:    userRepo,
		AI:          ai,
	}
}

// CommentView 顶层评论 + 预取的前几条回复
type CommentView struct {
	model.Comment
	Replies        []model.Comment `json:"replies"`
	HasMoreReplies bool            `json:"hasMoreReplies"`
}

// Add 发表评论或回复。毒性检测失败时按通过处理（检测服务不可用不应阻断互动）。
func (s *CommentService) Add(userID, blogID uint, content string, parentID *uint) (*model.Comment, error) {
	user, err := s.UserRepo.FindByID(userID)
	if err != nil {
		return nil, util.ErrUserNotFound
	}

	blog, err := s.BlogRepo.FindByID(blogID)
	if err != nil || blog.Status != model.BlogPublished {
		return nil, util.ErrBlogNotFound
	}

	if parentID != nil {
		parent, err := s.CommentRepo.FindByID(*parentID)
		if err != nil || parent.BlogID != blogID {
			return nil, util.ErrCommentNotFound
		}
		// 只支持一层回复，回复的回复挂到同一个父评论下
		if parent.ParentCommentID != nil {
			parentID = parent.ParentCommentID
		}
	}

	toxicity := s.AI.CheckToxicity(content)

	status := model.CommentApproved
	if toxicity.IsToxic || toxicity.IsSpam || toxicity.IsHateSpeech {
		status = model.CommentFlagged
		logger.Log.Warn("comment flagged by toxicity check",
			zap.Uint("userId", userID),
			zap.Uint("blogId", blogID),
			zap.Float64("score", toxicity.ToxicityScore))
	}

	comment := &model.Comment{
		BlogID:           blogID,
		UserID:           userID,
		AuthorName:       user.Name,
		AuthorPic:        user.Avatar,
		Content:          content,
		ToxicityAnalysis: toxicity,
		Status:           status,
		ParentCommentID:  parentID,
	}

	if err := s.CommentRepo.Create(comment); err != nil {
		return nil, err
	}

	if parentID != nil {
		if err := s.CommentRepo.IncrementReplies(*parentID, 1); err != nil {
			logger.Log.Error("failed to bump replies count", zap.Uint("parentId", *parentID), zap.Error(err))
		}
	}
	if err := s.BlogRepo.IncrementComments(blogID, 1); err != nil {
		logger.Log.Error("failed to bump comments count", zap.Uint("blogId", blogID), zap.Error(err))
	}

	return comment, nil
}

// List 分页返回顶层评论，每条内嵌最多previewRepliesLimit条回复
func (s *CommentService) List(blogID uint, sort string, page, limit int) ([]CommentView, int64, error) {
	comments, total, err := s.CommentRepo.FindTopLevelByBlogID(blogID, sort, page, limit)
	if err != nil {
		return nil, 0, err
	}

	views := make([]CommentView, 0, len(comments))
	for _, c := range comments {
		replies, repliesTotal, err := s.CommentRepo.FindReplies(c.ID, 1, previewRepliesLimit)
		if err != nil {
			return nil, 0, err
		}
		views = append(views, CommentView{
			Comment:        c,
			Replies:        replies,
			HasMoreReplies: repliesTotal > int64(len(replies)),
		})
	}
	return views, total, nil
}

func (s *CommentService) ListReplies(commentID uint, page, limit int) ([]model.Comment, int64, error) {
	return s.CommentRepo.FindReplies(commentID, page, limit)
}

// ToggleLike 点赞/取消点赞评论
func (s *CommentService) ToggleLike(commentID, userID uint) (bool, int, error) {
	comment, err := s.CommentRepo.FindByID(commentID)
	if err != nil {
		return false, 0, util.ErrCommentNotFound
	}

	uid := fmt.Sprintf("%d", userID)
	liked := false
	if idx := indexOf(comment.LikedBy, uid); idx >= 0 {
		comment.LikedBy = append(comment.LikedBy[:idx], comment.LikedBy[idx+1:]...)
		if comment.LikesCount > 0 {
			comment.LikesCount--
		}
	} else {
		comment.LikedBy = append(comment.LikedBy, uid)
		comment.LikesCount++
		liked = true
	}

	if err := s.CommentRepo.Update(comment); err != nil {
		return false, 0, err
	}
	return liked, comment.LikesCount, nil
}

// Report 举报评论：重新跑一次毒性检测，确认有问题的移除，否则标flagged待人工
func (s *CommentService) Report(commentID, reporterID uint, reason string) (model.CommentStatus, error) {
	comment, err := s.CommentRepo.FindByID(commentID)
	if err != nil {
		return "", util.ErrCommentNotFound
	}

	toxicity := s.AI.CheckToxicity(comment.Content)
	comment.ToxicityAnalysis = toxicity

	if toxicity.IsToxic || toxicity.IsHateSpeech || toxicity.ToxicityScore > 0.7 {
		comment.Status = model.CommentRemoved
	} else {
		comment.Status = model.CommentFlagged
	}

	if err := s.CommentRepo.Update(comment); err != nil {
		return "", err
	}

	logger.Log.Info("comment reported",
		zap.Uint("commentId", commentID),
		zap.Uint("reporterId", reporterID),
		zap.String("reason", reason),
		zap.String("newStatus", string(comment.Status)))

	if comment.Status == model.CommentRemoved {
		s.detachCounts(comment)
	}
	return comment.Status, nil
}

// Delete 只允许作者删除自己的评论，同步维护计数
func (s *CommentService) Delete(commentID, userID uint) error {
	comment, err := s.CommentRepo.FindByIDAndUserID(commentID, userID)
	if err != nil {
		return util.ErrCommentNotFound
	}

	if err := s.CommentRepo.Delete(commentID); err != nil {
		return err
	}
	s.detachCounts(comment)
	return nil
}

func (s *CommentService) detachCounts(comment *model.Comment) {
	if comment.ParentCommentID != nil {
		if err := s.CommentRepo.IncrementReplies(*comment.ParentCommentID, -1); err != nil {
			logger.Log.Error("failed to decrement replies count", zap.Error(err))
		}
	}
	if err := s.BlogRepo.IncrementComments(comment.BlogID, -1); err != nil {
		logger.Log.Error("failed to decrement comments count", zap.Error(err))
	}
}
