package service

import (
	"context"
	"encoding/json"
	"essayeval_backend/internal/analysis"
	"essayeval_backend/internal/model"
	"essayeval_backend/internal/repository"
	"essayeval_backend/internal/util"
	"essayeval_backend/pkg/logger"
	"fmt"
	"strings"
	"time"

	"github.com/go-redis/redis/v8"
	"go.uber.org/zap"
)

const feedCacheTTL = 2 * time.Minute

// BlogService 博客的生成、保存、发布与公共流
type BlogService struct {
	BlogRepo     *repository.BlogRepository
	UserRepo     *repository.UserRepository
	AI           *AIService
	Analyzer     *analysis.Analyzer
	Gamification *GamificationService
	Redis        *redis.Client
}

func NewBlogService(
	blogRepo *repository.BlogRepository,
	userRepo *repository.UserRepository,
	ai *AIService,
	analyzer *analysis.Analyzer,
	gamificationService *GamificationService,
	rdb *redis.Client,
) *BlogService {
	return &BlogService{
		BlogRepo:     blogRepo,
		UserRepo:     userRepo,
		AI:           ai,
		Analyzer:     analyzer,
		Gamification: gamificationService,
		Redis:        rdb,
	}
}

// GenerateDraft 调AI生成博客并保存为草稿
func (s *BlogService) GenerateDraft(userID uint, req BlogGenerationRequest) (*model.Blog, error) {
	user, err := s.UserRepo.FindByID(userID)
	if err != nil {
		return nil, util.ErrUserNotFound
	}

	generated, err := s.AI.GenerateBlog(req)
	if err != nil {
		return nil, err
	}

	wordCount := generated.WordCount
	if wordCount == 0 {
		wordCount = len(strings.Fields(generated.Content))
	}

	blog := &model.Blog{
		UserID:     userID,
		AuthorName: user.Name,
		AuthorPic:  user.Avatar,
		Title:      generated.Title,
		Content:    generated.Content,
		Tags:       generated.Tags,
		SEOMeta: model.SEOMeta{
			MetaTitle:       generated.MetaTitle,
			MetaDescription: generated.MetaDescription,
		},
		ReadabilityGrade: generated.ReadabilityGrade,
		WordCount:        wordCount,
		IsAIGenerated:    true,
		GenerationParams: model.GenerationParams{
			Topic:           req.Topic,
			Keywords:        req.Keywords,
			Audience:        req.Audience,
			Tone:            req.Tone,
			RequestedLength: req.Length,
		},
		Status: model.BlogDraft,
	}

	if err := s.BlogRepo.Create(blog); err != nil {
		return nil, err
	}
	return blog, nil
}

// SaveRequest 手动保存博客的请求体
type SaveRequest struct {
	Title      string           `json:"title" binding:"required"`
	Content    string           `json:"content" binding:"required"`
	Tags       []string         `json:"tags"`
	Category   string           `json:"category"`
	CoverImage string           `json:"coverImage"`
	SEOMeta    model.SEOMeta    `json:"seoMeta"`
	Status     model.BlogStatus `json:"status"`
}

// Save 保存新博客。status为published时同时结算积分。
func (s *BlogService) Save(userID uint, req SaveRequest) (*model.Blog, *AwardResult, error) {
	user, err := s.UserRepo.FindByID(userID)
	if err != nil {
		return nil, nil, util.ErrUserNotFound
	}

	status := req.Status
	if status == "" {
		status = model.BlogDraft
	}

	category := req.Category
	if category == "" {
		category = "General"
	}

	blog := &model.Blog{
		UserID:     userID,
		AuthorName: user.Name,
		AuthorPic:  user.Avatar,
		Title:      req.Title,
		Content:    req.Content,
		Tags:       req.Tags,
		Category:   category,
		CoverImage: req.CoverImage,
		SEOMeta:    req.SEOMeta,
		WordCount:  len(strings.Fields(req.Content)),
		Status:     status,
	}

	if err := s.BlogRepo.Create(blog); err != nil {
		return nil, nil, err
	}

	var award *AwardResult
	if status == model.BlogPublished {
		award = s.settlePublish(userID)
		s.invalidateFeedCache(context.Background())
	}
	return blog, award, nil
}

// UpdateRequest 更新博客的请求体，零值字段不更新
type UpdateRequest struct {
	Title      string           `json:"title"`
	Content    string           `json:"content"`
	Tags       []string         `json:"tags"`
	Category   string           `json:"category"`
	CoverImage *string          `json:"coverImage"`
	SEOMeta    *model.SEOMeta   `json:"seoMeta"`
	Status     model.BlogStatus `json:"status"`
}

// Update 更新博客。只有draft/archived -> published的跳变才结算积分，
// 重复保存已发布的博客不会重复加分。
func (s *BlogService) Update(userID, blogID uint, req UpdateRequest) (*model.Blog, *AwardResult, error) {
	blog, err := s.BlogRepo.FindByIDAndUserID(blogID, userID)
	if err != nil {
		return nil, nil, util.ErrBlogNotFound
	}

	wasNotPublished := blog.Status != model.BlogPublished

	if req.Title != "" {
		blog.Title = req.Title
	}
	if req.Content != "" {
		blog.Content = req.Content
		blog.WordCount = len(strings.Fields(req.Content))
	}
	if req.Tags != nil {
		blog.Tags = req.Tags
	}
	if req.Category != "" {
		blog.Category = req.Category
	}
	if req.CoverImage != nil {
		blog.CoverImage = *req.CoverImage
	}
	if req.SEOMeta != nil {
		blog.SEOMeta = *req.SEOMeta
	}
	if req.Status != "" {
		blog.Status = req.Status
	}

	if err := s.BlogRepo.Update(blog); err != nil {
		return nil, nil, err
	}

	var award *AwardResult
	if wasNotPublished && blog.Status == model.BlogPublished {
		award = s.settlePublish(userID)
		s.invalidateFeedCache(context.Background())
	}
	return blog, award, nil
}

func (s *BlogService) settlePublish(userID uint) *AwardResult {
	award, err := s.Gamification.RecordBlogPublished(userID)
	if err != nil {
		logger.Log.Error("gamification settlement failed",
			zap.Uint("userId", userID), zap.Error(err))
		return nil
	}
	return award
}

// Review 发布前审阅：AI反馈 + 规则分析一并返回
type ReviewResult struct {
	AIReview        model.AIReview                 `json:"aiReview"`
	ContentAnalysis analysis.ContentAnalysisResult `json:"contentAnalysis"`
}

func (s *BlogService) Review(userID, blogID uint) (*ReviewResult, error) {
	blog, err := s.BlogRepo.FindByIDAndUserID(blogID, userID)
	if err != nil {
		return nil, util.ErrBlogNotFound
	}

	feedback, err := s.AI.ReviewBlog(blog.Content)
	if err != nil {
		return nil, err
	}

	review := model.AIReview{
		Rating:      feedback.Rating,
		Feedback:    feedback.Feedback,
		Strengths:   feedback.Strengths,
		Weaknesses:  feedback.Weaknesses,
		Suggestions: feedback.Suggestions,
	}

	blog.AIReview = review
	if err := s.BlogRepo.Update(blog); err != nil {
		return nil, err
	}

	return &ReviewResult{
		AIReview:        review,
		ContentAnalysis: s.Analyzer.AnalyzeContent(blog.Content),
	}, nil
}

// Feed 公共博客流，短缓存扛热点
func (s *BlogService) Feed(ctx context.Context, q repository.FeedQuery) ([]model.Blog, int64, error) {
	cacheKey := fmt.Sprintf("blog:feed:%s:%s:%d:%s:%d:%d", q.Tag, q.Category, q.AuthorID, q.Sort, q.Page, q.Limit)

	if s.Redis != nil {
		if val, err := s.Redis.Get(ctx, cacheKey).Result(); err == nil {
			var cached struct {
				Blogs []model.Blog `json:"blogs"`
				Total int64        `json:"total"`
			}
			if json.Unmarshal([]byte(val), &cached) == nil {
				return cached.Blogs, cached.Total, nil
			}
		}
	}

	blogs, total, err := s.BlogRepo.FindPublished(q)
	if err != nil {
		return nil, 0, err
	}

	if s.Redis != nil {
		payload, _ := json.Marshal(struct {
			Blogs []model.Blog `json:"blogs"`
			Total int64        `json:"total"`
		}{blogs, total})
		s.Redis.Set(ctx, cacheKey, payload, feedCacheTTL)
	}

	return blogs, total, nil
}

func (s *BlogService) invalidateFeedCache(ctx context.Context) {
	if s.Redis == nil {
		return
	}
	iter := s.Redis.Scan(ctx, 0, "blog:feed:*", 100).Iterator()
	for iter.Next(ctx) {
		s.Redis.Del(ctx, iter.Val())
	}
}

// Get 读取单篇博客。非作者只能看已发布的，并计一次浏览。
func (s *BlogService) Get(blogID uint, viewerID uint) (*model.Blog, error) {
	blog, err := s.BlogRepo.FindByID(blogID)
	if err != nil {
		return nil, util.ErrBlogNotFound
	}

	if blog.UserID != viewerID {
		if blog.Status != model.BlogPublished {
			return nil, util.ErrBlogNotFound
		}
		s.BlogRepo.IncrementViews(blogID)
		blog.ViewsCount++
	}
	return blog, nil
}

func (s *BlogService) ListMine(userID uint, status model.BlogStatus, page, limit int) ([]model.Blog, int64, error) {
	return s.BlogRepo.FindByUserID(userID, status, page, limit)
}

// ListBookmarked 收藏的博客列表，已下架的不再出现
func (s *BlogService) ListBookmarked(userID uint, page, limit int) ([]model.Blog, int64, error) {
	return s.BlogRepo.FindBookmarkedBy(userID, page, limit)
}

func (s *BlogService) Delete(userID, blogID uint) error {
	affected, err := s.BlogRepo.DeleteByIDAndUserID(blogID, userID)
	if err != nil {
		return err
	}
	if affected == 0 {
		return util.ErrBlogNotFound
	}
	return nil
}

// ToggleLike 点赞/取消点赞，uid字符串沿用用户ID十进制表示
func (s *BlogService) ToggleLike(blogID, userID uint) (bool, int, error) {
	blog, err := s.BlogRepo.FindByID(blogID)
	if err != nil {
		return false, 0, util.ErrBlogNotFound
	}
	if blog.Status != model.BlogPublished {
		return false, 0, util.ErrBlogNotPublished
	}

	uid := fmt.Sprintf("%d", userID)
	liked := false
	if idx := indexOf(blog.LikedBy, uid); idx >= 0 {
		blog.LikedBy = append(blog.LikedBy[:idx], blog.LikedBy[idx+1:]...)
		if blog.LikesCount > 0 {
			blog.LikesCount--
		}
	} else {
		blog.LikedBy = append(blog.LikedBy, uid)
		blog.LikesCount++
		liked = true
	}

	if err := s.BlogRepo.Update(blog); err != nil {
		return false, 0, err
	}
	return liked, blog.LikesCount, nil
}

// ToggleBookmark 收藏/取消收藏
func (s *BlogService) ToggleBookmark(blogID, userID uint) (bool, int, error) {
	blog, err := s.BlogRepo.FindByID(blogID)
	if err != nil {
		return false, 0, util.ErrBlogNotFound
	}
	if blog.Status != model.BlogPublished {
		return false, 0, util.ErrBlogNotPublished
	}

	uid := fmt.Sprintf("%d", userID)
	bookmarked := false
	if idx := indexOf(blog.BookmarkedBy, uid); idx >= 0 {
		blog.BookmarkedBy = append(blog.BookmarkedBy[:idx], blog.BookmarkedBy[idx+1:]...)
		if blog.BookmarksCount > 0 {
			blog.BookmarksCount--
		}
	} else {
		blog.BookmarkedBy = append(blog.BookmarkedBy, uid)
		blog.BookmarksCount++
		bookmarked = true
	}

	if err := s.BlogRepo.Update(blog); err != nil {
		return false, 0, err
	}
	return bookmarked, blog.BookmarksCount, nil
}

func indexOf(list []string, target string) int {
	for i, v := range list {
		if v == target {
			return i
		}
	}
	return -1
}
