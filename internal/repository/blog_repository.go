package repository

import (
	"essayeval_backend/internal/model"
	"strconv"

	"gorm.io/gorm"
)

type BlogRepository struct {
	DB *gorm.DB
}

func NewBlogRepository(db *gorm.DB) *BlogRepository {
	return &BlogRepository{DB: db}
}

func (r *BlogRepository) Create(blog *model.Blog) error {
	return r.DB.Create(blog).Error
}

func (r *BlogRepository) Update(blog *model.Blog) error {
	return r.DB.Save(blog).Error
}

func (r *BlogRepository) FindByID(id uint) (*model.Blog, error) {
	var blog model.Blog
	err := r.DB.First(&blog, id).Error
	if err != nil {
		return nil, err
	}
	return &blog, nil
}

func (r *BlogRepository) FindByIDAndUserID(id, userID uint) (*model.Blog, error) {
	var blog model.Blog
	err := r.DB.Where("id = ? AND user_id = ?", id, userID).First(&blog).Error
	if err != nil {
		return nil, err
	}
	return &blog, nil
}

// FeedQuery 公共博客流的筛选条件
type FeedQuery struct {
	Tag      string
	Category string
	AuthorID uint
	Sort     string // latest / popular / trending
	Page     int
	Limit    int
}

// FindPublished 公共流查询，列表不带正文与AI审阅信息
func (r *BlogRepository) FindPublished(q FeedQuery) ([]model.Blog, int64, error) {
	query := r.DB.Model(&model.Blog{}).Where("status = ?", model.BlogPublished)
	if q.Category != "" {
		query = query.Where("category = ?", q.Category)
	}
	if q.AuthorID != 0 {
		query = query.Where("user_id = ?", q.AuthorID)
	}
	if q.Tag != "" {
		// tags为JSON数组，用JSON_CONTAINS匹配
		query = query.Where("JSON_CONTAINS(tags, JSON_QUOTE(?))", q.Tag)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	order := "published_at DESC"
	switch q.Sort {
	case "popular":
		order = "likes_count DESC, views_count DESC"
	case "trending":
		order = "views_count DESC, published_at DESC"
	}

	var blogs []model.Blog
	err := query.Omit("content", "ai_review", "generation_params").
		Order(order).
		Offset((q.Page - 1) * q.Limit).
		Limit(q.Limit).
		Find(&blogs).Error
	return blogs, total, err
}

// FindBookmarkedBy 查询用户收藏的已发布博客。bookmarked_by为JSON数组，
// 存的是用户ID的十进制字符串
func (r *BlogRepository) FindBookmarkedBy(userID uint, page, limit int) ([]model.Blog, int64, error) {
	uid := strconv.FormatUint(uint64(userID), 10)
	query := r.DB.Model(&model.Blog{}).
		Where("status = ?", model.BlogPublished).
		Where("JSON_CONTAINS(bookmarked_by, JSON_QUOTE(?))", uid)

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var blogs []model.Blog
	err := query.Omit("content", "ai_review", "generation_params").
		Order("published_at DESC").
		Offset((page - 1) * limit).
		Limit(limit).
		Find(&blogs).Error
	return blogs, total, err
}

func (r *BlogRepository) FindByUserID(userID uint, status model.BlogStatus, page, limit int) ([]model.Blog, int64, error) {
	query := r.DB.Model(&model.Blog{}).Where("user_id = ?", userID)
	if status != "" {
		query = query.Where("status = ?", status)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var blogs []model.Blog
	err := query.Omit("content").
		Order("updated_at DESC").
		Offset((page - 1) * limit).
		Limit(limit).
		Find(&blogs).Error
	return blogs, total, err
}

func (r *BlogRepository) FindRecentByUserID(userID uint, limit int) ([]model.Blog, error) {
	var blogs []model.Blog
	err := r.DB.Where("user_id = ?", userID).
		Omit("content").
		Order("created_at DESC").
		Limit(limit).
		Find(&blogs).Error
	return blogs, err
}

func (r *BlogRepository) DeleteByIDAndUserID(id, userID uint) (int64, error) {
	result := r.DB.Where("id = ? AND user_id = ?", id, userID).Delete(&model.Blog{})
	return result.RowsAffected, result.Error
}

func (r *BlogRepository) IncrementViews(id uint) error {
	return r.DB.Model(&model.Blog{}).
		Where("id = ?", id).
		Update("views_count", gorm.Expr("views_count + 1")).
		Error
}

func (r *BlogRepository) IncrementComments(id uint, delta int) error {
	return r.DB.Model(&model.Blog{}).
		Where("id = ?", id).
		Update("comments_count", gorm.Expr("comments_count + ?", delta)).
		Error
}

func (r *BlogRepository) CountByUserID(userID uint) (int64, error) {
	var count int64
	err := r.DB.Model(&model.Blog{}).Where("user_id = ?", userID).Count(&count).Error
	return count, err
}

func (r *BlogRepository) CountByUserIDAndStatus(userID uint, status model.BlogStatus) (int64, error) {
	var count int64
	err := r.DB.Model(&model.Blog{}).
		Where("user_id = ? AND status = ?", userID, status).
		Count(&count).Error
	return count, err
}

func (r *BlogRepository) TotalLikesByUserID(userID uint) (int64, error) {
	var total int64
	err := r.DB.Model(&model.Blog{}).
		Where("user_id = ?", userID).
		Select("COALESCE(SUM(likes_count), 0)").
		Scan(&total).Error
	return total, err
}
