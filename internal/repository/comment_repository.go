package repository

import (
	"essayeval_backend/internal/model"

	"gorm.io/gorm"
)

type CommentRepository struct {
	DB *gorm.DB
}

func NewCommentRepository(db *gorm.DB) *CommentRepository {
	return &CommentRepository{DB: db}
}

// 对外可见的评论状态，removed的不返回
var visibleStatuses = []model.CommentStatus{model.CommentApproved, model.CommentFlagged}

func (r *CommentRepository) Create(comment *model.Comment) error {
	return r.DB.Create(comment).Error
}

func (r *CommentRepository) Update(comment *model.Comment) error {
	return r.DB.Save(comment).Error
}

func (r *CommentRepository) FindByID(id uint) (*model.Comment, error) {
	var comment model.Comment
	err := r.DB.First(&comment, id).Error
	if err != nil {
		return nil, err
	}
	return &comment, nil
}

func (r *CommentRepository) FindByIDAndUserID(id, userID uint) (*model.Comment, error) {
	var comment model.Comment
	err := r.DB.Where("id = ? AND user_id = ?", id, userID).First(&comment).Error
	if err != nil {
		return nil, err
	}
	return &comment, nil
}

// FindTopLevelByBlogID 查询博客的顶层评论（不含回复）
func (r *CommentRepository) FindTopLevelByBlogID(blogID uint, sort string, page, limit int) ([]model.Comment, int64, error) {
	query := r.DB.Model(&model.Comment{}).
		Where("blog_id = ? AND status IN ? AND parent_comment_id IS NULL", blogID, visibleStatuses)

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	order := "created_at DESC"
	switch sort {
	case "oldest":
		order = "created_at ASC"
	case "popular":
		order = "likes_count DESC, created_at DESC"
	}

	var comments []model.Comment
	err := query.Order(order).
		Offset((page - 1) * limit).
		Limit(limit).
		Find(&comments).Error
	return comments, total, err
}

func (r *CommentRepository) FindReplies(parentID uint, page, limit int) ([]model.Comment, int64, error) {
	query := r.DB.Model(&model.Comment{}).
		Where("parent_comment_id = ? AND status IN ?", parentID, visibleStatuses)

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var replies []model.Comment
	err := query.Order("created_at ASC").
		Offset((page - 1) * limit).
		Limit(limit).
		Find(&replies).Error
	return replies, total, err
}

func (r *CommentRepository) IncrementReplies(id uint, delta int) error {
	return r.DB.Model(&model.Comment{}).
		Where("id = ?", id).
		Update("replies_count", gorm.Expr("replies_count + ?", delta)).
		Error
}

func (r *CommentRepository) Delete(id uint) error {
	return r.DB.Delete(&model.Comment{}, id).Error
}
