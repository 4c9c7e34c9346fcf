package repository

import (
	"essayeval_backend/internal/model"
	"time"

	"gorm.io/gorm"
)

type AssignmentRepository struct {
	DB *gorm.DB
}

func NewAssignmentRepository(db *gorm.DB) *AssignmentRepository {
	return &AssignmentRepository{DB: db}
}

func (r *AssignmentRepository) Create(assignment *model.Assignment) error {
	if assignment.UploadDate.IsZero() {
		assignment.UploadDate = time.Now()
	}
	return r.DB.Create(assignment).Error
}

func (r *AssignmentRepository) Update(assignment *model.Assignment) error {
	return r.DB.Save(assignment).Error
}

func (r *AssignmentRepository) FindByIDAndUserID(id, userID uint) (*model.Assignment, error) {
	var assignment model.Assignment
	err := r.DB.Where("id = ? AND user_id = ?", id, userID).First(&assignment).Error
	if err != nil {
		return nil, err
	}
	return &assignment, nil
}

// FindByUserID 分页查询，列表页不带原文以省流量
func (r *AssignmentRepository) FindByUserID(userID uint, status model.AssignmentStatus, page, limit int) ([]model.Assignment, int64, error) {
	query := r.DB.Model(&model.Assignment{}).Where("user_id = ?", userID)
	if status != "" {
		query = query.Where("status = ?", status)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var assignments []model.Assignment
	err := query.Omit("extracted_text").
		Order("upload_date DESC").
		Offset((page - 1) * limit).
		Limit(limit).
		Find(&assignments).Error
	return assignments, total, err
}

func (r *AssignmentRepository) FindRecentCompleted(userID uint, limit int) ([]model.Assignment, error) {
	var assignments []model.Assignment
	err := r.DB.Where("user_id = ? AND status = ?", userID, model.AssignmentCompleted).
		Omit("extracted_text").
		Order("upload_date DESC").
		Limit(limit).
		Find(&assignments).Error
	return assignments, err
}

func (r *AssignmentRepository) DeleteByIDAndUserID(id, userID uint) (int64, error) {
	result := r.DB.Where("id = ? AND user_id = ?", id, userID).Delete(&model.Assignment{})
	return result.RowsAffected, result.Error
}

func (r *AssignmentRepository) CountByUserID(userID uint) (int64, error) {
	var count int64
	err := r.DB.Model(&model.Assignment{}).Where("user_id = ?", userID).Count(&count).Error
	return count, err
}

func (r *AssignmentRepository) CountByUserIDAndStatus(userID uint, status model.AssignmentStatus) (int64, error) {
	var count int64
	err := r.DB.Model(&model.Assignment{}).
		Where("user_id = ? AND status = ?", userID, status).
		Count(&count).Error
	return count, err
}

// ScoreBucket 分数分布的单个区间
type ScoreBucket struct {
	Bucket string `json:"bucket"`
	Count  int64  `json:"count"`
}

// ScoreDistribution 按固定区间统计已完成评测的分数分布
func (r *AssignmentRepository) ScoreDistribution(userID uint) ([]ScoreBucket, error) {
	var buckets []ScoreBucket
	err := r.DB.Model(&model.Assignment{}).
		Select(`CASE
			WHEN score < 3 THEN '0-3'
			WHEN score < 5 THEN '3-5'
			WHEN score < 7 THEN '5-7'
			WHEN score < 9 THEN '7-9'
			ELSE '9-10'
		END AS bucket, COUNT(*) AS count`).
		Where("user_id = ? AND status = ?", userID, model.AssignmentCompleted).
		Group("bucket").
		Order("bucket").
		Scan(&buckets).Error
	return buckets, err
}

// DailyProgress 某天的平均分与评测数
type DailyProgress struct {
	Date         string  `json:"date"`
	AverageScore float64 `json:"averageScore"`
	Count        int64   `json:"count"`
}

// ProgressSince 按天聚合指定日期之后的评测成绩
func (r *AssignmentRepository) ProgressSince(userID uint, since time.Time) ([]DailyProgress, error) {
	var progress []DailyProgress
	err := r.DB.Model(&model.Assignment{}).
		Select("DATE_FORMAT(upload_date, '%Y-%m-%d') AS date, AVG(score) AS average_score, COUNT(*) AS count").
		Where("user_id = ? AND status = ? AND upload_date >= ?", userID, model.AssignmentCompleted, since).
		Group("date").
		Order("date").
		Scan(&progress).Error
	return progress, err
}
