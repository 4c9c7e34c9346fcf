package model

import (
	"strings"
	"time"

	"gorm.io/gorm"
)

type BlogStatus string

const (
	BlogDraft     BlogStatus = "draft"
	BlogPublished BlogStatus = "published"
	BlogArchived  BlogStatus = "archived"
)

// SEOMeta 博客SEO信息
type SEOMeta struct {
	MetaTitle       string `json:"metaTitle"`
	MetaDescription string `json:"metaDescription"`
}

// GenerationParams AI生成博客时的请求参数，留档用于复现
type GenerationParams struct {
	Topic           string   `json:"topic"`
	Keywords        []string `json:"keywords"`
	Audience        string   `json:"audience"`
	Tone            string   `json:"tone"`
	RequestedLength int      `json:"requestedLength"`
}

// AIReview 发布前AI审阅结果
type AIReview struct {
	Rating      string   `json:"rating"`
	Feedback    string   `json:"feedback"`
	Strengths   []string `json:"strengths"`
	Weaknesses  []string `json:"weaknesses"`
	Suggestions []string `json:"suggestions"`
}

// swagger:model Blog
type Blog struct {
	BaseModel
	UserID     uint   `gorm:"index:idx_blog_user_date;not null" json:"userId"`
	AuthorName string `gorm:"size:100;default:'Anonymous'" json:"authorName"`
	AuthorPic  string `gorm:"size:255" json:"authorPic"`

	Title      string   `gorm:"size:255;not null" json:"title"`
	Content    string   `gorm:"type:mediumtext;not null" json:"content,omitempty"`
	Excerpt    string   `gorm:"size:255" json:"excerpt"`
	CoverImage string   `gorm:"size:512" json:"coverImage"`
	Tags       []string `gorm:"serializer:json" json:"tags"`
	Category   string   `gorm:"size:100;default:'General';index" json:"category"`
	SEOMeta    SEOMeta  `gorm:"serializer:json" json:"seoMeta"`

	ReadabilityGrade string `gorm:"size:50" json:"readabilityGrade"`
	WordCount        int    `gorm:"default:0" json:"wordCount"`

	// 互动数据
	LikesCount     int      `gorm:"default:0" json:"likesCount"`
	LikedBy        []string `gorm:"serializer:json" json:"-"`
	BookmarksCount int      `gorm:"default:0" json:"bookmarksCount"`
	BookmarkedBy   []string `gorm:"serializer:json" json:"-"`
	CommentsCount  int      `gorm:"default:0" json:"commentsCount"`
	ViewsCount     int      `gorm:"default:0" json:"viewsCount"`

	// 生成与审阅
	IsAIGenerated    bool             `gorm:"default:false" json:"isAIGenerated"`
	GenerationParams GenerationParams `gorm:"serializer:json" json:"generationParams,omitempty"`
	AIReview         AIReview         `gorm:"serializer:json" json:"aiReview,omitempty"`

	Status      BlogStatus `gorm:"size:20;default:'draft';index:idx_blog_status_pub" json:"status"`
	PublishedAt *time.Time `gorm:"index:idx_blog_status_pub" json:"publishedAt,omitempty"`
}

func (Blog) TableName() string {
	return "blogs"
}

// BeforeSave 自动维护摘要和发布时间
func (b *Blog) BeforeSave(tx *gorm.DB) error {
	if b.Status == BlogPublished && b.PublishedAt == nil {
		now := time.Now()
		b.PublishedAt = &now
	}
	if b.Excerpt == "" && b.Content != "" {
		plain := strings.NewReplacer("#", "", "*", "", "`", "").Replace(b.Content)
		plain = strings.TrimSpace(plain)
		if len(plain) > 200 {
			plain = plain[:200] + "..."
		}
		b.Excerpt = plain
	}
	return nil
}
