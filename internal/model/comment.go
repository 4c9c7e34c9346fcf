package model

type CommentStatus string

const (
	CommentPending  CommentStatus = "pending"
	CommentApproved CommentStatus = "approved"
	CommentFlagged  CommentStatus = "flagged"
	CommentRemoved  CommentStatus = "removed"
)

// ToxicityAnalysis 评论毒性检测结果
type ToxicityAnalysis struct {
	IsToxic       bool     `json:"isToxic"`
	IsSpam        bool     `json:"isSpam"`
	IsHateSpeech  bool     `json:"isHateSpeech"`
	ToxicityScore float64  `json:"toxicityScore"` // 0-1
	Categories    []string `json:"categories"`
	Reason        string   `json:"reason"`
}

// swagger:model Comment
type Comment struct {
	BaseModel
	BlogID     uint   `gorm:"index:idx_comment_blog_date;not null" json:"blogId"`
	UserID     uint   `gorm:"index;not null" json:"userId"`
	AuthorName string `gorm:"size:100;default:'Anonymous'" json:"authorName"`
	AuthorPic  string `gorm:"size:255" json:"authorPic"`

	Content          string           `gorm:"size:2000;not null" json:"content"`
	ToxicityAnalysis ToxicityAnalysis `gorm:"serializer:json" json:"toxicityAnalysis"`
	Status           CommentStatus    `gorm:"size:20;default:'approved';index" json:"status"`

	LikesCount int      `gorm:"default:0" json:"likesCount"`
	LikedBy    []string `gorm:"serializer:json" json:"-"`

	// 回复支持
	ParentCommentID *uint `gorm:"index" json:"parentCommentId,omitempty"`
	RepliesCount    int   `gorm:"default:0" json:"repliesCount"`
}

func (Comment) TableName() string {
	return "comments"
}
