package model

import (
	"time"
)

type ThemePreference string

const (
	ThemeLight  ThemePreference = "light"
	ThemeDark   ThemePreference = "dark"
	ThemeSystem ThemePreference = "system"
)

// swagger:model User
type User struct {
	BaseModel
	Name     string `gorm:"size:100;not null" json:"name"`
	Email    string `gorm:"size:100;unique;not null" json:"email"`
	Password string `gorm:"size:100;not null" json:"-"`
	Avatar   string `gorm:"size:255" json:"avatar"`
	Bio      string `gorm:"size:500" json:"bio"`

	// 游戏化字段：points为积分总量，level由points派生（每100分升一级）
	Points int     `gorm:"default:0" json:"points"`
	Level  int     `gorm:"default:1" json:"level"`
	Badges []Badge `gorm:"foreignKey:UserID" json:"badges"`

	// 统计字段，由业务流程在加分前更新
	TotalAssignmentsEvaluated int     `gorm:"default:0" json:"totalAssignmentsEvaluated"`
	TotalBlogsPublished       int     `gorm:"default:0" json:"totalBlogsPublished"`
	AverageScore              float64 `gorm:"default:0" json:"averageScore"`

	// 偏好设置
	Theme              ThemePreference `gorm:"size:10;default:'system'" json:"theme"`
	EmailNotifications bool            `gorm:"default:true" json:"emailNotifications"`

	LastLogin time.Time `gorm:"default:CURRENT_TIMESTAMP(3)" json:"lastLogin"`
}

func (User) TableName() string {
	return "users"
}

// Badge 徽章，同一用户同名徽章只发一次
type Badge struct {
	BaseModel
	UserID      uint      `gorm:"index:idx_user_badge,unique;not null" json:"-"`
	Name        string    `gorm:"size:100;index:idx_user_badge,unique;not null" json:"name"`
	Description string    `gorm:"size:255" json:"description"`
	Icon        string    `gorm:"size:50" json:"icon"`
	EarnedAt    time.Time `json:"earnedAt"`
}

func (Badge) TableName() string {
	return "badges"
}
