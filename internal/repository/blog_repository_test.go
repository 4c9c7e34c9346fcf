package repository

import (
	"essayeval_backend/internal/model"
	"os"
	"strconv"
	"testing"
	"time"

	"gorm.io/driver/mysql"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

// JSON_CONTAINS查询需要真实MySQL，DSN同结算测试：
//
//	ESSAY_EVAL_TEST_MYSQL_DSN='root:root@tcp(localhost:3306)/essayeval_test?charset=utf8mb4&parseTime=True&loc=Local' \
//	  go test ./internal/repository -run TestFindBookmarkedBy
func TestFindBookmarkedBy(t *testing.T) {
	dsn := os.Getenv("ESSAY_EVAL_TEST_MYSQL_DSN")
	if dsn == "" {
		t.Skip("ESSAY_EVAL_TEST_MYSQL_DSN not set")
	}

	db, err := gorm.Open(mysql.Open(dsn), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	if err != nil {
		t.Fatalf("connect mysql: %v", err)
	}
	if err := db.AutoMigrate(&model.Blog{}); err != nil {
		t.Fatalf("migrate: %v", err)
	}

	userID := uint(time.Now().UnixNano() % 1_000_000_000)
	uid := strconv.FormatUint(uint64(userID), 10)
	now := time.Now()

	blogs := []model.Blog{
		{
			UserID:       userID + 1,
			Title:        "bookmarked and published",
			Content:      "full body that must be omitted from listings",
			Status:       model.BlogPublished,
			PublishedAt:  &now,
			BookmarkedBy: []string{uid, "999999999"},
		},
		{
			UserID:       userID + 1,
			Title:        "bookmarked but still a draft",
			Content:      "draft body",
			Status:       model.BlogDraft,
			BookmarkedBy: []string{uid},
		},
		{
			UserID:       userID + 1,
			Title:        "published but not bookmarked",
			Content:      "other body",
			Status:       model.BlogPublished,
			PublishedAt:  &now,
			BookmarkedBy: []string{"999999999"},
		},
	}
	for i := range blogs {
		if err := db.Create(&blogs[i]).Error; err != nil {
			t.Fatalf("create blog %d: %v", i, err)
		}
	}
	t.Cleanup(func() {
		for i := range blogs {
			db.Unscoped().Delete(&blogs[i])
		}
	})

	repo := NewBlogRepository(db)
	got, total, err := repo.FindBookmarkedBy(userID, 1, 10)
	if err != nil {
		t.Fatalf("FindBookmarkedBy: %v", err)
	}

	found := 0
	for _, b := range got {
		if b.ID == blogs[1].ID {
			t.Fatal("draft blog must not appear in bookmarks")
		}
		if b.ID == blogs[2].ID {
			t.Fatal("non-bookmarked blog must not appear")
		}
		if b.ID == blogs[0].ID {
			found++
			if b.Content != "" {
				t.Fatal("listing must omit blog content")
			}
		}
	}
	if found != 1 {
		t.Fatalf("bookmarked blog not returned, got %d rows (total %d)", len(got), total)
	}
	if total < 1 {
		t.Fatalf("total = %d, want at least 1", total)
	}
}
