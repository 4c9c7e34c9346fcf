package service

import (
	"essayeval_backend/internal/gamification"
	"essayeval_backend/internal/model"
	"essayeval_backend/internal/repository"
	"essayeval_backend/pkg/logger"
	"fmt"
	"os"
	"sync"
	"testing"
	"time"

	"go.uber.org/zap"
	"gorm.io/driver/mysql"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

// 并发结算依赖MySQL行锁，需要真实数据库：
//
//	ESSAY_EVAL_TEST_MYSQL_DSN='root:root@tcp(localhost:3306)/essayeval_test?charset=utf8mb4&parseTime=True&loc=Local' \
//	  go test ./internal/service -run TestConcurrentSettlements
func TestConcurrentSettlementsKeepLedgerConsistent(t *testing.T) {
	dsn := os.Getenv("ESSAY_EVAL_TEST_MYSQL_DSN")
	if dsn == "" {
		t.Skip("ESSAY_EVAL_TEST_MYSQL_DSN not set")
	}
	if logger.Log == nil {
		logger.Log = zap.NewNop()
	}

	db, err := gorm.Open(mysql.Open(dsn), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	if err != nil {
		t.Fatalf("connect mysql: %v", err)
	}
	if err := db.AutoMigrate(&model.User{}, &model.Badge{}); err != nil {
		t.Fatalf("migrate: %v", err)
	}

	user := model.User{
		Name:     "concurrent-settler",
		Email:    fmt.Sprintf("concurrent-%d@test.local", time.Now().UnixNano()),
		Password: "irrelevant",
		Level:    1,
	}
	if err := db.Create(&user).Error; err != nil {
		t.Fatalf("create user: %v", err)
	}
	t.Cleanup(func() {
		db.Unscoped().Where("user_id = ?", user.ID).Delete(&model.Badge{})
		db.Unscoped().Delete(&user)
	})

	svc := NewGamificationService(repository.NewUserRepository(db), db)

	const workers = 20
	const score = 8.0

	var wg sync.WaitGroup
	errs := make(chan error, workers)
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if _, err := svc.RecordEvaluation(user.ID, score); err != nil {
				errs <- err
			}
		}()
	}
	wg.Wait()
	close(errs)
	for err := range errs {
		t.Fatalf("settlement failed: %v", err)
	}

	var settled model.User
	if err := db.Preload("Badges").First(&settled, user.ID).Error; err != nil {
		t.Fatalf("reload user: %v", err)
	}

	wantPoints := workers * (EvaluationBasePoints + int(score))
	if settled.Points != wantPoints {
		t.Fatalf("points = %d, want %d (no settlement may be lost)", settled.Points, wantPoints)
	}
	if settled.Level != gamification.LevelForPoints(wantPoints) {
		t.Fatalf("level = %d, want %d", settled.Level, gamification.LevelForPoints(wantPoints))
	}
	if settled.TotalAssignmentsEvaluated != workers {
		t.Fatalf("evaluations counted = %d, want %d", settled.TotalAssignmentsEvaluated, workers)
	}
	if settled.AverageScore != score {
		t.Fatalf("average score = %v, want %v", settled.AverageScore, score)
	}

	granted := map[string]int{}
	for _, b := range settled.Badges {
		granted[b.Name]++
	}
	for name, n := range granted {
		if n > 1 {
			t.Fatalf("badge %q granted %d times", name, n)
		}
	}
	for _, want := range []string{"First Evaluation", "Dedicated Learner", "Excellence"} {
		if granted[want] == 0 {
			t.Fatalf("badge %q not granted, have %v", want, granted)
		}
	}
}
