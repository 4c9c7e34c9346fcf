package gamification

import (
	"errors"
	"math"
	"testing"
)

func badgeNames(grants []BadgeGrant) []string {
	names := make([]string, 0, len(grants))
	for _, g := range grants {
		names = append(names, g.Name)
	}
	return names
}

func TestApplyFirstEvaluation(t *testing.T) {
	// 新用户第一次评测，得分8: 10+8=18分，1级，只发First Evaluation
	state := State{
		Points:                    0,
		OwnedBadges:               map[string]bool{},
		TotalAssignmentsEvaluated: 1,
		AverageScore:              8,
	}
	result, err := Apply(state, Event{PointsToAdd: 18, Reason: "evaluation"})
	if err != nil {
		t.Fatal(err)
	}
	if result.Points != 18 {
		t.Fatalf("expected 18 points, got %d", result.Points)
	}
	if result.Level != 1 {
		t.Fatalf("expected level 1, got %d", result.Level)
	}
	names := badgeNames(result.NewBadges)
	if len(names) != 1 || names[0] != "First Evaluation" {
		t.Fatalf("expected only First Evaluation, got %v", names)
	}
}

func TestApplyRejectsNegativeDelta(t *testing.T) {
	_, err := Apply(State{OwnedBadges: map[string]bool{}}, Event{PointsToAdd: -1})
	if !errors.Is(err, ErrNegativePoints) {
		t.Fatalf("expected ErrNegativePoints, got %v", err)
	}
}

func TestApplyZeroDeltaStillEvaluatesBadges(t *testing.T) {
	state := State{
		Points:                    50,
		OwnedBadges:               map[string]bool{},
		TotalAssignmentsEvaluated: 1,
	}
	result, err := Apply(state, Event{PointsToAdd: 0})
	if err != nil {
		t.Fatal(err)
	}
	if result.Points != 50 {
		t.Fatalf("expected points unchanged, got %d", result.Points)
	}
	names := badgeNames(result.NewBadges)
	if len(names) != 1 || names[0] != "First Evaluation" {
		t.Fatalf("expected First Evaluation on zero delta, got %v", names)
	}
}

func TestBadgesGrantedAtMostOnce(t *testing.T) {
	state := State{
		OwnedBadges:               map[string]bool{"First Evaluation": true},
		TotalAssignmentsEvaluated: 3,
	}
	result, err := Apply(state, Event{PointsToAdd: 15})
	if err != nil {
		t.Fatal(err)
	}
	if len(result.NewBadges) != 0 {
		t.Fatalf("expected no new badges, got %v", badgeNames(result.NewBadges))
	}
}

func TestExcellenceRequiresFiveEvaluations(t *testing.T) {
	// 平均分达标但评测次数不够
	state := State{
		OwnedBadges:               map[string]bool{"First Evaluation": true},
		TotalAssignmentsEvaluated: 4,
		AverageScore:              9.5,
	}
	result, err := Apply(state, Event{PointsToAdd: 19})
	if err != nil {
		t.Fatal(err)
	}
	for _, name := range badgeNames(result.NewBadges) {
		if name == "Excellence" {
			t.Fatal("Excellence granted before 5 evaluations")
		}
	}

	// 第5次评测后达标
	state.TotalAssignmentsEvaluated = 5
	result, err = Apply(state, Event{PointsToAdd: 19})
	if err != nil {
		t.Fatal(err)
	}
	found := false
	for _, name := range badgeNames(result.NewBadges) {
		if name == "Excellence" {
			found = true
		}
	}
	if !found {
		t.Fatalf("expected Excellence badge, got %v", badgeNames(result.NewBadges))
	}
}

func TestMilestoneBadgesBackfill(t *testing.T) {
	// 老数据迁移场景：一次事件补发所有已达成的里程碑
	state := State{
		OwnedBadges:               map[string]bool{},
		TotalAssignmentsEvaluated: 50,
		TotalBlogsPublished:       10,
		AverageScore:              8.2,
	}
	result, err := Apply(state, Event{PointsToAdd: 0})
	if err != nil {
		t.Fatal(err)
	}
	expected := []string{"First Evaluation", "Dedicated Learner", "Writing Master", "Excellence", "First Blog", "Prolific Writer"}
	names := badgeNames(result.NewBadges)
	if len(names) != len(expected) {
		t.Fatalf("expected %d badges, got %v", len(expected), names)
	}
	for i, name := range expected {
		if names[i] != name {
			t.Fatalf("expected badge %q at position %d, got %q", name, i, names[i])
		}
	}
}

func TestLevelForPointsBoundaries(t *testing.T) {
	cases := []struct {
		points int
		level  int
	}{
		{0, 1},
		{99, 1},
		{100, 2},
		{199, 2},
		{200, 3},
		{1000, 11},
	}
	for _, c := range cases {
		if got := LevelForPoints(c.points); got != c.level {
			t.Fatalf("LevelForPoints(%d) = %d, expected %d", c.points, got, c.level)
		}
	}
}

func TestLevelRecomputedFromTotal(t *testing.T) {
	state := State{Points: 95, OwnedBadges: map[string]bool{}}
	result, err := Apply(state, Event{PointsToAdd: 10})
	if err != nil {
		t.Fatal(err)
	}
	if result.Points != 105 {
		t.Fatalf("expected 105 points, got %d", result.Points)
	}
	if result.Level != 2 {
		t.Fatalf("expected level up to 2, got %d", result.Level)
	}
}

func TestRunningAverage(t *testing.T) {
	// 空历史
	if avg := RunningAverage(0, 1, 8); avg != 8 {
		t.Fatalf("expected 8, got %f", avg)
	}
	// 两次评测 8和6 -> 7
	if avg := RunningAverage(8, 2, 6); avg != 7 {
		t.Fatalf("expected 7, got %f", avg)
	}
	// 三次评测 avg7再来9 -> 7.666...
	avg := RunningAverage(7, 3, 9)
	if math.Abs(avg-7.6666666) > 1e-6 {
		t.Fatalf("expected ~7.667, got %f", avg)
	}
	// 非法计数归零
	if avg := RunningAverage(5, 0, 9); avg != 0 {
		t.Fatalf("expected 0 for zero count, got %f", avg)
	}
}
