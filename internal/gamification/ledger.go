// Package gamification 实现用户积分、等级与徽章的纯状态机。
// 持久化与并发控制由上层service负责，这里只做确定性的状态转移。
package gamification

import "errors"

var ErrNegativePoints = errors.New("points delta must not be negative")

// PointsPerLevel 每升一级所需积分
const PointsPerLevel = 100

// State 徽章规则读取的全部用户状态快照。
// 计数器（评测数/发布数/平均分）由调用方在加分前更新好一并传入，
// 避免规则读取的数据与加分调用分散在两处。
type State struct {
	Points                    int
	OwnedBadges               map[string]bool
	TotalAssignmentsEvaluated int
	TotalBlogsPublished       int
	AverageScore              float64
}

// Event 一次积分事件。Reason仅用于外部审计日志，状态机不解释。
type Event struct {
	PointsToAdd int
	Reason      string
}

// BadgeGrant 本次新授予的徽章
type BadgeGrant struct {
	Name        string
	Description string
	Icon        string
}

// Result 状态转移输出：新积分、新等级与本次新增的徽章
type Result struct {
	Points    int
	Level     int
	NewBadges []BadgeGrant
}

type badgeRule struct {
	grant     BadgeGrant
	qualifies func(State) bool
}

// 徽章规则表，顺序即授予顺序
var badgeRules = []badgeRule{
	{
		grant: BadgeGrant{Name: "First Evaluation", Description: "Completed your first assignment evaluation", Icon: "🎯"},
		qualifies: func(s State) bool {
			return s.TotalAssignmentsEvaluated >= 1
		},
	},
	{
		grant: BadgeGrant{Name: "Dedicated Learner", Description: "Evaluated 10 assignments", Icon: "📚"},
		qualifies: func(s State) bool {
			return s.TotalAssignmentsEvaluated >= 10
		},
	},
	{
		grant: BadgeGrant{Name: "Writing Master", Description: "Evaluated 50 assignments", Icon: "✨"},
		qualifies: func(s State) bool {
			return s.TotalAssignmentsEvaluated >= 50
		},
	},
	{
		grant: BadgeGrant{Name: "Excellence", Description: "Maintained average score of 8+", Icon: "🏆"},
		qualifies: func(s State) bool {
			return s.AverageScore >= 8 && s.TotalAssignmentsEvaluated >= 5
		},
	},
	{
		grant: BadgeGrant{Name: "First Blog", Description: "Published your first blog", Icon: "✍️"},
		qualifies: func(s State) bool {
			return s.TotalBlogsPublished >= 1
		},
	},
	{
		grant: BadgeGrant{Name: "Prolific Writer", Description: "Published 10 blogs", Icon: "📝"},
		qualifies: func(s State) bool {
			return s.TotalBlogsPublished >= 10
		},
	},
}

// LevelForPoints 等级永远由积分推导，不做增量维护
func LevelForPoints(points int) int {
	return points/PointsPerLevel + 1
}

// RunningAverage 增量平均分：newCount为计入本次后的总次数
func RunningAverage(oldAvg float64, newCount int, newScore float64) float64 {
	if newCount <= 0 {
		return 0
	}
	return (oldAvg*float64(newCount-1) + newScore) / float64(newCount)
}

// Apply 执行一次积分事件：加分、重算等级、按规则表补发徽章。
// 已持有的徽章不会重复授予；delta为0时仍会重新评估等级与徽章。
func Apply(state State, event Event) (Result, error) {
	if event.PointsToAdd < 0 {
		return Result{}, ErrNegativePoints
	}

	newPoints := state.Points + event.PointsToAdd

	var granted []BadgeGrant
	for _, rule := range badgeRules {
		if state.OwnedBadges[rule.grant.Name] {
			continue
		}
		if rule.qualifies(state) {
			granted = append(granted, rule.grant)
		}
	}

	return Result{
		Points:    newPoints,
		Level:     LevelForPoints(newPoints),
		NewBadges: granted,
	}, nil
}
