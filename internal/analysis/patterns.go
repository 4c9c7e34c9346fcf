package analysis

import "regexp"

// Rule 单条检测规则，ID用于规则集演进时的追踪
type Rule struct {
	ID       string
	Category string
	Pattern  *regexp.Regexp
}

// RuleSet 检测规则集。规则作为数据与打分公式解耦，
// 调整措辞列表不需要动评分逻辑。
type RuleSet struct {
	Version         string
	AIPatterns      []Rule
	FillerPatterns  []Rule
	OpeningPatterns []Rule
}

const (
	CategoryAIPhrase       = "ai_phrase"
	CategoryFiller         = "filler"
	CategoryGenericOpening = "generic_opening"
)

func aiRule(id, expr string) Rule {
	return Rule{ID: id, Category: CategoryAIPhrase, Pattern: regexp.MustCompile("(?i)" + expr)}
}

func fillerRule(id, expr string) Rule {
	return Rule{ID: id, Category: CategoryFiller, Pattern: regexp.MustCompile("(?i)" + expr)}
}

func openingRule(id, expr string) Rule {
	return Rule{ID: id, Category: CategoryGenericOpening, Pattern: regexp.MustCompile("(?i)" + expr)}
}

// DefaultRuleSet 默认规则集，阈值与措辞列表沿用线上校准值
func DefaultRuleSet() *RuleSet {
	return &RuleSet{
		Version: "v1",
		AIPatterns: []Rule{
			aiRule("in_conclusion", `in conclusion,?\s`),
			aiRule("important_to_note", `it is important to note that`),
			aiRule("worth_noting", `it's worth noting that`),
			aiRule("in_todays", `in today's (world|society|age)`),
			aiRule("end_of_day", `at the end of the day`),
			aiRule("when_it_comes", `when it comes to`),
			aiRule("in_this_piece", `in this (article|essay|blog)`),
			aiRule("first_foremost", `first and foremost`),
			aiRule("last_not_least", `last but not least`),
			aiRule("crucial_role", `plays a (crucial|vital|important|key) role`),
			aiRule("in_order_to", `in order to`),
			aiRule("due_to_fact", `due to the fact that`),
			aiRule("goes_without_saying", `it goes without saying`),
			aiRule("needless_to_say", `needless to say`),
			aiRule("as_we_all_know", `as we all know`),
			aiRule("modern_era", `in the (modern|digital) (era|age)`),
			aiRule("increasingly", `has become increasingly`),
			aiRule("widely_known", `it is (widely|generally) (known|accepted)`),
			aiRule("one_of_most", `one of the most (important|significant)`),
			aiRule("many_ways", `there are (many|several|numerous) (ways|reasons|factors)`),
		},
		FillerPatterns: []Rule{
			fillerRule("very", `very\s+\w+`),
			fillerRule("really", `really\s+\w+`),
			fillerRule("basically", `basically`),
			fillerRule("actually", `actually`),
			fillerRule("literally", `literally`),
			fillerRule("obviously", `obviously`),
			fillerRule("clearly", `clearly`),
			fillerRule("simply_put", `simply put`),
			fillerRule("to_be_honest", `to be honest`),
			fillerRule("in_my_opinion", `in my opinion`),
		},
		OpeningPatterns: []Rule{
			openingRule("this_essay_will", `^(this|the) (essay|article|paper|blog) (will|is going to)`),
			openingRule("in_this_essay", `^in this (essay|article|paper|blog)`),
			openingRule("throughout_history", `^throughout history`),
			openingRule("dawn_of_time", `^since the (beginning|dawn) of time`),
			openingRule("according_to", `^according to`),
		},
	}
}
