package analysis

import (
	"regexp"
	"strconv"
	"strings"
)

// AIDetection AI措辞密度检测结果
type AIDetection struct {
	AILikelihood  string   `json:"aiLikelihood"`
	PatternsFound []string `json:"patternsFound"`
	MatchCount    int      `json:"matchCount"`
	Assessment    string   `json:"assessment"`
}

// FillerAnalysis 口水词检测结果
type FillerAnalysis struct {
	FillerPercentage string   `json:"fillerPercentage"`
	FillersFound     []string `json:"fillersFound"`
	MatchCount       int      `json:"matchCount"`
	Assessment       string   `json:"assessment"`
}

// PlagiarismIndicators 句子重复与套话开头检测结果
type PlagiarismIndicators struct {
	RepetitionPercentage string   `json:"repetitionPercentage"`
	DuplicateSentences   int      `json:"duplicateSentences"`
	HasGenericOpening    bool     `json:"hasGenericOpening"`
	PlagiarismRisk       string   `json:"plagiarismRisk"`
	Suggestions          []string `json:"suggestions"`
}

// ContentAnalysisResult 三项子分析的组合结果
type ContentAnalysisResult struct {
	AIDetection          AIDetection          `json:"aiDetection"`
	FillerAnalysis       FillerAnalysis       `json:"fillerAnalysis"`
	PlagiarismIndicators PlagiarismIndicators `json:"plagiarismIndicators"`
}

// Analyzer 基于规则集的文本启发式分析器。无状态，可并发使用。
type Analyzer struct {
	rules *RuleSet
}

func New() *Analyzer {
	return &Analyzer{rules: DefaultRuleSet()}
}

func NewWithRules(rules *RuleSet) *Analyzer {
	return &Analyzer{rules: rules}
}

var sentenceSplit = regexp.MustCompile(`[.!?]+`)

// AnalyzeContent 对文本执行全部三项启发式分析。
// 纯函数：同一输入必然得到同一输出，空文本返回全零结果。
func (a *Analyzer) AnalyzeContent(text string) ContentAnalysisResult {
	return ContentAnalysisResult{
		AIDetection:          a.DetectAIPatterns(text),
		FillerAnalysis:       a.DetectFillerWords(text),
		PlagiarismIndicators: a.DetectPlagiarismIndicators(text),
	}
}

// DetectAIPatterns 统计AI常见措辞的命中密度
func (a *Analyzer) DetectAIPatterns(text string) AIDetection {
	matches, total := collectMatches(a.rules.AIPatterns, text)
	wordCount := len(strings.Fields(text))

	likelihood := 0.0
	if wordCount > 0 {
		likelihood = float64(total) / (float64(wordCount) / 100.0) * 10.0
		if likelihood > 100 {
			likelihood = 100
		}
	}

	assessment := "Low AI indicators - likely human-written"
	if likelihood > 50 {
		assessment = "High likelihood of AI generation"
	} else if likelihood > 25 {
		assessment = "Moderate AI indicators detected"
	}

	return AIDetection{
		AILikelihood:  strconv.FormatFloat(likelihood, 'f', 1, 64),
		PatternsFound: matches,
		MatchCount:    total,
		Assessment:    assessment,
	}
}

// DetectFillerWords 统计语气词、程度副词等口水词占比
func (a *Analyzer) DetectFillerWords(text string) FillerAnalysis {
	matches, total := collectMatches(a.rules.FillerPatterns, text)
	wordCount := len(strings.Fields(text))

	percentage := 0.0
	if wordCount > 0 {
		percentage = float64(total) / float64(wordCount) * 100.0
	}

	assessment := "Good - minimal filler words"
	if percentage > 5 {
		assessment = "High filler word usage - consider removing"
	} else if percentage > 2 {
		assessment = "Moderate filler words detected"
	}

	return FillerAnalysis{
		FillerPercentage: strconv.FormatFloat(percentage, 'f', 2, 64),
		FillersFound:     matches,
		MatchCount:       total,
		Assessment:       assessment,
	}
}

// DetectPlagiarismIndicators 检测句内重复与套话开头。
// 重复率基于句子级别：按[.!?]+切句，忽略trim后不超过10字符的短句。
func (a *Analyzer) DetectPlagiarismIndicators(text string) PlagiarismIndicators {
	var sentences []string
	for _, s := range sentenceSplit.Split(text, -1) {
		if len(strings.TrimSpace(s)) > 10 {
			sentences = append(sentences, s)
		}
	}

	unique := make(map[string]struct{}, len(sentences))
	for _, s := range sentences {
		unique[strings.ToLower(strings.TrimSpace(s))] = struct{}{}
	}

	duplicates := len(sentences) - len(unique)
	ratio := 0.0
	if len(sentences) > 0 {
		ratio = float64(duplicates) / float64(len(sentences)) * 100.0
	}

	trimmed := strings.TrimSpace(text)
	hasGenericOpening := false
	for _, rule := range a.rules.OpeningPatterns {
		if rule.Pattern.MatchString(trimmed) {
			hasGenericOpening = true
			break
		}
	}

	risk := "Low"
	if ratio > 20 {
		risk = "High"
	} else if ratio > 10 {
		risk = "Medium"
	}

	suggestions := []string{}
	if ratio > 10 {
		suggestions = append(suggestions, "Consider varying your sentence structure")
	}
	if hasGenericOpening {
		suggestions = append(suggestions, "Consider a more unique opening line")
	}

	return PlagiarismIndicators{
		RepetitionPercentage: strconv.FormatFloat(ratio, 'f', 2, 64),
		DuplicateSentences:   duplicates,
		HasGenericOpening:    hasGenericOpening,
		PlagiarismRisk:       risk,
		Suggestions:          suggestions,
	}
}

// collectMatches 汇总所有规则命中的原文片段，去重但保留首现顺序
func collectMatches(rules []Rule, text string) ([]string, int) {
	found := []string{}
	seen := make(map[string]struct{})
	total := 0

	for _, rule := range rules {
		hits := rule.Pattern.FindAllString(text, -1)
		total += len(hits)
		for _, h := range hits {
			if _, ok := seen[h]; !ok {
				seen[h] = struct{}{}
				found = append(found, h)
			}
		}
	}

	return found, total
}
