package analysis

import (
	"reflect"
	"strings"
	"testing"
)

// 构造恰好n个词的文本，开头放上prefix，其余补中性词
func textWithWords(prefix string, n int) string {
	words := strings.Fields(prefix)
	for len(words) < n {
		words = append(words, "tree")
	}
	return strings.Join(words, " ")
}

func TestAnalyzeContentEmptyInput(t *testing.T) {
	a := New()
	result := a.AnalyzeContent("")

	if result.AIDetection.AILikelihood != "0.0" {
		t.Fatalf("expected likelihood 0.0, got %s", result.AIDetection.AILikelihood)
	}
	if result.AIDetection.MatchCount != 0 {
		t.Fatalf("expected 0 matches, got %d", result.AIDetection.MatchCount)
	}
	if result.AIDetection.Assessment != "Low AI indicators - likely human-written" {
		t.Fatalf("unexpected assessment: %s", result.AIDetection.Assessment)
	}
	if result.FillerAnalysis.FillerPercentage != "0.00" {
		t.Fatalf("expected filler 0.00, got %s", result.FillerAnalysis.FillerPercentage)
	}
	if result.PlagiarismIndicators.RepetitionPercentage != "0.00" {
		t.Fatalf("expected repetition 0.00, got %s", result.PlagiarismIndicators.RepetitionPercentage)
	}
	if result.PlagiarismIndicators.DuplicateSentences != 0 {
		t.Fatalf("expected 0 duplicates, got %d", result.PlagiarismIndicators.DuplicateSentences)
	}
	if result.PlagiarismIndicators.PlagiarismRisk != "Low" {
		t.Fatalf("expected Low risk, got %s", result.PlagiarismIndicators.PlagiarismRisk)
	}
	if result.PlagiarismIndicators.Suggestions == nil || len(result.PlagiarismIndicators.Suggestions) != 0 {
		t.Fatalf("expected empty non-nil suggestions, got %#v", result.PlagiarismIndicators.Suggestions)
	}
}

func TestAnalyzeContentDeterministic(t *testing.T) {
	a := New()
	text := "In conclusion, it is important to note that trees grow. Basically this is very interesting."

	first := a.AnalyzeContent(text)
	second := a.AnalyzeContent(text)
	if !reflect.DeepEqual(first, second) {
		t.Fatalf("same input produced different results:\n%#v\n%#v", first, second)
	}
}

func TestDetectAIPatternsLikelihoodFormula(t *testing.T) {
	a := New()

	// 100词里1个命中: 1/(100/100)*10 = 10.0
	text := textWithWords("in order to", 100)
	result := a.DetectAIPatterns(text)

	if result.MatchCount != 1 {
		t.Fatalf("expected 1 match, got %d", result.MatchCount)
	}
	if result.AILikelihood != "10.0" {
		t.Fatalf("expected likelihood 10.0, got %s", result.AILikelihood)
	}
	if result.Assessment != "Low AI indicators - likely human-written" {
		t.Fatalf("unexpected assessment: %s", result.Assessment)
	}
	if len(result.PatternsFound) != 1 || result.PatternsFound[0] != "in order to" {
		t.Fatalf("unexpected patterns: %#v", result.PatternsFound)
	}
}

func TestDetectAIPatternsModerate(t *testing.T) {
	a := New()

	// 100词里3个命中: 30.0 -> Moderate
	text := textWithWords("in order to first and foremost last but not least", 100)
	result := a.DetectAIPatterns(text)

	if result.MatchCount != 3 {
		t.Fatalf("expected 3 matches, got %d", result.MatchCount)
	}
	if result.AILikelihood != "30.0" {
		t.Fatalf("expected likelihood 30.0, got %s", result.AILikelihood)
	}
	if result.Assessment != "Moderate AI indicators detected" {
		t.Fatalf("unexpected assessment: %s", result.Assessment)
	}
}

func TestDetectAIPatternsClampedAt100(t *testing.T) {
	a := New()

	// 12词里4个命中: 4/(12/100)*10 = 333 -> 封顶100
	text := "in order to in order to in order to in order to"
	result := a.DetectAIPatterns(text)

	if result.MatchCount != 4 {
		t.Fatalf("expected 4 matches, got %d", result.MatchCount)
	}
	if result.AILikelihood != "100.0" {
		t.Fatalf("expected likelihood capped at 100.0, got %s", result.AILikelihood)
	}
	if result.Assessment != "High likelihood of AI generation" {
		t.Fatalf("unexpected assessment: %s", result.Assessment)
	}
}

func TestDetectFillerWordsThresholds(t *testing.T) {
	a := New()

	// 无口水词
	clean := a.DetectFillerWords(textWithWords("", 20))
	if clean.FillerPercentage != "0.00" || clean.Assessment != "Good - minimal filler words" {
		t.Fatalf("unexpected clean result: %#v", clean)
	}

	// 50词2个命中: 4.00% -> Moderate
	moderate := a.DetectFillerWords(textWithWords("basically actually", 50))
	if moderate.MatchCount != 2 {
		t.Fatalf("expected 2 matches, got %d", moderate.MatchCount)
	}
	if moderate.FillerPercentage != "4.00" {
		t.Fatalf("expected 4.00, got %s", moderate.FillerPercentage)
	}
	if moderate.Assessment != "Moderate filler words detected" {
		t.Fatalf("unexpected assessment: %s", moderate.Assessment)
	}

	// 10词1个命中: 10.00% -> High
	high := a.DetectFillerWords(textWithWords("basically", 10))
	if high.FillerPercentage != "10.00" {
		t.Fatalf("expected 10.00, got %s", high.FillerPercentage)
	}
	if high.Assessment != "High filler word usage - consider removing" {
		t.Fatalf("unexpected assessment: %s", high.Assessment)
	}
}

func TestDetectPlagiarismRepetition(t *testing.T) {
	a := New()

	// 4句里1句重复: 25.00% -> High
	text := "The quick brown fox jumps over the fence. The quick brown fox jumps over the fence. " +
		"A wholly different sentence sits here. Another unique sentence follows right now."
	result := a.DetectPlagiarismIndicators(text)

	if result.DuplicateSentences != 1 {
		t.Fatalf("expected 1 duplicate, got %d", result.DuplicateSentences)
	}
	if result.RepetitionPercentage != "25.00" {
		t.Fatalf("expected 25.00, got %s", result.RepetitionPercentage)
	}
	if result.PlagiarismRisk != "High" {
		t.Fatalf("expected High risk, got %s", result.PlagiarismRisk)
	}
	if len(result.Suggestions) != 1 || result.Suggestions[0] != "Consider varying your sentence structure" {
		t.Fatalf("unexpected suggestions: %#v", result.Suggestions)
	}
}

func TestDetectPlagiarismMediumRisk(t *testing.T) {
	a := New()

	// 8句里1句重复: 12.50% -> Medium
	var sentences []string
	for i := 0; i < 7; i++ {
		sentences = append(sentences, "Sentence number "+strings.Repeat("x", i+1)+" stands alone here.")
	}
	sentences = append(sentences, sentences[0])
	result := a.DetectPlagiarismIndicators(strings.Join(sentences, " "))

	if result.RepetitionPercentage != "12.50" {
		t.Fatalf("expected 12.50, got %s", result.RepetitionPercentage)
	}
	if result.PlagiarismRisk != "Medium" {
		t.Fatalf("expected Medium risk, got %s", result.PlagiarismRisk)
	}
}

func TestDetectPlagiarismIgnoresShortSentences(t *testing.T) {
	a := New()

	result := a.DetectPlagiarismIndicators("Hi. No. Ok. The quick brown fox jumps over the lazy dog once.")
	if result.DuplicateSentences != 0 {
		t.Fatalf("expected 0 duplicates, got %d", result.DuplicateSentences)
	}
	if result.RepetitionPercentage != "0.00" {
		t.Fatalf("expected 0.00, got %s", result.RepetitionPercentage)
	}
}

func TestDetectPlagiarismGenericOpening(t *testing.T) {
	a := New()

	result := a.DetectPlagiarismIndicators("This essay will explore the role of art in society. It continues with more detail afterwards.")
	if !result.HasGenericOpening {
		t.Fatal("expected generic opening to be detected")
	}
	if len(result.Suggestions) != 1 || result.Suggestions[0] != "Consider a more unique opening line" {
		t.Fatalf("unexpected suggestions: %#v", result.Suggestions)
	}

	// 同一句式出现在中间不算套话开头
	middle := a.DetectPlagiarismIndicators("Art matters a great deal to people. This essay will explore the role of art in society.")
	if middle.HasGenericOpening {
		t.Fatal("opening pattern in the middle should not count")
	}
}

func TestSuggestionsOrdering(t *testing.T) {
	a := New()

	// 重复率和套话开头同时命中时，句式建议在前
	text := "According to many published studies trees matter. According to many published studies trees matter. " +
		"A wholly different sentence sits here for padding."
	result := a.DetectPlagiarismIndicators(text)

	if len(result.Suggestions) != 2 {
		t.Fatalf("expected 2 suggestions, got %#v", result.Suggestions)
	}
	if result.Suggestions[0] != "Consider varying your sentence structure" {
		t.Fatalf("unexpected first suggestion: %s", result.Suggestions[0])
	}
	if result.Suggestions[1] != "Consider a more unique opening line" {
		t.Fatalf("unexpected second suggestion: %s", result.Suggestions[1])
	}
}

func TestCollectMatchesDedupsPreservingOrder(t *testing.T) {
	a := New()

	result := a.DetectAIPatterns("In order to win, in order to try. First and foremost we act.")
	// "In order to"和"in order to"大小写不同，是两个不同的片段
	if result.MatchCount != 3 {
		t.Fatalf("expected 3 matches, got %d", result.MatchCount)
	}
	if len(result.PatternsFound) != 3 {
		t.Fatalf("expected 3 distinct patterns, got %#v", result.PatternsFound)
	}
}

func TestCaseInsensitiveMatching(t *testing.T) {
	a := New()

	result := a.DetectAIPatterns("IN CONCLUSION, everything has been said already today.")
	if result.MatchCount != 1 {
		t.Fatalf("expected case-insensitive match, got %d", result.MatchCount)
	}
}
