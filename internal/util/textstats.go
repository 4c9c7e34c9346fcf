package util

import (
	"essayeval_backend/internal/model"
	"regexp"
	"strings"
)

var (
	multiSpace   = regexp.MustCompile(`[ \t]+`)
	controlChars = regexp.MustCompile("[\x00-\x08\x0B\x0C\x0E-\x1F\x7F]")
	multiNewline = regexp.MustCompile(`\n{3,}`)
	sentenceEnd  = regexp.MustCompile(`[.!?]+`)
	paragraphGap = regexp.MustCompile(`\n\n+`)
)

// CleanText 规范化提取出的文本：去控制字符、压缩空白、规整换行
func CleanText(text string) string {
	if text == "" {
		return ""
	}
	text = controlChars.ReplaceAllString(text, "")
	text = strings.ReplaceAll(text, "\r\n", "\n")
	text = strings.ReplaceAll(text, "\r", "\n")
	text = multiSpace.ReplaceAllString(text, " ")
	text = multiNewline.ReplaceAllString(text, "\n\n")
	return strings.TrimSpace(text)
}

func WordCount(text string) int {
	return len(strings.Fields(text))
}

func SentenceCount(text string) int {
	count := 0
	for _, s := range sentenceEnd.Split(text, -1) {
		if strings.TrimSpace(s) != "" {
			count++
		}
	}
	return count
}

func ParagraphCount(text string) int {
	count := 0
	for _, p := range paragraphGap.Split(text, -1) {
		if strings.TrimSpace(p) != "" {
			count++
		}
	}
	return count
}

// GetTextStats 汇总文本基本统计，入参应为CleanText处理后的文本
func GetTextStats(text string) model.TextStats {
	return model.TextStats{
		WordCount:      WordCount(text),
		CharacterCount: len(text),
		SentenceCount:  SentenceCount(text),
		ParagraphCount: ParagraphCount(text),
	}
}
