package util

import "testing"

func TestCleanText(t *testing.T) {
	cases := []struct {
		name string
		in   string
		want string
	}{
		{"empty", "", ""},
		{"collapses spaces", "a   b\t\tc", "a b c"},
		{"normalizes crlf", "line one\r\nline two\rline three", "line one\nline two\nline three"},
		{"caps blank lines", "p1\n\n\n\n\np2", "p1\n\np2"},
		{"strips control chars", "a\x00b\x07c", "abc"},
		{"trims edges", "  hello  ", "hello"},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			if got := CleanText(c.in); got != c.want {
				t.Fatalf("CleanText(%q) = %q, want %q", c.in, got, c.want)
			}
		})
	}
}

func TestWordCount(t *testing.T) {
	if got := WordCount(""); got != 0 {
		t.Fatalf("expected 0 for empty text, got %d", got)
	}
	if got := WordCount("   "); got != 0 {
		t.Fatalf("expected 0 for whitespace, got %d", got)
	}
	if got := WordCount("one two  three\nfour"); got != 4 {
		t.Fatalf("expected 4, got %d", got)
	}
}

func TestSentenceCount(t *testing.T) {
	if got := SentenceCount("First. Second! Third?"); got != 3 {
		t.Fatalf("expected 3, got %d", got)
	}
	// 连续标点算一个分隔
	if got := SentenceCount("Wait... what?!"); got != 2 {
		t.Fatalf("expected 2, got %d", got)
	}
	if got := SentenceCount(""); got != 0 {
		t.Fatalf("expected 0, got %d", got)
	}
}

func TestParagraphCount(t *testing.T) {
	if got := ParagraphCount("single paragraph with lines\nstill same paragraph"); got != 1 {
		t.Fatalf("expected 1, got %d", got)
	}
	if got := ParagraphCount("para one\n\npara two\n\npara three"); got != 3 {
		t.Fatalf("expected 3, got %d", got)
	}
}

func TestGetTextStats(t *testing.T) {
	stats := GetTextStats("Hello world. Second sentence here.\n\nNew paragraph now.")
	if stats.WordCount != 8 {
		t.Fatalf("expected 8 words, got %d", stats.WordCount)
	}
	if stats.SentenceCount != 3 {
		t.Fatalf("expected 3 sentences, got %d", stats.SentenceCount)
	}
	if stats.ParagraphCount != 2 {
		t.Fatalf("expected 2 paragraphs, got %d", stats.ParagraphCount)
	}
}
