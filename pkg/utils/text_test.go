package utils

import (
	"math"
	"testing"
	"unicode/utf8"
)

func TestTruncate(t *testing.T) {
	tests := []struct {
		name     string
		s        string
		maxLen   int
		expected string
	}{
		{"short string unchanged", "hello", 10, "hello"},
		{"exact length unchanged", "hello", 5, "hello"},
		{"long string truncated", "hello world", 5, "hello..."},
		{"zero maxLen unchanged", "hello", 0, "hello"},
		{"negative maxLen unchanged", "hello", -1, "hello"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Truncate(tt.s, tt.maxLen); got != tt.expected {
				t.Errorf("Truncate(%q, %d) = %q, want %q", tt.s, tt.maxLen, got, tt.expected)
			}
		})
	}
}

func TestTruncateRunes_urdu(t *testing.T) {
	urdu := "اقامہ کی تجدید کا طریقہ کار"
	got := TruncateRunes(urdu, 10)
	if !utf8.ValidString(got) {
		t.Errorf("truncated string is not valid UTF-8: %q", got)
	}
	runes := []rune(got)
	// 10 runes plus the three-dot marker
	if len(runes) != 13 {
		t.Errorf("expected 13 runes, got %d", len(runes))
	}
}

func TestTruncateRunes_shortUnchanged(t *testing.T) {
	if got := TruncateRunes("short", 200); got != "short" {
		t.Errorf("TruncateRunes = %q", got)
	}
}

func TestCollapseWhitespace(t *testing.T) {
	tests := []struct {
		in       string
		expected string
	}{
		{"  a  b  ", "a b"},
		{"a\n\nb\tc", "a b c"},
		{"", ""},
		{"single", "single"},
	}
	for _, tt := range tests {
		if got := CollapseWhitespace(tt.in); got != tt.expected {
			t.Errorf("CollapseWhitespace(%q) = %q, want %q", tt.in, got, tt.expected)
		}
	}
}

func TestNormalizeL2(t *testing.T) {
	v := []float32{3, 4}
	NormalizeL2(v)
	var sum float64
	for _, x := range v {
		sum += float64(x) * float64(x)
	}
	if math.Abs(sum-1.0) > 1e-6 {
		t.Errorf("norm squared = %f, want 1.0", sum)
	}

	zero := []float32{0, 0, 0}
	NormalizeL2(zero)
	for _, x := range zero {
		if x != 0 {
			t.Errorf("zero vector should stay zero, got %v", zero)
		}
	}
}
