package lang

import "testing"

func TestIsRTL(t *testing.T) {
	tests := []struct {
		name     string
		text     string
		expected bool
	}{
		{"empty string", "", false},
		{"english question", "What are the requirements for premium residency?", false},
		{"urdu question", "اقامہ کی تجدید کا طریقہ کار کیا ہے؟", true},
		{"mixed script", "Iqama کی تجدید", true},
		{"single arabic letter", "ا", true},
		{"digits and punctuation", "1234 !?", false},
		{"latin with diacritics", "café naïve", false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := IsRTL(tt.text); got != tt.expected {
				t.Errorf("IsRTL(%q) = %v, want %v", tt.text, got, tt.expected)
			}
		})
	}
}
