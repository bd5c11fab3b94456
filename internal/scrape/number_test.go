package scrape

import (
	"testing"

	"github.com/topcine/topcinedb/internal/domain"
)

func TestParseEpisodeNumber(t *testing.T) {
	tests := []struct {
		name      string
		title     string
		text      string
		wantLabel string
		wantOK    bool
	}{
		{"episode marker", "الحلقة 5", "", "5", true},
		{"english episode marker", "Episode 12", "", "12", true},
		{"marker in text only", "", "مشاهدة الحلقة 7", "7", true},
		{"special", "الحلقة الخاصة", "", "special", true},
		{"english special", "Episode Special", "", "special", true},
		{"merged ascending", "الحلقة 12 و 13", "", "12+13", true},
		{"merged given descending", "الحلقة 13 و 12", "", "12+13", true},
		{"merged english", "Episode 12 and 13", "", "12+13", true},
		{"fractional", "الحلقة 25.5", "", "25.5", true},
		{"fractional not merged", "الحلقة 13.5", "", "13.5", true},
		{"bare number fallback", "", "5", "5", true},
		{"arabic ordinal fallback", "الحلقة الثانية", "", "2", true},
		{"episode zero", "الحلقة 0", "", "0", true},
		{"nothing numeric", "مشاهدة", "next", "", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			num, ok := ParseEpisodeNumber(tt.title, tt.text)
			if ok != tt.wantOK {
				t.Fatalf("ParseEpisodeNumber(%q, %q) ok = %v, want %v", tt.title, tt.text, ok, tt.wantOK)
			}
			if !ok {
				return
			}
			if num.Label() != tt.wantLabel {
				t.Errorf("ParseEpisodeNumber(%q, %q) = %q, want %q", tt.title, tt.text, num.Label(), tt.wantLabel)
			}
		})
	}
}

func TestParseEpisodeNumberMergedKeepsBoth(t *testing.T) {
	num, ok := ParseEpisodeNumber("الحلقة 13 و 12", "")
	if !ok {
		t.Fatal("expected ok")
	}
	if num.Kind != domain.NumberMerged {
		t.Fatalf("Kind = %v, want merged", num.Kind)
	}
	if num.SortValue() != 12 {
		t.Errorf("SortValue() = %v, want 12", num.SortValue())
	}
	if len(num.Extras) != 1 || num.Extras[0] != 13 {
		t.Errorf("Extras = %v, want [13]", num.Extras)
	}
}

func TestParseEpisodeNumberTitleBeatsText(t *testing.T) {
	num, ok := ParseEpisodeNumber("الحلقة 5", "الحلقة 9")
	if !ok || num.Label() != "5" {
		t.Errorf("got %q ok=%v, want 5", num.Label(), ok)
	}
}
