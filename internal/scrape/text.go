package scrape

import (
	"regexp"
	"strconv"
	"strings"
)

var (
	digitRun       = regexp.MustCompile(`(\d+)`)
	titlePrefix    = regexp.MustCompile(`(?i)^\s*(فيلم|انمي|مسلسل|anime|film|movie|series)\s+`)
	titleSuffix    = regexp.MustCompile(`(?i)\s+(مترجم|اون\s*لاين|اونلاين|online|مترجمة|مدبلج|مدبلجة)(\s+|$)`)
	yearRun        = regexp.MustCompile(`(\d{4})`)
	letterVariants = strings.NewReplacer("ي", "ى", "أ", "ا", "إ", "ا")
)

// Arabic ordinal words, first through tenth, with and without the definite
// article. Keys are matched after letter-variant normalization.
var arabicOrdinals = []struct {
	word string
	n    int
}{
	{"الاول", 1},
	{"الثانى", 2}, {"ثانى", 2},
	{"الثالث", 3}, {"ثالث", 3},
	{"الرابع", 4}, {"رابع", 4},
	{"الخامس", 5}, {"خامس", 5},
	{"السادس", 6}, {"سادس", 6},
	{"السابع", 7}, {"سابع", 7},
	{"الثامن", 8}, {"ثامن", 8},
	{"التاسع", 9}, {"تاسع", 9},
	{"العاشر", 10}, {"عاشر", 10},
}

// CleanTitle strips the category-word prefix and qualifier suffixes from a
// display title, collapses whitespace, and trims stray punctuation. It is
// idempotent: cleaning a cleaned title changes nothing.
func CleanTitle(title string) string {
	if title == "" {
		return title
	}
	cleaned := titlePrefix.ReplaceAllString(title, "")
	for {
		next := titleSuffix.ReplaceAllString(cleaned, " ")
		if next == cleaned {
			break
		}
		cleaned = next
	}
	cleaned = strings.Join(strings.Fields(cleaned), " ")
	return strings.Trim(cleaned, " -–—|:،؛")
}

// ExtractNumber returns the first decimal digit run in text, falling back
// to the Arabic ordinal table after letter-variant normalization. Returns
// -1 when nothing matches; absence is a valid outcome, not an error.
func ExtractNumber(text string) int {
	if text == "" {
		return -1
	}
	if m := digitRun.FindString(text); m != "" {
		if n, err := strconv.Atoi(m); err == nil {
			return n
		}
	}
	normalized := letterVariants.Replace(strings.TrimSpace(text))
	for _, ord := range arabicOrdinals {
		if strings.Contains(normalized, ord.word) {
			return ord.n
		}
	}
	return -1
}

// ExtractYear returns the first 4-digit run in text, or nil.
func ExtractYear(text string) *int {
	if m := yearRun.FindString(text); m != "" {
		if n, err := strconv.Atoi(m); err == nil {
			return &n
		}
	}
	return nil
}
