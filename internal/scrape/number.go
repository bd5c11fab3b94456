package scrape

import (
	"regexp"
	"strconv"

	"github.com/topcine/topcinedb/internal/domain"
)

var (
	episodeMarker  = regexp.MustCompile(`(?i)(?:الحلقة|Episode)\s*(\d+)`)
	specialMarker  = regexp.MustCompile(`(?i)(?:الحلقة|Episode)\s*(?:الخاصة|الخاصه|Special)`)
	mergedMarker   = regexp.MustCompile(`(?i)(?:الحلقة|Episode)\s*(\d+)\s*(?:و|&|and)\s*(\d+)`)
	fractionalRun  = regexp.MustCompile(`(\d+\.\d+)`)
)

// ParseEpisodeNumber normalizes the episode-number token of an anchor from
// its title attribute and visible text, in priority order: special marker,
// merged range ("12 و 13"), fractional ("25.5"), explicit episode marker,
// then any number or Arabic ordinal. Merged episodes keep the lowest number
// as canonical with the rest retained; fractional numbers are preserved as
// given. ok is false only when no number of any kind can be determined —
// the single legitimate drop case.
func ParseEpisodeNumber(title, text string) (num domain.EpisodeNumber, ok bool) {
	for _, s := range []string{title, text} {
		if s == "" {
			continue
		}
		if specialMarker.MatchString(s) {
			return domain.Special(), true
		}
		if m := mergedMarker.FindStringSubmatch(s); m != nil {
			first, err1 := strconv.Atoi(m[1])
			second, err2 := strconv.Atoi(m[2])
			if err1 == nil && err2 == nil {
				if second < first {
					first, second = second, first
				}
				return domain.Merged(first, second), true
			}
		}
		if m := fractionalRun.FindStringSubmatch(s); m != nil {
			if v, err := strconv.ParseFloat(m[1], 64); err == nil {
				return domain.Fractional(v), true
			}
		}
		if m := episodeMarker.FindStringSubmatch(s); m != nil {
			if n, err := strconv.Atoi(m[1]); err == nil {
				return domain.Normal(n), true
			}
		}
	}
	for _, s := range []string{title, text} {
		if n := ExtractNumber(s); n >= 0 {
			return domain.Normal(n), true
		}
	}
	return domain.EpisodeNumber{}, false
}
