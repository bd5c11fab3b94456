package domain

import (
	"fmt"
	"strconv"
	"strings"
)

// NumberKind discriminates the episode-number variants the source site
// produces: plain integers, half-episodes/OVAs ("25.5"), unnumbered
// specials, and merged broadcasts ("12 و 13").
type NumberKind int

const (
	NumberNormal NumberKind = iota
	NumberFractional
	NumberSpecial
	NumberMerged
)

// EpisodeNumber is the normalized episode identifier. For merged episodes
// the first (lowest) number is canonical and the remaining numbers are kept
// in Extras; fractional values are preserved as given, never floored.
type EpisodeNumber struct {
	Kind   NumberKind
	Value  float64
	Extras []int
}

func Normal(n int) EpisodeNumber       { return EpisodeNumber{Kind: NumberNormal, Value: float64(n)} }
func Fractional(v float64) EpisodeNumber { return EpisodeNumber{Kind: NumberFractional, Value: v} }
func Special() EpisodeNumber           { return EpisodeNumber{Kind: NumberSpecial} }

func Merged(primary int, extras ...int) EpisodeNumber {
	return EpisodeNumber{Kind: NumberMerged, Value: float64(primary), Extras: extras}
}

// SortValue orders episodes ascending by canonical numeric value. Specials
// sort lowest, before episode 0; one fixed rule, pinned by tests.
func (n EpisodeNumber) SortValue() float64 {
	if n.Kind == NumberSpecial {
		return -1
	}
	return n.Value
}

// Label is the natural key used for de-duplication and storage. Distinct
// labels never collide: "25" and "25.5" are different episodes.
func (n EpisodeNumber) Label() string {
	switch n.Kind {
	case NumberSpecial:
		return "special"
	case NumberFractional:
		return strconv.FormatFloat(n.Value, 'f', -1, 64)
	case NumberMerged:
		parts := []string{strconv.Itoa(int(n.Value))}
		for _, e := range n.Extras {
			parts = append(parts, strconv.Itoa(e))
		}
		return strings.Join(parts, "+")
	default:
		return strconv.Itoa(int(n.Value))
	}
}

// ParseLabel reverses Label, reconstructing the variant from its stored
// form. Unparseable labels come back as Normal 0.
func ParseLabel(label string) EpisodeNumber {
	if label == "special" {
		return Special()
	}
	if strings.Contains(label, "+") {
		parts := strings.Split(label, "+")
		nums := make([]int, 0, len(parts))
		for _, p := range parts {
			if n, err := strconv.Atoi(p); err == nil {
				nums = append(nums, n)
			}
		}
		if len(nums) > 1 {
			return Merged(nums[0], nums[1:]...)
		}
		if len(nums) == 1 {
			return Normal(nums[0])
		}
		return Normal(0)
	}
	if strings.Contains(label, ".") {
		if v, err := strconv.ParseFloat(label, 64); err == nil {
			return Fractional(v)
		}
	}
	if n, err := strconv.Atoi(label); err == nil {
		return Normal(n)
	}
	return Normal(0)
}

func (n EpisodeNumber) String() string {
	if n.Kind == NumberMerged {
		return fmt.Sprintf("episode %s (merged)", n.Label())
	}
	return "episode " + n.Label()
}
