package risk

import (
	"fmt"
	"strings"
)

// Level is an ordinal risk classification. Higher is riskier.
type Level int

const (
	Safe Level = iota
	Moderate
	Dangerous
	Severe
)

var levelNames = [...]string{"SAFE", "MODERATE", "DANGEROUS", "SEVERE"}

// String returns the upper-case level name
func (l Level) String() string {
	if l < Safe || l > Severe {
		return fmt.Sprintf("Level(%d)", int(l))
	}
	return levelNames[l]
}

// MarshalText encodes the level by name
func (l Level) MarshalText() ([]byte, error) {
	if l < Safe || l > Severe {
		return nil, fmt.Errorf("unknown risk level %d", int(l))
	}
	return []byte(levelNames[l]), nil
}

// UnmarshalText decodes a level name (case-insensitive)
func (l *Level) UnmarshalText(text []byte) error {
	name := strings.ToUpper(strings.TrimSpace(string(text)))
	for i, n := range levelNames {
		if n == name {
			*l = Level(i)
			return nil
		}
	}
	return fmt.Errorf("unknown risk level %q", string(text))
}

// Counts holds per-dimension hit counts for one query
type Counts struct {
	Spatial    int `json:"spatial"`
	SameHour   int `json:"same_hour"`
	SameSeason int `json:"same_season"`
}

// Total sums the dimensions. A record matching several dimensions counts once per dimension.
func (c Counts) Total() int {
	return c.Spatial + c.SameHour + c.SameSeason
}

// Thresholds holds the classification cutoffs.
// Severe is strict (total > SevereAbove); the others are inclusive.
type Thresholds struct {
	SevereAbove      int `yaml:"severe_above" json:"severe_above" validate:"gte=0"`
	DangerousAtLeast int `yaml:"dangerous_at_least" json:"dangerous_at_least" validate:"gte=1"`
	ModerateAtLeast  int `yaml:"moderate_at_least" json:"moderate_at_least" validate:"gte=1"`
}

// DefaultThresholds returns the cutoffs used by the field deployment:
// total > 5 SEVERE, >= 2 DANGEROUS, >= 1 MODERATE
func DefaultThresholds() Thresholds {
	return Thresholds{
		SevereAbove:      5,
		DangerousAtLeast: 2,
		ModerateAtLeast:  1,
	}
}

// Validate checks that the cutoffs are ordered
func (t Thresholds) Validate() error {
	if t.ModerateAtLeast < 1 {
		return fmt.Errorf("moderate threshold must be at least 1, got %d", t.ModerateAtLeast)
	}
	if t.DangerousAtLeast < t.ModerateAtLeast {
		return fmt.Errorf("dangerous threshold %d below moderate threshold %d", t.DangerousAtLeast, t.ModerateAtLeast)
	}
	if t.SevereAbove < t.DangerousAtLeast {
		return fmt.Errorf("severe threshold %d below dangerous threshold %d", t.SevereAbove, t.DangerousAtLeast)
	}
	return nil
}

// Scorer converts counts into a Level. It is stateless and safe for concurrent use.
type Scorer struct {
	thresholds Thresholds
}

// NewScorer creates a scorer with the given cutoffs
func NewScorer(t Thresholds) (*Scorer, error) {
	if err := t.Validate(); err != nil {
		return nil, err
	}
	return &Scorer{thresholds: t}, nil
}

// Thresholds returns the scorer's cutoffs
func (s *Scorer) Thresholds() Thresholds {
	return s.thresholds
}

// Classify maps counts to a level; the highest threshold is checked first
func (s *Scorer) Classify(c Counts) Level {
	return s.ClassifyTotal(c.Total())
}

// ClassifyTotal maps an already summed total to a level
func (s *Scorer) ClassifyTotal(total int) Level {
	switch {
	case total > s.thresholds.SevereAbove:
		return Severe
	case total >= s.thresholds.DangerousAtLeast:
		return Dangerous
	case total >= s.thresholds.ModerateAtLeast:
		return Moderate
	default:
		return Safe
	}
}
