package audit

import (
	"strings"

	"golang.org/x/text/unicode/norm"
)

// Level is one of the four canonical risk tiers the backend emits, or LevelUnknown.
type Level string

const (
	LevelCritical Level = "kritik"
	LevelHigh     Level = "yüksek"
	LevelMedium   Level = "orta"
	LevelLow      Level = "düşük"
	LevelUnknown  Level = ""
)

// Levels lists the canonical tiers from most to least severe.
var Levels = []Level{LevelCritical, LevelHigh, LevelMedium, LevelLow}

// ParseLevel matches label case-insensitively against the canonical set.
// Labels are NFC-normalized first so decomposed "düşük" still matches, and the
// dotted capital "İ" lowers to plain "i". Whitespace is significant.
// Unmatched labels yield LevelUnknown; it never fails.
func ParseLevel(label string) Level {
	if label == "" {
		return LevelUnknown
	}
	lower := strings.ToLower(norm.NFC.String(label))
	for _, lvl := range Levels {
		if lower == string(lvl) {
			return lvl
		}
	}
	return LevelUnknown
}

func (l Level) Known() bool {
	return l != LevelUnknown
}

// Name is the English tier name, "unknown" for unmatched labels.
func (l Level) Name() string {
	switch l {
	case LevelCritical:
		return "critical"
	case LevelHigh:
		return "high"
	case LevelMedium:
		return "medium"
	case LevelLow:
		return "low"
	default:
		return "unknown"
	}
}

func (l Level) String() string {
	return l.Name()
}
