package types

// Confidence is the trust label attached to an inferred vendor-product
// relationship. Levels are ordered: None < Low < Medium < High.
type Confidence string

const (
	ConfidenceNone   Confidence = ""
	ConfidenceLow    Confidence = "low"
	ConfidenceMedium Confidence = "medium"
	ConfidenceHigh   Confidence = "high"
)

// Rank returns the numeric ordering of a confidence level. Unknown values
// rank as None so a corrupted edge never outranks a validated one.
func (c Confidence) Rank() int {
	switch c {
	case ConfidenceHigh:
		return 3
	case ConfidenceMedium:
		return 2
	case ConfidenceLow:
		return 1
	default:
		return 0
	}
}

// AtLeast reports whether c meets the given minimum level.
func (c Confidence) AtLeast(min Confidence) bool {
	return c.Rank() >= min.Rank()
}

// Persistable reports whether the level is strong enough for an OFFERS edge
// to be written. Low-confidence pairs are observable only through the
// explicit by-confidence read path, never persisted.
func (c Confidence) Persistable() bool {
	return c.AtLeast(ConfidenceMedium)
}

// LevelsAtLeast returns every persisted confidence value meeting the
// minimum, ordered strongest first. Used to expand a minimum level into the
// IN-list a graph query filters on.
func LevelsAtLeast(min Confidence) []string {
	levels := []Confidence{ConfidenceHigh, ConfidenceMedium, ConfidenceLow}
	out := make([]string, 0, len(levels))
	for _, l := range levels {
		if l.AtLeast(min) {
			out = append(out, string(l))
		}
	}
	return out
}

// ParseConfidence maps a string onto a known confidence level.
func ParseConfidence(s string) Confidence {
	switch Confidence(s) {
	case ConfidenceHigh:
		return ConfidenceHigh
	case ConfidenceMedium:
		return ConfidenceMedium
	case ConfidenceLow:
		return ConfidenceLow
	default:
		return ConfidenceNone
	}
}
