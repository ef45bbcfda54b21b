// Package extract turns free-text queries into the structured filter set
// the retriever works with. Extraction is pure string matching over small
// curated vocabularies; it performs no I/O and never fails. A field with
// no match is simply left empty.
package extract

import (
	"regexp"
	"strings"

	"github.com/terasky/vendorgraph/pkg/types"
)

// Vocabulary holds the curated keyword lists extraction matches against.
// The lists are small and change rarely; callers usually hold one
// process-wide instance.
type Vocabulary struct {
	Vendors  []string
	Products []string
	// TypeKeywords maps a canonical content-type label to the phrases
	// that imply it.
	TypeKeywords map[string][]string
}

// DefaultVocabulary returns the built-in vendor, product and type lists.
func DefaultVocabulary() *Vocabulary {
	return &Vocabulary{
		Vendors: []string{
			"hashicorp", "palo alto", "google", "aws", "amazon",
			"microsoft", "dell", "ibm",
		},
		Products: []string{
			"vault", "terraform", "consul", "nomad", "boundary",
			"waypoint", "packer",
		},
		TypeKeywords: map[string][]string{
			"security":     {"security", "vulnerability", "patch", "vulnerabilit"},
			"webinar":      {"webinar", "workshop", "session"},
			"announcement": {"announcement", "news", "release"},
			"update":       {"update", "upgrade", "new version"},
			"event":        {"event", "conference", "meetup"},
		},
	}
}

// typeOrder fixes the priority in which type labels are probed, so that a
// query matching several keyword groups resolves deterministically.
var typeOrder = []string{"security", "webinar", "announcement", "update", "event"}

// stopWords are generic words the fallback "from X" / "about X" patterns
// must not mistake for entity names.
var stopWords = map[string]struct{}{
	"the": {}, "all": {}, "any": {}, "recent": {},
}

var (
	fromPattern  = regexp.MustCompile(`from\s+(\w+)(?:\s|$)`)
	aboutPattern = regexp.MustCompile(`about\s+(\w+)(?:\s|$)`)
)

// timeSpans maps time phrases to day spans, probed in order with first
// match winning. "recent" defaults to the trailing month.
var timeSpans = []struct {
	phrases []string
	days    int
}{
	{[]string{"past week", "last week"}, 7},
	{[]string{"past month", "last month"}, 30},
	{[]string{"past year", "last year"}, 365},
	{[]string{"recent"}, 30},
}

// Extractor resolves query text against a vocabulary.
type Extractor struct {
	vocab *Vocabulary
}

// New creates an extractor. A nil vocabulary uses the defaults.
func New(vocab *Vocabulary) *Extractor {
	if vocab == nil {
		vocab = DefaultVocabulary()
	}
	return &Extractor{vocab: vocab}
}

// Extract pulls vendor, product, type and time-window constraints out of a
// free-text query. Curated keywords are checked first, vendor before
// product before type; the generic "from X" / "about X" patterns only run
// when no keyword matched.
func (e *Extractor) Extract(query string) types.QueryParams {
	lower := strings.ToLower(query)
	params := types.QueryParams{}

	for _, span := range timeSpans {
		for _, phrase := range span.phrases {
			if strings.Contains(lower, phrase) {
				params.DaySpan = span.days
				break
			}
		}
		if params.DaySpan > 0 {
			break
		}
	}

	for _, vendor := range e.vocab.Vendors {
		if strings.Contains(lower, vendor) {
			params.Vendor = vendor
			break
		}
	}
	if params.Vendor == "" {
		if m := fromPattern.FindStringSubmatch(lower); m != nil {
			if _, stop := stopWords[m[1]]; !stop {
				params.Vendor = m[1]
			}
		}
	}

	for _, product := range e.vocab.Products {
		if strings.Contains(lower, product) {
			params.Product = product
			break
		}
	}
	if params.Product == "" {
		if m := aboutPattern.FindStringSubmatch(lower); m != nil {
			if _, stop := stopWords[m[1]]; !stop {
				params.Product = m[1]
			}
		}
	}

	for _, label := range typeOrder {
		keywords, ok := e.vocab.TypeKeywords[label]
		if !ok {
			continue
		}
		for _, keyword := range keywords {
			if strings.Contains(lower, keyword) {
				params.Type = label
				break
			}
		}
		if params.Type != "" {
			break
		}
	}

	return params
}
