package relationship

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/terasky/vendorgraph/pkg/types"
)

// authorshipPatterns are the linguistic forms that express vendor→product
// authorship. %[1]s is the vendor term, %[2]s the product term; terms are
// quoted before substitution.
var authorshipPatterns = []string{
	`%[1]s.*?(?:announces|releases|offers|launches).*?%[2]s`,
	`%[2]s.*?(?:by|from|offered by).*?%[1]s`,
	`%[1]s's.*?%[2]s`,
}

var sentenceSplit = regexp.MustCompile(`[.!?]`)

// Validator scores vendor-product pairs. The catalog is read-only at
// validation time and may be cached process-wide.
type Validator struct {
	catalog *Catalog
}

// NewValidator creates a validator over the given catalog. A nil catalog is
// valid: every pair then falls through to text analysis.
func NewValidator(catalog *Catalog) *Validator {
	return &Validator{catalog: catalog}
}

// Validate assigns a confidence level to a vendor-product pair.
//
//	high:    the pair is in the curated catalog, regardless of text
//	medium:  the document text matches an authorship pattern
//	low:     vendor and product co-occur in one sentence
//	none:    no co-occurrence; no OFFERS edge may be written
//
// Ordering is guaranteed: a text containing an authorship pattern never
// scores below medium.
func (v *Validator) Validate(vendor, product, documentText string) types.Confidence {
	if v.catalog.Contains(vendor, product) {
		return types.ConfidenceHigh
	}
	if documentText == "" {
		return types.ConfidenceNone
	}
	return v.analyzeText(documentText, vendor, product)
}

// analyzeText scores a pair from document text alone.
func (v *Validator) analyzeText(text, vendor, product string) types.Confidence {
	textLower := strings.ToLower(text)
	vendorTerm := regexp.QuoteMeta(strings.ToLower(vendor))
	productTerm := regexp.QuoteMeta(strings.ToLower(product))

	for _, pattern := range authorshipPatterns {
		expr := fmt.Sprintf(pattern, vendorTerm, productTerm)
		matched, err := regexp.MatchString(expr, textLower)
		if err != nil {
			continue
		}
		if matched {
			return types.ConfidenceMedium
		}
	}

	vendorLower := strings.ToLower(vendor)
	productLower := strings.ToLower(product)
	for _, sentence := range sentenceSplit.Split(textLower, -1) {
		if strings.Contains(sentence, vendorLower) && strings.Contains(sentence, productLower) {
			return types.ConfidenceLow
		}
	}

	return types.ConfidenceNone
}
