package types

import "time"

// FilterOp is the operator of a metadata filter. A small tagged union
// replaces the ad hoc operator-keyed maps the stores cannot agree on;
// each backend translates the union at its adapter boundary and may
// reject operators it cannot express.
type FilterOp string

const (
	OpEquals   FilterOp = "eq"
	OpContains FilterOp = "contains"
	OpRange    FilterOp = "range"
)

// Filter is a single constraint over a chunk metadata field.
type Filter struct {
	Field string
	Op    FilterOp
	Value string
	// Low/High bound a range filter; zero values leave the side open.
	Low  time.Time
	High time.Time
}

// Equals builds an exact-match filter.
func Equals(field, value string) Filter {
	return Filter{Field: field, Op: OpEquals, Value: value}
}

// Contains builds a substring-containment filter.
func Contains(field, value string) Filter {
	return Filter{Field: field, Op: OpContains, Value: value}
}

// Range builds a bounded time filter.
func Range(field string, low, high time.Time) Filter {
	return Filter{Field: field, Op: OpRange, Low: low, High: high}
}

// AsEquals downgrades a containment filter to an equality filter. Backends
// without substring support match on the full value instead of failing
// the query.
func (f Filter) AsEquals() Filter {
	if f.Op == OpContains {
		f.Op = OpEquals
	}
	return f
}

// FilterSet is a conjunction of filters.
type FilterSet []Filter

// Downgraded returns a copy with every containment filter replaced by its
// equality form.
func (fs FilterSet) Downgraded() FilterSet {
	if len(fs) == 0 {
		return fs
	}
	out := make(FilterSet, len(fs))
	for i, f := range fs {
		out[i] = f.AsEquals()
	}
	return out
}

// QueryParams is the structured filter set the extractor pulls out of a
// free-text query. Zero values mean the query did not constrain that field.
type QueryParams struct {
	Vendor  string `json:"vendor,omitempty"`
	Product string `json:"product,omitempty"`
	Type    string `json:"type,omitempty"`
	// DaySpan restricts results to documents newer than now minus this
	// many days. Zero means no time constraint.
	DaySpan int `json:"day_span,omitempty"`
}

// HasGraphFilter reports whether any graph-expressible constraint is set.
// The fallback retrieval path only runs when this is true.
func (p QueryParams) HasGraphFilter() bool {
	return p.Vendor != "" || p.Product != "" || p.DaySpan > 0
}

// VectorFilters translates the params into the vector store filter set.
// Vendor identity is exact; product and type labels match by containment
// since chunks carry comma-separated lists.
func (p QueryParams) VectorFilters() FilterSet {
	var fs FilterSet
	if p.Vendor != "" {
		fs = append(fs, Equals("vendor", p.Vendor))
	}
	if p.Product != "" {
		fs = append(fs, Contains("product", p.Product))
	}
	if p.Type != "" {
		fs = append(fs, Contains("type", p.Type))
	}
	return fs
}
