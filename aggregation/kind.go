package aggregation

// Kind identifies a bucket shape. Values follow decode priority.
type Kind int

const (
	KindNone Kind = iota
	KindTerms
	KindRange
	KindDateRange
	KindHistogram
	KindDateHistogram
	KindGeoDistance
	KindFilters
	KindMatrixRow
	kindCount
)

var kindNames = [...]string{
	KindNone:          "None",
	KindTerms:         "Terms",
	KindRange:         "Range",
	KindDateRange:     "DateRange",
	KindHistogram:     "Histogram",
	KindDateHistogram: "DateHistogram",
	KindGeoDistance:   "GeoDistance",
	KindFilters:       "Filters",
	KindMatrixRow:     "MatrixRow",
}

func (k Kind) String() string {
	if k < 0 || k >= kindCount {
		return "Kind(?)"
	}
	return kindNames[k]
}

// Kinds returns every bucket shape in decode priority order.
func Kinds() []Kind {
	out := make([]Kind, 0, kindCount-1)
	for k := KindTerms; k < kindCount; k++ {
		out = append(out, k)
	}
	return out
}

// typeHints maps typed_keys prefixes to the bucket shape they produce.
var typeHints = map[string]Kind{
	"terms":               KindTerms,
	"sterms":              KindTerms,
	"lterms":              KindTerms,
	"dterms":              KindTerms,
	"umterms":             KindTerms,
	"ulterms":             KindTerms,
	"srareterms":          KindTerms,
	"lrareterms":          KindTerms,
	"multi_terms":         KindTerms,
	"range":               KindRange,
	"date_range":          KindDateRange,
	"histogram":           KindHistogram,
	"date_histogram":      KindDateHistogram,
	"auto_date_histogram": KindDateHistogram,
	"geo_distance":        KindGeoDistance,
	"filters":             KindFilters,
	"adjacency_matrix":    KindFilters,
	"matrix_row":          KindMatrixRow,
}

// HintFor returns the bucket shape implied by a typed_keys prefix, or
// KindNone when the prefix does not name a bucket family.
func HintFor(typ string) Kind { return typeHints[typ] }
