package query

import (
	"encoding/json"

	"github.com/kailas-cloud/searchdsl/decode"
)

// GeoDistanceQuery matches points within distance of an origin.
type GeoDistanceQuery struct {
	field  string
	origin GeoPoint
	b      geoDistanceBody
}

type geoDistanceBody struct {
	Distance         string           `json:"distance"`
	DistanceType     DistanceType     `json:"distance_type,omitempty"`
	ValidationMethod ValidationMethod `json:"validation_method,omitempty"`
	common
}

var geoDistanceKeys = []string{"distance", "distance_type", "validation_method", "boost", "_name"}

// GeoDistance matches field values within distance (e.g. "12km") of origin.
func GeoDistance(field string, origin GeoPoint, distance string) GeoDistanceQuery {
	return GeoDistanceQuery{field: field, origin: origin, b: geoDistanceBody{Distance: distance}}
}

func (q GeoDistanceQuery) DistanceType(t DistanceType) GeoDistanceQuery {
	q.b.DistanceType = t
	return q
}

func (q GeoDistanceQuery) ValidationMethod(m ValidationMethod) GeoDistanceQuery {
	q.b.ValidationMethod = m
	return q
}

func (q GeoDistanceQuery) Boost(boost float64) GeoDistanceQuery {
	q.b.Boost = &boost
	return q
}

func (q GeoDistanceQuery) Name(name string) GeoDistanceQuery {
	q.b.Name = name
	return q
}

func (q GeoDistanceQuery) IsEmpty() bool { return q.field == "" || q.b.Distance == "" }

func (q GeoDistanceQuery) variant() (Kind, Clause) { return KindGeoDistance, q }

func (q GeoDistanceQuery) MarshalJSON() ([]byte, error) {
	return encodeMixedClause("geo_distance", q.field, q.origin, q.b)
}

func (q *GeoDistanceQuery) UnmarshalJSON(data []byte) error {
	var out GeoDistanceQuery
	err := decodeMixedClause(data, "geo_distance", geoDistanceKeys, &out.field, func(raw json.RawMessage) error {
		return out.origin.UnmarshalJSON(raw)
	}, &out.b)
	if err != nil {
		return err
	}
	*q = out
	return nil
}

// BoundingBox is a rectangle given by two corners.
type BoundingBox struct {
	TopLeft     GeoPoint `json:"top_left"`
	BottomRight GeoPoint `json:"bottom_right"`
}

func (b *BoundingBox) UnmarshalJSON(data []byte) error {
	var box struct {
		TopLeft     *GeoPoint `json:"top_left"`
		BottomRight *GeoPoint `json:"bottom_right"`
	}
	if err := decode.Strict(data, &box); err != nil {
		return err
	}
	if box.TopLeft == nil || box.BottomRight == nil {
		return missing("geo_bounding_box", "top_left and bottom_right")
	}
	*b = BoundingBox{TopLeft: *box.TopLeft, BottomRight: *box.BottomRight}
	return nil
}

// GeoBoundingBoxType selects the bounding box execution strategy.
type GeoBoundingBoxType string

const (
	BoundingBoxMemory  GeoBoundingBoxType = "memory"
	BoundingBoxIndexed GeoBoundingBoxType = "indexed"
)

// GeoBoundingBoxQuery matches points inside a rectangle.
type GeoBoundingBoxQuery struct {
	field string
	box   BoundingBox
	b     geoBoundingBoxBody
}

type geoBoundingBoxBody struct {
	ValidationMethod ValidationMethod   `json:"validation_method,omitempty"`
	Type             GeoBoundingBoxType `json:"type,omitempty"`
	common
}

var geoBoundingBoxKeys = []string{"validation_method", "type", "boost", "_name"}

func GeoBoundingBox(field string, topLeft, bottomRight GeoPoint) GeoBoundingBoxQuery {
	return GeoBoundingBoxQuery{field: field, box: BoundingBox{TopLeft: topLeft, BottomRight: bottomRight}}
}

func (q GeoBoundingBoxQuery) ValidationMethod(m ValidationMethod) GeoBoundingBoxQuery {
	q.b.ValidationMethod = m
	return q
}

func (q GeoBoundingBoxQuery) Type(t GeoBoundingBoxType) GeoBoundingBoxQuery {
	q.b.Type = t
	return q
}

func (q GeoBoundingBoxQuery) Boost(boost float64) GeoBoundingBoxQuery {
	q.b.Boost = &boost
	return q
}

func (q GeoBoundingBoxQuery) Name(name string) GeoBoundingBoxQuery {
	q.b.Name = name
	return q
}

func (q GeoBoundingBoxQuery) IsEmpty() bool { return q.field == "" }

func (q GeoBoundingBoxQuery) variant() (Kind, Clause) { return KindGeoBoundingBox, q }

func (q GeoBoundingBoxQuery) MarshalJSON() ([]byte, error) {
	return encodeMixedClause("geo_bounding_box", q.field, q.box, q.b)
}

func (q *GeoBoundingBoxQuery) UnmarshalJSON(data []byte) error {
	var out GeoBoundingBoxQuery
	err := decodeMixedClause(data, "geo_bounding_box", geoBoundingBoxKeys, &out.field, func(raw json.RawMessage) error {
		return out.box.UnmarshalJSON(raw)
	}, &out.b)
	if err != nil {
		return err
	}
	*q = out
	return nil
}

// shapeFilter is the field value of geo_shape and shape queries holding
// an inline shape.
type shapeFilter struct {
	Shape    *Geometry     `json:"shape"`
	Relation ShapeRelation `json:"relation,omitempty"`
}

// shapeLookupFilter is the field value referencing an indexed shape.
type shapeLookupFilter struct {
	IndexedShape *IndexedShape `json:"indexed_shape"`
	Relation     ShapeRelation `json:"relation,omitempty"`
}

type shapeBody struct {
	IgnoreUnmapped *bool `json:"ignore_unmapped,omitempty"`
	common
}

var shapeKeys = []string{"ignore_unmapped", "boost", "_name"}

func decodeShapeFilter(name string, data []byte, field *string, f *shapeFilter, b *shapeBody) error {
	return decodeMixedClause(data, name, shapeKeys, field, func(raw json.RawMessage) error {
		if err := decode.Strict(raw, f); err != nil {
			return err
		}
		if f.Shape == nil {
			return missing(name, "shape")
		}
		return nil
	}, b)
}

func decodeShapeLookupFilter(name string, data []byte, field *string, f *shapeLookupFilter, b *shapeBody) error {
	return decodeMixedClause(data, name, shapeKeys, field, func(raw json.RawMessage) error {
		if err := decode.Strict(raw, f); err != nil {
			return err
		}
		if f.IndexedShape == nil {
			return missing(name, "indexed_shape")
		}
		return nil
	}, b)
}

// GeoShapeQuery matches geo shapes related to an inline shape.
type GeoShapeQuery struct {
	field string
	f     shapeFilter
	b     shapeBody
}

func GeoShape(field string, shape Geometry) GeoShapeQuery {
	return GeoShapeQuery{field: field, f: shapeFilter{Shape: &shape}}
}

func (q GeoShapeQuery) Relation(r ShapeRelation) GeoShapeQuery {
	q.f.Relation = r
	return q
}

func (q GeoShapeQuery) IgnoreUnmapped(v bool) GeoShapeQuery {
	q.b.IgnoreUnmapped = &v
	return q
}

func (q GeoShapeQuery) Boost(boost float64) GeoShapeQuery {
	q.b.Boost = &boost
	return q
}

func (q GeoShapeQuery) Name(name string) GeoShapeQuery {
	q.b.Name = name
	return q
}

func (q GeoShapeQuery) IsEmpty() bool { return q.field == "" || q.f.Shape == nil }

func (q GeoShapeQuery) variant() (Kind, Clause) { return KindGeoShape, q }

func (q GeoShapeQuery) MarshalJSON() ([]byte, error) {
	return encodeMixedClause("geo_shape", q.field, q.f, q.b)
}

func (q *GeoShapeQuery) UnmarshalJSON(data []byte) error {
	var out GeoShapeQuery
	if err := decodeShapeFilter("geo_shape", data, &out.field, &out.f, &out.b); err != nil {
		return err
	}
	*q = out
	return nil
}

// GeoShapeLookupQuery matches geo shapes related to an indexed shape.
type GeoShapeLookupQuery struct {
	field string
	f     shapeLookupFilter
	b     shapeBody
}

func GeoShapeLookup(field string, shape IndexedShape) GeoShapeLookupQuery {
	return GeoShapeLookupQuery{field: field, f: shapeLookupFilter{IndexedShape: &shape}}
}

func (q GeoShapeLookupQuery) Relation(r ShapeRelation) GeoShapeLookupQuery {
	q.f.Relation = r
	return q
}

func (q GeoShapeLookupQuery) IgnoreUnmapped(v bool) GeoShapeLookupQuery {
	q.b.IgnoreUnmapped = &v
	return q
}

func (q GeoShapeLookupQuery) Boost(boost float64) GeoShapeLookupQuery {
	q.b.Boost = &boost
	return q
}

func (q GeoShapeLookupQuery) Name(name string) GeoShapeLookupQuery {
	q.b.Name = name
	return q
}

func (q GeoShapeLookupQuery) IsEmpty() bool { return q.field == "" || q.f.IndexedShape == nil }

func (q GeoShapeLookupQuery) variant() (Kind, Clause) { return KindGeoShapeLookup, q }

func (q GeoShapeLookupQuery) MarshalJSON() ([]byte, error) {
	return encodeMixedClause("geo_shape", q.field, q.f, q.b)
}

func (q *GeoShapeLookupQuery) UnmarshalJSON(data []byte) error {
	var out GeoShapeLookupQuery
	if err := decodeShapeLookupFilter("geo_shape", data, &out.field, &out.f, &out.b); err != nil {
		return err
	}
	*q = out
	return nil
}
