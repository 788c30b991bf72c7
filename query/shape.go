package query

// ShapeQuery matches cartesian shapes related to an inline shape.
type ShapeQuery struct {
	field string
	f     shapeFilter
	b     shapeBody
}

func Shape(field string, shape Geometry) ShapeQuery {
	return ShapeQuery{field: field, f: shapeFilter{Shape: &shape}}
}

func (q ShapeQuery) Relation(r ShapeRelation) ShapeQuery {
	q.f.Relation = r
	return q
}

func (q ShapeQuery) IgnoreUnmapped(v bool) ShapeQuery {
	q.b.IgnoreUnmapped = &v
	return q
}

func (q ShapeQuery) Boost(boost float64) ShapeQuery {
	q.b.Boost = &boost
	return q
}

func (q ShapeQuery) Name(name string) ShapeQuery {
	q.b.Name = name
	return q
}

func (q ShapeQuery) IsEmpty() bool { return q.field == "" || q.f.Shape == nil }

func (q ShapeQuery) variant() (Kind, Clause) { return KindShape, q }

func (q ShapeQuery) MarshalJSON() ([]byte, error) {
	return encodeMixedClause("shape", q.field, q.f, q.b)
}

func (q *ShapeQuery) UnmarshalJSON(data []byte) error {
	var out ShapeQuery
	if err := decodeShapeFilter("shape", data, &out.field, &out.f, &out.b); err != nil {
		return err
	}
	*q = out
	return nil
}

// ShapeLookupQuery matches cartesian shapes related to an indexed shape.
type ShapeLookupQuery struct {
	field string
	f     shapeLookupFilter
	b     shapeBody
}

func ShapeLookup(field string, shape IndexedShape) ShapeLookupQuery {
	return ShapeLookupQuery{field: field, f: shapeLookupFilter{IndexedShape: &shape}}
}

func (q ShapeLookupQuery) Relation(r ShapeRelation) ShapeLookupQuery {
	q.f.Relation = r
	return q
}

func (q ShapeLookupQuery) IgnoreUnmapped(v bool) ShapeLookupQuery {
	q.b.IgnoreUnmapped = &v
	return q
}

func (q ShapeLookupQuery) Boost(boost float64) ShapeLookupQuery {
	q.b.Boost = &boost
	return q
}

func (q ShapeLookupQuery) Name(name string) ShapeLookupQuery {
	q.b.Name = name
	return q
}

func (q ShapeLookupQuery) IsEmpty() bool { return q.field == "" || q.f.IndexedShape == nil }

func (q ShapeLookupQuery) variant() (Kind, Clause) { return KindShapeLookup, q }

func (q ShapeLookupQuery) MarshalJSON() ([]byte, error) {
	return encodeMixedClause("shape", q.field, q.f, q.b)
}

func (q *ShapeLookupQuery) UnmarshalJSON(data []byte) error {
	var out ShapeLookupQuery
	if err := decodeShapeLookupFilter("shape", data, &out.field, &out.f, &out.b); err != nil {
		return err
	}
	*q = out
	return nil
}
