package query

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"

	"github.com/kailas-cloud/searchdsl/decode"
)

// GeoPoint is a latitude/longitude pair. It encodes as {"lat":..,"lon":..}
// and decodes from that object, a [lon, lat] array, or a "lat,lon" string.
// Geohash strings are not supported.
type GeoPoint struct {
	Lat float64
	Lon float64
}

// Point returns a GeoPoint.
func Point(lat, lon float64) GeoPoint { return GeoPoint{Lat: lat, Lon: lon} }

func (p GeoPoint) MarshalJSON() ([]byte, error) {
	return json.Marshal(struct {
		Lat float64 `json:"lat"`
		Lon float64 `json:"lon"`
	}{p.Lat, p.Lon})
}

var geoPointForms = []decode.Candidate[GeoPoint]{
	{Name: "object", Decode: geoPointFromObject},
	{Name: "array", Decode: geoPointFromArray},
	{Name: "string", Decode: geoPointFromString},
}

func (p *GeoPoint) UnmarshalJSON(data []byte) error {
	v, err := decode.FirstMatch("geo point", data, geoPointForms)
	if err != nil {
		return err
	}
	*p = v
	return nil
}

func geoPointFromObject(data []byte) (GeoPoint, error) {
	var obj struct {
		Lat *float64 `json:"lat"`
		Lon *float64 `json:"lon"`
	}
	if err := decode.Strict(data, &obj); err != nil {
		return GeoPoint{}, err
	}
	if obj.Lat == nil || obj.Lon == nil {
		return GeoPoint{}, fmt.Errorf("geo point requires lat and lon")
	}
	return GeoPoint{Lat: *obj.Lat, Lon: *obj.Lon}, nil
}

func geoPointFromArray(data []byte) (GeoPoint, error) {
	var arr []float64
	if err := decode.Strict(data, &arr); err != nil {
		return GeoPoint{}, err
	}
	if len(arr) != 2 {
		return GeoPoint{}, fmt.Errorf("geo point array needs [lon, lat], got %d values", len(arr))
	}
	return GeoPoint{Lat: arr[1], Lon: arr[0]}, nil
}

func geoPointFromString(data []byte) (GeoPoint, error) {
	var s string
	if err := decode.Strict(data, &s); err != nil {
		return GeoPoint{}, err
	}
	lat, lon, ok := strings.Cut(s, ",")
	if !ok {
		return GeoPoint{}, fmt.Errorf("geo point string %q is not \"lat,lon\"", s)
	}
	la, err := strconv.ParseFloat(strings.TrimSpace(lat), 64)
	if err != nil {
		return GeoPoint{}, fmt.Errorf("geo point latitude: %w", err)
	}
	lo, err := strconv.ParseFloat(strings.TrimSpace(lon), 64)
	if err != nil {
		return GeoPoint{}, fmt.Errorf("geo point longitude: %w", err)
	}
	return GeoPoint{Lat: la, Lon: lo}, nil
}

// Geometry is a GeoJSON-like inline shape.
type Geometry struct {
	Type        string     `json:"type"`
	Coordinates any        `json:"coordinates,omitempty"`
	Geometries  []Geometry `json:"geometries,omitempty"`
	Radius      string     `json:"radius,omitempty"`
}

// PointShape is a single position.
func PointShape(p GeoPoint) Geometry {
	return Geometry{Type: "point", Coordinates: decode.Normalize([]float64{p.Lon, p.Lat})}
}

// EnvelopeShape is a bounding rectangle.
func EnvelopeShape(topLeft, bottomRight GeoPoint) Geometry {
	return Geometry{Type: "envelope", Coordinates: decode.Normalize([][]float64{
		{topLeft.Lon, topLeft.Lat},
		{bottomRight.Lon, bottomRight.Lat},
	})}
}

// LineStringShape connects the points in order.
func LineStringShape(points ...GeoPoint) Geometry {
	return Geometry{Type: "linestring", Coordinates: decode.Normalize(positions(points))}
}

// PolygonShape takes an outer ring followed by optional holes.
func PolygonShape(rings ...[]GeoPoint) Geometry {
	coords := make([][][]float64, len(rings))
	for i, r := range rings {
		coords[i] = positions(r)
	}
	return Geometry{Type: "polygon", Coordinates: decode.Normalize(coords)}
}

// MultiPointShape is a set of positions.
func MultiPointShape(points ...GeoPoint) Geometry {
	return Geometry{Type: "multipoint", Coordinates: decode.Normalize(positions(points))}
}

// CircleShape is a center and a radius such as "100m".
func CircleShape(center GeoPoint, radius string) Geometry {
	s := PointShape(center)
	s.Type = "circle"
	s.Radius = radius
	return s
}

// GeometryCollection groups shapes.
func GeometryCollection(shapes ...Geometry) Geometry {
	return Geometry{Type: "geometrycollection", Geometries: nilIfEmpty(shapes)}
}

func positions(points []GeoPoint) [][]float64 {
	out := make([][]float64, len(points))
	for i, p := range points {
		out[i] = []float64{p.Lon, p.Lat}
	}
	return out
}

func (s *Geometry) UnmarshalJSON(data []byte) error {
	type plain Geometry
	var p plain
	if err := decode.Strict(data, &p); err != nil {
		return err
	}
	if p.Type == "" {
		return missing("shape", "type")
	}
	p.Geometries = nilIfEmpty(p.Geometries)
	*s = Geometry(p)
	return nil
}
