// Package geo holds GeoJSON structures and Web Mercator tile addressing.
package geo

// GeoJSON object types used by this package.
const (
	TypeFeatureCollection = "FeatureCollection"
	TypeFeature           = "Feature"
	TypePoint             = "Point"
)

// FeatureCollection represents a collection of geographic features.
type FeatureCollection struct {
	Type     string    `json:"type" yaml:"type"`
	Features []Feature `json:"features" yaml:"features"`
}

// Feature is a single geographic feature with geometry and properties.
type Feature struct {
	ID         string         `json:"id,omitempty" yaml:"id,omitempty"`
	Type       string         `json:"type" yaml:"type"`
	Geometry   Geometry       `json:"geometry" yaml:"geometry"`
	Properties map[string]any `json:"properties" yaml:"properties"`
}

// Geometry is a Point geometry.
type Geometry struct {
	Type        string    `json:"type" yaml:"type"`
	Coordinates []float64 `json:"coordinates" yaml:"coordinates"` // [Lon, Lat]
}

// NewCollection returns an empty collection with room for n features.
func NewCollection(n int) FeatureCollection {
	return FeatureCollection{Type: TypeFeatureCollection, Features: make([]Feature, 0, n)}
}

// NewPoint builds a Point feature. Note the GeoJSON [lon, lat] order.
func NewPoint(id string, lat, lon float64, props map[string]any) Feature {
	if props == nil {
		props = map[string]any{}
	}

	return Feature{
		ID:   id,
		Type: TypeFeature,
		Geometry: Geometry{
			Type:        TypePoint,
			Coordinates: []float64{lon, lat},
		},
		Properties: props,
	}
}

// Add appends a feature to the collection.
func (fc *FeatureCollection) Add(f Feature) {
	fc.Features = append(fc.Features, f)
}
