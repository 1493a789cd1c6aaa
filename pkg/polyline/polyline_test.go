package polyline

import (
	"math"
	"testing"
)

func TestDecode(t *testing.T) {
	tests := []struct {
		name     string
		encoded  string
		expected []Coordinate
	}{
		{
			name:     "single point",
			encoded:  "_p~iF~ps|U",
			expected: []Coordinate{{Latitude: 38.5, Longitude: -120.2}},
		},
		{
			name:    "reference example",
			encoded: "_p~iF~ps|U_ulLnnqC_mqNvxq`@",
			expected: []Coordinate{
				{Latitude: 38.5, Longitude: -120.2},
				{Latitude: 40.7, Longitude: -120.95},
				{Latitude: 43.252, Longitude: -126.453},
			},
		},
		{
			name:     "truncated longitude is dropped",
			encoded:  "_p~iF~ps|U_ulL",
			expected: []Coordinate{{Latitude: 38.5, Longitude: -120.2}},
		},
		{
			name:     "dangling continuation byte",
			encoded:  "_p~iF~ps|U_",
			expected: []Coordinate{{Latitude: 38.5, Longitude: -120.2}},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Decode(tt.encoded)
			if len(got) != len(tt.expected) {
				t.Fatalf("expected %d coordinates, got %d (%v)", len(tt.expected), len(got), got)
			}
			for i := range got {
				if !near(got[i], tt.expected[i], 1e-6) {
					t.Errorf("coordinate %d: expected %+v, got %+v", i, tt.expected[i], got[i])
				}
			}
		})
	}
}

func TestDecode_Empty(t *testing.T) {
	if got := Decode(""); got != nil {
		t.Errorf("expected nil, got %v", got)
	}
}

func TestEncode_ReferenceExample(t *testing.T) {
	coords := []Coordinate{
		{Latitude: 38.5, Longitude: -120.2},
		{Latitude: 40.7, Longitude: -120.95},
		{Latitude: 43.252, Longitude: -126.453},
	}
	if got := Encode(coords); got != "_p~iF~ps|U_ulLnnqC_mqNvxq`@" {
		t.Errorf("unexpected encoding %q", got)
	}
	if got := Encode(nil); got != "" {
		t.Errorf("expected empty string for no coordinates, got %q", got)
	}
}

func TestEncodeDecode_Medellin(t *testing.T) {
	coords := []Coordinate{
		{Latitude: 6.25184, Longitude: -75.56359},
		{Latitude: 6.24478, Longitude: -75.57261},
		{Latitude: 6.20961, Longitude: -75.56722},
		{Latitude: 6.17451, Longitude: -75.59078},
	}

	decoded := Decode(Encode(coords))
	if len(decoded) != len(coords) {
		t.Fatalf("expected %d coordinates, got %d", len(coords), len(decoded))
	}
	for i := range coords {
		if !near(decoded[i], coords[i], 1e-5) {
			t.Errorf("coordinate %d: expected %+v, got %+v", i, coords[i], decoded[i])
		}
	}
}

func TestBoundsOf(t *testing.T) {
	if _, ok := BoundsOf(nil); ok {
		t.Fatal("expected no bounds for empty input")
	}

	b, ok := BoundsOf([]Coordinate{
		{Latitude: 6.25, Longitude: -75.57},
		{Latitude: 6.20, Longitude: -75.55},
		{Latitude: 6.22, Longitude: -75.60},
	})
	if !ok {
		t.Fatal("expected bounds")
	}
	want := Bounds{North: 6.25, South: 6.20, East: -75.55, West: -75.60}
	if b != want {
		t.Errorf("expected %+v, got %+v", want, b)
	}

	grown := b.Extend(Bounds{North: 6.30, South: 6.21, East: -75.50, West: -75.58})
	if grown.North != 6.30 || grown.South != 6.20 || grown.East != -75.50 || grown.West != -75.60 {
		t.Errorf("unexpected extended bounds %+v", grown)
	}
}

func TestDistance(t *testing.T) {
	// Parque Berrío to Poblado station, roughly 4.4 km apart.
	a := Coordinate{Latitude: 6.24999, Longitude: -75.56836}
	b := Coordinate{Latitude: 6.21245, Longitude: -75.57791}

	d := Distance(a, b)
	if d < 4200 || d > 4500 {
		t.Errorf("expected ~4.3km, got %.0fm", d)
	}
	if Distance(a, a) != 0 {
		t.Error("expected zero distance for identical points")
	}
}

func TestLength(t *testing.T) {
	if Length(nil) != 0 {
		t.Error("expected zero length for empty path")
	}
	if Length([]Coordinate{{Latitude: 6.2, Longitude: -75.5}}) != 0 {
		t.Error("expected zero length for a single point")
	}

	path := []Coordinate{
		{Latitude: 0, Longitude: 0},
		{Latitude: 0, Longitude: 1},
		{Latitude: 0, Longitude: 2},
	}
	// One degree of longitude at the equator is ~111.2 km.
	if got := Length(path); math.Abs(got-222390) > 500 {
		t.Errorf("expected ~222.39km, got %.0fm", got)
	}
}

func near(a, b Coordinate, tolerance float64) bool {
	return math.Abs(a.Latitude-b.Latitude) <= tolerance && math.Abs(a.Longitude-b.Longitude) <= tolerance
}
