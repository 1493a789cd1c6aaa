// Package polyline implements Google's encoded polyline algorithm and a few
// geometry helpers used when drawing route segments on a map.
//
// Format reference: https://developers.google.com/maps/documentation/utilities/polylinealgorithm
package polyline

import (
	"math"
)

// precision is the fixed-point scale of the encoding (5 decimal places).
const precision = 1e5

// Coordinate is a decoded point. JSON names match what map clients expect.
type Coordinate struct {
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
}

// Bounds is the smallest box containing a set of coordinates.
type Bounds struct {
	North float64 `json:"north"`
	South float64 `json:"south"`
	East  float64 `json:"east"`
	West  float64 `json:"west"`
}

// Decode turns an encoded polyline into coordinates.
// A truncated trailing value is dropped rather than producing a bogus point.
func Decode(encoded string) []Coordinate {
	if encoded == "" {
		return nil
	}

	coords := make([]Coordinate, 0, len(encoded)/4)
	var lat, lng int
	pos := 0

	for pos < len(encoded) {
		dLat, next, ok := readVarint(encoded, pos)
		if !ok {
			break
		}
		dLng, next, ok := readVarint(encoded, next)
		if !ok {
			break
		}
		pos = next

		lat += dLat
		lng += dLng
		coords = append(coords, Coordinate{
			Latitude:  float64(lat) / precision,
			Longitude: float64(lng) / precision,
		})
	}

	return coords
}

// readVarint reads one zig-zag encoded delta starting at pos.
// ok is false when the input ends in the middle of a value.
func readVarint(encoded string, pos int) (value, next int, ok bool) {
	var result, shift int
	for pos < len(encoded) {
		chunk := int(encoded[pos]) - 63
		pos++
		result |= (chunk & 0x1f) << shift
		shift += 5
		if chunk < 0x20 {
			if result&1 != 0 {
				return ^(result >> 1), pos, true
			}
			return result >> 1, pos, true
		}
	}
	return 0, pos, false
}

// Encode is the inverse of Decode.
func Encode(coords []Coordinate) string {
	if len(coords) == 0 {
		return ""
	}

	buf := make([]byte, 0, len(coords)*6)
	var prevLat, prevLng int

	for _, c := range coords {
		lat := int(math.Round(c.Latitude * precision))
		lng := int(math.Round(c.Longitude * precision))

		buf = appendVarint(buf, lat-prevLat)
		buf = appendVarint(buf, lng-prevLng)

		prevLat, prevLng = lat, lng
	}

	return string(buf)
}

func appendVarint(buf []byte, value int) []byte {
	v := value << 1
	if value < 0 {
		v = ^v
	}
	for v >= 0x20 {
		buf = append(buf, byte((v&0x1f)|0x20)+63)
		v >>= 5
	}
	return append(buf, byte(v)+63)
}

// BoundsOf returns the bounding box of coords and false when coords is empty.
func BoundsOf(coords []Coordinate) (Bounds, bool) {
	if len(coords) == 0 {
		return Bounds{}, false
	}

	b := Bounds{
		North: coords[0].Latitude,
		South: coords[0].Latitude,
		East:  coords[0].Longitude,
		West:  coords[0].Longitude,
	}
	for _, c := range coords[1:] {
		b.North = math.Max(b.North, c.Latitude)
		b.South = math.Min(b.South, c.Latitude)
		b.East = math.Max(b.East, c.Longitude)
		b.West = math.Min(b.West, c.Longitude)
	}
	return b, true
}

// Extend grows b so it also contains other.
func (b Bounds) Extend(other Bounds) Bounds {
	return Bounds{
		North: math.Max(b.North, other.North),
		South: math.Min(b.South, other.South),
		East:  math.Max(b.East, other.East),
		West:  math.Min(b.West, other.West),
	}
}

// Length is the haversine length of the path in meters.
func Length(coords []Coordinate) float64 {
	var total float64
	for i := 1; i < len(coords); i++ {
		total += Distance(coords[i-1], coords[i])
	}
	return total
}

const earthRadiusMeters = 6371000

// Distance is the great-circle distance between a and b in meters.
func Distance(a, b Coordinate) float64 {
	lat1 := a.Latitude * math.Pi / 180
	lat2 := b.Latitude * math.Pi / 180
	dLat := (b.Latitude - a.Latitude) * math.Pi / 180
	dLng := (b.Longitude - a.Longitude) * math.Pi / 180

	sinLat := math.Sin(dLat / 2)
	sinLng := math.Sin(dLng / 2)

	h := sinLat*sinLat + math.Cos(lat1)*math.Cos(lat2)*sinLng*sinLng
	return 2 * earthRadiusMeters * math.Asin(math.Sqrt(h))
}
