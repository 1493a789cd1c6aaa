package routing

// MetroLine names a metro line ("A", "B").
type MetroLine string

// MetroGeofence assigns a metro leg to one of two lines by splitting the city
// at a single point. It is city configuration, not a general geofence: a leg
// departing north-west of the split point belongs to Inside, anything else to
// Outside.
type MetroGeofence struct {
	SplitLatitude  float64
	SplitLongitude float64
	Inside         MetroLine
	Outside        MetroLine
}

// MedellinMetro approximates the Medellín metro: line A runs north-south
// along the river, line B branches west from San Antonio.
// TODO: replace with a station-to-line lookup once stop ids are available from the provider.
var MedellinMetro = MetroGeofence{
	SplitLatitude:  6.24,
	SplitLongitude: -75.56,
	Inside:         "A",
	Outside:        "B",
}

// ResolveLine returns the line for a metro leg. A missing coordinate resolves
// to Inside. Only the departure coordinate drives the decision.
func (g MetroGeofence) ResolveLine(departure, arrival *Coordinate) MetroLine {
	if departure == nil || arrival == nil {
		return g.Inside
	}
	if departure.Latitude > g.SplitLatitude && departure.Longitude < g.SplitLongitude {
		return g.Inside
	}
	return g.Outside
}

// ResolveMetroLine resolves a metro leg with MedellinMetro.
func ResolveMetroLine(departure, arrival *Coordinate) MetroLine {
	return MedellinMetro.ResolveLine(departure, arrival)
}
