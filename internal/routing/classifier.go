package routing

import "strings"

// Classifier turns raw provider steps into Segments.
type Classifier struct {
	Metro MetroGeofence
}

// DefaultClassifier classifies steps for the Medellín network.
var DefaultClassifier = Classifier{Metro: MedellinMetro}

// Classify classifies a step with DefaultClassifier.
func Classify(step RawStep, allSteps []RawStep, index int) (Segment, bool) {
	return DefaultClassifier.Classify(step, allSteps, index)
}

// Classify converts the step at index of allSteps into a Segment.
// It returns false for travel modes other than WALKING and TRANSIT, which
// callers drop.
func (c Classifier) Classify(step RawStep, allSteps []RawStep, index int) (Segment, bool) {
	seg := Segment{
		Duration:        step.Duration.text(),
		DurationSeconds: step.Duration.value(),
		Polyline:        step.Polyline.points(),
		StartLocation:   step.StartLocation.coordinate(),
		EndLocation:     step.EndLocation.coordinate(),
	}

	switch step.TravelMode {
	case walkingTravelMode:
		seg.Type = TransportWalking
		seg.Walking = &WalkingDetails{
			Distance:     step.Distance.text(),
			Instructions: step.HTMLInstructions,
			ToBusStop:    nextDepartureStop(allSteps, index),
			IsFirst:      index == 0,
			IsLast:       index == len(allSteps)-1,
		}
		return seg, true

	case transitTravelMode:
		c.classifyTransit(&seg, step.TransitDetails)
		return seg, true

	default:
		return Segment{}, false
	}
}

func (c Classifier) classifyTransit(seg *Segment, td *RawTransitDetails) {
	line := td.line()
	vehicleType := td.vehicleType()

	details := &TransitDetails{VehicleType: vehicleType}
	if td != nil {
		details.DepartureStop = stopName(td.DepartureStop)
		details.ArrivalStop = stopName(td.ArrivalStop)
		details.DepartureTime = td.DepartureTime.text()
		details.ArrivalTime = td.ArrivalTime.text()
		details.DepartureUnix = td.DepartureTime.unix()
		details.NumStops = td.NumStops
		details.Headsign = td.Headsign
		details.DepartureLocation = td.DepartureStop.location()
		details.ArrivalLocation = td.ArrivalStop.location()
	}
	seg.Transit = details

	switch {
	case vehicleType == subwayVehicleType || isMetroName(line.Name):
		seg.Type = TransportMetro
		details.Line = c.Metro.ResolveLine(details.DepartureLocation, details.ArrivalLocation)
		details.Name = metroNamePrefix + string(details.Line)

	case vehicleType == busVehicleType:
		seg.Type = TransportBus
		details.Name = lineName(line, DefaultBusName)
		details.Color = colorOr(line.Color, DefaultBusColor)

	default:
		seg.Type = TransportOtherTransit
		details.Name = lineName(line, DefaultTransitName)
		details.Color = colorOr(line.Color, DefaultTransitColor)
	}
}

// nextDepartureStop returns the departure stop of the first TRANSIT step after index.
func nextDepartureStop(allSteps []RawStep, index int) string {
	for i := index + 1; i < len(allSteps); i++ {
		if allSteps[i].TravelMode != transitTravelMode {
			continue
		}
		if td := allSteps[i].TransitDetails; td != nil {
			return td.DepartureStop.name()
		}
		return ""
	}
	return ""
}

func lineName(line *RawLine, fallback string) string {
	switch {
	case line.ShortName != "":
		return line.ShortName
	case line.Name != "":
		return line.Name
	default:
		return fallback
	}
}

func colorOr(color, fallback string) string {
	if color == "" {
		return fallback
	}
	return color
}

func stopName(s *RawStop) string {
	if name := s.name(); name != "" {
		return name
	}
	return DefaultStopName
}

// isMetroName reports whether a line name designates the metro.
func isMetroName(name string) bool {
	return strings.Contains(strings.ToLower(name), metroLineNameSubstring)
}
