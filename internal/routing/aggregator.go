package routing

import "github.com/sourcegraph/conc/iter"

// Aggregate builds the Route for the alternative at index using DefaultClassifier.
func Aggregate(raw RawRoute, index int) (*Route, error) {
	return DefaultClassifier.Aggregate(raw, index)
}

// Aggregate classifies every step of the route's first leg and summarizes
// them. Segment order follows step order. Only a route without legs is an
// error; missing optional fields degrade to defaults.
func (c Classifier) Aggregate(raw RawRoute, index int) (*Route, error) {
	if len(raw.Legs) == 0 {
		return nil, &MalformedRouteError{Index: index, Reason: "route has no legs"}
	}

	leg := raw.Legs[0]
	steps := leg.Steps

	route := &Route{
		ID:            index,
		Summary:       raw.Summary,
		Duration:      leg.Duration.text(),
		Distance:      leg.Distance.text(),
		StartAddress:  leg.StartAddress,
		EndAddress:    leg.EndAddress,
		Polyline:      raw.OverviewPolyline.points(),
		Fare:          FareUnavailable,
		DepartureTime: leg.DepartureTime.text(),
		ArrivalTime:   leg.ArrivalTime.text(),
		Buses:         []BusSummary{},
		Metro:         []Segment{},
		Segments:      make([]Segment, 0, len(steps)),
	}
	if raw.Fare != nil && raw.Fare.Text != "" {
		route.Fare = raw.Fare.Text
		route.ProviderFare = raw.Fare.Text
	}

	walkingSeconds := 0
	for i, step := range steps {
		seg, ok := c.Classify(step, steps, i)
		if !ok {
			route.skippedModes = append(route.skippedModes, step.TravelMode)
			continue
		}
		route.Segments = append(route.Segments, seg)

		switch seg.Type {
		case TransportMetro:
			route.Metro = append(route.Metro, seg)
		case TransportWalking:
			walkingSeconds += seg.DurationSeconds
		case TransportBus, TransportOtherTransit:
		}

		if step.TravelMode == transitTravelMode && step.TransitDetails.vehicleType() == busVehicleType {
			route.Buses = append(route.Buses, busSummary(step.TransitDetails))
		}
	}

	route.TotalSegments = len(route.Segments)
	route.WalkingMinutes = (walkingSeconds + 30) / 60
	return route, nil
}

// busSummary describes a bus step. Buses are selected by vehicle type only,
// so a bus line named after the metro is listed here and classified METRO.
func busSummary(td *RawTransitDetails) BusSummary {
	line := td.line()
	return BusSummary{
		Name:          lineName(line, DefaultBusName),
		DepartureStop: stopName(td.DepartureStop),
		ArrivalStop:   stopName(td.ArrivalStop),
		DepartureTime: td.DepartureTime.text(),
		ArrivalTime:   td.ArrivalTime.text(),
		NumStops:      td.NumStops,
		Color:         colorOr(line.Color, DefaultBusColor),
	}
}

// Price sets the computed fare and transfer count on the route.
func (r *Route) Price() FareBreakdown {
	breakdown := CalculateFare(r.Segments, r.ProviderFare)
	r.Fare = breakdown.Text
	r.Transfers = TransferCount(r.Segments)
	return breakdown
}

// SkippedModes returns the travel modes of steps dropped during aggregation.
func (r *Route) SkippedModes() []string {
	return r.skippedModes
}

// ProcessedRoute is the outcome of aggregating and pricing one alternative.
type ProcessedRoute struct {
	Route *Route
	Fare  FareBreakdown
	Err   error
}

// ProcessAll aggregates and prices every alternative of resp concurrently.
// Results keep the provider's alternative order.
func (c Classifier) ProcessAll(resp *DirectionsResponse) []ProcessedRoute {
	if resp == nil {
		return nil
	}
	out := make([]ProcessedRoute, len(resp.Routes))
	iter.ForEachIdx(resp.Routes, func(i int, raw *RawRoute) {
		out[i] = c.process(*raw, i)
	})
	return out
}

func (c Classifier) process(raw RawRoute, index int) ProcessedRoute {
	route, err := c.Aggregate(raw, index)
	if err != nil {
		return ProcessedRoute{Err: err}
	}
	fare := route.Price()
	return ProcessedRoute{Route: route, Fare: fare}
}
