package routing

import (
	"sort"
	"strings"
	"time"

	"github.com/dustin/go-humanize"
)

// fareCategory is the key fares and integration rules are expressed in.
type fareCategory string

const (
	fareWalking fareCategory = "WALKING"
	fareTransit fareCategory = "TRANSIT"
	fareMetro   fareCategory = "METRO"
	fareTranvia fareCategory = "TRANVIA"
	fareBus     fareCategory = "BUS"
	fareCable   fareCategory = "CABLE"
)

// Fare integration rule: the discount in COP and the transfer window.
const (
	IntegrationDiscount = 1000
	IntegrationWindow   = 60 * time.Minute
)

var baseFares = map[fareCategory]int{
	fareTransit: 3600,
	fareMetro:   3600,
	fareTranvia: 3600,
	fareBus:     2400,
	fareCable:   2800,
	fareWalking: 0,
}

// vehicleCategories maps provider vehicle types carried by OTHER_TRANSIT segments.
var vehicleCategories = map[string]fareCategory{
	"TRAM":           fareTranvia,
	"SUBWAY":         fareMetro,
	"TRAIN":          fareMetro,
	"RAIL":           fareMetro,
	"METRO_RAIL":     fareMetro,
	"HEAVY_RAIL":     fareMetro,
	"COMMUTER_TRAIN": fareMetro,
	"MONORAIL":       fareMetro,
	"CABLE_CAR":      fareCable,
	"GONDOLA_LIFT":   fareCable,
	"GONDOLA":        fareCable,
	"BUS":            fareBus,
	"INTERCITY_BUS":  fareBus,
	"TROLLEYBUS":     fareBus,
}

// typeCategories maps segment types, including the provider aliases that
// older clients still send.
var typeCategories = map[string]fareCategory{
	string(TransportWalking):      fareWalking,
	string(TransportBus):          fareBus,
	string(TransportMetro):        fareMetro,
	string(TransportOtherTransit): fareTransit,
	"TRANSIT":                     fareTransit,
	"SUBWAY":                      fareMetro,
	"RAIL":                        fareMetro,
	"TRAM":                        fareTranvia,
	"CABLE_CAR":                   fareCable,
	"GONDOLA":                     fareCable,
}

// integrationPairs lists, per previous mode, the modes that get the discount.
// The relation is intentionally not symmetric.
var integrationPairs = map[fareCategory][]fareCategory{
	fareMetro:   {fareBus, fareTranvia, fareCable},
	fareBus:     {fareMetro, fareTranvia, fareCable},
	fareTranvia: {fareMetro, fareBus},
	fareCable:   {fareMetro, fareBus},
}

// categorize returns the fare category of a segment and false when the
// segment cannot be priced.
func categorize(s Segment) (fareCategory, bool) {
	if s.Type == TransportOtherTransit && s.Transit != nil && s.Transit.VehicleType != "" {
		cat, ok := vehicleCategories[strings.ToUpper(s.Transit.VehicleType)]
		return cat, ok
	}
	cat, ok := typeCategories[string(s.Type)]
	return cat, ok
}

func isPaid(s Segment) bool {
	cat, ok := categorize(s)
	return ok && cat != fareWalking
}

func integrates(prev, next fareCategory) bool {
	for _, c := range integrationPairs[prev] {
		if c == next {
			return true
		}
	}
	return false
}

// FareBreakdown is the result of pricing a route.
type FareBreakdown struct {
	Total          int
	HasIntegration bool
	Paid           int
	// Unpriced holds segments with a departure time that could not be priced
	// (unparseable time or unknown category), for logging.
	Unpriced []Segment
	// Computed is false when no segment could be priced and the provider
	// fare (or "$0") was used.
	Computed bool
	Text     string
}

type timedSegment struct {
	at     time.Time
	cat    fareCategory
	priced bool
}

// CalculateFare prices segments in departure order, applying the integration
// discount between compatible modes within IntegrationWindow. Legs are
// ordered by their epoch departure when every leg carries one, so trips
// crossing midnight keep their order; otherwise the departure text is
// compared within a single service day.
func CalculateFare(segments []Segment, providerFare string) FareBreakdown {
	var b FareBreakdown
	timed, unpriced, ok := timeByEpoch(segments)
	if !ok {
		timed, unpriced = timeByText(segments)
	}
	b.Unpriced = unpriced
	if len(timed) == 0 {
		b.Text = fallbackFare(providerFare)
		return b
	}

	sort.SliceStable(timed, func(i, j int) bool { return timed[i].at.Before(timed[j].at) })

	var (
		total    int
		lastTime time.Time
		lastCat  fareCategory
		havePrev bool
	)
	for _, t := range timed {
		if !t.priced || t.cat == fareWalking {
			continue
		}
		base := baseFares[t.cat]
		if havePrev && t.at.Sub(lastTime) <= IntegrationWindow && integrates(lastCat, t.cat) {
			total += base - IntegrationDiscount
			b.HasIntegration = true
		} else {
			total += base
		}
		lastTime, lastCat, havePrev = t.at, t.cat, true
		b.Paid++
	}

	if total < 0 {
		b.HasIntegration = false
		b.Text = fallbackFare(providerFare)
		return b
	}

	b.Total = total
	b.Computed = true
	b.Text = FormatFare(total, b.HasIntegration)
	return b
}

// timeByEpoch reports false unless every leg with a departure carries an
// epoch value.
func timeByEpoch(segments []Segment) (timed []timedSegment, unpriced []Segment, ok bool) {
	for _, s := range segments {
		hasEpoch := s.Transit != nil && s.Transit.DepartureUnix > 0
		if s.Type == "" || (s.DepartureTime() == "" && !hasEpoch) {
			continue
		}
		if !hasEpoch {
			return nil, nil, false
		}
		cat, priced := categorize(s)
		if !priced {
			unpriced = append(unpriced, s)
		}
		timed = append(timed, timedSegment{at: time.Unix(s.Transit.DepartureUnix, 0), cat: cat, priced: priced})
	}
	return timed, unpriced, len(timed) > 0
}

func timeByText(segments []Segment) (timed []timedSegment, unpriced []Segment) {
	for _, s := range segments {
		dep := s.DepartureTime()
		if s.Type == "" || dep == "" {
			continue
		}
		at, err := ParseTransitTime(dep)
		if err != nil {
			unpriced = append(unpriced, s)
			continue
		}
		cat, ok := categorize(s)
		if !ok {
			unpriced = append(unpriced, s)
		}
		timed = append(timed, timedSegment{at: at, cat: cat, priced: ok})
	}
	return timed, unpriced
}

// ComputeFare returns the display fare for segments. See CalculateFare.
func ComputeFare(segments []Segment, providerFare string) string {
	return CalculateFare(segments, providerFare).Text
}

// TransferCount is the number of paid legs minus one, never negative.
func TransferCount(segments []Segment) int {
	paid := 0
	for _, s := range segments {
		if isPaid(s) {
			paid++
		}
	}
	if paid == 0 {
		return 0
	}
	return paid - 1
}

// FormatFare renders an amount in Colombian style: "$2.400".
func FormatFare(amount int, integrated bool) string {
	text := "$" + strings.ReplaceAll(humanize.Comma(int64(amount)), ",", ".")
	if integrated {
		text += integrationFareSuffix
	}
	return text
}

func fallbackFare(providerFare string) string {
	if providerFare == "" {
		return "$0"
	}
	return providerFare
}

var transitTimeLayouts = []string{"15:04", "3:04pm"}

// ParseTransitTime parses provider departure time text such as "08:00",
// "8:05 AM" or "8:05 a. m." into a time on the zero date.
func ParseTransitTime(text string) (time.Time, error) {
	normalized := strings.ToLower(text)
	normalized = strings.NewReplacer(" ", "", ".", "", "\u00a0", "", "\u202f", "").Replace(normalized)

	var err error
	for _, layout := range transitTimeLayouts {
		var t time.Time
		t, err = time.Parse(layout, normalized)
		if err == nil {
			return t, nil
		}
	}
	return time.Time{}, err
}
