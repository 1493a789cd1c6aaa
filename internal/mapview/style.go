package mapview

import (
	"github.com/smartmobility/tripplanner/internal/report"
	"github.com/smartmobility/tripplanner/internal/routing"
)

// Segment stroke colors.
const (
	WalkingColor      = "#4CAF50"
	BusColor          = routing.DefaultBusColor
	MetroColor        = "#FF5722"
	OtherTransitColor = "#9C27B0"
	OverviewColor     = "#1976D2"
)

// Stroke widths.
const (
	SegmentWidth  = 5
	OverviewWidth = 4
)

// Default marker styles for unknown place types and report categories.
const (
	DefaultPlaceColor  = "#607D8B"
	DefaultPlaceIcon   = "location"
	DefaultReportColor = "#8E8E93"
	DefaultReportIcon  = "help-circle"
)

type markerStyle struct {
	color string
	icon  string
}

var placeStyles = map[string]markerStyle{
	"restaurant":            {"#FF6B35", "restaurant"},
	"cafe":                  {"#8B4513", "cafe"},
	"shopping_mall":         {"#9C27B0", "storefront"},
	"tourist_attraction":    {"#4CAF50", "camera"},
	"museum":                {"#3F51B5", "library"},
	"pharmacy":              {"#F44336", "medical"},
	"hospital":              {"#E91E63", "medical"},
	"school":                {"#FFC107", "school"},
	"police":                {"#1976D2", "shield-checkmark"},
	"gas_station":           {"#009688", "car-sport"},
	"parking":               {"#4CAF50", "car"},
	"bus_station":           {"#FF9800", "bus"},
	"subway_station":        {"#673AB7", "train"},
	"transit_station":       {"#2196F3", "train"},
	"taxi_stand":            {"#FFEB3B", "car"},
	"car_repair":            {"#795548", "construct"},
	"traffic_control_point": {"#F44336", "warning"},
}

var reportStyles = map[report.Category]markerStyle{
	report.CategoryAccessibility:  {"#FF6B35", "accessibility"},
	report.CategorySafety:         {"#FF3B30", "shield-half"},
	report.CategoryInfrastructure: {"#FF9500", "hammer"},
	report.CategoryTransport:      {"#007AFF", "bus"},
	report.CategoryOther:          {"#8E8E93", "help-circle"},
}

// PlaceStyle returns the marker color and icon for a place type.
func PlaceStyle(placeType string) (color, icon string) {
	if s, ok := placeStyles[placeType]; ok {
		return s.color, s.icon
	}
	return DefaultPlaceColor, DefaultPlaceIcon
}

// ReportStyle returns the marker color and icon for a report category.
func ReportStyle(category report.Category) (color, icon string) {
	if s, ok := reportStyles[category]; ok {
		return s.color, s.icon
	}
	return DefaultReportColor, DefaultReportIcon
}

// SegmentColor returns the stroke color of a route segment.
func SegmentColor(seg routing.Segment) string {
	switch seg.Type {
	case routing.TransportWalking:
		return WalkingColor
	case routing.TransportBus:
		if seg.Transit != nil && seg.Transit.Color != "" {
			return seg.Transit.Color
		}
		return BusColor
	case routing.TransportMetro:
		return MetroColor
	default:
		return OtherTransitColor
	}
}
