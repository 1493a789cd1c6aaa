package main

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"text/tabwriter"

	"github.com/smartmobility/tripplanner/internal/routing"
)

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

// printRoutes writes one block per route: a summary line and its segments.
func printRoutes(w io.Writer, routes []routing.Route) {
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	for i, r := range routes {
		if i > 0 {
			fmt.Fprintln(tw)
		}
		fmt.Fprintf(tw, "Ruta %d\t%s\t%s\ttarifa %s\ttransbordos %d\tcaminata %d min\n",
			r.ID+1, r.Duration, r.Distance, r.Fare, r.Transfers, r.WalkingMinutes)
		for _, seg := range r.Segments {
			fmt.Fprintf(tw, "  %s\t%s\t%s\n", seg.Type, seg.Duration, describeSegment(seg))
		}
	}
	_ = tw.Flush()
}

func describeSegment(seg routing.Segment) string {
	switch {
	case seg.Walking != nil:
		parts := []string{seg.Walking.Distance}
		if seg.Walking.ToBusStop != "" {
			parts = append(parts, "hasta "+seg.Walking.ToBusStop)
		}
		return strings.Join(parts, " ")
	case seg.Transit != nil:
		t := seg.Transit
		desc := fmt.Sprintf("%s: %s -> %s (%d paradas)", t.Name, t.DepartureStop, t.ArrivalStop, t.NumStops)
		if t.DepartureTime != "" {
			desc += " sale " + t.DepartureTime
		}
		return desc
	default:
		return ""
	}
}
