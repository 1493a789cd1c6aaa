// Package worker provides background job processing for the trip planner.
package worker

import (
	"time"

	"github.com/smartmobility/tripplanner/internal/routing"
)

// Hub is a high-traffic origin that trips are pre-planned from.
type Hub struct {
	Name     string
	Location routing.Coordinate
}

// WarmConfig holds configuration for the route warm-up job.
type WarmConfig struct {
	// Hubs are the origins to plan from.
	// If empty, uses DefaultHubs.
	Hubs []Hub

	// Destinations are free-text queries resolved through geocoding.
	// If empty, uses DefaultDestinations.
	Destinations []string

	// Concurrency is the number of trips planned at once.
	// Default: 3
	Concurrency int

	// Timeout bounds each geocode or plan call.
	// Default: 30 seconds
	Timeout time.Duration
}

// DefaultWarmConfig returns the default warm-up configuration.
func DefaultWarmConfig() WarmConfig {
	return WarmConfig{
		Hubs:         DefaultHubs(),
		Destinations: DefaultDestinations(),
		Concurrency:  3,
		Timeout:      30 * time.Second,
	}
}

// DefaultHubs returns the main Metro de Medellín interchange stations.
func DefaultHubs() []Hub {
	return []Hub{
		{Name: "San Antonio", Location: routing.Coordinate{Latitude: 6.2470, Longitude: -75.5694}},
		{Name: "Poblado", Location: routing.Coordinate{Latitude: 6.2125, Longitude: -75.5781}},
		{Name: "Niquía", Location: routing.Coordinate{Latitude: 6.3373, Longitude: -75.5441}},
		{Name: "Itagüí", Location: routing.Coordinate{Latitude: 6.1635, Longitude: -75.6101}},
		{Name: "San Javier", Location: routing.Coordinate{Latitude: 6.2560, Longitude: -75.6133}},
	}
}

// DefaultDestinations returns frequently searched places in Medellín.
func DefaultDestinations() []string {
	return []string{
		"Parque Lleras",
		"Plaza Botero",
		"Parque Arví",
		"Jardín Botánico de Medellín",
		"Pueblito Paisa",
		"Estadio Atanasio Girardot",
	}
}

func (c WarmConfig) withDefaults() WarmConfig {
	if len(c.Hubs) == 0 {
		c.Hubs = DefaultHubs()
	}
	if len(c.Destinations) == 0 {
		c.Destinations = DefaultDestinations()
	}
	if c.Concurrency <= 0 {
		c.Concurrency = 3
	}
	if c.Timeout <= 0 {
		c.Timeout = 30 * time.Second
	}
	return c
}

// TotalTrips returns the number of hub-destination pairs the job plans.
func (c WarmConfig) TotalTrips() int {
	c = c.withDefaults()
	return len(c.Hubs) * len(c.Destinations)
}
