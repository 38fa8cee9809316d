package models

import (
	"fmt"
	"math"
)

// Coordinate is a position in decimal degrees.
type Coordinate struct {
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
}

// Validate reports whether the coordinate lies on the globe.
func (c Coordinate) Validate() error {
	if math.IsNaN(c.Latitude) || c.Latitude < -90 || c.Latitude > 90 {
		return fmt.Errorf("invalid latitude: %f", c.Latitude)
	}
	if math.IsNaN(c.Longitude) || c.Longitude < -180 || c.Longitude > 180 {
		return fmt.Errorf("invalid longitude: %f", c.Longitude)
	}
	return nil
}

// Station is a charging station as stored by the persistence layer.
// Cars is the number of charge points currently free.
type Station struct {
	ID        int64   `json:"id" db:"id" dynamodbav:"id"`
	Name      string  `json:"name" db:"name" dynamodbav:"name"`
	Location  string  `json:"location" db:"location" dynamodbav:"location"`
	Latitude  float64 `json:"latitude" db:"latitude" dynamodbav:"latitude"`
	Longitude float64 `json:"longitude" db:"longitude" dynamodbav:"longitude"`
	Cars      int     `json:"cars" db:"cars" dynamodbav:"cars"`
}

func (s Station) Coordinate() Coordinate {
	return Coordinate{Latitude: s.Latitude, Longitude: s.Longitude}
}

// Query is a single nearest-station request.
type Query struct {
	Point    Coordinate
	RadiusKm float64
}

// RankedStation is a station together with its distance from the query point.
type RankedStation struct {
	Station
	DistanceKm float64 `json:"distanceKm"`
}
