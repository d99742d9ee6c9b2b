// Package geodist computes great-circle distances between coordinates.
package geodist

import (
	"fmt"
	"math"

	"github.com/nishkal/triage-api/refdata/entities"
)

const earthRadiusKm = 6371.0

// Coordinate is a WGS84 point in degrees.
type Coordinate struct {
	Lat float64 `json:"lat"`
	Lon float64 `json:"lon"`
}

// Validate rejects coordinates outside the valid degree ranges.
func (c Coordinate) Validate() error {
	if math.IsNaN(c.Lat) || c.Lat < -90 || c.Lat > 90 {
		return &entities.ValidationError{Field: "lat", Reason: fmt.Sprintf("must be within [-90, 90], got %v", c.Lat)}
	}
	if math.IsNaN(c.Lon) || c.Lon < -180 || c.Lon > 180 {
		return &entities.ValidationError{Field: "lon", Reason: fmt.Sprintf("must be within [-180, 180], got %v", c.Lon)}
	}
	return nil
}

// Distance returns the haversine great-circle distance in km between
// two coordinates given in degrees. Pure and symmetric.
func Distance(lat1, lon1, lat2, lon2 float64) float64 {
	dLat := degreesToRadians(lat2 - lat1)
	dLon := degreesToRadians(lon2 - lon1)

	a := math.Sin(dLat/2)*math.Sin(dLat/2) +
		math.Cos(degreesToRadians(lat1))*math.Cos(degreesToRadians(lat2))*
			math.Sin(dLon/2)*math.Sin(dLon/2)

	c := 2 * math.Atan2(math.Sqrt(a), math.Sqrt(1-a))
	return earthRadiusKm * c
}

// Between is Distance over Coordinate values.
func Between(a, b Coordinate) float64 {
	return Distance(a.Lat, a.Lon, b.Lat, b.Lon)
}

func degreesToRadians(deg float64) float64 {
	return deg * math.Pi / 180.0
}
