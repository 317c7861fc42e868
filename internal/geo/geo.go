// Package geo holds the great-circle math shared by the in-memory directory
// and the match service. Distances are in meters, coordinates in degrees.
package geo

import "math"

// EarthRadiusMeters matches the radius MongoDB uses for spherical 2dsphere
// queries, so both directory backends agree on boundary cases.
const EarthRadiusMeters = 6378100.0

// BoundaryToleranceMeters absorbs floating point error for points that sit
// exactly on the search radius.
const BoundaryToleranceMeters = 1e-3

func KmToMeters(km float64) float64 { return km * 1000 }

func MetersToKm(m float64) float64 { return m / 1000 }

func toRad(deg float64) float64 { return deg * math.Pi / 180 }

// DistanceMeters returns the haversine distance between two lat/lng points.
func DistanceMeters(lat1, lng1, lat2, lng2 float64) float64 {
	phi1, phi2 := toRad(lat1), toRad(lat2)
	dPhi := toRad(lat2 - lat1)
	dLambda := toRad(lng2 - lng1)

	a := math.Sin(dPhi/2)*math.Sin(dPhi/2) +
		math.Cos(phi1)*math.Cos(phi2)*math.Sin(dLambda/2)*math.Sin(dLambda/2)
	if a > 1 {
		a = 1
	}
	return 2 * EarthRadiusMeters * math.Asin(math.Sqrt(a))
}

// Within reports whether distance d is inside radius r, boundary included.
func Within(d, r float64) bool {
	return d <= r+BoundaryToleranceMeters
}

// ValidLat and ValidLng check degree ranges.
func ValidLat(lat float64) bool { return !math.IsNaN(lat) && lat >= -90 && lat <= 90 }

func ValidLng(lng float64) bool { return !math.IsNaN(lng) && lng >= -180 && lng <= 180 }
