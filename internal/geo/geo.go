package geo

import "math"

// Coordinate is a WGS84 latitude/longitude pair.
type Coordinate struct {
	Latitude  float64
	Longitude float64
}

// Kaaba is the reference point for Qibla bearing calculations.
var Kaaba = Coordinate{Latitude: 21.4225, Longitude: 39.8262}

const earthRadiusMeters = 6371000

func radians(deg float64) float64 {
	return deg * math.Pi / 180
}

// Distance returns the haversine great-circle distance between two points in meters.
func Distance(a, b Coordinate) float64 {
	lat1 := radians(a.Latitude)
	lat2 := radians(b.Latitude)
	dLat := radians(b.Latitude - a.Latitude)
	dLng := radians(b.Longitude - a.Longitude)

	h := math.Sin(dLat/2)*math.Sin(dLat/2) +
		math.Cos(lat1)*math.Cos(lat2)*math.Sin(dLng/2)*math.Sin(dLng/2)
	return earthRadiusMeters * 2 * math.Atan2(math.Sqrt(h), math.Sqrt(1-h))
}

// Bearing returns the initial great-circle bearing from a to b in degrees [0, 360).
func Bearing(a, b Coordinate) float64 {
	dLng := radians(b.Longitude - a.Longitude)
	lat1 := radians(a.Latitude)
	lat2 := radians(b.Latitude)

	y := math.Sin(dLng) * math.Cos(lat2)
	x := math.Cos(lat1)*math.Sin(lat2) - math.Sin(lat1)*math.Cos(lat2)*math.Cos(dLng)

	deg := math.Atan2(y, x) * 180 / math.Pi
	return math.Mod(deg+360, 360)
}

// QiblaBearing returns the bearing from the given position to the Kaaba.
func QiblaBearing(from Coordinate) float64 {
	return Bearing(from, Kaaba)
}

// Round4 rounds a coordinate component to 4 decimal places (~11 m), the
// precision used when sharing a position in a panic alert.
func Round4(v float64) float64 {
	return math.Round(v*1e4) / 1e4
}
