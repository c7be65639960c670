package geotracker

import (
	"fmt"
	"math"
	"strconv"
	"time"

	"github.com/mmcloughlin/geohash"

	"github.com/barnybug/geotracker/lib/mapview"
)

// Reading is the four raw source values before validation.
type Reading struct {
	Latitude  float64
	Longitude float64
	Altitude  float64
	Speed     float64
}

// TrackPoint is one validated position. Points are never modified once
// written to the history.
type TrackPoint struct {
	Timestamp time.Time `json:"timestamp"`
	Latitude  float64   `json:"latitude"`
	Longitude float64   `json:"longitude"`
	Altitude  float64   `json:"altitude"`
	Speed     float64   `json:"speed"`
	Geohash   string    `json:"geohash,omitempty"`
}

type bounds struct {
	field    string
	min, max float64
}

var fieldBounds = []bounds{
	{"latitude", -90, 90},
	{"longitude", -180, 180},
	{"altitude", -10000, 10000},
	{"speed", 0, math.Inf(1)},
}

// ValueError reports the first field of a reading that failed validation.
type ValueError struct {
	Field  string
	Value  float64
	Raw    string
	Reason string
}

func (e *ValueError) Error() string {
	value := e.Raw
	if value == "" {
		value = strconv.FormatFloat(e.Value, 'f', -1, 64)
	}
	return fmt.Sprintf("%s %s: %s", e.Field, value, e.Reason)
}

func (r Reading) values() []float64 {
	return []float64{r.Latitude, r.Longitude, r.Altitude, r.Speed}
}

// Validate checks every field is finite and within range, returning the
// TrackPoint or a *ValueError for the first bad field.
func Validate(r Reading) (TrackPoint, error) {
	for i, v := range r.values() {
		b := fieldBounds[i]
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return TrackPoint{}, &ValueError{Field: b.field, Value: v, Reason: "not a finite number"}
		}
		if v < b.min || v > b.max {
			reason := fmt.Sprintf("out of range [%v, %v]", b.min, b.max)
			if math.IsInf(b.max, 1) {
				reason = fmt.Sprintf("must be >= %v", b.min)
			}
			return TrackPoint{}, &ValueError{Field: b.field, Value: v, Reason: reason}
		}
	}
	return TrackPoint{
		Latitude:  r.Latitude,
		Longitude: r.Longitude,
		Altitude:  r.Altitude,
		Speed:     r.Speed,
		Geohash:   geohash.EncodeWithPrecision(r.Latitude, r.Longitude, geohashPrecision),
	}, nil
}

func (p TrackPoint) MapPoint() mapview.Point {
	return mapview.Point{
		Latitude:  p.Latitude,
		Longitude: p.Longitude,
		Altitude:  p.Altitude,
		Speed:     p.Speed,
	}
}

func mapPoints(points []TrackPoint) []mapview.Point {
	ret := make([]mapview.Point, len(points))
	for i, p := range points {
		ret[i] = p.MapPoint()
	}
	return ret
}

const earthRadius = 6371.0 // km

// ~5m cells
const geohashPrecision = 9

// Distance between two points in kilometres (haversine).
func Distance(a, b TrackPoint) float64 {
	lat1 := a.Latitude * math.Pi / 180.0
	lon1 := a.Longitude * math.Pi / 180.0
	lat2 := b.Latitude * math.Pi / 180.0
	lon2 := b.Longitude * math.Pi / 180.0

	dLat := lat2 - lat1
	dLon := lon2 - lon1
	h := math.Sin(dLat/2)*math.Sin(dLat/2) + math.Cos(lat1)*math.Cos(lat2)*math.Sin(dLon/2)*math.Sin(dLon/2)
	return earthRadius * 2 * math.Atan2(math.Sqrt(h), math.Sqrt(1-h))
}

// TrackLength is the total distance along the track in kilometres.
func TrackLength(points []TrackPoint) float64 {
	total := 0.0
	for i := 1; i < len(points); i++ {
		total += Distance(points[i-1], points[i])
	}
	return total
}
