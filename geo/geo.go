package geo

import (
	"math"
)

// EarthRadius is the sphere radius used for all distance calculations, in meters.
const EarthRadius = 6371000.0

type Pos struct {
	Lat, Lon float64
}

// distance in meters to another position (only considering lat and lon)
func (p1 Pos) Distance(p2 Pos) float64 {
	radlat1 := radians(p1.Lat)
	radlat2 := radians(p2.Lat)
	sinlat := math.Sin(radians(p2.Lat-p1.Lat) / 2)
	sinlon := math.Sin(radians(p2.Lon-p1.Lon) / 2)

	a := sinlat*sinlat + math.Cos(radlat1)*math.Cos(radlat2)*sinlon*sinlon

	// Rounding can push a fractionally outside [0, 1], and Sqrt and Asin both
	// need it inside.
	if a < 0 {
		a = 0
	}
	if a > 1 {
		a = 1
	}

	return 2 * EarthRadius * math.Asin(math.Sqrt(a))
}

// Project returns the closest position to w on the segment from a to b, and
// the normalised parameter t along the segment (0 at a, 1 at b).
//
// The segment is treated as a straight line in a local planar frame with
// longitude scaled by the cosine of the mean latitude, which is accurate for
// the short spans found between track points. The returned position
// interpolates the original coordinates so that t=0 and t=1 reproduce a and b
// exactly.
func Project(w, a, b Pos) (Pos, float64) {
	coslat := math.Cos(radians((a.Lat + b.Lat) / 2))

	ax, ay := a.Lon*coslat, a.Lat
	bx, by := b.Lon*coslat, b.Lat
	wx, wy := w.Lon*coslat, w.Lat

	dx, dy := bx-ax, by-ay
	lensq := dx*dx + dy*dy
	if lensq == 0 {
		// a and b coincide, so the whole segment is a single position.
		return a, 0
	}

	t := ((wx-ax)*dx + (wy-ay)*dy) / lensq
	if t < 0 {
		t = 0
	}
	if t > 1 {
		t = 1
	}

	return Pos{
		Lat: a.Lat + t*(b.Lat-a.Lat),
		Lon: a.Lon + t*(b.Lon-a.Lon),
	}, t
}

func radians(deg float64) float64 {
	return deg * math.Pi / 180
}
