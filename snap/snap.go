// Package snap moves or inserts GPX track points so that a track passes
// through the waypoints recorded alongside it.
package snap

import (
	"fmt"
	"math"
	"sort"

	"github.com/dave/gpxsnap/geo"
	"github.com/tkrajina/gpxgo/gpx"
)

// Tolerances for treating a projected position as coinciding with an existing
// track vertex. ParamTol catches projections at the very ends of an edge.
// VertexTol is a fallback in meters for long edges, where even a tiny
// parameter offset leaves the t check short of the ends.
var (
	ParamTol  = 1e-9
	VertexTol = 0.05
)

// Mode selects how a matched waypoint is merged into the track.
type Mode int

const (
	// Add keeps every original vertex and inserts new points so the track
	// detours through the waypoint.
	Add Mode = iota
	// Move drags the nearest existing vertex onto the waypoint.
	Move
)

func (m Mode) String() string {
	switch m {
	case Add:
		return "add"
	case Move:
		return "move"
	}
	return fmt.Sprintf("Mode(%d)", int(m))
}

// ParseMode converts a mode name from the command line.
func ParseMode(s string) (Mode, error) {
	switch s {
	case "add":
		return Add, nil
	case "move":
		return Move, nil
	}
	return 0, fmt.Errorf("unknown mode %q (expected add or move)", s)
}

// Options controls a snap run.
type Options struct {
	Mode Mode
	// MaxDistance is how far away a waypoint may be from a segment and still
	// be snapped onto it, in meters.
	MaxDistance float64
}

// Stats summarises what a snap run did.
type Stats struct {
	Matched  int // waypoint/segment pairs within range
	Inserted int // track points added (add mode)
	Moved    int // track points relocated (move mode)
}

// Match describes the closest position on a segment to a waypoint.
type Match struct {
	// Distance from the waypoint to the closest position, in meters.
	Distance float64
	// Edge is the index of the first vertex of the winning edge.
	Edge int
	// Projected is the closest position itself.
	Projected geo.Pos
	// T is the parameter along the winning edge (0 at Edge, 1 at Edge+1).
	T float64
	// Vertex is the index of the track vertex the projection coincides with,
	// or -1 when it falls strictly between two vertices.
	Vertex int
}

// Snap matches every waypoint in doc against every track segment and applies
// the selected mode to each pair within range. Segments are edited
// independently, so a waypoint near several tracks is snapped into each of
// them. Waypoints themselves are never modified.
func Snap(doc *gpx.GPX, opts Options) Stats {
	var stats Stats
	for ti := range doc.Tracks {
		for si := range doc.Tracks[ti].Segments {
			segment := &doc.Tracks[ti].Segments[si]
			switch opts.Mode {
			case Move:
				moveWaypoints(segment, doc.Waypoints, opts.MaxDistance, &stats)
			default:
				addWaypoints(segment, doc.Waypoints, opts.MaxDistance, &stats)
			}
		}
	}
	return stats
}

// ClosestOnSegment scans every edge of a polyline for the position closest to
// w. With no points the distance is +Inf, and a single point is its own
// closest position. The scan keeps the first of equally distant edges.
func ClosestOnSegment(w geo.Pos, points []gpx.GPXPoint) Match {
	if len(points) == 0 {
		return Match{Distance: math.Inf(1), Vertex: -1}
	}
	if len(points) == 1 {
		p := pos(points[0])
		return Match{Distance: w.Distance(p), Projected: p, Vertex: 0}
	}

	best := Match{Distance: math.Inf(1), Vertex: -1}
	for i := 0; i < len(points)-1; i++ {
		projected, t := geo.Project(w, pos(points[i]), pos(points[i+1]))
		if d := w.Distance(projected); d < best.Distance {
			best = Match{Distance: d, Edge: i, Projected: projected, T: t, Vertex: -1}
		}
	}

	switch {
	case best.T < ParamTol:
		best.Vertex = best.Edge
	case best.T > 1-ParamTol:
		best.Vertex = best.Edge + 1
	case best.Projected.Distance(pos(points[best.Edge])) < VertexTol:
		best.Vertex = best.Edge
	case best.Projected.Distance(pos(points[best.Edge+1])) < VertexTol:
		best.Vertex = best.Edge + 1
	}
	return best
}

// ClosestVertex returns the distance to the vertex nearest w and its index,
// keeping the first of equally distant vertices. The index is -1 when points
// is empty.
func ClosestVertex(w geo.Pos, points []gpx.GPXPoint) (float64, int) {
	best, index := math.Inf(1), -1
	for i := range points {
		if d := w.Distance(pos(points[i])); d < best {
			best, index = d, i
		}
	}
	return best, index
}

// insertion is a pending edit: points to splice into the segment at index.
// Indices refer to the unmodified point slice.
type insertion struct {
	index  int
	points []gpx.GPXPoint
}

func addWaypoints(segment *gpx.GPXTrackSegment, waypoints []gpx.GPXPoint, maxdist float64, stats *Stats) {
	var insertions []insertion
	for i := range waypoints {
		w := pos(waypoints[i])
		m := ClosestOnSegment(w, segment.Points)
		if m.Distance > maxdist {
			continue
		}
		stats.Matched++
		if m.Vertex >= 0 {
			// The projection coincides with an existing vertex. Keep it,
			// detour to the waypoint, then return via a copy of the vertex so
			// the rest of the track is unchanged.
			insertions = append(insertions, insertion{
				index:  m.Vertex + 1,
				points: []gpx.GPXPoint{barePoint(w), clonePoint(segment.Points[m.Vertex])},
			})
		} else {
			// Strictly between two vertices: approach along the original
			// edge, detour to the waypoint, and rejoin at the same projected
			// position.
			insertions = append(insertions, insertion{
				index:  m.Edge + 1,
				points: []gpx.GPXPoint{barePoint(m.Projected), barePoint(w), barePoint(m.Projected)},
			})
		}
	}

	// All indices are against the original points, so apply from the highest
	// index down. The stable sort keeps same-index groups in collection
	// order.
	sort.SliceStable(insertions, func(i, j int) bool {
		return insertions[i].index > insertions[j].index
	})
	for _, ins := range insertions {
		segment.Points = splice(segment.Points, ins.index, ins.points)
		stats.Inserted += len(ins.points)
	}
}

func moveWaypoints(segment *gpx.GPXTrackSegment, waypoints []gpx.GPXPoint, maxdist float64, stats *Stats) {
	for i := range waypoints {
		w := pos(waypoints[i])
		d, index := ClosestVertex(w, segment.Points)
		if index < 0 || d > maxdist {
			continue
		}
		stats.Matched++
		// Only the coordinates move. Elevation, time and the rest of the
		// vertex stay as recorded.
		segment.Points[index].Latitude = w.Lat
		segment.Points[index].Longitude = w.Lon
		stats.Moved++
	}
}

func pos(p gpx.GPXPoint) geo.Pos {
	return geo.Pos{Lat: p.Latitude, Lon: p.Longitude}
}

// barePoint builds a track point carrying only coordinates. Synthesized
// points have no meaningful elevation or timestamp, so none are set.
func barePoint(p geo.Pos) gpx.GPXPoint {
	return gpx.GPXPoint{Point: gpx.Point{Latitude: p.Lat, Longitude: p.Lon}}
}

// clonePoint copies every attribute of an existing track point. GPXPoint is a
// value type, so the copy is independent of later edits to the original.
func clonePoint(p gpx.GPXPoint) gpx.GPXPoint {
	return p
}

func splice(points []gpx.GPXPoint, index int, insert []gpx.GPXPoint) []gpx.GPXPoint {
	out := make([]gpx.GPXPoint, 0, len(points)+len(insert))
	out = append(out, points[:index]...)
	out = append(out, insert...)
	out = append(out, points[index:]...)
	return out
}
