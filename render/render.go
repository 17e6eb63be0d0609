// Package render draws a quick preview image of a gpx document, so the
// effect of an edit can be checked without loading the file into a viewer.
package render

import (
	"errors"
	"fmt"
	"image/png"
	"math"
	"os"

	"github.com/fogleman/gg"
	"github.com/tkrajina/gpxgo/gpx"
)

const (
	// Size is the width and height of the preview canvas in pixels.
	Size = 1024
	// Margin keeps the drawing clear of the canvas edge, in pixels.
	Margin = 40
)

// Preview renders the document's tracks and waypoints to a png file. Tracks
// are drawn as lines and waypoints as labelled dots, fitted to the canvas.
func Preview(doc *gpx.GPX, fpath string) error {
	tr, ok := fit(doc)
	if !ok {
		return errors.New("document has no points to draw")
	}

	dc := gg.NewContext(Size, Size)
	dc.SetRGB(1, 1, 1)
	dc.Clear()

	dc.SetRGBA(0.1, 0.3, 0.8, 1)
	dc.SetLineWidth(2.0)
	dc.SetLineCap(gg.LineCapRound)
	dc.SetLineJoin(gg.LineJoinRound)
	for ti := range doc.Tracks {
		for si := range doc.Tracks[ti].Segments {
			points := doc.Tracks[ti].Segments[si].Points
			for i := range points {
				x, y := tr.pixel(points[i].Latitude, points[i].Longitude)
				if i == 0 {
					dc.MoveTo(x, y)
				} else {
					dc.LineTo(x, y)
				}
			}
			dc.Stroke()
		}
	}

	dc.SetRGBA(0.9, 0.2, 0.1, 1)
	for i := range doc.Waypoints {
		x, y := tr.pixel(doc.Waypoints[i].Latitude, doc.Waypoints[i].Longitude)
		dc.DrawCircle(x, y, 4)
		dc.Fill()
		if name := doc.Waypoints[i].Name; name != "" {
			dc.DrawStringAnchored(name, x, y-8, 0.5, 0)
		}
	}

	file, err := os.Create(fpath)
	if err != nil {
		return fmt.Errorf("creating %q: %w", fpath, err)
	}
	defer file.Close()
	if err := png.Encode(file, dc.Image()); err != nil {
		return fmt.Errorf("encoding %q: %w", fpath, err)
	}
	return nil
}

// transform maps mercator coordinates onto the canvas with a uniform scale,
// centered.
type transform struct {
	minX, minY       float64
	scale            float64
	offsetX, offsetY float64
}

func (tr transform) pixel(lat, lon float64) (float64, float64) {
	x, y := mercator(lat, lon)
	return (x-tr.minX)*tr.scale + tr.offsetX, (y-tr.minY)*tr.scale + tr.offsetY
}

// fit builds the transform covering every position in the document. ok is
// false when the document has no positions at all.
func fit(doc *gpx.GPX) (tr transform, ok bool) {
	minX, minY := math.Inf(1), math.Inf(1)
	maxX, maxY := math.Inf(-1), math.Inf(-1)
	each(doc, func(lat, lon float64) {
		x, y := mercator(lat, lon)
		minX, minY = math.Min(minX, x), math.Min(minY, y)
		maxX, maxY = math.Max(maxX, x), math.Max(maxY, y)
		ok = true
	})
	if !ok {
		return transform{}, false
	}

	scale := 1.0
	if span := math.Max(maxX-minX, maxY-minY); span > 0 {
		scale = (Size - 2*Margin) / span
	}
	return transform{
		minX:    minX,
		minY:    minY,
		scale:   scale,
		offsetX: (Size - (maxX-minX)*scale) / 2,
		offsetY: (Size - (maxY-minY)*scale) / 2,
	}, true
}

func each(doc *gpx.GPX, fn func(lat, lon float64)) {
	for ti := range doc.Tracks {
		for si := range doc.Tracks[ti].Segments {
			for _, p := range doc.Tracks[ti].Segments[si].Points {
				fn(p.Latitude, p.Longitude)
			}
		}
	}
	for _, w := range doc.Waypoints {
		fn(w.Latitude, w.Longitude)
	}
}

// mercator converts latitude and longitude to normalised web mercator
// coordinates, so x and y distortion match and tracks keep their shape.
func mercator(lat, lon float64) (float64, float64) {
	// The projection blows up at the poles.
	lat = math.Max(-85.05112878, math.Min(85.05112878, lat))

	sinLat := math.Sin(lat * math.Pi / 180.0)
	x := (lon + 180.0) / 360.0
	y := 0.5 - math.Log((1.0+sinLat)/(1.0-sinLat))/(4.0*math.Pi)
	return x, y
}
