package main

import (
	"fmt"
	"net/http"

	"github.com/tkrajina/go-elevations/geoelevations"
	"github.com/tkrajina/gpxgo/gpx"
)

var SrtmClient *geoelevations.Srtm

// fillElevations looks up an SRTM elevation for every track point without
// one. Points inserted by an add mode snap carry no elevation, so this fills
// exactly those, plus any original points that had none recorded.
func fillElevations(doc *gpx.GPX) error {
	if SrtmClient == nil {
		var err error
		SrtmClient, err = geoelevations.NewSrtm(http.DefaultClient)
		if err != nil {
			return fmt.Errorf("creating srtm client: %w", err)
		}
	}
	var filled int
	for ti := range doc.Tracks {
		for si := range doc.Tracks[ti].Segments {
			points := doc.Tracks[ti].Segments[si].Points
			for i := range points {
				if points[i].Elevation.NotNull() {
					continue
				}
				elevation, err := SrtmClient.GetElevation(http.DefaultClient, points[i].Latitude, points[i].Longitude)
				if err != nil {
					return fmt.Errorf("looking up elevation for %.5f, %.5f: %w", points[i].Latitude, points[i].Longitude, err)
				}
				points[i].Elevation.SetValue(elevation)
				filled++
			}
		}
	}
	logf("filled %d elevations\n", filled)
	return nil
}
