package main

import (
	"fmt"
	"math"
	"os"
	"path/filepath"
	"strconv"
	"strings"
)

// deriveOutputPath names the output after the input file and the snap
// distance, so track.gpx with distance 100 becomes track_snapped_100.gpx.
func deriveOutputPath(input string, dist float64) string {
	base := strings.TrimSuffix(input, filepath.Ext(input))
	return fmt.Sprintf("%s_snapped_%s.gpx", base, formatDist(dist))
}

// formatDist renders whole-meter distances without a decimal point.
func formatDist(dist float64) string {
	if dist == math.Trunc(dist) {
		return strconv.FormatInt(int64(dist), 10)
	}
	return strconv.FormatFloat(dist, 'f', -1, 64)
}

// writeOutput refuses to replace an existing file unless overwrite is set.
func writeOutput(fpath string, data []byte, overwrite bool) error {
	if !overwrite {
		if _, err := os.Stat(fpath); err == nil {
			return fmt.Errorf("%s already exists (use --overwrite to replace it)", fpath)
		}
	}
	if err := os.WriteFile(fpath, data, 0644); err != nil {
		return fmt.Errorf("writing output: %w", err)
	}
	return nil
}
