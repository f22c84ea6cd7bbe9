package style

import "math"

// MarkerRadiusPerSqrtArea converts the square root of a primary marker area
// (pt²) to a radius in logical pixels. The primary renderer draws a marker
// of area s with diameter sqrt(s) points, so the radius is half of that.
// TestReferenceSceneMarkerRadius in package refscene measures it on the
// primary raster.
const MarkerRadiusPerSqrtArea = 0.5

// MinMarkerRadius is the smallest radius emitted, keeping tiny stars visible.
const MinMarkerRadius = 0.5

// MarkerRadius converts an area-convention marker size to a radius in
// logical pixels. It is non-decreasing in area and independent of output
// resolution. Non-positive or non-finite areas yield MinMarkerRadius.
func MarkerRadius(area float64) float64 {
	if !(area > 0) || math.IsInf(area, 0) {
		return MinMarkerRadius
	}
	return math.Max(MarkerRadiusPerSqrtArea*math.Sqrt(area), MinMarkerRadius)
}
