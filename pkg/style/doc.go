// Package style converts between the primary renderer's style conventions,
// the normalized IR style schema and the interactive renderer's encoding.
//
// Every function is pure and every table is a package-level value that is
// never written after initialization, so scenes may be converted
// concurrently. Unknown inputs never fail: each lookup falls back to a
// documented default and reports the substitution through its boolean
// result so callers can log it.
//
// # Size calibration
//
// The primary renderer sizes markers by area: a marker of size s (pt²) is
// drawn with a diameter of sqrt(s) points. The interactive renderer sizes
// markers by radius in logical pixels, where one logical pixel equals one
// point at scale 1. [MarkerRadius] therefore uses the single constant
// [MarkerRadiusPerSqrtArea] = 0.5. Canvas resolution never enters the
// function; both renderers multiply logical units by the same output scale
// when rasterizing.
package style
