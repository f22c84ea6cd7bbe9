// Package primary defines the primitive drawing contract of the static
// renderer and provides [Canvas], a rasterizing implementation built on
// fogleman/gg.
//
// Domain code issues calls against [Renderer]. Calls are retained and
// painted in ascending z-order (ties in call order) when the image is
// requested, matching the deferred painter's model of the charts this
// bridge was built for.
//
// # Label survival
//
// [Renderer.Text] reports whether the label survived collision avoidance
// through [TextResult.Kept], together with the final anchor position and
// alignment. Callers that mirror the primary output, such as the recorder,
// act on that signal instead of re-deriving placement.
//
// # Units
//
// Coordinates are in the projection's rendered extent. Widths and font
// sizes are in points; marker sizes are areas in pt². One point is one
// logical pixel and the canvas scale multiplies logical pixels into raster
// pixels.
package primary
