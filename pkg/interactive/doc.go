// Package interactive replays a recording into an interactive figure.
//
// [Renderer.Render] turns a finalized [ir.Recording] into a [Figure]: one
// [Trace] per command in ascending z-order (ties in recording order), a
// legend with one entry per group, and hover text synthesized from each
// element's metadata. The figure is an in-memory handle that can be
// inspected or adjusted before it is written as a standalone SVG or as a
// self-contained HTML document with pan, zoom, legend toggling and
// tooltips.
//
// Trace construction runs in parallel across commands; the legend and
// ordering pass is a single sequential merge afterwards, so the output is a
// pure function of the recording.
//
// # Budgets
//
// With [WithBudget], scenes whose point count exceeds the element budget,
// or whose construction overruns the time budget, are rendered in
// [ModeDecimated]: each point cluster keeps its largest markers in original
// order. Line, polygon, text and gradient commands are never decimated.
package interactive
