// Package pkg provides the core libraries for Starbridge, which replays
// static sky charts as interactive figures.
//
// # Overview
//
// A plotting library draws through a primary renderer that rasterizes
// onto a canvas. Starbridge wraps that renderer in a recorder so every
// accepted drawing call is also captured as a typed command. The recording
// is later replayed by an interactive renderer into a zoomable, hoverable
// figure, and a consistency checker confirms the two renderings agree.
//
// # Architecture
//
//	domain plotting code
//	         ↓
//	    [session] (canvas + recorder + renderer for one plot)
//	         ↓
//	    [recorder] ──→ [primary] (static PNG/PDF)
//	         ↓
//	    [ir] recording ──→ [io] (JSON files)
//	         ↓
//	    [interactive] figure (SVG/HTML/JSON)
//	         ↓
//	    [rasterize] ──→ [consistency] (fingerprint + count checks)
//
// [pipeline] ties replay, export and verification together behind a
// [cache], and is what the command-line tool and the preview server use.
//
// # Main Packages
//
// [ir] - The intermediate representation: geometry variants, normalized
// style, per-element metadata, and the append-only recording.
//
// [style] - Colour parsing, marker and line-style mapping, and size
// calibration shared by both renderers.
//
// [primary] - The static renderer interface and a canvas implementation on
// fogleman/gg with label collision avoidance.
//
// [recorder] - A decorator that forwards each call to the primary renderer
// and records it only when the call succeeds.
//
// [interactive] - Replays a recording into a figure of traces, with
// worker-parallel trace building and decimation under an element or time
// budget.
//
// [rasterize] - Turns figures back into images with a pure-Go vector
// backend, rsvg-convert or headless Chromium.
//
// [consistency] - Perceptual fingerprint comparison and per-group element
// count checks.
//
// [refscene] - A deterministic reference sky chart for demos and tests.
//
// ## Infrastructure
//
// [cache] - File, Redis and null caches for recordings, figures and
// artifacts, with content-addressed keys.
//
// [config] - TOML configuration file.
//
// [observability] - Hooks for recording, rendering, cache and HTTP events.
//
// [errors] - Error codes shared by every package.
package pkg
