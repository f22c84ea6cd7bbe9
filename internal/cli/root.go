// Package cli implements the starbridge command-line interface.
//
// # Commands
//
//   - demo: draw the reference sky chart and write the static PNG, the
//     interactive page, the recording and the expected counts
//   - render: replay a recording file into HTML, SVG, PNG or figure JSON
//   - compare: fingerprint two images and report their distance
//   - check: compare a recording with its replay and with expected counts
//   - verify: compare a static PNG with the replayed figure
//   - serve: preview a recording in the browser
//   - cache: manage the artifact cache
//
// # Configuration
//
// Settings are read from a TOML file (see package config). Flags that are
// set explicitly override the file.
//
// # Logging
//
// All commands support --verbose (-v) for debug-level logging.
package cli
