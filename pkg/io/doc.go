// Package io reads and writes recordings and expected-count files as JSON.
//
// # Recording Format
//
// A recording file holds the projection and canvas descriptors and the
// ordered command list:
//
//	{
//	  "id": "4f6c…",
//	  "projection": {"id": "equirectangular", "domain": {…}, "rendered": {…}},
//	  "canvas": {"width": 800, "height": 600, "scale": 1},
//	  "commands": [
//	    {"kind": "points", "group": "stars", "z": 3, "style": {…}, "geometry": {…}}
//	  ]
//	}
//
// Every command is validated on import, so a file that decodes is safe to
// replay. Imported recordings are finalized.
//
// # Count Format
//
// An expected-count file maps group ids to the number of elements the
// domain side produced:
//
//	{"stars": 240, "constellations-line": 18}
//
// The consistency checker compares these against a recording.
package io
