package style

import (
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// legendNames maps well-known group ids to display names.
var legendNames = map[string]string{
	"stars":                     "Stars",
	"constellations-line":       "Constellations",
	"constellations-border":     "Borders",
	"constellations-label-name": "Labels",
	"ecliptic-line":             "Ecliptic",
	"celestial-equator-line":    "Celestial Equator",
	"milky-way":                 "Milky Way",
	"planet-marker":             "Planets",
	"moon-marker":               "Moon",
	"sun-marker":                "Sun",
	"marker":                    "Markers",
	"dso":                       "DSOs",
	"dso_galaxy":                "Galaxies",
	"dso_nebula":                "Nebulae",
	"dso_open_cluster":          "Open Clusters",
	"dso_globular_cluster":      "Globular Clusters",
	"gridlines":                 "Gridlines",
	"horizon":                   "Horizon",
}

var separators = strings.NewReplacer("-", " ", "_", " ")

// LegendName returns the display name of a group. Unknown ids are title
// cased with dashes and underscores turned into spaces.
func LegendName(group string) string {
	if n, ok := legendNames[group]; ok {
		return n
	}
	// Casers are stateful, so each call gets its own.
	return cases.Title(language.English).String(separators.Replace(group))
}
