package models

import "strings"

// labelTranslation maps upstream detection labels to the domain vocabulary.
// Only labels in this map are relevant to counting; everything else is noise
// (dog, cat, package, ...).
var labelTranslation = map[string]string{
	"car":        "auto",
	"motorcycle": "moto",
	"motorbike":  "moto",
	"bicycle":    "bicicleta",
	"bike":       "bicicleta",
	"bus":        "autobús",
	"truck":      "camión",
	"person":     "personas",
}

var personLabels = map[string]bool{
	"personas": true,
	"person":   true,
}

var vehicleLabels = map[string]bool{
	"auto":       true,
	"car":        true,
	"camión":     true,
	"truck":      true,
	"moto":       true,
	"motorcycle": true,
	"bicicleta":  true,
	"bicycle":    true,
	"autobús":    true,
	"bus":        true,
}

// NormalizeLabel translates an upstream detection label into the domain
// vocabulary. The second return is false for labels outside the relevant set.
func NormalizeLabel(label string) (string, bool) {
	normalized, ok := labelTranslation[strings.ToLower(label)]
	return normalized, ok
}

// Accepts reports whether an area of this type counts objects with the given
// normalized label.
func (t AreaType) Accepts(label string) bool {
	switch t {
	case AreaTypePeople:
		return personLabels[label]
	case AreaTypeVehicles:
		return vehicleLabels[label]
	}
	return false
}

// DefaultObjects is the full relevant label set, in domain vocabulary.
func DefaultObjects() []string {
	return []string{"auto", "autobús", "moto", "bicicleta", "camión", "personas"}
}

// DefaultActiveObjects is the subset counted out of the box.
func DefaultActiveObjects() []string {
	return []string{"auto", "personas"}
}
