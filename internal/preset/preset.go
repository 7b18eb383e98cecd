// Package preset provides named, ready-to-run parameter sets, grouped
// by category, the way the teacher's config package offered a
// model-to-variant preset table instead of requiring every run to
// hand-author a parameter file.
package preset

import "github.com/san-kum/ddsim/internal/config"

// Presets is a two-level table: category (typically the material) to
// variant name (typically the loading condition) to a ready Params.
var Presets = map[string]map[string]*config.Params{
	"fcc_copper": {
		"quiescent": {
			Mu: 4.8e10, Nu: 0.34, B: 1e-4, TauCRSS: 5e6,
			DtMax: 1e-3, MinDistance: 1e-9, ReactionRadius: 2e-9, StepCount: 200,
		},
		"single_glide": {
			Mu: 4.8e10, Nu: 0.34, B: 1e-4, TauCRSS: 5e6,
			AppliedStress:  [6]float64{0, 0, 0, 2e7, 0, 0},
			DtMax:          1e-3,
			MinDistance:    1e-9,
			ReactionRadius: 2e-9,
			StepCount:      500,
		},
		"source_multiplication": {
			Mu: 4.8e10, Nu: 0.34, B: 1e-4, TauCRSS: 3e6,
			AppliedStress:  [6]float64{0, 0, 0, 4e7, 0, 0},
			DtMax:          1e-3,
			MinDistance:    1e-9,
			ReactionRadius: 2e-9,
			StepCount:      2000,
		},
	},
	"bcc_iron": {
		"quiescent": {
			Mu: 8.1e10, Nu: 0.29, B: 1e-4, TauCRSS: 3e7,
			DtMax: 1e-3, MinDistance: 1e-9, ReactionRadius: 2e-9, StepCount: 200,
		},
		"single_glide": {
			Mu: 8.1e10, Nu: 0.29, B: 1e-4, TauCRSS: 3e7,
			AppliedStress:  [6]float64{0, 0, 0, 6e7, 0, 0},
			DtMax:          1e-3,
			MinDistance:    1e-9,
			ReactionRadius: 2e-9,
			StepCount:      500,
		},
	},
}

// GetPreset returns the named preset within category, or nil if either
// the category or the name within it is unknown.
func GetPreset(category, name string) *config.Params {
	variants, ok := Presets[category]
	if !ok {
		return nil
	}
	p, ok := variants[name]
	if !ok {
		return nil
	}
	cp := *p
	return &cp
}

// ListPresets returns the variant names available within category, or
// nil if the category is unknown.
func ListPresets(category string) []string {
	variants, ok := Presets[category]
	if !ok {
		return nil
	}
	names := make([]string, 0, len(variants))
	for name := range variants {
		names = append(names, name)
	}
	return names
}

// Categories returns every known preset category.
func Categories() []string {
	names := make([]string, 0, len(Presets))
	for name := range Presets {
		names = append(names, name)
	}
	return names
}
