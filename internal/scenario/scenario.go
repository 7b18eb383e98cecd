// Package scenario runs a scripted sequence of parameter sets from a
// YAML batch file, the way the teacher's automation package scripted a
// sequence of experiment configs, adapted here to a sequence of
// simulation runs each producing its own step and time history.
package scenario

import (
	"context"
	"fmt"
	"os"

	"github.com/san-kum/ddsim/internal/config"
	"github.com/san-kum/ddsim/internal/preset"
	"gopkg.in/yaml.v3"
)

// Scenario is a named sequence of runs.
type Scenario struct {
	Name        string         `yaml:"name"`
	Description string         `yaml:"description"`
	Steps       []ScenarioStep `yaml:"steps"`
}

// ScenarioStep names either a parameter file or a preset to load, plus
// any overrides layered on top before the run.
type ScenarioStep struct {
	SaveAs            string             `yaml:"save_as"`
	ParamsFile        string             `yaml:"params_file"`
	PresetCategory    string             `yaml:"preset_category"`
	PresetName        string             `yaml:"preset_name"`
	StructureFile     string             `yaml:"structure_file"`
	Overrides         map[string]float64 `yaml:"overrides"`
	OverrideStepCount int                `yaml:"override_step_count"`
}

// Load reads a scenario from a YAML file.
func Load(path string) (*Scenario, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("scenario: %w", err)
	}
	var s Scenario
	if err := yaml.Unmarshal(data, &s); err != nil {
		return nil, fmt.Errorf("scenario: %w", err)
	}
	return &s, nil
}

// resolveParams loads the base Params for a step, from either its
// preset or its parameter file, then applies scalar overrides.
func resolveParams(step ScenarioStep) (*config.Params, error) {
	var p *config.Params
	switch {
	case step.PresetCategory != "":
		p = preset.GetPreset(step.PresetCategory, step.PresetName)
		if p == nil {
			return nil, fmt.Errorf("unknown preset %s/%s", step.PresetCategory, step.PresetName)
		}
	case step.ParamsFile != "":
		var err error
		p, err = config.Load(step.ParamsFile)
		if err != nil {
			return nil, err
		}
	default:
		p = config.Defaults()
	}

	for k, v := range step.Overrides {
		switch k {
		case "mu":
			p.Mu = v
		case "nu":
			p.Nu = v
		case "B":
			p.B = v
		case "tau_crss":
			p.TauCRSS = v
		case "dtMax":
			p.DtMax = v
		case "minDistance":
			p.MinDistance = v
		case "reactionRadius":
			p.ReactionRadius = v
		default:
			return nil, fmt.Errorf("unrecognized override key %q", k)
		}
	}
	if step.OverrideStepCount > 0 {
		p.StepCount = step.OverrideStepCount
	}
	if step.StructureFile != "" {
		p.DislocationStructureFile = step.StructureFile
	}
	return p, nil
}

// RunResult records the outcome of a single scripted step.
type RunResult struct {
	SaveAs      string
	StepsRun    int
	TimeElapsed float64
	Err         error
}

// Runner executes a fully resolved parameter set for its StepCount and
// reports how far it got. Supplied by the caller, which owns the
// geometry construction the parameter set alone does not carry.
type Runner func(ctx context.Context, p *config.Params) (stepsRun int, timeElapsed float64, err error)

// Run executes every step of s in order, stopping at the first step
// whose Runner returns an error.
func Run(ctx context.Context, s *Scenario, run Runner) ([]RunResult, error) {
	results := make([]RunResult, 0, len(s.Steps))
	for i, step := range s.Steps {
		select {
		case <-ctx.Done():
			return results, ctx.Err()
		default:
		}

		p, err := resolveParams(step)
		if err != nil {
			return results, fmt.Errorf("step %d: %w", i+1, err)
		}

		stepsRun, elapsed, err := run(ctx, p)
		results = append(results, RunResult{SaveAs: step.SaveAs, StepsRun: stepsRun, TimeElapsed: elapsed, Err: err})
		if err != nil {
			return results, fmt.Errorf("step %d: %w", i+1, err)
		}
	}
	return results, nil
}
