// Package config loads the simulation's key=value parameter file
// (spec §6) into a Params value, applying the same defaults the
// teacher's YAML config applied for its own domain.
package config

import (
	"bufio"
	"fmt"
	"os"
	"strconv"
	"strings"
)

const (
	DefaultMu             = 8e10
	DefaultNu             = 0.3
	DefaultB              = 1.0
	DefaultTauCRSS        = 1e7
	DefaultDtMax          = 1e-3
	DefaultMinDistance    = 1e-9
	DefaultReactionRadius = 1e-9
	DefaultStepCount      = 100
)

// Params holds every recognized parameter-file key.
type Params struct {
	Mu                       float64
	Nu                       float64
	B                        float64
	TauCRSS                  float64
	AppliedStress            [6]float64 // xx yy zz xy xz yz
	DtMax                    float64
	MinDistance              float64
	ReactionRadius           float64
	StepCount                int
	DislocationStructureFile string
	Seed                     int64
}

// Defaults returns a Params populated with the simulator's built-in
// defaults, used for any key the file omits.
func Defaults() *Params {
	return &Params{
		Mu:             DefaultMu,
		Nu:             DefaultNu,
		B:              DefaultB,
		TauCRSS:        DefaultTauCRSS,
		DtMax:          DefaultDtMax,
		MinDistance:    DefaultMinDistance,
		ReactionRadius: DefaultReactionRadius,
		StepCount:      DefaultStepCount,
	}
}

// Load reads a key=value parameter file from path. Blank lines and
// lines whose first non-whitespace character is '#' are skipped,
// matching the comment convention in the original tessellation and
// parameter readers.
func Load(path string) (*Params, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("config: %w", err)
	}
	defer f.Close()

	p := Defaults()
	scanner := bufio.NewScanner(f)
	lineNo := 0
	for scanner.Scan() {
		lineNo++
		line := strings.TrimSpace(scanner.Text())
		if ignoreLine(line) {
			continue
		}
		if err := p.applyLine(line); err != nil {
			return nil, fmt.Errorf("config: line %d: %w", lineNo, err)
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("config: %w", err)
	}
	return p, nil
}

// ignoreLine reports whether line is blank or a comment.
func ignoreLine(line string) bool {
	return line == "" || strings.HasPrefix(line, "#")
}

func (p *Params) applyLine(line string) error {
	key, value, ok := strings.Cut(line, "=")
	if !ok {
		return fmt.Errorf("malformed key=value record %q", line)
	}
	key = strings.TrimSpace(key)
	value = strings.TrimSpace(value)

	switch key {
	case "mu":
		return p.setFloat(&p.Mu, value)
	case "nu":
		return p.setFloat(&p.Nu, value)
	case "B":
		return p.setFloat(&p.B, value)
	case "tau_crss":
		return p.setFloat(&p.TauCRSS, value)
	case "appliedStress":
		return p.setAppliedStress(value)
	case "dtMax":
		return p.setFloat(&p.DtMax, value)
	case "minDistance":
		return p.setFloat(&p.MinDistance, value)
	case "reactionRadius":
		return p.setFloat(&p.ReactionRadius, value)
	case "stepCount":
		n, err := strconv.Atoi(value)
		if err != nil {
			return fmt.Errorf("stepCount: %w", err)
		}
		p.StepCount = n
	case "dislocationStructureFile":
		p.DislocationStructureFile = value
	case "seed":
		n, err := strconv.ParseInt(value, 10, 64)
		if err != nil {
			return fmt.Errorf("seed: %w", err)
		}
		p.Seed = n
	default:
		return fmt.Errorf("unrecognized key %q", key)
	}
	return nil
}

func (p *Params) setFloat(dst *float64, value string) error {
	v, err := strconv.ParseFloat(value, 64)
	if err != nil {
		return err
	}
	*dst = v
	return nil
}

func (p *Params) setAppliedStress(value string) error {
	fields := strings.Fields(value)
	if len(fields) != 6 {
		return fmt.Errorf("appliedStress requires 6 components, got %d", len(fields))
	}
	for i, f := range fields {
		v, err := strconv.ParseFloat(f, 64)
		if err != nil {
			return fmt.Errorf("appliedStress component %d: %w", i, err)
		}
		p.AppliedStress[i] = v
	}
	return nil
}
