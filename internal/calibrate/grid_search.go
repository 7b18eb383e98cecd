// Package calibrate searches a parameter grid (typically critical
// resolved shear stress and a source's required iteration count N_c)
// for the combination that
// drives a simulation's outcome metric closest to a target, the way
// the teacher's optim package grid-searched a model's tunable
// parameters against an experiment metric.
package calibrate

import (
	"context"
	"math"
)

// GridSearch exhaustively evaluates the Cartesian product of named
// parameter ranges.
type GridSearch struct {
	paramNames []string
	ranges     [][]float64
}

// NewGridSearch builds a search over params, each varying across the
// corresponding entry of ranges.
func NewGridSearch(params []string, ranges [][]float64) *GridSearch {
	return &GridSearch{paramNames: params, ranges: ranges}
}

// Evaluate runs one simulation configured by params and returns the
// scalar metric to minimize.
type Evaluate func(ctx context.Context, params map[string]float64) (metric float64, err error)

// Search returns the parameter combination minimizing the metric
// returned by evaluate, skipping any combination evaluate rejects.
func (g *GridSearch) Search(ctx context.Context, evaluate Evaluate) (map[string]float64, float64, error) {
	best := math.Inf(1)
	var bestParams map[string]float64

	g.searchRecursive(ctx, 0, make(map[string]float64), evaluate, &best, &bestParams)

	return bestParams, best, nil
}

func (g *GridSearch) searchRecursive(
	ctx context.Context,
	depth int,
	current map[string]float64,
	evaluate Evaluate,
	best *float64,
	bestParams *map[string]float64,
) {
	select {
	case <-ctx.Done():
		return
	default:
	}

	if depth == len(g.paramNames) {
		val, err := evaluate(ctx, current)
		if err != nil {
			return
		}
		if val < *best {
			*best = val
			snapshot := make(map[string]float64, len(current))
			for k, v := range current {
				snapshot[k] = v
			}
			*bestParams = snapshot
		}
		return
	}

	name := g.paramNames[depth]
	for _, v := range g.ranges[depth] {
		next := make(map[string]float64, len(current)+1)
		for k, vv := range current {
			next[k] = vv
		}
		next[name] = v
		g.searchRecursive(ctx, depth+1, next, evaluate, best, bestParams)
	}
}

// TargetDistance builds an Evaluate that scores a simulation's own
// evaluate-like function against how far its result lands from a
// target value, for use when calibrating a single observable such as
// final dislocation density.
func TargetDistance(target float64, observe Evaluate) Evaluate {
	return func(ctx context.Context, params map[string]float64) (float64, error) {
		val, err := observe(ctx, params)
		if err != nil {
			return 0, err
		}
		return math.Abs(val - target), nil
	}
}
