package calibrate

import (
	"context"
	"testing"
)

func TestSearchFindsMinimum(t *testing.T) {
	g := NewGridSearch([]string{"tau_crss", "nc"}, [][]float64{{1e6, 3e6, 5e6}, {2, 4}})

	evaluate := func(ctx context.Context, params map[string]float64) (float64, error) {
		// Minimum at tau_crss=3e6, nc=4: distance-squared shaped bowl.
		dt := params["tau_crss"] - 3e6
		dn := params["nc"] - 4
		return dt*dt + dn*dn, nil
	}

	best, val, err := g.Search(context.Background(), evaluate)
	if err != nil {
		t.Fatalf("Search: %v", err)
	}
	if best["tau_crss"] != 3e6 || best["nc"] != 4 {
		t.Errorf("best = %+v, want tau_crss=3e6 nc=4", best)
	}
	if val != 0 {
		t.Errorf("val = %v, want 0", val)
	}
}

func TestSearchSkipsRejectedCombinations(t *testing.T) {
	g := NewGridSearch([]string{"x"}, [][]float64{{1, 2, 3}})
	evaluate := func(ctx context.Context, params map[string]float64) (float64, error) {
		if params["x"] == 2 {
			return 0, context.Canceled
		}
		return params["x"], nil
	}
	best, val, err := g.Search(context.Background(), evaluate)
	if err != nil {
		t.Fatalf("Search: %v", err)
	}
	if best["x"] != 1 || val != 1 {
		t.Errorf("best = %+v val = %v, want x=1 val=1", best, val)
	}
}

func TestTargetDistance(t *testing.T) {
	observe := func(ctx context.Context, params map[string]float64) (float64, error) {
		return params["x"] * 2, nil
	}
	scored := TargetDistance(10, observe)
	d, err := scored(context.Background(), map[string]float64{"x": 3})
	if err != nil {
		t.Fatalf("scored: %v", err)
	}
	if d != 4 {
		t.Errorf("d = %v, want 4", d)
	}
}
