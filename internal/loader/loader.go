// Package loader reads the ASCII structure files the simulator
// consumes: grain tessellations, grain orientations, and per-slip-plane
// dislocation structures. The token-stream approach mirrors the
// original single-slip-plane reader's line-by-line scan, generalized
// so a record may span or share a line freely.
package loader

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/san-kum/ddsim/internal/coord"
	"github.com/san-kum/ddsim/internal/defect"
	"github.com/san-kum/ddsim/internal/slipplane"
)

// defaultDipoleSeparation is used when a source record (which carries
// no explicit dipole spacing) is loaded from a structure file.
const defaultDipoleSeparation = 100.0

func ignoreLine(line string) bool {
	return line == "" || strings.HasPrefix(line, "#")
}

// tokenize flattens every non-blank, non-comment line of path into a
// single whitespace-delimited token stream.
func tokenize(path string) ([]string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("loader: %w", err)
	}
	var tokens []string
	for _, line := range strings.Split(string(data), "\n") {
		line = strings.TrimSpace(line)
		if ignoreLine(line) {
			continue
		}
		tokens = append(tokens, strings.Fields(line)...)
	}
	return tokens, nil
}

// tokenReader walks a token stream, exposing typed reads with position
// tracking for error messages.
type tokenReader struct {
	tokens []string
	pos    int
}

func (r *tokenReader) done() bool {
	return r.pos >= len(r.tokens)
}

func (r *tokenReader) next() (string, error) {
	if r.done() {
		return "", fmt.Errorf("loader: unexpected end of input at token %d", r.pos)
	}
	tok := r.tokens[r.pos]
	r.pos++
	return tok, nil
}

func (r *tokenReader) float() (float64, error) {
	tok, err := r.next()
	if err != nil {
		return 0, err
	}
	v, err := strconv.ParseFloat(tok, 64)
	if err != nil {
		return 0, fmt.Errorf("loader: token %d (%q): %w", r.pos-1, tok, err)
	}
	return v, nil
}

func (r *tokenReader) int() (int, error) {
	tok, err := r.next()
	if err != nil {
		return 0, err
	}
	v, err := strconv.Atoi(tok)
	if err != nil {
		return 0, fmt.Errorf("loader: token %d (%q): %w", r.pos-1, tok, err)
	}
	return v, nil
}

func (r *tokenReader) vector3d() (coord.Vector3d, error) {
	x, err := r.float()
	if err != nil {
		return coord.ZeroVector3d, err
	}
	y, err := r.float()
	if err != nil {
		return coord.ZeroVector3d, err
	}
	z, err := r.float()
	if err != nil {
		return coord.ZeroVector3d, err
	}
	return coord.NewVector3d(x, y, z), nil
}

// LoadTessellation reads a sequence of 2-D grain boundary polygons,
// each a vertex count followed by that many x y pairs.
func LoadTessellation(path string) ([][]coord.Vector3d, error) {
	tokens, err := tokenize(path)
	if err != nil {
		return nil, err
	}
	r := &tokenReader{tokens: tokens}

	var grains [][]coord.Vector3d
	for !r.done() {
		n, err := r.int()
		if err != nil {
			return nil, err
		}
		boundary := make([]coord.Vector3d, n)
		for i := 0; i < n; i++ {
			x, err := r.float()
			if err != nil {
				return nil, err
			}
			y, err := r.float()
			if err != nil {
				return nil, err
			}
			boundary[i] = coord.NewVector3d(x, y, 0)
		}
		grains = append(grains, boundary)
	}
	return grains, nil
}

// LoadOrientations reads one Euler-like orientation vector per grain.
func LoadOrientations(path string) ([]coord.Vector3d, error) {
	tokens, err := tokenize(path)
	if err != nil {
		return nil, err
	}
	r := &tokenReader{tokens: tokens}

	var orientations []coord.Vector3d
	for !r.done() {
		v, err := r.vector3d()
		if err != nil {
			return nil, err
		}
		orientations = append(orientations, v)
	}
	return orientations, nil
}

// LoadSlipPlaneStructure reads the six-record slip-plane input file:
// extremities, normal, position, then the dislocation and source
// records. nextID hands out fresh defect identifiers for every record,
// including the two sentinel defects placed at the extremities.
func LoadSlipPlaneStructure(path string, nextID func() int) (*slipplane.SlipPlane, error) {
	tokens, err := tokenize(path)
	if err != nil {
		return nil, err
	}
	r := &tokenReader{tokens: tokens}

	ext0, err := r.vector3d()
	if err != nil {
		return nil, fmt.Errorf("loader: extremity 0: %w", err)
	}
	ext1, err := r.vector3d()
	if err != nil {
		return nil, fmt.Errorf("loader: extremity 1: %w", err)
	}
	normal, err := r.vector3d()
	if err != nil {
		return nil, fmt.Errorf("loader: normal: %w", err)
	}
	position, err := r.vector3d()
	if err != nil {
		return nil, fmt.Errorf("loader: position: %w", err)
	}

	sp, err := slipplane.New(ext0, ext1, normal, position, defect.FreeSurface, defect.FreeSurface, nextID(), nextID())
	if err != nil {
		return nil, err
	}

	nDisl, err := r.int()
	if err != nil {
		return nil, fmt.Errorf("loader: dislocation count: %w", err)
	}
	for i := 0; i < nDisl; i++ {
		pos, err := r.vector3d()
		if err != nil {
			return nil, fmt.Errorf("loader: dislocation %d position: %w", i, err)
		}
		burgers, err := r.vector3d()
		if err != nil {
			return nil, fmt.Errorf("loader: dislocation %d Burgers vector: %w", i, err)
		}
		line, err := r.vector3d()
		if err != nil {
			return nil, fmt.Errorf("loader: dislocation %d line vector: %w", i, err)
		}
		bmag, err := r.float()
		if err != nil {
			return nil, fmt.Errorf("loader: dislocation %d Burgers magnitude: %w", i, err)
		}
		mobFlag, err := r.int()
		if err != nil {
			return nil, fmt.Errorf("loader: dislocation %d mobility: %w", i, err)
		}
		d, err := defect.NewDislocation(burgers, line, bmag, mobFlag != 0, normal)
		if err != nil {
			return nil, fmt.Errorf("loader: dislocation %d: %w", i, err)
		}
		if err := sp.InsertDefect(defect.NewDislocationDefect(nextID(), pos, d)); err != nil {
			return nil, fmt.Errorf("loader: dislocation %d: %w", i, err)
		}
	}

	nSrc, err := r.int()
	if err != nil {
		return nil, fmt.Errorf("loader: source count: %w", err)
	}
	for i := 0; i < nSrc; i++ {
		pos, err := r.vector3d()
		if err != nil {
			return nil, fmt.Errorf("loader: source %d position: %w", i, err)
		}
		burgers, err := r.vector3d()
		if err != nil {
			return nil, fmt.Errorf("loader: source %d Burgers vector: %w", i, err)
		}
		line, err := r.vector3d()
		if err != nil {
			return nil, fmt.Errorf("loader: source %d line vector: %w", i, err)
		}
		bmag, err := r.float()
		if err != nil {
			return nil, fmt.Errorf("loader: source %d Burgers magnitude: %w", i, err)
		}
		tauC, err := r.float()
		if err != nil {
			return nil, fmt.Errorf("loader: source %d critical stress: %w", i, err)
		}
		nc, err := r.int()
		if err != nil {
			return nil, fmt.Errorf("loader: source %d iteration count: %w", i, err)
		}
		src, err := defect.NewSource(burgers, line, bmag, tauC, nc, defaultDipoleSeparation*bmag)
		if err != nil {
			return nil, fmt.Errorf("loader: source %d: %w", i, err)
		}
		if err := sp.InsertDefect(defect.NewSourceDefect(nextID(), pos, src)); err != nil {
			return nil, fmt.Errorf("loader: source %d: %w", i, err)
		}
	}

	return sp, nil
}
