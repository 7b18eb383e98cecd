package slipplane

import "errors"

// Domain errors for slip plane operations.
var (
	// ErrOutsideExtremities indicates a defect insertion whose
	// position falls outside the plane's two bounding sentinels.
	ErrOutsideExtremities = errors.New("slipplane: position outside extremities")

	// ErrTimeStepUnderflow indicates the computed time increment was
	// non-positive while a pair was already at or inside minDistance.
	ErrTimeStepUnderflow = errors.New("slipplane: time step underflow")

	// ErrGeometryInvalid indicates a degenerate slip plane, most
	// commonly a zero-length glide direction (extremities coincide).
	ErrGeometryInvalid = errors.New("slipplane: geometry invalid")
)
