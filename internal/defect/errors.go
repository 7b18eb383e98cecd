package defect

import "errors"

// Domain errors for defect construction and validation.
var (
	// ErrGeometryInvalid indicates a defect whose geometry violates a
	// structural invariant (non-glide Burgers vector, non-unit line
	// vector, zero slip direction).
	ErrGeometryInvalid = errors.New("defect: geometry invalid")

	// ErrSourceMisconfigured indicates a DislocationSource with a
	// non-positive critical resolved shear stress or required
	// iteration count.
	ErrSourceMisconfigured = errors.New("defect: source misconfigured")
)
