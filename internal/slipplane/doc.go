// Package slipplane implements the one-dimensional glide-line
// evolution shared by every slip plane in the hierarchy: the sorted
// defect list, stress summation, velocity, adaptive time-step
// selection, motion, source emission and local reactions.
//
// A SlipPlane does not walk its own coordinate chain to fetch the
// applied stress; the polycrystal orchestrator rotates the applied
// stress into each plane's frame once per step and sets AppliedLocal
// before calling the per-plane operations below, matching the
// single-pass propagation order in the spec.
package slipplane
