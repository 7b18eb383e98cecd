// Package coord provides the tensor and coordinate-frame algebra shared
// by every level of the dislocation-dynamics hierarchy.
//
// The core types are:
//
//   - [Vector3d]: a 3-component real vector
//   - [Matrix33]: a 3x3 real matrix
//   - [Stress]: a symmetric 3x3 stress tensor tagged with its frame
//   - [RotationMatrix]: an orthonormal Matrix33 built from a triad pair
//   - [CoordinateSystem]: a local frame with an optional parent, used to
//     rotate and translate vectors, tensors and points up or down the
//     Polycrystal -> Grain -> SlipSystem -> SlipPlane chain
//
// # Frame convention
//
// Rotating a tensor from local to parent uses R*sigma*R^T; rotating from
// parent to local uses R^T*sigma*R, where R is the coordinate system's
// basis expressed in the parent frame.
package coord
