package coord

// CoordinateSystem is a named local frame nested inside an optional
// parent frame. Its basis is an orthonormal triad expressed in the
// parent's coordinates, and its origin is a point expressed in the
// parent's coordinates. The root of a chain (a Polycrystal) has a nil
// parent.
//
// A coordinate system references its parent by a plain pointer; it
// does not own it. Walking upward from the root simply stops there —
// a nil parent is not an error.
type CoordinateSystem struct {
	Name   string
	Origin Vector3d
	Basis  RotationMatrix
	Parent *CoordinateSystem
}

// NewRootCoordinateSystem builds a top-level frame with no parent,
// origin at the global zero, and an identity basis.
func NewRootCoordinateSystem(name string) *CoordinateSystem {
	return &CoordinateSystem{
		Name:   name,
		Origin: ZeroVector3d,
		Basis:  IdentityRotation(),
		Parent: nil,
	}
}

// NewCoordinateSystem builds a frame nested inside parent, with the
// given origin and basis both expressed in the parent's coordinates.
// parent may be nil, in which case the result behaves like a root.
func NewCoordinateSystem(name string, origin Vector3d, basis RotationMatrix, parent *CoordinateSystem) *CoordinateSystem {
	return &CoordinateSystem{
		Name:   name,
		Origin: origin,
		Basis:  basis,
		Parent: parent,
	}
}

// VectorToParent rotates a free vector (no translation) from this
// frame's local coordinates into the immediate parent's coordinates.
func (c *CoordinateSystem) VectorToParent(v Vector3d) Vector3d {
	return c.Basis.ToParent(v)
}

// VectorToLocal rotates a free vector from the immediate parent's
// coordinates into this frame's local coordinates.
func (c *CoordinateSystem) VectorToLocal(v Vector3d) Vector3d {
	return c.Basis.ToLocal(v)
}

// TensorToParent rotates a stress tensor from this frame into the
// immediate parent's frame, updating the frame tag to the parent's
// name.
func (c *CoordinateSystem) TensorToParent(s Stress) Stress {
	parentName := "world"
	if c.Parent != nil {
		parentName = c.Parent.Name
	}
	return s.RotateToParent(c.Basis, parentName)
}

// TensorToLocal rotates a stress tensor from the immediate parent's
// frame into this frame, updating the frame tag to this frame's name.
func (c *CoordinateSystem) TensorToLocal(s Stress) Stress {
	return s.RotateToLocal(c.Basis, c.Name)
}

// PointToParent translates and rotates a point given in this frame's
// coordinates into the immediate parent's coordinates.
func (c *CoordinateSystem) PointToParent(p Vector3d) Vector3d {
	return c.Origin.Add(c.VectorToParent(p))
}

// PointToLocal translates and rotates a point given in the immediate
// parent's coordinates into this frame's coordinates.
func (c *CoordinateSystem) PointToLocal(p Vector3d) Vector3d {
	return c.VectorToLocal(p.Sub(c.Origin))
}

// VectorToRoot walks the parent chain, rotating a free vector from
// this frame all the way up to the outermost ancestor. A frame with
// no parent returns v unchanged.
func (c *CoordinateSystem) VectorToRoot(v Vector3d) Vector3d {
	cur := c
	out := v
	for cur != nil && cur.Parent != nil {
		out = cur.VectorToParent(out)
		cur = cur.Parent
	}
	return out
}

// PointToRoot walks the parent chain, translating and rotating a
// point from this frame all the way up to the outermost ancestor.
func (c *CoordinateSystem) PointToRoot(p Vector3d) Vector3d {
	cur := c
	out := p
	for cur != nil && cur.Parent != nil {
		out = cur.PointToParent(out)
		cur = cur.Parent
	}
	return out
}

// TensorToRoot walks the parent chain, rotating a stress tensor from
// this frame all the way up to the outermost ancestor.
func (c *CoordinateSystem) TensorToRoot(s Stress) Stress {
	cur := c
	out := s
	for cur != nil && cur.Parent != nil {
		out = cur.TensorToParent(out)
		cur = cur.Parent
	}
	return out
}

// TensorFromAncestor rotates a stress tensor expressed in ancestor's
// frame down into this frame, walking the chain of intermediate
// frames from ancestor to c. If ancestor is not found on c's parent
// chain, the tensor is returned unchanged with ancestor's frame tag
// left in place.
func (c *CoordinateSystem) TensorFromAncestor(s Stress, ancestor *CoordinateSystem) Stress {
	chain := c.chainTo(ancestor)
	if chain == nil {
		return s
	}
	out := s
	for i := len(chain) - 1; i >= 0; i-- {
		out = chain[i].TensorToLocal(out)
	}
	return out
}

// chainTo returns the sequence of frames from just below ancestor
// down to c (inclusive of c, exclusive of ancestor), or nil if
// ancestor is not on c's parent chain.
func (c *CoordinateSystem) chainTo(ancestor *CoordinateSystem) []*CoordinateSystem {
	var chain []*CoordinateSystem
	cur := c
	for cur != nil {
		if cur == ancestor {
			return chain
		}
		chain = append(chain, cur)
		cur = cur.Parent
	}
	return nil
}
