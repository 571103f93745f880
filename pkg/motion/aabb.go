package motion

import "math"

// AABB is an axis-aligned bounding box in world space.
type AABB struct {
	MinX, MinY, MinZ float64
	MaxX, MaxY, MaxZ float64
}

func boxAt(pos Vec3) AABB {
	return AABB{
		MinX: pos.X - halfWidth, MaxX: pos.X + halfWidth,
		MinY: pos.Y, MaxY: pos.Y + avatarHeight,
		MinZ: pos.Z - halfWidth, MaxZ: pos.Z + halfWidth,
	}
}

func (b AABB) offset(dx, dy, dz float64) AABB {
	return AABB{
		MinX: b.MinX + dx, MaxX: b.MaxX + dx,
		MinY: b.MinY + dy, MaxY: b.MaxY + dy,
		MinZ: b.MinZ + dz, MaxZ: b.MaxZ + dz,
	}
}

func (b AABB) overlapsY(o AABB) bool {
	return b.MinY < o.MaxY && b.MaxY > o.MinY
}

func (b AABB) overlapsX(o AABB) bool {
	return b.MinX < o.MaxX && b.MaxX > o.MinX
}

func (b AABB) overlapsZ(o AABB) bool {
	return b.MinZ < o.MaxZ && b.MaxZ > o.MinZ
}

// candidateBoxes enumerates full unit-cube block boxes over the
// ceiling-padded footprint of b: every integer cell whose unit cube could
// possibly intersect b across any axis.
func candidateBoxes(w World, b AABB) []AABB {
	x0 := int32(math.Floor(b.MinX))
	x1 := int32(math.Ceil(b.MaxX))
	y0 := int32(math.Floor(b.MinY))
	y1 := int32(math.Ceil(b.MaxY))
	z0 := int32(math.Floor(b.MinZ))
	z1 := int32(math.Ceil(b.MaxZ))

	var out []AABB
	for x := x0; x < x1; x++ {
		for y := y0; y < y1; y++ {
			for z := z0; z < z1; z++ {
				if !w.IsSolid(x, y, z, false) {
					continue
				}
				out = append(out, AABB{
					MinX: float64(x), MaxX: float64(x) + 1,
					MinY: float64(y), MaxY: float64(y) + 1,
					MinZ: float64(z), MaxZ: float64(z) + 1,
				})
			}
		}
	}
	return out
}

// sweepX clamps dx so b, moved by dx, does not tunnel into any solid
// candidate box it would otherwise overlap on Y and Z.
func sweepX(w World, b AABB, dx float64) float64 {
	if dx == 0 {
		return 0
	}
	moved := b.offset(dx, 0, 0)
	for _, cand := range candidateBoxes(w, unionBox(b, moved)) {
		if !b.overlapsY(cand) || !b.overlapsZ(cand) {
			continue
		}
		if dx > 0 && moved.MaxX > cand.MinX && b.MaxX <= cand.MinX {
			if allowed := cand.MinX - b.MaxX; allowed < dx {
				dx = allowed
			}
		} else if dx < 0 && moved.MinX < cand.MaxX && b.MinX >= cand.MaxX {
			if allowed := cand.MaxX - b.MinX; allowed > dx {
				dx = allowed
			}
		}
	}
	return dx
}

func sweepZ(w World, b AABB, dz float64) float64 {
	if dz == 0 {
		return 0
	}
	moved := b.offset(0, 0, dz)
	for _, cand := range candidateBoxes(w, unionBox(b, moved)) {
		if !b.overlapsX(cand) || !b.overlapsY(cand) {
			continue
		}
		if dz > 0 && moved.MaxZ > cand.MinZ && b.MaxZ <= cand.MinZ {
			if allowed := cand.MinZ - b.MaxZ; allowed < dz {
				dz = allowed
			}
		} else if dz < 0 && moved.MinZ < cand.MaxZ && b.MinZ >= cand.MaxZ {
			if allowed := cand.MaxZ - b.MinZ; allowed > dz {
				dz = allowed
			}
		}
	}
	return dz
}

func sweepY(w World, b AABB, dy float64) (float64, bool) {
	if dy == 0 {
		return 0, false
	}
	moved := b.offset(0, dy, 0)
	clipped := false
	for _, cand := range candidateBoxes(w, unionBox(b, moved)) {
		if !b.overlapsX(cand) || !b.overlapsZ(cand) {
			continue
		}
		if dy > 0 && moved.MaxY > cand.MinY && b.MaxY <= cand.MinY {
			if allowed := cand.MinY - b.MaxY; allowed < dy {
				dy = allowed
				clipped = true
			}
		} else if dy < 0 && moved.MinY < cand.MaxY && b.MinY >= cand.MaxY {
			if allowed := cand.MaxY - b.MinY; allowed > dy {
				dy = allowed
				clipped = true
			}
		}
	}
	return dy, clipped
}

func unionBox(a, b AABB) AABB {
	return AABB{
		MinX: math.Min(a.MinX, b.MinX), MaxX: math.Max(a.MaxX, b.MaxX),
		MinY: math.Min(a.MinY, b.MinY), MaxY: math.Max(a.MaxY, b.MaxY),
		MinZ: math.Min(a.MinZ, b.MinZ), MaxZ: math.Max(a.MaxZ, b.MaxZ),
	}
}
