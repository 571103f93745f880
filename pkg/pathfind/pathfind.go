// Package pathfind implements A* over integer world cells, with
// jump/fall/climb/diagonal neighbor generation, a short-range direct
// search, and a hierarchical long-range planner with soft-goal fallback.
package pathfind

import (
	"container/heap"
	"math"
	"time"
)

// Cell is one integer world coordinate.
type Cell struct {
	X, Y, Z int32
}

func (c Cell) euclidean(o Cell) float64 {
	dx := float64(c.X - o.X)
	dy := float64(c.Y - o.Y)
	dz := float64(c.Z - o.Z)
	return math.Sqrt(dx*dx + dy*dy + dz*dz)
}

// World is the subset of the voxel cache the pathfinder needs. pkg/world's
// Cache satisfies this directly.
type World interface {
	IsSolid(x, y, z int32, pathfindingMode bool) bool
	IsWalkable(x, y, z int32, pathfindingMode bool) bool
	HasFloorSupport(x, y, z int32, pathfindingMode bool) bool
	IsClimbable(x, y, z int32) bool
	IsFluid(x, y, z int32) bool
	IsHazardous(x, y, z int32) bool
	CanJump(x, y, z int32, pathfindingMode bool) bool
	FindFloorBelow(x, y, z, maxFall int32, pathfindingMode bool) int32
	GetMovementCost(x, y, z int32) float64
	IsChunkLoaded(cx, cz int32) bool
}

const (
	shortRangeThreshold = 100.0
	defaultTimeout      = 10 * time.Second
	defaultNodeCap      = 20000
	waypointDistance    = 50.0
	longRangeNodeCap    = 10000
	softGoalNodeCap     = 15000
	floorSearchHeight   = 5
	floorSearchMaxFall  = 20
)

// Options tunes a single Find call; zero value uses the package defaults.
type Options struct {
	Timeout        time.Duration
	NodeCap        int
	PathfindMode   bool
	now            func() time.Time // overridable for deterministic tests
}

func (o Options) timeout() time.Duration {
	if o.Timeout <= 0 {
		return defaultTimeout
	}
	return o.Timeout
}

func (o Options) nodeCap() int {
	if o.NodeCap <= 0 {
		return defaultNodeCap
	}
	return o.NodeCap
}

func (o Options) clock() func() time.Time {
	if o.now != nil {
		return o.now
	}
	return time.Now
}

// Find solves start -> goal, dispatching to the short-range direct search
// or the long-range hierarchical planner depending on distance.
func Find(w World, start, goal Cell, opts Options) ([]Cell, error) {
	start = softStart(w, start, opts.PathfindMode)

	if start.euclidean(goal) < shortRangeThreshold {
		return shortRange(w, start, goal, opts)
	}
	return longRange(w, start, goal, opts)
}

// softStart relocates a non-walkable start to the nearest walkable cell
// in a 3x3x3 block around it, then one layer below, per spec.
func softStart(w World, start Cell, pathfindMode bool) Cell {
	if w.IsWalkable(start.X, start.Y, start.Z, pathfindMode) {
		return start
	}

	layers := [][2]int32{{-1, 1}, {-2, -2}} // dy range of each pass
	for _, layer := range layers {
		best, bestDist := start, math.Inf(1)
		for dy := layer[0]; dy <= layer[1]; dy++ {
			for dx := int32(-1); dx <= 1; dx++ {
				for dz := int32(-1); dz <= 1; dz++ {
					c := Cell{start.X + dx, start.Y + dy, start.Z + dz}
					if d := start.euclidean(c); d < bestDist && w.IsWalkable(c.X, c.Y, c.Z, pathfindMode) {
						best, bestDist = c, d
					}
				}
			}
		}
		if !math.IsInf(bestDist, 1) {
			return best
		}
	}
	return start
}

// node is one A* open-set entry.
type node struct {
	cell  Cell
	g, f  float64
	index int // heap index, maintained by container/heap
}

type openHeap []*node

func (h openHeap) Len() int            { return len(h) }
func (h openHeap) Less(i, j int) bool  { return h[i].f < h[j].f }
func (h openHeap) Swap(i, j int)       { h[i], h[j] = h[j], h[i]; h[i].index = i; h[j].index = j }
func (h *openHeap) Push(x interface{}) {
	n := x.(*node)
	n.index = len(*h)
	*h = append(*h, n)
}
func (h *openHeap) Pop() interface{} {
	old := *h
	n := len(old)
	item := old[n-1]
	old[n-1] = nil
	item.index = -1
	*h = old[:n-1]
	return item
}

// shortRange runs plain A* with a Euclidean heuristic, a min-heap open
// set, and a closed set plus best-known-g map to prune revisits.
func shortRange(w World, start, goal Cell, opts Options) ([]Cell, error) {
	deadline := opts.clock()().Add(opts.timeout())
	nodeCap := opts.nodeCap()

	open := &openHeap{}
	heap.Init(open)
	heap.Push(open, &node{cell: start, g: 0, f: start.euclidean(goal)})

	cameFrom := make(map[Cell]Cell)
	bestG := map[Cell]float64{start: 0}
	closed := make(map[Cell]bool)

	// A node within 2 cells of goal is an acceptable near-miss finish,
	// but the exact goal (if reachable) always wins: nearGoal is a
	// fallback used only if the open set runs dry, the node cap is hit,
	// or the clock runs out before the exact goal is ever popped.
	var nearGoal *Cell

	expanded := 0
	for open.Len() > 0 {
		if expanded >= nodeCap {
			if nearGoal != nil {
				return reconstruct(cameFrom, start, *nearGoal), nil
			}
			return nil, ErrNodeCapExceeded
		}
		if opts.clock()().After(deadline) {
			if nearGoal != nil {
				return reconstruct(cameFrom, start, *nearGoal), nil
			}
			return nil, ErrTimeout
		}

		current := heap.Pop(open).(*node)
		if closed[current.cell] {
			continue
		}
		closed[current.cell] = true
		expanded++

		if current.cell == goal {
			return reconstruct(cameFrom, start, current.cell), nil
		}
		if nearGoal == nil && current.cell.euclidean(goal) < 2 {
			c := current.cell
			nearGoal = &c
		}

		for _, nb := range neighbors(w, current.cell, opts.PathfindMode) {
			if closed[nb.cell] {
				continue
			}
			g := current.g + nb.cost
			if prev, ok := bestG[nb.cell]; ok && g >= prev {
				continue
			}
			bestG[nb.cell] = g
			cameFrom[nb.cell] = current.cell
			heap.Push(open, &node{cell: nb.cell, g: g, f: g + nb.cell.euclidean(goal)})
		}
	}
	if nearGoal != nil {
		return reconstruct(cameFrom, start, *nearGoal), nil
	}
	return nil, ErrNoPath
}

func reconstruct(cameFrom map[Cell]Cell, start, end Cell) []Cell {
	path := []Cell{end}
	cur := end
	for cur != start {
		prev, ok := cameFrom[cur]
		if !ok {
			break
		}
		path = append(path, prev)
		cur = prev
	}
	// Reverse in place.
	for i, j := 0, len(path)-1; i < j; i, j = i+1, j-1 {
		path[i], path[j] = path[j], path[i]
	}
	return path
}

type neighbor struct {
	cell Cell
	cost float64
}

// neighbors generates every legal move out of p per spec §4.9: 8 XZ
// directions (cardinal + diagonal, diagonals rejected on corner-cutting),
// each evaluated as same-level / step-up / fall, plus climb moves.
func neighbors(w World, p Cell, pathfindMode bool) []neighbor {
	var out []neighbor

	dirs := [8][2]int32{
		{1, 0}, {-1, 0}, {0, 1}, {0, -1},
		{1, 1}, {1, -1}, {-1, 1}, {-1, -1},
	}

	for i, d := range dirs {
		tx, tz := p.X+d[0], p.Z+d[1]

		if i >= 4 {
			// Diagonal: reject if either adjacent cardinal cell is solid
			// at p.Y, to avoid corner-cutting through walls.
			if w.IsSolid(p.X+d[0], p.Y, p.Z, pathfindMode) || w.IsSolid(p.X, p.Y, p.Z+d[1], pathfindMode) {
				continue
			}
		}

		out = appendColumnMoves(w, out, p, tx, tz, pathfindMode)
	}

	out = appendClimbMoves(w, out, p, pathfindMode)

	// Moves into hazardous cells carry +Inf cost (see moveTo); drop them.
	kept := out[:0]
	for _, nb := range out {
		if !math.IsInf(nb.cost, 1) {
			kept = append(kept, nb)
		}
	}
	return kept
}

func appendColumnMoves(w World, out []neighbor, p Cell, tx, tz int32, pathfindMode bool) []neighbor {
	// Same level: staying at p.Y only makes sense if something would
	// hold the avatar up there. Without this, an open column with
	// nothing underneath (a pit) would be "walkable" in a straight line
	// across, sidestepping the fall/climb moves entirely.
	if w.IsWalkable(tx, p.Y, tz, pathfindMode) && w.HasFloorSupport(tx, p.Y-1, tz, pathfindMode) {
		out = append(out, moveTo(w, tx, p.Y, tz, w.GetMovementCost(tx, p.Y, tz), pathfindMode))
	}

	// Step up.
	if w.CanJump(p.X, p.Y, p.Z, pathfindMode) && w.IsWalkable(tx, p.Y+1, tz, pathfindMode) {
		out = append(out, moveTo(w, tx, p.Y+1, tz, 1.3*w.GetMovementCost(tx, p.Y+1, tz), pathfindMode))
	}

	// Fall, up to 3 cells, stopping at the first valid landing or the
	// first non-walkable cell; a walkable cell with no solid floor beneath
	// it is fallen through.
	for fall := int32(1); fall <= 3; fall++ {
		ty := p.Y - fall
		if !w.IsWalkable(tx, ty, tz, pathfindMode) {
			break
		}
		if !w.IsSolid(tx, ty-1, tz, pathfindMode) {
			continue
		}
		cost := (1 + 0.2*float64(fall)) * w.GetMovementCost(tx, ty, tz)
		out = append(out, moveTo(w, tx, ty, tz, cost, pathfindMode))
		break
	}

	return out
}

func moveTo(w World, x, y, z int32, cost float64, pathfindMode bool) neighbor {
	if w.IsHazardous(x, y, z) {
		cost = math.Inf(1)
	} else if w.IsFluid(x, y, z) {
		cost += 8.0
	}
	return neighbor{cell: Cell{x, y, z}, cost: cost}
}

func appendClimbMoves(w World, out []neighbor, p Cell, pathfindMode bool) []neighbor {
	if !w.IsClimbable(p.X, p.Y, p.Z) {
		return out
	}
	if w.IsWalkable(p.X, p.Y+1, p.Z, pathfindMode) || w.IsClimbable(p.X, p.Y+1, p.Z) {
		out = append(out, neighbor{cell: Cell{p.X, p.Y + 1, p.Z}, cost: 1.5})
	}
	if w.IsWalkable(p.X, p.Y-1, p.Z, pathfindMode) || w.IsClimbable(p.X, p.Y-1, p.Z) {
		out = append(out, neighbor{cell: Cell{p.X, p.Y - 1, p.Z}, cost: 1.2})
	}
	return out
}

// Adjacent reports whether b is a legal single move away from a, per the
// same rules neighbors() generates. Used to verify pathfinder soundness.
func Adjacent(w World, a, b Cell, pathfindMode bool) bool {
	for _, nb := range neighbors(w, a, pathfindMode) {
		if nb.cell == b {
			return true
		}
	}
	return false
}
