package pathfind

// longRange breaks start->goal into straight-line waypoints every
// waypointDistance cells, snapping each to its floor if the waypoint's
// chunk is loaded, then solves A* between successive waypoints. If a
// segment fails, the soft-goal fallback tries the next waypoint instead,
// skipping the failed one; any partial progress accumulated is returned
// rather than failing outright.
func longRange(w World, start, goal Cell, opts Options) ([]Cell, error) {
	waypoints := buildWaypoints(w, start, goal, opts.PathfindMode)

	var full []Cell
	current := start
	full = append(full, current)

	i := 0
	for i < len(waypoints) {
		target := waypoints[i]
		segOpts := opts
		segOpts.NodeCap = longRangeNodeCap

		seg, err := shortRange(w, current, target, segOpts)
		if err == nil {
			full = appendSegment(full, seg)
			current = target
			i++
			continue
		}

		// Soft-goal fallback: try the waypoint after this one instead.
		if i+1 < len(waypoints) {
			fallbackOpts := opts
			fallbackOpts.NodeCap = softGoalNodeCap
			seg, ferr := shortRange(w, current, waypoints[i+1], fallbackOpts)
			if ferr == nil {
				full = appendSegment(full, seg)
				current = waypoints[i+1]
				i += 2
				continue
			}
		}

		// Both this waypoint and the fallback failed.
		if len(full) > 1 {
			return full, nil
		}
		return nil, ErrNoPath
	}

	return full, nil
}

func appendSegment(full, seg []Cell) []Cell {
	if len(seg) == 0 {
		return full
	}
	// seg[0] duplicates the last cell already in full.
	return append(full, seg[1:]...)
}

// buildWaypoints walks the straight XZ line from start to goal every
// waypointDistance cells, snapping Y to the floor below when the
// waypoint's chunk is loaded.
func buildWaypoints(w World, start, goal Cell, pathfindMode bool) []Cell {
	total := start.euclidean(goal)
	if total == 0 {
		return []Cell{goal}
	}

	steps := int(total / waypointDistance)
	var waypoints []Cell
	for s := 1; s <= steps; s++ {
		t := float64(s) * waypointDistance / total
		wp := interpolate(start, goal, t)
		waypoints = append(waypoints, snapWaypoint(w, wp, pathfindMode))
	}
	waypoints = append(waypoints, goal)
	return waypoints
}

func interpolate(a, b Cell, t float64) Cell {
	x := float64(a.X) + t*float64(b.X-a.X)
	y := float64(a.Y) + t*float64(b.Y-a.Y)
	z := float64(a.Z) + t*float64(b.Z-a.Z)
	return Cell{X: int32(x), Y: int32(y), Z: int32(z)}
}

func snapWaypoint(w World, c Cell, pathfindMode bool) Cell {
	cx, cz := c.X>>4, c.Z>>4
	if !w.IsChunkLoaded(cx, cz) {
		return c
	}
	// -1 is the World.FindFloorBelow "no floor found" sentinel (the same
	// value pkg/world calls Unloaded); kept as a literal here so this
	// package depends only on the World interface, not on pkg/world.
	floor := w.FindFloorBelow(c.X, c.Y+floorSearchHeight, c.Z, floorSearchMaxFall, pathfindMode)
	if floor == -1 {
		return c
	}
	return Cell{X: c.X, Y: floor, Z: c.Z}
}
