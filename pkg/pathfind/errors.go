package pathfind

import "errors"

// ErrNoPath is returned when the open set is exhausted before reaching
// the goal.
var ErrNoPath = errors.New("pathfind: no path found")

// ErrNodeCapExceeded is returned when expansion hits the node cap before
// finding the goal.
var ErrNodeCapExceeded = errors.New("pathfind: node cap exceeded")

// ErrTimeout is returned when the wall-clock deadline passes before the
// goal is found.
var ErrTimeout = errors.New("pathfind: timed out")
