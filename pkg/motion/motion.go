// Package motion runs the 20Hz tick that drives a client-side avatar along
// a path: gravity and drag, AABB-swept collision with auto step-up, an
// obstacle-recovery state machine for when progress stalls, smooth yaw
// turning, and teleport-sync handling.
package motion

import (
	"math"
	"time"

	"github.com/StoreStation/vibebot/pkg/pathfind"
)

// Vec3 is a position or displacement in world space.
type Vec3 struct {
	X, Y, Z float64
}

func (v Vec3) add(o Vec3) Vec3 { return Vec3{v.X + o.X, v.Y + o.Y, v.Z + o.Z} }

func (v Vec3) xzDistance(o Vec3) float64 {
	dx := v.X - o.X
	dz := v.Z - o.Z
	return math.Sqrt(dx*dx + dz*dz)
}

func (v Vec3) distance(o Vec3) float64 {
	dx := v.X - o.X
	dy := v.Y - o.Y
	dz := v.Z - o.Z
	return math.Sqrt(dx*dx + dy*dy + dz*dz)
}

// World is the subset of the voxel cache the motion controller needs for
// collision sweeps. pkg/world's Cache satisfies this directly; the
// controller always queries in non-pathfinding mode, so unloaded cells
// fail closed (treated solid).
type World interface {
	IsSolid(x, y, z int32, pathfindingMode bool) bool
}

// PacketSender emits the outbound position/rotation update for a tick.
// Kept as an interface so pkg/motion never imports pkg/protocol or
// pkg/bot directly.
type PacketSender interface {
	SendPosition(pos Vec3, yaw, pitch float32, onGround bool) error
}

// PathRequester asks for a fresh route to the current goal, used both when
// the controller runs off the end of its path and for periodic
// recalculation.
type PathRequester interface {
	RequestPath(from, goal pathfind.Cell) ([]pathfind.Cell, error)
}

const (
	tickRate = 50 * time.Millisecond

	gravity          = -0.08
	verticalDrag     = 0.98
	maxFallSpeed     = -3.92
	jumpVelocity     = 0.42
	jumpCooldownTick = 10

	horizontalSpeed = 4.317
	stepPerTick     = horizontalSpeed * float64(tickRate) / float64(time.Second)

	halfWidth    = 0.3
	avatarHeight = 1.8
	stepUpHeight = 0.6

	arrivalRadius      = 1.5
	waypointRadius     = 0.7
	stuckXZThreshold   = 0.05
	nextNextJumpHeight = 0.5

	maxTurnSpeed = 18.0

	movementCooldownTicks = 10
	recalcInterval        = 5 * time.Second
)

// Arrival is the outcome of a single Tick call, surfaced so a caller (the
// client facade) can raise the "arrived" event without this package
// depending on an event bus.
type Arrival int

const (
	// NoEvent means the tick produced nothing event-worthy.
	NoEvent Arrival = iota
	// Arrived means the avatar reached its target this tick and the
	// controller has stopped.
	Arrived
)

// Controller holds one avatar's per-tick motion state and advances it one
// tick at a time.
type Controller struct {
	world  World
	sender PacketSender
	router PathRequester

	pos   Vec3
	vel   Vec3 // Y only; horizontal motion is computed fresh each tick
	yaw   float64
	pitch float64

	onGround     bool
	jumpCooldown int
	queuedJump   bool

	stuckCounter  int
	obstacleStage int
	lateralSign   float64
	lateralTicks  int
	backupTicks   int

	movementCooldown int
	awaitingTeleport bool
	teleportAnchor   Vec3

	path             []pathfind.Cell
	currentIdx       int
	goal             pathfind.Cell
	hasGoal          bool
	lastTickPos      Vec3
	lastRecalc       time.Time

	now func() time.Time
}

// New returns a stopped controller at pos, ready to accept a goal via
// SetGoal.
func New(world World, sender PacketSender, router PathRequester, pos Vec3) *Controller {
	return &Controller{
		world:       world,
		sender:      sender,
		router:      router,
		pos:         pos,
		onGround:    true,
		lateralSign: 1,
		lastTickPos: pos,
		now:         time.Now,
	}
}

// Position reports the controller's current internal position.
func (c *Controller) Position() Vec3 { return c.pos }

// SetGoal assigns a path and target cell, replacing whatever the
// controller was previously doing.
func (c *Controller) SetGoal(goal pathfind.Cell, path []pathfind.Cell) {
	c.goal = goal
	c.hasGoal = true
	c.path = path
	c.currentIdx = 0
	c.stuckCounter = 0
	c.obstacleStage = 0
	c.lastRecalc = c.now()
}

// Stop clears the current goal; the avatar stays where it is (subject to
// gravity) but stops advancing along any path.
func (c *Controller) Stop() {
	c.hasGoal = false
	c.path = nil
	c.currentIdx = 0
}

// ServerPositionReset implements §4.10.5: a teleport-sync packet forces the
// controller to accept the server's position as authoritative for the
// cooldown window, then resume from it.
func (c *Controller) ServerPositionReset(anchor Vec3) {
	c.movementCooldown = movementCooldownTicks
	c.awaitingTeleport = true
	c.vel = Vec3{}
	c.teleportAnchor = anchor
}

// Tick advances the controller by one tickRate step. It returns the event
// (if any) this tick produced and whether a position packet was sent.
func (c *Controller) Tick() (Arrival, bool, error) {
	// Step 1/2: teleport cooldown takes priority over everything else,
	// and the controller never emits a packet while the server is
	// authoritative.
	if c.movementCooldown > 0 {
		c.movementCooldown--
		if c.movementCooldown == 0 {
			c.awaitingTeleport = false
			c.pos = c.teleportAnchor
			c.vel = Vec3{}
			c.onGround = true
			c.requestRecalc()
		}
		return NoEvent, false, nil
	}
	if c.awaitingTeleport {
		return NoEvent, false, nil
	}

	// Step 3.
	if !c.hasGoal || len(c.path) == 0 {
		return NoEvent, false, nil
	}

	target := cellCenter(c.goal)

	// Step 4.
	if c.pos.distance(target) < arrivalRadius {
		c.Stop()
		return Arrived, false, nil
	}

	// Step 5.
	if c.currentIdx >= len(c.path) {
		if err := c.requestRecalc(); err != nil {
			return NoEvent, false, err
		}
		if len(c.path) == 0 {
			return NoEvent, false, nil
		}
	}

	waypoint := cellCenter(c.path[c.currentIdx])

	// Step 6.
	if c.pos.xzDistance(waypoint) < waypointRadius {
		c.currentIdx++
		c.stuckCounter = 0
		if c.currentIdx < len(c.path) {
			waypoint = cellCenter(c.path[c.currentIdx])
		}
	}

	// Step 7.
	if c.pos.xzDistance(c.lastTickPos) < stuckXZThreshold {
		c.stuckCounter++
		c.runObstacleRecovery()
	} else {
		c.stuckCounter = 0
		c.obstacleStage = 0
	}

	// Periodic recalculation while moving, independent of being stuck.
	if c.now().Sub(c.lastRecalc) >= recalcInterval {
		c.requestRecalc()
	}

	// Step 8.
	if c.onGround && c.nextNextAboveCurrent() {
		c.queuedJump = true
	}

	c.lastTickPos = c.pos

	// Step 9.
	dx, dz := c.desiredStep(waypoint)
	c.applyObstacleOverride(&dx, &dz)
	c.integrate(dx, dz)
	c.turnToward(waypoint)

	if err := c.sender.SendPosition(c.pos, float32(c.yaw), float32(c.pitch), c.onGround); err != nil {
		return NoEvent, false, err
	}
	return NoEvent, true, nil
}

func (c *Controller) requestRecalc() error {
	c.lastRecalc = c.now()
	if c.router == nil || !c.hasGoal {
		return nil
	}
	start := pathfind.Cell{
		X: int32(math.Floor(c.pos.X)),
		Y: int32(math.Floor(c.pos.Y)),
		Z: int32(math.Floor(c.pos.Z)),
	}
	path, err := c.router.RequestPath(start, c.goal)
	if err != nil {
		return err
	}
	c.path = path
	c.currentIdx = 0
	return nil
}

// desiredStep scales the XZ direction toward waypoint by the planned
// per-tick step, never overshooting.
func (c *Controller) desiredStep(waypoint Vec3) (float64, float64) {
	dx := waypoint.X - c.pos.X
	dz := waypoint.Z - c.pos.Z
	dist := math.Sqrt(dx*dx + dz*dz)
	if dist < 1e-9 {
		return 0, 0
	}
	scale := math.Min(stepPerTick/dist, 1)
	return dx * scale, dz * scale
}

func (c *Controller) nextNextAboveCurrent() bool {
	idx := c.currentIdx + 1
	if idx >= len(c.path) {
		return false
	}
	return float64(c.path[idx].Y)-c.pos.Y > nextNextJumpHeight
}

func cellCenter(c pathfind.Cell) Vec3 {
	return Vec3{X: float64(c.X) + 0.5, Y: float64(c.Y), Z: float64(c.Z) + 0.5}
}
