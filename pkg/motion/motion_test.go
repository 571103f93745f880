package motion

import (
	"testing"
	"time"

	"github.com/StoreStation/vibebot/pkg/pathfind"
)

// flatWorld is solid below y (exclusive) and open at/above it.
type flatWorld struct {
	floorY int32
	solid  map[[3]int32]bool
}

func newFlatWorld(floorY int32) *flatWorld {
	return &flatWorld{floorY: floorY, solid: make(map[[3]int32]bool)}
}

func (w *flatWorld) setSolid(x, y, z int32) { w.solid[[3]int32{x, y, z}] = true }

func (w *flatWorld) IsSolid(x, y, z int32, pathfindingMode bool) bool {
	if w.solid[[3]int32{x, y, z}] {
		return true
	}
	return y < w.floorY
}

// recordingSender captures every position sent, so tests can assert on
// when (and whether) packets fire.
type recordingSender struct {
	sent []Vec3
}

func (r *recordingSender) SendPosition(pos Vec3, yaw, pitch float32, onGround bool) error {
	r.sent = append(r.sent, pos)
	return nil
}

type stubRouter struct {
	path []pathfind.Cell
}

func (s *stubRouter) RequestPath(from, goal pathfind.Cell) ([]pathfind.Cell, error) {
	return s.path, nil
}

func fixedClock(t time.Time) func() time.Time {
	return func() time.Time { return t }
}

func TestArrivalWithinRadiusStops(t *testing.T) {
	w := newFlatWorld(0)
	sender := &recordingSender{}
	c := New(w, sender, nil, Vec3{0, 0, 0})
	c.now = fixedClock(time.Unix(0, 0))

	goal := pathfind.Cell{X: 0, Y: 0, Z: 0} // center (0.5,0,0.5): within arrivalRadius of (0,0,0)
	c.SetGoal(goal, []pathfind.Cell{goal})

	event, sent, err := c.Tick()
	if err != nil {
		t.Fatalf("Tick: %v", err)
	}
	if event != Arrived {
		t.Fatalf("event = %v, want Arrived (distance to goal center is < arrivalRadius)", event)
	}
	if sent {
		t.Fatal("an arrival tick must not also send a position packet")
	}
	if c.hasGoal {
		t.Fatal("controller should have stopped after arriving")
	}
}

func TestNoPacketDuringMovementCooldown(t *testing.T) {
	w := newFlatWorld(0)
	sender := &recordingSender{}
	c := New(w, sender, nil, Vec3{0, 0, 0})
	c.SetGoal(pathfind.Cell{X: 50, Y: 0, Z: 0}, []pathfind.Cell{{X: 10, Y: 0, Z: 0}})

	c.ServerPositionReset(Vec3{5, 0, 5})

	for i := 0; i < movementCooldownTicks; i++ {
		_, sent, err := c.Tick()
		if err != nil {
			t.Fatalf("Tick: %v", err)
		}
		if sent {
			t.Fatalf("tick %d: must not send a position packet while movementCooldown is active", i)
		}
	}
	if c.awaitingTeleport {
		t.Fatal("awaitingTeleport should clear once movementCooldown reaches 0")
	}
	if c.pos != (Vec3{5, 0, 5}) {
		t.Fatalf("position = %v, want snapped to teleport anchor (5,0,5)", c.pos)
	}
	if len(sender.sent) != 0 {
		t.Fatal("no packets should have been sent during the cooldown window")
	}
}

func TestNoPacketWhileAwaitingTeleportPastCooldown(t *testing.T) {
	w := newFlatWorld(0)
	sender := &recordingSender{}
	c := New(w, sender, nil, Vec3{0, 0, 0})
	c.awaitingTeleport = true // simulate a state outside the cooldown window

	_, sent, err := c.Tick()
	if err != nil {
		t.Fatalf("Tick: %v", err)
	}
	if sent {
		t.Fatal("must not send a position packet while awaitingTeleport is set")
	}
}

func TestGravityPullsDownWhenAirborne(t *testing.T) {
	w := newFlatWorld(-100) // no floor within reach
	sender := &recordingSender{}
	c := New(w, sender, nil, Vec3{0, 50, 0})
	c.onGround = false

	c.integrate(0, 0)
	if c.vel.Y >= 0 {
		t.Fatalf("vel.Y = %v, want negative after one tick of gravity", c.vel.Y)
	}
	if c.pos.Y >= 50 {
		t.Fatalf("pos.Y = %v, want < 50 after falling", c.pos.Y)
	}
}

func TestLandingOnFloorSetsOnGround(t *testing.T) {
	w := newFlatWorld(10) // solid below y=10
	sender := &recordingSender{}
	c := New(w, sender, nil, Vec3{0, 10.5, 0})
	c.onGround = false
	c.vel.Y = -2 // falling fast enough to reach the floor in one tick

	c.integrate(0, 0)
	if !c.onGround {
		t.Fatal("expected onGround after the downward sweep clips against the floor")
	}
	if c.pos.Y != 10 {
		t.Fatalf("pos.Y = %v, want settled at 10 (top of the solid block)", c.pos.Y)
	}
	if c.vel.Y != 0 {
		t.Fatalf("vel.Y = %v, want zeroed after landing", c.vel.Y)
	}
}

// TestStepUpClearsAnObstructionWithinLiftHeight exercises the step-up
// mechanism directly: an obstruction whose top is within stepUpHeight of
// the avatar's current box bottom gets cleared and committed. The case of
// a top further above (§4.10.2's "strictly improved" gate rejecting the
// lift) is TestStepUpDoesNotTunnelThroughAFullBlock.
func TestStepUpClearsAnObstructionWithinLiftHeight(t *testing.T) {
	w := newFlatWorld(10)
	w.setSolid(1, 10, 0) // a full block immediately ahead, top at y=11

	// 10.45 + stepUpHeight(0.6) = 11.05, just clearing the block's top (11).
	sender := &recordingSender{}
	c := New(w, sender, nil, Vec3{0.5, 10.45, 0})
	c.onGround = true

	c.integrate(0.3, 0)

	if c.pos.X < 0.7 {
		t.Fatalf("pos.X = %v, want the full desired step once the obstruction clears", c.pos.X)
	}
	if c.pos.Y < 10.9 {
		t.Fatalf("pos.Y = %v, want settled on top of the obstruction near y=11", c.pos.Y)
	}
}

// TestStepUpDoesNotTunnelThroughAFullBlock checks the negative case: an
// obstruction taller than stepUpHeight above the box bottom is not
// climbable in one tick, and the avatar must not be left floating inside
// it.
func TestStepUpDoesNotTunnelThroughAFullBlock(t *testing.T) {
	w := newFlatWorld(10)
	w.setSolid(1, 10, 0) // full block resting directly on the floor surface

	sender := &recordingSender{}
	c := New(w, sender, nil, Vec3{0.5, 10, 0})
	c.onGround = true

	c.integrate(0.3, 0)

	if c.pos.X >= 0.8 {
		t.Fatalf("pos.X = %v, want clamped short of the full 0.3 step: a full block at foot height is not step-up-able", c.pos.X)
	}
	if c.pos.Y > 10.01 {
		t.Fatalf("pos.Y = %v, want settled back at the original floor height, not left floating", c.pos.Y)
	}
}

func TestAABBSweepXNeverOverlapsCandidateAfterClamping(t *testing.T) {
	w := newFlatWorld(-100)
	w.setSolid(3, 0, 0)
	w.setSolid(3, 1, 0)

	b := AABB{MinX: 2.2, MaxX: 2.8, MinY: 0, MaxY: 1.8, MinZ: -0.3, MaxZ: 0.3}
	dx := sweepX(w, b, 1.0) // desired motion would tunnel into the block at x=3

	moved := b.offset(dx, 0, 0)
	for _, cand := range candidateBoxes(w, moved) {
		if moved.overlapsX(cand) && moved.overlapsY(cand) && moved.overlapsZ(cand) {
			t.Fatalf("swept box %+v still overlaps candidate %+v after clamping dx=%v", moved, cand, dx)
		}
	}
}

func TestAABBSweepOnlyTouchesItsOwnAxis(t *testing.T) {
	w := newFlatWorld(-100)
	w.setSolid(3, 0, 0)

	b := AABB{MinX: 2.2, MaxX: 2.8, MinY: 0, MaxY: 1.8, MinZ: -0.3, MaxZ: 0.3}
	dz := sweepZ(w, b, 0.5) // nothing in the way on Z
	if dz != 0.5 {
		t.Fatalf("sweepZ = %v, want unclamped 0.5: the X-axis obstruction must not leak into Z", dz)
	}
}

func TestYawTurnsTowardWaypointCappedPerTick(t *testing.T) {
	w := newFlatWorld(0)
	sender := &recordingSender{}
	c := New(w, sender, nil, Vec3{0, 0, 0})
	c.yaw = 0

	c.turnToward(Vec3{10, 0, 0}) // due +X, a 90 degree turn from yaw=0
	if c.yaw != -maxTurnSpeed {
		t.Fatalf("yaw = %v, want capped at -maxTurnSpeed=%v for a single tick", c.yaw, -maxTurnSpeed)
	}
}

func TestObstacleRecoveryEscalatesWithStuckCounter(t *testing.T) {
	w := newFlatWorld(0)
	sender := &recordingSender{}
	c := New(w, sender, nil, Vec3{0, 0, 0})

	c.stuckCounter = 5
	c.onGround = true
	c.runObstacleRecovery()
	if c.obstacleStage != 1 || !c.queuedJump {
		t.Fatalf("stage = %d, queuedJump = %v, want stage 1 with a queued jump", c.obstacleStage, c.queuedJump)
	}

	c.stuckCounter = 20
	c.runObstacleRecovery()
	if c.obstacleStage != 2 {
		t.Fatalf("stage = %d, want 2 at stuckCounter=20", c.obstacleStage)
	}

	c.stuckCounter = 40
	c.runObstacleRecovery()
	if c.obstacleStage != 3 || c.backupTicks != 15 {
		t.Fatalf("stage = %d, backupTicks = %d, want stage 3 with 15 backup ticks", c.obstacleStage, c.backupTicks)
	}

	c.currentIdx = 0
	c.path = []pathfind.Cell{{X: 0, Y: 0, Z: 0}, {X: 1, Y: 0, Z: 0}}
	c.stuckCounter = 46
	c.runObstacleRecovery()
	if c.obstacleStage != 0 || c.stuckCounter != 0 {
		t.Fatalf("stage 4 must reset stuckCounter and obstacleStage, got stage=%d counter=%d", c.obstacleStage, c.stuckCounter)
	}
	if c.currentIdx != 1 {
		t.Fatalf("currentIdx = %d, want skip to 1", c.currentIdx)
	}
}
