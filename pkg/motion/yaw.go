package motion

import "math"

// turnToward rotates yaw toward waypoint at up to maxTurnSpeed degrees per
// tick, per §4.10.4. A stationary target (already at the waypoint) leaves
// yaw unchanged.
func (c *Controller) turnToward(waypoint Vec3) {
	dx := waypoint.X - c.pos.X
	dz := waypoint.Z - c.pos.Z
	if dx == 0 && dz == 0 {
		return
	}

	targetYaw := -math.Atan2(dx, dz) * 180 / math.Pi
	diff := normalizeAngle(targetYaw - c.yaw)
	if diff > maxTurnSpeed {
		diff = maxTurnSpeed
	} else if diff < -maxTurnSpeed {
		diff = -maxTurnSpeed
	}
	c.yaw = normalizeAngle(c.yaw + diff)
}

// facing returns the unit XZ direction yaw currently points toward, the
// inverse of the atan2 mapping turnToward uses.
func (c *Controller) facing() (float64, float64) {
	rad := c.yaw * math.Pi / 180
	return -math.Sin(rad), math.Cos(rad)
}

// normalizeAngle folds a into (-180, 180].
func normalizeAngle(a float64) float64 {
	for a <= -180 {
		a += 360
	}
	for a > 180 {
		a -= 360
	}
	return a
}
