package motion

// runObstacleRecovery implements the §4.10.3 state machine: stuckCounter
// (already incremented by the caller) selects the stage, and each stage
// takes its action immediately rather than waiting for the next tick.
func (c *Controller) runObstacleRecovery() {
	switch {
	case c.stuckCounter >= 46:
		c.obstacleStage = 4
		if c.currentIdx+1 < len(c.path) {
			c.currentIdx++
		} else {
			c.requestRecalc()
		}
		c.stuckCounter = 0
		c.obstacleStage = 0
		c.backupTicks = 0
		c.lateralTicks = 0

	case c.stuckCounter >= 31:
		c.obstacleStage = 3
		if c.backupTicks <= 0 {
			c.backupTicks = 15
		}

	case c.stuckCounter >= 16:
		c.obstacleStage = 2
		c.lateralTicks++
		if c.lateralTicks >= 5 {
			c.lateralTicks = 0
			c.lateralSign = -c.lateralSign
		}

	case c.stuckCounter >= 5:
		c.obstacleStage = 1
		if c.onGround {
			c.queuedJump = true
		}
	}
}

// applyObstacleOverride replaces the planned (dx, dz) step with the
// recovery stage's action, when one is active.
func (c *Controller) applyObstacleOverride(dx, dz *float64) {
	switch c.obstacleStage {
	case 2:
		faceX, faceZ := c.facing()
		// Perpendicular to facing: rotate (faceX, faceZ) by -90 degrees.
		perpX := faceZ * c.lateralSign * 0.3
		perpZ := -faceX * c.lateralSign * 0.3
		*dx += perpX
		*dz += perpZ

	case 3:
		if c.backupTicks > 0 {
			faceX, faceZ := c.facing()
			*dx = -faceX * stepPerTick
			*dz = -faceZ * stepPerTick
			c.backupTicks--
		}
	}
}
