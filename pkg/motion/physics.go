package motion

import "math"

// integrate applies one tick of gravity, the queued jump (if any), and the
// swept horizontal/vertical motion for desired step (dx, dz).
func (c *Controller) integrate(dx, dz float64) {
	if c.queuedJump && c.onGround && c.jumpCooldown == 0 {
		c.vel.Y = jumpVelocity
		c.onGround = false
		c.jumpCooldown = jumpCooldownTick
	}
	c.queuedJump = false
	if c.jumpCooldown > 0 {
		c.jumpCooldown--
	}

	if !c.onGround {
		c.vel.Y += gravity
		c.vel.Y *= verticalDrag
		if c.vel.Y < maxFallSpeed {
			c.vel.Y = maxFallSpeed
		}
	} else if c.vel.Y < 0 {
		c.vel.Y = 0
	}

	c.sweepHorizontal(dx, dz)
	c.sweepVertical()
}

// sweepHorizontal moves (dx, dz), trying a step-up over any blocked axis
// when grounded, per §4.10.2.
func (c *Controller) sweepHorizontal(dx, dz float64) {
	b := boxAt(c.pos)
	sweptDX := sweepX(c.world, b, dx)
	bx := b.offset(sweptDX, 0, 0)
	sweptDZ := sweepZ(c.world, bx, dz)

	blocked := sweptDX != dx || sweptDZ != dz
	if blocked && c.onGround {
		lifted := b.offset(0, stepUpHeight, 0)
		liftedDX := sweepX(c.world, lifted, dx)
		liftedBX := lifted.offset(liftedDX, 0, 0)
		liftedDZ := sweepZ(c.world, liftedBX, dz)

		if math.Abs(liftedDX)+math.Abs(liftedDZ) > math.Abs(sweptDX)+math.Abs(sweptDZ)+1e-9 {
			c.pos.X += liftedDX
			c.pos.Z += liftedDZ
			c.pos.Y += stepUpHeight
			settled := boxAt(c.pos)
			dropDY, _ := sweepY(c.world, settled, -stepUpHeight)
			c.pos.Y += dropDY
			return
		}
	}

	c.pos.X += sweptDX
	c.pos.Z += sweptDZ
}

// sweepVertical applies the current vertical velocity, clipping it and
// updating onGround on collision. A zero-velocity tick leaves onGround as
// it was: gravity guarantees vel.Y != 0 whenever actually airborne, so the
// only way to reach here with dy == 0 is already resting on the ground.
func (c *Controller) sweepVertical() {
	dy := c.vel.Y
	if dy == 0 {
		return
	}
	b := boxAt(c.pos)
	sweptDY, clipped := sweepY(c.world, b, dy)
	c.pos.Y += sweptDY
	if clipped {
		c.vel.Y = 0
	}
	c.onGround = clipped && dy < 0
}
