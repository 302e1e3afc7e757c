// dock/drive.go
// Copyright(c) 2024-2026 jetbridge contributors, licensed under the GNU Public License, Version 3.
// SPDX: GPL-3.0-only

package dock

import (
	gomath "math"

	"github.com/mmp/jetbridge/math"
)

// rotateWheelBase turns the wheel base towards wheelRot, returning true
// when it is close enough. Since the bogie rolls equally well in both
// directions a rotation of more than 90° is replaced by the opposite one.
func (c *Controller) rotateWheelBase(dt float32) bool {
	jw := c.JW

	deltaRot := math.ReduceAngle(c.wheelRot - jw.WheelRotateC)

	// optimize rotation
	if deltaRot > 90 {
		deltaRot -= 180
	} else if deltaRot < -90 {
		deltaRot += 180
	}

	done := true
	var dRot float32
	if math.Abs(deltaRot) > 2 {
		dRot = dt * turnSpeed
		if deltaRot < 0 {
			dRot = -dRot
		}

		jw.WheelRotateC += dRot

		done = false // must wait
	} else {
		dRot = deltaRot
		jw.WheelRotateC += deltaRot
	}

	daRot := dRot * (jw.WheelDistance / jw.WheelDiameter)

	jw.WheelRotateL += daRot
	jw.WheelRotateR -= daRot
	return done
}

// rotate1Extend slaves rotation 1 and the extension to the current cabin
// position, clamped to the jetway's limits. A soft match is allowed to
// overextend, that's what makes it soft.
func (c *Controller) rotate1Extend() {
	jw := c.JW

	rot1, extent, _, _ := c.pose(float32(c.cabinX), float32(c.cabinZ))

	jw.Rotate1 = math.Clamp(rot1, jw.MinRot1, jw.MaxRot1)
	if !c.SoftMatch {
		extent = min(extent, jw.MaxExtent)
	}
	jw.Extent = max(extent, jw.MinExtent)
	jw.SetWheels()
}

// rotate3 moves the tunnel tilt towards rot3, returning true when there.
func (c *Controller) rotate3(rot3, dt float32) bool {
	jw := c.JW

	if math.Abs(jw.Rotate3-rot3) > 0.1 {
		// strictly it's atan
		dRot3 := math.Degrees(dt * heightSpeed / (jw.CabinPos + jw.Extent))
		if jw.Rotate3 >= rot3 {
			jw.Rotate3 = max(jw.Rotate3-dRot3, rot3)
		} else {
			jw.Rotate3 = min(jw.Rotate3+dRot3, rot3)
		}
	}

	jw.SetWheels()

	if math.Abs(jw.Rotate3-rot3) > 0.1 {
		return false
	}

	jw.Rotate3 = rot3
	return true
}

// rotate2 moves the cabin rotation towards rot2, returning true when
// there.
func (c *Controller) rotate2(rot2, dt float32) bool {
	jw := c.JW

	if math.Abs(jw.Rotate2-rot2) > 0.5 {
		dRot2 := dt * turnSpeed
		if jw.Rotate2 >= rot2 {
			jw.Rotate2 = max(jw.Rotate2-dRot2, rot2)
		} else {
			jw.Rotate2 = min(jw.Rotate2+dRot2, rot2)
		}
		return math.Abs(jw.Rotate2-rot2) <= 0.5
	}

	jw.Rotate2 = rot2
	return true
}

// animateWheels spins the wheels for straight driving over distance ds.
func (c *Controller) animateWheels(ds float32) {
	jw := c.JW

	if math.Abs(math.ReduceAngle(c.wheelRot-jw.WheelRotateC)) > 90 {
		ds = -ds
	}

	daDs := math.Degrees(ds / jw.WheelDiameter)

	jw.WheelRotateL += daDs
	jw.WheelRotateR += daDs
}

// DockDrive advances the docking animation by dt seconds and returns true
// when the operation has ended. If the drive doesn't converge within the
// timeout the operation is aborted and the jetway reverts to its parked
// pose; Failed() reports that.
func (c *Controller) DockDrive(dt float32) bool {
	jw := c.JW

	if c.State == DriveDocked || c.failed {
		return true
	}

	c.clock += dt
	if c.clock < c.startTS {
		return false
	}

	// guard against a hung animation
	if c.clock > c.timeout {
		c.lg.Warnf("%s: docking timed out, reverting to parked", jw.Name)
		c.State = DriveParked
		c.failed = true
		jw.Reset()
		jw.Unlock()
		return true
	}

	dt = c.clock - c.lastStepTS
	c.lastStepTS = c.clock

	rot1d := math.ReduceAngle((jw.Rotate1 + c.psi) - 90) // door frame

	if c.State == DriveToAP {
		if c.waitWheelRot {
			if !c.rotateWheelBase(dt) {
				return false
			}
			c.waitWheelRot = false
		}

		tgtX := c.apX

		eps := float64(max(2*dt*driveSpeed, 0.1))
		if gomath.Abs(float64(tgtX)-c.cabinX) < eps && gomath.Abs(c.cabinZ) < eps {
			c.State = DriveAtAP
			c.lg.Debugf("%s: align point reached", jw.Name)
			return false
		}

		ds := float64(dt * driveSpeed)

		// Well, the wheels are somewhat behind the cabin so this is only
		// approximate but doesn't make much of a difference.
		driveAngle := math.Degrees(float32(gomath.Atan2(-c.cabinZ, float64(tgtX)-c.cabinX)))

		// wheelRot is the drive angle in the 'tunnel frame'
		c.wheelRot = math.ReduceAngle(driveAngle - rot1d)

		// avoid compression of the jetway
		if jw.Extent <= jw.MinExtent && c.wheelRot < -90 {
			c.wheelRot = -90
			driveAngle = math.ReduceAngle(rot1d + -90)
		}

		c.cabinX += gomath.Cos(float64(math.Radians(driveAngle))) * ds
		c.cabinZ += gomath.Sin(float64(math.Radians(driveAngle))) * ds

		if !c.rotateWheelBase(dt) {
			c.waitWheelRot = true
			return false
		}
		c.waitWheelRot = false

		// rotation 2
		tgtRot2 := c.doorRot2
		if c.cabinX < float64(tgtX-1) || c.cabinZ < -2 {
			// point the cabin towards the door while we drive
			angleToDoor := math.Degrees(float32(gomath.Atan2(-c.cabinZ, float64(c.doorX)-c.cabinX)))
			tgtRot2 = math.ReduceAngle(angleToDoor + 90 - c.psi - jw.Rotate1)
		}

		c.rotate2(tgtRot2, dt)
		c.rotate1Extend()
		c.rotate3(c.doorRot3, dt)
		c.animateWheels(float32(ds))
	}

	if c.State == DriveAtAP {
		// use the time to rotate the wheel base towards the door
		c.wheelRot = math.ReduceAngle(-rot1d)
		c.rotateWheelBase(dt)

		// rotation 2 + 3 must be at target now
		if c.rotate2(c.doorRot2, dt) && c.rotate3(c.doorRot3, dt) {
			c.State = DriveToDoor
		}
	}

	if c.State == DriveToDoor {
		if c.waitWheelRot {
			if !c.rotateWheelBase(dt) {
				return false
			}
			c.waitWheelRot = false
		}

		tgtX := float64(c.doorX)

		c.cabinX = min(c.cabinX, tgtX) // don't drive beyond the target point

		// ramp down speed when approaching the plane
		speed := float32(driveSpeed)
		if c.cabinX >= tgtX-0.8 {
			speed = driveSpeed * (0.1 + 0.9*max(0, float32(tgtX-c.cabinX)/0.8))
		}

		ds := dt * speed
		c.cabinX += float64(ds)

		c.wheelRot = math.ReduceAngle(-rot1d)
		if !c.rotateWheelBase(dt) {
			c.waitWheelRot = true
			return false
		}
		c.waitWheelRot = false

		c.rotate1Extend()
		c.animateWheels(ds)

		eps := float64(max(2*dt*driveSpeed, 0.05))
		if gomath.Abs(tgtX-c.cabinX) < eps {
			c.State = DriveDocked
			c.lg.Debugf("%s: door reached", jw.Name)
			jw.Warnlight = 0
			return true
		}
	}

	return false
}

// UndockDrive advances the undocking animation by dt seconds and returns
// true when the jetway is parked. On timeout the jetway snaps to its
// parked pose.
func (c *Controller) UndockDrive(dt float32) bool {
	jw := c.JW

	if c.State == DriveParked {
		return true
	}

	c.clock += dt
	if c.clock < c.startTS {
		return false
	}

	// guard against a hung animation
	if c.clock > c.timeout {
		c.lg.Warnf("%s: undocking timed out, snapping to parked", jw.Name)
		c.State = DriveParked
		jw.Reset()
		jw.Unlock()
		return true
	}

	dt = c.clock - c.lastStepTS
	c.lastStepTS = c.clock

	rot1d := math.ReduceAngle((jw.Rotate1 + c.psi) - 90) // door frame

	if c.State == DriveToAP {
		if c.waitWheelRot {
			if !c.rotateWheelBase(dt) {
				return false
			}
			c.waitWheelRot = false
		}

		tgtX := c.apX

		eps := float64(max(2*dt*driveSpeed, 0.1))
		if gomath.Abs(float64(tgtX)-c.cabinX) < eps && gomath.Abs(c.cabinZ) < eps {
			c.State = DriveAtAP
			c.lg.Debugf("%s: align point reached", jw.Name)
			return false
		}

		// back away slowly
		ds := float64(dt * 0.5 * driveSpeed)
		driveAngle := math.Degrees(float32(gomath.Atan2(-c.cabinZ, float64(tgtX)-c.cabinX)))

		c.cabinX += gomath.Cos(float64(math.Radians(driveAngle))) * ds
		c.cabinZ += gomath.Sin(float64(math.Radians(driveAngle))) * ds

		c.wheelRot = math.ReduceAngle(driveAngle - rot1d)
		if !c.rotateWheelBase(dt) {
			c.waitWheelRot = true
			return false
		}
		c.waitWheelRot = false

		c.rotate1Extend()
		c.animateWheels(float32(ds))
	}

	if c.State == DriveAtAP {
		// nothing for now
		c.State = DriveToPark
	}

	if c.State == DriveToPark {
		if c.waitWheelRot {
			if !c.rotateWheelBase(dt) {
				return false
			}
			c.waitWheelRot = false
		}

		tgtX := c.parkedX
		tgtZ := c.parkedZ

		ds := float64(dt * driveSpeed)
		driveAngle := math.Degrees(float32(gomath.Atan2(float64(tgtZ)-c.cabinZ, float64(tgtX)-c.cabinX)))

		// wheelRot is the drive angle in the 'tunnel frame'
		c.wheelRot = math.ReduceAngle(driveAngle - rot1d)

		// avoid compression of the jetway
		if jw.Extent <= jw.MinExtent && c.wheelRot > 90 {
			c.wheelRot = 90
			driveAngle = math.ReduceAngle(rot1d + 90)
		}

		c.cabinX += gomath.Cos(float64(math.Radians(driveAngle))) * ds
		c.cabinZ += gomath.Sin(float64(math.Radians(driveAngle))) * ds

		if !c.rotateWheelBase(dt) {
			c.waitWheelRot = true
			return false
		}
		c.waitWheelRot = false

		c.rotate2(jw.InitialRot2, dt)
		c.rotate3(jw.InitialRot3, dt)
		c.rotate1Extend()
		c.animateWheels(float32(ds))

		eps := float64(max(2*dt*driveSpeed, 0.1))
		if gomath.Abs(float64(tgtX)-c.cabinX) < eps && gomath.Abs(float64(tgtZ)-c.cabinZ) < eps {
			c.State = DriveParked
			jw.Warnlight = 0
			c.lg.Debugf("%s: park position reached", jw.Name)
			jw.Unlock()
			return true
		}
	}

	return false
}
