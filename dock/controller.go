// dock/controller.go
// Copyright(c) 2024-2026 jetbridge contributors, licensed under the GNU Public License, Version 3.
// SPDX: GPL-3.0-only

package dock

import (
	"fmt"

	"github.com/mmp/jetbridge/log"
	"github.com/mmp/jetbridge/math"
	"github.com/mmp/jetbridge/scenery"
	"github.com/mmp/jetbridge/traffic"
)

const (
	driveSpeed  = 1.0  // m/s
	turnSpeed   = 10.0 // °/s
	heightSpeed = 0.1  // m/s
	animTimeout = 50   // s
	alignDist   = 1.0  // m abeam door
)

// NearJetwayLimit is the max # of jetways we consider for docking.
const NearJetwayLimit = 3

type DriveState int

const (
	DriveParked DriveState = iota
	DriveToAP
	DriveAtAP
	DriveToDoor
	DriveDocked // terminal state for docking
	DriveToPark
)

func (s DriveState) String() string {
	return []string{"Parked", "ToAP", "AtAP", "ToDoor", "Docked", "ToPark"}[s]
}

// Controller is the glue between one door of a plane and a jetway. It
// holds the geometry in the door-local frame and animates the jetway's
// pose fields while docking or undocking.
//
// The door frame has its origin at the door, x pointing out of the door
// (i.e. left of the plane), z along the fuselage towards the tail.
type Controller struct {
	Door int
	JW   *scenery.Jetway

	State DriveState

	// Jetway rotunda in door-local coordinates.
	x, y, z, psi float32

	// SoftMatch is set if the jetway doesn't really fulfill the
	// matching criteria but we take it anyway.
	SoftMatch bool

	// Target cabin position at the door with the corresponding pose
	// values.
	doorX                        float32
	doorRot1, doorRot2, doorRot3 float32
	doorExtent                   float32
	apX                          float32 // alignment point abeam the door
	parkedX, parkedZ             float32

	// Cabin reference point, the thing being driven.
	cabinX, cabinZ float64

	waitWheelRot bool    // waiting for wheel base rotation
	wheelRot     float32 // to this angle

	// The controller keeps its own clock, advanced by the dt passed to
	// the drive calls. startTS/timeout are values of that clock.
	clock      float32
	startTS    float32
	lastStepTS float32
	timeout    float32

	failed bool

	lg *log.Logger
}

// NewController sets up a tentative controller for the jetway; it still
// has to pass the matching filters and SetupForDoor before it can drive.
func NewController(jw *scenery.Jetway, lg *log.Logger) *Controller {
	return &Controller{JW: jw, lg: lg}
}

// Failed reports whether the last dock operation was aborted on timeout.
func (c *Controller) Failed() bool { return c.failed }

// pose converts a tunnel end at (cabinX, cabinZ) in the door frame to
// pose values for the jetway.
func (c *Controller) pose(cabinX, cabinZ float32) (rot1, extent, rot2, rot3 float32) {
	jw := c.JW

	dist := math.Length2f([2]float32{cabinX - c.x, cabinZ - c.z})

	rot1d := math.Degrees(math.Atan2(cabinZ-c.z, cabinX-c.x)) // door frame
	rot1 = math.ReduceAngle(rot1d + 90 - c.psi)
	extent = dist - jw.CabinPos

	// angle 0° door frame -> heading -> jetway frame -> diff to rot1
	rot2 = math.ReduceAngle(0 + 90 - c.psi - rot1)

	netLength := dist + jw.CabinLength*math.Cos(math.Radians(rot2))
	rot3 = -math.Degrees(math.Atan2(c.y, netLength))
	return
}

// SetupForDoor fills in the door-local geometry for the given aircraft
// pose and door: the rotunda and cabin positions, the docked target pose,
// the alignment point and the parked cabin position.
func (c *Controller) SetupForDoor(ac traffic.Aircraft, door traffic.Door) {
	jw := c.JW
	planeX, planeY, planeZ, planePsi := ac.LocalPose()

	// rotate into the plane's local frame
	dx := jw.X - planeX
	dz := jw.Z - planeZ

	sinPsi := math.Sin(math.Radians(planePsi))
	cosPsi := math.Cos(math.Radians(planePsi))

	c.x = cosPsi*dx + sinPsi*dz
	c.z = -sinPsi*dx + cosPsi*dz
	c.psi = math.ReduceAngle(jw.Psi - planePsi)

	// translate into the door's local frame
	c.x -= door.X
	c.z -= door.Z

	rot1d := math.ReduceAngle((jw.InitialRot1 + c.psi) - 90) // door frame
	c.cabinX = float64(c.x + (jw.Extent+jw.CabinPos)*math.Cos(math.Radians(rot1d)))
	c.cabinZ = float64(c.z + (jw.Extent+jw.CabinPos)*math.Sin(math.Radians(rot1d)))

	c.doorX = -jw.CabinLength
	// target z is 0
	c.y = (jw.Y + jw.Height) - (planeY + door.Y)

	c.doorRot1, c.doorExtent, c.doorRot2, c.doorRot3 = c.pose(c.doorX, 0)
	// rot3 never went through the matching filters
	c.doorRot3 = math.Clamp(c.doorRot3, jw.MinRot3, jw.MaxRot3)

	r := jw.InitialExtent + jw.CabinPos
	c.parkedX = c.x + r*math.Cos(math.Radians(rot1d))
	c.parkedZ = c.z + r*math.Sin(math.Radians(rot1d))

	c.apX = c.doorX - alignDist

	jw.SetWheels()
}

// SetupDockUndock arms the controller for a drive operation starting
// after the given delay on the controller's clock.
func (c *Controller) SetupDockUndock(delay float32) {
	c.State = DriveToAP
	c.startTS = c.clock + delay
	c.lastStepTS = c.startTS
	c.timeout = c.startTS + animTimeout
	c.failed = false
	c.JW.Warnlight = 1
}

// Reset aborts whatever the controller is doing and returns the jetway to
// its parked pose, releasing the lock. Safe to call repeatedly.
func (c *Controller) Reset() {
	c.State = DriveParked
	if c.JW != nil {
		c.JW.Reset()
		c.JW.Unlock()
	}
}

func (c *Controller) String() string {
	return fmt.Sprintf("%s (door %d, %s)", c.JW.Name, c.Door, c.State)
}

// less is the fuzzy comparator used to order candidates for door
// assignment: higher jetways and jetways further aft serve higher door
// numbers.
func (c *Controller) less(o *Controller) bool {
	// height goes first
	if c.JW.Height < o.JW.Height-1 {
		return true
	}
	if c.JW.Height > o.JW.Height+1 {
		return false
	}

	// then z
	if c.z < o.z-0.5 {
		return true
	}
	if c.z > o.z+0.5 {
		return false
	}

	// then x, further left (= towards -x) is higher
	return c.x > o.x
}
