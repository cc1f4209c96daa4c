package swarm

import (
	"fmt"
	"math/rand"

	"github.com/google/uuid"
	"github.com/paulmach/orb"

	"github.com/perbrage/flood-rescue-swarm/internal/geometry"
)

const (
	// snapEpsilon is the remaining distance in meters under which a pursuing
	// drone snaps exactly onto its target position, preventing overshoot
	// oscillation around the trigger range.
	snapEpsilon = 1.0

	// patrolStepFraction scales the idle jitter step relative to drone speed.
	patrolStepFraction = 0.25
)

// squadLabels are the team labels handed out round-robin at launch.
var squadLabels = []string{"alpha", "bravo", "charlie"}

// DroneState is the high-level behaviour state, derived from the target.
type DroneState int

const (
	DroneStateIdle     DroneState = iota // patrolling, no live target
	DroneStatePursuing                   // closing on an assigned victim
)

func (ds DroneState) String() string {
	switch ds {
	case DroneStateIdle:
		return "idle"
	case DroneStatePursuing:
		return "pursuing"
	default:
		return "unknown"
	}
}

// Drone is an autonomous rescuer. The seed position is the launch point and
// allocation reference; it never changes after launch, which keeps the
// region partition valid for the whole run.
type Drone struct {
	id    string
	label string // short display label, "D0", "D1", ...
	team  string

	seed orb.Point
	pos  orb.Point

	region  orb.Polygon // nil = unrestricted (partition failed or absent)
	target  int         // victim arena index, noTarget when idle
	rescued int         // monotonically non-decreasing
	speed   float64     // meters per tick
}

func newDrone(index int, seed orb.Point, speed float64) *Drone {
	return &Drone{
		id:     uuid.NewString(),
		label:  fmt.Sprintf("D%d", index),
		team:   squadLabels[index%len(squadLabels)],
		seed:   seed,
		pos:    seed,
		target: noTarget,
		speed:  speed,
	}
}

// State derives the behaviour state from the current target.
func (d *Drone) State() DroneState {
	if d.target != noTarget {
		return DroneStatePursuing
	}
	return DroneStateIdle
}

// Rescued returns the drone's rescue count.
func (d *Drone) Rescued() int { return d.rescued }

// stepToward advances the drone one tick toward target: a fixed step along
// the straight-line bearing, snapping onto the target when the remaining
// distance is within the step or epsilon.
func (d *Drone) stepToward(target orb.Point) {
	remaining := geometry.Distance(d.pos, target)
	if remaining <= d.speed || remaining <= snapEpsilon {
		d.pos = target
		return
	}
	bearing := geometry.Bearing(d.pos, target)
	d.pos = geometry.Destination(d.pos, bearing, d.speed)
}

// patrol applies a small bounded random jitter to the position. No clamping
// to the region is performed; an idle drone can drift over its boundary.
func (d *Drone) patrol(rng *rand.Rand) {
	bearing := rng.Float64() * 360
	step := rng.Float64() * d.speed * patrolStepFraction
	d.pos = geometry.Destination(d.pos, bearing, step)
}

// DroneSnapshot is a read-only copy of a drone's state for sinks and API
// payloads. The region travels separately (it changes only at launch).
type DroneSnapshot struct {
	ID      string    `json:"id"`
	Label   string    `json:"label"`
	Team    string    `json:"team"`
	Seed    orb.Point `json:"seed"`
	Pos     orb.Point `json:"pos"`
	State   string    `json:"state"`
	Target  int       `json:"target"`
	Rescued int       `json:"rescued"`
}

func (d *Drone) snapshot() DroneSnapshot {
	return DroneSnapshot{
		ID:      d.id,
		Label:   d.label,
		Team:    d.team,
		Seed:    d.seed,
		Pos:     d.pos,
		State:   d.State().String(),
		Target:  d.target,
		Rescued: d.rescued,
	}
}
