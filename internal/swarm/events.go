package swarm

import (
	"time"

	"github.com/google/uuid"
	"github.com/paulmach/orb"
)

// RescueEvent is the immutable record produced once per rescued victim.
type RescueEvent struct {
	ID         string    `json:"id"`
	DroneID    string    `json:"drone_id"`
	DroneLabel string    `json:"drone_label"`
	Team       string    `json:"team"`
	VictimID   string    `json:"victim_id"`
	VictimPos  orb.Point `json:"victim_pos"`
	Distance   float64   `json:"distance_m"` // distance at trigger, meters
	Timestamp  time.Time `json:"timestamp"`
}

// RenderSink receives create/update/remove calls for everything the core
// wants visible. The core never reads state back from it. Implementations:
// the Ebiten map view, the WebSocket broadcaster, or the no-op default.
type RenderSink interface {
	FloodZone(center orb.Point, radius float64)
	RegionAssigned(droneID string, region orb.Polygon)
	DroneMoved(d DroneSnapshot)
	VictimUpdated(v VictimSnapshot)
	Clear()
}

// GuidanceSink receives one text message per rescue trigger, e.g. for audio
// playback. Fire-and-forget: implementations may drop messages without
// affecting simulation correctness.
type GuidanceSink interface {
	Announce(msg string)
}

// EventSink receives routed rescue events.
type EventSink interface {
	Rescue(ev RescueEvent)
}

type nopRenderSink struct{}

func (nopRenderSink) FloodZone(orb.Point, float64)       {}
func (nopRenderSink) RegionAssigned(string, orb.Polygon) {}
func (nopRenderSink) DroneMoved(DroneSnapshot)           {}
func (nopRenderSink) VictimUpdated(VictimSnapshot)       {}
func (nopRenderSink) Clear()                             {}

type nopGuidanceSink struct{}

func (nopGuidanceSink) Announce(string) {}

type nopEventSink struct{}

func (nopEventSink) Rescue(RescueEvent) {}

// EventRouter packages a completed rescue into a RescueEvent and forwards it
// to the sink. At-most-once delivery, synchronous with the tick in which the
// rescue occurred; no retry, no buffering.
type EventRouter struct {
	sink EventSink
	now  func() time.Time
}

// NewEventRouter wraps the given sink. A nil sink routes into the void.
func NewEventRouter(sink EventSink) *EventRouter {
	if sink == nil {
		sink = nopEventSink{}
	}
	return &EventRouter{sink: sink, now: time.Now}
}

// Route builds the event record and hands it to the sink.
func (r *EventRouter) Route(d *Drone, v *Victim, distance float64) RescueEvent {
	ev := RescueEvent{
		ID:         uuid.NewString(),
		DroneID:    d.id,
		DroneLabel: d.label,
		Team:       d.team,
		VictimID:   v.id,
		VictimPos:  v.pos,
		Distance:   distance,
		Timestamp:  r.now(),
	}
	r.sink.Rescue(ev)
	return ev
}
