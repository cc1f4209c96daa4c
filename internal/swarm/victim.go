package swarm

import (
	"github.com/google/uuid"
	"github.com/paulmach/orb"
)

// Victim is a simulated point of interest requiring rescue. Its position is
// immutable once generated; the rescued flag flips false→true exactly once.
type Victim struct {
	id      string
	pos     orb.Point
	rescued bool
}

func newVictim(pos orb.Point) *Victim {
	return &Victim{id: uuid.NewString(), pos: pos}
}

// ID returns the victim's identity.
func (v *Victim) ID() string { return v.id }

// Pos returns the victim's fixed position.
func (v *Victim) Pos() orb.Point { return v.pos }

// Rescued reports whether the victim has been rescued.
func (v *Victim) Rescued() bool { return v.rescued }

// shortID is the first uuid group, used as a log actor label.
func (v *Victim) shortID() string {
	if len(v.id) >= 8 {
		return v.id[:8]
	}
	return v.id
}

// VictimSnapshot is a read-only copy of a victim's state for sinks and API
// payloads.
type VictimSnapshot struct {
	ID      string    `json:"id"`
	Pos     orb.Point `json:"pos"`
	Rescued bool      `json:"rescued"`
}

func (v *Victim) snapshot() VictimSnapshot {
	return VictimSnapshot{ID: v.id, Pos: v.pos, Rescued: v.rescued}
}

// noTarget marks a drone without a current victim assignment. Targets are
// indices into the victim arena rather than live pointers, so "target became
// rescued elsewhere" is a lookup-and-check instead of a dangling reference.
const noTarget = -1
