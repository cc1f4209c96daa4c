package swarm

import (
	"errors"
	"fmt"
	"math/rand"
	"sync"
	"time"

	"github.com/paulmach/orb"

	"github.com/perbrage/flood-rescue-swarm/internal/geometry"
)

// ErrNoFloodCenter is returned by Launch when no flood centre has been set.
// This is a precondition violation: it is reported to the caller and no
// state changes.
var ErrNoFloodCenter = errors.New("swarm: launch requires a flood center")

// seedRingFraction places drone seeds on a ring at this fraction of the
// flood radius around the centre, evenly spaced so the Voronoi sites are
// always distinct for 2+ drones.
const seedRingFraction = 0.5

// Simulation owns the entire run state: drones, victims, regions, tick
// counter and run flags. Launch and Reset construct and tear down state
// wholesale; nothing lives at package scope. All mutation happens inside
// the mutex, so a tick body is an all-or-nothing step with respect to
// concurrent Pause/Reset/snapshot calls.
type Simulation struct {
	cfg      Config
	rng      *rand.Rand
	log      *SimLog
	render   RenderSink
	guidance GuidanceSink
	router   *EventRouter
	clock    *Clock

	mu        sync.Mutex
	center    orb.Point
	centerSet bool
	drones    []*Drone
	victims   []*Victim
	launched  bool
	finished  bool
	tick      int
}

// Option is a builder function applied during construction.
type Option func(*Simulation)

// WithConfig sets the run configuration.
func WithConfig(cfg Config) Option {
	return func(s *Simulation) { s.cfg = cfg }
}

// WithSeed sets the RNG seed for deterministic runs.
func WithSeed(seed int64) Option {
	return func(s *Simulation) {
		s.rng = rand.New(rand.NewSource(seed)) // #nosec G404 -- simulation, not crypto
	}
}

// WithFloodCenter pre-sets the flood centre, normally a user map click.
func WithFloodCenter(center orb.Point) Option {
	return func(s *Simulation) {
		s.center = center
		s.centerSet = true
	}
}

// WithRenderSink routes marker/region updates to the given sink.
func WithRenderSink(r RenderSink) Option {
	return func(s *Simulation) { s.render = r }
}

// WithGuidanceSink routes rescue guidance messages to the given sink.
func WithGuidanceSink(g GuidanceSink) Option {
	return func(s *Simulation) { s.guidance = g }
}

// WithEventSink routes rescue events to the given sink.
func WithEventSink(e EventSink) Option {
	return func(s *Simulation) { s.router = NewEventRouter(e) }
}

// WithVerboseLog enables per-tick position logging.
func WithVerboseLog() Option {
	return func(s *Simulation) { s.log = NewSimLog(true) }
}

// New constructs an idle simulation. Call Launch to create entities and
// Resume (or Step, for frame-driven and headless callers) to run it.
func New(opts ...Option) *Simulation {
	s := &Simulation{
		cfg:      DefaultConfig(),
		rng:      rand.New(rand.NewSource(time.Now().UnixNano())), // #nosec G404
		log:      NewSimLog(false),
		render:   nopRenderSink{},
		guidance: nopGuidanceSink{},
		router:   NewEventRouter(nil),
		clock:    NewClock(),
	}
	for _, o := range opts {
		o(s)
	}
	return s
}

// Log exposes the structured event log.
func (s *Simulation) Log() *SimLog { return s.log }

// Config returns the run configuration.
func (s *Simulation) Config() Config { return s.cfg }

// SetFloodCenter records the user-chosen flood centre. Ignored mid-run; the
// partition is only computed at launch and must stay valid.
func (s *Simulation) SetFloodCenter(center orb.Point) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.launched {
		return
	}
	s.center = center
	s.centerSet = true
}

// FloodCenter returns the current centre and whether one has been set.
func (s *Simulation) FloodCenter() (orb.Point, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.center, s.centerSet
}

// Launch tears down any previous entities and builds a fresh run: drones on
// a seed ring, the detection batch, and the region partition. It does not
// start the clock; Resume does. Fails with ErrNoFloodCenter when no centre
// is set, leaving all state untouched.
func (s *Simulation) Launch() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.centerSet {
		return ErrNoFloodCenter
	}

	s.teardown()
	s.launched = true

	s.render.FloodZone(s.center, s.cfg.FloodRadius)
	s.log.Add(s.tick, "--", "--", "run", "launch",
		fmt.Sprintf("%d drones, flood radius %.0fm", s.cfg.Agents, s.cfg.FloodRadius), 0)

	ringRadius := s.cfg.FloodRadius * seedRingFraction
	for i := 0; i < s.cfg.Agents; i++ {
		bearing := 360 * float64(i) / float64(s.cfg.Agents)
		seed := geometry.Destination(s.center, bearing, ringRadius)
		d := newDrone(i, seed, s.cfg.Speed)
		s.drones = append(s.drones, d)
		s.render.DroneMoved(d.snapshot())
	}

	s.detect()
	s.partition()
	return nil
}

// Resume starts the clock at the configured tick interval. Idempotent.
func (s *Simulation) Resume() {
	s.clock.Start(s.cfg.TickPeriod(), s.Step)
}

// Pause halts future ticks without touching entity state. Idempotent.
func (s *Simulation) Pause() {
	s.clock.Stop()
}

// Running reports whether the clock is ticking.
func (s *Simulation) Running() bool {
	return s.clock.Running()
}

// Reset stops the clock and tears down all entities unconditionally,
// independent of run state. Idempotent.
func (s *Simulation) Reset() {
	s.clock.Stop()
	s.mu.Lock()
	defer s.mu.Unlock()
	s.teardown()
	s.log.Add(0, "--", "--", "run", "reset", "all entities destroyed", 0)
}

// teardown destroys drones, victims and regions. Caller holds the mutex.
func (s *Simulation) teardown() {
	s.drones = nil
	s.victims = nil
	s.launched = false
	s.finished = false
	s.tick = 0
	s.render.Clear()
}

// Step executes one tick body: allocation, motion and rescue resolution,
// then the termination check. It returns true once the run is finished and
// is a no-op (still reporting done-ness) before launch or after completion.
func (s *Simulation) Step() bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.launched || s.finished {
		return s.finished
	}

	s.tick++
	s.allocate()
	s.advance()

	if remaining := s.remaining(); remaining == 0 && len(s.victims) > 0 {
		s.finished = true
		sum := s.summary()
		s.log.Add(s.tick, "--", "--", "run", "complete",
			fmt.Sprintf("%d/%d rescued in %d ticks", sum.TotalRescued, sum.TotalDetected, s.tick),
			float64(s.tick))
	}
	return s.finished
}

// remaining counts unrescued victims. Caller holds the mutex.
func (s *Simulation) remaining() int {
	n := 0
	for _, v := range s.victims {
		if !v.rescued {
			n++
		}
	}
	return n
}

// RunTicks advances the simulation n ticks synchronously. Headless harness;
// the clock is not involved.
func (s *Simulation) RunTicks(n int) {
	for i := 0; i < n; i++ {
		s.Step()
	}
}

// RunUntil advances up to maxTicks, stopping early when predicate returns
// true. Returns the tick at which it was satisfied, or -1.
func (s *Simulation) RunUntil(predicate func(*Simulation) bool, maxTicks int) int {
	for i := 0; i < maxTicks; i++ {
		s.Step()
		if predicate(s) {
			s.mu.Lock()
			tick := s.tick
			s.mu.Unlock()
			return tick
		}
	}
	return -1
}

// Finished reports whether the run has terminated.
func (s *Simulation) Finished() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.finished
}

// Launched reports whether entities currently exist.
func (s *Simulation) Launched() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.launched
}

// Tick returns the current tick counter.
func (s *Simulation) Tick() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.tick
}
