// Package view is the interactive map surface: an Ebiten window showing the
// flood zone, region boundaries, victims and drones, with a scrolling event
// panel on the right. It drives the simulation frame-by-frame instead of
// through the wall clock, so pausing the window pauses the run.
package view

import (
	"fmt"
	"image/color"
	"sync"

	"github.com/atotto/clipboard"
	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/ebitenutil"
	"github.com/hajimehoshi/ebiten/v2/vector"
	"github.com/paulmach/orb"

	"github.com/perbrage/flood-rescue-swarm/internal/geometry"
	"github.com/perbrage/flood-rescue-swarm/internal/swarm"
)

const (
	// borderWidth is the pixel gap between the window edge and the map.
	borderWidth = 24

	// logPanelWidth is the fixed width of the event panel on the right.
	logPanelWidth = 340

	mapWidth  = 900
	mapHeight = 760

	// mapSpanFactor sizes the visible span relative to the flood diameter so
	// the working extent and a little margin fit on screen.
	mapSpanFactor = 1.7

	logLineHeight = 14
	framesPerSec  = 60
)

var teamColors = map[string]color.RGBA{
	"alpha":   {R: 60, G: 160, B: 255, A: 255},
	"bravo":   {R: 80, G: 220, B: 120, A: 255},
	"charlie": {R: 250, G: 180, B: 60, A: 255},
}

// View implements ebiten.Game and swarm.RenderSink. The sink callbacks keep
// a marker store the draw pass reads; the view never reaches into live
// simulation entities.
type View struct {
	sim *swarm.Simulation

	// Marker store, written by sink callbacks, read by Draw.
	mu       sync.Mutex
	center   orb.Point
	radius   float64
	hasFlood bool
	regions  map[string]orb.Polygon
	drones   map[string]swarm.DroneSnapshot
	victims  map[string]swarm.VictimSnapshot

	// Screen frame: geographic origin and pixels-per-meter scale.
	proj  geometry.Projection
	scale float64

	// Frame-driven ticking.
	running       bool
	tickAccum     float64
	ticksPerFrame float64

	prevKeys      map[ebiten.Key]bool
	prevMouseLeft bool
	status        string
}

// New builds the view and its simulation. The view registers itself as the
// render sink; guidance and events flow to the supplied sinks.
func New(cfg swarm.Config, opts ...swarm.Option) *View {
	v := &View{
		regions:  make(map[string]orb.Polygon),
		drones:   make(map[string]swarm.DroneSnapshot),
		victims:  make(map[string]swarm.VictimSnapshot),
		prevKeys: make(map[ebiten.Key]bool),
		status:   "click the map to set the flood center, then press L",
	}
	base := []swarm.Option{
		swarm.WithConfig(cfg),
		swarm.WithRenderSink(v),
	}
	v.sim = swarm.New(append(base, opts...)...)

	// Default frame before any flood zone exists, so clicks map to geo.
	if c := cfg.FloodCenter; c != nil {
		v.setFrame(c.Point(), cfg.FloodRadius)
	} else {
		v.setFrame(orb.Point{10.3883, 55.3959}, cfg.FloodRadius)
	}
	ticksPerSec := 1000.0 / float64(cfg.TickMillis)
	v.ticksPerFrame = ticksPerSec / framesPerSec
	return v
}

// Sim exposes the underlying simulation, for the command wiring.
func (v *View) Sim() *swarm.Simulation { return v.sim }

// setFrame anchors the screen projection on origin with a scale that fits
// mapSpanFactor flood diameters across the map area.
func (v *View) setFrame(origin orb.Point, radius float64) {
	v.proj = geometry.NewProjection(origin)
	span := 2 * radius * mapSpanFactor
	v.scale = float64(mapWidth) / span
}

// FloodZone implements swarm.RenderSink.
func (v *View) FloodZone(center orb.Point, radius float64) {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.center = center
	v.radius = radius
	v.hasFlood = true
	v.setFrame(center, radius)
}

// RegionAssigned implements swarm.RenderSink.
func (v *View) RegionAssigned(droneID string, region orb.Polygon) {
	v.mu.Lock()
	defer v.mu.Unlock()
	if region == nil {
		delete(v.regions, droneID)
		return
	}
	v.regions[droneID] = region
}

// DroneMoved implements swarm.RenderSink.
func (v *View) DroneMoved(d swarm.DroneSnapshot) {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.drones[d.ID] = d
}

// VictimUpdated implements swarm.RenderSink.
func (v *View) VictimUpdated(s swarm.VictimSnapshot) {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.victims[s.ID] = s
}

// Clear implements swarm.RenderSink: a reset or relaunch dropped all
// entities.
func (v *View) Clear() {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.regions = make(map[string]orb.Polygon)
	v.drones = make(map[string]swarm.DroneSnapshot)
	v.victims = make(map[string]swarm.VictimSnapshot)
	v.hasFlood = false
}

// toScreen maps a geographic point to map-area pixels. North is up.
func (v *View) toScreen(p orb.Point) (float32, float32) {
	x, y := v.proj.ToLocal(p)
	sx := float32(borderWidth + mapWidth/2 + int(x*v.scale))
	sy := float32(borderWidth + mapHeight/2 - int(y*v.scale))
	return sx, sy
}

// toGeo maps a screen pixel back to a geographic point.
func (v *View) toGeo(sx, sy int) orb.Point {
	x := float64(sx-borderWidth-mapWidth/2) / v.scale
	y := float64(borderWidth+mapHeight/2-sy) / v.scale
	return v.proj.FromLocal(x, y)
}

func (v *View) Update() error {
	v.handleInput()
	if !v.running {
		return nil
	}
	v.tickAccum += v.ticksPerFrame
	for v.tickAccum >= 1.0 {
		v.tickAccum -= 1.0
		if v.sim.Step() {
			v.running = false
			v.status = "run complete. C copies the report, R resets"
			break
		}
	}
	return nil
}

// handleInput processes edge-triggered keys and the map click.
func (v *View) handleInput() {
	keys := map[ebiten.Key]bool{}
	pressed := func(k ebiten.Key) bool {
		keys[k] = ebiten.IsKeyPressed(k)
		return keys[k] && !v.prevKeys[k]
	}

	if pressed(ebiten.KeyL) {
		if err := v.sim.Launch(); err != nil {
			v.status = err.Error()
		} else {
			v.running = true
			v.status = "launched"
		}
	}
	if pressed(ebiten.KeySpace) && v.sim.Launched() && !v.sim.Finished() {
		v.running = !v.running
		if v.running {
			v.status = "resumed"
		} else {
			v.status = "paused"
		}
	}
	if pressed(ebiten.KeyR) {
		v.sim.Reset()
		v.running = false
		v.status = "reset. click the map to set the flood center"
	}
	if pressed(ebiten.KeyC) {
		report := v.sim.Summary().FormatReport()
		if err := clipboard.WriteAll(report); err != nil {
			v.status = "clipboard: " + err.Error()
		} else {
			v.status = "report copied to clipboard"
		}
	}
	v.prevKeys = keys

	// Left click inside the map area sets the flood centre pre-launch.
	left := ebiten.IsMouseButtonPressed(ebiten.MouseButtonLeft)
	if left && !v.prevMouseLeft {
		mx, my := ebiten.CursorPosition()
		if mx >= borderWidth && mx < borderWidth+mapWidth &&
			my >= borderWidth && my < borderWidth+mapHeight {
			if v.sim.Launched() {
				v.status = "flood center is fixed while a run is active"
			} else {
				p := v.toGeo(mx, my)
				v.sim.SetFloodCenter(p)
				v.mu.Lock()
				v.center = p
				v.radius = v.sim.Config().FloodRadius
				v.hasFlood = true
				v.setFrame(p, v.radius)
				v.mu.Unlock()
				v.status = fmt.Sprintf("flood center set to %.4f, %.4f. press L to launch", p.Lat(), p.Lon())
			}
		}
	}
	v.prevMouseLeft = left
}

func (v *View) Draw(screen *ebiten.Image) {
	screen.Fill(color.RGBA{R: 16, G: 20, B: 28, A: 255})
	vector.DrawFilledRect(screen, borderWidth, borderWidth, mapWidth, mapHeight,
		color.RGBA{R: 24, G: 32, B: 44, A: 255}, false)

	v.mu.Lock()

	if v.hasFlood {
		cx, cy := v.toScreen(v.center)
		r := float32(v.radius * v.scale)
		vector.DrawFilledCircle(screen, cx, cy, r, color.RGBA{R: 40, G: 70, B: 140, A: 90}, true)
		vector.StrokeCircle(screen, cx, cy, r, 2, color.RGBA{R: 90, G: 140, B: 230, A: 220}, true)
	}

	for droneID, region := range v.regions {
		col := color.RGBA{R: 120, G: 120, B: 140, A: 180}
		if d, ok := v.drones[droneID]; ok {
			col = teamColors[d.Team]
			col.A = 150
		}
		for _, ring := range region {
			for i := 1; i < len(ring); i++ {
				x0, y0 := v.toScreen(ring[i-1])
				x1, y1 := v.toScreen(ring[i])
				vector.StrokeLine(screen, x0, y0, x1, y1, 1, col, true)
			}
		}
	}

	for _, s := range v.victims {
		x, y := v.toScreen(s.Pos)
		if s.Rescued {
			vector.DrawFilledCircle(screen, x, y, 3, color.RGBA{R: 90, G: 100, B: 90, A: 200}, true)
		} else {
			vector.DrawFilledCircle(screen, x, y, 4, color.RGBA{R: 235, G: 70, B: 70, A: 255}, true)
			vector.StrokeCircle(screen, x, y, 7, 1, color.RGBA{R: 235, G: 70, B: 70, A: 140}, true)
		}
	}

	for _, d := range v.drones {
		x, y := v.toScreen(d.Pos)
		col := teamColors[d.Team]
		vector.DrawFilledCircle(screen, x, y, 6, col, true)
		vector.StrokeCircle(screen, x, y, 9, 1, color.RGBA{R: 255, G: 255, B: 255, A: 90}, true)
		ebitenutil.DebugPrintAt(screen, d.Label, int(x)-7, int(y)+10)
	}

	droneCount := len(v.drones)
	v.mu.Unlock()

	// HUD and panel read the simulation directly; the marker lock must be
	// released first to keep lock order consistent with the sink callbacks.
	v.drawHUD(screen, droneCount)
	v.drawLogPanel(screen)
}

func (v *View) drawHUD(screen *ebiten.Image, droneCount int) {
	sum := v.sim.Summary()
	hud := fmt.Sprintf("T=%04d  rescued %d/%d  drones %d", sum.Ticks,
		sum.TotalRescued, sum.TotalDetected, droneCount)
	if v.running {
		hud += "  [running]"
	} else if v.sim.Finished() {
		hud += "  [complete]"
	} else {
		hud += "  [idle]"
	}
	ebitenutil.DebugPrintAt(screen, hud, borderWidth+6, borderWidth+6)
	ebitenutil.DebugPrintAt(screen, v.status, borderWidth+6, borderWidth+22)
	ebitenutil.DebugPrintAt(screen, "L launch  Space pause  R reset  C copy report",
		borderWidth+6, borderWidth+mapHeight-18)
}

func (v *View) drawLogPanel(screen *ebiten.Image) {
	panelX := borderWidth + mapWidth + borderWidth
	vector.DrawFilledRect(screen, float32(panelX), 0, logPanelWidth,
		float32(borderWidth+mapHeight+borderWidth), color.RGBA{R: 10, G: 12, B: 14, A: 248}, false)
	ebitenutil.DebugPrintAt(screen, "EVENTS", panelX+8, 4)

	maxLines := (mapHeight + borderWidth) / logLineHeight
	entries := v.sim.Log().Tail(maxLines)
	y := 20
	for _, e := range entries {
		line := fmt.Sprintf("T%04d %s %s/%s %s", e.Tick, e.Actor, e.Category, e.Key, e.Value)
		if len(line) > 52 {
			line = line[:52]
		}
		ebitenutil.DebugPrintAt(screen, line, panelX+8, y)
		y += logLineHeight
	}
}

func (v *View) Layout(_, _ int) (int, int) {
	return borderWidth + mapWidth + borderWidth + logPanelWidth, borderWidth + mapHeight + borderWidth
}
