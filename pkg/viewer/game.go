// Package viewer draws the flock over its terrain with ebiten and lets the
// user tune the flocking parameters while the world actor runs.
package viewer

import (
	"context"
	"fmt"
	"image/color"
	"time"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/ebitenutil"
	"github.com/hajimehoshi/ebiten/v2/inpututil"
	"github.com/hajimehoshi/ebiten/v2/vector"
	"github.com/lao-tseu-is-alive/go-flock-terrain/pkg/simulation"
	"github.com/lao-tseu-is-alive/go-flock-terrain/pkg/terrain"
	"github.com/lao-tseu-is-alive/go-flock-terrain/pkg/ui"
	"github.com/tochemey/goakt/v3/actor"
)

const (
	ScreenWidth  = 1280
	ScreenHeight = 800
	panelWidth   = 270
	orbitSpeed   = 0.01
)

var (
	whiteImage = ebiten.NewImage(3, 3)
	skyColor   = color.RGBA{R: 25, G: 30, B: 45, A: 255}
)

func init() {
	whiteImage.Fill(color.White)
}

type Game struct {
	ctx        context.Context
	System     actor.ActorSystem
	worldPID   *actor.PID
	snapshotCh chan *simulation.Snapshot
	lastState  *simulation.Snapshot

	field  *terrain.HeightField
	shades []float64
	camera *Camera

	params simulation.Params
	frame  uint64
	step   bool // one tick requested while paused

	// UI Controls
	panel *ui.Panel

	widgetAvoidRadius    *ui.Slider
	widgetAvoidForce     *ui.Slider
	widgetAlignRadius    *ui.Slider
	widgetAlignForce     *ui.Slider
	widgetCohesionRadius *ui.Slider
	widgetCohesionForce  *ui.Slider
	widgetDeltaTime      *ui.Slider
	widgetBounceForce    *ui.Slider
	widgetMinSpeed       *ui.Slider
	widgetMaxSpeed       *ui.Slider
	widgetPause          *ui.Checkbox
	widgetWireframe      *ui.Checkbox
	widgetBounds         *ui.Checkbox

	dragging               bool
	lastMouseX, lastMouseY int

	// Timing instrumentation
	updateAvg float64 // Rolling average in ms
	drawAvg   float64 // Rolling average in ms
}

// NewGame spawns the world actor around flock and builds the window state.
// The flock is owned by the actor from now on; the game only sees snapshots.
func NewGame(ctx context.Context, system actor.ActorSystem, flock *simulation.Flock, field *terrain.HeightField) (*Game, error) {
	// 1. Create Channels for communication
	snapshotCh := make(chan *simulation.Snapshot, 4)

	// 2. Spawn World Actor
	params := *flock.Params()
	worldPID, err := system.Spawn(ctx, "world", simulation.NewWorldActor(flock, snapshotCh))
	if err != nil {
		return nil, fmt.Errorf("failed to spawn world: %w", err)
	}

	g := &Game{
		ctx:        ctx,
		System:     system,
		worldPID:   worldPID,
		snapshotCh: snapshotCh,
		field:      field,
		shades:     field.TriangleShades(),
		camera:     NewCamera(),
		params:     params,
	}
	g.buildPanel()
	return g, nil
}

func (g *Game) buildPanel() {
	p := g.params
	panel := ui.NewPanel("Flock parameters", 10, 10, panelWidth, ScreenHeight-20)

	panel.AddSection("Avoidance")
	g.widgetAvoidRadius = panel.AddSlider("Avoid Radius", 0, 5, p.AvoidRadius)
	g.widgetAvoidForce = panel.AddSlider("Avoid Force", 0, 10, p.AvoidForce)

	panel.AddSection("Alignment")
	g.widgetAlignRadius = panel.AddSlider("Align Radius", 0, 5, p.AlignRadius)
	g.widgetAlignForce = panel.AddSlider("Align Force", 0, 5, p.AlignForce)

	panel.AddSection("Cohesion")
	g.widgetCohesionRadius = panel.AddSlider("Cohesion Radius", 0, 5, p.CohesionRadius)
	g.widgetCohesionForce = panel.AddSlider("Cohesion Force", 0, 5, p.CohesionForce)

	panel.AddSection("Physics")
	g.widgetDeltaTime = panel.AddSlider("Delta Time", 0.001, 0.2, p.DeltaTime)
	g.widgetBounceForce = panel.AddSlider("Bounce Force", 0, 10, p.BounceForce)
	g.widgetMinSpeed = panel.AddSlider("Min Speed", 0.01, 2, p.MinSpeed)
	g.widgetMaxSpeed = panel.AddSlider("Max Speed", 0.1, 10, p.MaxSpeed)

	panel.AddSection("View")
	g.widgetPause = panel.AddCheckbox("Pause (space)", false)
	g.widgetWireframe = panel.AddCheckbox("Wireframe (w)", false)
	g.widgetBounds = panel.AddCheckbox("Show bounds (b)", true)
	panel.AddButton("Step once", func() { g.step = true })

	g.panel = panel
}

// paramsFromWidgets copies the slider values over the current parameters.
func (g *Game) paramsFromWidgets() {
	g.params.AvoidRadius = g.widgetAvoidRadius.Value
	g.params.AvoidForce = g.widgetAvoidForce.Value
	g.params.AlignRadius = g.widgetAlignRadius.Value
	g.params.AlignForce = g.widgetAlignForce.Value
	g.params.CohesionRadius = g.widgetCohesionRadius.Value
	g.params.CohesionForce = g.widgetCohesionForce.Value
	g.params.DeltaTime = g.widgetDeltaTime.Value
	g.params.BounceForce = g.widgetBounceForce.Value
	g.params.MinSpeed = g.widgetMinSpeed.Value
	g.params.MaxSpeed = g.widgetMaxSpeed.Value
}

func (g *Game) Update() error {
	start := time.Now()
	defer func() {
		// Rolling average (exponential moving average)
		g.updateAvg = g.updateAvg*0.95 + float64(time.Since(start).Microseconds())/1000.0*0.05
	}()

	// 1. Input: panel first, the rest of the window drives the camera
	g.handleKeys()
	ptr := ui.CurrentPointer()
	overPanel := g.panel.Contains(ptr.X, ptr.Y)
	if _, dy := ebiten.Wheel(); dy != 0 {
		if overPanel {
			g.panel.Scroll(dy)
		} else {
			g.camera.Zoom(dy)
		}
	}
	if g.panel.HandlePointer(ptr) {
		g.paramsFromWidgets()
		if err := g.sendParams(); err != nil {
			return err
		}
	}
	g.handleOrbit(overPanel)

	// 2. Retrieve Latest State (Non-blocking), keeping only the newest
	for drained := false; !drained; {
		select {
		case snap := <-g.snapshotCh:
			g.lastState = snap
		default:
			drained = true
		}
	}

	// 3. Trigger Simulation Step
	if g.widgetPause.Value && !g.step {
		return nil
	}
	g.step = false
	g.frame++
	if err := actor.Tell(g.ctx, g.worldPID, simulation.NewTick(g.frame)); err != nil {
		return fmt.Errorf("failed to tick world: %w", err)
	}
	return nil
}

func (g *Game) sendParams() error {
	msg, err := simulation.ParamsToProto(g.params)
	if err != nil {
		return err
	}
	if err := actor.Tell(g.ctx, g.worldPID, msg); err != nil {
		return fmt.Errorf("failed to update world params: %w", err)
	}
	return nil
}

func (g *Game) handleKeys() {
	if inpututil.IsKeyJustPressed(ebiten.KeySpace) {
		g.widgetPause.Value = !g.widgetPause.Value
	}
	if inpututil.IsKeyJustPressed(ebiten.KeyW) {
		g.widgetWireframe.Value = !g.widgetWireframe.Value
	}
	if inpututil.IsKeyJustPressed(ebiten.KeyB) {
		g.widgetBounds.Value = !g.widgetBounds.Value
	}
	if inpututil.IsKeyJustPressed(ebiten.KeyPeriod) {
		g.step = true
	}
	if ebiten.IsKeyPressed(ebiten.KeyArrowLeft) {
		g.camera.Orbit(-0.03, 0)
	}
	if ebiten.IsKeyPressed(ebiten.KeyArrowRight) {
		g.camera.Orbit(0.03, 0)
	}
	if ebiten.IsKeyPressed(ebiten.KeyArrowUp) {
		g.camera.Orbit(0, 0.02)
	}
	if ebiten.IsKeyPressed(ebiten.KeyArrowDown) {
		g.camera.Orbit(0, -0.02)
	}
}

// handleOrbit rotates the camera while the left button drags outside the panel.
func (g *Game) handleOrbit(overPanel bool) {
	mx, my := ebiten.CursorPosition()
	if inpututil.IsMouseButtonJustPressed(ebiten.MouseButtonLeft) {
		g.dragging = !overPanel
	}
	if !ebiten.IsMouseButtonPressed(ebiten.MouseButtonLeft) {
		g.dragging = false
	}
	if g.dragging {
		g.camera.Orbit(float64(g.lastMouseX-mx)*orbitSpeed, float64(my-g.lastMouseY)*orbitSpeed)
	}
	g.lastMouseX, g.lastMouseY = mx, my
}

func (g *Game) Draw(screen *ebiten.Image) {
	start := time.Now()
	defer func() {
		g.drawAvg = g.drawAvg*0.95 + float64(time.Since(start).Microseconds())/1000.0*0.05
	}()

	screen.Fill(skyColor)
	w, h := screen.Bounds().Dx(), screen.Bounds().Dy()
	pr := g.camera.Projector(w, h)

	// 1. Terrain
	if g.widgetWireframe.Value {
		for _, s := range GridSegments(g.field, g.field.Resolution()/40, pr) {
			vector.StrokeLine(screen, s.X0, s.Y0, s.X1, s.Y1, 1, gridColor, false)
		}
	} else {
		for _, b := range TerrainBatches(g.field, g.shades, pr) {
			screen.DrawTriangles(b.Vertices, b.Indices, whiteImage, &ebiten.DrawTrianglesOptions{})
		}
	}

	// 2. Containment cube and boids from the last known snapshot
	if g.lastState != nil {
		if g.widgetBounds.Value {
			for _, s := range BoxSegments(g.lastState.Params.BoundMin, g.lastState.Params.BoundMax, pr) {
				vector.StrokeLine(screen, s.X0, s.Y0, s.X1, s.Y1, 1, boxColor, true)
			}
		}
		b := BoidBatch(g.lastState, pr)
		screen.DrawTriangles(b.Vertices, b.Indices, whiteImage, &ebiten.DrawTrianglesOptions{})
	}

	// 3. Draw UI Panel
	g.panel.Draw(screen)

	// 4. Stats, right side to avoid overlap with the panel
	ebitenutil.DebugPrintAt(screen, g.stats(), w-210, 10)
}

func (g *Game) stats() string {
	msg := fmt.Sprintf("FPS: %.2f\nTPS: %.2f\n\nUpdate: %.2fms\nDraw:   %.2fms\n",
		ebiten.ActualFPS(),
		ebiten.ActualTPS(),
		g.updateAvg,
		g.drawAvg)
	if s := g.lastState; s != nil {
		msg += fmt.Sprintf("\nFrame:  %d\nBoids:  %d\nSpeed:  %.3f\nFaults: %d\nReject: %d",
			s.Frame, len(s.Boids), s.MeanSpeed, s.Faults, s.Rejected)
	}
	return msg
}

func (g *Game) Layout(w, h int) (int, int) { return ScreenWidth, ScreenHeight }
