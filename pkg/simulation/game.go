package simulation

import (
	"context"
	"fmt"
	"image/color"
	"time"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/ebitenutil"
	"github.com/hajimehoshi/ebiten/v2/vector"
	"github.com/tochemey/goakt/v3/actor"
	"github.com/tochemey/goakt/v3/log"

	"github.com/lao-tseu-is-alive/go-flock-simulation/pkg/ui"
)

const panelWidth = 220

// whiteImage is the source texture of the fish triangles, tinted per vertex.
var whiteImage = ebiten.NewImage(3, 3)

func init() {
	whiteImage.Fill(color.White)
}

// Game is the top-down viewer. It never touches the flock: it sends ticks to
// the world actor and draws whatever snapshot came back last.
type Game struct {
	ctx        context.Context
	System     actor.ActorSystem
	worldPID   *actor.PID
	snapshotCh chan *WorldSnapshot
	lastState  *WorldSnapshot

	cfg      *Config
	view     viewport
	outlines []outline
	headings headings

	// UI Controls
	panel              *ui.Panel
	widgetPause        *ui.Checkbox
	widgetObstacles    *ui.Checkbox
	widgetPerception   *ui.Checkbox
	widgetTicksPerTick *ui.Slider
	resetRequested     bool

	// Timing instrumentation
	updateAvg float64 // Rolling average in ms
	drawAvg   float64 // Rolling average in ms
}

// NewGame builds the flock described by cfg, spawns the world actor owning it
// on system and wires the viewer to it.
func NewGame(ctx context.Context, cfg *Config, system actor.ActorSystem, logger log.Logger) (*Game, error) {
	f, reef, err := cfg.NewFlock(logger)
	if err != nil {
		return nil, err
	}

	// Buffer to avoid blocking
	snapshotCh := make(chan *WorldSnapshot, 10)
	worldPID, err := system.Spawn(ctx, "world", NewWorldActor(snapshotCh, f, cfg.Seed))
	if err != nil {
		return nil, fmt.Errorf("failed to spawn world: %w", err)
	}

	g := &Game{
		ctx:        ctx,
		System:     system,
		worldPID:   worldPID,
		snapshotCh: snapshotCh,
		lastState:  &WorldSnapshot{},
		cfg:        cfg,
		outlines:   outlines(reef),
	}

	w, h := float64(cfg.Viewer.ScreenWidth), float64(cfg.Viewer.ScreenHeight)
	g.view = newViewport(cfg.World, panelWidth+20, 10, w-panelWidth-30, h-20)

	g.buildPanel(h)

	return g, nil
}

// buildPanel lays out the controls, seeded from the viewer config.
func (g *Game) buildPanel(height float64) {
	panel := ui.NewPanel(10, 10, panelWidth, height-20, "Flock")
	panel.AddSection("Simulation")
	g.widgetPause = panel.AddCheckbox("Pause", false)
	g.widgetTicksPerTick = panel.AddSlider("Ticks/Frame", 1, MaxTicksPerFrame, float64(g.cfg.Viewer.TicksPerFrame))
	g.widgetTicksPerTick.Step = 1
	panel.AddButton("Reset", func() { g.resetRequested = true })
	panel.AddSection("Display")
	g.widgetObstacles = panel.AddCheckbox("Show Obstacles", g.cfg.Viewer.ShowObstacles)
	g.widgetPerception = panel.AddCheckbox("Show Perception", g.cfg.Viewer.ShowPerception)
	g.panel = panel
}

func (g *Game) Update() error {
	start := time.Now()
	defer func() {
		g.updateAvg = g.updateAvg*0.95 + float64(time.Since(start).Microseconds())/1000.0*0.05
	}()

	g.panel.Update(ui.PollInput())

	// keep only the freshest snapshot
Drain:
	for {
		select {
		case snap := <-g.snapshotCh:
			g.lastState = snap
		default:
			break Drain
		}
	}
	g.headings.update(g.lastState.Agents)

	if g.resetRequested {
		g.resetRequested = false
		if err := actor.Tell(g.ctx, g.worldPID, ResetMessage()); err != nil {
			return fmt.Errorf("failed to reset world: %w", err)
		}
	}
	if g.widgetPause.Value {
		return nil
	}

	tps := ebiten.TPS()
	if tps <= 0 {
		tps = ebiten.DefaultTPS
	}
	delta := time.Second / time.Duration(tps)
	for i := 0; i < int(g.widgetTicksPerTick.Value); i++ {
		if err := actor.Tell(g.ctx, g.worldPID, TickMessage(delta)); err != nil {
			return fmt.Errorf("failed to tick world: %w", err)
		}
	}
	return nil
}

func (g *Game) Draw(screen *ebiten.Image) {
	start := time.Now()
	defer func() {
		g.drawAvg = g.drawAvg*0.95 + float64(time.Since(start).Microseconds())/1000.0*0.05
	}()

	screen.Fill(color.RGBA{R: 5, G: 15, B: 35, A: 255})

	// water column border
	vector.StrokeRect(screen, float32(g.view.left), float32(g.view.top),
		float32(g.cfg.World.Width*g.view.scale), float32(g.cfg.World.Depth*g.view.scale),
		1, color.RGBA{R: 60, G: 90, B: 130, A: 255}, true)

	if g.widgetObstacles.Value {
		g.drawObstacles(screen)
	}
	g.drawFlock(screen)

	g.panel.Draw(screen)
	g.drawStats(screen)
}

func (g *Game) drawObstacles(screen *ebiten.Image) {
	rock := color.RGBA{R: 160, G: 120, B: 80, A: 255}
	pillar := color.RGBA{R: 200, G: 80, B: 160, A: 255}
	for _, o := range g.outlines {
		x, y, w, h := g.view.footprint(o.box)
		clr := rock
		if o.mesh {
			clr = pillar
		}
		vector.StrokeRect(screen, float32(x), float32(y), float32(w), float32(h), 1, clr, true)
	}
}

func (g *Game) drawFlock(screen *ebiten.Image) {
	agents := g.lastState.Agents
	if len(agents) == 0 {
		return
	}
	tuning := g.cfg.Tuning
	ceiling := g.cfg.World.Height / 2
	size := max(g.view.scale*0.8, 3)

	vertices := make([]ebiten.Vertex, 0, 3*len(agents))
	indices := make([]uint16, 0, 3*len(agents))
	for i, a := range agents {
		cx, cy := g.view.project(a.Position)
		if g.widgetPerception.Value {
			vector.StrokeCircle(screen, float32(cx), float32(cy), float32(tuning.PerceptionRadius*g.view.scale),
				1, color.RGBA{R: 80, G: 200, B: 120, A: 60}, true)
		}

		clr := depthShade(a.Position.Y, tuning.MinHeight, ceiling)
		r, gr, b := float32(clr.R)/255, float32(clr.G)/255, float32(clr.B)/255
		base := uint16(len(vertices))
		for _, p := range fishTriangle(cx, cy, g.headings[i], size) {
			vertices = append(vertices, ebiten.Vertex{
				DstX: float32(p[0]), DstY: float32(p[1]),
				SrcX: 1, SrcY: 1,
				ColorR: r, ColorG: gr, ColorB: b, ColorA: 1,
			})
		}
		indices = append(indices, base, base+1, base+2)

		// a single DrawTriangles call holds at most 65536 vertices
		if len(vertices) >= 65535-3 {
			screen.DrawTriangles(vertices, indices, whiteImage, &ebiten.DrawTrianglesOptions{})
			vertices, indices = vertices[:0], indices[:0]
		}
	}
	screen.DrawTriangles(vertices, indices, whiteImage, &ebiten.DrawTrianglesOptions{})
}

func (g *Game) drawStats(screen *ebiten.Image) {
	stats := g.lastState.Stats
	state := "running"
	if g.widgetPause.Value {
		state = "paused"
	}
	msg := fmt.Sprintf("FPS: %.2f\nTPS: %.2f\n\nTick: %d (%s)\nBoids: %d\nStep:   %s\nUpdate: %.2fms\nDraw:   %.2fms\nQuery failures: %d",
		ebiten.ActualFPS(),
		ebiten.ActualTPS(),
		g.lastState.Tick,
		state,
		len(g.lastState.Agents),
		stats.LastTickDuration,
		g.updateAvg,
		g.drawAvg,
		stats.QueryFailures)
	ebitenutil.DebugPrintAt(screen, msg, g.cfg.Viewer.ScreenWidth-190, 10)
}

func (g *Game) Layout(w, h int) (int, int) {
	return g.cfg.Viewer.ScreenWidth, g.cfg.Viewer.ScreenHeight
}
