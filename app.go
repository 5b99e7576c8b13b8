package main

import (
	"fmt"
	"log"

	"github.com/ebitenui/ebitenui"
	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/ebitenutil"
	"github.com/hajimehoshi/ebiten/v2/inpututil"
	"github.com/milk9111/hallways/ecs"
	"github.com/milk9111/hallways/ecs/system"
	"github.com/milk9111/hallways/game"
	"github.com/milk9111/hallways/prefabs"
)

const (
	baseWidth   = 1280
	baseHeight  = 720
	tickSeconds = 1.0 / 60.0
)

type AppOptions struct {
	Debug    bool
	Segments int
	Seed     int64
	Watch    bool
}

// App is the ebiten host around the hallway core.
type App struct {
	game      *game.Game
	audio     *desktopAudio
	presenter *presenter
	pauseUI   *ebitenui.UI
	watcher   *prefabs.Watcher

	paused  bool
	quit    bool
	debug   bool
	dirty   []string
	message string
	msgTTL  float64
}

func NewApp(opts AppOptions) (*App, error) {
	a := &App{debug: opts.Debug, presenter: newPresenter()}

	a.audio = newDesktopAudio()
	g, err := game.New(game.Options{
		Segments:  opts.Segments,
		Seed:      opts.Seed,
		Audio:     a.audio,
		Presenter: a.presenter,
	})
	if err != nil {
		return nil, err
	}
	a.game = g
	a.audio.listener = func() (x, z float64) {
		pos, _ := g.PlayerPose()
		return pos.X, pos.Z
	}
	a.audio.LoadBank(g.Director.Pool.Spec())

	if opts.Watch {
		w, err := prefabs.NewWatcher()
		if err != nil {
			log.Printf("watch: disabled: %v", err)
		} else {
			a.watcher = w
		}
	}

	a.pauseUI = NewPauseUI(a)
	return a, nil
}

func (a *App) Close() {
	if a.watcher != nil {
		_ = a.watcher.Close()
	}
	a.audio.Close()
}

func (a *App) Update() error {
	if a.quit {
		return ebiten.Termination
	}

	a.drainWatcher()

	if inpututil.IsKeyJustPressed(ebiten.KeyEscape) {
		a.paused = !a.paused
	}
	if a.paused {
		a.pauseUI.Update()
		return nil
	}
	if inpututil.IsKeyJustPressed(ebiten.KeyF1) {
		a.debug = !a.debug
	}
	if inpututil.IsKeyJustPressed(ebiten.KeyF5) {
		a.restart()
	}

	if a.presenter.takeReload() {
		a.restart()
		return nil
	}

	if !a.presenter.blocking() {
		a.handleMovement()
		if inpututil.IsKeyJustPressed(ebiten.KeyE) || inpututil.IsKeyJustPressed(ebiten.KeySpace) {
			if _, ok := a.game.Interact(); !ok && a.debug {
				a.say("nothing to use")
			}
		}
	}

	a.game.Update(tickSeconds)
	a.presenter.Update(tickSeconds)
	a.audio.Update()

	for _, evt := range a.game.Events() {
		switch evt.Type {
		case system.EventDoorLocked:
			a.say("locked")
		case system.EventDirectorState:
			if a.debug {
				a.say(fmt.Sprintf("director: %v", evt.Data))
			}
		case system.EventLiftEntered:
			if a.debug {
				a.say("in the lift")
			}
		}
	}
	if a.msgTTL > 0 {
		a.msgTTL -= tickSeconds
	}
	return nil
}

func (a *App) handleMovement() {
	spec := a.game.PlayerSpec()
	speed, turnSpeed := 2.2, 120.0
	if spec != nil {
		if spec.MoveSpeed > 0 {
			speed = spec.MoveSpeed
		}
		if spec.TurnSpeed > 0 {
			turnSpeed = spec.TurnSpeed
		}
	}

	var forward, strafe, turn float64
	if ebiten.IsKeyPressed(ebiten.KeyW) || ebiten.IsKeyPressed(ebiten.KeyArrowUp) {
		forward += speed * tickSeconds
	}
	if ebiten.IsKeyPressed(ebiten.KeyS) || ebiten.IsKeyPressed(ebiten.KeyArrowDown) {
		forward -= speed * tickSeconds
	}
	if ebiten.IsKeyPressed(ebiten.KeyD) {
		strafe += speed * tickSeconds
	}
	if ebiten.IsKeyPressed(ebiten.KeyA) {
		strafe -= speed * tickSeconds
	}
	if ebiten.IsKeyPressed(ebiten.KeyArrowRight) {
		turn += turnSpeed * tickSeconds
	}
	if ebiten.IsKeyPressed(ebiten.KeyArrowLeft) {
		turn -= turnSpeed * tickSeconds
	}
	if forward != 0 || strafe != 0 || turn != 0 {
		a.game.Walk(forward, strafe, turn)
	}
}

func (a *App) restart() {
	a.audio.StopAll()
	if err := a.game.Reload(); err != nil {
		log.Printf("reload: %v", err)
		a.say("reload failed, see log")
		return
	}
	a.presenter.Reset()
	a.audio.LoadBank(a.game.Director.Pool.Spec())
	a.dirty = nil
	a.paused = false
}

func (a *App) drainWatcher() {
	if a.watcher == nil {
		return
	}
	for {
		select {
		case name, ok := <-a.watcher.Events:
			if !ok {
				a.watcher = nil
				return
			}
			log.Printf("watch: %s changed, press F5 to reload", name)
			a.dirty = append(a.dirty, name)
			a.say(name + " changed (F5 reloads)")
		case err, ok := <-a.watcher.Errors:
			if ok {
				log.Printf("watch: %v", err)
			}
		default:
			return
		}
	}
}

func (a *App) say(msg string) {
	a.message = msg
	a.msgTTL = 2
}

func (a *App) Draw(screen *ebiten.Image) {
	drawWorld(screen, a.game)
	a.presenter.Draw(screen)

	if a.debug {
		st := a.game.Status()
		ebitenutil.DebugPrint(screen, fmt.Sprintf(
			"FPS %.0f  session %s\nstate %s  segment %d/%d  progress %d  lights %t\nentities %d",
			ebiten.ActualFPS(), st.Session[:8], st.State, st.Index, st.Total-1, st.Progress, st.LightsOn,
			len(ecs.Entities(a.game.World)),
		))
	}
	if a.msgTTL > 0 && a.message != "" {
		drawCenteredText(screen, a.message, baseHeight-60)
	}
	if a.paused {
		a.pauseUI.Draw(screen)
	}
}

func (a *App) LayoutF(outsideWidth, outsideHeight float64) (float64, float64) {
	return baseWidth, baseHeight
}

func (a *App) Layout(outsideWidth, outsideHeight int) (int, int) {
	panic("shouldn't use Layout")
}
