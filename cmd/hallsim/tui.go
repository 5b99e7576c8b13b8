package main

import (
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/milk9111/hallways/ecs"
	"github.com/milk9111/hallways/ecs/component"
	"github.com/milk9111/hallways/ecs/entity"
	"github.com/milk9111/hallways/ecs/system"
	"github.com/milk9111/hallways/game"
)

const (
	tickRate   = 30
	stepMeters = 1.0
	turnStep   = 15.0
	doorMargin = 0.6
)

var (
	logStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#DDDDDD"))

	eventStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#FFA500")).
			Bold(true)

	helpStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#888888")).
			Italic(true)

	stateStyle = lipgloss.NewStyle().
			Border(lipgloss.NormalBorder(), false, false, false, true).
			BorderForeground(lipgloss.Color("#3C3C3C")).
			PaddingLeft(2).
			Foreground(lipgloss.Color("#AAAAAA"))

	titleStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#7FB3D5")).
			Bold(true).
			Underline(true)
)

type tickMsg time.Time

func tick() tea.Cmd {
	return tea.Tick(time.Second/tickRate, func(t time.Time) tea.Msg { return tickMsg(t) })
}

type model struct {
	game   *game.Game
	feed   *feed
	log    *[]string
	reveal bool

	forward float64
	strafe  float64

	viewport viewport.Model
	width    int
	height   int
	ready    bool
}

func newModel(g *game.Game, f *feed) model {
	lines := []string{eventStyle.Render("session " + g.Session.String())}
	return model{game: g, feed: f, log: &lines}
}

func (m model) Init() tea.Cmd {
	return tick()
}

func (m model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "ctrl+c", "esc", "q":
			return m, tea.Quit
		case "w", "up":
			m.forward += stepMeters
		case "s", "down":
			m.forward -= stepMeters
		case "a":
			m.strafe -= stepMeters / 2
		case "d":
			m.strafe += stepMeters / 2
		case "left":
			m.game.Walk(0, 0, -turnStep)
		case "right":
			m.game.Walk(0, 0, turnStep)
		case "g":
			m.forward = m.distanceToEnd()
		case "e", " ":
			if target, ok := m.game.Interact(); ok {
				m.say("you reach for the %s", nameOf(m.game.World, target))
			} else {
				m.say("nothing within reach")
			}
		case "l":
			m.useCurrent(func(h *component.Hallway) ecs.Entity { return h.Switch }, "light switch")
		case "o":
			m.useCurrent(func(h *component.Hallway) ecs.Entity { return h.EndDoor }, "far door")
		case "b":
			if st := m.game.Status(); st.Lift != 0 {
				if lift, ok := ecs.Get(m.game.World, st.Lift, component.LiftComponent.Kind()); ok {
					m.game.InteractWith(lift.Button)
					m.say("you press the lift button")
				}
			}
		case "x":
			m.reveal = !m.reveal
		case "r":
			m.restart()
		}

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		logWidth := int(float64(msg.Width) * 0.7)
		if !m.ready {
			m.viewport = viewport.New(logWidth, msg.Height-4)
			m.ready = true
		} else {
			m.viewport.Width = logWidth
			m.viewport.Height = msg.Height - 4
		}
		m.refresh()

	case tickMsg:
		m.step(1.0 / tickRate)
		return m, tick()
	}

	var cmd tea.Cmd
	m.viewport, cmd = m.viewport.Update(msg)
	return m, cmd
}

// step walks off the queued movement at the player's speed and advances the
// core by dt.
func (m *model) step(dt float64) {
	speed := 2.2
	if spec := m.game.PlayerSpec(); spec != nil && spec.MoveSpeed > 0 {
		speed = spec.MoveSpeed
	}
	budget := speed * dt
	fwd := clampStep(m.forward, budget)
	str := clampStep(m.strafe, budget)
	if fwd != 0 || str != 0 {
		before, _ := m.game.PlayerPose()
		m.game.Walk(fwd, str, 0)
		after, _ := m.game.PlayerPose()
		m.forward -= fwd
		m.strafe -= str
		// Blocked by a wall or a closed door.
		if after.Sub(before).Len() < budget/4 {
			m.forward, m.strafe = 0, 0
			m.say("something blocks the way")
		}
	}

	m.game.Update(dt)

	for _, evt := range m.game.Events() {
		switch evt.Type {
		case system.EventDirectorState:
			m.say("[director] %v", evt.Data)
		case system.EventLiftEntered:
			m.say("you step into the lift")
		}
	}
	for _, line := range m.feed.take() {
		m.append(logStyle.Render(line))
	}
	if m.feed.reload {
		m.feed.reload = false
		m.restart()
	}
	m.refresh()
}

func clampStep(want, budget float64) float64 {
	if math.Abs(want) <= budget {
		return want
	}
	return math.Copysign(budget, want)
}

func (m *model) useCurrent(pick func(*component.Hallway) ecs.Entity, label string) {
	st := m.game.Status()
	h, ok := ecs.Get(m.game.World, st.Current, component.HallwayComponent.Kind())
	if !ok {
		return
	}
	m.game.InteractWith(pick(h))
	m.say("you use the %s", label)
}

// distanceToEnd is how far the player must walk to stand at the current
// segment's far door.
func (m *model) distanceToEnd() float64 {
	st := m.game.Status()
	h, ok := ecs.Get(m.game.World, st.Current, component.HallwayComponent.Kind())
	if !ok {
		return 0
	}
	pos, _ := m.game.PlayerPose()
	local := entity.ToLocal(m.game.World, st.Current, pos)
	return math.Max(0, h.Length-doorMargin-local.Z)
}

func (m *model) restart() {
	if err := m.game.Reload(); err != nil {
		m.say("reload failed: %v", err)
		return
	}
	m.forward, m.strafe = 0, 0
	m.feed.take()
	m.append(eventStyle.Render("scene reloaded, session " + m.game.Session.String()))
}

func (m *model) say(format string, args ...any) {
	m.append(eventStyle.Render(fmt.Sprintf(format, args...)))
}

func (m *model) append(line string) {
	*m.log = append(*m.log, line)
}

func (m *model) refresh() {
	if !m.ready {
		return
	}
	m.viewport.SetContent(strings.Join(*m.log, "\n"))
	m.viewport.GotoBottom()
}

func (m model) View() string {
	if !m.ready {
		return "\n  Building hallways...\n"
	}
	help := helpStyle.Render("w/s walk  a/d strafe  ←/→ turn  g go to door  e use  l lights  o open door  b lift  x reveal  r restart  q quit")
	body := lipgloss.JoinHorizontal(lipgloss.Top, m.viewport.View(), m.renderState())
	return lipgloss.JoinVertical(lipgloss.Left, body, "\n"+help)
}

func (m model) renderState() string {
	w := m.game.World
	st := m.game.Status()

	var b strings.Builder
	b.WriteString(titleStyle.Render("DIRECTOR") + "\n")
	fmt.Fprintf(&b, "state: %s\nsegment: %d of %d\nprogress: %d\n", st.State, st.Index, st.Total-1, st.Progress)
	fmt.Fprintf(&b, "ambience: %s\npooled: %d\n\n", st.Ambience, st.Parked)

	b.WriteString(titleStyle.Render("HALLWAY") + "\n")
	if h, ok := ecs.Get(w, st.Current, component.HallwayComponent.Kind()); ok {
		fmt.Fprintf(&b, "lights: %s\n", onOff(h.LightsOn))
		if d, ok := ecs.Get(w, h.EndDoor, component.DoorComponent.Kind()); ok {
			fmt.Fprintf(&b, "far door: %s\n", d.State)
		}
		if m.reveal {
			fmt.Fprintf(&b, "anomaly: %t\n", h.HasAnomaly)
		}
		pos, _ := m.game.PlayerPose()
		local := entity.ToLocal(w, st.Current, pos)
		fmt.Fprintf(&b, "you: %.1fm in\n", local.Z)
		if st.InEntry {
			b.WriteString("(at the entrance)\n")
		}
	}
	if st.Lift != 0 {
		b.WriteString("\n" + titleStyle.Render("LIFT") + "\n")
		fmt.Fprintf(&b, "epilogue: %s\n", st.Epilogue)
	}

	width := int(float64(m.width) * 0.27)
	return stateStyle.Width(width).Height(m.viewport.Height).Render(b.String())
}

func nameOf(w *ecs.World, e ecs.Entity) string {
	if n, ok := ecs.Get(w, e, component.NameComponent.Kind()); ok && n.Value != "" {
		return strings.ReplaceAll(n.Value, "_", " ")
	}
	return "thing"
}

func onOff(on bool) string {
	if on {
		return "on"
	}
	return "off"
}

func run(segments int, seed int64) error {
	f := &feed{}
	g, err := game.New(game.Options{
		Segments:  segments,
		Seed:      seed,
		Audio:     textAudio{f: f},
		Presenter: textPresenter{f: f},
	})
	if err != nil {
		return err
	}
	p := tea.NewProgram(newModel(g, f), tea.WithAltScreen())
	_, err = p.Run()
	return err
}
