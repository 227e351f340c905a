package viz

import (
	"fmt"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/guptarohit/asciigraph"

	"github.com/kvistgaard/tribody/internal/orbit"
	"github.com/kvistgaard/tribody/internal/playback"
)

const (
	canvasWidth  = 64
	canvasHeight = 28
	sparkWindow  = 240
	maxSpeed     = 64
)

type TickMsg time.Time

// Player is a Bubble Tea model that replays a recorded trajectory,
// bouncing the playhead between the first and last frame.
type Player struct {
	title    string
	cursor   *playback.Cursor
	renderer *Renderer
	energies []float64
	running  bool
	trails   bool
	speed    int
	showHelp bool
}

// NewPlayer builds a player over a finished run. h may be nil when no
// energy readout is wanted.
func NewPlayer(title string, tr *orbit.Trajectory, h orbit.Hamiltonian) (Player, error) {
	cur, err := playback.New(tr)
	if err != nil {
		return Player{}, err
	}

	var energies []float64
	if h != nil {
		energies = make([]float64, tr.Len())
		for i := 0; i < tr.Len(); i++ {
			energies[i] = h.Energy(tr.At(i).Bodies)
		}
	}

	p := Player{
		title:    title,
		cursor:   cur,
		renderer: NewRenderer(tr, canvasWidth, canvasHeight),
		energies: energies,
		running:  true,
		trails:   true,
		speed:    1,
	}
	p.renderer.Push(cur.Frame())
	return p, nil
}

func (p Player) Init() tea.Cmd {
	return tea.Tick(time.Second/60, func(t time.Time) tea.Msg { return TickMsg(t) })
}

// Update handles input events and advances the playhead on ticks.
func (p Player) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c":
			return p, tea.Quit
		case " ":
			p.running = !p.running
		case "r":
			p.cursor.Reset()
			p.renderer.ClearTrails()
			p.renderer.Push(p.cursor.Frame())
		case "[":
			p.running = false
			p.cursor.Seek(p.cursor.Index() - 1)
			p.renderer.Push(p.cursor.Frame())
		case "]":
			p.running = false
			p.cursor.Seek(p.cursor.Index() + 1)
			p.renderer.Push(p.cursor.Frame())
		case "+", "=":
			if p.speed < maxSpeed {
				p.speed *= 2
			}
		case "-", "_":
			if p.speed > 1 {
				p.speed /= 2
			}
		case "t":
			p.trails = !p.trails
			if !p.trails {
				p.renderer.ClearTrails()
				p.renderer.Push(p.cursor.Frame())
			}
		case "?":
			p.showHelp = !p.showHelp
		}
	case TickMsg:
		if p.running {
			for i := 0; i < p.speed; i++ {
				p.cursor.Advance()
				p.renderer.Push(p.cursor.Frame())
			}
		}
		return p, tea.Tick(time.Second/60, func(t time.Time) tea.Msg { return TickMsg(t) })
	}
	return p, nil
}

// View renders the canvas beside the stats panel.
func (p Player) View() string {
	f := p.cursor.Frame()
	canvasView := canvasStyle.Render(p.renderer.Render(f, p.trails))

	var s strings.Builder
	s.WriteString(headerStyle.Render(strings.ToUpper(p.title)) + "\n")

	status := statusPlaying.Render("PLAYING " + p.directionArrow())
	if !p.running {
		status = statusPaused.Render("PAUSED")
	}
	s.WriteString(status + "\n\n")

	if len(p.energies) > 1 {
		lo := p.cursor.Index() - sparkWindow
		if lo < 0 {
			lo = 0
		}
		window := p.energies[lo : p.cursor.Index()+1]
		if len(window) > 1 {
			chart := asciigraph.Plot(window, asciigraph.Height(4), asciigraph.Width(30), asciigraph.Caption("Energy"))
			s.WriteString(graphStyle.Render(chart) + "\n\n")
		}
	}

	s.WriteString(labelStyle.Render("Frame") + valueStyle.Render(fmt.Sprintf("%d / %d", p.cursor.Index(), p.cursor.Len()-1)) + "\n")
	s.WriteString(labelStyle.Render("Time") + valueStyle.Render(fmt.Sprintf("%.3fs", f.Time)) + "\n")
	s.WriteString(labelStyle.Render("Speed") + valueStyle.Render(fmt.Sprintf("%dx", p.speed)) + "\n")
	if len(p.energies) > 0 {
		s.WriteString(labelStyle.Render("Energy") + valueStyle.Render(fmt.Sprintf("%.6g", p.energies[p.cursor.Index()])) + "\n")
	}

	s.WriteString("\n")
	for i, b := range f.Bodies {
		s.WriteString(bodyStyles[i].Render("●") + " " + valueStyle.Render(fmt.Sprintf("m=%-8.4g (%7.3f, %7.3f)", b.Mass, b.Pos.X, b.Pos.Y)) + "\n")
	}

	progress := 0.0
	if n := p.cursor.Len(); n > 1 {
		progress = float64(p.cursor.Index()) / float64(n-1)
	}
	s.WriteString("\n" + ProgressBar(progress, 32) + "\n")
	s.WriteString(helpStyle.Render("SP:Pause R:Restart Q:Quit\nT:Trails +/-:Speed [ ]:Scrub ?:Help"))

	statsView := statsStyle.Render(s.String())
	mainView := lipgloss.JoinHorizontal(lipgloss.Top, canvasView, statsView)
	if p.showHelp {
		return helpOverlay + "\n\n" + mainView
	}
	return mainView
}

func (p Player) directionArrow() string {
	if p.cursor.Direction() == playback.Forward {
		return "▶"
	}
	return "◀"
}

const helpOverlay = `
╔══════════════════════════════════════╗
║          KEYBOARD SHORTCUTS          ║
╠══════════════════════════════════════╣
║  Space    - Pause/Resume playback    ║
║  [        - Scrub one frame back     ║
║  ]        - Scrub one frame forward  ║
║  + / -    - Faster / slower          ║
║  T        - Toggle orbit trails      ║
║  R        - Restart from frame zero  ║
║  ?        - Toggle this help         ║
║  Q        - Quit                     ║
╚══════════════════════════════════════╝`

// Run plays the trajectory in the alternate screen until the user
// quits.
func Run(title string, tr *orbit.Trajectory, h orbit.Hamiltonian) error {
	p, err := NewPlayer(title, tr, h)
	if err != nil {
		return err
	}
	_, err = tea.NewProgram(p, tea.WithAltScreen()).Run()
	return err
}
