package tui

import (
	"fmt"
	"sort"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/progress"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/custodia-labs/repotree/internal/adapters/driving/tui/keymap"
	"github.com/custodia-labs/repotree/internal/adapters/driving/tui/messages"
	"github.com/custodia-labs/repotree/internal/adapters/driving/tui/styles"
	"github.com/custodia-labs/repotree/internal/core/domain"
)

// maxRunning is the number of in-flight actions listed under the sync bar.
const maxRunning = 5

// App is the progress display following the Elm architecture.
// It implements tea.Model for use with Bubbletea.
type App struct {
	styles *styles.Styles
	keys   *keymap.KeyMap

	discoveryBar progress.Model
	syncBar      progress.Model

	discovered    int
	discoveryEst  int
	syncTotal     int
	syncDone      int
	failed        int
	running       map[string]struct{}
	lastFailure   string
	interrupt     func()
	interrupted   bool
	done          bool
	width         int
	syncAnnounced bool
}

// Ensure App implements tea.Model.
var _ tea.Model = (*App)(nil)

// NewApp creates the progress model. interrupt is called once when the user
// presses the cancel key and may be nil.
func NewApp(s *styles.Styles, interrupt func()) *App {
	if s == nil {
		s = styles.DefaultStyles()
	}
	return &App{
		styles:       s,
		keys:         keymap.DefaultKeyMap(),
		discoveryBar: progress.New(progress.WithDefaultGradient(), progress.WithWidth(40)),
		syncBar:      progress.New(progress.WithDefaultGradient(), progress.WithWidth(40)),
		running:      make(map[string]struct{}),
		interrupt:    interrupt,
	}
}

// Init implements tea.Model.
func (a *App) Init() tea.Cmd {
	return nil
}

// Update implements tea.Model.
func (a *App) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		if key.Matches(msg, a.keys.Interrupt) && !a.interrupted {
			a.interrupted = true
			if a.interrupt != nil {
				a.interrupt()
			}
		}
	case tea.WindowSizeMsg:
		a.width = msg.Width
		if w := msg.Width - 30; w > 10 && w < 80 {
			a.discoveryBar.Width = w
			a.syncBar.Width = w
		}
	case messages.DiscoveryProgressed:
		a.discovered = msg.Completed
		a.discoveryEst = msg.TotalEstimate
	case messages.SyncPlanned:
		a.syncTotal = msg.Total
		a.syncAnnounced = true
	case messages.SyncStarted:
		a.running[msg.Action.NodePath] = struct{}{}
	case messages.SyncFinished:
		delete(a.running, msg.Result.Action.NodePath)
		a.syncDone++
		if msg.Result.Outcome == domain.OutcomeFailed {
			a.failed++
			a.lastFailure = msg.Result.Action.NodePath
		}
	case messages.Done:
		a.done = true
		return a, tea.Quit
	}
	return a, nil
}

// View implements tea.Model.
func (a *App) View() string {
	var b strings.Builder

	fmt.Fprintf(&b, "%s %s %s\n",
		a.styles.Subtitle.Render(fmt.Sprintf("%-9s", "Discovery")),
		a.discoveryBar.ViewAs(ratio(a.discovered, a.discoveryEst)),
		a.styles.Muted.Render(fmt.Sprintf("%d/%d", a.discovered, a.discoveryEst)))

	if a.syncAnnounced {
		counter := fmt.Sprintf("%d/%d", a.syncDone, a.syncTotal)
		if a.failed > 0 {
			counter += " " + a.styles.Error.Render(fmt.Sprintf("(%d failed)", a.failed))
		}
		fmt.Fprintf(&b, "%s %s %s\n",
			a.styles.Subtitle.Render(fmt.Sprintf("%-9s", "Sync")),
			a.syncBar.ViewAs(ratio(a.syncDone, a.syncTotal)),
			a.styles.Muted.Render(counter))

		for _, p := range a.runningPaths() {
			fmt.Fprintf(&b, "  %s %s\n", a.styles.Muted.Render("…"), p)
		}
		if a.lastFailure != "" {
			fmt.Fprintf(&b, "  %s %s\n", a.styles.Error.Render("✗"), a.lastFailure)
		}
	}

	switch {
	case a.done:
	case a.interrupted:
		b.WriteString(a.styles.Warning.Render("Cancelling, waiting for running operations...") + "\n")
	default:
		hints := make([]string, 0, len(a.keys.ShortHelp()))
		for _, k := range a.keys.ShortHelp() {
			hints = append(hints, k.Help().Key+" "+k.Help().Desc)
		}
		b.WriteString(a.styles.Help.Render(strings.Join(hints, " • ")) + "\n")
	}
	return b.String()
}

// runningPaths returns up to maxRunning in-flight paths, sorted.
func (a *App) runningPaths() []string {
	paths := make([]string, 0, len(a.running))
	for p := range a.running {
		paths = append(paths, p)
	}
	sort.Strings(paths)
	if len(paths) > maxRunning {
		extra := len(paths) - maxRunning
		paths = append(paths[:maxRunning], fmt.Sprintf("and %d more", extra))
	}
	return paths
}

func ratio(done, total int) float64 {
	if total <= 0 {
		return 0
	}
	r := float64(done) / float64(total)
	if r > 1 {
		return 1
	}
	return r
}
