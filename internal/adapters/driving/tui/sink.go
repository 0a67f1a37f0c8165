package tui

import (
	"io"
	"sync"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/custodia-labs/repotree/internal/adapters/driving/tui/messages"
	"github.com/custodia-labs/repotree/internal/adapters/driving/tui/styles"
	"github.com/custodia-labs/repotree/internal/core/domain"
	"github.com/custodia-labs/repotree/internal/core/ports/driven"
)

// Verify interface compliance.
var _ driven.ProgressSink = (*Sink)(nil)

// Sink renders progress events with a Bubbletea program.
type Sink struct {
	program *tea.Program
	done    chan struct{}
	once    sync.Once
	err     error
}

// Start runs the progress display on out until Stop is called. Keys are
// read from in, which may be nil to disable input; interrupt is called when
// the user asks to cancel.
func Start(out io.Writer, in io.Reader, interrupt func()) *Sink {
	app := NewApp(styles.NewStylesFor(lipgloss.NewRenderer(out), nil), interrupt)
	s := &Sink{
		program: tea.NewProgram(app,
			tea.WithOutput(out),
			tea.WithInput(in),
			tea.WithoutSignalHandler(),
		),
		done: make(chan struct{}),
	}
	go func() {
		defer close(s.done)
		_, s.err = s.program.Run()
	}()
	return s
}

// OnDiscoveryProgress implements driven.ProgressSink.
func (s *Sink) OnDiscoveryProgress(completed, totalEstimate int) {
	s.program.Send(messages.DiscoveryProgressed{Completed: completed, TotalEstimate: totalEstimate})
}

// OnSyncStart implements driven.ProgressSink.
func (s *Sink) OnSyncStart(action domain.SyncAction) {
	s.program.Send(messages.SyncStarted{Action: action})
}

// OnSyncEnd implements driven.ProgressSink.
func (s *Sink) OnSyncEnd(result domain.SyncResult) {
	s.program.Send(messages.SyncFinished{Result: result})
}

// SyncPlanned shows the sync bar sized for total actions.
func (s *Sink) SyncPlanned(total int) {
	s.program.Send(messages.SyncPlanned{Total: total})
}

// Stop renders the final frame and waits for the program to exit.
func (s *Sink) Stop() error {
	s.once.Do(func() {
		s.program.Send(messages.Done{})
	})
	<-s.done
	return s.err
}
