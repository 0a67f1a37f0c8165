// Package keymap defines keybindings for the progress display.
package keymap

import (
	"github.com/charmbracelet/bubbles/key"
)

// KeyMap defines the keybindings active while a run is in progress.
type KeyMap struct {
	// Interrupt cancels the run. Work in flight is allowed to finish.
	Interrupt key.Binding
}

// DefaultKeyMap returns the default keybindings.
func DefaultKeyMap() *KeyMap {
	return &KeyMap{
		Interrupt: key.NewBinding(
			key.WithKeys("ctrl+c", "q"),
			key.WithHelp("ctrl+c/q", "cancel"),
		),
	}
}

// ShortHelp returns the bindings shown under the progress bars.
func (k *KeyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Interrupt}
}
