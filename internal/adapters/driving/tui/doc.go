// Package tui renders live discovery and sync progress in the terminal.
// It implements the ProgressSink port as a driving adapter: the core sends
// events, the Bubbletea program turns them into progress bars.
package tui
