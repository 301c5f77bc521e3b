package tui

// Message types for the Bubble Tea update loop.

// tickMsg runs one controller iteration.
type tickMsg struct{}
