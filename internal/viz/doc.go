// Package viz renders gear simulations in the terminal.
//
// Static output (link tables, run summaries and velocity plots) is plain
// strings styled with lipgloss so the CLI can print it directly. [Live] is a
// Bubble Tea model that steps a simulator in real time.
//
// # Key Bindings
//
//	Space - Pause/Resume simulation
//	R     - Reset to initial state
//	L     - Detach or reattach the first motion link
//	T     - Cycle color themes
//	?     - Show help overlay
//	Q     - Quit
package viz
