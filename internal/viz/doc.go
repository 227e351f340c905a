// Package viz renders recorded trajectories in the terminal.
//
// The package implements a Bubble Tea player over a finished run:
//
//   - [Player]: interactive playback with ping-pong looping
//   - [Canvas]: Braille-based pixel canvas for high-fidelity rendering
//   - [Renderer]: fixed-bounds projection of orbits onto a canvas
//
// # Key Bindings
//
//	Space - Pause/Resume playback
//	[ ]   - Scrub one frame back/forward
//	+ -   - Faster/slower playback
//	T     - Toggle orbit trails
//	R     - Restart from the first frame
//	?     - Toggle help overlay
//	Q     - Quit
package viz
