// Package playback exposes a finished trajectory through a ping-pong
// cursor: the index walks forward to the last frame, reverses, walks
// back to frame zero, reverses again, forever. The presentation layer
// calls Advance once per rendered frame and draws whatever Frame
// returns; no physics runs during playback.
package playback

import (
	"fmt"

	"github.com/kvistgaard/tribody/internal/orbit"
)

// Direction of cursor travel through the trajectory.
type Direction int

const (
	Forward  Direction = 1
	Backward Direction = -1
)

func (d Direction) String() string {
	if d == Backward {
		return "backward"
	}
	return "forward"
}

// Cursor is the mutable playback state: one frame index plus a travel
// direction. The trajectory behind it is never modified.
type Cursor struct {
	tr  *orbit.Trajectory
	idx int
	dir Direction
}

// New builds a cursor at frame zero moving forward. The trajectory
// must have at least one frame, otherwise there is nothing to show.
func New(tr *orbit.Trajectory) (*Cursor, error) {
	if tr == nil || tr.Len() == 0 {
		return nil, fmt.Errorf("%w: playback needs at least one frame", orbit.ErrEmptyTrajectory)
	}
	return &Cursor{tr: tr, dir: Forward}, nil
}

// Frame returns the frame under the cursor.
func (c *Cursor) Frame() orbit.Frame {
	return c.tr.At(c.idx)
}

func (c *Cursor) Index() int {
	return c.idx
}

func (c *Cursor) Direction() Direction {
	return c.dir
}

// Len returns the number of frames the cursor walks over.
func (c *Cursor) Len() int {
	return c.tr.Len()
}

// Advance moves one frame in the travel direction, reversing whenever
// it lands on either end. It cannot fail and is safe to call at any
// rate; a single-frame trajectory stays on its only frame.
func (c *Cursor) Advance() {
	c.idx, c.dir = step(c.idx, c.dir, c.tr.Len())
}

// Seek jumps to frame i, clamping into range. At either end the
// direction turns inward so the next Advance walks back into the
// trajectory; elsewhere the travel direction is kept.
func (c *Cursor) Seek(i int) {
	n := c.tr.Len()
	if i < 0 {
		i = 0
	}
	if i > n-1 {
		i = n - 1
	}
	c.idx = i
	if i == 0 {
		c.dir = Forward
	} else if i == n-1 {
		c.dir = Backward
	}
}

// Reset returns the cursor to frame zero moving forward.
func (c *Cursor) Reset() {
	c.idx = 0
	c.dir = Forward
}

// step is the ping-pong rule as a pure function of (index, direction,
// length): move one frame in the travel direction, then reverse the
// direction when the new index lands on either end. An index pointing
// off the edge is reversed inward first, so the result always lies in
// [0, n). A walk of length one pins to index zero.
func step(idx int, dir Direction, n int) (int, Direction) {
	if n <= 1 {
		return 0, Forward
	}

	next := idx + int(dir)
	if next < 0 || next >= n {
		dir = -dir
		next = idx + int(dir)
	}

	if next == 0 {
		dir = Forward
	} else if next == n-1 {
		dir = Backward
	}
	return next, dir
}
