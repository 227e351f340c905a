package orbit

// Frame is one sampled instant of a run.
type Frame struct {
	Step   int
	Time   float64
	Bodies System
}

// Trajectory is the record of a completed run. Frame 0 is the initial
// state; a run of n steps that stays finite yields n+1 frames. The
// trajectory is immutable once built: readers get frames by value and
// cannot alter the record.
type Trajectory struct {
	frames    []Frame
	truncated bool
}

// NewTrajectory wraps frames into a trajectory, taking ownership of the
// slice. truncated marks a run stopped early by divergence.
func NewTrajectory(frames []Frame, truncated bool) *Trajectory {
	return &Trajectory{frames: frames, truncated: truncated}
}

func (tr *Trajectory) Len() int {
	return len(tr.frames)
}

func (tr *Trajectory) At(i int) Frame {
	return tr.frames[i]
}

func (tr *Trajectory) Last() Frame {
	return tr.frames[len(tr.frames)-1]
}

// Truncated reports whether the run stopped before its requested step
// count because a computed state went non-finite. Every frame present
// is still valid.
func (tr *Trajectory) Truncated() bool {
	return tr.truncated
}

// Duration returns the simulated time covered by the trajectory.
func (tr *Trajectory) Duration() float64 {
	if len(tr.frames) == 0 {
		return 0
	}
	return tr.frames[len(tr.frames)-1].Time - tr.frames[0].Time
}
