package playback_test

import (
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/kvistgaard/tribody/internal/orbit"
	"github.com/kvistgaard/tribody/internal/playback"
)

func trajectoryOf(n int) *orbit.Trajectory {
	frames := make([]orbit.Frame, n)
	for i := range frames {
		frames[i] = orbit.Frame{Step: i, Time: float64(i) * 0.1}
	}
	return orbit.NewTrajectory(frames, false)
}

var _ = Describe("Cursor", func() {
	Describe("New", func() {
		It("rejects a nil trajectory", func() {
			_, err := playback.New(nil)
			Expect(err).To(MatchError(orbit.ErrEmptyTrajectory))
		})

		It("rejects a trajectory with no frames", func() {
			_, err := playback.New(orbit.NewTrajectory(nil, false))
			Expect(err).To(MatchError(orbit.ErrEmptyTrajectory))
		})

		It("starts at frame zero moving forward", func() {
			c, err := playback.New(trajectoryOf(5))
			Expect(err).NotTo(HaveOccurred())
			Expect(c.Index()).To(Equal(0))
			Expect(c.Direction()).To(Equal(playback.Forward))
			Expect(c.Len()).To(Equal(5))
		})
	})

	Describe("Advance", func() {
		It("walks forward through the frames", func() {
			c, _ := playback.New(trajectoryOf(5))
			c.Advance()
			c.Advance()
			Expect(c.Index()).To(Equal(2))
			Expect(c.Direction()).To(Equal(playback.Forward))
		})

		It("reverses on reaching the last frame", func() {
			c, _ := playback.New(trajectoryOf(4))
			for i := 0; i < 3; i++ {
				c.Advance()
			}
			Expect(c.Index()).To(Equal(3))
			Expect(c.Direction()).To(Equal(playback.Backward))

			c.Advance()
			Expect(c.Index()).To(Equal(2))
		})

		It("reverses again on reaching frame zero", func() {
			c, _ := playback.New(trajectoryOf(3))
			for i := 0; i < 4; i++ {
				c.Advance()
			}
			Expect(c.Index()).To(Equal(0))
			Expect(c.Direction()).To(Equal(playback.Forward))
		})

		It("visits indices in a palindromic order", func() {
			c, _ := playback.New(trajectoryOf(4))
			visited := []int{c.Index()}
			for i := 0; i < 7; i++ {
				c.Advance()
				visited = append(visited, c.Index())
			}
			Expect(visited).To(Equal([]int{0, 1, 2, 3, 2, 1, 0, 1}))
		})

		It("completes a round trip in 2*(N-1) advances", func() {
			const n = 6
			c, _ := playback.New(trajectoryOf(n))
			for i := 0; i < 2*(n-1); i++ {
				c.Advance()
			}
			Expect(c.Index()).To(Equal(0))
			Expect(c.Direction()).To(Equal(playback.Forward))
		})

		It("pins a single-frame trajectory to its only frame", func() {
			c, _ := playback.New(trajectoryOf(1))
			for i := 0; i < 10; i++ {
				c.Advance()
			}
			Expect(c.Index()).To(Equal(0))
			Expect(c.Frame().Step).To(Equal(0))
		})

		It("never leaves the valid index range", func() {
			for _, n := range []int{1, 2, 3, 7} {
				c, _ := playback.New(trajectoryOf(n))
				for i := 0; i < 500; i++ {
					c.Advance()
					Expect(c.Index()).To(And(BeNumerically(">=", 0), BeNumerically("<", n)))
				}
			}
		})
	})

	Describe("Frame", func() {
		It("returns the frame under the cursor", func() {
			c, _ := playback.New(trajectoryOf(5))
			c.Advance()
			c.Advance()
			Expect(c.Frame().Step).To(Equal(2))
			Expect(c.Frame().Time).To(BeNumerically("~", 0.2, 1e-12))
		})
	})

	Describe("Seek", func() {
		It("clamps below zero and turns forward", func() {
			c, _ := playback.New(trajectoryOf(5))
			c.Seek(-3)
			Expect(c.Index()).To(Equal(0))
			Expect(c.Direction()).To(Equal(playback.Forward))
		})

		It("clamps past the end and turns backward", func() {
			c, _ := playback.New(trajectoryOf(5))
			c.Seek(99)
			Expect(c.Index()).To(Equal(4))
			Expect(c.Direction()).To(Equal(playback.Backward))
		})

		It("keeps the travel direction in the interior", func() {
			c, _ := playback.New(trajectoryOf(9))
			c.Seek(8)
			c.Advance()
			Expect(c.Direction()).To(Equal(playback.Backward))
			c.Seek(4)
			Expect(c.Direction()).To(Equal(playback.Backward))
		})
	})

	Describe("Reset", func() {
		It("returns to frame zero moving forward", func() {
			c, _ := playback.New(trajectoryOf(5))
			for i := 0; i < 6; i++ {
				c.Advance()
			}
			c.Reset()
			Expect(c.Index()).To(Equal(0))
			Expect(c.Direction()).To(Equal(playback.Forward))
		})
	})
})
