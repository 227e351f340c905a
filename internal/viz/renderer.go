package viz

import (
	"gonum.org/v1/gonum/spatial/r2"

	"github.com/kvistgaard/tribody/internal/orbit"
)

const trailCapacity = 600

type point struct{ x, y int }

// Renderer projects frames onto a braille canvas. Bounds are computed
// once from the whole trajectory so the view stays put while the
// playhead moves back and forth.
type Renderer struct {
	canvas       *Canvas
	minX, minY   float64
	spanX, spanY float64
	trails       [3][]point
}

func NewRenderer(tr *orbit.Trajectory, width, height int) *Renderer {
	r := &Renderer{
		canvas: NewCanvas(width, height),
		spanX:  1,
		spanY:  1,
	}
	if tr.Len() == 0 {
		return r
	}

	first := tr.At(0).Bodies[0].Pos
	minX, maxX := first.X, first.X
	minY, maxY := first.Y, first.Y
	for i := 0; i < tr.Len(); i++ {
		for _, b := range tr.At(i).Bodies {
			minX = min(minX, b.Pos.X)
			maxX = max(maxX, b.Pos.X)
			minY = min(minY, b.Pos.Y)
			maxY = max(maxY, b.Pos.Y)
		}
	}

	spanX := maxX - minX
	spanY := maxY - minY
	if spanX == 0 {
		spanX = 1
	}
	if spanY == 0 {
		spanY = 1
	}
	r.minX = minX - spanX*0.1
	r.minY = minY - spanY*0.1
	r.spanX = spanX * 1.2
	r.spanY = spanY * 1.2
	return r
}

func (r *Renderer) project(p r2.Vec) (int, int) {
	pw := r.canvas.Width * 2
	ph := r.canvas.Height * 4
	x := int((p.X - r.minX) / r.spanX * float64(pw-1))
	y := int((p.Y - r.minY) / r.spanY * float64(ph-1))
	return x, ph - 1 - y
}

// Push appends the frame's positions to the orbit trails.
func (r *Renderer) Push(f orbit.Frame) {
	for i, b := range f.Bodies {
		x, y := r.project(b.Pos)
		r.trails[i] = append(r.trails[i], point{x, y})
		if len(r.trails[i]) > trailCapacity {
			r.trails[i] = r.trails[i][1:]
		}
	}
}

// ClearTrails forgets the recorded trails, for restarts and seeks.
func (r *Renderer) ClearTrails() {
	for i := range r.trails {
		r.trails[i] = r.trails[i][:0]
	}
}

// Render draws one frame and returns the canvas text.
func (r *Renderer) Render(f orbit.Frame, trails bool) string {
	r.canvas.Clear()

	if trails {
		for i := range r.trails {
			for _, pt := range r.trails[i] {
				r.canvas.Set(pt.x, pt.y)
			}
		}
	}

	for _, b := range f.Bodies {
		x, y := r.project(b.Pos)
		r.canvas.Fill(x, y, 2)
	}

	return r.canvas.String()
}
