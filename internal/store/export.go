package store

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/kvistgaard/tribody/internal/orbit"
)

var csvHeader = []string{
	"step", "time",
	"x1", "y1", "vx1", "vy1",
	"x2", "y2", "vx2", "vy2",
	"x3", "y3", "vx3", "vy3",
}

// WriteCSV streams a trajectory as CSV. Floats use the shortest exact
// representation, so parsing a row recovers the original bits.
func WriteCSV(w io.Writer, tr *orbit.Trajectory) error {
	cw := csv.NewWriter(w)

	if err := cw.Write(csvHeader); err != nil {
		return err
	}

	row := make([]string, len(csvHeader))
	for i := 0; i < tr.Len(); i++ {
		f := tr.At(i)
		row[0] = strconv.Itoa(f.Step)
		row[1] = strconv.FormatFloat(f.Time, 'g', -1, 64)
		for b, body := range f.Bodies {
			row[2+b*4] = strconv.FormatFloat(body.Pos.X, 'g', -1, 64)
			row[3+b*4] = strconv.FormatFloat(body.Pos.Y, 'g', -1, 64)
			row[4+b*4] = strconv.FormatFloat(body.Vel.X, 'g', -1, 64)
			row[5+b*4] = strconv.FormatFloat(body.Vel.Y, 'g', -1, 64)
		}
		if err := cw.Write(row); err != nil {
			return err
		}
	}

	cw.Flush()
	return cw.Error()
}

func ExportCSV(path string, tr *orbit.Trajectory) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()
	return WriteCSV(f, tr)
}

type exportBody struct {
	X  float64 `json:"x"`
	Y  float64 `json:"y"`
	VX float64 `json:"vx"`
	VY float64 `json:"vy"`
}

type exportFrame struct {
	Step   int           `json:"step"`
	Time   float64       `json:"time"`
	Bodies [3]exportBody `json:"bodies"`
}

type ExportData struct {
	Scenario   string             `json:"scenario,omitempty"`
	Integrator string             `json:"integrator,omitempty"`
	Dt         float64            `json:"dt,omitempty"`
	G          float64            `json:"g,omitempty"`
	Epsilon    float64            `json:"epsilon,omitempty"`
	Masses     [3]float64         `json:"masses"`
	Frames     int                `json:"frames"`
	Truncated  bool               `json:"truncated"`
	Metrics    map[string]float64 `json:"metrics,omitempty"`
	Trajectory []exportFrame      `json:"trajectory"`
}

// WriteJSON streams a trajectory with its run context. meta may be nil
// for a freshly computed run that was never stored.
func WriteJSON(w io.Writer, meta *RunMetadata, tr *orbit.Trajectory) error {
	data := ExportData{
		Frames:     tr.Len(),
		Truncated:  tr.Truncated(),
		Trajectory: make([]exportFrame, 0, tr.Len()),
	}
	if meta != nil {
		data.Scenario = meta.Scenario
		data.Integrator = meta.Integrator
		data.Dt = meta.Dt
		data.G = meta.G
		data.Epsilon = meta.Epsilon
		data.Masses = meta.Masses
		data.Metrics = meta.Metrics
	} else if tr.Len() > 0 {
		first := tr.At(0).Bodies
		data.Masses = [3]float64{first[0].Mass, first[1].Mass, first[2].Mass}
	}

	for i := 0; i < tr.Len(); i++ {
		f := tr.At(i)
		ef := exportFrame{Step: f.Step, Time: f.Time}
		for b, body := range f.Bodies {
			ef.Bodies[b] = exportBody{X: body.Pos.X, Y: body.Pos.Y, VX: body.Vel.X, VY: body.Vel.Y}
		}
		data.Trajectory = append(data.Trajectory, ef)
	}

	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(data)
}

func ExportJSON(path string, meta *RunMetadata, tr *orbit.Trajectory) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()
	return WriteJSON(f, meta, tr)
}

var bodyColors = [3]string{"#ff6b6b", "#4ecdc4", "#ffe66d"}

// WriteSVG draws the three orbit curves as polylines with dots on the
// final positions. Long trajectories are strided down to keep the
// paths near two thousand points each.
func WriteSVG(w io.Writer, tr *orbit.Trajectory, width, height int) error {
	if tr.Len() == 0 {
		return fmt.Errorf("%w: nothing to draw", orbit.ErrEmptyTrajectory)
	}

	minX, maxX := tr.At(0).Bodies[0].Pos.X, tr.At(0).Bodies[0].Pos.X
	minY, maxY := tr.At(0).Bodies[0].Pos.Y, tr.At(0).Bodies[0].Pos.Y
	for i := 0; i < tr.Len(); i++ {
		for _, body := range tr.At(i).Bodies {
			minX = min(minX, body.Pos.X)
			maxX = max(maxX, body.Pos.X)
			minY = min(minY, body.Pos.Y)
			maxY = max(maxY, body.Pos.Y)
		}
	}

	rangeX := maxX - minX
	rangeY := maxY - minY
	if rangeX == 0 {
		rangeX = 1
	}
	if rangeY == 0 {
		rangeY = 1
	}
	minX -= rangeX * 0.1
	minY -= rangeY * 0.1
	rangeX *= 1.2
	rangeY *= 1.2

	toPixel := func(b orbit.Body) (float64, float64) {
		x := (b.Pos.X - minX) / rangeX * float64(width)
		y := float64(height) - (b.Pos.Y-minY)/rangeY*float64(height)
		return x, y
	}

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf(`<?xml version="1.0" encoding="UTF-8"?>
<svg xmlns="http://www.w3.org/2000/svg" width="%d" height="%d" viewBox="0 0 %d %d">
<rect width="100%%" height="100%%" fill="#0a0a0a"/>
`, width, height, width, height))

	stride := tr.Len() / 2000
	if stride < 1 {
		stride = 1
	}

	for b := 0; b < 3; b++ {
		sb.WriteString(fmt.Sprintf(`<path fill="none" stroke="%s" stroke-width="1.5" d="M`, bodyColors[b]))
		for i := 0; i < tr.Len(); i += stride {
			x, y := toPixel(tr.At(i).Bodies[b])
			if i == 0 {
				sb.WriteString(fmt.Sprintf("%.1f,%.1f", x, y))
			} else {
				sb.WriteString(fmt.Sprintf(" L%.1f,%.1f", x, y))
			}
		}
		if (tr.Len()-1)%stride != 0 {
			x, y := toPixel(tr.Last().Bodies[b])
			sb.WriteString(fmt.Sprintf(" L%.1f,%.1f", x, y))
		}
		sb.WriteString("\"/>\n")
	}

	for b := 0; b < 3; b++ {
		x, y := toPixel(tr.Last().Bodies[b])
		sb.WriteString(fmt.Sprintf(`<circle cx="%.1f" cy="%.1f" r="4" fill="%s"/>
`, x, y, bodyColors[b]))
	}
	sb.WriteString("</svg>\n")

	_, err := io.WriteString(w, sb.String())
	return err
}

func ExportSVG(path string, tr *orbit.Trajectory, width, height int) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()
	return WriteSVG(f, tr, width, height)
}
