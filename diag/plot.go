package diag

import (
	"errors"
	"fmt"
	"image"
	"image/color"

	"github.com/swdee/go-kftrack/tracker"
	xdraw "golang.org/x/image/draw"
	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"
	"gonum.org/v1/plot/vg/draw"
	"gonum.org/v1/plot/vg/vgimg"
)

// ErrNoData is returned when there is nothing recorded to plot
var ErrNoData = errors.New("no diagnostics recorded")

var (
	traceColor      = color.RGBA{R: 0, G: 155, B: 255, A: 255}
	innovationColor = color.RGBA{R: 255, G: 178, B: 29, A: 255}
)

// Plot renders the covariance trace and innovation series into a width x
// height image
func (r *Recorder) Plot(width, height int) (image.Image, error) {

	trace, innovation := r.Series()

	if len(trace) == 0 {
		return nil, ErrNoData
	}

	p := plot.New()
	p.Title.Text = "Filter uncertainty"
	p.X.Label.Text = "tick"
	p.Y.Label.Text = "value"
	p.Legend.Top = true

	traceLine, err := plotter.NewLine(toXYs(trace))

	if err != nil {
		return nil, fmt.Errorf("failed to create trace line: %w", err)
	}

	traceLine.Color = traceColor
	traceLine.Width = vg.Points(1)
	p.Add(traceLine)
	p.Legend.Add("trace(P)", traceLine)

	if len(innovation) > 0 {
		innovationPts, err := plotter.NewScatter(toXYs(innovation))

		if err != nil {
			return nil, fmt.Errorf("failed to create innovation scatter: %w", err)
		}

		innovationPts.GlyphStyle.Color = innovationColor
		innovationPts.GlyphStyle.Radius = vg.Points(1.5)
		p.Add(innovationPts)
		p.Legend.Add("|z - Hx|", innovationPts)
	}

	// the canvas draws onto its own copy of the background image
	canvas := vgimg.NewWith(vgimg.UseImage(image.NewRGBA(image.Rect(0, 0, width, height))))
	p.Draw(draw.New(canvas))

	return canvas.Image(), nil
}

// Thumbnail scales src to fit width x height
func Thumbnail(src image.Image, width, height int) *image.RGBA {
	dst := image.NewRGBA(image.Rect(0, 0, width, height))
	xdraw.CatmullRom.Scale(dst, dst.Bounds(), src, src.Bounds(), xdraw.Over, nil)
	return dst
}

// toXYs converts points to plotter values
func toXYs(pts []tracker.Point) plotter.XYs {
	xys := make(plotter.XYs, len(pts))

	for i, p := range pts {
		xys[i].X = p.X
		xys[i].Y = p.Y
	}

	return xys
}
