package render

import (
	"image"
	"image/color"

	"github.com/swdee/go-kftrack/tracker"
	"gocv.io/x/gocv"
)

// LineStyle defines how a single track is drawn
type LineStyle struct {
	Show      bool
	Color     color.RGBA
	Thickness int
}

// TrailStyle defines the parameters used for rendering the tracks
type TrailStyle struct {
	Truth    LineStyle
	Measured LineStyle
	Filtered LineStyle
	// ShowCross draws a cross-hair on the latest truth and filtered points
	ShowCross bool
	CrossSize int
}

// DefaultTrailStyle returns default trail style settings
func DefaultTrailStyle() TrailStyle {
	return TrailStyle{
		Truth:     LineStyle{Show: true, Color: Red, Thickness: 2},
		Measured:  LineStyle{Show: true, Color: Yellow, Thickness: 1},
		Filtered:  LineStyle{Show: true, Color: Azure, Thickness: 2},
		ShowCross: true,
		CrossSize: 5,
	}
}

// style returns the line style for a track category
func (s TrailStyle) style(cat tracker.Category) LineStyle {
	switch cat {
	case tracker.Truth:
		return s.Truth
	case tracker.Measured:
		return s.Measured
	case tracker.Filtered:
		return s.Filtered
	}
	return LineStyle{}
}

// Trail draws the track history lines on the source image
func Trail(img *gocv.Mat, trail *tracker.Trail, style TrailStyle) {

	for _, cat := range tracker.Categories {
		ls := style.style(cat)

		if !ls.Show {
			continue
		}

		points := trail.GetPoints(cat)

		// draw line segments between consecutive points
		for i := 1; i < len(points); i++ {
			gocv.Line(img, points[i-1].ImagePoint(), points[i].ImagePoint(),
				ls.Color, ls.Thickness)
		}
	}

	if !style.ShowCross {
		return
	}

	// cross-hairs are only drawn once there is something to draw
	if p, ok := trail.Last(tracker.Truth); ok {
		Cross(img, p.ImagePoint(), Yellow, style.CrossSize)
	}

	if p, ok := trail.Last(tracker.Filtered); ok {
		Cross(img, p.ImagePoint(), style.Filtered.Color, style.CrossSize)
	}
}

// Cross draws a diagonal cross centred on center
func Cross(img *gocv.Mat, center image.Point, clr color.RGBA, d int) {
	gocv.Line(img, image.Pt(center.X-d, center.Y-d), image.Pt(center.X+d, center.Y+d), clr, 2)
	gocv.Line(img, image.Pt(center.X+d, center.Y-d), image.Pt(center.X-d, center.Y+d), clr, 2)
}
