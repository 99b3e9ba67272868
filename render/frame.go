package render

import (
	"fmt"
	"image"

	"github.com/swdee/go-kftrack"
	"gocv.io/x/gocv"
)

// Renderer draws tracking snapshots onto a viewport sized image
type Renderer struct {
	Width, Height int
	Style         TrailStyle
	Font          Font
	// ShowInfo draws the coordinate and filter status text
	ShowInfo bool
}

// NewRenderer returns a Renderer for a width x height viewport with default
// styles
func NewRenderer(width, height int) *Renderer {
	return &Renderer{
		Width:    width,
		Height:   height,
		Style:    DefaultTrailStyle(),
		Font:     DefaultFont(),
		ShowInfo: true,
	}
}

// Draw renders the snapshot into img, which is (re)allocated to the
// viewport size
func (r *Renderer) Draw(img *gocv.Mat, snap kftrack.Snapshot) {

	if img.Empty() || img.Cols() != r.Width || img.Rows() != r.Height {
		img.Close()
		*img = gocv.NewMatWithSize(r.Height, r.Width, gocv.MatTypeCV8UC3)
	}

	// reset all pixels to black
	img.SetTo(gocv.NewScalar(0, 0, 0, 0))

	if snap.Trail != nil {
		Trail(img, snap.Trail, r.Style)
	}

	if r.ShowInfo {
		Text(img, InfoLines(snap), r.Font)
	}
}

// InfoLines returns the status text shown on a frame
func InfoLines(snap kftrack.Snapshot) []string {

	sensor := "predict"
	if snap.Measurement {
		sensor = "measured"
	}

	return []string{
		fmt.Sprintf("x: %.0f  y: %.0f", snap.Raw.X, snap.Raw.Y),
		fmt.Sprintf("tick %d  last measurement %d  (%s)", snap.Tick, snap.LastMeasurementTick, sensor),
		fmt.Sprintf("model %v  fallback %v  trace(P) %.3f", snap.Model, snap.Fallback, snap.CovarianceTrace),
	}
}

// Overlay copies src into img with its top left corner at pt.  The overlay
// is cropped to fit
func Overlay(img *gocv.Mat, src image.Image, pt image.Point) error {

	overlay, err := gocv.ImageToMatRGB(src)

	if err != nil {
		return fmt.Errorf("failed to convert overlay: %w", err)
	}

	defer overlay.Close()

	rect := image.Rect(pt.X, pt.Y, pt.X+overlay.Cols(), pt.Y+overlay.Rows()).
		Intersect(image.Rect(0, 0, img.Cols(), img.Rows()))

	if rect.Empty() {
		return nil
	}

	dst := img.Region(rect)
	defer dst.Close()

	srcRegion := overlay.Region(image.Rect(0, 0, rect.Dx(), rect.Dy()))
	defer srcRegion.Close()

	srcRegion.CopyTo(&dst)

	return nil
}
