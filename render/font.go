package render

import (
	"image"
	"image/color"

	"gocv.io/x/gocv"
)

// Font defines the parameters for rendering text on an image using GoCV
type Font struct {
	Face      gocv.HersheyFont
	Scale     float64
	Color     color.RGBA
	Thickness int
	LineType  gocv.LineType
	// LineSpacing is the gap in pixels between lines of text
	LineSpacing int
	// Padding from the image edge
	LeftPad int
	TopPad  int
}

// DefaultFont returns default font settings
func DefaultFont() Font {
	return Font{
		Face:        gocv.FontHersheySimplex,
		Scale:       0.5,
		Color:       White,
		Thickness:   1,
		LineType:    gocv.LineAA,
		LineSpacing: 6,
		LeftPad:     8,
		TopPad:      8,
	}
}

// Text draws lines of text in the top left corner of the image
func Text(img *gocv.Mat, lines []string, font Font) {

	y := font.TopPad

	for _, line := range lines {
		size := gocv.GetTextSize(line, font.Face, font.Scale, font.Thickness)
		y += size.Y

		gocv.PutTextWithParams(img, line, image.Pt(font.LeftPad, y),
			font.Face, font.Scale, font.Color, font.Thickness, font.LineType, false)

		y += font.LineSpacing
	}
}
