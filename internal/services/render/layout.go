package render

import (
	"image"
	"math"
)

// Canvas geometry: a 10x7 inch figure at 120 DPI with the table centered in
// the default axes box. Icon positions are axes fractions, independent of
// the cell grid.
const (
	dpi       = 120.0
	figWidth  = 10 * dpi
	figHeight = 7 * dpi

	axesLeft   = 0.125
	axesBottom = 0.11
	axesWidth  = 0.775
	axesHeight = 0.77

	fontSizePt = 14.0
	// base row height is 1.2 × the 10pt default text height, stretched 4.2×
	rowHeight = 10.0 / 72 * dpi * 1.2 * 4.2

	iconZoom    = 0.22
	iconAnchorX = 0.28
	iconBaseY   = 0.745
	iconStepY   = 0.117

	cropPad   = 0.1 * dpi
	edgeWidth = 1
)

var columns = [...]string{"Currency", "Daily", "APR"}

// axesPoint maps axes fractions (origin bottom-left) to canvas pixels (origin top-left).
func axesPoint(fx, fy float64) (float64, float64) {
	x := figWidth * (axesLeft + fx*axesWidth)
	y := figHeight - figHeight*(axesBottom+fy*axesHeight)
	return x, y
}

// tableRect returns the outer rectangle of a table with rows lines, header included.
func tableRect(rows int) image.Rectangle {
	left, _ := axesPoint(0, 0)
	right, _ := axesPoint(1, 0)
	_, cy := axesPoint(0.5, 0.5)
	h := rowHeight * float64(rows)
	top := cy - h/2
	return image.Rect(round(left), round(top), round(right), round(top+h))
}

// cellRect returns the rectangle of cell (row, col) inside table t.
func cellRect(t image.Rectangle, rows, row, col int) image.Rectangle {
	colW := float64(t.Dx()) / float64(len(columns))
	rowH := float64(t.Dy()) / float64(rows)
	x0 := float64(t.Min.X) + colW*float64(col)
	y0 := float64(t.Min.Y) + rowH*float64(row)
	return image.Rect(round(x0), round(y0), round(x0+colW), round(y0+rowH))
}

// iconRect returns where the i-th body row's icon is drawn for an icon of srcSize pixels.
func iconRect(i, srcSize int) image.Rectangle {
	side := iconSide(srcSize)
	cx, cy := axesPoint(iconAnchorX, iconBaseY-float64(i)*iconStepY)
	x0 := round(cx - float64(side)/2)
	y0 := round(cy - float64(side)/2)
	return image.Rect(x0, y0, x0+side, y0+side)
}

// iconSide is the drawn edge length: zoom applies to points, so pixels scale by dpi/72.
func iconSide(srcSize int) int {
	s := round(float64(srcSize) * iconZoom * dpi / 72)
	if s < 1 {
		return 1
	}
	return s
}

func round(v float64) int {
	return int(math.Round(v))
}
