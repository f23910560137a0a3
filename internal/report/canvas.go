package report

import "io"

// Page geometry in points, A4 portrait. Y grows downwards from the top edge.
const (
	PageWidth    = 595.28
	PageHeight   = 841.89
	TopMargin    = 40.0
	BottomMargin = 30.0
)

// Canvas is the drawing surface the layout writes to.
type Canvas interface {
	AddPage()
	SetFontSize(size float64)
	Text(x, y float64, s string)
	TextCentered(cx, y float64, s string)
	TextRight(rx, y float64, s string)
	Line(x1, y1, x2, y2 float64)
	RoundedRect(x, y, w, h, r float64)
	// Finish writes the document. Nothing is written when drawing failed.
	Finish(w io.Writer) error
}
