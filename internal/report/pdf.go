package report

import (
	"bytes"
	"fmt"
	"io"
	"os"

	"github.com/go-pdf/fpdf"
)

const fontFamily = "DejaVu"

// PDFCanvas draws on an fpdf document with a UTF-8 TrueType font.
type PDFCanvas struct {
	pdf  *fpdf.Fpdf
	size float64
}

// NewPDFCanvas loads the font at fontPath. The font is required for Cyrillic text.
func NewPDFCanvas(fontPath string) (*PDFCanvas, error) {
	font, err := os.ReadFile(fontPath)
	if err != nil {
		return nil, fmt.Errorf("load report font: %w", err)
	}

	pdf := fpdf.New("P", "pt", "A4", "")
	pdf.SetAutoPageBreak(false, 0)
	pdf.SetMargins(0, 0, 0)
	pdf.AddUTF8FontFromBytes(fontFamily, "", font)
	if err := pdf.Error(); err != nil {
		return nil, fmt.Errorf("register report font: %w", err)
	}

	c := &PDFCanvas{pdf: pdf, size: 11}
	return c, nil
}

func (c *PDFCanvas) AddPage() {
	c.pdf.AddPage()
	c.pdf.SetFont(fontFamily, "", c.size)
}

func (c *PDFCanvas) SetFontSize(size float64) {
	c.size = size
	c.pdf.SetFont(fontFamily, "", size)
}

func (c *PDFCanvas) Text(x, y float64, s string) {
	c.pdf.Text(x, y, s)
}

func (c *PDFCanvas) TextCentered(cx, y float64, s string) {
	c.pdf.Text(cx-c.pdf.GetStringWidth(s)/2, y, s)
}

func (c *PDFCanvas) TextRight(rx, y float64, s string) {
	c.pdf.Text(rx-c.pdf.GetStringWidth(s), y, s)
}

func (c *PDFCanvas) Line(x1, y1, x2, y2 float64) {
	c.pdf.Line(x1, y1, x2, y2)
}

func (c *PDFCanvas) RoundedRect(x, y, w, h, r float64) {
	c.pdf.RoundedRect(x, y, w, h, r, "1234", "D")
}

func (c *PDFCanvas) PageCount() int {
	return c.pdf.PageCount()
}

func (c *PDFCanvas) Finish(w io.Writer) error {
	if err := c.pdf.Error(); err != nil {
		return fmt.Errorf("render pdf: %w", err)
	}
	// render fully before touching w so a failure leaves it empty
	var buf bytes.Buffer
	if err := c.pdf.Output(&buf); err != nil {
		return fmt.Errorf("render pdf: %w", err)
	}
	_, err := buf.WriteTo(w)
	return err
}
