package export

import (
	"bytes"
	"fmt"
	"image"
	"image/png"
	"io"
	"strconv"
	"strings"

	"github.com/go-pdf/fpdf"
)

const (
	ptToMM          = 25.4 / 72
	lineHeightRatio = 1.15
)

// pdfDocument is the fpdf-backed Document.
type pdfDocument struct {
	pdf    *fpdf.Fpdf
	geo    Geometry
	tr     func(string) string
	images int
}

// NewPDF starts an empty portrait document with the given geometry.
func NewPDF(geo Geometry, title string) Document {
	pdf := fpdf.NewCustom(&fpdf.InitType{
		OrientationStr: "P",
		UnitStr:        "mm",
		Size:           fpdf.SizeType{Wd: geo.PageWidth, Ht: geo.PageHeight},
	})
	pdf.SetMargins(geo.Margin, geo.Margin, geo.Margin)
	pdf.SetAutoPageBreak(false, geo.Margin)
	pdf.SetCreator("ddsgen", true)
	if title != "" {
		pdf.SetTitle(title, true)
	}
	return &pdfDocument{
		pdf: pdf,
		geo: geo,
		// Core fonts are cp1252; translate so accents render.
		tr: pdf.UnicodeTranslatorFromDescriptor(""),
	}
}

func (d *pdfDocument) Geometry() Geometry { return d.geo }

func (d *pdfDocument) AddPage() { d.pdf.AddPage() }

func (d *pdfDocument) PageCount() int { return d.pdf.PageCount() }

func (d *pdfDocument) CenteredText(text string, style TextStyle, y, width float64) float64 {
	fontStyle := ""
	if style.Bold {
		fontStyle = "B"
	}
	family := style.Family
	if family == "" {
		family = "Helvetica"
	}
	d.pdf.SetFont(family, fontStyle, style.Size)
	r, g, b := hexColor(style.Color)
	d.pdf.SetTextColor(r, g, b)

	lineHeight := style.Size * ptToMM * lineHeightRatio
	// The translated text is cp1252 bytes, so wrap by byte widths.
	lines := d.pdf.SplitLines([]byte(d.tr(text)), width)
	x := (d.geo.PageWidth - width) / 2
	for i, ln := range lines {
		d.pdf.SetXY(x, y+float64(i)*lineHeight)
		d.pdf.CellFormat(width, lineHeight, string(ln), "", 0, "C", false, 0, "")
	}
	return float64(len(lines)) * lineHeight
}

func (d *pdfDocument) Image(img image.Image, x, y, w, h float64) error {
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		return fmt.Errorf("encode slice: %w", err)
	}
	d.images++
	name := "slice-" + strconv.Itoa(d.images)
	opts := fpdf.ImageOptions{ImageType: "PNG"}
	d.pdf.RegisterImageOptionsReader(name, opts, &buf)
	d.pdf.ImageOptions(name, x, y, w, h, false, opts, 0, "")
	if err := d.pdf.Error(); err != nil {
		return fmt.Errorf("place image %s: %w", name, err)
	}
	return nil
}

func (d *pdfDocument) Output(w io.Writer) error {
	if err := d.pdf.Output(w); err != nil {
		return fmt.Errorf("write pdf: %w", err)
	}
	return nil
}

// hexColor parses #rrggbb, falling back to black.
func hexColor(s string) (int, int, int) {
	s = strings.TrimPrefix(s, "#")
	if len(s) != 6 {
		return 0, 0, 0
	}
	v, err := strconv.ParseUint(s, 16, 32)
	if err != nil {
		return 0, 0, 0
	}
	return int(v >> 16 & 0xff), int(v >> 8 & 0xff), int(v & 0xff)
}
