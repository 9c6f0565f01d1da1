package export

import (
	"image"
	"io"
)

// Geometry is the physical page layout, in millimetres.
type Geometry struct {
	PageWidth  float64
	PageHeight float64
	Margin     float64
}

// A4 is a portrait A4 page with a 10 mm margin on every side.
var A4 = Geometry{PageWidth: 210, PageHeight: 297, Margin: 10}

// ContentWidth is the printable width between the side margins.
func (g Geometry) ContentWidth() float64 { return g.PageWidth - 2*g.Margin }

// ContentHeight is the printable height between top and bottom margins.
func (g Geometry) ContentHeight() float64 { return g.PageHeight - 2*g.Margin }

// TextStyle describes a run of native document text.
type TextStyle struct {
	Family string
	Bold   bool
	Size   float64 // points
	Color  string  // #rrggbb
}

// Document is the page sink the export routine writes into.
type Document interface {
	Geometry() Geometry
	AddPage()
	PageCount() int
	// CenteredText draws text centred across width starting at the left
	// margin, wrapping as needed, with its top at y. It returns the height
	// used.
	CenteredText(text string, style TextStyle, y, width float64) float64
	// Image places img with its top-left corner at (x, y) scaled to w×h.
	Image(img image.Image, x, y, w, h float64) error
	Output(w io.Writer) error
}
