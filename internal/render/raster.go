package render

import (
	"bytes"
	"context"
	"fmt"
	"image"
	_ "image/jpeg"
	_ "image/png"
	"math"

	"github.com/fogleman/gg"
	"github.com/golang/freetype/truetype"
	"golang.org/x/image/draw"
	"golang.org/x/image/font"
	"golang.org/x/image/font/gofont/gobold"
	"golang.org/x/image/font/gofont/goitalic"
	"golang.org/x/image/font/gofont/goregular"
)

// DefaultWidth is the CSS pixel width of the report column.
const DefaultWidth = 704

// Palette holds the colours used when a block is captured for print.
type Palette struct {
	Card    string
	Border  string
	Heading string
	Text    string
	Muted   string
	Accent  string
	Frame   string
}

// PrintPalette is a light theme; the on-screen dark theme wastes toner.
var PrintPalette = Palette{
	Card:    "#ecfdf5",
	Border:  "#10b981",
	Heading: "#1f2937",
	Text:    "#374151",
	Muted:   "#6b7280",
	Accent:  "#059669",
	Frame:   "#000000",
}

// Box metrics in CSS pixels.
const (
	cardPadding    = 24.0
	cardRadius     = 12.0
	iconSize       = 24.0
	iconGap        = 12.0
	headingSize    = 20.0
	headingHeight  = 28.0
	headingGap     = 16.0
	bodySize       = 16.0
	bodyLine       = 24.0
	itemGap        = 8.0
	bulletIndent   = 20.0
	closingSize    = 18.0
	closingLine    = 28.0
	closingGap     = 16.0
	regulationSize = 14.0
	regulationLine = 20.0
	accentBar      = 4.0
	subtitleSize   = 14.0
	subtitleLine   = 20.0
	titleGap       = 8.0
	frameBorder    = 2.0
)

type fontSet struct {
	regular *truetype.Font
	bold    *truetype.Font
	italic  *truetype.Font
}

func loadFonts() (*fontSet, error) {
	regular, err := truetype.Parse(goregular.TTF)
	if err != nil {
		return nil, fmt.Errorf("parse regular font: %w", err)
	}
	bold, err := truetype.Parse(gobold.TTF)
	if err != nil {
		return nil, fmt.Errorf("parse bold font: %w", err)
	}
	italic, err := truetype.Parse(goitalic.TTF)
	if err != nil {
		return nil, fmt.Errorf("parse italic font: %w", err)
	}
	return &fontSet{regular: regular, bold: bold, italic: italic}, nil
}

// Faces are not safe for concurrent use, so every raster builds its own.
func newFace(f *truetype.Font, size float64) font.Face {
	return truetype.NewFace(f, &truetype.Options{Size: size, Hinting: font.HintingNone})
}

// Rasterizer draws blocks into bitmaps. It is safe for concurrent use.
type Rasterizer struct {
	width   float64
	palette Palette
	fonts   *fontSet
}

func NewRasterizer(width float64, palette Palette) (*Rasterizer, error) {
	if width <= 0 {
		width = DefaultWidth
	}
	fs, err := loadFonts()
	if err != nil {
		return nil, err
	}
	return &Rasterizer{width: width, palette: palette, fonts: fs}, nil
}

// Width is the CSS pixel width blocks are laid out at.
func (r *Rasterizer) Width() float64 { return r.width }

// Rasterize renders b at width*scale pixels on a transparent background.
func (r *Rasterizer) Rasterize(ctx context.Context, b Block, scale float64) (image.Image, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if scale <= 0 {
		scale = 1
	}
	switch b.Kind {
	case KindImage:
		return r.rasterImage(b, scale)
	case KindHeader:
		return r.rasterHeader(b, scale), nil
	case KindSection:
		return r.rasterSection(b, scale), nil
	case KindClosing:
		return r.rasterClosing(b, scale), nil
	}
	return nil, fmt.Errorf("rasterize %s: unsupported block kind %v", b.Marker, b.Kind)
}

// wrap breaks text into lines no wider than width using face metrics.
func wrap(face font.Face, text string, width float64) []string {
	if text == "" {
		return nil
	}
	m := gg.NewContext(1, 1)
	m.SetFontFace(face)
	return m.WordWrap(text, width)
}

func pixels(v, scale float64) int { return int(math.Ceil(v * scale)) }

type listItem struct {
	lines []string
}

func (r *Rasterizer) rasterSection(b Block, s float64) image.Image {
	w := r.width * s
	inner := w - 2*cardPadding*s

	heading := newFace(r.fonts.bold, headingSize*s)
	bodyFont := r.fonts.regular
	if b.Italic {
		bodyFont = r.fonts.italic
	}
	body := newFace(bodyFont, bodySize*s)

	paragraph := wrap(body, b.Paragraph, inner)
	items := make([]listItem, 0, len(b.Items))
	for _, it := range b.Items {
		items = append(items, listItem{lines: wrap(body, it, inner-bulletIndent*s)})
	}

	h := cardPadding + headingHeight + headingGap
	h += float64(len(paragraph)) * bodyLine
	for i, it := range items {
		if i > 0 {
			h += itemGap
		}
		h += float64(len(it.lines)) * bodyLine
	}
	h += cardPadding

	dc := gg.NewContext(int(math.Ceil(w)), pixels(h, s))
	r.drawCard(dc, w, h*s, s)

	// Heading row.
	x := cardPadding * s
	y := cardPadding * s
	cx, cy := x+iconSize*s/2, y+headingHeight*s/2
	dc.SetHexColor(r.palette.Accent)
	dc.DrawCircle(cx, cy, iconSize*s/2)
	dc.Fill()
	dc.SetFontFace(newFace(r.fonts.bold, 14*s))
	dc.SetHexColor("#ffffff")
	dc.DrawStringAnchored(b.Icon.Glyph(), cx, cy, 0.5, 0.5)

	dc.SetFontFace(heading)
	dc.SetHexColor(r.palette.Heading)
	dc.DrawStringAnchored(b.Heading, x+(iconSize+iconGap)*s, cy, 0, 0.5)
	y += (headingHeight + headingGap) * s

	dc.SetFontFace(body)
	dc.SetHexColor(r.palette.Text)
	for _, ln := range paragraph {
		dc.DrawStringAnchored(ln, x, y+bodyLine*s/2, 0, 0.5)
		y += bodyLine * s
	}
	for i, it := range items {
		if i > 0 {
			y += itemGap * s
		}
		dc.DrawStringAnchored("•", x+4*s, y+bodyLine*s/2, 0, 0.5)
		for _, ln := range it.lines {
			dc.DrawStringAnchored(ln, x+bulletIndent*s, y+bodyLine*s/2, 0, 0.5)
			y += bodyLine * s
		}
	}
	return dc.Image()
}

func (r *Rasterizer) rasterClosing(b Block, s float64) image.Image {
	w := r.width * s
	inner := w - 2*cardPadding*s

	msgFace := newFace(r.fonts.bold, closingSize*s)
	regFace := newFace(r.fonts.regular, regulationSize*s)
	msg := wrap(msgFace, b.Paragraph, inner)
	reg := "Norma Relacionada: " + b.Regulation

	h := accentBar + cardPadding + float64(len(msg))*closingLine + closingGap + regulationLine + cardPadding
	dc := gg.NewContext(int(math.Ceil(w)), pixels(h, s))
	r.drawCard(dc, w, h*s, s)

	dc.SetHexColor(r.palette.Border)
	dc.DrawRectangle(cardRadius*s, 0, w-2*cardRadius*s, accentBar*s)
	dc.Fill()

	y := (accentBar + cardPadding) * s
	dc.SetFontFace(msgFace)
	dc.SetHexColor(r.palette.Heading)
	for _, ln := range msg {
		dc.DrawStringAnchored(ln, w/2, y+closingLine*s/2, 0.5, 0.5)
		y += closingLine * s
	}
	y += closingGap * s
	dc.SetFontFace(regFace)
	dc.SetHexColor(r.palette.Muted)
	dc.DrawStringAnchored(reg, w/2, y+regulationLine*s/2, 0.5, 0.5)
	return dc.Image()
}

func (r *Rasterizer) rasterHeader(b Block, s float64) image.Image {
	w := r.width * s
	sub := newFace(r.fonts.bold, subtitleSize*s)
	titleFace := newFace(r.fonts.bold, b.Bucket.ScreenSize()*s)
	titleLine := b.Bucket.ScreenSize() * 1.25
	lines := wrap(titleFace, b.Title, w)

	h := subtitleLine + titleGap + float64(len(lines))*titleLine
	dc := gg.NewContext(int(math.Ceil(w)), pixels(h, s))

	dc.SetFontFace(sub)
	dc.SetHexColor(r.palette.Accent)
	dc.DrawStringAnchored(b.Subtitle, w/2, subtitleLine*s/2, 0.5, 0.5)

	y := (subtitleLine + titleGap) * s
	dc.SetFontFace(titleFace)
	dc.SetHexColor(r.palette.Heading)
	for _, ln := range lines {
		dc.DrawStringAnchored(ln, w/2, y+titleLine*s/2, 0.5, 0.5)
		y += titleLine * s
	}
	return dc.Image()
}

func (r *Rasterizer) rasterImage(b Block, s float64) (image.Image, error) {
	src, _, err := image.Decode(bytes.NewReader(b.Image.Data))
	if err != nil {
		return nil, fmt.Errorf("decode block image: %w", err)
	}
	side := int(math.Ceil(r.width * s))
	dc := gg.NewContext(side, side)

	dc.SetHexColor(r.palette.Frame)
	dc.DrawRoundedRectangle(0, 0, float64(side), float64(side), cardRadius*s)
	dc.Fill()

	inset := frameBorder * s
	box := float64(side) - 2*inset
	fitted := fitInto(src, int(box))
	off := image.Pt(
		int(inset)+(int(box)-fitted.Bounds().Dx())/2,
		int(inset)+(int(box)-fitted.Bounds().Dy())/2,
	)
	dc.DrawImage(fitted, off.X, off.Y)

	dc.SetHexColor(r.palette.Border)
	dc.SetLineWidth(inset)
	dc.DrawRoundedRectangle(inset/2, inset/2, float64(side)-inset, float64(side)-inset, cardRadius*s)
	dc.Stroke()
	return dc.Image(), nil
}

// fitInto scales src so its longer side is box pixels, keeping aspect ratio.
func fitInto(src image.Image, box int) image.Image {
	sb := src.Bounds()
	if sb.Dx() == 0 || sb.Dy() == 0 || box <= 0 {
		return image.NewRGBA(image.Rect(0, 0, 0, 0))
	}
	ratio := math.Min(float64(box)/float64(sb.Dx()), float64(box)/float64(sb.Dy()))
	dw := max(1, int(math.Round(float64(sb.Dx())*ratio)))
	dh := max(1, int(math.Round(float64(sb.Dy())*ratio)))
	dst := image.NewRGBA(image.Rect(0, 0, dw, dh))
	draw.CatmullRom.Scale(dst, dst.Bounds(), src, sb, draw.Over, nil)
	return dst
}

func (r *Rasterizer) drawCard(dc *gg.Context, w, h, s float64) {
	dc.SetHexColor(r.palette.Card)
	dc.DrawRoundedRectangle(0, 0, w, h, cardRadius*s)
	dc.Fill()
}
