// Package export turns a rendered DDS into a paginated PDF. The header is
// written as native text; every other block is rasterized and sliced across
// fixed-size pages.
package export

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"image"
	"io"
	"log/slog"
	"math"
	"runtime"
	"time"

	"golang.org/x/image/draw"
	"golang.org/x/sync/errgroup"

	"github.com/thywilljoshua/ddsgen/internal/dds"
	"github.com/thywilljoshua/ddsgen/internal/render"
)

// ErrNoContent is returned when there is nothing to export.
var ErrNoContent = errors.New("nothing to export")

// Error reports a rasterization or assembly failure.
type Error struct {
	Op  string
	Err error
}

func (e *Error) Error() string { return fmt.Sprintf("export %s: %v", e.Op, e.Err) }

func (e *Error) Unwrap() error { return e.Err }

// BlockRasterizer captures a block as a bitmap.
type BlockRasterizer interface {
	Rasterize(ctx context.Context, b render.Block, scale float64) (image.Image, error)
}

// DocumentFactory creates an empty document for a title.
type DocumentFactory func(geo Geometry, title string) Document

var (
	SubtitleStyle = TextStyle{Family: "Helvetica", Bold: true, Size: 10, Color: "#059669"}
	titleColor    = "#1f2937"
)

// TitleStyle is the native header style for a title bucket.
func TitleStyle(b dds.TitleBucket) TextStyle {
	return TextStyle{Family: "Helvetica", Bold: true, Size: b.DocumentSize(), Color: titleColor}
}

type Options struct {
	Geometry Geometry
	// Scale is the raster oversampling factor.
	Scale float64
	// ImageWidthRatio narrows the image block relative to the content width.
	ImageWidthRatio float64
	BlockGap        float64
	SubtitleAdvance float64
	TitleGap        float64
	// MinRemaining is the smallest leftover page height worth slicing into.
	MinRemaining float64
	// Optimize rewrites the finished file through pdfcpu.
	Optimize    bool
	Parallelism int
}

func DefaultOptions() Options {
	return Options{
		Geometry:        A4,
		Scale:           2,
		ImageWidthRatio: 0.8,
		BlockGap:        5,
		SubtitleAdvance: 6,
		TitleGap:        8,
		MinRemaining:    1,
		Optimize:        true,
		Parallelism:     runtime.NumCPU(),
	}
}

// Summary describes a finished export.
type Summary struct {
	Pages  int
	Blocks int
	Slices int
}

type Exporter struct {
	raster BlockRasterizer
	newDoc DocumentFactory
	opts   Options
	logger *slog.Logger
}

func New(raster BlockRasterizer, opts Options, logger *slog.Logger) *Exporter {
	if logger == nil {
		logger = slog.Default()
	}
	if opts.Parallelism <= 0 {
		opts.Parallelism = 1
	}
	return &Exporter{raster: raster, newDoc: NewPDF, opts: opts, logger: logger}
}

// WithDocumentFactory swaps the page sink, mainly for layout tests.
func (e *Exporter) WithDocumentFactory(f DocumentFactory) *Exporter {
	e.newDoc = f
	return e
}

// Export lays doc out and writes the finished file to w.
func (e *Exporter) Export(ctx context.Context, doc render.Document, w io.Writer) (Summary, error) {
	start := time.Now()
	d, sum, err := e.Build(ctx, doc)
	if err != nil {
		return Summary{}, err
	}

	if !e.opts.Optimize {
		if err := d.Output(w); err != nil {
			return Summary{}, &Error{Op: "serialize", Err: err}
		}
	} else {
		var raw bytes.Buffer
		if err := d.Output(&raw); err != nil {
			return Summary{}, &Error{Op: "serialize", Err: err}
		}
		if err := Optimize(bytes.NewReader(raw.Bytes()), w); err != nil {
			return Summary{}, &Error{Op: "optimize", Err: err}
		}
	}

	e.logger.InfoContext(ctx, "document exported",
		"title", doc.Title,
		"pages", sum.Pages,
		"blocks", sum.Blocks,
		"slices", sum.Slices,
		"duration", time.Since(start).Round(time.Millisecond))
	return sum, nil
}

// Build lays doc out into a fresh Document without serializing it.
func (e *Exporter) Build(ctx context.Context, doc render.Document) (Document, Summary, error) {
	if len(doc.Blocks) == 0 {
		return nil, Summary{}, ErrNoContent
	}

	body := doc.Body()
	rasters, err := e.rasterizeAll(ctx, body)
	if err != nil {
		return nil, Summary{}, &Error{Op: "rasterize", Err: err}
	}

	d := e.newDoc(e.opts.Geometry, doc.Title)
	geo := d.Geometry()
	contentW := geo.ContentWidth()

	d.AddPage()
	l := &layout{doc: d, geo: geo, y: geo.Margin, minRemaining: e.opts.MinRemaining}

	if hdr, ok := doc.Header(); ok {
		d.CenteredText(hdr.Subtitle, SubtitleStyle, l.y, contentW)
		l.y += e.opts.SubtitleAdvance
		h := d.CenteredText(hdr.Title, TitleStyle(hdr.Bucket), l.y, contentW)
		l.y += h + e.opts.TitleGap
	}

	sum := Summary{Blocks: len(body)}
	for i, b := range body {
		targetW, x := contentW, geo.Margin
		if b.Kind == render.KindImage {
			targetW = contentW * e.opts.ImageWidthRatio
			x = (geo.PageWidth - targetW) / 2
		}
		n, err := l.place(rasters[i], x, targetW)
		if err != nil {
			return nil, Summary{}, &Error{Op: "assemble " + b.Marker, Err: err}
		}
		sum.Slices += n
		l.y += e.opts.BlockGap
	}
	sum.Pages = d.PageCount()
	return d, sum, nil
}

func (e *Exporter) rasterizeAll(ctx context.Context, blocks []render.Block) ([]image.Image, error) {
	out := make([]image.Image, len(blocks))
	eg, egCtx := errgroup.WithContext(ctx)
	eg.SetLimit(e.opts.Parallelism)
	for i, b := range blocks {
		eg.Go(func() error {
			img, err := e.raster.Rasterize(egCtx, b, e.opts.Scale)
			if err != nil {
				return fmt.Errorf("block %s: %w", b.Marker, err)
			}
			out[i] = img
			return nil
		})
	}
	if err := eg.Wait(); err != nil {
		return nil, err
	}
	return out, nil
}

// layout tracks the vertical cursor on the current page.
type layout struct {
	doc          Document
	geo          Geometry
	y            float64
	minRemaining float64
}

func (l *layout) newPage() {
	l.doc.AddPage()
	l.y = l.geo.Margin
}

// place puts one raster at width targetW, slicing it across pages. It returns
// the number of slices written.
func (l *layout) place(img image.Image, x, targetW float64) (int, error) {
	b := img.Bounds()
	pxW, pxH := b.Dx(), b.Dy()
	if pxW == 0 || pxH == 0 {
		return 0, nil
	}
	perPx := targetW / float64(pxW)
	total := float64(pxH) * perPx
	bottom := l.geo.PageHeight - l.geo.Margin

	// Start a fresh page rather than split a block that would fit on one.
	// Blocks taller than a page skip this and slice from the cursor.
	if l.y > l.geo.Margin && l.y+total > bottom && total <= l.geo.ContentHeight() {
		l.newPage()
	}

	slices := 0
	for srcY := 0; srcY < pxH; {
		remaining := bottom - l.y
		if remaining < l.minRemaining {
			l.newPage()
			continue
		}
		fit := int(math.Floor(remaining/perPx + 1e-9))
		fit = max(fit, 1)
		rows := min(fit, pxH-srcY)

		h := float64(rows) * perPx
		if err := l.doc.Image(cropRows(img, srcY, srcY+rows), x, l.y, targetW, h); err != nil {
			return slices, err
		}
		slices++
		srcY += rows
		l.y += h
	}
	return slices, nil
}

type subImager interface {
	SubImage(r image.Rectangle) image.Image
}

// cropRows returns rows [y0, y1) of img.
func cropRows(img image.Image, y0, y1 int) image.Image {
	b := img.Bounds()
	r := image.Rect(b.Min.X, b.Min.Y+y0, b.Max.X, b.Min.Y+y1)
	if si, ok := img.(subImager); ok {
		return si.SubImage(r)
	}
	dst := image.NewRGBA(image.Rect(0, 0, r.Dx(), r.Dy()))
	draw.Draw(dst, dst.Bounds(), img, r.Min, draw.Src)
	return dst
}
