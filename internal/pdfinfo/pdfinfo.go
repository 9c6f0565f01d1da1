// Package pdfinfo reads back exported documents: page counts and whatever
// native text they carry.
package pdfinfo

import (
	"fmt"
	"io"
	"math"
	"os"
	"strings"

	"github.com/pdfcpu/pdfcpu/pkg/api"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/model"
	rpdf "rsc.io/pdf"
)

// Info summarizes one PDF file.
type Info struct {
	Pages int      `json:"pages" yaml:"pages"`
	Text  []string `json:"text" yaml:"text"`
	// Validated is the page count pdfcpu reports after a relaxed validation.
	Validated int `json:"validated_pages" yaml:"validated_pages"`
}

// Lines returns the non-empty text lines of the first page. For an exported
// DDS that is the subtitle followed by the title.
func (i Info) Lines() []string {
	if len(i.Text) == 0 {
		return nil
	}
	var out []string
	for _, ln := range strings.Split(i.Text[0], "\n") {
		if ln = strings.TrimSpace(ln); ln != "" {
			out = append(out, ln)
		}
	}
	return out
}

func Inspect(path string) (Info, error) {
	f, err := os.Open(path)
	if err != nil {
		return Info{}, err
	}
	defer f.Close()
	st, err := f.Stat()
	if err != nil {
		return Info{}, err
	}
	return InspectReader(f, st.Size())
}

func InspectReader(r io.ReaderAt, size int64) (info Info, err error) {
	// rsc.io/pdf panics on some malformed content streams.
	defer func() {
		if p := recover(); p != nil {
			err = fmt.Errorf("read pdf: %v", p)
		}
	}()

	doc, err := rpdf.NewReader(r, size)
	if err != nil {
		return Info{}, fmt.Errorf("open pdf: %w", err)
	}
	info.Pages = doc.NumPage()
	info.Text = make([]string, info.Pages)
	for i := 1; i <= info.Pages; i++ {
		info.Text[i-1] = pageText(doc.Page(i))
	}

	conf := model.NewDefaultConfiguration()
	conf.ValidationMode = model.ValidationRelaxed
	n, err := api.PageCount(io.NewSectionReader(r, 0, size), conf)
	if err != nil {
		return Info{}, fmt.Errorf("validate pdf: %w", err)
	}
	info.Validated = n
	return info, nil
}

// pageText decodes the strings shown on p, starting a new line whenever the
// baseline moves. The content stream is walked directly because
// Page.Content drops spaces and fonts without /Widths never advance, so
// word boundaries would be lost.
func pageText(p rpdf.Page) string {
	strm := p.V.Key("Contents")
	if p.V.IsNull() || strm.IsNull() {
		return ""
	}
	var (
		b     strings.Builder
		enc   rpdf.TextEncoding
		y     float64
		lastY = math.NaN()
	)
	show := func(raw string) {
		if !math.IsNaN(lastY) && math.Abs(y-lastY) > 0.5 {
			b.WriteByte('\n')
		}
		lastY = y
		if enc == nil {
			b.WriteString(raw)
			return
		}
		b.WriteString(enc.Decode(raw))
	}
	rpdf.Interpret(strm, func(stk *rpdf.Stack, op string) {
		n := stk.Len()
		args := make([]rpdf.Value, n)
		for i := n - 1; i >= 0; i-- {
			args[i] = stk.Pop()
		}
		switch op {
		case "BT":
			y = 0
		case "Td", "TD":
			if n == 2 {
				y += args[1].Float64()
			}
		case "Tm":
			if n == 6 {
				y = args[5].Float64()
			}
		case "Tf":
			if n == 2 {
				enc = p.Font(args[0].Name()).Encoder()
			}
		case "Tj":
			if n == 1 {
				show(args[0].RawString())
			}
		case "TJ":
			if n == 1 {
				for i := 0; i < args[0].Len(); i++ {
					if v := args[0].Index(i); v.Kind() == rpdf.String {
						show(v.RawString())
					}
				}
			}
		}
	})
	return b.String()
}
