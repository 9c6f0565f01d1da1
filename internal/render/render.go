// Package render maps a generated DDS onto an ordered tree of marked blocks.
// The same blocks back the HTML page and the exported document.
package render

import (
	"github.com/thywilljoshua/ddsgen/internal/dds"
)

// Subtitle is the fixed kicker printed above every title.
const Subtitle = "Diálogo Diário de Segurança"

type Kind int

const (
	KindImage Kind = iota
	KindHeader
	KindSection
	KindClosing
)

func (k Kind) String() string {
	switch k {
	case KindImage:
		return "image"
	case KindHeader:
		return "header"
	case KindSection:
		return "section"
	case KindClosing:
		return "closing"
	}
	return "unknown"
}

// Stable block markers.
const (
	MarkerImage        = "pdf-image-block"
	MarkerHeader       = "pdf-header"
	MarkerIntroduction = "introducao"
	MarkerCase         = "caso-real"
	MarkerKeyPoints    = "pontos-chave"
	MarkerPrevention   = "como-prevenir"
	MarkerQuestions    = "perguntas"
	MarkerClosing      = "mensagem-final"
)

// Block is one independently rasterizable region of the report.
type Block struct {
	Kind   Kind
	Marker string

	// Header blocks.
	Subtitle string
	Title    string
	Bucket   dds.TitleBucket

	// Section blocks.
	Heading   string
	Icon      Icon
	Paragraph string
	Italic    bool
	Items     []string

	// Closing block: Paragraph carries the message.
	Regulation string

	// Image block.
	Image dds.Image
}

// Document is the ordered block tree for one result.
type Document struct {
	Title  string
	Blocks []Block
}

// Header returns the header block, if any.
func (d Document) Header() (Block, bool) {
	for _, b := range d.Blocks {
		if b.Kind == KindHeader {
			return b, true
		}
	}
	return Block{}, false
}

// Body returns every block except the header, in document order.
func (d Document) Body() []Block {
	out := make([]Block, 0, len(d.Blocks))
	for _, b := range d.Blocks {
		if b.Kind != KindHeader {
			out = append(out, b)
		}
	}
	return out
}

// Build lays out the report. The image block is omitted when img is empty.
func Build(r dds.Report, img dds.Image) Document {
	title := Clean(r.Title)
	doc := Document{Title: title}

	if len(img.Data) > 0 {
		doc.Blocks = append(doc.Blocks, Block{Kind: KindImage, Marker: MarkerImage, Image: img})
	}

	doc.Blocks = append(doc.Blocks,
		Block{
			Kind:     KindHeader,
			Marker:   MarkerHeader,
			Subtitle: Subtitle,
			Title:    title,
			Bucket:   dds.BucketForTitle(title),
		},
		Block{
			Kind:      KindSection,
			Marker:    MarkerIntroduction,
			Heading:   "Introdução",
			Icon:      IconInfo,
			Paragraph: Clean(r.Introduction),
		},
		Block{
			Kind:      KindSection,
			Marker:    MarkerCase,
			Heading:   "Caso Real para Reflexão",
			Icon:      IconClock,
			Paragraph: `"` + Clean(r.CaseNarrative) + `"`,
			Italic:    true,
		},
		Block{
			Kind:    KindSection,
			Marker:  MarkerKeyPoints,
			Heading: "Pontos-Chave",
			Icon:    IconClipboard,
			Items:   CleanAll(r.KeyPoints),
		},
		Block{
			Kind:    KindSection,
			Marker:  MarkerPrevention,
			Heading: "Como Prevenir?",
			Icon:    IconCheck,
			Items:   CleanAll(r.Prevention),
		},
		Block{
			Kind:    KindSection,
			Marker:  MarkerQuestions,
			Heading: "Perguntas para a Equipe",
			Icon:    IconQuestion,
			Items:   CleanAll(r.Questions),
		},
		Block{
			Kind:       KindClosing,
			Marker:     MarkerClosing,
			Paragraph:  Clean(r.ClosingMessage),
			Regulation: Clean(r.Regulation),
		},
	)
	return doc
}
