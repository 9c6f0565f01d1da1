// Package dds holds the Daily Safety Dialogue (DDS) domain types and the
// remote content client that produces them.
package dds

import (
	"encoding/base64"
	"time"
	"unicode/utf8"
)

// Target list sizes requested from the model.
const (
	KeyPointsCount    = 4
	PreventionCount   = 3
	QuestionsCount    = 3
	MaxTitleLength    = 60
	GeneralRegulation = "Geral"
)

// Report is the structured text of a DDS.
type Report struct {
	Title          string   `json:"titulo" yaml:"titulo"`
	Introduction   string   `json:"introducao" yaml:"introducao"`
	CaseNarrative  string   `json:"caso_real" yaml:"caso_real"`
	KeyPoints      []string `json:"pontos_chave" yaml:"pontos_chave"`
	Prevention     []string `json:"como_prevenir" yaml:"como_prevenir"`
	Questions      []string `json:"perguntas_reflexao" yaml:"perguntas_reflexao"`
	ClosingMessage string   `json:"mensagem_final" yaml:"mensagem_final"`
	Regulation     string   `json:"nr_relacionada" yaml:"nr_relacionada"`
}

// Image is a generated illustration.
type Image struct {
	Data     []byte
	MIMEType string
}

// DataURI encodes the image for inline embedding.
func (i Image) DataURI() string {
	if len(i.Data) == 0 {
		return ""
	}
	mt := i.MIMEType
	if mt == "" {
		mt = "image/png"
	}
	return "data:" + mt + ";base64," + base64.StdEncoding.EncodeToString(i.Data)
}

// Result pairs a report with the image generated from its title.
type Result struct {
	ID        string
	Report    Report
	Image     Image
	CreatedAt time.Time
}

// TitleBucket is the presentational size class chosen from a title's length.
type TitleBucket int

const (
	TitleLarge TitleBucket = iota
	TitleMedium
	TitleSmall
)

// BucketForTitle maps a title to its size bucket: more than 45 characters is
// small, more than 30 is medium, anything else large.
func BucketForTitle(title string) TitleBucket {
	n := utf8.RuneCountInString(title)
	switch {
	case n > 45:
		return TitleSmall
	case n > 30:
		return TitleMedium
	default:
		return TitleLarge
	}
}

// CSSClass is the on-screen utility class for the bucket.
func (b TitleBucket) CSSClass() string {
	switch b {
	case TitleSmall:
		return "text-xl"
	case TitleMedium:
		return "text-2xl"
	default:
		return "text-3xl"
	}
}

// ScreenSize is the on-screen font size in CSS pixels.
func (b TitleBucket) ScreenSize() float64 {
	switch b {
	case TitleSmall:
		return 20
	case TitleMedium:
		return 24
	default:
		return 30
	}
}

// DocumentSize is the exported document font size in points.
func (b TitleBucket) DocumentSize() float64 {
	switch b {
	case TitleSmall:
		return 18
	case TitleMedium:
		return 20
	default:
		return 24
	}
}

func (b TitleBucket) String() string {
	switch b {
	case TitleSmall:
		return "small"
	case TitleMedium:
		return "medium"
	default:
		return "large"
	}
}
