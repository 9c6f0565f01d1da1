package dds

import (
	"context"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/thywilljoshua/ddsgen/internal/ai"
)

const DefaultImageStyleSuffix = "no estilo de um filme de animação 3D, iluminação cinematográfica, cores vibrantes, como um filme da Pixar, arte digital"

const (
	imageMIMEType    = "image/png"
	imageAspectRatio = "1:1"
)

// Client turns a theme into a report and its illustration.
type Client struct {
	backend     ai.Backend
	styleSuffix string
	logger      *slog.Logger
	now         func() time.Time
}

type Option func(*Client)

// WithStyleSuffix overrides the stylistic descriptor appended to image prompts.
func WithStyleSuffix(s string) Option {
	return func(c *Client) {
		if s = strings.TrimSpace(s); s != "" {
			c.styleSuffix = s
		}
	}
}

func WithLogger(l *slog.Logger) Option {
	return func(c *Client) {
		if l != nil {
			c.logger = l
		}
	}
}

func NewClient(backend ai.Backend, opts ...Option) *Client {
	c := &Client{
		backend:     backend,
		styleSuffix: DefaultImageStyleSuffix,
		logger:      slog.Default(),
		now:         time.Now,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// GenerateReport asks the text model for a schema-conforming report.
func (c *Client) GenerateReport(ctx context.Context, prompt string) (Report, error) {
	text, err := c.backend.GenerateText(ctx, ai.TextRequest{
		Prompt:            prompt,
		SystemInstruction: SystemInstruction,
		ResponseMIMEType:  "application/json",
		Schema:            ReportSchema(),
	})
	if err != nil {
		return Report{}, err
	}
	text = strings.TrimSpace(text)
	if text == "" {
		return Report{}, ErrEmptyResponse
	}
	r, err := ParseReport(ai.ExtractJSON(text))
	if err != nil {
		return Report{}, err
	}
	if mm := r.cardinalityMismatches(); len(mm) > 0 {
		c.logger.WarnContext(ctx, "report list sizes differ from request", "mismatches", mm)
	}
	return r, nil
}

// ImagePrompt derives the image prompt from a report title.
func (c *Client) ImagePrompt(title string) string {
	return strings.TrimSpace(title) + ", " + c.styleSuffix
}

// GenerateImage requests a single square PNG illustrating the title.
func (c *Client) GenerateImage(ctx context.Context, title string) (Image, error) {
	imgs, err := c.backend.GenerateImages(ctx, ai.ImageRequest{
		Prompt:         c.ImagePrompt(title),
		NumberOfImages: 1,
		MIMEType:       imageMIMEType,
		AspectRatio:    imageAspectRatio,
	})
	if err != nil {
		return Image{}, err
	}
	if len(imgs) == 0 || len(imgs[0].Data) == 0 {
		return Image{}, ErrNoImageReturned
	}
	mt := imgs[0].MIMEType
	if mt == "" {
		mt = imageMIMEType
	}
	return Image{Data: imgs[0].Data, MIMEType: mt}, nil
}

// GenerateContent runs the report call and then the image call seeded with
// the generated title. Either failure aborts the whole operation.
func (c *Client) GenerateContent(ctx context.Context, prompt string) (Result, error) {
	start := c.now()

	report, err := c.GenerateReport(ctx, prompt)
	if err != nil {
		c.logger.ErrorContext(ctx, "report generation failed", "error", err)
		return Result{}, &GenerationError{Step: "report", Err: err}
	}

	img, err := c.GenerateImage(ctx, report.Title)
	if err != nil {
		c.logger.ErrorContext(ctx, "image generation failed", "title", report.Title, "error", err)
		return Result{}, &GenerationError{Step: "image", Err: err}
	}

	res := Result{
		ID:        uuid.NewString(),
		Report:    report,
		Image:     img,
		CreatedAt: c.now(),
	}
	c.logger.InfoContext(ctx, "content generated",
		"id", res.ID,
		"title", report.Title,
		"image_bytes", len(img.Data),
		"duration", res.CreatedAt.Sub(start).Round(time.Millisecond))
	return res, nil
}
