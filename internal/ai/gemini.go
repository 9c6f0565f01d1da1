package ai

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	genai "google.golang.org/genai"
)

const (
	DefaultTextModel  = "gemini-2.5-flash"
	DefaultImageModel = "imagen-4.0-generate-001"
)

type Gemini struct {
	client     *genai.Client
	textModel  string
	imageModel string
	logger     *slog.Logger
}

func NewGemini(ctx context.Context, apiKey, textModel, imageModel string) (*Gemini, error) {
	if apiKey == "" {
		return nil, errors.New("missing GEMINI_API_KEY")
	}
	if textModel == "" {
		textModel = DefaultTextModel
	}
	if imageModel == "" {
		imageModel = DefaultImageModel
	}
	c, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("genai.NewClient: %w", err)
	}
	return &Gemini{client: c, textModel: textModel, imageModel: imageModel, logger: slog.Default()}, nil
}

// WithLogger replaces the logger used for request tracing.
func (g *Gemini) WithLogger(l *slog.Logger) *Gemini {
	if l != nil {
		g.logger = l
	}
	return g
}

func (g *Gemini) GenerateText(ctx context.Context, req TextRequest) (string, error) {
	cfg := &genai.GenerateContentConfig{
		ResponseMIMEType: req.ResponseMIMEType,
		ResponseSchema:   req.Schema,
	}
	if req.SystemInstruction != "" {
		cfg.SystemInstruction = genai.NewContentFromText(req.SystemInstruction, genai.RoleUser)
	}
	g.logger.DebugContext(ctx, "gemini text request", "model", g.textModel, "prompt_len", len(req.Prompt))

	res, err := g.client.Models.GenerateContent(ctx, g.textModel, genai.Text(req.Prompt), cfg)
	if err != nil {
		return "", fmt.Errorf("gemini API call failed: %w", err)
	}
	return res.Text(), nil
}

func (g *Gemini) GenerateImages(ctx context.Context, req ImageRequest) ([]Image, error) {
	cfg := &genai.GenerateImagesConfig{
		NumberOfImages: int32(req.NumberOfImages),
		OutputMIMEType: req.MIMEType,
		AspectRatio:    req.AspectRatio,
	}
	g.logger.DebugContext(ctx, "gemini image request", "model", g.imageModel, "prompt_len", len(req.Prompt))

	res, err := g.client.Models.GenerateImages(ctx, g.imageModel, req.Prompt, cfg)
	if err != nil {
		return nil, fmt.Errorf("imagen API call failed: %w", err)
	}
	var out []Image
	for _, gi := range res.GeneratedImages {
		if gi == nil || gi.Image == nil || len(gi.Image.ImageBytes) == 0 {
			continue
		}
		mt := gi.Image.MIMEType
		if mt == "" {
			mt = req.MIMEType
		}
		out = append(out, Image{Data: gi.Image.ImageBytes, MIMEType: mt})
	}
	return out, nil
}
