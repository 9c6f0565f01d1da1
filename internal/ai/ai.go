package ai

import (
	"context"

	genai "google.golang.org/genai"
)

// TextRequest describes a single JSON-mode text generation call.
type TextRequest struct {
	Prompt            string
	SystemInstruction string
	ResponseMIMEType  string
	Schema            *genai.Schema
}

// ImageRequest describes a single image generation call.
type ImageRequest struct {
	Prompt         string
	NumberOfImages int
	MIMEType       string
	AspectRatio    string
}

// Image is one generated image payload.
type Image struct {
	Data     []byte
	MIMEType string
}

// Backend is the remote model surface the rest of the app talks to.
type Backend interface {
	GenerateText(ctx context.Context, req TextRequest) (string, error)
	GenerateImages(ctx context.Context, req ImageRequest) ([]Image, error)
}
