// Package controller holds the form state behind the DDS page: the prompt,
// the in-flight generation, the last result or error, and PDF export.
package controller

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/thywilljoshua/ddsgen/internal/dds"
	"github.com/thywilljoshua/ddsgen/internal/export"
	"github.com/thywilljoshua/ddsgen/internal/render"
)

// User-facing messages.
const (
	MsgValidation       = "Por favor, insira um prompt."
	MsgGenerationFailed = "Falha ao gerar o conteúdo. Tente novamente. Detalhes: "
	MsgExportFailed     = "Ocorreu um erro ao gerar o PDF. Tente novamente."
)

// Examples are the canned prompts offered next to the form.
var Examples = []string{
	"Trabalhador usando capacete e cinto de segurança em uma viga.",
	"Cientista em laboratório usando óculos de proteção e jaleco.",
	"Eletricista com luvas isolantes consertando fiação elétrica.",
}

var (
	ErrValidation       = errors.New("prompt is required")
	ErrNothingToExport  = errors.New("no result to export")
	ErrExportInProgress = errors.New("export already in progress")
	ErrExportFailed     = errors.New("export failed")
)

// Generator produces a complete result for a prompt.
type Generator interface {
	GenerateContent(ctx context.Context, prompt string) (dds.Result, error)
}

// Exporter writes a rendered document as a PDF.
type Exporter interface {
	Export(ctx context.Context, doc render.Document, w io.Writer) (export.Summary, error)
}

// State is a snapshot of the form.
type State struct {
	Prompt    string
	Loading   bool
	Result    *dds.Result
	Error     string
	Exporting bool
	Notice    string
}

type Controller struct {
	gen    Generator
	exp    Exporter
	logger *slog.Logger

	mu    sync.Mutex
	state State
	wg    sync.WaitGroup
}

func New(gen Generator, exp Exporter, logger *slog.Logger) *Controller {
	if logger == nil {
		logger = slog.Default()
	}
	return &Controller{gen: gen, exp: exp, logger: logger}
}

func (c *Controller) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	s := c.state
	if s.Result != nil {
		r := *s.Result
		s.Result = &r
	}
	return s
}

func (c *Controller) SetPrompt(p string) {
	c.mu.Lock()
	c.state.Prompt = p
	c.mu.Unlock()
}

// Submit validates prompt and runs the generation to completion.
func (c *Controller) Submit(ctx context.Context, prompt string) error {
	if err := c.begin(prompt); err != nil {
		return err
	}
	return c.run(ctx, prompt)
}

// Start validates prompt and runs the generation in the background. The
// generation outlives ctx's cancellation.
func (c *Controller) Start(ctx context.Context, prompt string) error {
	if err := c.begin(prompt); err != nil {
		return err
	}
	c.wg.Add(1)
	go func() {
		defer c.wg.Done()
		_ = c.run(context.WithoutCancel(ctx), prompt)
	}()
	return nil
}

// Wait blocks until background generations finish.
func (c *Controller) Wait() { c.wg.Wait() }

func (c *Controller) begin(prompt string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.state.Prompt = prompt
	if strings.TrimSpace(prompt) == "" {
		c.state.Error = MsgValidation
		return ErrValidation
	}
	c.state.Result = nil
	c.state.Error = ""
	c.state.Loading = true
	return nil
}

func (c *Controller) run(ctx context.Context, prompt string) error {
	start := time.Now()
	res, err := c.gen.GenerateContent(ctx, prompt)

	c.mu.Lock()
	defer c.mu.Unlock()
	c.state.Loading = false
	if err != nil {
		c.state.Result = nil
		c.state.Error = MsgGenerationFailed + err.Error()
		c.logger.ErrorContext(ctx, "generation failed", "prompt_len", len(prompt), "error", err)
		return err
	}
	c.state.Result = &res
	c.state.Error = ""
	c.logger.InfoContext(ctx, "generation finished",
		"id", res.ID,
		"title", res.Report.Title,
		"duration", time.Since(start).Round(time.Millisecond))
	return nil
}

// Export writes the current result as a PDF and returns its file name.
func (c *Controller) Export(ctx context.Context, w io.Writer) (string, error) {
	return c.ExportResult(ctx, "", w)
}

// ExportResult is Export restricted to the result with the given id. An empty
// id matches any result.
func (c *Controller) ExportResult(ctx context.Context, id string, w io.Writer) (string, error) {
	c.mu.Lock()
	if c.state.Result == nil || (id != "" && c.state.Result.ID != id) {
		c.mu.Unlock()
		return "", ErrNothingToExport
	}
	if c.state.Exporting {
		c.mu.Unlock()
		return "", ErrExportInProgress
	}
	res := *c.state.Result
	c.state.Exporting = true
	c.state.Notice = ""
	c.mu.Unlock()

	defer func() {
		c.mu.Lock()
		c.state.Exporting = false
		c.mu.Unlock()
	}()

	doc := render.Build(res.Report, res.Image)
	name := export.FileName(doc.Title)

	// Buffer so a failed export never leaves a partial file behind.
	var buf bytes.Buffer
	if err := c.assemble(ctx, doc, &buf); err != nil {
		c.fail(ctx, err)
		return "", fmt.Errorf("%w: %w", ErrExportFailed, err)
	}
	if _, err := buf.WriteTo(w); err != nil {
		c.fail(ctx, err)
		return "", fmt.Errorf("%w: %w", ErrExportFailed, err)
	}
	return name, nil
}

// assemble runs the exporter, turning a panic inside the PDF stack into an
// error so the notice still gets set.
func (c *Controller) assemble(ctx context.Context, doc render.Document, w io.Writer) (err error) {
	defer func() {
		if p := recover(); p != nil {
			err = fmt.Errorf("export panicked: %v", p)
		}
	}()
	_, err = c.exp.Export(ctx, doc, w)
	return err
}

func (c *Controller) fail(ctx context.Context, err error) {
	c.logger.ErrorContext(ctx, "export failed", "error", err)
	c.mu.Lock()
	c.state.Notice = MsgExportFailed
	c.mu.Unlock()
}

func (c *Controller) DismissNotice() {
	c.mu.Lock()
	c.state.Notice = ""
	c.mu.Unlock()
}
