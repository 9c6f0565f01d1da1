package controller

import (
	"bytes"
	"context"
	"errors"
	"image"
	"image/color"
	"image/png"
	"io"
	"slices"
	"strings"
	"sync"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/thywilljoshua/ddsgen/internal/ai"
	"github.com/thywilljoshua/ddsgen/internal/dds"
	"github.com/thywilljoshua/ddsgen/internal/export"
	"github.com/thywilljoshua/ddsgen/internal/pdfinfo"
	"github.com/thywilljoshua/ddsgen/internal/render"
)

type fakeGenerator struct {
	mu      sync.Mutex
	calls   []string
	res     dds.Result
	err     error
	release chan struct{}
}

func (f *fakeGenerator) GenerateContent(_ context.Context, prompt string) (dds.Result, error) {
	f.mu.Lock()
	f.calls = append(f.calls, prompt)
	f.mu.Unlock()
	if f.release != nil {
		<-f.release
	}
	return f.res, f.err
}

func (f *fakeGenerator) callCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.calls)
}

type fakeExporter struct {
	calls   int
	err     error
	panics  bool
	started chan struct{}
	release chan struct{}
}

func (f *fakeExporter) Export(_ context.Context, doc render.Document, w io.Writer) (export.Summary, error) {
	f.calls++
	if f.started != nil {
		close(f.started)
	}
	if f.release != nil {
		<-f.release
	}
	if f.panics {
		panic("index out of range")
	}
	if f.err != nil {
		return export.Summary{}, f.err
	}
	_, err := io.WriteString(w, "%PDF-"+doc.Title)
	return export.Summary{Pages: 1}, err
}

func sampleResult() dds.Result {
	return dds.Result{
		ID:     "11111111-2222-3333-4444-555555555555",
		Report: dds.Report{Title: "Andaime seguro", Introduction: "Intro"},
	}
}

func TestSubmit_BlankPrompt(t *testing.T) {
	for _, prompt := range []string{"", "   ", "\n\t "} {
		gen := &fakeGenerator{}
		c := New(gen, &fakeExporter{}, nil)

		err := c.Submit(context.Background(), prompt)
		if !errors.Is(err, ErrValidation) {
			t.Fatalf("Submit(%q) err = %v, want ErrValidation", prompt, err)
		}
		if n := gen.callCount(); n != 0 {
			t.Errorf("Submit(%q) made %d calls, want 0", prompt, n)
		}
		st := c.State()
		if st.Error != MsgValidation || st.Loading || st.Result != nil {
			t.Errorf("Submit(%q) state = %+v", prompt, st)
		}
	}
}

func TestStart_BlankPromptIsSynchronous(t *testing.T) {
	gen := &fakeGenerator{}
	c := New(gen, &fakeExporter{}, nil)
	if err := c.Start(context.Background(), "  "); !errors.Is(err, ErrValidation) {
		t.Fatalf("err = %v, want ErrValidation", err)
	}
	c.Wait()
	if gen.callCount() != 0 {
		t.Error("blank prompt reached the generator")
	}
}

func TestSubmit_Success(t *testing.T) {
	gen := &fakeGenerator{res: sampleResult()}
	c := New(gen, &fakeExporter{}, nil)

	if err := c.Submit(context.Background(), "andaime"); err != nil {
		t.Fatalf("Submit: %v", err)
	}
	want := State{Prompt: "andaime", Result: ptr(sampleResult())}
	if diff := cmp.Diff(want, c.State()); diff != "" {
		t.Errorf("state mismatch (-want +got):\n%s", diff)
	}
}

func TestSubmit_FailureEndState(t *testing.T) {
	tests := []struct {
		name string
		err  error
	}{
		{"report step", &dds.GenerationError{Step: "report", Err: errors.New("quota exceeded")}},
		{"image step", &dds.GenerationError{Step: "image", Err: dds.ErrNoImageReturned}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			gen := &fakeGenerator{res: sampleResult()}
			c := New(gen, &fakeExporter{}, nil)
			if err := c.Submit(context.Background(), "primeiro"); err != nil {
				t.Fatalf("first Submit: %v", err)
			}

			gen.err = tt.err
			if err := c.Submit(context.Background(), "segundo"); !errors.Is(err, tt.err) {
				t.Fatalf("err = %v, want %v", err, tt.err)
			}
			st := c.State()
			if st.Result != nil || st.Loading {
				t.Errorf("state = %+v, want no result and not loading", st)
			}
			if want := MsgGenerationFailed + tt.err.Error(); st.Error != want {
				t.Errorf("error = %q, want %q", st.Error, want)
			}
		})
	}
}

func TestStart_LoadingUntilDone(t *testing.T) {
	gen := &fakeGenerator{res: sampleResult(), release: make(chan struct{})}
	c := New(gen, &fakeExporter{}, nil)

	ctx, cancel := context.WithCancel(context.Background())
	if err := c.Start(ctx, "andaime"); err != nil {
		t.Fatalf("Start: %v", err)
	}
	cancel()

	if st := c.State(); !st.Loading || st.Result != nil || st.Error != "" {
		t.Errorf("state while loading = %+v", st)
	}
	close(gen.release)
	c.Wait()

	st := c.State()
	if st.Loading || st.Result == nil {
		t.Errorf("state after Wait = %+v", st)
	}
}

func TestExport_NothingToExport(t *testing.T) {
	exp := &fakeExporter{}
	c := New(&fakeGenerator{}, exp, nil)

	var buf bytes.Buffer
	if _, err := c.Export(context.Background(), &buf); !errors.Is(err, ErrNothingToExport) {
		t.Fatalf("err = %v, want ErrNothingToExport", err)
	}
	if exp.calls != 0 || buf.Len() != 0 {
		t.Errorf("exporter calls = %d, bytes = %d", exp.calls, buf.Len())
	}
}

func TestExportResult_StaleID(t *testing.T) {
	exp := &fakeExporter{}
	c := New(&fakeGenerator{res: sampleResult()}, exp, nil)
	if err := c.Submit(context.Background(), "andaime"); err != nil {
		t.Fatal(err)
	}
	if _, err := c.ExportResult(context.Background(), "other", io.Discard); !errors.Is(err, ErrNothingToExport) {
		t.Fatalf("err = %v, want ErrNothingToExport", err)
	}
	name, err := c.ExportResult(context.Background(), sampleResult().ID, io.Discard)
	if err != nil {
		t.Fatalf("ExportResult: %v", err)
	}
	if name != "andaimeseguro.pdf" {
		t.Errorf("name = %q", name)
	}
}

func TestExport_FailureSetsNotice(t *testing.T) {
	boom := errors.New("boom")
	exp := &fakeExporter{err: boom}
	c := New(&fakeGenerator{res: sampleResult()}, exp, nil)
	if err := c.Submit(context.Background(), "andaime"); err != nil {
		t.Fatal(err)
	}

	var buf bytes.Buffer
	_, err := c.Export(context.Background(), &buf)
	if !errors.Is(err, ErrExportFailed) || !errors.Is(err, boom) {
		t.Fatalf("err = %v, want ErrExportFailed wrapping boom", err)
	}
	if buf.Len() != 0 {
		t.Errorf("wrote %d bytes on failure", buf.Len())
	}
	st := c.State()
	if st.Notice != MsgExportFailed || st.Exporting {
		t.Errorf("state = %+v", st)
	}
	if st.Result == nil || st.Result.Report.Title != "Andaime seguro" {
		t.Errorf("result changed after failed export: %+v", st.Result)
	}

	c.DismissNotice()
	if st := c.State(); st.Notice != "" {
		t.Errorf("notice after dismiss = %q", st.Notice)
	}
}

func TestExport_PanicSetsNotice(t *testing.T) {
	c := New(&fakeGenerator{res: sampleResult()}, &fakeExporter{panics: true}, nil)
	if err := c.Submit(context.Background(), "andaime"); err != nil {
		t.Fatal(err)
	}

	var buf bytes.Buffer
	_, err := c.Export(context.Background(), &buf)
	if !errors.Is(err, ErrExportFailed) {
		t.Fatalf("err = %v, want ErrExportFailed", err)
	}
	if buf.Len() != 0 {
		t.Errorf("wrote %d bytes on failure", buf.Len())
	}
	if st := c.State(); st.Notice != MsgExportFailed || st.Exporting {
		t.Errorf("state = %+v", st)
	}
}

func TestExport_FileNameFollowsCleanTitle(t *testing.T) {
	res := sampleResult()
	res.Report.Title = "<b>Andaime</b>   seguro"
	c := New(&fakeGenerator{res: res}, &fakeExporter{}, nil)
	if err := c.Submit(context.Background(), "andaime"); err != nil {
		t.Fatal(err)
	}

	var buf bytes.Buffer
	name, err := c.Export(context.Background(), &buf)
	if err != nil {
		t.Fatalf("Export: %v", err)
	}
	if name != "andaimeseguro.pdf" {
		t.Errorf("name = %q, want andaimeseguro.pdf", name)
	}
	// The exporter saw the same cleaned title.
	if got := buf.String(); got != "%PDF-Andaime seguro" {
		t.Errorf("exported %q", got)
	}
}

func TestExport_InProgress(t *testing.T) {
	exp := &fakeExporter{started: make(chan struct{}), release: make(chan struct{})}
	c := New(&fakeGenerator{res: sampleResult()}, exp, nil)
	if err := c.Submit(context.Background(), "andaime"); err != nil {
		t.Fatal(err)
	}

	done := make(chan error, 1)
	go func() {
		_, err := c.Export(context.Background(), io.Discard)
		done <- err
	}()
	<-exp.started

	if !c.State().Exporting {
		t.Error("Exporting flag not set during export")
	}
	if _, err := c.Export(context.Background(), io.Discard); !errors.Is(err, ErrExportInProgress) {
		t.Errorf("second export err = %v, want ErrExportInProgress", err)
	}

	close(exp.release)
	if err := <-done; err != nil {
		t.Fatalf("first export: %v", err)
	}
	if c.State().Exporting {
		t.Error("Exporting flag still set")
	}
}

// scriptedBackend answers the text and image calls with canned payloads.
type scriptedBackend struct {
	text  string
	image []byte
}

func (b scriptedBackend) GenerateText(context.Context, ai.TextRequest) (string, error) {
	return b.text, nil
}

func (b scriptedBackend) GenerateImages(context.Context, ai.ImageRequest) ([]ai.Image, error) {
	return []ai.Image{{Data: b.image, MIMEType: "image/png"}}, nil
}

const endToEndReport = `{
	"titulo": "Andaime seguro salva vida",
	"introducao": "Trabalho em altura exige atenção em cada etapa da montagem.",
	"caso_real": "Em uma obra em Campinas, um trabalhador caiu de um andaime sem guarda-corpo.",
	"pontos_chave": ["Use capacete", "Use cinto paraquedista", "Inspecione o andaime", "Sinalize a área"],
	"como_prevenir": ["Checklist diário", "Treinamento", "Supervisão"],
	"perguntas_reflexao": ["O que pode dar errado?", "Quem inspeciona?", "Como avisar?"],
	"mensagem_final": "Segurança em primeiro lugar!",
	"nr_relacionada": "NR-35"
}`

func onePixelPNG(t *testing.T) []byte {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, 1, 1))
	img.Set(0, 0, color.RGBA{R: 16, G: 185, B: 129, A: 255})
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		t.Fatal(err)
	}
	return buf.Bytes()
}

func TestEndToEnd(t *testing.T) {
	client := dds.NewClient(scriptedBackend{text: endToEndReport, image: onePixelPNG(t)})

	raster, err := render.NewRasterizer(render.DefaultWidth, render.PrintPalette)
	if err != nil {
		t.Fatalf("NewRasterizer: %v", err)
	}
	opts := export.DefaultOptions()
	opts.Optimize = false
	opts.Geometry = export.Geometry{PageWidth: 210, PageHeight: 150, Margin: 10}
	c := New(client, export.New(raster, opts, nil), nil)

	if err := c.Submit(context.Background(), "Trabalhador usando capacete em andaime"); err != nil {
		t.Fatalf("Submit: %v", err)
	}
	st := c.State()
	if st.Result == nil {
		t.Fatalf("no result: %+v", st)
	}
	title := st.Result.Report.Title
	if n := len([]rune(title)); n != 25 {
		t.Fatalf("title has %d characters, want 25", n)
	}
	if b := dds.BucketForTitle(title); b != dds.TitleLarge {
		t.Errorf("bucket = %v, want large", b)
	}

	doc := render.Build(st.Result.Report, st.Result.Image)
	var images, text int
	for _, b := range doc.Body() {
		if b.Kind == render.KindImage {
			images++
		} else {
			text++
		}
	}
	if images != 1 || text != 6 {
		t.Errorf("blocks: %d image, %d text; want 1 and 6", images, text)
	}

	var buf bytes.Buffer
	name, err := c.Export(context.Background(), &buf)
	if err != nil {
		t.Fatalf("Export: %v", err)
	}
	if name != "andaimesegurosalvavida.pdf" {
		t.Errorf("file name = %q", name)
	}

	info, err := pdfinfo.InspectReader(bytes.NewReader(buf.Bytes()), int64(buf.Len()))
	if err != nil {
		t.Fatalf("InspectReader: %v", err)
	}
	if info.Pages < 2 {
		t.Errorf("pages = %d, want at least 2", info.Pages)
	}
	if !slices.Contains(info.Lines(), title) || !slices.Contains(info.Lines(), render.Subtitle) {
		t.Errorf("header lines = %q, want the subtitle and the title", info.Lines())
	}
	if strings.TrimSpace(info.Text[len(info.Text)-1]) != "" {
		t.Errorf("last page carries native text: %q", info.Text[len(info.Text)-1])
	}
}

func ptr[T any](v T) *T { return &v }
