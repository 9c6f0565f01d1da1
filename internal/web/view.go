package web

import (
	"html/template"

	"github.com/thywilljoshua/ddsgen/internal/controller"
	"github.com/thywilljoshua/ddsgen/internal/dds"
	"github.com/thywilljoshua/ddsgen/internal/render"
)

type page struct {
	Prompt   string
	Loading  bool
	Error    string
	Notice   string
	Examples []string
	Refresh  int
	Result   *resultView
}

type resultView struct {
	ID         string
	Title      string
	Subtitle   string
	TitleClass string
	Image      template.URL
	Marker     string
	Sections   []render.Block
	Closing    *render.Block
	Exporting  bool
}

func newPage(st controller.State, refresh int) page {
	p := page{
		Prompt:   st.Prompt,
		Loading:  st.Loading,
		Error:    st.Error,
		Notice:   st.Notice,
		Examples: controller.Examples,
		Refresh:  refresh,
	}
	if st.Result != nil {
		p.Result = newResultView(*st.Result, st.Exporting)
	}
	return p
}

func newResultView(res dds.Result, exporting bool) *resultView {
	doc := render.Build(res.Report, res.Image)
	v := &resultView{ID: res.ID, Exporting: exporting}
	for _, b := range doc.Blocks {
		switch b.Kind {
		case render.KindImage:
			// Data URIs from the image backend are trusted.
			v.Image = template.URL(b.Image.DataURI())
			v.Marker = b.Marker
		case render.KindHeader:
			v.Title = b.Title
			v.Subtitle = b.Subtitle
			v.TitleClass = b.Bucket.CSSClass()
		case render.KindSection:
			v.Sections = append(v.Sections, b)
		case render.KindClosing:
			v.Closing = &b
		}
	}
	return v
}
