package web

import (
	"bytes"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"github.com/thywilljoshua/ddsgen/internal/controller"
)

func (s *Server) handleIndex(w http.ResponseWriter, r *http.Request) {
	s.render(w, newPage(s.ctrl.State(), s.opts.RefreshSeconds))
}

func (s *Server) handleGenerate(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		http.Error(w, "invalid form", http.StatusBadRequest)
		return
	}
	prompt := r.PostFormValue("prompt")

	if s.ctrl.State().Loading {
		http.Redirect(w, r, "/", http.StatusSeeOther)
		return
	}
	if strings.TrimSpace(prompt) != "" && !s.limiter.Allow() {
		s.logger.Warn("generation rate limited", "remote", r.RemoteAddr)
		http.Error(w, "too many requests", http.StatusTooManyRequests)
		return
	}

	if err := s.ctrl.Start(r.Context(), prompt); err != nil && !errors.Is(err, controller.ErrValidation) {
		http.Error(w, fmt.Sprintf("generate: %v", err), http.StatusInternalServerError)
		return
	}
	http.Redirect(w, r, "/", http.StatusSeeOther)
}

func (s *Server) handleExample(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		http.Error(w, "invalid form", http.StatusBadRequest)
		return
	}
	i, err := strconv.Atoi(r.PostFormValue("example"))
	if err != nil || i < 0 || i >= len(controller.Examples) {
		http.Error(w, "unknown example", http.StatusBadRequest)
		return
	}
	if !s.ctrl.State().Loading {
		s.ctrl.SetPrompt(controller.Examples[i])
	}
	http.Redirect(w, r, "/", http.StatusSeeOther)
}

func (s *Server) handleExport(w http.ResponseWriter, r *http.Request) {
	id := r.URL.Query().Get("id")
	if id == "" {
		http.Redirect(w, r, "/", http.StatusSeeOther)
		return
	}

	var buf bytes.Buffer
	name, err := s.ctrl.ExportResult(r.Context(), id, &buf)
	if err != nil {
		// Stale ids and concurrent exports are no-ops; real failures have
		// already set the notice shown on the page.
		if !errors.Is(err, controller.ErrNothingToExport) && !errors.Is(err, controller.ErrExportInProgress) {
			s.logger.Error("export", "id", id, "error", err)
		}
		http.Redirect(w, r, "/", http.StatusSeeOther)
		return
	}

	w.Header().Set("Content-Type", "application/pdf")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", name))
	w.Header().Set("Content-Length", strconv.Itoa(buf.Len()))
	if _, err := buf.WriteTo(w); err != nil {
		s.logger.Warn("write pdf response", "error", err)
	}
}

func (s *Server) handleDismiss(w http.ResponseWriter, r *http.Request) {
	s.ctrl.DismissNotice()
	http.Redirect(w, r, "/", http.StatusSeeOther)
}

func (s *Server) render(w http.ResponseWriter, p page) {
	var buf bytes.Buffer
	if err := s.tmpl.ExecuteTemplate(&buf, "index.html", p); err != nil {
		s.logger.Error("render page", "error", err)
		http.Error(w, fmt.Sprintf("render template: %v", err), http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	_, _ = buf.WriteTo(w)
}
