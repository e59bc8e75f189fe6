package server

import (
	"bytes"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strconv"

	"go.uber.org/zap"

	"github.com/Makepad-fr/cardboard/internal/model"
	"github.com/Makepad-fr/cardboard/internal/render"
	"github.com/Makepad-fr/cardboard/internal/store"
)

const maxBody = 1 << 20

// apiError is an error with the status it should be reported with.
type apiError struct {
	status int
	msg    string
}

func (e *apiError) Error() string { return e.msg }

func badRequest(msg string) error { return &apiError{status: http.StatusBadRequest, msg: msg} }

type apiHandler func(w http.ResponseWriter, r *http.Request, section model.Section) error

// api resolves the section, checks the bearer token and turns handler
// errors into JSON error responses.
func (s *Server) api(h apiHandler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !s.authorized(r) {
			writeJSON(w, http.StatusUnauthorized, map[string]any{"ok": false, "error": "Unauthorized"})
			return
		}
		section, err := model.ParseSection(r.PathValue("section"))
		if err != nil {
			writeJSON(w, http.StatusNotFound, map[string]any{"ok": false, "error": "Section not found"})
			return
		}
		if err := h(w, r, section); err != nil {
			s.writeError(w, r, err)
		}
	})
}

func (s *Server) writeError(w http.ResponseWriter, r *http.Request, err error) {
	status, msg := http.StatusInternalServerError, "Internal error"
	var (
		aerr *apiError
		verr *model.ValidationError
		ferr *model.UnknownFieldError
	)
	switch {
	case errors.As(err, &aerr):
		status, msg = aerr.status, aerr.msg
	case errors.As(err, &verr):
		status, msg = http.StatusBadRequest, verr.Error()
	case errors.As(err, &ferr):
		status, msg = http.StatusBadRequest, ferr.Error()
	case errors.Is(err, store.ErrNotFound):
		status, msg = http.StatusNotFound, "Item not found"
	case errors.Is(err, store.ErrNotToggleable):
		status, msg = http.StatusBadRequest, "Only todo items can be toggled"
	case errors.Is(err, model.ErrUnknownSection):
		status, msg = http.StatusNotFound, "Section not found"
	}
	if status >= 500 {
		s.log.Error("request failed", zap.String("path", r.URL.Path), zap.Error(err))
	}
	writeJSON(w, status, map[string]any{"ok": false, "error": msg})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// itemID parses the {id} path segment. A non-integer id cannot match any
// item, so it is reported as not found.
func itemID(r *http.Request) (int, error) {
	id, err := strconv.Atoi(r.PathValue("id"))
	if err != nil {
		return 0, &apiError{status: http.StatusNotFound, msg: "Item not found"}
	}
	return id, nil
}

// decodeInto reads the JSON body onto it. An empty body leaves it as is.
func decodeInto(r *http.Request, it model.Item) error {
	b, err := io.ReadAll(io.LimitReader(r.Body, maxBody))
	if err != nil {
		return badRequest("could not read body")
	}
	if len(bytes.TrimSpace(b)) == 0 {
		return nil
	}
	if err := json.Unmarshal(b, it); err != nil {
		return badRequest("invalid JSON body")
	}
	return nil
}

func (s *Server) handleList(w http.ResponseWriter, r *http.Request, section model.Section) error {
	items, err := s.store.List(r.Context(), section)
	if err != nil {
		return err
	}
	writeJSON(w, http.StatusOK, map[string]any{"ok": true, "items": items})
	return nil
}

func (s *Server) handleGet(w http.ResponseWriter, r *http.Request, section model.Section) error {
	id, err := itemID(r)
	if err != nil {
		return err
	}
	it, err := s.store.Get(r.Context(), section, id)
	if err != nil {
		return err
	}
	writeJSON(w, http.StatusOK, map[string]any{"ok": true, "item": it})
	return nil
}

func (s *Server) handleCreate(w http.ResponseWriter, r *http.Request, section model.Section) error {
	draft, err := model.New(section)
	if err != nil {
		return err
	}
	if err := decodeInto(r, draft); err != nil {
		return err
	}
	it, err := s.store.Create(r.Context(), section, draft)
	if err != nil {
		return err
	}
	writeJSON(w, http.StatusCreated, map[string]any{"ok": true, "item": it})
	return nil
}

// handleUpdate decodes the body over the stored item, so keys absent from
// the body keep their value.
func (s *Server) handleUpdate(w http.ResponseWriter, r *http.Request, section model.Section) error {
	id, err := itemID(r)
	if err != nil {
		return err
	}
	current, err := s.store.Get(r.Context(), section, id)
	if err != nil {
		return err
	}
	if err := decodeInto(r, current); err != nil {
		return err
	}
	it, err := s.store.Update(r.Context(), section, id, current)
	if err != nil {
		return err
	}
	writeJSON(w, http.StatusOK, map[string]any{"ok": true, "item": it})
	return nil
}

func (s *Server) handleDelete(w http.ResponseWriter, r *http.Request, section model.Section) error {
	id, err := itemID(r)
	if err != nil {
		return err
	}
	if err := s.store.Delete(r.Context(), section, id); err != nil {
		return err
	}
	writeJSON(w, http.StatusOK, map[string]any{"ok": true, "deleted_id": id})
	return nil
}

func (s *Server) handleToggle(w http.ResponseWriter, r *http.Request, section model.Section) error {
	id, err := itemID(r)
	if err != nil {
		return err
	}
	it, err := s.store.Toggle(r.Context(), section, id)
	if err != nil {
		return err
	}
	writeJSON(w, http.StatusOK, map[string]any{"ok": true, "item": it})
	return nil
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{"ok": true, "backend": s.cfg.Backend})
}

func (s *Server) handleIndex(w http.ResponseWriter, r *http.Request) {
	page := render.Page{Title: s.cfg.Title}
	for _, section := range model.Sections {
		items, err := s.store.List(r.Context(), section)
		if err != nil {
			s.log.Error("render dashboard", zap.String("section", string(section)), zap.Error(err))
			http.Error(w, "failed to load "+string(section), http.StatusInternalServerError)
			return
		}
		page.Sections = append(page.Sections, render.NewSectionPage(section, items))
	}
	var buf bytes.Buffer
	if err := render.WriteHTML(&buf, page); err != nil {
		s.log.Error("render dashboard", zap.Error(err))
		http.Error(w, "render failed", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	_, _ = buf.WriteTo(w)
}

// handleSection serves the HTML fragment of one section, for refreshing a
// single column of the page.
func (s *Server) handleSection(w http.ResponseWriter, r *http.Request) {
	section, err := model.ParseSection(r.PathValue("section"))
	if err != nil {
		http.Error(w, "Section not found", http.StatusNotFound)
		return
	}
	items, err := s.store.List(r.Context(), section)
	if err != nil {
		s.log.Error("render section", zap.String("section", string(section)), zap.Error(err))
		http.Error(w, "failed to load "+string(section), http.StatusInternalServerError)
		return
	}
	var buf bytes.Buffer
	if err := render.WriteSectionHTML(&buf, render.NewSectionPage(section, items)); err != nil {
		s.log.Error("render section", zap.Error(err))
		http.Error(w, "render failed", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	_, _ = buf.WriteTo(w)
}
