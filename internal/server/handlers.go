package server

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/matzehuels/blockpad/pkg/block"
	"github.com/matzehuels/blockpad/pkg/buildinfo"
	"github.com/matzehuels/blockpad/pkg/document"
	apperrors "github.com/matzehuels/blockpad/pkg/errors"
	"github.com/matzehuels/blockpad/pkg/pipeline"
	"github.com/matzehuels/blockpad/pkg/store"
)

// maxBodyBytes caps request bodies. Documents are small; anything larger
// is a mistake or abuse.
const maxBodyBytes = 10 << 20

// contentTypes maps render formats onto response content types.
var contentTypes = map[string]string{
	pipeline.FormatSVG:  "image/svg+xml",
	pipeline.FormatPNG:  "image/png",
	pipeline.FormatPDF:  "application/pdf",
	pipeline.FormatJSON: "application/json",
	pipeline.FormatDOT:  "text/vnd.graphviz",
}

// saveRequest is the body for document create and update calls.
type saveRequest struct {
	Name     string             `json:"name"`
	Document *document.Document `json:"document"`
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{
		"status":  "ok",
		"version": buildinfo.Version,
	})
}

func (s *Server) handleList(w http.ResponseWriter, r *http.Request) {
	infos, err := s.listRecords(r.Context())
	if err != nil {
		s.writeStoreError(w, err)
		return
	}
	if infos == nil {
		infos = []store.Info{}
	}
	writeJSON(w, http.StatusOK, infos)
}

func (s *Server) handleCreate(w http.ResponseWriter, r *http.Request) {
	req, ok := s.decodeSave(w, r)
	if !ok {
		return
	}

	rec := &store.Record{Name: req.Name, Document: req.Document}
	if err := s.saveRecord(r.Context(), rec); err != nil {
		s.writeStoreError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, rec)
}

func (s *Server) handleGet(w http.ResponseWriter, r *http.Request) {
	id, ok := requireID(w, r)
	if !ok {
		return
	}
	rec, err := s.loadRecord(r.Context(), id)
	if err != nil {
		s.writeStoreError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, rec)
}

func (s *Server) handleUpdate(w http.ResponseWriter, r *http.Request) {
	id, ok := requireID(w, r)
	if !ok {
		return
	}
	req, ok := s.decodeSave(w, r)
	if !ok {
		return
	}

	// Updates replace existing records only; creation goes through POST.
	existing, err := s.loadRecord(r.Context(), id)
	if err != nil {
		s.writeStoreError(w, err)
		return
	}

	rec := &store.Record{
		ID:        id,
		Name:      req.Name,
		Document:  req.Document,
		CreatedAt: existing.CreatedAt,
	}
	if err := s.saveRecord(r.Context(), rec); err != nil {
		s.writeStoreError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleDelete(w http.ResponseWriter, r *http.Request) {
	id, ok := requireID(w, r)
	if !ok {
		return
	}
	if err := s.deleteRecord(r.Context(), id); err != nil {
		s.writeStoreError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleRenderStored(w http.ResponseWriter, r *http.Request) {
	id, ok := requireID(w, r)
	if !ok {
		return
	}
	rec, err := s.loadRecord(r.Context(), id)
	if err != nil {
		s.writeStoreError(w, err)
		return
	}
	s.render(w, r, rec.Document)
}

func (s *Server) handleRenderAdhoc(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	data, err := io.ReadAll(r.Body)
	if err != nil {
		writeError(w, http.StatusBadRequest, apperrors.ErrCodeInvalidInput, "invalid body")
		return
	}

	doc, err := document.Unmarshal(data)
	if err != nil {
		writeError(w, http.StatusBadRequest, apperrors.ErrCodeInvalidDocument, fmt.Sprintf("invalid document: %v", err))
		return
	}
	if err := document.Validate(doc); err != nil {
		writeError(w, http.StatusUnprocessableEntity, apperrors.ErrCodeInvalidDocument, err.Error())
		return
	}
	s.render(w, r, doc)
}

// requireID validates the id path parameter before it reaches the store or
// the cache key space.
func requireID(w http.ResponseWriter, r *http.Request) (string, bool) {
	id := chi.URLParam(r, "id")
	if err := apperrors.ValidateDocumentID(id); err != nil {
		writeError(w, http.StatusBadRequest, apperrors.GetCode(err), apperrors.UserMessage(err))
		return "", false
	}
	return id, true
}

// decodeSave parses and validates a save request body.
func (s *Server) decodeSave(w http.ResponseWriter, r *http.Request) (saveRequest, bool) {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)

	var req saveRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, apperrors.ErrCodeInvalidInput, "invalid body")
		return req, false
	}
	if req.Document == nil {
		writeError(w, http.StatusBadRequest, apperrors.ErrCodeInvalidInput, "document is required")
		return req, false
	}
	if err := document.Validate(req.Document); err != nil {
		writeError(w, http.StatusUnprocessableEntity, apperrors.ErrCodeInvalidDocument, err.Error())
		return req, false
	}
	return req, true
}

// render executes the pipeline for doc and writes the requested artifact.
func (s *Server) render(w http.ResponseWriter, r *http.Request, doc *document.Document) {
	opts, format, err := renderOptions(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, apperrors.GetCode(err), apperrors.UserMessage(err))
		return
	}
	opts.Toolbox = s.toolbox
	opts.Logger = s.logger
	if err := opts.ValidateAndSetDefaults(); err != nil {
		writeError(w, http.StatusBadRequest, apperrors.ErrCodeInvalidInput, err.Error())
		return
	}

	result, err := s.runner.Execute(r.Context(), doc, opts)
	if err != nil {
		if code := structuralCode(err); code != "" {
			writeError(w, http.StatusUnprocessableEntity, code, err.Error())
			return
		}
		s.logger.Error("render failed", "error", err)
		writeError(w, http.StatusInternalServerError, apperrors.ErrCodeInternal, err.Error())
		return
	}

	w.Header().Set("Content-Type", contentTypes[format])
	w.WriteHeader(http.StatusOK)
	w.Write(result.Artifacts[format])
}

// renderOptions builds pipeline options from query parameters.
// The second return value is the single requested output format.
func renderOptions(r *http.Request) (pipeline.Options, string, error) {
	q := r.URL.Query()

	format := q.Get("format")
	if format == "" {
		format = pipeline.FormatSVG
	}

	opts := pipeline.Options{
		View:       q.Get("view"),
		Style:      q.Get("style"),
		RTL:        queryBool(q, "rtl"),
		Detailed:   queryBool(q, "detailed"),
		Connectors: queryBool(q, "connectors"),
		Refresh:    queryBool(q, "refresh"),
		Formats:    []string{format},
	}

	// The response needs a content type before the pipeline runs, so the
	// format token is checked here rather than left to option validation.
	if _, ok := contentTypes[format]; !ok {
		return opts, "", apperrors.New(apperrors.ErrCodeInvalidFormat, "unknown format: %q", format)
	}

	if v := q.Get("width"); v != "" {
		f, err := strconv.ParseFloat(v, 64)
		if err != nil || f <= 0 {
			return opts, "", apperrors.New(apperrors.ErrCodeInvalidInput, "invalid width: %q", v)
		}
		opts.FrameWidth = f
	}
	if v := q.Get("scale"); v != "" {
		f, err := strconv.ParseFloat(v, 64)
		if err != nil || f <= 0 {
			return opts, "", apperrors.New(apperrors.ErrCodeInvalidInput, "invalid scale: %q", v)
		}
		opts.Scale = f
	}

	return opts, format, nil
}

// queryBool interprets a query parameter as a boolean flag.
func queryBool(q url.Values, name string) bool {
	switch strings.ToLower(q.Get(name)) {
	case "1", "true", "yes":
		return true
	}
	return false
}

// structuralCode maps document-shape errors from the pipeline onto their
// machine-readable codes. Returns "" for server-side failures.
func structuralCode(err error) apperrors.Code {
	switch {
	case errors.Is(err, block.ErrUnknownType):
		return apperrors.ErrCodeUnknownBlockType
	case errors.Is(err, block.ErrDuplicateID):
		return apperrors.ErrCodeDuplicateID
	case errors.Is(err, block.ErrIncompatibleConnection),
		errors.Is(err, block.ErrAlreadyConnected),
		errors.Is(err, block.ErrCyclicConnection):
		return apperrors.ErrCodeIncompatibleConnection
	case errors.Is(err, block.ErrUnknownInput):
		return apperrors.ErrCodeUnknownInput
	case errors.Is(err, block.ErrUnknownField):
		return apperrors.ErrCodeUnknownField
	}
	return ""
}
