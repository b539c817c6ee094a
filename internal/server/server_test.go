package server

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"slices"
	"strings"
	"sync"
	"testing"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/blockpad/pkg/block"
	"github.com/matzehuels/blockpad/pkg/cache"
	"github.com/matzehuels/blockpad/pkg/document"
	"github.com/matzehuels/blockpad/pkg/observability"
	"github.com/matzehuels/blockpad/pkg/store"
	"github.com/matzehuels/blockpad/pkg/toolbox"
)

func newTestServer(t *testing.T) *Server {
	t.Helper()
	return New(Config{
		Store:  store.NewMemoryStore(),
		Cache:  cache.NewMemoryCache(),
		Logger: log.NewWithOptions(io.Discard, log.Options{}),
	})
}

// sampleDocumentJSON builds a valid document through the encoder and
// returns its JSON bytes.
func sampleDocumentJSON(t *testing.T) []byte {
	t.Helper()
	registry, err := toolbox.Builtin().Registry()
	if err != nil {
		t.Fatalf("Registry() error: %v", err)
	}
	ws := block.NewWorkspace(registry)
	if _, err := ws.NewBlock("text_print"); err != nil {
		t.Fatalf("NewBlock error: %v", err)
	}
	doc, err := document.Encode(ws)
	if err != nil {
		t.Fatalf("Encode error: %v", err)
	}
	data, err := document.Marshal(doc)
	if err != nil {
		t.Fatalf("Marshal error: %v", err)
	}
	return data
}

func do(t *testing.T, h http.Handler, method, path string, body []byte) *httptest.ResponseRecorder {
	t.Helper()
	var reader io.Reader
	if body != nil {
		reader = bytes.NewReader(body)
	}
	req := httptest.NewRequest(method, path, reader)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func TestHealthz(t *testing.T) {
	router := newTestServer(t).Router()

	rec := do(t, router, http.MethodGet, "/healthz", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("healthz status = %d", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), `"ok"`) {
		t.Errorf("healthz body = %s", rec.Body.String())
	}
}

func TestDocumentCRUD(t *testing.T) {
	router := newTestServer(t).Router()
	docJSON := sampleDocumentJSON(t)

	// Create
	body := []byte(fmt.Sprintf(`{"name":"demo","document":%s}`, docJSON))
	rec := do(t, router, http.MethodPost, "/api/v1/documents", body)
	if rec.Code != http.StatusCreated {
		t.Fatalf("create status = %d, body = %s", rec.Code, rec.Body.String())
	}
	var created store.Record
	if err := json.Unmarshal(rec.Body.Bytes(), &created); err != nil {
		t.Fatalf("decode create response: %v", err)
	}
	if created.ID == "" || created.Name != "demo" {
		t.Fatalf("created record = %+v", created)
	}

	// Get
	rec = do(t, router, http.MethodGet, "/api/v1/documents/"+created.ID, nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("get status = %d", rec.Code)
	}
	var got store.Record
	if err := json.Unmarshal(rec.Body.Bytes(), &got); err != nil {
		t.Fatalf("decode get response: %v", err)
	}
	if got.Name != "demo" || got.Document == nil {
		t.Errorf("got record = %+v", got)
	}

	// Update must invalidate the cached copy
	body = []byte(fmt.Sprintf(`{"name":"renamed","document":%s}`, docJSON))
	rec = do(t, router, http.MethodPut, "/api/v1/documents/"+created.ID, body)
	if rec.Code != http.StatusNoContent {
		t.Fatalf("update status = %d, body = %s", rec.Code, rec.Body.String())
	}
	rec = do(t, router, http.MethodGet, "/api/v1/documents/"+created.ID, nil)
	var updated store.Record
	if err := json.Unmarshal(rec.Body.Bytes(), &updated); err != nil {
		t.Fatalf("decode updated response: %v", err)
	}
	if updated.Name != "renamed" {
		t.Errorf("update not visible after cache invalidation: %+v", updated)
	}

	// List
	rec = do(t, router, http.MethodGet, "/api/v1/documents", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("list status = %d", rec.Code)
	}
	var infos []store.Info
	if err := json.Unmarshal(rec.Body.Bytes(), &infos); err != nil {
		t.Fatalf("decode list response: %v", err)
	}
	if len(infos) != 1 || infos[0].ID != created.ID {
		t.Errorf("list = %+v", infos)
	}

	// Delete
	rec = do(t, router, http.MethodDelete, "/api/v1/documents/"+created.ID, nil)
	if rec.Code != http.StatusNoContent {
		t.Fatalf("delete status = %d", rec.Code)
	}
	rec = do(t, router, http.MethodGet, "/api/v1/documents/"+created.ID, nil)
	if rec.Code != http.StatusNotFound {
		t.Errorf("get after delete status = %d", rec.Code)
	}
}

func TestListEmpty(t *testing.T) {
	router := newTestServer(t).Router()

	rec := do(t, router, http.MethodGet, "/api/v1/documents", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("list status = %d", rec.Code)
	}
	if strings.TrimSpace(rec.Body.String()) != "[]" {
		t.Errorf("empty list should be [], got %s", rec.Body.String())
	}
}

func TestCreateRejectsBadBodies(t *testing.T) {
	router := newTestServer(t).Router()

	tests := []struct {
		name string
		body string
		want int
	}{
		{"garbage", `not json`, http.StatusBadRequest},
		{"missing document", `{"name":"x"}`, http.StatusBadRequest},
		{"node without type", `{"name":"x","document":{"blocks":[{"id":"b1"}]}}`, http.StatusUnprocessableEntity},
	}

	for _, tt := range tests {
		rec := do(t, router, http.MethodPost, "/api/v1/documents", []byte(tt.body))
		if rec.Code != tt.want {
			t.Errorf("%s: status = %d, want %d", tt.name, rec.Code, tt.want)
		}
	}
}

func TestUpdateMissingDocument(t *testing.T) {
	router := newTestServer(t).Router()
	body := []byte(fmt.Sprintf(`{"name":"x","document":%s}`, sampleDocumentJSON(t)))

	rec := do(t, router, http.MethodPut, "/api/v1/documents/no-such-id", body)
	if rec.Code != http.StatusNotFound {
		t.Errorf("update missing status = %d", rec.Code)
	}
}

func TestRenderStored(t *testing.T) {
	router := newTestServer(t).Router()

	body := []byte(fmt.Sprintf(`{"name":"demo","document":%s}`, sampleDocumentJSON(t)))
	rec := do(t, router, http.MethodPost, "/api/v1/documents", body)
	var created store.Record
	if err := json.Unmarshal(rec.Body.Bytes(), &created); err != nil {
		t.Fatalf("decode create response: %v", err)
	}

	rec = do(t, router, http.MethodGet, "/api/v1/documents/"+created.ID+"/render?format=svg", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("render status = %d, body = %s", rec.Code, rec.Body.String())
	}
	if ct := rec.Header().Get("Content-Type"); ct != "image/svg+xml" {
		t.Errorf("content type = %s", ct)
	}
	if !strings.Contains(rec.Body.String(), "<svg") {
		t.Error("render body should contain an svg element")
	}
}

func TestRenderAdhoc(t *testing.T) {
	router := newTestServer(t).Router()

	rec := do(t, router, http.MethodPost, "/api/v1/render?format=json", sampleDocumentJSON(t))
	if rec.Code != http.StatusOK {
		t.Fatalf("render status = %d, body = %s", rec.Code, rec.Body.String())
	}
	if ct := rec.Header().Get("Content-Type"); ct != "application/json" {
		t.Errorf("content type = %s", ct)
	}
	if !strings.Contains(rec.Body.String(), `"blocks"`) {
		t.Error("json render should contain blocks")
	}
}

func TestRenderErrors(t *testing.T) {
	router := newTestServer(t).Router()
	docJSON := sampleDocumentJSON(t)

	// Unknown render format
	rec := do(t, router, http.MethodPost, "/api/v1/render?format=gif", docJSON)
	if rec.Code != http.StatusBadRequest {
		t.Errorf("bad format status = %d", rec.Code)
	}

	// Unknown block type is a document problem, not a server one
	rec = do(t, router, http.MethodPost, "/api/v1/render",
		[]byte(`{"blocks":[{"type":"no_such_block","id":"b1"}]}`))
	if rec.Code != http.StatusUnprocessableEntity {
		t.Errorf("unknown type status = %d, body = %s", rec.Code, rec.Body.String())
	}

	// Missing stored document
	rec = do(t, router, http.MethodGet, "/api/v1/documents/nope/render", nil)
	if rec.Code != http.StatusNotFound {
		t.Errorf("missing document status = %d", rec.Code)
	}
}

func TestErrorCodes(t *testing.T) {
	router := newTestServer(t).Router()

	tests := []struct {
		name   string
		method string
		path   string
		body   []byte
		status int
		code   string
	}{
		{"missing document", http.MethodGet, "/api/v1/documents/nope", nil,
			http.StatusNotFound, "DOCUMENT_NOT_FOUND"},
		{"unsafe id", http.MethodGet, "/api/v1/documents/bad:id", nil,
			http.StatusBadRequest, "INVALID_INPUT"},
		{"unknown format", http.MethodPost, "/api/v1/render?format=gif", sampleDocumentJSON(t),
			http.StatusBadRequest, "INVALID_FORMAT"},
		{"unknown block type", http.MethodPost, "/api/v1/render",
			[]byte(`{"blocks":[{"type":"no_such_block","id":"b1"}]}`),
			http.StatusUnprocessableEntity, "UNKNOWN_BLOCK_TYPE"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := do(t, router, tt.method, tt.path, tt.body)
			if rec.Code != tt.status {
				t.Fatalf("status = %d, want %d, body = %s", rec.Code, tt.status, rec.Body.String())
			}
			var resp struct {
				Code string `json:"code"`
			}
			if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
				t.Fatalf("decode error body: %v", err)
			}
			if resp.Code != tt.code {
				t.Errorf("code = %q, want %q", resp.Code, tt.code)
			}
		})
	}
}

type recordingStoreHooks struct {
	observability.NoopStoreHooks
	mu  sync.Mutex
	ops []string
}

func (h *recordingStoreHooks) OnStoreOp(ctx context.Context, backend, op, id string) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.ops = append(h.ops, op)
}

func TestStoreHooksEmitted(t *testing.T) {
	hooks := &recordingStoreHooks{}
	observability.SetStoreHooks(hooks)
	defer observability.Reset()

	router := newTestServer(t).Router()
	body := []byte(fmt.Sprintf(`{"name":"x","document":%s}`, sampleDocumentJSON(t)))
	do(t, router, http.MethodPost, "/api/v1/documents", body)
	do(t, router, http.MethodGet, "/api/v1/documents", nil)

	hooks.mu.Lock()
	defer hooks.mu.Unlock()
	if !slices.Contains(hooks.ops, "save") || !slices.Contains(hooks.ops, "list") {
		t.Errorf("store hooks not emitted, got %v", hooks.ops)
	}
}
