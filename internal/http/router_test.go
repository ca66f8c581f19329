package http

import (
	"bytes"
	"encoding/json"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/textproto"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"

	"github.com/yungbote/graphadmin-backend/internal/data/memstore"
	"github.com/yungbote/graphadmin-backend/internal/domain"
	httpH "github.com/yungbote/graphadmin-backend/internal/http/handlers"
	"github.com/yungbote/graphadmin-backend/internal/observability"
	"github.com/yungbote/graphadmin-backend/internal/platform/logger"
	"github.com/yungbote/graphadmin-backend/internal/services"
)

type testEnv struct {
	router *gin.Engine
	graph  *memstore.Graph
	blobs  *memstore.BlobStore
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	gin.SetMode(gin.TestMode)
	log, err := logger.New("test")
	if err != nil {
		t.Fatalf("logger.New: %v", err)
	}
	seed := domain.GraphSchema{NodeSchemas: []domain.NodeSchema{{
		NodeType: "universe",
		Properties: []domain.PropertyDefinition{
			{Name: "name", Type: domain.PropertyTypeString, Required: true},
			{Name: "title", Type: domain.PropertyTypeString},
		},
	}}}
	graph := memstore.NewGraph()
	blobs := memstore.NewBlobStore("")
	schemaSvc := services.NewSchemaService(log, memstore.NewSchemaRepo(seed), memstore.NewChangeLog(0))
	mappingSvc := services.NewMappingService(log, schemaSvc)
	uploadSvc := services.NewUploadService(log, schemaSvc, graph)
	metadataSvc := services.NewMetadataService(log, graph)
	imageSvc := services.NewImageService(log, blobs, 0)

	router := NewRouter(RouterConfig{
		Log:             log,
		Metrics:         observability.NewMetrics(),
		SchemaHandler:   httpH.NewSchemaHandler(log, schemaSvc),
		GraphHandler:    httpH.NewGraphHandler(log, mappingSvc, uploadSvc, nil, 0),
		MetadataHandler: httpH.NewMetadataHandler(metadataSvc),
		ImageHandler:    httpH.NewImageHandler(log, imageSvc, 0),
		HealthHandler:   httpH.NewHealthHandler(nil),
	})
	return &testEnv{router: router, graph: graph, blobs: blobs}
}

func (e *testEnv) do(t *testing.T, method, path string, body any, headers ...string) *httptest.ResponseRecorder {
	t.Helper()
	var r io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		if err != nil {
			t.Fatalf("marshal: %v", err)
		}
		r = bytes.NewReader(raw)
	}
	req := httptest.NewRequest(method, path, r)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	for i := 0; i+1 < len(headers); i += 2 {
		req.Header.Set(headers[i], headers[i+1])
	}
	rec := httptest.NewRecorder()
	e.router.ServeHTTP(rec, req)
	return rec
}

func decode[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var out T
	if err := json.Unmarshal(rec.Body.Bytes(), &out); err != nil {
		t.Fatalf("decode %q: %v", rec.Body.String(), err)
	}
	return out
}

func errorCode(t *testing.T, rec *httptest.ResponseRecorder) string {
	t.Helper()
	env := decode[struct {
		Error struct {
			Code string `json:"code"`
		} `json:"error"`
	}](t, rec)
	return env.Error.Code
}

func TestHealthcheck(t *testing.T) {
	env := newTestEnv(t)
	rec := env.do(t, http.MethodGet, "/healthcheck", nil)
	if rec.Code != http.StatusOK || rec.Body.String() != "ok" {
		t.Fatalf("healthcheck: got=%d %q", rec.Code, rec.Body.String())
	}
	if rec := env.do(t, http.MethodGet, "/metrics", nil); rec.Code != http.StatusOK {
		t.Fatalf("metrics: want=200 got=%d", rec.Code)
	}
}

func TestSchemaRoutes(t *testing.T) {
	env := newTestEnv(t)

	rec := env.do(t, http.MethodGet, "/api/schema", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("GET schema: want=200 got=%d", rec.Code)
	}
	if got := decode[domain.GraphSchema](t, rec); len(got.NodeSchemas) != 1 {
		t.Fatalf("GET schema: got=%+v", got)
	}

	rec = env.do(t, http.MethodPost, "/api/schema/node-types/universe/properties",
		map[string]any{"name": "setting", "type": "string"}, "X-Admin-User", "editor")
	if rec.Code != http.StatusCreated {
		t.Fatalf("add property: want=201 got=%d body=%s", rec.Code, rec.Body.String())
	}

	rec = env.do(t, http.MethodPatch, "/api/schema/node-types/universe/properties/setting", map[string]any{"required": true})
	if rec.Code != http.StatusOK {
		t.Fatalf("patch property: want=200 got=%d body=%s", rec.Code, rec.Body.String())
	}

	rec = env.do(t, http.MethodGet, "/api/schema/node-types/universe", nil)
	ns := decode[domain.NodeSchema](t, rec)
	if p, ok := ns.Property("setting"); !ok || !p.Required {
		t.Fatalf("node schema: got=%+v", ns)
	}

	rec = env.do(t, http.MethodGet, "/api/schema/node-types/planet", nil)
	if rec.Code != http.StatusOK || strings.TrimSpace(rec.Body.String()) != "null" {
		t.Fatalf("unknown node schema: got=%d %s", rec.Code, rec.Body.String())
	}

	rec = env.do(t, http.MethodPost, "/api/schema/node-types/planet/properties", map[string]any{"name": "x"})
	if rec.Code != http.StatusNotFound || errorCode(t, rec) != "not_found" {
		t.Fatalf("add to unknown: got=%d %s", rec.Code, rec.Body.String())
	}

	dup := map[string]any{"nodeSchemas": []any{map[string]any{
		"nodeType": "universe",
		"properties": []any{
			map[string]any{"name": "a", "type": "string"},
			map[string]any{"name": "a", "type": "number"},
		},
	}}}
	rec = env.do(t, http.MethodPut, "/api/schema", dup)
	if rec.Code != http.StatusBadRequest || errorCode(t, rec) != "validation" {
		t.Fatalf("PUT duplicate: got=%d %s", rec.Code, rec.Body.String())
	}

	rec = env.do(t, http.MethodGet, "/api/schema/logs", nil)
	logs := decode[[]domain.SchemaChangeLog](t, rec)
	if len(logs) != 2 || logs[1].Action != domain.ChangeActionAdd || logs[1].ChangedBy != "editor" {
		t.Fatalf("logs: got=%+v", logs)
	}

	rec = env.do(t, http.MethodGet, "/api/schema/logs?limit=oops", nil)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("bad limit: want=400 got=%d", rec.Code)
	}

	rec = env.do(t, http.MethodPost, "/api/schema/logs", map[string]any{"nodeType": "universe", "action": "save", "description": "manual"})
	if rec.Code != http.StatusCreated {
		t.Fatalf("append log: want=201 got=%d body=%s", rec.Code, rec.Body.String())
	}
}

func graphFileRequest(t *testing.T, doc, nodeType string) *http.Request {
	t.Helper()
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)
	part, err := w.CreateFormFile("file", "graph.json")
	if err != nil {
		t.Fatalf("CreateFormFile: %v", err)
	}
	_, _ = part.Write([]byte(doc))
	if nodeType != "" {
		_ = w.WriteField("nodeType", nodeType)
	}
	_ = w.Close()
	req := httptest.NewRequest(http.MethodPost, "/api/graph/parse", &buf)
	req.Header.Set("Content-Type", w.FormDataContentType())
	return req
}

func TestGraphParseSuggestUpload(t *testing.T) {
	env := newTestEnv(t)
	doc := `{"nodes":[{"id":"n1","labels":["universe"],"properties":{"Name":"Foo","Extra":"bar"}}]}`

	rec := httptest.NewRecorder()
	env.router.ServeHTTP(rec, graphFileRequest(t, doc, "universe"))
	if rec.Code != http.StatusOK {
		t.Fatalf("parse: want=200 got=%d body=%s", rec.Code, rec.Body.String())
	}
	parsed := decode[struct {
		Data             json.RawMessage          `json:"data"`
		SampleProperties []string                 `json:"sampleProperties"`
		Suggestions      []domain.PropertyMapping `json:"suggestions"`
	}](t, rec)
	if strings.Join(parsed.SampleProperties, ",") != "Name,Extra" {
		t.Fatalf("sample properties: got=%v", parsed.SampleProperties)
	}
	if len(parsed.Suggestions) != 2 || parsed.Suggestions[0].TargetProperty != "name" || parsed.Suggestions[1].TargetProperty != "Extra" {
		t.Fatalf("suggestions: got=%+v", parsed.Suggestions)
	}

	mappings := parsed.Suggestions
	mappings[1].TargetProperty = ""
	body := map[string]any{"data": parsed.Data, "mappings": mappings}

	rec = env.do(t, http.MethodPost, "/api/graph/upload/preview", body)
	if rec.Code != http.StatusOK {
		t.Fatalf("preview: want=200 got=%d body=%s", rec.Code, rec.Body.String())
	}
	if _, _, commits := env.graph.Stats(); commits != 0 {
		t.Fatalf("preview committed: commits=%d", commits)
	}

	rec = env.do(t, http.MethodPost, "/api/graph/upload", body)
	if rec.Code != http.StatusOK {
		t.Fatalf("upload: want=200 got=%d body=%s", rec.Code, rec.Body.String())
	}
	report := decode[domain.UploadReport](t, rec)
	if report.NodeCount != 1 || report.NodeType != "universe" {
		t.Fatalf("report: got=%+v", report)
	}
	_, props, ok := env.graph.Node("n1")
	if !ok || props["name"] != "Foo" || props["Extra"] != nil {
		t.Fatalf("stored node: got=%v", props)
	}

	rec = env.do(t, http.MethodGet, "/api/metadata/universes", nil)
	if names := decode[[]string](t, rec); len(names) != 1 || names[0] != "Foo" {
		t.Fatalf("universes after upload: got=%v", names)
	}
}

func TestGraphUploadErrors(t *testing.T) {
	env := newTestEnv(t)

	rec := env.do(t, http.MethodPost, "/api/graph/upload", map[string]any{
		"data":     map[string]any{"nodes": []any{}},
		"mappings": []any{map[string]any{"sourceProperty": "a", "targetProperty": "a", "nodeType": "universe"}},
	})
	if rec.Code != http.StatusBadRequest || errorCode(t, rec) != "validation" {
		t.Fatalf("empty nodes: got=%d %s", rec.Code, rec.Body.String())
	}

	rec = env.do(t, http.MethodPost, "/api/graph/upload", map[string]any{
		"data": map[string]any{
			"nodes":         []any{map[string]any{"id": "a", "properties": map[string]any{"name": "x"}}},
			"relationships": []any{map[string]any{"source": "a", "target": "a", "type": "bad type"}},
		},
		"mappings": []any{map[string]any{"sourceProperty": "name", "targetProperty": "name", "nodeType": "universe"}},
	})
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("bad rel type: want=400 got=%d", rec.Code)
	}

	req := graphFileRequest(t, `{"nodes": [`, "")
	rec = httptest.NewRecorder()
	env.router.ServeHTTP(rec, req)
	if rec.Code != http.StatusBadRequest || errorCode(t, rec) != "validation" {
		t.Fatalf("malformed file: got=%d %s", rec.Code, rec.Body.String())
	}
}

func TestMetadataRoutes(t *testing.T) {
	env := newTestEnv(t)
	name := "Alpha"
	if err := env.graph.SeedMetadata([]domain.GraphMetadata{{ID: "u1", Name: &name, Universe: &name}}); err != nil {
		t.Fatalf("SeedMetadata: %v", err)
	}

	rec := env.do(t, http.MethodGet, "/api/metadata/universe-nodes", nil)
	if items := decode[[]domain.GraphMetadata](t, rec); len(items) != 1 || items[0].ID != "u1" {
		t.Fatalf("universe-nodes: got=%s", rec.Body.String())
	}

	rec = env.do(t, http.MethodPatch, "/api/metadata/u1", map[string]any{"play_time": "40m"})
	if rec.Code != http.StatusOK {
		t.Fatalf("patch: want=200 got=%d body=%s", rec.Code, rec.Body.String())
	}
	if m := decode[domain.GraphMetadata](t, rec); m.PlayTime == nil || *m.PlayTime != "40m" {
		t.Fatalf("patch: got=%s", rec.Body.String())
	}

	rec = env.do(t, http.MethodGet, "/api/metadata/missing", nil)
	if rec.Code != http.StatusNotFound {
		t.Fatalf("missing: want=404 got=%d", rec.Code)
	}

	rec = env.do(t, http.MethodGet, "/api/metadata/universe/Alpha", nil)
	if items := decode[[]domain.GraphMetadata](t, rec); len(items) != 1 {
		t.Fatalf("by universe: got=%s", rec.Body.String())
	}

	rec = env.do(t, http.MethodDelete, "/api/metadata/universe/Alpha", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("delete universe: want=200 got=%d", rec.Code)
	}
	if got := decode[map[string]int](t, rec); got["deleted"] != 1 {
		t.Fatalf("deleted: got=%v", got)
	}
}

func imageRequest(t *testing.T, filename, contentType string, data []byte) *http.Request {
	t.Helper()
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)
	h := make(textproto.MIMEHeader)
	h.Set("Content-Disposition", `form-data; name="image"; filename="`+filename+`"`)
	h.Set("Content-Type", contentType)
	part, err := w.CreatePart(h)
	if err != nil {
		t.Fatalf("CreatePart: %v", err)
	}
	_, _ = part.Write(data)
	_ = w.Close()
	req := httptest.NewRequest(http.MethodPost, "/api/images/upload", &buf)
	req.Header.Set("Content-Type", w.FormDataContentType())
	return req
}

func TestImageRoutes(t *testing.T) {
	env := newTestEnv(t)

	rec := httptest.NewRecorder()
	env.router.ServeHTTP(rec, imageRequest(t, "cover.png", "image/png", []byte("png")))
	if rec.Code != http.StatusCreated {
		t.Fatalf("upload: want=201 got=%d body=%s", rec.Code, rec.Body.String())
	}
	url := decode[map[string]string](t, rec)["url"]
	if !strings.HasPrefix(url, "mem://blobs/images/") || !strings.HasSuffix(url, "_cover.png") {
		t.Fatalf("url: got=%s", url)
	}

	rec = httptest.NewRecorder()
	env.router.ServeHTTP(rec, imageRequest(t, "notes.txt", "text/plain", []byte("x")))
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("non-image: want=400 got=%d", rec.Code)
	}

	rec = env.do(t, http.MethodDelete, "/api/images", map[string]string{"url": url})
	if rec.Code != http.StatusNoContent {
		t.Fatalf("delete: want=204 got=%d body=%s", rec.Code, rec.Body.String())
	}
	rec = env.do(t, http.MethodDelete, "/api/images", map[string]string{"url": url})
	if rec.Code != http.StatusNotFound {
		t.Fatalf("delete again: want=404 got=%d", rec.Code)
	}
}
