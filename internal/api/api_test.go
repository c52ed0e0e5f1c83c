package api

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/starford/devarchitect/internal/architectservice"
	"github.com/starford/devarchitect/internal/generation"
	"github.com/starford/devarchitect/internal/generator"
	"github.com/starford/devarchitect/internal/history"
	"github.com/starford/devarchitect/internal/kv"
	"github.com/starford/devarchitect/internal/prefs"
	"github.com/starford/devarchitect/internal/testutil"
)

// testEnv sets up an in-memory store, a scripted generator, and the router.
// An empty authToken means auth is disabled.
func testEnv(t *testing.T, authToken string, replies ...testutil.Reply) http.Handler {
	t.Helper()
	return testEnvWithSSE(t, authToken != "", authToken, nil, replies...)
}

func testEnvWithSSE(t *testing.T, authEnabled bool, token string, sseHandler http.Handler, replies ...testutil.Reply) http.Handler {
	t.Helper()
	if len(replies) == 0 {
		replies = []testutil.Reply{{Text: testutil.BlogJSON}}
	}
	store := testutil.TestSQLite(t)
	logger := testutil.Logger()
	hist := history.New(store, logger)
	ctrl := generation.New(testutil.NewFakeGenerator(replies...), hist, logger)
	svc := architectservice.NewService(ctrl, hist, prefs.New(store, logger), nil)
	return NewRouter(svc, authEnabled, token, sseHandler)
}

func do(t *testing.T, router http.Handler, method, target string, body any, header ...string) *httptest.ResponseRecorder {
	t.Helper()
	var reader *bytes.Reader
	if body != nil {
		data, _ := json.Marshal(body)
		reader = bytes.NewReader(data)
	} else {
		reader = bytes.NewReader(nil)
	}
	req := httptest.NewRequest(method, target, reader)
	for i := 0; i+1 < len(header); i += 2 {
		req.Header.Set(header[i], header[i+1])
	}
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func generate(t *testing.T, router http.Handler, prompt string) GenerateResponse {
	t.Helper()
	w := do(t, router, http.MethodPost, "/generate", GenerateRequest{Prompt: prompt})
	if w.Code != http.StatusOK {
		t.Fatalf("generate status = %d, body = %s", w.Code, w.Body.String())
	}
	var resp GenerateResponse
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	return resp
}

func TestGenerateHistoryExportRoundTrip(t *testing.T) {
	router := testEnv(t, "")

	resp := generate(t, router, "A blog platform")
	if resp.State.Phase != generation.PhaseSuccess {
		t.Errorf("phase = %q", resp.State.Phase)
	}
	if len(resp.Document.TechStack) != 2 {
		t.Errorf("techStack = %d entries", len(resp.Document.TechStack))
	}

	w := do(t, router, http.MethodGet, "/history", nil)
	var list HistoryListResponse
	_ = json.Unmarshal(w.Body.Bytes(), &list)
	if list.Total != 1 || list.Entries[0].Title != "A blog platform" {
		t.Fatalf("history = %+v", list)
	}

	w = do(t, router, http.MethodGet, "/history/"+list.Entries[0].ID, nil)
	if w.Code != http.StatusOK || !strings.Contains(w.Body.String(), `"prompt":"A blog platform"`) {
		t.Errorf("get entry = %d %s", w.Code, w.Body.String())
	}

	w = do(t, router, http.MethodGet, "/export", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("export status = %d", w.Code)
	}
	if cd := w.Header().Get("Content-Disposition"); cd != `attachment; filename="a-blog-platform-architecture.md"` {
		t.Errorf("Content-Disposition = %q", cd)
	}
	if !strings.HasPrefix(w.Body.String(), "# Architecture Document: A blog platform\n") {
		t.Errorf("export body = %q", w.Body.String())
	}
	etag := w.Header().Get("ETag")
	if etag == "" {
		t.Fatal("missing ETag")
	}

	w = do(t, router, http.MethodGet, "/export", nil, "If-None-Match", etag)
	if w.Code != http.StatusNotModified {
		t.Errorf("conditional export = %d, want 304", w.Code)
	}

	w = do(t, router, http.MethodGet, "/export?id="+list.Entries[0].ID, nil)
	if w.Code != http.StatusOK || !strings.HasPrefix(w.Body.String(), "---\n") {
		t.Errorf("entry export = %d %q", w.Code, w.Body.String())
	}
}

func TestGenerate_BlankPrompt(t *testing.T) {
	router := testEnv(t, "")
	w := do(t, router, http.MethodPost, "/generate", GenerateRequest{Prompt: "   "})
	if w.Code != http.StatusBadRequest {
		t.Errorf("blank prompt = %d, want 400", w.Code)
	}
	w = do(t, router, http.MethodGet, "/state", nil)
	if !strings.Contains(w.Body.String(), `"phase":"idle"`) {
		t.Errorf("state after rejected prompt = %s", w.Body.String())
	}
}

func TestGenerate_InvalidJSON(t *testing.T) {
	router := testEnv(t, "")
	req := httptest.NewRequest(http.MethodPost, "/generate", strings.NewReader("{"))
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	if w.Code != http.StatusBadRequest {
		t.Errorf("invalid body = %d, want 400", w.Code)
	}
}

func TestGenerate_UpstreamFailures(t *testing.T) {
	tests := []struct {
		name  string
		reply testutil.Reply
	}{
		{"service error", testutil.Reply{Err: &generator.StatusError{Code: 503, Status: "Service Unavailable"}}},
		{"malformed", testutil.Reply{Text: "not json"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			router := testEnv(t, "", tt.reply)
			w := do(t, router, http.MethodPost, "/generate", GenerateRequest{Prompt: "x"})
			if w.Code != http.StatusBadGateway {
				t.Errorf("status = %d, want 502", w.Code)
			}
			w = do(t, router, http.MethodGet, "/state", nil)
			var st generation.State
			_ = json.Unmarshal(w.Body.Bytes(), &st)
			if st.Phase != generation.PhaseFailed || st.Err == "" {
				t.Errorf("state = %+v", st)
			}
		})
	}
}

func TestAcknowledge(t *testing.T) {
	router := testEnv(t, "")
	generate(t, router, "A blog platform")
	w := do(t, router, http.MethodPost, "/state/ack", nil)
	var st generation.State
	_ = json.Unmarshal(w.Body.Bytes(), &st)
	if st.Phase != generation.PhaseIdle || st.Document == nil {
		t.Errorf("ack state = %+v", st)
	}
}

func TestTree(t *testing.T) {
	router := testEnv(t, "")

	w := do(t, router, http.MethodGet, "/tree", nil)
	if w.Code != http.StatusNotFound {
		t.Errorf("tree without document = %d, want 404", w.Code)
	}

	generate(t, router, "A blog platform")
	w = do(t, router, http.MethodGet, "/tree?collapsed=0/1", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("tree = %d", w.Code)
	}
	var view struct {
		Rows []struct {
			Name     string `json:"name"`
			Path     string `json:"path"`
			Expanded bool   `json:"expanded"`
		} `json:"rows"`
	}
	_ = json.Unmarshal(w.Body.Bytes(), &view)
	// app, page.tsx, posts (collapsed), package.json
	if len(view.Rows) != 4 || view.Rows[2].Name != "posts" || view.Rows[2].Expanded {
		t.Errorf("rows = %+v", view.Rows)
	}

	w = do(t, router, http.MethodGet, "/tree?format=text", nil)
	if !strings.HasPrefix(w.Body.String(), "▾ app/\n") {
		t.Errorf("text tree = %q", w.Body.String())
	}
}

func TestClipboard(t *testing.T) {
	router := testEnv(t, "")
	generate(t, router, "A blog platform")

	w := do(t, router, http.MethodGet, "/clipboard/road", nil)
	if w.Code != http.StatusOK || !strings.Contains(w.Body.String(), `"phase": "Phase 1: Setup"`) {
		t.Errorf("clipboard = %d %q", w.Code, w.Body.String())
	}
	w = do(t, router, http.MethodGet, "/clipboard/nope", nil)
	if w.Code != http.StatusBadRequest {
		t.Errorf("unknown section = %d, want 400", w.Code)
	}
}

func TestLoadEntryAndClear(t *testing.T) {
	router := testEnv(t, "")
	generate(t, router, "A blog platform")

	var list HistoryListResponse
	_ = json.Unmarshal(do(t, router, http.MethodGet, "/history", nil).Body.Bytes(), &list)
	id := list.Entries[0].ID

	w := do(t, router, http.MethodPost, "/history/"+id+"/load", nil)
	if w.Code != http.StatusOK || !strings.Contains(w.Body.String(), `"loadedFrom":"`+id+`"`) {
		t.Errorf("load = %d %s", w.Code, w.Body.String())
	}
	w = do(t, router, http.MethodPost, "/history/missing/load", nil)
	if w.Code != http.StatusNotFound {
		t.Errorf("load missing = %d, want 404", w.Code)
	}

	w = do(t, router, http.MethodDelete, "/history", nil)
	if w.Code != http.StatusNoContent {
		t.Errorf("clear = %d", w.Code)
	}
	_ = json.Unmarshal(do(t, router, http.MethodGet, "/history", nil).Body.Bytes(), &list)
	if list.Total != 0 {
		t.Errorf("history after clear = %d", list.Total)
	}
	w = do(t, router, http.MethodGet, "/history/"+id, nil)
	if w.Code != http.StatusNotFound {
		t.Errorf("get cleared entry = %d, want 404", w.Code)
	}
}

func TestThemePreference(t *testing.T) {
	router := testEnv(t, "")
	w := do(t, router, http.MethodGet, "/preferences/theme", nil)
	if !strings.Contains(w.Body.String(), `"theme":"midnight"`) {
		t.Errorf("default theme = %s", w.Body.String())
	}
	w = do(t, router, http.MethodPut, "/preferences/theme", ThemeBody{Theme: prefs.ThemeLight})
	if w.Code != http.StatusOK {
		t.Fatalf("put theme = %d", w.Code)
	}
	w = do(t, router, http.MethodGet, "/preferences/theme", nil)
	if !strings.Contains(w.Body.String(), `"theme":"light"`) {
		t.Errorf("theme after put = %s", w.Body.String())
	}
	w = do(t, router, http.MethodPut, "/preferences/theme", ThemeBody{Theme: "sepia"})
	if w.Code != http.StatusBadRequest {
		t.Errorf("invalid theme = %d, want 400", w.Code)
	}
}

func TestAuthMiddleware_ValidToken(t *testing.T) {
	router := testEnv(t, "secret123")
	w := do(t, router, http.MethodGet, "/state", nil, "Authorization", "Bearer secret123")
	if w.Code != http.StatusOK {
		t.Errorf("authed = %d, want 200", w.Code)
	}
}

func TestAuthMiddleware_MissingToken(t *testing.T) {
	router := testEnv(t, "secret123")
	w := do(t, router, http.MethodGet, "/history", nil)
	if w.Code != http.StatusUnauthorized {
		t.Errorf("unauthed = %d, want 401", w.Code)
	}
}

func TestAuthMiddleware_WrongToken(t *testing.T) {
	router := testEnv(t, "secret123")
	w := do(t, router, http.MethodGet, "/history", nil, "Authorization", "Bearer wrong")
	if w.Code != http.StatusUnauthorized {
		t.Errorf("wrong token = %d, want 401", w.Code)
	}
}

func TestAuthMiddleware_Disabled(t *testing.T) {
	router := testEnv(t, "")
	w := do(t, router, http.MethodGet, "/history", nil)
	if w.Code != http.StatusOK {
		t.Errorf("no auth = %d, want 200", w.Code)
	}
}

// blockingSSE writes headers and blocks until the request context ends.
var blockingSSE = http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/event-stream")
	w.WriteHeader(http.StatusOK)
	if f, ok := w.(http.Flusher); ok {
		f.Flush()
	}
	<-r.Context().Done()
})

func TestSSEEvents_AuthProtected(t *testing.T) {
	router := testEnvWithSSE(t, true, "secret", blockingSSE)
	w := do(t, router, http.MethodGet, "/events", nil)
	if w.Code != http.StatusUnauthorized {
		t.Errorf("SSE no auth = %d, want 401", w.Code)
	}
}

func TestSSEEvents_ValidToken(t *testing.T) {
	router := testEnvWithSSE(t, true, "tok", blockingSSE)

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()
	req := httptest.NewRequest(http.MethodGet, "/events", nil).WithContext(ctx)
	req.Header.Set("Authorization", "Bearer tok")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	if w.Code == http.StatusUnauthorized {
		t.Error("SSE with valid token should not 401")
	}
}

func TestSSEEvents_Disabled(t *testing.T) {
	router := testEnvWithSSE(t, false, "", nil)
	w := do(t, router, http.MethodGet, "/events", nil)
	if w.Code != http.StatusNotFound && w.Code != http.StatusMethodNotAllowed {
		t.Errorf("no SSE handler = %d, want 404", w.Code)
	}
}

func TestMemoryStoreRouter(t *testing.T) {
	logger := testutil.Logger()
	store := kv.NewMemory()
	hist := history.New(store, logger)
	ctrl := generation.New(generator.NewOffline(0), hist, logger)
	router := NewRouter(architectservice.NewService(ctrl, hist, prefs.New(store, logger), nil), false, "", nil)

	resp := generate(t, router, "anything")
	if resp.Document.TechStack[0].Name != "React + Vite" {
		t.Errorf("offline document = %+v", resp.Document.TechStack)
	}
}
