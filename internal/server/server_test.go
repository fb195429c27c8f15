package server

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"io/fs"
	"log/slog"
	"net"
	"net/http"
	"net/http/httptest"
	"runtime"
	"sort"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/jpalmerr/finboard/fields"
	"github.com/jpalmerr/finboard/internal/store"
)

// testLogger returns a logger that discards all output for clean test output.
func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// mockStore implements store.Store for testing.
type mockStore struct {
	mu          sync.RWMutex
	states      map[string]store.WidgetState
	subscribers map[chan store.WidgetState]struct{}
	subMu       sync.Mutex
}

func newMockStore() *mockStore {
	return &mockStore{
		states:      make(map[string]store.WidgetState),
		subscribers: make(map[chan store.WidgetState]struct{}),
	}
}

func (m *mockStore) Update(state store.WidgetState) {
	m.mu.Lock()
	m.states[state.ID] = state
	m.mu.Unlock()

	m.subMu.Lock()
	for ch := range m.subscribers {
		select {
		case ch <- state:
		default:
		}
	}
	m.subMu.Unlock()
}

func (m *mockStore) Get(id string) (store.WidgetState, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	s, ok := m.states[id]
	return s, ok
}

func (m *mockStore) GetAll() []store.WidgetState {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]store.WidgetState, 0, len(m.states))
	for _, s := range m.states {
		out = append(out, s)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

func (m *mockStore) Delete(id string) {
	m.mu.Lock()
	delete(m.states, id)
	m.mu.Unlock()
}

func (m *mockStore) Subscribe() <-chan store.WidgetState {
	ch := make(chan store.WidgetState, 100)
	m.subMu.Lock()
	m.subscribers[ch] = struct{}{}
	m.subMu.Unlock()
	return ch
}

func (m *mockStore) Unsubscribe(ch <-chan store.WidgetState) {
	m.subMu.Lock()
	defer m.subMu.Unlock()
	for subCh := range m.subscribers {
		if subCh == ch {
			delete(m.subscribers, subCh)
			close(subCh)
			break
		}
	}
}

type fakeRefresher struct {
	mu    sync.Mutex
	known map[string]bool
	calls []string
}

func (f *fakeRefresher) Refetch(id string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if !f.known[id] {
		return errors.New("unknown widget")
	}
	f.calls = append(f.calls, id)
	return nil
}

type fakeProber struct {
	body []byte
	err  error
	got  string
}

func (f *fakeProber) FetchRaw(_ context.Context, endpoint string, _ map[string]any) ([]byte, error) {
	f.got = endpoint
	return f.body, f.err
}

func quoteState() store.WidgetState {
	return store.WidgetState{
		ID:     "aapl",
		Title:  "Apple",
		Type:   "card",
		Status: "success",
		Data: map[string]any{
			"01. symbol":         "AAPL",
			"05. price":          "189.9100",
			"10. change percent": "1.2500%",
		},
		Mappings: []fields.Mapping{
			{DisplayName: "Price", FieldPath: "05. price", Format: fields.FormatCurrency},
			{DisplayName: "Change", FieldPath: "10. change percent", Format: fields.FormatPercentage},
		},
	}
}

func serve(t *testing.T, srv *Server, method, target string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, target, nil)
	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, req)
	return rec
}

func decodeBody(t *testing.T, rec *httptest.ResponseRecorder, v any) {
	t.Helper()
	if err := json.Unmarshal(rec.Body.Bytes(), v); err != nil {
		t.Fatalf("failed to decode body %q: %v", rec.Body.String(), err)
	}
}

// --- REST API ---

func TestHealthz(t *testing.T) {
	srv := NewServer(newMockStore(), 0, nil, "", testLogger())

	rec := serve(t, srv, http.MethodGet, "/healthz")
	if rec.Code != http.StatusOK {
		t.Errorf("status = %d, want 200", rec.Code)
	}
}

func TestHandleWidgets(t *testing.T) {
	ms := newMockStore()
	ms.Update(store.WidgetState{ID: "b", Status: "loading", Loading: true})
	ms.Update(quoteState())
	srv := NewServer(ms, 0, nil, "", testLogger())

	rec := serve(t, srv, http.MethodGet, "/api/widgets")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	if ct := rec.Header().Get("Content-Type"); ct != "application/json" {
		t.Errorf("Content-Type = %q", ct)
	}

	var got []store.WidgetState
	decodeBody(t, rec, &got)
	if len(got) != 2 || got[0].ID != "aapl" || got[1].ID != "b" {
		t.Errorf("widgets = %+v", got)
	}
}

func TestHandleWidgets_MethodNotAllowed(t *testing.T) {
	srv := NewServer(newMockStore(), 0, nil, "", testLogger())

	rec := serve(t, srv, http.MethodPost, "/api/widgets")
	if rec.Code != http.StatusMethodNotAllowed {
		t.Errorf("status = %d, want 405", rec.Code)
	}
}

func TestHandleWidget(t *testing.T) {
	ms := newMockStore()
	ms.Update(quoteState())
	srv := NewServer(ms, 0, nil, "", testLogger())

	rec := serve(t, srv, http.MethodGet, "/api/widgets/aapl")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	var got store.WidgetState
	decodeBody(t, rec, &got)
	if got.Title != "Apple" {
		t.Errorf("title = %q, want Apple", got.Title)
	}

	rec = serve(t, srv, http.MethodGet, "/api/widgets/missing")
	if rec.Code != http.StatusNotFound {
		t.Errorf("missing widget status = %d, want 404", rec.Code)
	}
}

func TestHandleWidget_ErrorIsNullOnSuccess(t *testing.T) {
	ms := newMockStore()
	ms.Update(quoteState())
	srv := NewServer(ms, 0, nil, "", testLogger())

	rec := serve(t, srv, http.MethodGet, "/api/widgets/aapl")
	if !strings.Contains(rec.Body.String(), `"error":null`) {
		t.Errorf("expected null error, got %s", rec.Body.String())
	}
}

func TestHandleFields(t *testing.T) {
	ms := newMockStore()
	ms.Update(quoteState())
	ms.Update(store.WidgetState{ID: "empty"})
	srv := NewServer(ms, 0, nil, "", testLogger())

	rec := serve(t, srv, http.MethodGet, "/api/widgets/aapl/fields")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	var got fieldsResponse
	decodeBody(t, rec, &got)
	if len(got.Fields) != 3 {
		t.Fatalf("fields = %+v, want 3", got.Fields)
	}
	if got.Fields[0].Path != "01. symbol" || got.Fields[0].Type != "string" {
		t.Errorf("first field = %+v", got.Fields[0])
	}

	rec = serve(t, srv, http.MethodGet, "/api/widgets/empty/fields")
	if !strings.Contains(rec.Body.String(), `"fields":[]`) {
		t.Errorf("no data should list no fields, got %s", rec.Body.String())
	}
}

func TestHandleValues_Card(t *testing.T) {
	ms := newMockStore()
	ms.Update(quoteState())
	srv := NewServer(ms, 0, nil, "", testLogger())

	rec := serve(t, srv, http.MethodGet, "/api/widgets/aapl/values")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	var got valuesResponse
	decodeBody(t, rec, &got)
	if len(got.Values) != 2 {
		t.Fatalf("values = %+v", got.Values)
	}
	if got.Values[0].Display != "$189.91" {
		t.Errorf("price display = %q, want $189.91", got.Values[0].Display)
	}
	if got.Values[1].Display != "+1.25%" {
		t.Errorf("change display = %q, want +1.25%%", got.Values[1].Display)
	}
}

func TestHandleValues_TableRows(t *testing.T) {
	ms := newMockStore()
	ms.Update(store.WidgetState{
		ID:   "movers",
		Type: "table",
		Data: []any{
			map[string]any{"symbol": "NVDA", "price": 900.5},
			map[string]any{"symbol": "TSLA", "price": 170.0},
		},
		Mappings: []fields.Mapping{
			{DisplayName: "Symbol", FieldPath: "symbol"},
			{DisplayName: "Price", FieldPath: "price", Format: fields.FormatCurrency},
		},
	})
	srv := NewServer(ms, 0, nil, "", testLogger())

	rec := serve(t, srv, http.MethodGet, "/api/widgets/movers/values")
	var got valuesResponse
	decodeBody(t, rec, &got)
	if len(got.Rows) != 2 {
		t.Fatalf("rows = %+v", got.Rows)
	}
	if got.Rows[1][0].Display != "TSLA" || got.Rows[1][1].Display != "$170.00" {
		t.Errorf("second row = %+v", got.Rows[1])
	}
}

func TestHandleRefresh(t *testing.T) {
	ms := newMockStore()
	ms.Update(quoteState())
	ref := &fakeRefresher{known: map[string]bool{"aapl": true}}
	srv := NewServer(ms, 0, nil, "", testLogger(), WithRefresher(ref))

	rec := serve(t, srv, http.MethodPost, "/api/widgets/aapl/refresh")
	if rec.Code != http.StatusAccepted {
		t.Errorf("status = %d, want 202", rec.Code)
	}
	if len(ref.calls) != 1 || ref.calls[0] != "aapl" {
		t.Errorf("refetch calls = %v", ref.calls)
	}

	rec = serve(t, srv, http.MethodPost, "/api/widgets/nope/refresh")
	if rec.Code != http.StatusNotFound {
		t.Errorf("unknown widget status = %d, want 404", rec.Code)
	}
}

func TestHandleRefresh_NotEnabled(t *testing.T) {
	srv := NewServer(newMockStore(), 0, nil, "", testLogger())

	rec := serve(t, srv, http.MethodPost, "/api/widgets/aapl/refresh")
	if rec.Code != http.StatusNotImplemented {
		t.Errorf("status = %d, want 501", rec.Code)
	}
}

func TestHandleDiscover(t *testing.T) {
	prober := &fakeProber{body: []byte(`{"zeta":1,"alpha":{"name":"x","tags":["a"]}}`)}
	srv := NewServer(newMockStore(), 0, nil, "", testLogger(), WithProber(prober))

	rec := serve(t, srv, http.MethodGet, "/api/discover?endpoint=https://api.example.com/data")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body %s", rec.Code, rec.Body.String())
	}
	if prober.got != "https://api.example.com/data" {
		t.Errorf("probed %q", prober.got)
	}

	var got discoverResponse
	decodeBody(t, rec, &got)
	paths := make([]string, len(got.Fields))
	for i, f := range got.Fields {
		paths[i] = f.Path
	}
	want := []string{"zeta", "alpha.name", "alpha.tags"}
	if strings.Join(paths, ",") != strings.Join(want, ",") {
		t.Errorf("paths = %v, want %v (source order)", paths, want)
	}
}

func TestHandleDiscover_Errors(t *testing.T) {
	tests := []struct {
		name   string
		prober *fakeProber
		target string
		want   int
	}{
		{"missing endpoint", &fakeProber{}, "/api/discover", http.StatusBadRequest},
		{"bad depth", &fakeProber{}, "/api/discover?endpoint=https://x.test&depth=abc", http.StatusBadRequest},
		{"depth too large", &fakeProber{}, "/api/discover?endpoint=https://x.test&depth=99", http.StatusBadRequest},
		{"fetch failure", &fakeProber{err: errors.New("HTTP 500")}, "/api/discover?endpoint=https://x.test", http.StatusBadGateway},
		{"malformed body", &fakeProber{body: []byte("{oops")}, "/api/discover?endpoint=https://x.test", http.StatusUnprocessableEntity},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := NewServer(newMockStore(), 0, nil, "", testLogger(), WithProber(tt.prober))
			rec := serve(t, srv, http.MethodGet, tt.target)
			if rec.Code != tt.want {
				t.Errorf("status = %d, want %d (body %s)", rec.Code, tt.want, rec.Body.String())
			}
		})
	}
}

func TestHandleDiscover_Depth(t *testing.T) {
	prober := &fakeProber{body: []byte(`{"top":1,"a":{"b":2,"c":{"d":3}}}`)}
	srv := NewServer(newMockStore(), 0, nil, "", testLogger(), WithProber(prober))

	rec := serve(t, srv, http.MethodGet, "/api/discover?endpoint=https://x.test&depth=2")
	var got discoverResponse
	decodeBody(t, rec, &got)
	if len(got.Fields) != 2 || got.Fields[0].Path != "top" || got.Fields[1].Path != "a.b" {
		t.Errorf("depth-limited fields = %+v", got.Fields)
	}
}

// --- SSE ---

func TestHandleSSE_BasicFlow(t *testing.T) {
	ms := newMockStore()
	ms.Update(store.WidgetState{ID: "widget-1", Status: "success"})
	ms.Update(store.WidgetState{ID: "widget-2", Status: "failed"})

	srv := NewServer(ms, 0, nil, "", testLogger())

	ctx, cancel := context.WithTimeout(context.Background(), 500*time.Millisecond)
	defer cancel()
	req := httptest.NewRequest(http.MethodGet, "/api/sse", nil).WithContext(ctx)
	rec := httptest.NewRecorder()

	srv.handleSSE(rec, req)

	body := rec.Body.String()
	for _, id := range []string{"widget-1", "widget-2"} {
		if !strings.Contains(body, id) {
			t.Errorf("response should contain %s, got: %s", id, body)
		}
	}
}

func TestHandleSSE_StreamsUpdates(t *testing.T) {
	ms := newMockStore()
	srv := NewServer(ms, 0, nil, "", testLogger())

	ctx, cancel := context.WithCancel(context.Background())
	req := httptest.NewRequest(http.MethodGet, "/api/sse", nil).WithContext(ctx)
	rec := httptest.NewRecorder()

	done := make(chan struct{})
	go func() {
		srv.handleSSE(rec, req)
		close(done)
	}()

	// give handler time to subscribe
	time.Sleep(50 * time.Millisecond)
	ms.Update(store.WidgetState{ID: "fresh", Status: "success"})
	time.Sleep(50 * time.Millisecond)
	cancel()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("handler did not exit after context cancellation")
	}

	if !strings.Contains(rec.Body.String(), "fresh") {
		t.Errorf("response should contain streamed update, got: %s", rec.Body.String())
	}
}

func TestHandleSSE_ClientDisconnect(t *testing.T) {
	srv := NewServer(newMockStore(), 0, nil, "", testLogger())

	ctx, cancel := context.WithCancel(context.Background())
	req := httptest.NewRequest(http.MethodGet, "/api/sse", nil).WithContext(ctx)
	rec := httptest.NewRecorder()

	done := make(chan struct{})
	go func() {
		srv.handleSSE(rec, req)
		close(done)
	}()

	time.Sleep(50 * time.Millisecond)
	cancel()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("handler did not exit after client disconnect")
	}
}

func TestHandleSSE_NoGoroutineLeaks(t *testing.T) {
	runtime.GC()
	time.Sleep(100 * time.Millisecond)
	before := runtime.NumGoroutine()

	srv := NewServer(newMockStore(), 0, nil, "", testLogger())

	var wg sync.WaitGroup
	for i := 0; i < 5; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			ctx, cancel := context.WithTimeout(context.Background(), 100*time.Millisecond)
			defer cancel()
			req := httptest.NewRequest(http.MethodGet, "/api/sse", nil).WithContext(ctx)
			srv.handleSSE(httptest.NewRecorder(), req)
		}()
	}
	wg.Wait()

	runtime.GC()
	time.Sleep(200 * time.Millisecond)

	if after := runtime.NumGoroutine(); after > before+2 {
		t.Errorf("potential goroutine leak: before=%d, after=%d", before, after)
	}
}

func TestHandleSSE_ConcurrentClientsShutdown(t *testing.T) {
	ms := newMockStore()
	ms.Update(store.WidgetState{ID: "w", Status: "success"})
	srv := NewServer(ms, 0, nil, "", testLogger())

	serverCtx, serverCancel := context.WithCancel(context.Background())

	const numClients = 10
	var wg sync.WaitGroup
	started := make(chan struct{})
	var startedCount atomic.Int32

	for i := 0; i < numClients; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			req := httptest.NewRequest(http.MethodGet, "/api/sse", nil).WithContext(serverCtx)
			if startedCount.Add(1) == numClients {
				close(started)
			}
			srv.handleSSE(httptest.NewRecorder(), req)
		}()
	}

	select {
	case <-started:
	case <-time.After(2 * time.Second):
		t.Fatal("clients did not start in time")
	}
	time.Sleep(100 * time.Millisecond)
	serverCancel()

	done := make(chan struct{})
	go func() {
		wg.Wait()
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(3 * time.Second):
		t.Fatal("not all handlers exited after shutdown")
	}
}

type nonFlushWriter struct {
	header     http.Header
	statusCode int
	body       []byte
}

func (n *nonFlushWriter) Header() http.Header { return n.header }

func (n *nonFlushWriter) Write(b []byte) (int, error) {
	n.body = append(n.body, b...)
	return len(b), nil
}

func (n *nonFlushWriter) WriteHeader(statusCode int) { n.statusCode = statusCode }

func TestHandleSSE_SSENotSupported(t *testing.T) {
	srv := NewServer(newMockStore(), 0, nil, "", testLogger())

	w := &nonFlushWriter{header: make(http.Header)}
	srv.handleSSE(w, httptest.NewRequest(http.MethodGet, "/api/sse", nil))

	if w.statusCode != http.StatusInternalServerError {
		t.Errorf("expected status %d, got %d", http.StatusInternalServerError, w.statusCode)
	}
}

func TestHandleSSE_Headers(t *testing.T) {
	srv := NewServer(newMockStore(), 0, nil, "", testLogger())

	ctx, cancel := context.WithTimeout(context.Background(), 100*time.Millisecond)
	defer cancel()
	req := httptest.NewRequest(http.MethodGet, "/api/sse", nil).WithContext(ctx)
	rec := httptest.NewRecorder()

	srv.handleSSE(rec, req)

	expected := map[string]string{
		"Content-Type":                "text/event-stream",
		"Cache-Control":               "no-cache",
		"Connection":                  "keep-alive",
		"Access-Control-Allow-Origin": "*",
	}
	for key, want := range expected {
		if got := rec.Header().Get(key); got != want {
			t.Errorf("header %s = %q, want %q", key, got, want)
		}
	}
}

func TestHandleSSE_JSONFormat(t *testing.T) {
	ms := newMockStore()
	state := quoteState()
	state.LatencyMs = 42
	state.UpdatedAt = time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	ms.Update(state)

	srv := NewServer(ms, 0, nil, "", testLogger())

	ctx, cancel := context.WithTimeout(context.Background(), 100*time.Millisecond)
	defer cancel()
	req := httptest.NewRequest(http.MethodGet, "/api/sse", nil).WithContext(ctx)
	rec := httptest.NewRecorder()

	srv.handleSSE(rec, req)

	events := parseSSEEvents(rec.Body.String())
	if len(events) != 1 {
		t.Fatalf("expected 1 event, got %d: %s", len(events), rec.Body.String())
	}
	if events[0].ID != "aapl" || events[0].LatencyMs != 42 {
		t.Errorf("event = %+v", events[0])
	}
	if len(events[0].Mappings) != 2 {
		t.Errorf("mappings not carried: %+v", events[0].Mappings)
	}
}

// TestHandleSSE_ServerShutdownIntegration uses a real HTTP connection, which
// supports write deadlines unlike the recorder.
func TestHandleSSE_ServerShutdownIntegration(t *testing.T) {
	ms := newMockStore()
	ms.Update(store.WidgetState{ID: "integration", Status: "success"})
	srv := NewServer(ms, 0, nil, "", testLogger())

	serverCtx, serverCancel := context.WithCancel(context.Background())

	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		// simulates BaseContext
		srv.handleSSE(w, r.WithContext(serverCtx))
	}))
	defer ts.Close()

	connDone := make(chan struct{})
	go func() {
		defer close(connDone)
		resp, err := ts.Client().Get(ts.URL)
		if err != nil {
			return
		}
		defer func() { _ = resp.Body.Close() }()
		_, _ = io.Copy(io.Discard, resp.Body)
	}()

	time.Sleep(100 * time.Millisecond)
	serverCancel()

	select {
	case <-connDone:
	case <-time.After(3 * time.Second):
		t.Fatal("SSE connection did not close after server shutdown")
	}
}

func parseSSEEvents(body string) []store.WidgetState {
	var states []store.WidgetState
	for _, line := range strings.Split(body, "\n") {
		if !strings.HasPrefix(line, "data: ") {
			continue
		}
		var s store.WidgetState
		if err := json.Unmarshal([]byte(strings.TrimPrefix(line, "data: ")), &s); err == nil {
			states = append(states, s)
		}
	}
	return states
}

// --- Server Start ---

func TestStart_AvailablePort_ReturnsNil(t *testing.T) {
	// port 0 lets the OS pick; the public API validates port > 0
	srv := NewServer(newMockStore(), 0, nil, "", testLogger())

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	if err := srv.Start(ctx); err != nil {
		t.Errorf("Start() on available port returned error: %v", err)
	}
}

func TestStart_PortInUse_ReturnsError(t *testing.T) {
	ln, err := net.Listen("tcp", ":0")
	if err != nil {
		t.Fatalf("failed to create listener: %v", err)
	}
	defer func() { _ = ln.Close() }()

	port := ln.Addr().(*net.TCPAddr).Port
	srv := NewServer(newMockStore(), port, nil, "", testLogger())

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	err = srv.Start(ctx)
	if err == nil {
		t.Fatal("Start() on occupied port should return error")
	}
	if !strings.Contains(err.Error(), "failed to bind") {
		t.Errorf("expected bind error, got: %v", err)
	}
}

func TestStart_InvalidPort_ReturnsError(t *testing.T) {
	srv := NewServer(newMockStore(), -1, nil, "", testLogger())

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	if err := srv.Start(ctx); err == nil {
		t.Fatal("Start() with invalid port should return error")
	}
}

func BenchmarkHandleSSE_SingleClient(b *testing.B) {
	ms := newMockStore()
	for i := 0; i < 10; i++ {
		ms.Update(store.WidgetState{ID: "widget-" + string(rune('A'+i)), Status: "success"})
	}
	srv := NewServer(ms, 0, nil, "", testLogger())

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
		req := httptest.NewRequest(http.MethodGet, "/api/sse", nil).WithContext(ctx)
		srv.handleSSE(httptest.NewRecorder(), req)
		cancel()
	}
}

// --- Dashboard ---

// mockFS implements fs.ReadFileFS for testing dashboard rendering.
type mockFS struct {
	content string
}

func (m *mockFS) Open(string) (fs.File, error) {
	return nil, fs.ErrNotExist
}

func (m *mockFS) ReadFile(name string) ([]byte, error) {
	if name == "assets/index.html" {
		return []byte(m.content), nil
	}
	return nil, fs.ErrNotExist
}

func TestHandleDashboard_Title(t *testing.T) {
	tests := []struct {
		name  string
		title string
		want  string
	}{
		{"custom", "Markets Overview", "<title>Markets Overview</title><h1>Markets Overview</h1>"},
		{"default", "", "<title>FinBoard</title><h1>FinBoard</h1>"},
		{"escaped", "<script>alert('x')</script>", "&lt;script&gt;"},
		{"ampersand", "Stocks & Bonds", "Stocks &amp; Bonds"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assets := &mockFS{content: "<title>{{.Title}}</title><h1>{{.Title}}</h1>"}
			srv := NewServer(newMockStore(), 0, assets, tt.title, testLogger())

			rec := serve(t, srv, http.MethodGet, "/")
			body := rec.Body.String()
			if !strings.Contains(body, tt.want) {
				t.Errorf("body = %s, want it to contain %s", body, tt.want)
			}
			if strings.Contains(body, "<script>") {
				t.Error("title should be HTML-escaped")
			}
		})
	}
}

func TestHandleDashboard_NoAssets(t *testing.T) {
	srv := NewServer(newMockStore(), 0, nil, "Custom Title", testLogger())

	rec := httptest.NewRecorder()
	srv.handleDashboard(rec, httptest.NewRequest(http.MethodGet, "/", nil))

	if rec.Code != http.StatusInternalServerError {
		t.Errorf("expected status %d, got %d", http.StatusInternalServerError, rec.Code)
	}
}

func TestHandleDashboard_NonRootPath(t *testing.T) {
	srv := NewServer(newMockStore(), 0, &mockFS{content: "x"}, "", testLogger())

	rec := serve(t, srv, http.MethodGet, "/other")
	if rec.Code != http.StatusNotFound {
		t.Errorf("expected status %d for non-root path, got %d", http.StatusNotFound, rec.Code)
	}
}
