package api

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/VoidMesh/worldstream/internal/chunk"
	"github.com/VoidMesh/worldstream/internal/coords"
	"github.com/VoidMesh/worldstream/internal/engine"
	"github.com/VoidMesh/worldstream/internal/gate"
	"github.com/VoidMesh/worldstream/internal/loader"
	"github.com/VoidMesh/worldstream/internal/streaming"
	"github.com/VoidMesh/worldstream/internal/template"
	"github.com/VoidMesh/worldstream/internal/template/templatetest"
	"github.com/VoidMesh/worldstream/internal/testutil"
)

type testServer struct {
	router http.Handler
	gate   *gate.Memory
}

// Chunks are 4x4 tiles of 10px with a wall at tile (1,1). Chunk (3,0) is a
// gated region named "vault".
func newTestServer(t *testing.T) *testServer {
	t.Helper()

	sys := coords.NewSystem(10, coords.Dimensions{Width: 4, Height: 4}, nil)
	cache := template.NewCache(template.LoaderFunc(func(ctx context.Context, name string) (*template.WorldTemplate, error) {
		return templatetest.WithWall(templatetest.Open(name, 4, 4), 1, 1), nil
	}), testutil.NewMockLogger())

	states := chunk.NewStateManager(nil)
	l := loader.New(loader.Config{MaxConcurrentLoads: 16, PoolSize: 2}, loader.ChunkBuilder(cache, sys), states, testutil.NewMockLogger())
	t.Cleanup(func() { _ = l.Shutdown() })

	regions := streaming.NewRegionMap("overworld").SetGate(chunk.Key{X: 3, Y: 0}, "vault")
	g := gate.NewMemory()
	manager := streaming.NewManager(streaming.Config{LoadRadius: 1, PreloadRadius: 1}, sys, l, states, regions, g, streaming.Hooks{}, testutil.NewMockLogger())

	loop := engine.NewLoop(manager, time.Millisecond, testutil.NewMockLogger())
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		defer close(done)
		_ = loop.Run(ctx)
	}()
	t.Cleanup(func() {
		cancel()
		<-done
	})

	handler := NewHandler(loop, g, l, cache, testutil.NewMockLogger())
	return &testServer{router: SetupRoutes(handler), gate: g}
}

func (s *testServer) do(t *testing.T, method, path string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()

	var reader *bytes.Reader
	switch b := body.(type) {
	case nil:
		reader = bytes.NewReader(nil)
	case string:
		reader = bytes.NewReader([]byte(b))
	default:
		raw, err := json.Marshal(b)
		require.NoError(t, err)
		reader = bytes.NewReader(raw)
	}

	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	s.router.ServeHTTP(rec, req)
	return rec
}

func decode[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &v), rec.Body.String())
	return v
}

func (s *testServer) moveTo(t *testing.T, x, y int) {
	t.Helper()
	rec := s.do(t, http.MethodPut, "/api/v1/viewer", map[string]int{"chunk_x": x, "chunk_y": y})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
}

func (s *testServer) waitResident(t *testing.T, n int) {
	t.Helper()
	require.Eventually(t, func() bool {
		rec := s.do(t, http.MethodGet, "/api/v1/chunks", nil)
		return rec.Code == http.StatusOK && decode[ChunkListResponse](t, rec).Count == n
	}, testutil.WaitTimeout, testutil.WaitTick)
}

func TestHealthCheck(t *testing.T) {
	s := newTestServer(t)

	rec := s.do(t, http.MethodGet, "/health", nil)
	assert.Equal(t, http.StatusOK, rec.Code)
	body := decode[map[string]interface{}](t, rec)
	assert.Equal(t, "healthy", body["status"])
	assert.Equal(t, "worldstream", body["service"])
}

func TestViewer(t *testing.T) {
	cleanup := testutil.SetupTest(t, testutil.DefaultTestConfig())
	defer cleanup()

	s := newTestServer(t)

	rec := s.do(t, http.MethodGet, "/api/v1/viewer", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.False(t, decode[ViewerResponse](t, rec).Placed)

	rec = s.do(t, http.MethodPut, "/api/v1/viewer", map[string]int{"chunk_x": 1, "chunk_y": -1})
	require.Equal(t, http.StatusOK, rec.Code)
	moved := decode[MoveViewerResponse](t, rec)
	assert.True(t, moved.Moved)
	assert.Equal(t, ViewerResponse{Placed: true, ChunkX: 1, ChunkY: -1, World: "overworld"}, moved.Viewer)

	rec = s.do(t, http.MethodPut, "/api/v1/viewer", map[string]int{"chunk_x": 1, "chunk_y": -1})
	require.Equal(t, http.StatusOK, rec.Code)
	assert.False(t, decode[MoveViewerResponse](t, rec).Moved)
}

func TestMoveViewer_BadRequests(t *testing.T) {
	cleanup := testutil.SetupTest(t, testutil.DefaultTestConfig())
	defer cleanup()

	s := newTestServer(t)

	tests := []struct {
		name string
		body interface{}
	}{
		{name: "malformed json", body: "{"},
		{name: "missing chunk_y", body: map[string]int{"chunk_x": 1}},
		{name: "empty object", body: map[string]int{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := s.do(t, http.MethodPut, "/api/v1/viewer", tt.body)
			assert.Equal(t, http.StatusBadRequest, rec.Code)
			assert.Equal(t, http.StatusBadRequest, decode[ErrorResponse](t, rec).Code)
		})
	}
}

func TestRegionGate(t *testing.T) {
	cleanup := testutil.SetupTest(t, testutil.DefaultTestConfig())
	defer cleanup()

	s := newTestServer(t)
	s.moveTo(t, 2, 0)

	rec := s.do(t, http.MethodPut, "/api/v1/viewer", map[string]int{"chunk_x": 3, "chunk_y": 0})
	assert.Equal(t, http.StatusLocked, rec.Code)

	rec = s.do(t, http.MethodGet, "/api/v1/viewer", nil)
	assert.Equal(t, 2, decode[ViewerResponse](t, rec).ChunkX, "viewer did not move")

	rec = s.do(t, http.MethodPost, "/api/v1/regions/vault/unlock", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, RegionResponse{Region: "vault", Unlocked: true}, decode[RegionResponse](t, rec))
	assert.True(t, s.gate.IsRegionUnlocked("vault"))

	rec = s.do(t, http.MethodGet, "/api/v1/regions", nil)
	assert.Equal(t, []string{"vault"}, decode[RegionListResponse](t, rec).Unlocked)

	s.moveTo(t, 3, 0)

	rec = s.do(t, http.MethodDelete, "/api/v1/regions/vault/unlock", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.False(t, s.gate.IsRegionUnlocked("vault"))
}

func TestChunks(t *testing.T) {
	cleanup := testutil.SetupTest(t, testutil.DefaultTestConfig())
	defer cleanup()

	s := newTestServer(t)
	s.moveTo(t, 0, 0)
	s.waitResident(t, 9)

	rec := s.do(t, http.MethodGet, "/api/v1/chunks", nil)
	list := decode[ChunkListResponse](t, rec)
	require.Len(t, list.Chunks, 9)
	first := list.Chunks[0]
	assert.Equal(t, -1, first.ChunkX)
	assert.Equal(t, -1, first.ChunkY)
	assert.Equal(t, "LOADED", first.State)
	assert.True(t, first.Attached)

	rec = s.do(t, http.MethodGet, "/api/v1/chunks/0/0", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	detail := decode[ChunkDetail](t, rec)
	assert.Equal(t, "overworld", detail.World)
	assert.Equal(t, 4, detail.Width)
	assert.Equal(t, 2, detail.Layers)
	assert.Equal(t, chunk.Rect{MinX: 0, MinY: 0, MaxX: 40, MaxY: 40}, detail.Bounds)
	assert.Equal(t, []string{"....", ".#..", "....", "...."}, detail.Passability)

	tests := []struct {
		name string
		path string
		code int
	}{
		{name: "not resident", path: "/api/v1/chunks/7/7", code: http.StatusNotFound},
		{name: "bad x", path: "/api/v1/chunks/a/0", code: http.StatusBadRequest},
		{name: "bad y", path: "/api/v1/chunks/0/b", code: http.StatusBadRequest},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.code, s.do(t, http.MethodGet, tt.path, nil).Code)
		})
	}
}

func TestPassability(t *testing.T) {
	cleanup := testutil.SetupTest(t, testutil.DefaultTestConfig())
	defer cleanup()

	s := newTestServer(t)

	rec := s.do(t, http.MethodGet, "/api/v1/passable?x=5&y=5", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.False(t, decode[PassableResponse](t, rec).Passable, "nothing resident yet")

	s.moveTo(t, 0, 0)
	s.waitResident(t, 9)

	rec = s.do(t, http.MethodGet, "/api/v1/passable?x=-35&y=5", nil)
	resp := decode[PassableResponse](t, rec)
	assert.True(t, resp.Passable)
	assert.Equal(t, -1, resp.ChunkX)

	rec = s.do(t, http.MethodGet, "/api/v1/passable?x=15&y=15", nil)
	assert.False(t, decode[PassableResponse](t, rec).Passable)

	rec = s.do(t, http.MethodPut, "/api/v1/tiles/passable", map[string]interface{}{"world_x": 15, "world_y": 15, "passable": true})
	require.Equal(t, http.StatusOK, rec.Code)

	rec = s.do(t, http.MethodGet, "/api/v1/passable?x=15&y=15", nil)
	assert.True(t, decode[PassableResponse](t, rec).Passable)

	rec = s.do(t, http.MethodPut, "/api/v1/tiles/passable", map[string]interface{}{"world_x": 900, "world_y": 15, "passable": true})
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = s.do(t, http.MethodPut, "/api/v1/tiles/passable", map[string]interface{}{"world_x": 15, "world_y": 15})
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = s.do(t, http.MethodGet, "/api/v1/passable?x=abc&y=5", nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestStats(t *testing.T) {
	cleanup := testutil.SetupTest(t, testutil.DefaultTestConfig())
	defer cleanup()

	s := newTestServer(t)
	s.moveTo(t, 0, 0)
	s.waitResident(t, 9)

	rec := s.do(t, http.MethodGet, "/api/v1/stats", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	stats := decode[StatsResponse](t, rec)
	assert.Equal(t, 9, stats.Manager.Resident)
	assert.Equal(t, int64(9), stats.Loader.Loaded)
	assert.Equal(t, []string{"overworld"}, stats.Templates)
	assert.Equal(t, 9, stats.Manager.States["LOADED"])
}

type stoppedEngine struct{}

func (stoppedEngine) Do(context.Context, func(*streaming.Manager) error) error {
	return engine.ErrLoopStopped
}

func TestEngineUnavailable(t *testing.T) {
	cleanup := testutil.SetupTest(t, testutil.DefaultTestConfig())
	defer cleanup()

	logger := testutil.NewMockLogger()
	l := loader.New(loader.DefaultConfig(), nil, chunk.NewStateManager(nil), logger)
	t.Cleanup(func() { _ = l.Shutdown() })
	cache := template.NewCache(&templatetest.CountingLoader{Width: 4, Height: 4}, logger)

	handler := NewHandler(stoppedEngine{}, gate.NewMemory(), l, cache, logger)
	router := SetupRoutes(handler)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/viewer", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
	body := decode[ErrorResponse](t, rec)
	assert.Equal(t, "Internal server error", body.Error)
	assert.Equal(t, 1, logger.GetLogCount("ERROR"))
}
