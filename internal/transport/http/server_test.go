package statushttp

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"sarraf/internal/store/gormstore"
	"sarraf/internal/types"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestServer(t *testing.T) (*Server, *gormstore.GormStore) {
	t.Helper()
	st, err := gormstore.NewMemoryStore()
	require.NoError(t, err)
	srv, err := NewServer(ServerConfig{Addr: ":0", Signals: st, Events: st})
	require.NoError(t, err)
	return srv, st
}

func get(t *testing.T, srv *Server, path string) *httptest.ResponseRecorder {
	t.Helper()
	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, path, nil)
	srv.Handler().ServeHTTP(rec, req)
	return rec
}

func TestHealthz(t *testing.T) {
	srv, _ := newTestServer(t)
	rec := get(t, srv, "/healthz")
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestListSignals(t *testing.T) {
	srv, st := newTestServer(t)
	_, err := st.InsertSignal(context.Background(), types.TradeSignal{
		AssetName:  "DOGS",
		EntryPrice: decimal.RequireFromString("100000"),
		ExitPrice:  decimal.RequireFromString("105000"),
		Status:     types.StatusNewSignal,
	})
	require.NoError(t, err)

	rec := get(t, srv, "/api/signals")
	require.Equal(t, http.StatusOK, rec.Code)

	var body struct {
		Signals []map[string]any `json:"signals"`
		Count   int              `json:"count"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	require.Equal(t, 1, body.Count)
	assert.Equal(t, "DOGS", body.Signals[0]["asset_name"])
	assert.Equal(t, "100000", body.Signals[0]["entry_price"])
}

func TestListSignalsByStatus(t *testing.T) {
	srv, st := newTestServer(t)
	id, err := st.InsertSignal(context.Background(), types.TradeSignal{
		AssetName:  "DOGS",
		EntryPrice: decimal.RequireFromString("1"),
		ExitPrice:  decimal.RequireFromString("2"),
		Status:     types.StatusNewSignal,
	})
	require.NoError(t, err)
	require.NoError(t, st.MarkError(context.Background(), id, "bad data"))

	rec := get(t, srv, "/api/signals?status=error")
	require.Equal(t, http.StatusOK, rec.Code)
	var body struct {
		Count int `json:"count"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, 1, body.Count)

	rec = get(t, srv, "/api/signals?status=new_signal")
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, 0, body.Count)
}

func TestListSignalsRejectsBadLimit(t *testing.T) {
	srv, _ := newTestServer(t)

	for _, limit := range []string{"abc", "-1", "0"} {
		rec := get(t, srv, "/api/signals?limit="+limit)
		assert.Equal(t, http.StatusBadRequest, rec.Code, "limit=%s", limit)
	}

	rec := get(t, srv, "/api/signals?limit=5")
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestSignalDetailNotFound(t *testing.T) {
	srv, _ := newTestServer(t)
	rec := get(t, srv, "/api/signals/999")
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestReportRenders(t *testing.T) {
	srv, _ := newTestServer(t)
	rec := get(t, srv, "/report")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Header().Get("Content-Type"), "text/html")
	assert.Contains(t, rec.Body.String(), "Completed trades")
}
